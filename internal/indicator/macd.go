package indicator

import (
	"fmt"
	"math"

	"github.com/yourorg/signal-service/internal/model"
)

// MACDSeries represents the three MACD component series
type MACDSeries struct {
	Line   []float64
	Signal []float64
	Hist   []float64
}

// MACD returns the MACD line (fast EMA minus slow EMA), its signal line
// and the histogram. The signal line needs slow+signal-1 values before
// its first defined entry.
func MACD(values []float64, fast, slow, signal int) (*MACDSeries, error) {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return nil, fmt.Errorf("macd periods invalid: fast=%d slow=%d signal=%d", fast, slow, signal)
	}
	min := slow + signal - 1
	if len(values) < min {
		return nil, model.NewInsufficientDataError("macd", min, len(values))
	}

	fastEMA, err := EMA(values, fast)
	if err != nil {
		return nil, err
	}
	slowEMA, err := EMA(values, slow)
	if err != nil {
		return nil, err
	}

	n := len(values)
	line := nanSlice(n)
	compact := make([]float64, 0, n-slow+1)
	for i := slow - 1; i < n; i++ {
		v := fastEMA[i] - slowEMA[i]
		line[i] = v
		compact = append(compact, v)
	}

	sigCompact, err := EMA(compact, signal)
	if err != nil {
		return nil, err
	}
	sig := nanSlice(n)
	hist := nanSlice(n)
	for j, v := range sigCompact {
		if math.IsNaN(v) {
			continue
		}
		i := j + slow - 1
		sig[i] = v
		hist[i] = line[i] - v
	}
	return &MACDSeries{Line: line, Signal: sig, Hist: hist}, nil
}
