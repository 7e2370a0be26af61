package indicator

import (
	"fmt"
	"math"

	"github.com/yourorg/signal-service/internal/model"
)

// StochasticSeries represents the smoothed %K and %D oscillator lines
type StochasticSeries struct {
	K []float64
	D []float64
}

// Stochastic returns the slow stochastic oscillator. Raw %K is the close
// position inside the kPeriod high/low range, smoothed by an SMA of
// length smooth; %D is an SMA of the smoothed %K. A flat window yields
// a neutral 50.
func Stochastic(highs, lows, closes []float64, kPeriod, smooth, dPeriod int) (*StochasticSeries, error) {
	if kPeriod <= 0 || smooth <= 0 || dPeriod <= 0 {
		return nil, fmt.Errorf("stochastic periods invalid: k=%d smooth=%d d=%d", kPeriod, smooth, dPeriod)
	}
	n := len(closes)
	if len(highs) != n || len(lows) != n {
		return nil, fmt.Errorf("stochastic input length mismatch: highs=%d lows=%d closes=%d", len(highs), len(lows), n)
	}
	min := kPeriod + smooth + dPeriod - 2
	if n < min {
		return nil, model.NewInsufficientDataError("stochastic", min, n)
	}

	raw := make([]float64, 0, n-kPeriod+1)
	for i := kPeriod - 1; i < n; i++ {
		ll, _ := windowExtremes(lows, i-kPeriod+1, i)
		_, hh := windowExtremes(highs, i-kPeriod+1, i)
		if hh == ll {
			raw = append(raw, 50)
			continue
		}
		raw = append(raw, 100*(closes[i]-ll)/(hh-ll))
	}

	kCompact, err := SMA(raw, smooth)
	if err != nil {
		return nil, err
	}
	dCompact, err := SMA(kCompact[smooth-1:], dPeriod)
	if err != nil {
		return nil, err
	}

	k := nanSlice(n)
	d := nanSlice(n)
	for j, v := range kCompact {
		if !math.IsNaN(v) {
			k[j+kPeriod-1] = v
		}
	}
	for j, v := range dCompact {
		if !math.IsNaN(v) {
			d[j+kPeriod-1+smooth-1] = v
		}
	}
	return &StochasticSeries{K: k, D: d}, nil
}
