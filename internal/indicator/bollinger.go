package indicator

import (
	"fmt"
	"math"

	"github.com/yourorg/signal-service/internal/model"
)

// BollingerSeries represents the upper, middle and lower band series
type BollingerSeries struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// Bollinger returns bands at mult population standard deviations around
// an SMA of the given period.
func Bollinger(values []float64, period int, mult float64) (*BollingerSeries, error) {
	if period <= 0 {
		return nil, fmt.Errorf("bollinger period must be positive, got %d", period)
	}
	if mult <= 0 {
		return nil, fmt.Errorf("bollinger multiplier must be positive, got %f", mult)
	}
	if len(values) < period {
		return nil, model.NewInsufficientDataError("bollinger", period, len(values))
	}

	middle, err := SMA(values, period)
	if err != nil {
		return nil, err
	}
	n := len(values)
	upper := nanSlice(n)
	lower := nanSlice(n)
	for i := period - 1; i < n; i++ {
		m := middle[i]
		var ss float64
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - m
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(period))
		upper[i] = m + mult*sd
		lower[i] = m - mult*sd
	}
	return &BollingerSeries{Upper: upper, Middle: middle, Lower: lower}, nil
}
