package indicator

import (
	"fmt"

	"github.com/yourorg/signal-service/internal/model"
)

// SMA returns the simple moving average of values over the given period.
// The result has the same length as the input; entries before index
// period-1 are NaN.
func SMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("sma period must be positive, got %d", period)
	}
	if len(values) < period {
		return nil, model.NewInsufficientDataError("sma", period, len(values))
	}
	out := nanSlice(len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out, nil
}

// EMA returns the exponential moving average of values over the given
// period, seeded with the simple average of the first period values.
func EMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("ema period must be positive, got %d", period)
	}
	if len(values) < period {
		return nil, model.NewInsufficientDataError("ema", period, len(values))
	}
	out := nanSlice(len(values))
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	prev := sum / float64(period)
	out[period-1] = prev
	k := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		prev = values[i]*k + prev*(1-k)
		out[i] = prev
	}
	return out, nil
}
