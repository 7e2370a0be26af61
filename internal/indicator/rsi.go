package indicator

import (
	"fmt"

	"github.com/yourorg/signal-service/internal/model"
)

// RSI returns the Relative Strength Index using Wilder smoothing.
// The first value appears at index period; it is seeded with the simple
// average of the first period gains and losses.
func RSI(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("rsi period must be positive, got %d", period)
	}
	if len(values) < period+1 {
		return nil, model.NewInsufficientDataError("rsi", period+1, len(values))
	}
	out := nanSlice(len(values))

	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gainSum += change
		} else {
			lossSum -= change
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		var gain, loss float64
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
