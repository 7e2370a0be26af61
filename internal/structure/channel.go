package structure

import (
	"math"

	"github.com/yourorg/signal-service/internal/model"
)

// ComputeChannel fits a least-squares line through the closes of the last
// lookback candles and places the channel bounds mult residual standard
// deviations around its value at the last candle.
func ComputeChannel(series *model.CandleSeries, lookback int, mult float64) (*model.Channel, error) {
	if series.Len() < lookback {
		return nil, model.NewInsufficientDataError("channel", lookback, series.Len())
	}
	closes := series.Closes()
	window := closes[len(closes)-lookback:]

	slope, intercept := fitLine(window)
	var ss float64
	for i, v := range window {
		r := v - (slope*float64(i) + intercept)
		ss += r * r
	}
	std := math.Sqrt(ss / float64(len(window)))

	trendAtLast := slope*float64(len(window)-1) + intercept
	return &model.Channel{
		Upper: trendAtLast + mult*std,
		Lower: trendAtLast - mult*std,
		Slope: slope,
	}, nil
}

func fitLine(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	den := n*sumXX - sumX*sumX
	if den == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / den
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
