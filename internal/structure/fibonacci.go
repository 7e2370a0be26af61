package structure

import (
	"github.com/yourorg/signal-service/internal/model"
)

var (
	retracementRatios = []float64{0.236, 0.382, 0.5, 0.618, 0.786}
	extensionRatios   = []float64{1.618, 2.618}
)

// ComputeFib returns the Fibonacci grid of a swing leg. For an up-leg each
// level sits at low + ratio*(high-low); a down-leg mirrors from the high.
// Extension ratios continue past the leg and serve as price targets.
func ComputeFib(low, high model.SwingPoint, direction model.LegDirection) *model.FibLevels {
	span := high.Price - low.Price
	if span <= 0 {
		return nil
	}

	fib := &model.FibLevels{
		Direction: direction,
		LegHigh:   high.Price,
		LegLow:    low.Price,
	}
	for _, r := range retracementRatios {
		fib.Retracements = append(fib.Retracements, model.FibLevel{Ratio: r, Price: legLevel(low.Price, high.Price, r, direction)})
	}
	for _, r := range extensionRatios {
		fib.Extensions = append(fib.Extensions, model.FibLevel{Ratio: r, Price: legLevel(low.Price, high.Price, r, direction)})
	}
	return fib
}

func legLevel(low, high, ratio float64, direction model.LegDirection) float64 {
	span := high - low
	if direction == model.LegUp {
		return low + ratio*span
	}
	return high - ratio*span
}
