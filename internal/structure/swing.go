package structure

import (
	"github.com/yourorg/signal-service/internal/model"
)

// DetectSwings returns the confirmed swing highs and lows of a series,
// ordered by candle index. A candle is a swing high when its high exceeds
// every other high inside the symmetric window of size window on each
// side; candles without a full window on both sides are never confirmed.
// Equal extremes inside one window resolve to the earliest index.
func DetectSwings(series *model.CandleSeries, window int) []model.SwingPoint {
	if window <= 0 || series == nil {
		return nil
	}
	candles := series.Candles
	n := len(candles)
	swings := make([]model.SwingPoint, 0)

	for i := window; i < n-window; i++ {
		if isSwingHigh(candles, i, window) {
			swings = append(swings, model.SwingPoint{
				Index: i,
				Time:  candles[i].OpenTime,
				Price: candles[i].High,
				Kind:  model.SwingHigh,
			})
		}
		if isSwingLow(candles, i, window) {
			swings = append(swings, model.SwingPoint{
				Index: i,
				Time:  candles[i].OpenTime,
				Price: candles[i].Low,
				Kind:  model.SwingLow,
			})
		}
	}
	return swings
}

func isSwingHigh(candles []model.Candle, i, window int) bool {
	h := candles[i].High
	for j := i - window; j <= i+window; j++ {
		if j == i {
			continue
		}
		if candles[j].High > h {
			return false
		}
		// An equal high at an earlier index wins the tie.
		if candles[j].High == h && j < i {
			return false
		}
	}
	return true
}

func isSwingLow(candles []model.Candle, i, window int) bool {
	l := candles[i].Low
	for j := i - window; j <= i+window; j++ {
		if j == i {
			continue
		}
		if candles[j].Low < l {
			return false
		}
		if candles[j].Low == l && j < i {
			return false
		}
	}
	return true
}

// CurrentLeg returns the swing pair describing the most recent directional
// move. A terminal swing high pairs with the latest prior low into an
// up-leg; a terminal swing low pairs with the latest prior high into a
// down-leg. ok is false when no opposing swing precedes the last one.
func CurrentLeg(swings []model.SwingPoint) (low, high model.SwingPoint, direction model.LegDirection, ok bool) {
	if len(swings) == 0 {
		return model.SwingPoint{}, model.SwingPoint{}, "", false
	}
	last := swings[len(swings)-1]
	if last.Kind == model.SwingHigh {
		for i := len(swings) - 2; i >= 0; i-- {
			if swings[i].Kind == model.SwingLow {
				return swings[i], last, model.LegUp, true
			}
		}
		return model.SwingPoint{}, model.SwingPoint{}, "", false
	}
	for i := len(swings) - 2; i >= 0; i-- {
		if swings[i].Kind == model.SwingHigh {
			return last, swings[i], model.LegDown, true
		}
	}
	return model.SwingPoint{}, model.SwingPoint{}, "", false
}
