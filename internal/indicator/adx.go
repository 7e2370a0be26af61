package indicator

import (
	"fmt"
	"math"

	"github.com/yourorg/signal-service/internal/model"
)

// ADX returns the Average Directional Index with Wilder smoothing of the
// directional movements and the true range. The first value appears at
// index 2*period-1.
func ADX(highs, lows, closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("adx period must be positive, got %d", period)
	}
	n := len(closes)
	if len(highs) != n || len(lows) != n {
		return nil, fmt.Errorf("adx input length mismatch: highs=%d lows=%d closes=%d", len(highs), len(lows), n)
	}
	min := 2*period + 1
	if n < min {
		return nil, model.NewInsufficientDataError("adx", min, n)
	}

	out := nanSlice(n)
	var trSum, plusSum, minusSum float64
	var dxCount int
	var dxSum, prevADX float64

	for i := 1; i < n; i++ {
		tr := trueRange(highs[i], lows[i], closes[i-1])
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		var plus, minus float64
		if up > down && up > 0 {
			plus = up
		}
		if down > up && down > 0 {
			minus = down
		}

		if i <= period {
			trSum += tr
			plusSum += plus
			minusSum += minus
			if i < period {
				continue
			}
		} else {
			trSum = trSum - trSum/float64(period) + tr
			plusSum = plusSum - plusSum/float64(period) + plus
			minusSum = minusSum - minusSum/float64(period) + minus
		}

		var dx float64
		if trSum != 0 {
			plusDI := 100 * plusSum / trSum
			minusDI := 100 * minusSum / trSum
			if s := plusDI + minusDI; s != 0 {
				dx = 100 * math.Abs(plusDI-minusDI) / s
			}
		}

		dxCount++
		if dxCount < period {
			dxSum += dx
			continue
		}
		if dxCount == period {
			dxSum += dx
			prevADX = dxSum / float64(period)
		} else {
			prevADX = (prevADX*float64(period-1) + dx) / float64(period)
		}
		out[i] = prevADX
	}
	return out, nil
}
