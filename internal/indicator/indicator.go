// Package indicator computes technical indicators over candle series.
// All calculations walk slices in index order so repeated runs over the
// same input produce identical output. Result slices keep the input
// length and are NaN-padded before the warm-up window of each indicator.
package indicator

import (
	"math"
)

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func trueRange(high, low, prevClose float64) float64 {
	tr := high - low
	if d := math.Abs(high - prevClose); d > tr {
		tr = d
	}
	if d := math.Abs(low - prevClose); d > tr {
		tr = d
	}
	return tr
}

func windowExtremes(values []float64, from, to int) (min, max float64) {
	min, max = values[from], values[from]
	for i := from + 1; i <= to; i++ {
		if values[i] < min {
			min = values[i]
		}
		if values[i] > max {
			max = values[i]
		}
	}
	return min, max
}
