package pattern

import (
	"github.com/yourorg/signal-service/internal/model"
)

type trendLine struct {
	slope     float64
	intercept float64
	rSquared  float64
}

func (l trendLine) at(index int) float64 {
	return l.slope*float64(index) + l.intercept
}

// fitSwingLine regresses swing prices against their candle indexes
func fitSwingLine(points []model.SwingPoint) trendLine {
	n := float64(len(points))
	if n == 0 {
		return trendLine{}
	}
	var sumX, sumY, sumXY, sumXX float64
	for _, p := range points {
		x := float64(p.Index)
		sumX += x
		sumY += p.Price
		sumXY += x * p.Price
		sumXX += x * x
	}
	den := n*sumXX - sumX*sumX
	if den == 0 {
		return trendLine{intercept: sumY / n, rSquared: 1}
	}
	slope := (n*sumXY - sumX*sumY) / den
	intercept := (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for _, p := range points {
		pred := slope*float64(p.Index) + intercept
		ssRes += (p.Price - pred) * (p.Price - pred)
		ssTot += (p.Price - meanY) * (p.Price - meanY)
	}
	r2 := 1.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}
	return trendLine{slope: slope, intercept: intercept, rSquared: r2}
}

func swingsOfKind(swings []model.SwingPoint, kind model.SwingKind) []model.SwingPoint {
	out := make([]model.SwingPoint, 0, len(swings))
	for _, s := range swings {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

func swingsFromIndex(swings []model.SwingPoint, from int) []model.SwingPoint {
	out := make([]model.SwingPoint, 0, len(swings))
	for _, s := range swings {
		if s.Index >= from {
			out = append(out, s)
		}
	}
	return out
}

func maxSwingPrice(swings []model.SwingPoint) float64 {
	max := swings[0].Price
	for _, s := range swings[1:] {
		if s.Price > max {
			max = s.Price
		}
	}
	return max
}

func minSwingPrice(swings []model.SwingPoint) float64 {
	min := swings[0].Price
	for _, s := range swings[1:] {
		if s.Price < min {
			min = s.Price
		}
	}
	return min
}

func lastSwingIndex(swings []model.SwingPoint) int {
	last := swings[0].Index
	for _, s := range swings[1:] {
		if s.Index > last {
			last = s.Index
		}
	}
	return last
}
