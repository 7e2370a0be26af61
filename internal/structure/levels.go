package structure

import (
	"sort"

	"github.com/yourorg/signal-service/internal/model"
)

// BuildLevels clusters swing prices into support and resistance levels
// relative to the last close. Cluster strength counts the swings that
// formed the level. Channel bounds join the lists as single-touch levels.
// Supports are ordered nearest-below first, resistances nearest-above
// first, each capped at maxLevels.
func BuildLevels(swings []model.SwingPoint, channel *model.Channel, lastClose float64, tolerance float64, maxLevels int) (supports, resistances []model.PriceLevel) {
	prices := make([]float64, 0, len(swings))
	for _, s := range swings {
		prices = append(prices, s.Price)
	}
	sort.Float64s(prices)

	for _, cl := range clusterPrices(prices, tolerance) {
		level := model.PriceLevel{Price: cl.mean, Strength: cl.count, Source: model.SourcePivot}
		if cl.mean < lastClose {
			level.Kind = model.LevelSupport
			supports = append(supports, level)
		} else {
			level.Kind = model.LevelResistance
			resistances = append(resistances, level)
		}
	}

	if channel != nil {
		for _, bound := range []float64{channel.Lower, channel.Upper} {
			level := model.PriceLevel{Price: bound, Strength: 1, Source: model.SourceChannel}
			if bound < lastClose {
				level.Kind = model.LevelSupport
				supports = append(supports, level)
			} else {
				level.Kind = model.LevelResistance
				resistances = append(resistances, level)
			}
		}
	}

	sort.Slice(supports, func(i, j int) bool { return supports[i].Price > supports[j].Price })
	sort.Slice(resistances, func(i, j int) bool { return resistances[i].Price < resistances[j].Price })

	if maxLevels > 0 && len(supports) > maxLevels {
		supports = supports[:maxLevels]
	}
	if maxLevels > 0 && len(resistances) > maxLevels {
		resistances = resistances[:maxLevels]
	}
	return supports, resistances
}

type cluster struct {
	mean  float64
	count int
}

func clusterPrices(sorted []float64, tolerance float64) []cluster {
	if len(sorted) == 0 {
		return nil
	}
	clusters := make([]cluster, 0)
	sum := sorted[0]
	count := 1
	for _, p := range sorted[1:] {
		mean := sum / float64(count)
		if p <= mean*(1+tolerance) {
			sum += p
			count++
			continue
		}
		clusters = append(clusters, cluster{mean: mean, count: count})
		sum = p
		count = 1
	}
	clusters = append(clusters, cluster{mean: sum / float64(count), count: count})
	return clusters
}
