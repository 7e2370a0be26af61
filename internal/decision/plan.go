package decision

import (
	"math"
	"sort"

	"github.com/yourorg/signal-service/internal/model"
)

// buildPlan derives entry, stop, and targets from the detected structure.
// The stop is the nearest level against the trade, padded by the buffer;
// targets are the next levels in the trade direction, nearest first.
func (e *Engine) buildPlan(in Input, direction model.Direction, cfg Config) (*model.TradePlan, error) {
	last, _ := in.Series.Last()
	entry := last.Close
	if in.Structure != nil {
		if p, ok := topPattern(in.Structure.Patterns, cfg.MinPatternConfidence); ok && p.Activation > 0 {
			if (direction == model.DirectionBuy && p.Bias == model.BiasBullish) ||
				(direction == model.DirectionSell && p.Bias == model.BiasBearish) {
				entry = p.Activation
			}
		}
	}

	stop, err := e.pickStop(in.Structure, entry, direction, cfg)
	if err != nil {
		return nil, err
	}

	targets := e.pickTargets(in.Structure, entry, direction, cfg)
	if len(targets) == 0 {
		return nil, &model.InvalidLevelError{Reason: "no target level beyond entry"}
	}

	risk := math.Abs(entry - stop)
	reward := math.Abs(targets[0] - entry)
	plan := &model.TradePlan{
		Entry:      entry,
		StopLoss:   stop,
		Targets:    targets,
		RiskReward: reward / risk,
	}
	return plan, nil
}

// pickStop selects the nearest structural level on the losing side of the
// entry. The nearest level gives the tightest stop; when even that exceeds
// the risk limit no farther level can do better.
func (e *Engine) pickStop(st *model.Structure, entry float64, direction model.Direction, cfg Config) (float64, error) {
	candidates := stopCandidates(st, entry, direction)
	if len(candidates) == 0 {
		return 0, &model.InvalidLevelError{Reason: "no structural level against the trade"}
	}

	var stop float64
	if direction == model.DirectionBuy {
		level := candidates[len(candidates)-1]
		stop = level * (1 - cfg.StopBuffer)
	} else {
		level := candidates[0]
		stop = level * (1 + cfg.StopBuffer)
	}

	riskPct := math.Abs(entry-stop) / entry * 100
	if riskPct > cfg.MaxRiskPct {
		return 0, &model.InvalidLevelError{Reason: "nearest stop exceeds risk limit"}
	}
	return stop, nil
}

// stopCandidates gathers level prices on the losing side, sorted ascending
func stopCandidates(st *model.Structure, entry float64, direction model.Direction) []float64 {
	if st == nil {
		return nil
	}
	var pool []float64
	if direction == model.DirectionBuy {
		pool = append(pool, sortedLevelPrices(st.Supports)...)
	} else {
		pool = append(pool, sortedLevelPrices(st.Resistances)...)
	}
	if st.Fib != nil {
		for _, lvl := range st.Fib.Retracements {
			pool = append(pool, lvl.Price)
		}
	}

	out := make([]float64, 0, len(pool))
	for _, p := range pool {
		if direction == model.DirectionBuy && p < entry {
			out = append(out, p)
		} else if direction == model.DirectionSell && p > entry {
			out = append(out, p)
		}
	}
	sort.Float64s(out)
	return out
}

// pickTargets returns up to MaxTargets levels in the trade direction,
// nearest first, merging nearly equal levels.
func (e *Engine) pickTargets(st *model.Structure, entry float64, direction model.Direction, cfg Config) []float64 {
	if st == nil {
		return nil
	}
	var pool []float64
	if direction == model.DirectionBuy {
		pool = append(pool, sortedLevelPrices(st.Resistances)...)
	} else {
		pool = append(pool, sortedLevelPrices(st.Supports)...)
	}
	if st.Fib != nil {
		for _, lvl := range st.Fib.Extensions {
			pool = append(pool, lvl.Price)
		}
	}

	filtered := make([]float64, 0, len(pool))
	for _, p := range pool {
		if direction == model.DirectionBuy && p > entry {
			filtered = append(filtered, p)
		} else if direction == model.DirectionSell && p < entry {
			filtered = append(filtered, p)
		}
	}
	if direction == model.DirectionBuy {
		sort.Float64s(filtered)
	} else {
		sort.Sort(sort.Reverse(sort.Float64Slice(filtered)))
	}

	targets := make([]float64, 0, cfg.MaxTargets)
	for _, p := range filtered {
		if len(targets) > 0 && math.Abs(p-targets[len(targets)-1])/entry < 0.001 {
			continue
		}
		targets = append(targets, p)
		if len(targets) == cfg.MaxTargets {
			break
		}
	}
	return targets
}
