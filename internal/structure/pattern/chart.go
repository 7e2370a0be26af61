package pattern

import (
	"math"

	"github.com/yourorg/signal-service/internal/model"
)

// DetectDoubleBottom looks for two swing lows within the price tolerance
// separated by at least one swing high. The highest intervening swing
// forms the neckline; breaking it projects the pattern height upwards.
func DetectDoubleBottom(ctx Context, cfg Config) []model.Pattern {
	lows := swingsOfKind(ctx.Swings, model.SwingLow)
	highs := swingsOfKind(ctx.Swings, model.SwingHigh)
	if len(lows) < 2 || len(highs) < 1 {
		return nil
	}

	for i := 0; i < len(lows)-1; i++ {
		for j := i + 1; j < len(lows); j++ {
			b1, b2 := lows[i], lows[j]
			if math.Abs(b1.Price-b2.Price)/b1.Price > cfg.PriceTolerance {
				continue
			}

			neckline, ok := highestBetween(highs, b1.Index, b2.Index)
			if !ok {
				continue
			}
			if b1.Price >= neckline || b2.Price >= neckline {
				continue
			}

			height := neckline - (b1.Price+b2.Price)/2
			floor := math.Min(b1.Price, b2.Price)
			return []model.Pattern{{
				Kind:         model.PatternDoubleBottom,
				Bias:         model.BiasBullish,
				Confidence:   dynamicConfidence(ctx, cfg, 70, true),
				StartIndex:   b1.Index,
				EndIndex:     b2.Index,
				Activation:   neckline,
				Invalidation: floor,
				Target:       neckline + height,
				Stop:         floor * 0.99,
			}}
		}
	}
	return nil
}

// DetectDoubleTop mirrors DetectDoubleBottom for two matching swing highs
func DetectDoubleTop(ctx Context, cfg Config) []model.Pattern {
	highs := swingsOfKind(ctx.Swings, model.SwingHigh)
	lows := swingsOfKind(ctx.Swings, model.SwingLow)
	if len(highs) < 2 || len(lows) < 1 {
		return nil
	}

	for i := 0; i < len(highs)-1; i++ {
		for j := i + 1; j < len(highs); j++ {
			t1, t2 := highs[i], highs[j]
			if math.Abs(t1.Price-t2.Price)/t1.Price > cfg.PriceTolerance {
				continue
			}

			neckline, ok := lowestBetween(lows, t1.Index, t2.Index)
			if !ok {
				continue
			}
			if t1.Price <= neckline || t2.Price <= neckline {
				continue
			}

			height := (t1.Price+t2.Price)/2 - neckline
			ceil := math.Max(t1.Price, t2.Price)
			return []model.Pattern{{
				Kind:         model.PatternDoubleTop,
				Bias:         model.BiasBearish,
				Confidence:   dynamicConfidence(ctx, cfg, 70, false),
				StartIndex:   t1.Index,
				EndIndex:     t2.Index,
				Activation:   neckline,
				Invalidation: ceil,
				Target:       neckline - height,
				Stop:         ceil * 1.01,
			}}
		}
	}
	return nil
}

// DetectAscendingTriangle looks for a flat resistance built from matching
// swing highs and a rising support line fitted through the swing lows
// beneath it.
func DetectAscendingTriangle(ctx Context, cfg Config) []model.Pattern {
	highs := swingsOfKind(ctx.Swings, model.SwingHigh)
	lows := swingsOfKind(ctx.Swings, model.SwingLow)
	if len(highs) < 2 || len(lows) < 2 {
		return nil
	}

	resistance, touches := flatResistance(highs, cfg.PriceTolerance)
	if touches < 2 {
		return nil
	}

	supportLows := make([]model.SwingPoint, 0, len(lows))
	for _, l := range lows {
		if l.Price < resistance {
			supportLows = append(supportLows, l)
		}
	}
	if len(supportLows) < 2 {
		return nil
	}

	support := fitSwingLine(supportLows)
	if support.slope <= 0 {
		return nil
	}
	lastIndex := ctx.Series.Len() - 1
	if support.at(lastIndex) > resistance {
		return nil
	}

	height := resistance - support.at(supportLows[0].Index)
	stop := supportLows[len(supportLows)-1].Price * 0.99
	return []model.Pattern{{
		Kind:         model.PatternAscendingTriangle,
		Bias:         model.BiasBullish,
		Confidence:   dynamicConfidence(ctx, cfg, 75, true),
		StartIndex:   supportLows[0].Index,
		EndIndex:     lastSwingIndex(supportLows),
		Activation:   resistance,
		Invalidation: stop,
		Target:       resistance + height,
		Stop:         stop,
	}}
}

// DetectRisingWedge fits converging upward trend lines through the recent
// swings; a break below the support line projects the wedge height down.
func DetectRisingWedge(ctx Context, cfg Config) []model.Pattern {
	highs, lows := windowSwings(ctx, cfg)
	if len(highs) < 3 || len(lows) < 3 {
		return nil
	}

	upper := fitSwingLine(highs)
	lower := fitSwingLine(lows)
	if !(upper.slope > 0 && lower.slope > 0 && lower.slope > upper.slope) {
		return nil
	}
	if upper.rSquared < cfg.MinRSquared || lower.rSquared < cfg.MinRSquared {
		return nil
	}

	lastIndex := ctx.Series.Len() - 1
	activation := lower.at(lastIndex)
	height := maxSwingPrice(highs) - minSwingPrice(lows)
	return []model.Pattern{{
		Kind:         model.PatternRisingWedge,
		Bias:         model.BiasBearish,
		Confidence:   dynamicConfidence(ctx, cfg, wedgeBase(upper, lower, len(highs)+len(lows)), false),
		StartIndex:   minSwingIndex(highs, lows),
		EndIndex:     lastSwingIndex(append(append([]model.SwingPoint{}, highs...), lows...)),
		Activation:   activation,
		Invalidation: maxSwingPrice(highs) * 1.01,
		Target:       activation - height,
		Stop:         maxSwingPrice(highs) * 1.01,
	}}
}

// DetectFallingWedge mirrors DetectRisingWedge with downward trend lines
// converging towards a bullish break of the resistance line.
func DetectFallingWedge(ctx Context, cfg Config) []model.Pattern {
	highs, lows := windowSwings(ctx, cfg)
	if len(highs) < 3 || len(lows) < 3 {
		return nil
	}

	upper := fitSwingLine(highs)
	lower := fitSwingLine(lows)
	if !(upper.slope < 0 && lower.slope < 0 && upper.slope < lower.slope) {
		return nil
	}
	if upper.rSquared < cfg.MinRSquared || lower.rSquared < cfg.MinRSquared {
		return nil
	}

	lastIndex := ctx.Series.Len() - 1
	activation := upper.at(lastIndex)
	height := maxSwingPrice(highs) - minSwingPrice(lows)
	return []model.Pattern{{
		Kind:         model.PatternFallingWedge,
		Bias:         model.BiasBullish,
		Confidence:   dynamicConfidence(ctx, cfg, wedgeBase(upper, lower, len(highs)+len(lows)), true),
		StartIndex:   minSwingIndex(highs, lows),
		EndIndex:     lastSwingIndex(append(append([]model.SwingPoint{}, highs...), lows...)),
		Activation:   activation,
		Invalidation: minSwingPrice(lows) * 0.99,
		Target:       activation + height,
		Stop:         minSwingPrice(lows) * 0.99,
	}}
}

// DetectBullFlag looks for a strong upward pole followed by a shallow
// downward-drifting consolidation; a break of the flag's upper line
// projects the pole height upwards.
func DetectBullFlag(ctx Context, cfg Config) []model.Pattern {
	highs := swingsOfKind(ctx.Swings, model.SwingHigh)
	lows := swingsOfKind(ctx.Swings, model.SwingLow)
	if len(highs) < 2 || len(lows) < 2 {
		return nil
	}

	for i := len(lows) - 1; i >= 0; i-- {
		poleStart := lows[i]
		poleEnd, ok := highestAfter(highs, poleStart.Index)
		if !ok {
			continue
		}
		poleHeight := poleEnd.Price - poleStart.Price
		if poleHeight <= 0 {
			continue
		}

		flagHighs := swingsFromIndex(highs, poleEnd.Index+1)
		flagLows := swingsFromIndex(lows, poleEnd.Index+1)
		if len(flagHighs) < 2 || len(flagLows) < 2 {
			continue
		}

		deepest := minSwingPrice(flagLows)
		if (poleEnd.Price-deepest)/poleHeight > 0.5 {
			continue
		}

		upper := fitSwingLine(flagHighs)
		lower := fitSwingLine(flagLows)
		if upper.slope > 0 || lower.slope > 0 {
			continue
		}

		lastIndex := ctx.Series.Len() - 1
		activation := upper.at(lastIndex)
		return []model.Pattern{{
			Kind:         model.PatternBullFlag,
			Bias:         model.BiasBullish,
			Confidence:   dynamicConfidence(ctx, cfg, 70, true),
			StartIndex:   poleStart.Index,
			EndIndex:     lastSwingIndex(append(append([]model.SwingPoint{}, flagHighs...), flagLows...)),
			Activation:   activation,
			Invalidation: deepest,
			Target:       activation + poleHeight,
			Stop:         deepest * 0.99,
		}}
	}
	return nil
}

// DetectBearFlag mirrors DetectBullFlag for a downward pole with an
// upward-drifting consolidation.
func DetectBearFlag(ctx Context, cfg Config) []model.Pattern {
	highs := swingsOfKind(ctx.Swings, model.SwingHigh)
	lows := swingsOfKind(ctx.Swings, model.SwingLow)
	if len(highs) < 2 || len(lows) < 2 {
		return nil
	}

	for i := len(highs) - 1; i >= 0; i-- {
		poleStart := highs[i]
		poleEnd, ok := lowestAfter(lows, poleStart.Index)
		if !ok {
			continue
		}
		poleHeight := poleStart.Price - poleEnd.Price
		if poleHeight <= 0 {
			continue
		}

		flagHighs := swingsFromIndex(highs, poleEnd.Index+1)
		flagLows := swingsFromIndex(lows, poleEnd.Index+1)
		if len(flagHighs) < 2 || len(flagLows) < 2 {
			continue
		}

		highest := maxSwingPrice(flagHighs)
		if (highest-poleEnd.Price)/poleHeight > 0.5 {
			continue
		}

		upper := fitSwingLine(flagHighs)
		lower := fitSwingLine(flagLows)
		if upper.slope < 0 || lower.slope < 0 {
			continue
		}

		lastIndex := ctx.Series.Len() - 1
		activation := lower.at(lastIndex)
		return []model.Pattern{{
			Kind:         model.PatternBearFlag,
			Bias:         model.BiasBearish,
			Confidence:   dynamicConfidence(ctx, cfg, 70, false),
			StartIndex:   poleStart.Index,
			EndIndex:     lastSwingIndex(append(append([]model.SwingPoint{}, flagHighs...), flagLows...)),
			Activation:   activation,
			Invalidation: highest,
			Target:       activation - poleHeight,
			Stop:         highest * 1.01,
		}}
	}
	return nil
}

func wedgeBase(upper, lower trendLine, touches int) float64 {
	base := 50 + 20*(upper.rSquared+lower.rSquared)/2 + float64(touches)
	if base > 75 {
		base = 75
	}
	return base
}

func windowSwings(ctx Context, cfg Config) (highs, lows []model.SwingPoint) {
	window := cfg.SearchWindow
	if half := ctx.Series.Len() / 2; window > half {
		window = half
	}
	from := ctx.Series.Len() - window
	inWindow := swingsFromIndex(ctx.Swings, from)
	return swingsOfKind(inWindow, model.SwingHigh), swingsOfKind(inWindow, model.SwingLow)
}

func flatResistance(highs []model.SwingPoint, tolerance float64) (price float64, touches int) {
	for i := 0; i < len(highs)-1; i++ {
		for j := i + 1; j < len(highs); j++ {
			if math.Abs(highs[j].Price-highs[i].Price)/highs[i].Price > tolerance {
				continue
			}
			candidate := (highs[i].Price + highs[j].Price) / 2
			count := 0
			for _, h := range highs {
				if math.Abs(h.Price-candidate)/candidate <= tolerance {
					count++
				}
			}
			if count > touches {
				touches = count
				price = candidate
			}
		}
	}
	return price, touches
}

func highestBetween(highs []model.SwingPoint, from, to int) (float64, bool) {
	best := math.Inf(-1)
	found := false
	for _, h := range highs {
		if h.Index > from && h.Index < to && h.Price > best {
			best = h.Price
			found = true
		}
	}
	return best, found
}

func lowestBetween(lows []model.SwingPoint, from, to int) (float64, bool) {
	best := math.Inf(1)
	found := false
	for _, l := range lows {
		if l.Index > from && l.Index < to && l.Price < best {
			best = l.Price
			found = true
		}
	}
	return best, found
}

func highestAfter(highs []model.SwingPoint, after int) (model.SwingPoint, bool) {
	var best model.SwingPoint
	found := false
	for _, h := range highs {
		if h.Index > after && (!found || h.Price > best.Price) {
			best = h
			found = true
		}
	}
	return best, found
}

func lowestAfter(lows []model.SwingPoint, after int) (model.SwingPoint, bool) {
	var best model.SwingPoint
	found := false
	for _, l := range lows {
		if l.Index > after && (!found || l.Price < best.Price) {
			best = l
			found = true
		}
	}
	return best, found
}

func minSwingIndex(highs, lows []model.SwingPoint) int {
	min := math.MaxInt32
	for _, s := range highs {
		if s.Index < min {
			min = s.Index
		}
	}
	for _, s := range lows {
		if s.Index < min {
			min = s.Index
		}
	}
	return min
}
