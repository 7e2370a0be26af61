package pattern

import (
	"math"

	"github.com/yourorg/signal-service/internal/model"
)

// DetectEngulfing checks whether the last candle's body fully engulfs
// the previous candle's body in the opposite direction.
func DetectEngulfing(ctx Context, cfg Config) []model.Pattern {
	candles := ctx.Series.Candles
	n := len(candles)
	if n < 2 {
		return nil
	}
	prev, curr := candles[n-2], candles[n-1]
	if math.Abs(curr.Open-curr.Close) < cfg.MinBodySize || math.Abs(prev.Open-prev.Close) < cfg.MinBodySize {
		return nil
	}

	prevBearish := prev.Close < prev.Open
	currBullish := curr.Close > curr.Open
	if prevBearish && currBullish && curr.Open < prev.Close && curr.Close > prev.Open {
		return []model.Pattern{{
			Kind:       model.PatternEngulfing,
			Bias:       model.BiasBullish,
			Confidence: dynamicConfidence(ctx, cfg, 60, true),
			StartIndex: n - 2,
			EndIndex:   n - 1,
		}}
	}
	if !prevBearish && !currBullish && curr.Open > prev.Close && curr.Close < prev.Open {
		return []model.Pattern{{
			Kind:       model.PatternEngulfing,
			Bias:       model.BiasBearish,
			Confidence: dynamicConfidence(ctx, cfg, 60, false),
			StartIndex: n - 2,
			EndIndex:   n - 1,
		}}
	}
	return nil
}

// DetectHammer checks the last candle for a small body near the top with
// a long lower wick.
func DetectHammer(ctx Context, cfg Config) []model.Pattern {
	candles := ctx.Series.Candles
	n := len(candles)
	if n < 1 {
		return nil
	}
	c := candles[n-1]
	candleRange := c.High - c.Low
	if candleRange == 0 {
		return nil
	}

	const bodyRatio = 0.3
	const lowerWickRatio = 0.6
	body := math.Abs(c.Open - c.Close)
	upperWick := c.High - math.Max(c.Open, c.Close)
	lowerWick := math.Min(c.Open, c.Close) - c.Low

	smallBody := body <= bodyRatio*candleRange
	longLowerWick := lowerWick >= lowerWickRatio*candleRange
	smallUpperWick := upperWick <= (1-lowerWickRatio-bodyRatio+0.1)*candleRange
	if !(smallBody && longLowerWick && smallUpperWick) {
		return nil
	}
	return []model.Pattern{{
		Kind:       model.PatternHammer,
		Bias:       model.BiasBullish,
		Confidence: dynamicConfidence(ctx, cfg, 55, true),
		StartIndex: n - 1,
		EndIndex:   n - 1,
	}}
}

// DetectDoji checks the last candle for a near-zero body relative to its range
func DetectDoji(ctx Context, cfg Config) []model.Pattern {
	candles := ctx.Series.Candles
	n := len(candles)
	if n < 1 {
		return nil
	}
	c := candles[n-1]
	candleRange := c.High - c.Low
	if candleRange == 0 {
		return nil
	}

	const bodyThreshold = 0.05
	if math.Abs(c.Open-c.Close)/candleRange >= bodyThreshold {
		return nil
	}
	return []model.Pattern{{
		Kind:       model.PatternDoji,
		Bias:       model.BiasNeutral,
		Confidence: 40,
		StartIndex: n - 1,
		EndIndex:   n - 1,
	}}
}
