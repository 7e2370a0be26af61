package pattern

// dynamicConfidence adjusts a base confidence with volume, trend strength
// and momentum confirmations, capped at 98.
func dynamicConfidence(ctx Context, cfg Config, base float64, bullish bool) float64 {
	confidence := base

	if spike := volumeSpike(ctx, cfg); spike {
		confidence += 10
	}
	if ctx.ADX != nil && *ctx.ADX > cfg.ADXThreshold {
		confidence += 10
	}
	if ctx.RSI != nil {
		if bullish && *ctx.RSI < cfg.RSIHeadroom {
			confidence += 5
		}
		if !bullish && *ctx.RSI > 100-cfg.RSIHeadroom {
			confidence += 5
		}
	}

	if confidence > 98 {
		confidence = 98
	}
	return confidence
}

// volumeSpike reports whether the last candle traded above the 20 candle
// average volume by the configured ratio.
func volumeSpike(ctx Context, cfg Config) bool {
	volumes := ctx.Series.Volumes()
	const window = 20
	if len(volumes) < window {
		return false
	}
	var sum float64
	for _, v := range volumes[len(volumes)-window:] {
		sum += v
	}
	avg := sum / window
	return avg > 0 && volumes[len(volumes)-1] > avg*cfg.VolumeSpikeRatio
}
