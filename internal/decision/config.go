package decision

import (
	"github.com/yourorg/signal-service/internal/model"
)

// Weights holds the contribution of each confirming condition
type Weights struct {
	RSI        float64 `mapstructure:"rsi"`
	MACDLine   float64 `mapstructure:"macd_line"`
	MACDCross  float64 `mapstructure:"macd_cross"`
	Stochastic float64 `mapstructure:"stochastic"`
	Fib        float64 `mapstructure:"fib"`
	Bollinger  float64 `mapstructure:"bollinger"`
	Trend      float64 `mapstructure:"trend"`
	HigherTF   float64 `mapstructure:"higher_tf"`
	Pattern    float64 `mapstructure:"pattern"`
	KeyLevel   float64 `mapstructure:"key_level"`
}

// Config holds the thresholds and weights driving signal decisions
type Config struct {
	Weights              Weights `mapstructure:"weights"`
	RSIOversold          float64 `mapstructure:"rsi_oversold"`
	RSIOverbought        float64 `mapstructure:"rsi_overbought"`
	StochOversold        float64 `mapstructure:"stoch_oversold"`
	StochOverbought      float64 `mapstructure:"stoch_overbought"`
	KeyFibRatio          float64 `mapstructure:"key_fib_ratio"`
	LevelProximity       float64 `mapstructure:"level_proximity"`
	MinLevelStrength     int     `mapstructure:"min_level_strength"`
	MinPatternConfidence float64 `mapstructure:"min_pattern_confidence"`
	DirectionMargin      float64 `mapstructure:"direction_margin"`
	PlanThreshold        float64 `mapstructure:"plan_threshold"`
	StopBuffer           float64 `mapstructure:"stop_buffer"`
	MaxRiskPct           float64 `mapstructure:"max_risk_pct"`
	MaxTargets           int     `mapstructure:"max_targets"`
	ADXStrongMult        float64 `mapstructure:"adx_strong_mult"`
	ADXWeakMult          float64 `mapstructure:"adx_weak_mult"`
}

// DefaultConfig returns the standard decision settings
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			RSI:        1.5,
			MACDLine:   1.0,
			MACDCross:  2.0,
			Stochastic: 1.0,
			Fib:        1.5,
			Bollinger:  1.0,
			Trend:      2.0,
			HigherTF:   1.5,
			Pattern:    1.5,
			KeyLevel:   1.0,
		},
		RSIOversold:          30,
		RSIOverbought:        70,
		StochOversold:        20,
		StochOverbought:      80,
		KeyFibRatio:          0.618,
		LevelProximity:       0.005,
		MinLevelStrength:     2,
		MinPatternConfidence: 60,
		DirectionMargin:      1.0,
		PlanThreshold:        40,
		StopBuffer:           0.005,
		MaxRiskPct:           5.0,
		MaxTargets:           3,
		ADXStrongMult:        1.5,
		ADXWeakMult:          0.5,
	}
}

// maxScore is the highest one-sided score the configuration can reach,
// used to normalize confidence.
func (c Config) maxScore() float64 {
	w := c.Weights
	return w.RSI + w.MACDLine + w.MACDCross + w.Stochastic + w.Fib + w.Bollinger +
		w.Trend*c.ADXStrongMult + w.HigherTF + w.Pattern + w.KeyLevel
}

// GroupConfigs resolves decision settings per timeframe group. Group
// entries are overrides: fields left at zero fall back to the default.
type GroupConfigs struct {
	Default    Config            `mapstructure:"default"`
	Groups     map[string]Config `mapstructure:"groups"`
	Timeframes map[string]string `mapstructure:"timeframes"`
}

// For returns the decision config for a timeframe, overlaying the group
// override on the default.
func (g GroupConfigs) For(tf model.Timeframe) Config {
	cfg := g.Default
	group, ok := g.Timeframes[tf.String()]
	if !ok {
		return cfg
	}
	override, ok := g.Groups[group]
	if !ok {
		return cfg
	}
	return mergeConfig(cfg, override)
}

func mergeConfig(base, override Config) Config {
	overlayFloat := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	overlayInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}

	overlayFloat(&base.Weights.RSI, override.Weights.RSI)
	overlayFloat(&base.Weights.MACDLine, override.Weights.MACDLine)
	overlayFloat(&base.Weights.MACDCross, override.Weights.MACDCross)
	overlayFloat(&base.Weights.Stochastic, override.Weights.Stochastic)
	overlayFloat(&base.Weights.Fib, override.Weights.Fib)
	overlayFloat(&base.Weights.Bollinger, override.Weights.Bollinger)
	overlayFloat(&base.Weights.Trend, override.Weights.Trend)
	overlayFloat(&base.Weights.HigherTF, override.Weights.HigherTF)
	overlayFloat(&base.Weights.Pattern, override.Weights.Pattern)
	overlayFloat(&base.Weights.KeyLevel, override.Weights.KeyLevel)

	overlayFloat(&base.RSIOversold, override.RSIOversold)
	overlayFloat(&base.RSIOverbought, override.RSIOverbought)
	overlayFloat(&base.StochOversold, override.StochOversold)
	overlayFloat(&base.StochOverbought, override.StochOverbought)
	overlayFloat(&base.KeyFibRatio, override.KeyFibRatio)
	overlayFloat(&base.LevelProximity, override.LevelProximity)
	overlayInt(&base.MinLevelStrength, override.MinLevelStrength)
	overlayFloat(&base.MinPatternConfidence, override.MinPatternConfidence)
	overlayFloat(&base.DirectionMargin, override.DirectionMargin)
	overlayFloat(&base.PlanThreshold, override.PlanThreshold)
	overlayFloat(&base.StopBuffer, override.StopBuffer)
	overlayFloat(&base.MaxRiskPct, override.MaxRiskPct)
	overlayInt(&base.MaxTargets, override.MaxTargets)
	overlayFloat(&base.ADXStrongMult, override.ADXStrongMult)
	overlayFloat(&base.ADXWeakMult, override.ADXWeakMult)

	return base
}
