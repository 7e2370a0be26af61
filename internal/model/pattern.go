package model

// PatternKind represents a recognized chart or candlestick formation
type PatternKind string

const (
	PatternDoubleTop         PatternKind = "double_top"
	PatternDoubleBottom      PatternKind = "double_bottom"
	PatternAscendingTriangle PatternKind = "ascending_triangle"
	PatternRisingWedge       PatternKind = "rising_wedge"
	PatternFallingWedge      PatternKind = "falling_wedge"
	PatternBullFlag          PatternKind = "bull_flag"
	PatternBearFlag          PatternKind = "bear_flag"
	PatternHammer            PatternKind = "hammer"
	PatternEngulfing         PatternKind = "engulfing"
	PatternDoji              PatternKind = "doji"
)

// PatternBias represents the directional implication of a pattern
type PatternBias string

const (
	BiasBullish PatternBias = "bullish"
	BiasBearish PatternBias = "bearish"
	BiasNeutral PatternBias = "neutral"
)

// Pattern represents a detected formation with its trade-relevant prices.
// Activation, Invalidation, Target and Stop are zero when the pattern kind
// does not define them (single-candle formations).
type Pattern struct {
	Kind         PatternKind `json:"kind"`
	Bias         PatternBias `json:"bias"`
	Confidence   float64     `json:"confidence"`
	StartIndex   int         `json:"start_index"`
	EndIndex     int         `json:"end_index"`
	Activation   float64     `json:"activation,omitempty"`
	Invalidation float64     `json:"invalidation,omitempty"`
	Target       float64     `json:"target,omitempty"`
	Stop         float64     `json:"stop,omitempty"`
}
