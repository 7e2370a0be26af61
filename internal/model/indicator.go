package model

// IndicatorSnapshot represents indicator values evaluated at the last closed candle.
// Nil fields mean the series was too short for that indicator; consumers
// skip the related checks instead of failing the whole analysis.
type IndicatorSnapshot struct {
	RSI        *float64 `json:"rsi,omitempty"`
	MACDLine   *float64 `json:"macd_line,omitempty"`
	MACDSignal *float64 `json:"macd_signal,omitempty"`
	MACDHist   *float64 `json:"macd_hist,omitempty"`
	StochK     *float64 `json:"stoch_k,omitempty"`
	StochD     *float64 `json:"stoch_d,omitempty"`
	ADX        *float64 `json:"adx,omitempty"`
	EMAFast    *float64 `json:"ema_fast,omitempty"`
	EMASlow    *float64 `json:"ema_slow,omitempty"`
	BBUpper    *float64 `json:"bb_upper,omitempty"`
	BBMiddle   *float64 `json:"bb_middle,omitempty"`
	BBLower    *float64 `json:"bb_lower,omitempty"`

	// Cross flags compare the last candle against the one before it.
	MACDCrossUp    bool `json:"macd_cross_up"`
	MACDCrossDown  bool `json:"macd_cross_down"`
	StochCrossUp   bool `json:"stoch_cross_up"`
	StochCrossDown bool `json:"stoch_cross_down"`
}

// Float64Ptr returns a pointer to the given value
func Float64Ptr(v float64) *float64 {
	return &v
}
