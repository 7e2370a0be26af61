package model

import (
	"time"
)

// Direction represents the trade direction recommended by a signal
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
	DirectionHold Direction = "HOLD"
)

// TrendDirection represents the classified direction of a price trend
type TrendDirection string

const (
	TrendUp       TrendDirection = "UP"
	TrendDown     TrendDirection = "DOWN"
	TrendSideways TrendDirection = "SIDEWAYS"
)

// TrendStrength represents the ADX-based strength bucket of a trend
type TrendStrength string

const (
	StrengthWeak     TrendStrength = "weak"
	StrengthModerate TrendStrength = "moderate"
	StrengthStrong   TrendStrength = "strong"
)

// Agreement represents how the higher timeframe relates to the analyzed one
type Agreement string

const (
	AgreementAgree    Agreement = "AGREE"
	AgreementDisagree Agreement = "DISAGREE"
	AgreementNeutral  Agreement = "NEUTRAL"
)

// TrendInfo represents the trend verdict for a series and its higher timeframe
type TrendInfo struct {
	Direction       TrendDirection `json:"direction"`
	Strength        TrendStrength  `json:"strength"`
	ADX             float64        `json:"adx"`
	HigherTimeframe Timeframe      `json:"higher_timeframe,omitempty"`
	HigherDirection TrendDirection `json:"higher_direction,omitempty"`
	Agreement       Agreement      `json:"agreement"`
}

// TradePlan represents the executable levels attached to a non-hold signal.
// Targets are ordered away from the entry in the trade direction.
type TradePlan struct {
	Entry      float64   `json:"entry"`
	StopLoss   float64   `json:"stop_loss"`
	Targets    []float64 `json:"targets"`
	RiskReward float64   `json:"risk_reward"`
}

// Signal represents the full outcome of analyzing one symbol and timeframe.
// A signal is a value object and is never mutated after creation.
type Signal struct {
	Symbol      string             `json:"symbol"`
	Timeframe   Timeframe          `json:"timeframe"`
	Direction   Direction          `json:"direction"`
	Confidence  float64            `json:"confidence"`
	Score       float64            `json:"score"`
	Trend       TrendInfo          `json:"trend"`
	Reasons     []string           `json:"reasons"`
	Supports    []PriceLevel       `json:"supports"`
	Resistances []PriceLevel       `json:"resistances"`
	Fib         *FibLevels         `json:"fib,omitempty"`
	Patterns    []Pattern          `json:"patterns,omitempty"`
	Indicators  *IndicatorSnapshot `json:"indicators,omitempty"`
	Price       float64            `json:"price"`
	Plan        *TradePlan         `json:"plan,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// AnalyzeRequest represents the payload for requesting a signal
type AnalyzeRequest struct {
	Symbol    string `json:"symbol" binding:"required"`
	Timeframe string `json:"timeframe" binding:"required"`
}

// BacktestRequest represents the payload for running a historical replay
type BacktestRequest struct {
	Symbol    string     `json:"symbol" binding:"required"`
	Timeframe string     `json:"timeframe" binding:"required"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}
