package report

import (
	"strings"
	"testing"
	"time"

	"github.com/yourorg/signal-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullSignal() *model.Signal {
	return &model.Signal{
		Symbol:     "BTC/USDT",
		Timeframe:  model.Timeframe1h,
		Direction:  model.DirectionBuy,
		Confidence: 50,
		Score:      7.5,
		Price:      64250.5,
		Trend: model.TrendInfo{
			Direction:       model.TrendUp,
			Strength:        model.StrengthStrong,
			ADX:             42.1,
			HigherTimeframe: model.Timeframe4h,
			HigherDirection: model.TrendUp,
			Agreement:       model.AgreementAgree,
		},
		Supports: []model.PriceLevel{
			{Price: 63800, Kind: model.LevelSupport, Strength: 3, Source: model.SourcePivot},
			{Price: 63200, Kind: model.LevelSupport, Strength: 2, Source: model.SourcePivot},
			{Price: 62500, Kind: model.LevelSupport, Strength: 2, Source: model.SourcePivot},
			{Price: 61000, Kind: model.LevelSupport, Strength: 1, Source: model.SourceChannel},
		},
		Resistances: []model.PriceLevel{
			{Price: 64800, Kind: model.LevelResistance, Strength: 2, Source: model.SourcePivot},
		},
		Fib: &model.FibLevels{
			Direction: model.LegUp,
			LegLow:    61000,
			LegHigh:   65800,
			Retracements: []model.FibLevel{
				{Ratio: 0.382, Price: 63966.4},
				{Ratio: 0.618, Price: 62833.6},
			},
		},
		Patterns: []model.Pattern{
			{
				Kind:         model.PatternDoubleBottom,
				Bias:         model.BiasBullish,
				Confidence:   80,
				Activation:   64900,
				Invalidation: 63100,
				Target:       66500,
				Stop:         62900,
			},
		},
		Indicators: &model.IndicatorSnapshot{
			RSI:        model.Float64Ptr(25.3),
			MACDLine:   model.Float64Ptr(120.5),
			MACDSignal: model.Float64Ptr(98.2),
			StochK:     model.Float64Ptr(18.4),
			StochD:     model.Float64Ptr(15.1),
			BBUpper:    model.Float64Ptr(65500),
			BBLower:    model.Float64Ptr(62800),
		},
		Reasons: []string{"rsi oversold (25.3)", "macd bullish cross"},
		Plan: &model.TradePlan{
			Entry:      64250.5,
			StopLoss:   63481,
			Targets:    []float64{64800, 65800, 66500},
			RiskReward: 0.71,
		},
		GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildFullReportSections(t *testing.T) {
	text := NewBuilder().Build(fullSignal())

	assert.Contains(t, text, "Technical Analysis - BTC/USDT (1h)")
	assert.Contains(t, text, "Generated: 2024-06-01 12:00:00 UTC")
	assert.Contains(t, text, "Price: $64250.50")

	// Sections render in a fixed order.
	order := []string{"Trend\n", "Levels\n", "Indicators\n", "Pattern\n", "Scenarios\n", "Verdict\n", "Signals\n"}
	last := -1
	for _, section := range order {
		idx := strings.Index(text, section)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", section)
		assert.Greater(t, idx, last, "section %q out of order", section)
		last = idx
	}
}

func TestBuildTrendAndLevels(t *testing.T) {
	text := NewBuilder().Build(fullSignal())

	assert.Contains(t, text, "- Direction: UP (strong, ADX 42.1)")
	assert.Contains(t, text, "- Higher timeframe 4h: UP (AGREE)")

	// Only the three strongest supports are listed.
	assert.Contains(t, text, "- Supports: $63800.00 (x3), $63200.00 (x2), $62500.00 (x2)")
	assert.NotContains(t, text, "$61000.00 (x1)")
	assert.Contains(t, text, "- Resistances: $64800.00 (x2)")
	assert.Contains(t, text, "Fib retracements (up leg $61000.00 -> $65800.00): 38.2% $63966.40, 61.8% $62833.60")
}

func TestBuildPatternAndScenarios(t *testing.T) {
	text := NewBuilder().Build(fullSignal())

	assert.Contains(t, text, "- double bottom (bullish, 80% confidence)")
	assert.Contains(t, text, "- Activation: $64900.00")
	assert.Contains(t, text, "- Invalidation: $63100.00")

	assert.Contains(t, text, "- Bullish (80%): break above $64900.00 targets $66500.00")
	assert.Contains(t, text, "- Neutral (5%): range trade between $63100.00 - $64900.00")
	assert.Contains(t, text, "- Bearish (15%): break below $63100.00 targets $62900.00")
}

func TestBuildVerdictWithPlan(t *testing.T) {
	text := NewBuilder().Build(fullSignal())

	assert.Contains(t, text, "- BUY with 50.0% confidence (score 7.5)")
	assert.Contains(t, text, "- Entry: $64250.50")
	assert.Contains(t, text, "- Stop loss: $63481.00")
	assert.Contains(t, text, "- Targets: $64800.00 -> $65800.00 -> $66500.00")
	assert.Contains(t, text, "- Risk/Reward: 0.71")
	assert.Contains(t, text, "- rsi oversold (25.3)")
}

func TestBuildHoldWithoutPlan(t *testing.T) {
	sig := &model.Signal{
		Symbol:      "ETH/USDT",
		Timeframe:   model.Timeframe4h,
		Direction:   model.DirectionHold,
		Confidence:  10,
		Score:       0.5,
		Price:       3200,
		Trend:       model.TrendInfo{Direction: model.TrendSideways, Strength: model.StrengthWeak},
		GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	text := NewBuilder().Build(sig)

	assert.Contains(t, text, "- HOLD with 10.0% confidence")
	assert.NotContains(t, text, "- Entry:")
	assert.NotContains(t, text, "Levels\n")
	assert.NotContains(t, text, "Pattern\n")

	// Scenario probabilities fall back to the neutral split around price.
	assert.Contains(t, text, "- Bullish (40%): break above $3232.00 targets $3360.00")
	assert.Contains(t, text, "- Neutral (20%)")
}

func TestBuildNilSignal(t *testing.T) {
	assert.Equal(t, "", NewBuilder().Build(nil))
}

func TestFormatPricePrecision(t *testing.T) {
	assert.Equal(t, "$64250.50", formatPrice(64250.5))
	assert.Equal(t, "$12.3456", formatPrice(12.3456))
	assert.Equal(t, "$0.123456", formatPrice(0.123456))
}
