// Package report renders produced signals as plain-text analysis summaries.
// The renderer only assembles strings; chat formatting and delivery belong
// to the notification consumers downstream.
package report

import (
	"fmt"
	"strings"

	"github.com/yourorg/signal-service/internal/model"
)

const maxListedLevels = 3

// Builder renders signals into multi-section text reports
type Builder struct{}

// NewBuilder creates a new report builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Build renders the signal as a text report with header, trend, level,
// pattern, scenario and verdict sections
func (b *Builder) Build(sig *model.Signal) string {
	if sig == nil {
		return ""
	}

	var sb strings.Builder
	b.writeHeader(&sb, sig)
	b.writeTrend(&sb, sig)
	b.writeLevels(&sb, sig)
	b.writeIndicators(&sb, sig)
	b.writePattern(&sb, sig)
	b.writeScenarios(&sb, sig)
	b.writeVerdict(&sb, sig)

	return strings.TrimRight(sb.String(), "\n")
}

func (b *Builder) writeHeader(sb *strings.Builder, sig *model.Signal) {
	fmt.Fprintf(sb, "Technical Analysis - %s (%s)\n", sig.Symbol, sig.Timeframe)
	fmt.Fprintf(sb, "Generated: %s\n", sig.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(sb, "Price: %s\n\n", formatPrice(sig.Price))
}

func (b *Builder) writeTrend(sb *strings.Builder, sig *model.Signal) {
	sb.WriteString("Trend\n")
	fmt.Fprintf(sb, "- Direction: %s (%s, ADX %.1f)\n", sig.Trend.Direction, sig.Trend.Strength, sig.Trend.ADX)
	if sig.Trend.HigherTimeframe != "" {
		fmt.Fprintf(sb, "- Higher timeframe %s: %s (%s)\n",
			sig.Trend.HigherTimeframe, sig.Trend.HigherDirection, sig.Trend.Agreement)
	}
	sb.WriteString("\n")
}

func (b *Builder) writeLevels(sb *strings.Builder, sig *model.Signal) {
	if len(sig.Supports) == 0 && len(sig.Resistances) == 0 && sig.Fib == nil {
		return
	}

	sb.WriteString("Levels\n")
	if len(sig.Supports) > 0 {
		fmt.Fprintf(sb, "- Supports: %s\n", formatLevels(sig.Supports))
	}
	if len(sig.Resistances) > 0 {
		fmt.Fprintf(sb, "- Resistances: %s\n", formatLevels(sig.Resistances))
	}
	if sig.Fib != nil && len(sig.Fib.Retracements) > 0 {
		fmt.Fprintf(sb, "- Fib retracements (%s leg %s -> %s): %s\n",
			sig.Fib.Direction,
			formatPrice(sig.Fib.LegLow),
			formatPrice(sig.Fib.LegHigh),
			formatFib(sig.Fib.Retracements))
	}
	sb.WriteString("\n")
}

func (b *Builder) writeIndicators(sb *strings.Builder, sig *model.Signal) {
	snap := sig.Indicators
	if snap == nil {
		return
	}

	sb.WriteString("Indicators\n")
	if snap.RSI != nil {
		fmt.Fprintf(sb, "- RSI: %.1f\n", *snap.RSI)
	}
	if snap.MACDLine != nil && snap.MACDSignal != nil {
		fmt.Fprintf(sb, "- MACD: %.4f (signal %.4f)\n", *snap.MACDLine, *snap.MACDSignal)
	}
	if snap.StochK != nil && snap.StochD != nil {
		fmt.Fprintf(sb, "- Stochastic: %%K %.1f / %%D %.1f\n", *snap.StochK, *snap.StochD)
	}
	if snap.BBLower != nil && snap.BBUpper != nil {
		fmt.Fprintf(sb, "- Bollinger: %s - %s\n", formatPrice(*snap.BBLower), formatPrice(*snap.BBUpper))
	}
	sb.WriteString("\n")
}

func (b *Builder) writePattern(sb *strings.Builder, sig *model.Signal) {
	top, ok := topPattern(sig)
	if !ok {
		return
	}

	sb.WriteString("Pattern\n")
	fmt.Fprintf(sb, "- %s (%s, %.0f%% confidence)\n", patternName(top.Kind), top.Bias, top.Confidence)
	if top.Activation > 0 {
		fmt.Fprintf(sb, "- Activation: %s\n", formatPrice(top.Activation))
	}
	if top.Target > 0 {
		fmt.Fprintf(sb, "- Target: %s\n", formatPrice(top.Target))
	}
	if top.Invalidation > 0 {
		fmt.Fprintf(sb, "- Invalidation: %s\n", formatPrice(top.Invalidation))
	}
	sb.WriteString("\n")
}

// writeScenarios sketches bullish, neutral and bearish outcomes with rough
// probabilities derived from the top pattern bias
func (b *Builder) writeScenarios(sb *strings.Builder, sig *model.Signal) {
	top, hasPattern := topPattern(sig)

	bull, bear := 40, 40
	if hasPattern {
		switch top.Bias {
		case model.BiasBullish:
			bull, bear = int(top.Confidence), 15
		case model.BiasBearish:
			bull, bear = 15, int(top.Confidence)
		}
	}
	neutral := 100 - bull - bear

	activation := sig.Price * 1.01
	invalidation := sig.Price * 0.99
	target := sig.Price * 1.05
	stop := sig.Price * 0.95
	if hasPattern {
		if top.Activation > 0 {
			activation = top.Activation
		}
		if top.Invalidation > 0 {
			invalidation = top.Invalidation
		}
		if top.Target > 0 {
			target = top.Target
		}
		if top.Stop > 0 {
			stop = top.Stop
		}
	}

	sb.WriteString("Scenarios\n")
	fmt.Fprintf(sb, "- Bullish (%d%%): break above %s targets %s\n", bull, formatPrice(activation), formatPrice(target))
	fmt.Fprintf(sb, "- Neutral (%d%%): range trade between %s - %s\n", neutral, formatPrice(invalidation), formatPrice(activation))
	fmt.Fprintf(sb, "- Bearish (%d%%): break below %s targets %s\n", bear, formatPrice(invalidation), formatPrice(stop))
	sb.WriteString("\n")
}

func (b *Builder) writeVerdict(sb *strings.Builder, sig *model.Signal) {
	sb.WriteString("Verdict\n")
	fmt.Fprintf(sb, "- %s with %.1f%% confidence (score %.1f)\n", sig.Direction, sig.Confidence, sig.Score)

	if plan := sig.Plan; plan != nil {
		fmt.Fprintf(sb, "- Entry: %s\n", formatPrice(plan.Entry))
		fmt.Fprintf(sb, "- Stop loss: %s\n", formatPrice(plan.StopLoss))
		if len(plan.Targets) > 0 {
			parts := make([]string, len(plan.Targets))
			for i, tg := range plan.Targets {
				parts[i] = formatPrice(tg)
			}
			fmt.Fprintf(sb, "- Targets: %s\n", strings.Join(parts, " -> "))
		}
		fmt.Fprintf(sb, "- Risk/Reward: %.2f\n", plan.RiskReward)
	}

	if len(sig.Reasons) > 0 {
		sb.WriteString("\nSignals\n")
		for _, reason := range sig.Reasons {
			fmt.Fprintf(sb, "- %s\n", reason)
		}
	}
}

func topPattern(sig *model.Signal) (model.Pattern, bool) {
	if len(sig.Patterns) == 0 {
		return model.Pattern{}, false
	}
	return sig.Patterns[0], true
}

func patternName(kind model.PatternKind) string {
	return strings.ReplaceAll(string(kind), "_", " ")
}

func formatLevels(levels []model.PriceLevel) string {
	n := len(levels)
	if n > maxListedLevels {
		n = maxListedLevels
	}
	parts := make([]string, 0, n)
	for _, l := range levels[:n] {
		parts = append(parts, fmt.Sprintf("%s (x%d)", formatPrice(l.Price), l.Strength))
	}
	return strings.Join(parts, ", ")
}

func formatFib(levels []model.FibLevel) string {
	parts := make([]string, 0, len(levels))
	for _, l := range levels {
		parts = append(parts, fmt.Sprintf("%.1f%% %s", l.Ratio*100, formatPrice(l.Price)))
	}
	return strings.Join(parts, ", ")
}

// formatPrice keeps more decimals for sub-dollar symbols so levels stay
// distinguishable across asset classes
func formatPrice(p float64) string {
	switch {
	case p >= 100:
		return fmt.Sprintf("$%.2f", p)
	case p >= 1:
		return fmt.Sprintf("$%.4f", p)
	default:
		return fmt.Sprintf("$%.6f", p)
	}
}
