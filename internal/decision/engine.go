// Package decision turns indicator, structure, and trend evidence into
// trade signals. Conditions are evaluated in a fixed order and contribute
// configured weights to a bullish or bearish score; the dominant side is
// normalized against the highest attainable score to produce confidence.
package decision

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/signal-service/internal/model"
)

// Input carries the analysis artifacts a decision is based on
type Input struct {
	Series    *model.CandleSeries
	Snapshot  *model.IndicatorSnapshot
	Structure *model.Structure
	Trend     model.TrendInfo
	Now       time.Time
}

// Engine scores analysis inputs and emits signals with optional trade plans
type Engine struct {
	cfgs   GroupConfigs
	logger *zap.Logger
}

// NewEngine creates a decision engine with per-group configuration
func NewEngine(cfgs GroupConfigs, logger *zap.Logger) *Engine {
	return &Engine{
		cfgs:   cfgs,
		logger: logger,
	}
}

// scorecard accumulates weighted evidence for both sides
type scorecard struct {
	bull    float64
	bear    float64
	reasons []string
}

func (s *scorecard) addBull(weight float64, reason string) {
	s.bull += weight
	s.reasons = append(s.reasons, reason)
}

func (s *scorecard) addBear(weight float64, reason string) {
	s.bear += weight
	s.reasons = append(s.reasons, reason)
}

// Evaluate produces a signal for the series. The same input always yields
// the same signal, including the order of the reasons.
func (e *Engine) Evaluate(in Input) (*model.Signal, error) {
	if in.Series == nil || in.Series.Len() == 0 {
		return nil, model.ErrEmptySeries
	}

	cfg := e.cfgs.For(in.Series.Timeframe)
	last, _ := in.Series.Last()
	price := last.Close

	card := &scorecard{}
	e.scoreIndicators(card, cfg, in.Snapshot, price)
	e.scoreStructure(card, cfg, in.Structure, price)
	e.scoreTrend(card, cfg, in.Trend)

	direction := model.DirectionHold
	dominant := card.bull
	if card.bull-card.bear > cfg.DirectionMargin {
		direction = model.DirectionBuy
	} else if card.bear-card.bull > cfg.DirectionMargin {
		direction = model.DirectionSell
		dominant = card.bear
	} else if card.bear > card.bull {
		dominant = card.bear
	}

	confidence := 0.0
	if max := cfg.maxScore(); max > 0 {
		confidence = math.Round(dominant/max*1000) / 10
	}
	if confidence > 100 {
		confidence = 100
	}

	sig := &model.Signal{
		Symbol:      in.Series.Symbol,
		Timeframe:   in.Series.Timeframe,
		Direction:   direction,
		Confidence:  confidence,
		Score:       card.bull - card.bear,
		Trend:       in.Trend,
		Reasons:     card.reasons,
		Indicators:  in.Snapshot,
		Price:       price,
		GeneratedAt: in.Now,
	}
	if in.Structure != nil {
		sig.Supports = in.Structure.Supports
		sig.Resistances = in.Structure.Resistances
		sig.Fib = in.Structure.Fib
		sig.Patterns = in.Structure.Patterns
	}

	if direction != model.DirectionHold && confidence >= cfg.PlanThreshold {
		plan, err := e.buildPlan(in, direction, cfg)
		if err != nil {
			e.logger.Warn("No bounded-risk plan, holding",
				zap.String("symbol", in.Series.Symbol),
				zap.String("timeframe", in.Series.Timeframe.String()),
				zap.String("direction", string(direction)),
				zap.Error(err))
			sig.Direction = model.DirectionHold
		} else {
			sig.Plan = plan
		}
	}

	return sig, nil
}

func (e *Engine) scoreIndicators(card *scorecard, cfg Config, snap *model.IndicatorSnapshot, price float64) {
	if snap == nil {
		return
	}
	w := cfg.Weights

	if snap.RSI != nil {
		if *snap.RSI <= cfg.RSIOversold {
			card.addBull(w.RSI, fmt.Sprintf("rsi oversold (%.1f)", *snap.RSI))
		} else if *snap.RSI >= cfg.RSIOverbought {
			card.addBear(w.RSI, fmt.Sprintf("rsi overbought (%.1f)", *snap.RSI))
		}
	}

	if snap.MACDLine != nil && snap.MACDSignal != nil {
		if *snap.MACDLine > *snap.MACDSignal {
			card.addBull(w.MACDLine, "macd line above signal")
		} else if *snap.MACDLine < *snap.MACDSignal {
			card.addBear(w.MACDLine, "macd line below signal")
		}
	}
	if snap.MACDCrossUp {
		card.addBull(w.MACDCross, "macd bullish cross")
	} else if snap.MACDCrossDown {
		card.addBear(w.MACDCross, "macd bearish cross")
	}

	if snap.StochD != nil {
		if snap.StochCrossUp && *snap.StochD <= cfg.StochOversold {
			card.addBull(w.Stochastic, fmt.Sprintf("stochastic oversold cross (%.1f)", *snap.StochD))
		} else if snap.StochCrossDown && *snap.StochD >= cfg.StochOverbought {
			card.addBear(w.Stochastic, fmt.Sprintf("stochastic overbought cross (%.1f)", *snap.StochD))
		}
	}

	if snap.BBLower != nil && price < *snap.BBLower {
		card.addBull(w.Bollinger, "close below lower bollinger band")
	} else if snap.BBUpper != nil && price > *snap.BBUpper {
		card.addBear(w.Bollinger, "close above upper bollinger band")
	}
}

func (e *Engine) scoreStructure(card *scorecard, cfg Config, st *model.Structure, price float64) {
	if st == nil {
		return
	}
	w := cfg.Weights

	if st.Fib != nil {
		if key, ok := st.Fib.Level(cfg.KeyFibRatio); ok {
			label := fibLabel(cfg.KeyFibRatio)
			if price > key {
				card.addBull(w.Fib, fmt.Sprintf("price above %s (%.4f)", label, key))
			} else if price < key {
				card.addBear(w.Fib, fmt.Sprintf("price below %s (%.4f)", label, key))
			}
		}
	}

	if p, ok := topPattern(st.Patterns, cfg.MinPatternConfidence); ok {
		switch p.Bias {
		case model.BiasBullish:
			card.addBull(w.Pattern, fmt.Sprintf("bullish pattern %s (%.0f%%)", p.Kind, p.Confidence))
		case model.BiasBearish:
			card.addBear(w.Pattern, fmt.Sprintf("bearish pattern %s (%.0f%%)", p.Kind, p.Confidence))
		}
	}

	if lvl, ok := nearestStrongLevel(st.Supports, price, cfg); ok {
		card.addBull(w.KeyLevel, fmt.Sprintf("price at support %.4f", lvl.Price))
	}
	if lvl, ok := nearestStrongLevel(st.Resistances, price, cfg); ok {
		card.addBear(w.KeyLevel, fmt.Sprintf("price at resistance %.4f", lvl.Price))
	}
}

func (e *Engine) scoreTrend(card *scorecard, cfg Config, trend model.TrendInfo) {
	w := cfg.Weights

	mult := 1.0
	switch trend.Strength {
	case model.StrengthStrong:
		mult = cfg.ADXStrongMult
	case model.StrengthWeak:
		mult = cfg.ADXWeakMult
	}
	switch trend.Direction {
	case model.TrendUp:
		card.addBull(w.Trend*mult, fmt.Sprintf("trend up (%s)", trend.Strength))
	case model.TrendDown:
		card.addBear(w.Trend*mult, fmt.Sprintf("trend down (%s)", trend.Strength))
	}

	switch trend.HigherDirection {
	case model.TrendUp:
		card.addBull(w.HigherTF, "higher timeframe trend up")
	case model.TrendDown:
		card.addBear(w.HigherTF, "higher timeframe trend down")
	}
}

// fibLabel renders a ratio the way levels are commonly named, e.g. fib_618
func fibLabel(ratio float64) string {
	return fmt.Sprintf("fib_%d", int(math.Round(ratio*1000)))
}

// topPattern returns the highest-confidence directional pattern, if any
// clears the configured floor. Patterns arrive ranked by confidence.
func topPattern(patterns []model.Pattern, minConfidence float64) (model.Pattern, bool) {
	for _, p := range patterns {
		if p.Bias == model.BiasNeutral {
			continue
		}
		if p.Confidence >= minConfidence {
			return p, true
		}
		return model.Pattern{}, false
	}
	return model.Pattern{}, false
}

// nearestStrongLevel reports whether price sits within the proximity band
// of a level with enough touches to matter.
func nearestStrongLevel(levels []model.PriceLevel, price float64, cfg Config) (model.PriceLevel, bool) {
	best := model.PriceLevel{}
	bestDist := math.MaxFloat64
	found := false
	for _, lvl := range levels {
		if lvl.Strength < cfg.MinLevelStrength {
			continue
		}
		dist := math.Abs(price-lvl.Price) / price
		if dist <= cfg.LevelProximity && dist < bestDist {
			best = lvl
			bestDist = dist
			found = true
		}
	}
	return best, found
}

// sortedLevelPrices extracts level prices sorted ascending
func sortedLevelPrices(levels []model.PriceLevel) []float64 {
	prices := make([]float64, 0, len(levels))
	for _, lvl := range levels {
		prices = append(prices, lvl.Price)
	}
	sort.Float64s(prices)
	return prices
}
