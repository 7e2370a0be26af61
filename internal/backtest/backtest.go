// Package backtest replays the analysis pipeline over historical candles
// and fills the resulting trade plans through the live monitoring rules.
// Entries, stops and targets execute at their plan levels; only a position
// still open when the data ends is settled at the last close.
package backtest

import (
	"time"

	"github.com/yourorg/signal-service/internal/decision"
	"github.com/yourorg/signal-service/internal/indicator"
	"github.com/yourorg/signal-service/internal/model"
	"github.com/yourorg/signal-service/internal/monitor"
	"github.com/yourorg/signal-service/internal/structure"
	"github.com/yourorg/signal-service/internal/trend"

	"go.uber.org/zap"
)

// Config holds replay sizing and cost parameters
type Config struct {
	InitialCapital float64 `mapstructure:"initial_capital"`
	CommissionRate float64 `mapstructure:"commission_rate"`
	MinWindow      int     `mapstructure:"min_window"`
}

// DefaultConfig returns the standard replay parameters
func DefaultConfig() Config {
	return Config{
		InitialCapital: 10000,
		CommissionRate: 0.001,
		MinWindow:      60,
	}
}

// TradeRecord represents one simulated trade closed during a replay
type TradeRecord struct {
	TradeID    string          `json:"trade_id"`
	Direction  model.Direction `json:"direction"`
	EntryTime  time.Time       `json:"entry_time"`
	EntryPrice float64         `json:"entry_price"`
	ExitTime   time.Time       `json:"exit_time"`
	ExitPrice  float64         `json:"exit_price"`
	ExitReason string          `json:"exit_reason"`
	Profit     float64         `json:"profit"`
}

// Result summarizes a historical replay
type Result struct {
	Symbol         string          `json:"symbol"`
	Timeframe      model.Timeframe `json:"timeframe"`
	Bars           int             `json:"bars"`
	InitialCapital float64         `json:"initial_capital"`
	FinalCapital   float64         `json:"final_capital"`
	TotalReturnPct float64         `json:"total_return_pct"`
	TotalTrades    int             `json:"total_trades"`
	Wins           int             `json:"wins"`
	Losses         int             `json:"losses"`
	WinRatePct     float64         `json:"win_rate_pct"`
	Trades         []TradeRecord   `json:"trades"`
}

// Runner replays the decision engine bar by bar over a candle series
type Runner struct {
	cfg        Config
	indicators *indicator.Engine
	detector   *structure.Detector
	classifier *trend.Classifier
	decider    *decision.Engine
	logger     *zap.Logger
}

// NewRunner creates a new backtest runner
func NewRunner(
	cfg Config,
	indicators *indicator.Engine,
	detector *structure.Detector,
	classifier *trend.Classifier,
	decider *decision.Engine,
	logger *zap.Logger,
) *Runner {
	if cfg.InitialCapital <= 0 {
		cfg.InitialCapital = DefaultConfig().InitialCapital
	}
	if cfg.MinWindow <= 0 {
		cfg.MinWindow = DefaultConfig().MinWindow
	}
	return &Runner{
		cfg:        cfg,
		indicators: indicators,
		detector:   detector,
		classifier: classifier,
		decider:    decider,
		logger:     logger,
	}
}

// position tracks the single simulated trade that may be open at a time
type position struct {
	trade      *model.MonitoredTrade
	size       float64
	entered    bool
	entryTime  time.Time
	entryPrice float64
}

// Run replays the series. At each bar the engine sees only candles up to
// the previous one; fills settle on that bar's close crossing plan levels.
func (r *Runner) Run(series *model.CandleSeries) (*Result, error) {
	if series == nil || series.Len() == 0 {
		return nil, model.ErrEmptySeries
	}

	result := &Result{
		Symbol:         series.Symbol,
		Timeframe:      series.Timeframe,
		Bars:           series.Len(),
		InitialCapital: r.cfg.InitialCapital,
	}

	mon := monitor.NewTradeMonitor(r.logger)
	capital := r.cfg.InitialCapital
	candles := series.Candles
	var open *position

	for i := r.cfg.MinWindow; i < len(candles); i++ {
		bar := candles[i]

		if open == nil && capital > 0 {
			open = r.openPosition(mon, series, i, capital)
		}

		if open == nil {
			continue
		}

		alerts, _ := mon.OnTick(series.Symbol, bar.Close, bar.OpenTime)
		for _, alert := range alerts {
			if alert.TradeID != open.trade.ID {
				continue
			}
			switch alert.Kind {
			case model.AlertEntry:
				open.entered = true
				open.entryTime = alert.Timestamp
				open.entryPrice = open.trade.Entry
			case model.AlertTargetHit:
				capital += r.closePosition(result, open, open.trade.Targets[alert.TargetIndex-1], alert.Timestamp, "target")
				mon.Unfollow(open.trade.ID, alert.Timestamp)
				open = nil
			case model.AlertStopped:
				capital += r.closePosition(result, open, open.trade.StopLoss, alert.Timestamp, "stop")
				open = nil
			case model.AlertCancelled:
				// Stop crossed before the entry triggered; no trade happened.
				open = nil
			}
			if open == nil {
				break
			}
		}
	}

	// Settle a position still open at the end of the data.
	if open != nil && open.entered {
		last := candles[len(candles)-1]
		capital += r.closePosition(result, open, last.Close, last.OpenTime, "end_of_data")
	}

	result.FinalCapital = capital
	result.TotalReturnPct = (capital - r.cfg.InitialCapital) / r.cfg.InitialCapital * 100
	result.TotalTrades = len(result.Trades)
	if result.TotalTrades > 0 {
		result.WinRatePct = float64(result.Wins) / float64(result.TotalTrades) * 100
	}

	return result, nil
}

// openPosition evaluates the window ending before bar i and registers the
// plan of an actionable signal with the monitor
func (r *Runner) openPosition(mon *monitor.TradeMonitor, series *model.CandleSeries, i int, capital float64) *position {
	window := &model.CandleSeries{
		Symbol:    series.Symbol,
		Timeframe: series.Timeframe,
		Candles:   series.Candles[:i],
		HasGaps:   series.HasGaps,
	}

	snap, err := r.indicators.Snapshot(window)
	if err != nil {
		return nil
	}
	st, err := r.detector.Detect(window, snap)
	if err != nil {
		return nil
	}
	last, _ := window.Last()

	sig, err := r.decider.Evaluate(decision.Input{
		Series:    window,
		Snapshot:  snap,
		Structure: st,
		Trend:     r.classifier.Classify(snap, last.Close),
		Now:       series.Candles[i].OpenTime,
	})
	if err != nil || sig.Direction == model.DirectionHold || sig.Plan == nil {
		return nil
	}

	trade, err := monitor.TradeFromSignal(sig, "backtest")
	if err != nil {
		return nil
	}
	mon.Follow(trade)

	return &position{
		trade: trade,
		size:  capital * 0.99 / sig.Plan.Entry,
	}
}

// closePosition records the trade and returns the capital delta including
// commission on both legs
func (r *Runner) closePosition(result *Result, open *position, exitPrice float64, exitTime time.Time, reason string) float64 {
	gross := (exitPrice - open.entryPrice) * open.size
	if open.trade.Direction == model.DirectionSell {
		gross = -gross
	}
	commission := (open.entryPrice + exitPrice) * open.size * r.cfg.CommissionRate
	profit := gross - commission

	result.Trades = append(result.Trades, TradeRecord{
		TradeID:    open.trade.ID,
		Direction:  open.trade.Direction,
		EntryTime:  open.entryTime,
		EntryPrice: open.entryPrice,
		ExitTime:   exitTime,
		ExitPrice:  exitPrice,
		ExitReason: reason,
		Profit:     profit,
	})
	if profit > 0 {
		result.Wins++
	} else {
		result.Losses++
	}

	r.logger.Debug("Closed simulated trade",
		zap.String("tradeID", open.trade.ID),
		zap.String("reason", reason),
		zap.Float64("profit", profit))

	return profit
}
