package indicator

import (
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/yourorg/signal-service/internal/model"
)

// Engine computes indicator snapshots for candle series
type Engine struct {
	cfg    Config
	logger *zap.Logger
}

// NewEngine creates a new indicator engine
func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	return &Engine{cfg: cfg, logger: logger}
}

// Snapshot evaluates all configured indicators at the last closed candle.
// Indicators whose minimum window exceeds the series length are left nil
// so the caller can continue with reduced confirmations.
func (e *Engine) Snapshot(series *model.CandleSeries) (*model.IndicatorSnapshot, error) {
	if series == nil || series.Len() == 0 {
		return nil, model.ErrEmptySeries
	}
	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()
	last := len(closes) - 1

	snap := &model.IndicatorSnapshot{}

	if rsi, err := RSI(closes, e.cfg.RSIPeriod); err != nil {
		e.logSkipped(series, err)
	} else {
		snap.RSI = model.Float64Ptr(rsi[last])
	}

	if macd, err := MACD(closes, e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal); err != nil {
		e.logSkipped(series, err)
	} else {
		snap.MACDLine = model.Float64Ptr(macd.Line[last])
		snap.MACDSignal = model.Float64Ptr(macd.Signal[last])
		snap.MACDHist = model.Float64Ptr(macd.Hist[last])
		if last >= 1 && !math.IsNaN(macd.Hist[last-1]) {
			snap.MACDCrossUp = macd.Hist[last-1] <= 0 && macd.Hist[last] > 0
			snap.MACDCrossDown = macd.Hist[last-1] >= 0 && macd.Hist[last] < 0
		}
	}

	if stoch, err := Stochastic(highs, lows, closes, e.cfg.StochKPeriod, e.cfg.StochSmooth, e.cfg.StochDPeriod); err != nil {
		e.logSkipped(series, err)
	} else {
		snap.StochK = model.Float64Ptr(stoch.K[last])
		snap.StochD = model.Float64Ptr(stoch.D[last])
		if last >= 1 && !math.IsNaN(stoch.K[last-1]) && !math.IsNaN(stoch.D[last-1]) {
			snap.StochCrossUp = stoch.K[last-1] <= stoch.D[last-1] && stoch.K[last] > stoch.D[last]
			snap.StochCrossDown = stoch.K[last-1] >= stoch.D[last-1] && stoch.K[last] < stoch.D[last]
		}
	}

	if adx, err := ADX(highs, lows, closes, e.cfg.ADXPeriod); err != nil {
		e.logSkipped(series, err)
	} else {
		snap.ADX = model.Float64Ptr(adx[last])
	}

	if emaFast, err := EMA(closes, e.cfg.EMAFast); err != nil {
		e.logSkipped(series, err)
	} else {
		snap.EMAFast = model.Float64Ptr(emaFast[last])
	}

	if emaSlow, err := EMA(closes, e.cfg.EMASlow); err != nil {
		e.logSkipped(series, err)
	} else {
		snap.EMASlow = model.Float64Ptr(emaSlow[last])
	}

	if bb, err := Bollinger(closes, e.cfg.BBPeriod, e.cfg.BBStdDev); err != nil {
		e.logSkipped(series, err)
	} else {
		snap.BBUpper = model.Float64Ptr(bb.Upper[last])
		snap.BBMiddle = model.Float64Ptr(bb.Middle[last])
		snap.BBLower = model.Float64Ptr(bb.Lower[last])
	}

	return snap, nil
}

func (e *Engine) logSkipped(series *model.CandleSeries, err error) {
	var insufficient *model.InsufficientDataError
	if errors.As(err, &insufficient) {
		e.logger.Debug("Indicator skipped, series too short",
			zap.String("symbol", series.Symbol),
			zap.String("timeframe", series.Timeframe.String()),
			zap.String("indicator", insufficient.Indicator),
			zap.Int("required", insufficient.Required),
			zap.Int("available", insufficient.Available))
		return
	}
	e.logger.Warn("Indicator calculation failed",
		zap.String("symbol", series.Symbol),
		zap.String("timeframe", series.Timeframe.String()),
		zap.Error(err))
}
