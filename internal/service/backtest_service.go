package service

import (
	"context"
	"time"

	"github.com/yourorg/signal-service/internal/backtest"
	"github.com/yourorg/signal-service/internal/model"

	"go.uber.org/zap"
)

// HistoricalCandleStore loads a date-bounded candle series for replay.
type HistoricalCandleStore interface {
	GetCandles(
		ctx context.Context,
		symbol string,
		timeframe model.Timeframe,
		startDate *time.Time,
		endDate *time.Time,
		limit *int,
	) (*model.CandleSeries, error)
}

// BacktestService replays the analysis pipeline over stored candle history.
// Backtests read from the candle store only; the analyze path is what keeps
// the store populated.
type BacktestService struct {
	runner *backtest.Runner
	store  HistoricalCandleStore
	logger *zap.Logger
}

// NewBacktestService creates a new backtest service
func NewBacktestService(runner *backtest.Runner, store HistoricalCandleStore, logger *zap.Logger) *BacktestService {
	return &BacktestService{
		runner: runner,
		store:  store,
		logger: logger,
	}
}

// Run loads the stored candles for the requested window and replays them
func (s *BacktestService) Run(
	ctx context.Context,
	symbol string,
	timeframe model.Timeframe,
	startDate *time.Time,
	endDate *time.Time,
) (*backtest.Result, error) {
	series, err := s.store.GetCandles(ctx, symbol, timeframe, startDate, endDate, nil)
	if err != nil {
		return nil, err
	}

	result, err := s.runner.Run(series)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Backtest completed",
		zap.String("symbol", symbol),
		zap.String("timeframe", timeframe.String()),
		zap.Int("bars", result.Bars),
		zap.Int("trades", result.TotalTrades),
		zap.Float64("return_pct", result.TotalReturnPct))

	return result, nil
}
