package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/yourorg/signal-service/internal/backtest"
	"github.com/yourorg/signal-service/internal/decision"
	"github.com/yourorg/signal-service/internal/indicator"
	"github.com/yourorg/signal-service/internal/model"
	"github.com/yourorg/signal-service/internal/service"
	"github.com/yourorg/signal-service/internal/structure"
	"github.com/yourorg/signal-service/internal/structure/pattern"
	"github.com/yourorg/signal-service/internal/trend"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeHistory struct {
	series *model.CandleSeries
	err    error
	start  *time.Time
	end    *time.Time
}

func (f *fakeHistory) GetCandles(
	ctx context.Context,
	symbol string,
	timeframe model.Timeframe,
	startDate *time.Time,
	endDate *time.Time,
	limit *int,
) (*model.CandleSeries, error) {
	f.start, f.end = startDate, endDate
	if f.err != nil {
		return nil, f.err
	}
	if f.series == nil {
		return &model.CandleSeries{Symbol: symbol, Timeframe: timeframe}, nil
	}
	return f.series, nil
}

func backtestRouter(store service.HistoricalCandleStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	runner := backtest.NewRunner(
		backtest.DefaultConfig(),
		indicator.NewEngine(indicator.DefaultConfig(), logger),
		structure.NewDetector(structure.DefaultConfig(), pattern.NewRegistry(pattern.DefaultConfig()), logger),
		trend.NewClassifier(trend.DefaultConfig(), logger),
		decision.NewEngine(decision.GroupConfigs{Default: decision.DefaultConfig()}, logger),
		logger,
	)
	h := NewBacktestHandler(service.NewBacktestService(runner, store, logger), logger)

	r := gin.New()
	r.POST("/api/v1/backtests", h.Run)
	return r
}

func TestBacktestEndpointRunsReplay(t *testing.T) {
	store := &fakeHistory{series: wavySeries(t, "BTC/USDT", model.Timeframe1h, 120)}
	router := backtestRouter(store)

	w := performJSON(t, router, http.MethodPost, "/api/v1/backtests", model.BacktestRequest{
		Symbol:    "BTC/USDT",
		Timeframe: "1h",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data backtest.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "BTC/USDT", resp.Data.Symbol)
	assert.Equal(t, 120, resp.Data.Bars)
	assert.Equal(t, backtest.DefaultConfig().InitialCapital, resp.Data.InitialCapital)
	assert.Equal(t, len(resp.Data.Trades), resp.Data.TotalTrades)
}

func TestBacktestEndpointPassesDateRange(t *testing.T) {
	store := &fakeHistory{series: wavySeries(t, "BTC/USDT", model.Timeframe1h, 120)}
	router := backtestRouter(store)
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)

	w := performJSON(t, router, http.MethodPost, "/api/v1/backtests", model.BacktestRequest{
		Symbol:    "BTC/USDT",
		Timeframe: "1h",
		StartDate: &from,
		EndDate:   &to,
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, store.start)
	require.NotNil(t, store.end)
	assert.True(t, store.start.Equal(from))
	assert.True(t, store.end.Equal(to))
}

func TestBacktestEndpointNoStoredCandles(t *testing.T) {
	router := backtestRouter(&fakeHistory{})

	w := performJSON(t, router, http.MethodPost, "/api/v1/backtests", model.BacktestRequest{
		Symbol:    "BTC/USDT",
		Timeframe: "1h",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No stored candles for the requested range")
}

func TestBacktestEndpointValidation(t *testing.T) {
	router := backtestRouter(&fakeHistory{})

	w := performJSON(t, router, http.MethodPost, "/api/v1/backtests", gin.H{"symbol": "BTC/USDT"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(t, router, http.MethodPost, "/api/v1/backtests", model.BacktestRequest{
		Symbol:    "BTC/USDT",
		Timeframe: "42x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid timeframe")
}
