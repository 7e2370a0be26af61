package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourorg/signal-service/internal/model"
)

func buildSeries(t *testing.T, closes []float64) *model.CandleSeries {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, len(closes))
	for i, c := range closes {
		candles[i] = model.Candle{
			OpenTime: start.Add(time.Duration(i) * time.Hour),
			Open:     c - 0.2,
			High:     c + 0.5,
			Low:      c - 0.5,
			Close:    c,
			Volume:   1000,
		}
	}
	series, err := model.NewCandleSeries("BTC-USDT", model.Timeframe1h, candles)
	require.NoError(t, err)
	return series
}

func trendingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)*0.5
	}
	return out
}

func TestEngineSnapshotFullSeries(t *testing.T) {
	engine := NewEngine(DefaultConfig(), zap.NewNop())
	series := buildSeries(t, trendingCloses(120))

	snap, err := engine.Snapshot(series)
	require.NoError(t, err)

	require.NotNil(t, snap.RSI)
	require.NotNil(t, snap.MACDLine)
	require.NotNil(t, snap.MACDSignal)
	require.NotNil(t, snap.StochK)
	require.NotNil(t, snap.ADX)
	require.NotNil(t, snap.EMAFast)
	require.NotNil(t, snap.EMASlow)
	require.NotNil(t, snap.BBUpper)

	// A steady uptrend keeps RSI pinned high and the fast EMA above the slow.
	assert.Greater(t, *snap.RSI, 70.0)
	assert.Greater(t, *snap.EMAFast, *snap.EMASlow)
}

func TestEngineSnapshotShortSeries(t *testing.T) {
	engine := NewEngine(DefaultConfig(), zap.NewNop())
	series := buildSeries(t, trendingCloses(5))

	snap, err := engine.Snapshot(series)
	require.NoError(t, err)

	// Too short for every configured indicator, but not an error.
	assert.Nil(t, snap.RSI)
	assert.Nil(t, snap.MACDLine)
	assert.Nil(t, snap.ADX)
	assert.Nil(t, snap.EMAFast)
}

func TestEngineSnapshotEmptySeries(t *testing.T) {
	engine := NewEngine(DefaultConfig(), zap.NewNop())
	series := &model.CandleSeries{Symbol: "BTC-USDT", Timeframe: model.Timeframe1h}

	_, err := engine.Snapshot(series)
	require.ErrorIs(t, err, model.ErrEmptySeries)
}

func TestEngineSnapshotDeterministic(t *testing.T) {
	engine := NewEngine(DefaultConfig(), zap.NewNop())
	series := buildSeries(t, trendingCloses(150))

	first, err := engine.Snapshot(series)
	require.NoError(t, err)
	second, err := engine.Snapshot(series)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngineSnapshotMACDCross(t *testing.T) {
	engine := NewEngine(DefaultConfig(), zap.NewNop())

	// Long decline followed by a sharp recovery flips the histogram sign.
	closes := make([]float64, 0, 80)
	for i := 0; i < 60; i++ {
		closes = append(closes, 200-float64(i))
	}
	for i := 0; i < 20; i++ {
		closes = append(closes, 141+float64(i)*4)
	}

	crossSeen := false
	for cut := 62; cut <= len(closes); cut++ {
		snap, err := engine.Snapshot(buildSeries(t, closes[:cut]))
		require.NoError(t, err)
		if snap.MACDCrossUp {
			crossSeen = true
			break
		}
	}
	assert.True(t, crossSeen, "recovery should produce a bullish MACD cross")
}
