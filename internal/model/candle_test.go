package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candleAt(ts time.Time, closePrice float64) Candle {
	return Candle{OpenTime: ts, Open: closePrice, High: closePrice + 1, Low: closePrice - 1, Close: closePrice, Volume: 10}
}

func TestNewCandleSeriesOrdering(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := []Candle{
		candleAt(start, 100),
		candleAt(start.Add(time.Hour), 101),
		candleAt(start.Add(2*time.Hour), 102),
	}

	series, err := NewCandleSeries("ETH-USDT", Timeframe1h, candles)
	require.NoError(t, err)
	assert.Equal(t, 3, series.Len())
	assert.False(t, series.HasGaps)

	last, ok := series.Last()
	require.True(t, ok)
	assert.InDelta(t, 102.0, last.Close, 1e-9)
}

func TestCandleSeriesRejectsDuplicates(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	series, err := NewCandleSeries("ETH-USDT", Timeframe1h, []Candle{candleAt(start, 100)})
	require.NoError(t, err)

	err = series.Append(candleAt(start, 101))
	require.ErrorIs(t, err, ErrDuplicateTick)

	err = series.Append(candleAt(start.Add(-time.Hour), 99))
	require.ErrorIs(t, err, ErrDuplicateTick)

	assert.Equal(t, 1, series.Len())
}

func TestCandleSeriesFlagsGaps(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	series, err := NewCandleSeries("ETH-USDT", Timeframe1h, []Candle{
		candleAt(start, 100),
		candleAt(start.Add(3*time.Hour), 101),
	})
	require.NoError(t, err)
	assert.True(t, series.HasGaps)
}

func TestCandleSeriesUnknownTimeframe(t *testing.T) {
	_, err := NewCandleSeries("ETH-USDT", Timeframe("2h"), nil)
	require.ErrorIs(t, err, ErrUnknownTimeframe)
}

func TestParseTimeframe(t *testing.T) {
	tf, err := ParseTimeframe("4h")
	require.NoError(t, err)
	assert.Equal(t, Timeframe4h, tf)
	assert.Equal(t, 4*time.Hour, tf.Step())

	_, err = ParseTimeframe("7m")
	require.ErrorIs(t, err, ErrUnknownTimeframe)
}
