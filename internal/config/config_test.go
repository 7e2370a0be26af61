package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/signal-service/internal/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: "localhost"
  port: "5432"
  user: "signal"
  password: "secret"
  dbname: "signals"
auth:
  jwtSecret: "test-secret"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.BrokerList())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Monitor.RestoreOnStart)
	assert.InDelta(t, 10000, cfg.Backtest.InitialCapital, 1e-9)
	assert.InDelta(t, 0.001, cfg.Backtest.CommissionRate, 1e-9)

	// analysis sections come from the package defaults
	assert.Equal(t, 14, cfg.Analysis.Indicator.RSIPeriod)
	assert.Equal(t, 5, cfg.Analysis.Structure.SwingWindow)
	assert.InDelta(t, 0.03, cfg.Analysis.Pattern.PriceTolerance, 1e-9)
	assert.Contains(t, cfg.Analysis.Watchlist, "BTC/USDT")

	// fetch limits fall back per timeframe
	assert.Equal(t, 250, cfg.Exchange.FetchLimit("1h"))
	assert.Equal(t, 360, cfg.Exchange.FetchLimit("1d"))
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
kafka:
  brokers: "k1:9092, k2:9092"
backtest:
  commission_rate: 0.002
analysis:
  watchlist:
    - "BTC/USDT"
  indicator:
    rsi_period: 21
  decision:
    groups:
      short_term:
        direction_margin: 2.0
    timeframes:
      5m: "short_term"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.BrokerList())
	assert.Equal(t, []string{"BTC/USDT"}, cfg.Analysis.Watchlist)
	assert.Equal(t, 21, cfg.Analysis.Indicator.RSIPeriod)
	// untouched indicator fields keep their defaults
	assert.Equal(t, 26, cfg.Analysis.Indicator.MACDSlow)
	assert.InDelta(t, 0.002, cfg.Backtest.CommissionRate, 1e-9)
	assert.Equal(t, 60, cfg.Backtest.MinWindow)

	// sparse group override merges over the default decision config
	short := cfg.Analysis.Decision.For(model.Timeframe5m)
	assert.InDelta(t, 2.0, short.DirectionMargin, 1e-9)
	assert.InDelta(t, 40, short.PlanThreshold, 1e-9)
	assert.InDelta(t, 1.5, short.Weights.RSI, 1e-9)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
