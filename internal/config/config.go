package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yourorg/signal-service/internal/backtest"
	"github.com/yourorg/signal-service/internal/decision"
	"github.com/yourorg/signal-service/internal/indicator"
	"github.com/yourorg/signal-service/internal/structure"
	"github.com/yourorg/signal-service/internal/structure/pattern"
	"github.com/yourorg/signal-service/internal/trend"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Exchange ExchangeConfig
	Auth     AuthConfig
	Logging  LoggingConfig
	Analysis AnalysisConfig
	Monitor  MonitorConfig
	Backtest backtest.Config
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database specific configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// KafkaConfig holds Kafka specific configuration
type KafkaConfig struct {
	Brokers  string
	ClientID string
}

// BrokerList splits the comma-separated broker string
func (c KafkaConfig) BrokerList() []string {
	parts := strings.Split(c.Brokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ExchangeConfig holds exchange API specific configuration
type ExchangeConfig struct {
	BaseURL         string
	Timeout         time.Duration
	RetryInterval   time.Duration
	RetryMaxElapsed time.Duration
	FetchLimits     map[string]int
}

// FetchLimit returns the candle fetch limit for a timeframe
func (c ExchangeConfig) FetchLimit(timeframe string) int {
	if limit, ok := c.FetchLimits[timeframe]; ok {
		return limit
	}
	if limit, ok := c.FetchLimits["default"]; ok {
		return limit
	}
	return 250
}

// AuthConfig holds authentication specific configuration
type AuthConfig struct {
	JWTSecret  string
	ServiceKey string
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// AnalysisConfig holds the analysis pipeline configuration
type AnalysisConfig struct {
	Watchlist       []string
	ScanTimeframe   string
	TimeframeGroups map[string][]string
	Indicator       indicator.Config
	Structure       structure.Config
	Pattern         pattern.Config
	Trend           trend.Config
	Decision        decision.GroupConfigs
}

// MonitorConfig holds trade monitoring configuration
type MonitorConfig struct {
	RestoreOnStart bool
}

// LoadConfig loads the configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment variables override
	v.AutomaticEnv()

	cfg := defaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// defaultConfig seeds the analysis sections with their package defaults,
// so a config file only overrides what it names.
func defaultConfig() Config {
	return Config{
		Analysis: AnalysisConfig{
			Watchlist:     []string{"BTC/USDT", "ETH/USDT", "SOL/USDT", "LINK/USDT", "DOGE/USDT"},
			ScanTimeframe: "1h",
			TimeframeGroups: map[string][]string{
				"long_term":   {"1d", "4h"},
				"medium_term": {"1h", "30m"},
				"short_term":  {"15m", "5m"},
			},
			Indicator: indicator.DefaultConfig(),
			Structure: structure.DefaultConfig(),
			Pattern:   pattern.DefaultConfig(),
			Trend:     trend.DefaultConfig(),
			Decision: decision.GroupConfigs{
				Default: decision.DefaultConfig(),
				Timeframes: map[string]string{
					"1d":  "long_term",
					"4h":  "long_term",
					"1h":  "medium_term",
					"30m": "medium_term",
					"15m": "short_term",
					"5m":  "short_term",
				},
			},
		},
		Monitor: MonitorConfig{
			RestoreOnStart: true,
		},
		Backtest: backtest.DefaultConfig(),
	}
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8090")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.idleTimeout", "120s")

	// Database defaults
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")

	// Kafka defaults
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.clientID", "signal-service")

	// Exchange defaults
	v.SetDefault("exchange.timeout", "30s")
	v.SetDefault("exchange.retryInterval", "500ms")
	v.SetDefault("exchange.retryMaxElapsed", "30s")
	v.SetDefault("exchange.fetchLimits.default", 250)
	v.SetDefault("exchange.fetchLimits.1d", 360)

	// Auth defaults
	v.SetDefault("auth.serviceKey", "signal-service-key")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
