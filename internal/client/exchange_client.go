package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/yourorg/signal-service/internal/model"
)

const (
	DefaultExchangeBaseURL = "https://api.binance.com/api/v3"
	MaxKlinesLimit         = 1000
)

// ExchangeClient fetches candle data from the exchange REST API
type ExchangeClient struct {
	baseURL       string
	httpClient    *http.Client
	retryInterval time.Duration
	retryMax      time.Duration
	logger        *zap.Logger
}

// NewExchangeClient creates a new exchange API client
func NewExchangeClient(baseURL string, timeout, retryInterval, retryMax time.Duration, logger *zap.Logger) *ExchangeClient {
	if baseURL == "" {
		baseURL = DefaultExchangeBaseURL
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if retryInterval == 0 {
		retryInterval = 500 * time.Millisecond
	}
	if retryMax == 0 {
		retryMax = 30 * time.Second
	}
	return &ExchangeClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retryInterval: retryInterval,
		retryMax:      retryMax,
		logger:        logger,
	}
}

// GetKlines retrieves candles for a symbol and timeframe, retrying transient
// failures with exponential backoff. Client errors from the exchange are not
// retried.
func (c *ExchangeClient) GetKlines(
	ctx context.Context,
	symbol string,
	timeframe model.Timeframe,
	startTime, endTime *time.Time,
	limit int,
) ([]model.Candle, error) {
	var candles []model.Candle

	operation := func() error {
		var err error
		candles, err = c.fetchKlines(ctx, symbol, timeframe, startTime, endTime, limit)
		return err
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.retryInterval
	expo.MaxElapsedTime = c.retryMax

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("Failed to fetch klines, retrying",
			zap.Error(err),
			zap.String("symbol", symbol),
			zap.String("timeframe", timeframe.String()),
			zap.Duration("wait", wait))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(expo, ctx), notify); err != nil {
		return nil, err
	}
	return candles, nil
}

// GetSeries retrieves the latest candles as a validated series
func (c *ExchangeClient) GetSeries(
	ctx context.Context,
	symbol string,
	timeframe model.Timeframe,
	limit int,
) (*model.CandleSeries, error) {
	candles, err := c.GetKlines(ctx, symbol, timeframe, nil, nil, limit)
	if err != nil {
		return nil, err
	}
	return model.NewCandleSeries(symbol, timeframe, candles)
}

func (c *ExchangeClient) fetchKlines(
	ctx context.Context,
	symbol string,
	timeframe model.Timeframe,
	startTime, endTime *time.Time,
	limit int,
) ([]model.Candle, error) {
	if limit > MaxKlinesLimit {
		limit = MaxKlinesLimit
	}

	params := url.Values{}
	params.Add("symbol", ExchangeSymbol(symbol))
	params.Add("interval", timeframe.String())
	params.Add("limit", strconv.Itoa(limit))

	if startTime != nil {
		params.Add("startTime", strconv.FormatInt(startTime.UnixMilli(), 10))
	}

	if endTime != nil {
		params.Add("endTime", strconv.FormatInt(endTime.UnixMilli(), 10))
	}

	reqURL := fmt.Sprintf("%s/klines?%s", c.baseURL, params.Encode())
	c.logger.Debug("Calling exchange API", zap.String("url", reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch klines: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.Error("Exchange API error response",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(bodyBytes)))
		err := fmt.Errorf("exchange API returned status code %d: %s", resp.StatusCode, string(bodyBytes))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	var rawKlines [][]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&rawKlines); err != nil {
		c.logger.Error("Failed to decode klines", zap.Error(err))
		return nil, backoff.Permanent(fmt.Errorf("failed to decode klines: %w", err))
	}

	if len(rawKlines) == 0 {
		c.logger.Warn("Exchange returned empty klines array",
			zap.String("symbol", symbol),
			zap.String("timeframe", timeframe.String()))
	}

	candles := make([]model.Candle, 0, len(rawKlines))
	for i, raw := range rawKlines {
		if len(raw) < 6 {
			c.logger.Warn("Skipping malformed kline",
				zap.Int("index", i),
				zap.Any("raw_data", raw))
			continue
		}

		openTimeVal, ok := raw[0].(float64)
		if !ok {
			c.logger.Warn("Invalid open time format",
				zap.Int("index", i),
				zap.Any("open_time", raw[0]))
			continue
		}
		openTime := time.UnixMilli(int64(openTimeVal))
		if openTime.IsZero() {
			continue
		}

		open, err := parseKlineFloat(raw[1])
		if err != nil {
			c.logger.Warn("Invalid open price", zap.Int("index", i), zap.Error(err))
			continue
		}
		high, err := parseKlineFloat(raw[2])
		if err != nil {
			c.logger.Warn("Invalid high price", zap.Int("index", i), zap.Error(err))
			continue
		}
		low, err := parseKlineFloat(raw[3])
		if err != nil {
			c.logger.Warn("Invalid low price", zap.Int("index", i), zap.Error(err))
			continue
		}
		closePrice, err := parseKlineFloat(raw[4])
		if err != nil {
			c.logger.Warn("Invalid close price", zap.Int("index", i), zap.Error(err))
			continue
		}
		volume, err := parseKlineFloat(raw[5])
		if err != nil {
			c.logger.Warn("Invalid volume", zap.Int("index", i), zap.Error(err))
			continue
		}

		candles = append(candles, model.Candle{
			OpenTime: openTime,
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePrice,
			Volume:   volume,
		})
	}

	return candles, nil
}

func parseKlineFloat(v interface{}) (float64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("expected string, got %T", v)
	}
	return strconv.ParseFloat(s, 64)
}

// ExchangeSymbol converts a pair like BTC/USDT to the exchange form BTCUSDT
func ExchangeSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}
