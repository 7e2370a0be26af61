package service

import (
	"context"
	"time"

	"github.com/yourorg/signal-service/internal/model"
	"github.com/yourorg/signal-service/internal/monitor"

	"go.uber.org/zap"
)

// TradeStore defines persistence methods for monitored trades
type TradeStore interface {
	SaveTrade(ctx context.Context, t *model.MonitoredTrade) error
	SaveTrades(ctx context.Context, trades []*model.MonitoredTrade) error
	ListOpenTrades(ctx context.Context) ([]*model.MonitoredTrade, error)
	ListBySubscriber(ctx context.Context, subscriberID string) ([]*model.MonitoredTrade, error)
}

// AlertPublisher defines the event sink for monitoring alerts
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert model.Alert) error
}

// MonitorService orchestrates trade following, live tick processing and
// persistence of monitoring state
type MonitorService struct {
	monitor   *monitor.TradeMonitor
	store     TradeStore
	publisher AlertPublisher
	logger    *zap.Logger
}

// NewMonitorService creates a new monitor service
func NewMonitorService(
	tradeMonitor *monitor.TradeMonitor,
	store TradeStore,
	publisher AlertPublisher,
	logger *zap.Logger,
) *MonitorService {
	return &MonitorService{
		monitor:   tradeMonitor,
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Follow registers the signal's trade plan for live monitoring and returns
// the trade id. Following the same signal twice returns the existing id.
func (s *MonitorService) Follow(ctx context.Context, sig *model.Signal, subscriberID string) (string, error) {
	trade, err := monitor.TradeFromSignal(sig, subscriberID)
	if err != nil {
		return "", err
	}

	// Persist before registering so a restart never loses a followed trade.
	if s.store != nil {
		if err := s.store.SaveTrade(ctx, trade); err != nil {
			return "", err
		}
	}

	if s.monitor.Follow(trade) {
		s.logger.Info("Following trade",
			zap.String("tradeID", trade.ID),
			zap.String("symbol", trade.Symbol),
			zap.String("direction", string(trade.Direction)))
	}

	return trade.ID, nil
}

// Unfollow cancels monitoring for the trade. Trades already in a terminal
// state are left untouched.
func (s *MonitorService) Unfollow(ctx context.Context, tradeID string) error {
	updated, alert, err := s.monitor.Unfollow(tradeID, time.Now().UTC())
	if err != nil {
		return err
	}

	if updated != nil && s.store != nil {
		if err := s.store.SaveTrade(ctx, updated); err != nil {
			return err
		}
	}

	if alert != nil {
		s.publishAlert(ctx, *alert)
	}

	return nil
}

// OnTick feeds a live price into the monitor, persists every trade the tick
// advanced and publishes the resulting alerts
func (s *MonitorService) OnTick(ctx context.Context, symbol string, price float64, ts time.Time) ([]model.Alert, error) {
	alerts, changed := s.monitor.OnTick(symbol, price, ts)

	if len(changed) > 0 && s.store != nil {
		if err := s.store.SaveTrades(ctx, changed); err != nil {
			return alerts, err
		}
	}

	for _, alert := range alerts {
		s.publishAlert(ctx, alert)
	}

	return alerts, nil
}

// ListTrades returns the trades followed by the subscriber, including ones
// already settled
func (s *MonitorService) ListTrades(ctx context.Context, subscriberID string) ([]*model.MonitoredTrade, error) {
	if s.store != nil {
		return s.store.ListBySubscriber(ctx, subscriberID)
	}
	return s.monitor.List(subscriberID), nil
}

// GetTrade returns the current state of a monitored trade
func (s *MonitorService) GetTrade(id string) (*model.MonitoredTrade, error) {
	return s.monitor.Get(id)
}

// Restore reloads open trades from the store into the monitor after a
// restart. Trades already registered keep their in-memory state.
func (s *MonitorService) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	trades, err := s.store.ListOpenTrades(ctx)
	if err != nil {
		return err
	}

	s.monitor.Restore(trades)
	s.logger.Info("Restored monitored trades", zap.Int("count", len(trades)))
	return nil
}

func (s *MonitorService) publishAlert(ctx context.Context, alert model.Alert) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAlert(ctx, alert); err != nil {
		s.logger.Warn("Failed to publish alert",
			zap.Error(err),
			zap.String("tradeID", alert.TradeID),
			zap.String("kind", string(alert.Kind)))
	}
}
