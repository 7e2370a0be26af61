// Package monitor tracks followed trade setups against live price ticks.
// It is a pure state machine over an in-memory registry: persistence and
// alert delivery belong to the service layer. Ticks for one symbol are
// serialized; distinct symbols proceed in parallel.
package monitor

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/signal-service/internal/model"
)

// TradeMonitor applies price ticks to the monitored trades of a symbol
type TradeMonitor struct {
	registry *Registry
	logger   *zap.Logger
}

// NewTradeMonitor creates a trade monitor with an empty registry
func NewTradeMonitor(logger *zap.Logger) *TradeMonitor {
	return &TradeMonitor{
		registry: NewRegistry(),
		logger:   logger,
	}
}

// TradeFromSignal builds a pending monitored trade from a signal's plan.
// The trade id is deterministic, so following the same signal twice maps
// to the same trade.
func TradeFromSignal(sig *model.Signal, subscriberID string) (*model.MonitoredTrade, error) {
	if sig == nil || sig.Plan == nil || sig.Direction == model.DirectionHold {
		return nil, model.ErrNoTradePlan
	}
	createdAt := sig.GeneratedAt
	return &model.MonitoredTrade{
		ID:           model.NewTradeID(sig.Symbol, createdAt, sig.Direction, sig.Plan),
		SubscriberID: subscriberID,
		Symbol:       sig.Symbol,
		Timeframe:    sig.Timeframe,
		Direction:    sig.Direction,
		Entry:        sig.Plan.Entry,
		StopLoss:     sig.Plan.StopLoss,
		Targets:      append([]float64(nil), sig.Plan.Targets...),
		State:        model.TradePending,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}, nil
}

// Follow registers a trade for monitoring. Following an already known id
// is a no-op and reports false.
func (m *TradeMonitor) Follow(t *model.MonitoredTrade) bool {
	return m.registry.put(t.Clone())
}

// Unfollow cancels a trade. Terminal trades are left untouched and raise
// no alert; unknown ids return ErrUnknownTrade.
func (m *TradeMonitor) Unfollow(id string, at time.Time) (*model.MonitoredTrade, *model.Alert, error) {
	cur, ok := m.registry.get(id)
	if !ok {
		return nil, nil, model.ErrUnknownTrade
	}

	lock := m.registry.symbolLock(cur.Symbol)
	lock.Lock()
	defer lock.Unlock()

	cur, ok = m.registry.get(id)
	if !ok {
		return nil, nil, model.ErrUnknownTrade
	}
	if cur.State.Terminal() {
		return cur.Clone(), nil, nil
	}

	next := cur.Clone()
	next.State = model.TradeCancelled
	next.UpdatedAt = at
	m.registry.swap(next)

	alert := &model.Alert{TradeID: id, Kind: model.AlertCancelled, Timestamp: at}
	return next.Clone(), alert, nil
}

// OnTick applies a price tick to every trade on the symbol and returns the
// raised alerts together with the updated trades. Duplicate ticks per trade
// are logged and skipped; they never surface as errors.
func (m *TradeMonitor) OnTick(symbol string, price float64, ts time.Time) ([]model.Alert, []*model.MonitoredTrade) {
	lock := m.registry.symbolLock(symbol)
	lock.Lock()
	defer lock.Unlock()

	alerts := make([]model.Alert, 0)
	changed := make([]*model.MonitoredTrade, 0)

	for _, cur := range m.registry.bySymbol(symbol) {
		next := cur.Clone()
		raised, advanced, err := applyTick(next, price, ts)
		if err != nil {
			if errors.Is(err, model.ErrDuplicateTick) {
				m.logger.Debug("Duplicate tick ignored",
					zap.String("trade_id", cur.ID),
					zap.String("symbol", symbol),
					zap.Time("tick_at", ts))
			}
			continue
		}
		if !advanced {
			continue
		}
		m.registry.swap(next)
		changed = append(changed, next.Clone())
		alerts = append(alerts, raised...)
	}
	return alerts, changed
}

// Get returns a copy of the trade with the given id
func (m *TradeMonitor) Get(id string) (*model.MonitoredTrade, error) {
	cur, ok := m.registry.get(id)
	if !ok {
		return nil, model.ErrUnknownTrade
	}
	return cur.Clone(), nil
}

// List returns copies of the subscriber's trades ordered by creation time
func (m *TradeMonitor) List(subscriberID string) []*model.MonitoredTrade {
	stored := m.registry.bySubscriber(subscriberID)
	out := make([]*model.MonitoredTrade, len(stored))
	for i, t := range stored {
		out[i] = t.Clone()
	}
	return out
}

// Restore preloads the registry with trades loaded from the store.
// Existing ids are left untouched.
func (m *TradeMonitor) Restore(trades []*model.MonitoredTrade) {
	for _, t := range trades {
		if t == nil {
			continue
		}
		m.registry.put(t.Clone())
	}
}
