package monitor

import (
	"time"

	"github.com/yourorg/signal-service/internal/model"
)

// applyTick advances a trade copy through the state machine for one price
// tick and returns the alerts raised, one per transition. The stop check
// runs before target checks, so a tick can never report targets after the
// stop was breached. A tick that clears several targets at once reports
// every not-yet-reported target in order.
func applyTick(t *model.MonitoredTrade, price float64, ts time.Time) ([]model.Alert, bool, error) {
	if t.State.Terminal() {
		return nil, false, nil
	}
	if t.LastTickAt != nil && !ts.After(*t.LastTickAt) {
		return nil, false, model.ErrDuplicateTick
	}

	at := ts
	t.LastTickAt = &at
	t.UpdatedAt = ts

	var alerts []model.Alert

	if t.State == model.TradePending {
		if stopBreached(t, price) {
			t.State = model.TradeCancelled
			alerts = append(alerts, model.Alert{TradeID: t.ID, Kind: model.AlertCancelled, Price: price, Timestamp: ts})
			return alerts, true, nil
		}
		if entryCrossed(t, price) {
			t.State = model.TradeActive
			alerts = append(alerts, model.Alert{TradeID: t.ID, Kind: model.AlertEntry, Price: price, Timestamp: ts})
		}
	}

	if t.State == model.TradeActive {
		if stopBreached(t, price) {
			t.State = model.TradeStopped
			alerts = append(alerts, model.Alert{TradeID: t.ID, Kind: model.AlertStopped, Price: price, Timestamp: ts})
			return alerts, true, nil
		}
		for i := t.TargetsHit; i < len(t.Targets); i++ {
			if !targetReached(t, price, t.Targets[i]) {
				break
			}
			t.TargetsHit = i + 1
			alerts = append(alerts, model.Alert{TradeID: t.ID, Kind: model.AlertTargetHit, TargetIndex: i + 1, Price: price, Timestamp: ts})
		}
		if len(t.Targets) > 0 && t.TargetsHit == len(t.Targets) {
			t.State = model.TradeCompleted
		}
	}

	return alerts, true, nil
}

// entryCrossed reports whether price crossed the entry in the trade's favor
func entryCrossed(t *model.MonitoredTrade, price float64) bool {
	if t.Direction == model.DirectionBuy {
		return price >= t.Entry
	}
	return price <= t.Entry
}

// stopBreached reports whether price crossed the stop against the trade
func stopBreached(t *model.MonitoredTrade, price float64) bool {
	if t.Direction == model.DirectionBuy {
		return price <= t.StopLoss
	}
	return price >= t.StopLoss
}

// targetReached reports whether price reached the given target level
func targetReached(t *model.MonitoredTrade, price, target float64) bool {
	if t.Direction == model.DirectionBuy {
		return price >= target
	}
	return price <= target
}
