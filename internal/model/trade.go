package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TradeState represents the lifecycle state of a monitored trade
type TradeState string

const (
	TradePending   TradeState = "PENDING"
	TradeActive    TradeState = "ACTIVE"
	TradeStopped   TradeState = "STOPPED"
	TradeCancelled TradeState = "CANCELLED"
	TradeCompleted TradeState = "COMPLETED"
)

// Terminal reports whether the state ends monitoring for the trade
func (s TradeState) Terminal() bool {
	return s == TradeStopped || s == TradeCancelled || s == TradeCompleted
}

// MonitoredTrade represents a followed trade setup tracked against live prices
type MonitoredTrade struct {
	ID           string     `json:"id" db:"id"`
	SubscriberID string     `json:"subscriber_id" db:"subscriber_id"`
	Symbol       string     `json:"symbol" db:"symbol"`
	Timeframe    Timeframe  `json:"timeframe" db:"timeframe"`
	Direction    Direction  `json:"direction" db:"direction"`
	Entry        float64    `json:"entry" db:"entry"`
	StopLoss     float64    `json:"stop_loss" db:"stop_loss"`
	Targets      []float64  `json:"targets" db:"-"`
	State        TradeState `json:"state" db:"state"`
	TargetsHit   int        `json:"targets_hit" db:"targets_hit"`
	LastTickAt   *time.Time `json:"last_tick_at,omitempty" db:"last_tick_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy of the trade for all-or-nothing mutation
func (t *MonitoredTrade) Clone() *MonitoredTrade {
	cp := *t
	cp.Targets = append([]float64(nil), t.Targets...)
	if t.LastTickAt != nil {
		at := *t.LastTickAt
		cp.LastTickAt = &at
	}
	return &cp
}

// NewTradeID derives a deterministic trade id from the symbol, the creation
// time and a digest of the plan levels. The same signal followed at the same
// instant always maps to the same id.
func NewTradeID(symbol string, createdAt time.Time, direction Direction, plan *TradePlan) string {
	var b strings.Builder
	b.WriteString(symbol)
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(createdAt.UnixNano(), 10))
	b.WriteByte('|')
	b.WriteString(string(direction))
	if plan != nil {
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(plan.Entry, 'f', -1, 64))
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(plan.StopLoss, 'f', -1, 64))
		for _, tg := range plan.Targets {
			b.WriteByte('|')
			b.WriteString(strconv.FormatFloat(tg, 'f', -1, 64))
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s-%d-%s", symbol, createdAt.Unix(), hex.EncodeToString(sum[:])[:12])
}

// AlertKind represents the type of a monitoring alert
type AlertKind string

const (
	AlertEntry     AlertKind = "ENTRY"
	AlertTargetHit AlertKind = "TARGET_HIT"
	AlertStopped   AlertKind = "STOPPED"
	AlertCancelled AlertKind = "CANCELLED"
)

// Alert represents a one-shot notification raised by a trade state transition.
// TargetIndex is the 1-based target number for TARGET_HIT alerts and zero otherwise.
type Alert struct {
	TradeID     string    `json:"trade_id"`
	Kind        AlertKind `json:"kind"`
	TargetIndex int       `json:"target_index,omitempty"`
	Price       float64   `json:"price"`
	Timestamp   time.Time `json:"timestamp"`
}

// FollowRequest represents the payload for registering a signal with the monitor
type FollowRequest struct {
	Signal *Signal `json:"signal" binding:"required"`
}

// TickRequest represents a live price update pushed by a market data feed
type TickRequest struct {
	Symbol    string    `json:"symbol" binding:"required"`
	Price     float64   `json:"price" binding:"required"`
	Timestamp time.Time `json:"timestamp" binding:"required"`
}
