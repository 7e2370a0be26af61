package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourorg/signal-service/internal/model"
)

var testBase = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func tick(i int) time.Time {
	return testBase.Add(time.Duration(i) * time.Second)
}

func buyTrade(id, symbol string, state model.TradeState) *model.MonitoredTrade {
	return &model.MonitoredTrade{
		ID:           id,
		SubscriberID: "sub-1",
		Symbol:       symbol,
		Timeframe:    model.Timeframe1h,
		Direction:    model.DirectionBuy,
		Entry:        90,
		StopLoss:     85,
		Targets:      []float64{100, 105, 110},
		State:        state,
		CreatedAt:    testBase,
		UpdatedAt:    testBase,
	}
}

func TestTradeFromSignal(t *testing.T) {
	sig := &model.Signal{
		Symbol:    "BTC/USDT",
		Timeframe: model.Timeframe1h,
		Direction: model.DirectionBuy,
		Plan: &model.TradePlan{
			Entry:    90,
			StopLoss: 85,
			Targets:  []float64{100, 105, 110},
		},
		GeneratedAt: testBase,
	}

	first, err := TradeFromSignal(sig, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, model.TradePending, first.State)
	assert.Equal(t, "sub-1", first.SubscriberID)
	assert.Equal(t, []float64{100, 105, 110}, first.Targets)

	second, err := TradeFromSignal(sig, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = TradeFromSignal(&model.Signal{Direction: model.DirectionHold}, "sub-1")
	assert.ErrorIs(t, err, model.ErrNoTradePlan)

	_, err = TradeFromSignal(&model.Signal{Direction: model.DirectionBuy}, "sub-1")
	assert.ErrorIs(t, err, model.ErrNoTradePlan)
}

func TestFollowIsIdempotent(t *testing.T) {
	m := NewTradeMonitor(zap.NewNop())
	tr := buyTrade("t1", "BTC/USDT", model.TradePending)

	assert.True(t, m.Follow(tr))
	assert.False(t, m.Follow(tr))
}

func TestPendingActivatesOnFavorableEntryCross(t *testing.T) {
	m := NewTradeMonitor(zap.NewNop())
	m.Follow(buyTrade("t1", "BTC/USDT", model.TradePending))

	alerts, changed := m.OnTick("BTC/USDT", 89, tick(1))
	assert.Empty(t, alerts)
	require.Len(t, changed, 1)
	assert.Equal(t, model.TradePending, changed[0].State)

	alerts, changed = m.OnTick("BTC/USDT", 90.5, tick(2))
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertEntry, alerts[0].Kind)
	assert.Equal(t, "t1", alerts[0].TradeID)
	assert.InDelta(t, 90.5, alerts[0].Price, 1e-9)
	require.Len(t, changed, 1)
	assert.Equal(t, model.TradeActive, changed[0].State)
}

func TestMultiTargetCatchUpInOneTick(t *testing.T) {
	m := NewTradeMonitor(zap.NewNop())
	m.Follow(buyTrade("t1", "BTC/USDT", model.TradeActive))

	alerts, changed := m.OnTick("BTC/USDT", 112, tick(1))

	require.Len(t, alerts, 3)
	for i, a := range alerts {
		assert.Equal(t, model.AlertTargetHit, a.Kind)
		assert.Equal(t, i+1, a.TargetIndex)
		assert.Equal(t, tick(1), a.Timestamp)
	}
	require.Len(t, changed, 1)
	assert.Equal(t, model.TradeCompleted, changed[0].State)
	assert.Equal(t, 3, changed[0].TargetsHit)

	// terminal trades ignore further ticks
	alerts, changed = m.OnTick("BTC/USDT", 120, tick(2))
	assert.Empty(t, alerts)
	assert.Empty(t, changed)
}

func TestStopPrecedesTargetsAndIsFinal(t *testing.T) {
	m := NewTradeMonitor(zap.NewNop())
	m.Follow(buyTrade("t1", "BTC/USDT", model.TradeActive))

	alerts, changed := m.OnTick("BTC/USDT", 84, tick(1))
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertStopped, alerts[0].Kind)
	require.Len(t, changed, 1)
	assert.Equal(t, model.TradeStopped, changed[0].State)

	// recovery after the stop raises nothing
	alerts, _ = m.OnTick("BTC/USDT", 200, tick(2))
	assert.Empty(t, alerts)

	got, err := m.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, model.TradeStopped, got.State)
	assert.Equal(t, 0, got.TargetsHit)
}

func TestPendingCancelsWhenStopCrossesFirst(t *testing.T) {
	m := NewTradeMonitor(zap.NewNop())
	m.Follow(buyTrade("t1", "BTC/USDT", model.TradePending))

	alerts, changed := m.OnTick("BTC/USDT", 84, tick(1))
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertCancelled, alerts[0].Kind)
	require.Len(t, changed, 1)
	assert.Equal(t, model.TradeCancelled, changed[0].State)
}

func TestEntryAndFirstTargetInSameTick(t *testing.T) {
	m := NewTradeMonitor(zap.NewNop())
	m.Follow(buyTrade("t1", "BTC/USDT", model.TradePending))

	alerts, changed := m.OnTick("BTC/USDT", 101, tick(1))
	require.Len(t, alerts, 2)
	assert.Equal(t, model.AlertEntry, alerts[0].Kind)
	assert.Equal(t, model.AlertTargetHit, alerts[1].Kind)
	assert.Equal(t, 1, alerts[1].TargetIndex)
	require.Len(t, changed, 1)
	assert.Equal(t, model.TradeActive, changed[0].State)
	assert.Equal(t, 1, changed[0].TargetsHit)
}

func TestDuplicateTicksAreIgnored(t *testing.T) {
	m := NewTradeMonitor(zap.NewNop())
	m.Follow(buyTrade("t1", "BTC/USDT", model.TradeActive))

	alerts, _ := m.OnTick("BTC/USDT", 100, tick(5))
	require.Len(t, alerts, 1)

	// same timestamp, different price
	alerts, changed := m.OnTick("BTC/USDT", 110, tick(5))
	assert.Empty(t, alerts)
	assert.Empty(t, changed)

	// older timestamp
	alerts, changed = m.OnTick("BTC/USDT", 110, tick(4))
	assert.Empty(t, alerts)
	assert.Empty(t, changed)

	got, err := m.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.TargetsHit)
	assert.Equal(t, model.TradeActive, got.State)
}

func TestRestoreThenReplayEmitsNothingNew(t *testing.T) {
	m := NewTradeMonitor(zap.NewNop())

	last := tick(10)
	restored := buyTrade("t1", "BTC/USDT", model.TradeActive)
	restored.TargetsHit = 2
	restored.LastTickAt = &last
	m.Restore([]*model.MonitoredTrade{restored})

	// replaying the last acknowledged tick re-emits nothing
	alerts, changed := m.OnTick("BTC/USDT", 106, tick(10))
	assert.Empty(t, alerts)
	assert.Empty(t, changed)

	// a fresh tick below the remaining target raises nothing either
	alerts, _ = m.OnTick("BTC/USDT", 109, tick(11))
	assert.Empty(t, alerts)

	// only the remaining third target fires
	alerts, changed = m.OnTick("BTC/USDT", 110, tick(12))
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertTargetHit, alerts[0].Kind)
	assert.Equal(t, 3, alerts[0].TargetIndex)
	require.Len(t, changed, 1)
	assert.Equal(t, model.TradeCompleted, changed[0].State)
}

func TestUnfollow(t *testing.T) {
	m := NewTradeMonitor(zap.NewNop())
	m.Follow(buyTrade("t1", "BTC/USDT", model.TradePending))

	got, alert, err := m.Unfollow("t1", tick(1))
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, model.AlertCancelled, alert.Kind)
	assert.Equal(t, model.TradeCancelled, got.State)

	// terminal trades unfollow as a no-op
	got, alert, err = m.Unfollow("t1", tick(2))
	require.NoError(t, err)
	assert.Nil(t, alert)
	assert.Equal(t, model.TradeCancelled, got.State)

	_, _, err = m.Unfollow("missing", tick(3))
	assert.ErrorIs(t, err, model.ErrUnknownTrade)
}

func TestSellSideTransitions(t *testing.T) {
	m := NewTradeMonitor(zap.NewNop())
	m.Follow(&model.MonitoredTrade{
		ID:           "s1",
		SubscriberID: "sub-1",
		Symbol:       "ETH/USDT",
		Timeframe:    model.Timeframe1h,
		Direction:    model.DirectionSell,
		Entry:        95,
		StopLoss:     98,
		Targets:      []float64{92, 88},
		State:        model.TradePending,
		CreatedAt:    testBase,
		UpdatedAt:    testBase,
	})

	alerts, _ := m.OnTick("ETH/USDT", 96, tick(1))
	assert.Empty(t, alerts)

	alerts, _ = m.OnTick("ETH/USDT", 94.5, tick(2))
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertEntry, alerts[0].Kind)

	alerts, _ = m.OnTick("ETH/USDT", 91, tick(3))
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertTargetHit, alerts[0].Kind)
	assert.Equal(t, 1, alerts[0].TargetIndex)

	alerts, changed := m.OnTick("ETH/USDT", 87, tick(4))
	require.Len(t, alerts, 1)
	assert.Equal(t, 2, alerts[0].TargetIndex)
	require.Len(t, changed, 1)
	assert.Equal(t, model.TradeCompleted, changed[0].State)
}

func TestSellPendingCancelsOnStop(t *testing.T) {
	m := NewTradeMonitor(zap.NewNop())
	m.Follow(&model.MonitoredTrade{
		ID:        "s1",
		Symbol:    "ETH/USDT",
		Timeframe: model.Timeframe1h,
		Direction: model.DirectionSell,
		Entry:     95,
		StopLoss:  98,
		Targets:   []float64{92},
		State:     model.TradePending,
		CreatedAt: testBase,
	})

	alerts, changed := m.OnTick("ETH/USDT", 99, tick(1))
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertCancelled, alerts[0].Kind)
	require.Len(t, changed, 1)
	assert.Equal(t, model.TradeCancelled, changed[0].State)
}

func TestDistinctSymbolsTickInParallel(t *testing.T) {
	m := NewTradeMonitor(zap.NewNop())
	m.Follow(buyTrade("t1", "BTC/USDT", model.TradeActive))

	eth := buyTrade("t2", "ETH/USDT", model.TradeActive)
	m.Follow(eth)

	var wg sync.WaitGroup
	for _, symbol := range []string{"BTC/USDT", "ETH/USDT"} {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			for i := 1; i <= 50; i++ {
				m.OnTick(sym, 90+float64(i)/10, tick(i))
			}
		}(symbol)
	}
	wg.Wait()

	for _, id := range []string{"t1", "t2"} {
		got, err := m.Get(id)
		require.NoError(t, err)
		assert.Equal(t, model.TradeActive, got.State)
		assert.Equal(t, 0, got.TargetsHit)
		require.NotNil(t, got.LastTickAt)
		assert.Equal(t, tick(50), *got.LastTickAt)
	}
}

func TestListReturnsSubscriberTradesInOrder(t *testing.T) {
	m := NewTradeMonitor(zap.NewNop())

	older := buyTrade("t1", "BTC/USDT", model.TradePending)
	newer := buyTrade("t2", "ETH/USDT", model.TradePending)
	newer.CreatedAt = testBase.Add(time.Minute)
	other := buyTrade("t3", "BTC/USDT", model.TradePending)
	other.SubscriberID = "sub-2"

	m.Follow(newer)
	m.Follow(older)
	m.Follow(other)

	got := m.List("sub-1")
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "t2", got[1].ID)

	// mutating the copies leaves the registry untouched
	got[0].State = model.TradeStopped
	stored, err := m.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, model.TradePending, stored.State)
}
