package monitor

import (
	"sort"
	"sync"

	"github.com/yourorg/signal-service/internal/model"
)

// Registry holds the monitored trades and the per-symbol tick locks.
// The registry mutex guards the maps only; trade values are never mutated
// in place, transitions swap in a fresh copy.
type Registry struct {
	mu      sync.RWMutex
	trades  map[string]*model.MonitoredTrade
	symbols map[string]*sync.Mutex
}

// NewRegistry creates an empty trade registry
func NewRegistry() *Registry {
	return &Registry{
		trades:  make(map[string]*model.MonitoredTrade),
		symbols: make(map[string]*sync.Mutex),
	}
}

// put registers a trade, reporting false when the id is already present
func (r *Registry) put(t *model.MonitoredTrade) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trades[t.ID]; ok {
		return false
	}
	r.trades[t.ID] = t
	return true
}

// get returns the stored trade for the id
func (r *Registry) get(id string) (*model.MonitoredTrade, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trades[id]
	return t, ok
}

// swap replaces the stored trade with an updated copy
func (r *Registry) swap(t *model.MonitoredTrade) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades[t.ID] = t
}

// bySymbol returns the trades for a symbol in a stable order
func (r *Registry) bySymbol(symbol string) []*model.MonitoredTrade {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.MonitoredTrade, 0)
	for _, t := range r.trades {
		if t.Symbol == symbol {
			out = append(out, t)
		}
	}
	sortTrades(out)
	return out
}

// bySubscriber returns the trades owned by a subscriber in a stable order
func (r *Registry) bySubscriber(subscriberID string) []*model.MonitoredTrade {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.MonitoredTrade, 0)
	for _, t := range r.trades {
		if t.SubscriberID == subscriberID {
			out = append(out, t)
		}
	}
	sortTrades(out)
	return out
}

// symbolLock returns the tick mutex for a symbol, creating it on first use.
// Ticks for the same symbol serialize on it; distinct symbols proceed in
// parallel.
func (r *Registry) symbolLock(symbol string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.symbols[symbol]
	if !ok {
		lock = &sync.Mutex{}
		r.symbols[symbol] = lock
	}
	return lock
}

func sortTrades(trades []*model.MonitoredTrade) {
	sort.Slice(trades, func(i, j int) bool {
		if !trades[i].CreatedAt.Equal(trades[j].CreatedAt) {
			return trades[i].CreatedAt.Before(trades[j].CreatedAt)
		}
		return trades[i].ID < trades[j].ID
	})
}
