// Package changefeed delivers row-change notifications keyed by table
// and an optional order filter. The feed is a cache-invalidation
// signal: delivery is best-effort and consumers react by re-reading the
// full snapshot, never by patching state incrementally.
package changefeed

import (
	"context"
	"sync"
	"time"

	"hardware-backoffice/internal/observability/metrics"
)

const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

const (
	TableOrders       = "orders"
	TablePayments     = "payments"
	TableInstallments = "order_installments"
)

// Event describes one row change.
type Event struct {
	Table   string    `json:"table"`
	Op      string    `json:"op"`
	OrderID string    `json:"order_id"`
	At      time.Time `json:"at"`
}

// Filter scopes a subscription. An empty OrderID matches all rows of
// the table.
type Filter struct {
	Table   string
	OrderID string
}

// Matches reports whether an event falls within the filter.
func (f Filter) Matches(e Event) bool {
	if f.Table != "" && f.Table != e.Table {
		return false
	}
	if f.OrderID != "" && f.OrderID != e.OrderID {
		return false
	}
	return true
}

// Handler receives matching events.
type Handler func(ctx context.Context, e Event)

// Publisher is the write-side interface repositories and services use.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Feed is an in-process change feed.
type Feed struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]subscription
}

type subscription struct {
	filter  Filter
	handler Handler
}

// NewFeed constructs an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[int]subscription)}
}

// Subscribe registers a handler for events matching the filter and
// returns a cancel func. Cancelling is how a consumer tears down its
// screen-scoped subscription.
func (f *Feed) Subscribe(filter Filter, handler Handler) (cancel func()) {
	if f == nil || handler == nil {
		return func() {}
	}
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = subscription{filter: filter, handler: handler}
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// Publish delivers the event to every matching subscriber.
func (f *Feed) Publish(ctx context.Context, e Event) {
	if f == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	metrics.IncChangeEvent(e.Table)

	f.mu.RLock()
	handlers := make([]Handler, 0, len(f.subs))
	for _, sub := range f.subs {
		if sub.filter.Matches(e) {
			handlers = append(handlers, sub.handler)
		}
	}
	f.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, e)
	}
}
