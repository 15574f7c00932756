package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	TopicOrders = "storefront.orders"
	TopicStock  = "storefront.stock"
)

const (
	EventOrderCreated   = "order.created"
	EventOrderPaid      = "order.paid"
	EventOrderCancelled = "order.cancelled"
	EventOrderShipped   = "order.shipped"
	EventStockMoved     = "stock.moved"
)

type Event struct {
	EventID   string         `json:"event_id"`
	Type      string         `json:"type"`
	Key       string         `json:"key"`
	CreatedAt time.Time      `json:"created_at"`
	Payload   map[string]any `json:"payload"`
}

func New(typ, key string, payload map[string]any) Event {
	return Event{EventID: uuid.NewString(), Type: typ, Key: key, CreatedAt: time.Now().UTC(), Payload: payload}
}

// Publisher delivers domain events after the state change has committed.
type Publisher interface {
	Publish(ctx context.Context, topic string, ev Event) error
}

type Nop struct{}

func (Nop) Publish(context.Context, string, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, _ string, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, ev)
	return nil
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, ev := range r.Events {
		out = append(out, ev.Type)
	}
	return out
}
