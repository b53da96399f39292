package services

import (
	"context"
	"sync"

	"github.com/mkamalov/bazar/pkg/event"
)

// OrderEventBroker fans order lifecycle events out to per-order
// subscribers, which back the SSE stream endpoint.
type OrderEventBroker struct {
	mu   sync.RWMutex
	subs map[uint]map[chan OrderEvent]struct{}
}

func NewOrderEventBroker() *OrderEventBroker {
	return &OrderEventBroker{subs: make(map[uint]map[chan OrderEvent]struct{})}
}

// Attach hooks the broker into the event bus. Call once at boot.
func (b *OrderEventBroker) Attach() {
	for _, name := range []string{EventOrderPlaced, EventOrderCanceled, EventOrderRefunded, EventOrderStatusChanged} {
		name := name
		event.Listen(name, func(ctx context.Context, payload interface{}) {
			if ev, ok := payload.(OrderEvent); ok {
				ev.Event = name
				b.publish(ev)
			}
		})
	}
}

// Subscribe returns a channel of events for one order plus a cancel
// function the caller must invoke when done.
func (b *OrderEventBroker) Subscribe(orderID uint) (<-chan OrderEvent, func()) {
	ch := make(chan OrderEvent, 8)

	b.mu.Lock()
	if b.subs[orderID] == nil {
		b.subs[orderID] = make(map[chan OrderEvent]struct{})
	}
	b.subs[orderID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.subs[orderID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(b.subs, orderID)
			}
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *OrderEventBroker) publish(ev OrderEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[ev.OrderID] {
		select {
		case ch <- ev:
		default: // slow consumer, drop rather than block the bus
		}
	}
}
