// Package event provides an in-process event dispatcher. Services fire
// domain events (order placed, status changed, review submitted) after
// their transactions commit; listeners fan the events out to the queue,
// notifications and the SSE stream.
package event

import (
	"context"
	"sync"
)

// Handler receives a fired event payload.
type Handler func(ctx context.Context, payload interface{})

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
)

// Listen registers a handler for the given event name.
func Listen(name string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[name] = append(handlers[name], handler)
}

// Fire dispatches an event synchronously to all registered listeners.
func Fire(ctx context.Context, name string, payload interface{}) {
	for _, h := range snapshot(name) {
		h(ctx, payload)
	}
}

// FireAsync dispatches the event to all listeners concurrently and returns
// immediately. The listeners receive a detached context so they outlive
// the originating request.
func FireAsync(name string, payload interface{}) {
	ctx := context.Background()
	for _, h := range snapshot(name) {
		go h(ctx, payload)
	}
}

func snapshot(name string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	hs := make([]Handler, len(handlers[name]))
	copy(hs, handlers[name])
	return hs
}

// Flush removes all listeners. Used in tests.
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
