// Package events provides in-process fan-out of completed quotes to
// interested consumers (exports, mirrors) without coupling them to the
// bot loop.
package events

import (
	"context"
	"sync"

	"burovik/internal/quotes"
)

// QuoteCompleted is emitted once per dialog that reaches the final
// calculation screen.
type QuoteCompleted struct {
	Quote *quotes.Quote
}

// Handler reacts to a completed quote. Handlers run synchronously in
// publish order; a handler that needs to block should spawn its own
// goroutine.
type Handler func(ctx context.Context, ev QuoteCompleted)

// Bus is an in-process publish/subscribe hub for quote events.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for completed quotes.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish notifies all subscribers.
func (b *Bus) Publish(ctx context.Context, ev QuoteCompleted) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, ev)
	}
}
