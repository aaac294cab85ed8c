package events

import (
	"errors"
	"fmt"
	"sync"
)

// InMemoryPublisher is a simple in-process envelope publisher.
type InMemoryPublisher struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewInMemoryPublisher creates a new in-memory publisher.
func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{
		handlers: make([]Handler, 0),
	}
}

// Publish sends an envelope to all subscribers. A failing handler does not
// block delivery to the rest; its error is joined into the returned error
// after every handler has run.
func (p *InMemoryPublisher) Publish(env Envelope) error {
	p.mu.RLock()
	handlers := make([]Handler, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.RUnlock()

	var errs []error
	for i, h := range handlers {
		if err := h(env); err != nil {
			errs = append(errs, fmt.Errorf("handler %d failed for envelope %s: %w", i, env.Type, err))
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers a handler for envelopes.
func (p *InMemoryPublisher) Subscribe(handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, handler)
}
