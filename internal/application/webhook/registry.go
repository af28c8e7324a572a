// Package webhook verifies and dispatches inbound platform notifications.
package webhook

import (
	"sync"

	"github.com/erp/sallabridge/internal/domain/salla"
)

// Registry maps event names to their handlers. It is constructed once at
// process start and passed to the gateway; handlers registered later are
// picked up by subsequent dispatches.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]salla.WebhookHandler
}

// NewRegistry creates a new empty Registry
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]salla.WebhookHandler),
	}
}

// Register binds a handler to a dotted event name, replacing any previous
// handler for that event.
func (r *Registry) Register(event string, handler salla.WebhookHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[event] = handler
}

// Handler returns the handler for event, if one is registered.
func (r *Registry) Handler(event string) (salla.WebhookHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[event]
	return h, ok
}

// Events lists the registered event names.
func (r *Registry) Events() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make([]string, 0, len(r.handlers))
	for event := range r.handlers {
		events = append(events, event)
	}
	return events
}
