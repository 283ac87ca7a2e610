package messaging

import (
	"sort"
	"sync"
)

// Registry maps topic names to their ordered handler lists. It is built
// during startup by registering every handler's declared topics and is
// read-only afterwards.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

// NewRegistry creates an empty topic registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string][]EventHandler),
	}
}

// Register binds a handler to a topic. Multiple handlers per topic are
// kept in registration order.
func (r *Registry) Register(topic string, h EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[topic] = append(r.handlers[topic], h)
}

// RegisterHandler binds a handler to every topic it declares.
func (r *Registry) RegisterHandler(h EventHandler) {
	for _, topic := range h.Topics() {
		r.Register(topic, h)
	}
}

// HandlersFor returns the ordered handler list for a topic, or an empty
// slice when nothing is registered.
func (r *Registry) HandlersFor(topic string) []EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[topic]
}

// Topics returns the sorted list of topics with at least one handler.
func (r *Registry) Topics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topics := make([]string, 0, len(r.handlers))
	for topic := range r.handlers {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}
