package messaging

import (
	"context"
	"fmt"

	"github.com/omnixys/omnixys-shopping-cart-service/internal/logging"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/telemetry"
)

// EventContext carries the per-message context handed to handlers.
type EventContext struct {
	MessageID string
	Headers   Metadata
	Trace     telemetry.TraceContext
}

// EventHandler is a unit of business logic bound to one or more topics.
type EventHandler interface {
	// Topics declares the topics this handler wants to receive.
	Topics() []string

	// Handle processes one decoded message. Errors are logged by the
	// dispatcher and never reach the consume loop.
	Handle(ctx context.Context, topic string, payload []byte, evt EventContext) error
}

// Dispatcher fans a decoded message out to every handler registered for
// its topic, isolating handler failures from each other and from the
// consume loop.
type Dispatcher struct {
	registry *Registry
	logger   logging.ServiceLogger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *Registry, logger logging.ServiceLogger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   logger,
	}
}

// Dispatch invokes all handlers for the topic sequentially in
// registration order. A topic with zero registrations is logged and
// dropped. A failing or panicking handler does not prevent later
// handlers from running.
func (d *Dispatcher) Dispatch(ctx context.Context, topic string, payload []byte, evt EventContext) {
	handlers := d.registry.HandlersFor(topic)
	if len(handlers) == 0 {
		d.logger.Warn("no handler registered for topic, dropping message", logging.Fields{
			"topic":      topic,
			"message_id": evt.MessageID,
		})
		return
	}

	for _, h := range handlers {
		d.invoke(ctx, h, topic, payload, evt)
	}
}

func (d *Dispatcher) invoke(ctx context.Context, h EventHandler, topic string, payload []byte, evt EventContext) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panicked", fmt.Errorf("panic: %v", r), logging.Fields{
				"topic":    topic,
				"trace_id": evt.Trace.TraceID,
			})
		}
	}()

	if err := h.Handle(ctx, topic, payload, evt); err != nil {
		d.logger.Error("handler failed", err, logging.Fields{
			"topic":    topic,
			"trace_id": evt.Trace.TraceID,
		})
	}
}
