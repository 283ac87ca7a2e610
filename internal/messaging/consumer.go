package messaging

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/omnixys/omnixys-shopping-cart-service/internal/jsoncodec"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/logging"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/telemetry"
)

// ConsumerMetrics exposes counters for the consume loop.
type ConsumerMetrics struct {
	consumed       *prometheus.CounterVec
	decodeFailures *prometheus.CounterVec
}

// NewConsumerMetrics registers the consumer counters on the given
// registerer.
func NewConsumerMetrics(reg prometheus.Registerer) *ConsumerMetrics {
	m := &ConsumerMetrics{
		consumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopping_cart_messages_consumed_total",
			Help: "Messages consumed and dispatched, per topic.",
		}, []string{"topic"}),
		decodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopping_cart_decode_failures_total",
			Help: "Messages dropped because the payload was not valid JSON, per topic.",
		}, []string{"topic"}),
	}
	reg.MustRegister(m.consumed, m.decodeFailures)
	return m
}

// Consumer subscribes to a topic set and forwards decoded messages to
// the dispatcher. Partition concurrency and per-key ordering come from
// the underlying subscriber; within one partition, dispatch is strictly
// sequential.
type Consumer struct {
	router     *message.Router
	subscriber message.Subscriber
	dispatcher *Dispatcher
	logger     logging.ServiceLogger
	tracer     trace.Tracer
	metrics    *ConsumerMetrics
}

// NewConsumer wires a Watermill router over the subscriber. The metrics
// argument may be nil to skip instrumentation.
func NewConsumer(subscriber message.Subscriber, dispatcher *Dispatcher, logger logging.ServiceLogger, metrics *ConsumerMetrics) (*Consumer, error) {
	router, err := message.NewRouter(message.RouterConfig{}, logging.NewWatermillAdapter(logger))
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	return &Consumer{
		router:     router,
		subscriber: subscriber,
		dispatcher: dispatcher,
		logger:     logger,
		tracer:     otel.Tracer("shopping-cart-consumer"),
		metrics:    metrics,
	}, nil
}

// Consume registers one no-publisher handler per topic. Call before
// Run.
func (c *Consumer) Consume(topics []string) {
	for _, topic := range topics {
		c.router.AddNoPublisherHandler(
			"consume_"+topic,
			topic,
			c.subscriber,
			c.handle(topic),
		)
	}
	c.logger.Info("subscribed", logging.Fields{"topics": topics})
}

// Run starts the router and blocks until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.router.Run(ctx)
}

// Running returns a channel that closes once the router is up. Used by
// tests to publish only after the subscription is active.
func (c *Consumer) Running() chan struct{} {
	return c.router.Running()
}

// Close shuts the router down.
func (c *Consumer) Close() error {
	return c.router.Close()
}

// handle returns the per-topic message handler. It always returns nil:
// decode failures are dropped and handler failures are contained by the
// dispatcher, so the offset always advances.
func (c *Consumer) handle(topic string) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		headers := FromWatermill(msg.Metadata)
		ctx := telemetry.Extract(msg.Context(), headers)

		ctx, span := c.tracer.Start(ctx, "shopping-cart.consume")
		defer span.End()
		span.SetAttributes(
			attribute.String("messaging.destination.name", topic),
			attribute.String("messaging.message.id", msg.UUID),
		)

		if !jsoncodec.Valid(msg.Payload) {
			err := fmt.Errorf("%w: topic %s", ErrDecode, topic)
			telemetry.RecordSpanError(span, err)
			c.logger.Error("dropping undecodable message", err, logging.Fields{
				"topic":      topic,
				"message_id": msg.UUID,
			})
			if c.metrics != nil {
				c.metrics.decodeFailures.WithLabelValues(topic).Inc()
			}
			return nil
		}

		evt := EventContext{
			MessageID: msg.UUID,
			Headers:   headers,
			Trace:     telemetry.ContextFrom(ctx),
		}
		c.dispatcher.Dispatch(ctx, topic, msg.Payload, evt)

		if c.metrics != nil {
			c.metrics.consumed.WithLabelValues(topic).Inc()
		}
		return nil
	}
}
