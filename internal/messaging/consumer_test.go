package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanHandler struct {
	received chan []byte
	err      error
}

func (h *chanHandler) Topics() []string { return nil }

func (h *chanHandler) Handle(_ context.Context, _ string, payload []byte, _ EventContext) error {
	h.received <- payload
	return h.err
}

func startConsumer(t *testing.T, handler EventHandler, topics ...string) (*gochannel.GoChannel, context.CancelFunc) {
	t.Helper()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})

	registry := NewRegistry()
	for _, topic := range topics {
		registry.Register(topic, handler)
	}

	consumer, err := NewConsumer(pubSub, NewDispatcher(registry, discardLogger()), discardLogger(), nil)
	require.NoError(t, err)
	consumer.Consume(topics)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = consumer.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		_ = consumer.Close()
	})

	select {
	case <-consumer.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	return pubSub, cancel
}

func TestConsumerDispatchesMessage(t *testing.T) {
	handler := &chanHandler{received: make(chan []byte, 1)}
	pubSub, _ := startConsumer(t, handler, TopicCreateCart)

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"customerId":"customer-1"}`))
	require.NoError(t, pubSub.Publish(TopicCreateCart, msg))

	select {
	case payload := <-handler.received:
		assert.JSONEq(t, `{"customerId":"customer-1"}`, string(payload))
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not receive the message")
	}
}

func TestConsumerSkipsUndecodableMessage(t *testing.T) {
	handler := &chanHandler{received: make(chan []byte, 2)}
	pubSub, _ := startConsumer(t, handler, TopicCreateCart)

	// A poison message must be acked and must not block the partition.
	require.NoError(t, pubSub.Publish(TopicCreateCart, message.NewMessage(watermill.NewUUID(), []byte(`{not json`))))
	require.NoError(t, pubSub.Publish(TopicCreateCart, message.NewMessage(watermill.NewUUID(), []byte(`{"customerId":"customer-2"}`))))

	select {
	case payload := <-handler.received:
		assert.JSONEq(t, `{"customerId":"customer-2"}`, string(payload))
	case <-time.After(5 * time.Second):
		t.Fatal("message after poison message was not delivered")
	}
	assert.Empty(t, handler.received)
}

func TestConsumerAdvancesPastFailingHandler(t *testing.T) {
	handler := &chanHandler{received: make(chan []byte, 2), err: assert.AnError}
	pubSub, _ := startConsumer(t, handler, TopicCreateCart)

	require.NoError(t, pubSub.Publish(TopicCreateCart, message.NewMessage(watermill.NewUUID(), []byte(`{"n":1}`))))
	require.NoError(t, pubSub.Publish(TopicCreateCart, message.NewMessage(watermill.NewUUID(), []byte(`{"n":2}`))))

	for _, want := range []string{`{"n":1}`, `{"n":2}`} {
		select {
		case payload := <-handler.received:
			assert.JSONEq(t, want, string(payload))
		case <-time.After(5 * time.Second):
			t.Fatalf("did not receive %s", want)
		}
	}
}

func TestNewConsumerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewConsumerMetrics(reg)
	require.NotNil(t, metrics)

	metrics.consumed.WithLabelValues(TopicCreateCart).Inc()
	metrics.decodeFailures.WithLabelValues(TopicCreateCart).Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 2)
}
