package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnixys/omnixys-shopping-cart-service/internal/domain"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/jsoncodec"
)

type capturingPublisher struct {
	topics   []string
	messages []*message.Message
	err      error
}

func (p *capturingPublisher) Publish(topic string, messages ...*message.Message) error {
	if p.err != nil {
		return p.err
	}
	for _, msg := range messages {
		p.topics = append(p.topics, topic)
		p.messages = append(p.messages, msg)
	}
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func newTestProducer(t *testing.T, pub *capturingPublisher) *Producer {
	t.Helper()
	producer, err := NewProducer(pub, "shopping-cart", discardLogger())
	require.NoError(t, err)
	return producer
}

func TestSend(t *testing.T) {
	pub := &capturingPublisher{}
	producer := newTestProducer(t, pub)

	err := producer.Send(context.Background(), TopicNotificationCreate, "customer-1", NotificationPayload{
		Kind:       "create",
		CustomerID: "customer-1",
	})
	require.NoError(t, err)

	require.Len(t, pub.messages, 1)
	msg := pub.messages[0]
	assert.Equal(t, TopicNotificationCreate, pub.topics[0])
	assert.NotEmpty(t, msg.UUID)
	assert.Equal(t, "customer-1", msg.Metadata[MetadataKeyPartition])
	assert.Equal(t, "shopping-cart", msg.Metadata[MetadataKeySource])

	var payload NotificationPayload
	require.NoError(t, jsoncodec.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "create", payload.Kind)
}

func TestSendValidations(t *testing.T) {
	producer := newTestProducer(t, &capturingPublisher{})

	err := producer.Send(context.Background(), "", "key", NotificationPayload{})
	assert.ErrorIs(t, err, ErrTopicRequired)

	err = producer.Send(context.Background(), TopicLogStream, "key", nil)
	assert.ErrorIs(t, err, ErrPayloadRequired)

	_, err = NewProducer(nil, "shopping-cart", discardLogger())
	assert.ErrorIs(t, err, ErrPublisherRequired)
}

func TestSendPublishFailure(t *testing.T) {
	pub := &capturingPublisher{err: errors.New("broker unreachable")}
	producer := newTestProducer(t, pub)

	err := producer.Send(context.Background(), TopicNotificationCreate, "customer-1", NotificationPayload{})
	assert.ErrorIs(t, err, ErrPublish)
}

func TestSendMailNotification(t *testing.T) {
	pub := &capturingPublisher{}
	producer := newTestProducer(t, pub)

	require.NoError(t, producer.SendMailNotification(context.Background(), "delete", "customer-1"))
	require.Len(t, pub.topics, 1)
	assert.Equal(t, TopicNotificationDelete, pub.topics[0])

	err := producer.SendMailNotification(context.Background(), "reboot", "customer-1")
	assert.ErrorIs(t, err, ErrTopicRequired)
}

func TestReserveAndReleaseItem(t *testing.T) {
	pub := &capturingPublisher{}
	producer := newTestProducer(t, pub)

	price, err := domain.ParseDecimal("9.99")
	require.NoError(t, err)
	item := &domain.Item{InventoryID: "inv-1", Quantity: 3, Price: price}

	require.NoError(t, producer.ReserveItem(context.Background(), item, "customer-1"))
	require.NoError(t, producer.ReleaseItem(context.Background(), item, "customer-1"))

	require.Equal(t, []string{TopicReserveItem, TopicReleaseItem}, pub.topics)

	var payload ReservationPayload
	require.NoError(t, jsoncodec.Unmarshal(pub.messages[0].Payload, &payload))
	assert.Equal(t, "inv-1", payload.Item.InventoryID)
	assert.Equal(t, 3, payload.Item.Quantity)
	assert.Equal(t, "customer-1", payload.CustomerID)
	// Both saga commands share the customer key so they stay ordered.
	assert.Equal(t, pub.messages[0].Metadata[MetadataKeyPartition], pub.messages[1].Metadata[MetadataKeyPartition])
}

func TestSendLogEvent(t *testing.T) {
	pub := &capturingPublisher{}
	producer := newTestProducer(t, pub)

	err := producer.SendLogEvent(context.Background(), "INFO", "cart created", map[string]string{"id": "abc"})
	require.NoError(t, err)
	require.Equal(t, []string{TopicLogStream}, pub.topics)

	var payload LogEventPayload
	require.NoError(t, jsoncodec.Unmarshal(pub.messages[0].Payload, &payload))
	assert.Equal(t, "shopping-cart", payload.Service)
	assert.Equal(t, "INFO", payload.Level)
	assert.Equal(t, "cart created", payload.Message)
}
