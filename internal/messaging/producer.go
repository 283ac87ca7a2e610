package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/omnixys/omnixys-shopping-cart-service/internal/domain"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/ids"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/jsoncodec"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/logging"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/telemetry"
)

var notificationTopics = map[string]string{
	"create": TopicNotificationCreate,
	"update": TopicNotificationUpdate,
	"delete": TopicNotificationDelete,
}

// Producer publishes outbound command and notification messages with
// the current trace context injected into the headers.
type Producer struct {
	publisher message.Publisher
	source    string
	logger    logging.ServiceLogger
}

// NewProducer creates a producer over the transport publisher. The
// source name is stamped onto every outgoing message.
func NewProducer(publisher message.Publisher, source string, logger logging.ServiceLogger) (*Producer, error) {
	if publisher == nil {
		return nil, ErrPublisherRequired
	}
	return &Producer{
		publisher: publisher,
		source:    source,
		logger:    logger,
	}, nil
}

// Send marshals the payload and publishes it to the topic. The key
// controls partition affinity; messages sharing a key keep their order.
func (p *Producer) Send(ctx context.Context, topic, key string, payload any) error {
	if topic == "" {
		return ErrTopicRequired
	}
	if payload == nil {
		return ErrPayloadRequired
	}

	data, err := jsoncodec.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", topic, err)
	}

	headers := Metadata{MetadataKeySource: p.source}
	if key != "" {
		headers[MetadataKeyPartition] = key
	}
	telemetry.Inject(ctx, headers)

	msg := message.NewMessage(ids.NewMessageID(), data)
	msg.Metadata = ToWatermill(headers)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("%w: topic %s: %v", ErrPublish, topic, err)
	}

	p.logger.Debug("message published", logging.Fields{
		"topic":      topic,
		"message_id": msg.UUID,
	})
	return nil
}

// SendMailNotification emits a cart lifecycle notification command.
// The kind selects the notification topic, e.g. "create" or "delete".
func (p *Producer) SendMailNotification(ctx context.Context, kind, customerID string) error {
	topic, ok := notificationTopics[kind]
	if !ok {
		return fmt.Errorf("%w: unknown notification kind %q", ErrTopicRequired, kind)
	}
	return p.Send(ctx, topic, customerID, NotificationPayload{
		Kind:       kind,
		CustomerID: customerID,
	})
}

// ReserveItem emits the inventory saga command reserving stock for the
// item just added to the customer's cart.
func (p *Producer) ReserveItem(ctx context.Context, item *domain.Item, customerID string) error {
	return p.Send(ctx, TopicReserveItem, customerID, ReservationPayload{
		Item:       itemPayloadOf(item),
		CustomerID: customerID,
	})
}

// ReleaseItem emits the compensating saga command releasing previously
// reserved stock.
func (p *Producer) ReleaseItem(ctx context.Context, item *domain.Item, customerID string) error {
	return p.Send(ctx, TopicReleaseItem, customerID, ReservationPayload{
		Item:       itemPayloadOf(item),
		CustomerID: customerID,
	})
}

// SendLogEvent ships one log record to the central log-stream topic.
// It implements the logging.EventSink interface.
func (p *Producer) SendLogEvent(ctx context.Context, level, msg string, attrs map[string]string) error {
	return p.Send(ctx, TopicLogStream, p.source, LogEventPayload{
		Service:   p.source,
		Level:     level,
		Message:   msg,
		Timestamp: time.Now().UTC(),
		Attrs:     attrs,
	})
}
