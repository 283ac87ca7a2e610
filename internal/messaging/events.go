package messaging

import (
	"time"

	"github.com/google/uuid"

	"github.com/omnixys/omnixys-shopping-cart-service/internal/domain"
)

// CreateCartCommand arrives on shopping-cart.create.person when a new
// customer account is provisioned.
type CreateCartCommand struct {
	CustomerID string `json:"customerId"`
}

// DeleteCartCommand arrives on shopping-cart.delete.person when a
// customer account is removed.
type DeleteCartCommand struct {
	CustomerID string `json:"customerId"`
}

// NotificationPayload is sent to the notification service for cart
// lifecycle mails.
type NotificationPayload struct {
	Kind       string `json:"kind"`
	CustomerID string `json:"customerId"`
}

// ItemPayload mirrors a cart item on the wire.
type ItemPayload struct {
	ID          uuid.UUID      `json:"id"`
	InventoryID string         `json:"inventoryId"`
	Quantity    int            `json:"quantity"`
	Price       domain.Decimal `json:"price"`
}

// ReservationPayload carries an inventory saga command, reserveItem or
// releaseItem depending on the topic.
type ReservationPayload struct {
	Item       ItemPayload `json:"item"`
	CustomerID string      `json:"customerId"`
}

// LogEventPayload ships a structured log record to the central
// log-stream topic.
type LogEventPayload struct {
	Service   string            `json:"service"`
	Level     string            `json:"level"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

func itemPayloadOf(item *domain.Item) ItemPayload {
	return ItemPayload{
		ID:          item.ID,
		InventoryID: item.InventoryID,
		Quantity:    item.Quantity,
		Price:       item.Price,
	}
}
