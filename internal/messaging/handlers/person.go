// Package handlers contains the event handlers bound to the service's
// inbound topics.
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/omnixys/omnixys-shopping-cart-service/internal/domain"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/jsoncodec"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/logging"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/messaging"
)

// CartWriter is the slice of the write service the person handler
// needs.
type CartWriter interface {
	Create(ctx context.Context, c *domain.Cart) (uuid.UUID, error)
	Delete(ctx context.Context, customerID string) (bool, error)
}

// PersonHandler reacts to customer lifecycle events by creating or
// deleting the customer's cart.
type PersonHandler struct {
	write  CartWriter
	logger logging.ServiceLogger
}

func NewPersonHandler(write CartWriter, logger logging.ServiceLogger) *PersonHandler {
	return &PersonHandler{
		write:  write,
		logger: logger,
	}
}

func (h *PersonHandler) Topics() []string {
	return []string{
		messaging.TopicCreateCart,
		messaging.TopicDeleteCart,
	}
}

func (h *PersonHandler) Handle(ctx context.Context, topic string, payload []byte, evt messaging.EventContext) error {
	switch topic {
	case messaging.TopicCreateCart:
		return h.createCart(ctx, payload)
	case messaging.TopicDeleteCart:
		return h.deleteCart(ctx, payload)
	default:
		return fmt.Errorf("person handler received unexpected topic %q", topic)
	}
}

func (h *PersonHandler) createCart(ctx context.Context, payload []byte) error {
	var cmd messaging.CreateCartCommand
	if err := jsoncodec.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("decode create cart command: %w", err)
	}
	if cmd.CustomerID == "" {
		return errors.New("create cart command without customerId")
	}

	id, err := h.write.Create(ctx, &domain.Cart{CustomerID: cmd.CustomerID})
	if err != nil {
		return fmt.Errorf("create cart for customer %s: %w", cmd.CustomerID, err)
	}

	h.logger.Info("cart created for new customer", logging.Fields{
		"cart_id":     id,
		"customer_id": cmd.CustomerID,
	})
	return nil
}

func (h *PersonHandler) deleteCart(ctx context.Context, payload []byte) error {
	var cmd messaging.DeleteCartCommand
	if err := jsoncodec.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("decode delete cart command: %w", err)
	}
	if cmd.CustomerID == "" {
		return errors.New("delete cart command without customerId")
	}

	if _, err := h.write.Delete(ctx, cmd.CustomerID); err != nil {
		return fmt.Errorf("delete cart for customer %s: %w", cmd.CustomerID, err)
	}

	h.logger.Info("cart deleted for removed customer", logging.Fields{
		"customer_id": cmd.CustomerID,
	})
	return nil
}
