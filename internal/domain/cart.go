// Package domain holds the shopping-cart aggregate: carts own items, carry a
// monotonic version for optimistic locking, and derive their totals from the
// current item set on every read.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the aggregate root. A cart exclusively owns its items; an item
// never outlives the deletion of its cart.
type Cart struct {
	ID         uuid.UUID `json:"id"`
	Version    int       `json:"version"`
	CustomerID string    `json:"customerId"`
	Items      []*Item   `json:"cartItems,omitempty"`
	Created    time.Time `json:"created"`
	Updated    time.Time `json:"updated"`
}

// TotalAmount sums price times quantity over the current item set. It is
// recomputed on every call and never persisted.
func (c *Cart) TotalAmount() Decimal {
	var total Decimal
	for _, item := range c.Items {
		total = total.Add(item.Price.MulInt(int64(item.Quantity)))
	}
	return total
}

// IsComplete reports whether the cart has no items left. Like TotalAmount it
// is a read-time projection, not a persisted state flag.
func (c *Cart) IsComplete() bool {
	return len(c.Items) == 0
}
