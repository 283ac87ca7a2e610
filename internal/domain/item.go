package domain

import (
	"time"

	"github.com/google/uuid"
)

// Item is a cart line referencing an external inventory record. CartID is
// the back-reference to the single owning cart.
type Item struct {
	ID          uuid.UUID `json:"id"`
	Version     int       `json:"version"`
	Quantity    int       `json:"quantity"`
	InventoryID string    `json:"inventoryId"`
	Price       Decimal   `json:"price"`
	CartID      uuid.UUID `json:"-"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}
