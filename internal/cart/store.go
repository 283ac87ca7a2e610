package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/omnixys/omnixys-shopping-cart-service/internal/domain"
)

// Store is the persistence capability the cart services depend on. The
// Postgres implementation lives in internal/storage; tests substitute fakes.
//
// Mutating operations bump the entity version by exactly one on success.
// DeleteCartCascade removes a cart together with all of its items in one
// transaction, or none of them.
type Store interface {
	InsertCart(ctx context.Context, c *domain.Cart) (*domain.Cart, error)
	UpdateCart(ctx context.Context, c *domain.Cart) (*domain.Cart, error)
	CartByID(ctx context.Context, id uuid.UUID, withItems bool) (*domain.Cart, error)
	CartByCustomerID(ctx context.Context, customerID string) (*domain.Cart, error)

	InsertItem(ctx context.Context, item *domain.Item) (*domain.Item, error)
	ItemByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	DeleteItemsByInventory(ctx context.Context, cartID uuid.UUID, inventoryIDs []string) (int64, error)

	DeleteCartCascade(ctx context.Context, cartID uuid.UUID) error
}
