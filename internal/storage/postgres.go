// Package storage provides the Postgres-backed cart store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/omnixys/omnixys-shopping-cart-service/internal/cart"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/domain"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/logging"
)

// NewPool opens a pgx connection pool and waits until the database answers a
// ping or the context expires.
func NewPool(ctx context.Context, url string, logger logging.ServiceLogger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	for {
		if err := pool.Ping(ctx); err == nil {
			logger.Info("connected to cart database", nil)
			return pool, nil
		}
		logger.Debug("waiting for database", nil)
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, fmt.Errorf("database not reachable: %w", ctx.Err())
		case <-time.After(time.Second):
		}
	}
}

// CartStore implements cart.Store on top of Postgres. Every mutating
// statement bumps the row version; the cascade delete runs items-then-cart
// inside one transaction.
type CartStore struct {
	pool *pgxpool.Pool
}

// NewCartStore wraps the given pool.
func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{pool: pool}
}

func (s *CartStore) InsertCart(ctx context.Context, c *domain.Cart) (*domain.Cart, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO carts (id, version, customer_id, created, updated)
		VALUES ($1, 0, $2, now(), now())
		RETURNING version, created, updated
	`, c.ID, c.CustomerID).Scan(&c.Version, &c.Created, &c.Updated)
	if err != nil {
		return nil, fmt.Errorf("insert cart: %w", err)
	}
	return c, nil
}

func (s *CartStore) UpdateCart(ctx context.Context, c *domain.Cart) (*domain.Cart, error) {
	err := s.pool.QueryRow(ctx, `
		UPDATE carts
		SET customer_id = $2, version = version + 1, updated = now()
		WHERE id = $1
		RETURNING version, updated
	`, c.ID, c.CustomerID).Scan(&c.Version, &c.Updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, cart.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}
	return c, nil
}

func (s *CartStore) CartByID(ctx context.Context, id uuid.UUID, withItems bool) (*domain.Cart, error) {
	c := &domain.Cart{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, version, customer_id, created, updated
		FROM carts WHERE id = $1
	`, id).Scan(&c.ID, &c.Version, &c.CustomerID, &c.Created, &c.Updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, cart.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select cart: %w", err)
	}

	if withItems {
		if c.Items, err = s.itemsByCartID(ctx, c.ID); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (s *CartStore) CartByCustomerID(ctx context.Context, customerID string) (*domain.Cart, error) {
	c := &domain.Cart{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, version, customer_id, created, updated
		FROM carts WHERE customer_id = $1
	`, customerID).Scan(&c.ID, &c.Version, &c.CustomerID, &c.Created, &c.Updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, cart.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select cart by customer: %w", err)
	}

	if c.Items, err = s.itemsByCartID(ctx, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CartStore) itemsByCartID(ctx context.Context, cartID uuid.UUID) ([]*domain.Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, version, quantity, inventory_id, price::text, cart_id, created, updated
		FROM cart_items WHERE cart_id = $1
		ORDER BY created
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item := &domain.Item{}
		var price string
		if err := rows.Scan(&item.ID, &item.Version, &item.Quantity, &item.InventoryID,
			&price, &item.CartID, &item.Created, &item.Updated); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if item.Price, err = domain.ParseDecimal(price); err != nil {
			return nil, fmt.Errorf("item %s: %w", item.ID, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *CartStore) InsertItem(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO cart_items (id, version, quantity, inventory_id, price, cart_id, created, updated)
		VALUES ($1, 0, $2, $3, $4::numeric, $5, now(), now())
		RETURNING version, created, updated
	`, item.ID, item.Quantity, item.InventoryID, item.Price.String(), item.CartID).
		Scan(&item.Version, &item.Created, &item.Updated)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return item, nil
}

func (s *CartStore) ItemByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	item := &domain.Item{}
	var price string
	err := s.pool.QueryRow(ctx, `
		SELECT id, version, quantity, inventory_id, price::text, cart_id, created, updated
		FROM cart_items WHERE id = $1
	`, id).Scan(&item.ID, &item.Version, &item.Quantity, &item.InventoryID,
		&price, &item.CartID, &item.Created, &item.Updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, cart.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select item: %w", err)
	}
	if item.Price, err = domain.ParseDecimal(price); err != nil {
		return nil, fmt.Errorf("item %s: %w", item.ID, err)
	}
	return item, nil
}

func (s *CartStore) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrNotFound
	}
	return nil
}

func (s *CartStore) DeleteItemsByInventory(ctx context.Context, cartID uuid.UUID, inventoryIDs []string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM cart_items WHERE cart_id = $1 AND inventory_id = ANY($2)
	`, cartID, inventoryIDs)
	if err != nil {
		return 0, fmt.Errorf("delete items by inventory: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteCartCascade removes the cart's items and then the cart row in one
// transaction. A failure anywhere rolls the whole cascade back.
func (s *CartStore) DeleteCartCascade(ctx context.Context, cartID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin cascade delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("cascade delete items: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("cascade delete cart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit cascade delete: %w", err)
	}
	return nil
}
