package cart

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/omnixys/omnixys-shopping-cart-service/internal/domain"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/logging"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/telemetry"
)

// Reader is the read collaborator the write service depends on. Totals and
// completeness of the returned carts are derived from the loaded item set,
// never from persisted values.
type Reader interface {
	FindByID(ctx context.Context, id uuid.UUID, withItems bool) (*domain.Cart, error)
	FindByCustomerID(ctx context.Context, customerID string) (*domain.Cart, error)
}

// ReadService implements Reader on top of the cart store.
type ReadService struct {
	store  Store
	logger logging.ServiceLogger
	tracer trace.Tracer
}

// NewReadService builds the read collaborator.
func NewReadService(store Store, logger logging.ServiceLogger) *ReadService {
	return &ReadService{
		store:  store,
		logger: logger,
		tracer: otel.Tracer("shopping-cart-read-service"),
	}
}

// FindByID loads a cart by id, optionally with its items.
// Returns ErrNotFound when no such cart exists.
func (s *ReadService) FindByID(ctx context.Context, id uuid.UUID, withItems bool) (*domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "shopping-cart.read.find-by-id")
	defer span.End()

	s.logger.Debug("findById", logging.Fields{"id": id, "withItems": withItems})

	c, err := s.store.CartByID(ctx, id, withItems)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}
	return c, nil
}

// FindByCustomerID loads the customer's cart together with its items.
// Returns ErrNotFound when the customer has no cart.
func (s *ReadService) FindByCustomerID(ctx context.Context, customerID string) (*domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "shopping-cart.read.find-by-customer-id")
	defer span.End()

	s.logger.Debug("findByCustomerId", logging.Fields{"customerId": customerID})

	c, err := s.store.CartByCustomerID(ctx, customerID)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, err
	}
	return c, nil
}
