package cart

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/omnixys/omnixys-shopping-cart-service/internal/domain"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/logging"
	"github.com/omnixys/omnixys-shopping-cart-service/internal/telemetry"
)

// versionPattern accepts a quoted small integer, e.g. `"3"`.
var versionPattern = regexp.MustCompile(`^"\d{1,3}"$`)

// CommandPublisher is the narrow outbound-messaging capability the write
// service depends on. The Kafka producer implements it; keeping the
// interface here breaks the would-be cycle between the messaging layer and
// the cart services.
type CommandPublisher interface {
	SendMailNotification(ctx context.Context, kind, customerID string) error
	ReserveItem(ctx context.Context, item *domain.Item, customerID string) error
	ReleaseItem(ctx context.Context, item *domain.Item, customerID string) error
}

// WriteService is the transactional core for cart mutation. Every operation
// runs inside its own span; saga commands and notifications are published
// best-effort — a publish failure is recorded and logged but never rolls
// back the local write (there is no two-phase guarantee between the bus and
// the database).
type WriteService struct {
	store    Store
	reader   Reader
	commands CommandPublisher
	logger   logging.ServiceLogger
	tracer   trace.Tracer
}

// NewWriteService wires the write service with its collaborators.
func NewWriteService(store Store, reader Reader, commands CommandPublisher, logger logging.ServiceLogger) *WriteService {
	return &WriteService{
		store:    store,
		reader:   reader,
		commands: commands,
		logger:   logger,
		tracer:   otel.Tracer("shopping-cart-write-service"),
	}
}

// Create persists a new cart and emits a "create" notification carrying the
// request's trace context.
func (s *WriteService) Create(ctx context.Context, c *domain.Cart) (uuid.UUID, error) {
	ctx, span := s.tracer.Start(ctx, "shopping-cart.write.create")
	defer span.End()

	s.logger.Debug("create", logging.Fields{"customerId": c.CustomerID})

	saved, err := s.saveCartSpan(ctx, c)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return uuid.Nil, err
	}

	s.notifySpan(ctx, "create", saved.CustomerID)

	return saved.ID, nil
}

func (s *WriteService) saveCartSpan(ctx context.Context, c *domain.Cart) (*domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "cart-store.save")
	defer span.End()

	saved, err := s.store.InsertCart(ctx, c)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return saved, nil
}

// notifySpan publishes a mail notification inside its own span. Failures are
// logged with the trace id and deliberately not surfaced: the local write
// has already committed.
func (s *WriteService) notifySpan(ctx context.Context, kind, customerID string) {
	ctx, span := s.tracer.Start(ctx, "kafka.send-messages")
	defer span.End()

	if err := s.commands.SendMailNotification(ctx, kind, customerID); err != nil {
		telemetry.RecordSpanError(span, err)
		s.logger.Error("notification publish failed", err, logging.Fields{
			"kind":       kind,
			"customerId": customerID,
			"traceId":    telemetry.ContextFrom(ctx).TraceID,
		})
	}
}

// AddItem attaches a new item to the customer's cart.
func (s *WriteService) AddItem(ctx context.Context, item *domain.Item, customerID string) (uuid.UUID, error) {
	ctx, span := s.tracer.Start(ctx, "shopping-cart.write.add-item")
	defer span.End()

	id, err := s.addItem(ctx, item, customerID)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return uuid.Nil, err
	}
	return id, nil
}

// AddItemAndReserve persists the item and then fires a reserve-item saga
// command. The command is fire-and-forget relative to the local write.
func (s *WriteService) AddItemAndReserve(ctx context.Context, item *domain.Item, customerID string) (uuid.UUID, error) {
	ctx, span := s.tracer.Start(ctx, "shopping-cart.write.add-item")
	defer span.End()

	id, err := s.addItem(ctx, item, customerID)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return uuid.Nil, err
	}

	if err := s.commands.ReserveItem(ctx, item, customerID); err != nil {
		telemetry.RecordSpanError(span, err)
		s.logger.Error("reserve-item publish failed", err, logging.Fields{
			"itemId":  item.ID,
			"traceId": telemetry.ContextFrom(ctx).TraceID,
		})
	}

	return id, nil
}

func (s *WriteService) addItem(ctx context.Context, item *domain.Item, customerID string) (uuid.UUID, error) {
	s.logger.Debug("addItem", logging.Fields{"inventoryId": item.InventoryID, "customerId": customerID})

	c, err := s.reader.FindByCustomerID(ctx, customerID)
	if err != nil {
		return uuid.Nil, err
	}

	item.CartID = c.ID
	saved, err := s.store.InsertItem(ctx, item)
	if err != nil {
		return uuid.Nil, fmt.Errorf("add item: %w", err)
	}

	return saved.ID, nil
}

// RemoveItem emits a release-item saga command and then deletes the item
// row. The publish intentionally precedes the delete; see the service
// documentation for the consistency trade-off.
func (s *WriteService) RemoveItem(ctx context.Context, id uuid.UUID, customerID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "shopping-cart.write.remove-item")
	defer span.End()

	s.logger.Debug("removeItem", logging.Fields{"id": id})

	item, err := s.store.ItemByID(ctx, id)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return false, err
	}

	if err := s.commands.ReleaseItem(ctx, item, customerID); err != nil {
		telemetry.RecordSpanError(span, err)
		s.logger.Error("release-item publish failed", err, logging.Fields{
			"itemId":  item.ID,
			"traceId": telemetry.ContextFrom(ctx).TraceID,
		})
	}

	if err := s.store.DeleteItem(ctx, id); err != nil {
		telemetry.RecordSpanError(span, err)
		return false, err
	}

	return true, nil
}

// OrderItems removes all of the customer's items whose inventory id is in
// inventoryIDs. Matching nothing is a no-op, not an error.
func (s *WriteService) OrderItems(ctx context.Context, inventoryIDs []string, customerID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "shopping-cart.write.order-items")
	defer span.End()

	s.logger.Debug("orderItems", logging.Fields{"inventoryIds": inventoryIDs, "customerId": customerID})

	c, err := s.reader.FindByCustomerID(ctx, customerID)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return false, err
	}

	deleted, err := s.store.DeleteItemsByInventory(ctx, c.ID, inventoryIDs)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return false, fmt.Errorf("order items: %w", err)
	}

	s.logger.Debug("orderItems: items deleted", logging.Fields{"count": deleted})
	return true, nil
}

// Update merges the mutable fields of c into the persisted cart after
// checking the optimistic-lock version token. The token must be a quoted
// integer; a token behind the persisted version fails with
// ErrVersionOutdated. Returns the new persisted version.
func (s *WriteService) Update(ctx context.Context, id uuid.UUID, c *domain.Cart, versionStr string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "shopping-cart.write.update")
	defer span.End()

	s.logger.Debug("update", logging.Fields{"id": id, "version": versionStr})

	persisted, err := s.validateUpdate(ctx, id, versionStr)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return 0, err
	}

	if c.CustomerID != "" {
		persisted.CustomerID = c.CustomerID
	}

	updated, err := s.store.UpdateCart(ctx, persisted)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return 0, fmt.Errorf("update cart: %w", err)
	}

	return updated.Version, nil
}

// validateUpdate checks the version token format before any lookup, then
// compares it against the persisted version.
func (s *WriteService) validateUpdate(ctx context.Context, id uuid.UUID, versionStr string) (*domain.Cart, error) {
	if !versionPattern.MatchString(versionStr) {
		return nil, fmt.Errorf("%w: %q", ErrVersionInvalid, versionStr)
	}

	version, err := strconv.Atoi(versionStr[1 : len(versionStr)-1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrVersionInvalid, versionStr)
	}

	persisted, err := s.reader.FindByID(ctx, id, true)
	if err != nil {
		return nil, err
	}

	if version < persisted.Version {
		return nil, fmt.Errorf("%w: got %d, persisted %d", ErrVersionOutdated, version, persisted.Version)
	}

	return persisted, nil
}

// Delete removes the customer's cart with all its items in one transaction
// and, on success, emits a "delete" notification.
func (s *WriteService) Delete(ctx context.Context, customerID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "shopping-cart.write.delete")
	defer span.End()

	s.logger.Debug("delete", logging.Fields{"customerId": customerID})

	c, err := s.reader.FindByCustomerID(ctx, customerID)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return false, err
	}

	if err := s.store.DeleteCartCascade(ctx, c.ID); err != nil {
		telemetry.RecordSpanError(span, err)
		return false, err
	}

	s.notifySpan(ctx, "delete", customerID)

	return true, nil
}

// DeleteByID removes the cart with the given id and all its items in one
// transaction. No notification is emitted on this path.
func (s *WriteService) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "shopping-cart.write.delete-by-id")
	defer span.End()

	s.logger.Debug("deleteById", logging.Fields{"id": id})

	c, err := s.reader.FindByID(ctx, id, true)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		return false, err
	}

	if err := s.store.DeleteCartCascade(ctx, c.ID); err != nil {
		telemetry.RecordSpanError(span, err)
		return false, err
	}

	return true, nil
}
