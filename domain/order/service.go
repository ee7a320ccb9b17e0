package order

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"orderdesk/core/event"
	"orderdesk/core/eventbus"
)

// Service provides business logic for order management.
// Every create, update and delete is announced on the event bus as a
// collection:<op>:order event, including failed ones.
type Service struct {
	repo   Repository
	bus    eventbus.EventBus
	logger *slog.Logger
	now    func() time.Time
}

// ServiceConfig holds the dependencies of a Service.
type ServiceConfig struct {
	Repository Repository
	EventBus   eventbus.EventBus
	Logger     *slog.Logger
}

// NewService creates a new order service.
func NewService(cfg *ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		repo:   cfg.Repository,
		bus:    cfg.EventBus,
		logger: cfg.Logger,
		now:    time.Now,
	}
}

// NewNumber generates a human-facing order number.
func NewNumber() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// GetOrder retrieves an order by ID.
func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// ListOrders retrieves all orders, newest first.
func (s *Service) ListOrders(ctx context.Context) ([]*Order, error) {
	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(orders)
	return orders, nil
}

// ListOrdersForUser retrieves the orders placed by a user, newest first.
func (s *Service) ListOrdersForUser(ctx context.Context, userID string) ([]*Order, error) {
	orders, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(orders)
	return orders, nil
}

// CreateOrder validates and inserts a new order.
// Number, Status and timestamps are filled in when empty.
func (s *Service) CreateOrder(ctx context.Context, o *Order) error {
	if o.Number == "" {
		o.Number = NewNumber()
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	now := s.now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	err := o.Validate()
	if err == nil {
		err = s.repo.Insert(ctx, o)
	}

	s.emit(event.OpAdd, o, o.ID, err)
	return err
}

// UpdateOrder validates and updates an existing order.
func (s *Service) UpdateOrder(ctx context.Context, o *Order) error {
	o.UpdatedAt = s.now()

	err := o.Validate()
	if err == nil {
		err = s.repo.Update(ctx, o)
	}

	s.emit(event.OpEdit, o, o.ID, err)
	return err
}

// UpdateStatus moves an order to a new status if the transition is allowed.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		s.emit(event.OpEdit, nil, id, err)
		return nil, err
	}

	if !o.Status.CanTransitionTo(status) {
		err = fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, o.Status, status)
		s.emit(event.OpEdit, o, id, err)
		return nil, err
	}

	o.Status = status
	if err := s.UpdateOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// DeleteOrder removes an order.
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err == nil && existing == nil {
		err = ErrOrderNotFound
	}
	if err == nil {
		err = s.repo.Delete(ctx, id)
	}

	s.emit(event.OpDelete, existing, id, err)
	return err
}

// DeleteOrdersForUser removes every order placed by a user.
// Each removal is announced individually. Returns the number of deleted orders.
func (s *Service) DeleteOrdersForUser(ctx context.Context, userID string) (int, error) {
	orders, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, o := range orders {
		if err := s.DeleteOrder(ctx, o.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// emit announces a change. Listener failures are logged by the bus and do not
// affect the outcome of the operation.
func (s *Service) emit(op event.Operation, o *Order, primaryKey string, opErr error) {
	if s.bus == nil {
		return
	}

	var record *Order
	if o != nil {
		record = o.Clone()
	}

	err := eventbus.EmitCollection(s.bus, event.Collection[*Order]{
		Op:         op,
		Entity:     EntityName,
		Record:     record,
		PrimaryKey: primaryKey,
		Err:        opErr,
		Foundation: s,
	})
	if err != nil {
		s.logger.Debug("Order change listeners reported errors", "op", op, "order_id", primaryKey, "error", err)
	}
}

// sortNewestFirst orders by creation time descending, then by ID for stable ordering.
func sortNewestFirst(orders []*Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
}
