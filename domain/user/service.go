package user

import (
	"context"
	"log/slog"
	"sort"

	"orderdesk/core/event"
	"orderdesk/core/eventbus"
)

// OrderCleaner removes the orders that belong to a deleted user.
type OrderCleaner interface {
	DeleteOrdersForUser(ctx context.Context, userID string) (int, error)
}

// Service provides business logic for user management.
// Every create, update and delete is announced on the event bus as a
// collection:<op>:user event, including failed ones.
type Service struct {
	repo   Repository
	bus    eventbus.EventBus
	orders OrderCleaner
	logger *slog.Logger
}

// ServiceConfig holds the dependencies of a Service.
type ServiceConfig struct {
	Repository Repository
	EventBus   eventbus.EventBus
	Orders     OrderCleaner
	Logger     *slog.Logger
}

// NewService creates a new user service.
func NewService(cfg *ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		repo:   cfg.Repository,
		bus:    cfg.EventBus,
		orders: cfg.Orders,
		logger: cfg.Logger,
	}
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// ListUsers retrieves all users, sorted by ranking then ID.
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].Ranking != users[j].Ranking {
			return users[i].Ranking < users[j].Ranking
		}
		return users[i].ID < users[j].ID
	})

	return users, nil
}

// CreateUser validates and inserts a new user.
func (s *Service) CreateUser(ctx context.Context, u *User) error {
	if u.Role == "" {
		u.Role = RoleCustomer
	}

	err := u.Validate()
	if err == nil {
		err = s.repo.Insert(ctx, u)
	}

	s.emit(event.OpAdd, u, u.ID, err)
	return err
}

// UpdateUser validates and updates an existing user.
func (s *Service) UpdateUser(ctx context.Context, u *User) error {
	err := u.Validate()
	if err == nil {
		err = s.repo.Update(ctx, u)
	}

	s.emit(event.OpEdit, u, u.ID, err)
	return err
}

// DeleteUser removes a user and, if an OrderCleaner is configured, the user's orders.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err == nil && existing == nil {
		err = ErrUserNotFound
	}
	if err == nil {
		err = s.repo.Delete(ctx, id)
	}
	if err == nil && s.orders != nil {
		if n, cerr := s.orders.DeleteOrdersForUser(ctx, id); cerr != nil {
			s.logger.Warn("Failed to remove orders of deleted user", "user_id", id, "error", cerr)
		} else if n > 0 {
			s.logger.Info("Removed orders of deleted user", "user_id", id, "count", n)
		}
	}

	s.emit(event.OpDelete, existing, id, err)
	return err
}

// emit announces a change. Listener failures are logged by the bus and do not
// affect the outcome of the operation.
func (s *Service) emit(op event.Operation, u *User, primaryKey string, opErr error) {
	if s.bus == nil {
		return
	}

	var record *User
	if u != nil {
		record = u.Clone()
	}

	err := eventbus.EmitCollection(s.bus, event.Collection[*User]{
		Op:         op,
		Entity:     EntityName,
		Record:     record,
		PrimaryKey: primaryKey,
		Err:        opErr,
		Foundation: s,
	})
	if err != nil {
		s.logger.Debug("User change listeners reported errors", "op", op, "user_id", primaryKey, "error", err)
	}
}
