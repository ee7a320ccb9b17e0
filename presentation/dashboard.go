package presentation

import (
	"context"
	"fmt"
	"log/slog"

	"orderdesk/core/eventbus"
	"orderdesk/domain/order"
	"orderdesk/domain/user"
)

// Dashboard is the main screen model: a live order list and a live user list.
type Dashboard struct {
	orderService *order.Service
	userService  *user.Service
	logger       *slog.Logger

	Orders *CollectionView[*order.Order]
	Users  *CollectionView[*user.User]
}

// DashboardConfig holds configuration for Dashboard.
type DashboardConfig struct {
	OrderService *order.Service
	UserService  *user.Service
	EventBus     eventbus.EventBus
	Logger       *slog.Logger
	// OnChange is forwarded to both views.
	OnChange func(Change)
}

// Summary aggregates the dashboard header figures.
type Summary struct {
	Users        int
	Orders       int
	OpenOrders   int
	RevenueCents int64
}

// NewDashboard creates an unmounted dashboard.
func NewDashboard(cfg *DashboardConfig) *Dashboard {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Dashboard{
		orderService: cfg.OrderService,
		userService:  cfg.UserService,
		logger:       cfg.Logger,
		Orders: NewCollectionView(&ViewConfig[*order.Order]{
			Entity:   order.EntityName,
			EventBus: cfg.EventBus,
			Key:      func(o *order.Order) string { return o.ID },
			OnChange: cfg.OnChange,
			Logger:   cfg.Logger,
		}),
		Users: NewCollectionView(&ViewConfig[*user.User]{
			Entity:   user.EntityName,
			EventBus: cfg.EventBus,
			Key:      func(u *user.User) string { return u.ID },
			OnChange: cfg.OnChange,
			Logger:   cfg.Logger,
		}),
	}
}

// Mount loads both lists and starts following changes.
func (d *Dashboard) Mount(ctx context.Context) error {
	users, err := d.userService.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	orders, err := d.orderService.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}

	if err := d.Users.Mount(users); err != nil {
		return err
	}
	if err := d.Orders.Mount(orders); err != nil {
		d.Users.Unmount()
		return err
	}

	d.logger.Info("Dashboard mounted", "users", len(users), "orders", len(orders))
	return nil
}

// Unmount releases every listener registered by the dashboard.
func (d *Dashboard) Unmount() {
	released := d.Orders.Unmount() + d.Users.Unmount()
	d.logger.Info("Dashboard unmounted", "released", released)
}

// Summary computes the header figures from the current rows.
// Revenue counts every order that was not cancelled.
func (d *Dashboard) Summary() Summary {
	s := Summary{Users: d.Users.Len()}
	for _, o := range d.Orders.Rows() {
		s.Orders++
		if !o.Status.IsTerminal() {
			s.OpenOrders++
		}
		if o.Status != order.StatusCancelled {
			s.RevenueCents += o.TotalCents()
		}
	}
	return s
}

// OrdersForUser returns the visible orders of one user.
func (d *Dashboard) OrdersForUser(userID string) []*order.Order {
	var orders []*order.Order
	for _, o := range d.Orders.Rows() {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders
}
