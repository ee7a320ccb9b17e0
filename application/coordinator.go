// Package application wires storage, the event bus, services and UI models together.
package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"orderdesk/core/event"
	"orderdesk/core/eventbus"
	"orderdesk/domain/order"
	"orderdesk/domain/user"
	"orderdesk/infrastructure/config"
	"orderdesk/infrastructure/logging"
	"orderdesk/infrastructure/repository"
	"orderdesk/infrastructure/seed"
	"orderdesk/presentation"
	"orderdesk/resources"
)

// ErrAlreadyStarted is returned by Start on a running coordinator.
var ErrAlreadyStarted = errors.New("coordinator already started")

// Coordinator owns the application object graph and its lifecycle.
type Coordinator struct {
	// Dependencies
	eventBus  eventbus.EventBus
	mongoDB   *repository.MongoDB
	orders    *order.Service
	users     *user.Service
	bridge    *presentation.UIEventBridge
	dashboard *presentation.Dashboard
	logger    *slog.Logger
	seedCfg   config.SeedConfig

	// activity mirrors every change event to the log.
	activity *eventbus.Scope
}

// CoordinatorConfig holds configuration for the Coordinator.
type CoordinatorConfig struct {
	Config *config.Config
	Logger *slog.Logger

	// OrderRepository and UserRepository override the configured storage.
	OrderRepository order.Repository
	UserRepository  user.Repository
}

// NewCoordinator builds the object graph. With mongodb storage it connects to the database.
func NewCoordinator(ctx context.Context, cfg *CoordinatorConfig) (*Coordinator, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Config == nil {
		cfg.Config = config.Default()
	}

	c := &Coordinator{logger: cfg.Logger, seedCfg: cfg.Config.Seed}

	orderRepo, userRepo := cfg.OrderRepository, cfg.UserRepository
	if orderRepo == nil || userRepo == nil {
		var err error
		orderRepo, userRepo, err = c.openStorage(ctx, cfg.Config)
		if err != nil {
			return nil, err
		}
	}

	c.eventBus = eventbus.New(
		eventbus.WithLogger(cfg.Logger.With("component", "eventbus")),
		eventbus.WithFailFast(cfg.Config.EventBus.FailFast),
	)

	c.orders = order.NewService(&order.ServiceConfig{
		Repository: orderRepo,
		EventBus:   c.eventBus,
		Logger:     cfg.Logger,
	})
	c.users = user.NewService(&user.ServiceConfig{
		Repository: userRepo,
		EventBus:   c.eventBus,
		Orders:     c.orders,
		Logger:     cfg.Logger,
	})

	bridge, err := presentation.NewUIEventBridge(&presentation.BridgeConfig{
		OrderService: c.orders,
		UserService:  c.users,
		EventBus:     c.eventBus,
		Logger:       cfg.Logger,
	})
	if err != nil {
		c.closeStorage(ctx)
		return nil, err
	}
	c.bridge = bridge
	c.dashboard = presentation.NewDashboard(&presentation.DashboardConfig{
		OrderService: c.orders,
		UserService:  c.users,
		EventBus:     c.eventBus,
		Logger:       cfg.Logger,
	})

	return c, nil
}

func (c *Coordinator) openStorage(ctx context.Context, cfg *config.Config) (order.Repository, user.Repository, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		c.logger.Info("Using in-memory storage")
		return repository.NewMemoryOrderRepository(), repository.NewMemoryUserRepository(), nil

	case config.StorageMongoDB:
		db, err := repository.NewMongoDB(ctx, cfg.MongoDBOptions(), c.logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureIndexes(ctx); err != nil {
			_ = db.Close(ctx)
			return nil, nil, err
		}
		c.mongoDB = db
		return repository.NewMongoOrderRepository(db, c.logger), repository.NewMongoUserRepository(db, c.logger), nil

	default:
		return nil, nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

// Start mounts the dashboard and begins mirroring changes to the log.
// With seeding enabled, fixture data is loaded after the views are mounted.
func (c *Coordinator) Start(ctx context.Context) error {
	if c.activity != nil && !c.activity.Closed() {
		return ErrAlreadyStarted
	}

	c.activity = eventbus.NewScope(c.eventBus)
	for _, entity := range []string{order.EntityName, user.EntityName} {
		for _, op := range event.Operations() {
			if _, err := c.activity.On(event.CollectionName(op, entity), c.logChange); err != nil {
				return err
			}
		}
	}

	if err := c.dashboard.Mount(ctx); err != nil {
		c.activity.Close()
		return err
	}

	if c.seedCfg.Enabled {
		if _, err := c.LoadSeed(ctx); err != nil {
			return err
		}
	}

	c.logger.Info("Coordinator started")
	return nil
}

// Stop releases every listener and closes storage.
func (c *Coordinator) Stop(ctx context.Context) {
	c.dashboard.Unmount()
	c.bridge.Close()
	if c.activity != nil {
		c.activity.Close()
	}

	if left := c.eventBus.Count(); left > 0 {
		c.logger.Warn("Listeners still registered after shutdown", "count", left)
	}

	c.closeStorage(ctx)
	c.logger.Info("Coordinator stopped")
}

func (c *Coordinator) closeStorage(ctx context.Context) {
	if c.mongoDB == nil {
		return
	}

	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.mongoDB.Close(closeCtx); err != nil {
		c.logger.Warn("Failed to close MongoDB", "error", err)
	}
	c.mongoDB = nil
}

// EventBus returns the application event bus.
func (c *Coordinator) EventBus() eventbus.EventBus {
	return c.eventBus
}

// Bridge returns the UI event bridge.
func (c *Coordinator) Bridge() *presentation.UIEventBridge {
	return c.bridge
}

// Dashboard returns the main screen model.
func (c *Coordinator) Dashboard() *presentation.Dashboard {
	return c.dashboard
}

// LoadSeed creates the configured fixture data through the services.
// It reads seed.dir when set and the embedded demo data otherwise.
func (c *Coordinator) LoadSeed(ctx context.Context) (seed.Result, error) {
	var fsys fs.FS
	if c.seedCfg.Dir != "" {
		fsys = os.DirFS(c.seedCfg.Dir)
	} else {
		fsys = resources.SeedFS()
	}

	ctx = logging.With(ctx, c.logger.With("component", "seed"))
	res, err := seed.NewLoader(c.users, c.orders).LoadFromFS(ctx, fsys)
	if err != nil {
		return res, fmt.Errorf("failed to load seed data: %w", err)
	}
	c.logger.Info("Seed data loaded", "users", res.Users, "orders", res.Orders)
	return res, nil
}

func (c *Coordinator) logChange(p *event.Payload) error {
	if p.Failed() {
		c.logger.Warn("Change failed", "event", p.EventName, "key", p.PrimaryKey, "error", p.Error)
		return nil
	}
	c.logger.Debug("Change applied", "event", p.EventName, "key", p.PrimaryKey)
	return nil
}
