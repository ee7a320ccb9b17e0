// Package seed loads fixture users and orders through the domain services,
// so every inserted record is announced on the event bus like any other write.
package seed

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"orderdesk/domain/order"
	"orderdesk/domain/user"
	"orderdesk/infrastructure/logging"
)

// yamlSeed is the YAML structure for a seed file.
type yamlSeed struct {
	Users  []yamlUser  `yaml:"users"`
	Orders []yamlOrder `yaml:"orders"`
}

type yamlUser struct {
	// Ref names the user for orders in the same file.
	Ref     string `yaml:"ref"`
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Role    string `yaml:"role"`
	Ranking int    `yaml:"ranking"`
}

type yamlOrder struct {
	User   string     `yaml:"user"`
	Status string     `yaml:"status"`
	Items  []yamlItem `yaml:"items"`
}

type yamlItem struct {
	SKU            string `yaml:"sku"`
	Quantity       int    `yaml:"quantity"`
	UnitPriceCents int64  `yaml:"unit_price_cents"`
}

// Result counts the records created by a load.
type Result struct {
	Users  int
	Orders int
}

// Loader creates seed records through the domain services.
type Loader struct {
	users  *user.Service
	orders *order.Service
}

// NewLoader creates a new seed loader.
func NewLoader(users *user.Service, orders *order.Service) *Loader {
	return &Loader{users: users, orders: orders}
}

// LoadFromFS loads every YAML file at the root of fsys in name order.
// Loading stops at the first invalid record; the result counts what was created before it.
// Progress is logged to the logger carried by ctx.
func (l *Loader) LoadFromFS(ctx context.Context, fsys fs.FS) (Result, error) {
	var total Result
	logger := logging.From(ctx)

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return total, fmt.Errorf("failed to read seed directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := entry.Name()
		res, err := l.loadFile(ctx, fsys, path)
		total.Users += res.Users
		total.Orders += res.Orders
		if err != nil {
			return total, err
		}

		logger.Debug("Seed file loaded", "path", path, "users", res.Users, "orders", res.Orders)
	}

	return total, nil
}

// loadFile loads a single seed file.
func (l *Loader) loadFile(ctx context.Context, fsys fs.FS, path string) (Result, error) {
	var res Result

	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return res, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var def yamlSeed
	if err := yaml.Unmarshal(data, &def); err != nil {
		return res, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	refs := make(map[string]string, len(def.Users))
	for i := range def.Users {
		yu := &def.Users[i]
		u := &user.User{
			Name:    yu.Name,
			Email:   yu.Email,
			Role:    user.Role(yu.Role),
			Ranking: yu.Ranking,
		}
		if err := l.users.CreateUser(ctx, u); err != nil {
			return res, fmt.Errorf("%s: user %d: %w", path, i, err)
		}
		if yu.Ref != "" {
			refs[yu.Ref] = u.ID
		}
		res.Users++
	}

	for i := range def.Orders {
		yo := &def.Orders[i]
		userID, ok := refs[yo.User]
		if !ok {
			return res, fmt.Errorf("%s: order %d references unknown user %q", path, i, yo.User)
		}

		o := convertYAMLOrder(yo, userID)
		if err := l.orders.CreateOrder(ctx, o); err != nil {
			return res, fmt.Errorf("%s: order %d: %w", path, i, err)
		}
		res.Orders++

		status := order.Status(yo.Status)
		if status != "" && status != o.Status {
			if _, err := l.orders.UpdateStatus(ctx, o.ID, status); err != nil {
				return res, fmt.Errorf("%s: order %d: %w", path, i, err)
			}
		}
	}

	return res, nil
}

// convertYAMLOrder converts a YAML order to a new domain Order.
func convertYAMLOrder(yo *yamlOrder, userID string) *order.Order {
	o := &order.Order{
		UserID: userID,
		Items:  make([]order.Item, len(yo.Items)),
	}
	for i, yi := range yo.Items {
		o.Items[i] = order.Item{
			SKU:            yi.SKU,
			Quantity:       yi.Quantity,
			UnitPriceCents: yi.UnitPriceCents,
		}
	}
	return o
}
