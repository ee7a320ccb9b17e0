package order

import "context"

// Repository defines the interface for order persistence operations.
// This interface follows the Repository pattern to abstract data access.
type Repository interface {
	// FindByID retrieves an order by its unique identifier.
	// Returns nil if not found.
	FindByID(ctx context.Context, id string) (*Order, error)

	// FindAll retrieves all orders.
	FindAll(ctx context.Context) ([]*Order, error)

	// FindByUserID retrieves all orders placed by a user.
	FindByUserID(ctx context.Context, userID string) ([]*Order, error)

	// Insert creates a new order and sets its ID.
	Insert(ctx context.Context, order *Order) error

	// Update updates an existing order.
	Update(ctx context.Context, order *Order) error

	// Delete removes an order by its identifier.
	Delete(ctx context.Context, id string) error
}
