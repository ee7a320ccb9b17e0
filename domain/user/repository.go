package user

import "context"

// Repository defines the interface for user persistence operations.
// This interface follows the Repository pattern to abstract data access.
type Repository interface {
	// FindByID retrieves a user by its unique identifier.
	// Returns nil if not found.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindAll retrieves all users.
	FindAll(ctx context.Context) ([]*User, error)

	// Insert creates a new user and sets its ID.
	Insert(ctx context.Context, user *User) error

	// Update updates an existing user.
	Update(ctx context.Context, user *User) error

	// Delete removes a user by its identifier.
	Delete(ctx context.Context, id string) error
}
