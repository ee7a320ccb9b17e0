// Package user defines the User entity and related types.
package user

import (
	"errors"
	"net/mail"
	"strings"
)

// EntityName is the collection name used in user change events.
const EntityName = "user"

// Common errors for user operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidUser  = errors.New("invalid user")
)

// Role is the user's access level.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return true
	}
	return false
}

// User represents a person who can place or manage orders.
type User struct {
	// ID is the unique identifier (MongoDB ObjectID)
	ID string

	// Name is the display name
	Name string

	// Email is the contact address
	Email string

	// Role is the access level; defaults to RoleCustomer
	Role Role

	// Ranking is for sorting users in lists (lower = higher priority)
	Ranking int
}

// DisplayName returns a human-readable label for the user.
// Format: "Name <email>", or just the name if no email is set.
func (u *User) DisplayName() string {
	if u.Email == "" {
		return u.Name
	}
	return u.Name + " <" + u.Email + ">"
}

// Validate checks the fields required to persist a user.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.Join(ErrInvalidUser, errors.New("name is required"))
	}
	if u.Email != "" {
		if _, err := mail.ParseAddress(u.Email); err != nil {
			return errors.Join(ErrInvalidUser, err)
		}
	}
	if u.Role != "" && !u.Role.Valid() {
		return errors.Join(ErrInvalidUser, errors.New("unknown role "+string(u.Role)))
	}
	return nil
}

// Clone creates a copy of the user.
func (u *User) Clone() *User {
	clone := *u
	return &clone
}
