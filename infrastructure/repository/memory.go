package repository

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"orderdesk/domain/order"
	"orderdesk/domain/user"
)

// MemoryOrderRepository implements order.Repository in process memory.
// It is used when no MongoDB is configured. IDs are ObjectID hex strings
// so records move between backends unchanged.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*order.Order
}

// NewMemoryOrderRepository creates an empty in-memory order repository.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]*order.Order)}
}

func (r *MemoryOrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return o.Clone(), nil
}

func (r *MemoryOrderRepository) FindAll(ctx context.Context) ([]*order.Order, error) {
	return r.filter(func(*order.Order) bool { return true }), nil
}

func (r *MemoryOrderRepository) FindByUserID(ctx context.Context, userID string) ([]*order.Order, error) {
	return r.filter(func(o *order.Order) bool { return o.UserID == userID }), nil
}

func (r *MemoryOrderRepository) filter(match func(*order.Order) bool) []*order.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]*order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if match(o) {
			orders = append(orders, o.Clone())
		}
	}
	return orders
}

func (r *MemoryOrderRepository) Insert(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o.ID = primitive.NewObjectID().Hex()
	r.orders[o.ID] = o.Clone()
	return nil
}

func (r *MemoryOrderRepository) Update(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[o.ID]; !ok {
		return order.ErrOrderNotFound
	}
	r.orders[o.ID] = o.Clone()
	return nil
}

func (r *MemoryOrderRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return order.ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

// MemoryUserRepository implements user.Repository in process memory.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*user.User
}

// NewMemoryUserRepository creates an empty in-memory user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*user.User)}
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return u.Clone(), nil
}

func (r *MemoryUserRepository) FindAll(ctx context.Context) ([]*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*user.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u.Clone())
	}
	return users, nil
}

func (r *MemoryUserRepository) Insert(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.ID = primitive.NewObjectID().Hex()
	r.users[u.ID] = u.Clone()
	return nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	r.users[u.ID] = u.Clone()
	return nil
}

func (r *MemoryUserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

var (
	_ order.Repository = (*MemoryOrderRepository)(nil)
	_ user.Repository  = (*MemoryUserRepository)(nil)
)
