package presentation

import (
	"errors"
	"log/slog"
	"sync"

	"orderdesk/core/event"
	"orderdesk/core/eventbus"
)

// ErrAlreadyMounted is returned by Mount on a view that is already mounted.
var ErrAlreadyMounted = errors.New("view is already mounted")

// Change describes one row change applied to a view.
type Change struct {
	Op  event.Operation
	Key string
	Err error
}

// CollectionView is the row model behind a list widget for one entity collection.
// While mounted it follows collection:<op>:<entity> events; unmounting releases
// every listener it registered.
type CollectionView[T any] struct {
	entity   string
	bus      eventbus.EventBus
	key      func(T) string
	onChange func(Change)
	logger   *slog.Logger

	mu        sync.RWMutex
	rows      map[string]T
	order     []string
	lastError error
	scope     *eventbus.Scope
}

// ViewConfig holds configuration for a CollectionView.
type ViewConfig[T any] struct {
	Entity   string
	EventBus eventbus.EventBus
	// Key extracts the primary key of a row.
	Key func(T) string
	// OnChange is called after a change was applied, outside the view lock.
	OnChange func(Change)
	Logger   *slog.Logger
}

// NewCollectionView creates an unmounted view.
func NewCollectionView[T any](cfg *ViewConfig[T]) *CollectionView[T] {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &CollectionView[T]{
		entity:   cfg.Entity,
		bus:      cfg.EventBus,
		key:      cfg.Key,
		onChange: cfg.OnChange,
		logger:   cfg.Logger.With("view", cfg.Entity),
		rows:     make(map[string]T),
	}
}

// Mount loads the initial rows and starts following changes.
func (v *CollectionView[T]) Mount(initial []T) error {
	v.mu.Lock()
	if v.scope != nil {
		v.mu.Unlock()
		return ErrAlreadyMounted
	}

	v.rows = make(map[string]T, len(initial))
	v.order = v.order[:0]
	v.lastError = nil
	for _, row := range initial {
		v.upsertLocked(v.key(row), row)
	}

	scope := eventbus.NewScope(v.bus)
	v.scope = scope
	v.mu.Unlock()

	for _, op := range event.Operations() {
		if _, err := eventbus.ScopeCollection(scope, op, v.entity, func(c event.Collection[T]) error {
			v.apply(c)
			return nil
		}); err != nil {
			return err
		}
	}

	v.logger.Debug("View mounted", "rows", len(initial))
	return nil
}

// Unmount stops following changes and returns the number of listeners released.
// Rows are kept so a closing window can still render its last state.
func (v *CollectionView[T]) Unmount() int {
	v.mu.Lock()
	scope := v.scope
	v.scope = nil
	v.mu.Unlock()

	if scope == nil {
		return 0
	}

	released := scope.Close()
	v.logger.Debug("View unmounted", "released", released)
	return released
}

// Mounted reports whether the view is following changes.
func (v *CollectionView[T]) Mounted() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scope != nil
}

// Rows returns the rows in the order they first appeared.
func (v *CollectionView[T]) Rows() []T {
	v.mu.RLock()
	defer v.mu.RUnlock()

	rows := make([]T, 0, len(v.order))
	for _, k := range v.order {
		rows = append(rows, v.rows[k])
	}
	return rows
}

// Get returns the row with the given key.
func (v *CollectionView[T]) Get(key string) (T, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	row, ok := v.rows[key]
	return row, ok
}

// Len returns the number of rows.
func (v *CollectionView[T]) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.rows)
}

// LastError returns the error carried by the most recent failed change, if any.
func (v *CollectionView[T]) LastError() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.lastError
}

func (v *CollectionView[T]) apply(c event.Collection[T]) {
	change := Change{Op: c.Op, Key: c.PrimaryKey, Err: c.Err}

	v.mu.Lock()
	switch {
	case c.Err != nil:
		v.lastError = c.Err
	case c.Op == event.OpDelete:
		v.removeLocked(c.PrimaryKey)
	default:
		key := c.PrimaryKey
		if key == "" {
			key = v.key(c.Record)
		}
		change.Key = key
		v.upsertLocked(key, c.Record)
	}
	v.mu.Unlock()

	if c.Err != nil {
		v.logger.Warn("Change failed", "op", c.Op, "key", c.PrimaryKey, "error", c.Err)
	}
	if v.onChange != nil {
		v.onChange(change)
	}
}

func (v *CollectionView[T]) upsertLocked(key string, row T) {
	if _, exists := v.rows[key]; !exists {
		v.order = append(v.order, key)
	}
	v.rows[key] = row
}

func (v *CollectionView[T]) removeLocked(key string) {
	if _, exists := v.rows[key]; !exists {
		return
	}
	delete(v.rows, key)
	for i, k := range v.order {
		if k == key {
			v.order = append(v.order[:i], v.order[i+1:]...)
			break
		}
	}
}
