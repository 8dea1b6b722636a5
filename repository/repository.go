/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package repository keeps an in-memory snapshot of one entity collection
// on top of a datastore.DataStore.
//
// The snapshot is loaded on first access. Add, Update and Delete change only
// the snapshot; Save writes the whole snapshot back and Reload discards it.
package repository

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/suparena/persistence/datastore"
	"github.com/suparena/persistence/errors"
)

const msgEntityNil = "entity is nil"

// Repository is safe for concurrent use
type Repository[T datastore.Entity] struct {
	store  datastore.DataStore[T]
	name   string
	logger *zap.Logger

	mu     sync.RWMutex
	items  []T
	loaded bool
}

// Option configures a Repository
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a Repository over store. Nothing is loaded until first use.
func New[T datastore.Entity](store datastore.DataStore[T], opts ...Option) *Repository[T] {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	name := datastore.TypeName[T]()
	return &Repository[T]{
		store:  store,
		name:   name,
		logger: o.logger.With(zap.String("entity", name)),
	}
}

// Name returns the entity type name
func (r *Repository[T]) Name() string {
	return r.name
}

// Store returns the underlying data store
func (r *Repository[T]) Store() datastore.DataStore[T] {
	return r.store
}

func (r *Repository[T]) ensureLoaded(ctx context.Context) error {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if loaded {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return nil
	}
	return r.loadLocked(ctx)
}

// loadLocked replaces the snapshot. A failed load leaves the previous
// snapshot and loaded flag untouched.
func (r *Repository[T]) loadLocked(ctx context.Context) error {
	entities, err := r.store.Load(ctx)
	if err != nil {
		return err
	}

	seen := make(map[int]bool, len(entities))
	items := make([]T, 0, len(entities))
	for _, e := range entities {
		if datastore.IsNil(e) {
			continue
		}
		if seen[e.GetID()] {
			r.logger.Warn("dropping entity with duplicate Id", zap.Int("id", e.GetID()))
			continue
		}
		seen[e.GetID()] = true
		items = append(items, e)
	}

	r.items = items
	r.loaded = true
	r.logger.Debug("snapshot loaded", zap.Int("count", len(items)))
	return nil
}

func (r *Repository[T]) indexOf(id int) int {
	for i, e := range r.items {
		if e.GetID() == id {
			return i
		}
	}
	return -1
}

// GetAll returns the snapshot in its current order
func (r *Repository[T]) GetAll(ctx context.Context) ([]T, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]T{}, r.items...), nil
}

// GetByID returns the entity with id or an errors.NotFoundError
func (r *Repository[T]) GetByID(ctx context.Context, id int) (T, error) {
	var zero T
	if err := r.ensureLoaded(ctx); err != nil {
		return zero, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.items[i], nil
	}
	return zero, errors.NewNotFoundError(r.name, id)
}

// Add appends entity. An Id of 0 is replaced by max(Id)+1; a taken Id fails.
func (r *Repository[T]) Add(ctx context.Context, entity T) (OperationResult, error) {
	if datastore.IsNil(entity) {
		return Fail(msgEntityNil), nil
	}
	if err := r.ensureLoaded(ctx); err != nil {
		return OperationResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id := entity.GetID(); id != 0 {
		if r.indexOf(id) >= 0 {
			return Fail(errors.NewAlreadyExistsError("entity", id).Error()), nil
		}
	} else {
		entity.SetID(r.nextIDLocked())
	}
	r.items = append(r.items, entity)
	return Ok(), nil
}

func (r *Repository[T]) nextIDLocked() int {
	maxID := 0
	for _, e := range r.items {
		if id := e.GetID(); id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// Update replaces the entity sharing entity's Id
func (r *Repository[T]) Update(ctx context.Context, entity T) (OperationResult, error) {
	if datastore.IsNil(entity) {
		return Fail(msgEntityNil), nil
	}
	if err := r.ensureLoaded(ctx); err != nil {
		return OperationResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(entity.GetID())
	if i < 0 {
		return Fail(errors.NewNotFoundError("entity", entity.GetID()).Error()), nil
	}
	r.items[i] = entity
	return Ok(), nil
}

// Delete removes the entity sharing entity's Id
func (r *Repository[T]) Delete(ctx context.Context, entity T) (OperationResult, error) {
	if datastore.IsNil(entity) {
		return Fail(msgEntityNil), nil
	}
	return r.DeleteByID(ctx, entity.GetID())
}

// DeleteByID removes the entity with id
func (r *Repository[T]) DeleteByID(ctx context.Context, id int) (OperationResult, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return OperationResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return Fail(errors.NewNotFoundError("entity", id).Error()), nil
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return Ok(), nil
}

// Save writes the snapshot to the data store and returns the number of
// entities written. The snapshot is loaded first if it never was, so an
// untouched repository never overwrites the store with nothing.
func (r *Repository[T]) Save(ctx context.Context) (int, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return 0, err
	}

	r.mu.RLock()
	snapshot := append([]T{}, r.items...)
	r.mu.RUnlock()

	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].GetID() < snapshot[j].GetID()
	})

	n, err := r.store.Save(ctx, snapshot)
	if err != nil {
		return 0, err
	}
	r.logger.Debug("snapshot saved", zap.Int("count", n))
	return n, nil
}

// Reload discards the snapshot and loads it again from the data store
func (r *Repository[T]) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(ctx)
}

// Loaded reports whether the snapshot has been loaded
func (r *Repository[T]) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}
