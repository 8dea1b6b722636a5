/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package persistence

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/suparena/persistence/datastore"
	"github.com/suparena/persistence/repository"
)

// DefaultPoolSize bounds how many repositories SaveChanges writes at once
const DefaultPoolSize = 4

// saver is the type-erased view of a repository used by SaveChanges
type saver interface {
	Name() string
	Save(ctx context.Context) (int, error)
}

// UnitOfWork groups one repository per entity type and saves them together
type UnitOfWork struct {
	mu       sync.RWMutex
	repos    map[reflect.Type]saver
	poolSize int
	logger   *zap.Logger
}

// Option configures a UnitOfWork
type Option func(*UnitOfWork)

// WithPoolSize sets the number of concurrent saves
func WithPoolSize(size int) Option {
	return func(u *UnitOfWork) {
		if size > 0 {
			u.poolSize = size
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(u *UnitOfWork) {
		if logger != nil {
			u.logger = logger
		}
	}
}

// NewUnitOfWork creates an empty UnitOfWork
func NewUnitOfWork(opts ...Option) *UnitOfWork {
	u := &UnitOfWork{
		repos:    make(map[reflect.Type]saver),
		poolSize: DefaultPoolSize,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Register adds the repository for T. Registering T twice is an error.
func Register[T datastore.Entity](u *UnitOfWork, repo *repository.Repository[T]) error {
	if repo == nil {
		return fmt.Errorf("repository for %s is nil", datastore.TypeName[T]())
	}
	typ := reflect.TypeOf((*T)(nil)).Elem()

	u.mu.Lock()
	defer u.mu.Unlock()

	if _, exists := u.repos[typ]; exists {
		return fmt.Errorf("repository for %s already registered", typ)
	}
	u.repos[typ] = repo
	return nil
}

// Repo returns the repository registered for T
func Repo[T datastore.Entity](u *UnitOfWork) (*repository.Repository[T], error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()

	u.mu.RLock()
	defer u.mu.RUnlock()

	repo, exists := u.repos[typ]
	if !exists {
		return nil, fmt.Errorf("repository for %s not found", typ)
	}
	return repo.(*repository.Repository[T]), nil
}

// Names lists the entity names of the registered repositories, sorted
func (u *UnitOfWork) Names() []string {
	u.mu.RLock()
	defer u.mu.RUnlock()

	names := make([]string, 0, len(u.repos))
	for _, r := range u.repos {
		names = append(names, r.Name())
	}
	sort.Strings(names)
	return names
}

// SaveChanges saves every registered repository concurrently and returns
// the total number of entities written. Failures do not stop the other
// saves; their errors are joined unchanged.
func (u *UnitOfWork) SaveChanges(ctx context.Context) (int, error) {
	u.mu.RLock()
	savers := make([]saver, 0, len(u.repos))
	for _, r := range u.repos {
		savers = append(savers, r)
	}
	u.mu.RUnlock()

	switch len(savers) {
	case 0:
		return 0, nil
	case 1:
		return savers[0].Save(ctx)
	}

	size := u.poolSize
	if size > len(savers) {
		size = len(savers)
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return 0, fmt.Errorf("failed to create save pool: %w", err)
	}
	defer pool.Release()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
		errs  []error
	)
	record := func(name string, n int, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			u.logger.Error("save failed", zap.String("entity", name), zap.Error(err))
			errs = append(errs, err)
			return
		}
		total += n
	}

	for _, s := range savers {
		s := s
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			n, err := s.Save(ctx)
			record(s.Name(), n, err)
		}); err != nil {
			wg.Done()
			record(s.Name(), 0, err)
		}
	}
	wg.Wait()

	return total, stderrors.Join(errs...)
}
