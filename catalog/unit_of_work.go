/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/suparena/persistence"
	"github.com/suparena/persistence/config"
	"github.com/suparena/persistence/datastore"
	"github.com/suparena/persistence/metrics"
	"github.com/suparena/persistence/repository"
	"github.com/suparena/persistence/selector"
)

// UnitOfWork is the surface the catalog UI works against
type UnitOfWork struct {
	Products *repository.Repository[*Product]

	source selector.Source
	work   *persistence.UnitOfWork
	close  func() error
}

// Options configures Open
type Options struct {
	Config  config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Open selects the product store from opts.Config and wraps it in a
// unit of work. Errors are configuration errors and should abort startup.
func Open(ctx context.Context, opts Options) (*UnitOfWork, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sel, err := selector.Select[*Product](ctx, selector.Options{
		Config:   opts.Config,
		Business: Module,
		Logger:   logger,
		Metrics:  opts.Metrics,
	})
	if err != nil {
		return nil, err
	}
	u, err := New(sel.Store, sel.Source, logger)
	if err != nil {
		_ = sel.Close()
		return nil, err
	}
	u.close = sel.Close
	return u, nil
}

// New wraps store; it is used by Open and by tests
func New(store datastore.DataStore[*Product], source selector.Source, logger *zap.Logger) (*UnitOfWork, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	u := &UnitOfWork{
		Products: repository.New[*Product](store, repository.WithLogger(logger)),
		source:   source,
		work:     persistence.NewUnitOfWork(persistence.WithLogger(logger)),
		close:    func() error { return nil },
	}
	if err := persistence.Register(u.work, u.Products); err != nil {
		return nil, err
	}
	return u, nil
}

// Source describes the active data source
func (u *UnitOfWork) Source() selector.Source {
	return u.source
}

// SaveChanges writes every repository back to its store
func (u *UnitOfWork) SaveChanges(ctx context.Context) (int, error) {
	return u.work.SaveChanges(ctx)
}

// Reload discards unsaved changes
func (u *UnitOfWork) Reload(ctx context.Context) error {
	return u.Products.Reload(ctx)
}

// Close releases the data store
func (u *UnitOfWork) Close() error {
	return u.close()
}
