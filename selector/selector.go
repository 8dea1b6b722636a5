/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package selector resolves storage options into a concrete data store.
package selector

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/suparena/persistence/config"
	"github.com/suparena/persistence/datastore"
	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/datastore/filestore"
	"github.com/suparena/persistence/errors"
	"github.com/suparena/persistence/metrics"
	"github.com/suparena/persistence/registry"
	"github.com/suparena/persistence/serializer"
)

// DefaultDataDir holds file stores whose path is not configured
const DefaultDataDir = "Data"

// Options are the inputs of Select
type Options struct {
	Config config.Config

	// Registry defaults to registry.Default
	Registry *registry.Registry

	// Business provides the context registrars of the business module.
	// It is only consulted on the database path.
	Business registry.Module

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Source describes the active data source
type Source struct {
	Kind     string
	Provider string
	Location string
}

// String renders "Kind · Provider · Location"
func (s Source) String() string {
	return s.Kind + " · " + s.Provider + " · " + s.Location
}

// Selection is a resolved data store
type Selection[T any] struct {
	Store  datastore.DataStore[T]
	Source Source

	// Close releases database connections. It is safe to call on file stores.
	Close func() error
}

// Select wires the data store for T. Every failure is an errors.ConfigError
// and should abort startup.
func Select[T any](ctx context.Context, opts Options) (*Selection[T], error) {
	if opts.Registry == nil {
		opts.Registry = registry.Default
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	storage := opts.Config.Storage
	if storage.Kind == "" {
		storage.Kind = config.DefaultKind
	}
	if storage.Provider == "" {
		storage.Provider = config.DefaultProvider
	}
	opts.Config.Storage = storage

	var (
		sel *Selection[T]
		err error
	)
	switch {
	case storage.IsDatabase():
		sel, err = selectDatabase[T](ctx, opts)
	case storage.IsFile():
		sel, err = selectFile[T](opts)
	default:
		return nil, errors.NewConfigError("Storage.Kind", "%q is not %s or %s", storage.Kind, config.KindFile, config.KindDatabase)
	}
	if err != nil {
		return nil, err
	}

	if opts.Metrics != nil {
		sel.Store = metrics.Instrument(sel.Store, strings.ToLower(datastore.TypeName[T]()), opts.Metrics)
	}
	opts.Logger.Info("data store selected",
		zap.String("entity", datastore.TypeName[T]()),
		zap.Stringer("source", sel.Source))
	return sel, nil
}

func selectFile[T any](opts Options) (*Selection[T], error) {
	storage := opts.Config.Storage
	registrars, err := registry.Discover[filestore.ProviderRegistrar](opts.Registry, registry.FileProviders, opts.Logger)
	if err != nil {
		return nil, errors.NewConfigError("Storage.Provider", "%v", err)
	}

	names := make([]string, 0, len(registrars))
	var chosen filestore.ProviderRegistrar
	for _, r := range registrars {
		names = append(names, r.ProviderName())
		if chosen == nil && strings.EqualFold(r.ProviderName(), storage.Provider) {
			chosen = r
		}
	}
	if chosen == nil {
		return nil, unknownProvider(config.KindFile, storage.Provider, names)
	}

	path := storage.FilePath
	if path == "" {
		path = filepath.Join(DefaultDataDir, datastore.TypeName[T]()+chosen.FileExtension())
	}

	s := serializer.New[T](chosen.CreateSerializer(), serializer.WithLogger(opts.Logger))
	store := filestore.New(path, s, filestore.WithLogger(opts.Logger))
	return &Selection[T]{
		Store:  store,
		Source: Source{Kind: config.KindFile, Provider: chosen.ProviderName(), Location: store.Location()},
		Close:  func() error { return nil },
	}, nil
}

func selectDatabase[T any](ctx context.Context, opts Options) (*Selection[T], error) {
	storage := opts.Config.Storage
	providers, err := registry.Discover[dbstore.ProviderRegistrar](opts.Registry, registry.DatabaseProviders, opts.Logger)
	if err != nil {
		return nil, errors.NewConfigError("Storage.Provider", "%v", err)
	}

	var contexts []dbstore.ContextRegistrar
	if opts.Business.Load != nil {
		contexts = registry.DiscoverIn[dbstore.ContextRegistrar](opts.Business, opts.Logger)
	}
	if len(contexts) == 0 {
		return nil, errors.NewConfigError("Business", "no database context registrar found in module %q", opts.Business.Name)
	}

	names := make([]string, 0, len(providers))
	var chosen dbstore.ProviderRegistrar
	for _, p := range providers {
		names = append(names, p.ProviderName())
		if chosen == nil && strings.EqualFold(p.ProviderName(), storage.Provider) {
			chosen = p
		}
	}
	if chosen == nil {
		return nil, unknownProvider(config.KindDatabase, storage.Provider, names)
	}

	conn, err := opts.Config.ResolveConnectionString()
	if err != nil {
		return nil, errors.NewConfigError("Storage.ConnectionString", "%v", err)
	}

	configure := func(b *dbstore.OptionsBuilder) error {
		b.WithLogger(opts.Logger.With(zap.String("provider", chosen.ProviderName())))
		b.WithAutoMigrate(storage.AutoMigrate)
		return chosen.Configure(b, conn)
	}

	binder := dbstore.NewBinder()
	for _, c := range contexts {
		if err := c.RegisterDbContext(binder, configure); err != nil {
			_ = binder.Close()
			return nil, asConfigError("Business", c.ContextName(), err)
		}
	}

	dbctx, err := dbstore.Resolve[T](binder)
	if err != nil {
		_ = binder.Close()
		return nil, errors.NewConfigError("Business", "%v (bound: %s)", err, strings.Join(binder.Types(), ", "))
	}

	store := dbstore.NewStore(dbctx, dbstore.WithLogger(opts.Logger))
	if dbctx.AutoMigrate() {
		if err := store.Migrate(ctx); err != nil {
			_ = binder.Close()
			return nil, errors.NewConfigError("Storage.AutoMigrate", "migration failed: %v", err)
		}
	}

	return &Selection[T]{
		Store:  store,
		Source: Source{Kind: config.KindDatabase, Provider: chosen.ProviderName(), Location: store.Location()},
		Close:  binder.Close,
	}, nil
}

func unknownProvider(kind, provider string, discovered []string) error {
	sort.Strings(discovered)
	list := "none"
	if len(discovered) > 0 {
		list = strings.Join(discovered, ", ")
	}
	return errors.NewConfigError("Storage.Provider", "no %s provider named %q; discovered providers: %s", strings.ToLower(kind), provider, list)
}

func asConfigError(setting, name string, err error) error {
	if errors.IsConfigError(err) {
		return err
	}
	return errors.NewConfigError(setting, "context %s: %v", name, err)
}
