/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package redis registers the Redis database provider. The connection
// string is a redis:// or rediss:// URL; the scheme may be omitted.
package redis

import (
	goredis "github.com/redis/go-redis/v9"

	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/datastore/rediskv"
	"github.com/suparena/persistence/errors"
	"github.com/suparena/persistence/registry"
)

// ModuleName is the discovery name of this provider
const ModuleName = "suparena.persistence.database.redis"

// Registrar is the Redis provider registrar
type Registrar struct{}

// ProviderName returns "Redis"
func (Registrar) ProviderName() string { return "Redis" }

// Configure creates a client for conn; it connects lazily
func (Registrar) Configure(b *dbstore.OptionsBuilder, conn string) error {
	opts, err := rediskv.ParseURL(conn)
	if err != nil {
		return errors.NewConfigError("Storage.ConnectionString", "redis connection string could not be parsed")
	}
	b.UseBackend(rediskv.New(goredis.NewClient(opts), rediskv.Redact(conn),
		rediskv.WithLogger(b.Logger()),
	))
	return nil
}

func init() {
	registry.Register(registry.Module{Name: ModuleName, Load: registry.Provide(Registrar{})})
}
