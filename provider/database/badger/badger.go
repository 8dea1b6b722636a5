/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package badger registers the Badger embedded database provider. The
// connection string is a directory path, or ":memory:".
package badger

import (
	"github.com/suparena/persistence/datastore/badgerkv"
	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/registry"
)

// ModuleName is the discovery name of this provider
const ModuleName = "suparena.persistence.database.badger"

// Registrar is the Badger provider registrar
type Registrar struct{}

// ProviderName returns "Badger"
func (Registrar) ProviderName() string { return "Badger" }

// Configure opens the Badger database at conn. The directory stays locked
// until the backend is closed.
func (Registrar) Configure(b *dbstore.OptionsBuilder, conn string) error {
	backend, err := badgerkv.Open(conn, b.Logger())
	if err != nil {
		return err
	}
	b.UseBackend(backend)
	return nil
}

func init() {
	registry.Register(registry.Module{Name: ModuleName, Load: registry.Provide(Registrar{})})
}
