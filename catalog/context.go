/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package catalog

import (
	"embed"
	"io/fs"
	"time"

	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/registry"
)

// ModuleName is the discovery name of the catalog business module
const ModuleName = "suparena.persistence.catalog"

// ProductsTable is the table, key prefix or partition holding products
const ProductsTable = "products"

//go:embed migrations
var migrationFiles embed.FS

var timeNow = time.Now

// Migrations returns the goose scripts, one directory per SQL dialect
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Registrar binds the catalog database context
type Registrar struct{}

// ContextName returns "CatalogContext"
func (Registrar) ContextName() string { return "CatalogContext" }

// RegisterDbContext binds the Product context built from configure
func (Registrar) RegisterDbContext(b *dbstore.Binder, configure dbstore.ConfigureFunc) error {
	opts, err := dbstore.Configure(configure, nil)
	if err != nil {
		return err
	}
	table, err := dbstore.TableOf[*Product](ProductsTable)
	if err != nil {
		_ = opts.Backend.Close()
		return err
	}
	if err := dbstore.Bind(b, dbstore.NewContext[*Product](opts, table, Migrations())); err != nil {
		_ = opts.Backend.Close()
		return err
	}
	return nil
}

// Module provides the catalog context registrar to the selector
var Module = registry.Module{Name: ModuleName, Load: registry.Provide(Registrar{})}

func init() {
	registry.Register(Module)
}
