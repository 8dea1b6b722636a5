/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package dynamodb registers the DynamoDB database provider. The connection
// string is "region=...;table=...[;endpoint=...][;accessKey=...;secretKey=...][;maxAttempts=n]".
package dynamodb

import (
	"context"

	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/datastore/ddb"
	"github.com/suparena/persistence/errors"
	"github.com/suparena/persistence/registry"
)

// ModuleName is the discovery name of this provider
const ModuleName = "suparena.persistence.database.dynamodb"

// Registrar is the DynamoDB provider registrar
type Registrar struct{}

// ProviderName returns "DynamoDB"
func (Registrar) ProviderName() string { return "DynamoDB" }

// Configure builds an SDK client for conn. No request is sent until the
// first Load, Save or Migrate.
func (Registrar) Configure(b *dbstore.OptionsBuilder, conn string) error {
	cfg, err := ddb.ParseConnectionString(conn)
	if err != nil {
		return errors.NewConfigError("Storage.ConnectionString", "%v", err)
	}
	client, err := ddb.NewClient(context.Background(), cfg)
	if err != nil {
		return err
	}
	b.UseBackend(ddb.New(client, cfg.Table,
		ddb.WithLocation(cfg.Location()),
		ddb.WithLogger(b.Logger()),
	))
	return nil
}

func init() {
	registry.Register(registry.Module{Name: ModuleName, Load: registry.Provide(Registrar{})})
}
