/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package selector

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/persistence/config"
	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/datastore/filestore"
	"github.com/suparena/persistence/errors"
	"github.com/suparena/persistence/metrics"
	"github.com/suparena/persistence/provider/database/sqlitenative"
	"github.com/suparena/persistence/provider/filebase/csv"
	"github.com/suparena/persistence/provider/filebase/json"
	"github.com/suparena/persistence/provider/filebase/xml"
	"github.com/suparena/persistence/registry"
)

type Gadget struct {
	ID   int    `json:"Id" xml:"Id" db:"id"`
	Name string `json:"Name" xml:"Name" db:"name"`
}

func (g *Gadget) GetID() int   { return g.ID }
func (g *Gadget) SetID(id int) { g.ID = id }

var gadgetMigrations = fstest.MapFS{
	"sqlite3/00001_create_gadgets.sql": &fstest.MapFile{Data: []byte(`-- +goose Up
CREATE TABLE gadgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL);

-- +goose Down
DROP TABLE gadgets;
`)},
}

type gadgetContext struct{}

func (gadgetContext) ContextName() string { return "GadgetContext" }

func (gadgetContext) RegisterDbContext(b *dbstore.Binder, configure dbstore.ConfigureFunc) error {
	opts, err := dbstore.Configure(configure, nil)
	if err != nil {
		return err
	}
	table, err := dbstore.TableOf[*Gadget]("gadgets")
	if err != nil {
		return err
	}
	return dbstore.Bind(b, dbstore.NewContext[*Gadget](opts, table, gadgetMigrations))
}

func testRegistry() *registry.Registry {
	r := registry.New()
	r.Register(registry.Module{Name: json.ModuleName, Load: registry.Provide(json.Registrar{})})
	r.Register(registry.Module{Name: xml.ModuleName, Load: registry.Provide(xml.Registrar{})})
	r.Register(registry.Module{Name: csv.ModuleName, Load: registry.Provide(csv.Registrar{})})
	r.Register(registry.Module{Name: sqlitenative.ModuleName, Load: registry.Provide(sqlitenative.Registrar{})})
	return r
}

var business = registry.Module{Name: "suparena.persistence.selector.test", Load: registry.Provide(gadgetContext{})}

func fileConfig(provider, path string) config.Config {
	cfg := config.Default()
	cfg.Storage.Provider = provider
	cfg.Storage.FilePath = path
	return cfg
}

func TestSelectFileJson(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "gadgets.json")

	sel, err := Select[*Gadget](ctx, Options{Config: fileConfig("json", path), Registry: testRegistry()})
	require.NoError(t, err)
	defer sel.Close()

	store, ok := sel.Store.(*filestore.Store[*Gadget])
	require.True(t, ok, "expected a file store, got %T", sel.Store)
	assert.Equal(t, path, store.Location())
	assert.Equal(t, "File · Json · "+path, sel.Source.String())

	n, err := sel.Store.Save(ctx, []*Gadget{{ID: 1, Name: "Laptop"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Laptop"`)
}

func TestSelectFileDefaultPath(t *testing.T) {
	sel, err := Select[*Gadget](context.Background(), Options{Config: fileConfig("Xml", ""), Registry: testRegistry()})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("Data", "Gadget.xml"), sel.Source.Location)
}

func TestSelectDefaultsToJson(t *testing.T) {
	cfg := config.Config{}
	cfg.Storage.FilePath = filepath.Join(t.TempDir(), "g.json")

	sel, err := Select[*Gadget](context.Background(), Options{Config: cfg, Registry: testRegistry()})
	require.NoError(t, err)
	assert.Equal(t, config.KindFile, sel.Source.Kind)
	assert.Equal(t, "Json", sel.Source.Provider)
}

func TestSelectUnknownFileProvider(t *testing.T) {
	_, err := Select[*Gadget](context.Background(), Options{Config: fileConfig("Parquet", ""), Registry: testRegistry()})
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
	assert.Contains(t, err.Error(), `"Parquet"`)
	assert.Contains(t, err.Error(), "Csv, Json, Xml")
}

func databaseConfig(provider, conn string) config.Config {
	cfg := config.Default()
	cfg.Storage.Kind = config.KindDatabase
	cfg.Storage.Provider = provider
	cfg.Storage.ConnectionString = conn
	return cfg
}

func TestSelectDatabase(t *testing.T) {
	ctx := context.Background()
	sel, err := Select[*Gadget](ctx, Options{
		Config:   databaseConfig("sqlitenative", ":memory:"),
		Registry: testRegistry(),
		Business: business,
	})
	require.NoError(t, err)
	defer sel.Close()

	assert.Equal(t, "Database · SqliteNative · :memory:", sel.Source.String())

	_, err = sel.Store.Save(ctx, []*Gadget{{ID: 2, Name: "Mouse"}, {ID: 1, Name: "Laptop"}})
	require.NoError(t, err)

	loaded, err := sel.Store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Laptop", loaded[0].Name)
	assert.Equal(t, "Mouse", loaded[1].Name)
}

func TestSelectDatabaseNamedConnection(t *testing.T) {
	cfg := databaseConfig("SqliteNative", "")
	cfg.Storage.ConnectionStringName = "Gadgets"
	cfg.ConnectionStrings["gadgets"] = ":memory:"

	sel, err := Select[*Gadget](context.Background(), Options{Config: cfg, Registry: testRegistry(), Business: business})
	require.NoError(t, err)
	assert.NoError(t, sel.Close())
}

func TestSelectDatabaseFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		cfg      config.Config
		business registry.Module
		contains string
	}{
		{
			name:     "unknown provider",
			cfg:      databaseConfig("Oracle", ":memory:"),
			business: business,
			contains: "discovered providers: SqliteNative",
		},
		{
			name:     "missing connection string",
			cfg:      databaseConfig("SqliteNative", ""),
			business: business,
			contains: "ConnectionString",
		},
		{
			name:     "missing context registrar",
			cfg:      databaseConfig("SqliteNative", ":memory:"),
			business: registry.Module{Name: "empty", Load: registry.Provide()},
			contains: "no database context registrar",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Select[*Gadget](ctx, Options{Config: tt.cfg, Registry: testRegistry(), Business: tt.business})
			require.Error(t, err)
			assert.True(t, errors.IsConfigError(err))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

type Widget struct {
	ID int `db:"id"`
}

func (w *Widget) GetID() int   { return w.ID }
func (w *Widget) SetID(id int) { w.ID = id }

func TestSelectDatabaseUnboundType(t *testing.T) {
	_, err := Select[*Widget](context.Background(), Options{
		Config:   databaseConfig("SqliteNative", ":memory:"),
		Registry: testRegistry(),
		Business: business,
	})
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
	assert.Contains(t, err.Error(), "*selector.Gadget")
}

func TestSelectInstrumented(t *testing.T) {
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	sel, err := Select[*Gadget](context.Background(), Options{
		Config:   fileConfig("Json", filepath.Join(t.TempDir(), "g.json")),
		Registry: testRegistry(),
		Metrics:  m,
	})
	require.NoError(t, err)

	_, ok := sel.Store.(*metrics.Store[*Gadget])
	assert.True(t, ok)

	_, err = sel.Store.Load(context.Background())
	assert.NoError(t, err)
}

func TestSelectInvalidKind(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Kind = "Tape"
	_, err := Select[*Gadget](context.Background(), Options{Config: cfg, Registry: testRegistry()})
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}
