/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/persistence/catalog"
	"github.com/suparena/persistence/errors"
)

type harness struct {
	t      *testing.T
	runner *Runner
	out    *bytes.Buffer
	global []string
}

func newHarness(t *testing.T, global ...string) *harness {
	out := &bytes.Buffer{}
	return &harness{
		t:      t,
		runner: NewRunner(RunnerOpts{Output: out}),
		out:    out,
		global: append([]string{"storectl", "--log-env", "prod", "--env-file", filepath.Join(t.TempDir(), "missing.env")}, global...),
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	h.out.Reset()
	err := newApp(h.runner).Run(context.Background(), append(append([]string{}, h.global...), args...))
	return h.out.String(), err
}

func TestFileCatalogCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	h := newHarness(t, "--kind", "File", "--provider", "Json", "--file", path)

	out, err := h.run("add", "--name", "Laptop", "--category", "Computers", "--price", "1299.99", "--quantity", "4")
	require.NoError(t, err)
	assert.Equal(t, "Added product 1\n", out)

	out, err = h.run("add", "--name", "Mouse", "--price", "19.50", "--quantity", "40")
	require.NoError(t, err)
	assert.Equal(t, "Added product 2\n", out)

	_, err = os.Stat(path)
	require.NoError(t, err)

	out, err = h.run("update", "--quantity", "3", "1")
	require.NoError(t, err)
	assert.Equal(t, "Updated product 1\n", out)

	out, err = h.run("list", "--json")
	require.NoError(t, err)
	var products []catalog.Product
	require.NoError(t, json.Unmarshal([]byte(out), &products))
	require.Len(t, products, 2)
	assert.Equal(t, "Laptop", products[0].Name)
	assert.Equal(t, 3, products[0].Quantity)
	assert.Equal(t, "1299.99", products[0].Price.String())

	out, err = h.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Mouse")
	assert.Contains(t, out, "19.50")

	out, err = h.run("delete", "2")
	require.NoError(t, err)
	assert.Equal(t, "Deleted product 2\n", out)

	out, err = h.run("info")
	require.NoError(t, err)
	assert.Contains(t, out, "Data source: File · Json · "+path)
	assert.Contains(t, out, "Products:    1")
}

func TestCommandFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	h := newHarness(t, "--kind", "File", "--provider", "Json", "--file", path)

	_, err := h.run("add", "--price", "1")
	assert.True(t, errors.IsValidationError(err))

	_, err = h.run("add", "--name", "Laptop", "--price", "abc")
	assert.True(t, errors.IsValidationError(err))

	_, err = h.run("delete", "x")
	assert.True(t, errors.IsValidationError(err))

	_, err = h.run("delete", "9")
	require.Error(t, err)
	assert.Equal(t, "entity with Id 9 not found", err.Error())

	_, err = h.run("update", "--name", "Ghost", "9")
	assert.True(t, errors.IsNotFound(err))

	_, err = h.run("migrate")
	assert.True(t, errors.IsConfigError(err))
}

func TestUnknownProviderIsConfigError(t *testing.T) {
	h := newHarness(t, "--kind", "File", "--provider", "Parquet")
	_, err := h.run("info")
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
	assert.Contains(t, err.Error(), "Json")
}

func TestDatabaseCatalogCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "catalog.db")
	h := newHarness(t, "--kind", "Database", "--provider", "SqliteNative", "--connection", db)

	out, err := h.run("migrate")
	require.NoError(t, err)
	assert.Equal(t, "Migrated Database · SqliteNative · "+db+"\n", out)

	_, err = h.run("add", "--id", "10", "--name", "Monitor", "--price", "249.00", "--quantity", "7")
	require.NoError(t, err)

	out, err = h.run("list", "--json")
	require.NoError(t, err)
	var products []catalog.Product
	require.NoError(t, json.Unmarshal([]byte(out), &products))
	require.Len(t, products, 1)
	assert.Equal(t, 10, products[0].ID)
	assert.Equal(t, "Monitor", products[0].Name)
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "persistence 0.3.0")
}
