/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package badgerkv_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/persistence/datastore/badgerkv"
	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/errors"
)

type Book struct {
	ID    int    `db:"id"`
	Title string `db:"title"`
}

type Shelf struct {
	ID   int    `db:"id"`
	Room string `db:"room"`
}

func openStores(t *testing.T, path string) (*dbstore.Store[*Book], *dbstore.Store[*Shelf], *badgerkv.Backend) {
	t.Helper()
	backend, err := badgerkv.Open(path, nil)
	require.NoError(t, err)

	books, err := dbstore.TableOf[*Book]("books")
	require.NoError(t, err)
	shelves, err := dbstore.TableOf[*Shelf]("shelves")
	require.NoError(t, err)

	opts := dbstore.Options{Backend: backend}
	return dbstore.NewStore(dbstore.NewContext[*Book](opts, books, nil)),
		dbstore.NewStore(dbstore.NewContext[*Shelf](opts, shelves, nil)),
		backend
}

func TestReplaceAndReadInKeyOrder(t *testing.T) {
	ctx := context.Background()
	books, _, backend := openStores(t, badgerkv.InMemory)
	defer backend.Close()

	got, err := books.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = books.Save(ctx, []*Book{{ID: 300, Title: "C"}, {ID: 2, Title: "A"}, {ID: 17, Title: "B"}})
	require.NoError(t, err)

	got, err = books.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{2, 17, 300}, []int{got[0].ID, got[1].ID, got[2].ID})

	_, err = books.Save(ctx, []*Book{{ID: 5, Title: "Only"}})
	require.NoError(t, err)

	got, err = books.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, &Book{ID: 5, Title: "Only"}, got[0])
}

func TestTablesAreIsolated(t *testing.T) {
	ctx := context.Background()
	books, shelves, backend := openStores(t, badgerkv.InMemory)
	defer backend.Close()

	_, err := books.Save(ctx, []*Book{{ID: 1, Title: "A"}})
	require.NoError(t, err)
	_, err = shelves.Save(ctx, []*Shelf{{ID: 1, Room: "Hall"}, {ID: 2, Room: "Study"}})
	require.NoError(t, err)

	_, err = books.Save(ctx, []*Book{})
	require.NoError(t, err)

	gotShelves, err := shelves.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, gotShelves, 2)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "badger")

	books, _, backend := openStores(t, dir)
	_, err := books.Save(ctx, []*Book{{ID: 1, Title: "Kept"}})
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	books, _, backend = openStores(t, dir)
	defer backend.Close()
	got, err := books.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Kept", got[0].Title)
	assert.Equal(t, dir, books.Location())
}

func TestDuplicateKeysAbortReplace(t *testing.T) {
	ctx := context.Background()
	books, _, backend := openStores(t, badgerkv.InMemory)
	defer backend.Close()

	_, err := books.Save(ctx, []*Book{{ID: 1, Title: "Original"}})
	require.NoError(t, err)

	_, err = books.Save(ctx, []*Book{{ID: 4, Title: "X"}, {ID: 4, Title: "Y"}})
	require.Error(t, err)
	assert.True(t, errors.IsIntegrity(err))

	got, err := books.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Original", got[0].Title)
}

func TestClassify(t *testing.T) {
	backend, err := badgerkv.Open(badgerkv.InMemory, nil)
	require.NoError(t, err)
	defer backend.Close()

	assert.Equal(t, errors.KindDeadlock, backend.Classify(badger.ErrConflict))
	assert.Equal(t, errors.KindTimeout, backend.Classify(badger.ErrBlockedWrites))
	assert.Equal(t, errors.KindCanceled, backend.Classify(context.Canceled))
	assert.Equal(t, errors.KindUnexpected, backend.Classify(badger.ErrTxnTooBig))
}

func TestOpenRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("not a directory"), 0o644))

	_, err := badgerkv.Open(path, nil)
	assert.Error(t, err)
}
