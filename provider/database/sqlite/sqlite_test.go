/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

//go:build cgo

package sqlite

import (
	"context"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  sqlite3.Error
		want errors.Kind
	}{
		{sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, errors.KindUniqueViolation},
		{sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, errors.KindUniqueViolation},
		{sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, errors.KindForeignKeyViolation},
		{sqlite3.Error{Code: sqlite3.ErrBusy}, errors.KindTimeout},
		{sqlite3.Error{Code: sqlite3.ErrLocked}, errors.KindDeadlock},
		{sqlite3.Error{Code: sqlite3.ErrCantOpen}, errors.KindConnectivity},
	}
	for _, tt := range tests {
		kind, ok := Classify(tt.err)
		assert.True(t, ok)
		assert.Equal(t, tt.want, kind)
	}

	_, ok := Classify(sqlite3.Error{Code: sqlite3.ErrError})
	assert.False(t, ok)
}

func TestConfigureInMemory(t *testing.T) {
	b := dbstore.NewOptionsBuilder(nil)
	require.NoError(t, Registrar{}.Configure(b, ":memory:"))

	opts, err := b.Build()
	require.NoError(t, err)
	defer opts.Backend.Close()

	assert.Equal(t, ":memory:", opts.Backend.Location())
	assert.NoError(t, opts.Backend.Migrate(context.Background(), nil))
}

func TestLocation(t *testing.T) {
	assert.Equal(t, "file:catalog.db", Location("file:catalog.db?_auth_pass=secret"))
	assert.True(t, IsMemory("file::memory:?cache=shared"))
	assert.False(t, IsMemory("catalog.db"))
}
