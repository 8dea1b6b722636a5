/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package dynamodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/persistence/datastore/dbstore"
	"github.com/suparena/persistence/errors"
)

func TestConfigure(t *testing.T) {
	b := dbstore.NewOptionsBuilder(nil)
	err := Registrar{}.Configure(b, "region=us-east-1;table=Catalog;endpoint=http://localhost:8000;accessKey=local;secretKey=local")
	require.NoError(t, err)

	opts, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/Catalog", opts.Backend.Location())
}

func TestConfigureRejectsMissingTable(t *testing.T) {
	b := dbstore.NewOptionsBuilder(nil)
	err := Registrar{}.Configure(b, "region=us-east-1")
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}
