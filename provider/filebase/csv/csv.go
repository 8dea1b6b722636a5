/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package csv registers the Csv file provider. Only scalar fields become
// columns; see serializer.CSVCodec.
package csv

import (
	"github.com/suparena/persistence/registry"
	"github.com/suparena/persistence/serializer"
)

// ModuleName is the discovery name of this provider
const ModuleName = "suparena.persistence.filebase.csv"

// Registrar is the Csv file provider registrar
type Registrar struct{}

// ProviderName returns "Csv"
func (Registrar) ProviderName() string { return "Csv" }

// FileExtension returns ".csv"
func (Registrar) FileExtension() string { return ".csv" }

// CreateSerializer returns the CSV codec
func (Registrar) CreateSerializer() serializer.Codec { return serializer.CSV() }

func init() {
	registry.Register(registry.Module{Name: ModuleName, Load: registry.Provide(Registrar{})})
}
