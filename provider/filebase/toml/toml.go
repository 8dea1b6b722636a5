/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package toml registers the Toml file provider. Entities are stored as
// [[items]] tables.
package toml

import (
	"github.com/suparena/persistence/registry"
	"github.com/suparena/persistence/serializer"
)

// ModuleName is the discovery name of this provider
const ModuleName = "suparena.persistence.filebase.toml"

// Registrar is the Toml file provider registrar
type Registrar struct{}

// ProviderName returns "Toml"
func (Registrar) ProviderName() string { return "Toml" }

// FileExtension returns ".toml"
func (Registrar) FileExtension() string { return ".toml" }

// CreateSerializer returns the TOML codec
func (Registrar) CreateSerializer() serializer.Codec { return serializer.TOML() }

func init() {
	registry.Register(registry.Module{Name: ModuleName, Load: registry.Provide(Registrar{})})
}
