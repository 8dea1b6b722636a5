/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package yaml registers the Yaml file provider.
package yaml

import (
	"github.com/suparena/persistence/registry"
	"github.com/suparena/persistence/serializer"
)

// ModuleName is the discovery name of this provider
const ModuleName = "suparena.persistence.filebase.yaml"

// Registrar is the Yaml file provider registrar
type Registrar struct{}

// ProviderName returns "Yaml"
func (Registrar) ProviderName() string { return "Yaml" }

// FileExtension returns ".yaml"
func (Registrar) FileExtension() string { return ".yaml" }

// CreateSerializer returns the YAML codec
func (Registrar) CreateSerializer() serializer.Codec { return serializer.YAML() }

func init() {
	registry.Register(registry.Module{Name: ModuleName, Load: registry.Provide(Registrar{})})
}
