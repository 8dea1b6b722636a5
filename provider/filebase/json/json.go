/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package json registers the Json file provider: a pretty-printed array of
// objects, matched case-insensitively on read.
package json

import (
	"github.com/suparena/persistence/registry"
	"github.com/suparena/persistence/serializer"
)

// ModuleName is the discovery name of this provider
const ModuleName = "suparena.persistence.filebase.json"

// Registrar is the Json file provider registrar
type Registrar struct{}

// ProviderName returns "Json"
func (Registrar) ProviderName() string { return "Json" }

// FileExtension returns ".json"
func (Registrar) FileExtension() string { return ".json" }

// CreateSerializer returns the JSON codec
func (Registrar) CreateSerializer() serializer.Codec { return serializer.JSON() }

func init() {
	registry.Register(registry.Module{Name: ModuleName, Load: registry.Provide(Registrar{})})
}
