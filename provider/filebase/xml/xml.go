/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package xml registers the Xml file provider. Documents have an
// ArrayOf{Type} root wrapping one {Type} element per entity.
package xml

import (
	"github.com/suparena/persistence/registry"
	"github.com/suparena/persistence/serializer"
)

// ModuleName is the discovery name of this provider
const ModuleName = "suparena.persistence.filebase.xml"

// Registrar is the Xml file provider registrar
type Registrar struct{}

// ProviderName returns "Xml"
func (Registrar) ProviderName() string { return "Xml" }

// FileExtension returns ".xml"
func (Registrar) FileExtension() string { return ".xml" }

// CreateSerializer returns the XML codec
func (Registrar) CreateSerializer() serializer.Codec { return serializer.XML() }

func init() {
	registry.Register(registry.Module{Name: ModuleName, Load: registry.Provide(Registrar{})})
}
