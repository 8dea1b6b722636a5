/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package filestore

import "github.com/suparena/persistence/serializer"

// ProviderRegistrar describes one file format.
type ProviderRegistrar interface {
	// ProviderName is matched case-insensitively against the configured provider
	ProviderName() string

	// FileExtension includes the leading dot, e.g. ".json"
	FileExtension() string

	// CreateSerializer returns the codec for this format
	CreateSerializer() serializer.Codec
}
