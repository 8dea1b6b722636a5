/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

//go:build !cgo

package sqlite

import (
	"fmt"

	"github.com/suparena/persistence/registry"
)

// The mattn driver is a cgo binding. Without cgo the module still registers
// so discovery reports it, but loading fails and the provider is skipped.
func init() {
	registry.Register(registry.Module{
		Name: ModuleName,
		Load: func() ([]any, error) {
			return nil, fmt.Errorf("%s requires cgo; use the SqliteNative provider instead", ModuleName)
		},
	})
}
