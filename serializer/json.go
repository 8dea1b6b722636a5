/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package serializer

import (
	"encoding/json"
	"fmt"
)

// JSONCodec handles JSON arrays of objects
type JSONCodec struct{}

// JSON creates a new JSON codec
func JSON() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Marshal encodes items as a pretty-printed JSON array
func (c *JSONCodec) Marshal(items any) ([]byte, error) {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a JSON array. Field names match case-insensitively.
func (c *JSONCodec) Unmarshal(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}
