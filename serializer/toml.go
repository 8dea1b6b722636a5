/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package serializer

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/BurntSushi/toml"
)

// tomlKey holds the array of tables; a TOML document must be a table at the top level.
const tomlKey = "items"

// TOMLCodec handles an array of tables under the "items" key
type TOMLCodec struct{}

// TOML creates a new TOML codec
func TOML() *TOMLCodec {
	return &TOMLCodec{}
}

// Format returns the codec format identifier
func (c *TOMLCodec) Format() string {
	return "toml"
}

// Marshal encodes items as [[items]] tables
func (c *TOMLCodec) Marshal(items any) ([]byte, error) {
	rv := reflect.ValueOf(items)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("toml codec: expected a slice, got %T", items)
	}

	doc := reflect.New(tomlDocument(rv.Type())).Elem()
	doc.Field(0).Set(rv)

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc.Interface()); err != nil {
		return nil, fmt.Errorf("failed to encode TOML: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes the [[items]] tables into out
func (c *TOMLCodec) Unmarshal(data []byte, out any) error {
	ptr := reflect.ValueOf(out)
	if ptr.Kind() != reflect.Pointer || ptr.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("toml codec: expected a pointer to a slice, got %T", out)
	}

	doc := reflect.New(tomlDocument(ptr.Elem().Type()))
	if _, err := toml.Decode(string(data), doc.Interface()); err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}
	ptr.Elem().Set(doc.Elem().Field(0))
	return nil
}

func tomlDocument(sliceType reflect.Type) reflect.Type {
	return reflect.StructOf([]reflect.StructField{{
		Name: "Items",
		Type: sliceType,
		Tag:  reflect.StructTag(`toml:"` + tomlKey + `"`),
	}})
}
