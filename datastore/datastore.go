/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
	"reflect"
)

// Entity marks a persistable record. Id 0 means "not yet assigned".
type Entity interface {
	GetID() int
	SetID(id int)
}

// DataStore loads and saves a whole collection of T. Implementations
// serialize their own operations; a load never observes a half-written save.
type DataStore[T any] interface {
	// Load returns the full collection. A medium that was never written yields an empty slice.
	Load(ctx context.Context) ([]T, error)

	// Save replaces the full collection and returns the number of entities written.
	// A nil slice is rejected before any I/O.
	Save(ctx context.Context, entities []T) (int, error)
}

// Describer is implemented by stores that can name their backing location.
type Describer interface {
	Location() string
}

// TypeName returns the name of T with pointer indirections removed.
func TypeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// ElemType returns T with pointer indirections removed.
func ElemType[T any]() reflect.Type {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// IsNil reports whether v is a nil pointer, interface, map or slice.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
