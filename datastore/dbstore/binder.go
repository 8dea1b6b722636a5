/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package dbstore

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Binder is a type-keyed container of database contexts filled by a
// ContextRegistrar.
type Binder struct {
	mu       sync.RWMutex
	contexts map[reflect.Type]any
	backends []Backend
}

// NewBinder creates an empty Binder
func NewBinder() *Binder {
	return &Binder{contexts: make(map[reflect.Type]any)}
}

// Bind registers c as the context for T. Binding T twice is an error.
func Bind[T any](b *Binder, c *Context[T]) error {
	if c == nil || c.backend == nil || c.table == nil {
		return fmt.Errorf("dbstore: incomplete context for %s", reflect.TypeOf((*T)(nil)).Elem())
	}
	t := reflect.TypeOf((*T)(nil)).Elem()

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.contexts[t]; exists {
		return fmt.Errorf("dbstore: context for %s already bound", t)
	}
	b.contexts[t] = c

	for _, existing := range b.backends {
		if existing == c.backend {
			return nil
		}
	}
	b.backends = append(b.backends, c.backend)
	return nil
}

// Resolve returns the context bound for T
func Resolve[T any](b *Binder) (*Context[T], error) {
	t := reflect.TypeOf((*T)(nil)).Elem()

	b.mu.RLock()
	defer b.mu.RUnlock()

	c, ok := b.contexts[t]
	if !ok {
		return nil, fmt.Errorf("dbstore: no context bound for %s", t)
	}
	return c.(*Context[T]), nil
}

// Types lists the bound entity types, sorted
func (b *Binder) Types() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.contexts))
	for t := range b.contexts {
		names = append(names, t.String())
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bound contexts
func (b *Binder) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.contexts)
}

// Close closes every distinct backend seen by Bind
func (b *Binder) Close() error {
	b.mu.Lock()
	backends := b.backends
	b.backends = nil
	b.mu.Unlock()

	var errs []error
	for _, backend := range backends {
		if err := backend.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
