/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Module name patterns of the bundled provider families
const (
	FileProviders     = "*.persistence.filebase.*"
	DatabaseProviders = "*.persistence.database.*"
)

// LoadFunc instantiates the registrars a module provides
type LoadFunc func() ([]any, error)

// Module is a named unit of discoverable registrars
type Module struct {
	Name string
	Load LoadFunc
}

// Registry holds modules keyed by lowercased name
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// Default is the process-wide registry populated by plugin init functions
var Default = New()

// New creates an empty Registry
func New() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// Register adds m to the Default registry
func Register(m Module) {
	Default.Register(m)
}

// Register adds m. If a module with the same name is already registered,
// it panics to prevent accidental overrides.
func (r *Registry) Register(m Module) {
	if m.Name == "" {
		panic("module registry: module name is empty")
	}
	if m.Load == nil {
		panic(fmt.Sprintf("module registry: module %q has no load function", m.Name))
	}
	key := strings.ToLower(m.Name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.modules[key]; exists {
		panic(fmt.Sprintf("module registry: module %q already registered", m.Name))
	}
	r.modules[key] = m
}

// Lookup returns the module registered under name
func (r *Registry) Lookup(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[strings.ToLower(name)]
	return m, ok
}

// Names returns every registered module name, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for _, m := range r.modules {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}

// Match returns the modules whose names match pattern, ordered by name.
// The pattern uses path.Match syntax and is compared case-insensitively.
func (r *Registry) Match(pattern string) ([]Module, error) {
	pattern = strings.ToLower(pattern)
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("module registry: invalid pattern %q: %w", pattern, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Module
	for key, m := range r.modules {
		if ok, _ := path.Match(pattern, key); ok {
			matched = append(matched, m)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
	})
	return matched, nil
}

// Discover loads every module matching pattern and returns the instances
// implementing R. Modules that fail to load are logged and skipped.
func Discover[R any](r *Registry, pattern string, logger *zap.Logger) ([]R, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	modules, err := r.Match(pattern)
	if err != nil {
		return nil, err
	}

	var found []R
	for _, m := range modules {
		found = append(found, DiscoverIn[R](m, logger)...)
	}
	logger.Debug("discovery complete",
		zap.String("pattern", pattern),
		zap.Int("modules", len(modules)),
		zap.Int("found", len(found)))
	return found, nil
}

// DiscoverIn loads a single module and returns the instances implementing R.
func DiscoverIn[R any](m Module, logger *zap.Logger) []R {
	if logger == nil {
		logger = zap.NewNop()
	}
	instances, err := load(m)
	if err != nil {
		logger.Warn("skipping module that failed to load", zap.String("module", m.Name), zap.Error(err))
		return nil
	}

	var found []R
	for _, inst := range instances {
		if inst == nil {
			continue
		}
		if r, ok := inst.(R); ok {
			found = append(found, r)
		}
	}
	return found
}

func load(m Module) (instances []any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("module %s panicked during load: %v", m.Name, p)
		}
	}()
	if m.Load == nil {
		return nil, fmt.Errorf("module %s has no load function", m.Name)
	}
	return m.Load()
}

// Provide returns a LoadFunc that yields instances unchanged
func Provide(instances ...any) LoadFunc {
	return func() ([]any, error) {
		return instances, nil
	}
}
