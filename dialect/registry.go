// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dialect

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a new translator instance.
// Factories are registered via Register() and called by NewTranslator().
type Factory func() Translator

// Registry state - protected by mutex for thread-safe access.
var (
	registryMu  sync.RWMutex
	translators = make(map[string]Factory)
)

// Register registers a translator factory with the given name.
// This function is typically called from init() in translator packages:
//
//	func init() {
//	    dialect.Register("glsl", func() dialect.Translator {
//	        return NewTranslator(DefaultOptions())
//	    })
//	}
//
// Register panics if factory is nil or if a translator with the same
// name is already registered.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("dialect: Register factory is nil")
	}
	if _, dup := translators[name]; dup {
		panic("dialect: Register called twice for " + name)
	}
	translators[name] = factory
}

// Unregister removes a translator from the registry.
// If the translator is not registered, this is a no-op.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(translators, name)
}

// NewTranslator creates a new translator instance by name.
// The error message includes a hint about forgotten imports.
func NewTranslator(name string) (Translator, error) {
	registryMu.RLock()
	factory, ok := translators[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("dialect: unknown translator %q (forgotten import?)", name)
	}
	return factory(), nil
}

// MustTranslator creates a new translator instance by name, panicking on
// error.
func MustTranslator(name string) Translator {
	t, err := NewTranslator(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Translators returns a sorted list of registered translator names.
func Translators() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(translators))
	for name := range translators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a translator with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := translators[name]
	return ok
}
