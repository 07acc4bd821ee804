// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package include

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Loader looks fragment sources up by name.
//
// Load returns an error wrapping ErrNotFound when no fragment has the
// given name.
type Loader interface {
	Load(name string) ([]byte, error)
}

// Store is a Loader that can also be written to. Generated fragments and
// debug artifacts are saved through a Store.
type Store interface {
	Loader
	Save(name string, data []byte) error
	Remove(name string) error
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(name string) ([]byte, error)

// Load calls f(name).
func (f LoaderFunc) Load(name string) ([]byte, error) {
	return f(name)
}

// MemStore is an in-memory Store. It is the virtual namespace generated
// fragments live in. It is safe for concurrent use.
type MemStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{files: make(map[string][]byte)}
}

// Load implements Loader.
func (m *MemStore) Load(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return slices.Clone(data), nil
}

// Save implements Store.
func (m *MemStore) Save(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[name] = slices.Clone(data)
	return nil
}

// Remove implements Store. Removing a missing name is not an error.
func (m *MemStore) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, name)
	return nil
}

// Names returns the stored names in sorted order.
func (m *MemStore) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// FSLoader loads fragments from a file system, e.g. os.DirFS or an
// embed.FS.
type FSLoader struct {
	FS fs.FS
}

// Load implements Loader.
func (l FSLoader) Load(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("include: invalid fragment name %q", name)
	}
	data, err := fs.ReadFile(l.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return data, err
}

// DirStore is a Store backed by a directory on disk. The directory is
// created on first Save.
type DirStore struct {
	Dir string
}

func (d DirStore) path(name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("include: invalid fragment name %q", name)
	}
	return filepath.Join(d.Dir, filepath.FromSlash(name)), nil
}

// Load implements Loader.
func (d DirStore) Load(name string) ([]byte, error) {
	p, err := d.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return data, err
}

// Save implements Store.
func (d DirStore) Save(name string, data []byte) error {
	p, err := d.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// Remove implements Store. Removing a missing name is not an error.
func (d DirStore) Remove(name string) error {
	p, err := d.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Chain tries each loader in order. The first loader that has the name
// wins; errors other than ErrNotFound stop the search.
type Chain []Loader

// Load implements Loader.
func (c Chain) Load(name string) ([]byte, error) {
	for _, l := range c {
		data, err := l.Load(name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}
