// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package include

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/effect/fragment"
	"github.com/gogpu/effect/script"
)

// ErrNotFound is returned by loaders for unknown fragment names.
var ErrNotFound = errors.New("include: fragment not found")

// CycleError reports an include chain that leads back to itself.
type CycleError struct {
	// Chain lists the fragments of the cycle, starting and ending with
	// the same name.
	Chain []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return "include: cycle detected: " + strings.Join(e.Chain, " -> ")
}

// Closure is a duplicate-free, dependency-ordered list of fragments: every
// fragment appears after all the fragments it includes.
type Closure []*fragment.Fragment

// Names returns the file names of the closure in order.
func (c Closure) Names() []string {
	names := make([]string, len(c))
	for i, f := range c {
		names[i] = f.FileName
	}
	return names
}

// Index returns the position of the fragment named name, or -1. Names
// are compared case-insensitively.
func (c Closure) Index(name string) int {
	for i, f := range c {
		if script.EqualFold(f.FileName, name) {
			return i
		}
	}
	return -1
}

// Resolve loads and analyzes every fragment reachable from root through
// include blocks and returns them in post-order, root last. A fragment
// reachable along several paths appears once, at its first completed
// position.
func Resolve(root *fragment.Fragment, loader Loader) (Closure, error) {
	r := &resolver{
		loader: loader,
		done:   make(map[string]bool),
	}
	if err := r.visit(root); err != nil {
		return nil, err
	}
	return r.closure, nil
}

type resolver struct {
	loader  Loader
	closure Closure

	// done holds folded names already in the closure.
	done map[string]bool

	// active is the chain of fragments currently being resolved.
	active []string
}

func (r *resolver) visit(f *fragment.Fragment) error {
	r.active = append(r.active, f.FileName)
	defer func() { r.active = r.active[:len(r.active)-1] }()

	for _, name := range f.Includes {
		if i := slices.IndexFunc(r.active, func(s string) bool { return script.EqualFold(s, name) }); i >= 0 {
			chain := append(slices.Clone(r.active[i:]), name)
			return &CycleError{Chain: chain}
		}
		if r.done[script.Fold(name)] {
			continue
		}

		data, err := r.loader.Load(name)
		if err != nil {
			return fmt.Errorf("include: failed to read effect include file '%s' from '%s': %w", name, f.FileName, err)
		}
		child, err := fragment.Analyze(name, data)
		if err != nil {
			return err
		}
		if err := r.visit(child); err != nil {
			return err
		}
	}

	key := script.Fold(f.FileName)
	if !r.done[key] {
		r.done[key] = true
		r.closure = append(r.closure, f)
	}
	return nil
}
