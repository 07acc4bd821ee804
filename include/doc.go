// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package include loads effect fragments and links them into programs.
//
// Fragments are looked up by name through a Loader. The package ships an
// in-memory store for generated fragments, a loader for any fs.FS, a
// writable directory store and a SQLite-backed store; Chain combines
// them.
//
// Resolve walks the include graph of a root fragment and returns a
// post-order Closure. Link turns a closure into program text: headers
// first, then the deduplicated autos and source of every fragment in
// closure order.
package include
