// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package script provides the low-level scanning primitives used to read
// effect scripts.
//
// A Reader works over a flat byte buffer with an explicit cursor. Every
// operation takes the current location and an exclusive end bound and
// returns the advanced location; no operation reads at or past end.
// C-style comments (// and /* */) are skipped transparently by every
// operation except ReadLine. ReadTokenLines groups the tokens of a block
// body by line, so a declaration block can be read one declaration at a
// time even when a comment spans several lines.
//
// # Usage
//
//	r := script.NewReader(src)
//	word, loc := r.ReadIdentifier(0, len(src))
//	start, stop, loc, err := r.ReadBlock(loc, len(src))
//	if err != nil {
//	    return err
//	}
//	body := src[start:stop]
package script
