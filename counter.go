// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package effect

import "sync/atomic"

// Counter hands out effect numbers. Each compile takes two, one per
// program, and uses them only to name debug artifacts.
//
// The zero value is ready to use; its first number is 1.
type Counter struct {
	n atomic.Int64
}

// NewCounter returns a counter whose next number is last+1.
func NewCounter(last int) *Counter {
	c := &Counter{}
	c.n.Store(int64(last))
	return c
}

// Next returns the next number.
func (c *Counter) Next() int {
	return int(c.n.Add(1))
}

// Last returns the most recently issued number, or the starting value
// if none has been issued.
func (c *Counter) Last() int {
	return int(c.n.Load())
}
