// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package synth

import "fmt"

// ErrorKind classifies synthesis failures.
type ErrorKind uint8

const (
	// ErrMissingViewPosition: lighting or clip position generation needs a
	// viewposition output that the vertex program does not declare.
	ErrMissingViewPosition ErrorKind = iota

	// ErrMissingClipPosition: the clip position cannot be produced.
	ErrMissingClipPosition

	// ErrMissingCasterClipPosition: the shadow caster vertex function
	// declares no hposition output.
	ErrMissingCasterClipPosition

	// ErrNoVertexSource: no vertex program was supplied.
	ErrNoVertexSource

	// ErrNoPixelSource: no pixel program was supplied.
	ErrNoPixelSource
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrMissingViewPosition:
		return "MissingViewPosition"
	case ErrMissingClipPosition:
		return "MissingClipPosition"
	case ErrMissingCasterClipPosition:
		return "MissingCasterClipPosition"
	case ErrNoVertexSource:
		return "NoVertexSource"
	case ErrNoPixelSource:
		return "NoPixelSource"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is a synthesis failure for one fragment.
type Error struct {
	Kind     ErrorKind
	Fragment string
	Message  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Fragment == "" {
		return e.Message
	}
	return e.Fragment + ": " + e.Message
}

func newError(kind ErrorKind, fragment, format string, args ...any) *Error {
	return &Error{Kind: kind, Fragment: fragment, Message: fmt.Sprintf(format, args...)}
}
