// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package script

import (
	"fmt"
	"strings"
)

// ErrorKind categorizes script errors.
type ErrorKind uint8

const (
	// ErrBraceMismatch indicates an unbalanced '{' or '}'.
	ErrBraceMismatch ErrorKind = iota

	// ErrNotStringLiteral indicates that a string literal was expected.
	ErrNotStringLiteral

	// ErrUnterminatedString indicates a string literal without a closing quote.
	ErrUnterminatedString

	// ErrSyntax indicates a malformed declaration inside a block.
	ErrSyntax

	// ErrUndefinedElement indicates an unknown top-level block keyword.
	ErrUndefinedElement

	// ErrUnknownSemantic indicates a semantic name outside the allowed set.
	ErrUnknownSemantic

	// ErrDuplicateSemantic indicates two outputs claiming the same semantic.
	ErrDuplicateSemantic

	// ErrEmpty indicates an empty script.
	ErrEmpty

	// ErrDuplicateBlock indicates a top-level block declared twice.
	ErrDuplicateBlock
)

// String returns the error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrBraceMismatch:
		return "BraceMismatch"
	case ErrNotStringLiteral:
		return "NotStringLiteral"
	case ErrUnterminatedString:
		return "UnterminatedString"
	case ErrSyntax:
		return "Syntax"
	case ErrUndefinedElement:
		return "UndefinedElement"
	case ErrUnknownSemantic:
		return "UnknownSemantic"
	case ErrDuplicateSemantic:
		return "DuplicateSemantic"
	case ErrEmpty:
		return "Empty"
	case ErrDuplicateBlock:
		return "DuplicateBlock"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is a script error with source location information.
type Error struct {
	Kind    ErrorKind
	Message string

	// File is the fragment name, if known.
	File string

	// Offset is the byte offset of the error in Source, or -1.
	Offset int

	// Line and Column are 1-based; zero when unknown.
	Line   int
	Column int

	// Source is the script text, kept for context display.
	Source string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(":")
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, "%d:%d:", e.Line, e.Column)
	}
	if sb.Len() > 0 {
		sb.WriteString(" ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

// FormatWithContext returns the error message with the offending line and
// a caret under the error column.
func (e *Error) FormatWithContext() string {
	if e.Source == "" || e.Line == 0 {
		return e.Error()
	}

	lines := strings.Split(e.Source, "\n")
	if e.Line > len(lines) {
		return e.Error()
	}

	line := strings.TrimRight(lines[e.Line-1], "\r")
	col := e.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %s\n", e.Message)
	if e.File != "" {
		fmt.Fprintf(&sb, "  --> %s:%d:%d\n", e.File, e.Line, col)
	} else {
		fmt.Fprintf(&sb, "  --> line %d:%d\n", e.Line, col)
	}
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", e.Line, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))
	return sb.String()
}

// Is reports whether target is a script error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinel values usable with errors.Is.
var (
	ErrKindBraceMismatch      = &Error{Kind: ErrBraceMismatch}
	ErrKindUnterminatedString = &Error{Kind: ErrUnterminatedString}
	ErrKindUndefinedElement   = &Error{Kind: ErrUndefinedElement}
	ErrKindUnknownSemantic    = &Error{Kind: ErrUnknownSemantic}
	ErrKindDuplicateSemantic  = &Error{Kind: ErrDuplicateSemantic}
	ErrKindSyntax             = &Error{Kind: ErrSyntax}
	ErrKindDuplicateBlock     = &Error{Kind: ErrDuplicateBlock}
)

// NewError creates an error of the given kind located at offset in the
// reader's buffer. A negative offset leaves the location unset.
func (r *Reader) NewError(kind ErrorKind, offset int, format string, args ...any) *Error {
	e := &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
		Source:  string(r.buf),
	}
	if offset >= 0 {
		e.Line, e.Column = r.Position(offset)
	}
	return e
}
