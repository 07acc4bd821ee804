// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"
)

// LineMap maps a line of a linked program back to the line of the effect
// file it was written in. It returns 0 for lines the compiler generated,
// such as macro preludes and synthesized wrappers.
type LineMap func(line int) int

// SourceError is an error at a position in a linked program.
type SourceError struct {
	Message string
	Span    Span

	// Source is the program text Span refers to, after preprocessing.
	Source string
}

func (e *SourceError) Error() string {
	if e.Span.Start.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Span.Start.Line, e.Span.Start.Column, e.Message)
}

// Line returns the 1-based program line of the error, or 0 when unknown.
func (e *SourceError) Line() int {
	return e.Span.Start.Line
}

// FormatWithContext returns the message followed by the offending program
// line and a caret under the column. When origin places the line in an
// effect file, the location names that line; otherwise the line is
// reported as generated code.
func (e *SourceError) FormatWithContext(origin LineMap) string {
	line := e.Line()
	text, ok := sourceLine(e.Source, line)
	if !ok {
		return e.Error()
	}
	col := min(max(e.Span.Start.Column, 1), len(text)+1)

	name := e.Span.Source
	if name == "" {
		name = "program"
	}
	effectLine := 0
	if origin != nil {
		effectLine = origin(line)
	}

	var sb strings.Builder
	sb.WriteString(e.Message)
	sb.WriteByte('\n')
	if effectLine > 0 {
		fmt.Fprintf(&sb, "  at %s:%d (program line %d)\n", name, effectLine, line)
	} else {
		fmt.Fprintf(&sb, "  in code generated for %s (program line %d)\n", name, line)
	}
	fmt.Fprintf(&sb, "%5d | %s\n", line, text)
	fmt.Fprintf(&sb, "      | %s^\n", caretIndent(text[:col-1]))
	return sb.String()
}

// sourceLine returns the 1-based line n of src.
func sourceLine(src string, n int) (string, bool) {
	if src == "" || n < 1 {
		return "", false
	}
	for i := 1; i < n; i++ {
		nl := strings.IndexByte(src, '\n')
		if nl < 0 {
			return "", false
		}
		src = src[nl+1:]
	}
	if nl := strings.IndexByte(src, '\n'); nl >= 0 {
		src = src[:nl]
	}
	return strings.TrimSuffix(src, "\r"), true
}

// caretIndent blanks prefix, keeping tabs so the caret lines up with the
// echoed source.
func caretIndent(prefix string) string {
	b := []byte(prefix)
	for i, c := range b {
		if c != '\t' {
			b[i] = ' '
		}
	}
	return string(b)
}

// NewSourceError creates a new SourceError.
func NewSourceError(message string, span Span, source string) *SourceError {
	return &SourceError{
		Message: message,
		Span:    span,
		Source:  source,
	}
}

// NewSourceErrorf creates a new SourceError with a formatted message.
func NewSourceErrorf(span Span, source string, format string, args ...any) *SourceError {
	return NewSourceError(fmt.Sprintf(format, args...), span, source)
}

// SourceErrors collects the errors of one program. The parser keeps going
// after an error, so one program can report several.
type SourceErrors []*SourceError

func (el SourceErrors) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", el[0].Error(), len(el)-1)
}

// FormatAll formats every error with context, mapping lines through
// origin.
func (el SourceErrors) FormatAll(origin LineMap) string {
	parts := make([]string, len(el))
	for i, e := range el {
		parts[i] = e.FormatWithContext(origin)
	}
	return strings.Join(parts, "\n")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (el SourceErrors) Unwrap() []error {
	errs := make([]error, len(el))
	for i, e := range el {
		errs[i] = e
	}
	return errs
}
