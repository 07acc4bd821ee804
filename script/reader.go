// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package script

import (
	"sync"

	"golang.org/x/text/cases"
)

// Reader scans a script buffer.
type Reader struct {
	buf []byte
}

// NewReader creates a reader over buf. The buffer is not copied.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the buffer length.
func (r *Reader) Len() int {
	return len(r.buf)
}

// Slice returns the text between start and end.
func (r *Reader) Slice(start, end int) string {
	start, end = r.clamp(start), r.clamp(end)
	if start >= end {
		return ""
	}
	return string(r.buf[start:end])
}

// ReadIdentifier skips everything that is not an identifier character,
// including comments, and returns the next run of [A-Za-z0-9_]. The byte
// that terminates the identifier is not consumed. When no identifier is
// found before end, the empty string and the unchanged location are
// returned.
func (r *Reader) ReadIdentifier(loc, end int) (string, int) {
	end = r.clamp(end)
	from := loc
	start := -1
	for loc < end {
		c := r.buf[loc]
		if IsIdentChar(c) {
			if start < 0 {
				start = loc
			}
			loc++
			continue
		}
		if start >= 0 {
			break
		}
		if c == '/' {
			if next, ok := r.skipComment(loc, end); ok {
				loc = next
				continue
			}
		}
		loc++
	}
	if start < 0 {
		return "", from
	}
	return string(r.buf[start:loc]), loc
}

// ReadChar returns the next byte that is not part of a comment.
// Whitespace is returned like any other byte.
func (r *Reader) ReadChar(loc, end int) (byte, int, bool) {
	end = r.clamp(end)
	for loc < end {
		c := r.buf[loc]
		if c == '/' {
			if next, ok := r.skipComment(loc, end); ok {
				loc = next
				continue
			}
		}
		return c, loc + 1, true
	}
	return 0, end, false
}

// ReadBlock finds the next balanced {...} block. start is the offset just
// after the opening brace and stop is the offset of the matching closing
// brace, so buf[start:stop] is the block body. next is the offset after
// the closing brace.
func (r *Reader) ReadBlock(loc, end int) (start, stop, next int, err error) {
	end = r.clamp(end)
	depth := 0
	open := -1
	for loc < end {
		c, n, ok := r.ReadChar(loc, end)
		if !ok {
			break
		}
		switch c {
		case '{':
			if depth == 0 {
				open = n
			}
			depth++
		case '}':
			if depth == 0 {
				return 0, 0, n, r.NewError(ErrBraceMismatch, loc, "unexpected '}' before block start")
			}
			depth--
			if depth == 0 {
				return open, loc, n, nil
			}
		}
		loc = n
	}
	if open < 0 {
		return 0, 0, end, r.NewError(ErrBraceMismatch, -1, "expected '{'")
	}
	return 0, 0, end, r.NewError(ErrBraceMismatch, open-1, "unmatched '{'")
}

// ReadLine returns the text up to the next newline. The newline is
// consumed but not returned. Comments are not stripped.
func (r *Reader) ReadLine(loc, end int) (string, int) {
	end = r.clamp(end)
	start := loc
	for loc < end {
		if r.buf[loc] == '\n' {
			return string(r.buf[start:loc]), loc + 1
		}
		loc++
	}
	return r.Slice(start, end), end
}

// Token is an identifier or a single punctuation byte.
type Token struct {
	Text   string
	Offset int
}

// IsIdent reports whether t is an identifier.
func (t Token) IsIdent() bool {
	return t.Text != "" && IsIdentChar(t.Text[0])
}

// ReadTokenLines splits the text between loc and end into tokens grouped
// by line. Comments are skipped and separate tokens; newlines inside a
// block comment do not end a line. Empty lines are dropped.
func (r *Reader) ReadTokenLines(loc, end int) [][]Token {
	end = r.clamp(end)
	var lines [][]Token
	var line []Token
	start := -1
	flush := func(stop int) {
		if start >= 0 {
			line = append(line, Token{Text: string(r.buf[start:stop]), Offset: start})
			start = -1
		}
	}
	for loc < end {
		c, next, ok := r.ReadChar(loc, end)
		if !ok {
			break
		}
		at := next - 1
		if at != loc {
			// A comment was skipped.
			flush(loc)
		}
		switch {
		case IsIdentChar(c):
			if start < 0 {
				start = at
			}
		case c == '\n':
			flush(at)
			if len(line) > 0 {
				lines = append(lines, line)
				line = nil
			}
		case IsSpace(c):
			flush(at)
		default:
			flush(at)
			line = append(line, Token{Text: string(c), Offset: at})
		}
		loc = next
	}
	flush(loc)
	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

// ReadStringLiteral reads a double-quoted literal. Only whitespace and
// comments may precede the opening quote.
func (r *Reader) ReadStringLiteral(loc, end int) (string, int, error) {
	end = r.clamp(end)
	for {
		c, n, ok := r.ReadChar(loc, end)
		if !ok {
			return "", end, r.NewError(ErrNotStringLiteral, -1, "expected string literal")
		}
		if c == '"' {
			loc = n
			break
		}
		if !IsSpace(c) {
			return "", loc, r.NewError(ErrNotStringLiteral, loc, "expected string literal, found %q", c)
		}
		loc = n
	}

	open := loc - 1
	var out []byte
	for {
		c, n, ok := r.ReadChar(loc, end)
		if !ok {
			return "", end, r.NewError(ErrUnterminatedString, open, "unterminated string literal")
		}
		loc = n
		if c == '"' {
			return string(out), loc, nil
		}
		out = append(out, c)
	}
}

// Position converts a byte offset to a 1-based line and column.
func (r *Reader) Position(offset int) (line, column int) {
	offset = r.clamp(offset)
	line, column = 1, 1
	for i := 0; i < offset; i++ {
		if r.buf[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

// skipComment returns the offset after the comment starting at loc, if
// there is one. Line comments end before the newline.
func (r *Reader) skipComment(loc, end int) (int, bool) {
	if loc+1 >= end || r.buf[loc] != '/' {
		return loc, false
	}
	switch r.buf[loc+1] {
	case '/':
		loc += 2
		for loc < end && r.buf[loc] != '\n' {
			loc++
		}
		return loc, true
	case '*':
		loc += 2
		for loc < end {
			if r.buf[loc] == '*' && loc+1 < end && r.buf[loc+1] == '/' {
				return loc + 2, true
			}
			loc++
		}
		return end, true
	}
	return loc, false
}

func (r *Reader) clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > len(r.buf) {
		return len(r.buf)
	}
	return n
}

// IsIdentChar reports whether c may appear in an identifier.
func IsIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// IsDigit reports whether c is an ASCII digit.
func IsDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// IsSpace reports whether c is ASCII white space.
func IsSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// folders holds case folders; a cases.Caser keeps state between calls
// and must not be shared by concurrent compiles.
var folders = sync.Pool{
	New: func() any { return cases.Fold() },
}

// EqualFold reports whether a and b are equal under Unicode case folding.
// Script keywords and semantic names are compared this way.
func EqualFold(a, b string) bool {
	if a == b {
		return true
	}
	c := folders.Get().(cases.Caser)
	defer folders.Put(c)
	return c.String(a) == c.String(b)
}

// Fold returns the case-folded form of s.
func Fold(s string) string {
	c := folders.Get().(cases.Caser)
	defer folders.Put(c)
	return c.String(s)
}
