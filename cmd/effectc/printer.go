// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// printer writes diagnostics, colored when the destination is a
// terminal.
type printer struct {
	w     io.Writer
	color bool
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) label(color, text string) string {
	if !p.color {
		return text
	}
	return color + text + ansiReset
}

func (p *printer) errorf(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.label(ansiRed, "error:"), fmt.Sprintf(format, args...))
}

func (p *printer) warnf(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.label(ansiYellow, "warning:"), fmt.Sprintf(format, args...))
}
