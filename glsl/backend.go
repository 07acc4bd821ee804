// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/effect/dialect"
	"github.com/gogpu/effect/hlsl"
	"github.com/gogpu/effect/profile"
)

// Version represents a GLSL version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common GLSL versions.
var (
	Version120 = Version{Major: 1, Minor: 20} // OpenGL 2.1
	Version130 = Version{Major: 1, Minor: 30} // OpenGL 3.0
	Version150 = Version{Major: 1, Minor: 50} // OpenGL 3.2
	Version330 = Version{Major: 3, Minor: 30} // OpenGL 3.3 Core
	Version410 = Version{Major: 4, Minor: 10} // OpenGL 4.1
)

// String returns the numeric version as used in a #version directive.
func (v Version) String() string {
	return fmt.Sprintf("%d%02d", v.Major, v.Minor)
}

// versionLessThan returns true if the numeric version (Major*100+Minor) is
// less than the given number.
func (v Version) versionLessThan(number int) bool {
	return int(v.Major)*100+int(v.Minor) < number
}

// ParseVersion parses a version written as in a #version directive
// ("330") or in dotted form ("3.30", "3.3").
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	var major, minor int
	var err error
	if before, after, ok := strings.Cut(s, "."); ok {
		if major, err = strconv.Atoi(before); err == nil {
			minor, err = strconv.Atoi(after)
			if len(after) == 1 {
				minor *= 10
			}
		}
	} else if n, perr := strconv.Atoi(s); perr == nil {
		major, minor = n/100, n%100
	} else {
		err = perr
	}
	if err != nil || major < 1 || major > 9 || minor < 0 || minor > 99 || major*100+minor < 110 {
		return Version{}, fmt.Errorf("glsl: invalid version %q", s)
	}
	return Version{Major: uint8(major), Minor: uint8(minor)}, nil
}

// modernIO reports whether the version declares stage interfaces with
// in/out rather than attribute/varying.
func (v Version) modernIO() bool {
	return !v.versionLessThan(130)
}

// Options configures GLSL code generation.
type Options struct {
	// LangVersion is the target GLSL version.
	// Defaults to Version330 if zero.
	LangVersion Version
}

// DefaultOptions returns the options used by the registered translator.
func DefaultOptions() Options {
	return Options{LangVersion: Version330}
}

// Stage is one parsed program handed to Compile.
type Stage struct {
	// Module is the parsed HLSL program.
	Module *hlsl.Module

	// Entry names the entry function in Module.
	Entry string

	// Source is the text Module was parsed from, used for error context.
	Source string

	// Name identifies the program in errors.
	Name string
}

// Compile translates a vertex and a pixel program into GLSL. The stages
// are translated together so that vertex outputs and pixel inputs agree
// on their varying names.
//
// The output carries no #version directive; the caller supplies one in
// its API header. Errors are *dialect.StageError values naming the
// failing program; those that can be traced to a source location wrap a
// *hlsl.SourceError.
func Compile(vs, ps Stage, options Options) (vsOut, psOut string, err error) {
	if options.LangVersion.Major == 0 {
		options.LangVersion = Version330
	}

	vw := newWriter(vs.Module, &options, stageVertex)
	vw.source, vw.name = vs.Source, vs.Name
	vsOut, err = vw.write(vs.Entry)
	if err != nil {
		return "", "", &dialect.StageError{Stage: profile.Vertex, Err: err}
	}
	pw := newWriter(ps.Module, &options, stagePixel)
	pw.source, pw.name = ps.Source, ps.Name
	psOut, err = pw.write(ps.Entry)
	if err != nil {
		return "", "", &dialect.StageError{Stage: profile.Pixel, Err: err}
	}
	return vsOut, psOut, nil
}
