// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dialect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/effect/fragment"
	"github.com/gogpu/effect/hlsl"
	"github.com/gogpu/effect/profile"
	"github.com/gogpu/effect/script"
)

// glslExtensions follows the API header of every OpenGL program.
const glslExtensions = "\n#extension GL_ARB_uniform_buffer_object : enable\n"

// Unit is one program handed to a Translator.
type Unit struct {
	// Name identifies the program in diagnostics.
	Name string
	// Source is the linked program text, macro prelude included.
	Source string
	// Entry is the entry function.
	Entry string
}

// Translator converts a vertex/pixel program pair written in the
// intermediate dialect into GLSL. Both stages are translated together so
// that their interfaces agree.
//
// Errors should be, or wrap, a *StageError naming the failing program.
type Translator interface {
	Translate(vs, ps Unit) (vsOut, psOut string, err error)
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(vs, ps Unit) (string, string, error)

// Translate calls f(vs, ps).
func (f TranslatorFunc) Translate(vs, ps Unit) (string, string, error) {
	return f(vs, ps)
}

// StageError attributes a translator failure to one program of the pair.
type StageError struct {
	Stage profile.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s program: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// TranslationError is a translation failure of one fragment.
type TranslationError struct {
	// Fragment is the file name of the failing program.
	Fragment string
	// Line is the 1-based line in the translated input, or 0.
	Line int
	// EffectLine is the corresponding line in the fragment's script, or 0
	// when the line lies outside the user's source.
	EffectLine int
	Err        error

	origin hlsl.LineMap
}

func (e *TranslationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "failed to translate '%s'", e.Fragment)
	switch {
	case e.EffectLine > 0:
		fmt.Fprintf(&sb, " (line %d, effect line %d)", e.Line, e.EffectLine)
	case e.Line > 0:
		fmt.Fprintf(&sb, " (line %d)", e.Line)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	return sb.String()
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

// Context returns the translator diagnostics with the offending program
// lines, located in the effect file where possible. It falls back to
// Error when the failure carries no source position.
func (e *TranslationError) Context() string {
	var all hlsl.SourceErrors
	if errors.As(e.Err, &all) {
		return all.FormatAll(e.origin)
	}
	var se *hlsl.SourceError
	if errors.As(e.Err, &se) {
		return se.FormatWithContext(e.origin)
	}
	return e.Error()
}

// EffectLines maps lines of f's linked program to lines of its script.
// Lines ahead of the user's source, such as the macro prelude and linked
// includes, map to 0.
func EffectLines(f *fragment.Fragment) hlsl.LineMap {
	sourceLine, start := f.SourceLine, f.UserSourceLineStart
	return func(line int) int {
		if line < 1 || line-1 < start {
			return 0
		}
		return sourceLine + line - start
	}
}

// newTranslationError attributes err to f. Source errors carry a line in
// the translated input, which is mapped back into the script through the
// fragment's line bookkeeping.
func newTranslationError(f *fragment.Fragment, err error) *TranslationError {
	te := &TranslationError{Fragment: f.FileName, Err: err, origin: EffectLines(f)}
	var se *hlsl.SourceError
	if errors.As(err, &se) && se.Line() > 0 {
		te.Line = se.Line()
		te.EffectLine = te.origin(se.Line())
	}
	return te
}

// Options configures Translate.
type Options struct {
	// APIHeader starts every OpenGL program, typically a #version line.
	APIHeader string

	// Validate parses Direct3D programs with the built-in front end so
	// that syntax errors are reported at compile time.
	Validate bool
}

// Prelude returns the #define lines for f's macros and advances
// f.UserSourceLineStart past them.
func Prelude(f *fragment.Fragment) string {
	var sb strings.Builder
	for _, m := range f.Macros {
		sb.WriteString("#define ")
		sb.WriteString(m.Name)
		if m.Definition != "" {
			sb.WriteByte(' ')
			sb.WriteString(m.Definition)
		}
		sb.WriteByte('\n')
		f.UserSourceLineStart++
	}
	return sb.String()
}

// Translate converts the Final text of a linked program pair into the
// dialect of api, in place. The fragments are left untouched on error.
func Translate(sess *TranslatorSession, api profile.API, vs, ps *fragment.Fragment, opts Options) error {
	if vs == nil || ps == nil {
		return errors.New("dialect: translate needs a vertex and a pixel program")
	}
	v, p := vs.Clone(), ps.Clone()
	v.Final = Prelude(v) + v.Final
	p.Final = Prelude(p) + p.Final

	switch api {
	case profile.D3D10:
		// Already in the target dialect.
	case profile.D3D9:
		v.Final = RewriteD3D9(v.Final)
		p.Final = RewriteD3D9(p.Final)
	case profile.OpenGL:
		if err := translateGL(sess, v, p, opts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("dialect: unsupported API %s", api)
	}

	if opts.Validate && api != profile.OpenGL {
		for _, f := range []*fragment.Fragment{v, p} {
			if _, err := hlsl.Parse(f.FileName, f.Final); err != nil {
				return newTranslationError(f, err)
			}
		}
	}

	*vs, *ps = *v, *p
	return nil
}

func translateGL(sess *TranslatorSession, v, p *fragment.Fragment, opts Options) error {
	if sess == nil {
		return ErrSessionClosed
	}
	vsOut, psOut, err := sess.Translate(
		Unit{Name: v.FileName, Source: v.Final, Entry: v.Entry},
		Unit{Name: p.FileName, Source: p.Final, Entry: p.Entry},
	)
	if err != nil {
		if errors.Is(err, ErrSessionClosed) {
			return err
		}
		failed := v
		var se *StageError
		if errors.As(err, &se) && se.Stage == profile.Pixel {
			failed = p
		}
		return newTranslationError(failed, err)
	}
	v.Final = opts.APIHeader + glslExtensions + vsOut
	p.Final = opts.APIHeader + glslExtensions + psOut
	return nil
}

// d3d9Semantics maps Direct3D 10 system-value semantics to their
// Direct3D 9 names.
var d3d9Semantics = []struct{ from, to string }{
	{"SV_POSITION", "POSITION"},
	{"SV_TARGET", "COLOR"},
}

// RewriteD3D9 renames the system-value semantics that follow a ':' to
// their Direct3D 9 names, keeping any index digits. Comments are removed;
// everything else is copied unchanged.
func RewriteD3D9(src string) string {
	r := script.NewReader([]byte(src))
	end := r.Len()
	var sb strings.Builder
	sb.Grow(len(src))

	loc := 0
	for {
		c, next, ok := r.ReadChar(loc, end)
		if !ok {
			break
		}
		sb.WriteByte(c)
		loc = next
		if c != ':' {
			continue
		}

		// Copy the whitespace up to the semantic.
		for {
			c, next, ok = r.ReadChar(loc, end)
			if !ok || (c != ' ' && c != '\t' && c != '\r' && c != '\n') {
				break
			}
			sb.WriteByte(c)
			loc = next
		}
		if !ok || !script.IsIdentChar(c) {
			continue
		}
		// next is one past the first identifier byte, so the identifier
		// starts at next-1.
		start := next - 1
		stop := start
		for stop < end && script.IsIdentChar(src[stop]) {
			stop++
		}
		sb.WriteString(d3d9Semantic(src[start:stop]))
		loc = stop
	}
	return sb.String()
}

func d3d9Semantic(name string) string {
	for _, m := range d3d9Semantics {
		if len(name) < len(m.from) || !script.EqualFold(name[:len(m.from)], m.from) {
			continue
		}
		digits := name[len(m.from):]
		if strings.TrimLeft(digits, "0123456789") != "" {
			continue
		}
		return m.to + digits
	}
	return name
}
