// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"maps"
	"strings"

	"github.com/gogpu/effect/hlsl"
)

type stage uint8

const (
	stageVertex stage = iota
	stagePixel
)

func (s stage) String() string {
	if s == stageVertex {
		return "vertex"
	}
	return "pixel"
}

// Writer generates GLSL source code for one stage of an HLSL program.
type Writer struct {
	module  *hlsl.Module
	options *Options
	stage   stage
	source  string
	name    string

	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int

	// functions holds the names of user functions.
	functions map[string]bool

	// scalars holds the scalar variables in scope.
	scalars map[string]hlsl.Scalar
}

// newWriter creates a new GLSL writer.
func newWriter(module *hlsl.Module, options *Options, st stage) *Writer {
	w := &Writer{
		module:    module,
		options:   options,
		stage:     st,
		functions: make(map[string]bool),
	}
	if module != nil {
		for _, d := range module.Decls {
			if f, ok := d.(*hlsl.FunctionDecl); ok {
				w.functions[f.Name] = true
			}
		}
	}
	return w
}

// String returns the generated GLSL source code.
func (w *Writer) String() string {
	return w.out.String()
}

// write generates the whole stage: the interface variables, every
// top-level declaration in source order and the main function calling
// entry.
func (w *Writer) write(entry string) (string, error) {
	if w.module == nil {
		return "", fmt.Errorf("no %s program", w.stage)
	}
	fn := w.module.Function(entry)
	if fn == nil {
		return "", fmt.Errorf("entry point '%s' not found", entry)
	}

	iface, err := w.collectInterface(fn)
	if err != nil {
		return "", err
	}
	if w.writeInterface(iface) {
		w.writeLine("")
	}

	for _, d := range w.module.Decls {
		var err error
		switch d := d.(type) {
		case *hlsl.StructDecl:
			err = w.writeStruct(d)
		case *hlsl.VarDecl:
			err = w.writeGlobal(d)
		case *hlsl.CbufferDecl:
			err = w.writeCbuffer(d)
		case *hlsl.FunctionDecl:
			err = w.writeFunction(d)
		}
		if err != nil {
			return "", err
		}
	}

	if err := w.writeMain(fn, iface); err != nil {
		return "", err
	}
	return w.String(), nil
}

func (w *Writer) errorAt(n hlsl.Node, format string, args ...any) *hlsl.SourceError {
	var span hlsl.Span
	if n != nil {
		span = n.Pos()
	}
	if span.Source == "" {
		span.Source = w.name
	}
	return hlsl.NewSourceErrorf(span, w.source, format, args...)
}

func (w *Writer) writeStruct(s *hlsl.StructDecl) error {
	w.writeLine("struct %s", escapeKeyword(s.Name))
	w.writeLine("{")
	w.pushIndent()
	for _, m := range s.Members {
		if isSamplerState(m.Type) {
			return w.errorAt(s, "struct %s: sampler state members are not supported", s.Name)
		}
		suffix, err := w.arraySuffix(m.ArraySize)
		if err != nil {
			return err
		}
		w.writeLine("%s %s%s;", w.typeName(m.Type), escapeKeyword(m.Name), suffix)
	}
	w.popIndent()
	w.writeLine("};")
	w.writeLine("")
	return nil
}

// writeGlobal writes a global variable. Globals are uniforms unless they
// are static or constant.
func (w *Writer) writeGlobal(v *hlsl.VarDecl) error {
	if isSamplerState(v.Type) {
		return nil
	}
	qualifier := "uniform "
	switch {
	case v.Const && v.Init != nil && !v.Uniform:
		qualifier = "const "
	case v.Static:
		qualifier = ""
	}
	line, err := w.declaration(v, qualifier)
	if err != nil {
		return err
	}
	w.writeLine("%s", line)
	return nil
}

// writeCbuffer writes a constant buffer as a uniform block.
func (w *Writer) writeCbuffer(c *hlsl.CbufferDecl) error {
	w.writeLine("uniform %s", escapeKeyword(c.Name))
	w.writeLine("{")
	w.pushIndent()
	for _, v := range c.Vars {
		line, err := w.declaration(v, "")
		if err != nil {
			return err
		}
		w.writeLine("%s", line)
	}
	w.popIndent()
	w.writeLine("};")
	w.writeLine("")
	return nil
}

// declaration renders a variable declaration with its initializer.
// Uniform initializers are dropped.
func (w *Writer) declaration(v *hlsl.VarDecl, qualifier string) (string, error) {
	w.declare(v.Name, v.Type, v.ArraySize)
	suffix, err := w.arraySuffix(v.ArraySize)
	if err != nil {
		return "", err
	}
	s := qualifier + w.typeName(v.Type) + " " + escapeKeyword(v.Name) + suffix
	if v.Init != nil && qualifier != "uniform " {
		init, err := w.initializer(v.Type, v.ArraySize, v.Init)
		if err != nil {
			return "", err
		}
		s += " = " + init
	}
	return s + ";", nil
}

func (w *Writer) arraySuffix(size hlsl.Expr) (string, error) {
	if size == nil {
		return "", nil
	}
	n, err := w.expr(size)
	if err != nil {
		return "", err
	}
	return "[" + n + "]", nil
}

// initializer renders the right-hand side of a declaration. Brace lists
// become constructors of the declared type.
func (w *Writer) initializer(typ string, arraySize hlsl.Expr, init hlsl.Expr) (string, error) {
	list, ok := init.(*hlsl.InitListExpr)
	if !ok {
		return w.expr(init)
	}

	if arraySize != nil {
		elems := make([]string, len(list.Elems))
		for i, e := range list.Elems {
			v, err := w.initializer(typ, nil, e)
			if err != nil {
				return "", err
			}
			elems[i] = v
		}
		size := ""
		if n, err := w.constArraySize(arraySize); err == nil {
			size = fmt.Sprint(n)
		}
		return fmt.Sprintf("%s[%s](%s)", w.typeName(typ), size, strings.Join(elems, ", ")), nil
	}

	if n, ok := hlsl.ParseNumeric(typ); ok {
		var flat []string
		if err := w.flatten(list, &flat); err != nil {
			return "", err
		}
		if n.IsScalar() {
			if len(flat) != 1 {
				return "", w.errorAt(list, "initializer for %s has %d elements", typ, len(flat))
			}
			return flat[0], nil
		}
		return numericName(n) + "(" + strings.Join(flat, ", ") + ")", nil
	}

	s := w.module.Struct(typ)
	if s == nil {
		return "", w.errorAt(list, "cannot use an initializer list for type %s", typ)
	}
	if len(list.Elems) != len(s.Members) {
		return "", w.errorAt(list, "initializer for %s has %d elements, want %d", typ, len(list.Elems), len(s.Members))
	}
	fields := make([]string, len(s.Members))
	for i, m := range s.Members {
		v, err := w.initializer(m.Type, m.ArraySize, list.Elems[i])
		if err != nil {
			return "", err
		}
		fields[i] = v
	}
	return w.typeName(typ) + "(" + strings.Join(fields, ", ") + ")", nil
}

func (w *Writer) flatten(list *hlsl.InitListExpr, out *[]string) error {
	for _, e := range list.Elems {
		if inner, ok := e.(*hlsl.InitListExpr); ok {
			if err := w.flatten(inner, out); err != nil {
				return err
			}
			continue
		}
		v, err := w.expr(e)
		if err != nil {
			return err
		}
		*out = append(*out, v)
	}
	return nil
}

// writeFunction writes a function definition or prototype.
func (w *Writer) writeFunction(f *hlsl.FunctionDecl) error {
	outer := w.scalars
	w.scalars = maps.Clone(outer)
	defer func() { w.scalars = outer }()

	params := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		w.declare(p.Name, p.Type, p.ArraySize)
		if isSamplerState(p.Type) {
			return w.errorAt(f, "function %s: sampler state parameters are not supported", f.Name)
		}
		var q string
		switch p.Qualifier {
		case hlsl.ParamOut:
			q = "out "
		case hlsl.ParamInOut:
			q = "inout "
		}
		suffix, err := w.arraySuffix(p.ArraySize)
		if err != nil {
			return err
		}
		params = append(params, q+w.typeName(p.Type)+" "+escapeKeyword(p.Name)+suffix)
	}
	sig := fmt.Sprintf("%s %s(%s)", w.typeName(f.ReturnType), escapeKeyword(f.Name), strings.Join(params, ", "))

	if f.Body == nil {
		w.writeLine("%s;", sig)
		w.writeLine("")
		return nil
	}

	w.writeLine("%s", sig)
	if err := w.writeBlock(f.Body); err != nil {
		return err
	}
	w.writeLine("")
	return nil
}

// Output helpers

// writeLine writes a line with indentation and newline.
//
//nolint:goprintffuncname
func (w *Writer) writeLine(format string, args ...any) {
	if format != "" {
		w.writeIndent()
	}
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

// writeIndent writes the current indentation.
func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

// pushIndent increases indentation.
func (w *Writer) pushIndent() {
	w.indent++
}

// popIndent decreases indentation.
func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}
