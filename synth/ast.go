// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package synth

import (
	"strings"
)

// Node is a top-level declaration of generated code.
type Node interface {
	render(w *writer)
}

// Stmt is a statement inside a generated function body.
type Stmt interface {
	renderStmt(w *writer)
}

// Expr is an expression of generated code.
type Expr interface {
	renderExpr(sb *strings.Builder)
}

// Field is one member of a generated struct. Semantic may be empty.
type Field struct {
	Type     string
	Name     string
	Semantic string
}

// StructDecl declares a struct.
type StructDecl struct {
	Name   string
	Fields []Field
}

// Param is a function parameter.
type Param struct {
	Type string
	Name string
}

// FuncDecl declares a function with a statement body.
type FuncDecl struct {
	Result string
	Name   string
	Params []Param
	Body   []Stmt
}

// VarDecl declares a local variable. Init may be nil.
type VarDecl struct {
	Type string
	Name string
	Init Expr
}

// Assign stores RHS into LHS.
type Assign struct {
	LHS Expr
	RHS Expr
}

// Return returns X from the enclosing function.
type Return struct {
	X Expr
}

// If runs Then when Cond holds.
type If struct {
	Cond Expr
	Then []Stmt
}

// Raw is verbatim text. As a Node it is written unchanged; as a Stmt it
// is written as one indented line.
type Raw string

// Ident is a plain identifier.
type Ident string

// Lit is a literal written as is, e.g. "1.0f".
type Lit string

// Member selects a struct field.
type Member struct {
	X    Expr
	Name string
}

// Swizzle selects vector components, e.g. xyz.
type Swizzle struct {
	X          Expr
	Components string
}

// Index selects an array element.
type Index struct {
	X Expr
	I Expr
}

// Call invokes a function or type constructor.
type Call struct {
	Func string
	Args []Expr
}

// Binary is a binary operation. Operands are not parenthesized.
type Binary struct {
	Op string
	X  Expr
	Y  Expr
}

// Paren wraps X in parentheses.
type Paren struct {
	X Expr
}

// Render writes nodes as intermediate dialect text.
func Render(nodes ...Node) string {
	var w writer
	for _, n := range nodes {
		n.render(&w)
	}
	return w.out.String()
}

// RenderExpr returns the text of a single expression.
func RenderExpr(e Expr) string {
	var sb strings.Builder
	e.renderExpr(&sb)
	return sb.String()
}

type writer struct {
	out    strings.Builder
	indent int
}

func (w *writer) writeLine(s string) {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
	w.out.WriteString(s)
	w.out.WriteByte('\n')
}

func (s *StructDecl) render(w *writer) {
	w.writeLine("struct " + s.Name + " {")
	w.indent++
	for _, f := range s.Fields {
		line := f.Type + " " + f.Name
		if f.Semantic != "" {
			line += " : " + f.Semantic
		}
		w.writeLine(line + ";")
	}
	w.indent--
	w.writeLine("};")
}

func (f *FuncDecl) render(w *writer) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type + " " + p.Name
	}
	w.writeLine(f.Result + " " + f.Name + "(" + strings.Join(params, ", ") + ")")
	w.writeLine("{")
	w.indent++
	for _, s := range f.Body {
		s.renderStmt(w)
	}
	w.indent--
	w.writeLine("}")
}

func (r Raw) render(w *writer) {
	w.out.WriteString(string(r))
}

func (r Raw) renderStmt(w *writer) {
	w.writeLine(string(r))
}

func (v *VarDecl) renderStmt(w *writer) {
	line := v.Type + " " + v.Name
	if v.Init != nil {
		line += " = " + RenderExpr(v.Init)
	}
	w.writeLine(line + ";")
}

func (a *Assign) renderStmt(w *writer) {
	w.writeLine(RenderExpr(a.LHS) + " = " + RenderExpr(a.RHS) + ";")
}

func (r *Return) renderStmt(w *writer) {
	if r.X == nil {
		w.writeLine("return;")
		return
	}
	w.writeLine("return " + RenderExpr(r.X) + ";")
}

func (i *If) renderStmt(w *writer) {
	w.writeLine("if (" + RenderExpr(i.Cond) + ")")
	w.writeLine("{")
	w.indent++
	for _, s := range i.Then {
		s.renderStmt(w)
	}
	w.indent--
	w.writeLine("}")
}

func (i Ident) renderExpr(sb *strings.Builder) { sb.WriteString(string(i)) }

func (l Lit) renderExpr(sb *strings.Builder) { sb.WriteString(string(l)) }

func (m *Member) renderExpr(sb *strings.Builder) {
	m.X.renderExpr(sb)
	sb.WriteByte('.')
	sb.WriteString(m.Name)
}

func (s *Swizzle) renderExpr(sb *strings.Builder) {
	s.X.renderExpr(sb)
	sb.WriteByte('.')
	sb.WriteString(s.Components)
}

func (x *Index) renderExpr(sb *strings.Builder) {
	x.X.renderExpr(sb)
	sb.WriteByte('[')
	x.I.renderExpr(sb)
	sb.WriteByte(']')
}

func (c *Call) renderExpr(sb *strings.Builder) {
	sb.WriteString(c.Func)
	sb.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		a.renderExpr(sb)
	}
	sb.WriteByte(')')
}

func (b *Binary) renderExpr(sb *strings.Builder) {
	b.X.renderExpr(sb)
	sb.WriteByte(' ')
	sb.WriteString(b.Op)
	sb.WriteByte(' ')
	b.Y.renderExpr(sb)
}

func (p *Paren) renderExpr(sb *strings.Builder) {
	sb.WriteByte('(')
	p.X.renderExpr(sb)
	sb.WriteByte(')')
}

// Small constructors keep the synthesis code readable.

func member(x Expr, name string) *Member { return &Member{X: x, Name: name} }

func call(fn string, args ...Expr) *Call { return &Call{Func: fn, Args: args} }

func xyz(x Expr) *Swizzle { return &Swizzle{X: x, Components: "xyz"} }

func assign(lhs, rhs Expr) *Assign { return &Assign{LHS: lhs, RHS: rhs} }
