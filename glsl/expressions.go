// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/effect/hlsl"
)

// expr renders an expression.
func (w *Writer) expr(e hlsl.Expr) (string, error) {
	switch e := e.(type) {
	case *hlsl.Ident:
		return escapeKeyword(e.Name), nil

	case *hlsl.Literal:
		return w.literal(e), nil

	case *hlsl.BinaryExpr:
		l, err := w.expr(e.Left)
		if err != nil {
			return "", err
		}
		r, err := w.expr(e.Right)
		if err != nil {
			return "", err
		}
		return l + " " + e.Op.String() + " " + r, nil

	case *hlsl.UnaryExpr:
		x, err := w.expr(e.Operand)
		if err != nil {
			return "", err
		}
		if e.Postfix {
			return x + e.Op.String(), nil
		}
		return e.Op.String() + x, nil

	case *hlsl.AssignExpr:
		l, err := w.expr(e.Target)
		if err != nil {
			return "", err
		}
		r, err := w.expr(e.Value)
		if err != nil {
			return "", err
		}
		return l + " " + e.Op.String() + " " + r, nil

	case *hlsl.TernaryExpr:
		c, err := w.expr(e.Condition)
		if err != nil {
			return "", err
		}
		a, err := w.expr(e.Then)
		if err != nil {
			return "", err
		}
		b, err := w.expr(e.Else)
		if err != nil {
			return "", err
		}
		return c + " ? " + a + " : " + b, nil

	case *hlsl.ParenExpr:
		x, err := w.expr(e.Expr)
		if err != nil {
			return "", err
		}
		return "(" + x + ")", nil

	case *hlsl.MemberExpr:
		x, err := w.expr(e.Expr)
		if err != nil {
			return "", err
		}
		if isSwizzle(e.Member) {
			if s, ok := w.scalarType(e.Expr); ok {
				return scalarSwizzle(x, s, len(e.Member)), nil
			}
		}
		return paren(x) + "." + escapeKeyword(e.Member), nil

	case *hlsl.IndexExpr:
		x, err := w.expr(e.Expr)
		if err != nil {
			return "", err
		}
		i, err := w.expr(e.Index)
		if err != nil {
			return "", err
		}
		return paren(x) + "[" + i + "]", nil

	case *hlsl.CastExpr:
		return w.cast(e)

	case *hlsl.CallExpr:
		return w.call(e)

	case *hlsl.MethodCallExpr:
		return w.methodCall(e)

	case *hlsl.InitListExpr:
		return "", w.errorAt(e, "initializer list outside a declaration")

	default:
		return "", fmt.Errorf("unsupported expression: %T", e)
	}
}

// paren wraps s in parentheses unless it is a single operand: a name,
// a call or an already parenthesized expression.
func paren(s string) string {
	if !strings.ContainsAny(s, " ?") {
		return s
	}
	if i := strings.IndexByte(s, '('); i >= 0 && isName(s[:i]) && closes(s[i:]) {
		return s
	}
	return "(" + s + ")"
}

func isName(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '_' && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// closes reports whether the '(' opening s is matched by its last byte.
func closes(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i == len(s)-1
			}
		}
	}
	return false
}

// literal renders a literal without HLSL suffixes. Float literals keep a
// decimal point so they are not read back as integers.
func (w *Writer) literal(l *hlsl.Literal) string {
	v := l.Value
	switch l.Kind {
	case hlsl.TokenFloatLiteral:
		v = strings.TrimRight(v, "fFhHlL")
		if !strings.ContainsAny(v, ".eE") {
			v += ".0"
		}
	case hlsl.TokenIntLiteral:
		v = strings.TrimRight(v, "lL")
		if !w.options.LangVersion.modernIO() {
			v = strings.TrimRight(v, "uU")
		}
	}
	return v
}

// cast renders a C-style cast as a constructor call. Casting 0 to a
// struct builds the zero value of the struct.
func (w *Writer) cast(c *hlsl.CastExpr) (string, error) {
	x, err := w.expr(c.Expr)
	if err != nil {
		return "", err
	}
	if isValueType(c.Type) {
		return w.typeName(c.Type) + "(" + x + ")", nil
	}
	if w.module.Struct(c.Type) != nil {
		if lit, ok := c.Expr.(*hlsl.Literal); ok && isZero(lit.Value) {
			return w.zeroValue(c.Type, nil, c)
		}
		return "", w.errorAt(c, "cast to struct %s is only supported from 0", c.Type)
	}
	return "", w.errorAt(c, "unsupported cast to %s", c.Type)
}

func isZero(v string) bool {
	v = strings.TrimRight(v, "fFhHuUlL")
	return strings.Trim(v, "0.") == "" && v != ""
}

func (w *Writer) args(exprs []hlsl.Expr) ([]string, error) {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		s, err := w.expr(e)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// call renders a function call, constructor or intrinsic.
func (w *Writer) call(c *hlsl.CallExpr) (string, error) {
	args, err := w.args(c.Args)
	if err != nil {
		return "", err
	}
	list := strings.Join(args, ", ")

	switch {
	case w.functions[c.Func]:
		return escapeKeyword(c.Func) + "(" + list + ")", nil
	case isValueType(c.Func):
		return w.typeName(c.Func) + "(" + list + ")", nil
	case c.Func == "clip":
		return "", w.errorAt(c, "clip can only be used as a statement")
	}

	if in, ok := intrinsics[c.Func]; ok {
		if in.args >= 0 && len(args) != in.args {
			return "", w.errorAt(c, "%s expects %d arguments, got %d", c.Func, in.args, len(args))
		}
		return in.emit(w, args), nil
	}
	if isBuiltinFunction(c.Func) {
		return c.Func + "(" + list + ")", nil
	}
	return "", w.errorAt(c, "unknown function '%s'", c.Func)
}

// methodCall renders Direct3D 10 texture object methods.
func (w *Writer) methodCall(m *hlsl.MethodCallExpr) (string, error) {
	recv, err := w.expr(m.Receiver)
	if err != nil {
		return "", err
	}
	args, err := w.args(m.Args)
	if err != nil {
		return "", err
	}

	// The first argument is the sampler state, which GLSL folds into the
	// sampler uniform.
	var fn string
	var want int
	switch m.Method {
	case "Sample":
		fn, want = "texture", 2
	case "SampleBias":
		fn, want = "texture", 3
	case "SampleLevel":
		fn, want = "textureLod", 3
	case "SampleGrad":
		fn, want = "textureGrad", 4
	default:
		return "", w.errorAt(m, "unsupported method '%s'", m.Method)
	}
	if len(args) != want {
		return "", w.errorAt(m, "%s expects %d arguments, got %d", m.Method, want, len(args))
	}
	return fn + "(" + strings.Join(append([]string{recv}, args[1:]...), ", ") + ")", nil
}

type intrinsic struct {
	// args is the required argument count, or -1 for any.
	args int
	emit func(w *Writer, a []string) string
}

func renamed(name string, args int) intrinsic {
	return intrinsic{args: args, emit: func(_ *Writer, a []string) string {
		return name + "(" + strings.Join(a, ", ") + ")"
	}}
}

// sampling maps a tex* intrinsic to texture() or, below GLSL 1.30, to the
// legacy per-dimension function.
func sampling(legacy string) intrinsic {
	return intrinsic{args: 2, emit: func(w *Writer, a []string) string {
		fn := "texture"
		if !w.options.LangVersion.modernIO() {
			fn = legacy
		}
		return fn + "(" + a[0] + ", " + a[1] + ")"
	}}
}

// sampleLod maps tex*lod, whose coordinate carries the level in w.
func sampleLod(legacy, coords string) intrinsic {
	return intrinsic{args: 2, emit: func(w *Writer, a []string) string {
		fn := "textureLod"
		if !w.options.LangVersion.modernIO() {
			fn = legacy
		}
		uv := paren(a[1])
		return fn + "(" + a[0] + ", " + uv + "." + coords + ", " + uv + ".w)"
	}}
}

var intrinsics = map[string]intrinsic{
	"mul": {args: 2, emit: func(_ *Writer, a []string) string {
		return "(" + paren(a[0]) + " * " + paren(a[1]) + ")"
	}},
	"saturate": {args: 1, emit: func(_ *Writer, a []string) string {
		return "clamp(" + a[0] + ", 0.0, 1.0)"
	}},
	"rcp": {args: 1, emit: func(_ *Writer, a []string) string {
		return "(1.0 / " + paren(a[0]) + ")"
	}},
	"mad": {args: 3, emit: func(_ *Writer, a []string) string {
		return "(" + paren(a[0]) + " * " + paren(a[1]) + " + " + paren(a[2]) + ")"
	}},
	"log10": {args: 1, emit: func(_ *Writer, a []string) string {
		return "(log2(" + a[0] + ") * 0.30103)"
	}},

	"lerp":    renamed("mix", 3),
	"frac":    renamed("fract", 1),
	"rsqrt":   renamed("inversesqrt", 1),
	"fmod":    renamed("mod", 2),
	"atan2":   renamed("atan", 2),
	"ddx":     renamed("dFdx", 1),
	"ddy":     renamed("dFdy", 1),
	"asfloat": renamed("intBitsToFloat", 1),
	"asint":   renamed("floatBitsToInt", 1),
	"asuint":  renamed("floatBitsToUint", 1),

	"tex1D":   sampling("texture1D"),
	"tex2D":   sampling("texture2D"),
	"tex3D":   sampling("texture3D"),
	"texCUBE": sampling("textureCube"),

	"tex2Dlod":   sampleLod("texture2DLod", "xy"),
	"tex3Dlod":   sampleLod("texture3DLod", "xyz"),
	"texCUBElod": sampleLod("textureCubeLod", "xyz"),

	"tex2Dproj": {args: 2, emit: func(w *Writer, a []string) string {
		fn := "textureProj"
		if !w.options.LangVersion.modernIO() {
			fn = "texture2DProj"
		}
		return fn + "(" + a[0] + ", " + a[1] + ")"
	}},
	"tex2Dbias": {args: 2, emit: func(w *Writer, a []string) string {
		fn := "texture"
		if !w.options.LangVersion.modernIO() {
			fn = "texture2D"
		}
		uv := paren(a[1])
		return fn + "(" + a[0] + ", " + uv + ".xy, " + uv + ".w)"
	}},
	"tex2Dgrad": renamed("textureGrad", 4),
}
