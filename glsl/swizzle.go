// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"

	"github.com/gogpu/effect/hlsl"
)

// HLSL lets a scalar be swizzled, as in dot(n, l).xxx; GLSL does not. The
// writer tracks which names hold scalars so such swizzles can be turned
// into vector constructors.

// scalarResults are intrinsics that return a scalar for vector arguments.
var scalarResults = map[string]bool{
	"dot":         true,
	"length":      true,
	"distance":    true,
	"determinant": true,
	"any":         true,
	"all":         true,
}

// componentWise are intrinsics whose result has the shape of their
// arguments.
var componentWise = map[string]bool{
	"abs": true, "acos": true, "asin": true, "atan": true, "atan2": true,
	"ceil": true, "clamp": true, "cos": true, "exp": true, "exp2": true,
	"floor": true, "fmod": true, "frac": true, "lerp": true, "log": true,
	"log2": true, "log10": true, "mad": true, "max": true, "min": true,
	"pow": true, "rcp": true, "round": true, "rsqrt": true, "saturate": true,
	"sign": true, "sin": true, "smoothstep": true, "sqrt": true, "step": true,
	"tan": true, "trunc": true,
}

// isSwizzle reports whether member selects vector components, e.g. xyz
// or rgba.
func isSwizzle(member string) bool {
	if member == "" || len(member) > 4 {
		return false
	}
	for _, set := range []string{"xyzw", "rgba"} {
		if strings.Trim(member, set) == "" {
			return true
		}
	}
	return false
}

// declare records the type of a variable coming into scope.
func (w *Writer) declare(name, typ string, arraySize hlsl.Expr) {
	if w.scalars == nil {
		w.scalars = make(map[string]hlsl.Scalar)
	}
	if n, ok := hlsl.ParseNumeric(typ); ok && n.IsScalar() && arraySize == nil {
		w.scalars[name] = n.Scalar
		return
	}
	delete(w.scalars, name)
}

// scalarType returns the scalar type of e when it is known to be a
// scalar.
func (w *Writer) scalarType(e hlsl.Expr) (hlsl.Scalar, bool) {
	switch e := e.(type) {
	case *hlsl.Literal:
		switch e.Kind {
		case hlsl.TokenFloatLiteral:
			return hlsl.ScalarFloat, true
		case hlsl.TokenIntLiteral:
			if strings.ContainsAny(e.Value, "uU") {
				return hlsl.ScalarUint, true
			}
			return hlsl.ScalarInt, true
		case hlsl.TokenBoolLiteral:
			return hlsl.ScalarBool, true
		}
	case *hlsl.Ident:
		s, ok := w.scalars[e.Name]
		return s, ok
	case *hlsl.ParenExpr:
		return w.scalarType(e.Expr)
	case *hlsl.UnaryExpr:
		return w.scalarType(e.Operand)
	case *hlsl.BinaryExpr:
		switch e.Op {
		case hlsl.TokenPlus, hlsl.TokenMinus, hlsl.TokenStar, hlsl.TokenSlash, hlsl.TokenPercent:
			return w.commonScalar(e.Left, e.Right)
		}
	case *hlsl.CastExpr:
		return scalarOf(e.Type)
	case *hlsl.CallExpr:
		if w.functions[e.Func] {
			return hlsl.ScalarNone, false
		}
		if s, ok := scalarOf(e.Func); ok {
			return s, true
		}
		if scalarResults[e.Func] {
			if e.Func == "any" || e.Func == "all" {
				return hlsl.ScalarBool, true
			}
			return hlsl.ScalarFloat, true
		}
		if componentWise[e.Func] && len(e.Args) > 0 {
			return w.commonScalar(e.Args...)
		}
	}
	return hlsl.ScalarNone, false
}

// commonScalar returns the promoted scalar type of exprs when all of them
// are scalars.
func (w *Writer) commonScalar(exprs ...hlsl.Expr) (hlsl.Scalar, bool) {
	out := hlsl.ScalarNone
	for _, e := range exprs {
		s, ok := w.scalarType(e)
		if !ok {
			return hlsl.ScalarNone, false
		}
		out = max(out, s)
	}
	return out, true
}

func scalarOf(typ string) (hlsl.Scalar, bool) {
	n, ok := hlsl.ParseNumeric(typ)
	if !ok || !n.IsScalar() {
		return hlsl.ScalarNone, false
	}
	return n.Scalar, true
}

// scalarSwizzle renders x.member for a scalar x: one component is the
// scalar itself, more become a vector constructor.
func scalarSwizzle(x string, s hlsl.Scalar, width int) string {
	if width == 1 {
		return paren(x)
	}
	return numericName(hlsl.Numeric{Scalar: s, Rows: width}) + "(" + x + ")"
}
