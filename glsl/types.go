// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/effect/hlsl"
)

// samplerNames maps HLSL sampler and texture types to GLSL. Sampler
// state objects have no GLSL counterpart and map to the empty string.
var samplerNames = map[string]string{
	"sampler":     "sampler2D",
	"sampler1D":   "sampler1D",
	"sampler2D":   "sampler2D",
	"sampler3D":   "sampler3D",
	"samplerCUBE": "samplerCube",
	"Texture1D":   "sampler1D",
	"Texture2D":   "sampler2D",
	"Texture3D":   "sampler3D",
	"TextureCube": "samplerCube",

	"SamplerState":           "",
	"SamplerComparisonState": "",
}

// isSamplerState reports whether typ is a sampler state object.
func isSamplerState(typ string) bool {
	s, ok := samplerNames[typ]
	return ok && s == ""
}

// numericName returns the GLSL name of a scalar, vector or matrix type.
// HLSL floatRxC has R rows of C columns, which GLSL calls matCxR.
func numericName(n hlsl.Numeric) string {
	switch {
	case n.IsMatrix():
		if n.Rows == n.Cols {
			return "mat" + strconv.Itoa(n.Rows)
		}
		return fmt.Sprintf("mat%dx%d", n.Cols, n.Rows)
	case n.IsVector():
		prefix := "vec"
		switch n.Scalar {
		case hlsl.ScalarInt:
			prefix = "ivec"
		case hlsl.ScalarUint:
			prefix = "uvec"
		case hlsl.ScalarBool:
			prefix = "bvec"
		}
		return prefix + strconv.Itoa(n.Rows)
	default:
		return n.Scalar.String()
	}
}

// isIntegral reports whether an HLSL type must be interpolated flat.
func isIntegral(typ string) bool {
	n, ok := hlsl.ParseNumeric(typ)
	return ok && n.Scalar != hlsl.ScalarFloat
}

// typeName returns the GLSL spelling of an HLSL type name.
func (w *Writer) typeName(typ string) string {
	if typ == "void" {
		return typ
	}
	if s, ok := samplerNames[typ]; ok {
		return s
	}
	if n, ok := hlsl.ParseNumeric(typ); ok {
		return numericName(n)
	}
	return escapeKeyword(typ)
}

// isValueType reports whether typ can be used as a constructor in a cast.
func isValueType(typ string) bool {
	_, ok := hlsl.ParseNumeric(typ)
	return ok
}

func scalarZero(s hlsl.Scalar) string {
	switch s {
	case hlsl.ScalarBool:
		return "false"
	case hlsl.ScalarInt:
		return "0"
	case hlsl.ScalarUint:
		return "0u"
	default:
		return "0.0"
	}
}

// zeroValue returns a GLSL expression for the zero value of an HLSL type,
// as produced by the HLSL idiom (T)0. Struct members are zeroed
// recursively.
func (w *Writer) zeroValue(typ string, arraySize hlsl.Expr, at hlsl.Node) (string, error) {
	if arraySize != nil {
		n, err := w.constArraySize(arraySize)
		if err != nil {
			return "", err
		}
		elem, err := w.zeroValue(typ, nil, at)
		if err != nil {
			return "", err
		}
		elems := make([]string, n)
		for i := range elems {
			elems[i] = elem
		}
		return fmt.Sprintf("%s[%d](%s)", w.typeName(typ), n, strings.Join(elems, ", ")), nil
	}

	if n, ok := hlsl.ParseNumeric(typ); ok {
		if n.IsScalar() {
			return scalarZero(n.Scalar), nil
		}
		return numericName(n) + "(" + scalarZero(n.Scalar) + ")", nil
	}

	s := w.module.Struct(typ)
	if s == nil {
		return "", w.errorAt(at, "cannot zero-initialize a value of type %s", typ)
	}
	fields := make([]string, len(s.Members))
	for i, m := range s.Members {
		v, err := w.zeroValue(m.Type, m.ArraySize, at)
		if err != nil {
			return "", err
		}
		fields[i] = v
	}
	return w.typeName(typ) + "(" + strings.Join(fields, ", ") + ")", nil
}

// constArraySize evaluates an array size that must be an integer literal.
func (w *Writer) constArraySize(e hlsl.Expr) (int, error) {
	if lit, ok := e.(*hlsl.Literal); ok && lit.Kind == hlsl.TokenIntLiteral {
		n, err := strconv.ParseInt(strings.TrimRight(lit.Value, "uUlL"), 0, 32)
		if err == nil && n > 0 {
			return int(n), nil
		}
	}
	return 0, w.errorAt(e, "array size must be a positive integer literal")
}
