// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strconv"
	"strings"
)

var keywords = map[string]TokenKind{
	"break":           TokenBreak,
	"cbuffer":         TokenCbuffer,
	"const":           TokenConst,
	"continue":        TokenContinue,
	"discard":         TokenDiscard,
	"do":              TokenDo,
	"else":            TokenElse,
	"false":           TokenFalse,
	"for":             TokenFor,
	"if":              TokenIf,
	"in":              TokenIn,
	"inout":           TokenInout,
	"out":             TokenOut,
	"return":          TokenReturn,
	"static":          TokenStatic,
	"struct":          TokenStruct,
	"true":            TokenTrue,
	"uniform":         TokenUniform,
	"while":           TokenWhile,
	"inline":          TokenInline,
	"extern":          TokenExtern,
	"row_major":       TokenRowMajor,
	"column_major":    TokenColumnMajor,
	"centroid":        TokenCentroid,
	"linear":          TokenLinear,
	"nointerpolation": TokenNoInterpolation,
	"precise":         TokenPrecise,
	"shared":          TokenShared,
	"volatile":        TokenVolatile,
}

// isDroppedModifier reports modifiers that are accepted and ignored.
func isDroppedModifier(k TokenKind) bool {
	return k >= TokenInline && k <= TokenVolatile
}

// Scalar is a scalar component kind.
type Scalar uint8

const (
	ScalarNone Scalar = iota
	ScalarBool
	ScalarInt
	ScalarUint
	ScalarFloat
)

// String returns the HLSL scalar name.
func (s Scalar) String() string {
	switch s {
	case ScalarBool:
		return "bool"
	case ScalarInt:
		return "int"
	case ScalarUint:
		return "uint"
	case ScalarFloat:
		return "float"
	default:
		return ""
	}
}

var scalarNames = map[string]Scalar{
	"bool":       ScalarBool,
	"int":        ScalarInt,
	"dword":      ScalarUint,
	"uint":       ScalarUint,
	"float":      ScalarFloat,
	"half":       ScalarFloat,
	"double":     ScalarFloat,
	"min16float": ScalarFloat,
	"min16int":   ScalarInt,
	"min16uint":  ScalarUint,
}

// Samplers lists the sampler object types.
var Samplers = map[string]bool{
	"sampler":     true,
	"sampler1D":   true,
	"sampler2D":   true,
	"sampler3D":   true,
	"samplerCUBE": true,

	"SamplerState":           true,
	"SamplerComparisonState": true,
}

// Textures lists the Direct3D 10 texture object types.
var Textures = map[string]bool{
	"Texture1D":   true,
	"Texture2D":   true,
	"Texture3D":   true,
	"TextureCube": true,
}

// Numeric describes a scalar, vector or matrix type name. Rows is the
// vector size for vectors; Cols is zero for scalars and vectors.
type Numeric struct {
	Scalar Scalar
	Rows   int
	Cols   int
}

// IsScalar reports whether n is a scalar type.
func (n Numeric) IsScalar() bool { return n.Rows == 1 && n.Cols == 0 }

// IsVector reports whether n is a vector type.
func (n Numeric) IsVector() bool { return n.Rows > 1 && n.Cols == 0 }

// IsMatrix reports whether n is a matrix type.
func (n Numeric) IsMatrix() bool { return n.Cols > 0 }

// ParseNumeric parses names such as float, half3, int2, float4x3.
func ParseNumeric(name string) (Numeric, bool) {
	if s, ok := scalarNames[name]; ok {
		return Numeric{Scalar: s, Rows: 1}, true
	}
	for base, s := range scalarNames {
		rest, ok := strings.CutPrefix(name, base)
		if !ok || rest == "" || rest[0] < '1' || rest[0] > '4' {
			continue
		}
		rows, _ := strconv.Atoi(rest[:1])
		rest = rest[1:]
		if rest == "" {
			return Numeric{Scalar: s, Rows: rows}, true
		}
		if len(rest) == 2 && rest[0] == 'x' && rest[1] >= '1' && rest[1] <= '4' {
			return Numeric{Scalar: s, Rows: rows, Cols: int(rest[1] - '0')}, true
		}
	}
	return Numeric{}, false
}

// IsBuiltinType reports whether name is a built-in value or sampler type.
func IsBuiltinType(name string) bool {
	if name == "void" || Samplers[name] || Textures[name] {
		return true
	}
	_, ok := ParseNumeric(name)
	return ok
}
