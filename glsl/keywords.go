// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import "strings"

func wordSet(groups ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, g := range groups {
		for _, w := range strings.Fields(g) {
			set[w] = struct{}{}
		}
	}
	return set
}

// reservedWords holds GLSL keywords, type names and words reserved for
// future use, from GLSL 1.10 through 4.60.
var reservedWords = wordSet(
	// types
	`void bool int uint float double
	vec2 vec3 vec4 ivec2 ivec3 ivec4 uvec2 uvec3 uvec4 bvec2 bvec3 bvec4 dvec2 dvec3 dvec4
	mat2 mat3 mat4 mat2x2 mat2x3 mat2x4 mat3x2 mat3x3 mat3x4 mat4x2 mat4x3 mat4x4
	dmat2 dmat3 dmat4 dmat2x2 dmat2x3 dmat2x4 dmat3x2 dmat3x3 dmat3x4 dmat4x2 dmat4x3 dmat4x4`,
	`sampler sampler1D sampler2D sampler3D samplerCube sampler2DRect
	sampler1DShadow sampler2DShadow samplerCubeShadow sampler2DRectShadow
	sampler1DArray sampler2DArray sampler1DArrayShadow sampler2DArrayShadow
	samplerCubeArray samplerCubeArrayShadow samplerBuffer sampler2DMS sampler2DMSArray
	isampler1D isampler2D isampler3D isamplerCube isampler2DRect isampler1DArray isampler2DArray
	isamplerCubeArray isamplerBuffer isampler2DMS isampler2DMSArray
	usampler1D usampler2D usampler3D usamplerCube usampler2DRect usampler1DArray usampler2DArray
	usamplerCubeArray usamplerBuffer usampler2DMS usampler2DMSArray
	image1D image2D image3D imageCube image2DRect image1DArray image2DArray imageCubeArray
	imageBuffer image2DMS image2DMSArray atomic_uint`,
	// qualifiers and statements
	`attribute const uniform varying buffer shared coherent volatile restrict readonly writeonly
	layout centroid flat smooth noperspective patch sample subroutine in out inout
	invariant precise lowp mediump highp precision
	break continue do for while switch case default if else true false discard return struct`,
	// reserved for future use
	`common partition active asm class union enum typedef template this resource goto
	inline noinline public static extern external interface long short half fixed unsigned superp
	input output hvec2 hvec3 hvec4 fvec2 fvec3 fvec4 sampler3DRect filter sizeof cast namespace using`,
)

// builtinFunctions holds the GLSL built-in function names. Calls to them
// pass through unchanged; user identifiers with these names are escaped.
var builtinFunctions = wordSet(
	`radians degrees sin cos tan asin acos atan sinh cosh tanh asinh acosh atanh
	pow exp log exp2 log2 sqrt inversesqrt abs sign floor trunc round roundEven ceil fract
	mod modf min max clamp mix step smoothstep isnan isinf fma frexp ldexp
	floatBitsToInt floatBitsToUint intBitsToFloat uintBitsToFloat
	length distance dot cross normalize faceforward reflect refract
	matrixCompMult outerProduct transpose determinant inverse
	lessThan lessThanEqual greaterThan greaterThanEqual equal notEqual any all not
	dFdx dFdy fwidth noise1 noise2 noise3 noise4`,
	`texture textureProj textureLod textureOffset texelFetch textureSize textureGrad
	textureProjLod textureLodOffset textureGather
	texture1D texture2D texture3D textureCube texture2DLod texture2DProj textureCubeLod`,
)

// isKeyword reports whether name may not be used as a GLSL identifier.
func isKeyword(name string) bool {
	if _, ok := reservedWords[name]; ok {
		return true
	}
	_, ok := builtinFunctions[name]
	return ok || name == "main"
}

// isBuiltinFunction reports whether name is a GLSL built-in function.
func isBuiltinFunction(name string) bool {
	_, ok := builtinFunctions[name]
	return ok
}

// escapeKeyword prefixes name with an underscore when it collides with a
// GLSL reserved word or the reserved gl_ prefix.
func escapeKeyword(name string) string {
	if name == "" {
		return "_unnamed"
	}
	if isKeyword(name) || strings.HasPrefix(name, "gl_") {
		return "_" + name
	}
	return name
}
