// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl compiles HLSL vertex/pixel program pairs to GLSL.
//
// The input is the intermediate dialect produced by effect synthesis: a
// subset of HLSL with structs, uniforms, constant buffers, functions and
// the common intrinsics. Both programs are compiled together so that the
// vertex outputs and pixel inputs share varying names.
//
// # Basic Usage
//
//	vs, ps, err := glsl.Compile(
//	    glsl.Stage{Module: vm, Entry: "_vsmain"},
//	    glsl.Stage{Module: pm, Entry: "_psmain"},
//	    glsl.Options{LangVersion: glsl.Version330},
//	)
//
// Importing the package registers a [Translator] with the dialect package
// under the name "glsl".
//
// # Versions
//
// GLSL 1.30 and later declare the stage interface with in/out and sample
// with texture(). Older versions use attribute/varying, gl_FragData and
// the per-dimension texture functions. No #version directive is written;
// it belongs to the API header.
//
// # Stage Interface
//
// The entry function is wrapped in a generated main() that loads each
// input from an interface variable, calls the entry and stores the
// results:
//
//   - vertex inputs are attributes named after their semantic, such as
//     _inposition or _intexcoord0
//   - values crossing stages are xlat_varying_<SEMANTIC>
//   - SV_POSITION maps to gl_Position and gl_FragCoord
//   - pixel targets are _FragDataOutN (gl_FragData[N] before 1.30)
//
// # Reserved Words
//
// Identifiers that collide with GLSL keywords or built-in functions, or
// that start with gl_, are prefixed with an underscore.
package glsl
