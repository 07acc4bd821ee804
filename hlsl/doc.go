// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl parses the HLSL dialect that effect programs are written
// in.
//
// The front end covers what effect code uses: structs with semantics,
// global uniforms and samplers, cbuffers, functions with in/out
// parameters and the usual statements and expressions, including C-style
// casts. Source is first run through a line-preserving preprocessor, so
// line numbers in errors match the input.
//
// # Usage
//
//	module, err := hlsl.Parse("water.eff", src, hlsl.Define{Name: "_DEFINE_OPENGL"})
//	if err != nil {
//	    var errs hlsl.SourceErrors
//	    if errors.As(err, &errs) {
//	        fmt.Println(errs.FormatAll(nil))
//	    }
//	}
//	vs := module.Function("_vsmain")
package hlsl
