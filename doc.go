// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package effect compiles effect scripts into shader source.
//
// An effect is a vertex program and a pixel program, each written as an
// effect script: blocks declaring vertex inputs, outputs with semantics,
// engine-bound autos, includes, header and source text. The compiler
// wraps the user functions in generated entry points that connect them to
// the fixed pipeline contract and wire in lighting or shadow casting. It
// then links each program with its includes and translates the result to
// the dialect of the target graphics API:
//
//   - Direct3D 10 and later receive the intermediate HLSL unchanged.
//   - Direct3D 9 receives HLSL with SV_POSITION and SV_TARGET renamed.
//   - OpenGL receives GLSL produced by the registered translator.
//
// Example usage:
//
//	store := include.NewMemStore()
//	// ... save effect scripts and includes into store ...
//	c := effect.New(store)
//	res, err := c.Compile(effect.Request{
//	    Vertex: effect.Program{FileName: "mesh.eff", Entry: "vsmain", Profile: profile.VS40},
//	    Pixel:  effect.Program{FileName: "meshp.eff", Entry: "psmain", Profile: profile.PS40},
//	    Features: effect.FeatureConfiguration{Lighting: effect.LightingPixel},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Vertex.Source)
//
// Compiles are serial. Many compiles can share one translator through a
// batch Session:
//
//	s, err := c.BeginBatch()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.End()
//	for _, req := range requests {
//	    res, err := s.Compile(req)
//	    // ...
//	}
//
// The lighting fragments included by lit effects are generated at run
// time from the active lights with RegenerateLighting; effects whose
// Result.DependsOn reports a regenerated fragment must be recompiled.
package effect
