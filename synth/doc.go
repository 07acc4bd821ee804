// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package synth generates the wrapper code around user vertex and pixel
// functions.
//
// The user's vertex function returns a VOUT struct built from its
// vertexoutput block. Synthesize adds:
//
//	struct VIN      vertex stream layout, one register per input usage
//	struct _PIN     outputs crossing to the pixel stage, then _posH
//	_vsmain(VIN)    calls the user function and fills _PIN
//	struct PIN      pixel view of _PIN
//	struct _PIXELOUT render targets for the lighting model
//	_psmain(PIN)    calls the user pixel function and composites lighting
//
// All text is produced by rendering a small AST; see Render.
package synth
