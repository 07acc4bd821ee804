// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package dialect turns linked effect programs into the source dialect of
// a graphics API.
//
// Direct3D 10 programs are passed through. Direct3D 9 programs have their
// system-value semantics rewritten to the legacy names. OpenGL programs
// are handed, as a vertex/pixel pair, to a [Translator] that produces
// GLSL.
//
// Translators are registered by name, following the database/sql driver
// pattern:
//
//	import _ "github.com/gogpu/effect/glsl" // registers "glsl"
//
//	t, err := dialect.NewTranslator("glsl")
//
// A [TranslatorSession] scopes the use of one translator across a batch of
// compiles.
package dialect
