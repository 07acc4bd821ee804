// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package lighting generates the runtime lighting fragments.
//
// Two kinds of effect scripts are produced as text and stored under
// reserved include names, where the normal include machinery picks them
// up: one deferred lighting fragment per light type, and the forward
// rendered lighting fragment whose function iterates over the lights
// currently in the scene. A [Generator] rewrites them when the scene's
// light set changes.
package lighting
