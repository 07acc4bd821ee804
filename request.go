// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package effect

import (
	"slices"
	"strconv"

	"github.com/gogpu/effect/fragment"
	"github.com/gogpu/effect/lighting"
	"github.com/gogpu/effect/profile"
	"github.com/gogpu/effect/script"
	"github.com/gogpu/effect/synth"
)

// Lighting selects the lighting model of one compile.
type Lighting uint8

const (
	// LightingAuto uses the compiler's default model.
	LightingAuto Lighting = iota
	LightingNone
	LightingVertex
	LightingPixel
	LightingDeferred
)

// String returns the model name.
func (l Lighting) String() string {
	if l == LightingAuto {
		return "auto"
	}
	if m, ok := l.model(); ok {
		return m.String()
	}
	return "Lighting(" + strconv.Itoa(int(l)) + ")"
}

// ParseLighting parses a model name as returned by String.
func ParseLighting(s string) (Lighting, bool) {
	if script.EqualFold(s, "auto") {
		return LightingAuto, true
	}
	m, ok := synth.ParseLightingModel(s)
	if !ok {
		return LightingAuto, false
	}
	return Lighting(m) + LightingNone, true
}

// model returns the synthesis model of an explicit choice.
func (l Lighting) model() (synth.LightingModel, bool) {
	if l < LightingNone || l > LightingDeferred {
		return synth.LightingNone, false
	}
	return synth.LightingModel(l - LightingNone), true
}

// ShadowCaster describes the shadow caster active for one light type.
type ShadowCaster struct {
	Enabled bool

	// Vertex and Pixel override the caster includes of the compiler's
	// include table for shadow effects of this light type.
	Vertex string
	Pixel  string
}

// FeatureConfiguration is the part of the scene and material state that
// shapes the generated code.
type FeatureConfiguration struct {
	Lighting Lighting

	// Shadows is indexed by lighting.LightType.
	Shadows [3]ShadowCaster

	Fog bool

	// ShadowEffect builds a shadow caster effect of ShadowEffectType
	// instead of a lit effect. The pixel program is generated and its file
	// is not read.
	ShadowEffect     bool
	ShadowEffectType lighting.LightType

	// OverrideLightShading replaces the LightShading include.
	OverrideLightShading string

	// Macros apply to both programs.
	Macros []fragment.Macro
}

// Program describes one program of an effect.
type Program struct {
	// FileName is loaded through the compiler's loader.
	FileName string

	// Entry is the user entry function. Generated effects replace it.
	Entry string

	Profile profile.Profile

	// Type defaults to the stage of Profile.
	Type profile.Stage

	// Macros apply to this program only.
	Macros []fragment.Macro
}

func (p Program) stage() profile.Stage {
	if p.Type != profile.StageUnknown {
		return p.Type
	}
	return p.Profile.Stage()
}

// Request is one effect compile.
type Request struct {
	Vertex   Program
	Pixel    Program
	Features FeatureConfiguration
}

// Output is one compiled program.
type Output struct {
	// Source is the program text in the target dialect.
	Source string

	// Entry is the entry function to compile.
	Entry string

	Profile profile.Profile

	// Autos lists the engine-bound parameters the program declares.
	Autos []fragment.Auto

	// EffectNumber is the counter value assigned to the program.
	EffectNumber int

	// DebugName is the name of the last debug artifact saved for the
	// program, or empty.
	DebugName string
}

// Result is a compiled effect. Either both programs compile or there is
// no result.
type Result struct {
	Request Request

	Vertex Output
	Pixel  Output

	// VertexDeclaration is the vertex stream layout, nil for native
	// programs.
	VertexDeclaration []synth.VertexElement

	// Includes lists, sorted and without duplicates, every fragment the
	// programs were linked from.
	Includes []string
}

// DependsOn reports whether the effect was linked from the named
// fragment. Names match case-insensitively.
func (r *Result) DependsOn(name string) bool {
	return slices.ContainsFunc(r.Includes, func(inc string) bool {
		return script.EqualFold(inc, name)
	})
}
