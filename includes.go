// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package effect

import (
	"strconv"

	"github.com/gogpu/effect/lighting"
	"github.com/gogpu/effect/script"
	"github.com/gogpu/effect/synth"
)

// IncludeKind names an engine include the compiler refers to by role.
// Per light type kinds are ordered Directional, Spot, Point.
type IncludeKind uint8

const (
	DirectionalLighting IncludeKind = iota
	SpotLighting
	PointLighting
	LightShading

	DirectionalShadowCasterVertex
	DirectionalShadowCasterPixel
	SpotShadowCasterVertex
	SpotShadowCasterPixel
	PointShadowCasterVertex
	PointShadowCasterPixel

	DirectionalShadowReceiver
	SpotShadowReceiver
	PointShadowReceiver

	LightStructures

	// Generated at run time.
	ForwardRenderedLighting
	DirectionalDeferredLighting
	SpotDeferredLighting
	PointDeferredLighting

	numIncludeKinds
)

var includeKindNames = [numIncludeKinds]string{
	DirectionalLighting:           "DirectionalLighting",
	SpotLighting:                  "SpotLighting",
	PointLighting:                 "PointLighting",
	LightShading:                  "LightShading",
	DirectionalShadowCasterVertex: "DirectionalShadowCasterVertex",
	DirectionalShadowCasterPixel:  "DirectionalShadowCasterPixel",
	SpotShadowCasterVertex:        "SpotShadowCasterVertex",
	SpotShadowCasterPixel:         "SpotShadowCasterPixel",
	PointShadowCasterVertex:       "PointShadowCasterVertex",
	PointShadowCasterPixel:        "PointShadowCasterPixel",
	DirectionalShadowReceiver:     "DirectionalShadowReceiver",
	SpotShadowReceiver:            "SpotShadowReceiver",
	PointShadowReceiver:           "PointShadowReceiver",
	LightStructures:               "LightStructures",
	ForwardRenderedLighting:       "ForwardRenderedLighting",
	DirectionalDeferredLighting:   "DirectionalDeferredLighting",
	SpotDeferredLighting:          "SpotDeferredLighting",
	PointDeferredLighting:         "PointDeferredLighting",
}

// defaultIncludes holds the file names used until SetAlternateInclude.
// Shadow casters and receivers are supplied by the active shadow caster
// and have no default.
var defaultIncludes = func() [numIncludeKinds]string {
	light := lighting.DefaultIncludes()
	var d [numIncludeKinds]string
	for _, t := range lighting.Types() {
		d[lightingKind(t)] = light.Lighting[t]
		d[deferredKind(t)] = light.Deferred[t]
	}
	d[LightShading] = "MashLightShading.eff"
	d[LightStructures] = light.LightStructures
	d[ForwardRenderedLighting] = synth.DefaultForwardInclude
	return d
}()

// String returns the kind name.
func (k IncludeKind) String() string {
	if k < numIncludeKinds {
		return includeKindNames[k]
	}
	return "IncludeKind(" + strconv.Itoa(int(k)) + ")"
}

// ParseIncludeKind matches a kind name case-insensitively.
func ParseIncludeKind(s string) (IncludeKind, bool) {
	for i, name := range includeKindNames {
		if script.EqualFold(s, name) {
			return IncludeKind(i), true
		}
	}
	return 0, false
}

// IncludeKinds returns every kind in declaration order.
func IncludeKinds() []IncludeKind {
	kinds := make([]IncludeKind, numIncludeKinds)
	for i := range kinds {
		kinds[i] = IncludeKind(i)
	}
	return kinds
}

// DefaultInclude returns the built-in file name of k.
func DefaultInclude(k IncludeKind) string {
	if k < numIncludeKinds {
		return defaultIncludes[k]
	}
	return ""
}

func lightingKind(t lighting.LightType) IncludeKind {
	return DirectionalLighting + IncludeKind(t)
}

func casterVertexKind(t lighting.LightType) IncludeKind {
	return DirectionalShadowCasterVertex + 2*IncludeKind(t)
}

func casterPixelKind(t lighting.LightType) IncludeKind {
	return DirectionalShadowCasterPixel + 2*IncludeKind(t)
}

func receiverKind(t lighting.LightType) IncludeKind {
	return DirectionalShadowReceiver + IncludeKind(t)
}

func deferredKind(t lighting.LightType) IncludeKind {
	return DirectionalDeferredLighting + IncludeKind(t)
}
