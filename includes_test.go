// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package effect

import (
	"testing"

	"github.com/gogpu/effect/lighting"
	"github.com/gogpu/effect/synth"
)

func TestIncludeKindNames(t *testing.T) {
	for _, k := range IncludeKinds() {
		name := k.String()
		if name == "" {
			t.Errorf("IncludeKind(%d).String() is empty", k)
			continue
		}
		got, ok := ParseIncludeKind(name)
		if !ok || got != k {
			t.Errorf("ParseIncludeKind(%q) = %v, %v; want %v", name, got, ok, k)
		}
	}
	if got, ok := ParseIncludeKind("lightshading"); !ok || got != LightShading {
		t.Errorf("ParseIncludeKind(lightshading) = %v, %v", got, ok)
	}
	if _, ok := ParseIncludeKind("nope"); ok {
		t.Error("ParseIncludeKind(nope) succeeded")
	}
	if got := IncludeKind(200).String(); got != "IncludeKind(200)" {
		t.Errorf("String() = %q, want %q", got, "IncludeKind(200)")
	}
}

func TestDefaultIncludes(t *testing.T) {
	tests := []struct {
		kind IncludeKind
		want string
	}{
		{DirectionalLighting, "MashDirectionalLighting.eff"},
		{PointLighting, "MashPointLighting.eff"},
		{LightShading, "MashLightShading.eff"},
		{LightStructures, "MashLightStructures.eff"},
		{ForwardRenderedLighting, synth.DefaultForwardInclude},
		{SpotDeferredLighting, "MashSpotDeferredLighting_g.eff"},
		{DirectionalShadowReceiver, ""},
		{PointShadowCasterPixel, ""},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := DefaultInclude(tt.kind); got != tt.want {
				t.Errorf("DefaultInclude() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPerTypeKinds(t *testing.T) {
	tests := []struct {
		light                            lighting.LightType
		lit, casterVS, casterPS, receive IncludeKind
	}{
		{lighting.Directional, DirectionalLighting, DirectionalShadowCasterVertex, DirectionalShadowCasterPixel, DirectionalShadowReceiver},
		{lighting.Spot, SpotLighting, SpotShadowCasterVertex, SpotShadowCasterPixel, SpotShadowReceiver},
		{lighting.Point, PointLighting, PointShadowCasterVertex, PointShadowCasterPixel, PointShadowReceiver},
	}
	for _, tt := range tests {
		t.Run(tt.light.String(), func(t *testing.T) {
			if got := lightingKind(tt.light); got != tt.lit {
				t.Errorf("lightingKind() = %v, want %v", got, tt.lit)
			}
			if got := casterVertexKind(tt.light); got != tt.casterVS {
				t.Errorf("casterVertexKind() = %v, want %v", got, tt.casterVS)
			}
			if got := casterPixelKind(tt.light); got != tt.casterPS {
				t.Errorf("casterPixelKind() = %v, want %v", got, tt.casterPS)
			}
			if got := receiverKind(tt.light); got != tt.receive {
				t.Errorf("receiverKind() = %v, want %v", got, tt.receive)
			}
		})
	}
}

func TestLightingNames(t *testing.T) {
	for _, l := range []Lighting{LightingAuto, LightingNone, LightingVertex, LightingPixel, LightingDeferred} {
		got, ok := ParseLighting(l.String())
		if !ok || got != l {
			t.Errorf("ParseLighting(%q) = %v, %v; want %v", l.String(), got, ok, l)
		}
	}
	if m, ok := LightingVertex.model(); !ok || m != synth.LightingVertex {
		t.Errorf("LightingVertex.model() = %v, %v", m, ok)
	}
	if _, ok := LightingAuto.model(); ok {
		t.Error("LightingAuto.model() reported a fixed model")
	}
}
