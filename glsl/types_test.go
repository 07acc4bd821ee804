// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import "testing"

func TestTypeName(t *testing.T) {
	w := newWriter(nil, &Options{LangVersion: Version330}, stagePixel)
	tests := []struct {
		hlsl, want string
	}{
		{"float", "float"},
		{"half", "float"},
		{"float2", "vec2"},
		{"half3", "vec3"},
		{"int4", "ivec4"},
		{"uint2", "uvec2"},
		{"bool3", "bvec3"},
		{"float4x4", "mat4"},
		{"float3x3", "mat3"},
		{"float4x3", "mat3x4"},
		{"float2x4", "mat4x2"},
		{"void", "void"},
		{"sampler2D", "sampler2D"},
		{"samplerCUBE", "samplerCube"},
		{"Texture3D", "sampler3D"},
		{"sLight", "sLight"},
		{"input", "_input"},
	}
	for _, tt := range tests {
		t.Run(tt.hlsl, func(t *testing.T) {
			if got := w.typeName(tt.hlsl); got != tt.want {
				t.Errorf("typeName(%q) = %q, want %q", tt.hlsl, got, tt.want)
			}
		})
	}
}

func TestEscapeKeyword(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"color", "color"},
		{"texture", "_texture"},
		{"sample", "_sample"},
		{"output", "_output"},
		{"main", "_main"},
		{"gl_Position", "_gl_Position"},
		{"mix", "_mix"},
		{"lerp", "lerp"},
		{"", "_unnamed"},
	}
	for _, tt := range tests {
		if got := escapeKeyword(tt.name); got != tt.want {
			t.Errorf("escapeKeyword(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestParseSemantic(t *testing.T) {
	tests := []struct {
		in    string
		base  string
		index int
	}{
		{"TEXCOORD3", "TEXCOORD", 3},
		{"sv_target", "SV_TARGET", 0},
		{"Color12", "COLOR", 12},
		{"POSITION", "POSITION", 0},
	}
	for _, tt := range tests {
		got := parseSemantic(tt.in)
		if got.Base != tt.base || got.Index != tt.index {
			t.Errorf("parseSemantic(%q) = %+v, want %s %d", tt.in, got, tt.base, tt.index)
		}
	}
	if s := parseSemantic("texcoord").String(); s != "TEXCOORD0" {
		t.Errorf("String() = %q, want %q", s, "TEXCOORD0")
	}
}

func TestVersion(t *testing.T) {
	tests := []struct {
		v      Version
		str    string
		modern bool
	}{
		{Version120, "120", false},
		{Version130, "130", true},
		{Version330, "330", true},
		{Version410, "410", true},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
		if got := tt.v.modernIO(); got != tt.modern {
			t.Errorf("%s modernIO() = %v, want %v", tt.str, got, tt.modern)
		}
	}
	if DefaultOptions().LangVersion != Version330 {
		t.Errorf("DefaultOptions().LangVersion = %s, want 330", DefaultOptions().LangVersion)
	}
}
