// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "testing"

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		name string
		want Numeric
		ok   bool
	}{
		{"float", Numeric{Scalar: ScalarFloat, Rows: 1}, true},
		{"half3", Numeric{Scalar: ScalarFloat, Rows: 3}, true},
		{"int2", Numeric{Scalar: ScalarInt, Rows: 2}, true},
		{"uint4", Numeric{Scalar: ScalarUint, Rows: 4}, true},
		{"bool3", Numeric{Scalar: ScalarBool, Rows: 3}, true},
		{"float4x4", Numeric{Scalar: ScalarFloat, Rows: 4, Cols: 4}, true},
		{"float3x4", Numeric{Scalar: ScalarFloat, Rows: 3, Cols: 4}, true},
		{"float5", Numeric{}, false},
		{"float4x", Numeric{}, false},
		{"sLight", Numeric{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumeric(tt.name)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseNumeric(%q) = %+v, %v; want %+v, %v", tt.name, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestIsBuiltinType(t *testing.T) {
	for _, name := range []string{"void", "float4", "sampler2D", "samplerCUBE", "int", "Texture2D", "SamplerState"} {
		if !IsBuiltinType(name) {
			t.Errorf("IsBuiltinType(%q) = false", name)
		}
	}
	for _, name := range []string{"VIN", "Texture2DArray", "floats"} {
		if IsBuiltinType(name) {
			t.Errorf("IsBuiltinType(%q) = true", name)
		}
	}
}

func TestNumericShape(t *testing.T) {
	s, _ := ParseNumeric("float")
	v, _ := ParseNumeric("float3")
	m, _ := ParseNumeric("float4x4")
	if !s.IsScalar() || s.IsVector() || s.IsMatrix() {
		t.Error("float shape")
	}
	if !v.IsVector() || v.IsScalar() || v.IsMatrix() {
		t.Error("float3 shape")
	}
	if !m.IsMatrix() || m.IsVector() {
		t.Error("float4x4 shape")
	}
}
