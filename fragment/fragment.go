// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package fragment

import (
	"slices"
	"strconv"
	"strings"

	"github.com/gogpu/effect/profile"
)

// VertexInput is one element of the vertexinput block.
type VertexInput struct {
	Type  string
	Name  string
	Usage InputUsage
}

// Output is one declaration of a vertexoutput or pixeloutput block.
type Output struct {
	Type     string
	Name     string
	Semantic Semantic

	// Pass marks the output as crossing to the next stage.
	Pass bool

	// Synthesized marks outputs added by code generation rather than
	// declared in the script. They are not members of the user's
	// output struct.
	Synthesized bool
}

// Auto is an engine-bound uniform declared in an autos block.
type Auto struct {
	Type      string
	Name      string
	ArraySize int
}

// Decl returns the declaration text, e.g. "float4x4 autoProjection;".
func (a Auto) Decl() string {
	var sb strings.Builder
	sb.WriteString(a.Type)
	sb.WriteByte(' ')
	sb.WriteString(a.Name)
	if a.ArraySize > 0 {
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(a.ArraySize))
		sb.WriteByte(']')
	}
	sb.WriteByte(';')
	return sb.String()
}

// Macro is a preprocessor definition applied before translation.
type Macro struct {
	Name       string
	Definition string
}

// DataType is an engine auto data type.
type DataType uint8

const (
	Float DataType = iota
	Float2
	Float3
	Float4
	Float4x4
)

// String returns the intermediate dialect type name.
func (d DataType) String() string {
	switch d {
	case Float:
		return "float"
	case Float2:
		return "float2"
	case Float3:
		return "float3"
	case Float4:
		return "float4"
	case Float4x4:
		return "float4x4"
	default:
		return ""
	}
}

// Fragment is one analyzed unit of effect script text.
//
// A fragment is plain data. Code generation works on clones and never
// changes the declarations of an analyzed fragment.
type Fragment struct {
	// FileName identifies the fragment for includes and diagnostics.
	FileName string

	ProgramType profile.Stage
	Profile     profile.Profile
	Entry       string

	VertexInputs []VertexInput
	Outputs      []Output
	OutputStage  OutputStage
	Autos        []Auto
	Includes     []string
	Header       string
	Source       string
	Macros       []Macro

	// Final holds the linked or translated text.
	Final string

	// SourceLine is the number of lines preceding the source block body
	// in the script.
	SourceLine int

	// UserSourceLineStart is the line of Final at which the fragment's
	// own source text begins.
	UserSourceLineStart int

	// EffectNumber disambiguates debug artifacts.
	EffectNumber int
}

// Clone returns a deep copy of f.
func (f *Fragment) Clone() *Fragment {
	c := *f
	c.VertexInputs = slices.Clone(f.VertexInputs)
	c.Outputs = slices.Clone(f.Outputs)
	c.Autos = slices.Clone(f.Autos)
	c.Includes = slices.Clone(f.Includes)
	c.Macros = slices.Clone(f.Macros)
	return &c
}

// IsNative reports whether the fragment holds native shader source that
// bypasses synthesis. Such fragments declare no vertex inputs.
func (f *Fragment) IsNative() bool {
	return len(f.VertexInputs) == 0
}

// Auto returns the auto named name.
func (f *Fragment) Auto(name string) (Auto, bool) {
	for _, a := range f.Autos {
		if a.Name == name {
			return a, true
		}
	}
	return Auto{}, false
}

// AddAutoUnique appends an auto unless one with the same name exists.
// It reports whether the auto was added.
func (f *Fragment) AddAutoUnique(t DataType, name string) bool {
	if _, ok := f.Auto(name); ok {
		return false
	}
	f.Autos = append(f.Autos, Auto{Type: t.String(), Name: name})
	return true
}

// AddInclude appends an include unless it is already listed.
func (f *Fragment) AddInclude(name string) {
	if !slices.Contains(f.Includes, name) {
		f.Includes = append(f.Includes, name)
	}
}

// OutputIndex returns the index of the first output carrying sem, or -1.
func (f *Fragment) OutputIndex(sem Semantic) int {
	for i := range f.Outputs {
		if f.Outputs[i].Semantic == sem {
			return i
		}
	}
	return -1
}

// OutputBySemantic returns the first output carrying sem.
func (f *Fragment) OutputBySemantic(sem Semantic) (*Output, bool) {
	i := f.OutputIndex(sem)
	if i < 0 {
		return nil, false
	}
	return &f.Outputs[i], true
}

// Passed returns the outputs that cross to the next stage, in order.
func (f *Fragment) Passed() []Output {
	var out []Output
	for _, o := range f.Outputs {
		if o.Pass {
			out = append(out, o)
		}
	}
	return out
}
