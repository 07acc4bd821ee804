// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package fragment

import (
	"fmt"

	"github.com/gogpu/effect/script"
)

// InputUsage is the usage of a vertex input element.
type InputUsage uint8

const (
	UsagePosition InputUsage = iota
	UsageBlendWeight
	UsageBlendIndices
	UsageNormal
	UsageTexCoord
	UsageCustom
	UsageTangent
	UsageColour

	inputUsageCount
)

var inputUsageNames = [inputUsageCount]string{
	UsagePosition:     "position",
	UsageBlendWeight:  "blendweight",
	UsageBlendIndices: "blendindex",
	UsageNormal:       "normal",
	UsageTexCoord:     "texcoord",
	UsageCustom:       "custom",
	UsageTangent:      "tangent",
	UsageColour:       "colour",
}

var inputUsageHLSL = [inputUsageCount]string{
	UsagePosition:     "POSITION",
	UsageBlendWeight:  "BLENDWEIGHT",
	UsageBlendIndices: "BLENDINDICES",
	UsageNormal:       "NORMAL",
	UsageTexCoord:     "TEXCOORD",
	UsageCustom:       "CUSTOM",
	UsageTangent:      "TANGENT",
	UsageColour:       "COLOR",
}

// String returns the script name of the usage.
func (u InputUsage) String() string {
	if u < inputUsageCount {
		return inputUsageNames[u]
	}
	return fmt.Sprintf("InputUsage(%d)", u)
}

// HLSL returns the intermediate dialect semantic name, without index.
func (u InputUsage) HLSL() string {
	if u < inputUsageCount {
		return inputUsageHLSL[u]
	}
	return ""
}

// ParseInputUsage matches a script usage name case-insensitively.
func ParseInputUsage(s string) (InputUsage, bool) {
	for i, name := range inputUsageNames {
		if script.EqualFold(s, name) {
			return InputUsage(i), true
		}
	}
	return 0, false
}

// VertexOutput is the semantic of a vertex program output.
type VertexOutput uint8

const (
	ViewPosition VertexOutput = iota
	ViewNormal
	Specular
	Colour
	TexCoord
	Custom
	ClipPosition
	LightDiffuse
	LightSpecular

	vertexOutputCount
)

var vertexOutputNames = [vertexOutputCount]string{
	ViewPosition:  "viewposition",
	ViewNormal:    "viewnormal",
	Specular:      "specular",
	Colour:        "colour",
	TexCoord:      "texcoord",
	Custom:        "custom",
	ClipPosition:  "hposition",
	LightDiffuse:  "lightdiffuse",
	LightSpecular: "lightspecular",
}

// String returns the script name of the semantic.
func (v VertexOutput) String() string {
	if v < vertexOutputCount {
		return vertexOutputNames[v]
	}
	return fmt.Sprintf("VertexOutput(%d)", v)
}

// ParseVertexOutput matches a script semantic name case-insensitively.
func ParseVertexOutput(s string) (VertexOutput, bool) {
	for i, name := range vertexOutputNames {
		if script.EqualFold(s, name) {
			return VertexOutput(i), true
		}
	}
	return 0, false
}

// Interpolator returns the interpolator class a passed output travels in.
func (v VertexOutput) Interpolator() Interpolator {
	switch v {
	case Colour, LightDiffuse, LightSpecular:
		return InterpColour
	default:
		return InterpTexCoord
	}
}

// PixelOutput is the semantic of a pixel program output.
type PixelOutput uint8

const (
	PixelDiffuse PixelOutput = iota
	PixelSpecular
	PixelViewNormal

	pixelOutputCount
)

var pixelOutputNames = [pixelOutputCount]string{
	PixelDiffuse:    "diffuse",
	PixelSpecular:   "specular",
	PixelViewNormal: "viewnormal",
}

// String returns the script name of the semantic.
func (p PixelOutput) String() string {
	if p < pixelOutputCount {
		return pixelOutputNames[p]
	}
	return fmt.Sprintf("PixelOutput(%d)", p)
}

// ParsePixelOutput matches a script semantic name case-insensitively.
func ParsePixelOutput(s string) (PixelOutput, bool) {
	for i, name := range pixelOutputNames {
		if script.EqualFold(s, name) {
			return PixelOutput(i), true
		}
	}
	return 0, false
}

// Interpolator is an interpolator register class.
type Interpolator uint8

const (
	InterpTexCoord Interpolator = iota
	InterpColour
)

// String returns the intermediate dialect semantic prefix of the class.
func (i Interpolator) String() string {
	if i == InterpColour {
		return "COLOR"
	}
	return "TEXCOORD"
}

// OutputStage says which semantic set a fragment's outputs use.
type OutputStage uint8

const (
	OutputNone OutputStage = iota
	OutputVertex
	OutputPixel
)

// Semantic is an output semantic tagged with the stage it belongs to.
// The zero value is invalid. Values are built with VertexSemantic or
// PixelSemantic only, so a pixel semantic can never be read as a vertex
// one.
type Semantic struct {
	stage OutputStage
	value uint8
}

// VertexSemantic wraps a vertex output semantic.
func VertexSemantic(v VertexOutput) Semantic {
	return Semantic{stage: OutputVertex, value: uint8(v)}
}

// PixelSemantic wraps a pixel output semantic.
func PixelSemantic(p PixelOutput) Semantic {
	return Semantic{stage: OutputPixel, value: uint8(p)}
}

// Stage returns the stage the semantic belongs to.
func (s Semantic) Stage() OutputStage {
	return s.stage
}

// Vertex returns the vertex semantic, if s is one.
func (s Semantic) Vertex() (VertexOutput, bool) {
	if s.stage != OutputVertex {
		return 0, false
	}
	return VertexOutput(s.value), true
}

// Pixel returns the pixel semantic, if s is one.
func (s Semantic) Pixel() (PixelOutput, bool) {
	if s.stage != OutputPixel {
		return 0, false
	}
	return PixelOutput(s.value), true
}

// Is reports whether s is the vertex semantic v.
func (s Semantic) Is(v VertexOutput) bool {
	got, ok := s.Vertex()
	return ok && got == v
}

// IsPixel reports whether s is the pixel semantic p.
func (s Semantic) IsPixel(p PixelOutput) bool {
	got, ok := s.Pixel()
	return ok && got == p
}

// Unique reports whether at most one output of a fragment may carry s.
// Interpolator-only semantics (colour, texcoord, custom) may repeat.
func (s Semantic) Unique() bool {
	switch s.stage {
	case OutputVertex:
		switch VertexOutput(s.value) {
		case Colour, TexCoord, Custom:
			return false
		}
		return true
	case OutputPixel:
		return true
	}
	return false
}

// String returns a readable form such as "vertex:viewposition".
func (s Semantic) String() string {
	switch s.stage {
	case OutputVertex:
		return "vertex:" + VertexOutput(s.value).String()
	case OutputPixel:
		return "pixel:" + PixelOutput(s.value).String()
	}
	return "invalid"
}
