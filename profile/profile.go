// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package profile describes shader profiles, the graphics APIs they target
// and the program stages they compile.
package profile

import "fmt"

// API is a graphics API family. It selects the dialect path taken by the
// translator.
type API uint8

const (
	// APIUnknown is the zero value.
	APIUnknown API = iota

	// D3D9 is the legacy Direct3D 9 family (shader model 1-3).
	D3D9

	// D3D10 is the Direct3D 10+ family (shader model 4-5).
	D3D10

	// OpenGL is the OpenGL family.
	OpenGL
)

// String returns the API name.
func (a API) String() string {
	switch a {
	case D3D9:
		return "D3D9"
	case D3D10:
		return "D3D10"
	case OpenGL:
		return "OpenGL"
	default:
		return "Unknown"
	}
}

// FileExtension returns the extension of translated sources for the API.
func (a API) FileExtension() string {
	switch a {
	case D3D9, D3D10:
		return "hlsl"
	case OpenGL:
		return "glsl"
	default:
		return ""
	}
}

// Define returns the preprocessor symbol that identifies the API family
// inside effect sources.
func (a API) Define() string {
	if a == OpenGL {
		return "_DEFINE_OPENGL"
	}
	return "_DEFINE_DIRECTX"
}

// DebugTag returns the tag used in intermediate debug file names.
func (a API) DebugTag() string {
	if a == OpenGL {
		return "ogl"
	}
	return "dx"
}

// Stage is a programmable pipeline stage.
type Stage uint8

const (
	// StageUnknown is the zero value.
	StageUnknown Stage = iota

	// Vertex is the vertex stage.
	Vertex

	// Geometry is the geometry stage.
	Geometry

	// Pixel is the pixel (fragment) stage.
	Pixel
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case Vertex:
		return "vertex"
	case Geometry:
		return "geometry"
	case Pixel:
		return "pixel"
	default:
		return "unknown"
	}
}

// Profile is a shader target profile such as vs_4_0 or glslp.
type Profile uint8

// Supported profiles.
const (
	Unknown Profile = iota
	VS11
	VS20
	VS30
	VS40
	VS50
	PS11
	PS12
	PS13
	PS20
	PS30
	PS40
	PS50
	GS40
	GS50
	VSGLSL
	PSGLSL
	GSGLSL
)

var profileNames = [...]string{
	Unknown: "",
	VS11:    "vs_1_1",
	VS20:    "vs_2_0",
	VS30:    "vs_3_0",
	VS40:    "vs_4_0",
	VS50:    "vs_5_0",
	PS11:    "ps_1_1",
	PS12:    "ps_1_2",
	PS13:    "ps_1_3",
	PS20:    "ps_2_0",
	PS30:    "ps_3_0",
	PS40:    "ps_4_0",
	PS50:    "ps_5_0",
	GS40:    "gs_4_0",
	GS50:    "gs_5_0",
	VSGLSL:  "glslv",
	PSGLSL:  "glslp",
	GSGLSL:  "glslg",
}

// String returns the profile string, e.g. "vs_4_0". Unknown profiles
// return the empty string.
func (p Profile) String() string {
	if int(p) < len(profileNames) {
		return profileNames[p]
	}
	return ""
}

// Parse returns the profile named s.
func Parse(s string) (Profile, error) {
	for i, name := range profileNames {
		if i != 0 && name == s {
			return Profile(i), nil
		}
	}
	return Unknown, fmt.Errorf("profile: unknown shader profile %q", s)
}

// API returns the graphics API family of the profile.
func (p Profile) API() API {
	switch p {
	case VS11, VS20, VS30, PS11, PS12, PS13, PS20, PS30:
		return D3D9
	case VS40, VS50, PS40, PS50, GS40, GS50:
		return D3D10
	case VSGLSL, PSGLSL, GSGLSL:
		return OpenGL
	default:
		return APIUnknown
	}
}

// Stage returns the pipeline stage the profile compiles.
func (p Profile) Stage() Stage {
	switch p {
	case VS11, VS20, VS30, VS40, VS50, VSGLSL:
		return Vertex
	case PS11, PS12, PS13, PS20, PS30, PS40, PS50, PSGLSL:
		return Pixel
	case GS40, GS50, GSGLSL:
		return Geometry
	default:
		return StageUnknown
	}
}

// PixelProfile returns the pixel profile paired with a vertex profile.
// Unpaired profiles map to ps_1_1.
func (p Profile) PixelProfile() Profile {
	switch p {
	case VS11:
		return PS11
	case VS20:
		return PS20
	case VS30:
		return PS30
	case VS40:
		return PS40
	case VS50:
		return PS50
	case VSGLSL:
		return PSGLSL
	default:
		return PS11
	}
}
