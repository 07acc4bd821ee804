// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package fragment holds the data model of an analyzed effect script and
// the analyzer that builds it.
//
// An effect script is a sequence of top-level blocks:
//
//	vertexinput {
//	    float3 pos position
//	    float2 uv texcoord
//	}
//	vertexoutput {
//	    float4 vpos viewposition
//	    float2 uv texcoord pass
//	}
//	autos {
//	    float4x4 autoWorldView
//	    sLight autoLight 4
//	}
//	include {
//	    MashLightStructures.eff
//	}
//	header { ... }
//	source { ... }
//
// Block keywords and semantic names are case-insensitive. The pass
// keyword is matched exactly. Header and source bodies are captured
// verbatim.
package fragment
