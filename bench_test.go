// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package effect

import (
	"runtime"
	"testing"

	"github.com/gogpu/effect/fragment"
	"github.com/gogpu/effect/include"
	"github.com/gogpu/effect/lighting"
	"github.com/gogpu/effect/profile"
)

// ---------------------------------------------------------------------------
// Benchmark effects at different complexity levels
// ---------------------------------------------------------------------------

// benchLitScript is a skinned, lit vertex program with several interpolators.
const benchLitScript = `include {
	Common.eff
}
vertexinput {
	float3 pos position
	float3 norm normal
	float2 uv texcoord
	float4 weights blendweight
	float4 indices blendindex
}
vertexoutput {
	float4 vpos viewposition
	float3 vnorm viewnormal pass
	float2 uv texcoord pass
	float fog custom pass
}
autos {
	float4x4 autoWorldView
	float4x4 autoView
}
source {
VOUT vsmain(VIN input)
{
	VOUT o;
	float4 p = skin(float4(input.pos, 1.0f), input.weights, input.indices);
	o.vpos = mul(autoWorldView, p);
	o.vnorm = normalize(mul((float3x3)autoWorldView, input.norm));
	o.uv = input.uv * 2.0f;
	o.fog = saturate(o.vpos.z / 100.0f);
	return o;
}
}
`

const benchCommonScript = `source {
float4 skin(float4 p, float4 w, float4 i)
{
	return p * (w.x + w.y + w.z + w.w);
}
}
`

const benchPixelScript = `pixeloutput {
	float4 diff diffuse
}
source {
POUT psmain(PIN input)
{
	POUT o;
	o.diff = float4(1.0f, 1.0f, 1.0f, 1.0f);
	return o;
}
}
`

type benchCase struct {
	name     string
	vertex   string
	lighting Lighting
}

var benchCases = []benchCase{
	{"simple_unlit", "simple.eff", LightingNone},
	{"lit_vertex", "lit.eff", LightingVertex},
	{"lit_pixel", "lit.eff", LightingPixel},
}

func newBenchCompiler(b *testing.B) *Compiler {
	b.Helper()
	store := include.NewMemStore()
	files := map[string]string{
		"simple.eff":              simpleScript,
		"lit.eff":                 benchLitScript,
		"Common.eff":              benchCommonScript,
		"pixel.eff":               benchPixelScript,
		"MashLightStructures.eff": lightStructuresScript,
	}
	for name, text := range files {
		if err := store.Save(name, []byte(text)); err != nil {
			b.Fatal(err)
		}
	}
	c := New(store)
	if err := c.RegenerateLighting(lighting.State{}); err != nil {
		b.Fatal(err)
	}
	return c
}

func benchRequest(vertex string, l Lighting, vs profile.Profile) Request {
	return Request{
		Vertex:   Program{FileName: vertex, Entry: "vsmain", Profile: vs},
		Pixel:    Program{FileName: "pixel.eff", Entry: "psmain", Profile: vs.PixelProfile()},
		Features: FeatureConfiguration{Lighting: l, Fog: true},
	}
}

// ---------------------------------------------------------------------------
// End-to-end: full effect build per dialect
// ---------------------------------------------------------------------------

// BenchmarkCompile benchmarks a full build, from script parsing to
// translated source, for each dialect.
func BenchmarkCompile(b *testing.B) {
	for _, vs := range []profile.Profile{profile.VS30, profile.VS40, profile.VSGLSL} {
		for _, bc := range benchCases {
			b.Run(vs.String()+"/"+bc.name, func(b *testing.B) {
				c := newBenchCompiler(b)
				req := benchRequest(bc.vertex, bc.lighting, vs)
				b.ReportAllocs()
				b.ResetTimer()

				var res *Result
				for i := 0; i < b.N; i++ {
					var err error
					res, err = c.Compile(req)
					if err != nil {
						b.Fatalf("compile failed: %v", err)
					}
				}
				runtime.KeepAlive(res)
			})
		}
	}
}

// BenchmarkBatchSession measures the same builds inside one translator
// session, as used when a whole material library is rebuilt.
func BenchmarkBatchSession(b *testing.B) {
	c := newBenchCompiler(b)
	s, err := c.BeginBatch()
	if err != nil {
		b.Fatal(err)
	}
	defer s.End()
	req := benchRequest("lit.eff", LightingPixel, profile.VSGLSL)
	b.ReportAllocs()
	b.ResetTimer()

	var res *Result
	for i := 0; i < b.N; i++ {
		res, err = s.Compile(req)
		if err != nil {
			b.Fatalf("compile failed: %v", err)
		}
	}
	runtime.KeepAlive(res)
}

// ---------------------------------------------------------------------------
// Individual phases
// ---------------------------------------------------------------------------

// BenchmarkAnalyze benchmarks script parsing and semantic analysis alone.
func BenchmarkAnalyze(b *testing.B) {
	src := []byte(benchLitScript)
	b.ReportAllocs()
	b.SetBytes(int64(len(src)))
	b.ResetTimer()

	var f *fragment.Fragment
	for i := 0; i < b.N; i++ {
		var err error
		f, err = fragment.Analyze("lit.eff", src)
		if err != nil {
			b.Fatalf("analyze failed: %v", err)
		}
	}
	runtime.KeepAlive(f)
}

// BenchmarkRegenerateLighting benchmarks rebuilding the generated lighting
// fragments for a populated light state.
func BenchmarkRegenerateLighting(b *testing.B) {
	c := newBenchCompiler(b)
	var state lighting.State
	for i, t := range lighting.Types() {
		state.Forward = append(state.Forward, lighting.Light{ID: uint64(i + 1), Type: t})
	}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := c.RegenerateLighting(state); err != nil {
			b.Fatalf("regenerate failed: %v", err)
		}
	}
}
