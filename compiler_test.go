// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package effect

import (
	"errors"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/effect/dialect"
	"github.com/gogpu/effect/fragment"
	"github.com/gogpu/effect/include"
	"github.com/gogpu/effect/lighting"
	"github.com/gogpu/effect/profile"
	"github.com/gogpu/effect/script"
	"github.com/gogpu/effect/synth"
)

const simpleScript = `vertexinput {
	float3 pos position
}
vertexoutput {
	float4 vpos viewposition
}
autos {
	float4x4 autoWorldView
}
source {
VOUT vsmain(VIN input)
{
	VOUT o;
	o.vpos = mul(autoWorldView, float4(input.pos, 1.0f));
	return o;
}
}
`

const lightStructuresScript = `source {
struct sLight
{
	float4 diffuse;
	float4 specular;
	float4 position;
};
struct sLightOutput
{
	float3 diffuse;
	float3 specular;
};
}
`

const casterVertexScript = `vertexoutput {
	float4 hpos hposition
	float depth custom pass
}
source {
SVOUT MashShadowCasterVertex(float3 viewPos) { SVOUT o; return o; }
}
`

const casterPixelScript = `source {
float4 MashShadowCasterPixel(PIN input) { return input.depth; }
}
`

// withIncludes returns simpleScript with an include block.
func withIncludes(names ...string) string {
	return "include {\n\t" + strings.Join(names, "\n\t") + "\n}\n" + simpleScript
}

func newTestCompiler(t *testing.T, files map[string]string) (*Compiler, *include.MemStore) {
	t.Helper()
	store := include.NewMemStore()
	files["simple.eff"] = simpleScript
	files["pixel.eff"] = "source { }"
	for name, text := range files {
		if err := store.Save(name, []byte(text)); err != nil {
			t.Fatal(err)
		}
	}
	return New(store), store
}

func request(vs, ps profile.Profile) Request {
	return Request{
		Vertex:   Program{FileName: "simple.eff", Entry: "vsmain", Profile: vs},
		Pixel:    Program{FileName: "pixel.eff", Entry: "psmain", Profile: ps},
		Features: FeatureConfiguration{Lighting: LightingNone},
	}
}

func wantContains(t *testing.T, what, text string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(text, p) {
			t.Errorf("%s does not contain %q:\n%s", what, p, text)
		}
	}
}

func wantMissing(t *testing.T, what, text string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if strings.Contains(text, p) {
			t.Errorf("%s contains %q:\n%s", what, p, text)
		}
	}
}

func TestCompileDialects(t *testing.T) {
	tests := []struct {
		name             string
		vs, ps           profile.Profile
		vertex, pixel    []string
		notVert, notPixl []string
	}{
		{
			name:    "d3d9",
			vs:      profile.VS30,
			ps:      profile.PS30,
			vertex:  []string{"#define _DEFINE_DIRECTX\n", "_posH : POSITION;", "pos : POSITION0;"},
			pixel:   []string{"colour : COLOR0;"},
			notVert: []string{"SV_POSITION"},
			notPixl: []string{"SV_TARGET"},
		},
		{
			name:    "d3d10",
			vs:      profile.VS40,
			ps:      profile.PS40,
			vertex:  []string{"#define _DEFINE_DIRECTX\n", "_posH : SV_POSITION;", "_PIN _vsmain(VIN input)"},
			pixel:   []string{"colour : SV_TARGET0;", "_PIXELOUT _psmain(PIN input)"},
			notVert: []string{"_DEFINE_OPENGL"},
		},
		{
			name:    "opengl",
			vs:      profile.VSGLSL,
			ps:      profile.PSGLSL,
			vertex:  []string{"gl_Position", "in vec3 _inposition;", "void main()"},
			pixel:   []string{"_FragDataOut0", "void main()"},
			notVert: []string{"SV_POSITION", "_DEFINE_OPENGL"},
			notPixl: []string{"SV_TARGET"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCompiler(t, map[string]string{})
			res, err := c.Compile(request(tt.vs, tt.ps))
			if err != nil {
				t.Fatalf("Compile() error: %v", err)
			}
			wantContains(t, "vertex", res.Vertex.Source, tt.vertex...)
			wantContains(t, "pixel", res.Pixel.Source, tt.pixel...)
			wantMissing(t, "vertex", res.Vertex.Source, tt.notVert...)
			wantMissing(t, "pixel", res.Pixel.Source, tt.notPixl...)
		})
	}
}

func TestCompileOpenGLHeader(t *testing.T) {
	c, _ := newTestCompiler(t, map[string]string{})
	c.SetAPIHeader("#version 410")
	res, err := c.Compile(request(profile.VSGLSL, profile.PSGLSL))
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	want := "#version 410\n#extension GL_ARB_uniform_buffer_object : enable\n"
	for _, src := range []string{res.Vertex.Source, res.Pixel.Source} {
		if !strings.HasPrefix(src, want) {
			t.Errorf("Source starts %q, want %q", src[:min(len(src), len(want))], want)
		}
	}
}

func TestCompileResult(t *testing.T) {
	c, _ := newTestCompiler(t, map[string]string{})
	res, err := c.Compile(request(profile.VS40, profile.PS40))
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	if res.Vertex.Entry != synth.VertexEntry || res.Pixel.Entry != synth.PixelEntry {
		t.Errorf("entries = %q, %q", res.Vertex.Entry, res.Pixel.Entry)
	}
	if res.Vertex.EffectNumber != 1 || res.Pixel.EffectNumber != 2 {
		t.Errorf("effect numbers = %d, %d, want 1, 2", res.Vertex.EffectNumber, res.Pixel.EffectNumber)
	}
	if res.Vertex.Profile != profile.VS40 || res.Pixel.Profile != profile.PS40 {
		t.Errorf("profiles = %v, %v", res.Vertex.Profile, res.Pixel.Profile)
	}

	var autos []string
	for _, a := range res.Vertex.Autos {
		autos = append(autos, a.Name)
	}
	if !slices.Equal(autos, []string{"autoWorldView", synth.ProjectionAuto}) {
		t.Errorf("vertex autos = %v", autos)
	}

	if len(res.VertexDeclaration) != 1 {
		t.Fatalf("VertexDeclaration = %+v, want one element", res.VertexDeclaration)
	}
	if e := res.VertexDeclaration[0]; e.Usage != fragment.UsagePosition || e.UsageIndex != 0 || e.Name != "pos" {
		t.Errorf("VertexDeclaration[0] = %+v", e)
	}

	if !slices.Equal(res.Includes, []string{"pixel.eff", "simple.eff"}) {
		t.Errorf("Includes = %v", res.Includes)
	}
	if c.Counter().Last() != 2 {
		t.Errorf("Counter().Last() = %d, want 2", c.Counter().Last())
	}
}

func TestDependsOn(t *testing.T) {
	r := &Result{Includes: []string{"MashLightStructures.eff", "simple.eff"}}
	tests := []struct {
		name string
		want bool
	}{
		{"simple.eff", true},
		{"SIMPLE.EFF", true},
		{"mashlightstructures.eff", true},
		{"other.eff", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := r.DependsOn(tt.name); got != tt.want {
			t.Errorf("DependsOn(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCompileMacroOrder(t *testing.T) {
	c, _ := newTestCompiler(t, map[string]string{
		"common.eff": "source { }",
		"macros.eff": withIncludes("common.eff"),
	})
	c.SetMacros([]fragment.Macro{{Name: "CFG", Definition: "1"}})
	calls := 0
	c.SetIncludeCallback("common.eff", func() []fragment.Macro {
		calls++
		return []fragment.Macro{{Name: "CB", Definition: "7"}}
	})

	req := request(profile.VS40, profile.PS40)
	req.Vertex.FileName = "macros.eff"
	req.Vertex.Macros = []fragment.Macro{{Name: "PROG", Definition: "2"}}
	req.Features.Fog = true
	req.Features.Shadows[lighting.Spot].Enabled = true
	req.Features.Macros = []fragment.Macro{{Name: "REQ"}}

	res, err := c.Compile(req)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	want := "#define _DEFINE_SPOT_SHADOWS\n" +
		"#define _DEFINE_FOG\n" +
		"#define CFG 1\n" +
		"#define REQ\n" +
		"#define PROG 2\n" +
		"#define CB 7\n" +
		"#define _DEFINE_DIRECTX\n"
	if !strings.HasPrefix(res.Vertex.Source, want) {
		t.Errorf("vertex Source =\n%s\nwant prefix\n%s", res.Vertex.Source, want)
	}
	wantPixel := "#define _DEFINE_SPOT_SHADOWS\n" +
		"#define _DEFINE_FOG\n" +
		"#define CFG 1\n" +
		"#define REQ\n" +
		"#define _DEFINE_DIRECTX\n"
	if !strings.HasPrefix(res.Pixel.Source, wantPixel) {
		t.Errorf("pixel Source =\n%s\nwant prefix\n%s", res.Pixel.Source, wantPixel)
	}
	if calls != 1 {
		t.Errorf("callback called %d times, want 1", calls)
	}

	c.SetIncludeCallback("common.eff", nil)
	res, err = c.Compile(req)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	wantMissing(t, "vertex", res.Vertex.Source, "#define CB")
}

func TestCompileLightingDefines(t *testing.T) {
	tests := []struct {
		lighting Lighting
		want     string
	}{
		{LightingNone, ""},
		{LightingVertex, "_DEFINE_VERTEX_LIGHTING"},
		{LightingPixel, "_DEFINE_PIXEL_LIGHTING"},
		{LightingDeferred, "_DEFINE_DEFERRED_LIGHTING"},
		{LightingAuto, "_DEFINE_PIXEL_LIGHTING"},
	}
	for _, tt := range tests {
		t.Run(tt.lighting.String(), func(t *testing.T) {
			c, _ := newTestCompiler(t, map[string]string{"MashLightStructures.eff": lightStructuresScript})
			if err := c.RegenerateLighting(lighting.State{}); err != nil {
				t.Fatalf("RegenerateLighting() error: %v", err)
			}
			req := request(profile.VS40, profile.PS40)
			req.Features.Lighting = tt.lighting
			res, err := c.Compile(req)
			if err != nil {
				t.Fatalf("Compile() error: %v", err)
			}
			for _, src := range []string{res.Vertex.Source, res.Pixel.Source} {
				if tt.want == "" {
					wantMissing(t, "source", src, "LIGHTING\n")
					continue
				}
				wantContains(t, "source", src, "#define "+tt.want+"\n")
			}
		})
	}
}

func TestCompileVertexLighting(t *testing.T) {
	c, _ := newTestCompiler(t, map[string]string{"MashLightStructures.eff": lightStructuresScript})
	if err := c.RegenerateLighting(lighting.State{}); err != nil {
		t.Fatalf("RegenerateLighting() error: %v", err)
	}

	req := request(profile.VS40, profile.PS40)
	req.Features.Lighting = LightingVertex
	res, err := c.Compile(req)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	wantContains(t, "vertex", res.Vertex.Source,
		"struct sLightOutput",
		"sLightOutput "+synth.ForwardLightingFunc+"(",
		"output.diffuse = float3(1.0f, 1.0f, 1.0f);",
		"sLightOutput lightingOutput = "+synth.ForwardLightingFunc+"(")
	wantContains(t, "pixel", res.Pixel.Source, "_vertexLightDiffuse")
	if strings.Index(res.Vertex.Source, "struct sLightOutput") > strings.Index(res.Vertex.Source, "sLightOutput "+synth.ForwardLightingFunc) {
		t.Error("light structures are not linked ahead of the forward lighting function")
	}

	for _, name := range c.GeneratedIncludes() {
		want := name == synth.DefaultForwardInclude
		if got := res.DependsOn(name); got != want {
			t.Errorf("DependsOn(%q) = %v, want %v", name, got, want)
		}
	}
	if !res.DependsOn("MashLightStructures.eff") {
		t.Error("DependsOn(MashLightStructures.eff) = false")
	}
}

func TestRegenerateLightingReceivers(t *testing.T) {
	c, store := newTestCompiler(t, map[string]string{})
	state := lighting.State{Forward: []lighting.Light{{ID: 1, Type: lighting.Directional, ShadowsEnabled: true}}}

	if err := c.RegenerateLighting(state); !errors.Is(err, lighting.ErrNoShadowReceiver) {
		t.Errorf("RegenerateLighting() error = %v, want ErrNoShadowReceiver", err)
	}

	c.SetAlternateInclude(DirectionalShadowReceiver, "MyReceiver.eff")
	if err := c.RegenerateLighting(state); err != nil {
		t.Fatalf("RegenerateLighting() error: %v", err)
	}
	data, err := store.Load(synth.DefaultForwardInclude)
	if err != nil {
		t.Fatalf("forward fragment not written: %v", err)
	}
	wantContains(t, "forward fragment", string(data), "MyReceiver.eff", "MashDirectionalLighting.eff")

	c.SetAlternateInclude(ForwardRenderedLighting, "Forward.eff")
	if err := c.RegenerateLighting(state); err != nil {
		t.Fatalf("RegenerateLighting() error: %v", err)
	}
	if _, err := store.Load("Forward.eff"); err != nil {
		t.Errorf("renamed forward fragment not written: %v", err)
	}
	if !slices.Contains(c.GeneratedIncludes(), "Forward.eff") {
		t.Errorf("GeneratedIncludes() = %v, want Forward.eff", c.GeneratedIncludes())
	}
}

func TestCompileDebugArtifacts(t *testing.T) {
	tests := []struct {
		name         string
		vs, ps       profile.Profile
		intermediate []string
		compiled     []string
	}{
		{
			name:         "d3d10",
			vs:           profile.VS40,
			ps:           profile.PS40,
			intermediate: []string{"pixel_dx_intermediate_2.eff", "pixel_dx_intermediate_4.eff", "simple_dx_intermediate_1.eff", "simple_dx_intermediate_3.eff"},
			compiled:     []string{"pixel_ps_4_0_2.hlsl", "pixel_ps_4_0_4.hlsl", "simple_vs_4_0_1.hlsl", "simple_vs_4_0_3.hlsl"},
		},
		{
			name:         "opengl",
			vs:           profile.VSGLSL,
			ps:           profile.PSGLSL,
			intermediate: []string{"pixel_ogl_intermediate_2.eff", "pixel_ogl_intermediate_4.eff", "simple_ogl_intermediate_1.eff", "simple_ogl_intermediate_3.eff"},
			compiled:     []string{"pixel_glslp_2.glsl", "pixel_glslp_4.glsl", "simple_glslv_1.glsl", "simple_glslv_3.glsl"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCompiler(t, map[string]string{})
			inter, comp := include.NewMemStore(), include.NewMemStore()
			c.SetDebugStores(inter, comp)

			var res *Result
			for range 2 {
				var err error
				if res, err = c.Compile(request(tt.vs, tt.ps)); err != nil {
					t.Fatalf("Compile() error: %v", err)
				}
			}
			if got := inter.Names(); !slices.Equal(got, tt.intermediate) {
				t.Errorf("intermediate artifacts = %v, want %v", got, tt.intermediate)
			}
			if got := comp.Names(); !slices.Equal(got, tt.compiled) {
				t.Errorf("compiled artifacts = %v, want %v", got, tt.compiled)
			}

			if want := tt.compiled[3]; res.Vertex.DebugName != want {
				t.Errorf("Vertex.DebugName = %q, want %q", res.Vertex.DebugName, want)
			}
			data, _ := comp.Load(res.Vertex.DebugName)
			if string(data) != res.Vertex.Source {
				t.Error("compiled artifact differs from the returned source")
			}
			data, _ = inter.Load(tt.intermediate[3])
			if !strings.HasPrefix(string(data), "#define _DEFINE_") || !strings.Contains(string(data), "VOUT vsmain(VIN input)") {
				t.Errorf("intermediate artifact =\n%s", data)
			}
		})
	}
}

func TestCompileIntermediateOnly(t *testing.T) {
	c, _ := newTestCompiler(t, map[string]string{})
	inter := include.NewMemStore()
	c.SetDebugStores(inter, nil)
	res, err := c.Compile(request(profile.VS40, profile.PS40))
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if res.Vertex.DebugName != "simple_dx_intermediate_1.eff" {
		t.Errorf("Vertex.DebugName = %q, want %q", res.Vertex.DebugName, "simple_dx_intermediate_1.eff")
	}
}

func TestCompileErrors(t *testing.T) {
	files := map[string]string{
		"empty.eff":  "header {\n}\n",
		"bad.eff":    "vertexoutput {\n\tfloat4 x nosuchsemantic\n}\nsource { }\n",
		"loop.eff":   withIncludes("loop2.eff"),
		"loop2.eff":  "include {\n\tloop.eff\n}\nsource { }\n",
		"broken.eff": withIncludes("missing_include.eff"),
		"noview.eff": "vertexinput {\n\tfloat3 p position\n}\nvertexoutput {\n\tfloat4 h hposition\n}\nsource {\nVOUT vsmain(VIN input) { VOUT o; return o; }\n}\n",
	}

	tests := []struct {
		name   string
		modify func(*Request)
		check  func(t *testing.T, err error)
	}{
		{
			name:   "no vertex program",
			modify: func(r *Request) { r.Vertex.FileName = "" },
			check:  wantIs(ErrNoVertexProgram),
		},
		{
			name:   "no pixel program",
			modify: func(r *Request) { r.Pixel.FileName = "" },
			check:  wantIs(ErrNoPixelProgram),
		},
		{
			name:   "mixed apis",
			modify: func(r *Request) { r.Pixel.Profile = profile.PS30 },
			check:  wantText("does not target"),
		},
		{
			name:   "unknown profile",
			modify: func(r *Request) { r.Vertex.Profile = profile.Unknown },
			check:  wantText("unsupported vertex profile"),
		},
		{
			name:   "missing vertex file",
			modify: func(r *Request) { r.Vertex.FileName = "missing.eff" },
			check:  wantIs(include.ErrNotFound),
		},
		{
			name:   "missing pixel file",
			modify: func(r *Request) { r.Pixel.FileName = "missing.eff" },
			check:  wantText("failed to read shader file 'missing.eff'"),
		},
		{
			name:   "no vertex source",
			modify: func(r *Request) { r.Vertex.FileName = "empty.eff" },
			check:  wantIs(ErrNoVertexSource),
		},
		{
			name:   "analyze failure",
			modify: func(r *Request) { r.Vertex.FileName = "bad.eff" },
			check: func(t *testing.T, err error) {
				var se *script.Error
				if !errors.As(err, &se) || se.Kind != script.ErrUnknownSemantic {
					t.Errorf("Compile() error = %v, want an unknown semantic error", err)
				}
			},
		},
		{
			name: "missing view position",
			modify: func(r *Request) {
				r.Vertex.FileName = "noview.eff"
				r.Features.Lighting = LightingPixel
			},
			check: func(t *testing.T, err error) {
				var se *synth.Error
				if !errors.As(err, &se) || se.Kind != synth.ErrMissingViewPosition {
					t.Errorf("Compile() error = %v, want *synth.Error MissingViewPosition", err)
				}
			},
		},
		{
			name:   "include cycle",
			modify: func(r *Request) { r.Vertex.FileName = "loop.eff" },
			check: func(t *testing.T, err error) {
				var ce *include.CycleError
				if !errors.As(err, &ce) {
					t.Errorf("Compile() error = %v, want *include.CycleError", err)
				}
			},
		},
		{
			name:   "missing include",
			modify: func(r *Request) { r.Vertex.FileName = "broken.eff" },
			check:  wantIs(include.ErrNotFound),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCompiler(t, maps.Clone(files))
			req := request(profile.VS40, profile.PS40)
			tt.modify(&req)
			res, err := c.Compile(req)
			if err == nil {
				t.Fatal("Compile() succeeded, want error")
			}
			if res != nil {
				t.Errorf("Compile() returned a result with error %v", err)
			}
			tt.check(t, err)
		})
	}
}

func wantIs(target error) func(*testing.T, error) {
	return func(t *testing.T, err error) {
		t.Helper()
		if !errors.Is(err, target) {
			t.Errorf("Compile() error = %v, want %v", err, target)
		}
	}
}

func wantText(text string) func(*testing.T, error) {
	return func(t *testing.T, err error) {
		t.Helper()
		if !strings.Contains(err.Error(), text) {
			t.Errorf("Compile() error = %q, want it to contain %q", err, text)
		}
	}
}

func failingTranslator() dialect.Translator {
	return dialect.TranslatorFunc(func(vs, ps dialect.Unit) (string, string, error) {
		return "", "", &dialect.StageError{Stage: profile.Pixel, Err: errors.New("unsupported construct")}
	})
}

func TestCompileTranslationError(t *testing.T) {
	c, _ := newTestCompiler(t, map[string]string{})
	inter, comp := include.NewMemStore(), include.NewMemStore()
	c.SetDebugStores(inter, comp)
	c.SetTranslator(failingTranslator)

	res, err := c.Compile(request(profile.VSGLSL, profile.PSGLSL))
	if res != nil {
		t.Error("Compile() returned a result for a failed translation")
	}
	var te *dialect.TranslationError
	if !errors.As(err, &te) {
		t.Fatalf("Compile() error = %v, want *dialect.TranslationError", err)
	}
	if te.Fragment != "pixel.eff" {
		t.Errorf("TranslationError.Fragment = %q, want %q", te.Fragment, "pixel.eff")
	}
	if !strings.HasPrefix(err.Error(), "translation error: ") {
		t.Errorf("Compile() error = %q", err)
	}

	want := []string{"pixel_ogl_intermediate_2.eff", "simple_ogl_intermediate_1.eff"}
	if got := inter.Names(); !slices.Equal(got, want) {
		t.Errorf("intermediate artifacts = %v, want %v", got, want)
	}
	if got := comp.Names(); len(got) != 0 {
		t.Errorf("compiled artifacts = %v, want none", got)
	}
}

func TestCompileValidate(t *testing.T) {
	c, _ := newTestCompiler(t, map[string]string{
		"typo.eff": strings.Replace(simpleScript, "return o;", "return o", 1),
	})
	c.SetValidate(true)

	req := request(profile.VS40, profile.PS40)
	req.Vertex.FileName = "typo.eff"
	_, err := c.Compile(req)
	var te *dialect.TranslationError
	if !errors.As(err, &te) {
		t.Fatalf("Compile() error = %v, want *dialect.TranslationError", err)
	}
	if te.Fragment != "typo.eff" || te.EffectLine == 0 {
		t.Errorf("TranslationError = %+v, want typo.eff with an effect line", te)
	}
}

func TestBatchSession(t *testing.T) {
	c, _ := newTestCompiler(t, map[string]string{})
	created := 0
	c.SetTranslator(func() dialect.Translator {
		created++
		return dialect.TranslatorFunc(func(vs, ps dialect.Unit) (string, string, error) {
			return "void main() {}\n", "void main() {}\n", nil
		})
	})

	s, err := c.BeginBatch()
	if err != nil {
		t.Fatalf("BeginBatch() error: %v", err)
	}
	for range 3 {
		if _, err := s.Compile(request(profile.VSGLSL, profile.PSGLSL)); err != nil {
			t.Fatalf("Session.Compile() error: %v", err)
		}
	}
	if _, err := s.Compile(request(profile.VS40, profile.PS40)); err != nil {
		t.Fatalf("Session.Compile() error: %v", err)
	}
	if got := s.Translations(); got != 3 {
		t.Errorf("Translations() = %d, want 3", got)
	}
	if created != 1 {
		t.Errorf("translator created %d times, want 1", created)
	}

	s.End()
	s.End()
	if _, err := s.Compile(request(profile.VSGLSL, profile.PSGLSL)); !errors.Is(err, dialect.ErrSessionClosed) {
		t.Errorf("Session.Compile() after End error = %v, want ErrSessionClosed", err)
	}
	if c.Counter().Last() != 8 {
		t.Errorf("Counter().Last() = %d, want 8", c.Counter().Last())
	}
}

func TestSetTranslator(t *testing.T) {
	c := New(nil)
	if err := c.UseTranslator("glsl"); err != nil {
		t.Errorf("UseTranslator(glsl) error: %v", err)
	}
	if err := c.UseTranslator("no-such-translator"); err == nil {
		t.Error("UseTranslator() accepted an unknown name")
	}
	c.SetTranslator(func() dialect.Translator { return nil })
	if _, err := c.BeginBatch(); err == nil {
		t.Error("BeginBatch() succeeded with a nil translator")
	}
}

func TestSharedCounter(t *testing.T) {
	counter := NewCounter(10)
	a, _ := newTestCompiler(t, map[string]string{})
	b, _ := newTestCompiler(t, map[string]string{})
	a.SetCounter(counter)
	b.SetCounter(counter)

	ra, err := a.Compile(request(profile.VS40, profile.PS40))
	if err != nil {
		t.Fatal(err)
	}
	rb, err := b.Compile(request(profile.VS40, profile.PS40))
	if err != nil {
		t.Fatal(err)
	}
	got := []int{ra.Vertex.EffectNumber, ra.Pixel.EffectNumber, rb.Vertex.EffectNumber, rb.Pixel.EffectNumber}
	if !slices.Equal(got, []int{11, 12, 13, 14}) {
		t.Errorf("effect numbers = %v, want [11 12 13 14]", got)
	}
}

func TestLightShadingSplice(t *testing.T) {
	files := map[string]string{
		"lit.eff":                     withIncludes("MashDirectionalLighting.eff"),
		"MashDirectionalLighting.eff": "source {\nfloat directionalTerm;\n}\n",
		"MyShading.eff":               "source {\nfloat myShade;\n}\n",
		"Other.eff":                   "source {\nfloat otherShade;\n}\n",
	}
	req := request(profile.VS40, profile.PS40)
	req.Vertex.FileName = "lit.eff"

	c, _ := newTestCompiler(t, maps.Clone(files))
	if _, err := c.Compile(req); !errors.Is(err, include.ErrNotFound) {
		t.Errorf("Compile() without the default shading error = %v, want ErrNotFound", err)
	}

	c.SetAlternateInclude(LightShading, "MyShading.eff")
	if got := c.Include(LightShading); got != "MyShading.eff" {
		t.Errorf("Include(LightShading) = %q, want %q", got, "MyShading.eff")
	}
	res, err := c.Compile(req)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	src := res.Vertex.Source
	if i, j := strings.Index(src, "float myShade;"), strings.Index(src, "float directionalTerm;"); i < 0 || i > j {
		t.Errorf("light shading not spliced ahead of the lighting include:\n%s", src)
	}
	if !res.DependsOn("MyShading.eff") {
		t.Error("DependsOn(MyShading.eff) = false")
	}

	req.Features.OverrideLightShading = "Other.eff"
	res, err = c.Compile(req)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if !res.DependsOn("Other.eff") || res.DependsOn("MyShading.eff") {
		t.Errorf("Includes = %v, want Other.eff in place of MyShading.eff", res.Includes)
	}
}

func TestCompileShadowEffect(t *testing.T) {
	c, _ := newTestCompiler(t, map[string]string{
		"casterv.eff": casterVertexScript,
		"casterp.eff": casterPixelScript,
	})
	c.SetAlternateInclude(SpotShadowCasterVertex, "casterv.eff")
	c.SetAlternateInclude(SpotShadowCasterPixel, "casterp.eff")

	req := Request{
		Vertex:   Program{FileName: "simple.eff", Entry: "vsmain", Profile: profile.VS40},
		Pixel:    Program{Profile: profile.PS40},
		Features: FeatureConfiguration{ShadowEffect: true, ShadowEffectType: lighting.Spot},
	}
	res, err := c.Compile(req)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	wantContains(t, "vertex", res.Vertex.Source,
		"SVOUT shadowOutput = "+synth.ShadowCasterVertexFunc+"(userOutput.vpos.xyz);")
	wantContains(t, "pixel", res.Pixel.Source,
		"output.color = "+synth.ShadowCasterPixelFunc+"(input);")
	wantMissing(t, "vertex", res.Vertex.Source, "LIGHTING")
	if !res.DependsOn("casterv.eff") || !res.DependsOn("casterp.eff") {
		t.Errorf("Includes = %v, want the caster programs", res.Includes)
	}

	req.Features.ShadowEffectType = lighting.Point
	if _, err := c.Compile(req); err == nil || !strings.Contains(err.Error(), "no shadow caster program for point lights") {
		t.Errorf("Compile() error = %v, want a missing caster error", err)
	}

	req.Features.Shadows[lighting.Point] = ShadowCaster{Vertex: "casterv.eff", Pixel: "casterp.eff"}
	if _, err := c.Compile(req); err != nil {
		t.Errorf("Compile() with per-request casters error: %v", err)
	}
}
