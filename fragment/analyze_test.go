// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package fragment

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/effect/script"
)

const vertexScript = `// simple vertex program
vertexinput {
	float3 pos position
	float2 uv0 texcoord
	float2 uv1 TEXCOORD
}

vertexoutput {
	float4 vpos viewposition
	float3 vnorm viewnormal pass
	float2 uv texcoord pass
}

autos {
	float4x4 autoWorldView
	sLight autoLight 4
}

include {
	MashLightStructures.eff
	/* shared helpers */ common.eff
}

header {
#define SCALE 2.0
}

source {
VOUT main(VIN input) {
	VOUT o;
	return o;
}
}
`

func TestAnalyzeVertexScript(t *testing.T) {
	f, err := Analyze("simple.eff", []byte(vertexScript))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if f.FileName != "simple.eff" {
		t.Errorf("FileName = %q, want %q", f.FileName, "simple.eff")
	}
	if f.OutputStage != OutputVertex {
		t.Errorf("OutputStage = %v, want vertex", f.OutputStage)
	}

	wantInputs := []VertexInput{
		{"float3", "pos", UsagePosition},
		{"float2", "uv0", UsageTexCoord},
		{"float2", "uv1", UsageTexCoord},
	}
	if len(f.VertexInputs) != len(wantInputs) {
		t.Fatalf("len(VertexInputs) = %d, want %d", len(f.VertexInputs), len(wantInputs))
	}
	for i, want := range wantInputs {
		if f.VertexInputs[i] != want {
			t.Errorf("VertexInputs[%d] = %+v, want %+v", i, f.VertexInputs[i], want)
		}
	}

	wantOutputs := []Output{
		{Type: "float4", Name: "vpos", Semantic: VertexSemantic(ViewPosition)},
		{Type: "float3", Name: "vnorm", Semantic: VertexSemantic(ViewNormal), Pass: true},
		{Type: "float2", Name: "uv", Semantic: VertexSemantic(TexCoord), Pass: true},
	}
	if len(f.Outputs) != len(wantOutputs) {
		t.Fatalf("len(Outputs) = %d, want %d", len(f.Outputs), len(wantOutputs))
	}
	for i, want := range wantOutputs {
		if f.Outputs[i] != want {
			t.Errorf("Outputs[%d] = %+v, want %+v", i, f.Outputs[i], want)
		}
	}

	wantAutos := []Auto{
		{Type: "float4x4", Name: "autoWorldView"},
		{Type: "sLight", Name: "autoLight", ArraySize: 4},
	}
	if len(f.Autos) != len(wantAutos) {
		t.Fatalf("len(Autos) = %d, want %d", len(f.Autos), len(wantAutos))
	}
	for i, want := range wantAutos {
		if f.Autos[i] != want {
			t.Errorf("Autos[%d] = %+v, want %+v", i, f.Autos[i], want)
		}
	}

	wantIncludes := []string{"MashLightStructures.eff", "common.eff"}
	if strings.Join(f.Includes, ",") != strings.Join(wantIncludes, ",") {
		t.Errorf("Includes = %v, want %v", f.Includes, wantIncludes)
	}

	if f.Header != "\n#define SCALE 2.0\n" {
		t.Errorf("Header = %q", f.Header)
	}
	if !strings.HasPrefix(f.Source, "\nVOUT main(VIN input) {") {
		t.Errorf("Source = %q", f.Source)
	}
	if !strings.HasSuffix(f.Source, "return o;\n}\n") {
		t.Errorf("Source = %q", f.Source)
	}

	// The source block opens on line 28.
	if f.SourceLine != 27 {
		t.Errorf("SourceLine = %d, want 27", f.SourceLine)
	}
	if f.IsNative() {
		t.Error("IsNative() = true, want false")
	}
}

func TestAnalyzePixelScript(t *testing.T) {
	src := `pixeloutput {
	float4 colour diffuse
	float4 spec SPECULAR
}
source { POUT main(PIN input) { POUT o; return o; } }`

	f, err := Analyze("p.eff", []byte(src))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if f.OutputStage != OutputPixel {
		t.Fatalf("OutputStage = %v, want pixel", f.OutputStage)
	}
	if len(f.Outputs) != 2 {
		t.Fatalf("len(Outputs) = %d, want 2", len(f.Outputs))
	}
	if !f.Outputs[0].Semantic.IsPixel(PixelDiffuse) {
		t.Errorf("Outputs[0].Semantic = %v, want pixel:diffuse", f.Outputs[0].Semantic)
	}
	if !f.Outputs[1].Semantic.IsPixel(PixelSpecular) {
		t.Errorf("Outputs[1].Semantic = %v, want pixel:specular", f.Outputs[1].Semantic)
	}
	if _, ok := f.Outputs[1].Semantic.Vertex(); ok {
		t.Error("pixel semantic read back as a vertex semantic")
	}
	if !f.IsNative() {
		t.Error("IsNative() = false, want true for a fragment without vertex inputs")
	}
}

func TestAnalyzeCaseInsensitiveKeywords(t *testing.T) {
	src := "AUTOS { float x }\nSource { void f() {} }"
	f, err := Analyze("k.eff", []byte(src))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if len(f.Autos) != 1 || f.Autos[0].Name != "x" {
		t.Errorf("Autos = %+v", f.Autos)
	}
	if f.Source != " void f() {} " {
		t.Errorf("Source = %q", f.Source)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    script.ErrorKind
		message string
	}{
		{"empty", "", script.ErrEmpty, "empty"},
		{"undefined element", "technique { }", script.ErrUndefinedElement, "Undefined element 'technique' in effect file."},
		{"unbalanced", "source { void f() {", script.ErrBraceMismatch, "unmatched"},
		{"stray close", "source } { }", script.ErrBraceMismatch, "unexpected '}'"},
		{"unknown input usage", "vertexinput { float3 p location }", script.ErrUnknownSemantic, "location"},
		{"unknown output semantic", "vertexoutput { float4 p worldpos }", script.ErrUnknownSemantic, "worldpos"},
		{"vertex semantic in pixel block", "pixeloutput { float4 p viewposition }", script.ErrUnknownSemantic, "viewposition"},
		{"short output", "vertexoutput { float4 p }", script.ErrSyntax, "Expected"},
		{"uppercase pass", "vertexoutput { float4 p viewposition PASS }", script.ErrSyntax, "'PASS'"},
		{"duplicate role semantic", "vertexoutput {\nfloat4 a viewposition\nfloat4 b viewposition\n}", script.ErrDuplicateSemantic, "'a'"},
		{"auto without name", "autos {\nfloat4x4\n}", script.ErrSyntax, "no name"},
		{"auto bad array size", "autos {\nsLight autoLight x4\n}", script.ErrSyntax, "Invalid value after auto 'autoLight'."},
		{"include without extension", "include { common }", script.ErrSyntax, "'common' doesn't appear to have an extension"},
		{"include with empty extension", "include { common. }", script.ErrSyntax, "'common' doesn't appear to have an extension"},
		{"both output blocks", "vertexoutput { }\npixeloutput { }", script.ErrSyntax, "both"},
		{"negative array size", "autos {\nfloat4 x -3\n}", script.ErrSyntax, "Invalid value after auto 'x'."},
		{"signed array size", "autos {\nfloat4 x +3\n}", script.ErrSyntax, "Invalid value after auto 'x'."},
		{"alphanumeric array size", "autos {\nfloat4 x 3a\n}", script.ErrSyntax, "Invalid value after auto 'x'."},
		{"two array sizes", "autos {\nfloat4 x 3 4\n}", script.ErrSyntax, "Invalid value after auto 'x'."},
		{"punctuation in auto type", "autos {\nfloat4; x\n}", script.ErrSyntax, "unexpected ';'"},
		{"punctuation in vertex input", "vertexinput {\nfloat3 pos, position\n}", script.ErrSyntax, "unexpected ','"},
		{"punctuation in output", "vertexoutput {\nfloat4 p : viewposition\n}", script.ErrSyntax, "unexpected ':'"},
		{"duplicate source", "source { }\nsource { }", script.ErrDuplicateBlock, "'source' block declared twice"},
		{"duplicate autos", "autos { float4 a }\nAUTOS { float4 b }", script.ErrDuplicateBlock, "'AUTOS' block declared twice"},
		{"duplicate output", "vertexoutput { }\nvertexoutput { }", script.ErrDuplicateBlock, "'vertexoutput' block declared twice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Analyze("bad.eff", []byte(tt.input))
			if err == nil {
				t.Fatal("Analyze() expected error")
			}
			var se *script.Error
			if !errors.As(err, &se) {
				t.Fatalf("Analyze() error type = %T, want *script.Error", err)
			}
			if se.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", se.Kind, tt.kind)
			}
			if se.File != "bad.eff" {
				t.Errorf("File = %q, want %q", se.File, "bad.eff")
			}
			if !strings.Contains(se.Message, tt.message) {
				t.Errorf("Message = %q, want it to contain %q", se.Message, tt.message)
			}
		})
	}
}

const commentedScript = `vertexinput {
	float3 pos /* object
	space */ position
	/* float2 uv
	texcoord */
	float2 uv texcoord
}
vertexoutput {
	float4 vpos viewposition /* clip
	space */
	float2 uv/**/texcoord pass
}
autos {
	/* autoView
	   autoProj */
	float4x4 autoWorldView // world
	sLight autoLight /* count */ 4
}
`

func TestAnalyzeMultiLineComments(t *testing.T) {
	f, err := Analyze("commented.eff", []byte(commentedScript))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	wantInputs := []VertexInput{
		{Type: "float3", Name: "pos", Usage: UsagePosition},
		{Type: "float2", Name: "uv", Usage: UsageTexCoord},
	}
	if len(f.VertexInputs) != len(wantInputs) {
		t.Fatalf("len(VertexInputs) = %d, want %d", len(f.VertexInputs), len(wantInputs))
	}
	for i, want := range wantInputs {
		if f.VertexInputs[i] != want {
			t.Errorf("VertexInputs[%d] = %+v, want %+v", i, f.VertexInputs[i], want)
		}
	}

	if len(f.Outputs) != 2 {
		t.Fatalf("len(Outputs) = %d, want 2", len(f.Outputs))
	}
	if o := f.Outputs[1]; o.Name != "uv" || !o.Pass {
		t.Errorf("Outputs[1] = %+v, want uv with pass", o)
	}

	wantAutos := []Auto{
		{Type: "float4x4", Name: "autoWorldView"},
		{Type: "sLight", Name: "autoLight", ArraySize: 4},
	}
	if len(f.Autos) != len(wantAutos) {
		t.Fatalf("len(Autos) = %d, want %d", len(f.Autos), len(wantAutos))
	}
	for i, want := range wantAutos {
		if f.Autos[i] != want {
			t.Errorf("Autos[%d] = %+v, want %+v", i, f.Autos[i], want)
		}
	}
}

func TestAnalyzeRepeatableSemantics(t *testing.T) {
	src := "vertexoutput {\nfloat2 a texcoord pass\nfloat2 b texcoord pass\nfloat4 c colour pass\nfloat4 d colour\n}"
	f, err := Analyze("r.eff", []byte(src))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if len(f.Outputs) != 4 {
		t.Errorf("len(Outputs) = %d, want 4", len(f.Outputs))
	}
	if got := len(f.Passed()); got != 3 {
		t.Errorf("len(Passed()) = %d, want 3", got)
	}
}

func TestAnalyzeErrorLocation(t *testing.T) {
	src := "autos {\n\tfloat4 a\n}\nshader { }"
	_, err := Analyze("loc.eff", []byte(src))
	var se *script.Error
	if !errors.As(err, &se) {
		t.Fatalf("Analyze() error = %v, want *script.Error", err)
	}
	if se.Line != 4 || se.Column != 1 {
		t.Errorf("location = %d:%d, want 4:1", se.Line, se.Column)
	}
	if !strings.Contains(se.FormatWithContext(), "shader { }") {
		t.Errorf("FormatWithContext() = %q", se.FormatWithContext())
	}
}

func TestFragmentCloneIsDeep(t *testing.T) {
	f, err := Analyze("simple.eff", []byte(vertexScript))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	c := f.Clone()
	c.Outputs[0].Pass = true
	c.Autos = append(c.Autos, Auto{Type: "float", Name: "extra"})
	c.Includes[0] = "changed.eff"

	if f.Outputs[0].Pass {
		t.Error("Clone() shares Outputs with the original")
	}
	if len(f.Autos) != 2 {
		t.Errorf("len(original Autos) = %d, want 2", len(f.Autos))
	}
	if f.Includes[0] != "MashLightStructures.eff" {
		t.Error("Clone() shares Includes with the original")
	}
}

func TestAddAutoUnique(t *testing.T) {
	f := &Fragment{Autos: []Auto{{Type: "float4x4", Name: "autoProjection"}}}
	if f.AddAutoUnique(Float4x4, "autoProjection") {
		t.Error("AddAutoUnique() added a duplicate")
	}
	if !f.AddAutoUnique(Float2, "autoCameraNearFar") {
		t.Error("AddAutoUnique() refused a new auto")
	}
	a, ok := f.Auto("autoCameraNearFar")
	if !ok || a.Type != "float2" {
		t.Errorf("Auto() = %+v, %v", a, ok)
	}
	if got := a.Decl(); got != "float2 autoCameraNearFar;" {
		t.Errorf("Decl() = %q", got)
	}
	if got := (Auto{Type: "sLight", Name: "autoLight", ArraySize: 3}).Decl(); got != "sLight autoLight[3];" {
		t.Errorf("Decl() = %q", got)
	}
}
