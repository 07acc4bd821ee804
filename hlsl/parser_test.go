// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"errors"
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string, defines ...Define) *Module {
	t.Helper()
	m, err := Parse("test.hlsl", src, defines...)
	if err != nil {
		var se SourceErrors
		if errors.As(err, &se) {
			t.Fatalf("Parse() error:\n%s", se.FormatAll(nil))
		}
		t.Fatalf("Parse() error: %v", err)
	}
	return m
}

func TestParseStruct(t *testing.T) {
	m := mustParse(t, `
struct VIN
{
	float4 pos : POSITION0;
	float2 uv0, uv1 : TEXCOORD1;
	float weights[4];
	vector<float, 3> n : NORMAL;
};`)

	s := m.Struct("VIN")
	if s == nil {
		t.Fatal("Struct(VIN) = nil")
	}
	want := []struct{ name, typ, sem string }{
		{"pos", "float4", "POSITION0"},
		{"uv0", "float2", ""},
		{"uv1", "float2", "TEXCOORD1"},
		{"weights", "float", ""},
		{"n", "float3", "NORMAL"},
	}
	if len(s.Members) != len(want) {
		t.Fatalf("len(Members) = %d, want %d", len(s.Members), len(want))
	}
	for i, w := range want {
		got := s.Members[i]
		if got.Name != w.name || got.Type != w.typ || got.Semantic != w.sem {
			t.Errorf("Members[%d] = %s %s : %s, want %s %s : %s", i, got.Type, got.Name, got.Semantic, w.typ, w.name, w.sem)
		}
	}
	if lit, ok := s.Members[3].ArraySize.(*Literal); !ok || lit.Value != "4" {
		t.Errorf("weights ArraySize = %#v, want literal 4", s.Members[3].ArraySize)
	}
	if s.Pos().Start.Line != 2 {
		t.Errorf("struct line = %d, want 2", s.Pos().Start.Line)
	}
}

func TestParseGlobals(t *testing.T) {
	m := mustParse(t, `
float4x4 autoWVP : register(c0);
static const float PI = 3.14159f, TAU = 6.28318f;
sampler2D autoSampler0;
uniform float3 tint;
cbuffer PerFrame : register(b1)
{
	float4 fogColour;
	float fogStart, fogEnd;
};`)

	globals := m.Globals()
	if len(globals) != 5 {
		t.Fatalf("len(Globals()) = %d, want 5", len(globals))
	}
	if g := globals[0]; g.Register != "register(c0)" || g.Type != "float4x4" {
		t.Errorf("globals[0] = %+v", g)
	}
	if g := globals[2]; g.Name != "TAU" || !g.Static || !g.Const || g.Init == nil {
		t.Errorf("globals[2] = %+v, want static const TAU with an initializer", g)
	}
	if g := globals[3]; g.Type != "sampler2D" {
		t.Errorf("globals[3].Type = %q, want sampler2D", g.Type)
	}
	if !globals[4].Uniform {
		t.Error("uniform modifier not recorded")
	}

	var cb *CbufferDecl
	for _, d := range m.Decls {
		if c, ok := d.(*CbufferDecl); ok {
			cb = c
		}
	}
	if cb == nil {
		t.Fatal("cbuffer not parsed")
	}
	if cb.Name != "PerFrame" || cb.Register != "register(b1)" || len(cb.Vars) != 3 {
		t.Errorf("cbuffer = %s %s with %d vars", cb.Name, cb.Register, len(cb.Vars))
	}
	for _, v := range cb.Vars {
		if !v.Uniform {
			t.Errorf("cbuffer member %s not uniform", v.Name)
		}
	}
}

func TestParseFunction(t *testing.T) {
	m := mustParse(t, `
struct VIN { float4 pos : POSITION; };
struct VOUT { float4 vpos : TEXCOORD0; };
float3 helper(float3 v);
VOUT vsmain(in VIN input, out float depth : DEPTH, inout float4 c, uniform float s = 1.0) : COLOR0
{
	VOUT output = (VOUT)0;
	depth = input.pos.z;
	return output;
}
float3 helper(float3 v) { return normalize(v); }
void nothing(void) { }`)

	f := m.Function("vsmain")
	if f == nil {
		t.Fatal("Function(vsmain) = nil")
	}
	if f.ReturnType != "VOUT" || f.Semantic != "COLOR0" {
		t.Errorf("vsmain = %s : %s", f.ReturnType, f.Semantic)
	}
	quals := []ParamQualifier{ParamIn, ParamOut, ParamInOut, ParamUniform}
	if len(f.Params) != len(quals) {
		t.Fatalf("len(Params) = %d, want %d", len(f.Params), len(quals))
	}
	for i, q := range quals {
		if f.Params[i].Qualifier != q {
			t.Errorf("Params[%d].Qualifier = %d, want %d", i, f.Params[i].Qualifier, q)
		}
	}
	if f.Params[1].Semantic != "DEPTH" || f.Params[3].Default == nil {
		t.Errorf("params = %+v %+v", f.Params[1], f.Params[3])
	}
	if len(f.Body.Statements) != 3 {
		t.Fatalf("len(Body) = %d, want 3", len(f.Body.Statements))
	}
	decl, ok := f.Body.Statements[0].(*DeclStmt)
	if !ok {
		t.Fatalf("Body[0] = %T, want *DeclStmt", f.Body.Statements[0])
	}
	if c, ok := decl.Vars[0].Init.(*CastExpr); !ok || c.Type != "VOUT" {
		t.Errorf("init = %#v, want cast to VOUT", decl.Vars[0].Init)
	}

	if h := m.Function("helper"); h == nil || h.Body == nil {
		t.Error("Function(helper) returned the prototype")
	}
	if n := m.Function("nothing"); n == nil || len(n.Params) != 0 {
		t.Error("(void) parameter list not handled")
	}
}

func TestParseStatements(t *testing.T) {
	m := mustParse(t, `
float4 main(float2 uv : TEXCOORD0) : COLOR0
{
	float4 c = float4(0.0, 0.0, 0.0, 1.0);
	for (int i = 0; i < 4; i++) { c.x += 0.25; }
	int j = 0;
	while (j < 2) j++;
	do { j--; } while (j > 0);
	if (uv.x > 0.5) c.rgb = tex2D(s, uv).rgb; else { discard; }
	c = uv.y > 0.5 ? c : float4(1, 1, 1, 1);
	float arr[2] = { 1.0, 2.0 };
	c.a = arr[1] * -uv.x;
	return c;
}`)

	body := m.Function("main").Body.Statements
	kinds := []string{"*hlsl.DeclStmt", "*hlsl.ForStmt", "*hlsl.DeclStmt", "*hlsl.WhileStmt", "*hlsl.DoWhileStmt", "*hlsl.IfStmt", "*hlsl.ExprStmt", "*hlsl.DeclStmt", "*hlsl.ExprStmt", "*hlsl.ReturnStmt"}
	if len(body) != len(kinds) {
		t.Fatalf("len(Body) = %d, want %d", len(body), len(kinds))
	}
	for i, k := range kinds {
		if got := typeName(body[i]); got != k {
			t.Errorf("Body[%d] = %s, want %s", i, got, k)
		}
	}

	ifs := body[5].(*IfStmt)
	assign := ifs.Body.(*ExprStmt).Expr.(*AssignExpr)
	member, ok := assign.Value.(*MemberExpr)
	if !ok || member.Member != "rgb" {
		t.Fatalf("if body value = %#v, want .rgb member", assign.Value)
	}
	if call, ok := member.Expr.(*CallExpr); !ok || call.Func != "tex2D" || len(call.Args) != 2 {
		t.Errorf("member receiver = %#v, want tex2D call", member.Expr)
	}
	if _, ok := ifs.Else.(*BlockStmt); !ok {
		t.Errorf("Else = %T, want *BlockStmt", ifs.Else)
	}

	tern := body[6].(*ExprStmt).Expr.(*AssignExpr).Value
	if _, ok := tern.(*TernaryExpr); !ok {
		t.Errorf("ternary = %T", tern)
	}

	arr := body[7].(*DeclStmt).Vars[0]
	if list, ok := arr.Init.(*InitListExpr); !ok || len(list.Elems) != 2 {
		t.Errorf("arr init = %#v, want two element init list", arr.Init)
	}

	mul := body[8].(*ExprStmt).Expr.(*AssignExpr).Value.(*BinaryExpr)
	if mul.Op != TokenStar {
		t.Errorf("Op = %s, want *", mul.Op)
	}
	if u, ok := mul.Right.(*UnaryExpr); !ok || u.Op != TokenMinus {
		t.Errorf("right = %#v, want unary minus", mul.Right)
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *DeclStmt:
		return "*hlsl.DeclStmt"
	case *ForStmt:
		return "*hlsl.ForStmt"
	case *WhileStmt:
		return "*hlsl.WhileStmt"
	case *DoWhileStmt:
		return "*hlsl.DoWhileStmt"
	case *IfStmt:
		return "*hlsl.IfStmt"
	case *ExprStmt:
		return "*hlsl.ExprStmt"
	case *ReturnStmt:
		return "*hlsl.ReturnStmt"
	}
	return "other"
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"a + b * c", "(a + (b * c))"},
		{"a * b + c", "((a * b) + c)"},
		{"a || b && c", "(a || (b && c))"},
		{"a == b < c", "(a == (b < c))"},
		{"(a + b) * c", "([(a + b)] * c)"},
		{"(float)a + b", "((cast float a) + b)"},
		{"a = b = c", "(a = (b = c))"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			m := mustParse(t, "void f() { "+tt.src+"; }")
			e := m.Function("f").Body.Statements[0].(*ExprStmt).Expr
			if got := dump(e); got != tt.want {
				t.Errorf("parse(%q) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}
}

func dump(e Expr) string {
	switch e := e.(type) {
	case *Ident:
		return e.Name
	case *BinaryExpr:
		return "(" + dump(e.Left) + " " + e.Op.String() + " " + dump(e.Right) + ")"
	case *AssignExpr:
		return "(" + dump(e.Target) + " " + e.Op.String() + " " + dump(e.Value) + ")"
	case *ParenExpr:
		return "[" + dump(e.Expr) + "]"
	case *CastExpr:
		return "(cast " + e.Type + " " + dump(e.Expr) + ")"
	}
	return "?"
}

func TestParseTypedefAndTemplates(t *testing.T) {
	m := mustParse(t, `
typedef float3 vec3;
typedef matrix<float, 4, 4> mat4;
vec3 up = vec3(0, 1, 0);
mat4 world;
float4 f() { return vector<float, 4>(up, 1); }`)

	globals := m.Globals()
	if globals[0].Type != "float3" {
		t.Errorf("typedef type = %q, want float3", globals[0].Type)
	}
	if call, ok := globals[0].Init.(*CallExpr); !ok || call.Func != "float3" {
		t.Errorf("typedef constructor = %#v, want float3(...)", globals[0].Init)
	}
	if globals[1].Type != "float4x4" {
		t.Errorf("matrix template = %q, want float4x4", globals[1].Type)
	}
	ret := m.Function("f").Body.Statements[0].(*ReturnStmt)
	if call, ok := ret.Value.(*CallExpr); !ok || call.Func != "float4" {
		t.Errorf("vector template constructor = %#v", ret.Value)
	}
}

func TestParseMethodCall(t *testing.T) {
	m := mustParse(t, "float4 f() { return tex.Sample(samp, uv).bgra; }")
	ret := m.Function("f").Body.Statements[0].(*ReturnStmt)
	member, ok := ret.Value.(*MemberExpr)
	if !ok || member.Member != "bgra" {
		t.Fatalf("return = %#v", ret.Value)
	}
	mc, ok := member.Expr.(*MethodCallExpr)
	if !ok || mc.Method != "Sample" || len(mc.Args) != 2 {
		t.Errorf("method call = %#v", member.Expr)
	}
}

func TestParseDefines(t *testing.T) {
	src := `
#ifdef _DEFINE_OPENGL
float4 gl;
#else
float4 dx;
#endif`
	m := mustParse(t, src, Define{Name: "_DEFINE_OPENGL", Value: "1"})
	if g := m.Globals(); len(g) != 1 || g[0].Name != "gl" {
		t.Errorf("Globals() = %+v, want gl", g)
	}
	if g := m.Globals()[0]; g.Pos().Start.Line != 3 {
		t.Errorf("line = %d, want 3", g.Pos().Start.Line)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		lines []int
		msg   string
	}{
		{
			name:  "missing semicolon",
			src:   "float4 a\nfloat4 b;",
			lines: []int{2},
			msg:   "expected ';'",
		},
		{
			name:  "unknown type",
			src:   "widget w;",
			lines: []int{1},
			msg:   "expected type, got 'widget'",
		},
		{
			name:  "recovers after bad function",
			src:   "void f() { a = ; }\nfloat ok;\nvoid g() { return; }",
			lines: []int{1},
			msg:   "unexpected token ';' in expression",
		},
		{
			name:  "collects several",
			src:   "void f() { a = ; }\nfloat ok;\nvoid g() { b = ); }",
			lines: []int{1, 3},
			msg:   "unexpected token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test.hlsl", tt.src)
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error = %q, want it to contain %q", err, tt.msg)
			}
			var se *SourceError
			if !errors.As(err, &se) {
				t.Fatalf("error = %T, want a *SourceError", err)
			}
			if se.Line() != tt.lines[0] {
				t.Errorf("first error line = %d, want %d", se.Line(), tt.lines[0])
			}
			var all SourceErrors
			if errors.As(err, &all) && len(all) != len(tt.lines) {
				t.Errorf("got %d errors, want %d: %v", len(all), len(tt.lines), err)
			}
		})
	}
}

func TestParseRecoveryKeepsGoodDecls(t *testing.T) {
	m, err := Parse("test.hlsl", "void f() { a = ; }\nfloat ok;")
	if err == nil {
		t.Fatal("Parse() expected error")
	}
	if m == nil || len(m.Globals()) != 1 || m.Globals()[0].Name != "ok" {
		t.Errorf("module after recovery = %+v", m)
	}
}
