// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package synth

import (
	"strconv"
	"strings"

	"github.com/gogpu/effect/fragment"
)

// DefaultForwardInclude is the include holding the forward rendered
// lighting function.
const DefaultForwardInclude = "MashForwardRenderedLighting_g.eff"

// Names of generated entry points, functions and autos.
const (
	VertexEntry = "_vsmain"
	PixelEntry  = "_psmain"

	ForwardLightingFunc     = "MashForwardRenderedLighting"
	ShadowCasterVertexFunc  = "MashShadowCasterVertex"
	ShadowCasterPixelFunc   = "MashShadowCasterPixel"
	ProjectionAuto          = "autoProjection"
	CameraNearFarAuto       = "autoCameraNearFar"
	vertexLightDiffuseName  = "_vertexLightDiffuse"
	vertexLightSpecularName = "_vertexLightSpecular"
	clipPositionName        = "_posH"
)

// LightingModel selects how lighting is wired into the generated code.
type LightingModel uint8

const (
	LightingNone LightingModel = iota
	LightingVertex
	LightingPixel
	LightingDeferred
)

// String returns the model name.
func (m LightingModel) String() string {
	switch m {
	case LightingNone:
		return "none"
	case LightingVertex:
		return "vertex"
	case LightingPixel:
		return "pixel"
	case LightingDeferred:
		return "deferred"
	default:
		return "LightingModel(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseLightingModel parses a model name as returned by String.
func ParseLightingModel(s string) (LightingModel, bool) {
	for m := LightingNone; m <= LightingDeferred; m++ {
		if strings.EqualFold(s, m.String()) {
			return m, true
		}
	}
	return LightingNone, false
}

// Config configures Synthesize.
type Config struct {
	Lighting LightingModel

	// ForwardInclude overrides DefaultForwardInclude.
	ForwardInclude string
}

func (c Config) forwardInclude() string {
	if c.ForwardInclude != "" {
		return c.ForwardInclude
	}
	return DefaultForwardInclude
}

// VertexElement describes one vertex stream element of the generated
// VIN struct.
type VertexElement struct {
	Usage      fragment.InputUsage
	UsageIndex int
	Type       string
	Name       string
}

// Result holds the derived stage fragments.
type Result struct {
	Vertex *fragment.Fragment
	Pixel  *fragment.Fragment

	// VertexDeclaration lists the vertex stream layout in VIN order. It
	// is nil for native programs.
	VertexDeclaration []VertexElement
}

var (
	input      = Ident("input")
	output     = Ident("output")
	userOutput = Ident("userOutput")
)

// Synthesize generates the wrapper code that connects user vertex and
// pixel functions to the fixed pipeline contract. The inputs are not
// modified. Native programs, which declare no vertex inputs, are
// returned as unmodified copies.
func Synthesize(vertex, pixel *fragment.Fragment, cfg Config) (*Result, error) {
	if vertex == nil {
		return nil, newError(ErrNoVertexSource, "", "effects must contain vertex source")
	}
	if pixel == nil {
		return nil, newError(ErrNoPixelSource, vertex.FileName, "effects must contain pixel source")
	}

	v := vertex.Clone()
	p := pixel.Clone()
	if v.IsNative() {
		return &Result{Vertex: v, Pixel: p}, nil
	}

	s := &stages{v: v, p: p, cfg: cfg}
	if err := s.vertexStage(); err != nil {
		return nil, err
	}
	s.pixelStage()
	return &Result{Vertex: v, Pixel: p, VertexDeclaration: s.decl}, nil
}

// stages carries the state shared by the vertex and pixel generators.
type stages struct {
	v, p *fragment.Fragment
	cfg  Config
	decl []VertexElement

	// lightSpecular is the vertex output carrying the vertex lit
	// specular term, empty when there is none.
	lightSpecular string
}

func (s *stages) vertexOutput(sem fragment.VertexOutput) (*fragment.Output, bool) {
	return s.v.OutputBySemantic(fragment.VertexSemantic(sem))
}

func (s *stages) pixelOutput(sem fragment.PixelOutput) (*fragment.Output, bool) {
	return s.p.OutputBySemantic(fragment.PixelSemantic(sem))
}

// vertexInputStruct builds VIN and records the vertex declaration.
func vertexInputStruct(f *fragment.Fragment) (*StructDecl, []VertexElement) {
	vin := &StructDecl{Name: "VIN"}
	var decl []VertexElement
	var counters [8]int
	for _, in := range f.VertexInputs {
		n := counters[in.Usage]
		counters[in.Usage]++
		vin.Fields = append(vin.Fields, Field{
			Type:     in.Type,
			Name:     in.Name,
			Semantic: in.Usage.HLSL() + strconv.Itoa(n),
		})
		decl = append(decl, VertexElement{Usage: in.Usage, UsageIndex: n, Type: in.Type, Name: in.Name})
	}
	return vin, decl
}

// userOutputStruct builds a struct from the outputs declared in the
// script, in declaration order.
func userOutputStruct(name string, outputs []fragment.Output) *StructDecl {
	st := &StructDecl{Name: name}
	for _, o := range outputs {
		if o.Synthesized {
			continue
		}
		st.Fields = append(st.Fields, Field{Type: o.Type, Name: o.Name})
	}
	return st
}

// interpolatorFields maps passed outputs to interpolator registers with a
// counter per register class.
func interpolatorFields(outputs []fragment.Output) []Field {
	var fields []Field
	var counters [2]int
	for _, o := range outputs {
		if !o.Pass {
			continue
		}
		class := fragment.InterpTexCoord
		if vo, ok := o.Semantic.Vertex(); ok {
			class = vo.Interpolator()
		}
		n := counters[class]
		counters[class]++
		fields = append(fields, Field{Type: o.Type, Name: o.Name, Semantic: class.String() + strconv.Itoa(n)})
	}
	return fields
}

// pixelInputStruct builds PIN. Empty structs are rejected by some
// compilers, so an unused filler field stands in.
func pixelInputStruct(fields []Field) *StructDecl {
	if len(fields) == 0 {
		fields = []Field{{Type: "float4", Name: "fill", Semantic: "TEXCOORD0"}}
	}
	return &StructDecl{Name: "PIN", Fields: fields}
}

func (s *stages) vertexStage() error {
	v := s.v
	lighting := s.cfg.Lighting

	vpos, hasVPos := s.vertexOutput(fragment.ViewPosition)
	_, hasHPos := s.vertexOutput(fragment.ClipPosition)
	if !hasVPos {
		switch {
		case lighting != LightingNone:
			return newError(ErrMissingViewPosition, v.FileName,
				"%s lighting requires a vertex output with the 'viewposition' semantic", lighting)
		case !hasHPos:
			return newError(ErrMissingClipPosition, v.FileName,
				"the vertex function must output a variable with the 'hposition' or 'viewposition' semantic")
		}
	}

	vin, decl := vertexInputStruct(v)
	s.decl = decl
	vout := userOutputStruct("VOUT", v.Outputs)

	body := []Stmt{
		&VarDecl{Type: "_PIN", Name: "output"},
		&VarDecl{Type: "VOUT", Name: "userOutput", Init: call(v.Entry, input)},
	}

	_, userLightDiffuse := s.vertexOutput(fragment.LightDiffuse)
	switch {
	case lighting == LightingVertex && !userLightDiffuse:
		body = append(body, s.vertexLighting(vpos.Name)...)
	case lighting == LightingVertex:
		if o, ok := s.vertexOutput(fragment.LightDiffuse); ok {
			o.Pass = true
		}
		if o, ok := s.vertexOutput(fragment.LightSpecular); ok {
			o.Pass = true
			s.lightSpecular = o.Name
		}
	case lighting == LightingPixel || lighting == LightingDeferred:
		vpos.Pass = true
		if o, ok := s.vertexOutput(fragment.ViewNormal); ok {
			o.Pass = true
		}
	}

	for _, o := range v.Outputs {
		if o.Pass && !o.Synthesized {
			body = append(body, assign(member(output, o.Name), member(userOutput, o.Name)))
		}
	}

	if hpos, ok := s.vertexOutput(fragment.ClipPosition); ok {
		body = append(body, assign(member(output, clipPositionName), member(userOutput, hpos.Name)))
	} else {
		v.AddAutoUnique(fragment.Float4x4, ProjectionAuto)
		// Re-fetch: the slice may have grown above.
		vpos, _ = s.vertexOutput(fragment.ViewPosition)
		body = append(body, assign(member(output, clipPositionName),
			call("mul", Ident(ProjectionAuto),
				call("float4", xyz(member(userOutput, vpos.Name)), Lit("1.0f")))))
	}
	body = append(body, &Return{X: output})

	pin := &StructDecl{Name: "_PIN", Fields: append(interpolatorFields(v.Outputs),
		Field{Type: "float4", Name: clipPositionName, Semantic: "SV_POSITION"})}

	prefix := Render(vin, vout, pin)
	v.UserSourceLineStart = strings.Count(prefix, "\n")
	v.Source = prefix + v.Source + Render(&FuncDecl{
		Result: "_PIN",
		Name:   VertexEntry,
		Params: []Param{{Type: "VIN", Name: "input"}},
		Body:   body,
	})
	v.Entry = VertexEntry
	return nil
}

// vertexLighting evaluates forward lighting per vertex and routes the
// result to the pixel stage through two lighting outputs.
func (s *stages) vertexLighting(vposName string) []Stmt {
	v := s.v
	v.AddInclude(s.cfg.forwardInclude())

	var body []Stmt
	var normal, specular Expr
	if o, ok := s.vertexOutput(fragment.ViewNormal); ok {
		normal = member(userOutput, o.Name)
		body = append(body, assign(normal, call("normalize", normal)))
	} else {
		body = append(body, &VarDecl{Type: "float3", Name: "viewSpaceNorm",
			Init: call("float3", Lit("0.0f"), Lit("0.0f"), Lit("0.0f"))})
		normal = Ident("viewSpaceNorm")
	}
	if o, ok := s.vertexOutput(fragment.Specular); ok {
		specular = member(userOutput, o.Name)
	} else {
		body = append(body, &VarDecl{Type: "float4", Name: "specular",
			Init: call("float4", Lit("1.0f"), Lit("1.0f"), Lit("1.0f"), Lit("1.0f"))})
		specular = Ident("specular")
	}

	body = append(body, &VarDecl{Type: "sLightOutput", Name: "lightingOutput",
		Init: call(ForwardLightingFunc, normal, xyz(member(userOutput, vposName)), specular)})

	v.Outputs = append(v.Outputs, fragment.Output{
		Type:        "float3",
		Name:        vertexLightDiffuseName,
		Semantic:    fragment.VertexSemantic(fragment.LightDiffuse),
		Pass:        true,
		Synthesized: true,
	})
	if o, ok := s.vertexOutput(fragment.LightSpecular); ok {
		o.Pass = true
		s.lightSpecular = o.Name
	} else {
		v.Outputs = append(v.Outputs, fragment.Output{
			Type:        "float3",
			Name:        vertexLightSpecularName,
			Semantic:    fragment.VertexSemantic(fragment.LightSpecular),
			Pass:        true,
			Synthesized: true,
		})
		s.lightSpecular = vertexLightSpecularName
	}

	lightingOutput := Ident("lightingOutput")
	return append(body,
		assign(member(output, vertexLightDiffuseName), member(lightingOutput, "diffuse")),
		assign(member(output, s.lightSpecular), member(lightingOutput, "specular")))
}

func (s *stages) pixelStage() {
	p := s.p
	lighting := s.cfg.Lighting

	pin := pixelInputStruct(interpolatorFields(s.v.Outputs))
	pout := &StructDecl{Name: "_PIXELOUT", Fields: []Field{{Type: "float4", Name: "colour", Semantic: "SV_TARGET0"}}}
	if lighting == LightingDeferred {
		pout.Fields = append(pout.Fields,
			Field{Type: "float4", Name: "normal", Semantic: "SV_TARGET1"},
			Field{Type: "float4", Name: "specular", Semantic: "SV_TARGET2"},
			Field{Type: "float4", Name: "depth", Semantic: "SV_TARGET3"})
	}
	nodes := []Node{pin, pout}
	if len(p.Outputs) > 0 {
		nodes = append(nodes, userOutputStruct("POUT", p.Outputs))
	}

	body := []Stmt{&VarDecl{Type: "_PIXELOUT", Name: "output"}}
	if len(p.Outputs) > 0 {
		body = append(body, &VarDecl{Type: "POUT", Name: "userOutput", Init: call(p.Entry, input)})
	}

	var diffuse Expr
	if o, ok := s.pixelOutput(fragment.PixelDiffuse); ok {
		diffuse = member(userOutput, o.Name)
	} else {
		body = append(body, &VarDecl{Type: "float4", Name: "_diffuse",
			Init: call("float4", Lit("1.0"), Lit("1.0"), Lit("1.0"), Lit("1.0"))})
		diffuse = Ident("_diffuse")
	}
	alpha := &Swizzle{X: diffuse, Components: "w"}

	switch lighting {
	case LightingVertex:
		ld, _ := s.vertexOutput(fragment.LightDiffuse)
		var ls Expr = call("float3", Lit("0.0"), Lit("0.0"), Lit("0.0"))
		if s.lightSpecular != "" {
			ls = member(input, s.lightSpecular)
		}
		body = append(body, assign(member(output, "colour"), call("float4",
			&Binary{Op: "+", X: &Paren{X: &Binary{Op: "*", X: member(input, ld.Name), Y: xyz(diffuse)}}, Y: ls},
			alpha)))

	case LightingPixel, LightingDeferred:
		var stmts []Stmt
		normal, specular := s.pixelNormalSpecular(&stmts)
		body = append(body, stmts...)
		vpos, _ := s.vertexOutput(fragment.ViewPosition)

		if lighting == LightingPixel {
			p.AddInclude(s.cfg.forwardInclude())
			lightingOutput := Ident("lightingOutput")
			body = append(body,
				&VarDecl{Type: "sLightOutput", Name: "lightingOutput",
					Init: call(ForwardLightingFunc, normal, xyz(member(input, vpos.Name)), specular)},
				assign(member(output, "colour"), call("float4",
					&Binary{Op: "+", X: member(lightingOutput, "specular"),
						Y: &Paren{X: &Binary{Op: "*", X: member(lightingOutput, "diffuse"), Y: xyz(diffuse)}}},
					alpha)))
			break
		}

		p.AddAutoUnique(fragment.Float2, CameraNearFarAuto)
		nearFar := Ident(CameraNearFarAuto)
		near := &Swizzle{X: nearFar, Components: "x"}
		far := &Swizzle{X: nearFar, Components: "y"}
		body = append(body,
			assign(member(output, "colour"), diffuse),
			assign(member(output, "normal"), &Binary{Op: "*", X: Lit("0.5"),
				Y: &Paren{X: &Binary{Op: "+", X: call("float4", normal, Lit("1.0")), Y: Lit("1.0")}}}),
			assign(member(output, "specular"), specular),
			assign(member(output, "depth"), &Binary{Op: "/",
				X: &Paren{X: &Binary{Op: "-", X: &Swizzle{X: member(input, vpos.Name), Components: "z"}, Y: near}},
				Y: &Paren{X: &Binary{Op: "-", X: far, Y: near}}}))

	default:
		body = append(body, assign(member(output, "colour"), diffuse))
	}
	body = append(body, &Return{X: output})

	prefix := Render(nodes...)
	p.UserSourceLineStart = strings.Count(prefix, "\n")
	p.Source = prefix + p.Source + Render(&FuncDecl{
		Result: "_PIXELOUT",
		Name:   PixelEntry,
		Params: []Param{{Type: "PIN", Name: "input"}},
		Body:   body,
	})
	p.Entry = PixelEntry
}

// pixelNormalSpecular resolves the normal and specular terms for pixel
// and deferred lighting. Pixel outputs take priority over values passed
// from the vertex stage; constants fill in when neither exists.
func (s *stages) pixelNormalSpecular(body *[]Stmt) (normal, specular Expr) {
	if o, ok := s.pixelOutput(fragment.PixelSpecular); ok {
		specular = member(userOutput, o.Name)
	} else if o, ok := s.vertexOutput(fragment.Specular); ok && o.Pass {
		specular = member(input, o.Name)
	} else {
		*body = append(*body, &VarDecl{Type: "float4", Name: "_specular",
			Init: call("float4", Lit("1.0"), Lit("1.0"), Lit("1.0"), Lit("1.0"))})
		specular = Ident("_specular")
	}

	if o, ok := s.pixelOutput(fragment.PixelViewNormal); ok {
		normal = member(userOutput, o.Name)
		*body = append(*body, assign(normal, call("normalize", normal)))
	} else if o, ok := s.vertexOutput(fragment.ViewNormal); ok && o.Pass {
		normal = member(input, o.Name)
		*body = append(*body, assign(normal, call("normalize", normal)))
	} else {
		*body = append(*body, &VarDecl{Type: "float3", Name: "_normal",
			Init: call("float3", Lit("0.0"), Lit("0.0"), Lit("0.0"))})
		normal = Ident("_normal")
	}
	return normal, specular
}
