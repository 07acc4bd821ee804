// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package synth

import (
	"slices"
	"strings"

	"github.com/gogpu/effect/fragment"
	"github.com/gogpu/effect/profile"
)

// SynthesizeShadowCaster generates a shadow caster effect. The vertex
// wrapper runs the user vertex function and hands its view position to
// MashShadowCasterVertex from casterVS; the pixel wrapper returns
// MashShadowCasterPixel from casterPS. The user pixel function is never
// called, so pixel may be nil.
func SynthesizeShadowCaster(vertex, pixel, casterVS, casterPS *fragment.Fragment) (*Result, error) {
	if vertex == nil {
		return nil, newError(ErrNoVertexSource, "", "effects must contain vertex source")
	}

	v := vertex.Clone()
	var p *fragment.Fragment
	if pixel != nil {
		p = pixel.Clone()
	} else {
		p = &fragment.Fragment{FileName: vertex.FileName, ProgramType: profile.Pixel}
	}
	if v.IsNative() {
		return &Result{Vertex: v, Pixel: p}, nil
	}
	if casterVS == nil || casterPS == nil {
		return nil, newError(ErrMissingCasterClipPosition, v.FileName,
			"failed to create shadow casters for effect '%s': no shadow caster program", v.FileName)
	}

	vpos, ok := v.OutputBySemantic(fragment.VertexSemantic(fragment.ViewPosition))
	if !ok {
		return nil, newError(ErrMissingViewPosition, v.FileName,
			"failed to create shadow casters for effect '%s': the vertex function must output a variable with the 'viewposition' semantic", v.FileName)
	}
	hpos, ok := casterVS.OutputBySemantic(fragment.VertexSemantic(fragment.ClipPosition))
	if !ok {
		return nil, newError(ErrMissingCasterClipPosition, v.FileName,
			"failed to create shadow casters for effect '%s': the shadow caster function must output a variable with the 'hposition' semantic", v.FileName)
	}

	prependCaster(v, casterVS)
	prependCaster(p, casterPS)
	p.Outputs = append(slices.Clone(casterPS.Outputs), p.Outputs...)

	vin, decl := vertexInputStruct(v)
	vout := userOutputStruct("VOUT", v.Outputs)
	svout := userOutputStruct("SVOUT", casterVS.Outputs)
	passed := interpolatorFields(casterVS.Outputs)
	pin := &StructDecl{Name: "_PIN", Fields: append(slices.Clone(passed),
		Field{Type: "float4", Name: clipPositionName, Semantic: "SV_POSITION"})}

	shadowOutput := Ident("shadowOutput")
	body := []Stmt{
		&VarDecl{Type: "_PIN", Name: "output"},
		&VarDecl{Type: "VOUT", Name: "userOutput", Init: call(v.Entry, input)},
		&VarDecl{Type: "SVOUT", Name: "shadowOutput",
			Init: call(ShadowCasterVertexFunc, xyz(member(userOutput, vpos.Name)))},
	}
	for _, o := range casterVS.Outputs {
		if o.Pass {
			body = append(body, assign(member(output, o.Name), member(shadowOutput, o.Name)))
		}
	}
	body = append(body,
		assign(member(output, clipPositionName), member(shadowOutput, hpos.Name)),
		&Return{X: output})

	userSource := v.Source
	prefix := Render(vin, vout, svout, pin) + casterVS.Source
	v.UserSourceLineStart = strings.Count(prefix, "\n")
	v.Source = prefix + userSource + Render(&FuncDecl{
		Result: "_PIN",
		Name:   VertexEntry,
		Params: []Param{{Type: "VIN", Name: "input"}},
		Body:   body,
	})
	v.Entry = VertexEntry

	pixelOut := &StructDecl{Name: "_PIXELOUT", Fields: []Field{{Type: "float4", Name: "color", Semantic: "SV_TARGET0"}}}
	prefix = Render(pixelInputStruct(passed), pixelOut) + casterPS.Source
	p.UserSourceLineStart = strings.Count(prefix, "\n")
	p.Source = prefix + p.Source + Render(&FuncDecl{
		Result: "_PIXELOUT",
		Name:   PixelEntry,
		Params: []Param{{Type: "PIN", Name: "input"}},
		Body: []Stmt{
			&VarDecl{Type: "_PIXELOUT", Name: "output"},
			assign(member(output, "color"), call(ShadowCasterPixelFunc, input)),
			&Return{X: output},
		},
	})
	p.Entry = PixelEntry

	return &Result{Vertex: v, Pixel: p, VertexDeclaration: decl}, nil
}

// prependCaster places the caster's autos, includes and header ahead of
// the fragment's own.
func prependCaster(f, caster *fragment.Fragment) {
	autos := slices.Clone(caster.Autos)
	for _, a := range f.Autos {
		if !slices.ContainsFunc(autos, func(b fragment.Auto) bool { return b.Name == a.Name }) {
			autos = append(autos, a)
		}
	}
	f.Autos = autos

	includes := slices.Clone(caster.Includes)
	for _, inc := range f.Includes {
		if !slices.Contains(includes, inc) {
			includes = append(includes, inc)
		}
	}
	f.Includes = includes

	f.Header = caster.Header + f.Header
}
