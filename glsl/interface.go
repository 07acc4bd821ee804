// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/effect/hlsl"
)

// Prefixes of generated interface variables.
const (
	attribPrefix  = "xlat_attrib_"
	varyingPrefix = "xlat_varying_"
	fragOutPrefix = "_FragDataOut"
	tempPrefix    = "xlat_temp_"
	retvalName    = "xlat_retval"
)

// vertexInputNames maps vertex input semantics to attribute names. An
// index above zero is appended.
var vertexInputNames = map[string]string{
	"POSITION":     "_inposition",
	"NORMAL":       "_innormal",
	"TANGENT":      "_intangent",
	"BLENDWEIGHT":  "_inblendweight",
	"BLENDINDICES": "_inblendindices",
}

// vertexInputIndexed maps semantics whose attribute name always carries
// the index.
var vertexInputIndexed = map[string]string{
	"TEXCOORD": "_intexcoord",
	"COLOR":    "_incolor",
	"CUSTOM":   "_incustom",
}

// semantic is a parsed HLSL semantic such as TEXCOORD3.
type semantic struct {
	Base  string
	Index int
}

func parseSemantic(s string) semantic {
	s = strings.ToUpper(s)
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	n, _ := strconv.Atoi(s[i:])
	return semantic{Base: s[:i], Index: n}
}

// String returns the semantic with an explicit index.
func (s semantic) String() string {
	return s.Base + strconv.Itoa(s.Index)
}

// binding is one value crossing the stage boundary.
type binding struct {
	// Name is the GLSL variable holding the value.
	Name string
	// Type is the HLSL type of the value.
	Type string
	// Decl is the declaration to emit, empty for built-in variables.
	Decl string
}

// field is one semantic-carrying slot of an entry parameter or result:
// either a struct member (Member set) or the value itself.
type field struct {
	Member  string
	Binding binding
}

// param describes how main passes one entry parameter.
type param struct {
	Decl      *hlsl.Parameter
	Input     []field
	Output    []field
	Structure bool
}

// stageInterface is the set of inputs and outputs of an entry point.
type stageInterface struct {
	Params []param
	Result []field
	// ResultStruct reports whether the entry returns a struct.
	ResultStruct bool
	Decls        []string
}

func (w *Writer) collectInterface(fn *hlsl.FunctionDecl) (*stageInterface, error) {
	iface := &stageInterface{}
	seen := make(map[string]bool)

	bind := func(at hlsl.Node, sem, typ string, output bool) (binding, error) {
		if sem == "" {
			return binding{}, w.errorAt(at, "entry point %s: missing semantic", fn.Name)
		}
		b, err := w.bindSemantic(at, parseSemantic(sem), typ, output)
		if err != nil {
			return binding{}, err
		}
		key := fmt.Sprint(output, b.Name)
		if seen[key] {
			return binding{}, w.errorAt(at, "entry point %s: duplicate semantic %s", fn.Name, sem)
		}
		seen[key] = true
		if b.Decl != "" {
			iface.Decls = append(iface.Decls, b.Decl)
		}
		return b, nil
	}

	fields := func(at hlsl.Node, typ, sem string, output bool) ([]field, bool, error) {
		s := w.module.Struct(typ)
		if s == nil {
			b, err := bind(at, sem, typ, output)
			if err != nil {
				return nil, false, err
			}
			return []field{{Binding: b}}, false, nil
		}
		out := make([]field, 0, len(s.Members))
		for _, m := range s.Members {
			if m.ArraySize != nil || w.module.Struct(m.Type) != nil {
				return nil, false, w.errorAt(s, "struct %s: member %s cannot cross the stage boundary", s.Name, m.Name)
			}
			b, err := bind(s, m.Semantic, m.Type, output)
			if err != nil {
				return nil, false, err
			}
			out = append(out, field{Member: m.Name, Binding: b})
		}
		return out, true, nil
	}

	for _, p := range fn.Params {
		if p.Qualifier == hlsl.ParamUniform {
			return nil, w.errorAt(fn, "entry point %s: uniform parameter %s is not supported", fn.Name, p.Name)
		}
		pp := param{Decl: p}
		var err error
		if p.Qualifier != hlsl.ParamOut {
			if pp.Input, pp.Structure, err = fields(fn, p.Type, p.Semantic, false); err != nil {
				return nil, err
			}
		}
		if p.Qualifier == hlsl.ParamOut || p.Qualifier == hlsl.ParamInOut {
			if pp.Output, pp.Structure, err = fields(fn, p.Type, p.Semantic, true); err != nil {
				return nil, err
			}
		}
		iface.Params = append(iface.Params, pp)
	}

	if fn.ReturnType != "void" {
		var err error
		if iface.Result, iface.ResultStruct, err = fields(fn, fn.ReturnType, fn.Semantic, true); err != nil {
			return nil, err
		}
	}
	return iface, nil
}

// bindSemantic chooses the GLSL variable for a semantic.
func (w *Writer) bindSemantic(at hlsl.Node, sem semantic, typ string, output bool) (binding, error) {
	modern := w.options.LangVersion.modernIO()
	glslType := w.typeName(typ)
	flat := ""
	if modern && isIntegral(typ) {
		flat = "flat "
	}

	switch {
	case w.stage == stageVertex && !output:
		name, ok := vertexInputNames[sem.Base]
		switch {
		case ok:
			if sem.Index > 0 {
				name += strconv.Itoa(sem.Index)
			}
		case vertexInputIndexed[sem.Base] != "":
			name = vertexInputIndexed[sem.Base] + strconv.Itoa(sem.Index)
		default:
			name = attribPrefix + sem.String()
		}
		q := "attribute "
		if modern {
			q = "in "
		}
		return binding{Name: name, Type: typ, Decl: q + glslType + " " + name + ";"}, nil

	case w.stage == stageVertex:
		switch {
		case (sem.Base == "SV_POSITION" || sem.Base == "POSITION") && sem.Index == 0:
			return binding{Name: "gl_Position", Type: typ}, nil
		case sem.Base == "PSIZE":
			return binding{Name: "gl_PointSize", Type: typ}, nil
		}
		name := varyingPrefix + sem.String()
		q := "varying "
		if modern {
			q = flat + "out "
		}
		return binding{Name: name, Type: typ, Decl: q + glslType + " " + name + ";"}, nil

	case !output:
		if sem.Base == "SV_POSITION" || sem.Base == "VPOS" {
			return binding{Name: "gl_FragCoord", Type: typ}, nil
		}
		name := varyingPrefix + sem.String()
		q := "varying "
		if modern {
			q = flat + "in "
		}
		return binding{Name: name, Type: typ, Decl: q + glslType + " " + name + ";"}, nil
	}

	switch sem.Base {
	case "SV_TARGET", "COLOR":
		if !modern {
			return binding{Name: fmt.Sprintf("gl_FragData[%d]", sem.Index), Type: typ}, nil
		}
		name := fragOutPrefix + strconv.Itoa(sem.Index)
		decl := "out " + glslType + " " + name + ";"
		if !w.options.LangVersion.versionLessThan(330) {
			decl = fmt.Sprintf("layout(location = %d) %s", sem.Index, decl)
		}
		return binding{Name: name, Type: typ, Decl: decl}, nil
	case "SV_DEPTH", "DEPTH":
		return binding{Name: "gl_FragDepth", Type: typ}, nil
	}
	return binding{}, w.errorAt(at, "unsupported pixel output semantic %s", sem)
}

// writeInterface declares the interface variables and reports whether
// anything was written.
func (w *Writer) writeInterface(iface *stageInterface) bool {
	for _, d := range iface.Decls {
		w.writeLine("%s", d)
	}
	return len(iface.Decls) > 0
}

// writeMain writes the GLSL main function: it loads the inputs into the
// entry parameters, calls the entry and stores its outputs.
func (w *Writer) writeMain(fn *hlsl.FunctionDecl, iface *stageInterface) error {
	w.writeLine("void main()")
	w.writeLine("{")
	w.pushIndent()

	args := make([]string, len(iface.Params))
	for i, p := range iface.Params {
		temp := tempPrefix + p.Decl.Name
		needTemp := p.Structure || len(p.Output) > 0
		if !needTemp {
			args[i] = w.load(p.Input[0].Binding, p.Decl.Type)
			continue
		}
		args[i] = temp
		w.writeLine("%s %s;", w.typeName(p.Decl.Type), temp)
		for _, f := range p.Input {
			w.writeLine("%s = %s;", target(temp, f.Member), w.load(f.Binding, f.Binding.Type))
		}
	}

	call := escapeKeyword(fn.Name) + "(" + strings.Join(args, ", ") + ")"
	switch {
	case fn.ReturnType == "void":
		w.writeLine("%s;", call)
	default:
		w.writeLine("%s %s = %s;", w.typeName(fn.ReturnType), retvalName, call)
	}

	for i, p := range iface.Params {
		for _, f := range p.Output {
			w.writeLine("%s = %s;", f.Binding.Name, w.store(f.Binding, target(args[i], f.Member)))
		}
	}
	for _, f := range iface.Result {
		w.writeLine("%s = %s;", f.Binding.Name, w.store(f.Binding, target(retvalName, f.Member)))
	}

	w.popIndent()
	w.writeLine("}")
	return nil
}

func target(base, member string) string {
	if member == "" {
		return base
	}
	return base + "." + escapeKeyword(member)
}

// load converts a built-in input to the declared type; generated
// variables already have it.
func (w *Writer) load(b binding, typ string) string {
	if b.Name == "gl_FragCoord" && w.typeName(typ) != "vec4" {
		return w.typeName(typ) + "(" + b.Name + ")"
	}
	return b.Name
}

// store converts a value to the type of a built-in output.
func (w *Writer) store(b binding, value string) string {
	var want string
	switch {
	case b.Name == "gl_Position" || strings.HasPrefix(b.Name, "gl_FragData"):
		want = "vec4"
	case b.Name == "gl_FragDepth" || b.Name == "gl_PointSize":
		want = "float"
	default:
		return value
	}
	if w.typeName(b.Type) == want {
		return value
	}
	return want + "(" + value + ")"
}
