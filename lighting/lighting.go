// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package lighting

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/effect/synth"
)

// ErrNoShadowReceiver reports shadows enabled for a light type that has
// no shadow receiver include.
var ErrNoShadowReceiver = errors.New("lighting: shadows are enabled but no shadow receiver include is present")

// LightType is a light category.
type LightType uint8

const (
	Directional LightType = iota
	Spot
	Point

	numLightTypes = 3
)

var lightTypeNames = [numLightTypes]string{"Directional", "Spot", "Point"}

// String returns the light type name.
func (t LightType) String() string {
	if int(t) < len(lightTypeNames) {
		return lightTypeNames[t]
	}
	return "LightType(" + strconv.Itoa(int(t)) + ")"
}

// Types returns the light types in include order.
func Types() []LightType {
	return []LightType{Directional, Spot, Point}
}

// lightingFunc is the lighting math function of the light type.
func (t LightType) lightingFunc() string { return "Mash" + t.String() + "Lighting" }

// shadowFunc is the shadow factor function of the light type's shadow
// receiver.
func (t LightType) shadowFunc() string { return "Mash" + t.String() + "Shadows" }

// DeferredFunc returns the function defined by the deferred fragment of
// the light type.
func (t LightType) DeferredFunc() string { return "MashDeferred" + t.String() + "Lighting" }

// Light is one forward rendered light.
type Light struct {
	// ID identifies the light across regenerations.
	ID             uint64
	Type           LightType
	ShadowsEnabled bool
}

// Includes names the fragments referenced and produced by generation.
// Arrays are indexed by LightType.
type Includes struct {
	// Lighting holds the lighting math fragment per light type.
	Lighting [numLightTypes]string

	// ShadowReceivers holds the shadow receiver fragment per light type.
	// They are supplied by the active shadow casters and may be empty.
	ShadowReceivers [numLightTypes]string

	// LightStructures declares sLight and sLightOutput.
	LightStructures string

	// Forward is the name of the generated forward lighting fragment.
	Forward string

	// Deferred holds the names of the generated deferred fragments.
	Deferred [numLightTypes]string
}

// DefaultIncludes returns the standard include names.
func DefaultIncludes() Includes {
	return Includes{
		Lighting: [numLightTypes]string{
			"MashDirectionalLighting.eff",
			"MashSpotLighting.eff",
			"MashPointLighting.eff",
		},
		LightStructures: "MashLightStructures.eff",
		Forward:         synth.DefaultForwardInclude,
		Deferred: [numLightTypes]string{
			"MashDirectionalDeferredLighting_g.eff",
			"MashSpotDeferredLighting_g.eff",
			"MashPointDeferredLighting_g.eff",
		},
	}
}

// Names of generated functions, parameters and autos.
const (
	lightOutputType = "sLightOutput"
	lightAuto       = "autoLight"
	shadowsAuto     = "autoShadowsEnabled"
	shadowFactor    = "shadowFactor"
)

// script assembles the blocks of an effect script.
type script struct {
	sb strings.Builder
}

func (s *script) block(name string, lines ...string) {
	s.sb.WriteString(name)
	s.sb.WriteString(" {\n")
	for _, l := range lines {
		if l == "" {
			continue
		}
		s.sb.WriteString(l)
		s.sb.WriteByte('\n')
	}
	s.sb.WriteString("}\n")
}

func (s *script) source(nodes ...synth.Node) {
	s.sb.WriteString("source {\n")
	s.sb.WriteString(synth.Render(nodes...))
	s.sb.WriteString("}\n")
}

func zeroOutput() synth.Expr {
	return synth.Lit("(" + lightOutputType + ")0")
}

func receiverError(t LightType) error {
	return fmt.Errorf("%w (%s lights)", ErrNoShadowReceiver, strings.ToLower(t.String()))
}

// DeferredFragment returns the deferred lighting script for one light
// type. With shadows enabled the function multiplies in the shadow
// factor of the light type's shadow receiver when autoShadowsEnabled is
// set.
//
// A missing shadow receiver is reported as ErrNoShadowReceiver; the
// returned script is still complete apart from that include.
func DeferredFragment(t LightType, shadows bool, inc Includes) (string, error) {
	if int(t) >= numLightTypes {
		return "", fmt.Errorf("lighting: unknown light type %d", t)
	}
	var err error
	var s script

	autos := []string{"sLight " + lightAuto}
	includes := []string{inc.Lighting[t]}
	if shadows {
		autos = append(autos, "bool "+shadowsAuto)
		if inc.ShadowReceivers[t] == "" {
			err = receiverError(t)
		}
		includes = append(includes, inc.ShadowReceivers[t])
	}
	s.block("autos", autos...)
	s.block("include", includes...)

	body := []synth.Stmt{
		&synth.VarDecl{Type: lightOutputType, Name: "output", Init: zeroOutput()},
		&synth.VarDecl{Type: "float", Name: shadowFactor, Init: synth.Lit("1.0f")},
	}
	if shadows {
		body = append(body, &synth.If{
			Cond: synth.Ident(shadowsAuto),
			Then: []synth.Stmt{&synth.Assign{
				LHS: synth.Ident(shadowFactor),
				RHS: &synth.Call{Func: t.shadowFunc(), Args: []synth.Expr{synth.Ident("positionvs")}},
			}},
		})
	}
	body = append(body,
		&synth.Assign{
			LHS: synth.Ident("output"),
			RHS: &synth.Call{Func: t.lightingFunc(), Args: []synth.Expr{
				synth.Ident(lightAuto), synth.Ident("normalvs"), synth.Ident("positionvs"),
				synth.Ident("specular"), synth.Ident(shadowFactor),
			}},
		},
		&synth.Return{X: synth.Ident("output")},
	)

	s.source(&synth.FuncDecl{
		Result: lightOutputType,
		Name:   t.DeferredFunc(),
		Params: []synth.Param{
			{Type: "float3", Name: "normalvs"},
			{Type: "float3", Name: "positionvs"},
			{Type: "float4", Name: "specular"},
		},
		Body: body,
	})
	return s.sb.String(), err
}

// ForwardFragment returns the forward rendered lighting script for the
// given lights. Only the first light may cast shadows. The function sums
// the output of every light and saturates the result; with no lights it
// returns full diffuse and no specular.
//
// A missing shadow receiver is reported as ErrNoShadowReceiver; the
// returned script is still complete apart from that include.
func ForwardFragment(lights []Light, inc Includes) (string, error) {
	var err error
	var s script

	if len(lights) > 0 {
		s.block("autos", "sLight "+lightAuto+" "+strconv.Itoa(len(lights)))
	}

	var used [numLightTypes]bool
	for _, l := range lights {
		if int(l.Type) >= numLightTypes {
			return "", fmt.Errorf("lighting: unknown light type %d", l.Type)
		}
		used[l.Type] = true
	}
	var includes []string
	for _, t := range Types() {
		if used[t] {
			includes = append(includes, inc.Lighting[t])
		}
	}
	if len(includes) == 0 {
		includes = append(includes, inc.LightStructures)
	}
	shadowed := len(lights) > 0 && lights[0].ShadowsEnabled
	if shadowed {
		t := lights[0].Type
		if inc.ShadowReceivers[t] == "" {
			err = receiverError(t)
		}
		includes = append(includes, inc.ShadowReceivers[t])
	}
	s.block("include", includes...)

	normal := synth.Ident("viewSpaceNormal")
	position := synth.Ident("viewSpacePosition")
	specular := synth.Ident("specularIntensity")
	output := synth.Ident("output")
	diffuseOf := func(x synth.Expr) synth.Expr { return &synth.Member{X: x, Name: "diffuse"} }
	specularOf := func(x synth.Expr) synth.Expr { return &synth.Member{X: x, Name: "specular"} }

	body := []synth.Stmt{
		&synth.VarDecl{Type: lightOutputType, Name: "output", Init: zeroOutput()},
	}
	if shadowed {
		body = append(body, &synth.VarDecl{Type: "float", Name: shadowFactor,
			Init: &synth.Call{Func: lights[0].Type.shadowFunc(), Args: []synth.Expr{position}}})
	}

	var diffuse, spec synth.Expr
	for i, l := range lights {
		factor := synth.Expr(synth.Lit("1.0f"))
		if i == 0 && shadowed {
			factor = synth.Ident(shadowFactor)
		}
		name := synth.Ident("lightOutput" + strconv.Itoa(i))
		body = append(body, &synth.VarDecl{Type: lightOutputType, Name: string(name),
			Init: &synth.Call{Func: l.Type.lightingFunc(), Args: []synth.Expr{
				&synth.Index{X: synth.Ident(lightAuto), I: synth.Lit(strconv.Itoa(i))},
				normal, position, specular, factor,
			}}})
		diffuse = sum(diffuse, diffuseOf(name))
		spec = sum(spec, specularOf(name))
	}

	if len(lights) > 0 {
		body = append(body,
			&synth.Assign{LHS: diffuseOf(output), RHS: &synth.Call{Func: "saturate", Args: []synth.Expr{diffuse}}},
			&synth.Assign{LHS: specularOf(output), RHS: &synth.Call{Func: "saturate", Args: []synth.Expr{spec}}},
		)
	} else {
		body = append(body,
			&synth.Assign{LHS: diffuseOf(output), RHS: float3("1.0f")},
			&synth.Assign{LHS: specularOf(output), RHS: float3("0.0f")},
		)
	}
	body = append(body, &synth.Return{X: output})

	s.source(&synth.FuncDecl{
		Result: lightOutputType,
		Name:   synth.ForwardLightingFunc,
		Params: []synth.Param{
			{Type: "float3", Name: string(normal)},
			{Type: "float3", Name: string(position)},
			{Type: "float4", Name: string(specular)},
		},
		Body: body,
	})
	return s.sb.String(), err
}

func sum(acc, x synth.Expr) synth.Expr {
	if acc == nil {
		return x
	}
	return &synth.Binary{Op: "+", X: acc, Y: x}
}

func float3(v string) synth.Expr {
	return &synth.Call{Func: "float3", Args: []synth.Expr{synth.Lit(v), synth.Lit(v), synth.Lit(v)}}
}
