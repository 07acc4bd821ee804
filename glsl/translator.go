// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"github.com/gogpu/effect/dialect"
	"github.com/gogpu/effect/hlsl"
	"github.com/gogpu/effect/profile"
)

// TranslatorName is the name the translator is registered under.
const TranslatorName = "glsl"

func init() {
	dialect.Register(TranslatorName, func() dialect.Translator {
		return NewTranslator(DefaultOptions())
	})
}

// Translator parses HLSL program pairs and compiles them to GLSL. It
// implements dialect.Translator.
type Translator struct {
	options Options
}

// NewTranslator returns a translator producing GLSL for options.
func NewTranslator(options Options) *Translator {
	return &Translator{options: options}
}

// Translate parses both programs and compiles them together.
func (t *Translator) Translate(vs, ps dialect.Unit) (vsOut, psOut string, err error) {
	vm, err := hlsl.Parse(vs.Name, vs.Source)
	if err != nil {
		return "", "", &dialect.StageError{Stage: profile.Vertex, Err: err}
	}
	pm, err := hlsl.Parse(ps.Name, ps.Source)
	if err != nil {
		return "", "", &dialect.StageError{Stage: profile.Pixel, Err: err}
	}
	return Compile(
		Stage{Module: vm, Entry: vs.Entry, Source: vs.Source, Name: vs.Name},
		Stage{Module: pm, Entry: ps.Entry, Source: ps.Source, Name: ps.Name},
		t.options,
	)
}
