// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package include

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/gogpu/effect/fragment"
	"github.com/gogpu/effect/script"
)

// LinkOptions configures Link.
type LinkOptions struct {
	// LightShading names the light shading fragment spliced in before the
	// first lighting fragment. Empty disables the splice.
	LightShading string

	// LightingIncludes names the per-type lighting fragments that trigger
	// the light shading splice.
	LightingIncludes []string

	// Callbacks maps an include name to a function returning extra
	// macros. It is called once for each closure entry with that exact
	// name.
	Callbacks map[string]func() []fragment.Macro

	// Logger receives link diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Linked is the result of linking one program.
type Linked struct {
	// Fragment is a copy of the root with Final, Macros and
	// UserSourceLineStart filled in.
	Fragment *fragment.Fragment

	// Closure is the resolved closure including any spliced fragments.
	Closure Closure

	// Autos is the merged, name-deduplicated auto list.
	Autos []fragment.Auto
}

// Link resolves root and concatenates the closure into a single program
// text. Headers of all fragments come first, in closure order, followed by
// each fragment's autos and source. The root is not modified.
func Link(root *fragment.Fragment, loader Loader, opts LinkOptions) (*Linked, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	f := root.Clone()
	closure, err := Resolve(f, loader)
	if err != nil {
		return nil, err
	}

	closure, err = spliceLightShading(closure, loader, opts)
	if err != nil {
		return nil, err
	}

	var header, body strings.Builder
	var autos []fragment.Auto
	for _, inc := range closure {
		for _, a := range inc.Autos {
			i := slices.IndexFunc(autos, func(b fragment.Auto) bool { return b.Name == a.Name })
			if i >= 0 {
				if autos[i].Type != a.Type || autos[i].ArraySize != a.ArraySize {
					log.Warn("dropping conflicting auto redeclaration",
						"auto", a.Name,
						"kept", autos[i].Decl(),
						"dropped", a.Decl(),
						"fragment", inc.FileName)
				}
				continue
			}
			autos = append(autos, a)
			body.WriteString(a.Decl())
			body.WriteByte('\n')
		}

		if cb, ok := opts.Callbacks[inc.FileName]; ok && cb != nil {
			f.Macros = append(f.Macros, cb()...)
		}

		body.WriteString(inc.Source)
		header.WriteString(inc.Header)
	}

	f.Final = header.String() + body.String()
	finalLines := strings.Count(f.Final, "\n")
	userLines := strings.Count(f.Source, "\n")
	f.UserSourceLineStart = finalLines - (userLines - f.UserSourceLineStart)

	log.Debug("linked program",
		"fragment", f.FileName,
		"closure", closure.Names(),
		"autos", len(autos),
		"lines", finalLines)

	return &Linked{Fragment: f, Closure: closure, Autos: autos}, nil
}

// spliceLightShading inserts the light shading fragment, with any of its
// own dependencies not yet present, before the first lighting fragment.
func spliceLightShading(c Closure, loader Loader, opts LinkOptions) (Closure, error) {
	if opts.LightShading == "" || c.Index(opts.LightShading) >= 0 {
		return c, nil
	}

	at := slices.IndexFunc(c, func(f *fragment.Fragment) bool {
		return slices.ContainsFunc(opts.LightingIncludes, func(name string) bool {
			return name != "" && script.EqualFold(name, f.FileName)
		})
	})
	if at < 0 {
		return c, nil
	}

	data, err := loader.Load(opts.LightShading)
	if err != nil {
		return nil, fmt.Errorf("include: failed to read light shade include file '%s': %w", opts.LightShading, err)
	}
	shading, err := fragment.Analyze(opts.LightShading, data)
	if err != nil {
		return nil, err
	}
	sub, err := Resolve(shading, loader)
	if err != nil {
		return nil, err
	}

	var insert Closure
	for _, s := range sub {
		if c.Index(s.FileName) < 0 {
			insert = append(insert, s)
		}
	}
	return slices.Insert(slices.Clone(c), at, insert...), nil
}
