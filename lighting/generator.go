// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package lighting

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/effect/include"
)

// State is the part of the scene that determines the generated
// fragments.
type State struct {
	// Forward lists the forward rendered lights; the first is the main
	// light.
	Forward []Light

	// DeferredShadows reports, per light type, whether any deferred light
	// of that type casts shadows.
	DeferredShadows [numLightTypes]bool

	// ShadowReceivers holds the receiver include of the active shadow
	// caster per light type. Empty entries keep the generator's default.
	ShadowReceivers [numLightTypes]string
}

// Changed reports whether moving from prev to next requires the lighting
// fragments to be regenerated: the forward light count or main light
// changed, a light changed type or toggled shadows, or a shadow caster
// was swapped.
func Changed(prev, next State) bool {
	if len(prev.Forward) != len(next.Forward) {
		return true
	}
	for i := range prev.Forward {
		p, n := prev.Forward[i], next.Forward[i]
		if i == 0 && p.ID != n.ID {
			return true
		}
		if p.Type != n.Type || p.ShadowsEnabled != n.ShadowsEnabled {
			return true
		}
	}
	return prev.DeferredShadows != next.DeferredShadows ||
		prev.ShadowReceivers != next.ShadowReceivers
}

// Generator writes the lighting fragments into a store.
type Generator struct {
	Store    include.Store
	Includes Includes

	// Logger receives generation diagnostics. Nil discards them.
	Logger *slog.Logger
}

// NewGenerator returns a generator writing the default include names
// into store.
func NewGenerator(store include.Store) *Generator {
	return &Generator{Store: store, Includes: DefaultIncludes()}
}

func (g *Generator) log() *slog.Logger {
	if g.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return g.Logger
}

// includes returns the generator's includes with the receivers of state
// applied.
func (g *Generator) includes(state State) Includes {
	inc := g.Includes
	for t, r := range state.ShadowReceivers {
		if r != "" {
			inc.ShadowReceivers[t] = r
		}
	}
	return inc
}

// Generated returns the names of the fragments the generator writes.
// Effects including any of them must be recompiled after Regenerate.
func (g *Generator) Generated() []string {
	names := []string{g.Includes.Forward}
	return append(names, g.Includes.Deferred[:]...)
}

// Regenerate rewrites all lighting fragments for state.
//
// Missing shadow receivers are logged and reported as errors wrapping
// ErrNoShadowReceiver; the fragments are still written.
func (g *Generator) Regenerate(state State) error {
	return errors.Join(g.RegenerateDeferred(state), g.RegenerateForward(state))
}

// RegenerateDeferred rewrites the deferred fragment of every light type.
func (g *Generator) RegenerateDeferred(state State) error {
	inc := g.includes(state)
	var errs []error
	for _, t := range Types() {
		text, err := DeferredFragment(t, state.DeferredShadows[t], inc)
		switch {
		case errors.Is(err, ErrNoShadowReceiver):
			g.log().Error("shadows are enabled but no shadow receiver include is present",
				"light", t.String(), "fragment", inc.Deferred[t])
			errs = append(errs, err)
		case err != nil:
			return err
		}
		if err := g.save(inc.Deferred[t], text); err != nil {
			return errors.Join(append(errs, err)...)
		}
	}
	return errors.Join(errs...)
}

// RegenerateForward rewrites the forward rendered lighting fragment.
func (g *Generator) RegenerateForward(state State) error {
	inc := g.includes(state)
	text, err := ForwardFragment(state.Forward, inc)
	switch {
	case errors.Is(err, ErrNoShadowReceiver):
		g.log().Error("shadows are enabled but no shadow receiver include is present",
			"light", state.Forward[0].Type.String(), "fragment", inc.Forward)
	case err != nil:
		return err
	}
	if serr := g.save(inc.Forward, text); serr != nil {
		return errors.Join(err, serr)
	}
	g.log().Debug("regenerated forward lighting", "lights", len(state.Forward), "fragment", inc.Forward)
	return err
}

func (g *Generator) save(name, text string) error {
	if g.Store == nil {
		return errors.New("lighting: generator has no store")
	}
	if err := g.Store.Save(name, []byte(text)); err != nil {
		return fmt.Errorf("lighting: save %s: %w", name, err)
	}
	return nil
}
