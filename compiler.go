// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package effect

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/gogpu/effect/dialect"
	"github.com/gogpu/effect/fragment"
	"github.com/gogpu/effect/glsl"
	"github.com/gogpu/effect/include"
	"github.com/gogpu/effect/lighting"
	"github.com/gogpu/effect/profile"
	"github.com/gogpu/effect/synth"
)

// DefaultAPIHeader starts every OpenGL program.
const DefaultAPIHeader = "#version 330"

// Compile errors that are not attributed to a phase.
var (
	ErrNoVertexProgram = errors.New("effect: generated effects must contain a vertex program")
	ErrNoPixelProgram  = errors.New("effect: generated effects must contain a pixel program")
	ErrNoVertexSource  = errors.New("effect: effects must contain vertex source")
)

// Feature defines added to both programs.
const (
	defineVertexLighting     = "_DEFINE_VERTEX_LIGHTING"
	definePixelLighting      = "_DEFINE_PIXEL_LIGHTING"
	defineDeferredLighting   = "_DEFINE_DEFERRED_LIGHTING"
	defineSpotShadows        = "_DEFINE_SPOT_SHADOWS"
	defineDirectionalShadows = "_DEFINE_DIRECTIONAL_SHADOWS"
	definePointShadows       = "_DEFINE_POINT_SHADOWS"
	defineFog                = "_DEFINE_FOG"
)

// shadowDefines is indexed by lighting.LightType.
var shadowDefines = [...]string{defineDirectionalShadows, defineSpotShadows, definePointShadows}

// Compiler compiles effects. Its methods are safe for concurrent use;
// compiles run one at a time.
type Compiler struct {
	mu sync.Mutex

	store  include.Store
	loader include.Loader

	includes  [numIncludeKinds]string
	callbacks map[string]func() []fragment.Macro
	macros    []fragment.Macro

	counter      *Counter
	intermediate include.Store
	compiled     include.Store

	apiHeader  string
	lighting   synth.LightingModel
	translator dialect.Factory
	validate   bool
}

// New returns a compiler reading effect scripts and includes from store,
// then from each of loaders in order. Generated lighting fragments are
// written to store. A nil store is replaced by an empty memory store.
func New(store include.Store, loaders ...include.Loader) *Compiler {
	if store == nil {
		store = include.NewMemStore()
	}
	chain := make(include.Chain, 0, len(loaders)+1)
	chain = append(chain, store)
	chain = append(chain, loaders...)

	return &Compiler{
		store:     store,
		loader:    chain,
		includes:  defaultIncludes,
		callbacks: make(map[string]func() []fragment.Macro),
		counter:   &Counter{},
		apiHeader: DefaultAPIHeader,
		lighting:  synth.LightingPixel,
		translator: func() dialect.Translator {
			return glsl.NewTranslator(glsl.DefaultOptions())
		},
	}
}

// Store returns the store generated fragments are written to.
func (c *Compiler) Store() include.Store {
	return c.store
}

// SetAlternateInclude replaces the file used for an include kind. An
// empty name disables the include.
func (c *Compiler) SetAlternateInclude(kind IncludeKind, name string) {
	if kind >= numIncludeKinds {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.includes[kind] = name
}

// Include returns the file currently used for an include kind.
func (c *Compiler) Include(kind IncludeKind) string {
	if kind >= numIncludeKinds {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.includes[kind]
}

// SetIncludeCallback registers fn to supply extra macros to every
// program linked with the include name. A nil fn removes the callback.
// Callbacks run during a compile and must not call the compiler.
func (c *Compiler) SetIncludeCallback(name string, fn func() []fragment.Macro) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fn == nil {
		delete(c.callbacks, name)
		return
	}
	c.callbacks[name] = fn
}

// SetMacros sets macros applied to every program after the feature
// defines.
func (c *Compiler) SetMacros(macros []fragment.Macro) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.macros = slices.Clone(macros)
}

// SetCounter replaces the effect number counter. Compilers sharing a
// counter never reuse a debug artifact name.
func (c *Compiler) SetCounter(counter *Counter) {
	if counter == nil {
		counter = &Counter{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter = counter
}

// Counter returns the effect number counter.
func (c *Compiler) Counter() *Counter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counter
}

// SetDebugStores enables debug artifacts. Linked programs are saved to
// intermediate and translated programs to compiled; either may be nil.
func (c *Compiler) SetDebugStores(intermediate, compiled include.Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intermediate = intermediate
	c.compiled = compiled
}

// SetAPIHeader sets the first line of every OpenGL program.
func (c *Compiler) SetAPIHeader(header string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiHeader = header
}

// SetDefaultLighting sets the model used by LightingAuto requests.
func (c *Compiler) SetDefaultLighting(m synth.LightingModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lighting = m
}

// SetValidate enables parsing of Direct3D output, reporting syntax
// errors at compile time.
func (c *Compiler) SetValidate(validate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.validate = validate
}

// SetTranslator sets the factory creating the OpenGL translator of each
// session.
func (c *Compiler) SetTranslator(f dialect.Factory) {
	if f == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.translator = f
}

// UseTranslator selects a registered translator by name.
func (c *Compiler) UseTranslator(name string) error {
	if _, err := dialect.NewTranslator(name); err != nil {
		return err
	}
	c.SetTranslator(func() dialect.Translator {
		return dialect.MustTranslator(name)
	})
	return nil
}

// openSession starts a translator session. The caller holds c.mu.
func (c *Compiler) openSession() (*dialect.TranslatorSession, error) {
	t := c.translator()
	if t == nil {
		return nil, errors.New("effect: translator factory returned nil")
	}
	return dialect.Open(t), nil
}

// Compile compiles one effect in a session of its own.
func (c *Compiler) Compile(req Request) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.openSession()
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	return c.compile(sess, req)
}

// compile runs the pipeline. The caller holds c.mu.
func (c *Compiler) compile(sess *dialect.TranslatorSession, req Request) (*Result, error) {
	log := Logger()
	vp, pp := req.Vertex, req.Pixel
	if vp.FileName == "" {
		return nil, ErrNoVertexProgram
	}
	if pp.FileName == "" && !req.Features.ShadowEffect {
		return nil, ErrNoPixelProgram
	}
	api := vp.Profile.API()
	if api == profile.APIUnknown {
		return nil, fmt.Errorf("effect: unsupported vertex profile %q", vp.Profile)
	}
	if pp.Profile.API() != api {
		return nil, fmt.Errorf("effect: pixel profile %q does not target %s", pp.Profile, api)
	}

	numbers := [2]int{c.counter.Next(), c.counter.Next()}
	log.Info("effect build started",
		"vertex", vp.FileName, "vertexProfile", vp.Profile.String(), "vertexNumber", numbers[0],
		"pixel", pp.FileName, "pixelProfile", pp.Profile.String(), "pixelNumber", numbers[1])

	v, err := c.loadProgram(vp, numbers[0])
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(v.Source) == "" {
		return nil, fmt.Errorf("%w: '%s'", ErrNoVertexSource, v.FileName)
	}

	var p *fragment.Fragment
	if req.Features.ShadowEffect {
		name := pp.FileName
		if name == "" {
			name = vp.FileName
		}
		p = &fragment.Fragment{FileName: name, ProgramType: profile.Pixel,
			Profile: pp.Profile, Entry: pp.Entry, EffectNumber: numbers[1]}
	} else if p, err = c.loadProgram(pp, numbers[1]); err != nil {
		return nil, err
	}

	synthesized, casters, err := c.synthesize(v, p, req.Features)
	if err != nil {
		return nil, fmt.Errorf("synthesis error: %w", err)
	}

	opts := c.linkOptions(req.Features)
	lv, err := include.Link(synthesized.Vertex, c.loader, opts)
	if err != nil {
		return nil, fmt.Errorf("link error: %w", err)
	}
	lp, err := include.Link(synthesized.Pixel, c.loader, opts)
	if err != nil {
		return nil, fmt.Errorf("link error: %w", err)
	}

	v, p = lv.Fragment, lp.Fragment
	base := c.baseMacros(req.Features)
	for _, pair := range []struct {
		f    *fragment.Fragment
		prog Program
	}{{v, vp}, {p, pp}} {
		pair.f.Final = "#define " + api.Define() + "\n" + pair.f.Final
		pair.f.UserSourceLineStart++
		macros := slices.Concat(base, pair.prog.Macros, pair.f.Macros)
		pair.f.Macros = macros
	}

	intermediates := [2]string{intermediateText(v), intermediateText(p)}
	terr := dialect.Translate(sess, api, v, p, dialect.Options{APIHeader: c.apiHeader, Validate: c.validate})
	debugNames := c.saveArtifacts(api, [2]*fragment.Fragment{v, p}, intermediates, terr == nil)
	if terr != nil {
		return nil, fmt.Errorf("translation error: %w", terr)
	}

	res := &Result{
		Request: req,
		Vertex: Output{Source: v.Final, Entry: v.Entry, Profile: vp.Profile,
			Autos: lv.Autos, EffectNumber: numbers[0], DebugName: debugNames[0]},
		Pixel: Output{Source: p.Final, Entry: p.Entry, Profile: pp.Profile,
			Autos: lp.Autos, EffectNumber: numbers[1], DebugName: debugNames[1]},
		VertexDeclaration: synthesized.VertexDeclaration,
		Includes:          dependencies(casters, lv.Closure, lp.Closure),
	}
	log.Info("effect build complete", "vertex", vp.FileName, "pixel", pp.FileName)
	return res, nil
}

// loadProgram reads and analyzes the script of a program.
func (c *Compiler) loadProgram(prog Program, number int) (*fragment.Fragment, error) {
	f, err := c.loadFragment(prog.FileName)
	if err != nil {
		return nil, err
	}
	f.ProgramType = prog.stage()
	f.Profile = prog.Profile
	f.Entry = prog.Entry
	f.EffectNumber = number
	return f, nil
}

func (c *Compiler) loadFragment(name string) (*fragment.Fragment, error) {
	data, err := c.loader.Load(name)
	if err != nil {
		return nil, fmt.Errorf("effect: failed to read shader file '%s': %w", name, err)
	}
	f, err := fragment.Analyze(name, data)
	if err != nil {
		return nil, fmt.Errorf("analyze error: %w", err)
	}
	return f, nil
}

func (c *Compiler) lightingModel(l Lighting) synth.LightingModel {
	if m, ok := l.model(); ok {
		return m
	}
	return c.lighting
}

// synthesize derives the stage programs. Shadow effects also return the
// caster programs they were built from.
func (c *Compiler) synthesize(v, p *fragment.Fragment, fc FeatureConfiguration) (*synth.Result, []string, error) {
	if !fc.ShadowEffect {
		res, err := synth.Synthesize(v, p, synth.Config{
			Lighting:       c.lightingModel(fc.Lighting),
			ForwardInclude: c.includes[ForwardRenderedLighting],
		})
		return res, nil, err
	}
	if v.IsNative() {
		res, err := synth.SynthesizeShadowCaster(v, p, nil, nil)
		return res, nil, err
	}

	t := fc.ShadowEffectType
	if int(t) >= len(fc.Shadows) {
		return nil, nil, fmt.Errorf("effect: unknown shadow caster type %s", t)
	}
	vsName, psName := c.includes[casterVertexKind(t)], c.includes[casterPixelKind(t)]
	if fc.Shadows[t].Vertex != "" {
		vsName = fc.Shadows[t].Vertex
	}
	if fc.Shadows[t].Pixel != "" {
		psName = fc.Shadows[t].Pixel
	}
	if vsName == "" || psName == "" {
		return nil, nil, fmt.Errorf("effect: no shadow caster program for %s lights", strings.ToLower(t.String()))
	}
	casterVS, err := c.loadFragment(vsName)
	if err != nil {
		return nil, nil, err
	}
	casterPS, err := c.loadFragment(psName)
	if err != nil {
		return nil, nil, err
	}
	res, err := synth.SynthesizeShadowCaster(v, p, casterVS, casterPS)
	return res, []string{vsName, psName}, err
}

func (c *Compiler) linkOptions(fc FeatureConfiguration) include.LinkOptions {
	shading := c.includes[LightShading]
	if fc.OverrideLightShading != "" {
		shading = fc.OverrideLightShading
	}
	var lightingIncludes []string
	for _, t := range lighting.Types() {
		lightingIncludes = append(lightingIncludes, c.includes[lightingKind(t)])
	}
	return include.LinkOptions{
		LightShading:     shading,
		LightingIncludes: lightingIncludes,
		Callbacks:        c.callbacks,
		Logger:           Logger(),
	}
}

// baseMacros returns the feature defines followed by the configured and
// requested macros.
func (c *Compiler) baseMacros(fc FeatureConfiguration) []fragment.Macro {
	var defines []fragment.Macro
	define := func(name string) {
		defines = append(defines, fragment.Macro{Name: name})
	}
	if !fc.ShadowEffect {
		switch c.lightingModel(fc.Lighting) {
		case synth.LightingVertex:
			define(defineVertexLighting)
		case synth.LightingPixel:
			define(definePixelLighting)
		case synth.LightingDeferred:
			define(defineDeferredLighting)
		}
	}
	for t, s := range fc.Shadows {
		if s.Enabled {
			define(shadowDefines[t])
		}
	}
	if fc.Fog {
		define(defineFog)
	}
	return slices.Concat(defines, c.macros, fc.Macros)
}

// intermediateText is the program as handed to the translator.
func intermediateText(f *fragment.Fragment) string {
	return dialect.Prelude(f.Clone()) + f.Final
}

// dependencies returns the sorted union of names and the closures.
func dependencies(names []string, closures ...include.Closure) []string {
	names = slices.Clone(names)
	for _, cl := range closures {
		names = append(names, cl.Names()...)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// RegenerateLighting rewrites the generated lighting fragments for the
// scene state. The shadow receivers of the include table apply unless
// the state names its own. Effects for which Result.DependsOn reports
// any of GeneratedIncludes must be recompiled afterwards.
func (c *Compiler) RegenerateLighting(state lighting.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := lighting.NewGenerator(c.store)
	g.Includes = c.lightingIncludes()
	g.Logger = Logger()
	return g.Regenerate(state)
}

// GeneratedIncludes returns the names of the fragments written by
// RegenerateLighting.
func (c *Compiler) GeneratedIncludes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := lighting.NewGenerator(nil)
	g.Includes = c.lightingIncludes()
	return g.Generated()
}

func (c *Compiler) lightingIncludes() lighting.Includes {
	inc := lighting.Includes{
		LightStructures: c.includes[LightStructures],
		Forward:         c.includes[ForwardRenderedLighting],
	}
	for _, t := range lighting.Types() {
		inc.Lighting[t] = c.includes[lightingKind(t)]
		inc.ShadowReceivers[t] = c.includes[receiverKind(t)]
		inc.Deferred[t] = c.includes[deferredKind(t)]
	}
	return inc
}
