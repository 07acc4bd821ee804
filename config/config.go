// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package config loads compiler settings from a YAML file.
//
// A typical file:
//
//	lighting: pixel
//	glslVersion: "3.30"
//	validate: true
//	includes:
//	  LightShading: MyLightShading.eff
//	  DirectionalShadowReceiver: CascadedReceiver.eff
//	macros:
//	  - MAX_BONES=64
//	  - name: USE_FOG
//	store:
//	  sqlite: fragments.db
//	  dirs: [effects, engine/effects]
//	debug:
//	  intermediateDir: out/intermediate
//	  compiledDir: out/compiled
//
// Relative paths are resolved against the directory of the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/effect"
	"github.com/gogpu/effect/dialect"
	"github.com/gogpu/effect/fragment"
	"github.com/gogpu/effect/glsl"
	"github.com/gogpu/effect/include"
	"github.com/gogpu/effect/synth"
)

// Config is the file format.
type Config struct {
	// Includes maps include kind names, as returned by
	// effect.IncludeKind.String, to file names.
	Includes map[string]string `yaml:"includes,omitempty"`

	// Lighting is the default lighting model: none, vertex, pixel or
	// deferred.
	Lighting string `yaml:"lighting,omitempty"`

	// APIHeader starts every OpenGL program. It defaults to a #version
	// line for GLSLVersion.
	APIHeader string `yaml:"apiHeader,omitempty"`

	// GLSLVersion selects the GLSL output version, e.g. "330" or "1.50".
	GLSLVersion string `yaml:"glslVersion,omitempty"`

	Validate bool `yaml:"validate,omitempty"`

	Macros []Macro `yaml:"macros,omitempty"`
	Store  Store   `yaml:"store,omitempty"`
	Debug  Debug   `yaml:"debug,omitempty"`

	// dir is the directory relative paths are resolved against.
	dir string
}

// Store configures where effect scripts are read from.
type Store struct {
	// SQLite is a fragment database. Generated lighting fragments are
	// written to it; without it they are kept in memory.
	SQLite string `yaml:"sqlite,omitempty"`

	// Dirs are searched in order after the store.
	Dirs []string `yaml:"dirs,omitempty"`
}

// Debug configures debug artifact directories. Empty disables the
// artifact.
type Debug struct {
	IntermediateDir string `yaml:"intermediateDir,omitempty"`
	CompiledDir     string `yaml:"compiledDir,omitempty"`
}

// Macro is a macro applied to every program. In YAML it is either a
// mapping with name and value keys or a "NAME" or "NAME=VALUE" string.
type Macro struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Macro) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		name, value, _ := strings.Cut(node.Value, "=")
		m.Name, m.Value = strings.TrimSpace(name), strings.TrimSpace(value)
	} else {
		type plain Macro
		if err := node.Decode((*plain)(m)); err != nil {
			return err
		}
	}
	if m.Name == "" {
		return fmt.Errorf("config: line %d: macro without a name", node.Line)
	}
	return nil
}

// Load reads a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.dir = filepath.Dir(path)
	return c, nil
}

// Parse decodes a configuration. Relative paths stay relative to the
// working directory. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &c, nil
}

// Marshal encodes c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Config) path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// OpenStore opens the configured store. A SQLite store must be closed
// by the caller; it implements io.Closer.
func (c *Config) OpenStore() (include.Store, error) {
	if c.Store.SQLite == "" {
		return include.NewMemStore(), nil
	}
	return include.OpenSQLite(c.path(c.Store.SQLite))
}

// Loaders returns a loader per configured directory.
func (c *Config) Loaders() []include.Loader {
	loaders := make([]include.Loader, 0, len(c.Store.Dirs))
	for _, dir := range c.Store.Dirs {
		loaders = append(loaders, include.DirStore{Dir: c.path(dir)})
	}
	return loaders
}

// NewCompiler opens the store and returns a compiler with c applied. The
// returned closer releases the store.
func (c *Config) NewCompiler() (*effect.Compiler, io.Closer, error) {
	store, err := c.OpenStore()
	if err != nil {
		return nil, nil, err
	}
	closer, ok := store.(io.Closer)
	if !ok {
		closer = nopCloser{}
	}
	comp := effect.New(store, c.Loaders()...)
	if err := c.Apply(comp); err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return comp, closer, nil
}

// Apply configures comp. Nothing is changed when an entry is invalid.
func (c *Config) Apply(comp *effect.Compiler) error {
	type alternate struct {
		kind effect.IncludeKind
		name string
	}
	var alternates []alternate
	var errs []error
	for _, key := range slices.Sorted(maps.Keys(c.Includes)) {
		kind, ok := effect.ParseIncludeKind(key)
		if !ok {
			errs = append(errs, fmt.Errorf("config: unknown include kind %q", key))
			continue
		}
		alternates = append(alternates, alternate{kind, c.Includes[key]})
	}

	model := synth.LightingPixel
	if c.Lighting != "" {
		m, ok := synth.ParseLightingModel(c.Lighting)
		if !ok {
			errs = append(errs, fmt.Errorf("config: unknown lighting model %q", c.Lighting))
		}
		model = m
	}

	version := glsl.DefaultOptions().LangVersion
	if c.GLSLVersion != "" {
		v, err := glsl.ParseVersion(c.GLSLVersion)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: %w", err))
		}
		version = v
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	for _, a := range alternates {
		comp.SetAlternateInclude(a.kind, a.name)
	}
	comp.SetDefaultLighting(model)

	header := c.APIHeader
	if header == "" {
		header = "#version " + version.String()
	}
	comp.SetAPIHeader(header)
	comp.SetTranslator(func() dialect.Translator {
		return glsl.NewTranslator(glsl.Options{LangVersion: version})
	})
	comp.SetValidate(c.Validate)

	macros := make([]fragment.Macro, len(c.Macros))
	for i, m := range c.Macros {
		macros[i] = fragment.Macro{Name: m.Name, Definition: m.Value}
	}
	comp.SetMacros(macros)

	var intermediate, compiled include.Store
	if c.Debug.IntermediateDir != "" {
		intermediate = include.DirStore{Dir: c.path(c.Debug.IntermediateDir)}
	}
	if c.Debug.CompiledDir != "" {
		compiled = include.DirStore{Dir: c.path(c.Debug.CompiledDir)}
	}
	comp.SetDebugStores(intermediate, compiled)
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
