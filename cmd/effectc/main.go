// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command effectc compiles effect scripts to shader source.
//
// Usage:
//
//	effectc [options] <vertex.eff> [pixel.eff]
//
// Examples:
//
//	effectc -profile vs_4_0 mesh.eff mesh_ps.eff      # HLSL to stdout
//	effectc -profile glslv -o out mesh.eff mesh_ps.eff # GLSL files in out/
//	effectc -config effect.yaml -lighting vertex mesh.eff mesh_ps.eff
//	effectc -profile vs_4_0 -shadow spot mesh.eff      # shadow caster
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gogpu/effect"
	"github.com/gogpu/effect/config"
	"github.com/gogpu/effect/dialect"
	"github.com/gogpu/effect/fragment"
	"github.com/gogpu/effect/lighting"
	"github.com/gogpu/effect/profile"
)

const effectcVersion = "0.1.0-dev"

// listFlag collects a repeated flag.
type listFlag []string

func (l *listFlag) String() string     { return strings.Join(*l, ",") }
func (l *listFlag) Set(v string) error { *l = append(*l, v); return nil }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	profile, pixelProfile string
	vsEntry, psEntry      string
	configPath            string
	lighting              string
	output                string
	shadow                string
	fog                   bool
	verbose               bool
	version               bool
	defines, dirs         listFlag
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	fs := flag.NewFlagSet("effectc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	o := &options{}
	fs.StringVar(&o.profile, "profile", "vs_4_0", "vertex profile (vs_3_0, vs_4_0, glslv, ...)")
	fs.StringVar(&o.pixelProfile, "pixel-profile", "", "pixel profile (default: paired with -profile)")
	fs.StringVar(&o.vsEntry, "vs-entry", "vsmain", "vertex entry function")
	fs.StringVar(&o.psEntry, "ps-entry", "psmain", "pixel entry function")
	fs.StringVar(&o.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&o.lighting, "lighting", "auto", "lighting model: auto, none, vertex, pixel, deferred")
	fs.StringVar(&o.output, "o", "", "output directory (default: stdout)")
	fs.StringVar(&o.shadow, "shadow", "", "build a shadow caster for a light type: directional, spot, point")
	fs.BoolVar(&o.fog, "fog", false, "enable fog")
	fs.BoolVar(&o.verbose, "v", false, "log compiler progress to stderr")
	fs.BoolVar(&o.version, "version", false, "print version")
	fs.Var(&o.defines, "D", "define a macro, NAME or NAME=VALUE (repeatable)")
	fs.Var(&o.dirs, "I", "add an include directory (repeatable)")
	fs.Usage = func() { usage(fs, stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return o, fs.Args(), nil
}

func run(args []string, stdout, stderr io.Writer) int {
	o, files, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	p := &printer{w: stderr, color: isTerminal(stderr)}

	if o.version {
		fmt.Fprintf(stdout, "effectc version %s\n", effectcVersion)
		return 0
	}
	if len(files) < 1 || (len(files) < 2 && o.shadow == "") {
		p.errorf("expected a vertex and a pixel effect file")
		return 2
	}

	if o.verbose {
		effect.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer effect.SetLogger(nil)
	}

	req, err := o.request(files)
	if err != nil {
		p.errorf("%v", err)
		return 2
	}

	cfg := &config.Config{}
	if o.configPath != "" {
		if cfg, err = config.Load(o.configPath); err != nil {
			p.errorf("%v", err)
			return 1
		}
	}
	dirs, err := absDirs(o.dirs, files)
	if err != nil {
		p.errorf("%v", err)
		return 1
	}
	cfg.Store.Dirs = append(cfg.Store.Dirs, dirs...)

	comp, closer, err := cfg.NewCompiler()
	if err != nil {
		p.errorf("%v", err)
		return 1
	}
	defer closer.Close()

	if err := comp.RegenerateLighting(lighting.State{}); err != nil {
		p.warnf("%v", err)
	}

	res, err := comp.Compile(*req)
	if err != nil {
		p.errorf("%v", err)
		var te *dialect.TranslationError
		if errors.As(err, &te) && te.Line > 0 {
			fmt.Fprint(stderr, te.Context())
		}
		return 1
	}

	if o.output == "" {
		fmt.Fprintf(stdout, "// %s (%s)\n%s\n", req.Vertex.FileName, res.Vertex.Profile, res.Vertex.Source)
		fmt.Fprintf(stdout, "// %s (%s)\n%s", pixelName(req), res.Pixel.Profile, res.Pixel.Source)
		return 0
	}
	if err := os.MkdirAll(o.output, 0o755); err != nil {
		p.errorf("%v", err)
		return 1
	}
	for _, out := range []struct {
		file string
		prog effect.Output
	}{{req.Vertex.FileName, res.Vertex}, {pixelName(req), res.Pixel}} {
		name := outputName(out.file, out.prog.Profile)
		if err := os.WriteFile(filepath.Join(o.output, name), []byte(out.prog.Source), 0o644); err != nil {
			p.errorf("%v", err)
			return 1
		}
		fmt.Fprintf(stdout, "Successfully compiled %s to %s (%d bytes)\n", out.file, filepath.Join(o.output, name), len(out.prog.Source))
	}
	return 0
}

// request builds the compile request from the command line.
func (o *options) request(files []string) (*effect.Request, error) {
	vs, err := profile.Parse(o.profile)
	if err != nil {
		return nil, err
	}
	if vs.Stage() != profile.Vertex {
		return nil, fmt.Errorf("%s is not a vertex profile", vs)
	}
	ps := vs.PixelProfile()
	if o.pixelProfile != "" {
		if ps, err = profile.Parse(o.pixelProfile); err != nil {
			return nil, err
		}
	}
	model, ok := effect.ParseLighting(o.lighting)
	if !ok {
		return nil, fmt.Errorf("unknown lighting model %q", o.lighting)
	}

	req := &effect.Request{
		Vertex: effect.Program{FileName: filepath.Base(files[0]), Entry: o.vsEntry, Profile: vs},
		Pixel:  effect.Program{Entry: o.psEntry, Profile: ps},
		Features: effect.FeatureConfiguration{
			Lighting: model,
			Fog:      o.fog,
		},
	}
	if len(files) > 1 {
		req.Pixel.FileName = filepath.Base(files[1])
	}
	for _, d := range o.defines {
		name, value, _ := strings.Cut(d, "=")
		req.Features.Macros = append(req.Features.Macros, fragment.Macro{Name: name, Definition: value})
	}
	if o.shadow != "" {
		t, ok := parseLightType(o.shadow)
		if !ok {
			return nil, fmt.Errorf("unknown light type %q", o.shadow)
		}
		req.Features.ShadowEffect = true
		req.Features.ShadowEffectType = t
	}
	return req, nil
}

func parseLightType(s string) (lighting.LightType, bool) {
	for _, t := range lighting.Types() {
		if strings.EqualFold(s, t.String()) {
			return t, true
		}
	}
	return 0, false
}

// absDirs returns the include directories followed by the directories of
// the input files, absolute and once each.
func absDirs(includes, files []string) ([]string, error) {
	var dirs []string
	for _, d := range slices.Concat(includes, mapDir(files)) {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(dirs, abs) {
			dirs = append(dirs, abs)
		}
	}
	return dirs, nil
}

func mapDir(files []string) []string {
	dirs := make([]string, len(files))
	for i, f := range files {
		dirs[i] = filepath.Dir(f)
	}
	return dirs
}

func pixelName(req *effect.Request) string {
	if req.Pixel.FileName != "" {
		return req.Pixel.FileName
	}
	return req.Vertex.FileName
}

func outputName(file string, p profile.Profile) string {
	base := strings.TrimSuffix(file, filepath.Ext(file))
	return base + "_" + p.String() + "." + p.API().FileExtension()
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, "Usage: effectc [options] <vertex.eff> [pixel.eff]\n\n")
	fmt.Fprintf(w, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  effectc mesh.eff mesh_ps.eff                   Compile to stdout\n")
	fmt.Fprintf(w, "  effectc -profile glslv -o out mesh.eff mesh_ps.eff  Compile GLSL to out/\n")
	fmt.Fprintf(w, "  effectc -shadow point mesh.eff                 Build a shadow caster\n")
}
