// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package fragment

import (
	"strconv"

	"github.com/gogpu/effect/script"
)

// Block keywords.
const (
	blockVertexInput  = "vertexinput"
	blockVertexOutput = "vertexoutput"
	blockPixelOutput  = "pixeloutput"
	blockAutos        = "autos"
	blockInclude      = "include"
	blockSource       = "source"
	blockHeader       = "header"
)

// passKeyword marks an output as crossing to the next stage. It is
// matched exactly.
const passKeyword = "pass"

type span struct {
	start, stop int
	set         bool
}

// analyzer holds the state of one Analyze call.
type analyzer struct {
	name string
	r    *script.Reader

	vertexInput span
	output      span
	autos       span
	include     span
	source      span
	header      span

	frag *Fragment
}

// Analyze parses one effect script into a Fragment.
//
// The top level of a script is a sequence of keyword-block pairs. Block
// order is free; the bodies are parsed after the whole script has been
// scanned.
func Analyze(name string, src []byte) (*Fragment, error) {
	a := &analyzer{
		name: name,
		r:    script.NewReader(src),
		frag: &Fragment{FileName: name},
	}
	if err := a.scan(); err != nil {
		return nil, err
	}
	if err := a.parseBlocks(); err != nil {
		return nil, err
	}
	return a.frag, nil
}

func (a *analyzer) errorf(kind script.ErrorKind, offset int, format string, args ...any) *script.Error {
	e := a.r.NewError(kind, offset, format, args...)
	e.File = a.name
	return e
}

func (a *analyzer) wrap(err error) error {
	if se, ok := err.(*script.Error); ok {
		se.File = a.name
		return se
	}
	return err
}

func (a *analyzer) scan() error {
	end := a.r.Len()
	if end == 0 {
		return a.errorf(script.ErrEmpty, -1, "empty effect file")
	}

	loc := 0
	for loc < end {
		word, next := a.r.ReadIdentifier(loc, end)
		if word == "" {
			break
		}
		wordStart := next - len(word)
		loc = next

		var target *span
		switch {
		case script.EqualFold(word, blockVertexInput):
			target = &a.vertexInput
		case script.EqualFold(word, blockVertexOutput):
			if a.frag.OutputStage == OutputPixel {
				return a.errorf(script.ErrSyntax, wordStart, "a fragment cannot declare both pixeloutput and vertexoutput")
			}
			a.frag.OutputStage = OutputVertex
			target = &a.output
		case script.EqualFold(word, blockPixelOutput):
			if a.frag.OutputStage == OutputVertex {
				return a.errorf(script.ErrSyntax, wordStart, "a fragment cannot declare both vertexoutput and pixeloutput")
			}
			a.frag.OutputStage = OutputPixel
			target = &a.output
		case script.EqualFold(word, blockAutos):
			target = &a.autos
		case script.EqualFold(word, blockInclude):
			target = &a.include
		case script.EqualFold(word, blockSource):
			target = &a.source
		case script.EqualFold(word, blockHeader):
			target = &a.header
		default:
			return a.errorf(script.ErrUndefinedElement, wordStart, "Undefined element '%s' in effect file.", word)
		}

		if target.set {
			return a.errorf(script.ErrDuplicateBlock, wordStart, "'%s' block declared twice", word)
		}
		start, stop, after, err := a.r.ReadBlock(loc, end)
		if err != nil {
			return a.wrap(err)
		}
		*target = span{start: start, stop: stop, set: true}
		loc = after
	}
	return nil
}

func (a *analyzer) parseBlocks() error {
	f := a.frag

	if a.include.set {
		if err := a.parseIncludes(a.include); err != nil {
			return err
		}
	}
	if a.vertexInput.set {
		if err := a.parseVertexInputs(a.vertexInput); err != nil {
			return err
		}
	}
	if a.output.set {
		if err := a.parseOutputs(a.output); err != nil {
			return err
		}
	}
	if a.autos.set {
		if err := a.parseAutos(a.autos); err != nil {
			return err
		}
	}
	if a.header.set {
		f.Header = a.r.Slice(a.header.start, a.header.stop)
	}
	if a.source.set {
		f.Source = a.r.Slice(a.source.start, a.source.stop)
		line, _ := a.r.Position(a.source.start)
		f.SourceLine = line - 1
	}
	return nil
}

// declarations calls fn with the tokens of each declaration in a block
// body. A declaration ends at a newline outside comments.
func (a *analyzer) declarations(s span, fn func(line []script.Token) error) error {
	for _, line := range a.r.ReadTokenLines(s.start, s.stop) {
		if err := fn(line); err != nil {
			return err
		}
	}
	return nil
}

// words checks that every token of line is an identifier and returns
// their text.
func (a *analyzer) words(line []script.Token, what string) ([]string, error) {
	words := make([]string, len(line))
	for i, t := range line {
		if !t.IsIdent() {
			return nil, a.errorf(script.ErrSyntax, t.Offset, "unexpected '%s' in %s", t.Text, what)
		}
		words[i] = t.Text
	}
	return words, nil
}

func (a *analyzer) parseIncludes(s span) error {
	loc := s.start
	for loc < s.stop {
		name, next := a.r.ReadIdentifier(loc, s.stop)
		if name == "" {
			return nil
		}
		nameStart := next - len(name)
		loc = next

		c, next, ok := a.r.ReadChar(loc, s.stop)
		if !ok || c != '.' {
			return a.errorf(script.ErrSyntax, nameStart,
				"Error reading includes in effect file. '%s' doesn't appear to have an extension.", name)
		}
		loc = next

		ext, next := a.r.ReadIdentifier(loc, s.stop)
		if ext == "" {
			return a.errorf(script.ErrSyntax, nameStart,
				"Error reading includes in effect file. '%s' doesn't appear to have an extension.", name)
		}
		loc = next

		a.frag.AddInclude(name + "." + ext)
	}
	return nil
}

func (a *analyzer) parseVertexInputs(s span) error {
	return a.declarations(s, func(line []script.Token) error {
		words, err := a.words(line, "vertex declaration")
		if err != nil {
			return err
		}
		if len(words) < 3 {
			return a.errorf(script.ErrSyntax, line[0].Offset, "Error reading vertex declaration in effect file. Expected 'type name usage'.")
		}
		if len(words) > 3 {
			return a.errorf(script.ErrSyntax, line[3].Offset, "unexpected '%s' after vertex input usage", words[3])
		}
		usage, ok := ParseInputUsage(words[2])
		if !ok {
			return a.errorf(script.ErrUnknownSemantic, line[2].Offset, "unknown vertex input usage '%s'", words[2])
		}
		a.frag.VertexInputs = append(a.frag.VertexInputs, VertexInput{
			Type:  words[0],
			Name:  words[1],
			Usage: usage,
		})
		return nil
	})
}

func (a *analyzer) parseOutputs(s span) error {
	return a.declarations(s, func(line []script.Token) error {
		words, err := a.words(line, "output declaration")
		if err != nil {
			return err
		}
		if len(words) < 3 {
			return a.errorf(script.ErrSyntax, line[0].Offset, "Error reading outputs in effect file. Expected 'type name semantic [pass]'.")
		}
		if len(words) > 4 {
			return a.errorf(script.ErrSyntax, line[4].Offset, "unexpected '%s' after output declaration", words[4])
		}

		var sem Semantic
		if a.frag.OutputStage == OutputPixel {
			p, ok := ParsePixelOutput(words[2])
			if !ok {
				return a.errorf(script.ErrUnknownSemantic, line[2].Offset, "unknown pixel output semantic '%s'", words[2])
			}
			sem = PixelSemantic(p)
		} else {
			v, ok := ParseVertexOutput(words[2])
			if !ok {
				return a.errorf(script.ErrUnknownSemantic, line[2].Offset, "unknown vertex output semantic '%s'", words[2])
			}
			sem = VertexSemantic(v)
		}

		pass := false
		if len(words) == 4 {
			if words[3] != passKeyword {
				return a.errorf(script.ErrSyntax, line[3].Offset, "unexpected '%s' after output semantic, expected 'pass'", words[3])
			}
			pass = true
		}

		if sem.Unique() && a.frag.OutputIndex(sem) >= 0 {
			return a.errorf(script.ErrDuplicateSemantic, line[2].Offset, "semantic '%s' is already used by output '%s'",
				words[2], a.frag.Outputs[a.frag.OutputIndex(sem)].Name)
		}

		a.frag.Outputs = append(a.frag.Outputs, Output{
			Type:     words[0],
			Name:     words[1],
			Semantic: sem,
			Pass:     pass,
		})
		return nil
	})
}

func (a *analyzer) parseAutos(s span) error {
	return a.declarations(s, func(line []script.Token) error {
		if len(line) > 2 {
			name := line[1].Text
			if len(line) > 3 || !allDigits(line[2].Text) {
				return a.errorf(script.ErrSyntax, line[2].Offset, "Invalid value after auto '%s'.", name)
			}
		}
		words, err := a.words(line, "auto declaration")
		if err != nil {
			return err
		}
		if len(words) == 1 {
			return a.errorf(script.ErrSyntax, line[0].Offset, "Error reading autos from an effect file. '%s' has no name.", words[0])
		}

		decl := Auto{Type: words[0], Name: words[1]}
		if len(words) == 3 {
			n, err := strconv.Atoi(words[2])
			if err != nil {
				return a.errorf(script.ErrSyntax, line[2].Offset, "Invalid value after auto '%s'.", decl.Name)
			}
			decl.ArraySize = n
		}
		a.frag.Autos = append(a.frag.Autos, decl)
		return nil
	})
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !script.IsDigit(s[i]) {
			return false
		}
	}
	return s != ""
}
