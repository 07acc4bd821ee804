// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package effect

import (
	"fmt"
	"path"
	"strings"

	"github.com/gogpu/effect/fragment"
	"github.com/gogpu/effect/profile"
)

// IntermediateName returns the name of the linked program artifact, for
// example "simple_dx_intermediate_3.eff".
func IntermediateName(fileName string, api profile.API, number int) string {
	return fmt.Sprintf("%s_%s_intermediate_%d.eff", baseName(fileName), api.DebugTag(), number)
}

// CompiledName returns the name of the translated program artifact, for
// example "simple_vs_4_0_3.hlsl".
func CompiledName(fileName string, p profile.Profile, number int) string {
	return fmt.Sprintf("%s_%s_%d.%s", baseName(fileName), p, number, p.API().FileExtension())
}

func baseName(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// saveArtifacts writes the debug artifacts of a compile and returns the
// name each program is reported under. Intermediates are always written;
// compiled programs only when translated. Failures are logged.
func (c *Compiler) saveArtifacts(api profile.API, progs [2]*fragment.Fragment, intermediates [2]string, translated bool) [2]string {
	var names [2]string
	for i, f := range progs {
		if c.intermediate != nil {
			name := IntermediateName(f.FileName, api, f.EffectNumber)
			if err := c.intermediate.Save(name, []byte(intermediates[i])); err != nil {
				Logger().Error("failed to save intermediate program", "name", name, "err", err)
			} else {
				names[i] = name
			}
		}
		if c.compiled != nil && translated {
			name := CompiledName(f.FileName, f.Profile, f.EffectNumber)
			if err := c.compiled.Save(name, []byte(f.Final)); err != nil {
				Logger().Error("failed to save compiled program", "name", name, "err", err)
			} else {
				names[i] = name
			}
		}
	}
	return names
}
