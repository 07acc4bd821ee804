// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/effect/hlsl"
)

// writeBlock writes a braced block of statements.
func (w *Writer) writeBlock(block *hlsl.BlockStmt) error {
	w.writeLine("{")
	w.pushIndent()
	for _, stmt := range block.Statements {
		if err := w.writeStatement(stmt); err != nil {
			return err
		}
	}
	w.popIndent()
	w.writeLine("}")
	return nil
}

// writeStatement writes a single statement.
func (w *Writer) writeStatement(stmt hlsl.Stmt) error {
	switch s := stmt.(type) {
	case *hlsl.BlockStmt:
		return w.writeBlock(s)

	case *hlsl.DeclStmt:
		for _, v := range s.Vars {
			qualifier := ""
			if v.Const {
				qualifier = "const "
			}
			line, err := w.declaration(v, qualifier)
			if err != nil {
				return err
			}
			w.writeLine("%s", line)
		}
		return nil

	case *hlsl.ExprStmt:
		if call, ok := s.Expr.(*hlsl.CallExpr); ok && call.Func == "clip" && !w.functions["clip"] {
			return w.writeClip(call)
		}
		e, err := w.expr(s.Expr)
		if err != nil {
			return err
		}
		w.writeLine("%s;", e)
		return nil

	case *hlsl.IfStmt:
		return w.writeIf(s)

	case *hlsl.ForStmt:
		return w.writeFor(s)

	case *hlsl.WhileStmt:
		cond, err := w.expr(s.Condition)
		if err != nil {
			return err
		}
		w.writeLine("while (%s)", cond)
		return w.writeBody(s.Body)

	case *hlsl.DoWhileStmt:
		w.writeLine("do")
		if err := w.writeBody(s.Body); err != nil {
			return err
		}
		cond, err := w.expr(s.Condition)
		if err != nil {
			return err
		}
		w.writeLine("while (%s);", cond)
		return nil

	case *hlsl.ReturnStmt:
		if s.Value == nil {
			w.writeLine("return;")
			return nil
		}
		v, err := w.expr(s.Value)
		if err != nil {
			return err
		}
		w.writeLine("return %s;", v)
		return nil

	case *hlsl.BreakStmt:
		w.writeLine("break;")
		return nil

	case *hlsl.ContinueStmt:
		w.writeLine("continue;")
		return nil

	case *hlsl.DiscardStmt:
		w.writeLine("discard;")
		return nil

	default:
		return fmt.Errorf("unsupported statement: %T", stmt)
	}
}

// writeBody writes a loop or branch body, always braced.
func (w *Writer) writeBody(body hlsl.Stmt) error {
	if b, ok := body.(*hlsl.BlockStmt); ok {
		return w.writeBlock(b)
	}
	w.writeLine("{")
	w.pushIndent()
	if body != nil {
		if err := w.writeStatement(body); err != nil {
			return err
		}
	}
	w.popIndent()
	w.writeLine("}")
	return nil
}

func (w *Writer) writeIf(s *hlsl.IfStmt) error {
	cond, err := w.expr(s.Condition)
	if err != nil {
		return err
	}
	w.writeLine("if (%s)", cond)
	if err := w.writeBody(s.Body); err != nil {
		return err
	}
	if s.Else == nil {
		return nil
	}
	w.writeLine("else")
	return w.writeBody(s.Else)
}

func (w *Writer) writeFor(s *hlsl.ForStmt) error {
	var init string
	switch i := s.Init.(type) {
	case nil:
	case *hlsl.DeclStmt:
		parts := make([]string, len(i.Vars))
		for n, v := range i.Vars {
			d, err := w.declaration(v, "")
			if err != nil {
				return err
			}
			if n > 0 {
				// Later declarators share the type of the first.
				d = strings.TrimPrefix(d, w.typeName(v.Type)+" ")
			}
			parts[n] = strings.TrimSuffix(d, ";")
		}
		init = strings.Join(parts, ", ")
	case *hlsl.ExprStmt:
		e, err := w.expr(i.Expr)
		if err != nil {
			return err
		}
		init = e
	default:
		return w.errorAt(s, "unsupported for loop initializer")
	}

	var cond, update string
	var err error
	if s.Condition != nil {
		if cond, err = w.expr(s.Condition); err != nil {
			return err
		}
	}
	if s.Update != nil {
		if update, err = w.expr(s.Update); err != nil {
			return err
		}
	}
	w.writeLine("for (%s; %s; %s)", init, cond, update)
	return w.writeBody(s.Body)
}

// writeClip writes the HLSL clip intrinsic, which discards the fragment
// when any component of its argument is negative.
func (w *Writer) writeClip(call *hlsl.CallExpr) error {
	if len(call.Args) != 1 {
		return w.errorAt(call, "clip expects 1 argument, got %d", len(call.Args))
	}
	x, err := w.expr(call.Args[0])
	if err != nil {
		return err
	}
	w.writeLine("if (%s < 0.0) discard;", paren(x))
	return nil
}
