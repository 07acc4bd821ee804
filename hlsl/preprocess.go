// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strconv"
	"strings"
)

// Define is a macro defined before preprocessing starts.
type Define struct {
	Name  string
	Value string
}

type macro struct {
	name     string
	function bool
	params   []string
	body     string
}

type condState struct {
	// active reports whether lines in the current branch are kept.
	active bool
	// taken reports whether any branch of the group was active.
	taken bool
	// parent is the activity of the enclosing group.
	parent   bool
	seenElse bool
	line     int
}

// preprocessor expands directives and macros line by line. The output
// has exactly as many lines as the input, so line numbers reported on the
// output match the input.
type preprocessor struct {
	macros map[string]*macro
	conds  []condState
	source string
	line   int
}

// Preprocess runs the C-style preprocessor over src. Comments are
// removed, directive lines and inactive lines become empty lines.
func Preprocess(src string, defines ...Define) (string, error) {
	p := &preprocessor{macros: make(map[string]*macro), source: src}
	for _, d := range defines {
		p.macros[d.Name] = &macro{name: d.Name, body: d.Value}
	}

	lines := strings.Split(stripComments(src), "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		p.line = i + 1
		line := lines[i]

		// Backslash continuation. Joined lines are emitted empty.
		joined := 0
		for strings.HasSuffix(line, "\\") && i+1 < len(lines) {
			i++
			joined++
			line = line[:len(line)-1] + " " + lines[i]
		}

		text, err := p.processLine(line)
		if err != nil {
			return "", err
		}
		out = append(out, text)
		for ; joined > 0; joined-- {
			out = append(out, "")
		}
	}
	if len(p.conds) > 0 {
		p.line = p.conds[len(p.conds)-1].line
		return "", p.errorf("unterminated conditional directive")
	}
	return strings.Join(out, "\n"), nil
}

func (p *preprocessor) errorf(format string, args ...any) *SourceError {
	return NewSourceErrorf(Span{Start: Position{Line: p.line, Column: 1}}, p.source, format, args...)
}

func (p *preprocessor) active() bool {
	return len(p.conds) == 0 || p.conds[len(p.conds)-1].active
}

func (p *preprocessor) processLine(line string) (string, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		if !p.active() {
			return "", nil
		}
		return p.expand(line, nil)
	}

	directive := strings.TrimSpace(trimmed[1:])
	name, rest := splitIdent(directive)
	rest = strings.TrimSpace(rest)

	switch name {
	case "ifdef", "ifndef":
		id, _ := splitIdent(rest)
		if id == "" {
			return "", p.errorf("#%s without a macro name", name)
		}
		_, defined := p.macros[id]
		p.push(defined == (name == "ifdef"))
		return "", nil
	case "if":
		cond := false
		if p.active() {
			v, err := p.eval(rest)
			if err != nil {
				return "", err
			}
			cond = v != 0
		}
		p.push(cond)
		return "", nil
	case "elif":
		if len(p.conds) == 0 {
			return "", p.errorf("#elif without #if")
		}
		c := &p.conds[len(p.conds)-1]
		if c.seenElse {
			return "", p.errorf("#elif after #else")
		}
		if c.taken || !c.parent {
			c.active = false
			return "", nil
		}
		v, err := p.eval(rest)
		if err != nil {
			return "", err
		}
		c.active = v != 0
		c.taken = c.active
		return "", nil
	case "else":
		if len(p.conds) == 0 {
			return "", p.errorf("#else without #if")
		}
		c := &p.conds[len(p.conds)-1]
		if c.seenElse {
			return "", p.errorf("duplicate #else")
		}
		c.seenElse = true
		c.active = c.parent && !c.taken
		c.taken = true
		return "", nil
	case "endif":
		if len(p.conds) == 0 {
			return "", p.errorf("#endif without #if")
		}
		p.conds = p.conds[:len(p.conds)-1]
		return "", nil
	}

	if !p.active() {
		return "", nil
	}

	switch name {
	case "define":
		return "", p.define(rest)
	case "undef":
		id, _ := splitIdent(rest)
		delete(p.macros, id)
		return "", nil
	case "pragma", "line", "":
		return "", nil
	case "error":
		return "", p.errorf("#error %s", rest)
	case "include":
		return "", p.errorf("#include is not supported in effect source")
	default:
		return "", p.errorf("unknown directive #%s", name)
	}
}

func (p *preprocessor) push(cond bool) {
	parent := p.active()
	p.conds = append(p.conds, condState{
		active: parent && cond,
		taken:  parent && cond,
		parent: parent,
		line:   p.line,
	})
}

func (p *preprocessor) define(rest string) error {
	name, after := splitIdent(rest)
	if name == "" {
		return p.errorf("#define without a macro name")
	}
	m := &macro{name: name}
	if strings.HasPrefix(after, "(") {
		end := strings.IndexByte(after, ')')
		if end < 0 {
			return p.errorf("missing ')' in parameter list of macro %s", name)
		}
		m.function = true
		for _, param := range strings.Split(after[1:end], ",") {
			param = strings.TrimSpace(param)
			if param == "" {
				continue
			}
			m.params = append(m.params, param)
		}
		after = after[end+1:]
	}
	m.body = strings.TrimSpace(after)
	p.macros[name] = m
	return nil
}

// expand replaces macro invocations in s. Macros in hide are not expanded
// again, which stops recursive definitions.
func (p *preprocessor) expand(s string, hide map[string]bool) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case isDigit(c):
			j := i + 1
			for j < len(s) && (isAlphaNumeric(s[j]) || s[j] == '.' || s[j] == '_') {
				j++
			}
			sb.WriteString(s[i:j])
			i = j
		case isAlpha(c) || c == '_':
			j := i + 1
			for j < len(s) && (isAlphaNumeric(s[j]) || s[j] == '_') {
				j++
			}
			id := s[i:j]
			m, ok := p.macros[id]
			if !ok || hide[id] {
				sb.WriteString(id)
				i = j
				continue
			}
			if !m.function {
				text, err := p.expand(m.body, with(hide, id))
				if err != nil {
					return "", err
				}
				sb.WriteString(text)
				i = j
				continue
			}

			k := j
			for k < len(s) && (s[k] == ' ' || s[k] == '\t') {
				k++
			}
			if k >= len(s) || s[k] != '(' {
				sb.WriteString(id)
				i = j
				continue
			}
			args, next, err := p.macroArgs(s, k, id)
			if err != nil {
				return "", err
			}
			if len(args) != len(m.params) && !(len(m.params) == 0 && len(args) == 1 && strings.TrimSpace(args[0]) == "") {
				return "", p.errorf("macro %s expects %d arguments, got %d", id, len(m.params), len(args))
			}
			bound := make(map[string]string, len(m.params))
			for n, param := range m.params {
				v, err := p.expand(strings.TrimSpace(args[n]), hide)
				if err != nil {
					return "", err
				}
				bound[param] = v
			}
			text, err := p.expand(substitute(m.body, bound), with(hide, id))
			if err != nil {
				return "", err
			}
			sb.WriteString(text)
			i = next
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), nil
}

// macroArgs splits the argument list starting at the '(' at open and
// returns the offset after the closing ')'.
func (p *preprocessor) macroArgs(s string, open int, name string) ([]string, int, error) {
	var args []string
	depth := 0
	start := open + 1
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return append(args, s[start:i]), i + 1, nil
			}
		case ',':
			if depth == 1 {
				args = append(args, s[start:i])
				start = i + 1
			}
		}
	}
	return nil, 0, p.errorf("unterminated invocation of macro %s", name)
}

// substitute replaces whole-identifier parameter names in body.
func substitute(body string, bound map[string]string) string {
	if len(bound) == 0 {
		return body
	}
	var sb strings.Builder
	for i := 0; i < len(body); {
		c := body[i]
		if !isAlpha(c) && c != '_' {
			if isDigit(c) {
				j := i + 1
				for j < len(body) && (isAlphaNumeric(body[j]) || body[j] == '.') {
					j++
				}
				sb.WriteString(body[i:j])
				i = j
				continue
			}
			sb.WriteByte(c)
			i++
			continue
		}
		j := i + 1
		for j < len(body) && (isAlphaNumeric(body[j]) || body[j] == '_') {
			j++
		}
		if v, ok := bound[body[i:j]]; ok {
			sb.WriteString(v)
		} else {
			sb.WriteString(body[i:j])
		}
		i = j
	}
	return sb.String()
}

func with(hide map[string]bool, name string) map[string]bool {
	m := make(map[string]bool, len(hide)+1)
	for k := range hide {
		m[k] = true
	}
	m[name] = true
	return m
}

// splitIdent splits a leading identifier off s after skipping spaces.
func splitIdent(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	i := 0
	for i < len(s) && (isAlphaNumeric(s[i]) || s[i] == '_') {
		i++
	}
	return s[:i], s[i:]
}

// stripComments replaces comments with a space, keeping newlines inside
// block comments.
func stripComments(src string) string {
	var sb strings.Builder
	sb.Grow(len(src))
	for i := 0; i < len(src); i++ {
		switch {
		case src[i] == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			sb.WriteByte(' ')
			if i < len(src) {
				sb.WriteByte('\n')
			}
		case src[i] == '/' && i+1 < len(src) && src[i+1] == '*':
			i += 2
			for i < len(src) && !(src[i] == '*' && i+1 < len(src) && src[i+1] == '/') {
				if src[i] == '\n' {
					sb.WriteByte('\n')
				}
				i++
			}
			i++
			sb.WriteByte(' ')
		default:
			sb.WriteByte(src[i])
		}
	}
	return sb.String()
}

// eval evaluates a #if expression. Unknown identifiers are zero.
func (p *preprocessor) eval(expr string) (int64, error) {
	expr = p.replaceDefined(expr)
	expanded, err := p.expand(expr, nil)
	if err != nil {
		return 0, err
	}
	e := &condEval{p: p, s: expanded}
	v, err := e.ternary()
	if err != nil {
		return 0, err
	}
	e.skipSpace()
	if e.i < len(e.s) {
		return 0, p.errorf("unexpected %q in #if expression", e.s[e.i:])
	}
	return v, nil
}

func (p *preprocessor) replaceDefined(expr string) string {
	var sb strings.Builder
	for i := 0; i < len(expr); {
		if !strings.HasPrefix(expr[i:], "defined") || (i > 0 && (isAlphaNumeric(expr[i-1]) || expr[i-1] == '_')) {
			sb.WriteByte(expr[i])
			i++
			continue
		}
		rest := strings.TrimLeft(expr[i+len("defined"):], " \t")
		paren := strings.HasPrefix(rest, "(")
		if paren {
			rest = rest[1:]
		}
		name, after := splitIdent(rest)
		if name == "" {
			sb.WriteByte(expr[i])
			i++
			continue
		}
		if paren {
			after = strings.TrimLeft(after, " \t")
			after = strings.TrimPrefix(after, ")")
		}
		if _, ok := p.macros[name]; ok {
			sb.WriteString(" 1 ")
		} else {
			sb.WriteString(" 0 ")
		}
		i = len(expr) - len(after)
	}
	return sb.String()
}

// condEval is a recursive descent evaluator for integer #if expressions.
type condEval struct {
	p *preprocessor
	s string
	i int
}

func (e *condEval) skipSpace() {
	for e.i < len(e.s) && (e.s[e.i] == ' ' || e.s[e.i] == '\t' || e.s[e.i] == '\r') {
		e.i++
	}
}

func (e *condEval) accept(op string) bool {
	e.skipSpace()
	if !strings.HasPrefix(e.s[e.i:], op) {
		return false
	}
	// Do not split a longer operator.
	if len(op) == 1 && e.i+1 < len(e.s) {
		next := e.s[e.i+1]
		switch op {
		case "&", "|":
			if next == op[0] {
				return false
			}
		case "<", ">":
			if next == '=' || next == op[0] {
				return false
			}
		case "!", "=":
			if next == '=' {
				return false
			}
		}
	}
	e.i += len(op)
	return true
}

func (e *condEval) ternary() (int64, error) {
	c, err := e.binary(0)
	if err != nil {
		return 0, err
	}
	if !e.accept("?") {
		return c, nil
	}
	a, err := e.ternary()
	if err != nil {
		return 0, err
	}
	if !e.accept(":") {
		return 0, e.p.errorf("missing ':' in #if expression")
	}
	b, err := e.ternary()
	if err != nil {
		return 0, err
	}
	if c != 0 {
		return a, nil
	}
	return b, nil
}

var condLevels = [][]string{
	{"||"},
	{"&&"},
	{"|"},
	{"^"},
	{"&"},
	{"==", "!="},
	{"<=", ">=", "<", ">"},
	{"<<", ">>"},
	{"+", "-"},
	{"*", "/", "%"},
}

func (e *condEval) binary(level int) (int64, error) {
	if level == len(condLevels) {
		return e.unary()
	}
	left, err := e.binary(level + 1)
	if err != nil {
		return 0, err
	}
	for {
		op := ""
		for _, cand := range condLevels[level] {
			if e.accept(cand) {
				op = cand
				break
			}
		}
		if op == "" {
			return left, nil
		}
		right, err := e.binary(level + 1)
		if err != nil {
			return 0, err
		}
		left, err = e.apply(op, left, right)
		if err != nil {
			return 0, err
		}
	}
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (e *condEval) apply(op string, a, b int64) (int64, error) {
	switch op {
	case "||":
		return b2i(a != 0 || b != 0), nil
	case "&&":
		return b2i(a != 0 && b != 0), nil
	case "|":
		return a | b, nil
	case "^":
		return a ^ b, nil
	case "&":
		return a & b, nil
	case "==":
		return b2i(a == b), nil
	case "!=":
		return b2i(a != b), nil
	case "<":
		return b2i(a < b), nil
	case ">":
		return b2i(a > b), nil
	case "<=":
		return b2i(a <= b), nil
	case ">=":
		return b2i(a >= b), nil
	case "<<":
		return a << uint64(b), nil
	case ">>":
		return a >> uint64(b), nil
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/", "%":
		if b == 0 {
			return 0, e.p.errorf("division by zero in #if expression")
		}
		if op == "/" {
			return a / b, nil
		}
		return a % b, nil
	}
	return 0, fmt.Errorf("unknown operator %s", op)
}

func (e *condEval) unary() (int64, error) {
	switch {
	case e.accept("!"):
		v, err := e.unary()
		return b2i(v == 0), err
	case e.accept("-"):
		v, err := e.unary()
		return -v, err
	case e.accept("+"):
		return e.unary()
	case e.accept("~"):
		v, err := e.unary()
		return ^v, err
	case e.accept("("):
		v, err := e.ternary()
		if err != nil {
			return 0, err
		}
		if !e.accept(")") {
			return 0, e.p.errorf("missing ')' in #if expression")
		}
		return v, nil
	}

	e.skipSpace()
	start := e.i
	for e.i < len(e.s) && (isAlphaNumeric(e.s[e.i]) || e.s[e.i] == '_') {
		e.i++
	}
	tok := e.s[start:e.i]
	switch {
	case tok == "":
		return 0, e.p.errorf("expected a value in #if expression")
	case isDigit(tok[0]):
		tok = strings.TrimRight(tok, "uUlL")
		v, err := strconv.ParseInt(tok, 0, 64)
		if err != nil {
			return 0, e.p.errorf("invalid number %q in #if expression", tok)
		}
		return v, nil
	default:
		// Identifiers left after macro expansion evaluate to zero.
		return 0, nil
	}
}
