// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"
)

// Parse preprocesses, tokenizes and parses src.
func Parse(name, src string, defines ...Define) (*Module, error) {
	pre, err := Preprocess(src, defines...)
	if err != nil {
		return nil, withName(err, name)
	}
	tokens, err := NewLexer(pre).Tokenize()
	if err != nil {
		return nil, withName(err, name)
	}
	p := NewParser(tokens, pre)
	p.name = name
	return p.Parse()
}

func withName(err error, name string) error {
	if se, ok := err.(*SourceError); ok && se.Span.Source == "" {
		se.Span.Source = name
	}
	return err
}

// Parser parses HLSL tokens into an AST.
type Parser struct {
	tokens  []Token
	current int
	errors  SourceErrors
	source  string
	name    string

	// types holds user struct and typedef names.
	types map[string]string
}

// NewParser creates a new parser for the given tokens. source is used for
// error context only.
func NewParser(tokens []Token, source string) *Parser {
	return &Parser{
		tokens: tokens,
		source: source,
		types:  make(map[string]string),
	}
}

// Parse parses the tokens and returns a Module AST.
func (p *Parser) Parse() (*Module, error) {
	module := &Module{}

	for !p.isAtEnd() {
		start := p.current
		decls, err := p.declaration()
		if err != nil {
			p.errors = append(p.errors, err)
			p.current = start
			p.synchronize()
			continue
		}
		module.Decls = append(module.Decls, decls...)
	}

	if len(p.errors) > 0 {
		return module, p.errors
	}
	return module, nil
}

func (p *Parser) errorAt(tok Token, format string, args ...any) *SourceError {
	span := tok.span()
	span.Source = p.name
	return NewSourceErrorf(span, p.source, format, args...)
}

// declaration parses a top-level declaration. Variable declarations with
// several declarators yield several decls.
func (p *Parser) declaration() ([]Decl, *SourceError) {
	p.skipAttributes()

	switch {
	case p.match(TokenSemicolon):
		return nil, nil
	case p.check(TokenStruct):
		s, err := p.structDecl()
		if err != nil {
			return nil, err
		}
		return []Decl{s}, nil
	case p.check(TokenCbuffer):
		c, err := p.cbufferDecl()
		if err != nil {
			return nil, err
		}
		return []Decl{c}, nil
	case p.check(TokenIdent) && p.peek().Lexeme == "typedef":
		return nil, p.typedef()
	}

	start := p.peek()
	mods := p.modifiers()
	typ, err := p.typeName()
	if err != nil {
		return nil, err
	}
	if !p.check(TokenIdent) {
		return nil, p.errorAt(p.peek(), "expected declaration name after '%s', got %s", typ, p.peek().Kind)
	}
	name := p.advance()

	if p.check(TokenLeftParen) {
		f, err := p.functionDecl(typ, name)
		if err != nil {
			return nil, err
		}
		return []Decl{f}, nil
	}

	vars, err := p.declarators(typ, name, mods, start)
	if err != nil {
		return nil, err
	}
	decls := make([]Decl, len(vars))
	for i, v := range vars {
		decls[i] = v
	}
	return decls, nil
}

type declModifiers struct {
	static, constant, uniform bool
}

// modifiers consumes storage and layout modifiers.
func (p *Parser) modifiers() declModifiers {
	var m declModifiers
	for {
		switch k := p.peek().Kind; {
		case k == TokenStatic:
			m.static = true
		case k == TokenConst:
			m.constant = true
		case k == TokenUniform:
			m.uniform = true
		case isDroppedModifier(k):
		default:
			return m
		}
		p.advance()
	}
}

// skipAttributes skips [attr] and [attr(args)] groups.
func (p *Parser) skipAttributes() {
	for p.check(TokenLeftBracket) && p.peekAt(1).Kind == TokenIdent {
		depth := 0
		for !p.isAtEnd() {
			tok := p.advance()
			if tok.Kind == TokenLeftBracket {
				depth++
			} else if tok.Kind == TokenRightBracket {
				depth--
				if depth == 0 {
					break
				}
			}
		}
	}
}

// isTypeName reports whether name denotes a type.
func (p *Parser) isTypeName(name string) bool {
	if _, ok := p.types[name]; ok {
		return true
	}
	return IsBuiltinType(name) || name == "vector" || name == "matrix"
}

// typeName parses a type and returns its canonical name. Template forms
// vector<float, 3> and matrix<float, 4, 4> become float3 and float4x4.
func (p *Parser) typeName() (string, *SourceError) {
	tok := p.peek()
	if tok.Kind != TokenIdent || !p.isTypeName(tok.Lexeme) {
		return "", p.errorAt(tok, "expected type, got '%s'", tok.Lexeme)
	}
	p.advance()

	name := tok.Lexeme
	if alias, ok := p.types[name]; ok && alias != "" {
		name = alias
	}
	if (name != "vector" && name != "matrix") || !p.match(TokenLess) {
		return name, nil
	}

	var parts []string
	for !p.check(TokenGreater) && !p.isAtEnd() {
		parts = append(parts, p.advance().Lexeme)
		p.match(TokenComma)
	}
	if err := p.expectErr(TokenGreater); err != nil {
		return "", err
	}
	switch {
	case name == "vector" && len(parts) == 2:
		return parts[0] + parts[1], nil
	case name == "matrix" && len(parts) == 3:
		return parts[0] + parts[1] + "x" + parts[2], nil
	}
	return "", p.errorAt(tok, "malformed %s template", name)
}

func (p *Parser) typedef() *SourceError {
	p.advance() // consume 'typedef'
	p.modifiers()
	typ, err := p.typeName()
	if err != nil {
		return err
	}
	if !p.check(TokenIdent) {
		return p.errorAt(p.peek(), "expected typedef name")
	}
	p.types[p.advance().Lexeme] = typ
	return p.expectErr(TokenSemicolon)
}

// structDecl parses a struct declaration.
func (p *Parser) structDecl() (*StructDecl, *SourceError) {
	start := p.advance() // consume 'struct'

	if !p.check(TokenIdent) {
		return nil, p.errorAt(p.peek(), "expected struct name")
	}
	name := p.advance()
	p.types[name.Lexeme] = ""

	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}

	members := make([]*StructMember, 0, 8)
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		p.modifiers()
		mstart := p.peek()
		typ, err := p.typeName()
		if err != nil {
			return nil, err
		}
		for {
			if !p.check(TokenIdent) {
				return nil, p.errorAt(p.peek(), "expected member name")
			}
			m := &StructMember{Name: p.advance().Lexeme, Type: typ, Span: mstart.span()}
			if m.ArraySize, err = p.arraySuffix(); err != nil {
				return nil, err
			}
			if p.match(TokenColon) {
				if m.Semantic, _, err = p.semantic(); err != nil {
					return nil, err
				}
			}
			members = append(members, m)
			if !p.match(TokenComma) {
				break
			}
		}
		if err := p.expectErr(TokenSemicolon); err != nil {
			return nil, err
		}
	}

	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}
	p.match(TokenSemicolon)

	return &StructDecl{Name: name.Lexeme, Members: members, Span: start.span()}, nil
}

func (p *Parser) cbufferDecl() (*CbufferDecl, *SourceError) {
	start := p.advance() // consume 'cbuffer'
	if !p.check(TokenIdent) {
		return nil, p.errorAt(p.peek(), "expected cbuffer name")
	}
	c := &CbufferDecl{Name: p.advance().Lexeme, Span: start.span()}
	if p.match(TokenColon) {
		_, reg, err := p.semantic()
		if err != nil {
			return nil, err
		}
		c.Register = reg
	}
	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		vstart := p.peek()
		mods := p.modifiers()
		typ, err := p.typeName()
		if err != nil {
			return nil, err
		}
		if !p.check(TokenIdent) {
			return nil, p.errorAt(p.peek(), "expected variable name")
		}
		vars, err := p.declarators(typ, p.advance(), mods, vstart)
		if err != nil {
			return nil, err
		}
		for _, v := range vars {
			v.Uniform = true
		}
		c.Vars = append(c.Vars, vars...)
	}
	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}
	p.match(TokenSemicolon)
	return c, nil
}

// semantic parses the part after ':' in a declaration. It returns either
// a semantic name or the text of a register/packoffset binding.
func (p *Parser) semantic() (sem, register string, err *SourceError) {
	if !p.check(TokenIdent) {
		return "", "", p.errorAt(p.peek(), "expected semantic after ':'")
	}
	tok := p.advance()
	if (tok.Lexeme != "register" && tok.Lexeme != "packoffset") || !p.check(TokenLeftParen) {
		return tok.Lexeme, "", nil
	}
	var sb strings.Builder
	sb.WriteString(tok.Lexeme)
	for !p.isAtEnd() {
		t := p.advance()
		sb.WriteString(t.Lexeme)
		if t.Kind == TokenRightParen {
			return "", sb.String(), nil
		}
	}
	return "", "", p.errorAt(tok, "unterminated %s binding", tok.Lexeme)
}

func (p *Parser) arraySuffix() (Expr, *SourceError) {
	if !p.match(TokenLeftBracket) {
		return nil, nil
	}
	if p.match(TokenRightBracket) {
		return nil, nil
	}
	size, err := p.expression()
	if err != nil {
		return nil, err
	}
	return size, p.expectErr(TokenRightBracket)
}

// declarators parses the rest of a variable declaration after its first
// name, including further comma separated declarators and the ';'.
func (p *Parser) declarators(typ string, name Token, mods declModifiers, start Token) ([]*VarDecl, *SourceError) {
	var vars []*VarDecl
	for {
		v := &VarDecl{
			Name:    name.Lexeme,
			Type:    typ,
			Static:  mods.static,
			Const:   mods.constant,
			Uniform: mods.uniform,
			Span:    start.span(),
		}
		var err *SourceError
		if v.ArraySize, err = p.arraySuffix(); err != nil {
			return nil, err
		}
		for p.match(TokenColon) {
			sem, reg, err := p.semantic()
			if err != nil {
				return nil, err
			}
			if reg != "" {
				v.Register = reg
			} else {
				v.Semantic = sem
			}
		}
		if p.match(TokenEqual) {
			if p.check(TokenLeftBrace) {
				v.Init, err = p.initList()
			} else {
				v.Init, err = p.assignment()
			}
			if err != nil {
				return nil, err
			}
		}
		vars = append(vars, v)

		if !p.match(TokenComma) {
			break
		}
		if !p.check(TokenIdent) {
			return nil, p.errorAt(p.peek(), "expected variable name after ','")
		}
		name = p.advance()
	}
	return vars, p.expectErr(TokenSemicolon)
}

func (p *Parser) initList() (Expr, *SourceError) {
	start := p.advance() // consume '{'
	list := &InitListExpr{Span: start.span()}
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		var e Expr
		var err *SourceError
		if p.check(TokenLeftBrace) {
			e, err = p.initList()
		} else {
			e, err = p.assignment()
		}
		if err != nil {
			return nil, err
		}
		list.Elems = append(list.Elems, e)
		if !p.match(TokenComma) {
			break
		}
	}
	return list, p.expectErr(TokenRightBrace)
}

// functionDecl parses the parameter list, semantic and body of a
// function whose return type and name are already consumed.
func (p *Parser) functionDecl(ret string, name Token) (*FunctionDecl, *SourceError) {
	p.advance() // consume '('

	f := &FunctionDecl{Name: name.Lexeme, ReturnType: ret, Span: name.span()}
	if p.check(TokenIdent) && p.peek().Lexeme == "void" && p.peekAt(1).Kind == TokenRightParen {
		p.advance()
	}
	for !p.check(TokenRightParen) && !p.isAtEnd() {
		param, err := p.parameter()
		if err != nil {
			return nil, err
		}
		f.Params = append(f.Params, param)
		if !p.match(TokenComma) {
			break
		}
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	if p.match(TokenColon) {
		sem, _, err := p.semantic()
		if err != nil {
			return nil, err
		}
		f.Semantic = sem
	}

	if p.match(TokenSemicolon) {
		return f, nil
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	f.Body = body
	return f, nil
}

// parameter parses a function parameter.
func (p *Parser) parameter() (*Parameter, *SourceError) {
	start := p.peek()
	param := &Parameter{Span: start.span()}
qualifiers:
	for {
		switch k := p.peek().Kind; {
		case k == TokenIn:
		case k == TokenOut:
			param.Qualifier = ParamOut
		case k == TokenInout:
			param.Qualifier = ParamInOut
		case k == TokenUniform:
			param.Qualifier = ParamUniform
		case k == TokenConst || isDroppedModifier(k):
		default:
			break qualifiers
		}
		p.advance()
	}

	t, err := p.typeName()
	if err != nil {
		return nil, err
	}
	param.Type = t
	if !p.check(TokenIdent) {
		return nil, p.errorAt(p.peek(), "expected parameter name")
	}
	param.Name = p.advance().Lexeme
	if param.ArraySize, err = p.arraySuffix(); err != nil {
		return nil, err
	}
	if p.match(TokenColon) {
		if param.Semantic, _, err = p.semantic(); err != nil {
			return nil, err
		}
	}
	if p.match(TokenEqual) {
		if param.Default, err = p.assignment(); err != nil {
			return nil, err
		}
	}
	return param, nil
}

// block parses a block statement.
func (p *Parser) block() (*BlockStmt, *SourceError) {
	start := p.peek()
	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}

	stmts := make([]Stmt, 0, 4)
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}

	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}

	return &BlockStmt{Statements: stmts, Span: start.span()}, nil
}

// statement parses a statement. An empty statement yields nil.
func (p *Parser) statement() (Stmt, *SourceError) {
	p.skipAttributes()
	tok := p.peek()

	switch tok.Kind {
	case TokenSemicolon:
		p.advance()
		return nil, nil
	case TokenLeftBrace:
		return p.block()
	case TokenIf:
		return p.ifStmt()
	case TokenFor:
		return p.forStmt()
	case TokenWhile:
		return p.whileStmt()
	case TokenDo:
		return p.doWhileStmt()
	case TokenReturn:
		return p.returnStmt()
	case TokenBreak:
		p.advance()
		return &BreakStmt{Span: tok.span()}, p.expectErr(TokenSemicolon)
	case TokenContinue:
		p.advance()
		return &ContinueStmt{Span: tok.span()}, p.expectErr(TokenSemicolon)
	case TokenDiscard:
		p.advance()
		return &DiscardStmt{Span: tok.span()}, p.expectErr(TokenSemicolon)
	}

	if p.startsDeclaration() {
		return p.declStmt()
	}

	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &ExprStmt{Expr: expr, Span: tok.span()}, p.expectErr(TokenSemicolon)
}

func (p *Parser) startsDeclaration() bool {
	k := p.peek().Kind
	if k == TokenStatic || k == TokenConst || k == TokenUniform || isDroppedModifier(k) {
		return true
	}
	if k != TokenIdent || !p.isTypeName(p.peek().Lexeme) {
		return false
	}
	next := p.peekAt(1).Kind
	return next == TokenIdent || (next == TokenLess && (p.peek().Lexeme == "vector" || p.peek().Lexeme == "matrix"))
}

func (p *Parser) declStmt() (*DeclStmt, *SourceError) {
	start := p.peek()
	mods := p.modifiers()
	typ, err := p.typeName()
	if err != nil {
		return nil, err
	}
	if !p.check(TokenIdent) {
		return nil, p.errorAt(p.peek(), "expected variable name")
	}
	vars, err := p.declarators(typ, p.advance(), mods, start)
	if err != nil {
		return nil, err
	}
	return &DeclStmt{Vars: vars, Span: start.span()}, nil
}

func (p *Parser) ifStmt() (*IfStmt, *SourceError) {
	start := p.advance() // consume 'if'
	cond, err := p.parenExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	s := &IfStmt{Condition: cond, Body: body, Span: start.span()}
	if p.match(TokenElse) {
		if s.Else, err = p.statement(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (p *Parser) forStmt() (*ForStmt, *SourceError) {
	start := p.advance() // consume 'for'
	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	s := &ForStmt{Span: start.span()}
	var err *SourceError
	if s.Init, err = p.statement(); err != nil {
		return nil, err
	}
	if !p.check(TokenSemicolon) {
		if s.Condition, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if err := p.expectErr(TokenSemicolon); err != nil {
		return nil, err
	}
	if !p.check(TokenRightParen) {
		if s.Update, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}
	if s.Body, err = p.statement(); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Parser) whileStmt() (*WhileStmt, *SourceError) {
	start := p.advance() // consume 'while'
	cond, err := p.parenExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Condition: cond, Body: body, Span: start.span()}, nil
}

func (p *Parser) doWhileStmt() (*DoWhileStmt, *SourceError) {
	start := p.advance() // consume 'do'
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenWhile); err != nil {
		return nil, err
	}
	cond, err := p.parenExpr()
	if err != nil {
		return nil, err
	}
	return &DoWhileStmt{Body: body, Condition: cond, Span: start.span()}, p.expectErr(TokenSemicolon)
}

func (p *Parser) returnStmt() (*ReturnStmt, *SourceError) {
	start := p.advance() // consume 'return'
	s := &ReturnStmt{Span: start.span()}
	if !p.check(TokenSemicolon) {
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		s.Value = v
	}
	return s, p.expectErr(TokenSemicolon)
}

func (p *Parser) parenExpr() (Expr, *SourceError) {
	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	return e, p.expectErr(TokenRightParen)
}

// Expressions

func (p *Parser) expression() (Expr, *SourceError) {
	return p.assignment()
}

func (p *Parser) assignment() (Expr, *SourceError) {
	target, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if !p.isAssignOp(p.peek().Kind) {
		return target, nil
	}
	op := p.advance()
	value, err := p.assignment()
	if err != nil {
		return nil, err
	}
	return &AssignExpr{Op: op.Kind, Target: target, Value: value, Span: op.span()}, nil
}

func (p *Parser) ternary() (Expr, *SourceError) {
	cond, err := p.binary(0)
	if err != nil {
		return nil, err
	}
	if !p.check(TokenQuestion) {
		return cond, nil
	}
	q := p.advance()
	then, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenColon); err != nil {
		return nil, err
	}
	els, err := p.assignment()
	if err != nil {
		return nil, err
	}
	return &TernaryExpr{Condition: cond, Then: then, Else: els, Span: q.span()}, nil
}

// binaryLevels lists binary operators from lowest to highest precedence.
var binaryLevels = [][]TokenKind{
	{TokenPipePipe},
	{TokenAmpAmp},
	{TokenPipe},
	{TokenCaret},
	{TokenAmpersand},
	{TokenEqualEqual, TokenBangEqual},
	{TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual},
	{TokenLessLess, TokenGreaterGreater},
	{TokenPlus, TokenMinus},
	{TokenStar, TokenSlash, TokenPercent},
}

func (p *Parser) binary(level int) (Expr, *SourceError) {
	if level == len(binaryLevels) {
		return p.unary()
	}
	left, err := p.binary(level + 1)
	if err != nil {
		return nil, err
	}
	for p.checkAny(binaryLevels[level]) {
		op := p.advance()
		right, err := p.binary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op.Kind, Right: right, Span: op.span()}
	}
	return left, nil
}

func (p *Parser) unary() (Expr, *SourceError) {
	tok := p.peek()
	switch tok.Kind {
	case TokenMinus, TokenPlus, TokenBang, TokenTilde, TokenPlusPlus, TokenMinusMinus:
		p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: tok.Kind, Operand: operand, Span: tok.span()}, nil
	case TokenLeftParen:
		if next := p.peekAt(1); next.Kind == TokenIdent && p.isTypeName(next.Lexeme) && p.isCast() {
			p.advance() // consume '('
			typ, err := p.typeName()
			if err != nil {
				return nil, err
			}
			if err := p.expectErr(TokenRightParen); err != nil {
				return nil, err
			}
			operand, err := p.unary()
			if err != nil {
				return nil, err
			}
			return &CastExpr{Type: typ, Expr: operand, Span: tok.span()}, nil
		}
	}
	return p.postfix()
}

// isCast reports whether the '(' at the cursor opens a cast: a type name
// (possibly a template) followed by ')'.
func (p *Parser) isCast() bool {
	i := 2
	if p.peekAt(i).Kind == TokenLess {
		for k := p.peekAt(i).Kind; k != TokenGreater && k != TokenEOF; k = p.peekAt(i).Kind {
			i++
		}
		i++
	}
	return p.peekAt(i).Kind == TokenRightParen
}

func (p *Parser) postfix() (Expr, *SourceError) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		switch tok.Kind {
		case TokenDot:
			p.advance()
			if !p.check(TokenIdent) {
				return nil, p.errorAt(p.peek(), "expected member name")
			}
			member := p.advance()
			if p.check(TokenLeftParen) {
				args, err := p.arguments()
				if err != nil {
					return nil, err
				}
				expr = &MethodCallExpr{Receiver: expr, Method: member.Lexeme, Args: args, Span: member.span()}
				continue
			}
			expr = &MemberExpr{Expr: expr, Member: member.Lexeme, Span: member.span()}
		case TokenLeftBracket:
			p.advance()
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expectErr(TokenRightBracket); err != nil {
				return nil, err
			}
			expr = &IndexExpr{Expr: expr, Index: index, Span: tok.span()}
		case TokenPlusPlus, TokenMinusMinus:
			p.advance()
			expr = &UnaryExpr{Op: tok.Kind, Operand: expr, Postfix: true, Span: tok.span()}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) arguments() ([]Expr, *SourceError) {
	p.advance() // consume '('
	args := make([]Expr, 0, 4)
	for !p.check(TokenRightParen) && !p.isAtEnd() {
		arg, err := p.assignment()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(TokenComma) {
			break
		}
	}
	return args, p.expectErr(TokenRightParen)
}

func (p *Parser) primary() (Expr, *SourceError) {
	tok := p.peek()

	switch tok.Kind {
	case TokenIntLiteral, TokenFloatLiteral:
		p.advance()
		return &Literal{Kind: tok.Kind, Value: tok.Lexeme, Span: tok.span()}, nil

	case TokenTrue, TokenFalse:
		p.advance()
		return &Literal{Kind: TokenBoolLiteral, Value: tok.Lexeme, Span: tok.span()}, nil

	case TokenIdent:
		if p.isTypeName(tok.Lexeme) && p.peekAt(1).Kind == TokenLess {
			typ, err := p.typeName()
			if err != nil {
				return nil, err
			}
			if !p.check(TokenLeftParen) {
				return nil, p.errorAt(p.peek(), "expected '(' after type %s", typ)
			}
			args, err := p.arguments()
			if err != nil {
				return nil, err
			}
			return &CallExpr{Func: typ, Args: args, Span: tok.span()}, nil
		}
		p.advance()
		if p.check(TokenLeftParen) {
			args, err := p.arguments()
			if err != nil {
				return nil, err
			}
			name := tok.Lexeme
			if alias, ok := p.types[name]; ok && alias != "" {
				name = alias
			}
			return &CallExpr{Func: name, Args: args, Span: tok.span()}, nil
		}
		return &Ident{Name: tok.Lexeme, Span: tok.span()}, nil

	case TokenLeftParen:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expectErr(TokenRightParen); err != nil {
			return nil, err
		}
		return &ParenExpr{Expr: expr, Span: tok.span()}, nil

	case TokenLeftBrace:
		return p.initList()
	}

	return nil, p.errorAt(tok, "unexpected token %s in expression", describe(tok))
}

func describe(tok Token) string {
	if tok.Lexeme != "" {
		return fmt.Sprintf("'%s'", tok.Lexeme)
	}
	return tok.Kind.String()
}

// Helper methods

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) peekAt(n int) Token {
	if p.current+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+n]
}

func (p *Parser) previous() Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == TokenEOF
}

func (p *Parser) check(kind TokenKind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *Parser) checkAny(kinds []TokenKind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

func (p *Parser) match(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectErr(kind TokenKind) *SourceError {
	if p.check(kind) {
		p.advance()
		return nil
	}
	return p.errorAt(p.peek(), "expected '%s', got %s", kind, describe(p.peek()))
}

// synchronize skips the top-level declaration starting at the cursor,
// including a balanced body.
func (p *Parser) synchronize() {
	depth := 0
	for !p.isAtEnd() {
		tok := p.advance()
		switch tok.Kind {
		case TokenLeftBrace:
			depth++
		case TokenRightBrace:
			depth--
			if depth <= 0 {
				p.match(TokenSemicolon)
				return
			}
		case TokenSemicolon:
			if depth == 0 {
				return
			}
		}
	}
}

func (p *Parser) isAssignOp(kind TokenKind) bool {
	switch kind {
	case TokenEqual, TokenPlusEqual, TokenMinusEqual, TokenStarEqual,
		TokenSlashEqual, TokenPercentEqual, TokenAmpEqual, TokenPipeEqual,
		TokenCaretEqual, TokenLessLessEqual, TokenGreaterGreaterEqual:
		return true
	}
	return false
}
