// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
)

// Lexer tokenizes preprocessed HLSL source code.
type Lexer struct {
	source string
	pos    int
	line   int
	column int
	start  int

	startLine   int
	startColumn int

	tokens []Token
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source string) *Lexer {
	// Estimate ~1 token per 5 characters of source.
	estTokens := len(source) / 5
	if estTokens < 16 {
		estTokens = 16
	}
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0, estTokens),
	}
}

// Tokenize returns all tokens from the source.
func (l *Lexer) Tokenize() ([]Token, error) {
	for !l.isAtEnd() {
		l.start = l.pos
		l.startLine = l.line
		l.startColumn = l.column
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}

	l.tokens = append(l.tokens, Token{
		Kind:   TokenEOF,
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens, nil
}

func (l *Lexer) scanToken() error {
	c := l.advance()

	switch c {
	case '(':
		l.addToken(TokenLeftParen)
	case ')':
		l.addToken(TokenRightParen)
	case '{':
		l.addToken(TokenLeftBrace)
	case '}':
		l.addToken(TokenRightBrace)
	case '[':
		l.addToken(TokenLeftBracket)
	case ']':
		l.addToken(TokenRightBracket)
	case ',':
		l.addToken(TokenComma)
	case ':':
		l.addToken(TokenColon)
	case ';':
		l.addToken(TokenSemicolon)
	case '?':
		l.addToken(TokenQuestion)
	case '~':
		l.addToken(TokenTilde)
	case '.':
		if isDigit(l.peek()) {
			l.number()
		} else {
			l.addToken(TokenDot)
		}
	case '%':
		l.addToken(l.pick('=', TokenPercentEqual, TokenPercent))
	case '^':
		l.addToken(l.pick('=', TokenCaretEqual, TokenCaret))
	case '*':
		l.addToken(l.pick('=', TokenStarEqual, TokenStar))
	case '=':
		l.addToken(l.pick('=', TokenEqualEqual, TokenEqual))
	case '!':
		l.addToken(l.pick('=', TokenBangEqual, TokenBang))
	case '+':
		if l.match('+') {
			l.addToken(TokenPlusPlus)
		} else {
			l.addToken(l.pick('=', TokenPlusEqual, TokenPlus))
		}
	case '-':
		if l.match('-') {
			l.addToken(TokenMinusMinus)
		} else {
			l.addToken(l.pick('=', TokenMinusEqual, TokenMinus))
		}
	case '/':
		switch {
		case l.match('/'):
			for l.peek() != '\n' && !l.isAtEnd() {
				l.advance()
			}
		case l.match('*'):
			if err := l.blockComment(); err != nil {
				return err
			}
		default:
			l.addToken(l.pick('=', TokenSlashEqual, TokenSlash))
		}
	case '<':
		if l.match('<') {
			l.addToken(l.pick('=', TokenLessLessEqual, TokenLessLess))
		} else {
			l.addToken(l.pick('=', TokenLessEqual, TokenLess))
		}
	case '>':
		if l.match('>') {
			l.addToken(l.pick('=', TokenGreaterGreaterEqual, TokenGreaterGreater))
		} else {
			l.addToken(l.pick('=', TokenGreaterEqual, TokenGreater))
		}
	case '&':
		if l.match('&') {
			l.addToken(TokenAmpAmp)
		} else {
			l.addToken(l.pick('=', TokenAmpEqual, TokenAmpersand))
		}
	case '|':
		if l.match('|') {
			l.addToken(TokenPipePipe)
		} else {
			l.addToken(l.pick('=', TokenPipeEqual, TokenPipe))
		}

	// Whitespace
	case ' ', '\r', '\t', '\f', '\v':
	case '\n':
		l.line++
		l.column = 1

	default:
		switch {
		case isDigit(c):
			l.number()
		case isAlpha(c) || c == '_':
			l.identifier()
		default:
			return NewSourceErrorf(Span{Start: Position{Line: l.startLine, Column: l.startColumn, Offset: l.start}},
				l.source, "unexpected character %q", c)
		}
	}

	return nil
}

func (l *Lexer) blockComment() error {
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return nil
		}
		if l.peek() == '\n' {
			l.advance()
			l.line++
			l.column = 1
			continue
		}
		l.advance()
	}
	return NewSourceError("unterminated block comment",
		Span{Start: Position{Line: l.startLine, Column: l.startColumn, Offset: l.start}}, l.source)
}

func (l *Lexer) number() {
	if l.source[l.start] == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		l.advance()
		for isHexDigit(l.peek()) {
			l.advance()
		}
		l.intSuffix()
		l.addToken(TokenIntLiteral)
		return
	}

	float := l.source[l.start] == '.'
	for isDigit(l.peek()) {
		l.advance()
	}
	if !float && l.peek() == '.' {
		float = true
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		float = true
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	switch l.peek() {
	case 'f', 'F', 'h', 'H':
		l.advance()
		l.addToken(TokenFloatLiteral)
		return
	}
	if float {
		l.addToken(TokenFloatLiteral)
		return
	}
	l.intSuffix()
	l.addToken(TokenIntLiteral)
}

func (l *Lexer) intSuffix() {
	for l.peek() == 'u' || l.peek() == 'U' || l.peek() == 'l' || l.peek() == 'L' {
		l.advance()
	}
}

func (l *Lexer) identifier() {
	for isAlphaNumeric(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	text := l.source[l.start:l.pos]
	kind, ok := keywords[text]
	if !ok {
		kind = TokenIdent
	}
	l.addToken(kind)
}

func (l *Lexer) addToken(kind TokenKind) {
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Lexeme: l.source[l.start:l.pos],
		Line:   l.startLine,
		Column: l.startColumn,
	})
}

// pick consumes expected and returns yes, or returns no.
func (l *Lexer) pick(expected byte, yes, no TokenKind) TokenKind {
	if l.match(expected) {
		return yes
	}
	return no
}

func (l *Lexer) advance() byte {
	c := l.source[l.pos]
	l.pos++
	l.column++
	return c
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.source[l.pos] != expected {
		return false
	}
	l.pos++
	l.column++
	return true
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}

// String implements fmt.Stringer for debugging token streams.
func (t Token) String() string {
	return fmt.Sprintf("%d:%d %s %q", t.Line, t.Column, t.Kind, t.Lexeme)
}
