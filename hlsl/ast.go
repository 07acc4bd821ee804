// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

// Module is one parsed HLSL translation unit.
type Module struct {
	// Decls holds the top-level declarations in source order.
	Decls []Decl
}

// Structs returns the struct declarations in order.
func (m *Module) Structs() []*StructDecl {
	var out []*StructDecl
	for _, d := range m.Decls {
		if s, ok := d.(*StructDecl); ok {
			out = append(out, s)
		}
	}
	return out
}

// Struct returns the struct named name.
func (m *Module) Struct(name string) *StructDecl {
	for _, d := range m.Decls {
		if s, ok := d.(*StructDecl); ok && s.Name == name {
			return s
		}
	}
	return nil
}

// Function returns the function definition named name. Prototypes are
// skipped.
func (m *Module) Function(name string) *FunctionDecl {
	for _, d := range m.Decls {
		if f, ok := d.(*FunctionDecl); ok && f.Name == name && f.Body != nil {
			return f
		}
	}
	return nil
}

// Globals returns the global variable declarations in order.
func (m *Module) Globals() []*VarDecl {
	var out []*VarDecl
	for _, d := range m.Decls {
		if v, ok := d.(*VarDecl); ok {
			out = append(out, v)
		}
	}
	return out
}

// Node is the base interface for all AST nodes.
type Node interface {
	Pos() Span
}

// Decl is the interface for declarations.
type Decl interface {
	Node
	declNode()
}

// Stmt is the interface for statements.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is the interface for expressions.
type Expr interface {
	Node
	exprNode()
}

// StructDecl represents a struct declaration.
type StructDecl struct {
	Name    string
	Members []*StructMember
	Span    Span
}

func (s *StructDecl) Pos() Span { return s.Span }
func (s *StructDecl) declNode() {}

// StructMember represents a struct member.
type StructMember struct {
	Name      string
	Type      string
	ArraySize Expr
	Semantic  string
	Span      Span
}

// FunctionDecl is a function definition, or a prototype when Body is nil.
type FunctionDecl struct {
	Name       string
	ReturnType string
	Params     []*Parameter
	Semantic   string
	Body       *BlockStmt
	Span       Span
}

func (f *FunctionDecl) Pos() Span { return f.Span }
func (f *FunctionDecl) declNode() {}

// ParamQualifier is the direction of a function parameter.
type ParamQualifier uint8

const (
	ParamIn ParamQualifier = iota
	ParamOut
	ParamInOut
	ParamUniform
)

// Parameter represents a function parameter.
type Parameter struct {
	Qualifier ParamQualifier
	Name      string
	Type      string
	ArraySize Expr
	Semantic  string
	Default   Expr
	Span      Span
}

// VarDecl declares one global or local variable.
type VarDecl struct {
	Name      string
	Type      string
	ArraySize Expr
	Static    bool
	Const     bool
	Uniform   bool
	Semantic  string
	Register  string
	Init      Expr
	Span      Span
}

func (v *VarDecl) Pos() Span { return v.Span }
func (v *VarDecl) declNode() {}

// CbufferDecl groups uniform variables.
type CbufferDecl struct {
	Name     string
	Register string
	Vars     []*VarDecl
	Span     Span
}

func (c *CbufferDecl) Pos() Span { return c.Span }
func (c *CbufferDecl) declNode() {}

// Statements

// BlockStmt represents a block of statements.
type BlockStmt struct {
	Statements []Stmt
	Span       Span
}

func (b *BlockStmt) Pos() Span { return b.Span }
func (b *BlockStmt) stmtNode() {}

// DeclStmt declares local variables; `float a, b = 1;` yields two Vars.
type DeclStmt struct {
	Vars []*VarDecl
	Span Span
}

func (d *DeclStmt) Pos() Span { return d.Span }
func (d *DeclStmt) stmtNode() {}

// ExprStmt represents an expression statement.
type ExprStmt struct {
	Expr Expr
	Span Span
}

func (e *ExprStmt) Pos() Span { return e.Span }
func (e *ExprStmt) stmtNode() {}

// IfStmt represents an if statement.
type IfStmt struct {
	Condition Expr
	Body      Stmt
	Else      Stmt // nil when absent
	Span      Span
}

func (i *IfStmt) Pos() Span { return i.Span }
func (i *IfStmt) stmtNode() {}

// ForStmt represents a for loop. Any part may be nil.
type ForStmt struct {
	Init      Stmt
	Condition Expr
	Update    Expr
	Body      Stmt
	Span      Span
}

func (f *ForStmt) Pos() Span { return f.Span }
func (f *ForStmt) stmtNode() {}

// WhileStmt represents a while loop.
type WhileStmt struct {
	Condition Expr
	Body      Stmt
	Span      Span
}

func (w *WhileStmt) Pos() Span { return w.Span }
func (w *WhileStmt) stmtNode() {}

// DoWhileStmt represents a do-while loop.
type DoWhileStmt struct {
	Body      Stmt
	Condition Expr
	Span      Span
}

func (d *DoWhileStmt) Pos() Span { return d.Span }
func (d *DoWhileStmt) stmtNode() {}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	Value Expr // nil for bare return
	Span  Span
}

func (r *ReturnStmt) Pos() Span { return r.Span }
func (r *ReturnStmt) stmtNode() {}

// BreakStmt represents a break statement.
type BreakStmt struct {
	Span Span
}

func (b *BreakStmt) Pos() Span { return b.Span }
func (b *BreakStmt) stmtNode() {}

// ContinueStmt represents a continue statement.
type ContinueStmt struct {
	Span Span
}

func (c *ContinueStmt) Pos() Span { return c.Span }
func (c *ContinueStmt) stmtNode() {}

// DiscardStmt represents a discard statement.
type DiscardStmt struct {
	Span Span
}

func (d *DiscardStmt) Pos() Span { return d.Span }
func (d *DiscardStmt) stmtNode() {}

// Expressions

// Ident represents an identifier.
type Ident struct {
	Name string
	Span Span
}

func (i *Ident) Pos() Span { return i.Span }
func (i *Ident) exprNode() {}

// Literal represents a literal value as written.
type Literal struct {
	Kind  TokenKind
	Value string
	Span  Span
}

func (l *Literal) Pos() Span { return l.Span }
func (l *Literal) exprNode() {}

// BinaryExpr represents a binary expression.
type BinaryExpr struct {
	Left  Expr
	Op    TokenKind
	Right Expr
	Span  Span
}

func (b *BinaryExpr) Pos() Span { return b.Span }
func (b *BinaryExpr) exprNode() {}

// UnaryExpr represents a prefix or postfix unary expression.
type UnaryExpr struct {
	Op      TokenKind
	Operand Expr
	Postfix bool
	Span    Span
}

func (u *UnaryExpr) Pos() Span { return u.Span }
func (u *UnaryExpr) exprNode() {}

// AssignExpr represents a plain or compound assignment.
type AssignExpr struct {
	Op     TokenKind
	Target Expr
	Value  Expr
	Span   Span
}

func (a *AssignExpr) Pos() Span { return a.Span }
func (a *AssignExpr) exprNode() {}

// TernaryExpr represents cond ? a : b.
type TernaryExpr struct {
	Condition Expr
	Then      Expr
	Else      Expr
	Span      Span
}

func (t *TernaryExpr) Pos() Span { return t.Span }
func (t *TernaryExpr) exprNode() {}

// CallExpr is a function call or type constructor.
type CallExpr struct {
	Func string
	Args []Expr
	Span Span
}

func (c *CallExpr) Pos() Span { return c.Span }
func (c *CallExpr) exprNode() {}

// MethodCallExpr is an object method call such as tex.Sample(s, uv).
type MethodCallExpr struct {
	Receiver Expr
	Method   string
	Args     []Expr
	Span     Span
}

func (m *MethodCallExpr) Pos() Span { return m.Span }
func (m *MethodCallExpr) exprNode() {}

// MemberExpr is a field access or swizzle.
type MemberExpr struct {
	Expr   Expr
	Member string
	Span   Span
}

func (m *MemberExpr) Pos() Span { return m.Span }
func (m *MemberExpr) exprNode() {}

// IndexExpr represents array or vector indexing.
type IndexExpr struct {
	Expr  Expr
	Index Expr
	Span  Span
}

func (i *IndexExpr) Pos() Span { return i.Span }
func (i *IndexExpr) exprNode() {}

// CastExpr is a C-style cast such as (float3)x.
type CastExpr struct {
	Type string
	Expr Expr
	Span Span
}

func (c *CastExpr) Pos() Span { return c.Span }
func (c *CastExpr) exprNode() {}

// ParenExpr keeps explicit parentheses from the source.
type ParenExpr struct {
	Expr Expr
	Span Span
}

func (p *ParenExpr) Pos() Span { return p.Span }
func (p *ParenExpr) exprNode() {}

// InitListExpr is a brace initializer such as {1, 2, 3}.
type InitListExpr struct {
	Elems []Expr
	Span  Span
}

func (i *InitListExpr) Pos() Span { return i.Span }
func (i *InitListExpr) exprNode() {}
