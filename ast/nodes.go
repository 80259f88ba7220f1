package ast

import "modernc.org/token"

// Node is the interface for all AST nodes. Every node carries its syntactic
// kind and an optional source position (token.NoPos when untracked).
type Node interface {
	Kind() Kind
	NodePos() token.Pos
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt()
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr()
}

// Pattern is the interface for binding targets. An Identifier is both an
// Expr and a Pattern.
type Pattern interface {
	Node
	pattern()
}

// Loc is the source position annotation embedded in every node.
type Loc struct {
	Pos token.Pos
}

func (l Loc) NodePos() token.Pos { return l.Pos }

// Program is the root node of one source unit.
type Program struct {
	Loc
	Body []Stmt
	Path string      // display path of the source file
	File *token.File // position table; nil when positions are not tracked
}

func (p *Program) Kind() Kind { return KindProgram }

// Position converts pos to a file/line/column position. It returns the zero
// Position when positions are not tracked.
func (p *Program) Position(pos token.Pos) token.Position {
	if p.File == nil || !pos.IsValid() {
		return token.Position{Filename: p.Path}
	}
	return p.File.Position(pos)
}

// --- Statements ---

// VarDecl represents var/let/const declarations.
type VarDecl struct {
	Loc
	Keyword string // "var", "let" or "const"
	Decls   []*Declarator
}

func (v *VarDecl) Kind() Kind { return KindVarDecl }
func (v *VarDecl) stmt()      {}

// Declarator is one target = init pair of a VarDecl.
type Declarator struct {
	Loc
	Target Pattern
	Init   Expr // nil when there is no initializer
}

func (d *Declarator) Kind() Kind { return KindDeclarator }

// FuncDecl represents function name(params) body.
type FuncDecl struct {
	Loc
	Func *Function
}

func (f *FuncDecl) Kind() Kind { return KindFuncDecl }
func (f *FuncDecl) stmt()      {}

// ReturnStmt represents return [expr].
type ReturnStmt struct {
	Loc
	Value Expr // nil if bare return
}

func (r *ReturnStmt) Kind() Kind { return KindReturnStmt }
func (r *ReturnStmt) stmt()      {}

// ExprStmt is a statement that is just an expression.
type ExprStmt struct {
	Loc
	Expression Expr
}

func (e *ExprStmt) Kind() Kind { return KindExprStmt }
func (e *ExprStmt) stmt()      {}

// BlockStmt represents { body }.
type BlockStmt struct {
	Loc
	Body []Stmt
}

func (b *BlockStmt) Kind() Kind { return KindBlockStmt }
func (b *BlockStmt) stmt()      {}

// IfStmt represents if (test) cons [else alt].
type IfStmt struct {
	Loc
	Test Expr
	Cons Stmt
	Alt  Stmt // nil without else
}

func (i *IfStmt) Kind() Kind { return KindIfStmt }
func (i *IfStmt) stmt()      {}

// WhileStmt represents while (test) body.
type WhileStmt struct {
	Loc
	Test Expr
	Body Stmt
}

func (w *WhileStmt) Kind() Kind { return KindWhileStmt }
func (w *WhileStmt) stmt()      {}

// ThrowStmt represents throw expr.
type ThrowStmt struct {
	Loc
	Value Expr
}

func (t *ThrowStmt) Kind() Kind { return KindThrowStmt }
func (t *ThrowStmt) stmt()      {}

// EmptyStmt is a lone semicolon.
type EmptyStmt struct{ Loc }

func (e *EmptyStmt) Kind() Kind { return KindEmptyStmt }
func (e *EmptyStmt) stmt()      {}

// ClassDecl represents class Name [extends Super] { methods }. Classes are
// parsed and printed but never desugared.
type ClassDecl struct {
	Loc
	Name    *Identifier
	Super   Expr // nil without extends
	Methods []*Property
}

func (c *ClassDecl) Kind() Kind { return KindClassDecl }
func (c *ClassDecl) stmt()      {}

// ModuleDecl represents module Name from 'path'.
type ModuleDecl struct {
	Loc
	Name   *Identifier
	Source *StringLit
}

func (m *ModuleDecl) Kind() Kind { return KindModuleDecl }
func (m *ModuleDecl) stmt()      {}

// ImportDecl represents import x from 'path' and
// import {a, b as c} from 'path'.
type ImportDecl struct {
	Loc
	Specifiers []*ImportSpecifier
	Source     *StringLit
}

func (i *ImportDecl) Kind() Kind { return KindImportDecl }
func (i *ImportDecl) stmt()      {}

// ImportSpecifier binds Local to the export named Imported. A default
// specifier (import x from 'p') has a nil Imported and binds the whole module.
type ImportSpecifier struct {
	Loc
	Imported *Identifier
	Local    *Identifier
}

// Default reports whether the specifier binds the whole module.
func (s *ImportSpecifier) Default() bool { return s.Imported == nil }

// ExportDecl represents export <declaration>.
type ExportDecl struct {
	Loc
	Decl Stmt
}

func (e *ExportDecl) Kind() Kind { return KindExportDecl }
func (e *ExportDecl) stmt()      {}

// --- Functions ---

// Function holds the parts shared by declarations, expressions and arrows.
// A function is expression-bodied when ExprBody is non-nil; Body is nil then.
type Function struct {
	Loc
	ID       *Identifier // nil for anonymous functions
	Params   []*Identifier
	Rest     *Identifier // ...rest parameter, nil if absent
	Body     *BlockStmt
	ExprBody Expr
}

// Expression reports whether the function has an expression body.
func (f *Function) Expression() bool { return f.ExprBody != nil }

// FuncExpr represents function [name](params) body used as a value.
type FuncExpr struct {
	Loc
	Func *Function
}

func (f *FuncExpr) Kind() Kind { return KindFuncExpr }
func (f *FuncExpr) expr()      {}

// ArrowFunc represents (params) => body.
type ArrowFunc struct {
	Loc
	Func *Function
}

func (a *ArrowFunc) Kind() Kind { return KindArrowFunc }
func (a *ArrowFunc) expr()      {}

// --- Expressions ---

// Identifier is a name reference or a simple binding target.
type Identifier struct {
	Loc
	Name string
}

func (i *Identifier) Kind() Kind { return KindIdentifier }
func (i *Identifier) expr()      {}
func (i *Identifier) pattern()   {}

// NumberLit is a numeric literal. Raw keeps the source spelling.
type NumberLit struct {
	Loc
	Value float64
	Raw   string
}

func (n *NumberLit) Kind() Kind { return KindNumberLit }
func (n *NumberLit) expr()      {}

// StringLit is a string literal with escapes already decoded.
type StringLit struct {
	Loc
	Value string
}

func (s *StringLit) Kind() Kind { return KindStringLit }
func (s *StringLit) expr()      {}

// BoolLit is true or false.
type BoolLit struct {
	Loc
	Value bool
}

func (b *BoolLit) Kind() Kind { return KindBoolLit }
func (b *BoolLit) expr()      {}

// NullLit represents null.
type NullLit struct{ Loc }

func (n *NullLit) Kind() Kind { return KindNullLit }
func (n *NullLit) expr()      {}

// ThisExpr represents this.
type ThisExpr struct{ Loc }

func (t *ThisExpr) Kind() Kind { return KindThisExpr }
func (t *ThisExpr) expr()      {}

// ArrayExpr is [elem, ...]. A nil element is a hole.
type ArrayExpr struct {
	Loc
	Elements []Expr
}

func (a *ArrayExpr) Kind() Kind { return KindArrayExpr }
func (a *ArrayExpr) expr()      {}

// ObjectExpr is {key: value, ...}.
type ObjectExpr struct {
	Loc
	Props []*Property
}

func (o *ObjectExpr) Kind() Kind { return KindObjectExpr }
func (o *ObjectExpr) expr()      {}

// Property is one object literal member. Shorthand covers {a}; Method covers
// {m() {}}. Both forms already carry an explicit Value.
type Property struct {
	Loc
	Key       Expr // *Identifier, *StringLit or *NumberLit
	Value     Expr
	Computed  bool
	Shorthand bool
	Method    bool
}

func (p *Property) Kind() Kind { return KindProperty }

// CallExpr represents callee(args...).
type CallExpr struct {
	Loc
	Callee Expr
	Args   []Expr
}

func (c *CallExpr) Kind() Kind { return KindCallExpr }
func (c *CallExpr) expr()      {}

// NewExpr represents new callee(args...).
type NewExpr struct {
	Loc
	Callee Expr
	Args   []Expr
}

func (n *NewExpr) Kind() Kind { return KindNewExpr }
func (n *NewExpr) expr()      {}

// MemberExpr represents object.property or object[property].
type MemberExpr struct {
	Loc
	Object   Expr
	Property Expr
	Computed bool
}

func (m *MemberExpr) Kind() Kind { return KindMemberExpr }
func (m *MemberExpr) expr()      {}

// AssignExpr represents left op right where op is =, +=, -= ...
type AssignExpr struct {
	Loc
	Op    string
	Left  Expr
	Right Expr
}

func (a *AssignExpr) Kind() Kind { return KindAssignExpr }
func (a *AssignExpr) expr()      {}

// BinaryExpr represents left op right, logical operators included.
type BinaryExpr struct {
	Loc
	Op    string
	Left  Expr
	Right Expr
}

func (b *BinaryExpr) Kind() Kind { return KindBinaryExpr }
func (b *BinaryExpr) expr()      {}

// UnaryExpr represents op operand.
type UnaryExpr struct {
	Loc
	Op      string
	Operand Expr
}

func (u *UnaryExpr) Kind() Kind { return KindUnaryExpr }
func (u *UnaryExpr) expr()      {}

// UpdateExpr represents ++x, x++, --x and x--.
type UpdateExpr struct {
	Loc
	Op      string
	Prefix  bool
	Operand Expr
}

func (u *UpdateExpr) Kind() Kind { return KindUpdateExpr }
func (u *UpdateExpr) expr()      {}

// CondExpr represents test ? cons : alt.
type CondExpr struct {
	Loc
	Test Expr
	Cons Expr
	Alt  Expr
}

func (c *CondExpr) Kind() Kind { return KindCondExpr }
func (c *CondExpr) expr()      {}

// --- Patterns ---

// ObjectPattern is {key: pattern, ...} on the left of a declaration.
type ObjectPattern struct {
	Loc
	Props []*PatternProp
}

func (o *ObjectPattern) Kind() Kind { return KindObjectPattern }
func (o *ObjectPattern) pattern()   {}

// PatternProp is one key: pattern entry of an ObjectPattern.
type PatternProp struct {
	Loc
	Key      Expr // *Identifier, *StringLit or *NumberLit
	Value    Pattern
	Computed bool
}

func (p *PatternProp) Kind() Kind { return KindPatternProp }

// ArrayPattern is [pattern, , pattern] on the left of a declaration.
// A nil element is an elision.
type ArrayPattern struct {
	Loc
	Elems []Pattern
}

func (a *ArrayPattern) Kind() Kind { return KindArrayPattern }
func (a *ArrayPattern) pattern()   {}

// RestElement is a trailing ...name inside an ArrayPattern.
type RestElement struct {
	Loc
	Arg Pattern
}

func (r *RestElement) Kind() Kind { return KindRestElement }
func (r *RestElement) pattern()   {}
