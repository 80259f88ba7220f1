package ast

import (
	"strconv"

	"modernc.org/token"
)

const (
	// LoaderName is the global invoked with a literal specifier to obtain a
	// dependency's exports.
	LoaderName = "require"
	// ExportsName is the per-module object receiving export property writes.
	ExportsName = "exports"
)

// Factory centralizes AST node creation for rewrite rules. Every method takes
// the position of the construct being replaced so rewritten nodes keep the
// source position annotation of what they replace.
type Factory struct{}

// NewFactory returns a new Factory.
func NewFactory() *Factory { return &Factory{} }

// Ident creates a fresh identifier node. Rewrites never share identifier
// nodes between two parents; every reference gets its own node.
func (f *Factory) Ident(name string, pos token.Pos) *Identifier {
	return &Identifier{Loc: Loc{pos}, Name: name}
}

// Number creates an integer literal.
func (f *Factory) Number(n int, pos token.Pos) *NumberLit {
	return &NumberLit{Loc: Loc{pos}, Value: float64(n), Raw: strconv.Itoa(n)}
}

// String creates a string literal.
func (f *Factory) String(s string, pos token.Pos) *StringLit {
	return &StringLit{Loc: Loc{pos}, Value: s}
}

// Member creates obj.name.
func (f *Factory) Member(obj Expr, name string, pos token.Pos) *MemberExpr {
	return &MemberExpr{Loc: Loc{pos}, Object: obj, Property: f.Ident(name, pos)}
}

// Index creates obj[key].
func (f *Factory) Index(obj Expr, key Expr, pos token.Pos) *MemberExpr {
	return &MemberExpr{Loc: Loc{pos}, Object: obj, Property: key, Computed: true}
}

// Call creates callee(args...).
func (f *Factory) Call(callee Expr, args []Expr, pos token.Pos) *CallExpr {
	return &CallExpr{Loc: Loc{pos}, Callee: callee, Args: args}
}

// Declarator creates target = init.
func (f *Factory) Declarator(target Pattern, init Expr, pos token.Pos) *Declarator {
	return &Declarator{Loc: Loc{pos}, Target: target, Init: init}
}

// Var creates a var declaration.
func (f *Factory) Var(decls []*Declarator, pos token.Pos) *VarDecl {
	return &VarDecl{Loc: Loc{pos}, Keyword: "var", Decls: decls}
}

// Void creates void 0, the undefined value that cannot be shadowed.
func (f *Factory) Void(pos token.Pos) *UnaryExpr {
	return &UnaryExpr{Loc: Loc{pos}, Op: "void", Operand: f.Number(0, pos)}
}

// --- Desugaring shapes ---

// Require creates require('specifier').
func (f *Factory) Require(specifier string, pos token.Pos) *CallExpr {
	return f.Call(f.Ident(LoaderName, pos), []Expr{f.String(specifier, pos)}, pos)
}

// ExportAssign creates exports.name = value.
func (f *Factory) ExportAssign(name string, value Expr, pos token.Pos) *AssignExpr {
	return &AssignExpr{
		Loc:   Loc{pos},
		Op:    "=",
		Left:  f.Member(f.Ident(ExportsName, pos), name, pos),
		Right: value,
	}
}

// ReturnBlock creates { return value }.
func (f *Factory) ReturnBlock(value Expr, pos token.Pos) *BlockStmt {
	return &BlockStmt{Loc: Loc{pos}, Body: []Stmt{&ReturnStmt{Loc: Loc{pos}, Value: value}}}
}

// SliceArguments creates Array.prototype.slice.call(arguments[, from]).
// The offset is omitted when it is zero.
func (f *Factory) SliceArguments(from int, pos token.Pos) *CallExpr {
	slice := f.Member(f.Member(f.Member(f.Ident("Array", pos), "prototype", pos), "slice", pos), "call", pos)
	args := []Expr{f.Ident("arguments", pos)}
	if from > 0 {
		args = append(args, f.Number(from, pos))
	}
	return f.Call(slice, args, pos)
}

// BindThis creates fn.bind(this).
func (f *Factory) BindThis(fn Expr, pos token.Pos) *CallExpr {
	return f.Call(f.Member(fn, "bind", pos), []Expr{&ThisExpr{Loc: Loc{pos}}}, pos)
}

// --- Copy helpers ---

// ProgramFrom creates a new Program copying metadata from src with a new body.
func (f *Factory) ProgramFrom(src *Program, body []Stmt) *Program {
	return &Program{Loc: src.Loc, Body: body, Path: src.Path, File: src.File}
}

// BlockWithBody creates a shallow copy of a BlockStmt with a new body.
func (f *Factory) BlockWithBody(src *BlockStmt, body []Stmt) *BlockStmt {
	return &BlockStmt{Loc: src.Loc, Body: body}
}

// FunctionWithBody creates a block-bodied copy of fn without a rest parameter.
func (f *Factory) FunctionWithBody(src *Function, body *BlockStmt) *Function {
	cp := *src
	cp.Body = body
	cp.ExprBody = nil
	cp.Rest = nil
	return &cp
}
