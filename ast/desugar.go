package ast

import (
	"fmt"

	"modernc.org/token"
)

// Rewrite is the desugaring rule registered for one node kind. It recurses
// into children through u.Compile and must not mutate n: a rule that changes
// nothing returns n itself.
type Rewrite func(u *Unit, n Node) Node

// desugaredKinds is the closed set of kinds the engine rewrites. Every other
// kind is descended generically.
var desugaredKinds = []Kind{
	KindVarDecl,
	KindFuncDecl,
	KindFuncExpr,
	KindArrowFunc,
	KindProperty,
	KindModuleDecl,
	KindImportDecl,
	KindExportDecl,
}

var rewrites map[Kind]Rewrite

func init() {
	rewrites = map[Kind]Rewrite{
		KindVarDecl:    rewriteVarDecl,
		KindFuncDecl:   rewriteFuncDecl,
		KindFuncExpr:   rewriteFuncExpr,
		KindArrowFunc:  rewriteArrowFunc,
		KindProperty:   rewriteProperty,
		KindModuleDecl: rewriteModuleDecl,
		KindImportDecl: rewriteImportDecl,
		KindExportDecl: rewriteExportDecl,
	}
	if err := checkRegistry(rewrites, desugaredKinds); err != nil {
		panic(err)
	}
}

// checkRegistry verifies that table holds exactly one rule per kind in want.
func checkRegistry(table map[Kind]Rewrite, want []Kind) error {
	for _, k := range want {
		if table[k] == nil {
			return fmt.Errorf("ast: no rewrite registered for %s", k)
		}
	}
	if len(table) != len(want) {
		return fmt.Errorf("ast: %d rewrites registered, %d kinds desugared", len(table), len(want))
	}
	return nil
}

// Options configures one Desugar run.
type Options struct {
	// Temps mints temporary names. Nil gives the unit a private counter;
	// pass a shared Temps to keep names unique across a batch.
	Temps *Temps
}

// Result is the output of desugaring one unit.
type Result struct {
	Program *Program
	// Requires lists the literal specifiers passed to the loader, in
	// source order.
	Requires []string
	// Warnings lists constructs that were passed through unchanged.
	Warnings []*Error
}

// Unit is the compilation context of one source unit. It is threaded through
// every rewrite and owns the temporary allocator, the required specifiers and
// the warnings of that unit.
type Unit struct {
	prog     *Program
	f        *Factory
	temps    *Temps
	requires []string
	warnings []*Error
}

// Desugar rewrites prog into the restricted subset. The input tree is not
// mutated; when nothing needs rewriting the same *Program is returned.
func Desugar(prog *Program, opts Options) (res *Result, err error) {
	temps := opts.Temps
	if temps == nil {
		temps = &Temps{}
	}
	u := &Unit{prog: prog, f: NewFactory(), temps: temps}

	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			res, err = nil, e
		}
	}()

	body, changed := u.compileStmts(prog.Body)
	out := prog
	if changed {
		out = u.f.ProgramFrom(prog, body)
	}
	return &Result{Program: out, Requires: u.requires, Warnings: u.warnings}, nil
}

// Compile is the recursive-descent callback handed to every rewrite. It
// dispatches to the rule registered for the node's kind, or descends into the
// node's children when there is none.
func (u *Unit) Compile(n Node) Node {
	if n == nil {
		return nil
	}
	if rw, ok := rewrites[n.Kind()]; ok {
		return rw(u, n)
	}
	return u.descend(n)
}

func (u *Unit) compileExpr(e Expr) Expr {
	if e == nil {
		return nil
	}
	return u.Compile(e).(Expr)
}

func (u *Unit) compileStmt(s Stmt) Stmt {
	if s == nil {
		return nil
	}
	return u.Compile(s).(Stmt)
}

func (u *Unit) compileStmts(stmts []Stmt) ([]Stmt, bool) {
	return mapSlice(stmts, u.compileStmt)
}

func (u *Unit) compileExprs(exprs []Expr) ([]Expr, bool) {
	return mapSlice(exprs, u.compileExpr)
}

func (u *Unit) compileProps(props []*Property) ([]*Property, bool) {
	return mapSlice(props, func(p *Property) *Property {
		return u.Compile(p).(*Property)
	})
}

func (u *Unit) compileBlock(b *BlockStmt) *BlockStmt {
	body, changed := u.compileStmts(b.Body)
	if !changed {
		return b
	}
	return u.f.BlockWithBody(b, body)
}

// descend rebuilds n with compiled children. Nodes whose children are all
// unchanged are returned as is.
func (u *Unit) descend(n Node) Node {
	switch nd := n.(type) {
	case *Program:
		body, changed := u.compileStmts(nd.Body)
		if !changed {
			return n
		}
		return u.f.ProgramFrom(nd, body)

	case *BlockStmt:
		return u.compileBlock(nd)

	case *ExprStmt:
		e := u.compileExpr(nd.Expression)
		if e == nd.Expression {
			return n
		}
		return &ExprStmt{Loc: nd.Loc, Expression: e}

	case *ReturnStmt:
		v := u.compileExpr(nd.Value)
		if v == nd.Value {
			return n
		}
		return &ReturnStmt{Loc: nd.Loc, Value: v}

	case *ThrowStmt:
		v := u.compileExpr(nd.Value)
		if v == nd.Value {
			return n
		}
		return &ThrowStmt{Loc: nd.Loc, Value: v}

	case *IfStmt:
		test := u.compileExpr(nd.Test)
		cons := u.compileStmt(nd.Cons)
		alt := u.compileStmt(nd.Alt)
		if test == nd.Test && cons == nd.Cons && alt == nd.Alt {
			return n
		}
		return &IfStmt{Loc: nd.Loc, Test: test, Cons: cons, Alt: alt}

	case *WhileStmt:
		test := u.compileExpr(nd.Test)
		body := u.compileStmt(nd.Body)
		if test == nd.Test && body == nd.Body {
			return n
		}
		return &WhileStmt{Loc: nd.Loc, Test: test, Body: body}

	case *Declarator:
		init := u.compileExpr(nd.Init)
		if init == nd.Init {
			return n
		}
		return u.f.Declarator(nd.Target, init, nd.Pos)

	case *ClassDecl:
		u.warn(nd, "class declarations are passed through unchanged")
		return n

	case *EmptyStmt, *Identifier, *NumberLit, *StringLit, *BoolLit, *NullLit, *ThisExpr:
		return n

	case *ArrayExpr:
		elems, changed := u.compileExprs(nd.Elements)
		if !changed {
			return n
		}
		return &ArrayExpr{Loc: nd.Loc, Elements: elems}

	case *ObjectExpr:
		props, changed := u.compileProps(nd.Props)
		if !changed {
			return n
		}
		return &ObjectExpr{Loc: nd.Loc, Props: props}

	case *CallExpr:
		callee := u.compileExpr(nd.Callee)
		args, changed := u.compileExprs(nd.Args)
		if callee == nd.Callee && !changed {
			return n
		}
		return &CallExpr{Loc: nd.Loc, Callee: callee, Args: args}

	case *NewExpr:
		callee := u.compileExpr(nd.Callee)
		args, changed := u.compileExprs(nd.Args)
		if callee == nd.Callee && !changed {
			return n
		}
		return &NewExpr{Loc: nd.Loc, Callee: callee, Args: args}

	case *MemberExpr:
		obj := u.compileExpr(nd.Object)
		prop := nd.Property
		if nd.Computed {
			prop = u.compileExpr(nd.Property)
		}
		if obj == nd.Object && prop == nd.Property {
			return n
		}
		return &MemberExpr{Loc: nd.Loc, Object: obj, Property: prop, Computed: nd.Computed}

	case *AssignExpr:
		left := u.compileExpr(nd.Left)
		right := u.compileExpr(nd.Right)
		if left == nd.Left && right == nd.Right {
			return n
		}
		return &AssignExpr{Loc: nd.Loc, Op: nd.Op, Left: left, Right: right}

	case *BinaryExpr:
		left := u.compileExpr(nd.Left)
		right := u.compileExpr(nd.Right)
		if left == nd.Left && right == nd.Right {
			return n
		}
		return &BinaryExpr{Loc: nd.Loc, Op: nd.Op, Left: left, Right: right}

	case *UnaryExpr:
		operand := u.compileExpr(nd.Operand)
		if operand == nd.Operand {
			return n
		}
		return &UnaryExpr{Loc: nd.Loc, Op: nd.Op, Operand: operand}

	case *UpdateExpr:
		operand := u.compileExpr(nd.Operand)
		if operand == nd.Operand {
			return n
		}
		return &UpdateExpr{Loc: nd.Loc, Op: nd.Op, Prefix: nd.Prefix, Operand: operand}

	case *CondExpr:
		test := u.compileExpr(nd.Test)
		cons := u.compileExpr(nd.Cons)
		alt := u.compileExpr(nd.Alt)
		if test == nd.Test && cons == nd.Cons && alt == nd.Alt {
			return n
		}
		return &CondExpr{Loc: nd.Loc, Test: test, Cons: cons, Alt: alt}

	case *ObjectPattern, *ArrayPattern, *PatternProp, *RestElement:
		// Patterns only appear as declaration targets, which the pattern
		// flattener consumes before descent could reach them.
		return n
	}
	panic(fmt.Sprintf("ast: unhandled node kind %s", n.Kind()))
}

// temp mints a fresh temporary identifier at pos.
func (u *Unit) temp(pos token.Pos) *Identifier {
	return u.f.Ident(u.temps.Next(), pos)
}

// require records specifier as a dependency and builds the loader call.
func (u *Unit) require(src *StringLit, pos token.Pos) *CallExpr {
	u.requires = append(u.requires, src.Value)
	return u.f.Require(src.Value, pos)
}

// fail aborts the unit with a positioned error.
func (u *Unit) fail(kind ErrorKind, at Node, format string, args ...any) {
	panic(u.errorAt(kind, at, format, args...))
}

// warn records a pass-through of an unsupported construct.
func (u *Unit) warn(at Node, format string, args ...any) {
	u.warnings = append(u.warnings, u.errorAt(ErrUnsupported, at, format, args...))
}

func (u *Unit) errorAt(kind ErrorKind, at Node, format string, args ...any) *Error {
	e := &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Pos: u.prog.Position(token.NoPos)}
	if at != nil {
		e.Node = at.Kind()
		e.Pos = u.prog.Position(at.NodePos())
	}
	return e
}
