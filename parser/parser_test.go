package parser

import (
	"testing"

	"github.com/rubiojr/party/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mscanner "modernc.org/scanner"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse("test.es6", []byte(src), Options{})
	require.NoError(t, err)
	return prog
}

func firstExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	prog := parse(t, src)
	require.Len(t, prog.Body, 1)
	es, ok := prog.Body[0].(*ast.ExprStmt)
	require.True(t, ok, "expected expression statement, got %T", prog.Body[0])
	return es.Expression
}

func TestParseVarDecl(t *testing.T) {
	prog := parse(t, "var a = 1, b\nlet c = 'x'; const d = true")
	require.Len(t, prog.Body, 3)

	v := prog.Body[0].(*ast.VarDecl)
	assert.Equal(t, "var", v.Keyword)
	require.Len(t, v.Decls, 2)
	assert.Equal(t, "a", v.Decls[0].Target.(*ast.Identifier).Name)
	assert.Equal(t, 1.0, v.Decls[0].Init.(*ast.NumberLit).Value)
	assert.Nil(t, v.Decls[1].Init)

	assert.Equal(t, "let", prog.Body[1].(*ast.VarDecl).Keyword)
	assert.Equal(t, "const", prog.Body[2].(*ast.VarDecl).Keyword)
}

func TestParsePatterns(t *testing.T) {
	prog := parse(t, "var {a, b: {c}, 'd': e, [k]: f} = o, [g, , [h], ...i] = p")
	v := prog.Body[0].(*ast.VarDecl)
	require.Len(t, v.Decls, 2)

	op := v.Decls[0].Target.(*ast.ObjectPattern)
	require.Len(t, op.Props, 4)
	assert.Equal(t, "a", op.Props[0].Value.(*ast.Identifier).Name, "shorthand binds the key name")
	assert.NotSame(t, op.Props[0].Key, op.Props[0].Value)
	assert.IsType(t, &ast.ObjectPattern{}, op.Props[1].Value)
	assert.Equal(t, "d", op.Props[2].Key.(*ast.StringLit).Value)
	assert.True(t, op.Props[3].Computed)

	ap := v.Decls[1].Target.(*ast.ArrayPattern)
	require.Len(t, ap.Elems, 4)
	assert.Nil(t, ap.Elems[1], "elision")
	assert.IsType(t, &ast.ArrayPattern{}, ap.Elems[2])
	assert.IsType(t, &ast.RestElement{}, ap.Elems[3])
}

func TestParseFunctions(t *testing.T) {
	prog := parse(t, "function f(a, ...r) { return a }\nvar g = function (x) x * 2")
	fd := prog.Body[0].(*ast.FuncDecl)
	assert.Equal(t, "f", fd.Func.ID.Name)
	require.Len(t, fd.Func.Params, 1)
	assert.Equal(t, "r", fd.Func.Rest.Name)
	assert.False(t, fd.Func.Expression())

	fe := prog.Body[1].(*ast.VarDecl).Decls[0].Init.(*ast.FuncExpr)
	assert.Nil(t, fe.Func.ID)
	assert.True(t, fe.Func.Expression())
	assert.IsType(t, &ast.BinaryExpr{}, fe.Func.ExprBody)
}

func TestParseArrows(t *testing.T) {
	tests := []struct {
		src    string
		params int
		rest   bool
		expr   bool
	}{
		{"x => x", 1, false, true},
		{"() => {}", 0, false, false},
		{"(a, b) => a + b", 2, false, true},
		{"(a, ...r) => { return r }", 1, true, false},
		{"(...r) => r", 0, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			a, ok := firstExpr(t, tt.src).(*ast.ArrowFunc)
			require.True(t, ok)
			assert.Len(t, a.Func.Params, tt.params)
			assert.Equal(t, tt.rest, a.Func.Rest != nil)
			assert.Equal(t, tt.expr, a.Func.Expression())
		})
	}
}

func TestParseParenthesizedIsNotArrow(t *testing.T) {
	assert.IsType(t, &ast.BinaryExpr{}, firstExpr(t, "(a + b) * c"))
	assert.IsType(t, &ast.CallExpr{}, firstExpr(t, "f(a)(b)"))
}

func TestParseObjectLiteral(t *testing.T) {
	o := firstExpr(t, "({a: 1, b, m(x) { return x }, 'k': 2, [c]: 3})").(*ast.ObjectExpr)
	require.Len(t, o.Props, 5)
	assert.False(t, o.Props[0].Shorthand)
	assert.True(t, o.Props[1].Shorthand)
	assert.Equal(t, "b", o.Props[1].Value.(*ast.Identifier).Name)
	assert.True(t, o.Props[2].Method)
	assert.IsType(t, &ast.FuncExpr{}, o.Props[2].Value)
	assert.IsType(t, &ast.StringLit{}, o.Props[3].Key)
	assert.True(t, o.Props[4].Computed)
}

func TestParseModules(t *testing.T) {
	prog := parse(t, `
module m from 'lib/m'
import x from './x'
import {a, b as c} from '../y'
import d, {e} from 'z'
import 'side'
export var v = 1
export function f() {}
export class K {}
`)
	require.Len(t, prog.Body, 8)

	m := prog.Body[0].(*ast.ModuleDecl)
	assert.Equal(t, "m", m.Name.Name)
	assert.Equal(t, "lib/m", m.Source.Value)

	imp := prog.Body[1].(*ast.ImportDecl)
	require.Len(t, imp.Specifiers, 1)
	assert.True(t, imp.Specifiers[0].Default())

	named := prog.Body[2].(*ast.ImportDecl)
	require.Len(t, named.Specifiers, 2)
	assert.Equal(t, "a", named.Specifiers[0].Local.Name)
	assert.Equal(t, "b", named.Specifiers[1].Imported.Name)
	assert.Equal(t, "c", named.Specifiers[1].Local.Name)

	mixed := prog.Body[3].(*ast.ImportDecl)
	require.Len(t, mixed.Specifiers, 2)
	assert.True(t, mixed.Specifiers[0].Default())
	assert.False(t, mixed.Specifiers[1].Default())

	assert.Empty(t, prog.Body[4].(*ast.ImportDecl).Specifiers)

	assert.IsType(t, &ast.VarDecl{}, prog.Body[5].(*ast.ExportDecl).Decl)
	assert.IsType(t, &ast.FuncDecl{}, prog.Body[6].(*ast.ExportDecl).Decl)
	assert.IsType(t, &ast.ClassDecl{}, prog.Body[7].(*ast.ExportDecl).Decl)
}

func TestParseModuleIsContextual(t *testing.T) {
	prog := parse(t, "var module = {}\nmodule.exports = 1")
	require.Len(t, prog.Body, 2)
	assert.IsType(t, &ast.ExprStmt{}, prog.Body[1])
}

func TestParsePrecedence(t *testing.T) {
	b := firstExpr(t, "a + b * c").(*ast.BinaryExpr)
	assert.Equal(t, "+", b.Op)
	assert.Equal(t, "*", b.Right.(*ast.BinaryExpr).Op)

	b = firstExpr(t, "a - b - c").(*ast.BinaryExpr)
	assert.Equal(t, "c", b.Right.(*ast.Identifier).Name, "left associative")

	as := firstExpr(t, "a = b = c").(*ast.AssignExpr)
	assert.IsType(t, &ast.AssignExpr{}, as.Right, "right associative")

	c := firstExpr(t, "a ? b : c || d").(*ast.CondExpr)
	assert.IsType(t, &ast.BinaryExpr{}, c.Alt)
}

func TestParseNewAndMembers(t *testing.T) {
	n := firstExpr(t, "new a.B(1).c").(*ast.MemberExpr)
	ne := n.Object.(*ast.NewExpr)
	assert.IsType(t, &ast.MemberExpr{}, ne.Callee)
	assert.Len(t, ne.Args, 1)

	m := firstExpr(t, "a.class").(*ast.MemberExpr)
	assert.Equal(t, "class", m.Property.(*ast.Identifier).Name, "reserved words are valid property names")
}

func TestParseASI(t *testing.T) {
	prog := parse(t, "a = 1\nb = 2\nfunction f() { return\n1 }")
	require.Len(t, prog.Body, 3)
	ret := prog.Body[2].(*ast.FuncDecl).Func.Body.Body[0].(*ast.ReturnStmt)
	assert.Nil(t, ret.Value, "line break after return ends the statement")

	post := parse(t, "a\n++b")
	require.Len(t, post.Body, 2, "++ after a line break is a prefix operator")
}

func TestParsePositions(t *testing.T) {
	prog, err := Parse("p.es6", []byte("var a = 1;\n  foo(a);"), Options{Positions: true})
	require.NoError(t, err)
	require.NotNil(t, prog.File)
	pos := prog.Position(prog.Body[1].NodePos())
	assert.Equal(t, 2, pos.Line)
	assert.Equal(t, 3, pos.Column)
	assert.Equal(t, "p.es6", pos.Filename)

	prog, err = Parse("p.es6", []byte("var a = 1;"), Options{})
	require.NoError(t, err)
	assert.Nil(t, prog.File)
	assert.False(t, prog.Body[0].NodePos().IsValid())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
		line int
	}{
		{"missing paren", "f(a", `expected ")"`, 1},
		{"reserved temp name", "var x\nvar $$$1 = 2", "reserved prefix", 2},
		{"for loop", "for (;;) {}", "for statements are not supported", 1},
		{"bad assignment", "1 = 2", "invalid assignment target", 1},
		{"regex", "x = /a/", "regular expression", 1},
		{"rest not last", "function f(...a, b) {}", "rest parameter must be last", 1},
		{"anonymous declaration", "function () {}", "requires a name", 1},
		{"export expression", "export 1", "expected declaration", 1},
		{"missing semicolon", "a b", `expected ";"`, 1},
		{"pattern without key", "var {1} = o", `expected ":"`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("e.es6", []byte(tt.src), Options{})
			require.Error(t, err)
			var el mscanner.ErrList
			require.ErrorAs(t, err, &el)
			require.Len(t, el, 1, "first error wins")
			assert.Contains(t, el[0].Err.Error(), tt.msg)
			assert.Equal(t, tt.line, el[0].Pos.Line)
			assert.Equal(t, "e.es6", el[0].Pos.Filename)
		})
	}
}

func TestParseErrorPositions(t *testing.T) {
	_, err := Parse("p.es6", []byte("var a = 1\nvar = 2\nvar = 3\n"), Options{})
	var el mscanner.ErrList
	require.ErrorAs(t, err, &el)
	require.Len(t, el, 1)
	assert.Equal(t, 2, el[0].Pos.Line)
	assert.Equal(t, 5, el[0].Pos.Column)
	assert.Equal(t, 14, el[0].Pos.Offset)

	_, err = Parse("p.es6", []byte("x = 1\n  'open"), Options{})
	require.ErrorAs(t, err, &el)
	require.Len(t, el, 1)
	assert.Equal(t, "p.es6:2:3", el[0].Pos.String())
	assert.EqualError(t, err, "p.es6:2:3: unterminated string literal")
}

func TestParseCompiledOutput(t *testing.T) {
	src := "var $$$1 = f(), a = $$$1.a;"
	_, err := Parse("out.js", []byte(src), Options{})
	require.Error(t, err)

	prog, err := Parse("out.js", []byte(src), Options{Compiled: true})
	require.NoError(t, err)
	v := prog.Body[0].(*ast.VarDecl)
	assert.Equal(t, "$$$1", v.Decls[0].Target.(*ast.Identifier).Name)
}
