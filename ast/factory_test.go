package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"modernc.org/token"
)

func TestFactoryIdentIsFresh(t *testing.T) {
	f := NewFactory()
	a := f.Ident("x", 3)
	b := f.Ident("x", 3)
	assert.NotSame(t, a, b, "every reference gets its own node")
	assert.Equal(t, token.Pos(3), a.NodePos())
}

func TestFactoryRequire(t *testing.T) {
	f := NewFactory()
	call := f.Require("lib/a", 7)
	callee, ok := call.Callee.(*Identifier)
	require.True(t, ok)
	assert.Equal(t, LoaderName, callee.Name)
	require.Len(t, call.Args, 1)
	assert.Equal(t, "lib/a", call.Args[0].(*StringLit).Value)
	assert.Equal(t, token.Pos(7), call.NodePos())
}

func TestFactoryExportAssign(t *testing.T) {
	f := NewFactory()
	as := f.ExportAssign("x", f.Number(1, 0), 0)
	assert.Equal(t, "=", as.Op)
	left := as.Left.(*MemberExpr)
	assert.False(t, left.Computed)
	assert.Equal(t, ExportsName, left.Object.(*Identifier).Name)
	assert.Equal(t, "x", left.Property.(*Identifier).Name)
}

func TestFactorySliceArguments(t *testing.T) {
	f := NewFactory()

	none := f.SliceArguments(0, 0)
	require.Len(t, none.Args, 1, "offset zero is omitted")
	assert.Equal(t, "arguments", none.Args[0].(*Identifier).Name)

	two := f.SliceArguments(2, 0)
	require.Len(t, two.Args, 2)
	assert.Equal(t, "2", two.Args[1].(*NumberLit).Raw)

	// Array.prototype.slice.call
	call := two.Callee.(*MemberExpr)
	assert.Equal(t, "call", call.Property.(*Identifier).Name)
	slice := call.Object.(*MemberExpr)
	assert.Equal(t, "slice", slice.Property.(*Identifier).Name)
	proto := slice.Object.(*MemberExpr)
	assert.Equal(t, "prototype", proto.Property.(*Identifier).Name)
	assert.Equal(t, "Array", proto.Object.(*Identifier).Name)
}

func TestFactoryBindThis(t *testing.T) {
	f := NewFactory()
	fn := &FuncExpr{Func: &Function{Body: &BlockStmt{}}}
	call := f.BindThis(fn, 0)
	m := call.Callee.(*MemberExpr)
	assert.Same(t, fn, m.Object)
	assert.Equal(t, "bind", m.Property.(*Identifier).Name)
	require.Len(t, call.Args, 1)
	assert.IsType(t, &ThisExpr{}, call.Args[0])
}

func TestFactoryVoid(t *testing.T) {
	f := NewFactory()
	v := f.Void(0)
	assert.Equal(t, "void", v.Op)
	assert.Equal(t, 0.0, v.Operand.(*NumberLit).Value)
}

func TestFactoryFunctionWithBody(t *testing.T) {
	f := NewFactory()
	src := &Function{
		ID:       f.Ident("g", 0),
		Params:   []*Identifier{f.Ident("a", 0)},
		Rest:     f.Ident("r", 0),
		ExprBody: f.Ident("a", 0),
	}
	body := f.ReturnBlock(f.Ident("a", 0), 0)
	out := f.FunctionWithBody(src, body)
	assert.NotSame(t, src, out)
	assert.Same(t, body, out.Body)
	assert.Nil(t, out.ExprBody)
	assert.Nil(t, out.Rest)
	assert.Same(t, src.ID, out.ID)
	assert.NotNil(t, src.Rest, "source function is untouched")
	assert.NotNil(t, src.ExprBody)
}

func TestFactoryProgramFrom(t *testing.T) {
	f := NewFactory()
	file := token.NewFile("a.es6", 10)
	src := &Program{Path: "a.es6", File: file}
	body := []Stmt{&EmptyStmt{}}
	out := f.ProgramFrom(src, body)
	assert.Equal(t, "a.es6", out.Path)
	assert.Same(t, file, out.File)
	assert.Equal(t, body, out.Body)
	assert.Nil(t, src.Body)
}
