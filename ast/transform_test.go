package ast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainEmpty(t *testing.T) {
	prog := &Program{Path: "test.es6"}
	result, err := Chain().Transform(prog)
	require.NoError(t, err)
	assert.Same(t, prog, result, "empty chain returns same program")
}

func TestChainSingle(t *testing.T) {
	called := false
	transform := TransformFunc{
		N: "test",
		F: func(prog *Program) (*Program, error) {
			called = true
			return &Program{Path: "modified"}, nil
		},
	}
	prog := &Program{Path: "original"}
	result, err := Chain(transform).Transform(prog)
	require.NoError(t, err)
	assert.True(t, called, "transform was called")
	assert.Equal(t, "modified", result.Path)
}

func TestChainOrdering(t *testing.T) {
	var order []string
	step := func(name string) Transform {
		return TransformFunc{
			N: name,
			F: func(prog *Program) (*Program, error) {
				order = append(order, name)
				return prog, nil
			},
		}
	}
	_, err := Chain(step("first"), step("second"), step("third")).Transform(&Program{})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestChainStopsAtError(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	failing := TransformFunc{N: "fail", F: func(*Program) (*Program, error) { return nil, boom }}
	after := TransformFunc{N: "after", F: func(p *Program) (*Program, error) {
		ran = true
		return p, nil
	}}
	result, err := Chain(failing, after).Transform(&Program{})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, result)
	assert.False(t, ran, "transforms after a failure do not run")
}

func TestChainOfChains(t *testing.T) {
	appendTransform := func(name, suffix string) Transform {
		return TransformFunc{
			N: name,
			F: func(prog *Program) (*Program, error) {
				return &Program{Path: prog.Path + suffix}, nil
			},
		}
	}
	inner := Chain(appendTransform("a", "+a"), appendTransform("b", "+b"))
	outer := Chain(inner, appendTransform("c", "+c"))
	result, err := outer.Transform(&Program{Path: "start"})
	require.NoError(t, err)
	assert.Equal(t, "start+a+b+c", result.Path)
}

func TestChainName(t *testing.T) {
	assert.Equal(t, "chain", Chain().Name())
}

func TestTransformFuncName(t *testing.T) {
	tf := TransformFunc{N: "my-transform", F: func(p *Program) (*Program, error) { return p, nil }}
	assert.Equal(t, "my-transform", tf.Name())
}

func TestDesugaringTransform(t *testing.T) {
	f := NewFactory()
	prog := &Program{Body: []Stmt{
		&ModuleDecl{Name: f.Ident("m", 0), Source: f.String("lib", 0)},
	}}
	var got *Result
	tr := Desugaring(Options{}, func(r *Result) { got = r })
	assert.Equal(t, "desugar", tr.Name())

	out, err := Checked(tr, CheckChain{SubsetCheck()}).Transform(prog)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Same(t, got.Program, out)
	assert.Equal(t, []string{"lib"}, got.Requires)
}

func TestCheckedReportsViolations(t *testing.T) {
	f := NewFactory()
	identity := TransformFunc{N: "identity", F: func(p *Program) (*Program, error) { return p, nil }}
	prog := &Program{Body: []Stmt{
		&ExprStmt{Expression: &ArrowFunc{Func: &Function{ExprBody: f.Ident("x", 0)}}},
	}}
	_, err := Checked(identity, CheckChain{SubsetCheck()}).Transform(prog)
	require.Error(t, err)
	var aerr *Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, KindArrowFunc, aerr.Node)
	assert.Contains(t, err.Error(), "subset")
}

func TestMapSliceCopyOnWrite(t *testing.T) {
	in := []int{1, 2, 3}
	out, changed := mapSlice(in, func(i int) int { return i })
	assert.False(t, changed)
	assert.Same(t, &in[0], &out[0], "unchanged slice is returned as is")

	out, changed = mapSlice(in, func(i int) int {
		if i == 2 {
			return 20
		}
		return i
	})
	assert.True(t, changed)
	assert.Equal(t, []int{1, 20, 3}, out)
	assert.Equal(t, []int{1, 2, 3}, in, "input is not mutated")
}
