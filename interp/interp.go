// Package interp evaluates programs written in the restricted subset the
// desugaring pass targets. It backs the run command and serves as an
// executable checker: arrow functions, binding patterns, rest parameters,
// expression bodies and module declarations are rejected with an error
// matching ErrNotDesugared instead of being evaluated.
package interp

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rubiojr/party/ast"
	"github.com/rubiojr/party/resolver"
	"modernc.org/token"
)

// DefaultMaxDepth bounds the call stack of a Runtime.
const DefaultMaxDepth = 256

// ErrNotDesugared is matched by errors reporting a construct outside the
// restricted subset.
var ErrNotDesugared = errors.New("construct outside the restricted subset")

// Error is a runtime failure or an uncaught thrown value.
type Error struct {
	Pos    token.Position
	Msg    string
	Thrown Value // the thrown value, nil for runtime errors
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Thrown != nil {
		msg = "uncaught " + Inspect(e.Thrown)
	}
	if !e.Pos.IsValid() && e.Pos.Filename == "" {
		return msg
	}
	return e.Pos.String() + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// Loader supplies the compiled program of a canonical module name.
type Loader interface {
	Load(module string) (*ast.Program, error)
}

// MapLoader serves programs from memory.
type MapLoader map[string]*ast.Program

func (m MapLoader) Load(module string) (*ast.Program, error) {
	if p, ok := m[module]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("module %q not found", module)
}

// Runtime holds the global environment and the module registry. A Runtime
// is not safe for concurrent use.
type Runtime struct {
	Stdout io.Writer
	Loader Loader
	// Resolver applies an escape policy to require calls. Nil resolves
	// without checks.
	Resolver *resolver.Resolver
	MaxDepth int

	global  *env
	modules map[string]*module
	depth   int

	objectProto   *Object
	functionProto *Object
	arrayProto    *Object
	stringProto   *Object
	errorProto    *Object
}

type module struct {
	name    string
	exports *Object
}

// New returns a Runtime with the built-in globals installed.
func New(loader Loader) *Runtime {
	rt := &Runtime{
		Stdout:   os.Stdout,
		Loader:   loader,
		MaxDepth: DefaultMaxDepth,
		global:   newEnv(nil),
		modules:  map[string]*module{},
	}
	rt.installBuiltins()
	return rt
}

// Define binds a global variable.
func (rt *Runtime) Define(name string, v Value) { rt.global.declare(name, v) }

// Global returns a global variable, or Undefined.
func (rt *Runtime) Global(name string) Value {
	if v, ok := rt.global.vars[name]; ok {
		return v
	}
	return Undefined
}

// Run evaluates prog as the module called name and returns the value of its
// last top-level expression statement.
func (rt *Runtime) Run(name string, prog *ast.Program) (Value, error) {
	return rt.exec(rt.register(name), prog)
}

// Require returns the exports of the module called name, loading and
// evaluating it on first use. A module that is still being evaluated yields
// its partial exports.
func (rt *Runtime) Require(name string) (*Object, error) {
	if m, ok := rt.modules[name]; ok {
		return m.exports, nil
	}
	if rt.Loader == nil {
		return nil, fmt.Errorf("cannot load module %q: no loader", name)
	}
	prog, err := rt.Loader.Load(name)
	if err != nil {
		return nil, err
	}
	m := rt.register(name)
	if _, err := rt.exec(m, prog); err != nil {
		return nil, err
	}
	return m.exports, nil
}

// Call invokes fn with the given receiver and arguments.
func (rt *Runtime) Call(fn Value, this Value, args ...Value) (v Value, err error) {
	defer rt.recover(&err)
	fr := &frame{rt: rt, this: Undefined}
	v = fr.call(nil, fn, this, args)
	return v, nil
}

func (rt *Runtime) register(name string) *module {
	m := &module{name: name, exports: rt.newObject()}
	rt.modules[name] = m
	return m
}

func (rt *Runtime) recover(err *error) {
	if r := recover(); r != nil {
		e, ok := r.(*Error)
		if !ok {
			panic(r)
		}
		*err = e
	}
}

func (rt *Runtime) exec(m *module, prog *ast.Program) (last Value, err error) {
	defer rt.recover(&err)

	e := newEnv(rt.global)
	e.declare(ast.ExportsName, m.exports)
	e.declare(ast.LoaderName, rt.newFunc(ast.LoaderName, func(_ Value, args []Value) (Value, error) {
		if len(args) == 0 {
			return nil, errors.New("require expects a module specifier")
		}
		spec, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("require expects a string, got %s", typeOf(args[0]))
		}
		return rt.require(m.name, spec)
	}))

	fr := &frame{rt: rt, prog: prog, this: Undefined}
	fr.hoist(prog.Body, e)
	last = Undefined
	for _, s := range prog.Body {
		if es, ok := s.(*ast.ExprStmt); ok {
			last = fr.eval(es.Expression, e)
			continue
		}
		if c, _ := fr.exec(s, e); c == ctlReturn {
			fr.fail(s, "return outside of a function")
		}
	}
	return last, nil
}

func (rt *Runtime) require(consumer, spec string) (Value, error) {
	name := resolver.Resolve(consumer, spec)
	if rt.Resolver != nil {
		var err error
		if name, err = rt.Resolver.Resolve(consumer, spec); err != nil {
			return nil, err
		}
	}
	exports, err := rt.Require(name)
	if err != nil {
		return nil, err
	}
	return exports, nil
}

// env is one lexical scope. Only functions and modules open scopes: var,
// let and const are all function scoped.
type env struct {
	vars   map[string]Value
	parent *env
}

func newEnv(parent *env) *env {
	return &env{vars: map[string]Value{}, parent: parent}
}

func (e *env) declare(name string, v Value) { e.vars[name] = v }

func (e *env) declareVar(name string) {
	if _, ok := e.vars[name]; !ok {
		e.vars[name] = Undefined
	}
}

func (e *env) lookup(name string) (Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// assign updates the nearest binding of name. Undeclared names become
// globals.
func (e *env) assign(name string, v Value) {
	s := e
	for ; ; s = s.parent {
		if _, ok := s.vars[name]; ok || s.parent == nil {
			break
		}
	}
	s.vars[name] = v
}

type ctl int

const (
	ctlNormal ctl = iota
	ctlReturn
)

// frame is the execution state of one function activation.
type frame struct {
	rt   *Runtime
	prog *ast.Program
	this Value
}

func (fr *frame) pos(n ast.Node) token.Position {
	if fr.prog == nil || n == nil {
		return token.Position{}
	}
	return fr.prog.Position(n.NodePos())
}

func (fr *frame) fail(at ast.Node, format string, args ...any) {
	panic(&Error{Pos: fr.pos(at), Msg: fmt.Sprintf(format, args...)})
}

func (fr *frame) unsupported(at ast.Node, what string) {
	panic(&Error{Pos: fr.pos(at), Msg: what + " are outside the restricted subset", Err: ErrNotDesugared})
}

func (fr *frame) wrap(at ast.Node, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Pos: fr.pos(at), Msg: err.Error(), Err: err}
}

// hoist declares the vars and function declarations of a function body.
func (fr *frame) hoist(stmts []ast.Stmt, e *env) {
	for _, s := range stmts {
		switch s := s.(type) {
		case *ast.VarDecl:
			for _, d := range s.Decls {
				id, ok := d.Target.(*ast.Identifier)
				if !ok {
					fr.unsupported(d, "destructuring declarations")
				}
				e.declareVar(id.Name)
			}
		case *ast.FuncDecl:
			e.declare(s.Func.ID.Name, fr.function(s.Func, e, s))
		case *ast.BlockStmt:
			fr.hoist(s.Body, e)
		case *ast.IfStmt:
			fr.hoist([]ast.Stmt{s.Cons}, e)
			if s.Alt != nil {
				fr.hoist([]ast.Stmt{s.Alt}, e)
			}
		case *ast.WhileStmt:
			fr.hoist([]ast.Stmt{s.Body}, e)
		}
	}
}

func (fr *frame) execBody(stmts []ast.Stmt, e *env) (ctl, Value) {
	for _, s := range stmts {
		if c, v := fr.exec(s, e); c == ctlReturn {
			return c, v
		}
	}
	return ctlNormal, Undefined
}

func (fr *frame) exec(s ast.Stmt, e *env) (ctl, Value) {
	switch n := s.(type) {
	case *ast.VarDecl:
		for _, d := range n.Decls {
			id, ok := d.Target.(*ast.Identifier)
			if !ok {
				fr.unsupported(d, "destructuring declarations")
			}
			if d.Init != nil {
				e.assign(id.Name, fr.eval(d.Init, e))
			}
		}
	case *ast.FuncDecl, *ast.EmptyStmt:
	case *ast.ExprStmt:
		fr.eval(n.Expression, e)
	case *ast.ReturnStmt:
		if n.Value == nil {
			return ctlReturn, Undefined
		}
		return ctlReturn, fr.eval(n.Value, e)
	case *ast.BlockStmt:
		return fr.execBody(n.Body, e)
	case *ast.IfStmt:
		if truthy(fr.eval(n.Test, e)) {
			return fr.exec(n.Cons, e)
		}
		if n.Alt != nil {
			return fr.exec(n.Alt, e)
		}
	case *ast.WhileStmt:
		for truthy(fr.eval(n.Test, e)) {
			if c, v := fr.exec(n.Body, e); c == ctlReturn {
				return c, v
			}
		}
	case *ast.ThrowStmt:
		panic(&Error{Pos: fr.pos(n), Thrown: fr.eval(n.Value, e)})
	case *ast.ClassDecl:
		fr.unsupported(n, "class declarations")
	case *ast.ModuleDecl, *ast.ImportDecl, *ast.ExportDecl:
		fr.unsupported(n, "module declarations")
	default:
		fr.fail(s, "cannot execute %s", s.Kind())
	}
	return ctlNormal, Undefined
}

// function creates a closure over e.
func (fr *frame) function(fn *ast.Function, e *env, at ast.Node) *Object {
	if fn.Rest != nil {
		fr.unsupported(at, "rest parameters")
	}
	if fn.Expression() {
		fr.unsupported(at, "expression-bodied functions")
	}
	name := ""
	if fn.ID != nil {
		name = fn.ID.Name
	}
	o := &Object{
		Proto:   fr.rt.functionProto,
		Class:   "Function",
		closure: &closure{fn: fn, env: e, prog: fr.prog},
		name:    name,
	}
	proto := fr.rt.newObject()
	proto.Set("constructor", o)
	o.Set("prototype", proto)
	return o
}

func (fr *frame) call(at ast.Node, fv Value, this Value, args []Value) Value {
	f, ok := fv.(*Object)
	if !ok || !f.callable() {
		fr.fail(at, "TypeError: %s is not a function", describe(at, fv))
	}
	rt := fr.rt
	rt.depth++
	defer func() { rt.depth-- }()
	if rt.depth > rt.MaxDepth {
		fr.fail(at, "RangeError: maximum call stack size exceeded")
	}

	if f.native != nil {
		v, err := f.native(this, args)
		if err != nil {
			panic(fr.wrap(at, err))
		}
		return v
	}

	c := f.closure
	e := newEnv(c.env)
	for i, p := range c.fn.Params {
		v := Undefined
		if i < len(args) {
			v = args[i]
		}
		e.declare(p.Name, v)
	}
	if _, ok := e.vars["arguments"]; !ok {
		e.declare("arguments", &Object{
			Proto: rt.objectProto,
			Class: "Arguments",
			Elems: append([]Value{}, args...),
		})
	}
	inner := &frame{rt: rt, prog: c.prog, this: this}
	inner.hoist(c.fn.Body.Body, e)
	_, v := inner.execBody(c.fn.Body.Body, e)
	return v
}

func describe(at ast.Node, v Value) string {
	switch n := at.(type) {
	case *ast.CallExpr:
		return exprName(n.Callee)
	case *ast.NewExpr:
		return exprName(n.Callee)
	}
	return Inspect(v)
}

func exprName(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Identifier:
		return n.Name
	case *ast.MemberExpr:
		if id, ok := n.Property.(*ast.Identifier); ok && !n.Computed {
			return exprName(n.Object) + "." + id.Name
		}
		return exprName(n.Object) + "[...]"
	case *ast.ThisExpr:
		return "this"
	}
	return "expression"
}
