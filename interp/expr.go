package interp

import (
	"math"
	"unicode/utf16"

	"github.com/rubiojr/party/ast"
)

func (fr *frame) eval(x ast.Expr, e *env) Value {
	switch n := x.(type) {
	case *ast.Identifier:
		v, ok := e.lookup(n.Name)
		if !ok {
			fr.fail(n, "ReferenceError: %s is not defined", n.Name)
		}
		return v
	case *ast.NumberLit:
		return n.Value
	case *ast.StringLit:
		return n.Value
	case *ast.BoolLit:
		return n.Value
	case *ast.NullLit:
		return Null
	case *ast.ThisExpr:
		return fr.this

	case *ast.ArrayExpr:
		elems := make([]Value, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = Undefined
			if el != nil {
				elems[i] = fr.eval(el, e)
			}
		}
		return fr.rt.newArray(elems)

	case *ast.ObjectExpr:
		o := fr.rt.newObject()
		for _, p := range n.Props {
			if p.Shorthand {
				fr.unsupported(p, "shorthand properties")
			}
			if p.Method {
				fr.unsupported(p, "method definitions")
			}
			o.Set(fr.propKey(p.Key, p.Computed, e), fr.eval(p.Value, e))
		}
		return o

	case *ast.FuncExpr:
		if n.Func.ID == nil {
			return fr.function(n.Func, e, n)
		}
		scope := newEnv(e)
		fn := fr.function(n.Func, scope, n)
		scope.declare(n.Func.ID.Name, fn)
		return fn

	case *ast.ArrowFunc:
		fr.unsupported(n, "arrow functions")

	case *ast.CallExpr:
		if m, ok := n.Callee.(*ast.MemberExpr); ok {
			obj := fr.eval(m.Object, e)
			fn := fr.getProp(m, obj, fr.memberKey(m, e))
			return fr.call(n, fn, obj, fr.evalArgs(n.Args, e))
		}
		fn := fr.eval(n.Callee, e)
		return fr.call(n, fn, Undefined, fr.evalArgs(n.Args, e))

	case *ast.NewExpr:
		fv := fr.eval(n.Callee, e)
		args := fr.evalArgs(n.Args, e)
		f, ok := fv.(*Object)
		if !ok || !f.callable() {
			fr.fail(n, "TypeError: %s is not a constructor", exprName(n.Callee))
		}
		obj := fr.rt.newObject()
		if p, ok := f.Get("prototype").(*Object); ok {
			obj.Proto = p
		}
		if res, ok := fr.call(n, f, obj, args).(*Object); ok {
			return res
		}
		return obj

	case *ast.MemberExpr:
		obj := fr.eval(n.Object, e)
		return fr.getProp(n, obj, fr.memberKey(n, e))

	case *ast.AssignExpr:
		return fr.assign(n, e)

	case *ast.BinaryExpr:
		left := fr.eval(n.Left, e)
		switch n.Op {
		case "&&":
			if !truthy(left) {
				return left
			}
			return fr.eval(n.Right, e)
		case "||":
			if truthy(left) {
				return left
			}
			return fr.eval(n.Right, e)
		}
		return fr.binary(n, n.Op, left, fr.eval(n.Right, e))

	case *ast.UnaryExpr:
		return fr.unary(n, e)

	case *ast.UpdateExpr:
		return fr.update(n, e)

	case *ast.CondExpr:
		if truthy(fr.eval(n.Test, e)) {
			return fr.eval(n.Cons, e)
		}
		return fr.eval(n.Alt, e)
	}
	fr.fail(x, "cannot evaluate %s", x.Kind())
	return nil
}

func (fr *frame) evalArgs(args []ast.Expr, e *env) []Value {
	out := make([]Value, len(args))
	for i, a := range args {
		out[i] = fr.eval(a, e)
	}
	return out
}

func (fr *frame) memberKey(m *ast.MemberExpr, e *env) string {
	if m.Computed {
		return toString(fr.eval(m.Property, e))
	}
	return m.Property.(*ast.Identifier).Name
}

func (fr *frame) propKey(key ast.Expr, computed bool, e *env) string {
	if computed {
		return toString(fr.eval(key, e))
	}
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name
	case *ast.StringLit:
		return k.Value
	case *ast.NumberLit:
		return formatNumber(k.Value)
	}
	fr.fail(key, "invalid property key %s", key.Kind())
	return ""
}

func (fr *frame) getProp(at ast.Node, obj Value, key string) Value {
	switch o := obj.(type) {
	case *Object:
		return o.Get(key)
	case string:
		units := utf16.Encode([]rune(o))
		if key == "length" {
			return float64(len(units))
		}
		if i, ok := arrayIndex(key); ok {
			if i < len(units) {
				return string(utf16.Decode(units[i : i+1]))
			}
			return Undefined
		}
		return fr.rt.stringProto.Get(key)
	case undefinedType, nullType:
		fr.fail(at, "TypeError: cannot read properties of %s (reading '%s')", toString(obj), key)
	}
	return fr.rt.objectProto.Get(key)
}

func (fr *frame) setProp(at ast.Node, obj Value, key string, v Value) {
	switch o := obj.(type) {
	case *Object:
		o.Set(key, v)
	case undefinedType, nullType:
		fr.fail(at, "TypeError: cannot set properties of %s (setting '%s')", toString(obj), key)
	}
}

func (fr *frame) assign(n *ast.AssignExpr, e *env) Value {
	op := ""
	if n.Op != "=" {
		op = n.Op[:len(n.Op)-1]
	}
	switch t := n.Left.(type) {
	case *ast.Identifier:
		var v Value
		if op == "" {
			v = fr.eval(n.Right, e)
		} else {
			v = fr.binary(n, op, fr.eval(t, e), fr.eval(n.Right, e))
		}
		e.assign(t.Name, v)
		return v
	case *ast.MemberExpr:
		obj := fr.eval(t.Object, e)
		key := fr.memberKey(t, e)
		var v Value
		if op == "" {
			v = fr.eval(n.Right, e)
		} else {
			v = fr.binary(n, op, fr.getProp(t, obj, key), fr.eval(n.Right, e))
		}
		fr.setProp(t, obj, key, v)
		return v
	}
	fr.fail(n, "invalid assignment target")
	return nil
}

func (fr *frame) update(n *ast.UpdateExpr, e *env) Value {
	delta := 1.0
	if n.Op == "--" {
		delta = -1
	}
	var old float64
	switch t := n.Operand.(type) {
	case *ast.Identifier:
		old = toNumber(fr.eval(t, e))
		e.assign(t.Name, old+delta)
	case *ast.MemberExpr:
		obj := fr.eval(t.Object, e)
		key := fr.memberKey(t, e)
		old = toNumber(fr.getProp(t, obj, key))
		fr.setProp(t, obj, key, old+delta)
	default:
		fr.fail(n, "invalid update target")
	}
	if n.Prefix {
		return old + delta
	}
	return old
}

func (fr *frame) unary(n *ast.UnaryExpr, e *env) Value {
	switch n.Op {
	case "typeof":
		if id, ok := n.Operand.(*ast.Identifier); ok {
			v, found := e.lookup(id.Name)
			if !found {
				return "undefined"
			}
			return typeOf(v)
		}
		return typeOf(fr.eval(n.Operand, e))
	case "delete":
		m, ok := n.Operand.(*ast.MemberExpr)
		if !ok {
			fr.eval(n.Operand, e)
			return true
		}
		if o, ok := fr.eval(m.Object, e).(*Object); ok {
			key := fr.memberKey(m, e)
			if i, isIdx := arrayIndex(key); isIdx && o.indexed() && i < len(o.Elems) {
				o.Elems[i] = Undefined
			} else {
				o.Delete(key)
			}
		}
		return true
	}
	v := fr.eval(n.Operand, e)
	switch n.Op {
	case "!":
		return !truthy(v)
	case "-":
		return -toNumber(v)
	case "+":
		return toNumber(v)
	case "~":
		return float64(^toInt32(v))
	case "void":
		return Undefined
	}
	fr.fail(n, "unknown unary operator %s", n.Op)
	return nil
}

func (fr *frame) binary(at ast.Node, op string, a, b Value) Value {
	switch op {
	case "+":
		pa, pb := toPrimitive(a), toPrimitive(b)
		_, as := pa.(string)
		_, bs := pb.(string)
		if as || bs {
			return toString(pa) + toString(pb)
		}
		return toNumber(pa) + toNumber(pb)
	case "-":
		return toNumber(a) - toNumber(b)
	case "*":
		return toNumber(a) * toNumber(b)
	case "/":
		return toNumber(a) / toNumber(b)
	case "%":
		return math.Mod(toNumber(a), toNumber(b))
	case "<", ">", "<=", ">=":
		return compare(op, toPrimitive(a), toPrimitive(b))
	case "==":
		return looseEquals(a, b)
	case "!=":
		return !looseEquals(a, b)
	case "===":
		return strictEquals(a, b)
	case "!==":
		return !strictEquals(a, b)
	case "&":
		return float64(toInt32(a) & toInt32(b))
	case "|":
		return float64(toInt32(a) | toInt32(b))
	case "^":
		return float64(toInt32(a) ^ toInt32(b))
	case "<<":
		return float64(toInt32(a) << (uint32(toInt32(b)) & 31))
	case ">>":
		return float64(toInt32(a) >> (uint32(toInt32(b)) & 31))
	case ">>>":
		return float64(uint32(toInt32(a)) >> (uint32(toInt32(b)) & 31))
	case "instanceof":
		f, ok := b.(*Object)
		if !ok || !f.callable() {
			fr.fail(at, "TypeError: right-hand side of instanceof is not callable")
		}
		o, ok := a.(*Object)
		if !ok {
			return false
		}
		proto, _ := f.Get("prototype").(*Object)
		for p := o.Proto; p != nil; p = p.Proto {
			if p == proto {
				return true
			}
		}
		return false
	case "in":
		o, ok := b.(*Object)
		if !ok {
			fr.fail(at, "TypeError: cannot use 'in' operator to search for '%s' in %s", toString(a), toString(b))
		}
		key := toString(a)
		for p := o; p != nil; p = p.Proto {
			if _, found := p.Own(key); found {
				return true
			}
		}
		return false
	}
	fr.fail(at, "unknown operator %s", op)
	return nil
}

func compare(op string, a, b Value) bool {
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			switch op {
			case "<":
				return as < bs
			case ">":
				return as > bs
			case "<=":
				return as <= bs
			}
			return as >= bs
		}
	}
	x, y := toNumber(a), toNumber(b)
	switch op {
	case "<":
		return x < y
	case ">":
		return x > y
	case "<=":
		return x <= y
	}
	return x >= y
}
