package interp

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

func (rt *Runtime) newObject() *Object {
	return &Object{Proto: rt.objectProto, Class: "Object"}
}

func (rt *Runtime) newArray(elems []Value) *Object {
	if elems == nil {
		elems = []Value{}
	}
	return &Object{Proto: rt.arrayProto, Class: "Array", Elems: elems}
}

// NewObject returns an empty plain object.
func (rt *Runtime) NewObject() *Object { return rt.newObject() }

// NewArray returns an array holding elems.
func (rt *Runtime) NewArray(elems ...Value) *Object { return rt.newArray(elems) }

// NewFunc wraps fn as a callable script value.
func (rt *Runtime) NewFunc(name string, fn NativeFunc) *Object {
	return rt.newFunc(name, fn)
}

func (rt *Runtime) newFunc(name string, fn NativeFunc) *Object {
	return &Object{Proto: rt.functionProto, Class: "Function", native: fn, name: name}
}

func (rt *Runtime) method(o *Object, name string, fn NativeFunc) {
	o.Set(name, rt.newFunc(name, fn))
}

func arg(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}

// listOf returns the elements of an array-like value.
func listOf(v Value) []Value {
	switch o := v.(type) {
	case *Object:
		if o.indexed() {
			return append([]Value{}, o.Elems...)
		}
		n := int(toNumber(o.Get("length")))
		out := make([]Value, 0, max(n, 0))
		for i := 0; i < n; i++ {
			out = append(out, o.Get(fmt.Sprint(i)))
		}
		return out
	case string:
		var out []Value
		for _, r := range o {
			out = append(out, string(r))
		}
		return out
	}
	return nil
}

// relIndex clamps a possibly negative slice bound to [0, n].
func relIndex(v Value, n, def int) int {
	if _, ok := v.(undefinedType); ok {
		return def
	}
	i := int(toNumber(v))
	if i < 0 {
		i += n
	}
	return min(max(i, 0), n)
}

func (rt *Runtime) callable(v Value, what string) (*Object, error) {
	f, ok := v.(*Object)
	if !ok || !f.callable() {
		return nil, fmt.Errorf("TypeError: %s is not a function", what)
	}
	return f, nil
}

func (rt *Runtime) installBuiltins() {
	rt.objectProto = &Object{Class: "Object"}
	rt.functionProto = &Object{Proto: rt.objectProto, Class: "Object"}
	rt.arrayProto = &Object{Proto: rt.objectProto, Class: "Object"}
	rt.stringProto = &Object{Proto: rt.objectProto, Class: "Object"}
	rt.errorProto = &Object{Proto: rt.objectProto, Class: "Object"}

	rt.installObject()
	rt.installFunction()
	rt.installArray()
	rt.installString()
	rt.installError()

	rt.Define("undefined", Undefined)
	rt.Define("NaN", math.NaN())
	rt.Define("Infinity", math.Inf(1))
	rt.Define("String", rt.newFunc("String", func(_ Value, args []Value) (Value, error) {
		if len(args) == 0 {
			return "", nil
		}
		return toString(args[0]), nil
	}))
	rt.Define("Number", rt.newFunc("Number", func(_ Value, args []Value) (Value, error) {
		if len(args) == 0 {
			return 0.0, nil
		}
		return toNumber(args[0]), nil
	}))
	rt.Define("isNaN", rt.newFunc("isNaN", func(_ Value, args []Value) (Value, error) {
		return math.IsNaN(toNumber(arg(args, 0))), nil
	}))

	mathObj := rt.newObject()
	rt.method(mathObj, "floor", func(_ Value, args []Value) (Value, error) {
		return math.Floor(toNumber(arg(args, 0))), nil
	})
	rt.method(mathObj, "abs", func(_ Value, args []Value) (Value, error) {
		return math.Abs(toNumber(arg(args, 0))), nil
	})
	rt.method(mathObj, "max", func(_ Value, args []Value) (Value, error) {
		r := math.Inf(-1)
		for _, a := range args {
			r = math.Max(r, toNumber(a))
		}
		return r, nil
	})
	rt.method(mathObj, "min", func(_ Value, args []Value) (Value, error) {
		r := math.Inf(1)
		for _, a := range args {
			r = math.Min(r, toNumber(a))
		}
		return r, nil
	})
	rt.Define("Math", mathObj)

	console := rt.newObject()
	rt.method(console, "log", func(_ Value, args []Value) (Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = Inspect(a)
		}
		_, err := fmt.Fprintln(rt.Stdout, strings.Join(parts, " "))
		return Undefined, err
	})
	rt.Define("console", console)
}

func (rt *Runtime) installObject() {
	rt.method(rt.objectProto, "hasOwnProperty", func(this Value, args []Value) (Value, error) {
		o, ok := this.(*Object)
		if !ok {
			return false, nil
		}
		_, found := o.Own(toString(arg(args, 0)))
		return found, nil
	})
	rt.method(rt.objectProto, "toString", func(this Value, _ []Value) (Value, error) {
		if _, ok := this.(*Object); ok {
			return "[object Object]", nil
		}
		return toString(this), nil
	})

	ctor := rt.newFunc("Object", func(_ Value, args []Value) (Value, error) {
		if o, ok := arg(args, 0).(*Object); ok {
			return o, nil
		}
		return rt.newObject(), nil
	})
	ctor.Set("prototype", rt.objectProto)
	rt.method(ctor, "keys", func(_ Value, args []Value) (Value, error) {
		o, ok := arg(args, 0).(*Object)
		if !ok {
			return nil, errors.New("TypeError: Object.keys called on non-object")
		}
		var keys []Value
		for _, k := range o.Keys() {
			keys = append(keys, k)
		}
		return rt.newArray(keys), nil
	})
	rt.objectProto.Set("constructor", ctor)
	rt.Define("Object", ctor)
}

func (rt *Runtime) installFunction() {
	rt.method(rt.functionProto, "call", func(this Value, args []Value) (Value, error) {
		f, err := rt.callable(this, "Function.prototype.call receiver")
		if err != nil {
			return nil, err
		}
		var rest []Value
		if len(args) > 1 {
			rest = args[1:]
		}
		return rt.Call(f, arg(args, 0), rest...)
	})
	rt.method(rt.functionProto, "apply", func(this Value, args []Value) (Value, error) {
		f, err := rt.callable(this, "Function.prototype.apply receiver")
		if err != nil {
			return nil, err
		}
		return rt.Call(f, arg(args, 0), listOf(arg(args, 1))...)
	})
	rt.method(rt.functionProto, "bind", func(this Value, args []Value) (Value, error) {
		f, err := rt.callable(this, "Function.prototype.bind receiver")
		if err != nil {
			return nil, err
		}
		boundThis := arg(args, 0)
		var bound []Value
		if len(args) > 1 {
			bound = append(bound, args[1:]...)
		}
		return rt.newFunc("bound "+f.name, func(_ Value, more []Value) (Value, error) {
			all := append(append([]Value{}, bound...), more...)
			return rt.Call(f, boundThis, all...)
		}), nil
	})
}

func (rt *Runtime) installArray() {
	ap := rt.arrayProto
	self := func(this Value, name string) (*Object, error) {
		o, ok := this.(*Object)
		if !ok || o.Class != "Array" {
			return nil, fmt.Errorf("TypeError: Array.prototype.%s called on non-array", name)
		}
		return o, nil
	}
	rt.method(ap, "push", func(this Value, args []Value) (Value, error) {
		o, err := self(this, "push")
		if err != nil {
			return nil, err
		}
		o.Elems = append(o.Elems, args...)
		return float64(len(o.Elems)), nil
	})
	rt.method(ap, "pop", func(this Value, _ []Value) (Value, error) {
		o, err := self(this, "pop")
		if err != nil {
			return nil, err
		}
		if len(o.Elems) == 0 {
			return Undefined, nil
		}
		last := o.Elems[len(o.Elems)-1]
		o.Elems = o.Elems[:len(o.Elems)-1]
		return last, nil
	})
	rt.method(ap, "slice", func(this Value, args []Value) (Value, error) {
		list := listOf(this)
		start := relIndex(arg(args, 0), len(list), 0)
		end := relIndex(arg(args, 1), len(list), len(list))
		if end < start {
			end = start
		}
		return rt.newArray(append([]Value{}, list[start:end]...)), nil
	})
	rt.method(ap, "join", func(this Value, args []Value) (Value, error) {
		sep := ","
		if s, ok := arg(args, 0).(string); ok {
			sep = s
		}
		return joinElems(listOf(this), sep), nil
	})
	rt.method(ap, "indexOf", func(this Value, args []Value) (Value, error) {
		for i, v := range listOf(this) {
			if strictEquals(v, arg(args, 0)) {
				return float64(i), nil
			}
		}
		return -1.0, nil
	})
	rt.method(ap, "concat", func(this Value, args []Value) (Value, error) {
		out := listOf(this)
		for _, a := range args {
			if o, ok := a.(*Object); ok && o.Class == "Array" {
				out = append(out, o.Elems...)
				continue
			}
			out = append(out, a)
		}
		return rt.newArray(out), nil
	})
	rt.method(ap, "map", func(this Value, args []Value) (Value, error) {
		f, err := rt.callable(arg(args, 0), "map callback")
		if err != nil {
			return nil, err
		}
		list := listOf(this)
		out := make([]Value, len(list))
		for i, v := range list {
			if out[i], err = rt.Call(f, arg(args, 1), v, float64(i), this); err != nil {
				return nil, err
			}
		}
		return rt.newArray(out), nil
	})
	rt.method(ap, "forEach", func(this Value, args []Value) (Value, error) {
		f, err := rt.callable(arg(args, 0), "forEach callback")
		if err != nil {
			return nil, err
		}
		for i, v := range listOf(this) {
			if _, err := rt.Call(f, arg(args, 1), v, float64(i), this); err != nil {
				return nil, err
			}
		}
		return Undefined, nil
	})

	ctor := rt.newFunc("Array", func(_ Value, args []Value) (Value, error) {
		if len(args) == 1 {
			if n, ok := args[0].(float64); ok {
				elems := make([]Value, int(n))
				for i := range elems {
					elems[i] = Undefined
				}
				return rt.newArray(elems), nil
			}
		}
		return rt.newArray(append([]Value{}, args...)), nil
	})
	ctor.Set("prototype", ap)
	rt.method(ctor, "isArray", func(_ Value, args []Value) (Value, error) {
		o, ok := arg(args, 0).(*Object)
		return ok && o.Class == "Array", nil
	})
	ap.Set("constructor", ctor)
	rt.Define("Array", ctor)
}

func (rt *Runtime) installString() {
	sp := rt.stringProto
	str := func(this Value) string { return toString(this) }
	rt.method(sp, "charAt", func(this Value, args []Value) (Value, error) {
		r := []rune(str(this))
		i := int(toNumber(arg(args, 0)))
		if i < 0 || i >= len(r) {
			return "", nil
		}
		return string(r[i]), nil
	})
	rt.method(sp, "indexOf", func(this Value, args []Value) (Value, error) {
		return float64(strings.Index(str(this), toString(arg(args, 0)))), nil
	})
	rt.method(sp, "slice", func(this Value, args []Value) (Value, error) {
		r := []rune(str(this))
		start := relIndex(arg(args, 0), len(r), 0)
		end := relIndex(arg(args, 1), len(r), len(r))
		if end < start {
			end = start
		}
		return string(r[start:end]), nil
	})
	rt.method(sp, "toUpperCase", func(this Value, _ []Value) (Value, error) {
		return strings.ToUpper(str(this)), nil
	})
	rt.method(sp, "toLowerCase", func(this Value, _ []Value) (Value, error) {
		return strings.ToLower(str(this)), nil
	})
	rt.method(sp, "split", func(this Value, args []Value) (Value, error) {
		var out []Value
		for _, part := range strings.Split(str(this), toString(arg(args, 0))) {
			out = append(out, part)
		}
		return rt.newArray(out), nil
	})
}

func (rt *Runtime) installError() {
	rt.errorProto.Set("name", "Error")
	rt.errorProto.Set("message", "")
	ctor := rt.newFunc("Error", func(this Value, args []Value) (Value, error) {
		o, ok := this.(*Object)
		if !ok || o.Proto != rt.errorProto {
			o = &Object{Proto: rt.errorProto}
		}
		o.Class = "Error"
		if m := arg(args, 0); m != Undefined {
			o.Set("message", toString(m))
		}
		return o, nil
	})
	ctor.Set("prototype", rt.errorProto)
	rt.errorProto.Set("constructor", ctor)
	rt.Define("Error", ctor)
}
