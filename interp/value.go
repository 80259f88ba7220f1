package interp

import (
	"math"
	"strconv"
	"strings"

	"github.com/rubiojr/party/ast"
	"github.com/rubiojr/party/scanner"
)

// Value is a script value: Undefined, Null, bool, float64, string or *Object.
type Value any

type undefinedType struct{}

type nullType struct{}

var (
	// Undefined is the value of missing properties and bare returns.
	Undefined Value = undefinedType{}
	// Null is the null literal.
	Null Value = nullType{}
)

// NativeFunc implements a built-in function.
type NativeFunc func(this Value, args []Value) (Value, error)

// Object is a script object. Arrays and functions are objects carrying
// extra state: Elems for arrays, a closure or native body for functions.
type Object struct {
	Proto *Object
	Class string // "Object", "Array", "Function" or "Error"

	props map[string]Value
	keys  []string

	Elems []Value

	closure *closure
	native  NativeFunc
	name    string
}

type closure struct {
	fn   *ast.Function
	env  *env
	prog *ast.Program
}

func (o *Object) callable() bool { return o.closure != nil || o.native != nil }

// indexed reports whether the object stores its integer keys in Elems.
func (o *Object) indexed() bool { return o.Class == "Array" || o.Class == "Arguments" }

// Own returns an own property.
func (o *Object) Own(key string) (Value, bool) {
	if o.indexed() {
		if key == "length" {
			return float64(len(o.Elems)), true
		}
		if i, ok := arrayIndex(key); ok {
			if i < len(o.Elems) {
				return o.Elems[i], true
			}
			return nil, false
		}
	}
	v, ok := o.props[key]
	return v, ok
}

// Get looks key up along the prototype chain.
func (o *Object) Get(key string) Value {
	for p := o; p != nil; p = p.Proto {
		if v, ok := p.Own(key); ok {
			return v
		}
	}
	return Undefined
}

// Set writes an own property.
func (o *Object) Set(key string, v Value) {
	if o.indexed() {
		if key == "length" {
			n := int(toNumber(v))
			if n < len(o.Elems) {
				o.Elems = o.Elems[:n]
			}
			for len(o.Elems) < n {
				o.Elems = append(o.Elems, Undefined)
			}
			return
		}
		if i, ok := arrayIndex(key); ok {
			for len(o.Elems) <= i {
				o.Elems = append(o.Elems, Undefined)
			}
			o.Elems[i] = v
			return
		}
	}
	if o.props == nil {
		o.props = map[string]Value{}
	}
	if _, ok := o.props[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.props[key] = v
}

// Delete removes an own property.
func (o *Object) Delete(key string) {
	if _, ok := o.props[key]; !ok {
		return
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the own enumerable keys in insertion order, array indices
// first.
func (o *Object) Keys() []string {
	var out []string
	for i := range o.Elems {
		out = append(out, strconv.Itoa(i))
	}
	return append(out, o.keys...)
}

func arrayIndex(key string) (int, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.Atoi(key)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// typeOf implements the typeof operator.
func typeOf(v Value) string {
	switch x := v.(type) {
	case undefinedType:
		return "undefined"
	case nullType:
		return "object"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case *Object:
		if x.callable() {
			return "function"
		}
	}
	return "object"
}

func truthy(v Value) bool {
	switch x := v.(type) {
	case undefinedType, nullType:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	}
	return true
}

func toNumber(v Value) float64 {
	switch x := v.(type) {
	case undefinedType:
		return math.NaN()
	case nullType:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		return x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		n, err := scanner.NumberValue(s)
		if err != nil {
			return math.NaN()
		}
		return n
	}
	return toNumber(toPrimitive(v))
}

func toInt32(v Value) int32 {
	f := toNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(uint32(int64(math.Trunc(f))))
}

func toPrimitive(v Value) Value {
	o, ok := v.(*Object)
	if !ok {
		return v
	}
	switch {
	case o.Class == "Array":
		return joinElems(o.Elems, ",")
	case o.Class == "Error":
		return toString(o.Get("name")) + ": " + toString(o.Get("message"))
	case o.callable():
		return "function " + o.name + "() { [code] }"
	}
	return "[object Object]"
}

func toString(v Value) string {
	switch x := v.(type) {
	case undefinedType:
		return "undefined"
	case nullType:
		return "null"
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatNumber(x)
	case string:
		return x
	}
	return toString(toPrimitive(v))
}

func joinElems(elems []Value, sep string) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		switch e.(type) {
		case undefinedType, nullType:
		default:
			parts[i] = toString(e)
		}
	}
	return strings.Join(parts, sep)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if i := strings.IndexByte(s, 'e'); i >= 0 {
		exp := strings.TrimLeft(s[i+2:], "0")
		s = s[:i+2] + exp
	}
	return s
}

func strictEquals(a, b Value) bool {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case *Object:
		y, ok := b.(*Object)
		return ok && x == y
	}
	return a == b
}

func looseEquals(a, b Value) bool {
	if typeOf(a) == typeOf(b) && !isNullish(a) && !isNullish(b) {
		return strictEquals(a, b)
	}
	if isNullish(a) || isNullish(b) {
		return isNullish(a) && isNullish(b)
	}
	_, ao := a.(*Object)
	_, bo := b.(*Object)
	if ao {
		return looseEquals(toPrimitive(a), b)
	}
	if bo {
		return looseEquals(a, toPrimitive(b))
	}
	return toNumber(a) == toNumber(b)
}

func isNullish(v Value) bool {
	switch v.(type) {
	case undefinedType, nullType:
		return true
	}
	return false
}

// Export converts v to plain Go values: arrays become []any, objects
// map[string]any, Undefined and Null nil. Functions are kept as *Object.
func Export(v Value) any {
	return export(v, map[*Object]bool{})
}

func export(v Value, seen map[*Object]bool) any {
	switch x := v.(type) {
	case undefinedType, nullType:
		return nil
	case *Object:
		if x.callable() || seen[x] {
			return x
		}
		seen[x] = true
		defer delete(seen, x)
		if x.Class == "Array" {
			out := make([]any, len(x.Elems))
			for i, e := range x.Elems {
				out[i] = export(e, seen)
			}
			return out
		}
		out := make(map[string]any, len(x.keys))
		for _, k := range x.keys {
			out[k] = export(x.props[k], seen)
		}
		return out
	}
	return v
}

// Inspect formats v the way console.log prints it.
func Inspect(v Value) string {
	var b strings.Builder
	inspect(&b, v, 0)
	return b.String()
}

func inspect(b *strings.Builder, v Value, depth int) {
	o, ok := v.(*Object)
	if !ok {
		if s, isStr := v.(string); isStr && depth > 0 {
			b.WriteString(strconv.Quote(s))
			return
		}
		b.WriteString(toString(v))
		return
	}
	switch {
	case o.callable():
		b.WriteString("[Function")
		if o.name != "" {
			b.WriteString(": " + o.name)
		}
		b.WriteString("]")
		return
	case o.Class == "Error":
		b.WriteString(toString(o))
		return
	case depth > 2:
		b.WriteString("[" + o.Class + "]")
		return
	case o.Class == "Array":
		b.WriteString("[")
		for i, e := range o.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			inspect(b, e, depth+1)
		}
		b.WriteString("]")
		return
	}
	if len(o.keys) == 0 {
		b.WriteString("{}")
		return
	}
	b.WriteString("{ ")
	for i, k := range o.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k + ": ")
		inspect(b, o.props[k], depth+1)
	}
	b.WriteString(" }")
}
