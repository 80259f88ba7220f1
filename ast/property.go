package ast

// rewriteProperty normalizes an object literal member to the plain
// key: value form. Shorthand {a} already carries a as its value and a method
// {m() {}} carries its function expression, so both only lose their flags.
func rewriteProperty(u *Unit, n Node) Node {
	p := n.(*Property)
	key := p.Key
	if p.Computed {
		key = u.compileExpr(p.Key)
	}
	value := u.compileExpr(p.Value)
	if key == p.Key && value == p.Value && !p.Shorthand && !p.Method {
		return n
	}
	return &Property{Loc: p.Loc, Key: key, Value: value, Computed: p.Computed}
}
