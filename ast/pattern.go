package ast

// Pattern flattening turns destructuring declarations into flat name = expr
// declarators. The initializer is evaluated at most once: anything that is
// not already a bare name is first stored in a temporary, and every
// extraction reads from that temporary. Declarators come out in left-to-right,
// outer-to-inner source order.

func rewriteVarDecl(u *Unit, n Node) Node {
	d := n.(*VarDecl)
	decls, changed := u.flattenDecls(d.Decls)
	if !changed {
		return n
	}
	return &VarDecl{Loc: d.Loc, Keyword: d.Keyword, Decls: decls}
}

// flattenDecls compiles every declarator of a declaration, expanding pattern
// targets. Simple-name declarators only get their initializer compiled.
func (u *Unit) flattenDecls(decls []*Declarator) ([]*Declarator, bool) {
	out := make([]*Declarator, 0, len(decls))
	changed := false
	for _, decl := range decls {
		switch target := decl.Target.(type) {
		case *Identifier:
			init := u.compileExpr(decl.Init)
			if init != decl.Init {
				changed = true
				decl = u.f.Declarator(target, init, decl.Pos)
			}
			out = append(out, decl)
		case *ObjectPattern, *ArrayPattern:
			changed = true
			out = u.flatten(out, decl)
		default:
			u.fail(ErrMalformedPattern, decl, "declaration target must be a name or a pattern, found %s", kindOf(decl.Target))
		}
	}
	return out, changed
}

// flatten appends the flat declarators for one pattern declarator to out.
func (u *Unit) flatten(out []*Declarator, decl *Declarator) []*Declarator {
	if decl.Init == nil {
		u.fail(ErrMalformedPattern, decl, "destructuring declaration without an initializer")
	}
	src, ok := decl.Init.(*Identifier)
	if !ok {
		pos := decl.Init.NodePos()
		src = u.temp(pos)
		out = append(out, u.f.Declarator(src, u.compileExpr(decl.Init), pos))
	}
	return u.walkPattern(out, src, decl.Target)
}

// walkPattern emits one declarator per entry of p, reading from src.
func (u *Unit) walkPattern(out []*Declarator, src *Identifier, p Pattern) []*Declarator {
	switch p := p.(type) {
	case *ObjectPattern:
		for _, prop := range p.Props {
			if prop == nil || prop.Key == nil {
				u.fail(ErrMalformedPattern, p, "object pattern entry without a key")
			}
			access := u.propertyAccess(src, prop)
			out = u.bind(out, prop.Value, access, prop)
		}
	case *ArrayPattern:
		for i, el := range p.Elems {
			// Elisions bind nothing but still advance the index.
			if el == nil {
				continue
			}
			if _, rest := el.(*RestElement); rest {
				u.fail(ErrUnsupported, el, "rest element in array pattern")
			}
			pos := el.NodePos()
			access := u.f.Index(u.f.Ident(src.Name, pos), u.f.Number(i, pos), pos)
			out = u.bind(out, el, access, el)
		}
	default:
		u.fail(ErrMalformedPattern, p, "expected object or array pattern, found %s", kindOf(p))
	}
	return out
}

// bind emits target = access. Nested patterns get a temporary holding the
// extracted value and are walked from it.
func (u *Unit) bind(out []*Declarator, target Pattern, access Expr, at Node) []*Declarator {
	pos := at.NodePos()
	switch t := target.(type) {
	case *Identifier:
		return append(out, u.f.Declarator(u.f.Ident(t.Name, t.Pos), access, pos))
	case *ObjectPattern, *ArrayPattern:
		tmp := u.temp(pos)
		out = append(out, u.f.Declarator(tmp, access, pos))
		return u.walkPattern(out, tmp, t)
	}
	u.fail(ErrMalformedPattern, at, "pattern element must be a name, object pattern or array pattern, found %s", kindOf(target))
	return nil
}

// propertyAccess builds src.key, or src[key] for literal and computed keys.
func (u *Unit) propertyAccess(src *Identifier, prop *PatternProp) Expr {
	pos := prop.Pos
	obj := u.f.Ident(src.Name, pos)
	switch k := prop.Key.(type) {
	case *Identifier:
		if !prop.Computed {
			return u.f.Member(obj, k.Name, k.Pos)
		}
		return u.f.Index(obj, u.f.Ident(k.Name, k.Pos), pos)
	case *StringLit:
		return u.f.Index(obj, u.f.String(k.Value, k.Pos), pos)
	case *NumberLit:
		return u.f.Index(obj, &NumberLit{Loc: k.Loc, Value: k.Value, Raw: k.Raw}, pos)
	}
	if prop.Computed {
		return u.f.Index(obj, u.compileExpr(prop.Key), pos)
	}
	u.fail(ErrMalformedPattern, prop, "invalid object pattern key %s", kindOf(prop.Key))
	return nil
}

func kindOf(n Node) string {
	if n == nil {
		return "nothing"
	}
	return n.Kind().String()
}
