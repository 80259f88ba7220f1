package ast

// desugarFunction rewrites the shared parts of a function: an expression body
// becomes a block returning that expression, and a rest parameter becomes a
// leading declaration that slices the trailing arguments. fn is returned
// unchanged when neither applies and the body compiles to itself.
func (u *Unit) desugarFunction(fn *Function) *Function {
	var body *BlockStmt
	switch {
	case fn.Expression():
		body = u.f.ReturnBlock(u.compileExpr(fn.ExprBody), fn.ExprBody.NodePos())
	case fn.Body != nil:
		body = u.compileBlock(fn.Body)
	default:
		body = &BlockStmt{Loc: fn.Loc}
	}

	if fn.Rest != nil {
		pos := fn.Rest.Pos
		rest := u.f.Var([]*Declarator{
			u.f.Declarator(u.f.Ident(fn.Rest.Name, pos), u.f.SliceArguments(len(fn.Params), pos), pos),
		}, pos)
		stmts := make([]Stmt, 0, len(body.Body)+1)
		stmts = append(stmts, rest)
		stmts = append(stmts, body.Body...)
		body = &BlockStmt{Loc: body.Loc, Body: stmts}
	}

	if body == fn.Body && fn.Rest == nil && !fn.Expression() {
		return fn
	}
	return u.f.FunctionWithBody(fn, body)
}

func rewriteFuncDecl(u *Unit, n Node) Node {
	d := n.(*FuncDecl)
	fn := u.desugarFunction(d.Func)
	if fn == d.Func {
		return n
	}
	return &FuncDecl{Loc: d.Loc, Func: fn}
}

func rewriteFuncExpr(u *Unit, n Node) Node {
	e := n.(*FuncExpr)
	fn := u.desugarFunction(e.Func)
	if fn == e.Func {
		return n
	}
	return &FuncExpr{Loc: e.Loc, Func: fn}
}

// rewriteArrowFunc turns (params) => body into
// function (params) { ... }.bind(this). The receiver is fixed at creation;
// arguments is not captured lexically.
func rewriteArrowFunc(u *Unit, n Node) Node {
	a := n.(*ArrowFunc)
	fn := u.desugarFunction(a.Func)
	if fn == a.Func {
		cp := *fn
		fn = &cp
	}
	return u.f.BindThis(&FuncExpr{Loc: a.Loc, Func: fn}, a.Pos)
}
