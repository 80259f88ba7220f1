package ast

// Inspect traverses the tree rooted at n in depth-first order. fn is called
// for every node; returning false skips that node's children.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, fn)
	}
}

// Children returns the direct child nodes of n in source order. Holes,
// elisions and absent optional parts are omitted.
func Children(n Node) []Node {
	var out []Node
	add := func(cs ...Node) {
		for _, c := range cs {
			if !isNil(c) {
				out = append(out, c)
			}
		}
	}
	addFunc := func(fn *Function) {
		if fn == nil {
			return
		}
		if fn.ID != nil {
			add(fn.ID)
		}
		for _, p := range fn.Params {
			add(p)
		}
		if fn.Rest != nil {
			add(fn.Rest)
		}
		if fn.Body != nil {
			add(fn.Body)
		}
		if fn.ExprBody != nil {
			add(fn.ExprBody)
		}
	}

	switch nd := n.(type) {
	case *Program:
		for _, s := range nd.Body {
			add(s)
		}
	case *VarDecl:
		for _, d := range nd.Decls {
			add(d)
		}
	case *Declarator:
		add(nd.Target)
		if nd.Init != nil {
			add(nd.Init)
		}
	case *FuncDecl:
		addFunc(nd.Func)
	case *FuncExpr:
		addFunc(nd.Func)
	case *ArrowFunc:
		addFunc(nd.Func)
	case *ReturnStmt:
		if nd.Value != nil {
			add(nd.Value)
		}
	case *ExprStmt:
		add(nd.Expression)
	case *BlockStmt:
		for _, s := range nd.Body {
			add(s)
		}
	case *IfStmt:
		add(nd.Test, nd.Cons)
		if nd.Alt != nil {
			add(nd.Alt)
		}
	case *WhileStmt:
		add(nd.Test, nd.Body)
	case *ThrowStmt:
		add(nd.Value)
	case *ClassDecl:
		if nd.Name != nil {
			add(nd.Name)
		}
		if nd.Super != nil {
			add(nd.Super)
		}
		for _, m := range nd.Methods {
			add(m)
		}
	case *ModuleDecl:
		if nd.Name != nil {
			add(nd.Name)
		}
		if nd.Source != nil {
			add(nd.Source)
		}
	case *ImportDecl:
		for _, s := range nd.Specifiers {
			if s.Imported != nil {
				add(s.Imported)
			}
			add(s.Local)
		}
		if nd.Source != nil {
			add(nd.Source)
		}
	case *ExportDecl:
		add(nd.Decl)
	case *ArrayExpr:
		for _, e := range nd.Elements {
			if e != nil {
				add(e)
			}
		}
	case *ObjectExpr:
		for _, p := range nd.Props {
			add(p)
		}
	case *Property:
		add(nd.Key, nd.Value)
	case *CallExpr:
		add(nd.Callee)
		for _, a := range nd.Args {
			add(a)
		}
	case *NewExpr:
		add(nd.Callee)
		for _, a := range nd.Args {
			add(a)
		}
	case *MemberExpr:
		add(nd.Object, nd.Property)
	case *AssignExpr:
		add(nd.Left, nd.Right)
	case *BinaryExpr:
		add(nd.Left, nd.Right)
	case *UnaryExpr:
		add(nd.Operand)
	case *UpdateExpr:
		add(nd.Operand)
	case *CondExpr:
		add(nd.Test, nd.Cons, nd.Alt)
	case *ObjectPattern:
		for _, p := range nd.Props {
			add(p)
		}
	case *PatternProp:
		add(nd.Key, nd.Value)
	case *ArrayPattern:
		for _, e := range nd.Elems {
			if e != nil {
				add(e)
			}
		}
	case *RestElement:
		add(nd.Arg)
	}
	return out
}

// isNil reports whether n is a nil interface or a typed nil pointer.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *Identifier:
		return v == nil
	case *StringLit:
		return v == nil
	case *BlockStmt:
		return v == nil
	case *Property:
		return v == nil
	case *PatternProp:
		return v == nil
	case *Declarator:
		return v == nil
	}
	return false
}
