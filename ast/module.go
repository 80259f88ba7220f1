package ast

// Module constructs are lowered onto the CommonJS loader protocol: every
// import reads from require('source') and every export is a property write on
// the exports object.

// rewriteModuleDecl turns module X from 'src' into var X = require('src').
func rewriteModuleDecl(u *Unit, n Node) Node {
	m := n.(*ModuleDecl)
	if m.Name == nil || m.Source == nil {
		u.fail(ErrMalformedDecl, m, "module declaration needs a name and a source")
	}
	return u.f.Var([]*Declarator{
		u.f.Declarator(u.f.Ident(m.Name.Name, m.Name.Pos), u.require(m.Source, m.Pos), m.Pos),
	}, m.Pos)
}

// rewriteImportDecl binds every specifier to a read of the loaded module.
// With more than one specifier the module is loaded once into a temporary.
func rewriteImportDecl(u *Unit, n Node) Node {
	d := n.(*ImportDecl)
	if d.Source == nil {
		u.fail(ErrMalformedDecl, d, "import declaration without a source")
	}
	switch len(d.Specifiers) {
	case 0:
		return &ExprStmt{Loc: d.Loc, Expression: u.require(d.Source, d.Pos)}
	case 1:
		spec := d.Specifiers[0]
		return u.f.Var([]*Declarator{u.importBinding(spec, u.require(d.Source, d.Pos))}, d.Pos)
	}

	tmp := u.temp(d.Pos)
	decls := make([]*Declarator, 0, len(d.Specifiers)+1)
	decls = append(decls, u.f.Declarator(tmp, u.require(d.Source, d.Pos), d.Pos))
	for _, spec := range d.Specifiers {
		decls = append(decls, u.importBinding(spec, u.f.Ident(tmp.Name, spec.Pos)))
	}
	return u.f.Var(decls, d.Pos)
}

// importBinding builds local = module for a default specifier and
// local = module.imported for a named one.
func (u *Unit) importBinding(spec *ImportSpecifier, module Expr) *Declarator {
	local := u.f.Ident(spec.Local.Name, spec.Local.Pos)
	if spec.Default() {
		return u.f.Declarator(local, module, spec.Pos)
	}
	return u.f.Declarator(local, u.f.Member(module, spec.Imported.Name, spec.Imported.Pos), spec.Pos)
}

// rewriteExportDecl keeps the local binding and mirrors it onto exports.
func rewriteExportDecl(u *Unit, n Node) Node {
	e := n.(*ExportDecl)
	switch d := e.Decl.(type) {
	case *FuncDecl:
		return u.exportFunction(e, d)
	case *VarDecl:
		return u.exportVars(e, d)
	}
	u.warn(e, "export of %s is passed through unchanged", kindOf(e.Decl))
	return n
}

// exportFunction turns export function f() {} into
// var f = exports.f = function () {}.
func (u *Unit) exportFunction(e *ExportDecl, d *FuncDecl) Stmt {
	if d.Func.ID == nil {
		u.fail(ErrMalformedDecl, d, "exported function declaration without a name")
	}
	fn := u.desugarFunction(d.Func)
	anon := *fn
	anon.ID = nil
	name := d.Func.ID
	value := u.f.ExportAssign(name.Name, &FuncExpr{Loc: d.Loc, Func: &anon}, e.Pos)
	return u.f.Var([]*Declarator{u.f.Declarator(u.f.Ident(name.Name, name.Pos), value, e.Pos)}, e.Pos)
}

// exportVars flattens the declaration and assigns every user-visible binding
// through exports. Temporaries stay private. A declarator without an
// initializer exports undefined.
func (u *Unit) exportVars(e *ExportDecl, d *VarDecl) Stmt {
	decls, _ := u.flattenDecls(d.Decls)
	out := make([]*Declarator, 0, len(decls))
	for _, decl := range decls {
		id, ok := decl.Target.(*Identifier)
		if !ok || IsTemp(id.Name) {
			out = append(out, decl)
			continue
		}
		init := decl.Init
		if init == nil {
			init = u.f.Void(decl.Pos)
		}
		out = append(out, u.f.Declarator(id, u.f.ExportAssign(id.Name, init, decl.Pos), decl.Pos))
	}
	return &VarDecl{Loc: e.Loc, Keyword: d.Keyword, Decls: out}
}
