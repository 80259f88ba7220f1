// Package parser builds an ast.Program from source text of the scripting
// dialect. It is a hand-written recursive-descent parser over the token
// stream produced by package scanner, with automatic semicolon insertion at
// line breaks, closing braces and end of input.
package parser

import (
	"errors"
	gotoken "go/token"

	"github.com/rubiojr/party/ast"
	"github.com/rubiojr/party/scanner"
	mscanner "modernc.org/scanner"
	"modernc.org/token"
)

// Options configures a parse.
type Options struct {
	// Positions records a source position on every node and keeps the
	// position table on the Program. Errors carry positions either way.
	Positions bool
	// Compiled accepts the identifiers the desugaring pass mints, so that
	// compiler output can be parsed again.
	Compiled bool
}

// Parse parses one source unit. path is used for positions only.
//
// Errors are returned as an mscanner.ErrList holding the first lexical or
// syntax error.
func Parse(path string, src []byte, opts Options) (prog *ast.Program, err error) {
	file := token.NewFile(path, len(src))
	file.SetLinesForContent(src)

	var mode scanner.Mode
	if opts.Compiled {
		mode |= scanner.Compiled
	}
	toks, err := scanner.ScanFile(file, string(src), mode)
	if err != nil {
		var serr mscanner.ErrWithPosition
		if errors.As(err, &serr) {
			return nil, mscanner.ErrList{serr}
		}
		return nil, err
	}

	p := &parser{toks: toks, file: file, opts: opts}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			prog, err = nil, p.errs.Err()
		}
	}()

	prog = &ast.Program{Loc: p.loc(p.peek()), Path: path}
	if opts.Positions {
		prog.File = file
	}
	for p.peek().Kind != scanner.EOF {
		prog.Body = append(prog.Body, p.parseStatement())
	}
	return prog, nil
}

type parser struct {
	toks []scanner.Token
	i    int
	file *token.File
	opts Options
	errs mscanner.ErrList
}

// bailout unwinds the parse after the first error is recorded.
type bailout struct{}

// --- token helpers ---

func (p *parser) peek() scanner.Token { return p.peekAt(0) }

func (p *parser) peekAt(n int) scanner.Token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) next() scanner.Token {
	tok := p.peek()
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return tok
}

// accept consumes the next token if it is the punctuator or keyword text.
func (p *parser) accept(text string) bool {
	if p.peek().Is(text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(text string) scanner.Token {
	tok := p.peek()
	if !tok.Is(text) {
		p.failAt(tok, "expected %q, found %s", text, tok)
	}
	return p.next()
}

func (p *parser) expectIdent() *ast.Identifier {
	tok := p.peek()
	if tok.Kind != scanner.Ident {
		p.failAt(tok, "expected identifier, found %s", tok)
	}
	p.next()
	return &ast.Identifier{Loc: p.loc(tok), Name: tok.Text}
}

// isContextual reports whether tok is the identifier word, as used by the
// contextual keywords module, from and as.
func isContextual(tok scanner.Token, word string) bool {
	return tok.Kind == scanner.Ident && tok.Text == word
}

func (p *parser) expectContextual(word string) {
	tok := p.peek()
	if !isContextual(tok, word) {
		p.failAt(tok, "expected %q, found %s", word, tok)
	}
	p.next()
}

// semicolon consumes a statement terminator, inserting one where the
// grammar allows.
func (p *parser) semicolon() {
	tok := p.peek()
	switch {
	case tok.Is(";"):
		p.next()
	case tok.Is("}"), tok.Kind == scanner.EOF, tok.NewlineBefore:
	default:
		p.failAt(tok, "expected \";\", found %s", tok)
	}
}

func (p *parser) loc(tok scanner.Token) ast.Loc {
	if !p.opts.Positions {
		return ast.Loc{Pos: token.NoPos}
	}
	return ast.Loc{Pos: p.file.Pos(tok.Offset)}
}

func (p *parser) failAt(tok scanner.Token, format string, args ...any) {
	pos := p.file.Position(p.file.Pos(tok.Offset))
	p.errs.AddErr(gotoken.Position(pos), format, args...)
	panic(bailout{})
}

// --- statements ---

func (p *parser) parseStatement() ast.Stmt {
	tok := p.peek()
	switch {
	case tok.Is("var"), tok.Is("let"), tok.Is("const"):
		d := p.parseVarDecl()
		p.semicolon()
		return d
	case tok.Is("function"):
		return p.parseFuncDecl()
	case tok.Is("class"):
		return p.parseClass()
	case tok.Is("import"):
		return p.parseImport()
	case tok.Is("export"):
		return p.parseExport()
	case tok.Is("return"):
		return p.parseReturn()
	case tok.Is("if"):
		return p.parseIf()
	case tok.Is("while"):
		p.next()
		p.expect("(")
		test := p.parseExpression()
		p.expect(")")
		return &ast.WhileStmt{Loc: p.loc(tok), Test: test, Body: p.parseStatement()}
	case tok.Is("throw"):
		p.next()
		if p.peek().NewlineBefore {
			p.failAt(p.peek(), "line break after throw")
		}
		v := p.parseExpression()
		p.semicolon()
		return &ast.ThrowStmt{Loc: p.loc(tok), Value: v}
	case tok.Is("{"):
		return p.parseBlock()
	case tok.Is(";"):
		p.next()
		return &ast.EmptyStmt{Loc: p.loc(tok)}
	case p.atModuleDecl():
		return p.parseModuleDecl()
	case tok.Kind == scanner.Keyword && unsupportedStatements[tok.Text]:
		p.failAt(tok, "%s statements are not supported", tok.Text)
	}
	e := p.parseExpression()
	p.semicolon()
	return &ast.ExprStmt{Loc: p.loc(tok), Expression: e}
}

var unsupportedStatements = map[string]bool{
	"break": true, "continue": true, "do": true, "for": true, "switch": true,
	"try": true, "with": true, "debugger": true, "case": true, "default": true,
}

func (p *parser) parseBlock() *ast.BlockStmt {
	open := p.expect("{")
	b := &ast.BlockStmt{Loc: p.loc(open)}
	for !p.peek().Is("}") {
		if p.peek().Kind == scanner.EOF {
			p.failAt(p.peek(), "unterminated block")
		}
		b.Body = append(b.Body, p.parseStatement())
	}
	p.next()
	return b
}

func (p *parser) parseVarDecl() *ast.VarDecl {
	kw := p.next()
	d := &ast.VarDecl{Loc: p.loc(kw), Keyword: kw.Text}
	for {
		start := p.peek()
		decl := &ast.Declarator{Loc: p.loc(start), Target: p.parseBindingTarget()}
		if p.accept("=") {
			decl.Init = p.parseAssign()
		}
		d.Decls = append(d.Decls, decl)
		if !p.accept(",") {
			return d
		}
	}
}

func (p *parser) parseReturn() ast.Stmt {
	tok := p.next()
	r := &ast.ReturnStmt{Loc: p.loc(tok)}
	next := p.peek()
	if next.Is(";") || next.Is("}") || next.Kind == scanner.EOF || next.NewlineBefore {
		p.semicolon()
		return r
	}
	r.Value = p.parseExpression()
	p.semicolon()
	return r
}

func (p *parser) parseIf() ast.Stmt {
	tok := p.next()
	p.expect("(")
	test := p.parseExpression()
	p.expect(")")
	s := &ast.IfStmt{Loc: p.loc(tok), Test: test, Cons: p.parseStatement()}
	if p.accept("else") {
		s.Alt = p.parseStatement()
	}
	return s
}

func (p *parser) parseFuncDecl() *ast.FuncDecl {
	tok := p.expect("function")
	fn := p.parseFunction(tok, true)
	return &ast.FuncDecl{Loc: p.loc(tok), Func: fn}
}

// parseFunction parses the rest of a function after the function keyword.
// A body that does not start with a brace is an expression closure.
func (p *parser) parseFunction(start scanner.Token, named bool) *ast.Function {
	fn := &ast.Function{Loc: p.loc(start)}
	if p.peek().Kind == scanner.Ident {
		fn.ID = p.expectIdent()
	} else if named {
		p.failAt(p.peek(), "function declaration requires a name")
	}
	fn.Params, fn.Rest = p.parseParams()
	p.parseFunctionBody(fn)
	return fn
}

func (p *parser) parseFunctionBody(fn *ast.Function) {
	if p.peek().Is("{") {
		fn.Body = p.parseBlock()
		return
	}
	fn.ExprBody = p.parseAssign()
}

// parseParams parses (a, b, ...rest).
func (p *parser) parseParams() ([]*ast.Identifier, *ast.Identifier) {
	p.expect("(")
	var params []*ast.Identifier
	var rest *ast.Identifier
	for !p.peek().Is(")") {
		if rest != nil {
			p.failAt(p.peek(), "rest parameter must be last")
		}
		if p.accept("...") {
			rest = p.expectIdent()
		} else {
			params = append(params, p.expectIdent())
		}
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	return params, rest
}

func (p *parser) parseClass() *ast.ClassDecl {
	tok := p.expect("class")
	c := &ast.ClassDecl{Loc: p.loc(tok), Name: p.expectIdent()}
	if p.accept("extends") {
		c.Super = p.parseLeftHandSide()
	}
	p.expect("{")
	for !p.accept("}") {
		if p.accept(";") {
			continue
		}
		start := p.peek()
		key := p.parsePropertyKey()
		params, rest := p.parseParams()
		fn := &ast.Function{Loc: p.loc(start), Params: params, Rest: rest, Body: p.parseBlock()}
		c.Methods = append(c.Methods, &ast.Property{
			Loc:    p.loc(start),
			Key:    key,
			Value:  &ast.FuncExpr{Loc: p.loc(start), Func: fn},
			Method: true,
		})
	}
	return c
}

// --- modules ---

// atModuleDecl reports whether the next tokens read module Name from.
func (p *parser) atModuleDecl() bool {
	return isContextual(p.peek(), "module") &&
		p.peekAt(1).Kind == scanner.Ident && !p.peekAt(1).NewlineBefore &&
		isContextual(p.peekAt(2), "from")
}

func (p *parser) parseModuleDecl() ast.Stmt {
	tok := p.next()
	m := &ast.ModuleDecl{Loc: p.loc(tok), Name: p.expectIdent()}
	p.expectContextual("from")
	m.Source = p.parseSource()
	p.semicolon()
	return m
}

func (p *parser) parseSource() *ast.StringLit {
	tok := p.peek()
	if tok.Kind != scanner.String {
		p.failAt(tok, "expected module specifier string, found %s", tok)
	}
	p.next()
	return &ast.StringLit{Loc: p.loc(tok), Value: tok.Value}
}

func (p *parser) parseImport() ast.Stmt {
	tok := p.expect("import")
	d := &ast.ImportDecl{Loc: p.loc(tok)}
	if p.peek().Kind == scanner.String {
		d.Source = p.parseSource()
		p.semicolon()
		return d
	}
	if p.peek().Kind == scanner.Ident {
		start := p.peek()
		d.Specifiers = append(d.Specifiers, &ast.ImportSpecifier{Loc: p.loc(start), Local: p.expectIdent()})
		if !p.accept(",") {
			p.expectContextual("from")
			d.Source = p.parseSource()
			p.semicolon()
			return d
		}
	}
	p.expect("{")
	for !p.peek().Is("}") {
		start := p.peek()
		imported := p.parseName()
		spec := &ast.ImportSpecifier{Loc: p.loc(start), Imported: imported, Local: imported}
		if isContextual(p.peek(), "as") {
			p.next()
			spec.Local = p.expectIdent()
		} else {
			if scanner.IsKeyword(imported.Name) {
				p.failAt(start, "reserved word %q cannot be imported without a local name", imported.Name)
			}
			spec.Local = &ast.Identifier{Loc: imported.Loc, Name: imported.Name}
		}
		d.Specifiers = append(d.Specifiers, spec)
		if !p.accept(",") {
			break
		}
	}
	p.expect("}")
	p.expectContextual("from")
	d.Source = p.parseSource()
	p.semicolon()
	return d
}

func (p *parser) parseExport() ast.Stmt {
	tok := p.expect("export")
	e := &ast.ExportDecl{Loc: p.loc(tok)}
	next := p.peek()
	switch {
	case next.Is("var"), next.Is("let"), next.Is("const"):
		e.Decl = p.parseVarDecl()
		p.semicolon()
	case next.Is("function"):
		e.Decl = p.parseFuncDecl()
	case next.Is("class"):
		e.Decl = p.parseClass()
	default:
		p.failAt(next, "expected declaration after export, found %s", next)
	}
	return e
}

// --- patterns ---

func (p *parser) parseBindingTarget() ast.Pattern {
	tok := p.peek()
	switch {
	case tok.Kind == scanner.Ident:
		return p.expectIdent()
	case tok.Is("{"):
		return p.parseObjectPattern()
	case tok.Is("["):
		return p.parseArrayPattern()
	}
	p.failAt(tok, "expected binding name or pattern, found %s", tok)
	return nil
}

func (p *parser) parseObjectPattern() *ast.ObjectPattern {
	open := p.expect("{")
	op := &ast.ObjectPattern{Loc: p.loc(open)}
	for !p.peek().Is("}") {
		start := p.peek()
		prop := &ast.PatternProp{Loc: p.loc(start), Computed: start.Is("[")}
		prop.Key = p.parsePropertyKey()
		if p.accept(":") {
			prop.Value = p.parseBindingTarget()
		} else {
			id, ok := prop.Key.(*ast.Identifier)
			if !ok || prop.Computed || scanner.IsKeyword(id.Name) {
				p.failAt(p.peek(), "expected \":\" after pattern key")
			}
			prop.Value = &ast.Identifier{Loc: id.Loc, Name: id.Name}
		}
		op.Props = append(op.Props, prop)
		if !p.accept(",") {
			break
		}
	}
	p.expect("}")
	return op
}

func (p *parser) parseArrayPattern() *ast.ArrayPattern {
	open := p.expect("[")
	ap := &ast.ArrayPattern{Loc: p.loc(open)}
	for !p.peek().Is("]") {
		if p.accept(",") {
			ap.Elems = append(ap.Elems, nil)
			continue
		}
		if tok := p.peek(); p.accept("...") {
			ap.Elems = append(ap.Elems, &ast.RestElement{Loc: p.loc(tok), Arg: p.parseBindingTarget()})
		} else {
			ap.Elems = append(ap.Elems, p.parseBindingTarget())
		}
		if !p.accept(",") {
			break
		}
	}
	p.expect("]")
	return ap
}

// --- expressions ---

func (p *parser) parseExpression() ast.Expr {
	return p.parseAssign()
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"<<=": true, ">>=": true, ">>>=": true, "&=": true, "|=": true, "^=": true,
}

func (p *parser) parseAssign() ast.Expr {
	if p.atArrow() {
		return p.parseArrow()
	}
	start := p.peek()
	left := p.parseConditional()
	op := p.peek()
	if op.Kind != scanner.Punct || !assignOps[op.Text] {
		return left
	}
	switch left.(type) {
	case *ast.Identifier, *ast.MemberExpr:
	default:
		p.failAt(start, "invalid assignment target")
	}
	p.next()
	return &ast.AssignExpr{Loc: p.loc(start), Op: op.Text, Left: left, Right: p.parseAssign()}
}

// atArrow looks ahead for x => or (params) =>.
func (p *parser) atArrow() bool {
	tok := p.peek()
	if tok.Kind == scanner.Ident {
		arrow := p.peekAt(1)
		return arrow.Is("=>") && !arrow.NewlineBefore
	}
	if !tok.Is("(") {
		return false
	}
	depth := 0
	for n := 0; ; n++ {
		t := p.peekAt(n)
		switch {
		case t.Kind == scanner.EOF:
			return false
		case t.Is("("), t.Is("["), t.Is("{"):
			depth++
		case t.Is(")"), t.Is("]"), t.Is("}"):
			depth--
			if depth == 0 {
				arrow := p.peekAt(n + 1)
				return arrow.Is("=>") && !arrow.NewlineBefore
			}
		}
	}
}

func (p *parser) parseArrow() ast.Expr {
	start := p.peek()
	fn := &ast.Function{Loc: p.loc(start)}
	if start.Kind == scanner.Ident {
		fn.Params = []*ast.Identifier{p.expectIdent()}
	} else {
		fn.Params, fn.Rest = p.parseParams()
	}
	p.expect("=>")
	p.parseFunctionBody(fn)
	return &ast.ArrowFunc{Loc: p.loc(start), Func: fn}
}

func (p *parser) parseConditional() ast.Expr {
	start := p.peek()
	test := p.parseBinary(1)
	if !p.accept("?") {
		return test
	}
	cons := p.parseAssign()
	p.expect(":")
	return &ast.CondExpr{Loc: p.loc(start), Test: test, Cons: cons, Alt: p.parseAssign()}
}

var binaryPrec = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6, "===": 6, "!==": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7, "instanceof": 7, "in": 7,
	"<<": 8, ">>": 8, ">>>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

func (p *parser) parseBinary(minPrec int) ast.Expr {
	start := p.peek()
	left := p.parseUnary()
	for {
		op := p.peek()
		if op.Kind != scanner.Punct && op.Kind != scanner.Keyword {
			return left
		}
		prec := binaryPrec[op.Text]
		if prec == 0 || prec < minPrec {
			return left
		}
		p.next()
		right := p.parseBinary(prec + 1)
		left = &ast.BinaryExpr{Loc: p.loc(start), Op: op.Text, Left: left, Right: right}
	}
}

var unaryOps = map[string]bool{
	"!": true, "~": true, "+": true, "-": true, "typeof": true, "void": true, "delete": true,
}

func (p *parser) parseUnary() ast.Expr {
	tok := p.peek()
	if (tok.Kind == scanner.Punct || tok.Kind == scanner.Keyword) && unaryOps[tok.Text] {
		p.next()
		return &ast.UnaryExpr{Loc: p.loc(tok), Op: tok.Text, Operand: p.parseUnary()}
	}
	if tok.Is("++") || tok.Is("--") {
		p.next()
		operand := p.parseUnary()
		p.checkUpdateTarget(tok, operand)
		return &ast.UpdateExpr{Loc: p.loc(tok), Op: tok.Text, Prefix: true, Operand: operand}
	}
	e := p.parseLeftHandSide()
	if op := p.peek(); (op.Is("++") || op.Is("--")) && !op.NewlineBefore {
		p.next()
		p.checkUpdateTarget(tok, e)
		return &ast.UpdateExpr{Loc: p.loc(tok), Op: op.Text, Operand: e}
	}
	return e
}

func (p *parser) checkUpdateTarget(at scanner.Token, e ast.Expr) {
	switch e.(type) {
	case *ast.Identifier, *ast.MemberExpr:
		return
	}
	p.failAt(at, "invalid increment or decrement target")
}

func (p *parser) parseLeftHandSide() ast.Expr {
	start := p.peek()
	var e ast.Expr
	if start.Is("new") {
		e = p.parseNew()
	} else {
		e = p.parsePrimary()
	}
	for {
		switch tok := p.peek(); {
		case tok.Is("."):
			p.next()
			e = &ast.MemberExpr{Loc: p.loc(start), Object: e, Property: p.parseName()}
		case tok.Is("["):
			p.next()
			prop := p.parseExpression()
			p.expect("]")
			e = &ast.MemberExpr{Loc: p.loc(start), Object: e, Property: prop, Computed: true}
		case tok.Is("("):
			e = &ast.CallExpr{Loc: p.loc(start), Callee: e, Args: p.parseArgs()}
		default:
			return e
		}
	}
}

func (p *parser) parseNew() ast.Expr {
	tok := p.expect("new")
	var callee ast.Expr
	if p.peek().Is("new") {
		callee = p.parseNew()
	} else {
		callee = p.parsePrimary()
	}
	for {
		if p.accept(".") {
			callee = &ast.MemberExpr{Loc: p.loc(tok), Object: callee, Property: p.parseName()}
			continue
		}
		if p.accept("[") {
			prop := p.parseExpression()
			p.expect("]")
			callee = &ast.MemberExpr{Loc: p.loc(tok), Object: callee, Property: prop, Computed: true}
			continue
		}
		break
	}
	n := &ast.NewExpr{Loc: p.loc(tok), Callee: callee}
	if p.peek().Is("(") {
		n.Args = p.parseArgs()
	}
	return n
}

func (p *parser) parseArgs() []ast.Expr {
	p.expect("(")
	var args []ast.Expr
	for !p.peek().Is(")") {
		if p.peek().Is("...") {
			p.failAt(p.peek(), "spread arguments are not supported")
		}
		args = append(args, p.parseAssign())
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	return args
}

// parseName parses an identifier in property position, where reserved words
// are allowed.
func (p *parser) parseName() *ast.Identifier {
	tok := p.peek()
	if tok.Kind != scanner.Ident && tok.Kind != scanner.Keyword {
		p.failAt(tok, "expected property name, found %s", tok)
	}
	p.next()
	return &ast.Identifier{Loc: p.loc(tok), Name: tok.Text}
}

func (p *parser) parsePrimary() ast.Expr {
	tok := p.peek()
	switch {
	case tok.Kind == scanner.Ident:
		return p.expectIdent()
	case tok.Kind == scanner.Number:
		p.next()
		v, err := scanner.NumberValue(tok.Text)
		if err != nil {
			p.failAt(tok, "invalid number %s", tok.Text)
		}
		return &ast.NumberLit{Loc: p.loc(tok), Value: v, Raw: tok.Text}
	case tok.Kind == scanner.String:
		p.next()
		return &ast.StringLit{Loc: p.loc(tok), Value: tok.Value}
	case tok.Is("true"), tok.Is("false"):
		p.next()
		return &ast.BoolLit{Loc: p.loc(tok), Value: tok.Text == "true"}
	case tok.Is("null"):
		p.next()
		return &ast.NullLit{Loc: p.loc(tok)}
	case tok.Is("this"):
		p.next()
		return &ast.ThisExpr{Loc: p.loc(tok)}
	case tok.Is("("):
		p.next()
		e := p.parseExpression()
		p.expect(")")
		return e
	case tok.Is("["):
		return p.parseArrayLiteral()
	case tok.Is("{"):
		return p.parseObjectLiteral()
	case tok.Is("function"):
		p.next()
		return &ast.FuncExpr{Loc: p.loc(tok), Func: p.parseFunction(tok, false)}
	case tok.Is("/"), tok.Is("/="):
		p.failAt(tok, "regular expression literals are not supported")
	}
	p.failAt(tok, "unexpected %s", tok)
	return nil
}

func (p *parser) parseArrayLiteral() ast.Expr {
	open := p.expect("[")
	a := &ast.ArrayExpr{Loc: p.loc(open)}
	for !p.peek().Is("]") {
		if p.accept(",") {
			a.Elements = append(a.Elements, nil)
			continue
		}
		if p.peek().Is("...") {
			p.failAt(p.peek(), "spread elements are not supported")
		}
		a.Elements = append(a.Elements, p.parseAssign())
		if !p.accept(",") {
			break
		}
	}
	p.expect("]")
	return a
}

func (p *parser) parseObjectLiteral() ast.Expr {
	open := p.expect("{")
	o := &ast.ObjectExpr{Loc: p.loc(open)}
	for !p.peek().Is("}") {
		start := p.peek()
		prop := &ast.Property{Loc: p.loc(start), Computed: start.Is("[")}
		prop.Key = p.parsePropertyKey()
		switch {
		case p.accept(":"):
			prop.Value = p.parseAssign()
		case p.peek().Is("("):
			params, rest := p.parseParams()
			fn := &ast.Function{Loc: p.loc(start), Params: params, Rest: rest, Body: p.parseBlock()}
			prop.Value = &ast.FuncExpr{Loc: p.loc(start), Func: fn}
			prop.Method = true
		default:
			id, ok := prop.Key.(*ast.Identifier)
			if !ok || prop.Computed || start.Kind != scanner.Ident {
				p.failAt(p.peek(), "expected \":\" after property key")
			}
			prop.Value = &ast.Identifier{Loc: id.Loc, Name: id.Name}
			prop.Shorthand = true
		}
		o.Props = append(o.Props, prop)
		if !p.accept(",") {
			break
		}
	}
	p.expect("}")
	return o
}

// parsePropertyKey parses a name, string, number or [computed] key.
func (p *parser) parsePropertyKey() ast.Expr {
	tok := p.peek()
	switch {
	case tok.Is("["):
		p.next()
		k := p.parseAssign()
		p.expect("]")
		return k
	case tok.Kind == scanner.String:
		p.next()
		return &ast.StringLit{Loc: p.loc(tok), Value: tok.Value}
	case tok.Kind == scanner.Number:
		p.next()
		v, err := scanner.NumberValue(tok.Text)
		if err != nil {
			p.failAt(tok, "invalid number %s", tok.Text)
		}
		return &ast.NumberLit{Loc: p.loc(tok), Value: v, Raw: tok.Text}
	}
	return p.parseName()
}
