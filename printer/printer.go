// Package printer renders an ast.Program as source text, optionally
// recording a source map from node positions.
package printer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/rubiojr/party/ast"
	"github.com/rubiojr/party/sourcemap"
)

// Options configures printing.
type Options struct {
	// SourceMap records a mapping for every positioned statement and
	// expression. It needs a Program parsed with positions.
	SourceMap bool
	// File names the generated file inside the source map.
	File string
	// SourceContent embeds the original text in the source map.
	SourceContent string
	// Indent is the per-level indentation. Empty means two spaces.
	Indent string
}

// Output is the printed program.
type Output struct {
	Code string
	Map  *sourcemap.Map // nil unless Options.SourceMap
}

// Print renders prog.
func Print(prog *ast.Program, opts Options) (*Output, error) {
	p := &printer{prog: prog, opts: opts, indent: opts.Indent}
	if p.indent == "" {
		p.indent = "  "
	}
	if opts.SourceMap {
		p.smap = sourcemap.NewBuilder(opts.File)
		p.source = p.smap.AddSource(prog.Path, opts.SourceContent)
	}
	for _, s := range prog.Body {
		p.stmt(s)
	}
	out := &Output{Code: p.sb.String()}
	if p.smap != nil {
		m, err := p.smap.Map()
		if err != nil {
			return nil, err
		}
		out.Map = m
	}
	return out, nil
}

// String renders a single node for diagnostics. Errors are impossible without
// a source map.
func String(n ast.Node) string {
	p := &printer{prog: &ast.Program{}, indent: "  "}
	switch nd := n.(type) {
	case *ast.Program:
		for _, s := range nd.Body {
			p.stmt(s)
		}
	case ast.Stmt:
		p.stmt(nd)
	case ast.Expr:
		p.expr(nd, precLowest)
	case ast.Pattern:
		p.pattern(nd)
	default:
		return fmt.Sprintf("<%s>", n.Kind())
	}
	return strings.TrimSuffix(p.sb.String(), "\n")
}

type printer struct {
	prog   *ast.Program
	opts   Options
	indent string
	sb     strings.Builder
	depth  int

	// generated position, zero-based, columns in UTF-16 units
	line, col int

	smap   *sourcemap.Builder
	source int
}

func (p *printer) write(s string) {
	p.sb.WriteString(s)
	for _, r := range s {
		if r == '\n' {
			p.line++
			p.col = 0
			continue
		}
		p.col += utf16.RuneLen(r)
	}
}

func (p *printer) newline() { p.write("\n") }

func (p *printer) writeIndent() { p.write(strings.Repeat(p.indent, p.depth)) }

// mark maps the current generated position to n's source position.
func (p *printer) mark(n ast.Node) {
	if p.smap == nil || !n.NodePos().IsValid() {
		return
	}
	pos := p.prog.Position(n.NodePos())
	if pos.Line == 0 {
		return
	}
	p.smap.Add(sourcemap.Mapping{
		GenLine: p.line,
		GenCol:  p.col,
		Source:  p.source,
		SrcLine: pos.Line - 1,
		SrcCol:  pos.Column - 1,
	})
}

// --- statements ---

func (p *printer) stmt(s ast.Stmt) {
	p.writeIndent()
	p.stmtBody(s)
	p.newline()
}

// stmtBody prints s without leading indentation or trailing newline.
func (p *printer) stmtBody(s ast.Stmt) {
	p.mark(s)
	switch st := s.(type) {
	case *ast.VarDecl:
		p.varDecl(st)
		p.write(";")
	case *ast.FuncDecl:
		p.function("function", st.Func)
	case *ast.ReturnStmt:
		p.write("return")
		if st.Value != nil {
			p.write(" ")
			p.expr(st.Value, precLowest)
		}
		p.write(";")
	case *ast.ExprStmt:
		if startsAmbiguously(st.Expression) {
			p.write("(")
			p.expr(st.Expression, precLowest)
			p.write(")")
		} else {
			p.expr(st.Expression, precLowest)
		}
		p.write(";")
	case *ast.BlockStmt:
		p.block(st)
	case *ast.IfStmt:
		p.write("if (")
		p.expr(st.Test, precLowest)
		p.write(")")
		p.nested(st.Cons)
		if st.Alt != nil {
			if _, ok := st.Cons.(*ast.BlockStmt); ok {
				p.write(" ")
			} else {
				p.newline()
				p.writeIndent()
			}
			p.write("else")
			if _, ok := st.Alt.(*ast.IfStmt); ok {
				p.write(" ")
				p.stmtBody(st.Alt)
			} else {
				p.nested(st.Alt)
			}
		}
	case *ast.WhileStmt:
		p.write("while (")
		p.expr(st.Test, precLowest)
		p.write(")")
		p.nested(st.Body)
	case *ast.ThrowStmt:
		p.write("throw ")
		p.expr(st.Value, precLowest)
		p.write(";")
	case *ast.EmptyStmt:
		p.write(";")
	case *ast.ClassDecl:
		p.class(st)
	case *ast.ModuleDecl:
		p.write("module ")
		p.write(st.Name.Name)
		p.write(" from ")
		p.write(Quote(st.Source.Value))
		p.write(";")
	case *ast.ImportDecl:
		p.importDecl(st)
	case *ast.ExportDecl:
		p.write("export ")
		p.stmtBody(st.Decl)
	default:
		panic(fmt.Sprintf("printer: unexpected statement %s", s.Kind()))
	}
}

// nested prints the body of if/else/while: blocks stay on the same line,
// other statements go on their own indented line.
func (p *printer) nested(s ast.Stmt) {
	if b, ok := s.(*ast.BlockStmt); ok {
		p.write(" ")
		p.mark(b)
		p.block(b)
		return
	}
	p.newline()
	p.depth++
	p.writeIndent()
	p.stmtBody(s)
	p.depth--
}

func (p *printer) block(b *ast.BlockStmt) {
	if len(b.Body) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	p.newline()
	p.depth++
	for _, s := range b.Body {
		p.stmt(s)
	}
	p.depth--
	p.writeIndent()
	p.write("}")
}

func (p *printer) varDecl(d *ast.VarDecl) {
	p.write(d.Keyword)
	p.write(" ")
	for i, decl := range d.Decls {
		if i > 0 {
			p.write(", ")
		}
		p.mark(decl)
		p.pattern(decl.Target)
		if decl.Init != nil {
			p.write(" = ")
			p.expr(decl.Init, precAssign)
		}
	}
}

func (p *printer) function(keyword string, fn *ast.Function) {
	p.write(keyword)
	if fn.ID != nil {
		p.write(" ")
		p.write(fn.ID.Name)
	} else if keyword != "" {
		p.write(" ")
	}
	p.params(fn)
	p.write(" ")
	p.functionBody(fn)
}

func (p *printer) params(fn *ast.Function) {
	p.write("(")
	for i, id := range fn.Params {
		if i > 0 {
			p.write(", ")
		}
		p.write(id.Name)
	}
	if fn.Rest != nil {
		if len(fn.Params) > 0 {
			p.write(", ")
		}
		p.write("...")
		p.write(fn.Rest.Name)
	}
	p.write(")")
}

func (p *printer) functionBody(fn *ast.Function) {
	if fn.Expression() {
		// An object literal body would read as a block.
		if _, ok := fn.ExprBody.(*ast.ObjectExpr); ok {
			p.write("(")
			p.expr(fn.ExprBody, precAssign)
			p.write(")")
			return
		}
		p.expr(fn.ExprBody, precAssign)
		return
	}
	if fn.Body == nil {
		p.write("{}")
		return
	}
	p.block(fn.Body)
}

func (p *printer) class(c *ast.ClassDecl) {
	p.write("class ")
	p.write(c.Name.Name)
	if c.Super != nil {
		p.write(" extends ")
		p.expr(c.Super, precMember)
	}
	if len(c.Methods) == 0 {
		p.write(" {}")
		return
	}
	p.write(" {")
	p.newline()
	p.depth++
	for _, m := range c.Methods {
		p.writeIndent()
		p.property(m)
		p.newline()
	}
	p.depth--
	p.writeIndent()
	p.write("}")
}

func (p *printer) importDecl(d *ast.ImportDecl) {
	p.write("import ")
	var named []*ast.ImportSpecifier
	wrote := false
	for _, s := range d.Specifiers {
		if s.Default() {
			p.write(s.Local.Name)
			wrote = true
			continue
		}
		named = append(named, s)
	}
	if len(named) > 0 {
		if wrote {
			p.write(", ")
		}
		p.write("{")
		for i, s := range named {
			if i > 0 {
				p.write(", ")
			}
			p.write(s.Imported.Name)
			if s.Local.Name != s.Imported.Name {
				p.write(" as ")
				p.write(s.Local.Name)
			}
		}
		p.write("}")
		wrote = true
	}
	if wrote {
		p.write(" from ")
	}
	p.write(Quote(d.Source.Value))
	p.write(";")
}

// --- patterns ---

func (p *printer) pattern(pat ast.Pattern) {
	switch pt := pat.(type) {
	case *ast.Identifier:
		p.mark(pt)
		p.write(pt.Name)
	case *ast.ObjectPattern:
		p.write("{")
		for i, prop := range pt.Props {
			if i > 0 {
				p.write(", ")
			}
			if id, ok := prop.Value.(*ast.Identifier); ok && !prop.Computed {
				if key, ok := prop.Key.(*ast.Identifier); ok && key.Name == id.Name {
					p.write(id.Name)
					continue
				}
			}
			p.propertyKey(prop.Key, prop.Computed)
			p.write(": ")
			p.pattern(prop.Value)
		}
		p.write("}")
	case *ast.ArrayPattern:
		p.write("[")
		for i, el := range pt.Elems {
			if i > 0 {
				p.write(", ")
			}
			if el != nil {
				p.pattern(el)
			}
		}
		if n := len(pt.Elems); n > 0 && pt.Elems[n-1] == nil {
			p.write(",")
		}
		p.write("]")
	case *ast.RestElement:
		p.write("...")
		p.pattern(pt.Arg)
	default:
		panic(fmt.Sprintf("printer: unexpected pattern %s", pat.Kind()))
	}
}

// --- expressions ---

// Precedence levels, lowest binding first.
const (
	precLowest = iota
	precAssign
	precCond
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precCall
	precMember
	precPrimary
)

var binaryPrec = map[string]int{
	"||": precOr,
	"&&": precAnd,
	"|":  precBitOr,
	"^":  precBitXor,
	"&":  precBitAnd,
	"==": precEquality, "!=": precEquality, "===": precEquality, "!==": precEquality,
	"<": precRelational, ">": precRelational, "<=": precRelational, ">=": precRelational,
	"instanceof": precRelational, "in": precRelational,
	"<<": precShift, ">>": precShift, ">>>": precShift,
	"+": precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
}

func precedence(e ast.Expr) int {
	switch ex := e.(type) {
	case *ast.AssignExpr, *ast.ArrowFunc:
		return precAssign
	case *ast.CondExpr:
		return precCond
	case *ast.BinaryExpr:
		return binaryPrec[ex.Op]
	case *ast.UnaryExpr:
		return precUnary
	case *ast.UpdateExpr:
		if ex.Prefix {
			return precUnary
		}
		return precPostfix
	case *ast.CallExpr:
		return precCall
	case *ast.MemberExpr, *ast.NewExpr:
		return precMember
	}
	return precPrimary
}

// expr prints e, parenthesized when it binds looser than min.
func (p *printer) expr(e ast.Expr, min int) {
	if precedence(e) < min {
		p.write("(")
		p.expr(e, precLowest)
		p.write(")")
		return
	}
	p.mark(e)
	switch ex := e.(type) {
	case *ast.Identifier:
		p.write(ex.Name)
	case *ast.NumberLit:
		p.write(formatNumber(ex))
	case *ast.StringLit:
		p.write(Quote(ex.Value))
	case *ast.BoolLit:
		p.write(strconv.FormatBool(ex.Value))
	case *ast.NullLit:
		p.write("null")
	case *ast.ThisExpr:
		p.write("this")
	case *ast.ArrayExpr:
		p.write("[")
		for i, el := range ex.Elements {
			if i > 0 {
				p.write(", ")
			}
			if el != nil {
				p.expr(el, precAssign)
			}
		}
		if n := len(ex.Elements); n > 0 && ex.Elements[n-1] == nil {
			p.write(",")
		}
		p.write("]")
	case *ast.ObjectExpr:
		p.object(ex)
	case *ast.FuncExpr:
		p.function("function", ex.Func)
	case *ast.ArrowFunc:
		fn := ex.Func
		if len(fn.Params) == 1 && fn.Rest == nil {
			p.write(fn.Params[0].Name)
		} else {
			p.params(fn)
		}
		p.write(" => ")
		p.functionBody(fn)
	case *ast.CallExpr:
		p.expr(ex.Callee, precCall)
		p.args(ex.Args)
	case *ast.NewExpr:
		p.write("new ")
		if containsCall(ex.Callee) {
			p.write("(")
			p.expr(ex.Callee, precLowest)
			p.write(")")
		} else {
			p.expr(ex.Callee, precMember)
		}
		p.args(ex.Args)
	case *ast.MemberExpr:
		if num, ok := ex.Object.(*ast.NumberLit); ok && !ex.Computed && !strings.ContainsAny(formatNumber(num), ".eExX") {
			p.write("(")
			p.expr(ex.Object, precLowest)
			p.write(")")
		} else {
			p.expr(ex.Object, precCall)
		}
		if ex.Computed {
			p.write("[")
			p.expr(ex.Property, precLowest)
			p.write("]")
		} else {
			p.write(".")
			p.write(ex.Property.(*ast.Identifier).Name)
		}
	case *ast.AssignExpr:
		p.expr(ex.Left, precCall)
		p.write(" " + ex.Op + " ")
		p.expr(ex.Right, precAssign)
	case *ast.BinaryExpr:
		prec := binaryPrec[ex.Op]
		p.expr(ex.Left, prec)
		p.write(" " + ex.Op + " ")
		p.expr(ex.Right, prec+1)
	case *ast.UnaryExpr:
		p.write(ex.Op)
		if isWordOp(ex.Op) || startsWithSign(ex.Operand, ex.Op) {
			p.write(" ")
		}
		p.expr(ex.Operand, precUnary)
	case *ast.UpdateExpr:
		if ex.Prefix {
			p.write(ex.Op)
			p.expr(ex.Operand, precCall)
		} else {
			p.expr(ex.Operand, precCall)
			p.write(ex.Op)
		}
	case *ast.CondExpr:
		p.expr(ex.Test, precOr)
		p.write(" ? ")
		p.expr(ex.Cons, precAssign)
		p.write(" : ")
		p.expr(ex.Alt, precAssign)
	default:
		panic(fmt.Sprintf("printer: unexpected expression %s", e.Kind()))
	}
}

func (p *printer) args(args []ast.Expr) {
	p.write("(")
	for i, a := range args {
		if i > 0 {
			p.write(", ")
		}
		p.expr(a, precAssign)
	}
	p.write(")")
}

func (p *printer) object(o *ast.ObjectExpr) {
	if len(o.Props) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	p.newline()
	p.depth++
	for i, prop := range o.Props {
		p.writeIndent()
		p.property(prop)
		if i < len(o.Props)-1 {
			p.write(",")
		}
		p.newline()
	}
	p.depth--
	p.writeIndent()
	p.write("}")
}

func (p *printer) property(prop *ast.Property) {
	p.mark(prop)
	if fe, ok := prop.Value.(*ast.FuncExpr); ok && prop.Method {
		p.propertyKey(prop.Key, prop.Computed)
		p.params(fe.Func)
		p.write(" ")
		p.functionBody(fe.Func)
		return
	}
	if prop.Shorthand {
		if id, ok := prop.Value.(*ast.Identifier); ok {
			p.write(id.Name)
			return
		}
	}
	p.propertyKey(prop.Key, prop.Computed)
	p.write(": ")
	p.expr(prop.Value, precAssign)
}

func (p *printer) propertyKey(key ast.Expr, computed bool) {
	if computed {
		p.write("[")
		p.expr(key, precAssign)
		p.write("]")
		return
	}
	switch k := key.(type) {
	case *ast.Identifier:
		p.write(k.Name)
	case *ast.StringLit:
		p.write(Quote(k.Value))
	case *ast.NumberLit:
		p.write(formatNumber(k))
	default:
		p.expr(key, precAssign)
	}
}

// startsAmbiguously reports whether an expression statement would begin with
// function or {, which the grammar reads as a declaration or a block.
func startsAmbiguously(e ast.Expr) bool {
	for {
		switch ex := e.(type) {
		case *ast.FuncExpr, *ast.ObjectExpr:
			return true
		case *ast.CallExpr:
			e = ex.Callee
		case *ast.MemberExpr:
			e = ex.Object
		case *ast.AssignExpr:
			e = ex.Left
		case *ast.BinaryExpr:
			if precedence(ex.Left) < binaryPrec[ex.Op] {
				return false
			}
			e = ex.Left
		case *ast.CondExpr:
			if precedence(ex.Test) < precOr {
				return false
			}
			e = ex.Test
		case *ast.UpdateExpr:
			if ex.Prefix {
				return false
			}
			e = ex.Operand
		default:
			return false
		}
	}
}

func containsCall(e ast.Expr) bool {
	for {
		switch ex := e.(type) {
		case *ast.CallExpr:
			return true
		case *ast.MemberExpr:
			e = ex.Object
		default:
			return false
		}
	}
}

func isWordOp(op string) bool {
	return op == "typeof" || op == "void" || op == "delete"
}

// startsWithSign reports whether printing operand right after op would fuse
// two signs into an increment, decrement or double sign.
func startsWithSign(operand ast.Expr, op string) bool {
	if op != "+" && op != "-" {
		return false
	}
	switch o := operand.(type) {
	case *ast.UnaryExpr:
		return o.Op == op
	case *ast.UpdateExpr:
		return o.Prefix && o.Op[0] == op[0]
	case *ast.NumberLit:
		return o.Value < 0
	}
	return false
}

func formatNumber(n *ast.NumberLit) string {
	if n.Raw != "" {
		return n.Raw
	}
	v := n.Value
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == math.Trunc(v) && math.Abs(v) < 1e21:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Quote renders s as a single-quoted string literal.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
