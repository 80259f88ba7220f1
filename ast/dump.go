package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DumpOptions controls Dump output.
type DumpOptions struct {
	// Locs appends @line:col to every node with a tracked position.
	Locs bool
}

// Dump writes an indented tree of prog, one node per line, labelled with the
// node kind and its scalar attributes.
func Dump(w io.Writer, prog *Program, opts DumpOptions) error {
	d := &dumper{w: w, prog: prog, opts: opts}
	d.node(prog, 0)
	return d.err
}

type dumper struct {
	w    io.Writer
	prog *Program
	opts DumpOptions
	err  error
}

func (d *dumper) node(n Node, depth int) {
	if d.err != nil {
		return
	}
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Kind().String())
	if attrs := attributes(n); attrs != "" {
		b.WriteByte(' ')
		b.WriteString(attrs)
	}
	if d.opts.Locs && n.NodePos().IsValid() {
		p := d.prog.Position(n.NodePos())
		fmt.Fprintf(&b, " @%d:%d", p.Line, p.Column)
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(d.w, b.String()); err != nil {
		d.err = err
		return
	}
	for _, c := range Children(n) {
		d.node(c, depth+1)
	}
}

func attributes(n Node) string {
	switch nd := n.(type) {
	case *Program:
		if nd.Path != "" {
			return strconv.Quote(nd.Path)
		}
	case *VarDecl:
		return nd.Keyword
	case *Identifier:
		return nd.Name
	case *NumberLit:
		return nd.Raw
	case *StringLit:
		return strconv.Quote(nd.Value)
	case *BoolLit:
		return strconv.FormatBool(nd.Value)
	case *MemberExpr:
		if nd.Computed {
			return "computed"
		}
	case *AssignExpr:
		return nd.Op
	case *BinaryExpr:
		return nd.Op
	case *UnaryExpr:
		return nd.Op
	case *UpdateExpr:
		if nd.Prefix {
			return "prefix " + nd.Op
		}
		return "postfix " + nd.Op
	case *Property:
		var flags []string
		if nd.Computed {
			flags = append(flags, "computed")
		}
		if nd.Shorthand {
			flags = append(flags, "shorthand")
		}
		if nd.Method {
			flags = append(flags, "method")
		}
		return strings.Join(flags, " ")
	case *FuncDecl:
		return funcAttrs(nd.Func)
	case *FuncExpr:
		return funcAttrs(nd.Func)
	case *ArrowFunc:
		return funcAttrs(nd.Func)
	}
	return ""
}

func funcAttrs(fn *Function) string {
	var flags []string
	if fn.Rest != nil {
		flags = append(flags, "rest")
	}
	if fn.Expression() {
		flags = append(flags, "expression")
	}
	return strings.Join(flags, " ")
}
