package ast

import "fmt"

// Check validates an AST without modifying it.
type Check interface {
	Name() string
	Check(prog *Program) error
}

// CheckChain runs checks in order, stopping at the first error.
type CheckChain []Check

// Run executes each check in sequence. Returns nil if all pass.
func (cc CheckChain) Run(prog *Program) error {
	for _, c := range cc {
		if err := c.Check(prog); err != nil {
			return fmt.Errorf("%s: %w", c.Name(), err)
		}
	}
	return nil
}

// CheckFunc adapts a named function to the Check interface.
type CheckFunc struct {
	N string
	F func(*Program) error
}

func (c CheckFunc) Name() string                { return c.N }
func (c CheckFunc) Check(prog *Program) error { return c.F(prog) }

// SubsetCheck reports the first construct that should not survive
// desugaring: a pattern target, an arrow, a rest parameter, an expression
// body, a shorthand or method property, or a module construct. Classes and
// exports that were passed through with a warning are tolerated.
func SubsetCheck() Check {
	return CheckFunc{N: "subset", F: func(prog *Program) error {
		var found *Error
		Inspect(prog, func(n Node) bool {
			if found != nil {
				return false
			}
			msg := subsetViolation(n)
			if msg == "" {
				return true
			}
			found = &Error{Kind: ErrUnsupported, Node: n.Kind(), Pos: prog.Position(n.NodePos()), Msg: msg}
			return false
		})
		if found != nil {
			return found
		}
		return nil
	}}
}

func subsetViolation(n Node) string {
	fnViolation := func(fn *Function) string {
		switch {
		case fn.Rest != nil:
			return "rest parameter survived desugaring"
		case fn.Expression():
			return "expression body survived desugaring"
		}
		return ""
	}
	switch nd := n.(type) {
	case *Declarator:
		if _, ok := nd.Target.(*Identifier); !ok {
			return "pattern target survived desugaring"
		}
	case *ArrowFunc:
		return "arrow function survived desugaring"
	case *FuncDecl:
		return fnViolation(nd.Func)
	case *FuncExpr:
		return fnViolation(nd.Func)
	case *Property:
		if nd.Shorthand || nd.Method {
			return "shorthand or method property survived desugaring"
		}
	case *ModuleDecl, *ImportDecl:
		return "module import survived desugaring"
	case *ClassDecl, *ExportDecl:
		// Passed through with a warning.
		return ""
	}
	return ""
}
