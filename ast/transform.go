package ast

// Transform rewrites an AST. Implementations must not mutate the input program.
type Transform interface {
	Name() string
	Transform(prog *Program) (*Program, error)
}

// TransformFunc adapts a named function to the Transform interface.
type TransformFunc struct {
	N string
	F func(*Program) (*Program, error)
}

func (t TransformFunc) Name() string                              { return t.N }
func (t TransformFunc) Transform(prog *Program) (*Program, error) { return t.F(prog) }

// Chain composes transforms left-to-right into a single Transform.
// Each transform receives the output of the previous one; the first error
// stops the chain.
func Chain(transforms ...Transform) Transform {
	return TransformFunc{
		N: "chain",
		F: func(prog *Program) (*Program, error) {
			for _, t := range transforms {
				var err error
				if prog, err = t.Transform(prog); err != nil {
					return nil, err
				}
			}
			return prog, nil
		},
	}
}

// Desugaring returns the desugar pass as a Transform. Warnings and required
// specifiers are handed to sink when it is non-nil.
func Desugaring(opts Options, sink func(*Result)) Transform {
	return TransformFunc{
		N: "desugar",
		F: func(prog *Program) (*Program, error) {
			res, err := Desugar(prog, opts)
			if err != nil {
				return nil, err
			}
			if sink != nil {
				sink(res)
			}
			return res.Program, nil
		},
	}
}

// Checked wraps t so that checks run on its output.
func Checked(t Transform, checks CheckChain) Transform {
	return TransformFunc{
		N: t.Name(),
		F: func(prog *Program) (*Program, error) {
			out, err := t.Transform(prog)
			if err != nil {
				return nil, err
			}
			if err := checks.Run(out); err != nil {
				return nil, err
			}
			return out, nil
		},
	}
}

// --- Copy-on-write traversal helpers ---
// These are used by transform passes to walk slices of AST nodes,
// only allocating a new slice when at least one element changes.

// mapSlice applies fn to each element. Returns (newSlice, true) if any
// element changed, or (original, false) if all elements are identical.
func mapSlice[T any](items []T, fn func(T) T) ([]T, bool) {
	var out []T
	modified := false
	for i, item := range items {
		newItem := fn(item)
		if any(newItem) != any(item) {
			if !modified {
				out = make([]T, len(items))
				copy(out[:i], items[:i])
				modified = true
			}
		}
		if modified {
			out[i] = newItem
		}
	}
	if !modified {
		return items, false
	}
	return out, true
}
