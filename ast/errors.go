package ast

import (
	"fmt"

	"modernc.org/token"
)

// ErrorKind classifies desugaring failures.
type ErrorKind int

const (
	// ErrUnsupported marks a construct the engine has no rule for.
	ErrUnsupported ErrorKind = iota + 1
	// ErrMalformedPattern marks a binding pattern that violates the node model.
	ErrMalformedPattern
	// ErrMalformedDecl marks a module, import or export declaration missing a
	// required part.
	ErrMalformedDecl
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupported:
		return "unsupported construct"
	case ErrMalformedPattern:
		return "malformed pattern"
	case ErrMalformedDecl:
		return "malformed declaration"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a desugaring failure or warning tied to a node and its position.
type Error struct {
	Kind ErrorKind
	Node Kind
	Pos  token.Position
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
}
