// Package resolver turns the relative module specifiers found in require
// calls into canonical module names. Canonical names are '/'-separated paths
// relative to the project root without the source extension, e.g. "lib/util".
//
// Resolution is pure path algebra: no file system access, no existence check.
package resolver

import (
	"errors"
	"fmt"
	"strings"
)

// ParentOfRoot is the canonical name of the directory above the project
// root. Names equal to it, or starting with it, escape the source tree.
const ParentOfRoot = ".."

// Dir returns the directory part of a canonical module name: the name with
// its last segment removed. The directory of the root ("") is ParentOfRoot,
// and the directory of a name made only of ParentOfRoot segments climbs one
// more level, so popping never wraps back inside the tree. The latter differs
// from the original tool, where Dir("..") was "".
func Dir(module string) string {
	if module == "" {
		return ParentOfRoot
	}
	if onlyParents(module) {
		return module + "/" + ParentOfRoot
	}
	i := strings.LastIndexByte(module, '/')
	if i < 0 {
		return ""
	}
	return module[:i]
}

// Resolve computes the canonical name of specifier as required from the
// module named consumer. Components are applied left to right starting from
// Dir(consumer): ".." pops one segment, "." and empty components are
// ignored and anything else is appended. A leading "/" therefore does not
// make a specifier absolute.
//
//	Resolve("a/b", "./c")    == "a/c"
//	Resolve("a/b", "../c")   == "c"
//	Resolve("a/b", "../../c") == "../c"
func Resolve(consumer, specifier string) string {
	ret := Dir(consumer)
	for _, c := range strings.Split(specifier, "/") {
		switch c {
		case "..":
			ret = Dir(ret)
		case ".", "":
		default:
			if ret != "" {
				ret += "/"
			}
			ret += c
		}
	}
	return ret
}

// Escapes reports whether a canonical name lies above the project root.
func Escapes(module string) bool {
	return module == ParentOfRoot || strings.HasPrefix(module, ParentOfRoot+"/")
}

func onlyParents(module string) bool {
	for _, seg := range strings.Split(module, "/") {
		if seg != ParentOfRoot {
			return false
		}
	}
	return true
}

// ErrEscapesRoot is matched by every EscapeError.
var ErrEscapesRoot = errors.New("module escapes the project root")

// EscapeError describes a dependency that resolves above the project root.
type EscapeError struct {
	Consumer  string
	Specifier string
	Module    string
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("%s: require %q resolves to %q: %v", e.Consumer, e.Specifier, e.Module, ErrEscapesRoot)
}

func (e *EscapeError) Unwrap() error { return ErrEscapesRoot }

// Policy decides what happens to dependencies that escape the project root.
type Policy int

const (
	// Warn keeps the dependency and reports it. It is the zero value.
	Warn Policy = iota
	// Allow keeps the dependency silently.
	Allow
	// Reject fails the consuming module.
	Reject
)

var policyNames = map[Policy]string{
	Allow:  "allow",
	Warn:   "warn",
	Reject: "reject",
}

func (p Policy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy converts "allow", "warn" or "reject" to a Policy. The empty
// string selects Warn.
func ParsePolicy(s string) (Policy, error) {
	if s == "" {
		return Warn, nil
	}
	for p, name := range policyNames {
		if strings.EqualFold(s, name) {
			return p, nil
		}
	}
	return Warn, fmt.Errorf("unknown escape policy %q (want allow, warn or reject)", s)
}

// UnmarshalText lets a Policy be decoded straight from configuration files.
func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Resolver applies an escape Policy on top of Resolve.
type Resolver struct {
	Policy Policy
	// OnEscape is called for escaping dependencies under Warn. It may be nil.
	OnEscape func(*EscapeError)
}

// Resolve resolves specifier for consumer. Under Reject an escaping
// dependency yields an *EscapeError together with the resolved name.
func (r *Resolver) Resolve(consumer, specifier string) (string, error) {
	module := Resolve(consumer, specifier)
	if !Escapes(module) {
		return module, nil
	}
	e := &EscapeError{Consumer: consumer, Specifier: specifier, Module: module}
	switch r.Policy {
	case Reject:
		return module, e
	case Warn:
		if r.OnEscape != nil {
			r.OnEscape(e)
		}
	}
	return module, nil
}

// ResolveAll resolves every specifier of consumer in order. It stops at the
// first rejected dependency.
func (r *Resolver) ResolveAll(consumer string, specifiers []string) ([]string, error) {
	out := make([]string, 0, len(specifiers))
	for _, s := range specifiers {
		m, err := r.Resolve(consumer, s)
		if err != nil {
			return out, err
		}
		out = append(out, m)
	}
	return out, nil
}
