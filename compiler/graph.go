package compiler

import (
	"sort"

	"github.com/rubiojr/party/resolver"
)

// Edge is one dependency of a module on another.
type Edge struct {
	From string
	To   string
}

// Graph is the module dependency graph of a build. Only modules that
// compiled successfully contribute edges.
type Graph struct {
	Modules []string            // sorted
	Deps    map[string][]string // module -> resolved dependencies, in require order
	known   map[string]bool
}

// NewGraph builds the graph of modules.
func NewGraph(modules []*Module) *Graph {
	g := &Graph{Deps: map[string][]string{}, known: map[string]bool{}}
	for _, m := range modules {
		if g.known[m.Name] {
			continue
		}
		g.known[m.Name] = true
		g.Modules = append(g.Modules, m.Name)
		if m.Err == nil {
			g.Deps[m.Name] = m.Deps
		}
	}
	sort.Strings(g.Modules)
	return g
}

// Has reports whether name is a module of the build.
func (g *Graph) Has(name string) bool { return g.known[name] }

// Missing returns the edges whose target is not part of the build and does
// not escape the project root.
func (g *Graph) Missing() []Edge {
	return g.edges(func(to string) bool { return !g.known[to] && !resolver.Escapes(to) })
}

// Escaping returns the edges whose target lies above the project root.
func (g *Graph) Escaping() []Edge {
	return g.edges(resolver.Escapes)
}

func (g *Graph) edges(keep func(to string) bool) []Edge {
	var out []Edge
	for _, from := range g.Modules {
		seen := map[string]bool{}
		for _, to := range g.Deps[from] {
			if keep(to) && !seen[to] {
				seen[to] = true
				out = append(out, Edge{From: from, To: to})
			}
		}
	}
	return out
}

// Order returns the modules reachable from roots with dependencies before
// their dependents. Cycles are broken at the edge that closes them. With no
// roots every module of the build is ordered. Unknown modules are skipped.
func (g *Graph) Order(roots ...string) []string {
	if len(roots) == 0 {
		roots = g.Modules
	}
	const (
		unvisited = iota
		visiting
		done
	)
	state := map[string]int{}
	var out []string
	var visit func(name string)
	visit = func(name string) {
		if !g.known[name] || state[name] != unvisited {
			return
		}
		state[name] = visiting
		for _, dep := range g.Deps[name] {
			visit(dep)
		}
		state[name] = done
		out = append(out, name)
	}
	for _, r := range roots {
		visit(r)
	}
	return out
}

// Cycles returns the groups of modules that depend on each other, directly
// or through other members of the group. Each group is sorted, and groups are
// ordered by their first member. A module requiring itself forms a group of
// one.
func (g *Graph) Cycles() [][]string {
	var (
		cycles  [][]string
		stack   []string
		next    int
		index   = map[string]int{}
		low     = map[string]int{}
		onStack = map[string]bool{}
	)
	var connect func(name string)
	connect = func(name string) {
		index[name], low[name] = next, next
		next++
		stack = append(stack, name)
		onStack[name] = true
		self := false
		for _, dep := range g.Deps[name] {
			if !g.known[dep] {
				continue
			}
			if dep == name {
				self = true
			}
			if _, visited := index[dep]; !visited {
				connect(dep)
				low[name] = min(low[name], low[dep])
			} else if onStack[dep] {
				low[name] = min(low[name], index[dep])
			}
		}
		if low[name] != index[name] {
			return
		}
		var group []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			group = append(group, top)
			if top == name {
				break
			}
		}
		if len(group) > 1 || self {
			sort.Strings(group)
			cycles = append(cycles, group)
		}
	}
	for _, m := range g.Modules {
		if _, visited := index[m]; !visited {
			connect(m)
		}
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}
