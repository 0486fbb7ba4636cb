// Package graph holds the dependency graph shared by the validator and the
// compiler. One Graph value answers both cycle questions: HasCycle (a boolean
// depth-first probe) and TopologicalOrder (Kahn's algorithm, which fails with
// the number of nodes it managed to order).
package graph

import (
	"sort"

	"github.com/alexisbeaulieu97/blueprint/internal/workflow"
)

// Graph is a read-only projection of a node list. It is never persisted and
// never mutated after New returns, so one value may be shared across goroutines.
type Graph struct {
	ids      []string
	total    int
	declared map[string]struct{}
	forward  map[string][]string
	inverse  map[string][]string
}

// New builds both adjacency forms for nodes. Dangling dependency identifiers
// are kept in the inverse form with their own (empty) entry so lookups never
// miss; rejecting them is the validator's concern.
func New(nodes []workflow.Node) *Graph {
	g := &Graph{
		ids:      make([]string, 0, len(nodes)),
		total:    len(nodes),
		declared: make(map[string]struct{}, len(nodes)),
		forward:  Forward(nodes),
	}

	for _, node := range nodes {
		if _, seen := g.declared[node.ID]; seen {
			continue
		}
		g.declared[node.ID] = struct{}{}
		g.ids = append(g.ids, node.ID)
	}

	g.inverse = make(map[string][]string, len(g.ids))
	for _, id := range g.ids {
		if _, ok := g.inverse[id]; !ok {
			g.inverse[id] = []string{}
		}
		for _, dep := range g.forward[id] {
			g.inverse[dep] = append(g.inverse[dep], id)
		}
	}

	return g
}

// Forward maps each node ID to its declared dependencies, defaulting to an
// empty list. Repeated entries in a depends_on list are collapsed, and when an
// ID is declared twice the later declaration wins.
func Forward(nodes []workflow.Node) map[string][]string {
	forward := make(map[string][]string, len(nodes))
	for _, node := range nodes {
		forward[node.ID] = uniqueStrings(node.DependsOn)
	}
	return forward
}

// Inverse maps each identifier to the nodes that declare it as a dependency.
// Identifiers that only appear as dependency targets get an entry too.
func Inverse(nodes []workflow.Node) map[string][]string {
	g := New(nodes)
	out := make(map[string][]string, len(g.inverse))
	for id, dependents := range g.inverse {
		out[id] = append([]string{}, dependents...)
	}
	return out
}

// IDs returns the declared node identifiers in first-declaration order.
func (g *Graph) IDs() []string {
	return append([]string(nil), g.ids...)
}

// Len reports the number of distinct declared nodes.
func (g *Graph) Len() int {
	return len(g.ids)
}

// Has reports whether id is a declared node.
func (g *Graph) Has(id string) bool {
	_, ok := g.declared[id]
	return ok
}

// Dependencies returns the declared dependencies of id.
func (g *Graph) Dependencies(id string) []string {
	return append([]string(nil), g.forward[id]...)
}

// Dependents returns the nodes that depend on id.
func (g *Graph) Dependents(id string) []string {
	return append([]string(nil), g.inverse[id]...)
}

// Dangling lists dependency targets that are not declared nodes, sorted.
func (g *Graph) Dangling() []string {
	var out []string
	for id := range g.inverse {
		if !g.Has(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// declaredDeps counts the distinct dependencies of id that are declared nodes.
func (g *Graph) declaredDeps(id string) int {
	count := 0
	for _, dep := range g.forward[id] {
		if g.Has(dep) {
			count++
		}
	}
	return count
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
