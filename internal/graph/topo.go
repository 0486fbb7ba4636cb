package graph

import (
	"sort"

	bperrors "github.com/alexisbeaulieu97/blueprint/pkg/errors"
)

// TopologicalOrder computes the execution order using Kahn's algorithm.
//
// Ties are broken lexicographically: the ready queue starts sorted, the
// first entry is always taken, and the whole queue is re-sorted whenever
// new nodes become ready. That rule is what makes repeated compilations of
// the same workflow produce identical orders, so it must not change.
//
// Dependencies on undeclared identifiers do not count toward in-degree.
// When fewer nodes are ordered than were declared, a *errors.CompilationError
// carrying both counts is returned. The residual is either a cycle or a
// repeated declaration: an ID declared twice is ordered once, so the input
// node count can never be reached.
func (g *Graph) TopologicalOrder() ([]string, error) {
	indegree := make(map[string]int, len(g.ids))
	for _, id := range g.ids {
		indegree[id] = g.declaredDeps(id)
	}

	var queue []string
	for _, id := range g.ids {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, len(g.ids))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		var eligible []string
		for _, dependent := range g.inverse[current] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				eligible = append(eligible, dependent)
			}
		}

		if len(eligible) > 0 {
			queue = append(queue, eligible...)
			sort.Strings(queue)
		}
	}

	if len(order) < g.total {
		return nil, bperrors.NewCompilationError(len(order), g.total)
	}

	return order, nil
}
