package graph

import "sort"

// Levels partitions the declared nodes by dependency depth. Nodes without
// declared dependencies sit at level 0; every other node sits one level
// above its deepest dependency. Levels are filled breadth-first along the
// inverse graph and a node is placed only once its last dependency has been
// placed, so diamonds converge exactly once.
//
// Members of each level are sorted lexicographically. Nodes that can never be
// placed (possible only when the graph has a cycle) are omitted.
func (g *Graph) Levels() [][]string {
	pending := make(map[string]int, len(g.ids))
	level := make(map[string]int, len(g.ids))
	var queue []string

	for _, id := range g.ids {
		pending[id] = g.declaredDeps(id)
		if pending[id] == 0 {
			level[id] = 0
			queue = append(queue, id)
		}
	}

	var levels [][]string
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		depth := level[current]
		for len(levels) <= depth {
			levels = append(levels, nil)
		}
		levels[depth] = append(levels[depth], current)

		for _, dependent := range g.inverse[current] {
			if _, placed := level[dependent]; placed {
				continue
			}
			pending[dependent]--
			if pending[dependent] > 0 {
				continue
			}
			level[dependent] = g.levelFor(dependent, level)
			queue = append(queue, dependent)
		}
	}

	for _, members := range levels {
		sort.Strings(members)
	}

	return levels
}

func (g *Graph) levelFor(id string, level map[string]int) int {
	highest := -1
	for _, dep := range g.forward[id] {
		if d, ok := level[dep]; ok && d > highest {
			highest = d
		}
	}
	return highest + 1
}
