package graph

type frame struct {
	id   string
	next int
}

// HasCycle reports whether the dependency graph contains a cycle. It walks
// the inverse graph depth-first from every root, using an explicit stack so
// deep graphs cannot exhaust the call stack. Nodes stay in explored once
// visited; a node is on the path only while its frame is on the stack, and
// reaching a node that is on the path is a back edge.
//
// Only presence is reported, not the nodes that form the cycle.
func (g *Graph) HasCycle() bool {
	explored := make(map[string]struct{}, len(g.inverse))
	onPath := make(map[string]struct{})

	roots := append(g.IDs(), g.Dangling()...)
	for _, root := range roots {
		if _, done := explored[root]; done {
			continue
		}
		if g.probe(root, explored, onPath) {
			return true
		}
	}

	return false
}

func (g *Graph) probe(root string, explored, onPath map[string]struct{}) bool {
	explored[root] = struct{}{}
	onPath[root] = struct{}{}
	stack := []frame{{id: root}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		neighbours := g.inverse[top.id]

		if top.next >= len(neighbours) {
			delete(onPath, top.id)
			stack = stack[:len(stack)-1]
			continue
		}

		next := neighbours[top.next]
		top.next++

		if _, ok := onPath[next]; ok {
			return true
		}
		if _, ok := explored[next]; ok {
			continue
		}

		explored[next] = struct{}{}
		onPath[next] = struct{}{}
		stack = append(stack, frame{id: next})
	}

	return false
}
