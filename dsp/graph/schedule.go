package graph

import "fmt"

// reaches reports whether to is reachable from from over existing
// connections of either kind.
func (g *Graph) reaches(from, to NodeID) bool {
	seen := map[NodeID]bool{from: true}
	stack := []NodeID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		for _, c := range g.conns {
			if c.Source.Node == id && !seen[c.Dest.Node] {
				seen[c.Dest.Node] = true
				stack = append(stack, c.Dest.Node)
			}
		}
	}
	return false
}

// schedule orders the nodes with Kahn's algorithm. Among ready nodes the
// one added first runs first, so the order is reproducible. A node left
// over means the connection set has a cycle, which validate rules out;
// schedule panics rather than drop nodes.
func (g *Graph) schedule() []NodeID {
	index := make(map[NodeID]int, len(g.nodes))
	for i, n := range g.nodes {
		index[n.ID] = i
	}

	indegree := make([]int, len(g.nodes))
	outgoing := make([][]int, len(g.nodes))
	for _, c := range g.conns {
		from, to := index[c.Source.Node], index[c.Dest.Node]
		outgoing[from] = append(outgoing[from], to)
		indegree[to]++
	}

	// ready is kept sorted by insertion index.
	ready := make([]int, 0, len(g.nodes))
	for i, d := range indegree {
		if d == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]NodeID, 0, len(g.nodes))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		order = append(order, g.nodes[i].ID)

		for _, to := range outgoing[i] {
			indegree[to]--
			if indegree[to] == 0 {
				ready = insertSorted(ready, to)
			}
		}
	}

	if len(order) != len(g.nodes) {
		panic(fmt.Sprintf("graph: %d of %d nodes unschedulable", len(g.nodes)-len(order), len(g.nodes)))
	}
	return order
}

func insertSorted(s []int, v int) []int {
	i := 0
	for i < len(s) && s[i] < v {
		i++
	}
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
