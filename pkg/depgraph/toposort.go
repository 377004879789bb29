package depgraph

import (
	"github.com/ritzau/lua-restore/pkg/logging"
)

// TopologicalSort returns the file paths in dependency order using
// Kahn's algorithm over the forward adjacency: a node's in-degree is its
// number of un-emitted dependencies, so in-degree-zero nodes are files
// whose dependencies are all emitted (or that have none).
//
// If the graph contains a cycle the emitted prefix is still returned and
// the unsortable remainder is logged; callers decide whether a partial
// order is acceptable. Tie-breaking among simultaneously ready nodes is
// insertion-order FIFO and deliberately unspecified beyond the partial
// order contract.
func (g *Graph) TopologicalSort() []string {
	inDegree := make(map[string]int, len(g.forward))
	for node := range g.forward {
		inDegree[node] = 0
	}
	for _, consumers := range g.forward {
		for consumer := range consumers {
			inDegree[consumer]++
		}
	}

	var queue []string
	for _, node := range g.order {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	result := make([]string, 0, len(g.forward))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for consumer := range g.forward[node] {
			inDegree[consumer]--
			if inDegree[consumer] == 0 {
				queue = append(queue, consumer)
			}
		}
	}

	if len(result) != len(g.forward) {
		remaining := make([]string, 0, len(g.forward)-len(result))
		emitted := make(map[string]bool, len(result))
		for _, node := range result {
			emitted[node] = true
		}
		for _, node := range g.order {
			if !emitted[node] {
				remaining = append(remaining, node)
			}
		}
		logging.Warn("circular dependency detected, partial order emitted",
			"emitted", len(result),
			"total", len(g.forward),
			"remaining", remaining,
		)
	}

	return result
}

// DetectCycles reports witness cycles found by a DFS with a recursion
// stack. Each cycle is a closed walk of file paths. This does not
// enumerate every elementary cycle; it guarantees at least one witness
// per cyclic region reached during the scan.
func (g *Graph) DetectCycles() [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var path []string

	var walk func(node string)
	walk = func(node string) {
		if onStack[node] {
			for i, p := range path {
				if p == node {
					cycle := make([]string, 0, len(path)-i+1)
					cycle = append(cycle, path[i:]...)
					cycle = append(cycle, node)
					cycles = append(cycles, cycle)
					break
				}
			}
			return
		}
		if visited[node] {
			return
		}

		visited[node] = true
		onStack[node] = true
		path = append(path, node)

		for consumer := range g.forward[node] {
			walk(consumer)
		}

		onStack[node] = false
		path = path[:len(path)-1]
	}

	for _, node := range g.order {
		if !visited[node] {
			walk(node)
		}
	}

	return cycles
}

// RestorationOrder returns the dependency closure of start plus start
// itself, topologically sorted. The sort runs over a scratch view of the
// induced subgraph; the main adjacency is never mutated.
func (g *Graph) RestorationOrder(start string) []string {
	start = canonicalPath(start)

	if _, exists := g.forward[start]; !exists {
		return []string{start}
	}

	include := g.AllDependencies(start)
	include[start] = true

	// Kahn over the induced subgraph: forward edges filtered to the
	// closure set.
	inDegree := make(map[string]int, len(include))
	for node := range include {
		inDegree[node] = 0
	}
	for node := range include {
		for consumer := range g.forward[node] {
			if include[consumer] {
				inDegree[consumer]++
			}
		}
	}

	var queue []string
	for _, node := range g.order {
		if include[node] && inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	result := make([]string, 0, len(include))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for consumer := range g.forward[node] {
			if !include[consumer] {
				continue
			}
			inDegree[consumer]--
			if inDegree[consumer] == 0 {
				queue = append(queue, consumer)
			}
		}
	}

	if len(result) != len(include) {
		logging.Warn("restoration subgraph contains a cycle, partial order emitted",
			"start", start,
			"emitted", len(result),
			"total", len(include),
		)
	}

	return result
}
