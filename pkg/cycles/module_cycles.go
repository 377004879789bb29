package cycles

import (
	"github.com/ritzau/lua-restore/pkg/depgraph"
)

// CycleGroup is a set of files that require each other, directly or
// transitively. Files in a group cannot be restored in strict dependency
// order; the restorer falls back to the partial order for them.
type CycleGroup struct {
	Files []string `json:"files"`
}

// FindCycleGroups finds all strongly connected require groups in the
// dependency graph.
func FindCycleGroups(g *depgraph.Graph) []CycleGroup {
	tarjan := NewTarjanSCC(g.Directed())
	sccs := tarjan.FindSCCs()

	groups := make([]CycleGroup, 0)
	for _, scc := range sccs {
		files := make([]string, 0, len(scc))
		for _, nodeID := range scc {
			if path, ok := g.PathForID(nodeID); ok {
				files = append(files, path)
			}
		}

		if len(files) > 1 {
			groups = append(groups, CycleGroup{Files: files})
		}
	}

	return groups
}
