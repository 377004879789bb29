package cycles

import (
	"testing"

	"github.com/ritzau/lua-restore/pkg/depgraph"
)

func TestFindCycleGroups_NoCycles(t *testing.T) {
	g := depgraph.NewGraph()

	// Simple acyclic require chain: a requires b requires c
	g.AddFile("a.lua", "a", "")
	g.AddFile("b.lua", "b", "")
	g.AddFile("c.lua", "c", "")
	g.AddDependency("a.lua", "b")
	g.AddDependency("b.lua", "c")

	groups := FindCycleGroups(g)

	if len(groups) != 0 {
		t.Errorf("Expected no cycle groups, but found %d", len(groups))
	}
}

func TestFindCycleGroups_SimpleCycle(t *testing.T) {
	g := depgraph.NewGraph()

	// a and b require each other
	g.AddFile("a.lua", "a", "")
	g.AddFile("b.lua", "b", "")
	g.AddDependency("a.lua", "b")
	g.AddDependency("b.lua", "a")

	groups := FindCycleGroups(g)

	if len(groups) != 1 {
		t.Fatalf("Expected 1 cycle group, but found %d", len(groups))
	}

	group := groups[0]
	if len(group.Files) != 2 {
		t.Errorf("Expected group of size 2, got %d", len(group.Files))
	}

	members := make(map[string]bool)
	for _, file := range group.Files {
		members[g.Module(file)] = true
	}
	if !members["a"] || !members["b"] {
		t.Errorf("Expected group to contain a and b, got %v", group.Files)
	}
}

func TestFindCycleGroups_MultipleCycles(t *testing.T) {
	g := depgraph.NewGraph()

	// Group 1: a <-> b
	g.AddFile("a.lua", "a", "")
	g.AddFile("b.lua", "b", "")
	g.AddDependency("a.lua", "b")
	g.AddDependency("b.lua", "a")

	// Group 2: c -> d -> e -> c
	g.AddFile("c.lua", "c", "")
	g.AddFile("d.lua", "d", "")
	g.AddFile("e.lua", "e", "")
	g.AddDependency("c.lua", "d")
	g.AddDependency("d.lua", "e")
	g.AddDependency("e.lua", "c")

	groups := FindCycleGroups(g)

	if len(groups) != 2 {
		t.Fatalf("Expected 2 cycle groups, but found %d", len(groups))
	}

	sizes := make(map[int]int)
	for _, group := range groups {
		sizes[len(group.Files)]++
	}
	if sizes[2] != 1 || sizes[3] != 1 {
		t.Errorf("Expected one 2-file group and one 3-file group, got: %v", sizes)
	}
}

func TestFindCycleGroups_CycleWithAcyclicParts(t *testing.T) {
	g := depgraph.NewGraph()

	// Acyclic: a -> b -> c, cyclic: d <-> e
	g.AddFile("a.lua", "a", "")
	g.AddFile("b.lua", "b", "")
	g.AddFile("c.lua", "c", "")
	g.AddDependency("a.lua", "b")
	g.AddDependency("b.lua", "c")

	g.AddFile("d.lua", "d", "")
	g.AddFile("e.lua", "e", "")
	g.AddDependency("d.lua", "e")
	g.AddDependency("e.lua", "d")

	groups := FindCycleGroups(g)

	if len(groups) != 1 {
		t.Fatalf("Expected 1 cycle group, but found %d", len(groups))
	}
	if len(groups[0].Files) != 2 {
		t.Errorf("Expected group of size 2, got %d", len(groups[0].Files))
	}
}
