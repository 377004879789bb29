package depgraph

import (
	"testing"
)

func TestNewGraph(t *testing.T) {
	g := NewGraph()
	if g == nil {
		t.Fatal("NewGraph() returned nil")
	}
	if g.Len() != 0 {
		t.Errorf("new graph should have 0 nodes, got %d", g.Len())
	}
}

func TestEdgeMirrorConsistency(t *testing.T) {
	g := NewGraph()

	g.AddFile("file1.lua", "module1", "")
	g.AddFile("file2.lua", "module2", "")
	g.AddFile("file3.lua", "module3", "")
	g.AddDependency("file1.lua", "module2")
	g.AddDependency("file2.lua", "module3")
	g.AddDependency("file1.lua", "module3")

	// Every forward edge must have its mirror in the reverse map
	for _, path := range g.Files() {
		for consumer := range g.Dependents(path) {
			if !g.Dependencies(consumer)[path] {
				t.Errorf("forward edge %s->%s missing from reverse map", path, consumer)
			}
		}
		for dep := range g.Dependencies(path) {
			if !g.Dependents(dep)[path] {
				t.Errorf("reverse edge %s->%s missing from forward map", path, dep)
			}
		}
	}

	deps := g.Dependencies("file1.lua")
	if len(deps) != 2 {
		t.Errorf("expected file1 to have 2 dependencies, got %d", len(deps))
	}
}

func TestPendingDependencyResolution(t *testing.T) {
	g := NewGraph()

	// Consumer declares the dependency before the module's file is known
	g.AddFile("consumer.lua", "consumer", "")
	g.AddDependency("consumer.lua", "m")

	if len(g.PendingModules()) != 1 {
		t.Fatalf("expected 1 pending module, got %v", g.PendingModules())
	}
	if len(g.Dependencies("consumer.lua")) != 0 {
		t.Error("no real edge should exist while the module is pending")
	}

	g.AddFile("m.lua", "m", "")

	if len(g.PendingModules()) != 0 {
		t.Errorf("pending entry should be cleared, got %v", g.PendingModules())
	}

	deps := g.Dependencies("consumer.lua")
	found := false
	for dep := range deps {
		if g.Module(dep) == "m" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected consumer to depend on m's file, got %v", deps)
	}
}

func TestPendingNeverResolvedIsTerminal(t *testing.T) {
	g := NewGraph()

	g.AddFile("a.lua", "a", "")
	g.AddDependency("a.lua", "ghost.module")

	// The unresolved module never becomes a node; the sort proceeds
	order := g.TopologicalSort()
	if len(order) != 1 {
		t.Errorf("expected 1 node in order, got %d", len(order))
	}
	if len(g.PendingModules()) != 1 {
		t.Errorf("expected the ghost module to stay pending, got %v", g.PendingModules())
	}
}

func TestContentCachedOnce(t *testing.T) {
	g := NewGraph()

	g.AddFile("f.lua", "f", "original content")
	g.AddFile("f.lua", "f", "second registration")

	content, ok := g.Content("f.lua")
	if !ok {
		t.Fatal("expected cached content")
	}
	if content != "original content" {
		t.Errorf("content must not be overwritten, got %q", content)
	}
}

func TestModuleRemappingLastWins(t *testing.T) {
	g := NewGraph()

	g.AddFile("old.lua", "mod", "")
	g.AddFile("new.lua", "mod", "")

	path, ok := g.FileForModule("mod")
	if !ok {
		t.Fatal("expected mod to be mapped")
	}
	if g.Module(path) != "mod" {
		t.Errorf("path %s should map back to mod", path)
	}
	if path != canonicalPath("new.lua") {
		t.Errorf("last registration should win, got %s", path)
	}
}

func TestAllDependenciesDiamond(t *testing.T) {
	g := NewGraph()

	// A depends on B and C; B and C both depend on D
	g.AddFile("a.lua", "a", "")
	g.AddFile("b.lua", "b", "")
	g.AddFile("c.lua", "c", "")
	g.AddFile("d.lua", "d", "")
	g.AddDependency("a.lua", "b")
	g.AddDependency("a.lua", "c")
	g.AddDependency("b.lua", "d")
	g.AddDependency("c.lua", "d")

	closure := g.AllDependencies("a.lua")
	if len(closure) != 3 {
		t.Fatalf("expected closure {b,c,d}, got %d entries", len(closure))
	}
	for _, mod := range []string{"b", "c", "d"} {
		path, _ := g.FileForModule(mod)
		if !closure[path] {
			t.Errorf("expected %s in closure", mod)
		}
	}
	aPath, _ := g.FileForModule("a")
	if closure[aPath] {
		t.Error("closure must not contain the start node")
	}
}

func TestAllDependenciesCycleSafe(t *testing.T) {
	g := NewGraph()

	g.AddFile("a.lua", "a", "")
	g.AddFile("b.lua", "b", "")
	g.AddDependency("a.lua", "b")
	g.AddDependency("b.lua", "a")

	closure := g.AllDependencies("a.lua")
	if len(closure) != 2 {
		t.Errorf("expected closure of 2 on a 2-cycle, got %d", len(closure))
	}
}

func TestAddFileIdempotent(t *testing.T) {
	g := NewGraph()

	g.AddFile("f.lua", "f", "")
	g.AddFile("f.lua", "f", "")

	if g.Len() != 1 {
		t.Errorf("repeated AddFile must not duplicate nodes, got %d", g.Len())
	}
	if len(g.Files()) != 1 {
		t.Errorf("insertion order list must not duplicate, got %v", g.Files())
	}
}

func TestGonumMirror(t *testing.T) {
	g := NewGraph()

	g.AddFile("a.lua", "a", "")
	g.AddFile("b.lua", "b", "")
	g.AddDependency("b.lua", "a") // edge a -> b

	directed := g.Directed()
	nodes := directed.Nodes()
	count := 0
	for nodes.Next() {
		if _, ok := g.PathForID(nodes.Node().ID()); !ok {
			t.Error("mirror node has no path mapping")
		}
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 mirror nodes, got %d", count)
	}
}
