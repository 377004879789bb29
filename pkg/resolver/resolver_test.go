package resolver

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("-- lua\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestResolveBaseMajorOrder(t *testing.T) {
	root1 := t.TempDir()
	root2 := t.TempDir()

	// root1 has the plain source, root2 has the decompiled variant.
	// Base-major order probes all extensions under root1 first, so the
	// plain .lua under root1 must win over the .lua.unluac under root2.
	writeFile(t, filepath.Join(root1, "a", "b", "c.lua"))
	writeFile(t, filepath.Join(root2, "a", "b", "c.lua.unluac"))

	r := NewResolver([]string{root1, root2})

	path, found := r.Resolve("a.b.c")
	if !found {
		t.Fatal("expected a.b.c to resolve")
	}
	if want := filepath.Join(root1, "a", "b", "c.lua"); path != want {
		t.Errorf("expected %s, got %s", want, path)
	}
}

func TestResolveExtensionPriority(t *testing.T) {
	root := t.TempDir()

	// Both variants under one root: the decompiled file needs
	// restoration and must take priority.
	writeFile(t, filepath.Join(root, "mod.lua"))
	writeFile(t, filepath.Join(root, "mod.lua.unluac"))

	r := NewResolver([]string{root})

	path, found := r.Resolve("mod")
	if !found {
		t.Fatal("expected mod to resolve")
	}
	if want := filepath.Join(root, "mod.lua.unluac"); path != want {
		t.Errorf("expected %s, got %s", want, path)
	}
}

func TestResolveMissingModule(t *testing.T) {
	r := NewResolver([]string{t.TempDir()})

	if path, found := r.Resolve("no.such.module"); found {
		t.Errorf("expected miss, resolved to %s", path)
	}
}

func TestSearchPathManagement(t *testing.T) {
	r := NewResolver([]string{"/a"})

	r.AddSearchPath("/b")
	r.AddSearchPath("/b") // duplicate, ignored
	r.AddSearchPath("/c")

	paths := r.SearchPaths()
	if len(paths) != 3 {
		t.Fatalf("expected 3 search paths, got %d: %v", len(paths), paths)
	}
	if paths[0] != "/a" || paths[1] != "/b" || paths[2] != "/c" {
		t.Errorf("search path order wrong: %v", paths)
	}

	r.RemoveSearchPath("/b")
	paths = r.SearchPaths()
	if len(paths) != 2 || paths[0] != "/a" || paths[1] != "/c" {
		t.Errorf("expected [/a /c] after removal, got %v", paths)
	}

	// Mutating the returned copy must not affect the resolver
	paths[0] = "/mutated"
	if r.SearchPaths()[0] != "/a" {
		t.Error("SearchPaths() must return a copy")
	}
}

func TestModuleNameFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/usr/lib/lua/luci/controller/api/xqnetwork.lua", "luci.controller.api.xqnetwork"},
		{"/opt/dump/lua/luci/http.lua.unluac", "luci.http"},
		{"/tmp/standalone.lua", "standalone"},
		{"/tmp/standalone.lua.unluac", "standalone"},
		{"lua/nixio/fs.lua", "nixio.fs"},
	}

	for _, tt := range tests {
		if got := ModuleNameFromPath(tt.path); got != tt.want {
			t.Errorf("ModuleNameFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
