package resolver

import (
	"os"
	"path/filepath"
	"strings"
)

// moduleExtensions is the priority order for resolving a module name to a
// file. Decompiled .lua.unluac files come first: those are the files that
// still need restoration, and they may coexist with an already-plain .lua
// variant of the same module.
var moduleExtensions = []string{".lua.unluac", ".lua", ".so", ".dll", ".dylib"}

// Resolver maps dotted Lua module names (e.g. "luci.http") to file paths
// by probing an ordered list of search roots.
type Resolver struct {
	basePaths []string
}

// NewResolver creates a resolver with the given initial search roots.
func NewResolver(basePaths []string) *Resolver {
	r := &Resolver{}
	r.basePaths = append(r.basePaths, basePaths...)
	return r
}

// Resolve returns the first existing file for a module name, or false if
// no search root contains it. Absence is a normal outcome, not an error.
//
// Order is base-major: all extensions are tried under the first search
// root before the second root is considered.
func (r *Resolver) Resolve(module string) (string, bool) {
	segments := strings.Split(module, ".")

	for _, base := range r.basePaths {
		candidate := filepath.Join(append([]string{base}, segments...)...)
		for _, ext := range moduleExtensions {
			path := candidate + ext
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, true
			}
		}
	}

	return "", false
}

// AddSearchPath appends a search root if it is not already present.
func (r *Resolver) AddSearchPath(path string) {
	for _, p := range r.basePaths {
		if p == path {
			return
		}
	}
	r.basePaths = append(r.basePaths, path)
}

// RemoveSearchPath removes a search root. Paths resolved earlier stay
// valid; callers re-resolve if they care about the new root set.
func (r *Resolver) RemoveSearchPath(path string) {
	for i, p := range r.basePaths {
		if p == path {
			r.basePaths = append(r.basePaths[:i], r.basePaths[i+1:]...)
			return
		}
	}
}

// SearchPaths returns a copy of the current search roots in order.
func (r *Resolver) SearchPaths() []string {
	paths := make([]string, len(r.basePaths))
	copy(paths, r.basePaths)
	return paths
}

// ModuleNameFromPath derives a dotted module name from a file path.
// Segments after the last "lua" directory component become the module
// path; the dual ".lua.unluac" suffix and the plain ".lua" suffix are
// stripped. A path with no "lua" component falls back to the bare file
// name. This must agree with the naming the restoration output applies.
func ModuleNameFromPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")

	luaIndex := -1
	for i, part := range parts {
		if part == "lua" {
			luaIndex = i
		}
	}

	var segments []string
	if luaIndex >= 0 && luaIndex < len(parts)-1 {
		segments = parts[luaIndex+1:]
	} else {
		segments = []string{parts[len(parts)-1]}
	}

	last := segments[len(segments)-1]
	last = strings.TrimSuffix(last, ".unluac")
	last = strings.TrimSuffix(last, ".lua")
	segments[len(segments)-1] = last

	return strings.Join(segments, ".")
}
