package depgraph

import (
	"path/filepath"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Graph tracks which Lua files are known, which files depend on which,
// and the order a dependency-respecting pass over them must take.
//
// Edges point dependency -> consumer, so a topological sort emits
// dependencies before the files that require them. Every edge lives in
// both the forward map (dependency -> consumers) and the reverse map
// (consumer -> dependencies).
//
// The graph is not safe for concurrent mutation; callers serialize
// discovery before running ordering queries.
type Graph struct {
	forward map[string]map[string]bool // dependency -> set of consumers
	reverse map[string]map[string]bool // consumer -> set of dependencies

	fileToModule map[string]string
	moduleToFile map[string]string
	contents     map[string]string

	// Dependencies on modules that have no registered file yet:
	// module name -> set of consumer paths waiting for it.
	pending map[string]map[string]bool

	order []string // node insertion order, seeds the sort queue

	// Mirror of nodes and edges in gonum form for SCC analysis.
	directed *simple.DirectedGraph
	ids      map[string]int64
	paths    map[int64]string
	nextID   int64
}

// NewGraph creates an empty dependency graph.
func NewGraph() *Graph {
	return &Graph{
		forward:      make(map[string]map[string]bool),
		reverse:      make(map[string]map[string]bool),
		fileToModule: make(map[string]string),
		moduleToFile: make(map[string]string),
		contents:     make(map[string]string),
		pending:      make(map[string]map[string]bool),
		directed:     simple.NewDirectedGraph(),
		ids:          make(map[string]int64),
		paths:        make(map[int64]string),
	}
}

// canonicalPath normalizes a path to its absolute, symlink-resolved form
// so the same file discovered twice gets one node.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs
}

// ensureNode registers a path in both adjacency maps and the gonum
// mirror. Idempotent.
func (g *Graph) ensureNode(path string) {
	if _, exists := g.forward[path]; !exists {
		g.forward[path] = make(map[string]bool)
		g.order = append(g.order, path)
	}
	if _, exists := g.reverse[path]; !exists {
		g.reverse[path] = make(map[string]bool)
	}
	if _, exists := g.ids[path]; !exists {
		id := g.nextID
		g.nextID++
		g.ids[path] = id
		g.paths[id] = path
		g.directed.AddNode(simple.Node(id))
	}
}

// addEdge inserts dependency -> consumer into both maps and the mirror.
func (g *Graph) addEdge(dependency, consumer string) {
	g.ensureNode(dependency)
	g.ensureNode(consumer)
	g.forward[dependency][consumer] = true
	g.reverse[consumer][dependency] = true

	from, to := g.ids[dependency], g.ids[consumer]
	// gonum rejects self loops; the maps still record them and the sort
	// treats them as a one-node cycle.
	if from != to && !g.directed.HasEdgeFromTo(from, to) {
		g.directed.SetEdge(g.directed.NewEdge(g.directed.Node(from), g.directed.Node(to)))
	}
}

// AddFile registers a file under its module name, optionally caching its
// content. Any consumers pending on the module get their edges inserted
// now. Repeated calls for the same path are idempotent; cached content is
// never overwritten.
func (g *Graph) AddFile(path, module string, content string) {
	path = canonicalPath(path)

	if old, ok := g.fileToModule[path]; ok && old != module {
		if g.moduleToFile[old] == path {
			delete(g.moduleToFile, old)
		}
	}
	g.fileToModule[path] = module
	g.moduleToFile[module] = path

	if content != "" {
		if _, cached := g.contents[path]; !cached {
			g.contents[path] = content
		}
	}

	g.ensureNode(path)

	// Back-fill edges for consumers that declared this module before its
	// file was discovered.
	for consumer := range g.pending[module] {
		g.addEdge(path, consumer)
	}
	delete(g.pending, module)
}

// AddDependency records that fromPath requires the named module. If the
// module already has a file, a real edge is inserted; otherwise the
// reference is parked as pending until AddFile supplies the file. A
// dependency reference is never dropped.
func (g *Graph) AddDependency(fromPath, toModule string) {
	fromPath = canonicalPath(fromPath)
	g.ensureNode(fromPath)

	if toFile, ok := g.moduleToFile[toModule]; ok {
		g.addEdge(toFile, fromPath)
		return
	}

	if g.pending[toModule] == nil {
		g.pending[toModule] = make(map[string]bool)
	}
	g.pending[toModule][fromPath] = true
}

// Dependencies returns the files path directly depends on.
func (g *Graph) Dependencies(path string) map[string]bool {
	return copySet(g.reverse[canonicalPath(path)])
}

// Dependents returns the files that directly depend on path.
func (g *Graph) Dependents(path string) map[string]bool {
	return copySet(g.forward[canonicalPath(path)])
}

// AllDependencies returns the transitive dependency closure of path.
// Cycle-safe: every node is visited at most once.
func (g *Graph) AllDependencies(path string) map[string]bool {
	path = canonicalPath(path)
	visited := make(map[string]bool)
	closure := make(map[string]bool)

	var walk func(node string)
	walk = func(node string) {
		if visited[node] {
			return
		}
		visited[node] = true
		for dep := range g.reverse[node] {
			closure[dep] = true
			walk(dep)
		}
	}

	walk(path)
	return closure
}

// Module returns the module name registered for a file path.
func (g *Graph) Module(path string) string {
	return g.fileToModule[canonicalPath(path)]
}

// FileForModule returns the file registered for a module name.
func (g *Graph) FileForModule(module string) (string, bool) {
	path, ok := g.moduleToFile[module]
	return path, ok
}

// Content returns the cached content for a file, if any.
func (g *Graph) Content(path string) (string, bool) {
	content, ok := g.contents[canonicalPath(path)]
	return content, ok
}

// Files returns all node paths in insertion order.
func (g *Graph) Files() []string {
	files := make([]string, len(g.order))
	copy(files, g.order)
	return files
}

// Len returns the number of file nodes.
func (g *Graph) Len() int {
	return len(g.forward)
}

// PendingModules returns the module names that have consumers waiting but
// no registered file. A module staying here is a legitimate terminal
// state, not an error.
func (g *Graph) PendingModules() []string {
	modules := make([]string, 0, len(g.pending))
	for module := range g.pending {
		modules = append(modules, module)
	}
	return modules
}

// Directed exposes the gonum mirror for SCC-style analysis.
func (g *Graph) Directed() graph.Directed {
	return g.directed
}

// PathForID maps a gonum node ID back to its file path.
func (g *Graph) PathForID(id int64) (string, bool) {
	path, ok := g.paths[id]
	return path, ok
}

func copySet(set map[string]bool) map[string]bool {
	out := make(map[string]bool, len(set))
	for k := range set {
		out[k] = true
	}
	return out
}
