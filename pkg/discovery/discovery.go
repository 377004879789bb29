package discovery

import (
	"context"
	"os"
	"strings"

	"github.com/ritzau/lua-restore/pkg/depgraph"
	"github.com/ritzau/lua-restore/pkg/logging"
	"github.com/ritzau/lua-restore/pkg/resolver"
)

// Discoverer walks the require graph from a seed file, feeding every
// reachable file and dependency reference into the graph. Discovery is
// bounded by a maximum require depth, not by cancellation; the context
// only stops the walk between files.
type Discoverer struct {
	resolver *resolver.Resolver
	graph    *depgraph.Graph
	maxDepth int
}

// Result summarizes a discovery run.
type Result struct {
	Processed int
	Failed    []string
}

// New creates a discoverer over the given resolver and graph.
func New(res *resolver.Resolver, g *depgraph.Graph, maxDepth int) *Discoverer {
	return &Discoverer{
		resolver: res,
		graph:    g,
		maxDepth: maxDepth,
	}
}

type workItem struct {
	path  string
	depth int
}

// Run discovers the dependency closure of startFile breadth-first.
// A module that resolves to no file stays a pending reference in the
// graph; that is a warning, never a failure. Files that cannot be read
// are recorded as failed and skipped, the walk continues.
func (d *Discoverer) Run(ctx context.Context, startFile string) (*Result, error) {
	logging.Info("starting dependency discovery", "start", startFile, "maxDepth", d.maxDepth)

	result := &Result{}
	queue := []workItem{{path: startFile, depth: 0}}
	processed := make(map[string]bool)

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		item := queue[0]
		queue = queue[1:]

		if processed[item.path] || item.depth > d.maxDepth {
			continue
		}
		processed[item.path] = true

		content, err := readFileLossy(item.path)
		if err != nil {
			logging.Error("failed to read file", "file", item.path, "error", err)
			result.Failed = append(result.Failed, item.path)
			continue
		}

		module := resolver.ModuleNameFromPath(item.path)
		d.graph.AddFile(item.path, module, content)
		result.Processed++

		requires := resolver.ExtractRequires(content)
		logging.Debug("analyzed file", "file", item.path, "module", module, "requires", len(requires))

		for _, required := range requires {
			d.graph.AddDependency(item.path, required)

			depFile, found := d.resolver.Resolve(required)
			if !found {
				logging.Warn("module not found under search paths", "module", required)
				continue
			}
			if !processed[depFile] && item.depth < d.maxDepth {
				queue = append(queue, workItem{path: depFile, depth: item.depth + 1})
			}
		}
	}

	logging.Info("dependency discovery complete",
		"processed", result.Processed,
		"failed", len(result.Failed),
		"pendingModules", len(d.graph.PendingModules()),
	)

	return result, nil
}

// readFileLossy reads a file as text, replacing invalid UTF-8 rather
// than failing: unluac output occasionally embeds raw bytes.
func readFileLossy(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}
