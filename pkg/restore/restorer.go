package restore

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ritzau/lua-restore/pkg/depgraph"
	"github.com/ritzau/lua-restore/pkg/logging"
)

// FailureReason classifies why a file fell back to its original content.
type FailureReason string

const (
	FailureNone    FailureReason = ""
	FailureRead    FailureReason = "read"
	FailureService FailureReason = "service"
	FailureWrite   FailureReason = "write"
)

// Result records the outcome for one file. Restored is false when the
// original content was written as a fallback.
type Result struct {
	Path       string        `json:"path"`
	OutputPath string        `json:"output_path"`
	Restored   bool          `json:"restored"`
	Failure    FailureReason `json:"failure,omitempty"`
}

// Restorer walks the graph's topological order and restores each file
// once its dependencies have been attempted. One file failing never
// stops the batch; its consumers are still processed.
type Restorer struct {
	graph  *depgraph.Graph
	client Client

	// OnProgress, if set, is called after each file with the result and
	// the done/total counts.
	OnProgress func(result Result, done, total int)
}

// NewRestorer creates a restorer over the given graph and client.
func NewRestorer(g *depgraph.Graph, client Client) *Restorer {
	return &Restorer{graph: g, client: client}
}

// Run restores every file in the graph in dependency order, writing
// results under outputDir. The returned slice has one entry per file in
// restoration order.
func (r *Restorer) Run(ctx context.Context, outputDir string) ([]Result, error) {
	order := r.graph.TopologicalSort()
	if len(order) == 0 {
		logging.Warn("dependency graph is empty, nothing to restore")
		return nil, nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}

	logging.Info("starting restoration", "files", len(order), "output", outputDir)

	results := make([]Result, 0, len(order))
	for i, path := range order {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := r.restoreFile(ctx, path, outputDir)
		results = append(results, result)

		if r.OnProgress != nil {
			r.OnProgress(result, i+1, len(order))
		}
	}

	restored := 0
	for _, result := range results {
		if result.Restored {
			restored++
		}
	}
	logging.Info("restoration complete", "restored", restored, "failed", len(results)-restored)

	return results, nil
}

func (r *Restorer) restoreFile(ctx context.Context, path, outputDir string) Result {
	result := Result{Path: path}

	content, cached := r.graph.Content(path)
	if !cached {
		// Cache miss is normal; re-read from disk
		data, err := os.ReadFile(path)
		if err != nil {
			logging.Error("failed to read file for restoration", "file", path, "error", err)
			result.Failure = FailureRead
			return result
		}
		content = string(data)
	}

	var depModules []string
	for dep := range r.graph.Dependencies(path) {
		if module := r.graph.Module(dep); module != "" {
			depModules = append(depModules, module)
		}
	}

	restored, err := r.client.Restore(ctx, path, content, depModules)
	if err != nil {
		// Fall back to the untransformed content; the file is still
		// written so downstream consumers have something to require.
		logging.Warn("restoration failed, writing original content", "file", path, "error", err)
		result.Failure = FailureService
		restored = content
	} else {
		result.Restored = true
	}

	outputPath := OutputPathFor(path, outputDir)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		logging.Error("failed to create output directory", "output", outputPath, "error", err)
		result.Restored = false
		result.Failure = FailureWrite
		return result
	}
	if err := os.WriteFile(outputPath, []byte(restored), 0o644); err != nil {
		logging.Error("failed to write restored file", "output", outputPath, "error", err)
		result.Restored = false
		result.Failure = FailureWrite
		return result
	}

	result.OutputPath = outputPath
	logging.Debug("file written", "file", path, "output", outputPath, "restored", result.Restored)
	return result
}

// OutputPathFor maps a source path to its restored location under
// outputDir, preserving the directory shape where possible. The dual
// ".lua.unluac" suffix collapses to plain ".lua": once restored, the
// file logically belongs to the plain-source name.
func OutputPathFor(path, outputDir string) string {
	rel := path
	if cwd, err := os.Getwd(); err == nil {
		if r, err := filepath.Rel(cwd, path); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		} else {
			rel = filepath.Base(path)
		}
	}

	if strings.HasSuffix(rel, ".lua.unluac") {
		rel = strings.TrimSuffix(rel, ".lua.unluac") + ".lua"
	}

	return filepath.Join(outputDir, rel)
}
