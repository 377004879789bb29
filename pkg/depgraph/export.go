package depgraph

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Statistics summarizes the graph for reports and the status API.
type Statistics struct {
	TotalFiles        int      `json:"total_files"`
	TotalDependencies int      `json:"total_dependencies"`
	MaxDependents     int      `json:"max_dependents"`
	MinDependents     int      `json:"min_dependents"`
	AvgDependents     float64  `json:"avg_dependents"`
	PendingModules    []string `json:"pending_modules,omitempty"`
}

// Statistics computes node and edge counts plus out-degree extremes over
// the forward adjacency.
func (g *Graph) Statistics() Statistics {
	stats := Statistics{
		TotalFiles:     len(g.forward),
		PendingModules: g.PendingModules(),
	}

	first := true
	for _, consumers := range g.forward {
		n := len(consumers)
		stats.TotalDependencies += n
		if first || n > stats.MaxDependents {
			stats.MaxDependents = n
		}
		if first || n < stats.MinDependents {
			stats.MinDependents = n
		}
		first = false
	}
	if stats.TotalFiles > 0 {
		stats.AvgDependents = float64(stats.TotalDependencies) / float64(stats.TotalFiles)
	}

	return stats
}

// ExportDOT writes the graph in Graphviz DOT format. Nodes are labeled
// with their module names; edges follow the dependency -> consumer
// direction.
func (g *Graph) ExportDOT(outputFile string) error {
	var b strings.Builder
	b.WriteString("digraph Dependencies {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n\n")

	for _, path := range g.order {
		label := g.fileToModule[path]
		if label == "" {
			label = path
		}
		fmt.Fprintf(&b, "  %q [label=%q];\n", path, label)
		for consumer := range g.forward[path] {
			fmt.Fprintf(&b, "  %q -> %q;\n", path, consumer)
		}
	}

	b.WriteString("}\n")
	return os.WriteFile(outputFile, []byte(b.String()), 0o644)
}

type exportMetadata struct {
	TotalFiles        int    `json:"total_files"`
	TotalDependencies int    `json:"total_dependencies"`
	GeneratedAt       string `json:"generated_at"`
}

type exportFile struct {
	FilePath        string `json:"file_path"`
	ModuleName      string `json:"module_name"`
	DependentsCount int    `json:"dependents_count"`
	DependencyCount int    `json:"dependencies_count"`
}

type exportEdge struct {
	From       string `json:"from"`
	To         string `json:"to"`
	FromModule string `json:"from_module"`
	ToModule   string `json:"to_module"`
}

// ExportData is the JSON form of the graph, also served by the web API.
type ExportData struct {
	Metadata         exportMetadata `json:"metadata"`
	Files            []exportFile   `json:"files"`
	Dependencies     []exportEdge   `json:"dependencies"`
	TopologicalOrder []string       `json:"topological_order"`
}

// Export builds the JSON-serializable view of the graph.
func (g *Graph) Export() ExportData {
	data := ExportData{
		Files:            make([]exportFile, 0, len(g.order)),
		Dependencies:     make([]exportEdge, 0),
		TopologicalOrder: g.TopologicalSort(),
	}

	for _, path := range g.order {
		data.Files = append(data.Files, exportFile{
			FilePath:        path,
			ModuleName:      g.fileToModule[path],
			DependentsCount: len(g.forward[path]),
			DependencyCount: len(g.reverse[path]),
		})
		for consumer := range g.forward[path] {
			data.Dependencies = append(data.Dependencies, exportEdge{
				From:       path,
				To:         consumer,
				FromModule: g.fileToModule[path],
				ToModule:   g.fileToModule[consumer],
			})
		}
	}

	data.Metadata = exportMetadata{
		TotalFiles:        len(g.order),
		TotalDependencies: len(data.Dependencies),
		GeneratedAt:       time.Now().Format(time.RFC3339),
	}

	return data
}

// ExportJSON writes the graph, its edges, and the topological order as
// indented JSON.
func (g *Graph) ExportJSON(outputFile string) error {
	data, err := json.MarshalIndent(g.Export(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling dependency graph: %w", err)
	}
	return os.WriteFile(outputFile, data, 0o644)
}
