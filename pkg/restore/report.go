package restore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ritzau/lua-restore/pkg/depgraph"
	"github.com/ritzau/lua-restore/pkg/logging"
)

// WriteReport writes a plain-text summary of a restoration run next to
// the restored files.
func WriteReport(outputDir string, results []Result, stats depgraph.Statistics) error {
	var restored, failed []string
	for _, result := range results {
		if result.Restored {
			restored = append(restored, result.Path)
		} else {
			failed = append(failed, fmt.Sprintf("%s (%s)", result.Path, result.Failure))
		}
	}
	sort.Strings(restored)
	sort.Strings(failed)

	var b strings.Builder
	b.WriteString("Lua Restoration Report\n")
	b.WriteString("======================\n\n")

	fmt.Fprintf(&b, "Total files: %d\n", len(results))
	fmt.Fprintf(&b, "Restored:    %d\n", len(restored))
	fmt.Fprintf(&b, "Failed:      %d\n\n", len(failed))

	if len(restored) > 0 {
		b.WriteString("Restored files:\n")
		for _, path := range restored {
			fmt.Fprintf(&b, "  - %s\n", path)
		}
		b.WriteString("\n")
	}

	if len(failed) > 0 {
		b.WriteString("Failed files:\n")
		for _, path := range failed {
			fmt.Fprintf(&b, "  - %s\n", path)
		}
		b.WriteString("\n")
	}

	b.WriteString("Dependency graph:\n")
	fmt.Fprintf(&b, "  files: %d\n", stats.TotalFiles)
	fmt.Fprintf(&b, "  dependencies: %d\n", stats.TotalDependencies)
	fmt.Fprintf(&b, "  max dependents: %d\n", stats.MaxDependents)
	fmt.Fprintf(&b, "  min dependents: %d\n", stats.MinDependents)
	fmt.Fprintf(&b, "  avg dependents: %.2f\n", stats.AvgDependents)
	if len(stats.PendingModules) > 0 {
		fmt.Fprintf(&b, "  unresolved modules: %s\n", strings.Join(stats.PendingModules, ", "))
	}

	reportFile := filepath.Join(outputDir, "restoration_report.txt")
	if err := os.WriteFile(reportFile, []byte(b.String()), 0o644); err != nil {
		return err
	}

	logging.Info("restoration report written", "output", reportFile)
	return nil
}
