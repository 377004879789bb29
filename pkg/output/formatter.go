package output

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/ritzau/lua-restore/pkg/cycles"
	"github.com/ritzau/lua-restore/pkg/depgraph"
	"github.com/ritzau/lua-restore/pkg/restore"
)

// PrintRunSummary prints a colorized summary of a restoration run
func PrintRunSummary(outputDir string, results []restore.Result, groups []cycles.CycleGroup, stats depgraph.Statistics) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	restored := 0
	var failed []restore.Result
	for _, result := range results {
		if result.Restored {
			restored++
		} else {
			failed = append(failed, result)
		}
	}

	bold.Println("Lua Restore - Run Summary")
	bold.Println("=========================")
	fmt.Printf("Output: %s\n", outputDir)
	fmt.Printf("Files: %d (%d dependencies", stats.TotalFiles, stats.TotalDependencies)
	if n := len(stats.PendingModules); n > 0 {
		yellow.Printf(", %d unresolved module(s)", n)
	}
	fmt.Println(")")

	if len(failed) == 0 {
		green.Printf("Restored: %d files\n", restored)
	} else {
		fmt.Printf("Restored: %d files\n", restored)
		yellow.Printf("Failed: %d file(s)\n", len(failed))
	}
	fmt.Println()

	if len(failed) > 0 {
		red.Println("FAILED FILES:")
		for _, result := range failed {
			yellow.Printf("  %s\n", result.Path)
			cyan.Printf("    Reason: %s (original content written)\n", result.Failure)
		}
		fmt.Println()
	}

	if len(groups) > 0 {
		yellow.Printf("Circular require groups: %d\n", len(groups))
		for _, group := range groups {
			fmt.Printf("  %d files require each other:\n", len(group.Files))
			for _, file := range group.Files {
				cyan.Printf("    %s\n", file)
			}
		}
		fmt.Println()
	}

	if len(results) > 0 && len(failed) == 0 {
		green.Println("✓ All files restored in dependency order!")
	}
}
