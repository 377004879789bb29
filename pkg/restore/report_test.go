package restore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ritzau/lua-restore/pkg/depgraph"
)

func TestWriteReport(t *testing.T) {
	outDir := t.TempDir()

	results := []Result{
		{Path: "/x/a.lua.unluac", OutputPath: "out/a.lua", Restored: true},
		{Path: "/x/b.lua.unluac", Failure: FailureService},
	}

	g := depgraph.NewGraph()
	g.AddFile("/x/a.lua.unluac", "a", "")
	g.AddFile("/x/b.lua.unluac", "b", "")
	g.AddDependency("/x/b.lua.unluac", "a")
	g.AddDependency("/x/b.lua.unluac", "never.resolved")

	if err := WriteReport(outDir, results, g.Statistics()); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "restoration_report.txt"))
	if err != nil {
		t.Fatalf("report missing: %v", err)
	}
	report := string(data)

	for _, want := range []string{
		"Total files: 2",
		"Restored:    1",
		"Failed:      1",
		"/x/a.lua.unluac",
		"/x/b.lua.unluac (service)",
		"unresolved modules: never.resolved",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}
