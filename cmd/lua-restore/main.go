package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ritzau/lua-restore/pkg/config"
	"github.com/ritzau/lua-restore/pkg/cycles"
	"github.com/ritzau/lua-restore/pkg/depgraph"
	"github.com/ritzau/lua-restore/pkg/discovery"
	"github.com/ritzau/lua-restore/pkg/logging"
	"github.com/ritzau/lua-restore/pkg/output"
	"github.com/ritzau/lua-restore/pkg/pubsub"
	"github.com/ritzau/lua-restore/pkg/resolver"
	"github.com/ritzau/lua-restore/pkg/restore"
	"github.com/ritzau/lua-restore/pkg/watcher"
	"github.com/ritzau/lua-restore/pkg/web"
)

func main() {
	f := pflag.NewFlagSet("lua-restore", pflag.ExitOnError)
	f.String("start", "", "Seed .lua.unluac file to restore from")
	f.String("unluac-dir", ".", "Directory holding the unluac output tree")
	f.StringSlice("lua-paths", nil, "Additional Lua search roots")
	f.String("output", "output", "Output directory for restored files")
	f.Int("max-depth", 10, "Maximum require depth to follow during discovery")
	f.String("api-key", "", "OpenRouter API key")
	f.String("base-url", "https://openrouter.ai/api/v1", "OpenAI-compatible API base URL")
	f.String("model", "anthropic/claude-3.5-sonnet", "Model used for restoration")
	f.Bool("web", false, "Serve graph and progress on a status server")
	f.Int("port", 8080, "Port for the status server (only used with --web)")
	f.Bool("watch", false, "Re-run when files under the search roots change")
	f.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	_ = f.Parse(os.Args[1:])

	cfg, err := config.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case cfg.VerboseCnt >= 2:
		logging.SetLevel(slog.LevelDebug - 4)
	case cfg.VerboseCnt == 1:
		logging.SetLevel(slog.LevelDebug)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if _, err := os.Stat(cfg.StartFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: start file not found: %s\n", cfg.StartFile)
		os.Exit(1)
	}
	if !strings.HasSuffix(cfg.StartFile, ".lua.unluac") {
		logging.Warn("start file is not a .lua.unluac file", "file", cfg.StartFile)
	}

	res := resolver.NewResolver(cfg.LuaPaths)
	res.AddSearchPath(cfg.UnluacDir)
	// Trees dumped by unluac usually carry the modules under a lua/
	// subdirectory; search it directly as well
	luaSubdir := filepath.Join(cfg.UnluacDir, "lua")
	if info, err := os.Stat(luaSubdir); err == nil && info.IsDir() {
		res.AddSearchPath(luaSubdir)
		logging.Info("added lua subdirectory to search paths", "path", luaSubdir)
	}

	client := restore.NewOpenRouterClient(cfg.APIKey, cfg.BaseURL, cfg.Model)
	publisher := pubsub.NewSSEPublisher()

	var server *web.Server
	if cfg.WebMode {
		server = web.NewServer(publisher)
		go func() {
			if err := server.Start(cfg.Port); err != nil {
				logging.Fatal("status server failed", "error", err)
			}
		}()
	}

	ctx := context.Background()
	if err := runOnce(ctx, cfg, res, client, publisher, server); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case cfg.Watch:
		watchAndRerun(ctx, cfg, res, client, publisher, server)
	case cfg.WebMode:
		logging.Info("run complete, status server still serving", "port", cfg.Port)
		select {}
	}
}

// runOnce drives one full discovery + restoration pass.
func runOnce(ctx context.Context, cfg *config.Config, res *resolver.Resolver, client restore.Client, publisher pubsub.Publisher, server *web.Server) error {
	graph := depgraph.NewGraph()

	_ = publisher.Publish("progress", "discovering", map[string]any{"start": cfg.StartFile})

	disc := discovery.New(res, graph, cfg.MaxDepth)
	discovered, err := disc.Run(ctx, cfg.StartFile)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}
	if server != nil {
		server.SetGraph(graph)
	}
	_ = publisher.Publish("graph", "discovered", graph.Statistics())

	if witnesses := graph.DetectCycles(); len(witnesses) > 0 {
		logging.Warn("circular requires detected", "cycles", len(witnesses))
	}

	restorer := restore.NewRestorer(graph, client)
	restorer.OnProgress = func(result restore.Result, done, total int) {
		_ = publisher.Publish("progress", "file_restored", map[string]any{
			"path":     result.Path,
			"restored": result.Restored,
			"done":     done,
			"total":    total,
		})
	}

	results, err := restorer.Run(ctx, cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("restoration failed: %w", err)
	}
	if server != nil {
		server.SetResults(results)
	}
	_ = publisher.Publish("progress", "done", map[string]any{"files": len(results)})

	if err := graph.ExportDOT(filepath.Join(cfg.OutputDir, "dependencies.dot")); err != nil {
		logging.Error("failed to export DOT graph", "error", err)
	}
	if err := graph.ExportJSON(filepath.Join(cfg.OutputDir, "dependencies.json")); err != nil {
		logging.Error("failed to export JSON graph", "error", err)
	}

	stats := graph.Statistics()
	if err := restore.WriteReport(cfg.OutputDir, results, stats); err != nil {
		logging.Error("failed to write report", "error", err)
	}

	output.PrintRunSummary(cfg.OutputDir, results, cycles.FindCycleGroups(graph), stats)
	logging.Info("run finished", "discovered", discovered.Processed, "restored", len(results))

	return nil
}

// watchAndRerun blocks, re-running the pipeline whenever module files
// under the search roots change.
func watchAndRerun(ctx context.Context, cfg *config.Config, res *resolver.Resolver, client restore.Client, publisher pubsub.Publisher, server *web.Server) {
	fw, err := watcher.NewFileWatcher(res.SearchPaths())
	if err != nil {
		logging.Fatal("failed to start watcher", "error", err)
	}
	defer fw.Close()

	fw.Start(ctx)

	debouncer := watcher.NewDebouncer(fw.Events(), watcher.DefaultQuietPeriod, watcher.DefaultMaxWait)
	debouncer.Start(ctx)

	logging.Info("watching for changes", "roots", len(res.SearchPaths()))

	for event := range debouncer.Output() {
		logging.Info("change detected, re-running", "files", len(event.Paths))
		if err := runOnce(ctx, cfg, res, client, publisher, server); err != nil {
			logging.Error("re-run failed", "error", err)
		}
	}
}
