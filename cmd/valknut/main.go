// Command valknut runs the refactoring-pressure analysis pipeline over one
// or more project roots and prints the resulting AnalysisResults.
//
// It is a thin CLI shell around internal/pipeline: flag parsing, config
// loading, and output formatting live here; every analysis decision lives
// in the core.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/valknut-go/valknut/internal/debug"
	"github.com/valknut-go/valknut/internal/pipeline"
	"github.com/valknut-go/valknut/internal/results"
	"github.com/valknut-go/valknut/internal/version"
	"github.com/valknut-go/valknut/internal/vkconfig"
)

// Version is overwritten at build time via -ldflags; it defaults to the
// version package's compiled-in value.
var Version = version.Version

func main() {
	app := &cli.App{
		Name:                   "valknut",
		Usage:                  "Score a repository for refactoring pressure",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (.yaml, .toml, or .kdl)",
				Value:   ".valknut.yaml",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (extends config)",
			},
			&cli.IntFlag{
				Name:  "max-files",
				Usage: "Stop discovery after this many files (0 = unlimited)",
			},
			&cli.Float64Flag{
				Name:  "confidence-threshold",
				Usage: "Minimum confidence for a candidate to be reported",
			},
			&cli.BoolFlag{
				Name:  "no-lsh",
				Usage: "Disable clone detection",
			},
			&cli.BoolFlag{
				Name:  "no-structure",
				Usage: "Disable directory/file structure analysis",
			},
			&cli.BoolFlag{
				Name:  "coverage",
				Usage: "Enable coverage-report integration",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Emit the full AnalysisResults as JSON instead of a text summary",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write stage-by-stage debug tracing to stderr",
			},
		},
		Action: analyzeCommand,
		Commands: []*cli.Command{
			{
				Name:   "version",
				Usage:  "Print the valknut version",
				Action: func(c *cli.Context) error { fmt.Println(version.FullInfo()); return nil },
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "valknut: %v\n", err)
		os.Exit(1)
	}
}

func analyzeCommand(c *cli.Context) error {
	roots := c.Args().Slice()
	if len(roots) == 0 {
		roots = []string{"."}
	}

	if c.Bool("debug") {
		debug.EnableDebug = "true"
		debug.SetDebugOutput(os.Stderr)
	}

	cfg, err := vkconfig.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.Project.Roots = roots
	debug.Log("CLI", "loaded config, roots=%v include=%v exclude=%v", roots, cfg.Analysis.IncludePatterns, cfg.Analysis.ExcludePatterns)

	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Analysis.IncludePatterns = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Analysis.ExcludePatterns = append(cfg.Analysis.ExcludePatterns, excludes...)
	}
	if c.IsSet("max-files") {
		cfg.Analysis.MaxFiles = c.Int("max-files")
	}
	if c.IsSet("confidence-threshold") {
		cfg.Analysis.ConfidenceThreshold = c.Float64("confidence-threshold")
	}
	if c.Bool("no-lsh") {
		cfg.Analysis.EnableLSH = false
	}
	if c.Bool("no-structure") {
		cfg.Analysis.EnableStructure = false
	}
	if c.Bool("coverage") {
		cfg.Analysis.EnableCoverage = true
	}

	orch, err := pipeline.New(*cfg)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	res, err := orch.Run(ctx)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printSummary(res)
	return nil
}

func printSummary(res *results.AnalysisResults) {
	s := res.Summary
	fmt.Printf("Valknut analysis\n")
	fmt.Printf("=================\n\n")
	fmt.Printf("Files processed:    %d\n", s.FilesProcessed)
	fmt.Printf("Entities analyzed:  %d\n", s.EntitiesAnalyzed)
	fmt.Printf("Total LOC:          %d\n", s.TotalLOC)
	fmt.Printf("Languages:          %v\n\n", s.Languages)

	fmt.Printf("Refactoring needed: %d (%d high priority, %d critical)\n", s.RefactoringNeeded, s.HighPriority, s.Critical)
	fmt.Printf("Avg score:          %.3f\n", s.AvgRefactoringScore)
	fmt.Printf("Code health:        %.3f (summary: %.3f)\n\n", s.CodeHealthScore, s.SummaryCodeHealth)

	if hotspots := res.Hotspots; len(hotspots) > 0 {
		fmt.Printf("Top hotspots:\n")
		limit := 10
		if len(hotspots) < limit {
			limit = len(hotspots)
		}
		for _, h := range hotspots[:limit] {
			fmt.Printf("  %-40s health=%.3f %s\n", h.Path, h.HealthScore, h.Recommendation)
		}
		fmt.Println()
	}

	if len(res.ReorgProposals) > 0 {
		fmt.Printf("Reorg proposals:    %d directories\n", len(res.ReorgProposals))
	}
	if len(res.FileSplitCandidates) > 0 {
		fmt.Printf("File split candidates: %d files\n", len(res.FileSplitCandidates))
	}
	if len(res.ImportCycles) > 0 {
		fmt.Printf("Import cycles:      %d\n", len(res.ImportCycles))
	}
	if res.CloneReport != nil {
		fmt.Printf("Clone pairs:        %d\n", len(res.CloneReport.Pairs))
	}
	if len(res.Warnings) > 0 {
		fmt.Printf("Warnings:           %d\n", len(res.Warnings))
	}
	fmt.Printf("\nDuration: %s\n", res.Statistics.TotalDuration)
}
