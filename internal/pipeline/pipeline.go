// Package pipeline wires the analysis stages of §4.6 into the single
// orchestrated run that produces an results.AnalysisResults: discovery,
// parsing, feature extraction, clone detection, structure analysis,
// normalisation, scoring, health-tree construction, and final assembly.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/valknut-go/valknut/internal/cache"
	"github.com/valknut-go/valknut/internal/coverage"
	"github.com/valknut-go/valknut/internal/debug"
	"github.com/valknut-go/valknut/internal/entity"
	"github.com/valknut-go/valknut/internal/entity/extract"
	"github.com/valknut-go/valknut/internal/lang"
	"github.com/valknut-go/valknut/internal/lsh"
	"github.com/valknut-go/valknut/internal/results"
	"github.com/valknut-go/valknut/internal/vkconfig"
	"github.com/valknut-go/valknut/internal/vkerrors"
	"github.com/valknut-go/valknut/internal/vkutil"
)

// Metrics is an optional, feature-flagged set of Prometheus counters
// (§6 "performance.*" ambient observability, off by default — callers
// construct one explicitly and pass it to Run only when they want a
// /metrics endpoint wired up).
type Metrics struct {
	FilesProcessed   prometheus.Counter
	EntitiesAnalyzed prometheus.Counter
	Warnings         prometheus.Counter
}

// NewMetrics registers the pipeline's counters against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FilesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "valknut_files_processed_total", Help: "Files successfully parsed.",
		}),
		EntitiesAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "valknut_entities_analyzed_total", Help: "Entities scored.",
		}),
		Warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "valknut_warnings_total", Help: "Non-fatal warnings recorded.",
		}),
	}
	reg.MustRegister(m.FilesProcessed, m.EntitiesAnalyzed, m.Warnings)
	return m
}

// Orchestrator runs one analysis pass over a configured set of project
// roots. It owns the language registry, extractor registry, and memory
// pools for its whole lifetime; callers construct one per run (§9: pools
// are per-pipeline-instance, never global).
type Orchestrator struct {
	Config       vkconfig.Config
	Registry     *lang.Registry
	Pools        *vkutil.Pools
	Metrics      *Metrics
	FeatureCache *cache.MetricsCache
}

// New builds an Orchestrator with a fresh language registry, memory pools,
// and a feature-vector memoization cache (keyed by entity source bytes, so
// re-analysing an unchanged tree or a tree full of near-duplicates skips
// redundant extractor work). Metrics is left nil (disabled) unless the
// caller sets it.
func New(cfg vkconfig.Config) (*Orchestrator, error) {
	registry, err := lang.NewRegistry()
	if err != nil {
		return nil, err
	}
	cacheCfg := cache.DefaultCacheConfig()
	cacheCfg.AutoCleanup = false // one Orchestrator lives for a single bounded Run; nothing to clean up between calls
	return &Orchestrator{
		Config:       cfg,
		Registry:     registry,
		Pools:        vkutil.NewPools(),
		FeatureCache: cache.NewMetricsCache(cacheCfg),
	}, nil
}

// Run executes the full nine-stage pipeline over o.Config.Project.Roots
// and returns the validated results.AnalysisResults (§4.6, §3).
func (o *Orchestrator) Run(ctx context.Context) (*results.AnalysisResults, error) {
	start := time.Now()

	if o.Config.Performance.TotalTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(o.Config.Performance.TotalTimeoutSeconds)*time.Second)
		defer cancel()
	}

	var warnings []vkerrors.Warning

	// Stage 1: discovery.
	discovered, err := Discover(o.Config, o.Registry)
	if err != nil {
		return nil, vkerrors.New(vkerrors.KindIO, "discover_files", err)
	}
	debug.Log("PIPELINE", "stage1 discover: %d files", len(discovered))

	fileTimeout := time.Duration(o.Config.Performance.FileTimeoutSeconds) * time.Second

	// Stage 2: parse.
	parsed, parseWarnings := parseAll(ctx, discovered, o.Registry, o.Config.Performance.MaxThreads, fileTimeout)
	warnings = append(warnings, parseWarnings...)
	debug.Log("PIPELINE", "stage2 parse: %d files parsed, %d warnings", len(parsed), len(parseWarnings))
	if o.Metrics != nil {
		o.Metrics.FilesProcessed.Add(float64(len(parsed)))
	}

	index := entity.NewParseIndex()
	sources := make(map[string]string, len(parsed))
	languages := make(map[string]string, len(parsed))
	languageSet := make(map[string]bool)
	totalLOC := 0
	for _, f := range parsed {
		index.Merge(f.Index)
		sources[f.RelPath] = f.Source
		totalLOC += strings.Count(f.Source, "\n") + 1
		if adapter, ok := o.Registry.AdapterFor(f.RelPath); ok {
			languages[f.RelPath] = adapter.LanguageName()
			languageSet[adapter.LanguageName()] = true
		}
	}

	entities := sortedEntities(index)
	debug.Log("PIPELINE", "indexed %d entities across %d languages", len(entities), len(languageSet))

	// Stage 3: feature extraction.
	graph := buildCallGraph(parsed, o.Registry, index)

	var covByEntity map[string]entity.EntityCoverage
	if o.Config.Analysis.EnableCoverage {
		roots := o.Config.Project.Roots
		if disc, covErr := coverage.Discover(o.Config.Coverage, roots); covErr == nil && disc != nil {
			staleDays := coverage.StaleSinceDays(disc.SourceMTime)
			covByEntity = buildEntityCoverage(disc.Report, staleDays, entities)
		} else if covErr != nil {
			warnings = append(warnings, vkerrors.AsWarning(vkerrors.New(vkerrors.KindIO, "discover_coverage", covErr)))
		}
	}

	extractRegistry := extract.DefaultRegistry()
	vectors, extractWarnings := extractFeatures(extractRegistry, index, entities, sources, languages, graph, covByEntity, o.Config.Performance.MaxThreads, o.FeatureCache)
	warnings = append(warnings, extractWarnings...)
	debug.Log("PIPELINE", "stage3 extract: %d vectors, %d warnings", len(vectors), len(extractWarnings))

	// Stage 4: clone detection, merged into the same feature vectors.
	var cloneReport *results.CloneReport
	if o.Config.Analysis.EnableLSH {
		root := primaryRoot(o.Config.Project.Roots)
		stopMotifs := loadOrMineStopMotifs(o.Config, root, entities, sources, languages, time.Now().Unix())
		cloneFeatures, pairs := runCloneDetection(o.Config, entities, sources, o.Registry, stopMotifs)
		mergeCloneFeatures(vectors, cloneFeatures)
		if len(pairs) > 0 {
			cloneReport = &results.CloneReport{Pairs: pairs}
		}
	}

	if o.Metrics != nil {
		o.Metrics.EntitiesAnalyzed.Add(float64(len(entities)))
	}

	// Stage 5: structure analysis.
	var structOut structureOutput
	if o.Config.Analysis.EnableStructure {
		structOut = runStructureAnalysis(o.Config.Structure, parsed, index, o.Registry)
	}

	// Stage 6: normalisation.
	normalizePopulation(o.Config.Scoring, vectors)

	// Stages 7-8: scoring, candidate assembly, health tree.
	candidates, tree, hotspots, filteredByConfidence := scoreAndAssemble(o.Config, extractRegistry, vectors, index)

	// Stage 9: assemble results.
	summary := summaryFor(len(parsed), len(entities), candidates, languageSet, totalLOC)

	res := &results.AnalysisResults{
		Summary:               summary,
		RefactoringCandidates: candidates,
		DirectoryHealth:       tree,
		Hotspots:              hotspots,
		ReorgProposals:        structOut.ReorgPacks,
		FileSplitCandidates:   structOut.SplitFiles,
		ImportCycles:          structOut.ImportCycles,
		CloneReport:           cloneReport,
		Warnings:              dedupeWarnings(warnings),
		Statistics: results.Statistics{
			TotalDuration:        time.Since(start),
			PriorityDistribution: priorityDistribution(candidates),
			IssueDistribution:    issueDistribution(candidates),
			FilteredByConfidence: filteredByConfidence,
			Memory:               results.MemoryStats{HighWaterMarks: o.Pools.HighWaterMarks()},
		},
	}
	if len(parsed) > 0 {
		res.Statistics.AvgFileProcessingTime = res.Statistics.TotalDuration / time.Duration(len(parsed))
	}
	if len(entities) > 0 {
		res.Statistics.AvgEntityProcessingTime = res.Statistics.TotalDuration / time.Duration(len(entities))
	}
	if o.Metrics != nil {
		o.Metrics.Warnings.Add(float64(len(res.Warnings)))
	}

	if err := Validate(res); err != nil {
		return nil, err
	}
	return res, nil
}

func primaryRoot(roots []string) string {
	if len(roots) == 0 {
		return ""
	}
	return roots[0]
}
