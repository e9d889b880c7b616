package pipeline

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/valknut-go/valknut/internal/cache"
	"github.com/valknut-go/valknut/internal/coverage"
	"github.com/valknut-go/valknut/internal/entity"
	"github.com/valknut-go/valknut/internal/entity/extract"
	"github.com/valknut-go/valknut/internal/lang"
	"github.com/valknut-go/valknut/internal/vkerrors"
)

// buildCallGraph approximates the module-scoped call graph of §4.2's
// Graph family: for each file, every call-target name extracted by the
// language adapter is resolved against the entity names declared in
// that same file. Cross-file resolution would need full symbol linking,
// out of scope here; within-file resolution is what fan-in/fan-out and
// cycle detection need.
func buildCallGraph(files []parsedFile, registry *lang.Registry, index *entity.ParseIndex) *entity.CallGraph {
	graph := entity.NewCallGraph()
	for _, f := range files {
		adapter, ok := registry.AdapterFor(f.RelPath)
		if !ok {
			continue
		}
		byName := make(map[string]string) // entity name -> id, scoped to this file
		for _, e := range index.EntitiesInFile(f.RelPath) {
			byName[e.Name] = e.ID
		}
		for _, e := range index.EntitiesInFile(f.RelPath) {
			if e.Span.StartByte < 0 || e.Span.EndByte > len(f.Source) || e.Span.StartByte >= e.Span.EndByte {
				continue
			}
			calls := adapter.ExtractFunctionCalls(f.Source[e.Span.StartByte:e.Span.EndByte])
			for _, callee := range calls {
				if calleeID, ok := byName[callee]; ok && calleeID != e.ID {
					graph.AddEdge(e.ID, calleeID)
				}
			}
		}
	}
	return graph
}

// extractFeatures runs stage 3 (§4.6): every extractor family applies to
// every supported entity, concurrently across entities, bounded by
// maxThreads. A per-extractor failure on one entity degrades to a
// Warning and the declared defaults (§4.2 failure semantics), never
// aborting the run.
//
// featureCache, when non-nil, memoizes the resulting vector by the
// entity's own source bytes plus its name: two entities with byte-identical
// bodies (a common case once LSH finds clones) produce the same feature
// vector, so the second and later occurrences skip straight to a cache hit
// instead of re-running every extractor family.
func extractFeatures(registry *extract.Registry, index *entity.ParseIndex, entities []*entity.CodeEntity, sources map[string]string, languages map[string]string, graph *entity.CallGraph, covByEntity map[string]entity.EntityCoverage, maxThreads int, featureCache *cache.MetricsCache) (map[string]*entity.FeatureVector, []vkerrors.Warning) {
	vectors := make(map[string]*entity.FeatureVector, len(entities))
	var warningsMu []vkerrors.Warning

	g := new(errgroup.Group)
	g.SetLimit(threadLimit(maxThreads))

	type out struct {
		fv   *entity.FeatureVector
		warn []vkerrors.Warning
	}
	outs := make([]out, len(entities))

	for i, e := range entities {
		i, e := i, e
		g.Go(func() error {
			src := sliceSpan(sources[e.File], e.Span)

			if featureCache != nil && src != "" {
				if cached, ok := featureCache.Get([]byte(src), 0, e.Name).(*entity.FeatureVector); ok {
					clone := cached.Clone()
					clone.EntityID = e.ID
					outs[i] = out{fv: clone}
					return nil
				}
			}

			var cov *entity.EntityCoverage
			if c, ok := covByEntity[e.ID]; ok {
				cov = &c
			}
			ctx := &entity.ExtractionContext{
				Index:    index,
				Source:   sources[e.File],
				Language: languages[e.File],
				Graph:    graph,
				Coverage: cov,
			}
			fv, warnings := registry.Run(ctx, e)
			outs[i] = out{fv: fv, warn: warnings}

			if featureCache != nil && src != "" && len(warnings) == 0 {
				featureCache.Put([]byte(src), 0, e.Name, fv)
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, e := range entities {
		vectors[e.ID] = outs[i].fv
		warningsMu = append(warningsMu, outs[i].warn...)
	}
	return vectors, warningsMu
}

// buildEntityCoverage maps a loaded coverage report onto every entity by
// file and line span (§4.2's Coverage family source data).
func buildEntityCoverage(report *coverage.Report, staleDays float64, entities []*entity.CodeEntity) map[string]entity.EntityCoverage {
	if report == nil {
		return nil
	}
	out := make(map[string]entity.EntityCoverage, len(entities))
	for _, e := range entities {
		fc, ok := report.Lookup(e.File)
		if !ok {
			continue
		}
		percent, _ := fc.LinesCoveredInRange(e.Span.StartLine, e.Span.EndLine)
		out[e.ID] = entity.EntityCoverage{
			PercentLines:    percent,
			PercentBranches: fc.PercentBranches(),
			StaleSinceDays:  staleDays,
		}
	}
	return out
}

// sortedEntities returns every entity in index sorted by (file, start
// line, name), the determinism rule §4.6 requires for candidate
// ordering and reproducible runs.
func sortedEntities(index *entity.ParseIndex) []*entity.CodeEntity {
	all := index.All()
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Span.StartLine != b.Span.StartLine {
			return a.Span.StartLine < b.Span.StartLine
		}
		return a.Name < b.Name
	})
	return all
}
