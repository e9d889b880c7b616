package pipeline

import (
	"path"
	"sort"

	"github.com/valknut-go/valknut/internal/entity"
	"github.com/valknut-go/valknut/internal/entity/extract"
	"github.com/valknut-go/valknut/internal/results"
	"github.com/valknut-go/valknut/internal/scoring"
	"github.com/valknut-go/valknut/internal/vkconfig"
	"github.com/valknut-go/valknut/internal/vkerrors"
)

// normalizePopulation runs stage 6: every feature name observed anywhere
// in the population is normalised independently across every entity
// that carries it (§4.5.1), writing the result into each vector's
// Normalized map.
func normalizePopulation(cfg vkconfig.Scoring, vectors map[string]*entity.FeatureVector) {
	ids := sortedVectorIDs(vectors)
	byFeatureOrdered := make(map[string][]string)
	for _, id := range ids {
		for name := range vectors[id].Raw {
			byFeatureOrdered[name] = append(byFeatureOrdered[name], id)
		}
	}

	for name, entityIDs := range byFeatureOrdered {
		raw := make([]float64, len(entityIDs))
		for i, id := range entityIDs {
			raw[i] = vectors[id].Raw[name]
		}
		normalized := scoring.NormalizePopulation(cfg.NormalizationScheme, raw, cfg.StatisticalParams)
		for i, id := range entityIDs {
			vectors[id].Normalized[name] = normalized[i]
		}
	}
}

func sortedVectorIDs(vectors map[string]*entity.FeatureVector) []string {
	ids := make([]string, 0, len(vectors))
	for id := range vectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// scoreAndAssemble runs stages 7-8: every entity is scored, candidates
// are built for those needing refactoring, filtered by
// analysis.confidence_threshold, and sorted by priority descending then
// score descending (§4.5's determinism rule); the directory health tree
// and its hotspot list are then derived from the full candidate set.
func scoreAndAssemble(cfg vkconfig.Config, registry *extract.Registry, vectors map[string]*entity.FeatureVector, index *entity.ParseIndex) ([]scoring.Candidate, map[string]scoring.DirectoryHealth, []scoring.Hotspot, int) {
	declaredFeatures := len(registry.AllDefinitions())
	if cfg.Analysis.EnableLSH {
		declaredFeatures += 4 // clone_mass, max_similarity, avg_similarity, duplicate_count
	}

	var candidates []scoring.Candidate
	filteredByConfidence := 0

	for _, id := range sortedVectorIDs(vectors) {
		fv := vectors[id]
		e := index.Get(id)
		if e == nil {
			continue
		}
		// A feature counts as "observed" when its raw value differs from
		// zero; extractors use zero as their declared default for every
		// feature family here, so this is a fair stand-in for tracking
		// observed-vs-defaulted explicitly through Registry.Run.
		observed := 0
		for _, v := range fv.Raw {
			if v != 0 {
				observed++
			}
		}
		result := scoring.Score(id, fv.Raw, fv.Normalized, cfg.Scoring.Weights, observed, declaredFeatures)
		if !result.NeedsRefactoring() {
			continue
		}
		if result.Confidence < cfg.Analysis.ConfidenceThreshold {
			filteredByConfidence++
			continue
		}
		candidate := scoring.BuildCandidate(result, e.Name, e.File, scoring.LineRange{
			Start: e.Span.StartLine, End: e.Span.EndLine, Present: true,
		})
		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].Score > candidates[j].Score
	})

	candidatesByDir := make(map[string][]scoring.Candidate)
	for _, c := range candidates {
		dir := path.Dir(c.FilePath)
		candidatesByDir[dir] = append(candidatesByDir[dir], c)
	}

	totalEntitiesByDir := make(map[string]int)
	for _, e := range index.All() {
		totalEntitiesByDir[path.Dir(e.File)]++
	}

	childrenByDir := make(map[string][]string)
	for dir := range totalEntitiesByDir {
		parent := path.Dir(dir)
		if parent != dir {
			childrenByDir[parent] = append(childrenByDir[parent], dir)
		}
	}

	tree := scoring.BuildHealthTree(candidatesByDir, totalEntitiesByDir, childrenByDir)
	hotspots := scoring.Hotspots(tree)

	return candidates, tree, hotspots, filteredByConfidence
}

// summaryFor computes the results.Summary block (§3): counts by priority,
// both code-health formulas, and the languages observed.
func summaryFor(filesProcessed, entitiesAnalyzed int, candidates []scoring.Candidate, languages map[string]bool, totalLOC int) results.Summary {
	s := results.Summary{
		FilesProcessed:   filesProcessed,
		EntitiesAnalyzed: entitiesAnalyzed,
		TotalLOC:         totalLOC,
	}
	var scores []float64
	sumScores := 0.0
	for _, c := range candidates {
		s.RefactoringNeeded++
		if c.Priority == scoring.PriorityHigh {
			s.HighPriority++
		}
		if c.Priority == scoring.PriorityCritical {
			s.Critical++
			s.HighPriority++
		}
		scores = append(scores, c.Score)
		sumScores += c.Score
	}
	if len(candidates) > 0 {
		s.AvgRefactoringScore = sumScores / float64(len(candidates))
	}
	s.CodeHealthScore = scoring.CodeHealthScore(entitiesAnalyzed, len(candidates), s.AvgRefactoringScore)
	s.SummaryCodeHealth = scoring.SummaryCodeHealthScore(scores)

	langs := make([]string, 0, len(languages))
	for l := range languages {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	s.Languages = langs
	return s
}

func priorityDistribution(candidates []scoring.Candidate) map[string]int {
	out := make(map[string]int)
	for _, c := range candidates {
		out[c.Priority.String()]++
	}
	return out
}

func issueDistribution(candidates []scoring.Candidate) map[string]int {
	out := make(map[string]int)
	for _, c := range candidates {
		for _, issue := range c.Issues {
			out[issue.Category]++
		}
	}
	return out
}

func dedupeWarnings(warnings []vkerrors.Warning) []vkerrors.Warning {
	seen := make(map[string]bool, len(warnings))
	out := warnings[:0]
	for _, w := range warnings {
		key := string(w.Kind) + "\x00" + w.Path + "\x00" + w.EntityID + "\x00" + w.Message
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return out
}
