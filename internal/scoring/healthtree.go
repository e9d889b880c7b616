package scoring

import (
	"math"
	"sort"
)

// CategorySeverity aggregates one issue category's severity across every
// candidate in a directory (§4.5.6).
type CategorySeverity struct {
	AvgSeverity float64
	MaxSeverity float64
	Weight      float64 // impact on the directory's health score
}

// DirectoryHealth is one node of the §4.5.6 directory health tree.
type DirectoryHealth struct {
	Path             string
	TotalEntities    int
	RefactoringCount int
	RefactoringRatio float64
	AvgScore         float64
	HealthScore      float64
	CategorySeverity map[string]CategorySeverity
	Children         []string
}

// BuildHealthTree groups candidates by their parent directory and computes
// each directory's health score (§4.5.6). totalEntitiesByDir supplies the
// entity population per directory (refactoring candidates are a subset of
// it); directories with no entry there are skipped.
func BuildHealthTree(candidatesByDir map[string][]Candidate, totalEntitiesByDir map[string]int, childrenByDir map[string][]string) map[string]DirectoryHealth {
	tree := make(map[string]DirectoryHealth, len(totalEntitiesByDir))
	for dir, total := range totalEntitiesByDir {
		candidates := candidatesByDir[dir]
		tree[dir] = buildDirectoryHealth(dir, candidates, total, childrenByDir[dir])
	}
	return tree
}

func buildDirectoryHealth(dir string, candidates []Candidate, totalEntities int, children []string) DirectoryHealth {
	refactoringCount := len(candidates)
	ratio := 0.0
	if totalEntities > 0 {
		ratio = float64(refactoringCount) / float64(totalEntities)
	}

	avgScore := 0.0
	if refactoringCount > 0 {
		sum := 0.0
		for _, c := range candidates {
			sum += c.Score
		}
		avgScore = sum / float64(refactoringCount)
	}

	health := clamp01(1 - ratio - math.Min(math.Abs(avgScore)/4, 0.4))

	severityByCategory := make(map[string][]float64)
	for _, c := range candidates {
		for _, issue := range c.Issues {
			severityByCategory[issue.Category] = append(severityByCategory[issue.Category], issue.Severity)
		}
	}
	catSeverity := make(map[string]CategorySeverity, len(severityByCategory))
	for cat, severities := range severityByCategory {
		sum, max := 0.0, 0.0
		for _, s := range severities {
			sum += s
			if s > max {
				max = s
			}
		}
		avg := sum / float64(len(severities))
		catSeverity[cat] = CategorySeverity{
			AvgSeverity: avg,
			MaxSeverity: max,
			Weight:      avg * float64(len(severities)) / float64(maxInt(totalEntities, 1)),
		}
	}

	sortedChildren := append([]string(nil), children...)
	sort.Strings(sortedChildren)

	return DirectoryHealth{
		Path:             dir,
		TotalEntities:    totalEntities,
		RefactoringCount: refactoringCount,
		RefactoringRatio: ratio,
		AvgScore:         avgScore,
		HealthScore:      health,
		CategorySeverity: catSeverity,
		Children:         sortedChildren,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Hotspot is one flagged low-health directory, ranked for the §4.5.6
// hotspot list.
type Hotspot struct {
	Path             string
	HealthScore      float64
	Recommendation   string
	PrimaryCategory  string
}

// Hotspots ranks directories below 0.8x the tree's average health (capped
// at 0.6 absolute, per §4.5.6) by health ascending (worst first).
func Hotspots(tree map[string]DirectoryHealth) []Hotspot {
	if len(tree) == 0 {
		return nil
	}
	sum := 0.0
	for _, h := range tree {
		sum += h.HealthScore
	}
	avg := sum / float64(len(tree))
	cutoff := math.Min(0.8*avg, 0.6)

	var hotspots []Hotspot
	for path, h := range tree {
		if h.HealthScore >= cutoff {
			continue
		}
		primary := primaryCategory(h.CategorySeverity)
		hotspots = append(hotspots, Hotspot{
			Path:            path,
			HealthScore:     h.HealthScore,
			Recommendation:  recommendationFor(primary),
			PrimaryCategory: primary,
		})
	}

	sort.Slice(hotspots, func(i, j int) bool {
		if hotspots[i].HealthScore != hotspots[j].HealthScore {
			return hotspots[i].HealthScore < hotspots[j].HealthScore
		}
		return hotspots[i].Path < hotspots[j].Path
	})
	return hotspots
}

func primaryCategory(severities map[string]CategorySeverity) string {
	best := ""
	bestWeight := -1.0
	categories := make([]string, 0, len(severities))
	for cat := range severities {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	for _, cat := range categories {
		if w := severities[cat].Weight; w > bestWeight {
			bestWeight = w
			best = cat
		}
	}
	return best
}

func recommendationFor(category string) string {
	switch category {
	case CategoryComplexity:
		return "Break up the most complex entities in this directory before adding new functionality."
	case CategoryStructure:
		return "Revisit this directory's module boundaries; several entities show structural strain."
	case CategoryGraph:
		return "This directory is tightly coupled to the rest of the project; consider narrowing its dependencies."
	case CategoryDuplication:
		return "Significant duplication was detected here; consolidate shared logic."
	case CategoryCoverage:
		return "Test coverage in this directory is thin relative to its refactoring pressure."
	case CategoryStyle:
		return "Naming and readability issues are accumulating here."
	default:
		return "This directory's health score is below the project average; investigate its top candidates."
	}
}

// CodeHealthScore is the project-level formula of §4.5.7.
func CodeHealthScore(totalEntities, refactoringNeeded int, avgScore float64) float64 {
	if totalEntities == 0 {
		return 1.0
	}
	ratio := float64(refactoringNeeded) / float64(totalEntities)
	penalty := math.Min(math.Abs(avgScore)/2, 0.3)
	return clamp01(1 - ratio - penalty)
}

// SummaryCodeHealthScore is the alternate, UI-tree-builder code health
// formula: the plain average of the given candidates' overall scores,
// with an empty list treated as perfect health (100.0). The average is
// not rescaled, so a non-empty list yields a value on the overall-score
// scale, not 0-100. Both this and CodeHealthScore are kept per the Open
// Question decision to expose both formulas rather than pick one;
// AnalysisResults.Summary records both, and CodeHealthScore also backs
// AnalysisResults.IsHealthy.
func SummaryCodeHealthScore(candidateScores []float64) float64 {
	if len(candidateScores) == 0 {
		return 100.0
	}
	sum := 0.0
	for _, s := range candidateScores {
		sum += s
	}
	return sum / float64(len(candidateScores))
}
