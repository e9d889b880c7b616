package scoring

import (
	"strings"

	"github.com/valknut-go/valknut/internal/vkconfig"
)

// Category names, assigned from a feature's name by substring convention
// (§4.5.2). "style" is also the catch-all for anything matching none of
// the more specific patterns.
const (
	CategoryComplexity  = "complexity"
	CategoryStructure   = "structure"
	CategoryGraph       = "graph"
	CategoryDuplication = "duplication"
	CategoryCoverage    = "coverage"
	CategoryStyle       = "style"
)

// CategoryFor classifies a feature name into one of the §4.5.2 categories.
// Checks run in a fixed order so a feature matching more than one pattern
// (unlikely given the naming convention, but possible) resolves
// deterministically.
func CategoryFor(featureName string) string {
	name := strings.ToLower(featureName)
	switch {
	case strings.Contains(name, "cyclomatic") || strings.Contains(name, "cognitive"):
		return CategoryComplexity
	case strings.Contains(name, "class") || strings.Contains(name, "structure"):
		return CategoryStructure
	case strings.Contains(name, "fan_") || strings.Contains(name, "centrality"):
		return CategoryGraph
	case strings.Contains(name, "clone_") || strings.Contains(name, "similarity"):
		return CategoryDuplication
	case strings.Contains(name, "coverage") || strings.Contains(name, "percent_lines") ||
		strings.Contains(name, "percent_branches") || strings.Contains(name, "stale"):
		return CategoryCoverage
	default:
		return CategoryStyle
	}
}

// CategoryWeight looks up the configured weight for a category (§4.5.3).
// vkconfig.ScoringWeights has no dedicated field for "duplication"; clone
// features are weighted as style, since both describe secondary quality
// concerns rather than core complexity/structure/graph pressure.
func CategoryWeight(weights vkconfig.ScoringWeights, category string) float64 {
	switch category {
	case CategoryComplexity:
		return weights.Complexity
	case CategoryGraph:
		return weights.Graph
	case CategoryStructure:
		return weights.Structure
	case CategoryCoverage:
		return weights.Coverage
	default: // style, duplication
		return weights.Style
	}
}

// CategoryScores groups a feature vector's normalised values by category and
// returns the mean within each category (§4.5.2).
func CategoryScores(normalized map[string]float64) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for name, value := range normalized {
		cat := CategoryFor(name)
		sums[cat] += value
		counts[cat]++
	}
	out := make(map[string]float64, len(sums))
	for cat, sum := range sums {
		out[cat] = sum / float64(counts[cat])
	}
	return out
}
