package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valknut-go/valknut/internal/vkconfig"
)

func TestNormalizePopulationZScoreCentered(t *testing.T) {
	params := vkconfig.StatisticalParams{MinSampleSize: 10, OutlierThreshold: 3}
	out := NormalizePopulation(vkconfig.NormZScore, []float64{1, 2, 3, 4, 5}, params)
	require.Len(t, out, 5)
	assert.InDelta(t, 0.0, out[2], 1e-9) // the mean maps to z=0
}

func TestNormalizePopulationCapsOutliers(t *testing.T) {
	params := vkconfig.StatisticalParams{MinSampleSize: 10, OutlierThreshold: 2}
	values := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1000}
	out := NormalizePopulation(vkconfig.NormZScore, values, params)
	assert.LessOrEqual(t, out[len(out)-1], 2.0)
}

func TestNormalizePopulationMinMax(t *testing.T) {
	params := vkconfig.StatisticalParams{MinSampleSize: 10, OutlierThreshold: 3}
	out := NormalizePopulation(vkconfig.NormMinMax, []float64{0, 5, 10}, params)
	assert.InDelta(t, 0.0, out[0], 1e-9)
	assert.InDelta(t, 1.0, out[2], 1e-9)
	assert.InDelta(t, 0.5, out[1], 1e-9)
}

func TestNormalizePopulationBayesianShrinksSmallSamples(t *testing.T) {
	params := vkconfig.StatisticalParams{MinSampleSize: 20, OutlierThreshold: 3}
	small := NormalizePopulation(vkconfig.NormBayesianZScore, []float64{10, 10, 10}, params)
	// With n=3 << k=20, the blended mean/std lean heavily toward the 0/1
	// prior, so even a uniform population far from zero ends up with a
	// bounded, non-extreme normalised value rather than NaN or ±huge.
	for _, v := range small {
		assert.Less(t, v, 20.0)
	}
}

func TestCategoryForClassification(t *testing.T) {
	assert.Equal(t, CategoryComplexity, CategoryFor("cyclomatic_complexity"))
	assert.Equal(t, CategoryComplexity, CategoryFor("cognitive_load"))
	assert.Equal(t, CategoryStructure, CategoryFor("class_count"))
	assert.Equal(t, CategoryGraph, CategoryFor("fan_in"))
	assert.Equal(t, CategoryGraph, CategoryFor("betweenness_centrality"))
	assert.Equal(t, CategoryDuplication, CategoryFor("clone_mass"))
	assert.Equal(t, CategoryCoverage, CategoryFor("percent_lines_covered"))
	assert.Equal(t, CategoryStyle, CategoryFor("identifier_length"))
}

func TestCategoryScoresAveragesWithinCategory(t *testing.T) {
	normalized := map[string]float64{
		"cyclomatic_complexity": 2.0,
		"cognitive_load":        1.0,
		"fan_in":                0.5,
	}
	scores := CategoryScores(normalized)
	assert.InDelta(t, 1.5, scores[CategoryComplexity], 1e-9)
	assert.InDelta(t, 0.5, scores[CategoryGraph], 1e-9)
}

func TestAssignPriorityThresholds(t *testing.T) {
	assert.Equal(t, PriorityCritical, AssignPriority(2.0))
	assert.Equal(t, PriorityHigh, AssignPriority(1.5))
	assert.Equal(t, PriorityMedium, AssignPriority(1.0))
	assert.Equal(t, PriorityLow, AssignPriority(0.1))
	assert.Equal(t, PriorityNone, AssignPriority(0.0))
}

func TestScoreNeedsRefactoring(t *testing.T) {
	weights := vkconfig.ScoringWeights{Complexity: 1.0, Graph: 0.8, Structure: 0.9, Style: 0.5, Coverage: 0.7}
	raw := map[string]float64{"cyclomatic_complexity": 20}
	normalized := map[string]float64{"cyclomatic_complexity": 2.5}
	result := Score("e1", raw, normalized, weights, 1, 1)
	assert.True(t, result.NeedsRefactoring())
	assert.Equal(t, PriorityCritical, result.Priority)
	assert.InDelta(t, 1.0, result.Confidence, 1e-9)
}

func TestScoreConfidenceReflectsObservedFraction(t *testing.T) {
	weights := vkconfig.ScoringWeights{Complexity: 1.0}
	result := Score("e1", map[string]float64{}, map[string]float64{}, weights, 2, 8)
	assert.InDelta(t, 0.25, result.Confidence, 1e-9)
}

func TestBuildCandidateGeneratesIssuesAndSuggestions(t *testing.T) {
	weights := vkconfig.ScoringWeights{Complexity: 1.0, Structure: 0.9}
	raw := map[string]float64{"cyclomatic_complexity": 30, "class_coupling_structure": 10}
	normalized := map[string]float64{"cyclomatic_complexity": 2.2, "class_coupling_structure": 0.8}
	result := Score("e1", raw, normalized, weights, 2, 2)
	require.True(t, result.NeedsRefactoring())

	candidate := BuildCandidate(result, "BigFunc", "pkg/big.go", LineRange{Start: 10, End: 80, Present: true})
	require.Len(t, candidate.Issues, 2) // both complexity (2.2) and structure (0.8) cross the 0.5 threshold
	assert.Equal(t, CategoryComplexity, candidate.Issues[0].Category)
	require.NotEmpty(t, candidate.Suggestions)
	assert.Equal(t, "extract_method", candidate.Suggestions[0].RefactoringType)
}

func TestGenerateSuggestionsDedupesAndSortsByPriority(t *testing.T) {
	issues := []Issue{
		{Category: CategoryStructure, Severity: 1.0},
		{Category: CategoryComplexity, Severity: 2.5},
	}
	suggestions := generateSuggestions(issues)
	require.Len(t, suggestions, 3) // extract_method, simplify_conditionals, improve_structure
	assert.Equal(t, "extract_method", suggestions[0].RefactoringType)
	for i := 1; i < len(suggestions); i++ {
		assert.LessOrEqual(t, suggestions[i].Priority, suggestions[i-1].Priority)
	}
}

func TestCodeHealthScoreNoEntitiesIsPerfect(t *testing.T) {
	assert.Equal(t, 1.0, CodeHealthScore(0, 0, 0))
}

func TestCodeHealthScorePenalizesRefactoringRatio(t *testing.T) {
	score := CodeHealthScore(10, 5, 0.2)
	assert.InDelta(t, 0.4, score, 1e-9)
}

func TestBuildHealthTreeAndHotspots(t *testing.T) {
	badCandidates := []Candidate{
		{Score: 2.0, Issues: []Issue{{Category: CategoryComplexity, Severity: 2.0}}},
		{Score: 1.8, Issues: []Issue{{Category: CategoryComplexity, Severity: 1.8}}},
	}
	goodCandidates := []Candidate{}

	candidatesByDir := map[string][]Candidate{
		"pkg/bad":  badCandidates,
		"pkg/good": goodCandidates,
	}
	totals := map[string]int{"pkg/bad": 3, "pkg/good": 20}

	tree := BuildHealthTree(candidatesByDir, totals, nil)
	require.Contains(t, tree, "pkg/bad")
	require.Contains(t, tree, "pkg/good")
	assert.Less(t, tree["pkg/bad"].HealthScore, tree["pkg/good"].HealthScore)

	hotspots := Hotspots(tree)
	require.NotEmpty(t, hotspots)
	assert.Equal(t, "pkg/bad", hotspots[0].Path)
	assert.Equal(t, CategoryComplexity, hotspots[0].PrimaryCategory)
}
