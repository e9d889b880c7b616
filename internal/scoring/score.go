package scoring

import (
	"sort"

	"github.com/valknut-go/valknut/internal/vkconfig"
)

// Priority is the discretised refactoring urgency of §4.5.4.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "Critical"
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return "None"
	}
}

// AssignPriority discretises an overall score into a Priority per §4.5.4.
// Thresholds are inclusive at their lower bound ("ties resolve upward").
func AssignPriority(score float64) Priority {
	switch {
	case score >= 2.0:
		return PriorityCritical
	case score >= 1.5:
		return PriorityHigh
	case score >= 1.0:
		return PriorityMedium
	case score > 0:
		return PriorityLow
	default:
		return PriorityNone
	}
}

// needsRefactoringThreshold is the per-category score at or above which an
// entity is considered in need of refactoring for that category (§4.5.5).
const needsRefactoringThreshold = 0.5

// FeatureContribution attributes a slice of the overall score to one
// feature (§4.5.5, `RefactoringIssue.contributing_features`).
type FeatureContribution struct {
	FeatureName     string
	Value           float64
	NormalizedValue float64
	Contribution    float64
}

// Result is one entity's scoring outcome (§4.5.3-4.5.4).
type Result struct {
	EntityID             string
	CategoryScores       map[string]float64
	OverallScore         float64
	Confidence           float64
	Priority             Priority
	FeatureContributions []FeatureContribution
}

// NeedsRefactoring reports whether any category crossed the §4.5.5
// refactoring threshold.
func (r Result) NeedsRefactoring() bool {
	for _, score := range r.CategoryScores {
		if score >= needsRefactoringThreshold {
			return true
		}
	}
	return false
}

// Score computes the overall scoring result for one entity's feature vector
// (§4.5.2-4.5.3). observedFeatures/declaredFeatures drive confidence: the
// fraction of the feature schema this entity actually produced values for,
// rather than receiving the extractor's static default.
func Score(entityID string, raw, normalized map[string]float64, weights vkconfig.ScoringWeights, observedFeatures, declaredFeatures int) Result {
	categoryScores := CategoryScores(normalized)

	// §4.5.3: the overall score is the weighted sum of category scores,
	// not a weighted average — categories a feature vector never touches
	// simply contribute zero rather than diluting the others.
	overall := 0.0
	for cat, score := range categoryScores {
		overall += CategoryWeight(weights, cat) * score
	}

	confidence := 1.0
	if declaredFeatures > 0 {
		confidence = float64(observedFeatures) / float64(declaredFeatures)
		if confidence > 1 {
			confidence = 1
		}
	}

	contributions := featureContributions(raw, normalized, categoryScores, weights)

	return Result{
		EntityID:             entityID,
		CategoryScores:       categoryScores,
		OverallScore:         overall,
		Confidence:           confidence,
		Priority:             AssignPriority(overall),
		FeatureContributions: contributions,
	}
}

// featureContributions splits each category's weighted contribution to the
// overall score evenly across the normalised features that fed it.
func featureContributions(raw, normalized, categoryScores map[string]float64, weights vkconfig.ScoringWeights) []FeatureContribution {
	catCounts := make(map[string]int)
	for name := range normalized {
		catCounts[CategoryFor(name)]++
	}

	names := make([]string, 0, len(normalized))
	for name := range normalized {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]FeatureContribution, 0, len(names))
	for _, name := range names {
		cat := CategoryFor(name)
		w := CategoryWeight(weights, cat)
		count := catCounts[cat]
		contribution := 0.0
		if count > 0 {
			contribution = w * normalized[name] / float64(count)
		}
		out = append(out, FeatureContribution{
			FeatureName:     name,
			Value:           raw[name],
			NormalizedValue: normalized[name],
			Contribution:    contribution,
		})
	}
	return out
}
