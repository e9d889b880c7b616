package scoring

import (
	"fmt"
	"sort"
)

// Issue is one category's worth of refactoring pressure on an entity
// (§4.5.5, `RefactoringIssue`).
type Issue struct {
	Category             string
	Description           string
	Severity              float64
	ContributingFeatures []FeatureContribution
}

// Suggestion is one proposed refactoring action (§4.5.5,
// `RefactoringSuggestion`).
type Suggestion struct {
	RefactoringType string
	Description     string
	Priority        float64
	Effort          float64
	Impact          float64
}

// LineRange is an inclusive [Start, End] line span; Present is false when
// the originating feature vector carried no line-range metadata.
type LineRange struct {
	Start, End int
	Present    bool
}

// Candidate is one entity flagged as needing refactoring attention
// (§4.5.5, `RefactoringCandidate`).
type Candidate struct {
	EntityID    string
	Name        string
	FilePath    string
	LineRange   LineRange
	Priority    Priority
	Score       float64
	Confidence  float64
	Issues      []Issue
	Suggestions []Suggestion
}

// BuildCandidate assembles a Candidate from a scoring Result for an entity
// whose Result.NeedsRefactoring() is true (§4.5.5).
func BuildCandidate(result Result, name, filePath string, lineRange LineRange) Candidate {
	categories := make([]string, 0, len(result.CategoryScores))
	for cat := range result.CategoryScores {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var issues []Issue
	for _, cat := range categories {
		score := result.CategoryScores[cat]
		if score < needsRefactoringThreshold {
			continue
		}
		var contributing []FeatureContribution
		for _, fc := range result.FeatureContributions {
			if CategoryFor(fc.FeatureName) == cat {
				contributing = append(contributing, fc)
			}
		}
		issues = append(issues, Issue{
			Category:             cat,
			Description:          issueDescription(cat, score),
			Severity:             score,
			ContributingFeatures: contributing,
		})
	}

	return Candidate{
		EntityID:    result.EntityID,
		Name:        name,
		FilePath:    filePath,
		LineRange:   lineRange,
		Priority:    result.Priority,
		Score:       result.OverallScore,
		Confidence:  result.Confidence,
		Issues:      issues,
		Suggestions: generateSuggestions(issues),
	}
}

// severityBand names a severity score's band per §4.5.5's description
// templates.
func severityBand(severity float64) string {
	switch {
	case severity >= 2.0:
		return "very high"
	case severity >= 1.5:
		return "high"
	case severity >= 1.0:
		return "moderate"
	default:
		return "low"
	}
}

func issueDescription(category string, severity float64) string {
	band := severityBand(severity)
	switch category {
	case CategoryComplexity:
		return fmt.Sprintf("This entity has %s complexity that may make it difficult to understand and maintain", band)
	case CategoryStructure:
		return fmt.Sprintf("This entity has %s structural issues that may indicate design problems", band)
	case CategoryGraph:
		return fmt.Sprintf("This entity has %s coupling or dependency issues", band)
	case CategoryDuplication:
		return fmt.Sprintf("This entity has %s duplication with other code in the project", band)
	case CategoryCoverage:
		return fmt.Sprintf("This entity has %s test-coverage gaps", band)
	default:
		return fmt.Sprintf("This entity has %s issues in the %s category", band, category)
	}
}

// generateSuggestions implements the §4.5.5 rule table, then sorts by
// priority descending and deduplicates by (refactoring_type, description).
func generateSuggestions(issues []Issue) []Suggestion {
	var suggestions []Suggestion
	for _, issue := range issues {
		switch issue.Category {
		case CategoryComplexity:
			if issue.Severity >= 2.0 {
				suggestions = append(suggestions, Suggestion{
					RefactoringType: "extract_method",
					Description:     "Consider breaking this large method into smaller, more focused methods",
					Priority:        0.9, Effort: 0.6, Impact: 0.8,
				})
			}
			if issue.Severity >= 1.5 {
				suggestions = append(suggestions, Suggestion{
					RefactoringType: "simplify_conditionals",
					Description:     "Simplify complex conditional logic",
					Priority:        0.7, Effort: 0.4, Impact: 0.6,
				})
			}
		case CategoryStructure:
			suggestions = append(suggestions, Suggestion{
				RefactoringType: "improve_structure",
				Description:     "Improve the structural organization of this code",
				Priority:        0.6, Effort: 0.7, Impact: 0.7,
			})
		case CategoryGraph:
			suggestions = append(suggestions, Suggestion{
				RefactoringType: "reduce_coupling",
				Description:     "Reduce coupling to other modules by narrowing this entity's dependencies",
				Priority:        0.65, Effort: 0.5, Impact: 0.6,
			})
		case CategoryDuplication:
			suggestions = append(suggestions, Suggestion{
				RefactoringType: "extract_shared_code",
				Description:     "Extract the duplicated logic into a shared helper",
				Priority:        0.75, Effort: 0.5, Impact: 0.7,
			})
		case CategoryCoverage:
			suggestions = append(suggestions, Suggestion{
				RefactoringType: "add_tests",
				Description:     "Add tests to cover this entity's untested paths",
				Priority:        0.6, Effort: 0.4, Impact: 0.5,
			})
		case CategoryStyle:
			suggestions = append(suggestions, Suggestion{
				RefactoringType: "improve_readability",
				Description:     "Improve naming and readability to ease maintenance",
				Priority:        0.5, Effort: 0.3, Impact: 0.4,
			})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Priority > suggestions[j].Priority
	})

	seen := make(map[string]bool)
	out := suggestions[:0]
	for _, s := range suggestions {
		key := s.RefactoringType + "\x00" + s.Description
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
