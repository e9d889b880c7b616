// Package results holds the public output model of §3/§6: AnalysisResults
// and everything nested inside it, the shape emitted at the end of every
// pipeline run and the one validated against the published JSON schema
// before it leaves the process.
package results

import (
	"time"

	"github.com/valknut-go/valknut/internal/lsh"
	"github.com/valknut-go/valknut/internal/scoring"
	"github.com/valknut-go/valknut/internal/structure"
	"github.com/valknut-go/valknut/internal/vkerrors"
)

// AnalysisResults is the top-level object a pipeline run produces
// (§3, §6's output contract).
type AnalysisResults struct {
	Summary               Summary                             `json:"summary"`
	RefactoringCandidates []scoring.Candidate                  `json:"refactoring_candidates"`
	DirectoryHealth       map[string]scoring.DirectoryHealth   `json:"directory_health,omitempty"`
	Hotspots              []scoring.Hotspot                    `json:"hotspots,omitempty"`
	CloneReport           *CloneReport                         `json:"clone_report,omitempty"`
	ReorgProposals        []structure.BranchReorgPack          `json:"reorg_proposals,omitempty"`
	FileSplitCandidates   map[string]structure.FileSplitPack   `json:"file_split_candidates,omitempty"`
	ImportCycles          []structure.Cycle                    `json:"import_cycles,omitempty"`
	Statistics            Statistics                           `json:"statistics"`
	Warnings              []vkerrors.Warning                   `json:"warnings"`
}

// Summary mirrors §3's "summary block": counts, the average score, and
// both code-health formulas the Open Question decided to expose.
type Summary struct {
	FilesProcessed        int      `json:"files_processed"`
	EntitiesAnalyzed      int      `json:"entities_analyzed"`
	RefactoringNeeded     int      `json:"refactoring_needed"`
	HighPriority          int      `json:"high_priority"`
	Critical              int      `json:"critical"`
	AvgRefactoringScore   float64  `json:"avg_refactoring_score"`
	CodeHealthScore       float64  `json:"code_health_score"`
	SummaryCodeHealth     float64  `json:"summary_code_health_score"`
	TotalLOC              int      `json:"total_loc"`
	Languages             []string `json:"languages"`
}

// CloneReport is the optional clone-analysis block §3 names: every
// confirmed duplicate pair above threshold, post quality-gate.
type CloneReport struct {
	Pairs []lsh.Pair `json:"pairs"`
}

// Statistics is the detailed run statistics of §3.
type Statistics struct {
	TotalDuration           time.Duration      `json:"total_duration_ns"`
	AvgFileProcessingTime   time.Duration      `json:"avg_file_processing_time_ns"`
	AvgEntityProcessingTime time.Duration      `json:"avg_entity_processing_time_ns"`
	PriorityDistribution    map[string]int     `json:"priority_distribution"`
	IssueDistribution       map[string]int     `json:"issue_distribution"`
	FilteredByConfidence    int                `json:"filtered_by_confidence"`
	Memory                  MemoryStats        `json:"memory"`
}

// MemoryStats surfaces vkutil.Pools high-water marks (§3's "statistics
// (durations, memory, distributions)", supplemented per
// SPEC_FULL.md from original_source's peak-RSS tracking).
type MemoryStats struct {
	HighWaterMarks map[string]int64 `json:"high_water_marks"`
}

// IsHealthy mirrors the original's `is_healthy`: true when the project's
// code-health score is at or above 0.8.
func (r *AnalysisResults) IsHealthy() bool {
	return r.Summary.CodeHealthScore >= 0.8
}

// CriticalCandidates returns every candidate at Critical priority.
func (r *AnalysisResults) CriticalCandidates() []scoring.Candidate {
	var out []scoring.Candidate
	for _, c := range r.RefactoringCandidates {
		if c.Priority == scoring.PriorityCritical {
			out = append(out, c)
		}
	}
	return out
}

// HighPriorityCandidates returns every candidate at High or Critical
// priority.
func (r *AnalysisResults) HighPriorityCandidates() []scoring.Candidate {
	var out []scoring.Candidate
	for _, c := range r.RefactoringCandidates {
		if c.Priority == scoring.PriorityHigh || c.Priority == scoring.PriorityCritical {
			out = append(out, c)
		}
	}
	return out
}

// TopIssues returns the `count` most common issue categories across every
// candidate, most frequent first.
func (r *AnalysisResults) TopIssues(count int) []IssueCount {
	counts := make(map[string]int)
	for _, c := range r.RefactoringCandidates {
		for _, issue := range c.Issues {
			counts[issue.Category]++
		}
	}
	var out []IssueCount
	for cat, n := range counts {
		out = append(out, IssueCount{Category: cat, Count: n})
	}
	sortIssueCounts(out)
	if count >= 0 && count < len(out) {
		out = out[:count]
	}
	return out
}

// IssueCount pairs an issue category with how many candidates raised it.
type IssueCount struct {
	Category string
	Count    int
}

func sortIssueCounts(counts []IssueCount) {
	// Small, call-site-local slice; insertion sort keeps this dependency-free
	// and is plenty fast for the handful of categories §4.5.2 defines.
	for i := 1; i < len(counts); i++ {
		for j := i; j > 0 && counts[j].Count > counts[j-1].Count; j-- {
			counts[j], counts[j-1] = counts[j-1], counts[j]
		}
	}
}
