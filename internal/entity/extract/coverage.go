package extract

import "github.com/valknut-go/valknut/internal/entity"

// CoverageExtractor surfaces percent-covered lines/branches and
// staleness-in-days from an external LCOV/Cobertura reader (§4.2). It is
// optional: a run without a coverage file simply yields defaults for
// every entity, and Coverage-category scoring degrades gracefully.
type CoverageExtractor struct{}

func NewCoverageExtractor() *CoverageExtractor { return &CoverageExtractor{} }

func (c *CoverageExtractor) Name() string { return "coverage" }

func (c *CoverageExtractor) Features() []entity.FeatureDefinition {
	return []entity.FeatureDefinition{
		{Name: "coverage_percent_lines", Description: "percent of lines covered", MinValue: 0, MaxValue: 100, Default: 0},
		{Name: "coverage_percent_branches", Description: "percent of branches covered", MinValue: 0, MaxValue: 100, Default: 0},
		{Name: "coverage_stale_days", Description: "days since coverage report predates source", MinValue: 0, MaxValue: 1e5, Default: 0},
	}
}

func (c *CoverageExtractor) SupportsKind(k entity.Kind) bool {
	return k == entity.KindFunction || k == entity.KindMethod
}

func (c *CoverageExtractor) Extract(ctx *entity.ExtractionContext, e *entity.CodeEntity) (map[string]float64, error) {
	if ctx.Coverage == nil {
		return map[string]float64{}, nil
	}
	return map[string]float64{
		"coverage_percent_lines":    ctx.Coverage.PercentLines,
		"coverage_percent_branches": ctx.Coverage.PercentBranches,
		"coverage_stale_days":       ctx.Coverage.StaleSinceDays,
	}, nil
}
