package extract

import "github.com/valknut-go/valknut/internal/entity"

// GraphExtractor computes centrality proxies (fan-in, fan-out, in/out
// degree divided by the call graph's node count minus one) and a
// cycle-membership flag (§4.2).
// It requires a populated entity.CallGraph in the ExtractionContext;
// without one it emits the declared defaults.
type GraphExtractor struct{}

func NewGraphExtractor() *GraphExtractor { return &GraphExtractor{} }

func (g *GraphExtractor) Name() string { return "graph" }

func (g *GraphExtractor) Features() []entity.FeatureDefinition {
	return []entity.FeatureDefinition{
		{Name: "fan_in", Description: "distinct callers", MinValue: 0, MaxValue: 1e5, Default: 0},
		{Name: "fan_out", Description: "distinct callees", MinValue: 0, MaxValue: 1e5, Default: 0},
		{Name: "in_degree_normalized", Description: "fan_in / (graph node count - 1)", MinValue: 0, MaxValue: 1, Default: 0},
		{Name: "out_degree_normalized", Description: "fan_out / (graph node count - 1)", MinValue: 0, MaxValue: 1, Default: 0},
		{Name: "cycle_membership", Description: "1.0 if entity participates in a call cycle", MinValue: 0, MaxValue: 1, Default: 0},
	}
}

func (g *GraphExtractor) SupportsKind(k entity.Kind) bool {
	return k == entity.KindFunction || k == entity.KindMethod
}

func (g *GraphExtractor) Extract(ctx *entity.ExtractionContext, e *entity.CodeEntity) (map[string]float64, error) {
	if ctx.Graph == nil {
		return map[string]float64{}, nil
	}
	fanIn := ctx.Graph.InDegree(e.ID)
	fanOut := ctx.Graph.OutDegree(e.ID)
	n := ctx.Graph.NodeCount()
	norm := func(v int) float64 {
		if n <= 1 {
			return 0
		}
		return float64(v) / float64(n-1)
	}
	cycle := 0.0
	if ctx.Graph.InCycle(e.ID) {
		cycle = 1.0
	}
	return map[string]float64{
		"fan_in":                 float64(fanIn),
		"fan_out":                float64(fanOut),
		"in_degree_normalized":   norm(fanIn),
		"out_degree_normalized":  norm(fanOut),
		"cycle_membership":       cycle,
	}, nil
}
