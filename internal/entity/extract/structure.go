package extract

import "github.com/valknut-go/valknut/internal/entity"

// StructureExtractor computes number-of-methods, field count, inheritance
// depth, and fan-in/fan-out proxies for class-like entities (§4.2).
type StructureExtractor struct{}

func NewStructureExtractor() *StructureExtractor { return &StructureExtractor{} }

func (s *StructureExtractor) Name() string { return "structure" }

func (s *StructureExtractor) Features() []entity.FeatureDefinition {
	return []entity.FeatureDefinition{
		{Name: "method_count", Description: "direct method children", MinValue: 0, MaxValue: 1e5, Default: 0},
		{Name: "field_count", Description: "direct field/variable children", MinValue: 0, MaxValue: 1e5, Default: 0},
		{Name: "inheritance_depth", Description: "class hierarchy depth proxy", MinValue: 0, MaxValue: 100, Default: 0},
		{Name: "fan_in_proxy", Description: "child count as incoming-structure proxy", MinValue: 0, MaxValue: 1e5, Default: 0},
		{Name: "fan_out_proxy", Description: "parent-chain length as outgoing-structure proxy", MinValue: 0, MaxValue: 1e5, Default: 0},
	}
}

func (s *StructureExtractor) SupportsKind(k entity.Kind) bool {
	return k == entity.KindClass || k == entity.KindStruct || k == entity.KindInterface || k == entity.KindModule
}

func (s *StructureExtractor) Extract(ctx *entity.ExtractionContext, e *entity.CodeEntity) (map[string]float64, error) {
	methods, fields := 0, 0
	for _, childID := range e.ChildIDs {
		child := ctx.Index.Get(childID)
		if child == nil {
			continue
		}
		switch child.Kind {
		case entity.KindMethod, entity.KindFunction:
			methods++
		case entity.KindVariable, entity.KindConstant:
			fields++
		}
	}

	depth := 0
	for cur := e; cur != nil && cur.ParentID != ""; {
		parent := ctx.Index.Get(cur.ParentID)
		if parent == nil {
			break
		}
		depth++
		cur = parent
	}

	return map[string]float64{
		"method_count":      float64(methods),
		"field_count":       float64(fields),
		"inheritance_depth": float64(depth),
		"fan_in_proxy":      float64(len(e.ChildIDs)),
		"fan_out_proxy":     float64(depth),
	}, nil
}
