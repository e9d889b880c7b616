package extract

import (
	"fmt"

	"github.com/valknut-go/valknut/internal/entity"
	"github.com/valknut-go/valknut/internal/vkerrors"
)

// Registry holds the enabled extractor families, applied to every entity
// in a ParseIndex in parallel across entities (§5).
type Registry struct {
	extractors []entity.Extractor
}

func NewRegistry(enabled ...entity.Extractor) *Registry {
	return &Registry{extractors: enabled}
}

// DefaultRegistry wires every extractor family named in §4.2 except LSH's
// clone_mass family, which the pipeline merges in separately because it
// needs the whole entity population rather than one entity at a time.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewComplexityExtractor(),
		NewStructureExtractor(),
		NewGraphExtractor(),
		NewCoverageExtractor(),
	)
}

// Run applies every registered extractor that supports e.Kind, merging
// their outputs into one raw FeatureVector. An extractor error is
// entity-local and non-fatal: the caller records a Warning and the
// declared defaults stand in for that extractor's features (§4.2 failure
// semantics).
func (r *Registry) Run(ctx *entity.ExtractionContext, e *entity.CodeEntity) (*entity.FeatureVector, []vkerrors.Warning) {
	fv := entity.NewFeatureVector(e.ID)
	var warnings []vkerrors.Warning
	for _, ex := range r.extractors {
		if !ex.SupportsKind(e.Kind) {
			continue
		}
		values, err := ex.Extract(ctx, e)
		if err != nil {
			werr := vkerrors.New(vkerrors.KindExtraction, fmt.Sprintf("extract_%s", ex.Name()), err).WithEntity(e.ID)
			warnings = append(warnings, vkerrors.AsWarning(werr))
			values = map[string]float64{}
		}
		defaulted := entity.ApplyDefaults(values, ex.Features())
		for k, v := range defaulted {
			fv.Raw[k] = v
		}
	}
	return fv, warnings
}

// AllDefinitions returns the union of feature schemas across every
// registered extractor, used to compute normalised-feature coverage for
// confidence (§4.5.3).
func (r *Registry) AllDefinitions() []entity.FeatureDefinition {
	var defs []entity.FeatureDefinition
	for _, ex := range r.extractors {
		defs = append(defs, ex.Features()...)
	}
	return defs
}
