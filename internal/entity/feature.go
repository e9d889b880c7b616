package entity

// FeatureVector carries an entity's raw and normalised feature values
// (§3). Invariant: the keys of Raw and Normalized are equal once
// normalisation has run.
type FeatureVector struct {
	EntityID   string
	Raw        map[string]float64
	Normalized map[string]float64
	Metadata   map[string]any
}

func NewFeatureVector(entityID string) *FeatureVector {
	return &FeatureVector{
		EntityID:   entityID,
		Raw:        make(map[string]float64),
		Normalized: make(map[string]float64),
		Metadata:   make(map[string]any),
	}
}

// Clone returns a deep copy that keeps fv's EntityID (a caller handing it
// to a different entity sets EntityID itself). The copy's Raw/Normalized/
// Metadata maps are separate from fv's, so neither one mutates the other.
func (fv *FeatureVector) Clone() *FeatureVector {
	out := &FeatureVector{
		EntityID:   fv.EntityID,
		Raw:        make(map[string]float64, len(fv.Raw)),
		Normalized: make(map[string]float64, len(fv.Normalized)),
		Metadata:   make(map[string]any, len(fv.Metadata)),
	}
	for k, v := range fv.Raw {
		out.Raw[k] = v
	}
	for k, v := range fv.Normalized {
		out.Normalized[k] = v
	}
	for k, v := range fv.Metadata {
		out.Metadata[k] = v
	}
	return out
}

// FeatureDefinition is the static schema an extractor declares for each
// feature it produces (§4.2): name, description, valid range, default.
type FeatureDefinition struct {
	Name        string
	Description string
	MinValue    float64
	MaxValue    float64
	Default     float64
}

// Extractor is the contract every feature-extractor family implements
// (§4.2). Extractors are enabled individually via module flags and
// advertise which entity kinds they support.
type Extractor interface {
	Name() string
	Features() []FeatureDefinition
	SupportsKind(k Kind) bool
	// Extract returns a map of feature-name -> value for one entity.
	// Extractors never panic; a failure on one entity is recorded by the
	// caller as an Extraction warning and the declared default is used.
	Extract(ctx *ExtractionContext, e *CodeEntity) (map[string]float64, error)
}

// ExtractionContext carries whatever an extractor needs beyond the single
// entity: its parse index (for siblings/imports), source text, and the
// language adapter that produced it.
type ExtractionContext struct {
	Index    *ParseIndex
	Source   string
	Language string
	Graph    *CallGraph // module-scoped call graph, nil if graph analysis is disabled
	Coverage *EntityCoverage // optional coverage data for the entity being extracted, nil if none
}

// EntityCoverage is the per-entity slice of an LCOV/Cobertura coverage
// report the Coverage extractor reads (§4.2).
type EntityCoverage struct {
	PercentLines   float64
	PercentBranches float64
	StaleSinceDays  float64
}

// ApplyDefaults fills any feature names extractors declared but never
// produced for a given entity with their static default.
func ApplyDefaults(raw map[string]float64, defs []FeatureDefinition) map[string]float64 {
	out := make(map[string]float64, len(defs))
	for k, v := range raw {
		out[k] = v
	}
	for _, d := range defs {
		if _, ok := out[d.Name]; !ok {
			out[d.Name] = d.Default
		}
	}
	return out
}
