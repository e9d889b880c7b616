package pipeline

import (
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/valknut-go/valknut/internal/results"
	"github.com/valknut-go/valknut/internal/vkerrors"
)

// resultsSchema is built once from the results.AnalysisResults type and
// reused across every Run call (§3's "output contract" validated before
// leaving the process).
var (
	resultsSchemaOnce sync.Once
	resultsSchema     *jsonschema.Resolved
	resultsSchemaErr  error
)

func loadResultsSchema() (*jsonschema.Resolved, error) {
	resultsSchemaOnce.Do(func() {
		schema, err := jsonschema.For[results.AnalysisResults](nil)
		if err != nil {
			resultsSchemaErr = err
			return
		}
		resultsSchema, resultsSchemaErr = schema.Resolve(nil)
	})
	return resultsSchema, resultsSchemaErr
}

// Validate checks res against the published AnalysisResults schema
// (§3). A schema mismatch here means the pipeline produced a shape its
// own output contract doesn't recognise — a programming error, not a
// transient condition — so it is always fatal, per vkerrors.KindValidation.
func Validate(res *results.AnalysisResults) error {
	schema, err := loadResultsSchema()
	if err != nil {
		return vkerrors.New(vkerrors.KindValidation, "build_results_schema", err)
	}
	if err := schema.Validate(res); err != nil {
		return vkerrors.New(vkerrors.KindValidation, "validate_results", err)
	}
	return nil
}
