package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valknut-go/valknut/internal/entity"
)

func TestComplexityExtractorTrivialFunction(t *testing.T) {
	ex := NewComplexityExtractor()
	e := &entity.CodeEntity{
		ID:   "lib.py:function:0",
		Kind: entity.KindFunction,
		Name: "add",
		Span: entity.Span{StartLine: 1, EndLine: 2},
		Source: "def add(a, b):\n    return a + b",
	}
	ctx := &entity.ExtractionContext{Index: entity.NewParseIndex()}

	values, err := ex.Extract(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, 1.0, values["cyclomatic_complexity"])
	assert.Equal(t, 0.0, values["cognitive_complexity"])
	assert.Equal(t, 2.0, values["lines_of_code"])
}

func TestComplexityExtractorBranching(t *testing.T) {
	ex := NewComplexityExtractor()
	e := &entity.CodeEntity{
		Kind: entity.KindFunction,
		Span: entity.Span{StartLine: 1, EndLine: 6},
		Source: `func f(x int) int {
			if x > 0 {
				for x > 0 {
					x--
				}
			}
			return x
		}`,
	}
	ctx := &entity.ExtractionContext{Index: entity.NewParseIndex()}
	values, err := ex.Extract(ctx, e)
	require.NoError(t, err)
	assert.Greater(t, values["cyclomatic_complexity"], 1.0)
	assert.Greater(t, values["nesting_depth"], 0.0)
}

func TestComplexityExtractorSupportsKind(t *testing.T) {
	ex := NewComplexityExtractor()
	assert.True(t, ex.SupportsKind(entity.KindFunction))
	assert.False(t, ex.SupportsKind(entity.KindClass))
}
