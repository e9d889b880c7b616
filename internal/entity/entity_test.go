package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIndexAddAndMerge(t *testing.T) {
	idx := NewParseIndex()
	e1 := &CodeEntity{ID: NewID("a.go", KindFunction, 0), File: "a.go", Kind: KindFunction, Name: "f"}
	idx.Add(e1)

	other := NewParseIndex()
	e2 := &CodeEntity{ID: NewID("b.go", KindFunction, 0), File: "b.go", Kind: KindFunction, Name: "g"}
	other.Add(e2)

	idx.Merge(other)

	require.Len(t, idx.Entities, 2)
	assert.Equal(t, e1, idx.Get(e1.ID))
	assert.Equal(t, []*CodeEntity{e2}, idx.EntitiesInFile("b.go"))
}

func TestSpanContains(t *testing.T) {
	outer := Span{StartLine: 1, EndLine: 10, StartColumn: 0, EndColumn: 0}
	inner := Span{StartLine: 2, EndLine: 5, StartColumn: 0, EndColumn: 0}
	assert.True(t, outer.Contains(inner))
	assert.False(t, inner.Contains(outer))
	assert.False(t, outer.Contains(outer))
}

func TestNewIDStable(t *testing.T) {
	id := NewID("pkg/file.go", KindMethod, 3)
	assert.Equal(t, "pkg/file.go:method:3", id)
}
