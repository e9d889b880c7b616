package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeIdentifiersDistinguishesCalls(t *testing.T) {
	a := &tsAdapter{}
	calls := a.ExtractFunctionCalls("result = compute(x) + 1\nlog.Printf(\"done\")")
	assert.Contains(t, calls, "compute")
	assert.Contains(t, calls, "Printf")
}

func TestExtractIdentifiers(t *testing.T) {
	a := &tsAdapter{}
	ids := a.ExtractIdentifiers("x := add(a, b)")
	assert.Contains(t, ids, "x")
	assert.Contains(t, ids, "add")
	assert.Contains(t, ids, "a")
}

func TestCountDistinctBlocksBraces(t *testing.T) {
	a := &tsAdapter{}
	n := a.CountDistinctBlocks("func f() { if x { y() } }")
	assert.Equal(t, 2, n)
}

func TestCountDistinctBlocksIndentation(t *testing.T) {
	a := &tsAdapter{}
	n := a.CountDistinctBlocks("def f():\n    if x:\n        y()\n")
	assert.Equal(t, 2, n)
}

func TestCleanImportPath(t *testing.T) {
	assert.Equal(t, "fmt", cleanImportPath(`"fmt"`))
	assert.Equal(t, "os", cleanImportPath(`'os'`))
}
