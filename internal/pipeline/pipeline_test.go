package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/valknut-go/valknut/internal/lang"
	"github.com/valknut-go/valknut/internal/vkconfig"
)

// TestMain guards the whole package against goroutine leaks: parseAll
// (parse.go) fans work out across worker goroutines per run, and a
// leaked worker here would silently accumulate across repeated
// Orchestrator.Run calls in a long-lived process.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, root, relPath, contents string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(contents), 0o644))
}

const messyFunction = `package sample

func Handle(a, b, c, d int) int {
	if a > 0 {
		if b > 0 {
			for i := 0; i < c; i++ {
				if d > 0 && a > b {
					if i%2 == 0 {
						a = a + 1
					} else if i%3 == 0 {
						a = a - 1
					} else {
						a = a * 2
					}
				}
			}
		}
	}
	return a
}
`

const tinyFunction = `package sample

func Add(a, b int) int {
	return a + b
}
`

func TestDiscoverRespectsExcludePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", tinyFunction)
	writeFile(t, root, "vendor/dep.go", tinyFunction)

	cfg := *vkconfig.Default()
	cfg.Project.Roots = []string{root}
	cfg.Analysis.ExcludePatterns = []string{"vendor/**"}

	registry, err := lang.NewRegistry()
	require.NoError(t, err)

	files, err := Discover(cfg, registry)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.go", files[0].RelPath)
}

func TestOrchestratorRunProducesCandidatesForMessyCode(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "sample/messy.go", messyFunction)
	writeFile(t, root, "sample/tiny.go", tinyFunction)

	cfg := *vkconfig.Default()
	cfg.Project.Roots = []string{root}
	cfg.Analysis.EnableCoverage = false

	orch, err := New(cfg)
	require.NoError(t, err)

	res, err := orch.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 2, res.Summary.FilesProcessed)
	assert.GreaterOrEqual(t, res.Summary.EntitiesAnalyzed, 2)
	assert.Contains(t, res.Summary.Languages, "go")

	var sawMessy bool
	for _, c := range res.RefactoringCandidates {
		if c.Name == "Handle" {
			sawMessy = true
		}
	}
	assert.True(t, sawMessy, "expected the deeply nested Handle function to surface as a refactoring candidate")
}
