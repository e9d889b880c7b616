package structure

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valknut-go/valknut/internal/vkconfig"
)

func TestGiniCoefficientUniformIsZero(t *testing.T) {
	assert.InDelta(t, 0.0, GiniCoefficient([]int{100, 100, 100, 100}), 1e-9)
}

func TestGiniCoefficientSkewed(t *testing.T) {
	g := GiniCoefficient([]int{1, 1, 1, 1000})
	assert.Greater(t, g, 0.5)
}

func TestComputeMetricsImbalance(t *testing.T) {
	cfg := vkconfig.Default().Structure.FSDir
	stats := DirectoryStats{Files: 40, Subdirs: 1, LOCs: makeRepeated(40, 100)}
	m := ComputeMetrics(stats, cfg)
	assert.Greater(t, m.Imbalance, 0.0)
	assert.True(t, NeedsReorg(m, cfg))
}

func TestComputeMetricsSmallDirectoryNotReorg(t *testing.T) {
	cfg := vkconfig.Default().Structure.FSDir
	stats := DirectoryStats{Files: 3, Subdirs: 0, LOCs: []int{50, 60, 70}}
	m := ComputeMetrics(stats, cfg)
	assert.False(t, NeedsReorg(m, cfg))
}

func makeRepeated(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestPartitionDirectorySmallGraphBipartition(t *testing.T) {
	files := []FileNode{
		{Path: "a.go", LOC: 100},
		{Path: "b.go", LOC: 100},
		{Path: "c.go", LOC: 100},
		{Path: "d.go", LOC: 100},
	}
	g := NewDependencyGraph(files)
	g.AddEdge("a.go", "b.go")
	g.AddEdge("c.go", "d.go")

	cfg := PartitionConfig{MaxClusters: 8, MinClusters: 2, BalanceTolerance: 0.5, TargetLOCPerSub: 200, NamingFallbacks: []string{"core", "utils"}}
	partitions := PartitionDirectory(g, 400, cfg)
	assert.Len(t, partitions, 2)
}

func TestGeneratePartitionNameFallsBackToToken(t *testing.T) {
	name := generatePartitionName([]string{"auth_handler.go", "auth_middleware.go"}, 0, []string{"core"})
	assert.Equal(t, "auth", name)
}

func TestGeneratePartitionNameFallsBackToConfigured(t *testing.T) {
	name := generatePartitionName([]string{"a.go", "b.go"}, 0, []string{"core", "utils"})
	assert.Equal(t, "core", name)
}

func TestDetectCohesionCommunitiesSplitsUnrelatedGroups(t *testing.T) {
	entities := []EntityIdentifiers{
		{EntityID: "e1", Identifiers: map[string]bool{"user": true, "auth": true}},
		{EntityID: "e2", Identifiers: map[string]bool{"user": true, "auth": true, "token": true}},
		{EntityID: "e3", Identifiers: map[string]bool{"render": true, "widget": true}},
		{EntityID: "e4", Identifiers: map[string]bool{"render": true, "widget": true, "layout": true}},
	}
	communities := DetectCohesionCommunities(entities, 0.3)
	assert.Len(t, communities, 2)
	assert.True(t, ShouldSplit(communities, 2))
}

func TestBuildFileSplitPackMatchesWorkedExample(t *testing.T) {
	// Mirrors the spec's worked example: a 1200-LOC file against an
	// 800-LOC huge threshold, with two disjoint 8-entity communities —
	// read_*/write_* and compute_* — sharing no identifiers.
	ioIDs := []string{"r1", "r2", "r3", "r4", "w1", "w2", "w3", "w4"}
	coreIDs := []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"}

	identifiers := make(map[string]map[string]bool)
	names := make(map[string]string)
	for i, id := range ioIDs {
		identifiers[id] = map[string]bool{fmt.Sprintf("io_tok_%d", i): true}
		if i%2 == 0 {
			names[id] = "read_record"
		} else {
			names[id] = "write_record"
		}
	}
	for i, id := range coreIDs {
		identifiers[id] = map[string]bool{fmt.Sprintf("core_tok_%d", i): true}
		names[id] = "compute_total"
	}

	communities := []CohesionCommunity{
		{EntityIDs: ioIDs},
		{EntityIDs: coreIDs},
	}

	outgoing := map[string]bool{"a.go": true, "b.go": true}
	incoming := map[string]bool{"a.go": true}

	pack := BuildFileSplitPack("big.go", communities, 2, 1200, 800, outgoing, incoming, identifiers, names)

	require.Len(t, pack.Splits, 2)
	assert.Equal(t, 16, pack.Effort.EntitiesMoved)
	assert.GreaterOrEqual(t, pack.ValueScore, 0.6)

	var sawIO, sawCore bool
	for _, s := range pack.Splits {
		switch s.Name {
		case "io":
			sawIO = true
		case "core":
			sawCore = true
		}
	}
	assert.True(t, sawIO, "expected a read_*/write_* community to be named \"io\"")
	assert.True(t, sawCore, "expected the compute_* community to fall back to \"core\"")
}

func TestBuildFileSplitPackDropsSmallCommunities(t *testing.T) {
	communities := []CohesionCommunity{
		{EntityIDs: []string{"a", "b", "c"}},
		{EntityIDs: []string{"d"}},
	}
	identifiers := map[string]map[string]bool{
		"a": {"x": true}, "b": {"x": true}, "c": {"x": true}, "d": {"y": true},
	}
	pack := BuildFileSplitPack("small.go", communities, 2, 100, 800, nil, nil, identifiers, map[string]string{})
	assert.Len(t, pack.Splits, 1)
}

func TestBuildFileSplitPackCapsAtThreeSplits(t *testing.T) {
	communities := []CohesionCommunity{
		{EntityIDs: []string{"a1", "a2"}},
		{EntityIDs: []string{"b1", "b2"}},
		{EntityIDs: []string{"c1", "c2"}},
		{EntityIDs: []string{"d1", "d2"}},
	}
	identifiers := map[string]map[string]bool{
		"a1": {"a": true}, "a2": {"a": true},
		"b1": {"b": true}, "b2": {"b": true},
		"c1": {"c": true}, "c2": {"c": true},
		"d1": {"d": true}, "d2": {"d": true},
	}
	pack := BuildFileSplitPack("huge.go", communities, 2, 2000, 800, nil, nil, identifiers, map[string]string{})
	assert.LessOrEqual(t, len(pack.Splits), maxFileSplitsPerFile)
}

func TestDetectCyclesFindsSimpleCycle(t *testing.T) {
	g := NewProjectImportGraph()
	g.AddImport("a.go", "b.go")
	g.AddImport("b.go", "a.go")

	cycles := g.DetectCycles()
	assert.NotEmpty(t, cycles)
}
