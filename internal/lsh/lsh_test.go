package lsh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStability(t *testing.T) {
	a := "def f(x):\n    return x  // comment\n"
	b := "def f(x):\n\n    return x\n"
	assert.Equal(t, Normalize(a), Normalize(b))
}

func TestShinglesShortStream(t *testing.T) {
	assert.Nil(t, Shingles([]string{"a", "b"}, 3))
}

func TestSignatureSelfSimilarity(t *testing.T) {
	shingles := Shingles(Tokens("the quick brown fox jumps over the lazy dog"), 3)
	sig := ComputeSignature(shingles, 32)
	assert.Equal(t, 1.0, sig.Similarity(sig))
	assert.True(t, sig.Equal(sig))
}

func TestSignatureMonotonicity(t *testing.T) {
	base := Tokens("alpha beta gamma delta epsilon zeta eta theta")
	near := Tokens("alpha beta gamma delta epsilon zeta eta iota")
	far := Tokens("one two three four five six seven eight")

	sigBase := ComputeSignature(Shingles(base, 3), 64)
	sigNear := ComputeSignature(Shingles(near, 3), 64)
	sigFar := ComputeSignature(Shingles(far, 3), 64)

	assert.GreaterOrEqual(t, sigBase.Similarity(sigNear), sigBase.Similarity(sigFar))
}

func TestIndexAddRejectsIndivisibleBands(t *testing.T) {
	idx := NewIndex(7)
	sig := Signature{Values: make([]uint64, 10)}
	err := idx.Add("e1", sig)
	require.Error(t, err)
}

func TestIndexCandidatesFindsExactDuplicate(t *testing.T) {
	idx := NewIndex(8)
	shingles := Shingles(Tokens("alpha beta gamma delta epsilon zeta eta theta iota"), 3)
	sig := ComputeSignature(shingles, 32)

	require.NoError(t, idx.Add("a", sig))
	require.NoError(t, idx.Add("b", sig))

	cands := idx.Candidates("a")
	require.Len(t, cands, 1)
	assert.Equal(t, "b", cands[0].EntityID)
	assert.Equal(t, 1.0, cands[0].Similarity)
}

func TestCorpusIDFPenalizesCommonShingles(t *testing.T) {
	c := NewCorpus()
	c.Add(map[string]bool{"if err != nil": true, "rare unique shingle": true})
	c.Add(map[string]bool{"if err != nil": true})
	c.Add(map[string]bool{"if err != nil": true})

	assert.Less(t, c.IDF("if err != nil"), c.IDF("rare unique shingle"))
}

func TestCalibrateConverges(t *testing.T) {
	quality := func(threshold float64) float64 {
		// Quality falls linearly as the threshold rises and crosses
		// the 0.4 target at threshold 0.6.
		return 1 - threshold
	}
	result := Calibrate(0, 1, 0.4, 50, 0.01, quality)
	assert.InDelta(t, 0.6, result.Threshold, 0.05)
}

func TestQualityGatePassesRejectsTrivialEntities(t *testing.T) {
	gate := QualityGateConfig{MinFunctionTokens: 40, MinMatchTokens: 24, MinDistinctBlocks: 2}
	small := EntityProfile{TokenCount: 5, DistinctBlocks: 1}
	big := EntityProfile{TokenCount: 100, DistinctBlocks: 3}
	assert.False(t, gate.Passes(small, big))
	assert.True(t, gate.Passes(big, big))
}

func TestStopMotifCacheStaleness(t *testing.T) {
	counts := NewMotifCounts()
	for i := 0; i < 100; i++ {
		counts.Observe(MotifTokenKGram, "common shingle", "go")
	}
	counts.Observe(MotifTokenKGram, "rare shingle", "go")

	c := NewStopMotifCache("sig-1", 1000, counts, 0.5)
	assert.True(t, c.Contains(MotifTokenKGram, "common shingle"))

	assert.False(t, c.Stale("sig-1", 1000+3600, 7))
	assert.True(t, c.Stale("sig-2", 1000+3600, 7))
	assert.True(t, c.Stale("sig-1", 1000+8*86400, 7))
}

func TestDetectorFindsDuplicatePair(t *testing.T) {
	src := "func handle(req Request) Response {\n\tif req.Valid() {\n\t\treturn process(req)\n\t}\n\treturn Response{}\n}"
	docs := []Document{
		{EntityID: "a", Source: src, Profile: EntityProfile{TokenCount: 40, DistinctBlocks: 2}},
		{EntityID: "b", Source: src, Profile: EntityProfile{TokenCount: 40, DistinctBlocks: 2}},
		{EntityID: "c", Source: "func unrelated() int { return 42 }", Profile: EntityProfile{TokenCount: 40, DistinctBlocks: 2}},
	}
	cfg := DetectorConfig{
		NumHashes:   32,
		NumBands:    8,
		ShingleSize: 3,
		Threshold:   0.5,
		Gates:       QualityGateConfig{MinFunctionTokens: 1, MinDistinctBlocks: 1},
	}
	det := NewDetector(cfg, docs)
	features := det.Features()

	assert.Greater(t, features["a"].DuplicateCount, 0)
	assert.Equal(t, features["a"].MaxSimilarity, features["b"].MaxSimilarity)
}

func TestCloneMassIsMaxNotSum(t *testing.T) {
	// Three identical entities: "a" matches two duplicates at similarity
	// 1.0. A sum-based clone_mass would report ~2.0; §4.3.9 defines
	// clone_mass as the *maximum* adjusted similarity among matches, so it
	// must stay within [0,1] and equal max_similarity exactly.
	src := "func handle(req Request) Response {\n\tif req.Valid() {\n\t\treturn process(req)\n\t}\n\treturn Response{}\n}"
	docs := []Document{
		{EntityID: "a", Source: src, Profile: EntityProfile{TokenCount: 40, DistinctBlocks: 2}},
		{EntityID: "b", Source: src, Profile: EntityProfile{TokenCount: 40, DistinctBlocks: 2}},
		{EntityID: "c", Source: src, Profile: EntityProfile{TokenCount: 40, DistinctBlocks: 2}},
	}
	cfg := DetectorConfig{
		NumHashes:   32,
		NumBands:    8,
		ShingleSize: 3,
		Threshold:   0.5,
		Gates:       QualityGateConfig{MinFunctionTokens: 1, MinDistinctBlocks: 1},
	}
	det := NewDetector(cfg, docs)
	features := det.Features()

	assert.Equal(t, 2, features["a"].DuplicateCount)
	assert.LessOrEqual(t, features["a"].CloneMass, 1.0)
	assert.Equal(t, features["a"].MaxSimilarity, features["a"].CloneMass)
}

func TestDuplicateCountUsesFixedCutoffNotThreshold(t *testing.T) {
	// Detector threshold is low (0.1) so a weak match still counts as a
	// "pair", but clone_mass/duplicate_count apply the fixed 0.8 cutoff
	// regardless of the configured detection threshold.
	src := "func handle(req Request) Response {\n\tif req.Valid() {\n\t\treturn process(req)\n\t}\n\treturn Response{}\n}"
	unrelated := "func unrelated() int { return 42 }"
	docs := []Document{
		{EntityID: "a", Source: src, Profile: EntityProfile{TokenCount: 40, DistinctBlocks: 2}},
		{EntityID: "b", Source: unrelated, Profile: EntityProfile{TokenCount: 40, DistinctBlocks: 2}},
	}
	cfg := DetectorConfig{
		NumHashes:   32,
		NumBands:    8,
		ShingleSize: 3,
		Threshold:   0.1,
		Gates:       QualityGateConfig{MinFunctionTokens: 1, MinDistinctBlocks: 1},
	}
	det := NewDetector(cfg, docs)
	features := det.Features()

	if features["a"].MaxSimilarity < cloneMassCutoff {
		assert.Equal(t, 0, features["a"].DuplicateCount)
		assert.Equal(t, 0.0, features["a"].CloneMass)
	}
}
