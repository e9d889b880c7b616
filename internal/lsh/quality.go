package lsh

import "strings"

// QualityGateConfig holds the structural thresholds of §4.3.7. Passes
// excludes a candidate pair from clone reporting unless both entities
// meet MinFunctionTokens and MinDistinctBlocks; AdjustedSimilarity
// applies IOMismatchPenalty. MinMatchTokens is carried but neither
// Passes nor the detector checks it.
type QualityGateConfig struct {
	MinFunctionTokens int
	MinMatchTokens    int
	MinDistinctBlocks int
	IOMismatchPenalty float64
}

// EntityProfile is the minimal shape the quality gates need from an
// entity: its token count, block count, and I/O signature (parameter
// and external-call names) used for the Jaccard mismatch penalty.
type EntityProfile struct {
	TokenCount    int
	DistinctBlocks int
	IOSignature   map[string]bool
}

// Passes reports whether a and b clear the minimum-size and
// minimum-block-count gates independently (§4.3.7: "a match between two
// trivial, single-block snippets is not a meaningful clone regardless of
// textual similarity").
func (cfg QualityGateConfig) Passes(a, b EntityProfile) bool {
	if a.TokenCount < cfg.MinFunctionTokens || b.TokenCount < cfg.MinFunctionTokens {
		return false
	}
	if a.DistinctBlocks < cfg.MinDistinctBlocks || b.DistinctBlocks < cfg.MinDistinctBlocks {
		return false
	}
	return true
}

// AdjustedSimilarity applies the I/O-signature mismatch penalty: two
// entities whose parameter/external-call signatures diverge are
// penalised proportionally to (1 - Jaccard(sigA, sigB)), discounting
// matches between functions that look similar textually but operate on
// different inputs and outputs.
func (cfg QualityGateConfig) AdjustedSimilarity(rawSimilarity float64, a, b EntityProfile) float64 {
	j := jaccard(a.IOSignature, b.IOSignature)
	penalty := cfg.IOMismatchPenalty * (1 - j)
	adjusted := rawSimilarity - penalty
	if adjusted < 0 {
		return 0
	}
	return adjusted
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

// MatchTokenCount returns the number of whitespace-separated tokens in
// matchText (0 for blank text). The detector does not call it, so
// MinMatchTokens is not enforced anywhere.
func MatchTokenCount(matchText string) int {
	if strings.TrimSpace(matchText) == "" {
		return 0
	}
	return len(strings.Fields(matchText))
}
