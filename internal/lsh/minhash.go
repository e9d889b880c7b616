package lsh

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Signature is an unweighted MinHash signature (§3): a fixed-length
// sequence of u64, immutable once produced, comparable only to signatures
// of identical length.
type Signature struct {
	Values      []uint64
	NumHashes   int
	ShingleSize int
}

// hashWithSeed computes hash(s, seed) via xxhash seeded by mixing seed
// into the input, matching the teacher's hash_with_seed pattern in spirit
// (a single fast non-cryptographic hash reused across LSH and stop-motif
// mining).
func hashWithSeed(s string, seed uint64) uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%d\x00%s", seed, s))
}

// ComputeSignature produces an H-slot MinHash signature over shingles
// (§4.3.3): for each shingle and each i in [0,H), take hash(s, seed=i),
// keep the minimum per slot.
func ComputeSignature(shingles []string, numHashes int) Signature {
	values := make([]uint64, numHashes)
	for i := range values {
		values[i] = ^uint64(0)
	}
	for _, s := range shingles {
		for i := 0; i < numHashes; i++ {
			h := hashWithSeed(s, uint64(i))
			if h < values[i] {
				values[i] = h
			}
		}
	}
	return Signature{Values: values, NumHashes: numHashes}
}

// Similarity is the unweighted-MinHash Jaccard estimate: the fraction of
// equal slots (§4.3.3). Returns 0 for mismatched lengths rather than
// panicking — callers should not compare signatures from different runs.
func (s Signature) Similarity(other Signature) float64 {
	if len(s.Values) != len(other.Values) || len(s.Values) == 0 {
		return 0
	}
	matches := 0
	for i := range s.Values {
		if s.Values[i] == other.Values[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(s.Values))
}

// Equal reports signature identity (P3: σ(E) == σ(E)).
func (s Signature) Equal(other Signature) bool {
	if len(s.Values) != len(other.Values) {
		return false
	}
	for i := range s.Values {
		if s.Values[i] != other.Values[i] {
			return false
		}
	}
	return true
}
