package lsh

import (
	"fmt"
	"sort"
)

// Index is the LSH index of §3/§4.3.4: number of bands B, a per-band
// mapping band-hash -> entity ids, and entity id -> signature. Signature
// length must be divisible by B; band i covers rows [i*L, (i+1)*L) where
// L = len/B.
type Index struct {
	NumBands   int
	bands      []map[uint64][]string
	signatures map[string]Signature
}

// NewIndex builds an empty index with NumBands bands. It validates
// nothing itself; Add checks H%B==0 for every signature it inserts.
func NewIndex(numBands int) *Index {
	bands := make([]map[uint64][]string, numBands)
	for i := range bands {
		bands[i] = make(map[uint64][]string)
	}
	return &Index{NumBands: numBands, bands: bands, signatures: make(map[string]Signature)}
}

// bandRows returns the [start,end) row range band i covers for a
// signature of the given length.
func bandRows(numBands, sigLen, i int) (int, int) {
	l := sigLen / numBands
	start := i * l
	end := start + l
	if end > sigLen {
		end = sigLen
	}
	return start, end
}

func hashBand(rows []uint64) uint64 {
	h := hashWithSeed(fmt.Sprint(rows), 0)
	return h
}

// Add inserts an entity's signature into every band bucket it falls into.
// Validation (§10): len(sig) must be divisible by NumBands, else this is
// a Validation-kind error the caller should treat as fatal.
func (idx *Index) Add(entityID string, sig Signature) error {
	if len(sig.Values)%idx.NumBands != 0 {
		return fmt.Errorf("signature length %d not divisible by num_bands %d", len(sig.Values), idx.NumBands)
	}
	for i := 0; i < idx.NumBands; i++ {
		start, end := bandRows(idx.NumBands, len(sig.Values), i)
		if start >= end {
			continue
		}
		key := hashBand(sig.Values[start:end])
		idx.bands[i][key] = append(idx.bands[i][key], entityID)
	}
	idx.signatures[entityID] = sig
	return nil
}

// Signature returns the stored full signature for entityID and whether it
// exists, the accessor auto-calibration (§4.3.6) uses to score sampled
// pairs directly without requiring them to collide in the same LSH band.
func (idx *Index) Signature(entityID string) (Signature, bool) {
	sig, ok := idx.signatures[entityID]
	return sig, ok
}

// Candidates returns the union of entities sharing any band-bucket with
// entityID, each paired with the full-signature Jaccard similarity,
// sorted by similarity descending then entity id ascending (ties resolve
// by lexicographic order, per §5 ordering guarantees).
func (idx *Index) Candidates(entityID string) []Candidate {
	sig, ok := idx.signatures[entityID]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	for i := 0; i < idx.NumBands; i++ {
		start, end := bandRows(idx.NumBands, len(sig.Values), i)
		if start >= end {
			continue
		}
		key := hashBand(sig.Values[start:end])
		for _, other := range idx.bands[i][key] {
			if other != entityID {
				seen[other] = true
			}
		}
	}
	out := make([]Candidate, 0, len(seen))
	for id := range seen {
		other := idx.signatures[id]
		out = append(out, Candidate{EntityID: id, Similarity: sig.Similarity(other)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].EntityID < out[j].EntityID
	})
	return out
}

// Candidate is one LSH-retrieved neighbour plus its full-signature
// similarity.
type Candidate struct {
	EntityID   string
	Similarity float64
}

// AllPairs returns every candidate pair discovered across the whole
// index, each entity paired with its candidates above the threshold,
// deduplicated so (a,b) and (b,a) appear once, ordered deterministically.
func (idx *Index) AllPairs(threshold float64) []Pair {
	ids := make([]string, 0, len(idx.signatures))
	for id := range idx.signatures {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var pairs []Pair
	seen := make(map[[2]string]bool)
	for _, id := range ids {
		for _, cand := range idx.Candidates(id) {
			if cand.Similarity < threshold {
				continue
			}
			a, b := id, cand.EntityID
			if a > b {
				a, b = b, a
			}
			key := [2]string{a, b}
			if seen[key] {
				continue
			}
			seen[key] = true
			pairs = append(pairs, Pair{A: a, B: b, Similarity: cand.Similarity})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Similarity != pairs[j].Similarity {
			return pairs[i].Similarity > pairs[j].Similarity
		}
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

// Pair is an undirected candidate pair with its similarity.
type Pair struct {
	A, B       string
	Similarity float64
}

// CompletenessThreshold computes the similarity value s at which a true
// pair of Jaccard similarity s is found as a candidate with probability
// 1-eps under this index's (H,B) banding, per P4:
// found iff true_jaccard >= 1 - (1 - t^L)^B, where t is the per-row
// agreement probability and L = H/B.
func CompletenessThreshold(numHashes, numBands int, perRowThreshold float64) float64 {
	l := float64(numHashes / numBands)
	inner := 1 - pow(perRowThreshold, l)
	return 1 - pow(inner, float64(numBands))
}

func pow(base, exp float64) float64 {
	if exp == 0 {
		return 1
	}
	result := 1.0
	for i := 0; i < int(exp); i++ {
		result *= base
	}
	// any fractional part of exp is ignored; exp is always integral here
	return result
}
