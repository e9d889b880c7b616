package lsh

import "sort"

// DetectorConfig bundles the knobs the detector needs to run end to end:
// the MinHash/LSH parameters, the quality gates, and the stop-motif
// cache whose multipliers down-weight boilerplate shingles before
// signatures are built.
type DetectorConfig struct {
	NumHashes   int
	NumBands    int
	ShingleSize int
	Threshold   float64
	Gates       QualityGateConfig
	StopMotifs  *StopMotifCache
}

// Document is one entity's source plus the profile the quality gates
// need, the detector's unit of work.
type Document struct {
	EntityID string
	Source   string
	Profile  EntityProfile
}

// CloneFeatures are the per-entity outputs of the detector (§4.3.9):
// clone_mass (the maximum adjusted similarity among matched duplicates,
// zero unless that maximum clears the clone cutoff), max/avg similarity
// among matches, and the duplicate count at that same fixed cutoff.
type CloneFeatures struct {
	CloneMass      float64
	MaxSimilarity  float64
	AvgSimilarity  float64
	DuplicateCount int
}

// cloneMassCutoff is the fixed adjusted-similarity bar §4.3.9 defines for
// clone_mass and duplicate_count, independent of the detector's own
// (typically lower, recall-oriented) candidate threshold.
const cloneMassCutoff = 0.8

// Detector runs normalisation -> shingling -> stop-motif down-weighting ->
// MinHash -> LSH banding -> quality gating -> per-entity feature
// aggregation, the full pipeline of §4.3.
type Detector struct {
	cfg     DetectorConfig
	corpus  *Corpus
	idx     *Index
	profile map[string]EntityProfile
}

// NewDetector builds a detector, pre-scanning all documents to build the
// IDF corpus (weighted shingling needs global document frequencies
// before any single signature can be computed).
func NewDetector(cfg DetectorConfig, docs []Document) *Detector {
	corpus := NewCorpus()
	profiles := make(map[string]EntityProfile, len(docs))
	shingleCache := make(map[string][]string, len(docs))

	for _, d := range docs {
		tokens := Tokens(Normalize(d.Source))
		shingles := Shingles(tokens, cfg.ShingleSize)
		shingleCache[d.EntityID] = shingles
		corpus.Add(UniqueSet(shingles))
		profiles[d.EntityID] = d.Profile
	}

	idx := NewIndex(cfg.NumBands)
	for _, d := range docs {
		shingles := shingleCache[d.EntityID]
		weighted := corpus.WeightedShingles(shingles)
		cfg.StopMotifs.ApplyWeights(weighted, MotifTokenKGram)
		wsig := ComputeWeightedSignature(weighted, cfg.NumHashes)
		sig := weightedToUnweighted(wsig)
		_ = idx.Add(d.EntityID, sig)
	}

	return &Detector{cfg: cfg, corpus: corpus, idx: idx, profile: profiles}
}

// weightedToUnweighted rounds a weighted signature's real-valued minima
// into the fixed-precision uint64 domain the banding Index operates
// over, preserving relative order (and hence banding collisions) while
// letting the detector reuse one Index implementation for both the
// unweighted and weighted signature paths.
func weightedToUnweighted(w WeightedSignature) Signature {
	values := make([]uint64, len(w.Values))
	for i, v := range w.Values {
		values[i] = floatBits(v)
	}
	return Signature{Values: values, NumHashes: w.NumHashes}
}

func floatBits(v float64) uint64 {
	// Monotonic-order-preserving transform: scale to a fixed-point
	// integer domain so nearly-equal floats still collide in the same
	// LSH band, which is all banding needs (exact equality is irrelevant
	// once shingles are weighted).
	scaled := v * 1e6
	if scaled < 0 {
		return 0
	}
	return uint64(scaled)
}

// SetThreshold overrides the detector's similarity threshold after
// construction, the hook auto-calibration (§4.3.6) uses to apply a
// calibrated value without rebuilding the MinHash/LSH index.
func (d *Detector) SetThreshold(threshold float64) {
	d.cfg.Threshold = threshold
}

// SampleQuality reports, for a fixed sample of entity-id pairs, the
// fraction that would be accepted as duplicates (quality gates pass and
// adjusted similarity meets threshold) at the given threshold. This is
// the QualityFunc auto-calibration (§4.3.6) bisects against to reach the
// configured target duplicate density, scored directly off signatures so
// the sample isn't limited to pairs that happen to collide in an LSH band.
func (d *Detector) SampleQuality(pairs [][2]string, threshold float64) float64 {
	if len(pairs) == 0 {
		return 0
	}
	hits := 0
	for _, pair := range pairs {
		sigA, okA := d.idx.Signature(pair[0])
		sigB, okB := d.idx.Signature(pair[1])
		if !okA || !okB {
			continue
		}
		profA, profB := d.profile[pair[0]], d.profile[pair[1]]
		if !d.cfg.Gates.Passes(profA, profB) {
			continue
		}
		adjusted := d.cfg.Gates.AdjustedSimilarity(sigA.Similarity(sigB), profA, profB)
		if adjusted >= threshold {
			hits++
		}
	}
	return float64(hits) / float64(len(pairs))
}

// Pairs returns every candidate pair that clears both the quality gates
// and the adjusted-similarity threshold, the same filtering Features
// applies, for callers that want the pairs themselves (e.g. a clone
// report) rather than per-entity aggregates.
func (d *Detector) Pairs() []Pair {
	var out []Pair
	for _, p := range d.idx.AllPairs(d.cfg.Threshold) {
		profA, profB := d.profile[p.A], d.profile[p.B]
		if !d.cfg.Gates.Passes(profA, profB) {
			continue
		}
		adjusted := d.cfg.Gates.AdjustedSimilarity(p.Similarity, profA, profB)
		if adjusted < d.cfg.Threshold {
			continue
		}
		out = append(out, Pair{A: p.A, B: p.B, Similarity: adjusted})
	}
	return out
}

// Features computes CloneFeatures for every document, applying the
// quality gates to exclude trivial or I/O-mismatched candidates before
// aggregating clone_mass/max/avg/duplicate_count (§4.3.9).
func (d *Detector) Features() map[string]CloneFeatures {
	out := make(map[string]CloneFeatures, len(d.profile))
	pairs := d.idx.AllPairs(d.cfg.Threshold)

	perEntity := make(map[string][]float64)
	for _, p := range pairs {
		profA, profB := d.profile[p.A], d.profile[p.B]
		if !d.cfg.Gates.Passes(profA, profB) {
			continue
		}
		adjusted := d.cfg.Gates.AdjustedSimilarity(p.Similarity, profA, profB)
		if adjusted < d.cfg.Threshold {
			continue
		}
		perEntity[p.A] = append(perEntity[p.A], adjusted)
		perEntity[p.B] = append(perEntity[p.B], adjusted)
	}

	ids := make([]string, 0, len(d.profile))
	for id := range d.profile {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		sims := perEntity[id]
		if len(sims) == 0 {
			out[id] = CloneFeatures{}
			continue
		}
		sum, max, dupCount := 0.0, 0.0, 0
		for _, s := range sims {
			sum += s
			if s > max {
				max = s
			}
			if s >= cloneMassCutoff {
				dupCount++
			}
		}
		cloneMass := 0.0
		if max >= cloneMassCutoff {
			cloneMass = max
		}
		out[id] = CloneFeatures{
			CloneMass:      cloneMass,
			MaxSimilarity:  max,
			AvgSimilarity:  sum / float64(len(sims)),
			DuplicateCount: dupCount,
		}
	}
	return out
}
