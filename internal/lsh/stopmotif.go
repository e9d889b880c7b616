package lsh

import (
	"math"
	"sort"
	"strings"
)

// MotifFamily groups the three motif kinds mined by the stop-motif cache
// (§4.3.8): repeated token k-grams, PDG (program-dependence-graph)
// motifs, and AST structural patterns. All three are tracked by raw
// frequency across the codebase and the most common are demoted to
// "stop motifs" — shingles too common to carry clone-detection signal,
// analogous to stopwords in text retrieval.
type MotifFamily string

const (
	MotifTokenKGram  MotifFamily = "token_kgram"
	MotifPDGMotif    MotifFamily = "pdg_motif"
	MotifASTPattern  MotifFamily = "ast_pattern"
)

// MotifCounts tracks raw occurrence counts per motif family, plus the
// languages each motif was observed in, the input to percentile-based
// stop-motif selection (§4.3.8).
type MotifCounts struct {
	counts    map[MotifFamily]map[string]int
	total     map[MotifFamily]int
	languages map[MotifFamily]map[string]map[string]int
}

// NewMotifCounts returns an empty counter.
func NewMotifCounts() *MotifCounts {
	return &MotifCounts{
		counts:    make(map[MotifFamily]map[string]int),
		total:     make(map[MotifFamily]int),
		languages: make(map[MotifFamily]map[string]map[string]int),
	}
}

// Observe records one occurrence of a motif within its family, tagged
// with the language it was mined from (pass "" when the language isn't
// tracked at the call site).
func (m *MotifCounts) Observe(family MotifFamily, motif, language string) {
	if m.counts[family] == nil {
		m.counts[family] = make(map[string]int)
	}
	m.counts[family][motif]++
	m.total[family]++

	if language == "" {
		return
	}
	if m.languages[family] == nil {
		m.languages[family] = make(map[string]map[string]int)
	}
	if m.languages[family][motif] == nil {
		m.languages[family][motif] = make(map[string]int)
	}
	m.languages[family][motif][language]++
}

// dominantLanguage returns the most-observed language for a motif, or ""
// if none was recorded.
func (m *MotifCounts) dominantLanguage(family MotifFamily, motif string) string {
	langs := m.languages[family][motif]
	keys := make([]string, 0, len(langs))
	for l := range langs {
		keys = append(keys, l)
	}
	sort.Strings(keys)

	best, bestCount := "", 0
	for _, l := range keys {
		if langs[l] > bestCount {
			best, bestCount = l, langs[l]
		}
	}
	return best
}

// StopSet computes, for one family, the set of motifs whose frequency
// places them at or above the given percentile of the family's
// occurrence distribution (§4.3.8: the top percentile of most frequent
// motifs are excluded from similarity scoring as boilerplate).
func (m *MotifCounts) StopSet(family MotifFamily, percentile float64) map[string]bool {
	counts := m.counts[family]
	if len(counts) == 0 {
		return map[string]bool{}
	}
	type entry struct {
		motif string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for motif, count := range counts {
		entries = append(entries, entry{motif, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].motif < entries[j].motif
	})

	cutoff := int(float64(len(entries)) * percentile)
	if cutoff < 1 {
		cutoff = 1
	}
	if cutoff > len(entries) {
		cutoff = len(entries)
	}
	stop := make(map[string]bool, cutoff)
	for _, e := range entries[:cutoff] {
		stop[e.motif] = true
	}
	return stop
}

// StopMotifEntry is one mined stop motif (§3's data model): the motif
// text, how many occurrences earned it stop-motif status, the corpus IDF
// score behind that, the weight multiplier similarity scoring applies to
// shingles matching it, a coarse category heuristic, and the dominant
// language it was observed in.
type StopMotifEntry struct {
	Motif      string      `json:"motif"`
	Family     MotifFamily `json:"family"`
	Support    int         `json:"support"`
	IDFScore   float64     `json:"idf_score"`
	Multiplier float64     `json:"multiplier"`
	Category   string      `json:"category"`
	Language   string      `json:"language,omitempty"`
}

// minStopMotifMultiplier floors how far a stop motif can suppress a
// shingle's weight: even the most common boilerplate still contributes a
// sliver of signal rather than vanishing outright (§4.3.8).
const minStopMotifMultiplier = 0.05

// StopMotifCache is the persisted, refreshable record of stop motifs for
// a codebase (§3/§4.3.8), mined once per scan and reused across runs
// until stale.
type StopMotifCache struct {
	SchemaVersion     int                              `json:"schema_version"`
	CodebaseSignature string                           `json:"codebase_signature"`
	MinedAtUnix       int64                            `json:"mined_at_unix"`
	Families          map[MotifFamily][]StopMotifEntry `json:"families"`
}

const stopMotifSchemaVersion = 1

// NewStopMotifCache builds a persistable cache snapshot from freshly
// mined counts, scoring each selected motif's support, IDF, and weight
// multiplier.
func NewStopMotifCache(signature string, minedAtUnix int64, counts *MotifCounts, percentile float64) *StopMotifCache {
	families := map[MotifFamily][]StopMotifEntry{
		MotifTokenKGram: buildStopMotifEntries(counts, MotifTokenKGram, percentile),
		MotifPDGMotif:   buildStopMotifEntries(counts, MotifPDGMotif, percentile),
		MotifASTPattern: buildStopMotifEntries(counts, MotifASTPattern, percentile),
	}
	return &StopMotifCache{
		SchemaVersion:     stopMotifSchemaVersion,
		CodebaseSignature: signature,
		MinedAtUnix:       minedAtUnix,
		Families:          families,
	}
}

func buildStopMotifEntries(counts *MotifCounts, family MotifFamily, percentile float64) []StopMotifEntry {
	stopSet := counts.StopSet(family, percentile)
	if len(stopSet) == 0 {
		return nil
	}
	motifs := sortedKeys(stopSet)
	total := counts.total[family]

	idfOf := make(map[string]float64, len(motifs))
	maxIDF := 0.0
	for _, motif := range motifs {
		support := counts.counts[family][motif]
		idf := math.Log(1+float64(total)/float64(1+support)) + 1e-9
		idfOf[motif] = idf
		if idf > maxIDF {
			maxIDF = idf
		}
	}

	entries := make([]StopMotifEntry, 0, len(motifs))
	for _, motif := range motifs {
		idf := idfOf[motif]
		// Scaled by IDF between minStopMotifMultiplier and 0.3, the
		// moderate multiplier the rarest motif in the stop set receives,
		// so every stop motif is down-weighted.
		multiplier := minStopMotifMultiplier
		if maxIDF > 0 {
			multiplier = minStopMotifMultiplier + (0.3-minStopMotifMultiplier)*(idf/maxIDF)
		}
		entries = append(entries, StopMotifEntry{
			Motif:      motif,
			Family:     family,
			Support:    counts.counts[family][motif],
			IDFScore:   idf,
			Multiplier: multiplier,
			Category:   classifyMotifCategory(motif),
			Language:   counts.dominantLanguage(family, motif),
		})
	}
	return entries
}

// classifyMotifCategory buckets a motif by a coarse keyword heuristic —
// there's no structural classifier in play, just a cheap label for
// reporting which kind of boilerplate got suppressed.
func classifyMotifCategory(motif string) string {
	switch {
	case strings.Contains(motif, "err"):
		return "error_handling"
	case strings.Contains(motif, "log") || strings.Contains(motif, "print"):
		return "logging"
	case strings.Contains(motif, "return"):
		return "control_flow"
	default:
		return "generic"
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stale reports whether the cache should be remined: schema version
// mismatch, codebase signature mismatch (the corpus changed), or age
// beyond refreshDays all invalidate the cache per §4.3.8/§9.
func (c *StopMotifCache) Stale(currentSignature string, nowUnix int64, refreshDays int) bool {
	if c == nil {
		return true
	}
	if c.SchemaVersion != stopMotifSchemaVersion {
		return true
	}
	if c.CodebaseSignature != currentSignature {
		return true
	}
	ageDays := float64(nowUnix-c.MinedAtUnix) / 86400.0
	return ageDays > float64(refreshDays)
}

// Contains reports whether a motif is a stop motif in its family.
func (c *StopMotifCache) Contains(family MotifFamily, motif string) bool {
	_, ok := c.entry(family, motif)
	return ok
}

func (c *StopMotifCache) entry(family MotifFamily, motif string) (StopMotifEntry, bool) {
	if c == nil {
		return StopMotifEntry{}, false
	}
	for _, e := range c.Families[family] {
		if e.Motif == motif {
			return e, true
		}
	}
	return StopMotifEntry{}, false
}

// WeightMultiplier returns the suppression multiplier for a shingle
// matching a stop motif in the given family, or 1.0 (no suppression) if
// it matches none.
func (c *StopMotifCache) WeightMultiplier(family MotifFamily, motif string) float64 {
	if e, ok := c.entry(family, motif); ok {
		return e.Multiplier
	}
	return 1.0
}

// ApplyWeights down-weights — never removes — any shingle matching a
// mined stop motif, multiplying its corpus weight by the motif's
// suppression multiplier in place. Per §4.3.8 boilerplate is suppressed,
// not discarded: a block built almost entirely from stop motifs still
// contributes a reduced signal rather than vanishing from the signature.
func (c *StopMotifCache) ApplyWeights(weighted map[string]float64, family MotifFamily) {
	if c == nil {
		return
	}
	for shingle, w := range weighted {
		weighted[shingle] = w * c.WeightMultiplier(family, shingle)
	}
}
