package structure

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
)

var namingStopwords = map[string]bool{"file": true, "test": true, "spec": true}

// generatePartitionName implements §4.4.4: derive a deterministic,
// human-meaningful partition name from the most common non-trivial
// filename token shared by at least two files, falling back to the
// configured naming_fallbacks list and finally to "partition_N". Ties in
// token frequency are broken by fuzzy-distance closeness to the
// configured naming_fallbacks, so a tied token that already resembles an
// established naming convention wins over an arbitrary lexicographic
// pick.
func generatePartitionName(files []string, index int, fallbacks []string) string {
	counts := make(map[string]int)
	for _, f := range files {
		stem := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		for _, tok := range splitStem(stem) {
			tok = strings.ToLower(tok)
			if len(tok) > 2 && !isAllDigits(tok) {
				counts[tok]++
			}
		}
	}

	type candidate struct {
		token string
		count int
	}
	var candidates []candidate
	for tok, count := range counts {
		if count > 1 && !namingStopwords[tok] {
			candidates = append(candidates, candidate{tok, count})
		}
	}
	if len(candidates) > 0 {
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].count != candidates[j].count {
				return candidates[i].count > candidates[j].count
			}
			simI := bestFallbackSimilarity(candidates[i].token, fallbacks)
			simJ := bestFallbackSimilarity(candidates[j].token, fallbacks)
			if simI != simJ {
				return simI > simJ
			}
			return candidates[i].token < candidates[j].token
		})
		return candidates[0].token
	}

	if index < len(fallbacks) {
		return fallbacks[index]
	}
	return fmt.Sprintf("partition_%d", index)
}

// splitNameBuckets are the §4.4.6 heuristic keyword buckets a file-split
// community's entity names are classified into, checked in order so a
// name matching an earlier bucket's keywords never falls through to a
// later one.
var splitNameBuckets = []struct {
	name     string
	keywords []string
}{
	{"io", []string{"read", "write", "load", "save", "fetch", "open", "close", "stream", "encode", "decode"}},
	{"api", []string{"handle", "handler", "endpoint", "route", "request", "response", "serve", "controller"}},
	{"util", []string{"util", "helper", "format", "convert", "parse"}},
}

// generateSplitName classifies a cohesion community by §4.4.6's
// heuristic keyword buckets over its entities' names, matching the
// worked example's "_io"/"_core" naming: the bucket with the most
// keyword hits among the community's tokenized identifier names wins,
// falling back to "core" when nothing matches. used tracks bucket names
// already assigned within the same pack so repeated buckets get a
// numeric suffix instead of colliding.
func generateSplitName(entityIDs []string, names map[string]string, used map[string]bool) string {
	counts := make(map[string]int)
	for _, id := range entityIDs {
		for _, tok := range splitIdentifierWords(names[id]) {
			counts[strings.ToLower(tok)]++
		}
	}

	bucket := "core"
	best := 0
	for _, b := range splitNameBuckets {
		hits := 0
		for _, kw := range b.keywords {
			hits += counts[kw]
		}
		if hits > best {
			best = hits
			bucket = b.name
		}
	}

	if !used[bucket] {
		used[bucket] = true
		return bucket
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", bucket, n)
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}

// bestFallbackSimilarity returns the highest Levenshtein-based similarity
// (go-edlib) between token and any configured naming fallback, used only
// to break ties among equally-frequent candidate tokens.
func bestFallbackSimilarity(token string, fallbacks []string) float32 {
	best := float32(0)
	for _, fb := range fallbacks {
		sim, err := edlib.StringsSimilarity(token, fb, edlib.Levenshtein)
		if err == nil && sim > best {
			best = sim
		}
	}
	return best
}

func splitStem(stem string) []string {
	return strings.FieldsFunc(stem, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
}

// splitIdentifierWords breaks an identifier name into lowercase word
// tokens on underscore/dash/dot separators and camelCase boundaries.
func splitIdentifierWords(name string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.':
			flush()
		case unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]):
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
