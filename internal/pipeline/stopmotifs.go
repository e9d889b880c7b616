package pipeline

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/valknut-go/valknut/internal/cache"
	"github.com/valknut-go/valknut/internal/entity"
	"github.com/valknut-go/valknut/internal/lsh"
	"github.com/valknut-go/valknut/internal/vkconfig"
)

// codebaseSignature hashes every file's path and content deterministically
// into one value, the cheap fingerprint stop-motif and calibration caches
// use to detect "the corpus changed, re-mine" without diffing file by file.
func codebaseSignature(sources map[string]string) string {
	paths := make([]string, 0, len(sources))
	for p := range sources {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	h := xxhash.New()
	for _, p := range paths {
		h.WriteString(p)
		h.WriteString("\x00")
		h.WriteString(sources[p])
		h.WriteString("\x00")
	}
	return xxhashHex(h.Sum64())
}

func xxhashHex(v uint64) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		buf[i] = hexDigits[v&0xf]
		v >>= 4
	}
	return string(buf)
}

// loadOrMineStopMotifs returns a fresh-enough stop-motif cache for root,
// reusing the persisted one when it isn't stale (§4.3.8/§9) and otherwise
// mining token-k-gram motifs from every function/method body's shingles
// and persisting the result so the next run doesn't re-mine from scratch.
func loadOrMineStopMotifs(cfg vkconfig.Config, root string, entities []*entity.CodeEntity, sources, languages map[string]string, nowUnix int64) *lsh.StopMotifCache {
	if !cfg.Denoise.StopMotifs.Enabled || root == "" {
		return nil
	}

	signature := codebaseSignature(sources)
	if cached, err := cache.LoadStopMotifs(root); err == nil && !cached.Stale(signature, nowUnix, cfg.Denoise.StopMotifs.RefreshDays) {
		return cached
	}

	counts := lsh.NewMotifCounts()
	for _, e := range entities {
		if e.Kind != entity.KindFunction && e.Kind != entity.KindMethod {
			continue
		}
		src := sliceSpan(sources[e.File], e.Span)
		if src == "" {
			continue
		}
		shingles := lsh.Shingles(lsh.Tokens(lsh.Normalize(src)), 3)
		lang := languages[e.File]
		for s := range lsh.UniqueSet(shingles) {
			counts.Observe(lsh.MotifTokenKGram, s, lang)
		}
	}

	mined := lsh.NewStopMotifCache(signature, nowUnix, counts, cfg.Denoise.StopMotifs.Percentile)
	_ = cache.SaveStopMotifs(root, mined)
	return mined
}
