package pipeline

import (
	"github.com/valknut-go/valknut/internal/entity"
	"github.com/valknut-go/valknut/internal/lang"
	"github.com/valknut-go/valknut/internal/lsh"
	"github.com/valknut-go/valknut/internal/vkconfig"
)

// runCloneDetection runs stage 4 (§4.6, §4.3): every function/method
// entity becomes a lsh.Document, the detector mines clone features
// across the whole population, and the result is merged back into each
// entity's raw feature map as clone_mass/max_similarity/avg_similarity/
// duplicate_count (§4.3.9) — the one feature family that needs the
// entire population rather than a single entity, so it runs as its own
// stage instead of through entity/extract.Registry.
func runCloneDetection(cfg vkconfig.Config, entities []*entity.CodeEntity, sources map[string]string, registry *lang.Registry, stopMotifs *lsh.StopMotifCache) (map[string]lsh.CloneFeatures, []lsh.Pair) {
	if !cfg.Analysis.EnableLSH {
		return nil, nil
	}

	var docs []lsh.Document
	for _, e := range entities {
		if e.Kind != entity.KindFunction && e.Kind != entity.KindMethod {
			continue
		}
		src := sliceSpan(sources[e.File], e.Span)
		if src == "" {
			continue
		}
		profile := buildEntityProfile(src, e, registry)
		docs = append(docs, lsh.Document{EntityID: e.ID, Source: src, Profile: profile})
	}
	if len(docs) == 0 {
		return nil, nil
	}

	detector := lsh.NewDetector(lsh.DetectorConfig{
		NumHashes:   cfg.LSH.NumHashes,
		NumBands:    cfg.LSH.NumBands,
		ShingleSize: cfg.LSH.ShingleSize,
		Threshold:   cfg.LSH.SimilarityThreshold,
		Gates: lsh.QualityGateConfig{
			MinFunctionTokens: cfg.Denoise.MinFunctionTokens,
			MinMatchTokens:    cfg.Denoise.MinMatchTokens,
			MinDistinctBlocks: minDistinctBlocks(cfg),
			IOMismatchPenalty: cfg.Denoise.IOMismatchPenalty,
		},
		StopMotifs: stopMotifs,
	}, docs)

	if cfg.Denoise.Auto {
		ids := make([]string, 0, len(docs))
		for _, d := range docs {
			ids = append(ids, d.EntityID)
		}
		params := cfg.Denoise.AutoCalibrationParams
		sample := lsh.SamplePairs(ids, params.SampleSize)
		if len(sample) > 0 {
			result := lsh.Calibrate(0, 1, params.QualityTarget, params.MaxIterations, 0.01, func(t float64) float64 {
				return detector.SampleQuality(sample, t)
			})
			detector.SetThreshold(result.Threshold)
		}
	}

	return detector.Features(), detector.Pairs()
}

func minDistinctBlocks(cfg vkconfig.Config) int {
	if cfg.Denoise.RequireBlocks {
		return 1
	}
	return 0
}

// buildEntityProfile constructs the quality-gate profile for one entity:
// its token count (lsh.Tokens over the normalised source), its distinct
// block count (the owning adapter's lexical-block counter), and an I/O
// signature built from the callee names it references — the externally
// visible part of its behaviour, standing in for the original's full
// parameter/return-type signature since no adapter exposes typed
// signatures uniformly across languages (§4.3.7).
func buildEntityProfile(src string, e *entity.CodeEntity, registry *lang.Registry) lsh.EntityProfile {
	tokens := lsh.Tokens(lsh.Normalize(src))

	adapter, ok := registry.AdapterFor(e.File)
	blocks := 1
	io := make(map[string]bool)
	if ok {
		blocks = adapter.CountDistinctBlocks(src)
		for _, call := range adapter.ExtractFunctionCalls(src) {
			io[call] = true
		}
	}
	return lsh.EntityProfile{TokenCount: len(tokens), DistinctBlocks: blocks, IOSignature: io}
}

func sliceSpan(source string, span entity.Span) string {
	if span.StartByte < 0 || span.EndByte > len(source) || span.StartByte >= span.EndByte {
		return ""
	}
	return source[span.StartByte:span.EndByte]
}

// mergeCloneFeatures folds CloneFeatures into each entity's raw feature
// map under the names §4.3.9 assigns them.
func mergeCloneFeatures(vectors map[string]*entity.FeatureVector, features map[string]lsh.CloneFeatures) {
	for id, cf := range features {
		fv, ok := vectors[id]
		if !ok {
			continue
		}
		fv.Raw["clone_mass"] = cf.CloneMass
		fv.Raw["max_similarity"] = cf.MaxSimilarity
		fv.Raw["avg_similarity"] = cf.AvgSimilarity
		fv.Raw["duplicate_count"] = float64(cf.DuplicateCount)
	}
}
