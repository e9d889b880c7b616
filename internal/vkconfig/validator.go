package vkconfig

import (
	"fmt"
	"math"

	"github.com/valknut-go/valknut/internal/vkerrors"
)

// Validator checks a Config against the rules of spec.md §6/§10 before any
// parsing occurs (P10): num_hashes % num_bands == 0, weights in declared
// ranges, thresholds in [0,1], denoise weights sum to ≈1, min_sample_size
// ≥ 1, outlier_threshold > 0.
type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

// ValidateAndSetDefaults validates cfg, filling in zero-valued numeric
// fields that have a sensible default rather than rejecting them outright,
// matching the teacher's ValidateAndSetDefaults pattern.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateLSH(&cfg.LSH); err != nil {
		return vkerrors.New(vkerrors.KindConfig, "validate_lsh", err)
	}
	if err := v.validateScoring(&cfg.Scoring); err != nil {
		return vkerrors.New(vkerrors.KindConfig, "validate_scoring", err)
	}
	if err := v.validateDenoise(&cfg.Denoise); err != nil {
		return vkerrors.New(vkerrors.KindConfig, "validate_denoise", err)
	}
	if err := v.validateStructure(&cfg.Structure); err != nil {
		return vkerrors.New(vkerrors.KindConfig, "validate_structure", err)
	}
	if cfg.Analysis.ConfidenceThreshold < 0 || cfg.Analysis.ConfidenceThreshold > 1 {
		return vkerrors.New(vkerrors.KindConfig, "validate_analysis",
			fmt.Errorf("confidence_threshold must be in [0,1], got %v", cfg.Analysis.ConfidenceThreshold))
	}
	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateLSH(l *LSH) error {
	if l.NumHashes <= 0 || l.NumBands <= 0 {
		return fmt.Errorf("num_hashes and num_bands must be positive, got %d/%d", l.NumHashes, l.NumBands)
	}
	if l.NumHashes%l.NumBands != 0 {
		return fmt.Errorf("num_hashes (%d) must be divisible by num_bands (%d)", l.NumHashes, l.NumBands)
	}
	if l.ShingleSize <= 0 {
		return fmt.Errorf("shingle_size must be positive, got %d", l.ShingleSize)
	}
	if l.SimilarityThreshold < 0 || l.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [0,1], got %v", l.SimilarityThreshold)
	}
	return nil
}

func (v *Validator) validateScoring(s *Scoring) error {
	for name, w := range map[string]float64{
		"complexity": s.Weights.Complexity, "graph": s.Weights.Graph,
		"structure": s.Weights.Structure, "style": s.Weights.Style, "coverage": s.Weights.Coverage,
	} {
		if w < 0 || w > 10 {
			return fmt.Errorf("scoring weight %s must be in [0,10], got %v", name, w)
		}
	}
	if s.StatisticalParams.MinSampleSize < 1 {
		return fmt.Errorf("min_sample_size must be >= 1, got %d", s.StatisticalParams.MinSampleSize)
	}
	if s.StatisticalParams.OutlierThreshold <= 0 {
		return fmt.Errorf("outlier_threshold must be > 0, got %v", s.StatisticalParams.OutlierThreshold)
	}
	switch s.NormalizationScheme {
	case NormZScore, NormMinMax, NormRobust, NormBayesianZScore, NormBayesianRobust:
	default:
		return fmt.Errorf("unknown normalization_scheme %q", s.NormalizationScheme)
	}
	return nil
}

func (v *Validator) validateDenoise(d *Denoise) error {
	if d.Similarity < 0 || d.Similarity > 1 {
		return fmt.Errorf("denoise.similarity must be in [0,1], got %v", d.Similarity)
	}
	sum := d.Weights.AST + d.Weights.PDG + d.Weights.Emb
	if d.Weights.AST < 0 || d.Weights.PDG < 0 || d.Weights.Emb < 0 {
		return fmt.Errorf("denoise weights must be non-negative, got ast=%v pdg=%v emb=%v", d.Weights.AST, d.Weights.PDG, d.Weights.Emb)
	}
	if math.Abs(sum-1.0) > 0.1 {
		return fmt.Errorf("denoise weights must sum to ~1 (±0.1), got %v", sum)
	}
	if d.StopMotifs.Percentile < 0 || d.StopMotifs.Percentile > 1 {
		return fmt.Errorf("stop_motifs.percentile must be in [0,1], got %v", d.StopMotifs.Percentile)
	}
	if d.AutoCalibrationParams.QualityTarget < 0 || d.AutoCalibrationParams.QualityTarget > 1 {
		return fmt.Errorf("auto_calibration.quality_target must be in [0,1], got %v", d.AutoCalibrationParams.QualityTarget)
	}
	return nil
}

func (v *Validator) validateStructure(s *Structure) error {
	if s.Partitioning.MinClusters <= 0 || s.Partitioning.MaxClusters < s.Partitioning.MinClusters {
		return fmt.Errorf("invalid partitioning cluster bounds: min=%d max=%d", s.Partitioning.MinClusters, s.Partitioning.MaxClusters)
	}
	if s.Partitioning.BalanceTolerance < 0 || s.Partitioning.BalanceTolerance > 1 {
		return fmt.Errorf("balance_tolerance must be in [0,1], got %v", s.Partitioning.BalanceTolerance)
	}
	if s.FSFile.MinEntitiesPerSplit <= 0 {
		return fmt.Errorf("min_entities_per_split must be positive, got %d", s.FSFile.MinEntitiesPerSplit)
	}
	return nil
}

// setSmartDefaults fills in zero-valued fields a caller is unlikely to have
// intended as zero (e.g. MaxThreads=0 means auto-detect, which is itself a
// valid sentinel, so this only touches fields with no such meaning).
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Denoise.AutoCalibrationParams.MaxIterations <= 0 {
		cfg.Denoise.AutoCalibrationParams.MaxIterations = 50
	}
	if cfg.Denoise.AutoCalibrationParams.SampleSize <= 0 {
		cfg.Denoise.AutoCalibrationParams.SampleSize = 200
	}
	if cfg.Denoise.StopMotifs.RefreshDays <= 0 {
		cfg.Denoise.StopMotifs.RefreshDays = 7
	}
	if cfg.LSH.MaxCandidates <= 0 {
		cfg.LSH.MaxCandidates = 200
	}
}
