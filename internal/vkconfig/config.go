// Package vkconfig holds the configuration surface recognised by the
// analysis core (§6): which stages run, their thresholds, and the
// resource limits the pipeline enforces.
package vkconfig

// Config is the root configuration object. Every field here corresponds to
// a dotted option named in spec.md §6 (analysis.*, scoring.*, graph.*,
// lsh.*, denoise.*, languages.*, structure.*, coverage.*, performance.*).
type Config struct {
	Project     Project
	Analysis    Analysis
	Scoring     Scoring
	Graph       Graph
	LSH         LSH
	Denoise     Denoise
	Languages   map[string]LanguageConfig
	Structure   Structure
	Coverage    Coverage
	Performance Performance
}

// Project describes the repository root(s) under analysis.
type Project struct {
	Roots              []string
	ProjectRootOverride string // import-resolution root override (§6 input contract)
}

// Analysis toggles whole pipeline stages and bounds candidate emission.
type Analysis struct {
	EnableScoring      bool
	EnableGraph        bool
	EnableLSH          bool
	EnableRefactoring  bool
	EnableCoverage     bool
	EnableStructure    bool
	EnableNames        bool
	ConfidenceThreshold float64
	MaxFiles            int
	IncludePatterns      []string
	ExcludePatterns      []string
}

// NormalizationScheme enumerates the statistical normalisers of §4.5.1.
type NormalizationScheme string

const (
	NormZScore        NormalizationScheme = "z_score"
	NormMinMax         NormalizationScheme = "min_max"
	NormRobust         NormalizationScheme = "robust"
	NormBayesianZScore NormalizationScheme = "bayesian_z_score"
	NormBayesianRobust NormalizationScheme = "bayesian_robust"
)

// ScoringWeights weight category scores into the overall score (§4.5.3).
type ScoringWeights struct {
	Complexity float64
	Graph      float64
	Structure  float64
	Style      float64
	Coverage   float64
}

// StatisticalParams parameterises normalisation and Bayesian fallbacks.
type StatisticalParams struct {
	ConfidenceLevel float64
	MinSampleSize   int
	OutlierThreshold float64
}

type Scoring struct {
	NormalizationScheme NormalizationScheme
	Weights             ScoringWeights
	StatisticalParams   StatisticalParams
}

type Graph struct {
	EnableBetweenness        bool
	EnableCloseness          bool
	EnableCycleDetection     bool
	MaxExactSize             int
	UseApproximation         bool
	ApproximationSampleRate  float64
}

type LSH struct {
	NumHashes             int
	NumBands              int
	ShingleSize           int
	SimilarityThreshold    float64
	MaxCandidates          int
	UseSemanticSimilarity  bool
}

// DenoiseWeights weight the three stop-motif families (§4.3.8); they must
// sum to ≈1 (±0.1), validated by Validator.ValidateAndSetDefaults.
type DenoiseWeights struct {
	AST float64
	PDG float64
	Emb float64
}

type StopMotifs struct {
	Enabled     bool
	Percentile  float64
	RefreshDays int
}

type AutoCalibration struct {
	QualityTarget float64
	SampleSize    int
	MaxIterations int
}

// RankBy orders denoising's ranked output (§6 denoise.ranking.by).
type RankBy string

const (
	RankBySavedTokens RankBy = "saved_tokens"
	RankByFrequency   RankBy = "frequency"
)

type DenoiseRanking struct {
	By             RankBy
	MinSavedTokens int
	MinRarityGain  float64
	LiveReachBoost float64
}

type Denoise struct {
	Enabled                bool
	Auto                   bool
	MinFunctionTokens      int
	MinMatchTokens         int
	RequireBlocks          bool
	Similarity             float64
	Weights                DenoiseWeights
	IOMismatchPenalty      float64
	StopMotifs             StopMotifs
	AutoCalibrationParams  AutoCalibration
	Ranking                DenoiseRanking
	DryRun                 bool
}

type LanguageConfig struct {
	Enabled             bool
	FileExtensions      []string
	MaxFileSizeMB       float64
	ComplexityThreshold float64
}

type FSDir struct {
	MaxFilesPerDir            int
	MaxSubdirsPerDir          int
	MaxDirLOC                 int
	TargetLOCPerSubdir        int
	MinBranchRecommendationGain float64
	OptimalFiles              float64
	OptimalSubdirs            float64
	OptimalFilesStddev        float64
	OptimalSubdirsStddev      float64
}

type FSFile struct {
	HugeLOC                int
	HugeBytes              int64
	MinEntitiesPerSplit    int
	OptimalASTNodes        float64
	ASTNodes95thPercentile float64
}

type Partitioning struct {
	MaxClusters      int
	MinClusters      int
	BalanceTolerance float64
	NamingFallbacks  []string
}

type Structure struct {
	FSDir        FSDir
	FSFile       FSFile
	Partitioning Partitioning
}

type Coverage struct {
	AutoDiscover bool
	SearchPaths  []string
	FilePatterns []string
	MaxAgeDays   int
	CoverageFile string
}

type Performance struct {
	MaxThreads         int
	MemoryLimitMB      int
	FileTimeoutSeconds int
	TotalTimeoutSeconds int
	EnableSIMD         bool
	BatchSize          int
}

// Default returns a fully populated Config reflecting every default cited
// in spec.md §4 (num_hashes=128, k=3/9, quality_target=0.8, ...).
func Default() *Config {
	return &Config{
		Analysis: Analysis{
			EnableScoring:       true,
			EnableGraph:         true,
			EnableLSH:           true,
			EnableRefactoring:   true,
			EnableCoverage:      false,
			EnableStructure:     true,
			EnableNames:         true,
			ConfidenceThreshold: 0.0,
			MaxFiles:            0,
			IncludePatterns:     []string{"**/*"},
			ExcludePatterns: []string{
				"**/.git/**", "**/node_modules/**", "**/target/**",
				"**/dist/**", "**/build/**", "**/__pycache__/**",
			},
		},
		Scoring: Scoring{
			NormalizationScheme: NormZScore,
			Weights: ScoringWeights{
				Complexity: 1.0, Graph: 0.8, Structure: 0.9, Style: 0.5, Coverage: 0.7,
			},
			StatisticalParams: StatisticalParams{
				ConfidenceLevel: 0.95, MinSampleSize: 10, OutlierThreshold: 3.0,
			},
		},
		Graph: Graph{
			EnableBetweenness:       false,
			EnableCloseness:         false,
			EnableCycleDetection:    true,
			MaxExactSize:            200,
			UseApproximation:        true,
			ApproximationSampleRate: 0.1,
		},
		LSH: LSH{
			NumHashes:           128,
			NumBands:            8,
			ShingleSize:         3,
			SimilarityThreshold: 0.7,
			MaxCandidates:       200,
			UseSemanticSimilarity: false,
		},
		Denoise: Denoise{
			Enabled:           false,
			Auto:              true,
			MinFunctionTokens: 40,
			MinMatchTokens:    24,
			RequireBlocks:     true,
			Similarity:        0.8,
			Weights:           DenoiseWeights{AST: 0.5, PDG: 0.3, Emb: 0.2},
			IOMismatchPenalty: 0.15,
			StopMotifs: StopMotifs{
				Enabled: true, Percentile: 0.0065, RefreshDays: 7,
			},
			AutoCalibrationParams: AutoCalibration{
				QualityTarget: 0.8, SampleSize: 200, MaxIterations: 50,
			},
			Ranking: DenoiseRanking{
				By: RankBySavedTokens, MinSavedTokens: 0, MinRarityGain: 0, LiveReachBoost: 0,
			},
		},
		Languages: map[string]LanguageConfig{
			"python":     {Enabled: true, FileExtensions: []string{".py", ".pyi"}, MaxFileSizeMB: 10, ComplexityThreshold: 10},
			"javascript": {Enabled: true, FileExtensions: []string{".js", ".mjs", ".jsx"}, MaxFileSizeMB: 10, ComplexityThreshold: 10},
			"typescript": {Enabled: true, FileExtensions: []string{".ts", ".tsx"}, MaxFileSizeMB: 10, ComplexityThreshold: 10},
			"rust":       {Enabled: true, FileExtensions: []string{".rs"}, MaxFileSizeMB: 10, ComplexityThreshold: 10},
			"go":         {Enabled: true, FileExtensions: []string{".go"}, MaxFileSizeMB: 10, ComplexityThreshold: 10},
			"java":       {Enabled: true, FileExtensions: []string{".java"}, MaxFileSizeMB: 10, ComplexityThreshold: 10},
			"cpp":        {Enabled: true, FileExtensions: []string{".cpp", ".c", ".h", ".hpp"}, MaxFileSizeMB: 10, ComplexityThreshold: 10},
		},
		Structure: Structure{
			FSDir: FSDir{
				MaxFilesPerDir: 20, MaxSubdirsPerDir: 10, MaxDirLOC: 2000,
				TargetLOCPerSubdir: 500, MinBranchRecommendationGain: 0.1,
				OptimalFiles: 8, OptimalSubdirs: 4, OptimalFilesStddev: 4, OptimalSubdirsStddev: 2,
			},
			FSFile: FSFile{
				HugeLOC: 800, HugeBytes: 32 * 1024, MinEntitiesPerSplit: 3,
				OptimalASTNodes: 400, ASTNodes95thPercentile: 1500,
			},
			Partitioning: Partitioning{
				MaxClusters: 8, MinClusters: 2, BalanceTolerance: 0.3,
				NamingFallbacks: []string{"core", "utils", "components", "services"},
			},
		},
		Coverage: Coverage{
			AutoDiscover: true,
			SearchPaths:  []string{".", "coverage"},
			FilePatterns: []string{"lcov.info", "coverage.xml", "cobertura.xml"},
			MaxAgeDays:   30,
		},
		Performance: Performance{
			MaxThreads:          0,
			MemoryLimitMB:       0,
			FileTimeoutSeconds:  10,
			TotalTimeoutSeconds: 0,
			EnableSIMD:          false,
			BatchSize:           64,
		},
	}
}
