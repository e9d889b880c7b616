// Package structure implements the directory/file organisation analyser
// of §4.4: dispersion and imbalance metrics, dependency-graph
// partitioning into reorganisation packs, and cohesion-based file-split
// detection.
package structure

import (
	"math"
	"sort"

	"github.com/valknut-go/valknut/internal/vkconfig"
)

// DirectoryMetrics is the full set of §4.4.1 directory-level measures.
type DirectoryMetrics struct {
	Files            int
	Subdirs          int
	LOC              int
	Gini             float64
	Entropy          float64
	FilePressure     float64
	BranchPressure   float64
	SizePressure     float64
	Dispersion       float64
	FileCountScore   float64
	SubdirCountScore float64
	Imbalance        float64
}

// GiniCoefficient computes the Gini coefficient of a LOC distribution
// via the O(n log n) rank-weighted formula: sort ascending, then
// Gini = 2*sum(rank*value)/(n*sum(value)) - (n+1)/n, clamped to
// non-negative.
func GiniCoefficient(values []int) float64 {
	if len(values) <= 1 {
		return 0
	}
	n := float64(len(values))
	sum := 0.0
	for _, v := range values {
		sum += float64(v)
	}
	if sum == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)

	weighted := 0.0
	for i, v := range sorted {
		weighted += (float64(i) + 1) * float64(v)
	}
	gini := (2*weighted)/(n*sum) - (n+1)/n
	if gini < 0 {
		return 0
	}
	return gini
}

// Entropy computes Shannon entropy (base 2) of a LOC distribution,
// ignoring zero-valued entries.
func Entropy(values []int) float64 {
	total := 0
	for _, v := range values {
		total += v
	}
	if total == 0 {
		return 0
	}
	e := 0.0
	for _, v := range values {
		if v <= 0 {
			continue
		}
		p := float64(v) / float64(total)
		e += -p * math.Log2(p)
	}
	return e
}

// DistributionScore scores how close value is to optimal under a normal
// curve with the given standard deviation (§4.4.1): a Gaussian kernel
// centred on optimal, 1.0 at the peak decaying toward 0 as value moves
// away. A non-positive stddev degenerates to an exact-match indicator.
func DistributionScore(value int, optimal, stddev float64) float64 {
	if stddev <= 0 {
		if float64(value) == optimal {
			return 1
		}
		return 0
	}
	z := (float64(value) - optimal) / stddev
	return math.Exp(-0.5 * z * z)
}

// SizeNormalizationFactor scales the imbalance score up with codebase
// size, from 1.0 for an empty directory toward 1.5 for very large ones,
// so the same absolute thresholds don't systematically over-penalise
// small repos or under-penalise huge ones (§4.4.1).
func SizeNormalizationFactor(files, totalLOC int) float64 {
	const baseFiles = 10.0
	const baseLOC = 1000.0

	fileFactor := math.Log1p(float64(files)/baseFiles) / math.Log(baseFiles)
	locFactor := math.Log1p(float64(totalLOC)/baseLOC) / math.Log(baseLOC)

	combined := (fileFactor + locFactor) * 0.5
	return 1.0 + math.Tanh(combined)*0.5
}

// DirectoryStats is the raw per-directory input to ComputeMetrics: file
// count, immediate-subdirectory count, and the LOC of each code file
// directly inside it (not recursive).
type DirectoryStats struct {
	Files   int
	Subdirs int
	LOCs    []int
}

// ComputeMetrics assembles the full DirectoryMetrics for one directory,
// following §4.4.1's composite imbalance formula: a weighted blend of
// file/branch/size pressure, dispersion, and distribution deviation,
// scaled by the size-normalization factor.
func ComputeMetrics(stats DirectoryStats, cfg vkconfig.FSDir) DirectoryMetrics {
	totalLOC := 0
	for _, loc := range stats.LOCs {
		totalLOC += loc
	}

	gini := GiniCoefficient(stats.LOCs)
	entropy := Entropy(stats.LOCs)

	filePressure := math.Min(float64(stats.Files)/float64(cfg.MaxFilesPerDir), 1.0)
	branchPressure := math.Min(float64(stats.Subdirs)/float64(cfg.MaxSubdirsPerDir), 1.0)
	sizePressure := math.Min(float64(totalLOC)/float64(cfg.MaxDirLOC), 1.0)

	fileCountScore := DistributionScore(stats.Files, cfg.OptimalFiles, cfg.OptimalFilesStddev)
	subdirCountScore := DistributionScore(stats.Subdirs, cfg.OptimalSubdirs, cfg.OptimalSubdirsStddev)

	maxEntropy := 1.0
	if stats.Files > 0 {
		maxEntropy = math.Log2(float64(stats.Files))
	}
	normalizedEntropy := 0.0
	if maxEntropy > 0 {
		normalizedEntropy = entropy / maxEntropy
	}
	dispersion := math.Max(gini, 1.0-normalizedEntropy)

	fileDeviation := 1.0 - fileCountScore
	subdirDeviation := 1.0 - subdirCountScore

	rawImbalance := 0.25*filePressure +
		0.15*branchPressure +
		0.20*sizePressure +
		0.10*dispersion +
		0.20*fileDeviation +
		0.10*subdirDeviation

	normFactor := SizeNormalizationFactor(stats.Files, totalLOC)

	return DirectoryMetrics{
		Files:            stats.Files,
		Subdirs:          stats.Subdirs,
		LOC:              totalLOC,
		Gini:             gini,
		Entropy:          entropy,
		FilePressure:     filePressure,
		BranchPressure:   branchPressure,
		SizePressure:     sizePressure,
		Dispersion:       dispersion,
		FileCountScore:   fileCountScore,
		SubdirCountScore: subdirCountScore,
		Imbalance:        rawImbalance * normFactor,
	}
}

// NeedsReorg reports whether a directory clears the threshold for
// reorganisation consideration (§4.4.5's BranchReorgPack emission
// rule): imbalance at or above 0.6, at least one hard-limit or dispersion
// condition, and not a trivially small directory.
func NeedsReorg(m DirectoryMetrics, cfg vkconfig.FSDir) bool {
	if m.Imbalance < 0.6 {
		return false
	}
	meetsConditions := m.Files > cfg.MaxFilesPerDir || m.LOC > cfg.MaxDirLOC || m.Dispersion >= 0.5
	if !meetsConditions {
		return false
	}
	if m.Files <= 5 && m.LOC <= 600 {
		return false
	}
	return true
}
