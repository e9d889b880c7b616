package structure

import "math"

// BranchReorgPack is the §4.4.5 emission unit: a directory that has
// crossed the reorganisation threshold, the partitions proposed for it,
// and the estimated gain from applying them.
type BranchReorgPack struct {
	DirPath    string
	Metrics    DirectoryMetrics
	Partitions []Partition
	Gain       ReorganizationGain
	Effort     ReorganizationEffort
}

// ReorganizationGain estimates the benefit of applying a proposed split:
// how much the average imbalance of the new partitions improves on the
// current directory's imbalance, and how many dependency edges move
// from cross-directory to intra-partition.
type ReorganizationGain struct {
	ImbalanceDelta    float64
	CrossEdgesReduced int
}

// ReorganizationEffort is a coarse cost estimate for a proposed split:
// how many files move and into how many new directories.
type ReorganizationEffort struct {
	FilesMoved   int
	NewDirectories int
}

// EstimateGain computes ReorganizationGain per §4.4.5: it re-derives a
// lightweight imbalance score for each proposed partition (using its
// file count, total LOC, and an even LOC distribution across its files
// as an approximation — the partition doesn't exist on disk yet, so its
// true dispersion is unknown) and compares the average against the
// directory's current imbalance.
func EstimateGain(current DirectoryMetrics, partitions []Partition, cfg FSDirLimits, crossEdgesReduced int) ReorganizationGain {
	if len(partitions) == 0 {
		return ReorganizationGain{ImbalanceDelta: 0, CrossEdgesReduced: crossEdgesReduced}
	}

	sum := 0.0
	for _, p := range partitions {
		sum += partitionImbalance(p, cfg)
	}
	avgNew := sum / float64(len(partitions))

	delta := current.Imbalance - avgNew
	if delta < 0 {
		delta = 0
	}
	return ReorganizationGain{ImbalanceDelta: delta, CrossEdgesReduced: crossEdgesReduced}
}

// FSDirLimits is the subset of vkconfig.FSDir that partition-imbalance
// estimation needs, kept separate to avoid an import cycle with the
// config-driven DirectoryMetrics construction in metrics.go.
type FSDirLimits struct {
	MaxFilesPerDir int
	MaxDirLOC      int
}

func partitionImbalance(p Partition, cfg FSDirLimits) float64 {
	files := len(p.Files)
	avgLOC := 0
	if files > 0 {
		avgLOC = p.LOC / files
	}
	locDist := make([]int, files)
	for i := range locDist {
		locDist[i] = avgLOC
	}

	gini := GiniCoefficient(locDist)
	entropy := Entropy(locDist)

	filePressure := math.Min(float64(files)/float64(cfg.MaxFilesPerDir), 1.0)
	sizePressure := math.Min(float64(p.LOC)/float64(cfg.MaxDirLOC), 1.0)

	maxEntropy := 1.0
	if files > 0 {
		maxEntropy = math.Log2(float64(files))
	}
	normalizedEntropy := 0.0
	if maxEntropy > 0 {
		normalizedEntropy = entropy / maxEntropy
	}
	dispersion := math.Max(gini, 1.0-normalizedEntropy)

	rawImbalance := 0.35*filePressure + 0.25*sizePressure + 0.15*dispersion
	return rawImbalance * SizeNormalizationFactor(files, p.LOC)
}

// CrossEdgesReduced counts dependency-graph edges whose endpoints land
// in different proposed partitions — these become intra-partition edges
// after the reorganisation is applied.
func CrossEdgesReduced(g *DependencyGraph, partitions []Partition) int {
	fileToPartition := make(map[string]int)
	for pi, p := range partitions {
		for _, f := range p.Files {
			fileToPartition[f] = pi
		}
	}

	cross := 0
	for u, targets := range g.edges {
		uPath := g.Nodes[u].Path
		up, ok := fileToPartition[uPath]
		if !ok {
			continue
		}
		for v := range targets {
			vPath := g.Nodes[v].Path
			vp, ok := fileToPartition[vPath]
			if !ok {
				continue
			}
			if up != vp {
				cross++
			}
		}
	}
	return cross
}

// EstimateEffort returns a simple files-moved / new-directories-created
// cost estimate for a proposed reorganisation.
func EstimateEffort(partitions []Partition) ReorganizationEffort {
	files := 0
	for _, p := range partitions {
		files += len(p.Files)
	}
	return ReorganizationEffort{FilesMoved: files, NewDirectories: len(partitions)}
}
