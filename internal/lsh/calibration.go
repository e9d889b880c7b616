package lsh

import "sort"

// CalibrationResult records the outcome of an auto-calibration run
// (§4.3.6): the threshold chosen, the quality it achieved, and the
// iteration count so callers can detect non-convergence.
type CalibrationResult struct {
	Threshold  float64
	Quality    float64
	Iterations int
	Converged  bool
}

// QualityFunc scores a candidate similarity threshold against a sample
// of known-similar/known-distinct entity pairs, returning a value in
// [0,1] where higher is better (e.g. F1 of predicted-duplicate vs.
// ground truth on the sample).
type QualityFunc func(threshold float64) float64

// Calibrate binary-searches the threshold in [low, high] for the value
// whose quality is closest to target, per §4.3.6. It runs at most
// maxIterations steps of bisection, narrowing toward higher thresholds
// when quality exceeds target (fewer, more confident matches) and lower
// thresholds when quality falls short, and returns the best threshold
// observed across all probes if no probe lands within tolerance.
func Calibrate(low, high, target float64, maxIterations int, tolerance float64, quality QualityFunc) CalibrationResult {
	type probe struct {
		threshold, quality float64
	}
	var probes []probe

	for i := 0; i < maxIterations; i++ {
		mid := (low + high) / 2
		q := quality(mid)
		probes = append(probes, probe{mid, q})

		if absf(q-target) <= tolerance {
			return CalibrationResult{Threshold: mid, Quality: q, Iterations: i + 1, Converged: true}
		}
		if q > target {
			low = mid
		} else {
			high = mid
		}
	}

	sort.Slice(probes, func(i, j int) bool {
		return absf(probes[i].quality-target) < absf(probes[j].quality-target)
	})
	if len(probes) == 0 {
		return CalibrationResult{Threshold: low, Quality: 0, Iterations: 0, Converged: false}
	}
	best := probes[0]
	return CalibrationResult{Threshold: best.threshold, Quality: best.quality, Iterations: len(probes), Converged: false}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// SamplePairs draws up to sampleSize entity-id pairs deterministically
// (sorted order, evenly strided) from a candidate population for
// calibration quality evaluation, avoiding the cost of scoring every
// pair in large codebases while keeping the sample reproducible across
// runs given the same input set.
func SamplePairs(ids []string, sampleSize int) [][2]string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	n := len(sorted)
	total := n * (n - 1) / 2
	if total <= 0 {
		return nil
	}
	if total <= sampleSize {
		pairs := make([][2]string, 0, total)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				pairs = append(pairs, [2]string{sorted[i], sorted[j]})
			}
		}
		return pairs
	}

	stride := float64(total) / float64(sampleSize)
	pairs := make([][2]string, 0, sampleSize)
	for k := 0; k < sampleSize; k++ {
		idx := int(float64(k) * stride)
		i, j := unrankPair(idx, n)
		pairs = append(pairs, [2]string{sorted[i], sorted[j]})
	}
	return pairs
}

// unrankPair maps a linear index over the upper triangle of an n x n
// matrix (excluding diagonal) back to its (i,j) coordinates, i<j.
func unrankPair(idx, n int) (int, int) {
	i := 0
	remaining := idx
	for {
		rowLen := n - i - 1
		if remaining < rowLen {
			return i, i + 1 + remaining
		}
		remaining -= rowLen
		i++
	}
}
