// Package scoring implements §4.5: per-feature normalisation, category and
// overall scoring, priority assignment, refactoring-candidate construction,
// and the directory health tree.
package scoring

import (
	"math"
	"sort"

	"github.com/valknut-go/valknut/internal/vkconfig"
)

// NormalizePopulation rescales raw into normalised values per §4.5.1, using
// the configured scheme. Outliers beyond params.OutlierThreshold standard
// deviations are capped, not removed, so the returned slice always has the
// same length as raw.
func NormalizePopulation(scheme vkconfig.NormalizationScheme, raw []float64, params vkconfig.StatisticalParams) []float64 {
	n := len(raw)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	threshold := params.OutlierThreshold
	if threshold <= 0 {
		threshold = 3.0
	}
	minSample := params.MinSampleSize
	if minSample <= 0 {
		minSample = 10
	}

	switch scheme {
	case vkconfig.NormMinMax:
		lo, hi := minMax(raw)
		for i, v := range raw {
			out[i] = minMaxNormalize(v, lo, hi)
		}
	case vkconfig.NormRobust:
		median, iqr := robustStats(raw)
		for i, v := range raw {
			out[i] = capOutlier(robustNormalize(v, median, iqr), threshold)
		}
	case vkconfig.NormBayesianZScore:
		mean, std := meanStddev(raw)
		bMean := bayesianBlend(mean, 0, n, minSample)
		bStd := bayesianBlend(std, 1, n, minSample)
		for i, v := range raw {
			out[i] = capOutlier(zNormalize(v, bMean, bStd), threshold)
		}
	case vkconfig.NormBayesianRobust:
		median, iqr := robustStats(raw)
		bMedian := bayesianBlend(median, 0, n, minSample)
		bIQR := bayesianBlend(iqr, 1, n, minSample)
		for i, v := range raw {
			out[i] = capOutlier(robustNormalize(v, bMedian, bIQR), threshold)
		}
	default: // NormZScore
		mean, std := meanStddev(raw)
		for i, v := range raw {
			out[i] = capOutlier(zNormalize(v, mean, std), threshold)
		}
	}
	return out
}

func meanStddev(values []float64) (mean, std float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 1
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean = sum / n
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= n
	std = math.Sqrt(variance)
	if std == 0 {
		std = 1
	}
	return mean, std
}

func robustStats(values []float64) (median, iqr float64) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	median = percentile(sorted, 0.5)
	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	iqr = q3 - q1
	if iqr == 0 {
		iqr = 1
	}
	return median, iqr
}

// percentile assumes sorted is already ascending.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func minMaxNormalize(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}

func zNormalize(v, mean, std float64) float64 {
	return (v - mean) / std
}

func robustNormalize(v, median, iqr float64) float64 {
	return (v - median) / iqr
}

func capOutlier(z, threshold float64) float64 {
	if z > threshold {
		return threshold
	}
	if z < -threshold {
		return -threshold
	}
	return z
}

// bayesianBlend shrinks a sample statistic toward a neutral prior
// (priorStat) in proportion to how far the sample count n falls short of
// the configured minimum sample size k: small samples lean on the prior,
// large samples converge on the raw statistic.
func bayesianBlend(sampleStat, priorStat float64, n, k int) float64 {
	return (float64(n)*sampleStat + float64(k)*priorStat) / float64(n+k)
}
