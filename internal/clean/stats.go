package clean

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// mean returns the arithmetic mean of vals, or 0 for an empty slice.
func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, nil)
}

// meanStdDev returns the mean and population standard deviation (divide by
// n, matching scipy's zscore default).
func meanStdDev(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	m := stat.Mean(vals, nil)
	return m, math.Sqrt(stat.PopVariance(vals, nil))
}

// percentile returns the p-th quantile of vals (p in [0,1]) using linear
// interpolation between order statistics, the same scheme numpy and pandas
// default to. Returns 0 for an empty slice. The input is not modified.
func percentile(vals []float64, p float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, vals)
	slices.Sort(sorted)

	idx := p * float64(n-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi || hi >= n {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// median returns the 50th percentile of vals.
func median(vals []float64) float64 {
	return percentile(vals, 0.5)
}

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
