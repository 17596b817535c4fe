// Package shared holds numeric helpers used across analyzers.
package shared

import (
	"math"
	"slices"
)

// Median returns the median of values, averaging the two middle values for even counts.
// It returns 0 for an empty slice. The input is not modified.
func Median(values []float64) float64 {
	return Percentile(values, 50)
}

// Percentile returns the p-th percentile (0-100) using linear interpolation between closest
// ranks, the same definition numpy uses by default. It returns 0 for an empty slice.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return PercentileSorted(sorted, p)
}

// PercentileSorted is Percentile for an already sorted slice.
func PercentileSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	p = math.Max(0, math.Min(100, p))
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))

	if lo == hi {
		return sorted[lo]
	}

	frac := rank - float64(lo)

	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Clamp01 bounds a value to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}

	return math.Max(0, math.Min(1, v))
}

// Round2 rounds to two decimal places. Negative zero comes back as zero.
func Round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0
	}

	return r
}
