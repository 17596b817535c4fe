// Package trend compares timing spread early and late in a performance.
package trend

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/tactus/internal/types"
)

// Analyze splits [first, last] into thirds by time and compares the population standard deviation
// of deviations for intervals starting in the first third, [first, first+w/3), against those
// starting in the last third, [first+2w/3, last]. A third without intervals uses sigma.
// deviations[i] belongs to intervals[i].
func Analyze(intervals []types.Interval, deviations []float64, first, last, sigma float64) types.TrendStats {
	window := math.Max(1e-6, last-first)
	earlyEnd := first + window/3
	lateStart := first + 2*window/3

	var early, late []float64

	for i, iv := range intervals {
		if i >= len(deviations) {
			break
		}

		switch {
		case iv.Start >= first && iv.Start < earlyEnd:
			early = append(early, deviations[i])
		case iv.Start >= lateStart && iv.Start <= last:
			late = append(late, deviations[i])
		}
	}

	res := types.TrendStats{
		EarlySpreadMs: spread(early, sigma),
		LateSpreadMs:  spread(late, sigma),
		EarlyCount:    len(early),
		LateCount:     len(late),
	}
	res.Improving = res.LateSpreadMs < res.EarlySpreadMs

	return res
}

func spread(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}

	_, std := stat.PopMeanStdDev(values, nil)

	return std
}
