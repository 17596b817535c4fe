// Package timing computes outlier-resistant statistics over inter-onset intervals.
package timing

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/tactus/internal/analysis/ioi"
	"github.com/farcloser/tactus/internal/analysis/shared"
	"github.com/farcloser/tactus/internal/types"
)

const (
	// MADScale turns a median absolute deviation into a normal-equivalent standard deviation.
	MADScale = 1.4826
	// DefaultBandFactor is the rushed/dragged boundary in robust sigmas.
	DefaultBandFactor = 1.25

	// madEpsilonMs absorbs float noise between intervals that span the same number of frames.
	madEpsilonMs = 1e-6
)

// Compute returns median, robust sigma, average offset and rushed/dragged percentages of the
// intervals. bandFactor <= 0 means DefaultBandFactor.
func Compute(intervals []types.Interval, bandFactor float64) types.TimingStats {
	if bandFactor <= 0 {
		bandFactor = DefaultBandFactor
	}

	lengths := ioi.Lengths(intervals)
	stats := types.TimingStats{
		Deviations: make([]float64, len(lengths)),
	}

	if len(lengths) == 0 {
		return stats
	}

	stats.MedianMs = shared.Median(lengths)

	absolute := make([]float64, len(lengths))
	for i, v := range lengths {
		stats.Deviations[i] = v - stats.MedianMs
		absolute[i] = math.Abs(stats.Deviations[i])
	}

	if mad := shared.Median(absolute); mad > madEpsilonMs {
		stats.RobustSigmaMs = MADScale * mad
	}

	stats.AverageOffsetMs = stat.Mean(stats.Deviations, nil)

	if stats.RobustSigmaMs == 0 {
		return stats
	}

	stats.BandMs = bandFactor * stats.RobustSigmaMs

	var rushed, dragged int

	for _, d := range stats.Deviations {
		switch {
		case d < -stats.BandMs:
			rushed++
		case d > stats.BandMs:
			dragged++
		}
	}

	total := float64(len(stats.Deviations))
	stats.RushedPercent = float64(rushed) / total * 100
	stats.DraggedPercent = float64(dragged) / total * 100

	return stats
}

// Tempo converts a median interval to beats per minute. It returns 0 when the median is not positive.
func Tempo(medianMs float64) float64 {
	if medianMs <= 0 {
		return 0
	}

	return 60000 / medianMs
}
