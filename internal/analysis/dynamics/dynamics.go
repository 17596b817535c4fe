// Package dynamics measures the loudness envelope of a recording relative to its own peak.
package dynamics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/tactus/internal/analysis/shared"
	"github.com/farcloser/tactus/internal/types"
)

const (
	FrameLength = 2048
	HopLength   = 512

	amin    = 1e-5
	topDb   = 80.0
	epsilon = 1e-6
)

// Analyze computes frame RMS in dB relative to the loudest frame, then reports the mean level,
// the 95th minus 5th percentile range, and a consistency score of 1 - std/range clamped to [0, 1].
func Analyze(sig *types.Signal) types.DynamicsStats {
	levels := LevelsDb(sig.Samples)

	mean, std := stat.PopMeanStdDev(levels, nil)
	low := shared.Percentile(levels, 5)
	high := shared.Percentile(levels, 95)
	dynamicRange := high - low

	return types.DynamicsStats{
		AverageDb:        mean,
		DynamicRangeDb:   dynamicRange,
		StdDevDb:         std,
		ConsistencyScore: shared.Clamp01(1 - std/(dynamicRange+epsilon)),
		Frames:           len(levels),
	}
}

// LevelsDb returns per-frame RMS levels in dB relative to the loudest frame, floored topDb below it.
// Frames are centered on multiples of HopLength with zero padding. An empty input yields a single
// 0 dB frame.
func LevelsDb(samples []float64) []float64 {
	if len(samples) == 0 {
		return []float64{0}
	}

	rms := FrameRMS(samples)

	ref := floats.Max(rms)
	if ref <= 0 {
		ref = 1
	}

	refDb := 20 * math.Log10(math.Max(amin, ref))
	levels := make([]float64, len(rms))

	for i, v := range rms {
		levels[i] = 20*math.Log10(math.Max(amin, v)) - refDb
	}

	floor := floats.Max(levels) - topDb
	for i, v := range levels {
		if v < floor {
			levels[i] = floor
		}
	}

	return levels
}

// FrameRMS returns the root mean square of each centered frame.
func FrameRMS(samples []float64) []float64 {
	numFrames := 1 + len(samples)/HopLength
	half := FrameLength / 2
	out := make([]float64, numFrames)

	for t := range numFrames {
		start := t*HopLength - half
		lo := max(0, start)
		hi := min(len(samples), start+FrameLength)

		var sum float64
		for _, s := range samples[lo:hi] {
			sum += s * s
		}

		out[t] = math.Sqrt(sum / FrameLength)
	}

	return out
}
