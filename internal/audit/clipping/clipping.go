package clipping

import (
	"math"

	"github.com/farcloser/tactus/internal/types"
)

// Level is the magnitude at which a normalized sample counts as full scale: the largest positive
// 16-bit value, which also covers deeper formats.
const Level = 1 - 1.0/32768

// minRun is the number of consecutive full-scale samples that make a clipping event. A single
// full-scale sample is a legitimate peak.
const minRun = 2

// Detect counts runs of consecutive full-scale samples.
func Detect(sig *types.Signal) *types.ClippingDetection {
	result := &types.ClippingDetection{Samples: uint64(len(sig.Samples))}

	var consecutive uint64

	flush := func() {
		if consecutive >= minRun {
			result.Events++
			result.ClippedSamples += consecutive
			result.LongestRun = max(result.LongestRun, consecutive)
		}

		consecutive = 0
	}

	for _, v := range sig.Samples {
		if math.Abs(v) >= Level {
			consecutive++

			continue
		}

		flush()
	}

	// Trailing run.
	flush()

	return result
}
