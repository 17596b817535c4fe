// Package tempo estimates a global tempo from an onset strength envelope.
// It is only used when the interval statistics cannot provide one.
package tempo

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/tactus/internal/types"
)

const (
	// Default is returned when the envelope carries no periodicity.
	Default = 120.0

	minBPM   = 30.0
	maxBPM   = 300.0
	priorBPM = 120.0
	priorStd = 1.0 // octaves
)

// Estimate picks the autocorrelation lag of the envelope with the highest score inside
// [minBPM, maxBPM], weighted by a log-normal prior centered on priorBPM.
func Estimate(env *types.Envelope) float64 {
	if env == nil || len(env.Values) < 2 || env.HopLength <= 0 || env.SampleRate <= 0 {
		return Default
	}

	frameRate := env.FrameRate()
	minLag := max(1, int(math.Floor(60*frameRate/maxBPM)))
	maxLag := min(len(env.Values)-1, int(math.Ceil(60*frameRate/minBPM)))

	if minLag > maxLag {
		return Default
	}

	autocorr := autocorrelation(env.Values, maxLag)
	if autocorr[0] <= 0 {
		return Default
	}

	bestLag := 0
	bestScore := 0.0

	for lag := minLag; lag <= maxLag; lag++ {
		bpm := 60 * frameRate / float64(lag)
		octaves := math.Log2(bpm / priorBPM)
		score := autocorr[lag] / autocorr[0] * math.Exp(-0.5*(octaves/priorStd)*(octaves/priorStd))

		if score > bestScore {
			bestScore = score
			bestLag = lag
		}
	}

	if bestLag == 0 {
		return Default
	}

	return 60 * frameRate / float64(bestLag)
}

func autocorrelation(values []float64, maxLag int) []float64 {
	out := make([]float64, maxLag+1)

	for lag := range out {
		out[lag] = floats.Dot(values[:len(values)-lag], values[lag:])
	}

	return out
}
