// Package onset finds note attacks in an onset strength envelope, selects the salient ones, and
// drives detection through a ladder of progressively looser configurations.
package onset

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/tactus/internal/types"
)

// Config is one rung of the detection ladder.
type Config struct {
	Name               string
	Delta              float64 // threshold above the local mean, on the [0, 1] normalized envelope
	Wait               int     // minimum frames between accepted peaks
	StrengthPercentile float64 // informational strength floor, 0-100
	MinSeparationMs    float64
	MinIntervals       int
}

// Peak picking windows, in seconds, converted to frames at the envelope rate.
const (
	preMaxSeconds  = 0.03
	postMaxSeconds = 0.0
	preAvgSeconds  = 0.10
	postAvgSeconds = 0.10
)

// Detect peak-picks the envelope under cfg and backtracks each peak to the preceding local minimum.
// An empty result is valid.
func Detect(env *types.Envelope, cfg Config) []types.OnsetEvent {
	if env == nil || len(env.Values) == 0 {
		return nil
	}

	norm := normalize(env.Values)
	rate := float64(env.SampleRate)

	preMax := int(preMaxSeconds * rate / float64(env.HopLength))
	postMax := int(postMaxSeconds*rate/float64(env.HopLength)) + 1
	preAvg := int(preAvgSeconds * rate / float64(env.HopLength))
	postAvg := int(postAvgSeconds*rate/float64(env.HopLength)) + 1

	peaks := pickPeaks(norm, preMax, postMax, preAvg, postAvg, cfg.Delta, cfg.Wait)
	minima := localMinima(norm)

	events := make([]types.OnsetEvent, 0, len(peaks))

	for _, peak := range peaks {
		frame := backtrack(peak, minima)
		events = append(events, types.OnsetEvent{
			Frame:    frame,
			Time:     env.FrameTime(frame),
			Strength: env.Values[peak],
		})
	}

	return events
}

// normalize returns a copy of values rescaled to [0, 1]. A flat input maps to all zeros.
func normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	lo, hi := floats.Min(values), floats.Max(values)

	if hi-lo <= 0 {
		return out
	}

	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}

	return out
}

// pickPeaks returns frames n where x[n] is the maximum of x[n-preMax : n+postMax], is at least
// the mean of x[n-preAvg : n+postAvg] plus delta, and lies more than wait frames after the
// previously accepted peak. Windows are truncated at the edges.
func pickPeaks(x []float64, preMax, postMax, preAvg, postAvg int, delta float64, wait int) []int {
	var peaks []int

	last := math.MinInt / 2

	for n := range x {
		lo := max(0, n-preMax)
		hi := min(len(x), n+postMax)

		if x[n] != floats.Max(x[lo:hi]) {
			continue
		}

		lo = max(0, n-preAvg)
		hi = min(len(x), n+postAvg)

		if x[n] < floats.Sum(x[lo:hi])/float64(hi-lo)+delta {
			continue
		}

		if n-last <= wait {
			continue
		}

		peaks = append(peaks, n)
		last = n
	}

	return peaks
}

// localMinima returns the frames i with x[i] <= x[i-1] and x[i] < x[i+1], with frame 0 prepended.
func localMinima(x []float64) []int {
	minima := []int{0}

	for i := 1; i+1 < len(x); i++ {
		if x[i] <= x[i-1] && x[i] < x[i+1] {
			minima = append(minima, i)
		}
	}

	return minima
}

// backtrack returns the last minimum at or before frame.
func backtrack(frame int, minima []int) int {
	best := 0

	for _, m := range minima {
		if m > frame {
			break
		}

		best = m
	}

	return best
}
