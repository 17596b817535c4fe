// Package ioi turns onset times into inter-onset intervals and drops implausible ones.
package ioi

import "github.com/farcloser/tactus/internal/types"

// Window is the inclusive range of plausible interval lengths.
type Window struct {
	MinMs float64
	MaxMs float64
}

// DefaultWindow spans roughly 1000 BPM sixteenths down to 75 BPM quarters.
var DefaultWindow = Window{MinMs: 60, MaxMs: 800}

// Result holds the kept intervals and rejection counts.
type Result struct {
	Intervals []types.Interval
	Raw       int
	TooShort  int
	TooLong   int
}

// Filter computes consecutive gaps between chronologically ordered times (seconds) and keeps
// the ones inside window, each tagged with the time of its first onset. Gaps are judged
// independently. A zero window means DefaultWindow.
func Filter(times []float64, window Window) Result {
	if window == (Window{}) {
		window = DefaultWindow
	}

	var res Result

	for i := 1; i < len(times); i++ {
		gap := (times[i] - times[i-1]) * 1000
		res.Raw++

		switch {
		case gap < window.MinMs:
			res.TooShort++
		case gap > window.MaxMs:
			res.TooLong++
		default:
			res.Intervals = append(res.Intervals, types.Interval{Start: times[i-1], Ms: gap})
		}
	}

	return res
}

// Lengths returns the interval lengths in milliseconds.
func Lengths(intervals []types.Interval) []float64 {
	out := make([]float64, len(intervals))
	for i, iv := range intervals {
		out[i] = iv.Ms
	}

	return out
}
