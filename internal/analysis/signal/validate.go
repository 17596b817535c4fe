// Package signal checks the preconditions a recording must meet before any analysis runs.
package signal

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/tactus/internal/types"
)

// Verdict is the outcome of validation.
type Verdict int

const (
	Valid Verdict = iota
	Empty
	TooQuiet
	TooShort
	TooLong
	UnsupportedRate
)

func (v Verdict) String() string {
	switch v {
	case Valid:
		return "valid"
	case Empty:
		return "empty"
	case TooQuiet:
		return "too quiet"
	case TooShort:
		return "too short"
	case TooLong:
		return "too long"
	case UnsupportedRate:
		return "unsupported sample rate"
	}

	return "unknown"
}

// Limits are the hard preconditions.
type Limits struct {
	SampleRate int     // required rate, 0 accepts any
	MinSeconds float64 // inclusive
	MaxSeconds float64 // inclusive
	MinPeak    float64 // absolute amplitude floor
}

// Report carries what was measured, for error details.
type Report struct {
	Verdict  Verdict
	Duration float64
	Peak     float64
}

// Validate runs the precondition checks in order: empty, sample rate, silence, duration.
// Silence is checked before duration so that a silent buffer is always reported as such.
func Validate(sig *types.Signal, limits Limits) Report {
	if sig == nil || len(sig.Samples) == 0 {
		return Report{Verdict: Empty}
	}

	report := Report{
		Duration: sig.Duration(),
		Peak:     Peak(sig.Samples),
	}

	switch {
	case limits.SampleRate > 0 && sig.SampleRate != limits.SampleRate:
		report.Verdict = UnsupportedRate
	case report.Peak < limits.MinPeak:
		report.Verdict = TooQuiet
	case report.Duration < limits.MinSeconds:
		report.Verdict = TooShort
	case report.Duration > limits.MaxSeconds:
		report.Verdict = TooLong
	default:
		report.Verdict = Valid
	}

	return report
}

// Peak returns the largest absolute sample value.
func Peak(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	return floats.Norm(samples, math.Inf(1))
}
