package tactus

import (
	"fmt"

	"github.com/farcloser/tactus/internal/analysis/onset"
	"github.com/farcloser/tactus/internal/analysis/shared"
	"github.com/farcloser/tactus/internal/types"
)

// DetectionConfig is one rung of the onset detection ladder.
type DetectionConfig = onset.Config

// Built-in ladder levels, strictest first.
var (
	LevelEasier = DetectionConfig{
		Name: "easier", Delta: 0.10, Wait: 2, StrengthPercentile: 55, MinSeparationMs: 55, MinIntervals: 6,
	}
	LevelStrict = DetectionConfig{
		Name: "strict", Delta: 0.25, Wait: 4, StrengthPercentile: 80, MinSeparationMs: 80, MinIntervals: 9,
	}
	LevelMedium = DetectionConfig{
		Name: "medium", Delta: 0.20, Wait: 3, StrengthPercentile: 70, MinSeparationMs: 70, MinIntervals: 8,
	}
	LevelLoose = DetectionConfig{
		Name: "loose", Delta: 0.15, Wait: 2, StrengthPercentile: 60, MinSeparationMs: 60, MinIntervals: 6,
	}
)

// BuildLadder returns the ordered detection configurations. In lenient mode the easier level is
// tried first. The returned slice is fresh on every call.
func BuildLadder(lenient bool) []DetectionConfig {
	ladder := make([]DetectionConfig, 0, 4)

	if lenient {
		ladder = append(ladder, LevelEasier)
	}

	return append(ladder, LevelStrict, LevelMedium, LevelLoose)
}

// Profile is a named set of options.
type Profile int

const (
	ProfileStandard Profile = iota // Built-in ladder, strict first.
	ProfileLenient                 // Easier level prepended. For soft attacks (bowed, legato, voice).
)

func (p Profile) String() string {
	switch p {
	case ProfileStandard:
		return "standard"
	case ProfileLenient:
		return "lenient"
	}

	return "unknown"
}

// ParseProfile converts a string to a Profile value.
func ParseProfile(s string) (Profile, error) {
	switch s {
	case "standard", "":
		return ProfileStandard, nil
	case "lenient":
		return ProfileLenient, nil
	default:
		return 0, fmt.Errorf("unknown profile %q (valid: standard, lenient)", s)
	}
}

// OptionsForProfile returns the default Options for the given profile.
func OptionsForProfile(profile Profile) Options {
	opts := DefaultOptions()
	opts.Lenient = profile == ProfileLenient

	return opts
}

// Options configures the analysis. Zero values are replaced by defaults.
type Options struct {
	// Input preconditions.
	SampleRate int     // default 44100
	MinSeconds float64 // default 15
	MaxSeconds float64 // default 90
	MinPeak    float64 // default 0.005, absolute amplitude

	// Detection.
	Lenient bool              // prepend the easier ladder level
	Ladder  []DetectionConfig // overrides BuildLadder when set
	TopN    []int             // default 60, 100, 150

	// Interval statistics.
	MinIntervalMs float64 // default 60
	MaxIntervalMs float64 // default 800
	BandFactor    float64 // rushed/dragged band in robust sigmas, default 1.25

	// Quality gate.
	MinDynamicRangeDb float64 // default 5
	MinAverageDb      float64 // default -45

	// Debug keeps per-pass diagnostics on successful results.
	Debug bool
}

// DefaultOptions returns options for the built-in standard profile.
func DefaultOptions() Options {
	return Options{
		SampleRate:        44100,
		MinSeconds:        15,
		MaxSeconds:        90,
		MinPeak:           0.005,
		TopN:              []int{60, 100, 150},
		MinIntervalMs:     60,
		MaxIntervalMs:     800,
		BandFactor:        1.25,
		MinDynamicRangeDb: 5,
		MinAverageDb:      -45,
	}
}

// Timing is the rhythm section of the output record.
type Timing struct {
	AverageOffsetMs     float64 `json:"average_offset_ms"`
	TimingVarianceMs    float64 `json:"timing_variance_ms"`
	RushedNotesPercent  float64 `json:"rushed_notes_percent"`
	DraggedNotesPercent float64 `json:"dragged_notes_percent"`
}

// Dynamics is the loudness section of the output record.
type Dynamics struct {
	AverageDb              float64 `json:"average_db"`
	DynamicRangeDb         float64 `json:"dynamic_range_db"`
	VolumeConsistencyScore float64 `json:"volume_consistency_score"`
}

// Trends is the progression section of the output record.
type Trends struct {
	TimingImproving  bool    `json:"timing_improving"`
	ConsistencyScore float64 `json:"consistency_score"`
}

// TempoSource says where TempoBPM came from.
type TempoSource string

const (
	TempoFromIntervals TempoSource = "intervals"
	TempoFromEnvelope  TempoSource = "envelope"
)

// Result is the analysis output. The JSON form is the output record only.
type Result struct {
	TempoBPM float64  `json:"tempo_bpm"`
	Timing   Timing   `json:"timing"`
	Dynamics Dynamics `json:"dynamics"`
	Trends   Trends   `json:"trends"`

	// Raw analysis results, unrounded (for inspection)
	TempoSource TempoSource             `json:"-"`
	Duration    float64                 `json:"-"` // seconds
	Onsets      []types.OnsetEvent      `json:"-"`
	Intervals   []types.Interval        `json:"-"`
	RawTiming   *types.TimingStats      `json:"-"`
	RawDynamics *types.DynamicsStats    `json:"-"`
	RawTrend    *types.TrendStats       `json:"-"`
	Diagnostics []types.PassDiagnostics `json:"-"` // only with Options.Debug

	// Recording advisories, never fatal.
	Clipping *types.ClippingDetection `json:"-"`
	DCOffset *types.DCOffsetResult    `json:"-"`
}

// Rounded returns a copy with every output record field rounded to two decimals.
func (r *Result) Rounded() *Result {
	out := *r

	out.TempoBPM = shared.Round2(r.TempoBPM)
	out.Timing = Timing{
		AverageOffsetMs:     shared.Round2(r.Timing.AverageOffsetMs),
		TimingVarianceMs:    shared.Round2(r.Timing.TimingVarianceMs),
		RushedNotesPercent:  shared.Round2(r.Timing.RushedNotesPercent),
		DraggedNotesPercent: shared.Round2(r.Timing.DraggedNotesPercent),
	}
	out.Dynamics = Dynamics{
		AverageDb:              shared.Round2(r.Dynamics.AverageDb),
		DynamicRangeDb:         shared.Round2(r.Dynamics.DynamicRangeDb),
		VolumeConsistencyScore: shared.Round2(r.Dynamics.VolumeConsistencyScore),
	}
	out.Trends.ConsistencyScore = shared.Round2(r.Trends.ConsistencyScore)

	return &out
}
