package tactus

import (
	"context"
	"math"

	"github.com/farcloser/tactus/internal/analysis/dynamics"
	"github.com/farcloser/tactus/internal/analysis/envelope"
	"github.com/farcloser/tactus/internal/analysis/ioi"
	"github.com/farcloser/tactus/internal/analysis/onset"
	"github.com/farcloser/tactus/internal/analysis/quality"
	"github.com/farcloser/tactus/internal/analysis/shared"
	"github.com/farcloser/tactus/internal/analysis/signal"
	"github.com/farcloser/tactus/internal/analysis/tempo"
	"github.com/farcloser/tactus/internal/analysis/timing"
	"github.com/farcloser/tactus/internal/analysis/trend"
	"github.com/farcloser/tactus/internal/audit/clipping"
	"github.com/farcloser/tactus/internal/audit/dcoffset"
	"github.com/farcloser/tactus/internal/types"
)

/*
Usage:

sig, err := pcm.DecodeWAV(file)
result, err := tactus.Analyze(sig, tactus.DefaultOptions())
fmt.Printf("%.0f BPM, +/- %.1f ms\n", result.TempoBPM, result.Timing.TimingVarianceMs)

// Soft attacks (bowed strings, voice)
opts := tactus.OptionsForProfile(tactus.ProfileLenient)
result, err := tactus.Analyze(sig, opts)

// Failures carry a reason and remediation
var ae *tactus.AnalysisError
if errors.As(err, &ae) {
    fmt.Println(ae.Message)
    for _, fix := range ae.HowToFix {
        fmt.Println(" -", fix)
    }
}

if errors.Is(err, tactus.ErrInsufficientOnsets) {
    for _, pass := range ae.Passes {
        fmt.Printf("%s: %d raw onsets, %d intervals\n", pass.Config, pass.RawOnsets, pass.IntervalsKept)
    }
}

// Bounded wall clock
ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
defer cancel()
result, err := tactus.AnalyzeContext(ctx, sig, opts)
*/

// Analyze measures timing and dynamics of a mono recording. It fails fast: every check runs
// only if the previous one passed, and no partial result is ever returned.
func Analyze(sig *types.Signal, opts Options) (*Result, error) {
	applyDefaults(&opts)

	report := signal.Validate(sig, signal.Limits{
		SampleRate: opts.SampleRate,
		MinSeconds: opts.MinSeconds,
		MaxSeconds: opts.MaxSeconds,
		MinPeak:    opts.MinPeak,
	})

	switch report.Verdict {
	case signal.Valid:
	case signal.Empty:
		return nil, errEmpty()
	case signal.UnsupportedRate:
		return nil, errSampleRate(sig.SampleRate, opts.SampleRate)
	case signal.TooQuiet:
		return nil, errTooQuiet(report.Peak)
	case signal.TooShort:
		return nil, errTooShort(report.Duration, opts.MinSeconds)
	case signal.TooLong:
		return nil, errTooLong(report.Duration, opts.MaxSeconds)
	}

	env := envelope.Build(sig)

	outcome, passes := onset.RunLadder(env, onset.Ladder{
		Configs: opts.Ladder,
		Bounds:  opts.TopN,
		Window:  ioi.Window{MinMs: opts.MinIntervalMs, MaxMs: opts.MaxIntervalMs},
	})

	success, ok := outcome.(onset.Success)
	if !ok {
		return nil, errInsufficientOnsets(passes)
	}

	stats := timing.Compute(success.Intervals, opts.BandFactor)

	result := &Result{
		TempoSource: TempoFromIntervals,
		Duration:    report.Duration,
		Onsets:      success.Events,
		Intervals:   success.Intervals,
		RawTiming:   &stats,
		Clipping:    clipping.Detect(sig),
		DCOffset:    dcoffset.Detect(sig),
	}

	result.TempoBPM = timing.Tempo(stats.MedianMs)
	if result.TempoBPM == 0 {
		result.TempoBPM = tempo.Estimate(env)
		result.TempoSource = TempoFromEnvelope
	}

	dyn := dynamics.Analyze(sig)
	result.RawDynamics = &dyn

	first := success.Events[0].Time
	last := success.Events[len(success.Events)-1].Time
	tr := trend.Analyze(success.Intervals, stats.Deviations, first, last, stats.RobustSigmaMs)
	result.RawTrend = &tr

	result.Timing = Timing{
		AverageOffsetMs:     stats.AverageOffsetMs,
		TimingVarianceMs:    stats.RobustSigmaMs,
		RushedNotesPercent:  stats.RushedPercent,
		DraggedNotesPercent: stats.DraggedPercent,
	}
	result.Dynamics = Dynamics{
		AverageDb:              dyn.AverageDb,
		DynamicRangeDb:         dyn.DynamicRangeDb,
		VolumeConsistencyScore: dyn.ConsistencyScore,
	}
	result.Trends = Trends{
		TimingImproving:  tr.Improving,
		ConsistencyScore: ConsistencyScore(stats.RobustSigmaMs, dyn.ConsistencyScore),
	}

	if opts.Debug {
		result.Diagnostics = passes
	}

	gate := quality.Gate{MinDynamicRangeDb: opts.MinDynamicRangeDb, MinAverageDb: opts.MinAverageDb}
	if quality.Check(dyn, gate) != quality.None {
		return nil, errPoorDynamics(&dyn)
	}

	return result.Rounded(), nil
}

// AnalyzeContext runs Analyze on its own goroutine and returns ctx.Err() if ctx is done first.
// The abandoned computation runs to completion in the background and its result is discarded.
func AnalyzeContext(ctx context.Context, sig *types.Signal, opts Options) (*Result, error) {
	type outcome struct {
		result *Result
		err    error
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan outcome, 1)

	go func() {
		result, err := Analyze(sig, opts)
		done <- outcome{result, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-done:
		return out.result, out.err
	}
}

// ConsistencyScore blends timing spread (normalized against 100 ms) and volume consistency
// equally. The result is always in [0, 1].
func ConsistencyScore(robustSigmaMs, volumeConsistency float64) float64 {
	timingNorm := math.Min(1, robustSigmaMs/100)

	return shared.Clamp01(0.5*(1-timingNorm) + 0.5*volumeConsistency)
}

func applyDefaults(opts *Options) {
	defaults := DefaultOptions()

	if opts.SampleRate == 0 {
		opts.SampleRate = defaults.SampleRate
	}

	if opts.MinSeconds == 0 {
		opts.MinSeconds = defaults.MinSeconds
	}

	if opts.MaxSeconds == 0 {
		opts.MaxSeconds = defaults.MaxSeconds
	}

	if opts.MinPeak == 0 {
		opts.MinPeak = defaults.MinPeak
	}

	if len(opts.Ladder) == 0 {
		opts.Ladder = BuildLadder(opts.Lenient)
	}

	if len(opts.TopN) == 0 {
		opts.TopN = defaults.TopN
	}

	if opts.MinIntervalMs == 0 {
		opts.MinIntervalMs = defaults.MinIntervalMs
	}

	if opts.MaxIntervalMs == 0 {
		opts.MaxIntervalMs = defaults.MaxIntervalMs
	}

	if opts.BandFactor == 0 {
		opts.BandFactor = defaults.BandFactor
	}

	if opts.MinDynamicRangeDb == 0 {
		opts.MinDynamicRangeDb = defaults.MinDynamicRangeDb
	}

	if opts.MinAverageDb == 0 {
		opts.MinAverageDb = defaults.MinAverageDb
	}
}
