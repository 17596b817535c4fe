package onset

import (
	"fmt"

	"github.com/farcloser/tactus/internal/analysis/ioi"
	"github.com/farcloser/tactus/internal/analysis/shared"
	"github.com/farcloser/tactus/internal/types"
)

// Stage names where a pass can give up.
const (
	StageDetect    = "detect"
	StageSelect    = "select"
	StageIntervals = "intervals"
)

// DefaultBounds are the top-N sizes tried by Select, smallest first.
var DefaultBounds = []int{60, 100, 150}

// Outcome is the result of one ladder pass: either Success or Insufficient.
type Outcome interface {
	outcome()
}

// Success holds the accepted onsets and their filtered intervals.
type Success struct {
	Events    []types.OnsetEvent
	Intervals []types.Interval
}

// Insufficient means the pass did not produce a usable onset set. Stage says where it stopped.
type Insufficient struct {
	Stage string
}

func (Success) outcome()      {}
func (Insufficient) outcome() {}

// Ladder is the ordered sequence of configurations plus the settings shared by every pass.
type Ladder struct {
	Configs []Config
	Bounds  []int
	Window  ioi.Window
}

// Run executes a single pass and returns its outcome and counters.
func Run(env *types.Envelope, cfg Config, bounds []int, window ioi.Window) (Outcome, types.PassDiagnostics) {
	diag := types.PassDiagnostics{
		Config: describe(cfg),
	}

	events := Detect(env, cfg)
	diag.RawOnsets = len(events)

	if len(events) == 0 {
		diag.Stage = StageDetect

		return Insufficient{Stage: StageDetect}, diag
	}

	strengths := make([]float64, len(events))
	for i, ev := range events {
		strengths[i] = ev.Strength
	}

	diag.StrengthFloor = shared.Percentile(strengths, cfg.StrengthPercentile)

	sel := Select(events, cfg.MinSeparationMs, bounds)
	diag.TopN = sel.TopN
	diag.AfterTopN = sel.AfterTopN
	diag.RelaxedSeparation = sel.RelaxedSeparation
	diag.AfterMinSep = len(sel.Events)

	if len(sel.Events) < 2 {
		diag.Stage = StageSelect

		return Insufficient{Stage: StageSelect}, diag
	}

	times := make([]float64, len(sel.Events))
	for i, ev := range sel.Events {
		times[i] = ev.Time
	}

	filtered := ioi.Filter(times, window)
	diag.IntervalsRaw = filtered.Raw
	diag.RejectedTooShort = filtered.TooShort
	diag.RejectedTooLong = filtered.TooLong
	diag.IntervalsKept = len(filtered.Intervals)

	if len(filtered.Intervals) < cfg.MinIntervals {
		diag.Stage = StageIntervals

		return Insufficient{Stage: StageIntervals}, diag
	}

	diag.Accepted = true

	return Success{Events: sel.Events, Intervals: filtered.Intervals}, diag
}

// RunLadder tries each configuration in order and stops at the first Success. Looser
// configurations are never tried once a stricter one succeeds. The returned outcome is the last
// pass's, so it is Insufficient when the whole ladder is exhausted.
func RunLadder(env *types.Envelope, ladder Ladder) (Outcome, []types.PassDiagnostics) {
	bounds := ladder.Bounds
	if len(bounds) == 0 {
		bounds = DefaultBounds
	}

	var (
		outcome Outcome = Insufficient{Stage: StageDetect}
		passes  []types.PassDiagnostics
	)

	for i, cfg := range ladder.Configs {
		var diag types.PassDiagnostics

		outcome, diag = Run(env, cfg, bounds, ladder.Window)
		diag.Pass = i + 1
		passes = append(passes, diag)

		if _, ok := outcome.(Success); ok {
			break
		}
	}

	return outcome, passes
}

func describe(cfg Config) string {
	return fmt.Sprintf("%s(delta=%.2f wait=%d percentile=%.0f min_sep_ms=%.0f min_intervals=%d)",
		cfg.Name, cfg.Delta, cfg.Wait, cfg.StrengthPercentile, cfg.MinSeparationMs, cfg.MinIntervals)
}
