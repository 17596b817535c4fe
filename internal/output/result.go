// Package output provides shared result serialization for tactus JSON output.
package output

import (
	"github.com/farcloser/tactus"
	"github.com/farcloser/tactus/internal/types"
)

// Record converts the output record of a result into a map, keyed as in its JSON form.
func Record(result *tactus.Result) map[string]any {
	return map[string]any{
		"tempo_bpm": result.TempoBPM,
		"timing": map[string]any{
			"average_offset_ms":     result.Timing.AverageOffsetMs,
			"timing_variance_ms":    result.Timing.TimingVarianceMs,
			"rushed_notes_percent":  result.Timing.RushedNotesPercent,
			"dragged_notes_percent": result.Timing.DraggedNotesPercent,
		},
		"dynamics": map[string]any{
			"average_db":               result.Dynamics.AverageDb,
			"dynamic_range_db":         result.Dynamics.DynamicRangeDb,
			"volume_consistency_score": result.Dynamics.VolumeConsistencyScore,
		},
		"trends": map[string]any{
			"timing_improving":  result.Trends.TimingImproving,
			"consistency_score": result.Trends.ConsistencyScore,
		},
	}
}

// ResultToMap converts an analysis result into the canonical map structure
// used for JSON and JSONL serialization: the output record plus raw analyzer data.
func ResultToMap(result *tactus.Result) map[string]any {
	meta := map[string]any{
		"record":       Record(result),
		"tempo_source": string(result.TempoSource),
		"duration_sec": result.Duration,
		"onsets":       len(result.Onsets),
		"intervals":    len(result.Intervals),
	}

	if r := result.RawTiming; r != nil {
		meta["timing"] = map[string]any{
			"median_ms":         r.MedianMs,
			"robust_sigma_ms":   r.RobustSigmaMs,
			"average_offset_ms": r.AverageOffsetMs,
			"band_ms":           r.BandMs,
			"rushed_percent":    r.RushedPercent,
			"dragged_percent":   r.DraggedPercent,
		}
	}

	if r := result.RawDynamics; r != nil {
		meta["dynamics"] = map[string]any{
			"average_db":        r.AverageDb,
			"dynamic_range_db":  r.DynamicRangeDb,
			"std_dev_db":        r.StdDevDb,
			"consistency_score": r.ConsistencyScore,
			"frames":            r.Frames,
		}
	}

	if r := result.RawTrend; r != nil {
		meta["trend"] = map[string]any{
			"improving":       r.Improving,
			"early_spread_ms": r.EarlySpreadMs,
			"late_spread_ms":  r.LateSpreadMs,
			"early_count":     r.EarlyCount,
			"late_count":      r.LateCount,
		}
	}

	if r := result.Clipping; r != nil {
		meta["clipping"] = map[string]any{
			"events":          r.Events,
			"clipped_samples": r.ClippedSamples,
			"longest_run":     r.LongestRun,
		}
	}

	if r := result.DCOffset; r != nil {
		meta["dc_offset"] = map[string]any{
			"offset":    r.Offset,
			"offset_db": r.OffsetDb,
		}
	}

	if len(result.Diagnostics) > 0 {
		meta["passes"] = PassesToMap(result.Diagnostics)
	}

	return meta
}

// PassesToMap converts ladder diagnostics to a list of maps.
func PassesToMap(passes []types.PassDiagnostics) []any {
	out := make([]any, 0, len(passes))

	for _, p := range passes {
		entry := map[string]any{
			"pass":              p.Pass,
			"config":            p.Config,
			"raw_onsets":        p.RawOnsets,
			"strength_floor":    p.StrengthFloor,
			"after_top_n":       p.AfterTopN,
			"after_min_sep":     p.AfterMinSep,
			"intervals_raw":     p.IntervalsRaw,
			"rejected_too_fast": p.RejectedTooShort,
			"rejected_too_slow": p.RejectedTooLong,
			"intervals_kept":    p.IntervalsKept,
			"accepted":          p.Accepted,
		}

		if p.TopN > 0 {
			entry["top_n"] = p.TopN
		}

		if p.RelaxedSeparation > 0 {
			entry["relaxed_separation_ms"] = p.RelaxedSeparation
		}

		if p.Stage != "" {
			entry["stage"] = p.Stage
		}

		out = append(out, entry)
	}

	return out
}
