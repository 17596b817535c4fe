//nolint:wrapcheck
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/tactus"
	"github.com/farcloser/tactus/internal/output"
	"github.com/farcloser/tactus/internal/types"
)

func outputResult(name string, result *tactus.Result, formatName string, debug bool) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	var meta map[string]any
	if debug {
		for _, pass := range result.Diagnostics {
			slog.Debug("onset pass", "pass", pass.Pass, "config", pass.Config, "raw", pass.RawOnsets,
				"selected", pass.AfterMinSep, "intervals", pass.IntervalsKept, "accepted", pass.Accepted)
		}

		meta = output.ResultToMap(result)
	} else {
		meta = buildFriendlyOutput(result)
	}

	data := &format.Data{
		Object: name,
		Meta:   meta,
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

// outputError prints the user-facing explanation of an analysis failure. Other errors are left
// to main.
func outputError(name string, err error, formatName string) error {
	if tactus.CodeFor(err) == tactus.CodeInternal {
		return nil
	}

	env := output.ErrorEnvelope(err, "")

	for _, pass := range output.PassesToMap(passesOf(err)) {
		slog.Debug("onset pass", "diagnostics", pass)
	}

	formatter, fmtErr := format.GetFormatter(formatName)
	if fmtErr != nil {
		return fmtErr
	}

	meta := map[string]any{
		"error_code": env.ErrorCode,
		"message":    env.UserMessage,
		"how_to_fix": env.HowToFix,
	}

	if len(env.Details) > 0 {
		meta["details"] = env.Details
	}

	return formatter.PrintAll([]*format.Data{{Object: name, Meta: meta}}, os.Stdout)
}

// buildFriendlyOutput creates a readable summary of the analysis.
func buildFriendlyOutput(result *tactus.Result) map[string]any {
	meta := map[string]any{
		"summary": fmt.Sprintf("%.0f BPM, timing +/- %.1f ms, %s",
			result.TempoBPM, result.Timing.TimingVarianceMs, steadinessLabel(result.Timing.TimingVarianceMs)),
		"record": output.Record(result),
	}

	meta["timing"] = fmt.Sprintf("%.0f%% rushed, %.0f%% dragged, average offset %+.1f ms (%s)",
		result.Timing.RushedNotesPercent, result.Timing.DraggedNotesPercent, result.Timing.AverageOffsetMs,
		feelLabel(result.Timing.RushedNotesPercent, result.Timing.DraggedNotesPercent))

	meta["dynamics"] = fmt.Sprintf("%.1f dB average, %.1f dB range, volume consistency %.2f",
		result.Dynamics.AverageDb, result.Dynamics.DynamicRangeDb, result.Dynamics.VolumeConsistencyScore)

	trend := "timing got looser toward the end"
	if result.Trends.TimingImproving {
		trend = "timing tightened up toward the end"
	}

	meta["trend"] = fmt.Sprintf("%s, overall consistency %.2f", trend, result.Trends.ConsistencyScore)

	if result.TempoSource == tactus.TempoFromEnvelope {
		meta["note"] = "tempo estimated from the onset envelope"
	}

	if warnings := advisories(result); len(warnings) > 0 {
		meta["warnings"] = warnings
	}

	return meta
}

// advisories lists recording problems that did not prevent the analysis.
func advisories(result *tactus.Result) []string {
	const dcOffsetWarnDb = -40

	var warnings []string

	if r := result.Clipping; r != nil && r.Events > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"recording clips in %d places (longest run %d samples), lower the input gain", r.Events, r.LongestRun))
	}

	if r := result.DCOffset; r != nil && r.OffsetDb > dcOffsetWarnDb {
		warnings = append(warnings, fmt.Sprintf(
			"DC offset of %.1f dB, check the interface or cable", r.OffsetDb))
	}

	return warnings
}

func steadinessLabel(sigmaMs float64) string {
	switch {
	case sigmaMs < 10:
		return "machine-tight"
	case sigmaMs < 25:
		return "good"
	case sigmaMs < 50:
		return "loose"
	default:
		return "unsteady"
	}
}

func feelLabel(rushed, dragged float64) string {
	const balanced = 12

	switch {
	case rushed < balanced && dragged < balanced:
		return "balanced"
	case rushed > dragged:
		return "tends to push ahead"
	default:
		return "tends to lay back"
	}
}

func passesOf(err error) []types.PassDiagnostics {
	var ae *tactus.AnalysisError
	if errors.As(err, &ae) {
		return ae.Passes
	}

	return nil
}
