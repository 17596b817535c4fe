package tactus

import (
	"errors"
	"fmt"

	"github.com/farcloser/tactus/internal/types"
)

var (
	ErrAudioTooShort      = errors.New("audio too short")
	ErrAudioTooLong       = errors.New("audio too long")
	ErrAudioQualityPoor   = errors.New("audio quality too poor")
	ErrInsufficientOnsets = errors.New("insufficient onsets")
	ErrUnsupportedFormat  = errors.New("unsupported format")
)

// Error codes, as exposed to API clients.
const (
	CodeAudioTooShort      = "AUDIO_TOO_SHORT"
	CodeAudioTooLong       = "AUDIO_TOO_LONG"
	CodeAudioQualityPoor   = "AUDIO_QUALITY_POOR"
	CodeInsufficientOnsets = "INSUFFICIENT_ONSETS"
	CodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	CodeInternal           = "INTERNAL_ERROR"
)

// AnalysisError is a terminal analysis failure with a user-actionable explanation.
type AnalysisError struct {
	Kind     error // one of the Err sentinels
	Code     string
	Message  string
	HowToFix []string
	Details  map[string]any

	// Ladder diagnostics, set when detection ran.
	Passes []types.PassDiagnostics
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Kind
}

// CodeFor returns the client error code of err, CodeInternal when err is not an analysis failure.
func CodeFor(err error) string {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Code
	}

	return CodeInternal
}

func errEmpty() *AnalysisError {
	return &AnalysisError{
		Kind:     ErrAudioTooShort,
		Code:     CodeAudioTooShort,
		Message:  "The uploaded file contains no audio.",
		HowToFix: []string{"Record at least 15 seconds of playing with clear notes."},
	}
}

func errTooShort(duration, minSeconds float64) *AnalysisError {
	return &AnalysisError{
		Kind:    ErrAudioTooShort,
		Code:    CodeAudioTooShort,
		Message: fmt.Sprintf("Audio duration is too short (%.1fs). Minimum is %gs.", duration, minSeconds),
		HowToFix: []string{
			fmt.Sprintf("Record at least %g seconds of playing.", minSeconds),
			"Include several clear notes with consistent timing.",
		},
		Details: map[string]any{"duration_seconds": duration},
	}
}

func errTooLong(duration, maxSeconds float64) *AnalysisError {
	return &AnalysisError{
		Kind:     ErrAudioTooLong,
		Code:     CodeAudioTooLong,
		Message:  fmt.Sprintf("Audio duration is too long (%.1fs). Maximum is %gs.", duration, maxSeconds),
		HowToFix: []string{fmt.Sprintf("Trim the clip to under %g seconds and retry.", maxSeconds)},
		Details:  map[string]any{"duration_seconds": duration},
	}
}

func errTooQuiet(peak float64) *AnalysisError {
	return &AnalysisError{
		Kind:    ErrAudioQualityPoor,
		Code:    CodeAudioQualityPoor,
		Message: "The recording is too quiet for reliable analysis.",
		HowToFix: []string{
			"Move closer to the mic or use a direct input.",
			"Increase your instrument level without clipping.",
			"Reduce background noise and hum.",
		},
		Details: map[string]any{"peak": peak},
	}
}

func errSampleRate(got, want int) *AnalysisError {
	return &AnalysisError{
		Kind:     ErrUnsupportedFormat,
		Code:     CodeUnsupportedFormat,
		Message:  fmt.Sprintf("Audio must be mono PCM at %d Hz, got %d Hz.", want, got),
		HowToFix: []string{"Convert the recording before analysis, or use the process command."},
		Details:  map[string]any{"sample_rate": got},
	}
}

func errInsufficientOnsets(passes []types.PassDiagnostics) *AnalysisError {
	return &AnalysisError{
		Kind:    ErrInsufficientOnsets,
		Code:    CodeInsufficientOnsets,
		Message: "We couldn't detect enough clear note onsets to analyze timing.",
		HowToFix: []string{
			"Play with clearer, more percussive attacks.",
			"Reduce background noise and room echo.",
			"Move closer to the mic or use a direct input.",
		},
		Details: map[string]any{"passes": len(passes)},
		Passes:  passes,
	}
}

func errPoorDynamics(dyn *types.DynamicsStats) *AnalysisError {
	return &AnalysisError{
		Kind:    ErrAudioQualityPoor,
		Code:    CodeAudioQualityPoor,
		Message: "Recording quality is too poor for reliable feedback (very low dynamics or level).",
		HowToFix: []string{
			"Record closer to the mic or plug in directly.",
			"Avoid heavy noise reduction/compression that flattens dynamics.",
			"Aim for a healthy level that does not clip.",
		},
		Details: map[string]any{
			"dynamic_range_db": dyn.DynamicRangeDb,
			"average_db":       dyn.AverageDb,
		},
	}
}
