package output

import (
	"errors"
	"fmt"
	"testing"

	"github.com/farcloser/tactus"
	"github.com/farcloser/tactus/internal/types"
)

func TestErrorEnvelopeAnalysisError(t *testing.T) {
	_, err := tactus.Analyze(&types.Signal{SampleRate: 44100}, tactus.DefaultOptions())

	env := ErrorEnvelope(fmt.Errorf("upload: %w", err), "abc")

	if env.ErrorCode != tactus.CodeAudioTooShort {
		t.Errorf("expected %s, got %s", tactus.CodeAudioTooShort, env.ErrorCode)
	}

	if env.UserMessage == "" || len(env.HowToFix) == 0 || env.DebugID != "abc" {
		t.Errorf("incomplete envelope %+v", env)
	}
}

func TestErrorEnvelopePasses(t *testing.T) {
	err := &tactus.AnalysisError{
		Kind:    tactus.ErrInsufficientOnsets,
		Code:    tactus.CodeInsufficientOnsets,
		Message: "not enough",
		Passes:  []types.PassDiagnostics{{Pass: 1, Stage: "detect"}},
	}

	env := ErrorEnvelope(err, "")

	passes, ok := env.Details["passes"].([]any)
	if !ok || len(passes) != 1 {
		t.Fatalf("expected pass diagnostics in details, got %v", env.Details)
	}

	if stage := passes[0].(map[string]any)["stage"]; stage != "detect" {
		t.Errorf("expected stage detect, got %v", stage)
	}
}

func TestErrorEnvelopeInternal(t *testing.T) {
	env := ErrorEnvelope(errors.New("disk on fire"), "id")

	if env.ErrorCode != tactus.CodeInternal {
		t.Errorf("expected internal error, got %s", env.ErrorCode)
	}

	if env.UserMessage == "disk on fire" {
		t.Error("internal error text must not reach clients")
	}
}

func TestRecordKeys(t *testing.T) {
	rec := Record(&tactus.Result{TempoBPM: 90})

	for _, key := range []string{"tempo_bpm", "timing", "dynamics", "trends"} {
		if _, ok := rec[key]; !ok {
			t.Errorf("missing %s", key)
		}
	}

	if len(rec) != 4 {
		t.Errorf("expected four keys, got %d", len(rec))
	}
}
