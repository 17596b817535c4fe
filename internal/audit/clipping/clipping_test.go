package clipping

import (
	"testing"

	"github.com/farcloser/tactus/internal/types"
)

func TestDetect(t *testing.T) {
	samples := []float64{0.1, 1, 1, 1, 0.2, -1, 0.3, -1, -1, 0, 1, 1}

	got := Detect(&types.Signal{Samples: samples, SampleRate: 44100})

	if got.Events != 3 {
		t.Errorf("expected 3 events, got %d", got.Events)
	}

	if got.ClippedSamples != 7 || got.LongestRun != 3 {
		t.Errorf("expected 7 clipped samples with a run of 3, got %+v", got)
	}

	if got.Samples != uint64(len(samples)) {
		t.Errorf("expected %d samples, got %d", len(samples), got.Samples)
	}
}

func TestDetectClean(t *testing.T) {
	got := Detect(&types.Signal{Samples: []float64{0.5, -0.99, 0.99}, SampleRate: 44100})

	if got.Events != 0 || got.ClippedSamples != 0 {
		t.Errorf("expected no clipping, got %+v", got)
	}
}
