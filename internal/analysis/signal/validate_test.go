package signal

import (
	"testing"

	"github.com/farcloser/tactus/internal/types"
)

var limits = Limits{SampleRate: 44100, MinSeconds: 15, MaxSeconds: 90, MinPeak: 0.005}

func constant(seconds float64, value float64) *types.Signal {
	samples := make([]float64, int(seconds*44100))
	for i := range samples {
		if i%2 == 0 {
			samples[i] = value
		} else {
			samples[i] = -value
		}
	}

	return &types.Signal{Samples: samples, SampleRate: 44100}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		sig  *types.Signal
		want Verdict
	}{
		{"nil", nil, Empty},
		{"empty", &types.Signal{SampleRate: 44100}, Empty},
		{"10s is too short", constant(10, 0.5), TooShort},
		{"95s is too long", constant(95, 0.5), TooLong},
		{"30s is valid", constant(30, 0.5), Valid},
		{"15s boundary is valid", constant(15, 0.5), Valid},
		{"silent 30s is too quiet", constant(30, 0), TooQuiet},
		{"silent 10s is too quiet, not too short", constant(10, 0), TooQuiet},
		{"silent 95s is too quiet, not too long", constant(95, 0), TooQuiet},
		{"below floor is too quiet", constant(30, 0.004), TooQuiet},
		{"wrong rate", &types.Signal{Samples: []float64{0.5}, SampleRate: 48000}, UnsupportedRate},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Validate(c.sig, limits).Verdict; got != c.want {
				t.Errorf("expected %s, got %s", c.want, got)
			}
		})
	}
}

func TestValidateReportsMeasurements(t *testing.T) {
	report := Validate(constant(20, 0.25), limits)

	if report.Peak != 0.25 {
		t.Errorf("expected peak 0.25, got %v", report.Peak)
	}

	if report.Duration != 20 {
		t.Errorf("expected duration 20, got %v", report.Duration)
	}
}

func TestPeak(t *testing.T) {
	if got := Peak([]float64{0.1, -0.7, 0.3}); got != 0.7 {
		t.Errorf("expected 0.7, got %v", got)
	}

	if got := Peak(nil); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}
