package dynamics

import (
	"math"
	"testing"

	"github.com/farcloser/tactus/internal/types"
)

const sampleRate = 44100

func sine(seconds, amplitude float64) []float64 {
	out := make([]float64, int(seconds*sampleRate))
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*220*float64(i)/sampleRate)
	}

	return out
}

func TestFrameRMS(t *testing.T) {
	samples := sine(1, 0.5)
	rms := FrameRMS(samples)

	if want := 1 + len(samples)/HopLength; len(rms) != want {
		t.Fatalf("expected %d frames, got %d", want, len(rms))
	}

	// A fully covered frame of a sine has RMS amplitude / sqrt(2).
	if got := rms[len(rms)/2]; math.Abs(got-0.5/math.Sqrt2) > 0.01 {
		t.Errorf("expected mid-frame RMS near %v, got %v", 0.5/math.Sqrt2, got)
	}

	// The first frame is half padding.
	if rms[0] >= rms[len(rms)/2] {
		t.Errorf("expected the padded first frame to be quieter, got %v", rms[0])
	}
}

func TestLevelsDbReferencedToPeak(t *testing.T) {
	levels := LevelsDb(sine(1, 0.3))

	var peak float64 = -1000
	for _, v := range levels {
		peak = math.Max(peak, v)
	}

	if math.Abs(peak) > 1e-9 {
		t.Errorf("expected the loudest frame at 0 dB, got %v", peak)
	}
}

func TestLevelsDbFloor(t *testing.T) {
	samples := append(sine(1, 1), make([]float64, sampleRate)...)

	for _, v := range LevelsDb(samples) {
		if v < -topDb-1e-9 {
			t.Fatalf("level %v is below the floor", v)
		}
	}
}

func TestAnalyzeSteadyTone(t *testing.T) {
	dyn := Analyze(&types.Signal{Samples: sine(20, 0.5), SampleRate: sampleRate})

	if dyn.DynamicRangeDb > 1 {
		t.Errorf("expected a flat tone to have almost no range, got %v", dyn.DynamicRangeDb)
	}

	if dyn.AverageDb > 0 || dyn.AverageDb < -1 {
		t.Errorf("expected average near 0 dB, got %v", dyn.AverageDb)
	}

	if dyn.ConsistencyScore < 0 || dyn.ConsistencyScore > 1 {
		t.Errorf("consistency out of range: %v", dyn.ConsistencyScore)
	}
}

func TestAnalyzeContrast(t *testing.T) {
	var samples []float64
	for range 10 {
		samples = append(samples, sine(1, 0.8)...)
		samples = append(samples, sine(1, 0.02)...)
	}

	dyn := Analyze(&types.Signal{Samples: samples, SampleRate: sampleRate})

	// 0.8 vs 0.02 is 32 dB.
	if dyn.DynamicRangeDb < 30 || dyn.DynamicRangeDb > 34 {
		t.Errorf("expected about 32 dB of range, got %v", dyn.DynamicRangeDb)
	}

	if dyn.ConsistencyScore < 0 || dyn.ConsistencyScore > 1 {
		t.Errorf("consistency out of range: %v", dyn.ConsistencyScore)
	}
}

func TestAnalyzeSilence(t *testing.T) {
	dyn := Analyze(&types.Signal{Samples: make([]float64, sampleRate), SampleRate: sampleRate})

	if dyn.DynamicRangeDb != 0 {
		t.Errorf("expected no range on silence, got %v", dyn.DynamicRangeDb)
	}

	if dyn.ConsistencyScore != 1 {
		t.Errorf("expected full consistency on silence, got %v", dyn.ConsistencyScore)
	}
}
