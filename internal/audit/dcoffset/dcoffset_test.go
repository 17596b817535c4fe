package dcoffset

import (
	"math"
	"testing"

	"github.com/farcloser/tactus/internal/types"
)

func TestDetect(t *testing.T) {
	samples := make([]float64, 44100)
	for i := range samples {
		samples[i] = 0.01 + 0.5*math.Sin(2*math.Pi*float64(i)/100)
	}

	got := Detect(&types.Signal{Samples: samples, SampleRate: 44100})

	if math.Abs(got.Offset-0.01) > 1e-6 {
		t.Errorf("expected offset 0.01, got %v", got.Offset)
	}

	if math.Abs(got.OffsetDb+40) > 0.01 {
		t.Errorf("expected -40 dB, got %v", got.OffsetDb)
	}
}

func TestDetectFloor(t *testing.T) {
	if got := Detect(&types.Signal{SampleRate: 44100}); got.OffsetDb != floorDb {
		t.Errorf("expected floor for empty input, got %v", got.OffsetDb)
	}

	if got := Detect(&types.Signal{Samples: make([]float64, 10), SampleRate: 44100}); got.OffsetDb != floorDb {
		t.Errorf("expected floor for silence, got %v", got.OffsetDb)
	}
}
