package tests_test

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"

	"github.com/farcloser/tactus/internal/pcm"
	"github.com/farcloser/tactus/internal/types"
)

const sampleRate = 44100

// plucked returns seconds of decaying 220 Hz notes every periodMs.
func plucked(seconds, periodMs float64) *types.Signal {
	samples := make([]float64, int(seconds*sampleRate))
	period := int(periodMs * sampleRate / 1000)

	for start := sampleRate / 4; start < len(samples); start += period {
		for i := 0; i < period && start+i < len(samples); i++ {
			t := float64(i) / sampleRate
			samples[start+i] = 0.8 * math.Exp(-t/0.15) * math.Sin(2*math.Pi*220*t)
		}
	}

	return &types.Signal{Samples: samples, SampleRate: sampleRate}
}

func silent(seconds float64) *types.Signal {
	return &types.Signal{Samples: make([]float64, int(seconds*sampleRate)), SampleRate: sampleRate}
}

// writeWAV saves sig as a 16-bit mono WAV in the test temp directory and returns its path.
func writeWAV(data test.Data, helpers test.Helpers, name string, sig *types.Signal) string {
	path := data.Temp().Path(name)

	file, err := os.Create(path)
	if err == nil {
		err = pcm.WriteWAV(file, sig)

		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}

	if err != nil {
		helpers.T().Log(fmt.Sprintf("writing fixture %s: %v", name, err))
		helpers.T().FailNow()
	}

	return path
}

// writeRaw saves sig as headerless 16-bit little-endian PCM and returns its path.
func writeRaw(data test.Data, helpers test.Helpers, name string, sig *types.Signal) string {
	path := data.Temp().Path(name)

	out := make([]byte, 2*len(sig.Samples))
	for i, v := range sig.Samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(v*32767)))
	}

	if err := os.WriteFile(path, out, 0o600); err != nil {
		helpers.T().Log(fmt.Sprintf("writing fixture %s: %v", name, err))
		helpers.T().FailNow()
	}

	return path
}

// expectContains returns a comparator verifying the output contains a substring.
func expectContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("expected substring %q not found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// sparse returns seconds of short pulses every periodMs, too far apart to measure timing.
func sparse(seconds, periodMs float64) *types.Signal {
	samples := make([]float64, int(seconds*sampleRate))
	period := int(periodMs * sampleRate / 1000)

	for start := period; start+64 < len(samples); start += period {
		for i := range 64 {
			samples[start+i] = 0.9
		}
	}

	return &types.Signal{Samples: samples, SampleRate: sampleRate}
}
