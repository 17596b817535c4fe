package pcm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/farcloser/tactus/internal/types"
)

func int16Bytes(values ...int16) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}

	return buf.Bytes()
}

func TestDecodeMono16Stereo(t *testing.T) {
	// Two stereo frames: (16384, 0) and (-32768, -32768).
	data := int16Bytes(16384, 0, -32768, -32768)

	sig, err := DecodeMono(bytes.NewReader(data), types.PCMFormat{
		SampleRate: 44100,
		BitDepth:   types.Depth16,
		Channels:   2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sig.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(sig.Samples))
	}

	if math.Abs(sig.Samples[0]-0.25) > 1e-9 {
		t.Errorf("sample 0: expected 0.25, got %v", sig.Samples[0])
	}

	if sig.Samples[1] != -1 {
		t.Errorf("sample 1: expected -1, got %v", sig.Samples[1])
	}
}

func TestDecodeMonoShortReads(t *testing.T) {
	data := int16Bytes(100, 200, 300, 400, 500, 600)

	sig, err := DecodeMono(iotest.OneByteReader(bytes.NewReader(data)), types.PCMFormat{
		SampleRate: 44100,
		BitDepth:   types.Depth16,
		Channels:   2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sig.Samples) != 3 {
		t.Fatalf("expected 3 samples across byte-sized reads, got %d", len(sig.Samples))
	}

	if want := 150 / MaxValue16; math.Abs(sig.Samples[0]-want) > 1e-12 {
		t.Errorf("sample 0: expected %v, got %v", want, sig.Samples[0])
	}
}

func TestDecodeMono24(t *testing.T) {
	// -1 in 24-bit two's complement, then max positive.
	data := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F}

	sig, err := DecodeMono(bytes.NewReader(data), types.PCMFormat{
		SampleRate: 44100,
		BitDepth:   types.Depth24,
		Channels:   1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := -1 / MaxValue24; sig.Samples[0] != want {
		t.Errorf("sample 0: expected %v, got %v", want, sig.Samples[0])
	}

	if sig.Samples[1] <= 0.99 {
		t.Errorf("sample 1: expected near 1, got %v", sig.Samples[1])
	}
}

func TestDecodeMonoInvalidFormat(t *testing.T) {
	_, err := DecodeMono(bytes.NewReader(nil), types.PCMFormat{SampleRate: 44100, BitDepth: 8, Channels: 1})
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}

	_, err = DecodeMono(bytes.NewReader(nil), types.PCMFormat{SampleRate: 0, BitDepth: types.Depth16, Channels: 1})
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat for zero sample rate, got %v", err)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	sig := &types.Signal{SampleRate: 44100, Samples: make([]float64, 4410)}
	for i := range sig.Samples {
		sig.Samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/44100)
	}

	path := filepath.Join(t.TempDir(), "tone.wav")

	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := WriteWAV(file, sig); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	file.Close()

	file, err = os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	decoded, err := DecodeWAV(file)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}

	if decoded.SampleRate != 44100 {
		t.Errorf("expected 44100 Hz, got %d", decoded.SampleRate)
	}

	if len(decoded.Samples) != len(sig.Samples) {
		t.Fatalf("expected %d samples, got %d", len(sig.Samples), len(decoded.Samples))
	}

	for i := range sig.Samples {
		if math.Abs(decoded.Samples[i]-sig.Samples[i]) > 1e-3 {
			t.Fatalf("sample %d: expected %v, got %v", i, sig.Samples[i], decoded.Samples[i])
		}
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	_, err := DecodeWAV(bytes.NewReader([]byte("definitely not a wav file")))
	if !errors.Is(err, ErrInvalidWAV) {
		t.Errorf("expected ErrInvalidWAV, got %v", err)
	}
}
