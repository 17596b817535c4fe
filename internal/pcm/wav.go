package pcm

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/farcloser/tactus/internal/types"
)

// DecodeWAV reads an integer PCM WAV file and downmixes it to a mono signal.
func DecodeWAV(r io.ReadSeeker) (*types.Signal, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWAV, err)
	}

	maxVal, err := maxValue(types.BitDepth(decoder.BitDepth))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWAV, err)
	}

	numChannels := buf.Format.NumChannels
	if numChannels <= 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidWAV)
	}

	frames := len(buf.Data) / numChannels
	samples := make([]float64, frames)

	for i := range frames {
		var sum float64

		for ch := range numChannels {
			sum += float64(buf.Data[i*numChannels+ch]) / maxVal
		}

		samples[i] = sum / float64(numChannels)
	}

	return &types.Signal{
		Samples:    samples,
		SampleRate: int(decoder.SampleRate),
	}, nil
}

// WriteWAV encodes a mono signal as a 16-bit PCM WAV file. Samples outside [-1, 1] are clipped.
func WriteWAV(w io.WriteSeeker, sig *types.Signal) error {
	data := make([]int, len(sig.Samples))

	for i, s := range sig.Samples {
		s = max(-1, min(1, s))
		data[i] = int(s * (MaxValue16 - 1))
	}

	encoder := wav.NewEncoder(w, sig.SampleRate, int(types.Depth16), 1, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sig.SampleRate,
		},
		Data:           data,
		SourceBitDepth: int(types.Depth16),
	}

	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}

	return encoder.Close()
}
