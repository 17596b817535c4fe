// Package pcm turns raw PCM streams and WAV files into normalized mono signals.
package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/tactus/internal/types"
)

var (
	ErrInvalidFormat = errors.New("invalid PCM format")
	ErrInvalidWAV    = errors.New("invalid WAV file")
)

func maxValue(depth types.BitDepth) (float64, error) {
	switch depth {
	case types.Depth16:
		return MaxValue16, nil
	case types.Depth24:
		return MaxValue24, nil
	case types.Depth32:
		return MaxValue32, nil
	default:
		return 0, fmt.Errorf("%w: bit depth %d", ErrInvalidFormat, depth)
	}
}

// DecodeMono reads interleaved little-endian signed PCM and downmixes it to a mono signal.
// Trailing bytes that do not form a complete frame are dropped.
func DecodeMono(r io.Reader, format types.PCMFormat) (*types.Signal, error) {
	if format.SampleRate <= 0 || format.Channels == 0 {
		return nil, fmt.Errorf("%w: %d Hz, %d channels", ErrInvalidFormat, format.SampleRate, format.Channels)
	}

	maxVal, err := maxValue(format.BitDepth)
	if err != nil {
		return nil, err
	}

	bytesPerSample := int(format.BitDepth / 8) //nolint:gosec // bit depth and channel count are small constants
	numChannels := int(format.Channels)        //nolint:gosec // bit depth and channel count are small constants
	frameSize := bytesPerSample * numChannels

	buf := make([]byte, frameSize*4096)
	pending := 0
	samples := make([]float64, 0, format.SampleRate*30)

	for {
		n, err := r.Read(buf[pending:])
		n += pending

		completeFrames := (n / frameSize) * frameSize
		data := buf[:completeFrames]

		for i := 0; i < len(data); i += frameSize {
			var sum float64

			for ch := range numChannels {
				offset := i + ch*bytesPerSample

				switch format.BitDepth {
				case types.Depth16:
					sum += float64(int16(binary.LittleEndian.Uint16(data[offset:]))) / maxVal
				case types.Depth24:
					raw := int32(data[offset]) | int32(data[offset+1])<<8 | int32(data[offset+2])<<16
					if raw&0x800000 != 0 {
						raw |= ^0xFFFFFF
					}

					sum += float64(raw) / maxVal
				case types.Depth32:
					sum += float64(int32(binary.LittleEndian.Uint32(data[offset:]))) / maxVal
				}
			}

			samples = append(samples, sum/float64(numChannels))
		}

		// Carry a partial frame over to the next read.
		pending = copy(buf, buf[completeFrames:n])

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}
	}

	return &types.Signal{
		Samples:    samples,
		SampleRate: format.SampleRate,
	}, nil
}
