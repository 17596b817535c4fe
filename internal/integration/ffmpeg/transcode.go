package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/tactus/internal/integration/binary"
	"github.com/farcloser/tactus/internal/types"
)

// AnalysisFormat is what the engine expects: 16-bit mono at 44.1 kHz.
var AnalysisFormat = types.PCMFormat{
	SampleRate: 44100,
	BitDepth:   types.Depth16,
	Channels:   1,
}

// Transcode decodes the first audio stream of any container ffmpeg understands, resamples and
// downmixes it, and writes raw little-endian PCM in format to output.
func Transcode(ctx context.Context, input io.Reader, output io.Writer, format types.PCMFormat) error {
	slog.Debug("ffmpeg.Transcode", "sample rate", format.SampleRate, "channels", format.Channels, "stage", "start")

	ffmpegPath, err := binary.Require(name)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffmpegPath, args(format)...)

	cmd.Stdout = output
	cmd.Stdin = input

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	if err = cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Debug("ffmpeg.Transcode", "stage", "timeout")

			return fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		slog.Debug("ffmpeg.Transcode", "stage", "error")

		return fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	slog.Debug("ffmpeg.Transcode", "stage", "done")

	return nil
}
