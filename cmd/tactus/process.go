//nolint:wrapcheck
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/tactus/internal/integration/ffmpeg"
	"github.com/farcloser/tactus/internal/integration/ffprobe"
	"github.com/farcloser/tactus/internal/pcm"
)

var errProcessArgs = errors.New("expected exactly one argument: file path")

func processCommand() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "Transcode any audio file to 44.1 kHz mono and analyze it",
		ArgsUsage: "<file>",
		Flags:     analysisFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errProcessArgs, cmd.NArg())
			}

			filePath := cmd.Args().First()

			probeResult, err := ffprobe.Probe(ctx, filePath)
			if err != nil {
				return fmt.Errorf("probing file: %w", err)
			}

			stream, err := probeResult.AudioStream(0)
			if err != nil {
				return err
			}

			slog.Debug("probed", "file", filePath, "codec", stream.CodecName,
				"sample rate", stream.SampleRate, "channels", stream.Channels, "duration", probeResult.Duration())

			file, err := os.Open(filePath) //nolint:gosec // CLI tool opens user-specified audio files
			if err != nil {
				return fmt.Errorf("opening file: %w", err)
			}
			defer file.Close()

			var pcmBuf bytes.Buffer

			if err = ffmpeg.Transcode(ctx, file, &pcmBuf, ffmpeg.AnalysisFormat); err != nil {
				return fmt.Errorf("transcoding: %w", err)
			}

			sig, err := pcm.DecodeMono(&pcmBuf, ffmpeg.AnalysisFormat)
			if err != nil {
				return err
			}

			return runAnalysis(ctx, cmd, filePath, sig)
		},
	}
}
