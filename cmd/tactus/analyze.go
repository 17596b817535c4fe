//nolint:wrapcheck
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/tactus"
	"github.com/farcloser/tactus/internal/pcm"
	"github.com/farcloser/tactus/internal/types"
)

var errInvalidArgCount = errors.New("expected exactly one argument: file path or \"-\" for stdin")

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze a WAV file or raw PCM for timing and dynamics",
		ArgsUsage: "<file | ->",
		Flags: append([]cli.Flag{
			// Raw PCM input. Ignored for WAV files.
			&cli.IntFlag{
				Name:    "sample-rate",
				Aliases: []string{"s"},
				Usage:   "Sample rate of raw PCM in Hz",
				Value:   44100,
			},
			&cli.IntFlag{
				Name:    "bit-depth",
				Aliases: []string{"b"},
				Usage:   "Bit depth of raw PCM (16, 24, or 32)",
				Value:   16,
			},
			&cli.IntFlag{
				Name:    "channels",
				Aliases: []string{"c"},
				Usage:   "Channels of raw PCM, downmixed to mono",
				Value:   1,
			},
		}, analysisFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}

			inputPath := cmd.Args().First()

			sig, err := loadSignal(inputPath, cmd)
			if err != nil {
				return err
			}

			return runAnalysis(ctx, cmd, inputPath, sig)
		},
	}
}

// analysisFlags are shared by every command that runs the engine on a single recording.
func analysisFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"p"},
			Usage:   "Detection profile: standard, lenient (soft attacks: bowed strings, voice)",
			Value:   "standard",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: console, json, markdown",
			Value:   "console",
		},
		&cli.StringFlag{
			Name:  "history",
			Usage: "Store successful analyses in this SQLite database",
		},
	}
}

func runAnalysis(ctx context.Context, cmd *cli.Command, name string, sig *types.Signal) error {
	profile, err := tactus.ParseProfile(cmd.String("profile"))
	if err != nil {
		return err
	}

	opts := tactus.OptionsForProfile(profile)
	opts.Debug = cmd.Bool("debug")

	result, err := tactus.AnalyzeContext(ctx, sig, opts)
	if err != nil {
		if printErr := outputError(name, err, cmd.String("format")); printErr != nil {
			return printErr
		}

		return fmt.Errorf("analysis failed: %w", err)
	}

	if dbPath := cmd.String("history"); dbPath != "" {
		if err = saveHistory(ctx, dbPath, name, profile, result); err != nil {
			return err
		}
	}

	return outputResult(name, result, cmd.String("format"), cmd.Bool("debug"))
}

func loadSignal(source string, cmd *cli.Command) (*types.Signal, error) {
	if source != "-" && strings.EqualFold(filepath.Ext(source), ".wav") {
		file, err := os.Open(source) //nolint:gosec // CLI tool opens user-specified audio files
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", source, err)
		}
		defer file.Close()

		return pcm.DecodeWAV(file)
	}

	format, err := parsePCMFormat(cmd)
	if err != nil {
		return nil, err
	}

	var input io.Reader

	if source == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		input = bytes.NewReader(data)
	} else {
		file, err := os.Open(source) //nolint:gosec // CLI tool opens user-specified audio files
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", source, err)
		}
		defer file.Close()

		input = file
	}

	return pcm.DecodeMono(input, format)
}

func parsePCMFormat(cmd *cli.Command) (types.PCMFormat, error) {
	bitDepth, err := toBitDepth(cmd.Int("bit-depth"))
	if err != nil {
		return types.PCMFormat{}, fmt.Errorf("--bit-depth: %w", err)
	}

	channels := cmd.Int("channels")
	if channels <= 0 {
		return types.PCMFormat{}, fmt.Errorf("--channels: must be positive, got %d", channels)
	}

	return types.PCMFormat{
		SampleRate: cmd.Int("sample-rate"),
		BitDepth:   bitDepth,
		Channels:   uint(channels), //nolint:gosec // validated positive value
	}, nil
}

var errInvalidBitDepth = errors.New("must be 16, 24, or 32")

func toBitDepth(v int) (types.BitDepth, error) {
	switch v {
	case 16:
		return types.Depth16, nil
	case 24:
		return types.Depth24, nil
	case 32:
		return types.Depth32, nil
	default:
		return 0, errInvalidBitDepth
	}
}
