//nolint:tagliatelle
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/tactus/internal/integration/binary"
)

var ErrNoAudioStream = errors.New("no audio stream")

// Result contains the parts of ffprobe output used to vet a recording before transcoding.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream is one elementary stream of the container.
type Stream struct {
	Index         int    `json:"index"`
	CodecName     string `json:"codec_name"`            // mp3, aac, pcm_s16le, opus
	CodecType     string `json:"codec_type"`            // audio, video
	SampleRate    string `json:"sample_rate,omitempty"` // 48000
	Channels      int    `json:"channels,omitempty"`
	ChannelLayout string `json:"channel_layout,omitempty"`
	Duration      string `json:"duration,omitempty"` // seconds, as a float string
	BitRate       string `json:"bit_rate,omitempty"`
}

// Format is container level information.
type Format struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`        // "mov,mp4,m4a,3gp,3g2,mj2", "wav"
	Duration   string `json:"duration,omitempty"` // seconds, as a float string
	Size       string `json:"size,omitempty"`     // bytes
	ProbeScore int    `json:"probe_score"`        // 0-100
}

// AudioStream returns the index-th audio stream (0-based, counting audio streams only).
func (r *Result) AudioStream(index int) (*Stream, error) {
	count := 0

	for i := range r.Streams {
		if r.Streams[i].CodecType != "audio" {
			continue
		}

		if count == index {
			return &r.Streams[i], nil
		}

		count++
	}

	return nil, fmt.Errorf("%w: index %d (file has %d audio streams)", ErrNoAudioStream, index, count)
}

// Duration returns the duration in seconds of the first audio stream, falling back to the
// container duration. It returns 0 when neither is known.
func (r *Result) Duration() float64 {
	if stream, err := r.AudioStream(0); err == nil {
		if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
			return d
		}
	}

	if d, err := strconv.ParseFloat(r.Format.Duration, 64); err == nil {
		return d
	}

	return 0
}

// Parse decodes ffprobe JSON output.
func Parse(data []byte) (*Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrInvalidJSON, err)
	}

	return &result, nil
}

// Probe runs ffprobe on the given file path and returns parsed metadata.
// It requires ffprobe to be available in the system PATH.
func Probe(ctx context.Context, filePath string) (*Result, error) {
	slog.Debug("ffprobe.Probe", "file path", filePath)

	ffprobePath, err := binary.Require(name)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // filePath is intentionally user-provided input for probing media files
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		return nil, fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	return Parse(output)
}
