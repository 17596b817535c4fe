package ffmpeg

import (
	"strconv"

	"github.com/farcloser/tactus/internal/types"
)

func bitDepthToSpec(bitDepth types.BitDepth) string {
	// BitDepth 32 = s32le, 24 = s24le, 16 = s16le
	//nolint:gosec // we fine, gosec
	return "s" + strconv.Itoa(int(bitDepth)) + "le"
}

func codecFor(bitDepth types.BitDepth) string {
	return "pcm_" + bitDepthToSpec(bitDepth)
}

// args builds the ffmpeg command line reading a container on stdin and writing raw
// interleaved PCM in format to stdout. Video streams are dropped.
func args(format types.PCMFormat) []string {
	return []string{
		"-i", "-",
		"-vn",
		"-map", "0:a:0",
		"-ac", strconv.FormatUint(uint64(format.Channels), 10),
		"-ar", strconv.Itoa(format.SampleRate),
		"-f", bitDepthToSpec(format.BitDepth),
		"-acodec", codecFor(format.BitDepth),
		"-v", "quiet",
		"-",
	}
}
