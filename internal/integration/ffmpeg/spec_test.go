package ffmpeg

import (
	"slices"
	"testing"

	"github.com/farcloser/tactus/internal/types"
)

func TestArgs(t *testing.T) {
	got := args(AnalysisFormat)

	for _, pair := range [][2]string{
		{"-ar", "44100"},
		{"-ac", "1"},
		{"-f", "s16le"},
		{"-acodec", "pcm_s16le"},
	} {
		i := slices.Index(got, pair[0])
		if i < 0 || i+1 >= len(got) || got[i+1] != pair[1] {
			t.Errorf("expected %s %s in %v", pair[0], pair[1], got)
		}
	}

	if got[len(got)-1] != "-" {
		t.Errorf("expected output on stdout, got %v", got)
	}
}

func TestBitDepthToSpec(t *testing.T) {
	for depth, want := range map[types.BitDepth]string{
		types.Depth16: "s16le",
		types.Depth24: "s24le",
		types.Depth32: "s32le",
	} {
		if got := bitDepthToSpec(depth); got != want {
			t.Errorf("%d: expected %s, got %s", depth, want, got)
		}
	}
}
