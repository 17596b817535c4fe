package ffprobe

import (
	"errors"
	"testing"

	"github.com/farcloser/primordium/fault"
)

const sample = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "duration": "31.000000"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "sample_rate": "48000",
     "channels": 2, "channel_layout": "stereo", "duration": "30.512000"}
  ],
  "format": {"filename": "take.mp4", "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
             "duration": "31.020000", "probe_score": 100}
}`

func TestParse(t *testing.T) {
	result, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stream, err := result.AudioStream(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stream.Index != 1 || stream.CodecName != "aac" || stream.Channels != 2 {
		t.Errorf("unexpected audio stream %+v", stream)
	}

	if got := result.Duration(); got != 30.512 {
		t.Errorf("expected the audio stream duration, got %v", got)
	}

	if _, err = result.AudioStream(1); !errors.Is(err, ErrNoAudioStream) {
		t.Errorf("expected no second audio stream, got %v", err)
	}
}

func TestDurationFallsBackToContainer(t *testing.T) {
	result := &Result{
		Streams: []Stream{{CodecType: "audio"}},
		Format:  Format{Duration: "12.5"},
	}

	if got := result.Duration(); got != 12.5 {
		t.Errorf("expected container duration, got %v", got)
	}

	if got := (&Result{}).Duration(); got != 0 {
		t.Errorf("expected 0 without durations, got %v", got)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte("not json")); !errors.Is(err, fault.ErrInvalidJSON) {
		t.Errorf("expected invalid JSON, got %v", err)
	}
}
