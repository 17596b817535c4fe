package ffmpeg

import "time"

const (
	name = "ffmpeg"
	// Uploads are short, but the first run on a cold machine can be slow.
	timeout = 120 * time.Second
)
