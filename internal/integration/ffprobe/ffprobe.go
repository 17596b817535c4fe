package ffprobe

import "time"

const (
	name = "ffprobe"
	// Network mounts and cold disks are slow to answer.
	timeout = 30 * time.Second
)
