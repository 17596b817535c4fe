package pcm

// Normalization divisors for signed little-endian PCM. Full negative scale maps to exactly -1.
const (
	MaxValue16 float64 = 1 << 15
	MaxValue24 float64 = 1 << 23
	MaxValue32 float64 = 1 << 31
)
