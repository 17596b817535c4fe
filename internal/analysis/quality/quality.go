// Package quality decides whether the computed statistics can be trusted.
package quality

import "github.com/farcloser/tactus/internal/types"

// Gate holds the rejection thresholds.
type Gate struct {
	MinDynamicRangeDb float64
	MinAverageDb      float64
}

// DefaultGate rejects flattened (limited, compressed, AGC) or noise-dominated recordings.
var DefaultGate = Gate{MinDynamicRangeDb: 5, MinAverageDb: -45}

// Problem names the reason a recording was rejected.
type Problem string

const (
	None      Problem = ""
	Flattened Problem = "flattened dynamics"
	TooFaint  Problem = "level too low"
)

// Check returns None when dyn passes the gate. Range is checked before level.
func Check(dyn types.DynamicsStats, gate Gate) Problem {
	switch {
	case dyn.DynamicRangeDb < gate.MinDynamicRangeDb:
		return Flattened
	case dyn.AverageDb < gate.MinAverageDb:
		return TooFaint
	}

	return None
}
