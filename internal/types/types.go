//nolint:staticcheck // too dumb on Db vs. DB
package types

type BitDepth uint

const (
	Depth16 BitDepth = 16
	Depth24 BitDepth = 24
	Depth32 BitDepth = 32
)

// PCMFormat describes raw interleaved little-endian PCM handed to the decoder.
type PCMFormat struct {
	SampleRate int
	BitDepth   BitDepth
	Channels   uint
}

// Signal is a decoded mono recording. Samples are normalized to [-1, 1].
// It is never mutated once loaded.
type Signal struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the signal length in seconds.
func (s *Signal) Duration() float64 {
	if s == nil || s.SampleRate <= 0 {
		return 0
	}

	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Envelope is the onset strength of a signal, one non-negative value per analysis frame.
type Envelope struct {
	Values     []float64
	HopLength  int
	SampleRate int
}

// FrameTime converts a frame index to seconds.
func (e *Envelope) FrameTime(frame int) float64 {
	return float64(frame*e.HopLength) / float64(e.SampleRate)
}

// FrameRate returns the number of envelope frames per second.
func (e *Envelope) FrameRate() float64 {
	return float64(e.SampleRate) / float64(e.HopLength)
}

// OnsetEvent is one detected note attack.
type OnsetEvent struct {
	Frame    int     // backtracked frame (attack start)
	Time     float64 // seconds, from Frame
	Strength float64 // envelope strength at the detected peak (not at Frame), ranks top-N selection
}

// Interval is the gap between two adjacent retained onsets.
type Interval struct {
	Start float64 // seconds, time of the first onset of the pair
	Ms    float64
}

/*
Timing Interpretation

## Robust Sigma (timing_variance_ms)

| RobustSigmaMs | Interpretation                         |
|---------------|----------------------------------------|
| < 10 ms       | Machine-tight. Very steady player.     |
| 10-25 ms      | Good. Typical of a practiced player.   |
| 25-50 ms      | Loose. Noticeable unevenness.          |
| > 50 ms       | Unsteady, or onsets are unreliable.    |

## Rushed / Dragged

Intervals are classified against a band of 1.25 x RobustSigmaMs around the median interval.
Shorter than the band = rushed, longer = dragged. For normally distributed timing errors,
roughly 10% of intervals fall on each side, so:

| Rushed% vs Dragged% | Interpretation                          |
|---------------------|-----------------------------------------|
| both < 12%          | Balanced.                               |
| rushed >> dragged   | Tends to push ahead.                    |
| dragged >> rushed   | Tends to lay back / hesitate.           |

AverageOffsetMs is the mean signed deviation from the median. It can be near zero with high
variance (rushing and dragging cancel out), so read it together with the percentages.
*/

// TimingStats contains the robust interval statistics.
type TimingStats struct {
	MedianMs        float64
	RobustSigmaMs   float64   // 1.4826 x MAD
	AverageOffsetMs float64   // mean signed deviation from the median
	BandMs          float64   // rushed/dragged boundary, 0 when sigma is 0
	RushedPercent   float64   // 0-100
	DraggedPercent  float64   // 0-100
	Deviations      []float64 // signed deviation from the median, per interval
}

// TrendStats compares timing spread between the first and last third of the performance.
type TrendStats struct {
	Improving     bool
	EarlySpreadMs float64
	LateSpreadMs  float64
	EarlyCount    int
	LateCount     int
}

/*
Dynamics Interpretation

Levels are relative to the loudest RMS frame of the recording itself (0 dB), not absolute SPL.

| DynamicRangeDb | Interpretation                                |
|----------------|-----------------------------------------------|
| < 5 dB         | Flattened. Limiter, AGC or noise. Rejected.   |
| 5-15 dB        | Even playing, little contrast.                |
| 15-30 dB       | Natural attack/decay contrast.                |
| > 30 dB        | Strong contrast, or long gaps between notes.  |

| AverageDb   | Interpretation                                   |
|-------------|--------------------------------------------------|
| > -20 dB    | Sustained instrument or dense playing.           |
| -20 to -45  | Normal for plucked/struck instruments.           |
| < -45 dB    | Mostly background. Rejected.                     |
*/

// DynamicsStats contains loudness envelope statistics.
type DynamicsStats struct {
	AverageDb        float64
	DynamicRangeDb   float64 // p95 - p5
	StdDevDb         float64
	ConsistencyScore float64 // 0-1
	Frames           int
}

// PassDiagnostics holds the counters of one fallback ladder pass.
type PassDiagnostics struct {
	Pass              int
	Config            string
	RawOnsets         int
	StrengthFloor     float64 // envelope strength at the config's percentile, informational
	TopN              int     // bound that produced the selection, 0 if the relaxed pass was used
	AfterTopN         int
	RelaxedSeparation float64 // ms, 0 if the relaxed pass did not run
	AfterMinSep       int
	IntervalsRaw      int
	RejectedTooShort  int
	RejectedTooLong   int
	IntervalsKept     int
	Accepted          bool
	Stage             string // stage at which the pass gave up, empty when accepted
}

/*
Recording Advisories

Neither check rejects a recording. They explain suspicious dynamics figures.

| Clipping Events | Interpretation                                       |
|-----------------|------------------------------------------------------|
| 0               | Clean.                                               |
| 1-10            | Occasional overs on the loudest attacks.             |
| > 10            | Input gain too high. Dynamic range is understated.   |

| OffsetDb        | Interpretation                                       |
|-----------------|------------------------------------------------------|
| < -60 dB        | Negligible.                                          |
| -60 to -40 dB   | Minor, typical of cheap interfaces.                  |
| > -40 dB        | Faulty input chain. Quiet frames read louder.        |
*/

// ClippingDetection contains clipping detection results.
type ClippingDetection struct {
	Events         uint64
	ClippedSamples uint64
	LongestRun     uint64
	Samples        uint64
}

// DCOffsetResult contains DC offset results.
type DCOffsetResult struct {
	Offset   float64 // normalized, signed
	OffsetDb float64 // more negative = less offset
	Samples  uint64
}
