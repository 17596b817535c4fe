package trend

import (
	"math"
	"testing"

	"github.com/farcloser/tactus/internal/types"
)

// performance builds 30 intervals starting every 500 ms with alternating deviations: earlyMag over the first
// ten, 10 over the middle, lateMag over the last ten.
func performance(earlyMag, lateMag float64) ([]types.Interval, []float64, float64, float64) {
	var (
		intervals  []types.Interval
		deviations []float64
	)

	for i := range 30 {
		mag := 10.0

		switch {
		case i < 10:
			mag = earlyMag
		case i >= 20:
			mag = lateMag
		}

		dev := mag
		if i%2 == 1 {
			dev = -mag
		}

		intervals = append(intervals, types.Interval{Start: float64(i) * 0.5, Ms: 500 + dev})
		deviations = append(deviations, dev)
	}

	return intervals, deviations, 0, 15
}

func TestAnalyzeWorsening(t *testing.T) {
	intervals, deviations, first, last := performance(5, 50)

	res := Analyze(intervals, deviations, first, last, 20)

	if res.Improving {
		t.Errorf("expected not improving, got early %v late %v", res.EarlySpreadMs, res.LateSpreadMs)
	}

	if math.Abs(res.EarlySpreadMs-5) > 1e-9 || math.Abs(res.LateSpreadMs-50) > 1e-9 {
		t.Errorf("expected spreads 5 and 50, got %v and %v", res.EarlySpreadMs, res.LateSpreadMs)
	}
}

func TestAnalyzeImproving(t *testing.T) {
	intervals, deviations, first, last := performance(50, 5)

	res := Analyze(intervals, deviations, first, last, 20)

	if !res.Improving {
		t.Errorf("expected improving, got early %v late %v", res.EarlySpreadMs, res.LateSpreadMs)
	}
}

func TestAnalyzeEmptyThirdFallsBack(t *testing.T) {
	intervals := []types.Interval{{Start: 0, Ms: 500}, {Start: 0.5, Ms: 510}}
	deviations := []float64{-5, 5}

	// Both intervals start in the first third of [0, 9]. The late third is empty.
	res := Analyze(intervals, deviations, 0, 9, 42)

	if res.LateCount != 0 || res.LateSpreadMs != 42 {
		t.Errorf("expected the late third to fall back to sigma, got %+v", res)
	}

	if math.Abs(res.EarlySpreadMs-5) > 1e-9 {
		t.Errorf("expected early spread 5, got %v", res.EarlySpreadMs)
	}

	if res.Improving {
		t.Error("expected not improving")
	}
}

func TestAnalyzeEqualSpreadIsNotImproving(t *testing.T) {
	intervals, deviations, first, last := performance(10, 10)

	if res := Analyze(intervals, deviations, first, last, 10); res.Improving {
		t.Errorf("equal spreads must not count as improving, got %+v", res)
	}
}
