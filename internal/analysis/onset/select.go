package onset

import (
	"cmp"
	"slices"

	"github.com/farcloser/tactus/internal/types"
)

// RelaxedFloorMs is the smallest separation the relaxed selection pass may use.
const RelaxedFloorMs = 60.0

// Selection is what Select retained, and how.
type Selection struct {
	Events            []types.OnsetEvent
	TopN              int     // bound that produced the selection, 0 if the relaxed pass did
	AfterTopN         int     // events kept by the last top-N bound tried
	RelaxedSeparation float64 // separation used by the relaxed pass, 0 if it did not run
}

// Select keeps the strongest events under each bound in turn, restores chronological order and
// dedupes with minSepMs, stopping at the first bound that retains at least two events.
// If no bound does, all events are deduped with max(RelaxedFloorMs, minSepMs-10).
// Fewer than two events in the result means the selection failed.
func Select(events []types.OnsetEvent, minSepMs float64, bounds []int) Selection {
	var sel Selection

	for _, bound := range bounds {
		top := Strongest(events, bound)
		sel.AfterTopN = len(top)

		if kept := Dedupe(top, minSepMs); len(kept) >= 2 {
			sel.Events = kept
			sel.TopN = bound

			return sel
		}
	}

	sel.RelaxedSeparation = max(RelaxedFloorMs, minSepMs-10)
	sel.Events = Dedupe(events, sel.RelaxedSeparation)

	return sel
}

// Strongest returns up to n events with the highest strength, in chronological order.
// Ties go to the earlier event. Strength is read at the detected peak, not at the backtracked
// attack frame, so a soft attack with a sharp peak ranks by its peak.
func Strongest(events []types.OnsetEvent, n int) []types.OnsetEvent {
	if len(events) <= n {
		return slices.Clone(events)
	}

	idx := make([]int, len(events))
	for i := range idx {
		idx[i] = i
	}

	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(events[b].Strength, events[a].Strength)
	})

	idx = idx[:n]
	slices.Sort(idx)

	out := make([]types.OnsetEvent, 0, n)
	for _, i := range idx {
		out = append(out, events[i])
	}

	return out
}

// Dedupe scans chronologically ordered events and drops any that follows the previously retained
// one by less than minSepMs. The earliest event of a cluster wins.
func Dedupe(events []types.OnsetEvent, minSepMs float64) []types.OnsetEvent {
	out := make([]types.OnsetEvent, 0, len(events))

	for _, ev := range events {
		if len(out) > 0 && (ev.Time-out[len(out)-1].Time)*1000 < minSepMs {
			continue
		}

		out = append(out, ev)
	}

	return out
}
