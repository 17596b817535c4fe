package history

// Progress compares two sessions. Deltas are current minus previous.
type Progress struct {
	TempoDeltaBPM       float64
	VarianceDeltaMs     float64
	RushedDeltaPercent  float64
	DraggedDeltaPercent float64
	ConsistencyDelta    float64
	DynamicRangeDeltaDb float64
	Steadier            bool // timing variance went down
	MoreConsistent      bool // consistency score went up
}

// Compare returns the change from previous to current.
func Compare(previous, current *Entry) Progress {
	prev, cur := previous.Result, current.Result

	p := Progress{
		TempoDeltaBPM:       cur.TempoBPM - prev.TempoBPM,
		VarianceDeltaMs:     cur.Timing.TimingVarianceMs - prev.Timing.TimingVarianceMs,
		RushedDeltaPercent:  cur.Timing.RushedNotesPercent - prev.Timing.RushedNotesPercent,
		DraggedDeltaPercent: cur.Timing.DraggedNotesPercent - prev.Timing.DraggedNotesPercent,
		ConsistencyDelta:    cur.Trends.ConsistencyScore - prev.Trends.ConsistencyScore,
		DynamicRangeDeltaDb: cur.Dynamics.DynamicRangeDb - prev.Dynamics.DynamicRangeDb,
	}
	p.Steadier = p.VarianceDeltaMs < 0
	p.MoreConsistent = p.ConsistencyDelta > 0

	return p
}
