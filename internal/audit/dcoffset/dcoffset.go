package dcoffset

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/tactus/internal/types"
)

const floorDb = -120.0

// Detect measures the mean sample value of the signal.
func Detect(sig *types.Signal) *types.DCOffsetResult {
	if len(sig.Samples) == 0 {
		return &types.DCOffsetResult{OffsetDb: floorDb}
	}

	offset := stat.Mean(sig.Samples, nil)

	offsetDb := 20 * math.Log10(math.Abs(offset))
	if math.IsInf(offsetDb, -1) || offsetDb < floorDb {
		offsetDb = floorDb
	}

	return &types.DCOffsetResult{
		Offset:   offset,
		OffsetDb: offsetDb,
		Samples:  uint64(len(sig.Samples)),
	}
}
