package dataset

import (
	"math/rand"
	"sort"

	"fininsight/domain/dataset"
)

// SampleRows caps a frame at limit rows. Larger frames are reduced to a seeded
// sample drawn without replacement; the chosen rows keep their original order.
// The second return value reports whether sampling happened.
func SampleRows(frame *dataset.Frame, limit int, seed int64) (*dataset.Frame, bool) {
	n := frame.NumRows()
	if limit <= 0 || n <= limit {
		return frame, false
	}

	rng := rand.New(rand.NewSource(seed))
	rows := rng.Perm(n)[:limit]
	sort.Ints(rows)
	return frame.Take(rows), true
}
