package analysis

import (
	"fmt"
	"math"
	"sort"

	"fininsight/domain/dataset"
)

// SegmentProfiles averages each raw (unscaled) feature over the rows of every segment.
// Only segments with members are reported, ordered by segment id. NaN cells are
// skipped; a feature with no observed value in a segment is left out of its means.
func SegmentProfiles(raw *FeatureMatrix, labels []int) ([]dataset.SegmentProfile, error) {
	rows, cols := raw.X.Dims()
	if len(labels) != rows {
		return nil, fmt.Errorf("got %d labels for %d rows", len(labels), rows)
	}

	type acc struct {
		size   int
		sums   []float64
		counts []int
	}
	groups := make(map[int]*acc)
	for i, label := range labels {
		g, ok := groups[label]
		if !ok {
			g = &acc{sums: make([]float64, cols), counts: make([]int, cols)}
			groups[label] = g
		}
		g.size++
		row := raw.X.RawRowView(i)
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			g.sums[j] += v
			g.counts[j]++
		}
	}

	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	profiles := make([]dataset.SegmentProfile, 0, len(ids))
	for _, id := range ids {
		g := groups[id]
		means := make(map[string]float64, cols)
		for j, name := range raw.Columns {
			if g.counts[j] == 0 {
				continue
			}
			means[name] = g.sums[j] / float64(g.counts[j])
		}
		profiles = append(profiles, dataset.SegmentProfile{SegmentID: id, Size: g.size, Means: means})
	}
	return profiles, nil
}
