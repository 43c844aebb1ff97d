package dataset

import "fininsight/domain/dataset"

// CleanStats records how many rows each cleaning step removed
type CleanStats struct {
	InputRows            int `json:"input_rows"`
	MissingRowsDropped   int `json:"missing_rows_dropped"`
	DuplicateRowsDropped int `json:"duplicate_rows_dropped"`
	OutputRows           int `json:"output_rows"`
}

// Clean drops every row with a missing cell, then every row that repeats an earlier
// row exactly. Surviving rows keep their relative order. The input frame is not modified.
func Clean(frame *dataset.Frame) (*dataset.Frame, CleanStats) {
	stats := CleanStats{InputRows: frame.NumRows()}

	keep := make([]int, 0, frame.NumRows())
	seen := make(map[string]struct{}, frame.NumRows())
	for i := 0; i < frame.NumRows(); i++ {
		if !frame.RowComplete(i) {
			stats.MissingRowsDropped++
			continue
		}
		key := frame.RowKey(i)
		if _, dup := seen[key]; dup {
			stats.DuplicateRowsDropped++
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}

	stats.OutputRows = len(keep)
	return frame.Take(keep), stats
}
