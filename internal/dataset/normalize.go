package dataset

import (
	"fmt"
	"math"

	"fininsight/domain/dataset"
)

// ExpandDatetimes replaces every datetime column c with integer columns c_year, c_month
// and c_day at the same position. A column whose parts would collide with an existing
// name is kept as is and reported in the returned warnings. Frames without datetime
// columns are returned unchanged.
func ExpandDatetimes(frame *dataset.Frame) (*dataset.Frame, []string) {
	hasDatetime := false
	for _, c := range frame.Columns {
		if c.Kind == dataset.KindDatetime {
			hasDatetime = true
			break
		}
	}
	if !hasDatetime {
		return frame, nil
	}

	taken := make(map[string]bool, frame.NumCols())
	for _, c := range frame.Columns {
		taken[c.Name] = true
	}

	var warnings []string
	cols := make([]*dataset.Column, 0, frame.NumCols()+2)
	for _, c := range frame.Columns {
		if c.Kind != dataset.KindDatetime {
			cols = append(cols, c)
			continue
		}
		parts, err := decompose(c, taken)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to convert datetime column '%s': %v", c.Name, err))
			cols = append(cols, c)
			continue
		}
		for _, p := range parts {
			taken[p.Name] = true
		}
		cols = append(cols, parts...)
	}
	return &dataset.Frame{Columns: cols}, warnings
}

func decompose(c *dataset.Column, taken map[string]bool) ([]*dataset.Column, error) {
	names := [3]string{c.Name + "_year", c.Name + "_month", c.Name + "_day"}
	for _, name := range names {
		if taken[name] {
			return nil, fmt.Errorf("column %q already exists", name)
		}
	}

	n := c.Len()
	values := [3][]float64{make([]float64, n), make([]float64, n), make([]float64, n)}
	for i := 0; i < n; i++ {
		if c.IsMissing(i) {
			values[0][i], values[1][i], values[2][i] = math.NaN(), math.NaN(), math.NaN()
			continue
		}
		t := c.Time[i]
		values[0][i] = float64(t.Year())
		values[1][i] = float64(t.Month())
		values[2][i] = float64(t.Day())
	}

	parts := make([]*dataset.Column, 3)
	for j, name := range names {
		parts[j] = dataset.NewNumericColumn(name, values[j])
		parts[j].Integer = true
	}
	return parts, nil
}
