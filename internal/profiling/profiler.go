// Package profiling computes per-column statistics and the dataset-level summary shown in reports.
package profiling

import (
	"fmt"

	"fininsight/domain/dataset"
	"fininsight/internal"

	"github.com/montanaflynn/stats"
)

// ColumnProfiler computes descriptive statistics for every column of a frame
type ColumnProfiler struct {
	logger *internal.Logger
}

// NewColumnProfiler creates a profiler; a nil logger discards output
func NewColumnProfiler(logger *internal.Logger) *ColumnProfiler {
	if logger == nil {
		logger = internal.Discard
	}
	return &ColumnProfiler{logger: logger.With("profiler")}
}

// ProfileColumns returns one profile per column in frame order. A column that cannot
// be profiled is logged and left out.
func (p *ColumnProfiler) ProfileColumns(frame *dataset.Frame) []dataset.ColumnProfile {
	profiles := make([]dataset.ColumnProfile, 0, frame.NumCols())
	for _, col := range frame.Columns {
		profile, err := p.ProfileColumn(col)
		if err != nil {
			p.logger.Error("error summarizing column %s: %v", col.Name, err)
			continue
		}
		profiles = append(profiles, profile)
	}
	return profiles
}

// ProfileColumn computes the profile of a single column
func (p *ColumnProfiler) ProfileColumn(col *dataset.Column) (profile dataset.ColumnProfile, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic profiling column: %v", r)
		}
	}()

	switch col.Kind {
	case dataset.KindNumeric, dataset.KindCategorical, dataset.KindBoolean, dataset.KindDatetime:
	default:
		return profile, fmt.Errorf("unsupported column kind %q", col.Kind)
	}

	profile = dataset.ColumnProfile{Column: col.Name, Dtype: col.Dtype()}

	distinct := make(map[string]struct{})
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			continue
		}
		text := col.Format(i)
		if profile.NonNullCount == 0 {
			profile.SampleValue = text
		}
		profile.NonNullCount++
		distinct[text] = struct{}{}
	}
	profile.UniqueValues = len(distinct)

	if col.Kind == dataset.KindNumeric && profile.NonNullCount > 0 {
		values := stats.Float64Data(col.Present())
		mean, err := stats.Mean(values)
		if err != nil {
			return profile, fmt.Errorf("mean: %w", err)
		}
		profile.Mean = &mean

		if len(values) > 1 {
			std, err := stats.StandardDeviationSample(values)
			if err != nil {
				return profile, fmt.Errorf("std: %w", err)
			}
			profile.Std = &std
		}
	}
	return profile, nil
}
