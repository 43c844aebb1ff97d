package profiling

import (
	"math"

	"fininsight/domain/dataset"
)

// Quality tiers, by completeness lower bound
const (
	QualityExcellent = "Excellent"
	QualityGood      = "Good"
	QualityFair      = "Fair"
	QualityPoor      = "Poor"
)

// Summary sources
const (
	SourceFullFile = "full file"
	SourceSample   = "sample"
)

// Completeness returns the share of non-missing cells as a percentage rounded to one
// decimal; an empty frame scores 0
func Completeness(frame *dataset.Frame) float64 {
	total := frame.TotalCells()
	if total == 0 {
		return 0
	}
	pct := float64(total-frame.MissingCells()) / float64(total) * 100
	return round(pct, 1)
}

// QualityTier maps a completeness percentage to its tier; lower bounds are inclusive
func QualityTier(completeness float64) string {
	switch {
	case completeness >= 95:
		return QualityExcellent
	case completeness >= 80:
		return QualityGood
	case completeness >= 60:
		return QualityFair
	default:
		return QualityPoor
	}
}

// SummaryInput gathers what the dataset summary is computed from
type SummaryInput struct {
	Filename      string
	Raw           *dataset.Frame // normalized frame before cleaning, used for completeness
	Cleaned       *dataset.Frame
	DuplicateRows int
	Sampled       bool
}

// Summarize builds the dataset-level summary
func Summarize(in SummaryInput) dataset.Summary {
	numeric := names(in.Cleaned.NumericColumns())
	categorical := names(in.Cleaned.CategoricalColumns())

	completenessFrame := in.Raw
	if completenessFrame == nil {
		completenessFrame = in.Cleaned
	}
	completeness := Completeness(completenessFrame)

	source := SourceFullFile
	if in.Sampled {
		source = SourceSample
	}

	return dataset.Summary{
		Filename:            in.Filename,
		TotalRows:           in.Cleaned.NumRows(),
		TotalCols:           in.Cleaned.NumCols(),
		NumericCols:         len(numeric),
		CategoricalCols:     len(categorical),
		NumericColumns:      numeric,
		CategoricalColumns:  categorical,
		CompletenessPercent: completeness,
		QualityStatus:       QualityTier(completeness),
		DuplicateRows:       in.DuplicateRows,
		MemoryMB:            round(float64(in.Cleaned.MemoryBytes())/(1024*1024), 2),
		SummarySource:       source,
	}
}

func names(cols []*dataset.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
