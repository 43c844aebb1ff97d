// Package report merges profiling, ML and chart outputs into the structure the
// presentation layer renders.
package report

import (
	"errors"
	"html/template"

	"fininsight/domain/dataset"
)

// Stage statuses
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// StageStatus says whether one ML stage produced a value and, if not, why
type StageStatus struct {
	Stage  string `json:"stage"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Report is the complete, serializable result of one analysis request
type Report struct {
	Filename        string                   `json:"filename"`
	Rows            int                      `json:"rows"`
	Cols            int                      `json:"cols"`
	HeadHTML        template.HTML            `json:"-"`
	ProfileHTML     template.HTML            `json:"-"`
	Profiles        []dataset.ColumnProfile  `json:"profiles"`
	Charts          []dataset.Chart          `json:"charts"`
	ML              dataset.MLResult         `json:"ml"`
	SegmentProfiles []dataset.SegmentProfile `json:"segment_profiles"`
	FraudCount      int                      `json:"fraud_count"`
	Stages          []StageStatus            `json:"stages"`
	Summary         dataset.Summary          `json:"summary"`
	ChartGuide      []GuideEntry             `json:"chart_guide"`
	Sampled         bool                     `json:"sampled"`
	Warnings        []string                 `json:"warnings,omitempty"`
	ExportURL       string                   `json:"export_url,omitempty"`
}

// Input is everything the assembler merges
type Input struct {
	Filename  string
	Cleaned   *dataset.Frame
	Working   *dataset.Frame
	Profiles  []dataset.ColumnProfile
	Charts    []dataset.Chart
	ML        dataset.MLResult
	Summary   dataset.Summary
	Sampled   bool
	Warnings  []string
	ExportURL string
}

// Assemble builds the report. Row and column counts describe the cleaned frame; the
// head table shows the working frame.
func Assemble(in Input) *Report {
	r := &Report{
		Filename:    in.Filename,
		Rows:        in.Cleaned.NumRows(),
		Cols:        in.Cleaned.NumCols(),
		HeadHTML:    HeadTable(in.Working),
		ProfileHTML: ProfileTable(in.Profiles),
		Profiles:    in.Profiles,
		Charts:      in.Charts,
		ML:          in.ML,
		FraudCount:  in.ML.FraudCount,
		Summary:     in.Summary,
		ChartGuide:  ChartGuide(in.Charts),
		Sampled:     in.Sampled,
		Warnings:    in.Warnings,
		ExportURL:   in.ExportURL,
	}
	if profiles, ok := in.ML.SegmentProfiles.Get(); ok {
		r.SegmentProfiles = profiles
	}

	r.Stages = []StageStatus{
		status("segmentation", in.ML.Segments.Ok, in.ML.Segments.Err),
		status("segment_profiles", in.ML.SegmentProfiles.Ok, in.ML.SegmentProfiles.Err),
		status("anomalies", in.ML.Anomalies.Ok, in.ML.Anomalies.Err),
		status("projection", in.ML.Projection.Ok, in.ML.Projection.Err),
	}
	return r
}

func status(stage string, ok bool, err error) StageStatus {
	switch {
	case ok:
		return StageStatus{Stage: stage, Status: StatusOK}
	case errors.Is(err, dataset.ErrSkipped):
		return StageStatus{Stage: stage, Status: StatusSkipped, Reason: err.Error()}
	case err != nil:
		return StageStatus{Stage: stage, Status: StatusFailed, Reason: err.Error()}
	default:
		return StageStatus{Stage: stage, Status: StatusSkipped}
	}
}

// ChartsOf returns the charts of one kind in generation order
func (r *Report) ChartsOf(kind dataset.ChartKind) []dataset.Chart {
	var out []dataset.Chart
	for _, c := range r.Charts {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Degraded reports whether the analysis ran on a partial read
func (r *Report) Degraded() bool {
	return r.Sampled
}
