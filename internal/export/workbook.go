// Package export writes the analysis results to an Excel workbook.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"fininsight/domain/dataset"
	"fininsight/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Sheet names
const (
	SheetSummary  = "Summary"
	SheetProfile  = "Profile"
	SheetSegments = "Segments"
)

// WorkbookName returns the artifact name for a request prefix
func WorkbookName(prefix string) string {
	return prefix + "_analysis.xlsx"
}

// Contents is what goes into the workbook
type Contents struct {
	Summary         dataset.Summary
	Profiles        []dataset.ColumnProfile
	SegmentProfiles []dataset.SegmentProfile
	FraudCount      int
}

// WriteWorkbook saves {prefix}_analysis.xlsx into dir and returns the file name
func WriteWorkbook(dir, prefix string, c Contents) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create export directory %s", dir)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return "", err
	}
	if err := writeRows(f, SheetSummary, summaryRows(c)); err != nil {
		return "", err
	}

	for _, sheet := range []struct {
		name string
		rows [][]interface{}
	}{
		{SheetProfile, profileRows(c.Profiles)},
		{SheetSegments, segmentRows(c.SegmentProfiles)},
	} {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return "", err
		}
		if err := writeRows(f, sheet.name, sheet.rows); err != nil {
			return "", err
		}
	}

	name := WorkbookName(prefix)
	if err := f.SaveAs(filepath.Join(dir, name)); err != nil {
		return "", errors.Wrapf(err, "failed to save %s", name)
	}
	return name, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("sheet %s cell %s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func summaryRows(c Contents) [][]interface{} {
	s := c.Summary
	return [][]interface{}{
		{"Metric", "Value"},
		{"Filename", s.Filename},
		{"Total rows", s.TotalRows},
		{"Total columns", s.TotalCols},
		{"Numeric columns", s.NumericCols},
		{"Categorical columns", s.CategoricalCols},
		{"Completeness (%)", s.CompletenessPercent},
		{"Quality", s.QualityStatus},
		{"Duplicate rows", s.DuplicateRows},
		{"Memory (MB)", s.MemoryMB},
		{"Source", s.SummarySource},
		{"Potential fraud rows", c.FraudCount},
	}
}

func profileRows(profiles []dataset.ColumnProfile) [][]interface{} {
	rows := [][]interface{}{{"column", "dtype", "non_null_count", "unique_values", "sample_value", "mean", "std"}}
	for _, p := range profiles {
		rows = append(rows, []interface{}{p.Column, p.Dtype, p.NonNullCount, p.UniqueValues, p.SampleValue, cellOf(p.Mean), cellOf(p.Std)})
	}
	return rows
}

// segmentRows lays out one row per segment with feature means in sorted column order
func segmentRows(segments []dataset.SegmentProfile) [][]interface{} {
	featureSet := make(map[string]bool)
	for _, s := range segments {
		for k := range s.Means {
			featureSet[k] = true
		}
	}
	features := make([]string, 0, len(featureSet))
	for k := range featureSet {
		features = append(features, k)
	}
	sort.Strings(features)

	header := []interface{}{"segment_id", "size"}
	for _, f := range features {
		header = append(header, f)
	}
	rows := [][]interface{}{header}
	for _, s := range segments {
		row := []interface{}{s.SegmentID, s.Size}
		for _, f := range features {
			if v, ok := s.Means[f]; ok {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func cellOf(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
