package export

import (
	"path/filepath"
	"testing"

	"fininsight/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	dir := t.TempDir()
	mean := 12.5
	contents := Contents{
		Summary: dataset.Summary{Filename: "tx.csv", TotalRows: 930, QualityStatus: "Excellent"},
		Profiles: []dataset.ColumnProfile{
			{Column: "amount", Dtype: "float64", NonNullCount: 930, UniqueValues: 900, SampleValue: "10.5", Mean: &mean},
			{Column: "region", Dtype: "object", NonNullCount: 930, UniqueValues: 4, SampleValue: "north"},
		},
		SegmentProfiles: []dataset.SegmentProfile{
			{SegmentID: 0, Size: 500, Means: map[string]float64{"amount": 10, "balance": 3}},
			{SegmentID: 1, Size: 430, Means: map[string]float64{"amount": 20}},
		},
		FraudCount: 9,
	}

	name, err := WriteWorkbook(dir, "tx_20240101_abc123", contents)
	require.NoError(t, err)
	assert.Equal(t, "tx_20240101_abc123_analysis.xlsx", name)

	f, err := excelize.OpenFile(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetProfile, SheetSegments}, f.GetSheetList())

	v, err := f.GetCellValue(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "tx.csv", v)

	profile, err := f.GetRows(SheetProfile)
	require.NoError(t, err)
	require.Len(t, profile, 3)
	assert.Equal(t, "amount", profile[1][0])
	assert.Equal(t, "12.5", profile[1][5])

	segments, err := f.GetRows(SheetSegments)
	require.NoError(t, err)
	require.Len(t, segments, 3)
	assert.Equal(t, []string{"segment_id", "size", "amount", "balance"}, segments[0])
	assert.Equal(t, "430", segments[2][1])
}

func TestSegmentRows_Empty(t *testing.T) {
	rows := segmentRows(nil)
	require.Len(t, rows, 1)
	assert.Equal(t, []interface{}{"segment_id", "size"}, rows[0])
}
