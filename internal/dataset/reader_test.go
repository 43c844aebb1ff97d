package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fininsight/domain/dataset"
	"fininsight/internal/errors"
	"fininsight/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadAll_InfersKinds(t *testing.T) {
	r := NewReader(DefaultReadOptions(), nil)
	src := "amount,region,is_online,created_at\n" +
		"10.50,North,true,2024-01-01\n" +
		"20,South,False,2024-01-02\n" +
		",NA,,\n"

	frame, info, err := r.ReadAll(context.Background(), strings.NewReader(src))
	require.NoError(t, err)
	assert.False(t, info.Sampled)
	require.Equal(t, 3, frame.NumRows())

	assert.Equal(t, dataset.KindNumeric, frame.Column("amount").Kind)
	assert.Equal(t, "float64", frame.Column("amount").Dtype())
	assert.Equal(t, dataset.KindCategorical, frame.Column("region").Kind)
	assert.Equal(t, dataset.KindBoolean, frame.Column("is_online").Kind)
	assert.Equal(t, dataset.KindDatetime, frame.Column("created_at").Kind)
	assert.Equal(t, 4, frame.MissingCells())
}

func TestReadAll_RaggedRows(t *testing.T) {
	r := NewReader(DefaultReadOptions(), nil)
	src := "a,b,c\n1,2,3\n4,5\n6,7,8,9\n"

	frame, info, err := r.ReadAll(context.Background(), strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 3, frame.NumRows())
	assert.Equal(t, 1, info.RowsPadded)
	assert.Equal(t, 1, info.RowsTrimmed)
	assert.True(t, frame.Column("c").IsMissing(1))
	assert.Equal(t, 8.0, frame.Column("c").Num[2])
	assert.NotEmpty(t, info.Warnings)
}

func TestReadAll_EmptyInput(t *testing.T) {
	r := NewReader(DefaultReadOptions(), nil)
	_, _, err := r.ReadAll(context.Background(), strings.NewReader(""))
	assert.Error(t, err)
}

func TestReadFile_FallsBackOnRowLimit(t *testing.T) {
	opts := DefaultReadOptions()
	opts.FullReadMaxRows = 100
	opts.SampleChunkRows = 40
	r := NewReader(opts, nil)

	cfg := testkit.DefaultTransactionConfig()
	cfg.Rows, cfg.DuplicateRows, cfg.MissingRows = 150, 0, 0
	path := filepath.Join(t.TempDir(), "tx.csv")
	require.NoError(t, testkit.NewTransactionGenerator(cfg).WriteFile(path))

	frame, info, err := r.ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, info.Sampled)
	assert.Error(t, info.FallbackFrom)
	assert.Equal(t, 40, frame.NumRows())
	assert.Equal(t, testkit.TransactionHeader, frame.Names())
	require.NotEmpty(t, info.Warnings)
	assert.Contains(t, info.Warnings[0], "first 40 rows")
}

func TestReadFile_FallsBackOnMalformedQuotes(t *testing.T) {
	r := NewReader(DefaultReadOptions(), nil)
	path := writeFile(t, "name,amount\n\"ok\",1\nbro\"ken,2\n\"fine\",3\n")

	frame, info, err := r.ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, info.Sampled)
	assert.Equal(t, 3, frame.NumRows())
	assert.Equal(t, `bro"ken`, frame.Column("name").Str[1])
}

func TestReadFile_MissingFileIsFatal(t *testing.T) {
	r := NewReader(DefaultReadOptions(), nil)
	_, _, err := r.ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeReadFailed, errors.GetCode(err))
}

func TestReadFile_CancelledContext(t *testing.T) {
	r := NewReader(DefaultReadOptions(), nil)
	path := writeFile(t, "a\n1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := r.ReadFile(ctx, path)
	assert.Error(t, err)
}

func TestUniqueHeaders(t *testing.T) {
	got := UniqueHeaders([]string{"\ufeffid", "amount", "", "amount", "amount"})
	assert.Equal(t, []string{"id", "amount", "Unnamed: 2", "amount.1", "amount.2"}, got)
}
