package dataset

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"fininsight/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueName(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	name := UniqueName("my data.CSV", now)
	assert.Regexp(t, regexp.MustCompile(`^my_data_20240506070809_[0-9a-f]{6}\.csv$`), name)

	// names generated in the same second still differ
	assert.NotEqual(t, UniqueName("a.csv", now), UniqueName("a.csv", now))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.csv", "report.csv"},
		{"../../etc/passwd.csv", "passwd.csv"},
		{`C:\Users\me\q1 sales.csv`, "q1_sales.csv"},
		{"..hidden.csv", "hidden.csv"},
		{"naïve.csv", "nave.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestLocalFileStorage_Store(t *testing.T) {
	dir := t.TempDir()
	storage := NewLocalFileStorageWithPath(dir)

	path, err := storage.Store(context.Background(), strings.NewReader("a,b\n1,2\n"), "sales.csv")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(content))

	exists, err := storage.Exists(context.Background(), storage.Resolve(filepath.Base(path)))
	require.NoError(t, err)
	assert.True(t, exists)

	size, err := storage.GetFileSize(path)
	require.NoError(t, err)
	assert.Equal(t, int64(8), size)

	require.NoError(t, storage.Delete(context.Background(), path))
	exists, _ = storage.Exists(context.Background(), path)
	assert.False(t, exists)
}

func TestLocalFileStorage_RejectsNonCSV(t *testing.T) {
	storage := NewLocalFileStorageWithPath(t.TempDir())
	_, err := storage.Store(context.Background(), strings.NewReader("x"), "notes.txt")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestLocalFileStorage_RejectsOversize(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultStorageConfig()
	cfg.BasePath = dir
	cfg.MaxFileSize = 16
	storage := NewLocalFileStorage(cfg)

	_, err := storage.Store(context.Background(), bytes.NewReader(make([]byte, 17)), "big.csv")
	require.Error(t, err)
	assert.Equal(t, errors.CodeFileTooLarge, errors.GetCode(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial upload must be removed")

	_, err = storage.Store(context.Background(), bytes.NewReader(make([]byte, 16)), "exact.csv")
	assert.NoError(t, err)
}

func TestLocalFileStorage_ResolveStaysInBase(t *testing.T) {
	storage := NewLocalFileStorageWithPath("/srv/uploads")
	assert.Equal(t, "/srv/uploads/x.csv", storage.Resolve("../../x.csv"))
	assert.Equal(t, "/srv/uploads/x.csv", storage.Resolve("x.csv"))
}
