package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fininsight/domain/core"
	"fininsight/internal/errors"
)

// FileStorage defines the interface for upload storage operations
type FileStorage interface {
	Store(ctx context.Context, src io.Reader, filename string) (string, error)
	Resolve(name string) string
	GetReader(ctx context.Context, filePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, filePath string) error
	Exists(ctx context.Context, filePath string) (bool, error)
	GetFileSize(filePath string) (int64, error)
}

// StorageConfig holds configuration for file storage
type StorageConfig struct {
	BasePath          string   // directory uploads are written to
	MaxFileSize       int64    // maximum accepted upload in bytes
	ChunkSize         int      // copy buffer size
	AllowedExtensions []string // lower-case, with the leading dot
}

// DefaultStorageConfig returns the upload settings of the web service
func DefaultStorageConfig() *StorageConfig {
	return &StorageConfig{
		BasePath:          "uploads",
		MaxFileSize:       500 * 1024 * 1024,
		ChunkSize:         1024 * 1024,
		AllowedExtensions: []string{".csv"},
	}
}

// LocalFileStorage implements FileStorage using local filesystem
type LocalFileStorage struct {
	config *StorageConfig
	now    func() time.Time
}

// NewLocalFileStorage creates a new local file storage instance
func NewLocalFileStorage(config *StorageConfig) *LocalFileStorage {
	if config == nil {
		config = DefaultStorageConfig()
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = 32 * 1024
	}
	return &LocalFileStorage{config: config, now: time.Now}
}

// NewLocalFileStorageWithPath creates a new local file storage with a simple path
func NewLocalFileStorageWithPath(basePath string) *LocalFileStorage {
	config := DefaultStorageConfig()
	config.BasePath = basePath
	return NewLocalFileStorage(config)
}

// AllowedFile reports whether the file name carries an accepted extension
func (s *LocalFileStorage) AllowedFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range s.config.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Store saves an upload under a unique name and returns its path. Uploads above
// MaxFileSize are rejected with FILE_TOO_LARGE and nothing is left on disk.
func (s *LocalFileStorage) Store(ctx context.Context, src io.Reader, filename string) (string, error) {
	if !s.AllowedFile(filename) {
		return "", errors.InvalidInput(fmt.Sprintf("unsupported file type %q: only CSV files are accepted", filepath.Ext(filename)))
	}

	// Create uploads directory if it doesn't exist
	if err := os.MkdirAll(s.config.BasePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	filePath := filepath.Join(s.config.BasePath, UniqueName(filename, s.now()))

	destFile, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	limited := io.LimitReader(&contextReader{ctx: ctx, r: src}, s.config.MaxFileSize+1)
	buf := make([]byte, s.config.ChunkSize)
	written, err := io.CopyBuffer(destFile, limited, buf)
	if err != nil {
		os.Remove(filePath) // Clean up on failure
		return "", fmt.Errorf("failed to copy file contents: %w", err)
	}
	if written > s.config.MaxFileSize {
		os.Remove(filePath)
		return "", errors.FileTooLarge(s.config.MaxFileSize)
	}

	return filePath, nil
}

// Resolve maps a stored file name back to its path inside the storage directory.
// Only the base name is honoured so a client-held name cannot escape the directory.
func (s *LocalFileStorage) Resolve(name string) string {
	return filepath.Join(s.config.BasePath, filepath.Base(filepath.Clean("/"+name)))
}

// GetReader returns a reader for the stored file
func (s *LocalFileStorage) GetReader(ctx context.Context, filePath string) (io.ReadCloser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes a file from storage
func (s *LocalFileStorage) Delete(ctx context.Context, filePath string) error {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists checks if a file exists in storage
func (s *LocalFileStorage) Exists(ctx context.Context, filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	return true, nil
}

// GetFileSize returns the size of a stored file
func (s *LocalFileStorage) GetFileSize(filePath string) (int64, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to get file info: %w", err)
	}
	return info.Size(), nil
}

// UniqueName builds "{base}_{YYYYmmddHHMMSS}_{6 hex}{ext}" from a sanitized client file name
func UniqueName(filename string, now time.Time) string {
	clean := SanitizeFilename(filename)
	ext := filepath.Ext(clean)
	base := strings.TrimSuffix(clean, ext)
	if base == "" {
		base = "dataset"
	}
	return fmt.Sprintf("%s_%s_%s%s", base, now.Format("20060102150405"), core.Short(6), strings.ToLower(ext))
}

// SanitizeFilename keeps ASCII letters, digits, dots, dashes and underscores;
// whitespace becomes an underscore and any directory part is dropped
func SanitizeFilename(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteByte('_')
		}
	}
	return strings.TrimLeft(b.String(), "._")
}

// contextReader stops a copy once the request context is cancelled
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
