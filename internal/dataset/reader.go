// Package dataset reads uploaded CSV files into frames and prepares them for analysis:
// storage, datetime normalization, cleaning and row sampling.
package dataset

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"fininsight/adapters/datareadiness/coercer"
	"fininsight/domain/dataset"
	"fininsight/internal"
	"fininsight/internal/errors"
)

var errRowLimit = stderrors.New("row limit exceeded")

// ReadOptions bounds the two read strategies
type ReadOptions struct {
	FullReadMaxRows int // full reads abort above this many data rows
	SampleChunkRows int // fallback reads stop after this many data rows
	Coercion        coercer.CoercionConfig
}

// DefaultReadOptions returns the limits used by the web service
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		FullReadMaxRows: 5_000_000,
		SampleChunkRows: 100_000,
		Coercion:        coercer.DefaultCoercionConfig(),
	}
}

// ReadInfo describes how a frame was obtained
type ReadInfo struct {
	Sampled      bool     // only a leading chunk of the file was read
	RowsSkipped  int      // unparseable records dropped by the fallback
	RowsPadded   int      // short records filled with missing cells
	RowsTrimmed  int      // records whose surplus fields were dropped
	Warnings     []string // human readable notes for the report
	FallbackFrom error    // why the full read was abandoned
}

// Reader turns CSV files into typed frames
type Reader struct {
	opts    ReadOptions
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// NewReader creates a reader; a nil logger discards output
func NewReader(opts ReadOptions, logger *internal.Logger) *Reader {
	if logger == nil {
		logger = internal.Discard
	}
	return &Reader{
		opts:    opts,
		coercer: coercer.NewTypeCoercer(opts.Coercion),
		logger:  logger.With("reader"),
	}
}

// ReadFile reads the whole file, falling back to its first SampleChunkRows rows when the
// full read fails. Only the failure of both attempts is returned as an error.
func (r *Reader) ReadFile(ctx context.Context, path string) (*dataset.Frame, ReadInfo, error) {
	frame, info, fullErr := r.readPath(ctx, path, false)
	if fullErr == nil {
		r.logger.Info("read %s: %d rows x %d columns", path, frame.NumRows(), frame.NumCols())
		return frame, info, nil
	}
	if ctx.Err() != nil {
		return nil, ReadInfo{}, errors.ReadFailed(path, ctx.Err())
	}

	r.logger.Warn("full read of %s failed (%v), falling back to the first %d rows", path, fullErr, r.opts.SampleChunkRows)
	frame, info, sampleErr := r.readPath(ctx, path, true)
	if sampleErr != nil {
		return nil, ReadInfo{}, errors.ReadFailed(path, stderrors.Join(fullErr, sampleErr))
	}

	info.Sampled = true
	info.FallbackFrom = fullErr
	info.Warnings = append([]string{
		fmt.Sprintf("Dataset could not be read in full; analysis uses the first %d rows.", frame.NumRows()),
	}, info.Warnings...)
	r.logger.Info("read %s (sampled): %d rows x %d columns, %d records skipped", path, frame.NumRows(), frame.NumCols(), info.RowsSkipped)
	return frame, info, nil
}

func (r *Reader) readPath(ctx context.Context, path string, fallback bool) (*dataset.Frame, ReadInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ReadInfo{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	if fallback {
		return r.ReadSample(ctx, file)
	}
	return r.ReadAll(ctx, file)
}

// ReadAll parses the complete input with strict quoting
func (r *Reader) ReadAll(ctx context.Context, src io.Reader) (*dataset.Frame, ReadInfo, error) {
	return r.read(ctx, src, false)
}

// ReadSample parses at most SampleChunkRows data rows with lazy quoting, skipping
// records that still fail to parse
func (r *Reader) ReadSample(ctx context.Context, src io.Reader) (*dataset.Frame, ReadInfo, error) {
	return r.read(ctx, src, true)
}

func (r *Reader) read(ctx context.Context, src io.Reader, lenient bool) (*dataset.Frame, ReadInfo, error) {
	var info ReadInfo

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = lenient

	header, err := reader.Read()
	if err == io.EOF {
		return nil, info, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return nil, info, fmt.Errorf("failed to read CSV header: %w", err)
	}
	names := UniqueHeaders(header)
	cells := make([][]string, len(names))

	rows := 0
	for {
		if rows%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, info, err
			}
		}
		if lenient && rows >= r.opts.SampleChunkRows {
			break
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if lenient && stderrors.As(err, &parseErr) {
				info.RowsSkipped++
				r.logger.Debug("skipping malformed record: %v", err)
				continue
			}
			return nil, info, fmt.Errorf("failed to read CSV data: %w", err)
		}

		if !lenient && r.opts.FullReadMaxRows > 0 && rows >= r.opts.FullReadMaxRows {
			return nil, info, fmt.Errorf("%w: more than %d rows", errRowLimit, r.opts.FullReadMaxRows)
		}

		switch {
		case len(record) < len(names):
			info.RowsPadded++
		case len(record) > len(names):
			info.RowsTrimmed++
		}
		for j := range names {
			if j < len(record) {
				cells[j] = append(cells[j], record[j])
			} else {
				cells[j] = append(cells[j], "")
			}
		}
		rows++
	}

	if info.RowsTrimmed > 0 {
		info.Warnings = append(info.Warnings, fmt.Sprintf("%d rows had more fields than the header; extra fields were ignored.", info.RowsTrimmed))
	}
	if info.RowsSkipped > 0 {
		info.Warnings = append(info.Warnings, fmt.Sprintf("%d malformed rows were skipped.", info.RowsSkipped))
	}

	cols := make([]*dataset.Column, len(names))
	for j, name := range names {
		cols[j] = r.coercer.BuildColumn(name, cells[j])
		r.logger.Trace("column %q inferred as %s", name, cols[j].Dtype())
	}
	frame, err := dataset.NewFrame(cols...)
	if err != nil {
		return nil, info, err
	}
	return frame, info, nil
}

// UniqueHeaders blanks become "Unnamed: i" and repeated names get ".1", ".2" suffixes
func UniqueHeaders(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		base := strings.TrimSpace(h)
		if base == "" {
			base = "Unnamed: " + strconv.Itoa(i)
		}
		name := base
		for n := 1; used[name]; n++ {
			name = base + "." + strconv.Itoa(n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}
