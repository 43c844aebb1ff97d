package app

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"fininsight/domain/dataset"
	"fininsight/internal"
	"fininsight/internal/analysis"
	"fininsight/internal/charts"
	"fininsight/internal/config"
	ingest "fininsight/internal/dataset"
	"fininsight/internal/export"
	"fininsight/internal/profiling"
	"fininsight/internal/report"

	"golang.org/x/sync/errgroup"
)

// ServiceOptions configures one AnalysisService
type ServiceOptions struct {
	Read         ingest.ReadOptions
	RowCap       int   // working-frame row cap for charts and models
	Seed         int64 // sampling seed
	ML           analysis.Options
	ArtifactDir  string // where charts and workbooks are written
	ArtifactURL  string // public URL prefix of ArtifactDir
	SkipWorkbook bool
}

// OptionsFromConfig maps the application configuration onto service options
func OptionsFromConfig(cfg *config.Config) ServiceOptions {
	read := ingest.DefaultReadOptions()
	read.FullReadMaxRows = cfg.Limits.FullReadMaxRows
	read.SampleChunkRows = cfg.Limits.SampleChunkRows
	return ServiceOptions{
		Read:   read,
		RowCap: cfg.Limits.AnalysisRowCap,
		Seed:   cfg.Analysis.Seed,
		ML: analysis.Options{
			SegmentCount:   cfg.Analysis.SegmentCount,
			KMeansInit:     cfg.Analysis.KMeansInit,
			Contamination:  cfg.Analysis.Contamination,
			IsolationTrees: cfg.Analysis.IsolationTrees,
			Seed:           cfg.Analysis.Seed,
		},
		ArtifactDir: cfg.Paths.PlotDir,
		ArtifactURL: cfg.Paths.PlotURLPrefix,
	}
}

// AnalysisRequest identifies the uploaded file to analyze
type AnalysisRequest struct {
	Path        string // file on disk
	DisplayName string // shown in the report; defaults to the base name of Path
	Prefix      string // artifact name prefix; defaults to Path's base name without extension
}

// AnalysisService runs the full dataset analysis for one file per call
type AnalysisService struct {
	opts     ServiceOptions
	reader   *ingest.Reader
	profiler *profiling.ColumnProfiler
	ml       *analysis.Pipeline
	charts   *charts.Generator
	logger   *internal.Logger
}

// NewAnalysisService creates an analysis service; a nil logger discards output
func NewAnalysisService(opts ServiceOptions, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.Discard
	}
	return &AnalysisService{
		opts:     opts,
		reader:   ingest.NewReader(opts.Read, logger),
		profiler: profiling.NewColumnProfiler(logger),
		ml:       analysis.NewPipeline(opts.ML, logger),
		charts:   charts.NewGenerator(opts.ArtifactDir, opts.ArtifactURL, logger),
		logger:   logger.With("service"),
	}
}

// Analyze reads, cleans, profiles and models the file and renders its charts. Only a
// failure to read any data at all is returned; every later stage degrades in place.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalysisRequest) (*report.Report, error) {
	start := time.Now()
	base := filepath.Base(req.Path)
	if req.DisplayName == "" {
		req.DisplayName = base
	}
	if req.Prefix == "" {
		req.Prefix = strings.TrimSuffix(base, filepath.Ext(base))
	}

	raw, info, err := s.reader.ReadFile(ctx, req.Path)
	if err != nil {
		s.logger.Error("analysis of %s aborted: %v", req.Path, err)
		return nil, err
	}
	warnings := append([]string(nil), info.Warnings...)

	normalized, dtWarnings := ingest.ExpandDatetimes(raw)
	warnings = append(warnings, dtWarnings...)

	cleaned, stats := ingest.Clean(normalized)
	s.logger.Info("cleaned %s: %d -> %d rows (%d with missing values, %d duplicates)",
		req.DisplayName, stats.InputRows, stats.OutputRows, stats.MissingRowsDropped, stats.DuplicateRowsDropped)

	working, capped := ingest.SampleRows(cleaned, s.opts.RowCap, s.opts.Seed)
	if capped {
		warnings = append(warnings, fmt.Sprintf("Charts and models use a random sample of %d of %d cleaned rows.", working.NumRows(), cleaned.NumRows()))
	}

	var (
		profiles []dataset.ColumnProfile
		ml       dataset.MLResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profiles = s.profiler.ProfileColumns(cleaned)
		return nil
	})
	g.Go(func() error {
		ml = s.ml.Run(gctx, working)
		return nil
	})
	_ = g.Wait()

	generated := s.charts.Generate(ctx, working, ml, req.Prefix)

	summary := profiling.Summarize(profiling.SummaryInput{
		Filename:      req.DisplayName,
		Raw:           normalized,
		Cleaned:       cleaned,
		DuplicateRows: stats.DuplicateRowsDropped,
		Sampled:       info.Sampled,
	})

	exportURL := s.exportWorkbook(req.Prefix, summary, profiles, ml)

	r := report.Assemble(report.Input{
		Filename:  req.DisplayName,
		Cleaned:   cleaned,
		Working:   working,
		Profiles:  profiles,
		Charts:    generated,
		ML:        ml,
		Summary:   summary,
		Sampled:   info.Sampled,
		Warnings:  warnings,
		ExportURL: exportURL,
	})
	s.logger.Info("analysis of %s finished in %s: %d charts, %d potential fraud rows",
		req.DisplayName, time.Since(start).Round(time.Millisecond), len(generated), ml.FraudCount)
	return r, nil
}

func (s *AnalysisService) exportWorkbook(prefix string, summary dataset.Summary, profiles []dataset.ColumnProfile, ml dataset.MLResult) string {
	if s.opts.SkipWorkbook {
		return ""
	}
	segments, _ := ml.SegmentProfiles.Get()
	name, err := export.WriteWorkbook(s.opts.ArtifactDir, prefix, export.Contents{
		Summary:         summary,
		Profiles:        profiles,
		SegmentProfiles: segments,
		FraudCount:      ml.FraudCount,
	})
	if err != nil {
		s.logger.Error("failed to export workbook for %s: %v", prefix, err)
		return ""
	}
	return path.Join(strings.TrimSuffix(s.opts.ArtifactURL, "/"), name)
}
