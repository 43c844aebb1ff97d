package analysis

import (
	"context"
	"fmt"

	"fininsight/domain/dataset"
	"fininsight/internal"
	"fininsight/internal/errors"

	"gonum.org/v1/gonum/mat"
)

// Options are the fixed model parameters
type Options struct {
	SegmentCount   int
	KMeansInit     int
	Contamination  float64
	IsolationTrees int
	Seed           int64
}

// DefaultOptions returns k=3 with 5 initialisations, 1% contamination over 100 trees and seed 42
func DefaultOptions() Options {
	return Options{
		SegmentCount:   3,
		KMeansInit:     5,
		Contamination:  0.01,
		IsolationTrees: 100,
		Seed:           42,
	}
}

// Pipeline runs feature selection, preprocessing, segmentation, anomaly scoring and
// projection. Every stage failure is contained: it is logged and recorded in the
// corresponding outcome while the other stages still run.
type Pipeline struct {
	opts   Options
	logger *internal.Logger
}

// NewPipeline creates an ML pipeline; a nil logger discards output
func NewPipeline(opts Options, logger *internal.Logger) *Pipeline {
	if logger == nil {
		logger = internal.Discard
	}
	return &Pipeline{opts: opts, logger: logger.With("analysis")}
}

// Run analyzes the working frame. It never returns an error; absent results carry
// their reason.
func (p *Pipeline) Run(ctx context.Context, frame *dataset.Frame) dataset.MLResult {
	features := SelectFeatures(frame)
	if len(features) == 0 {
		p.logger.Info("no numeric columns, skipping ML analysis")
		return dataset.EmptyMLResult(nil, fmt.Errorf("%w: no numeric feature columns", dataset.ErrSkipped))
	}
	p.logger.Debug("selected features: %v", features)

	raw, err := BuildFeatureMatrix(frame, features)
	if err != nil {
		return p.abort(features, err)
	}
	scaled, _, err := Preprocess(raw.X)
	if err != nil {
		return p.abort(features, err)
	}

	result := dataset.MLResult{Features: features}

	labels, err := p.segment(ctx, scaled)
	if err != nil {
		p.logger.Error("clustering failed: %v", err)
		stageErr := errors.StageFailed("segmentation", err)
		result.Segments = dataset.Failed[[]int](stageErr)
		result.SegmentProfiles = dataset.Failed[[]dataset.SegmentProfile](stageErr)
	} else {
		result.Segments = dataset.Succeeded(labels)
		profiles, err := SegmentProfiles(raw, labels)
		if err != nil {
			p.logger.Error("segment profiles failed: %v", err)
			result.SegmentProfiles = dataset.Failed[[]dataset.SegmentProfile](errors.StageFailed("segment profiles", err))
		} else {
			result.SegmentProfiles = dataset.Succeeded(profiles)
		}
	}

	forest := NewIsolationForest(p.opts.IsolationTrees, p.opts.Contamination, p.opts.Seed)
	flags, scores, err := forest.FitPredict(ctx, scaled)
	if err != nil {
		p.logger.Error("anomaly detection failed: %v", err)
		result.Anomalies = dataset.Failed[[]bool](errors.StageFailed("anomaly detection", err))
	} else {
		result.Anomalies = dataset.Succeeded(flags)
		result.Scores = scores
		result.FraudCount = FlaggedCount(flags)
	}

	if _, cols := scaled.Dims(); cols < 2 {
		result.Projection = dataset.Skipped[[]dataset.Point]("projection needs at least 2 feature columns")
	} else if proj, err := Project(scaled); err != nil {
		p.logger.Error("PCA failed: %v", err)
		result.Projection = dataset.Failed[[]dataset.Point](errors.StageFailed("projection", err))
	} else {
		result.Projection = dataset.Succeeded(proj.Points)
		result.ExplainedVariance = proj.ExplainedVarianceRatio
	}

	p.logger.Info("ML analysis on %d rows: features=%v fraud_count=%d", frame.NumRows(), features, result.FraudCount)
	return result
}

func (p *Pipeline) segment(ctx context.Context, x *mat.Dense) ([]int, error) {
	km := NewKMeans(p.opts.SegmentCount, p.opts.KMeansInit, p.opts.Seed)
	labels, err := km.FitPredict(ctx, x)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("k-means converged after %d iterations, inertia %.3f", km.Iterations, km.Inertia)
	return labels, nil
}

func (p *Pipeline) abort(features []string, err error) dataset.MLResult {
	p.logger.Error("preprocessing failed: %v", err)
	return dataset.EmptyMLResult(features, errors.StageFailed("preprocessing", err))
}
