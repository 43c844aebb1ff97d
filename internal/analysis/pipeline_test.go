package analysis

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"fininsight/domain/dataset"
	apperrors "fininsight/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomFrame(n int, seed int64) *dataset.Frame {
	rng := rand.New(rand.NewSource(seed))
	amount := make([]float64, n)
	balance := make([]float64, n)
	region := make([]string, n)
	for i := 0; i < n; i++ {
		amount[i] = 100 + 20*rng.NormFloat64()
		balance[i] = 1000 + 300*rng.NormFloat64()
		region[i] = []string{"N", "S", "E"}[rng.Intn(3)]
	}
	return dataset.MustFrame(
		dataset.NewNumericColumn("amount", amount),
		dataset.NewNumericColumn("balance", balance),
		dataset.NewStringColumn("region", region),
	)
}

func TestPipeline_FullRun(t *testing.T) {
	frame := randomFrame(600, 11)
	result := NewPipeline(DefaultOptions(), nil).Run(context.Background(), frame)

	assert.Equal(t, []string{"amount", "balance"}, result.Features)

	labels, ok := result.Segments.Get()
	require.True(t, ok)
	assert.Len(t, labels, 600)
	for _, l := range labels {
		assert.True(t, l >= 0 && l < 3)
	}

	profiles, ok := result.SegmentProfiles.Get()
	require.True(t, ok)
	require.Len(t, profiles, 3)
	total := 0
	for i, p := range profiles {
		assert.Equal(t, i, p.SegmentID)
		assert.Contains(t, p.Means, "amount")
		total += p.Size
	}
	assert.Equal(t, 600, total)

	flags, ok := result.Anomalies.Get()
	require.True(t, ok)
	assert.Len(t, flags, 600)
	assert.Equal(t, FlaggedCount(flags), result.FraudCount)
	assert.Len(t, result.Scores, 600)

	points, ok := result.Projection.Get()
	require.True(t, ok)
	assert.Len(t, points, 600)
	assert.Len(t, result.ExplainedVariance, 2)
}

func TestPipeline_Deterministic(t *testing.T) {
	frame := randomFrame(300, 3)
	a := NewPipeline(DefaultOptions(), nil).Run(context.Background(), frame)
	b := NewPipeline(DefaultOptions(), nil).Run(context.Background(), frame)
	assert.Equal(t, a.Segments.Value, b.Segments.Value)
	assert.Equal(t, a.Anomalies.Value, b.Anomalies.Value)
	assert.Equal(t, a.Projection.Value, b.Projection.Value)
}

func TestPipeline_SingleFeatureSkipsProjection(t *testing.T) {
	frame := dataset.MustFrame(dataset.NewNumericColumn("value", []float64{1, 2, 3, 10, 11, 12, 50, 51, 52, 53}))
	result := NewPipeline(DefaultOptions(), nil).Run(context.Background(), frame)

	assert.Equal(t, []string{"value"}, result.Features)
	assert.True(t, result.Segments.Ok)
	assert.True(t, result.Anomalies.Ok)
	assert.False(t, result.Projection.Ok)
	assert.True(t, errors.Is(result.Projection.Err, dataset.ErrSkipped))
}

func TestPipeline_NoNumericColumns(t *testing.T) {
	frame := dataset.MustFrame(dataset.NewStringColumn("city", []string{"a", "b"}))
	result := NewPipeline(DefaultOptions(), nil).Run(context.Background(), frame)

	assert.Empty(t, result.Features)
	assert.False(t, result.Segments.Ok)
	assert.False(t, result.SegmentProfiles.Ok)
	assert.False(t, result.Anomalies.Ok)
	assert.False(t, result.Projection.Ok)
	assert.Equal(t, 0, result.FraudCount)
	assert.True(t, errors.Is(result.Segments.Err, dataset.ErrSkipped))
}

func TestPipeline_PreprocessingFailureIsContained(t *testing.T) {
	frame := dataset.MustFrame(
		dataset.NewNumericColumn("amount", []float64{1, 2, 3}),
		&dataset.Column{Name: "balance", Kind: dataset.KindNumeric, Num: []float64{0, 0, 0}, Valid: []bool{false, false, false}},
	)
	result := NewPipeline(DefaultOptions(), nil).Run(context.Background(), frame)

	assert.False(t, result.Segments.Ok)
	assert.False(t, result.Anomalies.Ok)
	assert.False(t, result.Projection.Ok)
	assert.Equal(t, apperrors.CodeStageFailed, apperrors.GetCode(result.Anomalies.Err))
}

func TestPipeline_SegmentationFailureKeepsAnomalies(t *testing.T) {
	frame := dataset.MustFrame(
		dataset.NewNumericColumn("amount", []float64{1, 5}),
		dataset.NewNumericColumn("balance", []float64{3, 4}),
	)
	result := NewPipeline(DefaultOptions(), nil).Run(context.Background(), frame)

	assert.False(t, result.Segments.Ok, "two rows cannot form three segments")
	assert.False(t, result.SegmentProfiles.Ok)
	assert.True(t, result.Anomalies.Ok)
	assert.True(t, result.Projection.Ok)
}
