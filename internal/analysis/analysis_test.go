package analysis

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"fininsight/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestSelectFeatures(t *testing.T) {
	tests := []struct {
		name  string
		frame *dataset.Frame
		want  []string
	}{
		{
			name: "keyword match is case-insensitive",
			frame: dataset.MustFrame(
				dataset.NewNumericColumn("Total_AMOUNT", []float64{1}),
				dataset.NewNumericColumn("age", []float64{1}),
				dataset.NewNumericColumn("unit_price", []float64{1}),
				dataset.NewStringColumn("salary_band", []string{"high"}),
			),
			want: []string{"Total_AMOUNT", "unit_price"},
		},
		{
			name: "falls back to all numeric columns",
			frame: dataset.MustFrame(
				dataset.NewNumericColumn("age", []float64{1}),
				dataset.NewBoolColumn("is_cost", []bool{true}, nil),
				dataset.NewNumericColumn("tenure", []float64{1}),
			),
			want: []string{"age", "tenure"},
		},
		{
			name:  "no numeric columns",
			frame: dataset.MustFrame(dataset.NewStringColumn("city", []string{"a"})),
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectFeatures(tt.frame))
		})
	}
}

func TestBuildFeatureMatrix_RejectsNonNumeric(t *testing.T) {
	frame := dataset.MustFrame(dataset.NewStringColumn("amount", []string{"x"}))
	_, err := BuildFeatureMatrix(frame, []string{"amount"})
	assert.Error(t, err)
}

func TestPreprocess(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 5,
		2, 5,
		math.NaN(), 5,
		3, 5,
	})
	scaled, scaler, err := Preprocess(x)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, scaler.Means[0], 1e-12)
	col := mat.Col(nil, 0, scaled)
	mean, variance := stat.PopMeanVariance(col, nil)
	assert.InDelta(t, 0, mean, 1e-12)
	assert.InDelta(t, 1, variance, 1e-12)
	assert.InDelta(t, 0, scaled.At(2, 0), 1e-12, "imputed cell sits at the mean")

	// constant column scales to zero
	assert.Equal(t, 1.0, scaler.Scales[1])
	for i := 0; i < 4; i++ {
		assert.InDelta(t, 0, scaled.At(i, 1), 1e-12)
	}

	// input untouched
	assert.True(t, math.IsNaN(x.At(2, 0)))
}

func TestPreprocess_Errors(t *testing.T) {
	_, _, err := Preprocess(mat.NewDense(2, 1, []float64{math.NaN(), math.NaN()}))
	assert.Error(t, err)

	_, _, err = Preprocess(mat.NewDense(2, 1, []float64{1, math.Inf(1)}))
	assert.Error(t, err)

	_, _, err = Preprocess(nil)
	assert.Error(t, err)
}

func blobs(n int, seed int64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	centers := [][2]float64{{-8, -8}, {0, 8}, {8, -8}}
	data := make([]float64, 0, 2*n)
	for i := 0; i < n; i++ {
		c := centers[i%3]
		data = append(data, c[0]+rng.NormFloat64(), c[1]+rng.NormFloat64())
	}
	return mat.NewDense(n, 2, data)
}

func TestKMeans_SeparatesBlobs(t *testing.T) {
	x := blobs(300, 1)
	labels, err := NewKMeans(3, 5, 42).FitPredict(context.Background(), x)
	require.NoError(t, err)
	require.Len(t, labels, 300)

	// rows generated from the same center share a label, different centers differ
	for i := 3; i < 300; i++ {
		assert.Equal(t, labels[i%3], labels[i], "row %d", i)
	}
	assert.NotEqual(t, labels[0], labels[1])
	assert.NotEqual(t, labels[1], labels[2])
	assert.NotEqual(t, labels[0], labels[2])
}

func TestKMeans_Deterministic(t *testing.T) {
	x := blobs(500, 3)
	a, err := NewKMeans(3, 5, 42).FitPredict(context.Background(), x)
	require.NoError(t, err)
	b, err := NewKMeans(3, 5, 42).FitPredict(context.Background(), x)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestKMeans_TooFewRows(t *testing.T) {
	_, err := NewKMeans(3, 5, 42).FitPredict(context.Background(), mat.NewDense(2, 1, []float64{1, 2}))
	assert.Error(t, err)
}

func TestKMeans_DuplicatePoints(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{1, 1, 1, 1})
	labels, err := NewKMeans(3, 2, 42).FitPredict(context.Background(), x)
	require.NoError(t, err)
	assert.Len(t, labels, 4)
}

func TestSegmentProfiles(t *testing.T) {
	raw := &FeatureMatrix{
		Columns: []string{"amount", "balance"},
		X: mat.NewDense(4, 2, []float64{
			10, 100,
			20, 200,
			30, 300,
			50, 500,
		}),
	}
	profiles, err := SegmentProfiles(raw, []int{2, 0, 2, 0})
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	assert.Equal(t, 0, profiles[0].SegmentID)
	assert.Equal(t, 2, profiles[0].Size)
	assert.Equal(t, 35.0, profiles[0].Means["amount"])
	assert.Equal(t, 350.0, profiles[0].Means["balance"])
	assert.Equal(t, 2, profiles[1].SegmentID)
	assert.Equal(t, 20.0, profiles[1].Means["amount"])

	_, err = SegmentProfiles(raw, []int{0})
	assert.Error(t, err)
}

func TestIsolationForest_FlagsAboutContamination(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	n := 5000
	data := make([]float64, 0, 2*n)
	for i := 0; i < n; i++ {
		data = append(data, rng.NormFloat64(), rng.NormFloat64())
	}
	x := mat.NewDense(n, 2, data)

	flags, scores, err := NewIsolationForest(100, 0.01, 42).FitPredict(context.Background(), x)
	require.NoError(t, err)
	require.Len(t, scores, n)

	fraction := float64(FlaggedCount(flags)) / float64(n)
	assert.InDelta(t, 0.01, fraction, 0.003)
	for _, s := range scores {
		assert.True(t, s > 0 && s <= 1)
	}
}

func TestIsolationForest_ScoresOutlierHighest(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	n := 400
	data := make([]float64, 0, 2*n)
	for i := 0; i < n-1; i++ {
		data = append(data, rng.NormFloat64(), rng.NormFloat64())
	}
	data = append(data, 25, -25)
	x := mat.NewDense(n, 2, data)

	flags, scores, err := NewIsolationForest(100, 0.01, 42).FitPredict(context.Background(), x)
	require.NoError(t, err)
	assert.True(t, flags[n-1])
	for i := 0; i < n-1; i++ {
		assert.Less(t, scores[i], scores[n-1])
	}
}

func TestIsolationForest_Deterministic(t *testing.T) {
	x := blobs(300, 2)
	_, a, err := NewIsolationForest(50, 0.01, 42).FitPredict(context.Background(), x)
	require.NoError(t, err)
	_, b, err := NewIsolationForest(50, 0.01, 42).FitPredict(context.Background(), x)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestIsolationForest_Errors(t *testing.T) {
	_, _, err := NewIsolationForest(10, 0.01, 42).FitPredict(context.Background(), mat.NewDense(1, 1, []float64{1}))
	assert.Error(t, err)

	_, _, err = NewIsolationForest(10, 0.9, 42).FitPredict(context.Background(), blobs(10, 1))
	assert.Error(t, err)
}

func TestAveragePathLength(t *testing.T) {
	assert.Equal(t, 0.0, averagePathLength(1))
	assert.Equal(t, 1.0, averagePathLength(2))
	assert.InDelta(t, 10.2448, averagePathLength(256), 1e-3)
}

func TestQuantile(t *testing.T) {
	values := []float64{4, 1, 3, 2, 5}
	assert.Equal(t, 3.0, quantile(values, 0.5))
	assert.InDelta(t, 4.96, quantile(values, 0.99), 1e-12)
	assert.Equal(t, 5.0, quantile(values, 1))
}

func TestProject(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	n := 200
	data := make([]float64, 0, 3*n)
	for i := 0; i < n; i++ {
		a := rng.NormFloat64() * 3
		data = append(data, a, a+0.1*rng.NormFloat64(), rng.NormFloat64()*0.5)
	}
	proj, err := Project(mat.NewDense(n, 3, data))
	require.NoError(t, err)
	require.Len(t, proj.Points, n)
	require.Len(t, proj.ExplainedVarianceRatio, 2)
	assert.Greater(t, proj.ExplainedVarianceRatio[0], proj.ExplainedVarianceRatio[1])
	assert.Greater(t, proj.ExplainedVarianceRatio[0], 0.9)

	xs := make([]float64, n)
	for i, p := range proj.Points {
		xs[i] = p.X
	}
	assert.InDelta(t, 0, stat.Mean(xs, nil), 1e-9, "projection is centered")

	_, err = Project(mat.NewDense(3, 1, []float64{1, 2, 3}))
	assert.Error(t, err)
}
