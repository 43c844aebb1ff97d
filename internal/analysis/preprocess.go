package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Scaler holds the statistics a matrix was standardized with
type Scaler struct {
	Means  []float64 // column means after imputation
	Scales []float64 // population standard deviations; 1 for constant columns
}

// Preprocess fills NaN cells with their column mean and standardizes every column to
// zero mean and unit variance using the matrix's own statistics. The input is not
// modified.
func Preprocess(x *mat.Dense) (*mat.Dense, *Scaler, error) {
	if x == nil {
		return nil, nil, fmt.Errorf("empty feature matrix")
	}
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return nil, nil, fmt.Errorf("empty feature matrix")
	}

	out := mat.DenseCopyOf(x)
	scaler := &Scaler{Means: make([]float64, cols), Scales: make([]float64, cols)}
	column := make([]float64, rows)

	for j := 0; j < cols; j++ {
		mat.Col(column, j, out)

		sum, present := 0.0, 0
		for _, v := range column {
			if math.IsInf(v, 0) {
				return nil, nil, fmt.Errorf("column %d holds a non-finite value", j)
			}
			if !math.IsNaN(v) {
				sum += v
				present++
			}
		}
		if present == 0 {
			return nil, nil, fmt.Errorf("column %d has no observed values", j)
		}
		fill := sum / float64(present)
		for i, v := range column {
			if math.IsNaN(v) {
				column[i] = fill
			}
		}

		mean, variance := stat.PopMeanVariance(column, nil)
		scale := math.Sqrt(variance)
		if scale < 10*epsilon || math.IsNaN(scale) {
			scale = 1
		}
		scaler.Means[j], scaler.Scales[j] = mean, scale

		for i, v := range column {
			out.Set(i, j, (v-mean)/scale)
		}
	}
	return out, scaler, nil
}

const epsilon = 2.220446049250313e-16
