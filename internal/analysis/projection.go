package analysis

import (
	"errors"
	"fmt"

	"fininsight/domain/dataset"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Projection is the 2D principal-component view of a standardized matrix
type Projection struct {
	Points []dataset.Point
	// ExplainedVarianceRatio of the two kept components
	ExplainedVarianceRatio []float64
}

// Project reduces x to its first two principal components. Row order is preserved.
func Project(x *mat.Dense) (*Projection, error) {
	rows, cols := x.Dims()
	if cols < 2 {
		return nil, fmt.Errorf("projection needs at least 2 feature columns, got %d", cols)
	}
	if rows < 2 {
		return nil, fmt.Errorf("projection needs at least 2 rows, got %d", rows)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, errors.New("principal component decomposition failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	centered := mat.DenseCopyOf(x)
	column := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(column, j, centered)
		mean := stat.Mean(column, nil)
		floats.AddConst(-mean, column)
		centered.SetCol(j, column)
	}

	var coords mat.Dense
	coords.Mul(centered, vecs.Slice(0, cols, 0, 2))

	points := make([]dataset.Point, rows)
	for i := range points {
		points[i] = dataset.Point{X: coords.At(i, 0), Y: coords.At(i, 1)}
	}

	total := floats.Sum(vars)
	ratio := make([]float64, 2)
	if total > 0 {
		ratio[0], ratio[1] = vars[0]/total, vars[1]/total
	}
	return &Projection{Points: points, ExplainedVarianceRatio: ratio}, nil
}
