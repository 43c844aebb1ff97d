package charts

import (
	"fmt"
	"image/color"
	"math"

	"fininsight/domain/dataset"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
)

// CorrelationMatrix returns pairwise Pearson coefficients over rows where both
// columns are present. Undefined coefficients (constant columns) are NaN.
func CorrelationMatrix(cols []*dataset.Column) *mat.SymDense {
	n := len(cols)
	corr := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if i == j {
				corr.SetSym(i, j, selfCorrelation(cols[i]))
				continue
			}
			x, y := pairwise(cols[i], cols[j])
			r := math.NaN()
			if len(x) > 1 {
				r = stat.Correlation(x, y, nil)
			}
			corr.SetSym(i, j, r)
		}
	}
	return corr
}

func selfCorrelation(c *dataset.Column) float64 {
	values := c.Present()
	if len(values) < 2 || stat.Variance(values, nil) == 0 {
		return math.NaN()
	}
	return 1
}

func pairwise(a, b *dataset.Column) ([]float64, []float64) {
	var x, y []float64
	for i := 0; i < a.Len(); i++ {
		if a.IsMissing(i) || b.IsMissing(i) {
			continue
		}
		x = append(x, a.Num[i])
		y = append(y, b.Num[i])
	}
	return x, y
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ. Row 0 is drawn on top.
type corrGrid struct {
	m *mat.SymDense
}

func (g corrGrid) Dims() (c, r int) { n := g.m.SymmetricDim(); return n, n }
func (g corrGrid) Z(c, r int) float64 {
	n := g.m.SymmetricDim()
	return g.m.At(n-1-r, c)
}
func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

// correlation draws an annotated heatmap with a diverging palette fixed to [-1, 1]
func correlation(cols []*dataset.Column, title string) (*plot.Plot, error) {
	if len(cols) < 2 {
		return nil, fmt.Errorf("correlation needs at least 2 numeric columns, got %d", len(cols))
	}
	corr := CorrelationMatrix(cols)
	grid := corrGrid{m: corr}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)

	heat := plotter.NewHeatMap(grid, cmap.Palette(255))
	heat.Min, heat.Max = -1, 1
	heat.NaN = color.Gray{Y: 200}

	p := plot.New()
	p.Title.Text = title
	p.Add(heat)

	n := len(cols)
	xys := make(plotter.XYs, 0, n*n)
	labels := make([]string, 0, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(r)})
			labels = append(labels, fmt.Sprintf("%.2f", grid.Z(c, r)))
		}
	}
	annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, err
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].XAlign = text.XCenter
		annotations.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(annotations)

	names := make([]string, n)
	reversed := make([]string, n)
	for i, c := range cols {
		names[i] = c.Name
		reversed[n-1-i] = c.Name
	}
	p.NominalX(names...)
	p.NominalY(reversed...)
	return p, nil
}
