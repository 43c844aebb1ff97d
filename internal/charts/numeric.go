package charts

import (
	"image/color"
	"math"

	"fininsight/domain/dataset"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	barBlue  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	fillBlue = color.RGBA{R: 31, G: 119, B: 180, A: 140}
)

// histogram draws a 30-bin density histogram with a Gaussian kernel density overlay
func histogram(col *dataset.Column, title string) (*plot.Plot, error) {
	values := col.Present()
	if len(values) == 0 {
		return nil, errEmpty(col.Name)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = col.Name
	p.Y.Label.Text = "Density"

	h, err := plotter.NewHist(plotter.Values(values), histBins)
	if err != nil {
		return nil, err
	}
	h.Normalize(1)
	h.FillColor = fillBlue
	h.LineStyle.Color = barBlue
	p.Add(h)

	if kde := densityCurve(values); kde != nil {
		line, err := plotter.NewLine(kde)
		if err != nil {
			return nil, err
		}
		line.Color = barBlue
		line.Width = vg.Points(1.5)
		p.Add(line)
	}
	return p, nil
}

// densityCurve evaluates a Gaussian KDE with Scott's bandwidth over the data range
// extended by three bandwidths. Degenerate samples yield nil.
func densityCurve(values []float64) plotter.XYs {
	n := len(values)
	if n < 2 {
		return nil
	}
	sd := stat.StdDev(values, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	bw := sd * math.Pow(float64(n), -0.2)

	const points = 200
	lo, hi := floats.Min(values)-3*bw, floats.Max(values)+3*bw
	xs := make([]float64, points)
	floats.Span(xs, lo, hi)

	norm := 1 / (float64(n) * bw * math.Sqrt(2*math.Pi))
	curve := make(plotter.XYs, points)
	for i, x := range xs {
		sum := 0.0
		for _, v := range values {
			z := (x - v) / bw
			sum += math.Exp(-0.5 * z * z)
		}
		curve[i] = plotter.XY{X: x, Y: sum * norm}
	}
	return curve
}

// boxplot draws a single horizontal box with whiskers at 1.5 IQR
func boxplot(col *dataset.Column, title string) (*plot.Plot, error) {
	values := col.Present()
	if len(values) == 0 {
		return nil, errEmpty(col.Name)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = col.Name

	box, err := plotter.NewBoxPlot(vg.Points(40), 0, plotter.Values(values))
	if err != nil {
		return nil, err
	}
	box.Horizontal = true
	box.FillColor = fillBlue
	p.Add(box)
	p.NominalY("")
	return p, nil
}
