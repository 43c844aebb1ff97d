package charts

import (
	"fmt"
	"image/color"

	"fininsight/domain/dataset"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	normalBlue = color.RGBA{B: 255, A: 153}
	fraudRed   = color.RGBA{R: 255, A: 153}
)

// segmentationScatter colours the projected points by segment label
func segmentationScatter(points []dataset.Point, labels []int, title string) (*plot.Plot, error) {
	if len(points) != len(labels) {
		return nil, fmt.Errorf("%d points but %d segment labels", len(points), len(labels))
	}
	if len(points) == 0 {
		return nil, errEmpty("segmentation")
	}

	groups := make(map[int]plotter.XYs)
	maxLabel := 0
	for i, pt := range points {
		groups[labels[i]] = append(groups[labels[i]], plotter.XY{X: pt.X, Y: pt.Y})
		if labels[i] > maxLabel {
			maxLabel = labels[i]
		}
	}

	cmap := moreland.Kindlmann()
	cmap.SetMin(0)
	cmap.SetMax(float64(maxLabel) + 1)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Principal Component 1"
	p.Y.Label.Text = "Principal Component 2"

	for label := 0; label <= maxLabel; label++ {
		xys, ok := groups[label]
		if !ok {
			continue
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}
		clr, err := cmap.At(float64(label) + 0.5)
		if err != nil {
			return nil, err
		}
		s.GlyphStyle = glyph(clr)
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("Segment %d", label), s)
	}
	p.Legend.Top = true
	return p, nil
}

// fraudScatter colours normal points blue and flagged points red. Both legend entries
// are always present.
func fraudScatter(points []dataset.Point, flags []bool, title string) (*plot.Plot, error) {
	if len(points) != len(flags) {
		return nil, fmt.Errorf("%d points but %d anomaly flags", len(points), len(flags))
	}
	if len(points) == 0 {
		return nil, errEmpty("fraud")
	}

	var normal, fraud plotter.XYs
	for i, pt := range points {
		xy := plotter.XY{X: pt.X, Y: pt.Y}
		if flags[i] {
			fraud = append(fraud, xy)
		} else {
			normal = append(normal, xy)
		}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Principal Component 1"
	p.Y.Label.Text = "Principal Component 2"

	for _, set := range []struct {
		xys   plotter.XYs
		color color.Color
	}{{normal, normalBlue}, {fraud, fraudRed}} {
		if len(set.xys) == 0 {
			continue
		}
		s, err := plotter.NewScatter(set.xys)
		if err != nil {
			return nil, err
		}
		s.GlyphStyle = glyph(set.color)
		p.Add(s)
	}

	p.Legend.Add("Normal", marker{style: glyph(color.RGBA{B: 255, A: 255})})
	p.Legend.Add("Potential Fraud", marker{style: glyph(color.RGBA{R: 255, A: 255})})
	p.Legend.Top = true
	return p, nil
}

func glyph(clr color.Color) draw.GlyphStyle {
	return draw.GlyphStyle{Color: clr, Radius: vg.Points(3), Shape: draw.CircleGlyph{}}
}

// marker is a legend thumbnail showing a single glyph
type marker struct {
	style draw.GlyphStyle
}

func (m marker) Thumbnail(c *draw.Canvas) {
	c.DrawGlyph(m.style, c.Center())
}
