package charts

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"fininsight/domain/dataset"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type categoryCount struct {
	Label string
	Count int
	first int
}

// valueCounts counts category frequencies, missing cells under "Missing", ordered by
// count descending and then by first appearance; at most top entries are kept
func valueCounts(col *dataset.Column, top int) []categoryCount {
	index := make(map[string]int)
	var counts []categoryCount
	for i := 0; i < col.Len(); i++ {
		label := missingLabel
		if !col.IsMissing(i) {
			label = col.Format(i)
		}
		j, ok := index[label]
		if !ok {
			j = len(counts)
			index[label] = j
			counts = append(counts, categoryCount{Label: label, first: i})
		}
		counts[j].Count++
	}
	sort.SliceStable(counts, func(a, b int) bool {
		if counts[a].Count != counts[b].Count {
			return counts[a].Count > counts[b].Count
		}
		return counts[a].first < counts[b].first
	})
	if len(counts) > top {
		counts = counts[:top]
	}
	return counts
}

// pie draws the top six categories as wedges starting at 12 o'clock, counter-clockwise
func pie(col *dataset.Column, title string) (*plot.Plot, error) {
	counts := valueCounts(col, pieTop)
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	if total == 0 {
		return nil, errEmpty(col.Name)
	}

	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	p.X.Min, p.X.Max = -1, 1
	p.Y.Min, p.Y.Max = -1, 1

	wedges := &pieWedges{counts: counts, total: total, labelStyle: p.Legend.TextStyle}
	for i := range counts {
		wedges.colors = append(wedges.colors, plotutil.Color(i))
	}
	p.Add(wedges)
	for i, c := range counts {
		p.Legend.Add(c.Label, swatch{color: wedges.colors[i]})
	}
	p.Legend.Top = true
	return p, nil
}

// pieWedges is a plot.Plotter drawing a pie in canvas coordinates
type pieWedges struct {
	counts     []categoryCount
	total      int
	colors     []color.Color
	labelStyle text.Style
}

func (pw *pieWedges) Plot(c draw.Canvas, _ *plot.Plot) {
	center := vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: (c.Min.Y + c.Max.Y) / 2}
	radius := vg.Length(math.Min(float64(c.Max.X-c.Min.X), float64(c.Max.Y-c.Min.Y))) / 2 * 0.8

	style := pw.labelStyle
	style.XAlign = text.XCenter
	style.YAlign = text.YCenter

	angle := math.Pi / 2
	for i, cc := range pw.counts {
		share := float64(cc.Count) / float64(pw.total)
		sweep := 2 * math.Pi * share

		steps := int(math.Ceil(sweep / (math.Pi / 90)))
		if steps < 2 {
			steps = 2
		}
		pts := make([]vg.Point, 0, steps+2)
		pts = append(pts, center)
		for s := 0; s <= steps; s++ {
			pts = append(pts, polar(center, radius, angle+sweep*float64(s)/float64(steps)))
		}
		c.FillPolygon(pw.colors[i], pts)

		mid := angle + sweep/2
		c.FillText(style, polar(center, radius*0.6, mid), fmt.Sprintf("%.1f%%", share*100))
		angle += sweep
	}
}

func polar(center vg.Point, r vg.Length, angle float64) vg.Point {
	return vg.Point{
		X: center.X + r*vg.Length(math.Cos(angle)),
		Y: center.Y + r*vg.Length(math.Sin(angle)),
	}
}

// swatch is a filled legend thumbnail
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.color, c.ClipPolygonY(pts))
}

// bar draws the ten most frequent categories as horizontal bars, largest on top
func bar(col *dataset.Column, title string) (*plot.Plot, error) {
	counts := valueCounts(col, barTop)
	if len(counts) == 0 {
		return nil, errEmpty(col.Name)
	}

	values := make(plotter.Values, len(counts))
	labels := make([]string, len(counts))
	for i, c := range counts {
		j := len(counts) - 1 - i
		values[j] = float64(c.Count)
		labels[j] = c.Label
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Count"

	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = barBlue
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(labels...)
	return p, nil
}
