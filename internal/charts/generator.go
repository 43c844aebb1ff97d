// Package charts renders the fixed battery of report charts to PNG files with gonum/plot.
package charts

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"fininsight/domain/dataset"
	"fininsight/internal"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

const (
	maxHistograms = 3
	maxBoxplots   = 2
	maxPies       = 2
	histBins      = 30
	pieTop        = 6
	barTop        = 10
	missingLabel  = "Missing"
)

// Generator writes chart images into an artifact directory served under URLPrefix
type Generator struct {
	dir       string
	urlPrefix string
	logger    *internal.Logger
}

// NewGenerator creates a chart generator; a nil logger discards output
func NewGenerator(dir, urlPrefix string, logger *internal.Logger) *Generator {
	if logger == nil {
		logger = internal.Discard
	}
	return &Generator{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		logger:    logger.With("charts"),
	}
}

// FileName builds "{prefix}_{kind}[_{column}].png" with spaces and path separators
// replaced by underscores
func FileName(prefix string, kind dataset.ChartKind, column string) string {
	name := prefix + "_" + string(kind)
	if column != "" {
		name += "_" + column
	}
	name += ".png"
	return strings.NewReplacer(" ", "_", "/", "_", "\\", "_").Replace(name)
}

// Generate renders every chart the frame and ML result allow. A chart that fails is
// logged and left out; the others are still produced.
func (g *Generator) Generate(ctx context.Context, frame *dataset.Frame, ml dataset.MLResult, prefix string) []dataset.Chart {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		g.logger.Error("failed to create plot directory %s: %v", g.dir, err)
		return nil
	}

	var charts []dataset.Chart
	add := func(kind dataset.ChartKind, column, title string, w, h vg.Length, build func() (*plot.Plot, error)) {
		if ctx.Err() != nil {
			return
		}
		if chart, ok := g.render(kind, column, title, prefix, w, h, build); ok {
			charts = append(charts, chart)
		}
	}

	numeric := frame.NumericColumns()
	categorical := frame.CategoricalColumns()

	for _, col := range first(numeric, maxHistograms) {
		title := "Histogram: " + col.Name
		add(dataset.ChartHistogram, col.Name, title, 6*vg.Inch, 4*vg.Inch, func() (*plot.Plot, error) {
			return histogram(col, title)
		})
	}

	for _, col := range first(numeric, maxBoxplots) {
		title := "Boxplot: " + col.Name
		add(dataset.ChartBoxplot, col.Name, title, 6*vg.Inch, 3*vg.Inch, func() (*plot.Plot, error) {
			return boxplot(col, title)
		})
	}

	for _, col := range first(categorical, maxPies) {
		title := "Distribution: " + col.Name
		add(dataset.ChartPie, col.Name, title, 5*vg.Inch, 5*vg.Inch, func() (*plot.Plot, error) {
			return pie(col, title)
		})
	}

	if len(categorical) > 0 {
		col := categorical[0]
		title := "Top categories: " + col.Name
		add(dataset.ChartBar, col.Name, title, 8*vg.Inch, 4*vg.Inch, func() (*plot.Plot, error) {
			return bar(col, title)
		})
	}

	if len(numeric) >= 2 {
		add(dataset.ChartCorrelation, "", "Correlation heatmap", 8*vg.Inch, 6*vg.Inch, func() (*plot.Plot, error) {
			return correlation(numeric, "Correlation heatmap")
		})
	}

	if points, ok := ml.Projection.Get(); ok {
		if labels, ok := ml.Segments.Get(); ok {
			title := "Customer Segmentation (PCA projection)"
			add(dataset.ChartSegmentation, "", title, 8*vg.Inch, 6*vg.Inch, func() (*plot.Plot, error) {
				return segmentationScatter(points, labels, title)
			})
		}
		if flags, ok := ml.Anomalies.Get(); ok {
			title := "Fraud Risk Visualizer (PCA projection)"
			add(dataset.ChartFraud, "", title, 8*vg.Inch, 6*vg.Inch, func() (*plot.Plot, error) {
				return fraudScatter(points, flags, title)
			})
		}
	}

	g.logger.Info("generated %d charts for %s", len(charts), prefix)
	return charts
}

func (g *Generator) render(kind dataset.ChartKind, column, title, prefix string, w, h vg.Length, build func() (*plot.Plot, error)) (chart dataset.Chart, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("failed to create %s chart for %q: panic: %v", kind, column, r)
			ok = false
		}
	}()

	p, err := build()
	if err != nil {
		g.logger.Error("failed to create %s chart for %q: %v", kind, column, err)
		return chart, false
	}

	name := FileName(prefix, kind, column)
	if err := p.Save(w, h, filepath.Join(g.dir, name)); err != nil {
		g.logger.Error("failed to save %s: %v", name, err)
		return chart, false
	}
	g.logger.Debug("saved %s", name)

	return dataset.Chart{
		Kind:   kind,
		Column: column,
		Title:  title,
		File:   name,
		URL:    path.Join(g.urlPrefix, name),
	}, true
}

func first(cols []*dataset.Column, n int) []*dataset.Column {
	if len(cols) > n {
		return cols[:n]
	}
	return cols
}

func errEmpty(what string) error {
	return fmt.Errorf("no values to plot for %s", what)
}
