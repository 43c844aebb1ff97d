package report

import (
	"html/template"

	"fininsight/domain/dataset"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// GuideEntry explains one chart kind to the reader
type GuideEntry struct {
	Kind        dataset.ChartKind `json:"kind"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	HTML        template.HTML     `json:"-"`
}

var guide = []struct {
	kind  dataset.ChartKind
	title string
	md    string
}{
	{dataset.ChartHistogram, "📊 Distribution", "Shows how values are spread across ranges."},
	{dataset.ChartBoxplot, "📦 Outliers", "Displays data spread and highlights unusual values."},
	{dataset.ChartPie, "🥧 Proportions", "Shows percentage breakdown of categories."},
	{dataset.ChartBar, "📊 Comparison", "Compares frequencies across categories."},
	{dataset.ChartCorrelation, "🔥 Relationships", "Shows how variables relate to each other."},
	{dataset.ChartSegmentation, "🧩 Segments", "Groups similar rows into **segments** and plots them on the two main *principal components*."},
	{dataset.ChartFraud, "🚨 Fraud risk", "Rows the isolation forest finds unusual are drawn in **red** as *Potential Fraud*."},
}

// ChartGuide returns the explanation for every chart kind present in charts, in the
// fixed guide order
func ChartGuide(charts []dataset.Chart) []GuideEntry {
	present := make(map[dataset.ChartKind]bool, len(charts))
	for _, c := range charts {
		present[c.Kind] = true
	}
	var entries []GuideEntry
	for _, g := range guide {
		if !present[g.kind] {
			continue
		}
		entries = append(entries, GuideEntry{
			Kind:        g.kind,
			Title:       g.title,
			Description: g.md,
			HTML:        renderMarkdown(g.md),
		})
	}
	return entries
}

func renderMarkdown(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return template.HTML(markdown.ToHTML([]byte(md), p, r))
}
