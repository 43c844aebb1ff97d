package report

import (
	"html"
	"html/template"
	"strconv"
	"strings"

	"fininsight/domain/dataset"
)

const headRows = 10

var profileHeader = []string{"column", "dtype", "non_null_count", "unique_values", "sample_value", "mean", "std"}

// HeadTable renders the first ten rows of the frame as an HTML table
func HeadTable(frame *dataset.Frame) template.HTML {
	head := frame.Head(headRows)
	rows := make([][]string, head.NumRows())
	for i := range rows {
		row := make([]string, head.NumCols())
		for j, c := range head.Columns {
			row[j] = c.Format(i)
		}
		rows[i] = row
	}
	return table("table-sample", head.Names(), rows)
}

// ProfileTable renders column profiles with floats to three decimals; absent statistics
// are empty cells
func ProfileTable(profiles []dataset.ColumnProfile) template.HTML {
	rows := make([][]string, len(profiles))
	for i, p := range profiles {
		rows[i] = []string{
			p.Column,
			p.Dtype,
			strconv.Itoa(p.NonNullCount),
			strconv.Itoa(p.UniqueValues),
			p.SampleValue,
			optional(p.Mean),
			optional(p.Std),
		}
	}
	return table("invisible-border-table", profileHeader, rows)
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}

func table(class string, header []string, rows [][]string) template.HTML {
	var b strings.Builder
	b.WriteString(`<table border="1" class="dataframe `)
	b.WriteString(class)
	b.WriteString("\">\n  <thead>\n    <tr style=\"text-align: right;\">\n")
	for _, h := range header {
		b.WriteString("      <th>")
		b.WriteString(html.EscapeString(h))
		b.WriteString("</th>\n")
	}
	b.WriteString("    </tr>\n  </thead>\n  <tbody>\n")
	for _, row := range rows {
		b.WriteString("    <tr>\n")
		for _, cell := range row {
			b.WriteString("      <td>")
			b.WriteString(html.EscapeString(cell))
			b.WriteString("</td>\n")
		}
		b.WriteString("    </tr>\n")
	}
	b.WriteString("  </tbody>\n</table>")
	return template.HTML(b.String())
}
