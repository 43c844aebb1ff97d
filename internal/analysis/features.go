// Package analysis runs the unsupervised learning passes over a cleaned frame:
// feature selection, preprocessing, k-means segmentation, isolation-forest anomaly
// scoring and a PCA projection for plotting.
package analysis

import (
	"fmt"
	"math"
	"strings"

	"fininsight/domain/dataset"

	"gonum.org/v1/gonum/mat"
)

// FinancialKeywords mark column names that likely hold monetary amounts
var FinancialKeywords = []string{
	"amount", "balance", "price", "cost", "revenue",
	"expense", "profit", "salary", "income", "transaction",
}

// SelectFeatures returns the numeric columns whose name contains a financial keyword
// (case-insensitive). Without a match every numeric column is returned; a frame
// without numeric columns yields nil. Boolean columns never qualify.
func SelectFeatures(frame *dataset.Frame) []string {
	var numeric, financial []string
	for _, c := range frame.NumericColumns() {
		numeric = append(numeric, c.Name)
		lower := strings.ToLower(c.Name)
		for _, kw := range FinancialKeywords {
			if strings.Contains(lower, kw) {
				financial = append(financial, c.Name)
				break
			}
		}
	}
	if len(financial) > 0 {
		return financial
	}
	return numeric
}

// FeatureMatrix is the numeric sub-view of a frame restricted to the selected columns.
// Missing cells hold NaN.
type FeatureMatrix struct {
	Columns []string
	X       *mat.Dense
}

// BuildFeatureMatrix copies the named columns into a row-major matrix
func BuildFeatureMatrix(frame *dataset.Frame, columns []string) (*FeatureMatrix, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("no feature columns selected")
	}
	rows := frame.NumRows()
	if rows == 0 {
		return nil, fmt.Errorf("no rows to analyze")
	}

	x := mat.NewDense(rows, len(columns), nil)
	for j, name := range columns {
		col := frame.Column(name)
		if col == nil {
			return nil, fmt.Errorf("feature column %q not found", name)
		}
		if col.Kind != dataset.KindNumeric {
			return nil, fmt.Errorf("feature column %q is %s, not numeric", name, col.Kind)
		}
		for i := 0; i < rows; i++ {
			if col.IsMissing(i) {
				x.Set(i, j, math.NaN())
				continue
			}
			x.Set(i, j, col.Num[i])
		}
	}
	return &FeatureMatrix{Columns: append([]string(nil), columns...), X: x}, nil
}
