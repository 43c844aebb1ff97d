package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"fininsight/domain/dataset"
)

// TypeCoercer infers column kinds from raw CSV text and converts cells to typed values
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64  `json:"numeric_threshold"`   // share of present values that must parse as numbers
	BooleanThreshold   float64  `json:"boolean_threshold"`   // share of present values that must parse as booleans
	TimestampThreshold float64  `json:"timestamp_threshold"` // share of present values that must parse as timestamps
	MissingTokens      []string `json:"missing_tokens"`
	TimestampLayouts   []string `json:"timestamp_layouts"`
}

// DefaultCoercionConfig requires every present value to agree on a type, the way a
// strict CSV reader infers dtypes
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   1.0,
		BooleanThreshold:   1.0,
		TimestampThreshold: 1.0,
		MissingTokens:      []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "<NA>", "#N/A"},
		TimestampLayouts: []string{
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02",
			"01/02/2006",
			"2006/01/02",
			"02-Jan-2006",
		},
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// IsMissing reports whether a raw cell denotes a missing value
func (c *TypeCoercer) IsMissing(raw string) bool {
	v := strings.TrimSpace(raw)
	for _, tok := range c.config.MissingTokens {
		if v == tok {
			return true
		}
	}
	return false
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int          `json:"total_count"`
	ValidCount      int          `json:"valid_count"`
	NumericCount    int          `json:"numeric_count"`
	IntegerCount    int          `json:"integer_count"`
	BooleanCount    int          `json:"boolean_count"`
	TimestampCount  int          `json:"timestamp_count"`
	NumericRatio    float64      `json:"numeric_ratio"`
	BooleanRatio    float64      `json:"boolean_ratio"`
	TimestampRatio  float64      `json:"timestamp_ratio"`
	RecommendedKind dataset.Kind `json:"recommended_kind"`
	Integer         bool         `json:"integer"`
}

// AnalyzeTypeDistribution counts how many present values parse as each type and
// recommends a kind
func (c *TypeCoercer) AnalyzeTypeDistribution(values []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}

	for _, raw := range values {
		if c.IsMissing(raw) {
			continue
		}
		analysis.ValidCount++
		v := strings.TrimSpace(raw)

		if _, ok := parseNumeric(v); ok {
			analysis.NumericCount++
			if looksIntegral(v) {
				analysis.IntegerCount++
			}
		}
		if _, ok := parseBoolean(v); ok {
			analysis.BooleanCount++
		}
		if _, ok := c.parseTimestamp(v); ok {
			analysis.TimestampCount++
		}
	}

	if analysis.ValidCount > 0 {
		valid := float64(analysis.ValidCount)
		analysis.NumericRatio = float64(analysis.NumericCount) / valid
		analysis.BooleanRatio = float64(analysis.BooleanCount) / valid
		analysis.TimestampRatio = float64(analysis.TimestampCount) / valid
	}

	analysis.RecommendedKind = c.determineRecommendedKind(analysis)
	analysis.Integer = analysis.RecommendedKind == dataset.KindNumeric && analysis.IntegerCount == analysis.NumericCount
	return analysis
}

// BuildColumn infers the kind of raw values and converts them into a typed column.
// Values that do not parse under the chosen kind become missing.
func (c *TypeCoercer) BuildColumn(name string, raw []string) *dataset.Column {
	analysis := c.AnalyzeTypeDistribution(raw)
	n := len(raw)
	col := &dataset.Column{Name: name, Kind: analysis.RecommendedKind, Integer: analysis.Integer, Valid: make([]bool, n)}

	switch col.Kind {
	case dataset.KindNumeric:
		col.Num = make([]float64, n)
		for i, v := range raw {
			col.Num[i] = math.NaN()
			if c.IsMissing(v) {
				continue
			}
			if f, ok := parseNumeric(strings.TrimSpace(v)); ok {
				col.Num[i], col.Valid[i] = f, true
			}
		}
	case dataset.KindBoolean:
		col.Bool = make([]bool, n)
		for i, v := range raw {
			if c.IsMissing(v) {
				continue
			}
			if b, ok := parseBoolean(strings.TrimSpace(v)); ok {
				col.Bool[i], col.Valid[i] = b, true
			}
		}
	case dataset.KindDatetime:
		col.Time = make([]time.Time, n)
		for i, v := range raw {
			if c.IsMissing(v) {
				continue
			}
			if t, ok := c.parseTimestamp(strings.TrimSpace(v)); ok {
				col.Time[i], col.Valid[i] = t, true
			}
		}
	default:
		col.Str = make([]string, n)
		for i, v := range raw {
			if c.IsMissing(v) {
				continue
			}
			col.Str[i], col.Valid[i] = v, true
		}
	}
	return col
}

// parseNumeric accepts plain decimal and scientific notation; infinities are rejected
func parseNumeric(v string) (float64, bool) {
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func looksIntegral(v string) bool {
	return !strings.ContainsAny(v, ".eE")
}

func parseBoolean(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func (c *TypeCoercer) parseTimestamp(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range c.config.TimestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// determineRecommendedKind checks thresholds in order of preference
func (c *TypeCoercer) determineRecommendedKind(analysis TypeAnalysis) dataset.Kind {
	if analysis.ValidCount == 0 {
		return dataset.KindCategorical
	}
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return dataset.KindNumeric
	}
	if analysis.BooleanRatio >= c.config.BooleanThreshold {
		return dataset.KindBoolean
	}
	if analysis.TimestampRatio >= c.config.TimestampThreshold {
		return dataset.KindDatetime
	}
	return dataset.KindCategorical
}
