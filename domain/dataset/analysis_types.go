package dataset

// ColumnProfile holds descriptive statistics for one column of the cleaned dataset
type ColumnProfile struct {
	Column       string   `json:"column"`
	Dtype        string   `json:"dtype"`
	NonNullCount int      `json:"non_null_count"`
	UniqueValues int      `json:"unique_values"`
	SampleValue  string   `json:"sample_value"`
	Mean         *float64 `json:"mean"`
	Std          *float64 `json:"std"`
}

// SegmentProfile is the mean of each raw feature over the rows of one segment
type SegmentProfile struct {
	SegmentID int                `json:"segment_id"`
	Size      int                `json:"size"`
	Means     map[string]float64 `json:"means"`
}

// Point is one projected row
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MLResult bundles the unsupervised learning outputs. Row-indexed slices follow the
// row order of the working frame; derived labels never touch the frame itself.
type MLResult struct {
	Features          []string                  `json:"features"`
	Segments          Outcome[[]int]            `json:"-"`
	SegmentProfiles   Outcome[[]SegmentProfile] `json:"-"`
	Anomalies         Outcome[[]bool]           `json:"-"`
	Scores            []float64                 `json:"-"`
	Projection        Outcome[[]Point]          `json:"-"`
	ExplainedVariance []float64                 `json:"explained_variance,omitempty"`
	FraudCount        int                       `json:"fraud_count"`
}

// EmptyMLResult returns a result with every stage absent for the given reason
func EmptyMLResult(features []string, reason error) MLResult {
	return MLResult{
		Features:        features,
		Segments:        Failed[[]int](reason),
		SegmentProfiles: Failed[[]SegmentProfile](reason),
		Anomalies:       Failed[[]bool](reason),
		Projection:      Failed[[]Point](reason),
	}
}

// ChartKind tags a generated chart; it is also the file name tag
type ChartKind string

const (
	ChartHistogram    ChartKind = "hist"
	ChartBoxplot      ChartKind = "box"
	ChartPie          ChartKind = "pie"
	ChartBar          ChartKind = "bar"
	ChartCorrelation  ChartKind = "corr"
	ChartSegmentation ChartKind = "segmentation"
	ChartFraud        ChartKind = "fraud"
)

// Chart references one rendered image
type Chart struct {
	Kind   ChartKind `json:"kind"`
	Column string    `json:"column,omitempty"`
	Title  string    `json:"title"`
	File   string    `json:"file"`
	URL    string    `json:"url"`
}

// Summary describes the dataset as a whole
type Summary struct {
	Filename            string   `json:"filename"`
	TotalRows           int      `json:"total_rows"`
	TotalCols           int      `json:"total_cols"`
	NumericCols         int      `json:"numeric_cols"`
	CategoricalCols     int      `json:"categorical_cols"`
	NumericColumns      []string `json:"numeric_columns"`
	CategoricalColumns  []string `json:"categorical_columns"`
	CompletenessPercent float64  `json:"completeness_percent"`
	QualityStatus       string   `json:"quality_status"`
	DuplicateRows       int      `json:"duplicate_rows"`
	MemoryMB            float64  `json:"memory_mb"`
	SummarySource       string   `json:"summary_source"`
}
