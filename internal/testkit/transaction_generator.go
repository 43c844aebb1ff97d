package testkit

import (
	"encoding/csv"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"
)

// TransactionGeneratorConfig configures the synthetic transaction CSV generator
type TransactionGeneratorConfig struct {
	Rows          int       `json:"rows"`           // total data rows written, duplicates included
	DuplicateRows int       `json:"duplicate_rows"` // exact copies of earlier complete rows
	MissingRows   int       `json:"missing_rows"`   // rows with exactly one blank cell
	OutlierRows   int       `json:"outlier_rows"`   // rows with an extreme amount
	StartDate     time.Time `json:"start_date"`
	Seed          int64     `json:"seed"`
}

// DefaultTransactionConfig returns the 1000-row fixture used by the end-to-end tests
func DefaultTransactionConfig() TransactionGeneratorConfig {
	return TransactionGeneratorConfig{
		Rows:          1000,
		DuplicateRows: 50,
		MissingRows:   20,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:          42,
	}
}

// TransactionHeader lists the generated columns: two numeric, one categorical,
// one boolean and one datetime column
var TransactionHeader = []string{"amount", "quantity", "region", "is_online", "created_at"}

var regions = []string{"North", "South", "East", "West", "Central"}

// TransactionGenerator produces deterministic transaction-like CSV data
type TransactionGenerator struct {
	config TransactionGeneratorConfig
	rng    *rand.Rand
}

// NewTransactionGenerator creates a new generator
func NewTransactionGenerator(config TransactionGeneratorConfig) *TransactionGenerator {
	return &TransactionGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Records returns the header followed by the data rows. Base rows are pairwise
// distinct (quantity is unique), missing rows are never duplicated and duplicates
// are spread through the file after their source row.
func (g *TransactionGenerator) Records() [][]string {
	cfg := g.config
	unique := cfg.Rows - cfg.DuplicateRows
	if unique < 1 {
		unique = 1
	}

	base := make([][]string, unique)
	for i := range base {
		amount := math.Round(math.Exp(4+0.6*g.rng.NormFloat64())*100) / 100
		if i < cfg.OutlierRows {
			amount = math.Round((50_000+g.rng.Float64()*50_000)*100) / 100
		}
		created := cfg.StartDate.Add(time.Duration(i) * 37 * time.Minute)
		base[i] = []string{
			strconv.FormatFloat(amount, 'f', 2, 64),
			strconv.Itoa(i + 1),
			regions[g.rng.Intn(len(regions))],
			strconv.FormatBool(g.rng.Intn(2) == 0),
			created.Format("2006-01-02 15:04:05"),
		}
	}

	// The last MissingRows base rows each lose one cell
	complete := unique - cfg.MissingRows
	if complete < 1 {
		complete = 1
	}
	for k, i := 0, complete; i < unique; k, i = k+1, i+1 {
		base[i][k%len(TransactionHeader)] = ""
	}

	// Shuffle so missing rows and outliers are not clustered at the end
	order := g.rng.Perm(unique)
	rows := make([][]string, 0, cfg.Rows)
	for _, i := range order {
		rows = append(rows, base[i])
	}

	for d := 0; d < cfg.DuplicateRows; d++ {
		src := g.rng.Intn(complete)
		copied := append([]string(nil), base[src]...)
		// Insert after the source row so the first occurrence is the original
		at := positionOf(rows, base[src])
		pos := at + 1 + g.rng.Intn(len(rows)-at)
		rows = append(rows, nil)
		copy(rows[pos+1:], rows[pos:])
		rows[pos] = copied
	}

	return append([][]string{TransactionHeader}, rows...)
}

func positionOf(rows [][]string, row []string) int {
	for i, r := range rows {
		if &r[0] == &row[0] {
			return i
		}
	}
	return 0
}

// WriteCSV writes the generated records to w
func (g *TransactionGenerator) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(g.Records()); err != nil {
		return err
	}
	return cw.Error()
}

// WriteFile writes the generated records to path
func (g *TransactionGenerator) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := g.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
