// Package dataset holds the in-memory tabular model shared by the analysis pipeline.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the semantic type of a column
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindBoolean     Kind = "boolean"
	KindDatetime    Kind = "datetime"
)

// Column is a single named, typed column. Only the slice matching Kind is populated;
// Valid[i] is false for a missing cell.
type Column struct {
	Name    string      `json:"name"`
	Kind    Kind        `json:"kind"`
	Integer bool        `json:"integer,omitempty"`
	Num     []float64   `json:"-"`
	Str     []string    `json:"-"`
	Bool    []bool      `json:"-"`
	Time    []time.Time `json:"-"`
	Valid   []bool      `json:"-"`
}

// NewNumericColumn builds a numeric column; NaN marks a missing value
func NewNumericColumn(name string, values []float64) *Column {
	c := &Column{Name: name, Kind: KindNumeric, Num: make([]float64, len(values)), Valid: make([]bool, len(values))}
	integer := true
	for i, v := range values {
		c.Num[i] = v
		c.Valid[i] = !math.IsNaN(v)
		if c.Valid[i] && v != math.Trunc(v) {
			integer = false
		}
	}
	c.Integer = integer
	return c
}

// NewIntColumn builds an integer-typed numeric column with every cell present
func NewIntColumn(name string, values []int) *Column {
	c := &Column{Name: name, Kind: KindNumeric, Integer: true, Num: make([]float64, len(values)), Valid: make([]bool, len(values))}
	for i, v := range values {
		c.Num[i] = float64(v)
		c.Valid[i] = true
	}
	return c
}

// NewStringColumn builds a categorical column; the empty string marks a missing value
func NewStringColumn(name string, values []string) *Column {
	c := &Column{Name: name, Kind: KindCategorical, Str: make([]string, len(values)), Valid: make([]bool, len(values))}
	for i, v := range values {
		c.Str[i] = v
		c.Valid[i] = v != ""
	}
	return c
}

// NewBoolColumn builds a boolean column; a nil valid slice means every cell is present
func NewBoolColumn(name string, values []bool, valid []bool) *Column {
	c := &Column{Name: name, Kind: KindBoolean, Bool: append([]bool(nil), values...), Valid: make([]bool, len(values))}
	for i := range values {
		c.Valid[i] = valid == nil || valid[i]
	}
	return c
}

// NewTimeColumn builds a datetime column; the zero time marks a missing value
func NewTimeColumn(name string, values []time.Time) *Column {
	c := &Column{Name: name, Kind: KindDatetime, Time: append([]time.Time(nil), values...), Valid: make([]bool, len(values))}
	for i, v := range values {
		c.Valid[i] = !v.IsZero()
	}
	return c
}

// Len returns the number of cells
func (c *Column) Len() int {
	return len(c.Valid)
}

// IsMissing reports whether cell i is missing
func (c *Column) IsMissing(i int) bool {
	return !c.Valid[i]
}

// Dtype returns the storage label shown in profiles
func (c *Column) Dtype() string {
	switch c.Kind {
	case KindNumeric:
		if c.Integer {
			return "int64"
		}
		return "float64"
	case KindBoolean:
		return "bool"
	case KindDatetime:
		return "datetime"
	default:
		return "object"
	}
}

// Format renders cell i as text; missing cells render as the empty string
func (c *Column) Format(i int) string {
	if !c.Valid[i] {
		return ""
	}
	switch c.Kind {
	case KindNumeric:
		if c.Integer {
			return strconv.FormatInt(int64(c.Num[i]), 10)
		}
		return strconv.FormatFloat(c.Num[i], 'f', -1, 64)
	case KindBoolean:
		if c.Bool[i] {
			return "True"
		}
		return "False"
	case KindDatetime:
		t := c.Time[i]
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	default:
		return c.Str[i]
	}
}

// Present returns the non-missing numeric values in row order
func (c *Column) Present() []float64 {
	out := make([]float64, 0, len(c.Num))
	for i, v := range c.Num {
		if c.Valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// Take copies the given rows, in the given order, into a new column
func (c *Column) Take(rows []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind, Integer: c.Integer, Valid: make([]bool, len(rows))}
	switch c.Kind {
	case KindNumeric:
		out.Num = make([]float64, len(rows))
	case KindBoolean:
		out.Bool = make([]bool, len(rows))
	case KindDatetime:
		out.Time = make([]time.Time, len(rows))
	default:
		out.Str = make([]string, len(rows))
	}
	for j, i := range rows {
		out.Valid[j] = c.Valid[i]
		switch c.Kind {
		case KindNumeric:
			out.Num[j] = c.Num[i]
		case KindBoolean:
			out.Bool[j] = c.Bool[i]
		case KindDatetime:
			out.Time[j] = c.Time[i]
		default:
			out.Str[j] = c.Str[i]
		}
	}
	return out
}

// key is an unambiguous per-cell token used for row equality
func (c *Column) key(i int) string {
	if !c.Valid[i] {
		return "\x00"
	}
	switch c.Kind {
	case KindNumeric:
		return strconv.FormatFloat(c.Num[i], 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(c.Bool[i])
	case KindDatetime:
		return c.Time[i].UTC().Format(time.RFC3339Nano)
	default:
		return strconv.Quote(c.Str[i])
	}
}

// storageBytes estimates the memory held by the column
func (c *Column) storageBytes() int64 {
	n := int64(len(c.Valid))
	switch c.Kind {
	case KindNumeric:
		return n * 9
	case KindBoolean:
		return n * 2
	case KindDatetime:
		return n * 25
	default:
		total := n * 17 // string header + validity byte
		for _, s := range c.Str {
			total += int64(len(s))
		}
		return total
	}
}

// Frame is an ordered set of equal-length columns
type Frame struct {
	Columns []*Column
}

// NewFrame validates column lengths and names
func NewFrame(cols ...*Column) (*Frame, error) {
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = true
		if c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), cols[0].Len())
		}
	}
	return &Frame{Columns: cols}, nil
}

// MustFrame is NewFrame for fixtures known to be well formed
func MustFrame(cols ...*Column) *Frame {
	f, err := NewFrame(cols...)
	if err != nil {
		panic(err)
	}
	return f
}

// NumRows returns the row count
func (f *Frame) NumRows() int {
	if len(f.Columns) == 0 {
		return 0
	}
	return f.Columns[0].Len()
}

// NumCols returns the column count
func (f *Frame) NumCols() int {
	return len(f.Columns)
}

// Names returns the column names in order
func (f *Frame) Names() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by name
func (f *Frame) Column(name string) *Column {
	for _, c := range f.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// NumericColumns returns the numeric columns in order (booleans excluded)
func (f *Frame) NumericColumns() []*Column {
	var out []*Column
	for _, c := range f.Columns {
		if c.Kind == KindNumeric {
			out = append(out, c)
		}
	}
	return out
}

// CategoricalColumns returns the categorical and boolean columns in order
func (f *Frame) CategoricalColumns() []*Column {
	var out []*Column
	for _, c := range f.Columns {
		if c.Kind == KindCategorical || c.Kind == KindBoolean {
			out = append(out, c)
		}
	}
	return out
}

// Take returns a new frame holding the given rows
func (f *Frame) Take(rows []int) *Frame {
	cols := make([]*Column, len(f.Columns))
	for i, c := range f.Columns {
		cols[i] = c.Take(rows)
	}
	return &Frame{Columns: cols}
}

// Head returns the first n rows
func (f *Frame) Head(n int) *Frame {
	if n > f.NumRows() {
		n = f.NumRows()
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return f.Take(rows)
}

// Clone returns a deep copy
func (f *Frame) Clone() *Frame {
	return f.Head(f.NumRows())
}

// RowKey identifies a row by the values of all its cells
func (f *Frame) RowKey(i int) string {
	var b strings.Builder
	for j, c := range f.Columns {
		if j > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(c.key(i))
	}
	return b.String()
}

// RowComplete reports whether row i has no missing cell
func (f *Frame) RowComplete(i int) bool {
	for _, c := range f.Columns {
		if !c.Valid[i] {
			return false
		}
	}
	return true
}

// TotalCells returns rows × columns
func (f *Frame) TotalCells() int {
	return f.NumRows() * f.NumCols()
}

// MissingCells counts missing cells across the frame
func (f *Frame) MissingCells() int {
	missing := 0
	for _, c := range f.Columns {
		for _, ok := range c.Valid {
			if !ok {
				missing++
			}
		}
	}
	return missing
}

// MemoryBytes estimates the in-memory footprint of the frame
func (f *Frame) MemoryBytes() int64 {
	var total int64
	for _, c := range f.Columns {
		total += c.storageBytes() + int64(len(c.Name))
	}
	return total
}
