package domain

import (
	"math"
	"time"
)

// ColumnKind is the storage class of a table column.
type ColumnKind int

// Column kinds.
const (
	KindNumeric ColumnKind = iota
	KindText
	KindTime
)

// String returns the kind name.
func (k ColumnKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// Column is one named, typed column of a Table.
// Missing numeric values are NaN. Missing text and time values have Valid[i] == false.
type Column struct {
	Name string
	Kind ColumnKind

	Numbers []float64
	Texts   []string
	Times   []time.Time
	Valid   []bool
}

// NewNumericColumn creates a numeric column. NaN marks a missing value.
func NewNumericColumn(name string, values []float64) *Column {
	return &Column{Name: name, Kind: KindNumeric, Numbers: values}
}

// NewTextColumn creates a text column. If valid is nil every value is present.
func NewTextColumn(name string, values []string, valid []bool) *Column {
	return &Column{Name: name, Kind: KindText, Texts: values, Valid: fillValid(valid, len(values))}
}

// NewTimeColumn creates a time column. If valid is nil every value is present.
func NewTimeColumn(name string, values []time.Time, valid []bool) *Column {
	return &Column{Name: name, Kind: KindTime, Times: values, Valid: fillValid(valid, len(values))}
}

func fillValid(valid []bool, n int) []bool {
	if valid != nil {
		return valid
	}
	valid = make([]bool, n)
	for i := range valid {
		valid[i] = true
	}
	return valid
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	switch c.Kind {
	case KindNumeric:
		return len(c.Numbers)
	case KindText:
		return len(c.Texts)
	case KindTime:
		return len(c.Times)
	default:
		return 0
	}
}

// IsNull reports whether row i holds a missing value.
func (c *Column) IsNull(i int) bool {
	if c.Kind == KindNumeric {
		return math.IsNaN(c.Numbers[i])
	}
	return !c.Valid[i]
}

// Value returns row i as float64, string or time.Time, or nil when missing.
func (c *Column) Value(i int) any {
	if c.IsNull(i) {
		return nil
	}
	switch c.Kind {
	case KindNumeric:
		return c.Numbers[i]
	case KindText:
		return c.Texts[i]
	default:
		return c.Times[i]
	}
}

// NullCount returns the number of missing values.
func (c *Column) NullCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			n++
		}
	}
	return n
}

// take returns a copy of the column holding only the given rows.
func (c *Column) take(rows []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	switch c.Kind {
	case KindNumeric:
		out.Numbers = make([]float64, len(rows))
		for j, i := range rows {
			out.Numbers[j] = c.Numbers[i]
		}
		return out
	case KindText:
		out.Texts = make([]string, len(rows))
		for j, i := range rows {
			out.Texts[j] = c.Texts[i]
		}
	case KindTime:
		out.Times = make([]time.Time, len(rows))
		for j, i := range rows {
			out.Times[j] = c.Times[i]
		}
	}
	out.Valid = make([]bool, len(rows))
	for j, i := range rows {
		out.Valid[j] = c.Valid[i]
	}
	return out
}

// Table is an in-memory columnar copy of an analytical table.
// All columns have the same length.
type Table struct {
	Name    string
	Columns []*Column
}

// NewTable creates a table from columns.
func NewTable(name string, cols ...*Column) *Table {
	return &Table{Name: name, Columns: cols}
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Set replaces the column with the same name, or appends it.
func (t *Table) Set(col *Column) {
	for i, c := range t.Columns {
		if c.Name == col.Name {
			t.Columns[i] = col
			return
		}
	}
	t.Columns = append(t.Columns, col)
}

// Drop removes the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := t.Columns[:0]
	for _, c := range t.Columns {
		if !drop[c.Name] {
			kept = append(kept, c)
		}
	}
	t.Columns = kept
}

// NumericColumns returns the numeric columns in order.
func (t *Table) NumericColumns() []*Column {
	var cols []*Column
	for _, c := range t.Columns {
		if c.Kind == KindNumeric {
			cols = append(cols, c)
		}
	}
	return cols
}

// Filter returns a new table with the rows for which keep returns true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	rows := make([]int, 0, t.Rows())
	for i := 0; i < t.Rows(); i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	out := &Table{Name: t.Name, Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = c.take(rows)
	}
	return out
}
