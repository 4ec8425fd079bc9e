// Package table defines the in-memory tabular data model used by the
// cleaning pipeline. A Table is an ordered set of named columns whose cells
// are aligned by row index; every mutation preserves that alignment.
package table

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Kind identifies which variant a Cell holds.
type Kind int

const (
	KindMissing Kind = iota
	KindText
	KindNumber
	KindDate
)

// Cell is a tagged union: exactly one of the value fields is meaningful,
// selected by Kind. The zero value is a Missing cell.
type Cell struct {
	Kind Kind
	Num  float64
	Str  string
	Time time.Time
}

// Missing returns a cell with no value.
func Missing() Cell { return Cell{Kind: KindMissing} }

// Text returns a cell holding a string value.
func Text(s string) Cell { return Cell{Kind: KindText, Str: s} }

// Number returns a cell holding a float value.
func Number(f float64) Cell { return Cell{Kind: KindNumber, Num: f} }

// Date returns a cell holding a calendar date.
func Date(t time.Time) Cell { return Cell{Kind: KindDate, Time: t} }

// IsMissing reports whether the cell holds no value.
func (c Cell) IsMissing() bool { return c.Kind == KindMissing }

// String renders the cell for CSV output. Missing cells render as the
// empty string, dates in ISO form, and numbers without exponent notation.
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Str
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case KindDate:
		return c.Time.Format("2006-01-02")
	default:
		return ""
	}
}

// Type is the inferred type tag of a column. It is assigned once by the
// type inferencer and never changes afterwards.
type Type int

const (
	TypeUnknown Type = iota
	TypeNumeric
	TypeDate
	TypeCategorical
)

// String returns the lowercase name of the type tag.
func (t Type) String() string {
	switch t {
	case TypeNumeric:
		return "numeric"
	case TypeDate:
		return "date"
	case TypeCategorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column is a named, typed sequence of cells.
type Column struct {
	Name  string
	Type  Type
	Cells []Cell
}

// Present returns the indices of non-missing cells.
func (c *Column) Present() []int {
	idx := make([]int, 0, len(c.Cells))
	for i, cell := range c.Cells {
		if !cell.IsMissing() {
			idx = append(idx, i)
		}
	}
	return idx
}

// Numbers returns the values of all non-missing number cells, in row order.
func (c *Column) Numbers() []float64 {
	vals := make([]float64, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if cell.Kind == KindNumber {
			vals = append(vals, cell.Num)
		}
	}
	return vals
}

// Table is an ordered collection of columns of equal length.
type Table struct {
	Columns []*Column
}

// New returns an empty table.
func New() *Table { return &Table{} }

// AddColumn appends a column. The caller must ensure the cell count matches
// the existing row count; AddColumn returns an error otherwise.
func (t *Table) AddColumn(c *Column) error {
	if len(t.Columns) > 0 && len(c.Cells) != t.RowCount() {
		return fmt.Errorf("column %q has %d cells, table has %d rows", c.Name, len(c.Cells), t.RowCount())
	}
	t.Columns = append(t.Columns, c)
	return nil
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.Columns) }

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// DropColumn removes the named column. It reports whether a column was removed.
func (t *Table) DropColumn(name string) bool {
	for i, c := range t.Columns {
		if c.Name == name {
			t.Columns = append(t.Columns[:i], t.Columns[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveRows deletes the given row indices from every column atomically,
// preserving the relative order of the remaining rows. Indices out of range
// or duplicated are ignored.
func (t *Table) RemoveRows(rows []int) {
	if len(rows) == 0 || len(t.Columns) == 0 {
		return
	}
	drop := make(map[int]bool, len(rows))
	for _, r := range rows {
		if r >= 0 && r < t.RowCount() {
			drop[r] = true
		}
	}
	if len(drop) == 0 {
		return
	}
	for _, c := range t.Columns {
		kept := make([]Cell, 0, len(c.Cells)-len(drop))
		for i, cell := range c.Cells {
			if !drop[i] {
				kept = append(kept, cell)
			}
		}
		c.Cells = kept
	}
}

// Records renders the table as CSV records: a header row followed by one
// row per table row.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, t.RowCount()+1)
	records = append(records, t.Names())
	for i := 0; i < t.RowCount(); i++ {
		row := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = c.Cells[i].String()
		}
		records = append(records, row)
	}
	return records
}

// Head returns up to n rows as ordered string maps keyed by column name,
// for preview responses.
func (t *Table) Head(n int) []map[string]string {
	if n > t.RowCount() {
		n = t.RowCount()
	}
	rows := make([]map[string]string, 0, n)
	for i := 0; i < n; i++ {
		row := make(map[string]string, len(t.Columns))
		for _, c := range t.Columns {
			row[c.Name] = c.Cells[i].String()
		}
		rows = append(rows, row)
	}
	return rows
}

// SortedUnion returns the sorted union of the given index sets.
func SortedUnion(sets ...[]int) []int {
	seen := make(map[int]bool)
	for _, set := range sets {
		for _, i := range set {
			seen[i] = true
		}
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
