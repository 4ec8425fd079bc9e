package clean

import (
	"sort"
	"strings"

	"csvcleaner/internal/table"
)

const maxTopValues = 5

// ValueCount is one entry of a categorical column's most frequent values.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnProfile summarizes one column of a raw (uncleaned) table.
type ColumnProfile struct {
	Name     string        `json:"name"`
	Type     string        `json:"type"`
	Missing  int           `json:"missing"`
	Distinct int           `json:"distinct"`
	Min      *float64      `json:"min,omitempty"`
	Max      *float64      `json:"max,omitempty"`
	Mean     *float64      `json:"mean,omitempty"`
	StdDev   *float64      `json:"std_dev,omitempty"`
	Top      []ValueCount  `json:"top_values,omitempty"`
}

// DatasetProfile is the analysis result for one uploaded file: shape,
// per-column statistics and the number of fully duplicated rows.
type DatasetProfile struct {
	Rows          int             `json:"rows"`
	Columns       int             `json:"columns"`
	DuplicateRows int             `json:"duplicate_rows"`
	ColumnStats   []ColumnProfile `json:"column_stats"`
}

// Profile analyzes a table whose types have been inferred. It is read-only
// apart from the numeric coercion inference performs.
func Profile(t *table.Table) *DatasetProfile {
	p := &DatasetProfile{
		Rows:          t.RowCount(),
		Columns:       t.ColumnCount(),
		DuplicateRows: duplicateRows(t),
	}

	for _, col := range t.Columns {
		cp := ColumnProfile{Name: col.Name, Type: col.Type.String()}

		distinct := make(map[string]int)
		for _, cell := range col.Cells {
			if cell.IsMissing() {
				cp.Missing++
				continue
			}
			distinct[cell.String()]++
		}
		cp.Distinct = len(distinct)

		switch col.Type {
		case table.TypeNumeric:
			if vals := col.Numbers(); len(vals) > 0 {
				m, sd := meanStdDev(vals)
				lo, hi := vals[0], vals[0]
				for _, v := range vals[1:] {
					if v < lo {
						lo = v
					}
					if v > hi {
						hi = v
					}
				}
				cp.Min, cp.Max, cp.Mean, cp.StdDev = &lo, &hi, &m, &sd
			}
		case table.TypeCategorical:
			cp.Top = topValues(distinct)
		}

		p.ColumnStats = append(p.ColumnStats, cp)
	}
	return p
}

// duplicateRows counts rows that are exact repeats of an earlier row.
func duplicateRows(t *table.Table) int {
	seen := make(map[string]bool, t.RowCount())
	dups := 0
	for i := 0; i < t.RowCount(); i++ {
		var b strings.Builder
		for _, col := range t.Columns {
			b.WriteString(col.Cells[i].String())
			b.WriteByte('\x1f')
		}
		key := b.String()
		if seen[key] {
			dups++
		}
		seen[key] = true
	}
	return dups
}

func topValues(distinct map[string]int) []ValueCount {
	top := make([]ValueCount, 0, len(distinct))
	for v, n := range distinct {
		top = append(top, ValueCount{Value: v, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Value < top[j].Value
	})
	if len(top) > maxTopValues {
		top = top[:maxTopValues]
	}
	return top
}
