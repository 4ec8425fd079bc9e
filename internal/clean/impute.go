package clean

import (
	"log/slog"

	"csvcleaner/internal/table"
)

// categoricalFallback fills a categorical column that has no present values
// at all, so downstream encoding still sees a value.
const categoricalFallback = "Unknown"

// Impute fills missing cells per column: numeric columns with the median of
// present values (0 when none are present), categorical columns with the
// most frequent value breaking ties by first appearance. Date columns are
// left untouched; the date parser deals with them later. Returns the number
// of cells filled per column. The operation is idempotent: a second run
// finds no missing cells and changes nothing.
func Impute(t *table.Table) map[string]int {
	filled := make(map[string]int)
	for _, col := range t.Columns {
		var n int
		switch col.Type {
		case table.TypeNumeric:
			n = imputeNumeric(col)
		case table.TypeCategorical:
			n = imputeCategorical(col)
		case table.TypeDate:
			continue
		}
		if n > 0 {
			filled[col.Name] = n
			slog.Debug("imputed missing values", "column", col.Name, "count", n)
		}
	}
	return filled
}

func imputeNumeric(col *table.Column) int {
	fill := 0.0
	if present := col.Numbers(); len(present) > 0 {
		fill = median(present)
	}

	n := 0
	for i, cell := range col.Cells {
		if cell.IsMissing() {
			col.Cells[i] = table.Number(fill)
			n++
		}
	}
	return n
}

func imputeCategorical(col *table.Column) int {
	fill := modeText(col)
	if fill == "" {
		fill = categoricalFallback
	}

	n := 0
	for i, cell := range col.Cells {
		if cell.IsMissing() {
			col.Cells[i] = table.Text(fill)
			n++
		}
	}
	return n
}

// modeText returns the most frequent text value in the column. Ties break
// by first-seen order; returns "" when the column has no text values.
func modeText(col *table.Column) string {
	counts := make(map[string]int)
	var order []string
	for _, cell := range col.Cells {
		if cell.Kind != table.KindText {
			continue
		}
		if counts[cell.Str] == 0 {
			order = append(order, cell.Str)
		}
		counts[cell.Str]++
	}

	best, bestCount := "", 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}
