package clean

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"csvcleaner/internal/table"
)

// typeSampleSize is how many non-missing values are inspected per column
// when inferring its type.
const typeSampleSize = 25

// dateNameHints are column-name substrings that force the Date tag.
var dateNameHints = []string{"date", "time", "created", "updated", "day", "_at"}

var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber parses s as a float, tolerating currency symbols, thousands
// separators and accounting-style negatives like "(123.45)".
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sym := range []string{"$", "€", "£", ","} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)
	if negative {
		s = "-" + s
	}

	if !numericPattern.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// InferTypes assigns each column its type tag, in order of preference:
// Date (by name hint or content), then Numeric, then Categorical. The Date
// check precedes the Numeric check, so a column named "date" holding
// numeric-looking values still tags Date. Cells of numeric columns are
// converted to number cells; values that fail to parse become missing and
// are later imputed.
func InferTypes(t *table.Table) {
	for _, col := range t.Columns {
		col.Type = inferColumn(col)
		if col.Type == table.TypeNumeric {
			coerceNumeric(col)
		}
		slog.Debug("column type inferred", "column", col.Name, "type", col.Type.String())
	}
}

func inferColumn(col *table.Column) table.Type {
	if nameLooksLikeDate(col.Name) {
		return table.TypeDate
	}

	sample := sampleText(col, typeSampleSize)
	if len(sample) == 0 {
		return table.TypeCategorical
	}

	dates, numbers := 0, 0
	for _, v := range sample {
		if _, ok := ParseDate(v); ok {
			dates++
		}
		if _, ok := ParseNumber(v); ok {
			numbers++
		}
	}

	majority := len(sample) / 2
	switch {
	case dates > majority:
		return table.TypeDate
	case numbers > majority:
		return table.TypeNumeric
	default:
		return table.TypeCategorical
	}
}

func nameLooksLikeDate(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range dateNameHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// sampleText returns up to n non-missing text values from the column.
func sampleText(col *table.Column, n int) []string {
	sample := make([]string, 0, n)
	for _, cell := range col.Cells {
		if cell.Kind != table.KindText {
			continue
		}
		sample = append(sample, cell.Str)
		if len(sample) == n {
			break
		}
	}
	return sample
}

// coerceNumeric converts the text cells of a numeric column to numbers.
// Unparseable values become missing, mirroring pandas' errors="coerce".
func coerceNumeric(col *table.Column) {
	for i, cell := range col.Cells {
		if cell.Kind != table.KindText {
			continue
		}
		if f, ok := ParseNumber(cell.Str); ok {
			col.Cells[i] = table.Number(f)
		} else {
			col.Cells[i] = table.Missing()
		}
	}
}
