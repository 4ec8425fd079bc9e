package clean

import (
	"log/slog"
	"time"

	"csvcleaner/internal/table"
)

// twoDigitYearPivot controls how 2-digit years are read: a parsed year more
// than this many years in the future is moved back a century.
const twoDigitYearPivot = 20

// Date layouts in priority order. ISO forms first, then day-first before
// month-first so that an ambiguous value like "10-03-2020" reads as
// 10 March (the month-first layouts still catch values such as "03-15-2019",
// which fail day-first parsing because 15 is not a valid month).
var (
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"2-1-2006", "02-01-2006",
		"1-2-2006",
		"1/2/2006", "01/02/2006",
		"2/1/2006",
		"January 2, 2006", "Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "1-2-06", "1.2.06",
	}
)

// ParseDate attempts the fixed priority-ordered layout list and returns the
// first successful parse. The boolean reports success.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivot := time.Now().Year() + twoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivot {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}
	return time.Time{}, false
}

// DateSummary reports date-parsing results for one column. Unparseable cells
// are an observability signal, never an error.
type DateSummary struct {
	Column string  `json:"column"`
	Parsed int     `json:"parsed"`
	Total  int     `json:"total"`
	Ratio  float64 `json:"ratio"`
}

// NormalizeDates converts the text cells of every date-tagged column to
// date cells, which serialize in canonical ISO form. Values that match no
// layout are left as-is and counted; missing cells stay missing.
func NormalizeDates(t *table.Table) []DateSummary {
	var summaries []DateSummary
	for _, col := range t.Columns {
		if col.Type != table.TypeDate {
			continue
		}

		sum := DateSummary{Column: col.Name}
		for i, cell := range col.Cells {
			if cell.Kind != table.KindText {
				continue
			}
			sum.Total++
			if parsed, ok := ParseDate(cell.Str); ok {
				col.Cells[i] = table.Date(parsed)
				sum.Parsed++
			}
		}
		if sum.Total > 0 {
			sum.Ratio = float64(sum.Parsed) / float64(sum.Total)
		}
		slog.Debug("date column normalized",
			"column", col.Name, "parsed", sum.Parsed, "total", sum.Total)
		summaries = append(summaries, sum)
	}
	return summaries
}
