package clean

import (
	"log/slog"

	"csvcleaner/internal/table"
)

// ColumnScale records the parameters used to standardize one column, so a
// consumer can reconstruct original values as v*StdDev + Mean.
type ColumnScale struct {
	Column  string  `json:"column"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Applied bool    `json:"applied"`
}

// Standardize rescales every numeric column to zero mean and unit variance
// using the post-cleaning statistics (recomputed after imputation and
// outlier handling). A column with zero standard deviation is left
// unchanged rather than divided by zero; it is still reported, with
// Applied false.
func Standardize(t *table.Table) []ColumnScale {
	var scales []ColumnScale
	for _, col := range t.Columns {
		if col.Type != table.TypeNumeric {
			continue
		}
		present := col.Numbers()
		if len(present) == 0 {
			continue
		}

		m, sd := meanStdDev(present)
		scale := ColumnScale{Column: col.Name, Mean: m, StdDev: sd}
		if sd > 0 {
			for i, cell := range col.Cells {
				if cell.Kind == table.KindNumber {
					col.Cells[i] = table.Number((cell.Num - m) / sd)
				}
			}
			scale.Applied = true
		}
		scales = append(scales, scale)
		slog.Debug("column standardized", "column", col.Name,
			"mean", m, "std_dev", sd, "applied", scale.Applied)
	}
	return scales
}
