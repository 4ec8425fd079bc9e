package clean

import (
	"log/slog"
	"math"

	"csvcleaner/internal/table"
)

// Minimum present values for each detection test, below which the test is
// skipped for the column.
const (
	minZScoreValues = 2
	minIQRValues    = 4
)

// Method records which detection test flagged a value.
type Method int

const (
	MethodZScore Method = 1 << iota
	MethodIQR
)

// ColumnOutliers is the per-column outlier report: which rows were flagged,
// by which method, and the IQR fence bounds used for capping.
type ColumnOutliers struct {
	Column      string         `json:"column"`
	ZScoreCount int            `json:"z_score_count"`
	IQRCount    int            `json:"iqr_count"`
	Total       int            `json:"total"`
	Rows        []int          `json:"rows,omitempty"`
	Methods     map[int]Method `json:"-"`
	LowerBound  float64        `json:"lower_bound"`
	UpperBound  float64        `json:"upper_bound"`
	HasBounds   bool           `json:"has_bounds"`
}

// DetectOutliers runs the two detection tests over every numeric column and
// returns a report per column that flagged at least one value or produced
// bounds. Detection is read-only; HandleOutliers performs the mutation.
//
// A value is an outlier if flagged by the z-score test OR the IQR test.
// Regardless of which test fired, the recorded capping bounds are the IQR
// fences [Q1 - m*IQR, Q3 + m*IQR].
func DetectOutliers(t *table.Table, cfg Config) []ColumnOutliers {
	var report []ColumnOutliers
	for _, col := range t.Columns {
		if col.Type != table.TypeNumeric {
			continue
		}
		if co, ok := detectColumn(col, cfg); ok {
			report = append(report, co)
		}
	}
	return report
}

func detectColumn(col *table.Column, cfg Config) (ColumnOutliers, bool) {
	present := col.Numbers()
	co := ColumnOutliers{Column: col.Name, Methods: make(map[int]Method)}

	// Z-score test: population stddev, skip degenerate columns.
	if len(present) >= minZScoreValues {
		m, sd := meanStdDev(present)
		if sd > 0 {
			for i, cell := range col.Cells {
				if cell.Kind != table.KindNumber {
					continue
				}
				if math.Abs(cell.Num-m)/sd > cfg.ZScoreThreshold {
					co.Methods[i] |= MethodZScore
					co.ZScoreCount++
				}
			}
		}
	}

	// IQR test: fences from linearly interpolated quartiles.
	if len(present) >= minIQRValues {
		q1 := percentile(present, 0.25)
		q3 := percentile(present, 0.75)
		iqr := q3 - q1
		co.LowerBound = q1 - cfg.IQRMultiplier*iqr
		co.UpperBound = q3 + cfg.IQRMultiplier*iqr
		co.HasBounds = true

		for i, cell := range col.Cells {
			if cell.Kind != table.KindNumber {
				continue
			}
			if cell.Num < co.LowerBound || cell.Num > co.UpperBound {
				co.Methods[i] |= MethodIQR
				co.IQRCount++
			}
		}
	}

	co.Total = len(co.Methods)
	for i := range co.Methods {
		co.Rows = append(co.Rows, i)
	}
	co.Rows = table.SortedUnion(co.Rows)

	if co.Total == 0 && !co.HasBounds {
		return co, false
	}
	if co.Total > 0 {
		slog.Debug("outliers detected", "column", col.Name,
			"total", co.Total, "z_score", co.ZScoreCount, "iqr", co.IQRCount)
	}
	return co, true
}

// HandleOutliers applies the configured strategy to the flagged cells.
// For cap and transform the row count is unchanged; for remove, the union
// of flagged rows across all numeric columns is deleted from every column.
// Returns the number of rows removed (zero for cap/transform).
func HandleOutliers(t *table.Table, report []ColumnOutliers, cfg Config) int {
	switch cfg.OutlierStrategy {
	case StrategyRemove:
		sets := make([][]int, 0, len(report))
		for _, co := range report {
			sets = append(sets, co.Rows)
		}
		rows := table.SortedUnion(sets...)
		t.RemoveRows(rows)
		return len(rows)

	case StrategyTransform:
		for _, co := range report {
			transformColumn(t.Column(co.Column), co)
		}
		return 0

	default: // StrategyCap
		for _, co := range report {
			capColumn(t.Column(co.Column), co)
		}
		return 0
	}
}

func capColumn(col *table.Column, co ColumnOutliers) {
	if col == nil || !co.HasBounds {
		return
	}
	for _, i := range co.Rows {
		if col.Cells[i].Kind == table.KindNumber {
			col.Cells[i] = table.Number(clamp(col.Cells[i].Num, co.LowerBound, co.UpperBound))
		}
	}
}

// transformColumn dampens flagged values with a sign-preserving logarithm,
// t(v) = sign(v) * log1p(|v|) * s. The scale s = B/log1p(B), where B is the
// larger fence magnitude, keeps results in the column's original order of
// magnitude: a value exactly at the fence maps to the fence.
func transformColumn(col *table.Column, co ColumnOutliers) {
	if col == nil {
		return
	}

	scale := 1.0
	if co.HasBounds {
		if b := math.Max(math.Abs(co.LowerBound), math.Abs(co.UpperBound)); b > 0 {
			scale = b / math.Log1p(b)
		}
	}

	for _, i := range co.Rows {
		if col.Cells[i].Kind != table.KindNumber {
			continue
		}
		v := col.Cells[i].Num
		damped := math.Copysign(math.Log1p(math.Abs(v))*scale, v)
		col.Cells[i] = table.Number(damped)
	}
}
