package clean

import (
	"math"
	"testing"

	"csvcleaner/internal/table"
)

// A single extreme point among seven small values. Sorted [10,11,11,12,12,13,100],
// Q1 = 11, Q3 = 12.5, IQR = 1.5, fences [8.75, 14.75]. The z-score of 100
// is ~2.45 (a single extreme point among n=7 cannot exceed (n-1)/sqrt(n)),
// so the z test fires at threshold 2.0 but not at the default 3.0.
func sampleColumn() *table.Column {
	return numberColumn("income", 10, 12, 11, 13, 12, 11, 100)
}

func TestDetectOutliersIQRBounds(t *testing.T) {
	tbl := table.New()
	tbl.AddColumn(sampleColumn())

	report := DetectOutliers(tbl, Default())

	if len(report) != 1 {
		t.Fatalf("got %d column reports, want 1", len(report))
	}
	co := report[0]
	if !co.HasBounds {
		t.Fatal("expected IQR bounds")
	}
	if math.Abs(co.LowerBound-8.75) > 1e-9 || math.Abs(co.UpperBound-14.75) > 1e-9 {
		t.Errorf("bounds = [%v, %v], want [8.75, 14.75]", co.LowerBound, co.UpperBound)
	}
	if co.IQRCount != 1 || len(co.Rows) != 1 || co.Rows[0] != 6 {
		t.Errorf("IQR flags = %d rows %v, want row 6 only", co.IQRCount, co.Rows)
	}
}

func TestDetectOutliersBothMethods(t *testing.T) {
	tbl := table.New()
	tbl.AddColumn(sampleColumn())

	cfg := Default()
	cfg.ZScoreThreshold = 2.0
	report := DetectOutliers(tbl, cfg)

	co := report[0]
	if co.ZScoreCount != 1 || co.IQRCount != 1 {
		t.Errorf("counts z=%d iqr=%d, want 1 and 1", co.ZScoreCount, co.IQRCount)
	}
	if co.Methods[6] != MethodZScore|MethodIQR {
		t.Errorf("row 6 methods = %v, want both", co.Methods[6])
	}
	if co.Total != 1 {
		t.Errorf("union total = %d, want 1 (union, not sum)", co.Total)
	}
}

func TestDetectOutliersSkipsDegenerateColumns(t *testing.T) {
	tests := []struct {
		name string
		col  *table.Column
	}{
		{"constant column has zero stddev", numberColumn("c", 5, 5, 5, 5, 5)},
		{"too few values", numberColumn("c", 1, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := table.New()
			tbl.AddColumn(tt.col)
			report := DetectOutliers(tbl, Default())
			for _, co := range report {
				if co.Total != 0 {
					t.Errorf("flagged %d values, want none", co.Total)
				}
			}
		})
	}
}

func TestDetectOutliersIgnoresNonNumeric(t *testing.T) {
	col := textColumn("name", "a", "b")
	col.Type = table.TypeCategorical
	tbl := table.New()
	tbl.AddColumn(col)

	if report := DetectOutliers(tbl, Default()); len(report) != 0 {
		t.Errorf("got %d reports for a categorical column, want 0", len(report))
	}
}

func TestHandleOutliersCap(t *testing.T) {
	tbl := table.New()
	col := sampleColumn()
	tbl.AddColumn(col)

	cfg := Default()
	report := DetectOutliers(tbl, cfg)
	removed := HandleOutliers(tbl, report, cfg)

	if removed != 0 {
		t.Errorf("cap removed %d rows, want 0", removed)
	}
	if got := tbl.RowCount(); got != 7 {
		t.Errorf("RowCount() = %d, want 7 (cap preserves rows)", got)
	}
	if math.Abs(col.Cells[6].Num-14.75) > 1e-9 {
		t.Errorf("capped value = %v, want 14.75", col.Cells[6].Num)
	}
	// Unflagged values untouched.
	if col.Cells[0].Num != 10 {
		t.Errorf("cell 0 = %v, want 10", col.Cells[0].Num)
	}
}

func TestHandleOutliersRemove(t *testing.T) {
	tbl := table.New()
	tbl.AddColumn(sampleColumn())
	other := textColumn("name", "a", "b", "c", "d", "e", "f", "g")
	other.Type = table.TypeCategorical
	tbl.AddColumn(other)

	cfg := Default()
	cfg.OutlierStrategy = StrategyRemove
	report := DetectOutliers(tbl, cfg)
	removed := HandleOutliers(tbl, report, cfg)

	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if got := tbl.RowCount(); got != 6 {
		t.Errorf("RowCount() = %d, want 6", got)
	}
	// Every column shrinks identically.
	for _, c := range tbl.Columns {
		if len(c.Cells) != 6 {
			t.Errorf("column %q has %d cells, want 6", c.Name, len(c.Cells))
		}
	}
	if other.Cells[5].Str != "f" {
		t.Errorf("surviving rows out of order: %v", other.Cells)
	}
}

func TestHandleOutliersTransform(t *testing.T) {
	tbl := table.New()
	col := sampleColumn()
	tbl.AddColumn(col)

	cfg := Default()
	cfg.OutlierStrategy = StrategyTransform
	report := DetectOutliers(tbl, cfg)
	HandleOutliers(tbl, report, cfg)

	if got := tbl.RowCount(); got != 7 {
		t.Errorf("RowCount() = %d, want 7 (transform preserves rows)", got)
	}

	// t(v) = log1p(v) * B/log1p(B) with B = 14.75: dampened but still
	// above the in-range values, below the original.
	b := 14.75
	want := math.Log1p(100) * b / math.Log1p(b)
	if math.Abs(col.Cells[6].Num-want) > 1e-9 {
		t.Errorf("transformed = %v, want %v", col.Cells[6].Num, want)
	}
	if col.Cells[6].Num >= 100 {
		t.Error("transform did not dampen the outlier")
	}
	if col.Cells[0].Num != 10 {
		t.Errorf("unflagged cell changed: %v", col.Cells[0].Num)
	}
}

func TestTransformPreservesSign(t *testing.T) {
	tbl := table.New()
	col := numberColumn("v", -100, 10, 12, 11, 13, 12, 11)
	tbl.AddColumn(col)

	cfg := Default()
	cfg.OutlierStrategy = StrategyTransform
	cfg.ZScoreThreshold = 2.0
	report := DetectOutliers(tbl, cfg)
	HandleOutliers(tbl, report, cfg)

	if col.Cells[0].Num >= 0 {
		t.Errorf("transformed value lost its sign: %v", col.Cells[0].Num)
	}
}
