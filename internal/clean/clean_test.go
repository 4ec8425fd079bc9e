package clean

import (
	"math"
	"strings"
	"testing"
)

const sampleCSV = `Name,Age,Gender,Income,JoinDate
Alice,34,Female,55000,2022/01/10
Bob,,Male,48000,10-03-2020
Carol,30,,,"April 4, 2021"
Dave,38,Male,1000000,2021-06-01
`

func TestCleanEndToEnd(t *testing.T) {
	cfg := Default() // cap strategy, no standardization

	tbl, report, err := Clean([]byte(sampleCSV), cfg)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}

	if report.ShapeBefore != (Shape{Rows: 4, Columns: 5}) {
		t.Errorf("shape before = %+v", report.ShapeBefore)
	}
	if report.ShapeAfter != (Shape{Rows: 4, Columns: 5}) {
		t.Errorf("shape after = %+v (cap must preserve rows)", report.ShapeAfter)
	}
	if report.RowsRemoved != 0 {
		t.Errorf("rows removed = %d, want 0", report.RowsRemoved)
	}

	wantTypes := map[string]string{
		"Name":     "categorical",
		"Age":      "numeric",
		"Gender":   "categorical",
		"Income":   "numeric",
		"JoinDate": "date",
	}
	for name, want := range wantTypes {
		if got := report.ColumnTypes[name]; got != want {
			t.Errorf("type of %s = %q, want %q", name, got, want)
		}
	}

	// One missing value each in Age, Gender and Income.
	for _, name := range []string{"Age", "Gender", "Income"} {
		if report.Imputed[name] != 1 {
			t.Errorf("imputed[%s] = %d, want 1", name, report.Imputed[name])
		}
	}

	// Bob's age becomes the median of [34, 30, 38].
	age := tbl.Column("Age")
	if age.Cells[1].Num != 34 {
		t.Errorf("imputed age = %v, want 34", age.Cells[1].Num)
	}

	// Carol's income becomes the median of [55000, 48000, 1000000]; Dave's
	// is then capped at the IQR upper fence of the imputed column.
	income := tbl.Column("Income")
	if income.Cells[2].Num != 55000 {
		t.Errorf("imputed income = %v, want 55000", income.Cells[2].Num)
	}
	if math.Abs(income.Cells[3].Num-648250) > 1e-6 {
		t.Errorf("capped income = %v, want 648250", income.Cells[3].Num)
	}

	// Carol's gender becomes the mode, Male; encoding is first-seen.
	km := report.Keymaps["Gender"]
	if km[0] != "Female" || km[1] != "Male" {
		t.Errorf("gender keymap = %v, want {0:Female 1:Male}", km)
	}
	gender := tbl.Column("Gender")
	wantCodes := []float64{0, 1, 1, 1}
	for i, want := range wantCodes {
		if gender.Cells[i].Num != want {
			t.Errorf("gender[%d] = %v, want %v", i, gender.Cells[i].Num, want)
		}
	}

	// Every join date normalizes to ISO form.
	join := tbl.Column("JoinDate")
	wantDates := []string{"2022-01-10", "2020-03-10", "2021-04-04", "2021-06-01"}
	for i, want := range wantDates {
		if got := join.Cells[i].String(); got != want {
			t.Errorf("join_date[%d] = %q, want %q", i, got, want)
		}
	}
	if len(report.DateColumns) != 1 || report.DateColumns[0].Ratio != 1 {
		t.Errorf("date summaries = %+v, want JoinDate fully parsed", report.DateColumns)
	}

	if len(report.Standardized) != 0 {
		t.Errorf("standardized = %+v, want none when disabled", report.Standardized)
	}
}

func TestCleanRemoveStrategy(t *testing.T) {
	cfg := Default()
	cfg.OutlierStrategy = StrategyRemove

	tbl, report, err := Clean([]byte(sampleCSV), cfg)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}

	if report.RowsRemoved != 1 {
		t.Errorf("rows removed = %d, want 1", report.RowsRemoved)
	}
	if report.ShapeAfter.Rows != 3 {
		t.Errorf("rows after = %d, want 3", report.ShapeAfter.Rows)
	}
	for _, col := range tbl.Columns {
		if len(col.Cells) != 3 {
			t.Errorf("column %q has %d cells, want 3", col.Name, len(col.Cells))
		}
	}
}

func TestCleanStandardize(t *testing.T) {
	cfg := Default()
	cfg.Standardize = true

	tbl, report, err := Clean([]byte(sampleCSV), cfg)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}

	// Age, Income and the two encoded categoricals are all numeric-valued,
	// but only columns tagged numeric are rescaled.
	byName := make(map[string]ColumnScale)
	for _, sc := range report.Standardized {
		byName[sc.Column] = sc
	}
	if len(byName) != 2 {
		t.Fatalf("standardized %v, want Age and Income only", report.Standardized)
	}
	for _, name := range []string{"Age", "Income"} {
		sc, ok := byName[name]
		if !ok || !sc.Applied {
			t.Errorf("column %s not standardized: %+v", name, sc)
			continue
		}
		vals := tbl.Column(name).Numbers()
		m, sd := meanStdDev(vals)
		if math.Abs(m) > 1e-9 || math.Abs(sd-1) > 1e-9 {
			t.Errorf("%s post-scale mean/sd = %v/%v, want 0/1", name, m, sd)
		}
	}
}

func TestCleanRejectsInvalidConfig(t *testing.T) {
	cfg := Default()
	cfg.OutlierStrategy = "explode"

	if _, _, err := Clean([]byte(sampleCSV), cfg); err == nil {
		t.Fatal("expected config validation error")
	}
}

func TestCleanRejectsEmptyInput(t *testing.T) {
	for _, input := range []string{"", "just_a_header\n"} {
		if _, _, err := Clean([]byte(input), Default()); !IsFatal(err) {
			t.Errorf("Clean(%q) err = %v, want fatal", input, err)
		}
	}
}

func TestCleanTableDropsEmptyColumnsFirst(t *testing.T) {
	data := strings.Join([]string{
		"a,b",
		"1,",
		"2,",
		"3,",
	}, "\n")

	tbl, err := Load([]byte(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	report, err := CleanTable(tbl, Default())
	if err != nil {
		t.Fatalf("CleanTable: %v", err)
	}

	if len(report.DroppedColumns) != 1 || report.DroppedColumns[0] != "b" {
		t.Errorf("dropped = %v, want [b]", report.DroppedColumns)
	}
	if tbl.ColumnCount() != 1 {
		t.Errorf("columns = %d, want 1", tbl.ColumnCount())
	}
}
