package clean

import (
	"testing"

	"csvcleaner/internal/table"
)

func textColumn(name string, vals ...string) *table.Column {
	cells := make([]table.Cell, len(vals))
	for i, v := range vals {
		if v == "" {
			cells[i] = table.Missing()
		} else {
			cells[i] = table.Text(v)
		}
	}
	return &table.Column{Name: name, Cells: cells}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"plain integer", "42", 42, true},
		{"decimal", "3.14", 3.14, true},
		{"negative", "-7", -7, true},
		{"currency symbol", "$1,200.50", 1200.50, true},
		{"euro symbol", "€99", 99, true},
		{"accounting negative", "(123.45)", -123.45, true},
		{"scientific notation", "1.5e3", 1500, true},
		{"leading dot", ".5", 0.5, true},
		{"text", "hello", 0, false},
		{"empty", "", 0, false},
		{"mixed", "12abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseNumber(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestInferTypes(t *testing.T) {
	tests := []struct {
		name string
		col  *table.Column
		want table.Type
	}{
		{
			"numeric majority",
			textColumn("income", "1000", "2000", "oops", "3000"),
			table.TypeNumeric,
		},
		{
			"categorical fallback",
			textColumn("gender", "Male", "Female", "Male"),
			table.TypeCategorical,
		},
		{
			"date by content",
			textColumn("when", "2020-01-01", "2020-02-01", "2020-03-01"),
			table.TypeDate,
		},
		{
			"date name hint beats numeric content",
			textColumn("join_date", "20200101", "20200202", "20200303"),
			table.TypeDate,
		},
		{
			"created column is a date",
			textColumn("created", "x", "y", "z"),
			table.TypeDate,
		},
		{
			"all missing is categorical",
			textColumn("blank", "", "", ""),
			table.TypeCategorical,
		},
		{
			"numbers do not reach majority",
			textColumn("mixed", "1", "a", "b", "c"),
			table.TypeCategorical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := table.New()
			tbl.AddColumn(tt.col)
			InferTypes(tbl)
			if got := tt.col.Type; got != tt.want {
				t.Errorf("inferred %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInferCoercesNumericCells(t *testing.T) {
	col := textColumn("amount", "10", "$20", "bad", "30")
	tbl := table.New()
	tbl.AddColumn(col)

	InferTypes(tbl)

	if col.Type != table.TypeNumeric {
		t.Fatalf("type = %v, want numeric", col.Type)
	}
	if col.Cells[1].Kind != table.KindNumber || col.Cells[1].Num != 20 {
		t.Errorf("cell 1 = %+v, want Number(20)", col.Cells[1])
	}
	if !col.Cells[2].IsMissing() {
		t.Errorf("unparseable cell should coerce to missing, got %+v", col.Cells[2])
	}
}
