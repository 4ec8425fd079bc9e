package clean

import (
	"testing"

	"csvcleaner/internal/table"
)

func TestParseDateLayouts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // ISO form
		ok    bool
	}{
		{"ISO", "2022-01-10", "2022-01-10", true},
		{"year first slash", "2022/01/10", "2022-01-10", true},
		{"ambiguous dash reads day-first", "10-03-2020", "2020-03-10", true},
		{"month-first dash when day-first impossible", "03-15-2019", "2019-03-15", true},
		{"US slash", "04/05/2021", "2021-04-05", true},
		{"day-first slash when US impossible", "25/12/2021", "2021-12-25", true},
		{"verbose full month", "April 4, 2021", "2021-04-04", true},
		{"verbose short month", "Jan 15, 2024", "2024-01-15", true},
		{"day month year", "2 Jan 2006", "2006-01-02", true},
		{"compact", "20220110", "2022-01-10", true},
		{"two digit year", "1/2/24", "2024-01-02", true},
		{"not a date", "hello", "", false},
		{"number", "42", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok {
				if iso := got.Format("2006-01-02"); iso != tt.want {
					t.Errorf("ParseDate(%q) = %s, want %s", tt.input, iso, tt.want)
				}
			}
		})
	}
}

func TestNormalizeDates(t *testing.T) {
	col := textColumn("join_date", "2022/01/10", "10-03-2020", "April 4, 2021", "not a date", "")
	col.Type = table.TypeDate
	tbl := table.New()
	tbl.AddColumn(col)

	summaries := NormalizeDates(tbl)

	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	sum := summaries[0]
	if sum.Parsed != 3 || sum.Total != 4 {
		t.Errorf("parsed/total = %d/%d, want 3/4", sum.Parsed, sum.Total)
	}
	if sum.Ratio != 0.75 {
		t.Errorf("ratio = %v, want 0.75", sum.Ratio)
	}

	want := []string{"2022-01-10", "2020-03-10", "2021-04-04"}
	for i, iso := range want {
		if got := col.Cells[i].String(); got != iso {
			t.Errorf("cell %d = %q, want %q", i, got, iso)
		}
	}
	// Unparseable value stays as-is; missing stays missing.
	if col.Cells[3].Kind != table.KindText || col.Cells[3].Str != "not a date" {
		t.Errorf("unparseable cell changed: %+v", col.Cells[3])
	}
	if !col.Cells[4].IsMissing() {
		t.Errorf("missing cell changed: %+v", col.Cells[4])
	}
}

func TestNormalizeDatesSkipsNonDateColumns(t *testing.T) {
	col := textColumn("notes", "2020-01-01")
	col.Type = table.TypeCategorical
	tbl := table.New()
	tbl.AddColumn(col)

	if got := NormalizeDates(tbl); len(got) != 0 {
		t.Errorf("got %d summaries, want 0", len(got))
	}
	if col.Cells[0].Kind != table.KindText {
		t.Errorf("categorical cell changed: %+v", col.Cells[0])
	}
}
