package clean

import (
	"testing"

	"csvcleaner/internal/table"
)

func TestEncodeCategoricalsFirstSeenOrder(t *testing.T) {
	col := textColumn("gender", "Male", "Female", "Male", "Other", "Female")
	col.Type = table.TypeCategorical
	tbl := table.New()
	tbl.AddColumn(col)

	keymaps := EncodeCategoricals(tbl)

	km := keymaps["gender"]
	if km == nil {
		t.Fatal("no keymap for gender")
	}
	want := map[int]string{0: "Male", 1: "Female", 2: "Other"}
	if len(km) != len(want) {
		t.Fatalf("keymap = %v, want %v", km, want)
	}
	for code, val := range want {
		if km[code] != val {
			t.Errorf("keymap[%d] = %q, want %q", code, km[code], val)
		}
	}

	wantCodes := []float64{0, 1, 0, 2, 1}
	for i, code := range wantCodes {
		if col.Cells[i].Kind != table.KindNumber || col.Cells[i].Num != code {
			t.Errorf("cell %d = %+v, want code %v", i, col.Cells[i], code)
		}
	}
}

func TestEncodeInjectivity(t *testing.T) {
	col := textColumn("c", "x", "y", "z", "x", "y", "w")
	col.Type = table.TypeCategorical
	tbl := table.New()
	tbl.AddColumn(col)

	keymaps := EncodeCategoricals(tbl)

	seen := make(map[string]bool)
	for _, v := range keymaps["c"] {
		if seen[v] {
			t.Errorf("value %q mapped from two codes", v)
		}
		seen[v] = true
	}
	if len(keymaps["c"]) != 4 {
		t.Errorf("got %d codes, want 4", len(keymaps["c"]))
	}
}

func TestEncodeDecodesExactly(t *testing.T) {
	original := []string{"alpha", "beta", "alpha", "gamma"}
	col := textColumn("c", original...)
	col.Type = table.TypeCategorical
	tbl := table.New()
	tbl.AddColumn(col)

	km := EncodeCategoricals(tbl)["c"]

	for i, cell := range col.Cells {
		if got := km[int(cell.Num)]; got != original[i] {
			t.Errorf("decode(cell %d) = %q, want %q", i, got, original[i])
		}
	}
}

func TestEncodeSkipsNonCategorical(t *testing.T) {
	num := numberColumn("n", 1, 2)
	date := textColumn("join_date", "2020-01-01", "2020-01-02")
	date.Type = table.TypeDate
	tbl := table.New()
	tbl.AddColumn(num)
	tbl.AddColumn(date)

	if keymaps := EncodeCategoricals(tbl); len(keymaps) != 0 {
		t.Errorf("keymaps = %v, want none", keymaps)
	}
	if date.Cells[0].Kind != table.KindText {
		t.Errorf("date column cell changed: %+v", date.Cells[0])
	}
}
