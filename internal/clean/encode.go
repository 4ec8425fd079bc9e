package clean

import (
	"log/slog"

	"csvcleaner/internal/table"
)

// Keymap maps an assigned integer code back to the original text value of
// one categorical column. Codes are assigned in first-seen order from 0 and
// are unique within the column.
type Keymap map[int]string

// EncodeCategoricals replaces the text values of every categorical column
// with small integer codes and returns the keymap per column. Imputation
// placeholders are encoded like any other distinct value. Columns keep
// their Categorical tag; only the cells change representation.
func EncodeCategoricals(t *table.Table) map[string]Keymap {
	keymaps := make(map[string]Keymap)
	for _, col := range t.Columns {
		if col.Type != table.TypeCategorical {
			continue
		}

		codes := make(map[string]int)
		keymap := make(Keymap)
		for i, cell := range col.Cells {
			if cell.Kind != table.KindText {
				continue
			}
			code, ok := codes[cell.Str]
			if !ok {
				code = len(codes)
				codes[cell.Str] = code
				keymap[code] = cell.Str
			}
			col.Cells[i] = table.Number(float64(code))
		}

		if len(keymap) > 0 {
			keymaps[col.Name] = keymap
			slog.Debug("categorical column encoded", "column", col.Name, "categories", len(keymap))
		}
	}
	return keymaps
}
