package clean

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"csvcleaner/internal/table"
)

// missingMarkers are cell values treated as missing in addition to the
// empty string, matching what pandas' read_csv considers NA by default.
var missingMarkers = map[string]bool{
	"na": true, "n/a": true, "nan": true, "null": true, "none": true,
}

// Load parses raw CSV bytes into a Table. It tries a sequence of parse
// strategies, from strict to increasingly tolerant, and uses the first one
// that yields a non-empty, structurally consistent table. Returns a
// *ParseError if every strategy fails, or ErrEmptyTable if the result has
// no data rows.
func Load(data []byte) (*table.Table, error) {
	data = sanitizeUTF8(data)

	strategies := []func([]byte) ([][]string, error){
		parseStrict,
		func(d []byte) ([][]string, error) { return parseLenient(d, ',') },
		func(d []byte) ([][]string, error) { return parseLenient(d, ';') },
		func(d []byte) ([][]string, error) { return parseLenient(d, '\t') },
		func(d []byte) ([][]string, error) { return parseLenient(d, '|') },
	}

	var lastErr error
	for _, parse := range strategies {
		records, err := parse(data)
		if err != nil {
			lastErr = err
			continue
		}
		tbl, err := buildTable(records)
		if err != nil {
			lastErr = err
			continue
		}
		return tbl, nil
	}

	if lastErr == ErrEmptyTable {
		return nil, ErrEmptyTable
	}
	return nil, &ParseError{Strategies: len(strategies), Err: lastErr}
}

// parseStrict uses the default reader: consistent field counts, proper quoting.
func parseStrict(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

// parseLenient tolerates inconsistent quoting and ragged rows: short rows
// are padded to the header width, long rows truncated.
func parseLenient(data []byte, delim rune) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	width := len(records[0])
	for i, row := range records[1:] {
		switch {
		case len(row) < width:
			padded := make([]string, width)
			copy(padded, row)
			records[i+1] = padded
		case len(row) > width:
			records[i+1] = row[:width]
		}
	}
	return records, nil
}

// buildTable converts header+data records into a Table of text cells.
// Blank and NA-marker values become Missing. Columns that are entirely
// missing are dropped (they carry no information). A single-column result
// from a delimiter mismatch is rejected when the lone header still contains
// a candidate delimiter.
func buildTable(records [][]string) (*table.Table, error) {
	if len(records) < 2 {
		return nil, ErrEmptyTable
	}

	header := records[0]
	if len(header) == 0 {
		return nil, ErrEmptyTable
	}
	if len(header) == 1 && strings.ContainsAny(header[0], ";\t|") {
		return nil, fmt.Errorf("header %q looks like a delimiter mismatch", header[0])
	}

	dataRows := records[1:]
	tbl := table.New()
	seen := make(map[string]int)

	for j, rawName := range header {
		name := strings.TrimSpace(rawName)
		if name == "" {
			name = fmt.Sprintf("column_%d", j+1)
		}
		// Deduplicate repeated header names the way pandas does.
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		} else {
			seen[name] = 1
		}

		col := &table.Column{Name: name, Cells: make([]table.Cell, len(dataRows))}
		for i, row := range dataRows {
			var v string
			if j < len(row) {
				v = strings.TrimSpace(row[j])
			}
			if v == "" || missingMarkers[strings.ToLower(v)] {
				col.Cells[i] = table.Missing()
			} else {
				col.Cells[i] = table.Text(v)
			}
		}
		if err := tbl.AddColumn(col); err != nil {
			return nil, err
		}
	}

	if tbl.RowCount() == 0 {
		return nil, ErrEmptyTable
	}
	return tbl, nil
}

// DropEmptyColumns removes columns whose cells are all missing and returns
// the names of the dropped columns.
func DropEmptyColumns(t *table.Table) []string {
	var dropped []string
	for _, name := range t.Names() {
		col := t.Column(name)
		if len(col.Present()) == 0 {
			t.DropColumn(name)
			dropped = append(dropped, name)
		}
	}
	return dropped
}

// sanitizeUTF8 replaces invalid byte sequences with the Unicode replacement
// character so the CSV reader never sees broken encodings.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}
	return buf.Bytes()
}
