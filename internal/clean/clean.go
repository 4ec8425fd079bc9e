// Package clean implements the CSV cleaning pipeline: loading, type
// inference, missing-value imputation, outlier detection and handling, date
// normalization, categorical encoding and optional standardization. The
// stages run in a fixed order, each consuming and producing the same table
// structure; the whole pipeline is a single blocking call with no shared
// state between invocations.
package clean

import (
	"log/slog"
	"time"

	"csvcleaner/internal/table"
)

// Shape is a row/column count pair.
type Shape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// Report accumulates everything the pipeline observed and decided: shapes
// before and after, inferred types, imputation counts, outlier summaries,
// date-parse ratios, standardization parameters and the encoding keymaps.
// Soft failures land here instead of aborting the run.
type Report struct {
	ShapeBefore    Shape             `json:"shape_before"`
	ShapeAfter     Shape             `json:"shape_after"`
	RowsRemoved    int               `json:"rows_removed"`
	DroppedColumns []string          `json:"dropped_columns,omitempty"`
	ColumnTypes    map[string]string `json:"column_types"`
	Imputed        map[string]int    `json:"imputed,omitempty"`
	Outliers       []ColumnOutliers  `json:"outliers,omitempty"`
	DateColumns    []DateSummary     `json:"date_columns,omitempty"`
	Standardized   []ColumnScale     `json:"standardized,omitempty"`
	Keymaps        map[string]Keymap `json:"keymaps,omitempty"`
	Config         Config            `json:"config"`
	Duration       time.Duration     `json:"-"`
}

// Clean parses raw CSV bytes and runs the full pipeline under cfg.
// It returns the cleaned table and the report, or a fatal error when the
// input cannot be parsed into a non-empty table.
func Clean(data []byte, cfg Config) (*table.Table, *Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	tbl, err := Load(data)
	if err != nil {
		return nil, nil, err
	}

	report, err := CleanTable(tbl, cfg)
	if err != nil {
		return nil, nil, err
	}
	return tbl, report, nil
}

// CleanTable runs stages 2-8 over an already-loaded table, mutating it in
// place. The table must not be shared with another invocation.
func CleanTable(tbl *table.Table, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	report := &Report{
		ShapeBefore: Shape{Rows: tbl.RowCount(), Columns: tbl.ColumnCount()},
		Config:      cfg,
	}

	report.DroppedColumns = DropEmptyColumns(tbl)
	if tbl.ColumnCount() == 0 || tbl.RowCount() == 0 {
		return nil, ErrEmptyTable
	}

	InferTypes(tbl)
	report.ColumnTypes = make(map[string]string, tbl.ColumnCount())
	for _, col := range tbl.Columns {
		report.ColumnTypes[col.Name] = col.Type.String()
	}

	report.Imputed = Impute(tbl)

	report.Outliers = DetectOutliers(tbl, cfg)
	report.RowsRemoved = HandleOutliers(tbl, report.Outliers, cfg)

	report.DateColumns = NormalizeDates(tbl)
	report.Keymaps = EncodeCategoricals(tbl)

	if cfg.Standardize {
		report.Standardized = Standardize(tbl)
	}

	report.ShapeAfter = Shape{Rows: tbl.RowCount(), Columns: tbl.ColumnCount()}
	report.Duration = time.Since(start)

	slog.Info("cleaning pipeline finished",
		"rows_before", report.ShapeBefore.Rows,
		"rows_after", report.ShapeAfter.Rows,
		"columns", report.ShapeAfter.Columns,
		"strategy", cfg.OutlierStrategy,
		"duration", report.Duration,
	)
	return report, nil
}
