// Package audit persists a row per cleaning run to Postgres when a database
// is configured. Recording is best-effort: a failed insert is logged and the
// request continues, since the audit trail is operational history rather than
// part of the cleaning result.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"csvcleaner/internal/clean"
)

// Run is one recorded cleaning run.
type Run struct {
	ID              uuid.UUID `json:"id"`
	FileID          uuid.UUID `json:"file_id"`
	Filename        string    `json:"filename"`
	Strategy        string    `json:"strategy"`
	ZScoreThreshold float64   `json:"z_score_threshold"`
	IQRMultiplier   float64   `json:"iqr_multiplier"`
	RowsBefore      int       `json:"rows_before"`
	RowsAfter       int       `json:"rows_after"`
	RowsRemoved     int       `json:"rows_removed"`
	Columns         int       `json:"columns"`
	Outliers        int       `json:"outliers"`
	DurationMS      int64     `json:"duration_ms"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewRun builds a Run from a finished pipeline report.
func NewRun(fileID uuid.UUID, filename string, report *clean.Report) Run {
	outliers := 0
	for _, co := range report.Outliers {
		outliers += co.Total
	}
	return Run{
		ID:              uuid.New(),
		FileID:          fileID,
		Filename:        filename,
		Strategy:        string(report.Config.OutlierStrategy),
		ZScoreThreshold: report.Config.ZScoreThreshold,
		IQRMultiplier:   report.Config.IQRMultiplier,
		RowsBefore:      report.ShapeBefore.Rows,
		RowsAfter:       report.ShapeAfter.Rows,
		RowsRemoved:     report.RowsRemoved,
		Columns:         report.ShapeAfter.Columns,
		Outliers:        outliers,
		DurationMS:      report.Duration.Milliseconds(),
		CreatedAt:       time.Now(),
	}
}

// Recorder stores and retrieves cleaning runs.
type Recorder interface {
	Record(ctx context.Context, run Run) error
	Recent(ctx context.Context, limit int) ([]Run, error)
}

const createTable = `
CREATE TABLE IF NOT EXISTS cleaning_runs (
	id                UUID PRIMARY KEY,
	file_id           UUID NOT NULL,
	filename          TEXT NOT NULL,
	strategy          TEXT NOT NULL,
	z_score_threshold DOUBLE PRECISION NOT NULL,
	iqr_multiplier    DOUBLE PRECISION NOT NULL,
	rows_before       INT NOT NULL,
	rows_after        INT NOT NULL,
	rows_removed      INT NOT NULL,
	columns           INT NOT NULL,
	outliers          INT NOT NULL,
	duration_ms       BIGINT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresRecorder writes runs to the cleaning_runs table.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

// NewPostgres ensures the cleaning_runs table exists and returns a recorder
// backed by pool.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*PostgresRecorder, error) {
	if _, err := pool.Exec(ctx, createTable); err != nil {
		return nil, fmt.Errorf("create cleaning_runs table: %w", err)
	}
	return &PostgresRecorder{pool: pool}, nil
}

func (r *PostgresRecorder) Record(ctx context.Context, run Run) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cleaning_runs
			(id, file_id, filename, strategy, z_score_threshold, iqr_multiplier,
			 rows_before, rows_after, rows_removed, columns, outliers,
			 duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		run.ID, run.FileID, run.Filename, run.Strategy,
		run.ZScoreThreshold, run.IQRMultiplier,
		run.RowsBefore, run.RowsAfter, run.RowsRemoved,
		run.Columns, run.Outliers, run.DurationMS, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cleaning run: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, file_id, filename, strategy, z_score_threshold,
		       iqr_multiplier, rows_before, rows_after, rows_removed,
		       columns, outliers, duration_ms, created_at
		FROM cleaning_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cleaning runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID, &run.FileID, &run.Filename, &run.Strategy,
			&run.ZScoreThreshold, &run.IQRMultiplier,
			&run.RowsBefore, &run.RowsAfter, &run.RowsRemoved,
			&run.Columns, &run.Outliers, &run.DurationMS, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cleaning run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// NopRecorder is used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Run) error { return nil }

func (NopRecorder) Recent(context.Context, int) ([]Run, error) { return nil, nil }
