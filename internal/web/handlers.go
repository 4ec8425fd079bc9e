package web

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"csvcleaner/internal/audit"
	"csvcleaner/internal/clean"
	"csvcleaner/internal/logging"
	"csvcleaner/internal/store"
	"csvcleaner/internal/table"
)

// CleanRequest is the body of POST /api/clean. Omitted options fall back to
// the configured defaults.
type CleanRequest struct {
	FileID          string   `json:"file_id"`
	OutlierStrategy *string  `json:"outlier_strategy,omitempty"`
	ZScoreThreshold *float64 `json:"z_score_threshold,omitempty"`
	IQRMultiplier   *float64 `json:"iqr_multiplier,omitempty"`
	Standardize     *bool    `json:"standardize,omitempty"`
}

// UploadResponse is the body returned by POST /api/upload. The summary fields
// are filled when the file parses; an upload that the loader cannot read is
// still stored, and the parse failure surfaces later on /api/clean.
type UploadResponse struct {
	store.Entry
	Shape       *clean.Shape        `json:"shape,omitempty"`
	Columns     []string            `json:"columns,omitempty"`
	ColumnTypes map[string]string   `json:"column_types,omitempty"`
	Missing     map[string]int      `json:"missing,omitempty"`
	Preview     []map[string]string `json:"preview,omitempty"`
}

// CleanResponse is the body returned by POST /api/clean.
type CleanResponse struct {
	FileID      string              `json:"file_id"`
	Filename    string              `json:"filename"`
	DownloadURL string              `json:"download_url"`
	Report      *clean.Report       `json:"report"`
	Preview     []map[string]string `json:"preview"`
}

// handleIndex describes the service and its endpoints.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"service": "csv-cleaner",
		"endpoints": map[string]string{
			"upload":   "POST /api/upload",
			"clean":    "POST /api/clean",
			"download": "GET /api/download/{file_id}",
			"keymap":   "GET /api/keymap/{file_id}",
			"analyze":  "GET /api/analyze/{file_id}",
			"files":    "GET /api/files",
			"cleanup":  "POST /api/cleanup",
			"runs":     "GET /api/runs",
			"health":   "GET /api/health",
		},
	})
}

// handleHealth reports service liveness and job capacity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":          "ok",
		"active_jobs":     s.jobs.ActiveCount(),
		"available_slots": s.jobs.Available(),
		"stored_files":    len(s.store.List()),
	})
}

// handleUpload stores an uploaded CSV and returns its file ID along with a
// quick structural summary of the data.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	s.store.Sweep()

	maxSize := s.cfg.Store.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		badRequest(w, r, "UPL001", "File too large or invalid form",
			fmt.Sprintf("Uploads are limited to %d bytes of multipart form data", maxSize))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, r, "UPL002", "No file provided", "Attach a CSV file in the 'file' form field")
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" && ext != ".txt" {
		badRequest(w, r, "UPL003", "Unsupported file type", "Upload a .csv or .txt file")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, err)
		return
	}

	entry, err := s.store.Put(header.Filename, data)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := UploadResponse{Entry: entry}
	if tbl, err := clean.Load(data); err == nil {
		clean.DropEmptyColumns(tbl)
		clean.InferTypes(tbl)

		types := make(map[string]string, tbl.ColumnCount())
		missing := make(map[string]int, tbl.ColumnCount())
		for _, col := range tbl.Columns {
			types[col.Name] = col.Type.String()
			missing[col.Name] = len(col.Cells) - len(col.Present())
		}
		resp.Shape = &clean.Shape{Rows: tbl.RowCount(), Columns: tbl.ColumnCount()}
		resp.Columns = tbl.Names()
		resp.ColumnTypes = types
		resp.Missing = missing
		resp.Preview = tbl.Head(10)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// handleClean runs the cleaning pipeline on a stored file.
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	s.store.Sweep()

	var req CleanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "REQ001", "Invalid JSON body", "Send a JSON object with at least a file_id field")
		return
	}
	if req.FileID == "" {
		badRequest(w, r, "REQ002", "Missing file_id", "Include the file_id returned by the upload endpoint")
		return
	}

	cfg := s.cfg.Clean.Pipeline()
	if req.OutlierStrategy != nil {
		cfg.OutlierStrategy = clean.Strategy(*req.OutlierStrategy)
	}
	if req.ZScoreThreshold != nil {
		cfg.ZScoreThreshold = *req.ZScoreThreshold
	}
	if req.IQRMultiplier != nil {
		cfg.IQRMultiplier = *req.IQRMultiplier
	}
	if req.Standardize != nil {
		cfg.Standardize = *req.Standardize
	}
	if err := cfg.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.jobs.Acquire(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	defer s.jobs.Release()

	data, entry, err := s.store.ReadRaw(req.FileID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger := logging.WithFields(r.Context(),
		"file_id", entry.ID, "filename", entry.Name, "strategy", cfg.OutlierStrategy)
	logger.Info("cleaning started", "size", entry.Size)

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Clean.Timeout)
	defer cancel()

	tbl, report, err := runPipeline(ctx, data, cfg)
	if err != nil {
		respondError(w, r, err)
		return
	}

	cleaned, err := renderCSV(tbl)
	if err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := s.store.SaveCleaned(req.FileID, cleaned, report)
	if err != nil {
		respondError(w, r, err)
		return
	}

	// Audit recording is best-effort: a database hiccup must not fail the
	// request.
	run := audit.NewRun(entry.ID, entry.Name, report)
	if err := s.recorder.Record(r.Context(), run); err != nil {
		logger.Warn("failed to record cleaning run", "error", err)
	}

	logger.Info("cleaning finished",
		"rows_before", report.ShapeBefore.Rows,
		"rows_after", report.ShapeAfter.Rows,
		"duration", report.Duration,
	)

	writeJSON(w, CleanResponse{
		FileID:      updated.ID.String(),
		Filename:    updated.Name,
		DownloadURL: "/api/download/" + updated.ID.String(),
		Report:      report,
		Preview:     tbl.Head(5),
	})
}

// runPipeline runs Clean on a worker goroutine so an oversized job can be
// abandoned when the deadline passes.
func runPipeline(ctx context.Context, data []byte, cfg clean.Config) (*table.Table, *clean.Report, error) {
	type result struct {
		tbl    *table.Table
		report *clean.Report
		err    error
	}
	done := make(chan result, 1)

	go func() {
		tbl, report, err := clean.Clean(data, cfg)
		done <- result{tbl, report, err}
	}()

	select {
	case res := <-done:
		return res.tbl, res.report, res.err
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

// handleDownload serves the cleaned CSV as an attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	data, entry, err := s.store.ReadCleaned(fileID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="cleaned_%s"`, filepath.Base(entry.Name)))
	w.Write(data)
}

// handleKeymap serves the categorical code-to-value maps for a cleaned file
// as a CSV attachment with Column, Code and Original_Value columns.
func (s *Server) handleKeymap(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	entry, err := s.store.Get(fileID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !entry.Cleaned || entry.Report == nil {
		respondError(w, r, store.ErrNotCleaned)
		return
	}

	data, err := renderKeymapCSV(entry.Report.Keymaps)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="keymap_%s"`, filepath.Base(entry.Name)))
	w.Write(data)
}

// renderKeymapCSV flattens the keymaps into rows ordered by column name and
// code.
func renderKeymapCSV(keymaps map[string]clean.Keymap) ([]byte, error) {
	records := [][]string{{"Column", "Code", "Original_Value"}}

	cols := make([]string, 0, len(keymaps))
	for name := range keymaps {
		cols = append(cols, name)
	}
	sort.Strings(cols)

	for _, name := range cols {
		km := keymaps[name]
		codes := make([]int, 0, len(km))
		for code := range km {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			records = append(records, []string{name, strconv.Itoa(code), km[code]})
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("render keymap csv: %w", err)
	}
	return buf.Bytes(), nil
}

// handleAnalyze profiles a stored file without cleaning it.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	data, entry, err := s.store.ReadRaw(fileID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	tbl, err := clean.Load(data)
	if err != nil {
		respondError(w, r, err)
		return
	}
	clean.DropEmptyColumns(tbl)
	clean.InferTypes(tbl)

	writeJSON(w, map[string]any{
		"file_id":  entry.ID,
		"filename": entry.Name,
		"profile":  clean.Profile(tbl),
	})
}

// handleListFiles lists the currently stored files.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files := s.store.List()
	writeJSON(w, map[string]any{
		"files": files,
		"count": len(files),
	})
}

// handleCleanup sweeps expired files immediately.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	removed := s.store.Sweep()
	writeJSON(w, map[string]any{"removed_files": removed})
}

// handleRuns returns recent cleaning runs from the audit trail. Without a
// configured database the list is always empty.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			badRequest(w, r, "REQ003", "Invalid limit", "limit must be an integer between 1 and 500")
			return
		}
		limit = n
	}

	runs, err := s.recorder.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if runs == nil {
		runs = []audit.Run{}
	}
	writeJSON(w, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// renderCSV serializes a table back to CSV bytes.
func renderCSV(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(t.Records()); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return buf.Bytes(), nil
}
