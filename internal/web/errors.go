package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical details server-side and returned
// to the client as a stable error code plus a user-friendly message with an
// action suggestion. Clients match on the code, not the message text.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"csvcleaner/internal/clean"
	"csvcleaner/internal/store"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// userMessage is a client-safe rendering of an internal error.
type userMessage struct {
	Code    string
	Message string
	Action  string
}

// mapError translates an internal error into an HTTP status and a
// client-safe message.
func mapError(err error) (int, userMessage) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, userMessage{
			Code:    "FILE001",
			Message: "File not found or expired",
			Action:  "Upload the file again; stored files expire after a short time",
		}
	case errors.Is(err, store.ErrNotCleaned):
		return http.StatusConflict, userMessage{
			Code:    "FILE002",
			Message: "File has not been cleaned yet",
			Action:  "Run POST /api/clean on this file first",
		}
	case errors.Is(err, clean.ErrEmptyTable):
		return http.StatusUnprocessableEntity, userMessage{
			Code:    "CSV001",
			Message: "The file contains no data rows",
			Action:  "Upload a CSV with a header row and at least one data row",
		}
	case errors.Is(err, errTooManyJobs):
		return http.StatusServiceUnavailable, userMessage{
			Code:    "JOB001",
			Message: "Too many cleaning jobs in progress",
			Action:  "Please wait a moment and try again",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, userMessage{
			Code:    "JOB002",
			Message: "Cleaning timed out",
			Action:  "Try a smaller file or try again later",
		}
	}

	var pe *clean.ParseError
	if errors.As(err, &pe) {
		return http.StatusUnprocessableEntity, userMessage{
			Code:    "CSV002",
			Message: "The file could not be parsed as CSV",
			Action:  "Ensure the file is delimited text with consistent columns",
		}
	}

	var ve *clean.ConfigError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, userMessage{
			Code:    "CFG001",
			Message: ve.Error(),
			Action:  "Fix the cleaning options and retry",
		}
	}

	return http.StatusInternalServerError, userMessage{
		Code:    "SRV001",
		Message: "Something went wrong",
		Action:  "Please try again; contact support with the request ID if it persists",
	}
}

// respondError logs the technical error and writes the mapped JSON response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := mapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err,
		"code", msg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	respondErrorJSON(w, status, msg)
}

// badRequest writes a 400 with an explicit code and message, for request
// shape problems that never originate from an internal error value.
func badRequest(w http.ResponseWriter, r *http.Request, code, message, action string) {
	slog.Warn("bad request",
		"path", r.URL.Path,
		"code", code,
		"detail", message,
		"request_id", middleware.GetReqID(r.Context()),
	)
	respondErrorJSON(w, http.StatusBadRequest, userMessage{Code: code, Message: message, Action: action})
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, status int, msg userMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
