package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Philos250/TransactiTrack/internal/common"
)

// RequestLogger logs one line per request and stores a request-scoped
// logger in the context.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLogger := logger.With("request_id", middleware.GetReqID(r.Context()))
			ctx := common.WithLogger(r.Context(), reqLogger)

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				level := slog.LevelInfo
				if status >= http.StatusInternalServerError {
					level = slog.LevelError
				}

				reqLogger.Log(ctx, level, "http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", status,
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start))
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, code, message string, fields []string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
		Fields:  fields,
	})
}

// writeLedgerError maps a ledger error onto an HTTP status. Infrastructure
// failures are logged and reported without detail.
func writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error(), common.ValidationFields(err))
	case errors.Is(err, common.ErrInvalidReference):
		writeJSONError(w, http.StatusBadRequest, "invalid_reference", err.Error(), nil)
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, common.ErrCategoryInUse):
		writeJSONError(w, http.StatusConflict, "category_in_use", err.Error(), nil)
	default:
		common.LogError(r.Context(), err, "request failed", common.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Internal server error", nil)
	}
}
