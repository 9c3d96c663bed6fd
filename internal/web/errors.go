package web

// errors.go provides unified response writing for the web layer. Errors are
// logged with full detail server-side and returned to clients as a compact
// JSON object.

import (
	"encoding/json"
	"net/http"

	"github.com/sqlgraph/bulkimport/internal/logging"
)

// errorResponse is the JSON structure for API error responses.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError logs the error and writes a JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", message,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}

// writeJSON encodes v as JSON and writes it with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
