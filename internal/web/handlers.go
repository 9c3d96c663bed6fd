package web

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/sqlgraph/bulkimport/internal/logging"
)

// handleImport accepts a JSON import bundle and responds with the error
// report: a JSON array with one entry per failed record or batch. An empty
// array means no failures were observed. Only a malformed bundle produces
// a non-200 response.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxBodySize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "bundle exceeds maximum size")
			return
		}
		writeError(w, r, http.StatusBadRequest, "read request body: "+err.Error())
		return
	}

	// The engine itself never cancels dispatched commands; the deadline
	// on an import call belongs to this layer.
	ctx := r.Context()
	if s.cfg.Import.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Import.Timeout)
		defer cancel()
	}

	report, err := s.service.Import(ctx, data)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if report == nil {
		report = []string{}
	}
	writeJSON(w, r, http.StatusOK, report)
}

// modelInfo is the response shape of the model listing.
type modelInfo struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// handleListModels returns the models known to the schema catalog.
func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	models := s.catalog.Models()
	out := make([]modelInfo, 0, len(models))
	for _, m := range models {
		info := modelInfo{Name: m.Name, Fields: make([]string, 0, len(m.Fields))}
		for _, f := range m.Fields {
			info.Fields = append(info.Fields, f.Name)
		}
		out = append(out, info)
	}
	writeJSON(w, r, http.StatusOK, out)
}

// handleHealth reports service liveness and database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pool == nil {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "no database"})
		return
	}
	if err := s.pool.Ping(r.Context()); err != nil {
		logging.FromContext(r.Context()).Error("health check failed", "error", err)
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "database unreachable"})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
