// Package server provides an HTTP server that wraps the dataset catalog
// and on-demand description, enabling remote access over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/brandonestevez/walter/internal/catalog"
	"github.com/brandonestevez/walter/internal/gis"
	"github.com/brandonestevez/walter/internal/model"
	"github.com/brandonestevez/walter/internal/report"
	"github.com/brandonestevez/walter/internal/vector"
)

// Server wraps a catalog.Store and exposes it over HTTP.
type Server struct {
	store catalog.Store
	mux   *http.ServeMux
	srv   *http.Server
}

// New creates a Server that delegates to the given store.
func New(s catalog.Store) *Server {
	srv := &Server{store: s, mux: http.NewServeMux()}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/datasets", s.handleListDatasets)
	s.mux.HandleFunc("GET /api/v1/datasets/{id}", s.handleGetDataset)
	s.mux.HandleFunc("DELETE /api/v1/datasets/{id}", s.handleDeleteDataset)
	s.mux.HandleFunc("POST /api/v1/describe", s.handleDescribe)
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s.srv.ListenAndServe()
}

// Serve accepts connections on the given listener.
func (s *Server) Serve(ln net.Listener) error {
	s.srv = &http.Server{
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s.srv.Serve(ln)
}

// Handler returns the HTTP handler for use with httptest.Server or custom listeners.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOpts(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "%v", err)
		return
	}
	entries, err := s.store.List(r.Context(), opts)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "listing datasets: %v", err)
		return
	}
	if entries == nil {
		entries = []model.CatalogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeErr(w, http.StatusBadRequest, "dataset id is required")
		return
	}
	entry, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "getting dataset: %v", err)
		return
	}
	if entry == nil {
		writeErr(w, http.StatusNotFound, "dataset %q not found", id)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeErr(w, http.StatusBadRequest, "dataset id is required")
		return
	}
	deleted, err := s.store.Delete(r.Context(), id)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "deleting dataset: %v", err)
		return
	}
	if !deleted {
		writeErr(w, http.StatusNotFound, "dataset %q not found", id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// describeRequest asks for a description of a server-local dataset file.
type describeRequest struct {
	Path   string `json:"path"`
	Format string `json:"format,omitempty"`
	Stats  *bool  `json:"stats,omitempty"`
}

type describeResponse struct {
	Summary     *model.Summary `json:"summary"`
	Description string         `json:"description"`
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	var req describeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if req.Path == "" {
		writeErr(w, http.StatusBadRequest, "path field is required")
		return
	}
	ds, err := vector.Open(req.Path)
	if err != nil {
		writeErr(w, http.StatusUnprocessableEntity, "open dataset: %v", err)
		return
	}
	sum := gis.Summarize(ds)

	format := req.Format
	if format == "" {
		format = "markdown"
	}
	includeStats := true
	if req.Stats != nil {
		includeStats = *req.Stats
	}
	writeJSON(w, http.StatusOK, describeResponse{
		Summary:     sum,
		Description: report.Describe(sum, format, includeStats),
	})
}

// writeJSON encodes v as JSON and writes it to w with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// writeErr writes a JSON error response.
func writeErr(w http.ResponseWriter, status int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	writeJSON(w, status, map[string]string{"error": msg})
}
