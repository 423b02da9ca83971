// Package report serves the migration log database over HTTP so editors can
// review per-page gaps without opening SQLite themselves.
package report

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wjoell/slc-migrate/miglog"
)

// Server exposes read-only views over a migration log store.
type Server struct {
	store *miglog.Store
	log   *slog.Logger
}

// New creates a report server over the given store.
func New(store *miglog.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, log: logger}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})
	r.Get("/api/pages", s.handlePages)
	r.Get("/api/records", s.handleRecords)
	r.Get("/api/stats", s.handleStats)
	return r
}

// handlePages lists per-page log counts, worst pages carry the most errors.
func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.PageSummaries()
	if err != nil {
		s.log.Error("page summaries", "error", err)
		writeError(w, 500, err)
		return
	}
	if summaries == nil {
		summaries = []miglog.PageSummary{}
	}
	writeJSON(w, 200, summaries)
}

// handleRecords returns every log record for one page, ?page=/about/history.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get("page")
	if page == "" {
		writeJSON(w, 400, map[string]string{"error": "page query parameter required"})
		return
	}
	records, err := s.store.PageRecords(page)
	if err != nil {
		s.log.Error("page records", "page", page, "error", err)
		writeError(w, 500, err)
		return
	}
	if records == nil {
		records = []miglog.Record{}
	}
	writeJSON(w, 200, records)
}

// rollup is the batch-wide aggregate over every migrated page.
type rollup struct {
	Pages    int `json:"pages"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.PageSummaries()
	if err != nil {
		s.log.Error("page summaries", "error", err)
		writeError(w, 500, err)
		return
	}
	var agg rollup
	for _, p := range summaries {
		agg.Pages++
		agg.Errors += p.Errors
		agg.Warnings += p.Warnings
		agg.Infos += p.Infos
	}
	writeJSON(w, 200, agg)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
