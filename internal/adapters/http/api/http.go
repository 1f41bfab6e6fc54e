// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/atsr/internal/domain/dedupe"
	"github.com/okian/atsr/internal/domain/model"
	"github.com/okian/atsr/internal/exporter"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Prepare validates a submission and builds its records; no side effects.
	Prepare(ctx context.Context, submissionID, evaluator string, ballots []model.Ballot) (model.Submission, error)

	// Enqueue hands a prepared submission to the writer. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, sub model.Submission) bool

	// Read operations expose the form configuration and the organizer view.
	Roster(ctx context.Context) model.RosterView
	Summary(ctx context.Context) (model.SummaryView, error)
	ExportRecords(ctx context.Context, format exporter.Format) ([]byte, error)
	ExportSummary(ctx context.Context, format exporter.Format) ([]byte, error)

	// CheckPassphrase gates the organizer endpoints.
	CheckPassphrase(passphrase string) bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	submissionsHandler *SubmissionsHandler
	rosterHandler      *RosterHandler
	summaryHandler     *SummaryHandler
	exportHandler      *ExportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		submissionsHandler: NewSubmissionsHandler(deps),
		rosterHandler:      NewRosterHandler(deps),
		summaryHandler:     NewSummaryHandler(deps),
		exportHandler:      NewExportHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleHealth)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/roster", MetricsMiddleware(s.rosterHandler.HandleGetRoster, "roster"))
	mux.HandleFunc("/api/submissions", MetricsMiddleware(s.submissionsHandler.HandlePostSubmission, "submissions"))
	mux.HandleFunc("/api/summary", MetricsMiddleware(s.summaryHandler.HandleGetSummary, "summary"))
	mux.HandleFunc("/api/export/", MetricsMiddleware(s.exportHandler.HandleGetExport, "export"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
