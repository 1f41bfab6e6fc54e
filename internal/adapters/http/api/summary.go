// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/atsr/internal/domain/model"
	"github.com/okian/atsr/pkg/metrics"
)

// PassphraseHeader carries the organizer passphrase. Compared with plain
// equality; the gate hides the panel from casual visitors, nothing more.
const PassphraseHeader = "X-Organizer-Passphrase"

// SummaryDependencies defines the interface for the organizer view.
type SummaryDependencies interface {
	Summary(ctx context.Context) (model.SummaryView, error)
	CheckPassphrase(passphrase string) bool
}

// summaryResponse wraps the organizer view. An empty store is informational,
// not an error: Empty is set and the tables are absent.
type summaryResponse struct {
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`

	Records   []model.Record          `json:"records,omitempty"`
	Subgroups []model.SubgroupRanking `json:"subgroups,omitempty"`
	Global    []model.RankedRow       `json:"global,omitempty"`
}

// SummaryHandler handles organizer summary requests.
type SummaryHandler struct {
	deps SummaryDependencies
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

// HandleGetSummary handles GET /api/summary requests.
func (h *SummaryHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_summary"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if !h.deps.CheckPassphrase(r.Header.Get(PassphraseHeader)) {
		metrics.RecordOrganizerDenied()
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
		return
	}

	view, err := h.deps.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if len(view.Records) == 0 {
		writeJSON(w, http.StatusOK, summaryResponse{
			Empty:   true,
			Message: "Ainda não há respostas salvas.",
		})
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Records:   view.Records,
		Subgroups: view.Subgroups,
		Global:    view.Global,
	})
}
