// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/atsr/internal/domain/model"
	"github.com/okian/atsr/internal/domain/roster"
	"github.com/okian/atsr/internal/domain/scoring"
	"github.com/okian/atsr/pkg/metrics"
)

// submissionRequest mirrors the OpenAPI schema for POST /api/submissions.
type submissionRequest struct {
	SubmissionID string         `json:"submission_id"`
	Evaluator    string         `json:"evaluator"`
	Ballots      []model.Ballot `json:"ballots"`
}

func (s submissionRequest) validate() error {
	switch {
	case strings.TrimSpace(s.SubmissionID) == "":
		return errors.New("missing submission_id")
	case strings.TrimSpace(s.Evaluator) == "":
		return errors.New("missing evaluator")
	case len(s.Ballots) == 0:
		return errors.New("missing ballots")
	}
	if _, err := uuid.Parse(s.SubmissionID); err != nil {
		return errors.New("invalid submission_id; must be a UUID")
	}
	return nil
}

// SubmissionsHandler handles evaluation submissions.
type SubmissionsHandler struct {
	deps Dependencies
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps Dependencies) *SubmissionsHandler {
	return &SubmissionsHandler{deps: deps}
}

// HandlePostSubmission handles POST /api/submissions requests.
// Validation is all-or-nothing: any missing ballot or bad score rejects the
// whole submission and nothing reaches the store.
func (h *SubmissionsHandler) HandlePostSubmission(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_submission"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	sub, err := h.deps.Prepare(r.Context(), req.SubmissionID, req.Evaluator, req.Ballots)
	if err != nil {
		metrics.RecordSubmissionRejected()
		switch {
		case errors.Is(err, roster.ErrUnmappedName):
			writeError(w, http.StatusNotFound, "unmapped_name", err)
		case errors.Is(err, scoring.ErrIncompleteSubmission),
			errors.Is(err, scoring.ErrInvalidScore),
			errors.Is(err, scoring.ErrUnknownPeer):
			writeError(w, http.StatusUnprocessableEntity, "incomplete_submission", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.SubmissionID) {
		metrics.RecordSubmissionDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	// Hand off to the single writer
	if ok := h.deps.Enqueue(r.Context(), sub); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.SubmissionID)
		writeError(w, http.StatusServiceUnavailable, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
