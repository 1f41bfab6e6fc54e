// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/atsr/internal/exporter"
	"github.com/okian/atsr/pkg/metrics"
)

// MIME types for the export downloads.
const (
	mimeCSV  = "text/csv; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportDependencies defines the interface for export operations.
type ExportDependencies interface {
	ExportRecords(ctx context.Context, format exporter.Format) ([]byte, error)
	ExportSummary(ctx context.Context, format exporter.Format) ([]byte, error)
	CheckPassphrase(passphrase string) bool
}

// ExportHandler serves the three organizer downloads.
type ExportHandler struct {
	deps ExportDependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps ExportDependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleGetExport handles GET /api/export/{file} requests.
// Supported files: responses.csv, consolidated.csv, consolidated.xlsx.
func (h *ExportHandler) HandleGetExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_export"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if !h.deps.CheckPassphrase(r.Header.Get(PassphraseHeader)) {
		metrics.RecordOrganizerDenied()
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/export/")
	var (
		data     []byte
		err      error
		mime     string
		filename string
	)
	switch name {
	case "responses.csv":
		data, err = h.deps.ExportRecords(r.Context(), exporter.FormatCSV)
		mime, filename = mimeCSV, "respostas_ATSR.csv"
	case "consolidated.csv":
		data, err = h.deps.ExportSummary(r.Context(), exporter.FormatCSV)
		mime, filename = mimeCSV, "ATSR_consolidado.csv"
	case "consolidated.xlsx":
		data, err = h.deps.ExportSummary(r.Context(), exporter.FormatXLSX)
		mime, filename = mimeXLSX, "ATSR_consolidado.xlsx"
	default:
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrBadRequest))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
