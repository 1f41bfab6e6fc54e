// Package exporter serializes the raw and consolidated tables for download.
package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/okian/atsr/internal/domain/model"
)

// Format selects an export serialization.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// SheetName is the single sheet of spreadsheet exports.
const SheetName = "ATSR"

// Consolidated table column headers, in display order.
var summaryHeader = []string{"Subgrupo", "Integrante", "ATSR"}

// Option applies a configuration option to the Exporter.
type Option func(*Exporter)

// WithCriteria sets the ordered criterion column names for the raw table.
func WithCriteria(criteria []string) Option {
	return func(e *Exporter) {
		if len(criteria) > 0 {
			e.criteria = append([]string(nil), criteria...)
		}
	}
}

// Exporter renders the record and summary tables as downloadable bytes.
type Exporter struct {
	criteria []string
}

// NewExporter creates an Exporter with configuration options.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// recordsHeader mirrors the answer file columns.
func (e *Exporter) recordsHeader() []string {
	header := []string{"timestamp", "avaliador_nome", "avaliador_subgrupo", "avaliado_nome"}
	header = append(header, e.criteria...)
	return append(header, "media_5_criterios")
}

// Records serializes the raw record table. An unknown format is an explicit
// error, not empty output.
func (e *Exporter) Records(records []model.Record, format Format) ([]byte, error) {
	header := e.recordsHeader()
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, 0, len(header))
		row = append(row, rec.Timestamp, rec.Evaluator, rec.Subgroup, rec.Evaluated)
		for _, v := range rec.Scores {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		row = append(row, fmt.Sprintf("%.2f", rec.Mean))
		rows = append(rows, row)
	}
	return e.serialize(header, rows, format)
}

// Summary serializes the consolidated table. Column order is preserved:
// Subgrupo, Integrante, ATSR.
func (e *Exporter) Summary(summary []model.SummaryRow, format Format) ([]byte, error) {
	rows := make([][]string, 0, len(summary))
	for _, s := range summary {
		rows = append(rows, []string{s.Subgroup, s.Name, fmt.Sprintf("%.2f", s.Composite)})
	}
	return e.serialize(summaryHeader, rows, format)
}

func (e *Exporter) serialize(header []string, rows [][]string, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return writeCSV(header, rows)
	case FormatXLSX:
		return writeXLSX(header, rows)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return buf.Bytes(), nil
}

// writeXLSX builds a single-sheet workbook. An empty table still yields a
// valid headers-only file.
func writeXLSX(header []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(SheetName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}

	if err := setRow(f, 1, header); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := setRow(f, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return nil
}
