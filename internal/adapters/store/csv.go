package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/okian/atsr/internal/domain/model"
	"github.com/okian/atsr/pkg/metrics"
)

// Fixed leading and trailing column names of the answer file. The five
// criterion names sit between them.
var (
	leadColumns = []string{"timestamp", "avaliador_nome", "avaliador_subgrupo", "avaliado_nome"}
	meanColumn  = "media_5_criterios"
)

// CSVStore persists records in a UTF-8 comma-separated file, one row per
// (evaluator, evaluated) pair. The header row is written once, when the file
// is created. All appends in this process go through one mutex; do not run
// two instances against the same file.
type CSVStore struct {
	mu       sync.Mutex
	path     string
	criteria []string
}

// NewCSVStore creates a CSV store with configuration options.
func NewCSVStore(opts ...Option) *CSVStore {
	s := &CSVStore{
		path: "respostas_ATSR.csv",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Header returns the full column list for the answer file.
func (s *CSVStore) Header() []string {
	header := append([]string(nil), leadColumns...)
	header = append(header, s.criteria...)
	return append(header, meanColumn)
}

// Append writes records at the end of the file, creating it (with header)
// on first use.
func (s *CSVStore) Append(ctx context.Context, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := false
	if info, err := os.Stat(s.path); os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		fresh = true
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		metrics.RecordAppendError()
		return fmt.Errorf("%w: %v", ErrAppend, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(s.Header()); err != nil {
			metrics.RecordAppendError()
			return fmt.Errorf("%w: %v", ErrAppend, err)
		}
	}
	for _, rec := range records {
		if err := w.Write(s.row(rec)); err != nil {
			metrics.RecordAppendError()
			return fmt.Errorf("%w: %v", ErrAppend, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		metrics.RecordAppendError()
		return fmt.Errorf("%w: %v", ErrAppend, err)
	}

	metrics.RecordRecordsAppended(len(records))
	metrics.RecordAppendLatency(float64(time.Since(start).Milliseconds()))
	return nil
}

// row renders one record. The mean is a fixed 2-decimal string; criterion
// scores keep their shortest decimal form.
func (s *CSVStore) row(rec model.Record) []string {
	row := make([]string, 0, len(leadColumns)+len(rec.Scores)+1)
	row = append(row, rec.Timestamp, rec.Evaluator, rec.Subgroup, rec.Evaluated)
	for _, v := range rec.Scores {
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return append(row, fmt.Sprintf("%.2f", rec.Mean))
}

// LoadAll reads every row back as structured records. A missing file is an
// empty store. Means that fail numeric coercion are flagged MeanValid=false
// and left out of aggregation by callers.
func (s *CSVStore) LoadAll(ctx context.Context) ([]model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	nCols := len(leadColumns) + len(s.criteria) + 1
	records := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] { // skip header
		if len(row) < nCols {
			continue
		}
		rec := model.Record{
			Timestamp: row[0],
			Evaluator: row[1],
			Subgroup:  row[2],
			Evaluated: row[3],
		}
		rec.Scores = make([]float64, len(s.criteria))
		for i := range s.criteria {
			if v, err := strconv.ParseFloat(row[len(leadColumns)+i], 64); err == nil {
				rec.Scores[i] = v
			}
		}
		if v, err := strconv.ParseFloat(row[nCols-1], 64); err == nil {
			rec.Mean = v
			rec.MeanValid = true
		}
		records = append(records, rec)
	}

	metrics.UpdateStoreRows(len(records))
	return records, nil
}

// Count returns the number of persisted records.
func (s *CSVStore) Count(ctx context.Context) (int, error) {
	records, err := s.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
