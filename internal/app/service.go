// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	eventqueue "github.com/okian/atsr/internal/adapters/mq/queue"
	"github.com/okian/atsr/internal/adapters/mq/worker"
	"github.com/okian/atsr/internal/adapters/store"
	"github.com/okian/atsr/internal/domain/consolidate"
	"github.com/okian/atsr/internal/domain/dedupe"
	"github.com/okian/atsr/internal/domain/model"
	"github.com/okian/atsr/internal/domain/roster"
	"github.com/okian/atsr/internal/domain/scoring"
	"github.com/okian/atsr/internal/exporter"
	"github.com/okian/atsr/pkg/logger"
	"github.com/okian/atsr/pkg/metrics"
)

// Default lifecycle constants.
const (
	writerShutdownTimeout = 10 * time.Second
)

// Service implements the API dependencies for the evaluation form.
type Service struct {
	mu sync.RWMutex

	// Core components
	roster    *roster.Roster
	collector *scoring.Collector
	answers   store.Store
	deduper   dedupe.Deduper
	subQueue  eventqueue.Queue
	writer    *worker.Writer
	exporter  *exporter.Exporter

	// Configuration
	storePath  string
	queueSize  int
	dedupeSize int
	passphrase string
	criteria   []string
	subgroups  map[string][]string

	// State
	started      bool
	writerCancel context.CancelFunc

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storePath:  "respostas_ATSR.csv",
		queueSize:  1024,
		dedupeSize: 10_000,
		passphrase: "organizador",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if len(s.criteria) == 0 || len(s.subgroups) == 0 {
		return fmt.Errorf("%w: criteria and subgroups are required", ErrNotConfigured)
	}

	s.logger.Info(ctx, "starting evaluation service...")

	s.roster = roster.New(s.subgroups)
	s.collector = scoring.NewCollector(
		scoring.WithCriteria(s.criteria),
	)
	s.answers = store.NewCSVStore(
		store.WithPath(s.storePath),
		store.WithCriteria(s.criteria),
	)
	s.exporter = exporter.NewExporter(
		exporter.WithCriteria(s.criteria),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.subQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)

	// Single writer: all appends to the answer file flow through it.
	s.writer = worker.NewWriter(s.subQueue, s.answers, worker.WithLogger(s.logger.Named("writer")))
	writerCtx, cancel := context.WithCancel(context.Background())
	s.writerCancel = cancel
	go s.writer.Run(writerCtx)

	s.started = true
	s.logger.Info(ctx, "evaluation service started",
		logger.String("storePath", s.storePath),
		logger.Int("queueSize", s.queueSize),
		logger.Int("subgroups", len(s.subgroups)),
	)

	return nil
}

// Stop gracefully shuts down the service, flushing queued submissions first.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping evaluation service...")

	shutdownCtx, cancel := context.WithTimeout(ctx, writerShutdownTimeout)
	defer cancel()
	if err := s.writer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error(ctx, "writer shutdown failed", logger.Error(err))
	}
	if s.writerCancel != nil {
		s.writerCancel()
	}
	if q, ok := s.subQueue.(*eventqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	s.started = false
	s.logger.Info(ctx, "evaluation service stopped")
}

// SeenAndRecord atomically checks if a submission id was seen and records it
// if not. Returns true if the submission was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord removes a submission ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Prepare validates an evaluator's ballots against the roster and, if the
// submission is complete, builds its records under one shared timestamp. No
// state changes: nothing is recorded or written here.
func (s *Service) Prepare(ctx context.Context, submissionID, evaluator string, ballots []model.Ballot) (model.Submission, error) {
	subgroup, err := s.roster.SubgroupOf(evaluator)
	if err != nil {
		return model.Submission{}, fmt.Errorf("evaluator %q: %w", evaluator, err)
	}
	peers, err := s.roster.Peers(evaluator)
	if err != nil {
		return model.Submission{}, fmt.Errorf("evaluator %q: %w", evaluator, err)
	}
	if err := s.collector.ValidateBallots(evaluator, peers, ballots); err != nil {
		return model.Submission{}, err
	}
	return model.Submission{
		ID:        submissionID,
		Evaluator: evaluator,
		Subgroup:  subgroup,
		Records:   s.collector.BuildRecords(evaluator, subgroup, peers, ballots, time.Now()),
	}, nil
}

// Enqueue hands a prepared submission to the single writer.
// Returns false on backpressure.
func (s *Service) Enqueue(ctx context.Context, sub model.Submission) bool {
	ok := s.subQueue.Enqueue(ctx, sub)
	if ok {
		s.logger.Debug(ctx, "submission enqueued",
			logger.String("submissionID", sub.ID),
			logger.String("evaluator", sub.Evaluator),
		)
		metrics.UpdateQueueSize(s.subQueue.Len(ctx))
	}
	return ok
}

// Roster returns the form configuration for the UI.
func (s *Service) Roster(ctx context.Context) model.RosterView {
	view := model.RosterView{
		AllNames:     s.roster.AllNames(),
		Criteria:     s.collector.Criteria(),
		ScoreMin:     scoring.MinScore,
		ScoreMax:     scoring.MaxScore,
		ScoreStep:    scoring.ScoreStep,
		ScoreDefault: scoring.DefaultScore,
	}
	for _, sg := range s.roster.Subgroups() {
		view.Subgroups = append(view.Subgroups, model.SubgroupView{
			Name:    sg,
			Members: s.roster.Members(sg),
		})
	}
	return view
}

// Records loads every persisted record. An absent store yields an empty slice.
func (s *Service) Records(ctx context.Context) ([]model.Record, error) {
	return s.answers.LoadAll(ctx)
}

// Summary recomputes the organizer view from the full record set: raw
// records, per-subgroup rankings, and the global ranking.
func (s *Service) Summary(ctx context.Context) (model.SummaryView, error) {
	start := time.Now()

	records, err := s.answers.LoadAll(ctx)
	if err != nil {
		return model.SummaryView{}, err
	}

	rows := consolidate.Consolidate(records, s.roster)
	view := model.SummaryView{
		Records: records,
		Global:  consolidate.GlobalRanking(rows),
	}
	for _, sg := range s.roster.Subgroups() {
		view.Subgroups = append(view.Subgroups, model.SubgroupRanking{
			Subgroup: sg,
			Rows:     consolidate.SubgroupRanking(rows, sg),
		})
	}

	metrics.RecordConsolidationDuration(float64(time.Since(start).Milliseconds()))
	return view, nil
}

// ExportRecords serializes the raw record table.
func (s *Service) ExportRecords(ctx context.Context, format exporter.Format) ([]byte, error) {
	records, err := s.answers.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.exporter.Records(records, format)
	if err != nil {
		return nil, err
	}
	metrics.RecordExportGenerated("records", string(format))
	return data, nil
}

// ExportSummary serializes the consolidated table.
func (s *Service) ExportSummary(ctx context.Context, format exporter.Format) ([]byte, error) {
	records, err := s.answers.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	rows := consolidate.Consolidate(records, s.roster)
	data, err := s.exporter.Summary(rows, format)
	if err != nil {
		return nil, err
	}
	metrics.RecordExportGenerated("summary", string(format))
	return data, nil
}

// CheckPassphrase compares the supplied passphrase with the configured one.
// Plain equality; the organizer gate is a convenience, not a security boundary.
func (s *Service) CheckPassphrase(passphrase string) bool {
	return passphrase == s.passphrase
}

// GetStats snapshots the submit pipeline: persisted rows, queue depth, and
// how many submission ids the deduper is tracking.
func (s *Service) GetStats() model.ServiceStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := model.ServiceStats{
		Started:       s.started,
		QueueCapacity: s.queueSize,
	}

	if !s.started {
		return stats
	}

	stats.QueueLength = s.subQueue.Len(ctx)
	metrics.UpdateQueueSize(stats.QueueLength)

	if s.deduper != nil {
		stats.TrackedSubmissions = s.deduper.Size()
	}
	if rows, err := s.answers.Count(ctx); err == nil {
		stats.StoreRows = rows
		metrics.UpdateStoreRows(rows)
	}

	return stats
}
