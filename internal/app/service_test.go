package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	service "github.com/okian/atsr/internal/app"
	"github.com/okian/atsr/internal/domain/model"
	"github.com/okian/atsr/internal/domain/roster"
	"github.com/okian/atsr/internal/domain/scoring"
	"github.com/okian/atsr/internal/exporter"
	"github.com/okian/atsr/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var (
	testCriteria = []string{"Comunicação", "Eficiência", "Participação", "Criatividade", "Responsabilidade"}

	testSubgroups = map[string][]string{
		"Subgrupo 01": {"Ana", "Bruno", "Carla"},
		"Subgrupo 02": {"Dalila", "Edu", "Fran"},
	}
)

func newTestService(t *testing.T) *service.Service {
	return service.New(
		service.WithStorePath(filepath.Join(t.TempDir(), "respostas_ATSR.csv")),
		service.WithCriteria(testCriteria),
		service.WithSubgroups(testSubgroups),
		service.WithPassphrase("segredo"),
	)
}

func ballots(scores float64, peers ...string) []model.Ballot {
	out := make([]model.Ballot, 0, len(peers))
	for _, peer := range peers {
		b := model.Ballot{Evaluated: peer, Scores: make(map[string]float64, len(testCriteria))}
		for _, c := range testCriteria {
			b.Scores[c] = scores
		}
		out = append(out, b)
	}
	return out
}

func waitForRecords(ctx context.Context, svc *service.Service, want int) []model.Record {
	deadline := time.After(2 * time.Second)
	for {
		if records, err := svc.Records(ctx); err == nil && len(records) >= want {
			return records
		}
		select {
		case <-deadline:
			return nil
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestService_Start(t *testing.T) {
	Convey("Given a configured service", t, func() {
		svc := newTestService(t)
		defer svc.Stop()

		Convey("When starting it", func() {
			err := svc.Start(context.Background())

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)

				stats := svc.GetStats()
				So(stats.Started, ShouldBeTrue)
				So(stats.QueueCapacity, ShouldEqual, 1024)
				So(stats.TrackedSubmissions, ShouldEqual, 0)
			})

			Convey("And starting again should be a no-op", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
			})
		})
	})

	Convey("Given a service without a roster", t, func() {
		svc := service.New(service.WithCriteria(testCriteria))

		Convey("When starting it", func() {
			err := svc.Start(context.Background())

			Convey("Then it should refuse to start", func() {
				So(errors.Is(err, service.ErrNotConfigured), ShouldBeTrue)
			})
		})
	})
}

func TestService_Roster(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newTestService(t)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("When reading the roster view", func() {
			view := svc.Roster(context.Background())

			Convey("Then subgroups should come back in display order", func() {
				So(view.Subgroups, ShouldHaveLength, 2)
				So(view.Subgroups[0].Name, ShouldEqual, "Subgrupo 01")
				So(view.Subgroups[1].Name, ShouldEqual, "Subgrupo 02")
			})

			Convey("And the slider configuration should be present", func() {
				So(view.Criteria, ShouldResemble, testCriteria)
				So(view.ScoreMin, ShouldEqual, 0)
				So(view.ScoreMax, ShouldEqual, 10)
				So(view.ScoreStep, ShouldEqual, 0.5)
				So(view.ScoreDefault, ShouldEqual, 5)
			})
		})
	})
}

func TestService_Prepare(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newTestService(t)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When preparing a complete submission", func() {
			sub, err := svc.Prepare(ctx, "sub-1", "Ana", ballots(8, "Bruno", "Carla"))

			Convey("Then one record per peer should be built", func() {
				So(err, ShouldBeNil)
				So(sub.Records, ShouldHaveLength, 2)
				So(sub.Subgroup, ShouldEqual, "Subgrupo 01")
			})

			Convey("And all records should share one timestamp", func() {
				So(sub.Records[0].Timestamp, ShouldEqual, sub.Records[1].Timestamp)
			})

			Convey("And no record should evaluate the evaluator", func() {
				for _, rec := range sub.Records {
					So(rec.Evaluated, ShouldNotEqual, "Ana")
				}
			})
		})

		Convey("When the evaluator is not on the roster", func() {
			_, err := svc.Prepare(ctx, "sub-1", "Zeca", ballots(8, "Bruno", "Carla"))

			Convey("Then it should report an unmapped name", func() {
				So(errors.Is(err, roster.ErrUnmappedName), ShouldBeTrue)
			})
		})

		Convey("When a peer ballot is missing", func() {
			_, err := svc.Prepare(ctx, "sub-1", "Ana", ballots(8, "Bruno"))

			Convey("Then the whole submission should be rejected", func() {
				So(errors.Is(err, scoring.ErrIncompleteSubmission), ShouldBeTrue)
			})

			Convey("And nothing should reach the store", func() {
				records, loadErr := svc.Records(ctx)
				So(loadErr, ShouldBeNil)
				So(records, ShouldBeEmpty)
			})
		})
	})
}

func TestService_SubmitFlow(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newTestService(t)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When a prepared submission is enqueued", func() {
			sub, err := svc.Prepare(ctx, "sub-1", "Ana", ballots(8, "Bruno", "Carla"))
			So(err, ShouldBeNil)
			So(svc.Enqueue(ctx, sub), ShouldBeTrue)

			Convey("Then its records should be persisted by the writer", func() {
				records := waitForRecords(ctx, svc, 2)
				So(records, ShouldHaveLength, 2)
				So(records[0].Evaluator, ShouldEqual, "Ana")
			})
		})

		Convey("When two evaluators submit", func() {
			subA, err := svc.Prepare(ctx, "sub-a", "Ana", ballots(8, "Bruno", "Carla"))
			So(err, ShouldBeNil)
			subB, err := svc.Prepare(ctx, "sub-b", "Bruno", ballots(9, "Ana", "Carla"))
			So(err, ShouldBeNil)
			So(svc.Enqueue(ctx, subA), ShouldBeTrue)
			So(svc.Enqueue(ctx, subB), ShouldBeTrue)

			Convey("Then every submission's rows should land in the store", func() {
				records := waitForRecords(ctx, svc, 4)
				So(records, ShouldHaveLength, 4)
			})
		})

		Convey("When tracking submission ids", func() {
			Convey("Then the first sight should record and later ones report duplicates", func() {
				So(svc.SeenAndRecord(ctx, "sub-1"), ShouldBeFalse)
				So(svc.SeenAndRecord(ctx, "sub-1"), ShouldBeTrue)
				So(svc.Size(), ShouldEqual, 1)

				svc.Unrecord(ctx, "sub-1")
				So(svc.SeenAndRecord(ctx, "sub-1"), ShouldBeFalse)
			})
		})
	})
}

func TestService_Summary(t *testing.T) {
	Convey("Given a service with persisted submissions", t, func() {
		svc := newTestService(t)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		subA, err := svc.Prepare(ctx, "sub-a", "Ana", ballots(8, "Bruno", "Carla"))
		So(err, ShouldBeNil)
		subB, err := svc.Prepare(ctx, "sub-b", "Bruno", ballots(9, "Ana", "Carla"))
		So(err, ShouldBeNil)
		So(svc.Enqueue(ctx, subA), ShouldBeTrue)
		So(svc.Enqueue(ctx, subB), ShouldBeTrue)
		So(waitForRecords(ctx, svc, 4), ShouldHaveLength, 4)

		Convey("When building the organizer view", func() {
			view, err := svc.Summary(ctx)

			Convey("Then raw records should be present", func() {
				So(err, ShouldBeNil)
				So(view.Records, ShouldHaveLength, 4)
			})

			Convey("And every subgroup should have a ranking section", func() {
				So(view.Subgroups, ShouldHaveLength, 2)
				So(view.Subgroups[0].Subgroup, ShouldEqual, "Subgrupo 01")
			})

			Convey("And the global ranking should order by composite with 1-based ranks", func() {
				So(view.Global, ShouldNotBeEmpty)
				So(view.Global[0].Rank, ShouldEqual, 1)
				for i := 1; i < len(view.Global); i++ {
					So(view.Global[i].Composite, ShouldBeLessThanOrEqualTo, view.Global[i-1].Composite)
				}
			})

			Convey("And Carla's composite should be the mean of her means", func() {
				// Ana scored her 8.00, Bruno scored her 9.00.
				for _, row := range view.Global {
					if row.Name == "Carla" {
						So(row.Composite, ShouldEqual, 8.5)
					}
				}
			})
		})

		Convey("When building the view twice in a row", func() {
			first, err := svc.Summary(ctx)
			So(err, ShouldBeNil)
			second, err := svc.Summary(ctx)
			So(err, ShouldBeNil)

			Convey("Then the result should be identical", func() {
				So(second.Global, ShouldResemble, first.Global)
			})
		})
	})
}

func TestService_Export(t *testing.T) {
	Convey("Given a service with persisted submissions", t, func() {
		svc := newTestService(t)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		sub, err := svc.Prepare(ctx, "sub-1", "Ana", ballots(8, "Bruno", "Carla"))
		So(err, ShouldBeNil)
		So(svc.Enqueue(ctx, sub), ShouldBeTrue)
		So(waitForRecords(ctx, svc, 2), ShouldHaveLength, 2)

		Convey("When exporting the raw records as CSV", func() {
			data, err := svc.ExportRecords(ctx, exporter.FormatCSV)

			Convey("Then the bytes should carry the persisted rows", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, "avaliador_nome")
				So(string(data), ShouldContainSubstring, "Ana")
			})
		})

		Convey("When exporting the consolidated table as CSV", func() {
			data, err := svc.ExportSummary(ctx, exporter.FormatCSV)

			Convey("Then the bytes should carry the summary columns", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, "Subgrupo,Integrante,ATSR")
				So(string(data), ShouldContainSubstring, "8.00")
			})
		})

		Convey("When exporting the consolidated table as XLSX", func() {
			data, err := svc.ExportSummary(ctx, exporter.FormatXLSX)

			Convey("Then a non-empty workbook should be produced", func() {
				So(err, ShouldBeNil)
				So(data, ShouldNotBeEmpty)
			})
		})

		Convey("When asking for an unsupported format", func() {
			_, err := svc.ExportRecords(ctx, exporter.Format("pdf"))

			Convey("Then it should fail explicitly", func() {
				So(errors.Is(err, exporter.ErrUnsupportedFormat), ShouldBeTrue)
			})
		})
	})
}

func TestService_CheckPassphrase(t *testing.T) {
	Convey("Given a service with a configured passphrase", t, func() {
		svc := newTestService(t)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("Then only the exact passphrase should pass", func() {
			So(svc.CheckPassphrase("segredo"), ShouldBeTrue)
			So(svc.CheckPassphrase("Segredo"), ShouldBeFalse)
			So(svc.CheckPassphrase(""), ShouldBeFalse)
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service with queued submissions", t, func() {
		svc := newTestService(t)
		So(svc.Start(context.Background()), ShouldBeNil)
		ctx := context.Background()

		sub, err := svc.Prepare(ctx, "sub-1", "Ana", ballots(8, "Bruno", "Carla"))
		So(err, ShouldBeNil)
		So(svc.Enqueue(ctx, sub), ShouldBeTrue)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then queued submissions should be flushed before shutdown", func() {
				records, loadErr := svc.Records(ctx)
				So(loadErr, ShouldBeNil)
				So(records, ShouldHaveLength, 2)
			})

			Convey("And stopping again should be a no-op", func() {
				svc.Stop()
			})
		})
	})
}
