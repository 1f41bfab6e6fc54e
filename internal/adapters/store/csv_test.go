package store_test

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	store "github.com/okian/atsr/internal/adapters/store"
	"github.com/okian/atsr/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var testCriteria = []string{"Comunicação", "Eficiência", "Participação", "Criatividade", "Responsabilidade"}

func testRecord(evaluator, evaluated string) model.Record {
	return model.Record{
		Timestamp: "2026-08-31T10:00:00",
		Evaluator: evaluator,
		Subgroup:  "Subgrupo 01",
		Evaluated: evaluated,
		Scores:    []float64{8, 8.5, 7.5, 9, 8},
		Mean:      8.2,
		MeanValid: true,
	}
}

func TestCSVStore_Append(t *testing.T) {
	Convey("Given a CSV store pointed at a fresh path", t, func() {
		path := filepath.Join(t.TempDir(), "respostas_ATSR.csv")
		s := store.NewCSVStore(
			store.WithPath(path),
			store.WithCriteria(testCriteria),
		)
		ctx := context.Background()

		Convey("When appending the first batch of records", func() {
			err := s.Append(ctx, []model.Record{
				testRecord("Ana", "Bruno"),
				testRecord("Ana", "Carla"),
			})
			So(err, ShouldBeNil)

			f, err := os.Open(path)
			So(err, ShouldBeNil)
			defer f.Close()
			rows, err := csv.NewReader(f).ReadAll()
			So(err, ShouldBeNil)

			Convey("Then the header row should be written once, in column order", func() {
				So(rows, ShouldHaveLength, 3)
				So(rows[0], ShouldResemble, []string{
					"timestamp", "avaliador_nome", "avaliador_subgrupo", "avaliado_nome",
					"Comunicação", "Eficiência", "Participação", "Criatividade", "Responsabilidade",
					"media_5_criterios",
				})
			})

			Convey("And the mean should be rendered with exactly 2 decimals", func() {
				So(rows[1][len(rows[1])-1], ShouldEqual, "8.20")
			})

			Convey("And record fields should land in their columns", func() {
				So(rows[1][0], ShouldEqual, "2026-08-31T10:00:00")
				So(rows[1][1], ShouldEqual, "Ana")
				So(rows[1][2], ShouldEqual, "Subgrupo 01")
				So(rows[1][3], ShouldEqual, "Bruno")
				So(rows[1][4], ShouldEqual, "8")
				So(rows[1][5], ShouldEqual, "8.5")
			})
		})

		Convey("When appending a second batch", func() {
			So(s.Append(ctx, []model.Record{testRecord("Ana", "Bruno")}), ShouldBeNil)
			So(s.Append(ctx, []model.Record{testRecord("Bruno", "Ana")}), ShouldBeNil)

			f, err := os.Open(path)
			So(err, ShouldBeNil)
			defer f.Close()
			rows, err := csv.NewReader(f).ReadAll()
			So(err, ShouldBeNil)

			Convey("Then the header should not be repeated", func() {
				So(rows, ShouldHaveLength, 3)
				So(rows[1][1], ShouldEqual, "Ana")
				So(rows[2][1], ShouldEqual, "Bruno")
			})
		})

		Convey("When appending an empty batch", func() {
			So(s.Append(ctx, nil), ShouldBeNil)

			Convey("Then no file should be created", func() {
				_, err := os.Stat(path)
				So(os.IsNotExist(err), ShouldBeTrue)
			})
		})
	})
}

func TestCSVStore_LoadAll(t *testing.T) {
	Convey("Given a CSV store", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "respostas_ATSR.csv")
		s := store.NewCSVStore(
			store.WithPath(path),
			store.WithCriteria(testCriteria),
		)
		ctx := context.Background()

		Convey("When the file does not exist", func() {
			records, err := s.LoadAll(ctx)

			Convey("Then the store should read as empty, not as an error", func() {
				So(err, ShouldBeNil)
				So(records, ShouldBeEmpty)
			})
		})

		Convey("When reading back appended records", func() {
			So(s.Append(ctx, []model.Record{
				testRecord("Ana", "Bruno"),
				testRecord("Ana", "Carla"),
			}), ShouldBeNil)

			records, err := s.LoadAll(ctx)

			Convey("Then every row should round-trip", func() {
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 2)
				So(records[0].Evaluated, ShouldEqual, "Bruno")
				So(records[0].Scores, ShouldResemble, []float64{8, 8.5, 7.5, 9, 8})
				So(records[0].Mean, ShouldEqual, 8.2)
				So(records[0].MeanValid, ShouldBeTrue)
			})
		})

		Convey("When a stored mean is not numeric", func() {
			So(s.Append(ctx, []model.Record{testRecord("Ana", "Bruno")}), ShouldBeNil)

			f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
			So(err, ShouldBeNil)
			_, err = f.WriteString("2026-08-31T11:00:00,Carla,Subgrupo 01,Ana,8,8,8,8,8,oops\n")
			So(err, ShouldBeNil)
			So(f.Close(), ShouldBeNil)

			records, err := s.LoadAll(ctx)

			Convey("Then the row should load with its mean flagged invalid", func() {
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 2)
				So(records[1].Evaluator, ShouldEqual, "Carla")
				So(records[1].MeanValid, ShouldBeFalse)
			})
		})
	})
}

func TestCSVStore_Count(t *testing.T) {
	Convey("Given a store with three persisted records", t, func() {
		path := filepath.Join(t.TempDir(), "respostas_ATSR.csv")
		s := store.NewCSVStore(
			store.WithPath(path),
			store.WithCriteria(testCriteria),
		)
		ctx := context.Background()
		So(s.Append(ctx, []model.Record{
			testRecord("Ana", "Bruno"),
			testRecord("Ana", "Carla"),
			testRecord("Ana", "Duda"),
		}), ShouldBeNil)

		Convey("When counting", func() {
			n, err := s.Count(ctx)

			Convey("Then the count should match the rows", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
			})
		})
	})
}
