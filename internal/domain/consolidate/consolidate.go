// Package consolidate computes composite scores and rankings from raw records.
//
// The whole table is recomputed from the full record set on every call; there
// is no cache and no incremental path. At a few hundred rows that is cheaper
// than keeping derived state correct.
package consolidate

import (
	"sort"

	"github.com/okian/atsr/internal/domain/model"
	"github.com/okian/atsr/internal/domain/roster"
	"github.com/okian/atsr/internal/domain/scoring"
)

// Consolidate groups records by evaluated name and returns one SummaryRow per
// person: composite = mean of that person's per-record means, rounded to 2
// decimals. Rows whose stored mean failed numeric coercion are excluded from
// the mean, not counted as zero. Rows come back ascending by evaluated name,
// regardless of the order records were appended. Names outside the roster get
// the unknown-subgroup sentinel.
func Consolidate(records []model.Record, r *roster.Roster) []model.SummaryRow {
	type group struct {
		sum   float64
		count int
	}
	var names []string
	groups := make(map[string]*group)
	for _, rec := range records {
		g, ok := groups[rec.Evaluated]
		if !ok {
			g = &group{}
			groups[rec.Evaluated] = g
			names = append(names, rec.Evaluated)
		}
		if !rec.MeanValid {
			continue
		}
		g.sum += rec.Mean
		g.count++
	}
	sort.Strings(names)

	rows := make([]model.SummaryRow, 0, len(names))
	for _, name := range names {
		g := groups[name]
		if g.count == 0 {
			// Every mean for this person was unparseable; there is no
			// composite to report.
			continue
		}
		rows = append(rows, model.SummaryRow{
			Subgroup:  r.SubgroupOrUnknown(name),
			Name:      name,
			Composite: scoring.Round2(g.sum / float64(g.count)),
		})
	}
	return rows
}

// SubgroupRanking filters rows to one subgroup and orders them descending by
// composite score. The sort is stable: ties keep their input order, so rows
// coming from Consolidate resolve ties alphabetically by name.
func SubgroupRanking(rows []model.SummaryRow, subgroup string) []model.SummaryRow {
	var out []model.SummaryRow
	for _, row := range rows {
		if row.Subgroup == subgroup {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Composite > out[j].Composite
	})
	return out
}

// GlobalRanking orders all rows descending by composite score, breaking ties
// ascending by subgroup name and then ascending by person name. The returned
// rows carry a 1-based rank for display.
func GlobalRanking(rows []model.SummaryRow) []model.RankedRow {
	sorted := append([]model.SummaryRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Composite != sorted[j].Composite {
			return sorted[i].Composite > sorted[j].Composite
		}
		if sorted[i].Subgroup != sorted[j].Subgroup {
			return sorted[i].Subgroup < sorted[j].Subgroup
		}
		return sorted[i].Name < sorted[j].Name
	})

	out := make([]model.RankedRow, len(sorted))
	for i, row := range sorted {
		out[i] = model.RankedRow{
			Rank:      i + 1,
			Subgroup:  row.Subgroup,
			Name:      row.Name,
			Composite: row.Composite,
		}
	}
	return out
}
