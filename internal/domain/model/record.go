// Package model contains domain models passed between layers.
package model

import "time"

// TimestampLayout is the wire format for record timestamps
// (ISO-8601 with second precision, matching the answer file).
const TimestampLayout = "2006-01-02T15:04:05"

// FormatTimestamp renders t in the record timestamp layout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Record represents one persisted evaluation row: one evaluator's averaged
// scores for one evaluated peer. Records are append-only and never mutated.
type Record struct {
	Timestamp string    `json:"timestamp"`  // shared across all records of one submission
	Evaluator string    `json:"evaluator"`  // evaluator name
	Subgroup  string    `json:"subgroup"`   // evaluator's subgroup
	Evaluated string    `json:"evaluated"`  // evaluated peer name
	Scores    []float64 `json:"scores"`     // one score per criterion, in criterion order
	Mean      float64   `json:"mean"`       // mean of the criterion scores, rounded to 2 decimals at write time
	MeanValid bool      `json:"mean_valid"` // false when a stored mean failed numeric coercion on load
}

// Ballot carries one evaluator's raw scores for a single peer.
type Ballot struct {
	Evaluated string             `json:"evaluated"`
	Scores    map[string]float64 `json:"scores"` // criterion name -> score
}

// Submission is a validated batch of records headed for the store.
// All records share one timestamp captured at submit time.
type Submission struct {
	ID        string
	Evaluator string
	Subgroup  string
	Records   []Record
}

// SummaryRow is one consolidated composite score: the mean of a person's
// per-record means across all evaluators.
type SummaryRow struct {
	Subgroup  string  `json:"subgroup"`
	Name      string  `json:"name"`
	Composite float64 `json:"composite"`
}

// RankedRow is a SummaryRow with its 1-based position in the global ranking.
type RankedRow struct {
	Rank      int     `json:"rank"`
	Subgroup  string  `json:"subgroup"`
	Name      string  `json:"name"`
	Composite float64 `json:"composite"`
}
