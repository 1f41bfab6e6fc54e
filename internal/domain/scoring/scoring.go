// Package scoring validates ballots and turns them into evaluation records.
package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/okian/atsr/internal/domain/model"
)

// Score scale constants. Sliders default to the midpoint and move in half steps.
const (
	MinScore     = 0.0
	MaxScore     = 10.0
	ScoreStep    = 0.5
	DefaultScore = 5.0
)

// stepEpsilon absorbs float noise when checking the half-step granularity.
const stepEpsilon = 1e-9

// Option applies a configuration option to the Collector.
type Option func(*Collector)

// WithCriteria sets the ordered criterion names.
func WithCriteria(criteria []string) Option {
	return func(c *Collector) {
		if len(criteria) > 0 {
			c.criteria = append([]string(nil), criteria...)
		}
	}
}

// Collector validates an evaluator's ballots against the criterion list and
// builds the per-peer records written on submit.
type Collector struct {
	criteria []string
}

// NewCollector creates a Collector with configuration options.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Criteria returns the ordered criterion names.
func (c *Collector) Criteria() []string {
	return append([]string(nil), c.criteria...)
}

// Round2 rounds v to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MeanOfCriteria returns the arithmetic mean of scores rounded to 2 decimals.
func MeanOfCriteria(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return Round2(sum / float64(len(scores)))
}

// ValidateScore checks that v is inside [MinScore, MaxScore] and on the
// half-step grid.
func ValidateScore(v float64) error {
	if v < MinScore || v > MaxScore {
		return fmt.Errorf("%w: %.2f outside [%.0f, %.0f]", ErrInvalidScore, v, MinScore, MaxScore)
	}
	steps := v / ScoreStep
	if math.Abs(steps-math.Round(steps)) > stepEpsilon {
		return fmt.Errorf("%w: %.3f not a multiple of %.1f", ErrInvalidScore, v, ScoreStep)
	}
	return nil
}

// ValidateBallots checks that ballots cover every peer exactly once, name no
// one outside the peer list (including the evaluator), and carry a valid
// score for every criterion. No partial result: the first violation fails the
// whole submission and nothing is written.
func (c *Collector) ValidateBallots(evaluator string, peers []string, ballots []model.Ballot) error {
	byPeer := make(map[string]model.Ballot, len(ballots))
	for _, b := range ballots {
		if b.Evaluated == evaluator {
			return fmt.Errorf("%w: self-evaluation by %q", ErrUnknownPeer, evaluator)
		}
		if _, dup := byPeer[b.Evaluated]; dup {
			return fmt.Errorf("%w: duplicate ballot for %q", ErrUnknownPeer, b.Evaluated)
		}
		byPeer[b.Evaluated] = b
	}
	for name := range byPeer {
		if !contains(peers, name) {
			return fmt.Errorf("%w: %q is not a subgroup peer", ErrUnknownPeer, name)
		}
	}
	for _, peer := range peers {
		b, ok := byPeer[peer]
		if !ok {
			return fmt.Errorf("%w: no ballot for %q", ErrIncompleteSubmission, peer)
		}
		for _, criterion := range c.criteria {
			v, ok := b.Scores[criterion]
			if !ok {
				return fmt.Errorf("%w: %q missing score for %q", ErrIncompleteSubmission, peer, criterion)
			}
			if err := ValidateScore(v); err != nil {
				return fmt.Errorf("%q, criterion %q: %w", peer, criterion, err)
			}
		}
		if len(b.Scores) != len(c.criteria) {
			return fmt.Errorf("%w: %q scored on unknown criteria", ErrIncompleteSubmission, peer)
		}
	}
	return nil
}

// BuildRecords emits one record per peer, in peer order, all sharing the
// submit timestamp. Ballots must already be validated.
func (c *Collector) BuildRecords(evaluator, subgroup string, peers []string, ballots []model.Ballot, ts time.Time) []model.Record {
	byPeer := make(map[string]model.Ballot, len(ballots))
	for _, b := range ballots {
		byPeer[b.Evaluated] = b
	}
	stamp := model.FormatTimestamp(ts)
	records := make([]model.Record, 0, len(peers))
	for _, peer := range peers {
		b := byPeer[peer]
		scores := make([]float64, len(c.criteria))
		for i, criterion := range c.criteria {
			scores[i] = b.Scores[criterion]
		}
		records = append(records, model.Record{
			Timestamp: stamp,
			Evaluator: evaluator,
			Subgroup:  subgroup,
			Evaluated: peer,
			Scores:    scores,
			Mean:      MeanOfCriteria(scores),
			MeanValid: true,
		})
	}
	return records
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
