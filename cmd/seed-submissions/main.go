// Command seed-submissions posts randomized complete submissions to a running
// instance, one per roster member. Useful for demos and smoke-testing the
// organizer panel.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// Default configuration constants.
const (
	defaultTimeout = 10 * time.Second
)

type rosterView struct {
	Subgroups []struct {
		Name    string   `json:"name"`
		Members []string `json:"members"`
	} `json:"subgroups"`
	Criteria  []string `json:"criteria"`
	ScoreMin  float64  `json:"score_min"`
	ScoreMax  float64  `json:"score_max"`
	ScoreStep float64  `json:"score_step"`
}

type ballot struct {
	Evaluated string             `json:"evaluated"`
	Scores    map[string]float64 `json:"scores"`
}

type submissionRequest struct {
	SubmissionID string   `json:"submission_id"`
	Evaluator    string   `json:"evaluator"`
	Ballots      []ballot `json:"ballots"`
}

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := &http.Client{Timeout: *timeout}
	rng := rand.New(rand.NewSource(*seed)) //nolint:gosec // demo data only

	roster, err := fetchRoster(ctx, client, *baseURL)
	if err != nil {
		os.Stderr.WriteString("failed to fetch roster: " + err.Error() + "\n")
		os.Exit(1)
	}

	var sent, failed int
	for _, sg := range roster.Subgroups {
		for _, evaluator := range sg.Members {
			req := buildSubmission(rng, roster, evaluator, sg.Members)
			if err := post(ctx, client, *baseURL, req); err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "submission for %s failed: %v\n", evaluator, err)
				continue
			}
			sent++
		}
	}

	fmt.Printf("seeded %d submissions (%d failed)\n", sent, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func fetchRoster(ctx context.Context, client *http.Client, baseURL string) (*rosterView, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/roster", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var roster rosterView
	if err := json.NewDecoder(resp.Body).Decode(&roster); err != nil {
		return nil, err
	}
	return &roster, nil
}

func buildSubmission(rng *rand.Rand, roster *rosterView, evaluator string, members []string) submissionRequest {
	req := submissionRequest{
		SubmissionID: uuid.NewString(),
		Evaluator:    evaluator,
	}
	steps := 20
	if roster.ScoreStep > 0 && roster.ScoreMax > roster.ScoreMin {
		steps = int((roster.ScoreMax - roster.ScoreMin) / roster.ScoreStep)
	}
	for _, peer := range members {
		if peer == evaluator {
			continue
		}
		scores := make(map[string]float64, len(roster.Criteria))
		for _, criterion := range roster.Criteria {
			scores[criterion] = roster.ScoreMin + float64(rng.Intn(steps+1))*roster.ScoreStep
		}
		req.Ballots = append(req.Ballots, ballot{Evaluated: peer, Scores: scores})
	}
	return req
}

func post(ctx context.Context, client *http.Client, baseURL string, sub submissionRequest) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/submissions", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
