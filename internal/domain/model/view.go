package model

// SubgroupView is one subgroup and its ordered members, for the form UI.
type SubgroupView struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// RosterView drives the evaluator form: who can submit, whom they rate,
// and how the sliders are configured.
type RosterView struct {
	Subgroups    []SubgroupView `json:"subgroups"`
	AllNames     []string       `json:"all_names"`
	Criteria     []string       `json:"criteria"`
	ScoreMin     float64        `json:"score_min"`
	ScoreMax     float64        `json:"score_max"`
	ScoreStep    float64        `json:"score_step"`
	ScoreDefault float64        `json:"score_default"`
}

// SubgroupRanking is one subgroup's rows ordered by composite score.
type SubgroupRanking struct {
	Subgroup string       `json:"subgroup"`
	Rows     []SummaryRow `json:"rows"`
}

// SummaryView is the organizer read model: raw records plus the derived
// rankings, all recomputed from the store on every request.
type SummaryView struct {
	Records   []Record          `json:"records"`
	Subgroups []SubgroupRanking `json:"subgroups"`
	Global    []RankedRow       `json:"global"`
}

// ServiceStats is the operational snapshot served at /stats: how many
// evaluation rows are persisted and how the submit pipeline is doing.
type ServiceStats struct {
	Started            bool  `json:"started"`
	StoreRows          int   `json:"store_rows"`
	QueueLength        int   `json:"queue_length"`
	QueueCapacity      int   `json:"queue_capacity"`
	TrackedSubmissions int64 `json:"tracked_submissions"`
}
