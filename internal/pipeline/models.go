package pipeline

import "time"

// Summary is the per-run report consumed by the orchestrator. It is built
// fresh each run and threaded through the driver; no counter outlives a run.
type Summary struct {
	RunID            string         `json:"run_id"`
	StartedAt        time.Time      `json:"started_at"`
	Duration         time.Duration  `json:"duration"`
	Received         int            `json:"received"`
	Rejected         int            `json:"rejected"`
	RejectedByReason map[string]int `json:"rejected_by_reason"`
	Valid            int            `json:"valid"`
	Duplicates       int            `json:"duplicates"`
	Inserted         int            `json:"inserted"`
	Failed           int            `json:"failed"`
}
