package history

import "time"

// Run - запись об одном запуске правила.
type Run struct {
	ID         int64     `json:"id"`
	Rule       string    `json:"rule"`
	Outcome    string    `json:"outcome"`
	DryRun     bool      `json:"dry_run"`
	Selected   int       `json:"selected"`
	Updated    int       `json:"updated"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Filter ограничивает выборку истории.
type Filter struct {
	Rule  string
	Limit int
}
