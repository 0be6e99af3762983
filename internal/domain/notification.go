package domain

import "time"

type Notification struct {
	ID        string    `json:"id" db:"id"`
	Message   string    `json:"message" db:"message"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BatchResult summarizes one run of the daily interest applier.
type BatchResult struct {
	RunID    string    `json:"run_id"`
	AsOf     time.Time `json:"as_of"`
	Eligible int       `json:"eligible"`
	Applied  int       `json:"applied"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
	Archived int       `json:"archived"`
}
