package models

import "time"

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not-started"
	StatusInProgress ProgressStatus = "in-progress"
	StatusCompleted  ProgressStatus = "completed"
	StatusFailed     ProgressStatus = "failed"
)

// ItemAnswer is the stored per-item answer inside a progress record.
// Both fields may be absent in older documents; decoding fills the
// zero values (empty selection, nil correctness).
type ItemAnswer struct {
	SelectedOptionID string `json:"selected_option_id"`
	IsCorrect        *bool  `json:"is_correct"`
}

// ProgressRecord is the per-user, per-unit persisted progress document.
// Writes against it are merges: only supplied fields overwrite stored
// values, and the answers map is merged key-by-key, never replaced.
type ProgressRecord struct {
	UnitID         string                `json:"unit_id"`
	Status         ProgressStatus        `json:"status"`
	ItemsCompleted int                   `json:"items_completed"`
	TotalItems     int                   `json:"total_items"`
	Answers        map[string]ItemAnswer `json:"answers"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

type ProgressListResponse struct {
	Progress []ProgressRecord `json:"progress"`
	Total    int              `json:"total"`
}
