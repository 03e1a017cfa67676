package models

// ── Session Types ────────────────────────────────────────

type SessionStatus string

const (
	SessionIdle       SessionStatus = "idle"
	SessionInProgress SessionStatus = "in-progress"
	SessionFinished   SessionStatus = "finished"
)

type Results struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// SessionSnapshot is the read view of one user's active attempt.
type SessionSnapshot struct {
	SessionID    string            `json:"session_id,omitempty"`
	UnitID       string            `json:"unit_id,omitempty"`
	CurrentIndex int               `json:"current_index"`
	Answers      map[string]string `json:"answers"`
	Status       SessionStatus     `json:"status"`
	Results      *Results          `json:"results,omitempty"`
}

// ── Request Types ────────────────────────────────────────

type StartSessionRequest struct {
	UnitID     string `json:"unit_id"`
	StartIndex *int   `json:"start_index,omitempty"`
}

type SubmitAnswerRequest struct {
	ItemID   string `json:"item_id"`
	OptionID string `json:"option_id"`
}

// ── Response Types ────────────────────────────────────────

type StartSessionResponse struct {
	Session    SessionSnapshot `json:"session"`
	TotalItems int             `json:"total_items"`
}

type SubmitAnswerResponse struct {
	Correct         bool   `json:"correct"`
	CorrectOptionID string `json:"correct_option_id"`
	Explanation     string `json:"explanation"`
	ItemsCompleted  int    `json:"items_completed"`
}

type FinishUnitResponse struct {
	Results Results        `json:"results"`
	Passed  bool           `json:"passed"`
	Status  ProgressStatus `json:"status"`
}
