package models

// ── Catalog Definitions ─────────────────────────────────
//
// The nested shape units arrive in: a unit carries its items in
// pedagogical order, each item carries its options in display order.
// Both orderings are observable to the learner and have no other
// source of truth, so they are preserved everywhere.

type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type ItemDefinition struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Prompt          string   `json:"prompt"`
	Code            string   `json:"code,omitempty"`
	Options         []Option `json:"options"`
	CorrectOptionID string   `json:"correct_option_id"`
	Explanation     string   `json:"explanation"`
}

type UnitDefinition struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Ability      string           `json:"ability"`
	Difficulty   string           `json:"difficulty"`
	IntroContent []string         `json:"intro_content"`
	Items        []ItemDefinition `json:"items"`
}

// ── Serving Types (strip answers) ───────────────────────

type ItemView struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Prompt  string   `json:"prompt"`
	Code    string   `json:"code,omitempty"`
	Options []Option `json:"options"`
}

type UnitView struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Ability      string     `json:"ability"`
	Difficulty   string     `json:"difficulty"`
	IntroContent []string   `json:"intro_content"`
	Items        []ItemView `json:"items"`
}

type UnitListResponse struct {
	Units []UnitView `json:"units"`
	Total int        `json:"total"`
}

type UnitDetailResponse struct {
	Unit          UnitView       `json:"unit"`
	Status        ProgressStatus `json:"status"`
	NextItemIndex int            `json:"next_item_index"`
	TotalItems    int            `json:"total_items"`
}

// ── Import Types ────────────────────────────────────────

type ImportEnvelope struct {
	Version int              `json:"version"`
	Units   []UnitDefinition `json:"units"`
}

type ImportResult struct {
	UnitsImported int  `json:"units_imported"`
	ItemsImported int  `json:"items_imported"`
	Rehydrated    bool `json:"rehydrated"`
}
