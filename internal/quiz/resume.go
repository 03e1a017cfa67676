package quiz

import "github.com/snippet-prep/backend/internal/models"

// ComputeResumeIndex returns the question index at which a user should
// continue a unit, given their stored progress record (nil when absent)
// and the unit's item count.
//
// The effective completed count is the larger of the stored counter and
// the number of answers with a selection — the two can drift apart after
// a partial write failure, and taking the max never resumes earlier than
// the counter and never skips an answered question.
//
// A completed unit resumes at index 0: completing a unit always replays
// it from the beginning on next entry.
func ComputeResumeIndex(progress *models.ProgressRecord, totalItems int) int {
	if progress == nil {
		return 0
	}

	answered := 0
	for _, a := range progress.Answers {
		if a.SelectedOptionID != "" {
			answered++
		}
	}
	effective := progress.ItemsCompleted
	if answered > effective {
		effective = answered
	}

	if progress.Status == models.StatusCompleted {
		return 0
	}
	if totalItems <= 0 {
		return 0
	}

	return clamp(effective, 0, totalItems-1)
}
