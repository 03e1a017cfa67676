package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/snippet-prep/backend/internal/models"
)

// Store persists per-user, per-unit progress records. All writes are
// merge-writes: an upsert only touches the columns it carries, and the
// answers document is merged key-by-key with jsonb concatenation so
// answers written by other requests survive partial updates.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Reading Progress ────────────────────────────────────

// ReadAll returns every progress record for a user.
func (s *Store) ReadAll(ctx context.Context, userID int64) ([]models.ProgressRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT unit_id, status, items_completed, total_items, answers, updated_at
		 FROM unit_progress WHERE user_id = $1 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}
	defer rows.Close()

	var records []models.ProgressRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns the record for one unit, or nil if the user has none.
func (s *Store) Get(ctx context.Context, userID int64, unitID string) (*models.ProgressRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT unit_id, status, items_completed, total_items, answers, updated_at
		 FROM unit_progress WHERE user_id = $1 AND unit_id = $2`,
		userID, unitID,
	)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return &rec, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord decodes one row, filling defaults for anything the stored
// document is missing rather than trusting its shape.
func scanRecord(row scanner) (models.ProgressRecord, error) {
	var rec models.ProgressRecord
	var status sql.NullString
	var answersRaw []byte
	if err := row.Scan(&rec.UnitID, &status, &rec.ItemsCompleted, &rec.TotalItems,
		&answersRaw, &rec.UpdatedAt); err != nil {
		return rec, err
	}
	rec.Status = decodeStatus(status.String)
	rec.Answers = decodeAnswers(answersRaw)
	return rec, nil
}

// ── Merge Writes ────────────────────────────────────────

// MarkUnitStarted initializes the record for a fresh attempt: status
// in-progress, counter zeroed, answers cleared.
func (s *Store) MarkUnitStarted(ctx context.Context, userID int64, unitID string, totalItems int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO unit_progress (user_id, unit_id, status, items_completed, total_items, answers, updated_at)
		 VALUES ($1, $2, $3, 0, $4, '{}'::jsonb, NOW())
		 ON CONFLICT (user_id, unit_id) DO UPDATE SET
		    status = EXCLUDED.status,
		    items_completed = 0,
		    total_items = EXCLUDED.total_items,
		    answers = '{}'::jsonb,
		    updated_at = NOW()`,
		userID, unitID, models.StatusInProgress, totalItems,
	)
	if err != nil {
		return fmt.Errorf("mark unit started: %w", err)
	}
	return nil
}

// SaveAnswer merge-writes a single item's answer plus the updated
// items-completed counter. Status and total-items are left untouched on
// an existing record.
func (s *Store) SaveAnswer(ctx context.Context, userID int64, unitID, itemID string, answer models.ItemAnswer, itemsCompleted int) error {
	doc, err := json.Marshal(map[string]models.ItemAnswer{itemID: answer})
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO unit_progress (user_id, unit_id, status, items_completed, total_items, answers, updated_at)
		 VALUES ($1, $2, $3, $4, 0, $5::jsonb, NOW())
		 ON CONFLICT (user_id, unit_id) DO UPDATE SET
		    items_completed = EXCLUDED.items_completed,
		    answers = unit_progress.answers || EXCLUDED.answers,
		    updated_at = NOW()`,
		userID, unitID, models.StatusInProgress, itemsCompleted, doc,
	)
	if err != nil {
		return fmt.Errorf("save answer: %w", err)
	}
	return nil
}

// MarkUnitCompleted records a passing finish.
func (s *Store) MarkUnitCompleted(ctx context.Context, userID int64, unitID string, totalItems int) error {
	return s.markOutcome(ctx, userID, unitID, models.StatusCompleted, totalItems)
}

// MarkUnitFailed records a finish below the pass threshold.
func (s *Store) MarkUnitFailed(ctx context.Context, userID int64, unitID string, totalItems int) error {
	return s.markOutcome(ctx, userID, unitID, models.StatusFailed, totalItems)
}

func (s *Store) markOutcome(ctx context.Context, userID int64, unitID string, status models.ProgressStatus, totalItems int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO unit_progress (user_id, unit_id, status, items_completed, total_items, answers, updated_at)
		 VALUES ($1, $2, $3, $4, $4, '{}'::jsonb, NOW())
		 ON CONFLICT (user_id, unit_id) DO UPDATE SET
		    status = EXCLUDED.status,
		    items_completed = EXCLUDED.items_completed,
		    total_items = EXCLUDED.total_items,
		    updated_at = NOW()`,
		userID, unitID, status, totalItems,
	)
	if err != nil {
		return fmt.Errorf("mark unit %s: %w", status, err)
	}
	return nil
}

// ── Boundary Decoding ───────────────────────────────────

func decodeStatus(raw string) models.ProgressStatus {
	switch models.ProgressStatus(raw) {
	case models.StatusInProgress, models.StatusCompleted, models.StatusFailed:
		return models.ProgressStatus(raw)
	default:
		return models.StatusNotStarted
	}
}

func decodeAnswers(raw []byte) map[string]models.ItemAnswer {
	if len(raw) == 0 {
		return map[string]models.ItemAnswer{}
	}
	var answers map[string]models.ItemAnswer
	if err := json.Unmarshal(raw, &answers); err != nil || answers == nil {
		return map[string]models.ItemAnswer{}
	}
	return answers
}
