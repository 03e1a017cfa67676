package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/snippet-prep/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Reading the Catalog ─────────────────────────────────

// ListUnits returns every unit with its nested items and options, in
// catalog order. The read is all-or-nothing: any failure returns an
// error and no partial catalog.
func (s *Store) ListUnits(ctx context.Context) ([]models.UnitDefinition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, ability, difficulty, intro_content
		 FROM units ORDER BY position, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var units []models.UnitDefinition
	unitIndex := make(map[string]int)
	for rows.Next() {
		var u models.UnitDefinition
		var introRaw []byte
		if err := rows.Scan(&u.ID, &u.Title, &u.Description, &u.Ability, &u.Difficulty, &introRaw); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		u.IntroContent = decodeIntroContent(introRaw)
		unitIndex[u.ID] = len(units)
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := s.listItems(ctx)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		idx, ok := unitIndex[it.unitID]
		if !ok {
			continue
		}
		units[idx].Items = append(units[idx].Items, it.item)
	}

	return units, nil
}

type ownedItem struct {
	unitID string
	item   models.ItemDefinition
}

// listItems reads all items joined with their options, ordered by the
// owning unit's position, the item's position and the option's position
// so the grouped scan preserves every observable ordering.
func (s *Store) listItems(ctx context.Context) ([]ownedItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT i.id, i.unit_id, i.title, i.prompt, COALESCE(i.code, ''),
		        i.correct_option_id, i.explanation,
		        o.option_id, o.label
		 FROM unit_items i
		 JOIN units u ON u.id = i.unit_id
		 JOIN item_options o ON o.item_id = i.id
		 ORDER BY u.position, i.position, o.position`,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []ownedItem
	itemIndex := make(map[string]int)
	for rows.Next() {
		var (
			it       models.ItemDefinition
			unitID   string
			optionID string
			label    string
		)
		if err := rows.Scan(&it.ID, &unitID, &it.Title, &it.Prompt, &it.Code,
			&it.CorrectOptionID, &it.Explanation, &optionID, &label); err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}

		opt := models.Option{ID: optionID, Label: label}
		if idx, ok := itemIndex[it.ID]; ok {
			items[idx].item.Options = append(items[idx].item.Options, opt)
			continue
		}
		it.Options = []models.Option{opt}
		itemIndex[it.ID] = len(items)
		items = append(items, ownedItem{unitID: unitID, item: it})
	}
	return items, rows.Err()
}

func (s *Store) CountUnits(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM units`).Scan(&count)
	return count, err
}

// ── Importing Content ───────────────────────────────────

// ImportUnits upserts the given units and replaces their items wholesale.
// Positions are assigned from slice order. Returns units and items written.
func (s *Store) ImportUnits(ctx context.Context, units []models.UnitDefinition) (int, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	itemCount := 0
	for pos, u := range units {
		intro, err := json.Marshal(u.IntroContent)
		if err != nil {
			return 0, 0, fmt.Errorf("marshal intro content: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO units (id, title, description, ability, difficulty, intro_content, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE SET
			    title = EXCLUDED.title, description = EXCLUDED.description,
			    ability = EXCLUDED.ability, difficulty = EXCLUDED.difficulty,
			    intro_content = EXCLUDED.intro_content, position = EXCLUDED.position`,
			u.ID, u.Title, u.Description, u.Ability, u.Difficulty, intro, pos,
		)
		if err != nil {
			return 0, 0, fmt.Errorf("upsert unit %s: %w", u.ID, err)
		}

		// Replacing the unit replaces its items; options cascade.
		if _, err := tx.ExecContext(ctx, `DELETE FROM unit_items WHERE unit_id = $1`, u.ID); err != nil {
			return 0, 0, fmt.Errorf("clear items for %s: %w", u.ID, err)
		}

		for ipos, item := range u.Items {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO unit_items (id, unit_id, title, prompt, code, correct_option_id, explanation, position)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				item.ID, u.ID, item.Title, item.Prompt, nullString(item.Code),
				item.CorrectOptionID, item.Explanation, ipos,
			)
			if err != nil {
				return 0, 0, fmt.Errorf("insert item %s: %w", item.ID, err)
			}
			for opos, opt := range item.Options {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO item_options (item_id, option_id, label, position)
					 VALUES ($1, $2, $3, $4)`,
					item.ID, opt.ID, opt.Label, opos,
				)
				if err != nil {
					return 0, 0, fmt.Errorf("insert option %s/%s: %w", item.ID, opt.ID, err)
				}
			}
			itemCount++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit import: %w", err)
	}
	return len(units), itemCount, nil
}

// decodeIntroContent tolerates NULL and malformed stored values; the
// catalog boundary fills defaults rather than trusting shape.
func decodeIntroContent(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var intro []string
	if err := json.Unmarshal(raw, &intro); err != nil || intro == nil {
		return []string{}
	}
	return intro
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
