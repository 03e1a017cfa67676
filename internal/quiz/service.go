package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/snippet-prep/backend/internal/catalog"
	"github.com/snippet-prep/backend/internal/models"
)

// PassThresholdPercent is the rounded score percentage at or above which
// a finished unit counts as completed rather than failed.
const PassThresholdPercent = 70

var (
	ErrNotReady    = errors.New("catalog not hydrated")
	ErrUnknownUnit = errors.New("unknown unit")
	ErrUnknownItem = errors.New("unknown item")
	ErrNoSession   = errors.New("no active session")
)

// CatalogStore is the content catalog boundary.
type CatalogStore interface {
	ListUnits(ctx context.Context) ([]models.UnitDefinition, error)
	ImportUnits(ctx context.Context, units []models.UnitDefinition) (int, int, error)
}

// ProgressStore is the remote progress boundary. All writes are merges;
// the implementation must never clobber fields a call doesn't carry.
type ProgressStore interface {
	ReadAll(ctx context.Context, userID int64) ([]models.ProgressRecord, error)
	Get(ctx context.Context, userID int64, unitID string) (*models.ProgressRecord, error)
	MarkUnitStarted(ctx context.Context, userID int64, unitID string, totalItems int) error
	SaveAnswer(ctx context.Context, userID int64, unitID, itemID string, answer models.ItemAnswer, itemsCompleted int) error
	MarkUnitCompleted(ctx context.Context, userID int64, unitID string, totalItems int) error
	MarkUnitFailed(ctx context.Context, userID int64, unitID string, totalItems int) error
}

// Service ties the session state machine to the catalog and progress
// stores: it gates hydration, computes resume positions, and issues the
// progress writes that follow each mutation. In-memory state is mutated
// first and is never rolled back on a write failure — at worst the
// stored record understates true progress until the next write lands.
type Service struct {
	sessions *SessionStore
	catalog  CatalogStore
	progress ProgressStore

	hydrateMu sync.Mutex
}

func NewService(sessions *SessionStore, cat CatalogStore, prog ProgressStore) *Service {
	return &Service{sessions: sessions, catalog: cat, progress: prog}
}

func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// ── Hydration Gate ──────────────────────────────────────

// EnsureReady hydrates the session store from the catalog exactly once.
// Once ready, further calls are no-ops — a refetched catalog must not
// clobber a session in progress. Hydration is all-or-nothing: on a fetch
// failure the store stays un-hydrated and the error is retryable.
func (s *Service) EnsureReady(ctx context.Context) error {
	s.hydrateMu.Lock()
	defer s.hydrateMu.Unlock()

	if s.sessions.Ready() {
		return nil
	}
	return s.hydrate(ctx)
}

// Rehydrate reloads the catalog, refusing while any session is active so
// a content refresh can never discard a live attempt. Returns whether
// the reload happened.
func (s *Service) Rehydrate(ctx context.Context) (bool, error) {
	s.hydrateMu.Lock()
	defer s.hydrateMu.Unlock()

	if s.sessions.HasActiveSessions() {
		return false, nil
	}
	if err := s.hydrate(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) hydrate(ctx context.Context) error {
	defs, err := s.catalog.ListUnits(ctx)
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}
	s.sessions.Hydrate(catalog.Normalize(defs))
	return nil
}

// ── Session Operations ──────────────────────────────────

// StartUnit begins or resumes an attempt. The resume position comes from
// the stored progress record unless the caller pins one; previously
// answered questions are seeded only for an in-progress unit. A unit that
// was not-started or completed gets its record re-initialized.
func (s *Service) StartUnit(ctx context.Context, userID int64, unitID string, startIndex *int) (*models.StartSessionResponse, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, ErrNotReady
	}
	unit, ok := s.sessions.Unit(unitID)
	if !ok {
		return nil, ErrUnknownUnit
	}
	totalItems := len(unit.ItemIDs)

	record, err := s.progress.Get(ctx, userID, unitID)
	if err != nil {
		log.Printf("WARN: read progress for user %d unit %s: %v", userID, unitID, err)
		record = nil
	}
	status := models.StatusNotStarted
	if record != nil {
		status = record.Status
	}

	index := ComputeResumeIndex(record, totalItems)
	if startIndex != nil {
		index = *startIndex
	}

	initialAnswers := map[string]string{}
	if record != nil && status == models.StatusInProgress {
		for itemID, a := range record.Answers {
			if a.SelectedOptionID != "" {
				initialAnswers[itemID] = a.SelectedOptionID
			}
		}
	}

	if status == models.StatusNotStarted || status == models.StatusCompleted {
		if err := s.progress.MarkUnitStarted(ctx, userID, unitID, totalItems); err != nil {
			log.Printf("WARN: mark unit started for user %d unit %s: %v", userID, unitID, err)
		}
	}

	if !s.sessions.StartUnit(userID, unitID, index, initialAnswers) {
		return nil, ErrUnknownUnit
	}

	return &models.StartSessionResponse{
		Session:    s.sessions.Snapshot(userID),
		TotalItems: totalItems,
	}, nil
}

// Answer records a selection and merge-writes it with the updated
// distinct-answered count. The write runs after the in-memory update; a
// failure is logged and never interrupts the session.
func (s *Service) Answer(ctx context.Context, userID int64, itemID, optionID string) (*models.SubmitAnswerResponse, error) {
	item, ok := s.sessions.Item(itemID)
	if !ok {
		return nil, ErrUnknownItem
	}

	if !s.sessions.AnswerItem(userID, itemID, optionID) {
		if s.sessions.Snapshot(userID).Status == models.SessionIdle {
			return nil, ErrNoSession
		}
		return nil, ErrUnknownItem
	}

	correct := optionID == item.CorrectOptionID
	itemsCompleted := s.sessions.AnsweredCount(userID)

	answer := models.ItemAnswer{SelectedOptionID: optionID, IsCorrect: &correct}
	if err := s.progress.SaveAnswer(ctx, userID, item.UnitID, itemID, answer, itemsCompleted); err != nil {
		log.Printf("WARN: save answer for user %d item %s: %v", userID, itemID, err)
	}

	return &models.SubmitAnswerResponse{
		Correct:         correct,
		CorrectOptionID: item.CorrectOptionID,
		Explanation:     item.Explanation,
		ItemsCompleted:  itemsCompleted,
	}, nil
}

// GoToNext advances the cursor; without an active session it is a safe
// no-op and the idle snapshot comes back.
func (s *Service) GoToNext(userID int64) models.SessionSnapshot {
	s.sessions.GoToNext(userID)
	return s.sessions.Snapshot(userID)
}

func (s *Service) GoToPrevious(userID int64) models.SessionSnapshot {
	s.sessions.GoToPrevious(userID)
	return s.sessions.Snapshot(userID)
}

// Finish scores the active unit and writes the outcome: completed at a
// rounded percentage of PassThresholdPercent or better, failed below it,
// items-completed set to the item count either way.
func (s *Service) Finish(ctx context.Context, userID int64) (*models.FinishUnitResponse, error) {
	snap := s.sessions.Snapshot(userID)
	results, ok := s.sessions.FinishUnit(userID)
	if !ok {
		return nil, ErrNoSession
	}

	percentage := 0
	if results.Total > 0 {
		percentage = int(math.Round(float64(results.Correct) / float64(results.Total) * 100))
	}
	passed := percentage >= PassThresholdPercent

	status := models.StatusFailed
	writeOutcome := s.progress.MarkUnitFailed
	if passed {
		status = models.StatusCompleted
		writeOutcome = s.progress.MarkUnitCompleted
	}
	if err := writeOutcome(ctx, userID, snap.UnitID, results.Total); err != nil {
		log.Printf("WARN: mark unit %s for user %d unit %s: %v", status, userID, snap.UnitID, err)
	}

	return &models.FinishUnitResponse{Results: results, Passed: passed, Status: status}, nil
}

func (s *Service) Reset(userID int64) {
	s.sessions.ResetSession(userID)
}

func (s *Service) Snapshot(userID int64) models.SessionSnapshot {
	return s.sessions.Snapshot(userID)
}

// ── Catalog and Progress Reads ──────────────────────────

// UnitList returns the catalog in order with answer keys stripped.
func (s *Service) UnitList(ctx context.Context) (*models.UnitListResponse, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, ErrNotReady
	}
	units := s.sessions.Units()
	views := make([]models.UnitView, 0, len(units))
	for _, u := range units {
		views = append(views, s.unitView(u))
	}
	return &models.UnitListResponse{Units: views, Total: len(views)}, nil
}

// UnitDetail returns one unit plus the caller's remote status and the
// computed resume position, backing the intro screen.
func (s *Service) UnitDetail(ctx context.Context, userID int64, unitID string) (*models.UnitDetailResponse, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, ErrNotReady
	}
	unit, ok := s.sessions.Unit(unitID)
	if !ok {
		return nil, ErrUnknownUnit
	}

	record, err := s.progress.Get(ctx, userID, unitID)
	if err != nil {
		log.Printf("WARN: read progress for user %d unit %s: %v", userID, unitID, err)
		record = nil
	}
	status := models.StatusNotStarted
	if record != nil {
		status = record.Status
	}

	return &models.UnitDetailResponse{
		Unit:          s.unitView(unit),
		Status:        status,
		NextItemIndex: ComputeResumeIndex(record, len(unit.ItemIDs)),
		TotalItems:    len(unit.ItemIDs),
	}, nil
}

// Progress returns all of the caller's progress records.
func (s *Service) Progress(ctx context.Context, userID int64) (*models.ProgressListResponse, error) {
	records, err := s.progress.ReadAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}
	if records == nil {
		records = []models.ProgressRecord{}
	}
	return &models.ProgressListResponse{Progress: records, Total: len(records)}, nil
}

// Import bulk-loads catalog content and reloads the in-memory catalog if
// no session is active; otherwise the new content is picked up on the
// next safe rehydration.
func (s *Service) Import(ctx context.Context, envelope models.ImportEnvelope) (*models.ImportResult, error) {
	unitsImported, itemsImported, err := s.catalog.ImportUnits(ctx, envelope.Units)
	if err != nil {
		return nil, fmt.Errorf("import units: %w", err)
	}

	rehydrated, err := s.Rehydrate(ctx)
	if err != nil {
		log.Printf("WARN: rehydrate after import: %v", err)
	}

	return &models.ImportResult{
		UnitsImported: unitsImported,
		ItemsImported: itemsImported,
		Rehydrated:    rehydrated,
	}, nil
}

func (s *Service) unitView(u catalog.Unit) models.UnitView {
	items := make([]models.ItemView, 0, len(u.ItemIDs))
	for _, itemID := range u.ItemIDs {
		item, ok := s.sessions.Item(itemID)
		if !ok {
			continue
		}
		items = append(items, models.ItemView{
			ID:      item.ID,
			Title:   item.Title,
			Prompt:  item.Prompt,
			Code:    item.Code,
			Options: item.Options,
		})
	}
	intro := u.IntroContent
	if intro == nil {
		intro = []string{}
	}
	return models.UnitView{
		ID:           u.ID,
		Title:        u.Title,
		Description:  u.Description,
		Ability:      u.Ability,
		Difficulty:   u.Difficulty,
		IntroContent: intro,
		Items:        items,
	}
}
