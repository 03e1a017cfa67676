package quiz

import (
	"sync"

	"github.com/google/uuid"

	"github.com/snippet-prep/backend/internal/catalog"
	"github.com/snippet-prep/backend/internal/models"
)

// session is one user's active attempt at a unit.
type session struct {
	id      string
	unitID  string
	index   int
	answers map[string]string
	status  models.SessionStatus
	results *models.Results
}

// SessionStore is the quiz session state machine. It owns the normalized
// catalog (read-only after hydration) and one session per user. Every
// mutation is total: invalid input no-ops, nothing ever partially applies.
//
// The store is the only owner of session state; callers go through its
// methods and never hold references into it.
type SessionStore struct {
	mu        sync.Mutex
	ready     bool
	unitOrder []string
	units     map[string]catalog.Unit
	items     map[string]catalog.Item
	sessions  map[int64]*session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		units:    make(map[string]catalog.Unit),
		items:    make(map[string]catalog.Item),
		sessions: make(map[int64]*session),
	}
}

// ── Hydration ───────────────────────────────────────────

// Hydrate replaces the catalog wholesale and tears down every session.
// Callers guard against re-hydrating over live sessions; the store
// itself just applies the transition.
func (s *SessionStore) Hydrate(n catalog.Normalized) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unitOrder = append([]string(nil), n.UnitOrder...)
	s.units = n.Units
	s.items = n.Items
	s.sessions = make(map[int64]*session)
	s.ready = true
}

func (s *SessionStore) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// HasActiveSessions reports whether any user has an attempt in flight.
func (s *SessionStore) HasActiveSessions() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.status == models.SessionInProgress {
			return true
		}
	}
	return false
}

// ── Catalog Reads ───────────────────────────────────────

func (s *SessionStore) UnitOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.unitOrder...)
}

func (s *SessionStore) Unit(unitID string) (catalog.Unit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[unitID]
	return u, ok
}

func (s *SessionStore) Item(itemID string) (catalog.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[itemID]
	return it, ok
}

// Units returns all units in catalog order.
func (s *SessionStore) Units() []catalog.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	units := make([]catalog.Unit, 0, len(s.unitOrder))
	for _, id := range s.unitOrder {
		units = append(units, s.units[id])
	}
	return units
}

// ── Session Mutations ───────────────────────────────────

// StartUnit begins (or resumes) an attempt, replacing any prior session
// for the user. startIndex is clamped into the unit's item range;
// initialAnswers seeds previously answered questions. Returns false when
// the catalog isn't hydrated or the unit is unknown, in which case
// nothing changes.
func (s *SessionStore) StartUnit(userID int64, unitID string, startIndex int, initialAnswers map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return false
	}
	unit, ok := s.units[unitID]
	if !ok {
		return false
	}

	answers := make(map[string]string, len(initialAnswers))
	for itemID, optionID := range initialAnswers {
		answers[itemID] = optionID
	}

	s.sessions[userID] = &session{
		id:      uuid.NewString(),
		unitID:  unitID,
		index:   clamp(startIndex, 0, len(unit.ItemIDs)-1),
		answers: answers,
		status:  models.SessionInProgress,
	}
	return true
}

// AnswerItem records or overwrites the selection for an item in the
// user's session. Answers for items outside the active unit are ignored.
func (s *SessionStore) AnswerItem(userID int64, itemID, optionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return false
	}
	item, ok := s.items[itemID]
	if !ok || item.UnitID != sess.unitID {
		return false
	}
	sess.answers[itemID] = optionID
	return true
}

// GoToNext advances the cursor, clamped to the last question. Returns
// whether the index changed.
func (s *SessionStore) GoToNext(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return false
	}
	unit := s.units[sess.unitID]
	next := clamp(sess.index+1, 0, len(unit.ItemIDs)-1)
	if next == sess.index {
		return false
	}
	sess.index = next
	return true
}

// GoToPrevious retreats the cursor, floored at zero.
func (s *SessionStore) GoToPrevious(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return false
	}
	if sess.index == 0 {
		return false
	}
	sess.index--
	return true
}

// FinishUnit scores the active unit: each item id is compared in order
// against the recorded answer, unanswered items counting as incorrect.
// The answer map survives so results screens can show a breakdown.
func (s *SessionStore) FinishUnit(userID int64) (models.Results, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return models.Results{}, false
	}
	unit := s.units[sess.unitID]

	correct := 0
	for _, itemID := range unit.ItemIDs {
		if sess.answers[itemID] == s.items[itemID].CorrectOptionID {
			correct++
		}
	}

	results := models.Results{Correct: correct, Total: len(unit.ItemIDs)}
	sess.status = models.SessionFinished
	sess.results = &results
	return results, true
}

// ResetSession tears down the user's session, if any.
func (s *SessionStore) ResetSession(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// ── Session Reads ───────────────────────────────────────

// Snapshot returns a copy of the user's session state; an idle snapshot
// when none is active.
func (s *SessionStore) Snapshot(userID int64) models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return models.SessionSnapshot{
			Status:  models.SessionIdle,
			Answers: map[string]string{},
		}
	}

	answers := make(map[string]string, len(sess.answers))
	for itemID, optionID := range sess.answers {
		answers[itemID] = optionID
	}
	snap := models.SessionSnapshot{
		SessionID:    sess.id,
		UnitID:       sess.unitID,
		CurrentIndex: sess.index,
		Answers:      answers,
		Status:       sess.status,
	}
	if sess.results != nil {
		r := *sess.results
		snap.Results = &r
	}
	return snap
}

// AnsweredCount returns the number of distinct items answered in the
// user's session, capped at the active unit's item count.
func (s *SessionStore) AnsweredCount(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return 0
	}
	count := len(sess.answers)
	if total := len(s.units[sess.unitID].ItemIDs); count > total {
		count = total
	}
	return count
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
