package quiz

import (
	"testing"

	"github.com/snippet-prep/backend/internal/catalog"
	"github.com/snippet-prep/backend/internal/models"
)

func testCatalog() catalog.Normalized {
	return catalog.Normalize([]models.UnitDefinition{
		{
			ID:    "unit-a",
			Title: "Unit A",
			Items: []models.ItemDefinition{
				{ID: "a1", CorrectOptionID: "opt-1"},
				{ID: "a2", CorrectOptionID: "opt-2"},
				{ID: "a3", CorrectOptionID: "opt-3"},
			},
		},
		{
			ID:    "unit-b",
			Title: "Unit B",
			Items: []models.ItemDefinition{
				{ID: "b1", CorrectOptionID: "opt-1"},
				{ID: "b2", CorrectOptionID: "opt-2"},
			},
		},
	})
}

func hydratedStore() *SessionStore {
	s := NewSessionStore()
	s.Hydrate(testCatalog())
	return s
}

func TestHydratePreservesOrder(t *testing.T) {
	s := hydratedStore()

	order := s.UnitOrder()
	if len(order) != 2 || order[0] != "unit-a" || order[1] != "unit-b" {
		t.Fatalf("UnitOrder() = %v, want [unit-a unit-b]", order)
	}

	unit, ok := s.Unit("unit-a")
	if !ok {
		t.Fatal("Unit(unit-a) not found")
	}
	want := []string{"a1", "a2", "a3"}
	for i, id := range want {
		if unit.ItemIDs[i] != id {
			t.Errorf("unit-a item %d = %s, want %s", i, unit.ItemIDs[i], id)
		}
	}

	units := s.Units()
	if len(units) != 2 || units[0].ID != "unit-a" || units[1].ID != "unit-b" {
		t.Errorf("Units() order wrong: %v", units)
	}
}

func TestStartUnitGuards(t *testing.T) {
	// Un-hydrated store refuses to start anything.
	s := NewSessionStore()
	if s.StartUnit(1, "unit-a", 0, nil) {
		t.Error("StartUnit succeeded before hydration")
	}

	s = hydratedStore()
	if s.StartUnit(1, "nope", 0, nil) {
		t.Error("StartUnit succeeded for unknown unit")
	}
	if got := s.Snapshot(1).Status; got != models.SessionIdle {
		t.Errorf("failed start left session status %s, want idle", got)
	}
}

func TestStartUnitClampsIndex(t *testing.T) {
	tests := []struct {
		startIndex int
		want       int
	}{
		{-5, 0},
		{0, 0},
		{2, 2},
		{3, 2},
		{99, 2},
	}

	for _, tt := range tests {
		s := hydratedStore()
		if !s.StartUnit(1, "unit-a", tt.startIndex, nil) {
			t.Fatalf("StartUnit(%d) failed", tt.startIndex)
		}
		if got := s.Snapshot(1).CurrentIndex; got != tt.want {
			t.Errorf("StartUnit(startIndex=%d): index = %d, want %d", tt.startIndex, got, tt.want)
		}
	}
}

func TestStartUnitSeedsAnswers(t *testing.T) {
	s := hydratedStore()
	seed := map[string]string{"a1": "opt-1", "a2": "opt-9"}
	s.StartUnit(1, "unit-a", 2, seed)

	snap := s.Snapshot(1)
	if len(snap.Answers) != 2 || snap.Answers["a1"] != "opt-1" || snap.Answers["a2"] != "opt-9" {
		t.Errorf("seeded answers = %v", snap.Answers)
	}

	// The store copies the map; mutating the caller's must not leak in.
	seed["a3"] = "opt-3"
	if len(s.Snapshot(1).Answers) != 2 {
		t.Error("session answers aliased the caller's map")
	}
}

func TestStartUnitReplacesSession(t *testing.T) {
	s := hydratedStore()
	s.StartUnit(1, "unit-a", 0, nil)
	s.AnswerItem(1, "a1", "opt-1")
	first := s.Snapshot(1)

	s.StartUnit(1, "unit-b", 0, nil)
	second := s.Snapshot(1)

	if second.SessionID == first.SessionID {
		t.Error("restart kept the old session id")
	}
	if second.UnitID != "unit-b" || len(second.Answers) != 0 {
		t.Errorf("restart carried state over: %+v", second)
	}
}

func TestAnswerItem(t *testing.T) {
	s := hydratedStore()

	if s.AnswerItem(1, "a1", "opt-1") {
		t.Error("AnswerItem succeeded with no session")
	}

	s.StartUnit(1, "unit-a", 0, nil)

	if !s.AnswerItem(1, "a1", "opt-2") {
		t.Fatal("AnswerItem failed")
	}
	// Re-answering overwrites, it does not accumulate.
	if !s.AnswerItem(1, "a1", "opt-1") {
		t.Fatal("re-answer failed")
	}
	if got := s.Snapshot(1).Answers["a1"]; got != "opt-1" {
		t.Errorf("answer = %s, want opt-1", got)
	}
	if got := s.AnsweredCount(1); got != 1 {
		t.Errorf("AnsweredCount = %d, want 1", got)
	}

	// Items outside the active unit are rejected.
	if s.AnswerItem(1, "b1", "opt-1") {
		t.Error("AnswerItem accepted an item from another unit")
	}
	if s.AnswerItem(1, "ghost", "opt-1") {
		t.Error("AnswerItem accepted an unknown item")
	}
}

func TestNavigationBounds(t *testing.T) {
	s := hydratedStore()
	s.StartUnit(1, "unit-a", 0, nil)

	if s.GoToPrevious(1) {
		t.Error("GoToPrevious moved below zero")
	}
	if !s.GoToNext(1) || s.Snapshot(1).CurrentIndex != 1 {
		t.Fatalf("GoToNext: index = %d, want 1", s.Snapshot(1).CurrentIndex)
	}
	s.GoToNext(1)
	if s.GoToNext(1) {
		t.Error("GoToNext moved past the last question")
	}
	if got := s.Snapshot(1).CurrentIndex; got != 2 {
		t.Errorf("index = %d, want 2", got)
	}
	if !s.GoToPrevious(1) || s.Snapshot(1).CurrentIndex != 1 {
		t.Errorf("GoToPrevious: index = %d, want 1", s.Snapshot(1).CurrentIndex)
	}

	// No session: both directions are safe no-ops.
	if s.GoToNext(2) || s.GoToPrevious(2) {
		t.Error("navigation succeeded with no session")
	}
}

func TestFinishUnitScoring(t *testing.T) {
	s := hydratedStore()
	s.StartUnit(1, "unit-a", 0, nil)
	s.AnswerItem(1, "a1", "opt-1") // correct
	s.AnswerItem(1, "a2", "opt-9") // wrong
	// a3 unanswered, counts as incorrect

	results, ok := s.FinishUnit(1)
	if !ok {
		t.Fatal("FinishUnit failed")
	}
	if results.Correct != 1 || results.Total != 3 {
		t.Errorf("results = %+v, want 1/3", results)
	}

	snap := s.Snapshot(1)
	if snap.Status != models.SessionFinished {
		t.Errorf("status = %s, want finished", snap.Status)
	}
	if snap.Results == nil || snap.Results.Correct != 1 {
		t.Errorf("snapshot results = %+v", snap.Results)
	}
	// The answer map survives finishing for the results breakdown.
	if len(snap.Answers) != 2 {
		t.Errorf("answers after finish = %v", snap.Answers)
	}

	if _, ok := s.FinishUnit(2); ok {
		t.Error("FinishUnit succeeded with no session")
	}
}

func TestResetAndIdleSnapshot(t *testing.T) {
	s := hydratedStore()
	s.StartUnit(1, "unit-a", 1, nil)
	s.ResetSession(1)

	snap := s.Snapshot(1)
	if snap.Status != models.SessionIdle || snap.UnitID != "" || snap.CurrentIndex != 0 {
		t.Errorf("post-reset snapshot = %+v", snap)
	}
	if snap.Answers == nil {
		t.Error("idle snapshot has nil answers map")
	}

	// Resetting again is harmless.
	s.ResetSession(1)
}

func TestHydrateClearsSessions(t *testing.T) {
	s := hydratedStore()
	s.StartUnit(1, "unit-a", 0, nil)
	if !s.HasActiveSessions() {
		t.Fatal("expected an active session")
	}

	s.Hydrate(testCatalog())
	if s.HasActiveSessions() {
		t.Error("hydration kept sessions alive")
	}
	if got := s.Snapshot(1).Status; got != models.SessionIdle {
		t.Errorf("post-hydrate status = %s, want idle", got)
	}
}

func TestHasActiveSessionsIgnoresFinished(t *testing.T) {
	s := hydratedStore()
	s.StartUnit(1, "unit-a", 0, nil)
	s.FinishUnit(1)
	if s.HasActiveSessions() {
		t.Error("finished session counted as active")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	s := hydratedStore()
	s.StartUnit(1, "unit-a", 0, nil)
	s.StartUnit(2, "unit-b", 1, nil)

	s.AnswerItem(1, "a1", "opt-1")

	if got := s.Snapshot(2).UnitID; got != "unit-b" {
		t.Errorf("user 2 unit = %s, want unit-b", got)
	}
	if len(s.Snapshot(2).Answers) != 0 {
		t.Error("user 1's answer leaked into user 2's session")
	}
	if got := s.Snapshot(1).CurrentIndex; got != 0 {
		t.Errorf("user 1 index = %d, want 0", got)
	}
}
