package model

import (
	"testing"
	"time"
)

func TestSessionStatusIsValid(t *testing.T) {
	for _, s := range []SessionStatus{SessionInProgress, SessionCompleted, SessionAbandoned} {
		if !s.IsValid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if SessionStatus("paused").IsValid() {
		t.Error("expected \"paused\" to be invalid")
	}
}

func TestSessionStatusIsTerminal(t *testing.T) {
	if SessionInProgress.IsTerminal() {
		t.Error("in_progress should not be terminal")
	}
	if !SessionCompleted.IsTerminal() {
		t.Error("completed should be terminal")
	}
	if !SessionAbandoned.IsTerminal() {
		t.Error("abandoned should be terminal")
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now().UTC()
	s := &Session{Status: SessionInProgress, LeaseExpiresAt: now.Add(time.Hour)}
	if s.Expired(now) {
		t.Error("session with future lease should not be expired")
	}
	if !s.Expired(now.Add(2 * time.Hour)) {
		t.Error("session past lease_expires_at should be expired")
	}
	// Expiry boundary: a lease expiring exactly now holds no lease.
	if !s.Expired(s.LeaseExpiresAt) {
		t.Error("session at exact expiry instant should be expired")
	}
	// Terminal sessions hold no leases regardless of remaining TTL.
	s.Status = SessionCompleted
	if !s.Expired(now) {
		t.Error("completed session should always be expired")
	}
}

func TestSessionHoldsEmployee(t *testing.T) {
	s := &Session{EmployeeIDs: []string{"E1", "E2"}}
	if !s.HoldsEmployee("E2") {
		t.Error("expected session to hold E2")
	}
	if s.HoldsEmployee("E3") {
		t.Error("expected session not to hold E3")
	}
}

func TestOutcomeIsValid(t *testing.T) {
	for _, o := range []Outcome{OutcomeCorrect, OutcomeVerbalPrompt, OutcomeIncorrect, OutcomeNotApplicable} {
		if !o.IsValid() {
			t.Errorf("expected %q to be valid", o)
		}
	}
	if Outcome("maybe").IsValid() {
		t.Error("expected \"maybe\" to be invalid")
	}
}

func TestOutcomeRequiresNotes(t *testing.T) {
	if !OutcomeVerbalPrompt.RequiresNotes() {
		t.Error("verbal_prompt should require notes")
	}
	for _, o := range []Outcome{OutcomeCorrect, OutcomeIncorrect, OutcomeNotApplicable} {
		if o.RequiresNotes() {
			t.Errorf("%q should not require notes", o)
		}
	}
}

func TestGoalRequiredSteps(t *testing.T) {
	g := &Goal{
		Steps: []*GoalStep{
			{ID: "S1", IsRequired: true},
			{ID: "S2", IsRequired: false},
			{ID: "S3", IsRequired: true},
		},
	}
	req := g.RequiredSteps()
	if len(req) != 2 || req[0].ID != "S1" || req[1].ID != "S3" {
		t.Errorf("unexpected required steps: %v", req)
	}

	if got := (&Goal{}).RequiredSteps(); got != nil {
		t.Errorf("goal without steps should have no required steps, got %v", got)
	}
}

func TestConflictErrorMessage(t *testing.T) {
	err := &ConflictError{Held: []HeldLease{
		{EmployeeID: "E2", SessionID: "sn-abc", HolderID: "M1"},
	}}
	want := "employees already leased: E2 (held by M1, session sn-abc)"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
