package model

import (
	"errors"
	"testing"
	"time"
)

func TestValidateAcquire(t *testing.T) {
	if err := ValidateAcquire([]string{"E1", "E2"}, "M1", 4*time.Hour); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	for name, tc := range map[string]struct {
		ids    []string
		holder string
		ttl    time.Duration
	}{
		"no employees":     {nil, "M1", time.Hour},
		"empty id":         {[]string{"E1", ""}, "M1", time.Hour},
		"duplicate id":     {[]string{"E1", "E1"}, "M1", time.Hour},
		"missing holder":   {[]string{"E1"}, "", time.Hour},
		"negative ttl":     {[]string{"E1"}, "M1", -time.Hour},
		"ttl over maximum": {[]string{"E1"}, "M1", MaxLeaseTTL + time.Minute},
	} {
		err := ValidateAcquire(tc.ids, tc.holder, tc.ttl)
		if err == nil {
			t.Errorf("%s: expected validation error", name)
			continue
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: expected *ValidationError, got %T", name, err)
		}
	}
}

func TestValidateDraft(t *testing.T) {
	valid := &DraftRecord{
		DocumenterID: "D1",
		EmployeeID:   "E1",
		GoalStepID:   "S1",
		RecordDate:   "2024-01-01",
		Outcome:      OutcomeCorrect,
	}
	if err := ValidateDraft(valid); err != nil {
		t.Fatalf("valid draft rejected: %v", err)
	}

	// A prompted outcome without notes is still a valid draft; the note rule
	// only applies at submit.
	prompted := *valid
	prompted.Outcome = OutcomeVerbalPrompt
	if err := ValidateDraft(&prompted); err != nil {
		t.Fatalf("prompted draft without notes rejected at save time: %v", err)
	}

	negTimer := -5
	for name, d := range map[string]DraftRecord{
		"missing documenter": {EmployeeID: "E1", GoalStepID: "S1", RecordDate: "2024-01-01", Outcome: OutcomeCorrect},
		"missing employee":   {DocumenterID: "D1", GoalStepID: "S1", RecordDate: "2024-01-01", Outcome: OutcomeCorrect},
		"missing step":       {DocumenterID: "D1", EmployeeID: "E1", RecordDate: "2024-01-01", Outcome: OutcomeCorrect},
		"bad date":           {DocumenterID: "D1", EmployeeID: "E1", GoalStepID: "S1", RecordDate: "01/01/2024", Outcome: OutcomeCorrect},
		"bad outcome":        {DocumenterID: "D1", EmployeeID: "E1", GoalStepID: "S1", RecordDate: "2024-01-01", Outcome: "shrug"},
		"negative timer":     {DocumenterID: "D1", EmployeeID: "E1", GoalStepID: "S1", RecordDate: "2024-01-01", Outcome: OutcomeCorrect, TimerSeconds: &negTimer},
	} {
		if err := ValidateDraft(&d); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestValidateSubmitRecord(t *testing.T) {
	ok := &DraftRecord{GoalStepID: "S1", Outcome: OutcomeVerbalPrompt, Notes: "needed a hint on step 2"}
	if err := ValidateSubmitRecord(ok); err != nil {
		t.Fatalf("prompted draft with notes rejected: %v", err)
	}

	bad := &DraftRecord{GoalStepID: "S1", Outcome: OutcomeVerbalPrompt, Notes: "   "}
	if err := ValidateSubmitRecord(bad); err == nil {
		t.Fatal("prompted draft without notes should fail at submit")
	}

	// Other outcomes never require notes.
	if err := ValidateSubmitRecord(&DraftRecord{Outcome: OutcomeIncorrect}); err != nil {
		t.Fatalf("incorrect outcome without notes rejected: %v", err)
	}
}
