package server

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/alfredjeanlab/tally/internal/events"
	"github.com/alfredjeanlab/tally/internal/model"
)

func TestCreateGoal(t *testing.T) {
	srv, ms := newTestServer(t)

	goal, err := srv.createGoal(context.Background(), createGoalInput{
		EmployeeID: "emp-1",
		Title:      "Greets customers",
		Steps: []createGoalStepInput{
			{Description: "Makes eye contact", IsRequired: true},
			{Description: "Says hello", IsRequired: true},
			{Description: "Smiles", IsRequired: false},
		},
		Actor: "doc-alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(goal.ID, "gl-") {
		t.Errorf("expected gl- prefix, got %q", goal.ID)
	}
	if goal.Status != model.GoalActive {
		t.Errorf("expected active, got %q", goal.Status)
	}
	if len(goal.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(goal.Steps))
	}
	for i, st := range goal.Steps {
		if st.Position != i+1 {
			t.Errorf("step %d: position %d", i, st.Position)
		}
		if !strings.HasPrefix(st.ID, "st-") {
			t.Errorf("step %d: expected st- prefix, got %q", i, st.ID)
		}
		if st.GoalID != goal.ID {
			t.Errorf("step %d: goal id %q", i, st.GoalID)
		}
	}
	if len(goal.RequiredSteps()) != 2 {
		t.Errorf("expected 2 required steps, got %d", len(goal.RequiredSteps()))
	}

	if topics := ms.eventTopics(goal.ID); !reflect.DeepEqual(topics, []string{events.TopicGoalCreated}) {
		t.Errorf("unexpected events: %v", topics)
	}
}

func TestCreateGoal_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name  string
		input createGoalInput
	}{
		{"NoEmployee", createGoalInput{Title: "T"}},
		{"NoTitle", createGoalInput{EmployeeID: "emp-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := srv.createGoal(context.Background(), tt.input)
			var ve *model.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetGoal_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	_, err := srv.getGoal(context.Background(), "gl-missing")
	if !errors.Is(err, model.ErrGoalNotFound) {
		t.Fatalf("expected ErrGoalNotFound, got %v", err)
	}
}

func TestListGoals(t *testing.T) {
	srv, ms := newTestServer(t)
	addGoal(ms, "gl-1", "emp-1", 1, 0)
	addGoal(ms, "gl-2", "emp-1", 1, 0)
	addGoal(ms, "gl-3", "emp-2", 1, 0)

	goals, err := srv.listGoals(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(goals) != 2 {
		t.Errorf("expected 2 goals, got %d", len(goals))
	}

	if _, err := srv.listGoals(context.Background(), ""); err == nil {
		t.Error("expected error for missing employee_id")
	}
}

func TestArchiveGoal(t *testing.T) {
	srv, ms := newTestServer(t)
	addGoal(ms, "gl-1", "emp-1", 1, 0)

	goal, err := srv.archiveGoal(context.Background(), "gl-1", "doc-alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if goal.Status != model.GoalArchived {
		t.Errorf("expected archived, got %q", goal.Status)
	}
	if topics := ms.eventTopics("gl-1"); !reflect.DeepEqual(topics, []string{events.TopicGoalArchived}) {
		t.Errorf("unexpected events: %v", topics)
	}

	// Archiving is terminal; a second archive is refused.
	_, err = srv.archiveGoal(context.Background(), "gl-1", "doc-alice")
	if !errors.Is(err, model.ErrGoalArchived) {
		t.Fatalf("expected ErrGoalArchived, got %v", err)
	}
}

func TestArchiveGoal_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	_, err := srv.archiveGoal(context.Background(), "gl-missing", "doc-alice")
	if !errors.Is(err, model.ErrGoalNotFound) {
		t.Fatalf("expected ErrGoalNotFound, got %v", err)
	}
}
