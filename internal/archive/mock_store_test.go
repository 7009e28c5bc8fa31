package archive

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/alfredjeanlab/tally/internal/model"
	"github.com/alfredjeanlab/tally/internal/store"
)

// mockStore is a minimal in-memory store for archive tests.
type mockStore struct {
	sessions map[string]*model.Session
	goals    map[string]*model.Goal
	records  map[string]*model.ProgressRecord
	notes    map[string][]*model.SessionNote // keyed by session ID
}

func newMockStore() *mockStore {
	return &mockStore{
		sessions: make(map[string]*model.Session),
		goals:    make(map[string]*model.Goal),
		records:  make(map[string]*model.ProgressRecord),
		notes:    make(map[string][]*model.SessionNote),
	}
}

func (m *mockStore) CreateSession(_ context.Context, session *model.Session) error {
	m.sessions[session.ID] = session
	return nil
}

func (m *mockStore) GetSession(_ context.Context, id string) (*model.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *mockStore) ListSessions(_ context.Context, _ model.SessionFilter) ([]*model.Session, error) {
	var result []*model.Session
	for _, s := range m.sessions {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockStore) SetSessionEmployees(_ context.Context, sessionID string, employeeIDs []string) error {
	if s, ok := m.sessions[sessionID]; ok {
		s.EmployeeIDs = employeeIDs
	}
	return nil
}

func (m *mockStore) SetSessionExpiry(_ context.Context, sessionID string, expiresAt time.Time) error {
	if s, ok := m.sessions[sessionID]; ok {
		s.LeaseExpiresAt = expiresAt
	}
	return nil
}

func (m *mockStore) SetSessionStatus(_ context.Context, sessionID string, status model.SessionStatus, completedAt *time.Time) error {
	if s, ok := m.sessions[sessionID]; ok {
		s.Status = status
		s.CompletedAt = completedAt
	}
	return nil
}

func (m *mockStore) LockEmployees(_ context.Context, _ []string) error {
	return nil
}

func (m *mockStore) HeldLeases(_ context.Context, _ []string, _ time.Time) ([]model.HeldLease, error) {
	return nil, nil
}

func (m *mockStore) StaleSessionIDs(_ context.Context, _ []string, _ time.Time) ([]string, error) {
	return nil, nil
}

func (m *mockStore) SaveDraft(_ context.Context, _ *model.DraftRecord) error {
	return nil
}

func (m *mockStore) GetDrafts(_ context.Context, _ string) ([]*model.DraftRecord, error) {
	return nil, nil
}

func (m *mockStore) GetDraftsForDay(_ context.Context, _, _, _ string) ([]*model.DraftRecord, error) {
	return nil, nil
}

func (m *mockStore) DeleteDraft(_ context.Context, _, _, _, _ string) error {
	return nil
}

func (m *mockStore) DeleteDraftsForDay(_ context.Context, _, _, _ string) error {
	return nil
}

func (m *mockStore) UpsertProgressRecord(_ context.Context, record *model.ProgressRecord) error {
	m.records[record.ID] = record
	return nil
}

func (m *mockStore) GetProgressRecords(_ context.Context, _, _ string) ([]*model.ProgressRecord, error) {
	return nil, nil
}

func (m *mockStore) ListProgressRecords(_ context.Context, _ string) ([]*model.ProgressRecord, error) {
	return nil, nil
}

func (m *mockStore) CreateGoal(_ context.Context, goal *model.Goal) error {
	m.goals[goal.ID] = goal
	return nil
}

func (m *mockStore) GetGoal(_ context.Context, id string) (*model.Goal, error) {
	g, ok := m.goals[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return g, nil
}

func (m *mockStore) GetGoalForUpdate(ctx context.Context, id string) (*model.Goal, error) {
	return m.GetGoal(ctx, id)
}

func (m *mockStore) ListGoals(_ context.Context, employeeID string) ([]*model.Goal, error) {
	var result []*model.Goal
	for _, g := range m.goals {
		if g.EmployeeID == employeeID {
			result = append(result, g)
		}
	}
	return result, nil
}

func (m *mockStore) GoalIDsForSteps(_ context.Context, _ []string) ([]string, error) {
	return nil, nil
}

func (m *mockStore) ApplyGoalEvaluation(_ context.Context, goal *model.Goal) error {
	m.goals[goal.ID] = goal
	return nil
}

func (m *mockStore) ArchiveGoal(_ context.Context, id string) (*model.Goal, error) {
	g, ok := m.goals[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	g.Status = model.GoalArchived
	return g, nil
}

func (m *mockStore) UpsertSessionNote(_ context.Context, note *model.SessionNote) error {
	m.notes[note.SessionID] = append(m.notes[note.SessionID], note)
	return nil
}

func (m *mockStore) GetSessionNotes(_ context.Context, sessionID string) ([]*model.SessionNote, error) {
	return m.notes[sessionID], nil
}

func (m *mockStore) RecordEvent(_ context.Context, _ *model.Event) error {
	return nil
}

func (m *mockStore) GetEvents(_ context.Context, _ string) ([]*model.Event, error) {
	return nil, nil
}

func (m *mockStore) AllGoals(_ context.Context) ([]*model.Goal, error) {
	var result []*model.Goal
	for _, g := range m.goals {
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockStore) AllProgressRecords(_ context.Context) ([]*model.ProgressRecord, error) {
	var result []*model.ProgressRecord
	for _, r := range m.records {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error {
	return nil
}
