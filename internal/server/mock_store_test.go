package server

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/alfredjeanlab/tally/internal/model"
	"github.com/alfredjeanlab/tally/internal/store"
)

// mockStore is an in-memory store for server tests. Leases are derived from
// session state exactly as in the SQL implementation, and RunInTransaction
// snapshots all state so a failed transaction rolls back cleanly.
type mockStore struct {
	sessions map[string]*model.Session
	drafts   map[string]*model.DraftRecord   // keyed by documenter|employee|step|date
	records  map[string]*model.ProgressRecord // keyed by employee|step|date
	goals    map[string]*model.Goal
	notes    map[string]*model.SessionNote // keyed by employee|session
	events   []*model.Event

	lockCalls [][]string        // arguments of every LockEmployees call
	failOn    map[string]error // method name to forced error
}

func newMockStore() *mockStore {
	return &mockStore{
		sessions: make(map[string]*model.Session),
		drafts:   make(map[string]*model.DraftRecord),
		records:  make(map[string]*model.ProgressRecord),
		goals:    make(map[string]*model.Goal),
		notes:    make(map[string]*model.SessionNote),
		failOn:   make(map[string]error),
	}
}

func draftKey(documenterID, employeeID, stepID, date string) string {
	return documenterID + "|" + employeeID + "|" + stepID + "|" + date
}

func recordKey(employeeID, stepID, date string) string {
	return employeeID + "|" + stepID + "|" + date
}

func copySession(s *model.Session) *model.Session {
	cp := *s
	cp.EmployeeIDs = append([]string(nil), s.EmployeeIDs...)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

func copyGoal(g *model.Goal) *model.Goal {
	cp := *g
	cp.Steps = nil
	for _, st := range g.Steps {
		stc := *st
		cp.Steps = append(cp.Steps, &stc)
	}
	return &cp
}

func (m *mockStore) snapshot() *mockStore {
	cp := newMockStore()
	for k, v := range m.sessions {
		cp.sessions[k] = copySession(v)
	}
	for k, v := range m.drafts {
		d := *v
		cp.drafts[k] = &d
	}
	for k, v := range m.records {
		r := *v
		cp.records[k] = &r
	}
	for k, v := range m.goals {
		cp.goals[k] = copyGoal(v)
	}
	for k, v := range m.notes {
		n := *v
		cp.notes[k] = &n
	}
	cp.events = append([]*model.Event(nil), m.events...)
	return cp
}

func (m *mockStore) restore(snap *mockStore) {
	m.sessions = snap.sessions
	m.drafts = snap.drafts
	m.records = snap.records
	m.goals = snap.goals
	m.notes = snap.notes
	m.events = snap.events
}

func (m *mockStore) failure(method string) error {
	return m.failOn[method]
}

func (m *mockStore) CreateSession(_ context.Context, session *model.Session) error {
	if err := m.failure("CreateSession"); err != nil {
		return err
	}
	m.sessions[session.ID] = copySession(session)
	return nil
}

func (m *mockStore) GetSession(_ context.Context, id string) (*model.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copySession(s), nil
}

func (m *mockStore) ListSessions(_ context.Context, filter model.SessionFilter) ([]*model.Session, error) {
	var result []*model.Session
	for _, s := range m.sessions {
		if filter.HolderID != "" && s.HolderID != filter.HolderID {
			continue
		}
		if filter.EmployeeID != "" && !s.HoldsEmployee(filter.EmployeeID) {
			continue
		}
		if len(filter.Status) > 0 {
			match := false
			for _, st := range filter.Status {
				if s.Status == st {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		result = append(result, copySession(s))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) SetSessionEmployees(_ context.Context, sessionID string, employeeIDs []string) error {
	s, ok := m.sessions[sessionID]
	if !ok {
		return sql.ErrNoRows
	}
	s.EmployeeIDs = append([]string(nil), employeeIDs...)
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *mockStore) SetSessionExpiry(_ context.Context, sessionID string, expiresAt time.Time) error {
	if err := m.failure("SetSessionExpiry"); err != nil {
		return err
	}
	s, ok := m.sessions[sessionID]
	if !ok {
		return sql.ErrNoRows
	}
	s.LeaseExpiresAt = expiresAt
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *mockStore) SetSessionStatus(_ context.Context, sessionID string, status model.SessionStatus, completedAt *time.Time) error {
	if err := m.failure("SetSessionStatus"); err != nil {
		return err
	}
	s, ok := m.sessions[sessionID]
	if !ok {
		return sql.ErrNoRows
	}
	s.Status = status
	s.CompletedAt = completedAt
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *mockStore) LockEmployees(_ context.Context, employeeIDs []string) error {
	m.lockCalls = append(m.lockCalls, append([]string(nil), employeeIDs...))
	return m.failure("LockEmployees")
}

func (m *mockStore) HeldLeases(_ context.Context, employeeIDs []string, now time.Time) ([]model.HeldLease, error) {
	if err := m.failure("HeldLeases"); err != nil {
		return nil, err
	}
	requested := make(map[string]struct{}, len(employeeIDs))
	for _, id := range employeeIDs {
		requested[id] = struct{}{}
	}
	var held []model.HeldLease
	for _, s := range m.sessions {
		if s.Status != model.SessionInProgress || !s.LeaseExpiresAt.After(now) {
			continue
		}
		for _, emp := range s.EmployeeIDs {
			if _, ok := requested[emp]; ok {
				held = append(held, model.HeldLease{EmployeeID: emp, SessionID: s.ID, HolderID: s.HolderID})
			}
		}
	}
	sort.Slice(held, func(i, j int) bool { return held[i].EmployeeID < held[j].EmployeeID })
	return held, nil
}

func (m *mockStore) StaleSessionIDs(_ context.Context, employeeIDs []string, now time.Time) ([]string, error) {
	requested := make(map[string]struct{}, len(employeeIDs))
	for _, id := range employeeIDs {
		requested[id] = struct{}{}
	}
	var ids []string
	for _, s := range m.sessions {
		if s.Status != model.SessionInProgress || s.LeaseExpiresAt.After(now) {
			continue
		}
		for _, emp := range s.EmployeeIDs {
			if _, ok := requested[emp]; ok {
				ids = append(ids, s.ID)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockStore) SaveDraft(_ context.Context, draft *model.DraftRecord) error {
	if err := m.failure("SaveDraft"); err != nil {
		return err
	}
	d := *draft
	m.drafts[draftKey(d.DocumenterID, d.EmployeeID, d.GoalStepID, d.RecordDate)] = &d
	return nil
}

func (m *mockStore) GetDrafts(_ context.Context, documenterID string) ([]*model.DraftRecord, error) {
	var result []*model.DraftRecord
	for _, d := range m.drafts {
		if d.DocumenterID == documenterID {
			cp := *d
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].GoalStepID < result[j].GoalStepID })
	return result, nil
}

func (m *mockStore) GetDraftsForDay(_ context.Context, documenterID, employeeID, date string) ([]*model.DraftRecord, error) {
	var result []*model.DraftRecord
	for _, d := range m.drafts {
		if d.DocumenterID == documenterID && d.EmployeeID == employeeID && d.RecordDate == date {
			cp := *d
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].GoalStepID < result[j].GoalStepID })
	return result, nil
}

func (m *mockStore) DeleteDraft(_ context.Context, documenterID, employeeID, goalStepID, date string) error {
	key := draftKey(documenterID, employeeID, goalStepID, date)
	if _, ok := m.drafts[key]; !ok {
		return sql.ErrNoRows
	}
	delete(m.drafts, key)
	return nil
}

func (m *mockStore) DeleteDraftsForDay(_ context.Context, documenterID, employeeID, date string) error {
	for key, d := range m.drafts {
		if d.DocumenterID == documenterID && d.EmployeeID == employeeID && d.RecordDate == date {
			delete(m.drafts, key)
		}
	}
	return nil
}

func (m *mockStore) UpsertProgressRecord(_ context.Context, record *model.ProgressRecord) error {
	if err := m.failure("UpsertProgressRecord"); err != nil {
		return err
	}
	key := recordKey(record.EmployeeID, record.GoalStepID, record.RecordDate)
	if existing, ok := m.records[key]; ok {
		record.ID = existing.ID
	}
	r := *record
	m.records[key] = &r
	return nil
}

func (m *mockStore) GetProgressRecords(_ context.Context, employeeID, date string) ([]*model.ProgressRecord, error) {
	var result []*model.ProgressRecord
	for _, r := range m.records {
		if r.EmployeeID == employeeID && r.RecordDate == date {
			cp := *r
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].GoalStepID < result[j].GoalStepID })
	return result, nil
}

func (m *mockStore) ListProgressRecords(_ context.Context, employeeID string) ([]*model.ProgressRecord, error) {
	var result []*model.ProgressRecord
	for _, r := range m.records {
		if r.EmployeeID == employeeID {
			cp := *r
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].RecordDate != result[j].RecordDate {
			return result[i].RecordDate < result[j].RecordDate
		}
		return result[i].GoalStepID < result[j].GoalStepID
	})
	return result, nil
}

func (m *mockStore) CreateGoal(_ context.Context, goal *model.Goal) error {
	if err := m.failure("CreateGoal"); err != nil {
		return err
	}
	m.goals[goal.ID] = copyGoal(goal)
	return nil
}

func (m *mockStore) GetGoal(_ context.Context, id string) (*model.Goal, error) {
	g, ok := m.goals[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyGoal(g), nil
}

func (m *mockStore) GetGoalForUpdate(ctx context.Context, id string) (*model.Goal, error) {
	return m.GetGoal(ctx, id)
}

func (m *mockStore) ListGoals(_ context.Context, employeeID string) ([]*model.Goal, error) {
	var result []*model.Goal
	for _, g := range m.goals {
		if g.EmployeeID == employeeID {
			result = append(result, copyGoal(g))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) GoalIDsForSteps(_ context.Context, stepIDs []string) ([]string, error) {
	requested := make(map[string]struct{}, len(stepIDs))
	for _, id := range stepIDs {
		requested[id] = struct{}{}
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, g := range m.goals {
		for _, st := range g.Steps {
			if _, ok := requested[st.ID]; ok {
				if _, dup := seen[g.ID]; !dup {
					seen[g.ID] = struct{}{}
					ids = append(ids, g.ID)
				}
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockStore) ApplyGoalEvaluation(_ context.Context, goal *model.Goal) error {
	if err := m.failure("ApplyGoalEvaluation"); err != nil {
		return err
	}
	existing, ok := m.goals[goal.ID]
	if !ok {
		return sql.ErrNoRows
	}
	cp := copyGoal(goal)
	cp.Steps = existing.Steps
	m.goals[goal.ID] = cp
	return nil
}

func (m *mockStore) ArchiveGoal(_ context.Context, id string) (*model.Goal, error) {
	g, ok := m.goals[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	g.Status = model.GoalArchived
	g.UpdatedAt = time.Now().UTC()
	return copyGoal(g), nil
}

func (m *mockStore) UpsertSessionNote(_ context.Context, note *model.SessionNote) error {
	if err := m.failure("UpsertSessionNote"); err != nil {
		return err
	}
	n := *note
	m.notes[n.EmployeeID+"|"+n.SessionID] = &n
	return nil
}

func (m *mockStore) GetSessionNotes(_ context.Context, sessionID string) ([]*model.SessionNote, error) {
	var result []*model.SessionNote
	for _, n := range m.notes {
		if n.SessionID == sessionID {
			cp := *n
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EmployeeID < result[j].EmployeeID })
	return result, nil
}

func (m *mockStore) RecordEvent(_ context.Context, event *model.Event) error {
	e := *event
	e.ID = int64(len(m.events) + 1)
	e.CreatedAt = time.Now().UTC()
	m.events = append(m.events, &e)
	return nil
}

func (m *mockStore) GetEvents(_ context.Context, refID string) ([]*model.Event, error) {
	var result []*model.Event
	for _, e := range m.events {
		if e.RefID == refID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockStore) AllGoals(_ context.Context) ([]*model.Goal, error) {
	var result []*model.Goal
	for _, g := range m.goals {
		result = append(result, copyGoal(g))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) AllProgressRecords(_ context.Context) ([]*model.ProgressRecord, error) {
	var result []*model.ProgressRecord
	for _, r := range m.records {
		cp := *r
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// RunInTransaction snapshots state before fn and restores it on error, so
// tests exercise the same all-or-nothing behavior as the SQL store.
func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *mockStore) Close() error {
	return nil
}

// eventTopics returns the topics of recorded events for a ref ID, in order.
func (m *mockStore) eventTopics(refID string) []string {
	var topics []string
	for _, e := range m.events {
		if refID == "" || e.RefID == refID {
			topics = append(topics, e.Topic)
		}
	}
	return topics
}
