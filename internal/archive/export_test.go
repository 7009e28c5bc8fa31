package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/tally/internal/model"
)

func TestExportJSONL_Empty(t *testing.T) {
	ms := newMockStore()
	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), ms, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := nonEmptyLines(buf.String())
	if len(lines) != 1 {
		t.Fatalf("expected 1 line (header only), got %d", len(lines))
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.Version != "1" || h.Type != "header" || h.SessionCount != 0 || h.GoalCount != 0 || h.RecordCount != 0 {
		t.Fatalf("unexpected header: %+v", h)
	}
}

func TestExportJSONL_WithData(t *testing.T) {
	ms := newMockStore()
	now := time.Now().UTC()

	// Add sessions out of ID order to verify sorting.
	ms.sessions["sn-zzz"] = &model.Session{
		ID: "sn-zzz", HolderID: "doc-bob", EmployeeIDs: []string{"emp-2"},
		Status: model.SessionInProgress, CreatedAt: now, UpdatedAt: now,
		LeaseExpiresAt: now.Add(time.Hour),
	}
	ms.sessions["sn-aaa"] = &model.Session{
		ID: "sn-aaa", HolderID: "doc-alice", EmployeeIDs: []string{"emp-1"},
		Status: model.SessionCompleted, CreatedAt: now, UpdatedAt: now,
		LeaseExpiresAt: now, CompletedAt: &now,
	}

	ms.notes["sn-aaa"] = []*model.SessionNote{
		{EmployeeID: "emp-1", SessionID: "sn-aaa", Body: "Good focus today.", CreatedAt: now, UpdatedAt: now},
	}

	ms.goals["gl-1"] = &model.Goal{
		ID: "gl-1", EmployeeID: "emp-1", Title: "Greets customers",
		Status: model.GoalActive, CreatedAt: now, UpdatedAt: now,
	}

	ms.records["pr-1"] = &model.ProgressRecord{
		ID: "pr-1", EmployeeID: "emp-1", GoalStepID: "st-1", RecordDate: "2026-08-30",
		Outcome: model.OutcomeCorrect, SessionID: "sn-aaa", DocumenterID: "doc-alice",
		SubmittedAt: now,
	}

	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), ms, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := nonEmptyLines(buf.String())
	// 1 header + 2 sessions + 1 note + 1 goal + 1 record = 6 lines
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), buf.String())
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.SessionCount != 2 || h.GoalCount != 1 || h.RecordCount != 1 {
		t.Fatalf("header counts: session=%d goal=%d record=%d", h.SessionCount, h.GoalCount, h.RecordCount)
	}

	// Verify sessions are sorted by ID (sn-aaa before sn-zzz).
	var rec1, rec2 record
	if err := json.Unmarshal([]byte(lines[1]), &rec1); err != nil {
		t.Fatalf("unmarshal line 1: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[2]), &rec2); err != nil {
		t.Fatalf("unmarshal line 2: %v", err)
	}
	if rec1.Type != "session" || rec2.Type != "session" {
		t.Fatalf("expected session types, got %q and %q", rec1.Type, rec2.Type)
	}

	data1, _ := json.Marshal(rec1.Data)
	data2, _ := json.Marshal(rec2.Data)
	var s1, s2 model.Session
	if err := json.Unmarshal(data1, &s1); err != nil {
		t.Fatalf("unmarshal s1: %v", err)
	}
	if err := json.Unmarshal(data2, &s2); err != nil {
		t.Fatalf("unmarshal s2: %v", err)
	}
	if s1.ID != "sn-aaa" || s2.ID != "sn-zzz" {
		t.Fatalf("sessions not sorted: got %q, %q", s1.ID, s2.ID)
	}

	// Verify remaining line types in order.
	for i, wantType := range []string{"note", "goal", "progress_record"} {
		var rec record
		if err := json.Unmarshal([]byte(lines[3+i]), &rec); err != nil {
			t.Fatalf("unmarshal line %d: %v", 3+i, err)
		}
		if rec.Type != wantType {
			t.Fatalf("line %d: expected type %q, got %q", 3+i, wantType, rec.Type)
		}
	}
}

func nonEmptyLines(s string) []string {
	var result []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			result = append(result, line)
		}
	}
	return result
}
