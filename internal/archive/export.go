// Package archive exports the full documentation dataset as JSONL and ships
// it to one or more destinations on a schedule.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alfredjeanlab/tally/internal/model"
	"github.com/alfredjeanlab/tally/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version      string    `json:"version"`
	Type         string    `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	SessionCount int       `json:"session_count"`
	GoalCount    int       `json:"goal_count"`
	RecordCount  int       `json:"record_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ExportJSONL writes all sessions, session notes, goals, and progress records
// from the store as JSONL to w. Entities are sorted by ID for stable diffs.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	sessions, err := s.ListSessions(ctx, model.SessionFilter{})
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ID < sessions[j].ID
	})

	var notes []*model.SessionNote
	for _, sess := range sessions {
		ns, err := s.GetSessionNotes(ctx, sess.ID)
		if err != nil {
			return fmt.Errorf("get notes for %s: %w", sess.ID, err)
		}
		notes = append(notes, ns...)
	}

	goals, err := s.AllGoals(ctx)
	if err != nil {
		return fmt.Errorf("list goals: %w", err)
	}
	sort.Slice(goals, func(i, j int) bool {
		return goals[i].ID < goals[j].ID
	})

	records, err := s.AllProgressRecords(ctx)
	if err != nil {
		return fmt.Errorf("list progress records: %w", err)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:      "1",
		Type:         "header",
		Timestamp:    time.Now().UTC(),
		SessionCount: len(sessions),
		GoalCount:    len(goals),
		RecordCount:  len(records),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, sess := range sessions {
		if err := enc.Encode(record{Type: "session", Data: sess}); err != nil {
			return fmt.Errorf("encode session %s: %w", sess.ID, err)
		}
	}

	for _, n := range notes {
		if err := enc.Encode(record{Type: "note", Data: n}); err != nil {
			return fmt.Errorf("encode note for %s/%s: %w", n.SessionID, n.EmployeeID, err)
		}
	}

	for _, g := range goals {
		if err := enc.Encode(record{Type: "goal", Data: g}); err != nil {
			return fmt.Errorf("encode goal %s: %w", g.ID, err)
		}
	}

	for _, r := range records {
		if err := enc.Encode(record{Type: "progress_record", Data: r}); err != nil {
			return fmt.Errorf("encode progress record %s: %w", r.ID, err)
		}
	}

	return nil
}
