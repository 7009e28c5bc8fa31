package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/alfredjeanlab/tally/internal/model"
)

// Event topic constants
const (
	TopicSessionStarted         = "tally.session.started"
	TopicSessionRenewed         = "tally.session.renewed"
	TopicSessionSubjectsChanged = "tally.session.subjects_changed"
	TopicSessionCompleted       = "tally.session.completed"
	TopicSessionAbandoned       = "tally.session.abandoned"

	TopicProgressSubmitted = "tally.progress.submitted"

	TopicGoalCreated  = "tally.goal.created"
	TopicGoalMastered = "tally.goal.mastered"
	TopicGoalArchived = "tally.goal.archived"
)

// Envelope is the wire form every tally event travels in. Topic names the
// kind of change, RefID the session or goal it concerns, Actor the documenter
// who caused it. Payload carries the topic-specific body below.
type Envelope struct {
	Topic      string          `json:"topic"`
	RefID      string          `json:"ref_id"`
	Actor      string          `json:"actor,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// SessionTopic reports whether the envelope carries a session lifecycle
// event, in which case RefID is a session ID.
func (e Envelope) SessionTopic() bool {
	return strings.HasPrefix(e.Topic, "tally.session.")
}

// Event payload types

type SessionStarted struct {
	Session *model.Session `json:"session"`
}

type SessionRenewed struct {
	Session *model.Session `json:"session"`
	TTL     string         `json:"ttl"`
}

type SessionSubjectsChanged struct {
	Session *model.Session `json:"session"`
	Added   []string       `json:"added,omitempty"`
	Removed []string       `json:"removed,omitempty"`
}

type SessionCompleted struct {
	Session *model.Session `json:"session"`
}

type SessionAbandoned struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

type ProgressSubmitted struct {
	SessionID  string                  `json:"session_id"`
	EmployeeID string                  `json:"employee_id"`
	RecordDate string                  `json:"record_date"`
	Records    []*model.ProgressRecord `json:"records"`
}

type GoalCreated struct {
	Goal *model.Goal `json:"goal"`
}

type GoalMastered struct {
	Goal        *model.Goal `json:"goal"`
	MasteryDate string      `json:"mastery_date"`
}

type GoalArchived struct {
	GoalID string `json:"goal_id"`
}

// Publisher is the interface for emitting event envelopes.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}
