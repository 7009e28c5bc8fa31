// Package server implements the tally service: session leasing, draft
// management, submission, and goal mastery tracking.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/tally/internal/events"
	"github.com/alfredjeanlab/tally/internal/model"
	"github.com/alfredjeanlab/tally/internal/presence"
	"github.com/alfredjeanlab/tally/internal/store"
)

// TallyServer holds the service state shared by all transports.
type TallyServer struct {
	store     store.Store
	publisher events.Publisher
	sseHub    *sseHub
	presence  *presence.Tracker
	leaseTTL  time.Duration
}

// NewTallyServer returns a new TallyServer backed by the given store and
// publisher. leaseTTL is the default session lease duration used when an
// acquire or renew request does not specify one.
func NewTallyServer(s store.Store, p events.Publisher, leaseTTL time.Duration) *TallyServer {
	if leaseTTL <= 0 {
		leaseTTL = model.DefaultLeaseTTL
	}
	return &TallyServer{
		store:     s,
		publisher: p,
		sseHub:    newSSEHub(),
		presence:  presence.New(),
		leaseTTL:  leaseTTL,
	}
}

// PresenceTracker exposes the documenter activity tracker so the serve
// command can run its reaper.
func (s *TallyServer) PresenceTracker() *presence.Tracker {
	return s.presence
}

// recordAndPublish persists an event to the store and fans its envelope out
// to NATS, the SSE hub, and the presence roster. Every leg is best-effort;
// failures are logged but do not block the caller.
func (s *TallyServer) recordAndPublish(ctx context.Context, topic, refID, actor string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal event", "topic", topic, "ref_id", refID, "error", err)
		return
	}
	env := events.Envelope{
		Topic:      topic,
		RefID:      refID,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	if err := s.store.RecordEvent(ctx, &model.Event{
		Topic:   topic,
		RefID:   refID,
		Actor:   actor,
		Payload: payload,
	}); err != nil {
		slog.Warn("failed to record event", "topic", topic, "ref_id", refID, "error", err)
	}
	if err := s.publisher.Publish(ctx, env); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "ref_id", refID, "error", err)
	}
	s.sseHub.broadcast(env)

	sessionID := ""
	if env.SessionTopic() || topic == events.TopicProgressSubmitted {
		sessionID = refID
	}
	s.presence.Record(presence.Activity{DocumenterID: actor, Action: topic, SessionID: sessionID})
}

// inputError indicates invalid user input.
// Transport layers map this to 400.
type inputError string

func (e inputError) Error() string { return string(e) }
