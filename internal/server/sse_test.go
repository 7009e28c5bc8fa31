package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/tally/internal/events"
)

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		filter string
		topic  string
		want   bool
	}{
		{"tally.session.started", "tally.session.started", true},
		{"tally.session.started", "tally.session.renewed", false},
		{"tally.session", "tally.session.started", true},
		{"tally.session", "tally.sessionx.started", false},
		{"tally", "tally.goal.mastered", true},
		{"tally.session.*", "tally.session.started", true},
		{"tally.session.*", "tally.session.started.extra", false},
		{"tally.session.*", "tally.goal.created", false},
		{"tally.goal", "tally.session.started", false},
	}
	for _, tt := range tests {
		if got := topicMatches(tt.filter, tt.topic); got != tt.want {
			t.Errorf("topicMatches(%q, %q) = %v, want %v", tt.filter, tt.topic, got, tt.want)
		}
	}
}

func envelope(topic, refID, actor string) events.Envelope {
	return events.Envelope{Topic: topic, RefID: refID, Actor: actor, Payload: []byte(`{}`)}
}

func TestSSEHubBroadcast(t *testing.T) {
	hub := newSSEHub()

	all := hub.subscribe(streamFilter{})
	defer hub.unsubscribe(all)
	sessionsOnly := hub.subscribe(streamFilter{topics: []string{"tally.session.*"}})
	defer hub.unsubscribe(sessionsOnly)
	oneSession := hub.subscribe(streamFilter{refID: "sn-2"})
	defer hub.unsubscribe(oneSession)

	hub.broadcast(envelope(events.TopicSessionStarted, "sn-1", "doc-alice"))
	hub.broadcast(envelope(events.TopicSessionStarted, "sn-2", "doc-bob"))
	hub.broadcast(envelope(events.TopicGoalCreated, "gl-1", "doc-alice"))

	if got := len(all.ch); got != 3 {
		t.Errorf("unfiltered client expected 3 events, got %d", got)
	}
	if got := len(sessionsOnly.ch); got != 2 {
		t.Errorf("topic-filtered client expected 2 events, got %d", got)
	}
	if got := len(oneSession.ch); got != 1 {
		t.Errorf("ref-filtered client expected 1 event, got %d", got)
	}
	evt := <-oneSession.ch
	if evt.RefID != "sn-2" || evt.Actor != "doc-bob" {
		t.Errorf("unexpected event %q by %q", evt.RefID, evt.Actor)
	}
}

func TestSSEHubReplaySince(t *testing.T) {
	hub := newSSEHub()

	hub.broadcast(envelope(events.TopicSessionStarted, "sn-1", "doc-alice"))
	hub.broadcast(envelope(events.TopicSessionRenewed, "sn-1", "doc-alice"))
	hub.broadcast(envelope(events.TopicGoalCreated, "gl-1", "doc-bob"))

	replayed := hub.replaySince(1, streamFilter{})
	if len(replayed) != 2 {
		t.Fatalf("expected 2 replayed events, got %d", len(replayed))
	}
	if replayed[0].Topic != events.TopicSessionRenewed || replayed[1].Topic != events.TopicGoalCreated {
		t.Errorf("unexpected replay order: %q, %q", replayed[0].Topic, replayed[1].Topic)
	}

	// The filter applies during replay too, not just to live events.
	filtered := hub.replaySince(0, streamFilter{topics: []string{"tally.session.*"}})
	if len(filtered) != 2 {
		t.Fatalf("expected 2 session events, got %d", len(filtered))
	}

	if got := hub.replaySince(3, streamFilter{}); len(got) != 0 {
		t.Errorf("expected no events past the newest ID, got %d", len(got))
	}
}

func TestSSEHubBacklogTrims(t *testing.T) {
	hub := newSSEHub()
	for range sseBacklogSize + 10 {
		hub.broadcast(envelope(events.TopicSessionStarted, "sn-1", "doc-alice"))
	}

	replayed := hub.replaySince(0, streamFilter{})
	if len(replayed) != sseBacklogSize {
		t.Fatalf("expected %d buffered events, got %d", sseBacklogSize, len(replayed))
	}
	if replayed[0].ID != 11 {
		t.Errorf("oldest retained event should be 11, got %d", replayed[0].ID)
	}
}

func TestHandleEventStream(t *testing.T) {
	srv, _ := newTestServer(t)

	// Seed one event into the backlog before the client connects.
	srv.sseHub.broadcast(envelope(events.TopicSessionStarted, "sn-1", "doc-alice"))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/v1/events/stream?topics=tally.session.*", nil).WithContext(ctx)
	req.Header.Set("Last-Event-ID", "0")
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.handleEventStream(w, req)
	}()

	// Let the handler subscribe, then push one live event and one that the
	// filter should drop.
	time.Sleep(20 * time.Millisecond)
	srv.sseHub.broadcast(envelope(events.TopicSessionRenewed, "sn-1", "doc-alice"))
	srv.sseHub.broadcast(envelope(events.TopicGoalCreated, "gl-1", "doc-alice"))
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(body, "retry:") {
		t.Errorf("reconnect hint missing from stream:\n%s", body)
	}
	if !strings.Contains(body, "event:"+events.TopicSessionStarted) {
		t.Errorf("replayed event missing from stream:\n%s", body)
	}
	if !strings.Contains(body, "event:"+events.TopicSessionRenewed) {
		t.Errorf("live event missing from stream:\n%s", body)
	}
	if !strings.Contains(body, `"ref_id":"sn-1"`) {
		t.Errorf("frame body missing ref_id:\n%s", body)
	}
	if strings.Contains(body, "event:"+events.TopicGoalCreated) {
		t.Errorf("filtered topic leaked into stream:\n%s", body)
	}
}

func TestHandleEventStreamRefFilter(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/v1/events/stream?ref=sn-1", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.handleEventStream(w, req)
	}()

	time.Sleep(20 * time.Millisecond)
	srv.sseHub.broadcast(envelope(events.TopicSessionRenewed, "sn-1", "doc-alice"))
	srv.sseHub.broadcast(envelope(events.TopicSessionRenewed, "sn-2", "doc-bob"))
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, `"ref_id":"sn-1"`) {
		t.Errorf("pinned session missing from stream:\n%s", body)
	}
	if strings.Contains(body, `"ref_id":"sn-2"`) {
		t.Errorf("other session leaked into pinned stream:\n%s", body)
	}
}
