package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alfredjeanlab/tally/internal/events"
)

const (
	// sseBacklogSize is the number of recent events kept in memory for
	// Last-Event-ID reconnection support.
	sseBacklogSize = 1000

	// sseKeepaliveInterval is how often keepalive comments are sent to
	// prevent connection timeouts.
	sseKeepaliveInterval = 15 * time.Second

	// sseRetryMillis is the reconnect delay hint sent when the stream opens.
	sseRetryMillis = 3000
)

// streamEvent is one entry in the backlog, an envelope stamped with the
// hub's own sequence number for Last-Event-ID replay.
type streamEvent struct {
	ID    uint64
	Topic string
	RefID string
	Actor string
	Data  []byte // pre-marshaled frame body
}

// streamFrame is the JSON body of each SSE data line. The topic travels in
// the SSE event field, so the body carries only the envelope remainder.
type streamFrame struct {
	RefID   string          `json:"ref_id"`
	Actor   string          `json:"actor,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// streamFilter selects which envelopes a client receives. It can be an exact
// topic ("tally.goal.mastered"), a topic family ("tally.session" delivers
// every tally.session.* event), or a trailing single-segment wildcard
// ("tally.session.*"). A ref parameter additionally pins the stream to one
// session or goal.
type streamFilter struct {
	topics []string
	refID  string
}

func (f streamFilter) matches(evt *streamEvent) bool {
	if f.refID != "" && evt.RefID != f.refID {
		return false
	}
	if len(f.topics) == 0 {
		return true
	}
	for _, t := range f.topics {
		if topicMatches(t, evt.Topic) {
			return true
		}
	}
	return false
}

// topicMatches reports whether a dot-separated topic satisfies a filter.
// A filter matches its exact topic, any topic it is a dotted prefix of, or,
// when it ends in ".*", any topic exactly one segment longer.
func topicMatches(filter, topic string) bool {
	if filter == topic {
		return true
	}
	if head, ok := strings.CutSuffix(filter, ".*"); ok {
		rest, ok := strings.CutPrefix(topic, head+".")
		return ok && !strings.Contains(rest, ".")
	}
	return strings.HasPrefix(topic, filter+".")
}

// sseHub fans envelopes from recordAndPublish out to connected SSE clients
// and keeps a bounded backlog for Last-Event-ID reconnection.
type sseHub struct {
	mu      sync.Mutex
	clients map[*sseClient]struct{}
	backlog []streamEvent
	nextID  uint64
}

// sseClient represents a single connected SSE consumer.
type sseClient struct {
	filter streamFilter
	ch     chan *streamEvent
}

func newSSEHub() *sseHub {
	return &sseHub{
		clients: make(map[*sseClient]struct{}),
	}
}

// broadcast appends the envelope to the backlog and delivers it to every
// client whose filter matches.
func (h *sseHub) broadcast(env events.Envelope) {
	data, err := json.Marshal(streamFrame{
		RefID:   env.RefID,
		Actor:   env.Actor,
		Payload: env.Payload,
	})
	if err != nil {
		slog.Warn("failed to marshal stream frame", "topic", env.Topic, "error", err)
		return
	}

	h.mu.Lock()
	h.nextID++
	evt := &streamEvent{
		ID:    h.nextID,
		Topic: env.Topic,
		RefID: env.RefID,
		Actor: env.Actor,
		Data:  data,
	}
	h.backlog = append(h.backlog, *evt)
	if len(h.backlog) > sseBacklogSize {
		h.backlog = h.backlog[len(h.backlog)-sseBacklogSize:]
	}
	for c := range h.clients {
		if c.filter.matches(evt) {
			select {
			case c.ch <- evt:
			default:
				// Drop if client is slow to avoid blocking the publisher.
			}
		}
	}
	h.mu.Unlock()
}

// subscribe registers a new SSE client. Call unsubscribe when done.
func (h *sseHub) subscribe(filter streamFilter) *sseClient {
	c := &sseClient{
		filter: filter,
		ch:     make(chan *streamEvent, 64),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

// unsubscribe removes a client from the hub.
func (h *sseHub) unsubscribe(c *sseClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// replaySince returns backlog events with ID > lastID that pass the filter,
// oldest first. Events that have already rotated out of the backlog are gone;
// callers reconnecting with a very old Last-Event-ID simply resume from what
// remains.
func (h *sseHub) replaySince(lastID uint64, filter streamFilter) []streamEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	var result []streamEvent
	for i := range h.backlog {
		evt := &h.backlog[i]
		if evt.ID > lastID && filter.matches(evt) {
			result = append(result, *evt)
		}
	}
	return result
}

// handleEventStream handles GET /v1/events/stream (SSE endpoint).
// Query parameters: topics (comma-separated topic filters) and ref (pin the
// stream to one session or goal ID).
func (s *TallyServer) handleEventStream(w http.ResponseWriter, r *http.Request) {
	// Ensure response supports flushing (required for SSE).
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	filter := streamFilter{refID: strings.TrimSpace(r.URL.Query().Get("ref"))}
	if q := r.URL.Query().Get("topics"); q != "" {
		for _, t := range strings.Split(q, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				filter.topics = append(filter.topics, t)
			}
		}
	}

	client := s.sseHub.subscribe(filter)
	defer s.sseHub.unsubscribe(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering.
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "retry:%d\n\n", sseRetryMillis)
	flusher.Flush()

	// If the client sent Last-Event-ID, replay the matching backlog.
	if lastIDStr := r.Header.Get("Last-Event-ID"); lastIDStr != "" {
		if lastID, err := strconv.ParseUint(lastIDStr, 10, 64); err == nil {
			for _, evt := range s.sseHub.replaySince(lastID, filter) {
				writeStreamEvent(w, &evt)
			}
			flusher.Flush()
		}
	}

	// Stream events until client disconnects.
	ctx := r.Context()
	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-client.ch:
			writeStreamEvent(w, evt)
			flusher.Flush()
		case <-keepalive.C:
			// Send a comment line as keepalive.
			fmt.Fprintf(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}

// writeStreamEvent writes a single SSE event to the writer.
func writeStreamEvent(w http.ResponseWriter, evt *streamEvent) {
	fmt.Fprintf(w, "id:%d\n", evt.ID)
	fmt.Fprintf(w, "event:%s\n", evt.Topic)
	fmt.Fprintf(w, "data:%s\n\n", evt.Data)
}
