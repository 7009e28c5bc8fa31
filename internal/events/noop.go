package events

import (
	"context"
	"sync"
)

// NoopPublisher is a Publisher that discards envelopes (used when NATS is
// not configured).
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, env Envelope) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}

// MemoryPublisher records published envelopes in memory for assertions in
// tests.
type MemoryPublisher struct {
	mu        sync.Mutex
	envelopes []Envelope
}

func (m *MemoryPublisher) Publish(ctx context.Context, env Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.envelopes = append(m.envelopes, env)
	return nil
}

func (m *MemoryPublisher) Close() error {
	return nil
}

// Envelopes returns a copy of everything published so far.
func (m *MemoryPublisher) Envelopes() []Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Envelope, len(m.envelopes))
	copy(out, m.envelopes)
	return out
}
