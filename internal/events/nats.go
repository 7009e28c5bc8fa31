package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes event envelopes to NATS, one subject per topic.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("tally-publisher"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc}, nil
}

// Publish sends the envelope on its topic. A zero OccurredAt is stamped with
// the current time so downstream consumers always see when the change
// happened, not when they received it.
func (p *NATSPublisher) Publish(ctx context.Context, env Envelope) error {
	if env.Topic == "" {
		return fmt.Errorf("envelope has no topic")
	}
	if env.OccurredAt.IsZero() {
		env.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling envelope: %w", err)
	}
	return p.conn.Publish(env.Topic, data)
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
