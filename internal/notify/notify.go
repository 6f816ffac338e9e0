// Package notify publishes build results to NATS so downstream systems
// (deploy jobs, chat bots) can react to finished documentation builds.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/uktrade/docsite/internal/logfields"
)

// BuildEvent is the JSON payload published after every build.
type BuildEvent struct {
	BuildID     string         `json:"build_id"`
	Outcome     string         `json:"outcome"`
	StartedAt   time.Time      `json:"started_at"`
	DurationMS  int64          `json:"duration_ms"`
	Pages       int            `json:"pages"`
	Assets      int            `json:"assets"`
	Collections map[string]int `json:"collections,omitempty"`
	GitCommit   string         `json:"git_commit,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Publisher delivers build events.
type Publisher interface {
	PublishBuild(ctx context.Context, ev BuildEvent) error
	Close() error
}

// Noop discards events.
type Noop struct{}

func (Noop) PublishBuild(context.Context, BuildEvent) error { return nil }
func (Noop) Close() error                                   { return nil }

// conn is the subset of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSPublisher publishes build events on a NATS subject.
type NATSPublisher struct {
	conn    conn
	subject string
}

var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher connects to url and publishes on subject.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	if url == "" {
		return nil, errors.New("nats url is required")
	}
	if subject == "" {
		return nil, errors.New("nats subject is required")
	}
	nc, err := nats.Connect(url,
		nats.Name("docsite"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("NATS publisher connected", logfields.URL(url), slog.String("subject", subject))
	return &NATSPublisher{conn: nc, subject: subject}, nil
}

// PublishBuild publishes ev and waits for the server to acknowledge the flush.
func (p *NATSPublisher) PublishBuild(ctx context.Context, ev BuildEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	slog.Debug("Published build event", logfields.BuildID(ev.BuildID), slog.String("subject", p.subject))
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
