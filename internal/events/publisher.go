// Package events publishes ingestion-completion events to NATS JetStream.
// Publishing is optional and config-gated; downstream consumers (search
// indexers, notification pipelines) subscribe to the configured subject.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/chriserikbarnes/medrecpro/internal/retry"
)

// Config gates the publisher. Disabled publishing is the default.
type Config struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// IngestCompletedEvent is published after each document ingestion, whether
// it succeeded or not.
type IngestCompletedEvent struct {
	RunID        string        `json:"run_id"`
	DocumentGUID string        `json:"document_guid"`
	FileName     string        `json:"file_name"`
	Created      int           `json:"created"`
	Warnings     int           `json:"warnings"`
	Errors       int           `json:"errors"`
	Success      bool          `json:"success"`
	Duration     time.Duration `json:"duration_ns"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Publisher emits ingestion events.
type Publisher interface {
	PublishIngestCompleted(ctx context.Context, event IngestCompletedEvent) error
	Close() error
}

// NoopPublisher discards events. Used when publishing is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishIngestCompleted(context.Context, IngestCompletedEvent) error { return nil }
func (NoopPublisher) Close() error                                                       { return nil }

// NATSPublisher publishes events through JetStream.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
	policy  retry.Policy
}

// NewNATSPublisher connects to the configured NATS server. The config must
// be enabled and carry a URL and subject.
func NewNATSPublisher(cfg Config) (*NATSPublisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("event publishing is disabled")
	}
	if cfg.NATSURL == "" || cfg.Subject == "" {
		return nil, fmt.Errorf("event publishing requires nats_url and subject")
	}

	conn, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	slog.Info("NATS publisher initialized",
		"url", cfg.NATSURL,
		"subject", cfg.Subject)

	return &NATSPublisher{conn: conn, js: js, subject: cfg.Subject, policy: retry.DefaultPolicy()}, nil
}

// PublishIngestCompleted marshals and publishes one event. Transient publish
// failures are retried with backoff; the whole publish is bounded by its own
// timeout so a slow broker never stalls ingestion.
func (p *NATSPublisher) PublishIngestCompleted(ctx context.Context, event IngestCompletedEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	event.Timestamp = time.Now()
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	err = p.policy.Do(ctx, func() error {
		_, err := p.js.Publish(ctx, p.subject, data)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("published ingest event",
		"document_guid", event.DocumentGUID,
		"file", event.FileName,
		"success", event.Success)
	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}

var (
	_ Publisher = (*NATSPublisher)(nil)
	_ Publisher = NoopPublisher{}
)
