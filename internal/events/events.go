// Package events publishes domain events onto the DOMAIN_EVENTS JetStream
// stream, adapted from the teacher's packages/go-core/natsclient. The
// teacher's cdc-worker derives these events from Postgres WAL via
// pglogrepl; DroneWatch has a single write path (the Ingest service), so
// it publishes events directly from application code after a committed
// write rather than tailing the replication log — the same destination
// stream and subject convention, a simpler source.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	// StreamDomainEvents is the durable stream carrying every domain event,
	// matching the teacher's natsclient.StreamDomainEvents name so an
	// operator already watching that stream sees DroneWatch's events too.
	StreamDomainEvents = "DOMAIN_EVENTS"

	SubjectIncidentCreated = "DOMAIN_EVENTS.incident.created"
	SubjectIncidentMerged  = "DOMAIN_EVENTS.incident.merged"

	subjectWildcard = "DOMAIN_EVENTS.>"
)

// Client wraps a NATS connection and its JetStream context, mirroring
// go-core/natsclient.Client.
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	log  *zap.Logger
}

// NewClient connects to NATS and initializes a JetStream context.
func NewClient(url string, logger *zap.Logger) (*Client, error) {
	nc, err := nats.Connect(url, nats.RetryOnFailedConnect(true), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	logger.Info("NATS JetStream connected", zap.String("url", url))
	return &Client{conn: nc, js: js, log: logger}, nil
}

// Close drains pending publishes and subscriptions before closing.
func (c *Client) Close() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
	}
}

// ProvisionStreams idempotently ensures the DOMAIN_EVENTS stream exists.
func (c *Client) ProvisionStreams() error {
	_, err := c.js.StreamInfo(StreamDomainEvents)
	if err == nil {
		c.log.Info("NATS stream already exists", zap.String("stream", StreamDomainEvents))
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("stream info: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      StreamDomainEvents,
		Subjects:  []string{subjectWildcard},
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
	}
	if _, err := c.js.AddStream(cfg); err != nil {
		return fmt.Errorf("create stream: %w", err)
	}
	c.log.Info("NATS stream provisioned", zap.String("stream", StreamDomainEvents))
	return nil
}

// IncidentCreated is published once, immediately after a new incident is
// first committed to the store.
type IncidentCreated struct {
	IncidentID    uuid.UUID `json:"incident_id"`
	AssetType     string    `json:"asset_type"`
	Country       string    `json:"country"`
	EvidenceScore int       `json:"evidence_score"`
	OccurredAt    time.Time `json:"occurred_at"`
	PublishedAt   time.Time `json:"published_at"`
}

// IncidentMerged is published whenever a report is attached to an
// already-existing incident instead of creating a new one.
type IncidentMerged struct {
	IncidentID     uuid.UUID `json:"incident_id"`
	NewSourceCount int       `json:"new_source_count"`
	EvidenceScore  int       `json:"evidence_score"`
	PublishedAt    time.Time `json:"published_at"`
}

// Publisher is the narrow interface the Ingest service depends on, so
// tests can supply an in-memory recorder instead of a live NATS client.
type Publisher interface {
	PublishIncidentCreated(e IncidentCreated) error
	PublishIncidentMerged(e IncidentMerged) error
}

func (c *Client) PublishIncidentCreated(e IncidentCreated) error {
	return c.publish(SubjectIncidentCreated, e)
}

func (c *Client) PublishIncidentMerged(e IncidentMerged) error {
	return c.publish(SubjectIncidentMerged, e)
}

func (c *Client) publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event for %s: %w", subject, err)
	}
	if _, err := c.js.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	c.log.Info("event published", zap.String("subject", subject), zap.Int("bytes", len(data)))
	return nil
}
