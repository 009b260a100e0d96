// Package kafka publishes incident events with segmentio/kafka-go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/riaar-assistant/internal/domain"
	"github.com/couchcryptid/riaar-assistant/internal/observability"
)

const (
	defaultMaxAttempts = 3
	initialBackoff     = 200 * time.Millisecond
	maxBackoff         = 2 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces one message per created incident.
// It implements domain.IncidentPublisher.
type Publisher struct {
	writer      messageWriter
	maxAttempts int
	backoff     time.Duration
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewPublisher creates a producer for topic. Messages are keyed by incident id.
func NewPublisher(brokers []string, topic string, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		MaxAttempts:            1,
	}
	return newPublisher(w, metrics, logger)
}

func newPublisher(w messageWriter, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	return &Publisher{
		writer:      w,
		maxAttempts: defaultMaxAttempts,
		backoff:     initialBackoff,
		metrics:     metrics,
		logger:      logger,
	}
}

// Publish writes inc, retrying with exponential backoff. It gives up early
// when ctx ends.
func (p *Publisher) Publish(ctx context.Context, inc domain.Incident) error {
	msg, err := serializeToMessage(inc)
	if err != nil {
		p.metrics.IncidentEvents.WithLabelValues("failed").Inc()
		return err
	}

	backoff := p.backoff
	for attempt := 1; ; attempt++ {
		err = p.writer.WriteMessages(ctx, msg)
		if err == nil {
			p.metrics.IncidentEvents.WithLabelValues("published").Inc()
			return nil
		}
		if attempt >= p.maxAttempts {
			break
		}
		p.logger.Warn("incident publish failed, retrying",
			"id", inc.ID, "attempt", attempt, "backoff", backoff, "error", err)
		if !sleepWithContext(ctx, backoff) {
			err = ctx.Err()
			break
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}

	p.metrics.IncidentEvents.WithLabelValues("failed").Inc()
	return fmt.Errorf("publish incident %s: %w", inc.ID, err)
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an Incident into a Kafka message.
func serializeToMessage(inc domain.Incident) (kafkago.Message, error) {
	data, err := json.Marshal(inc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize incident: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(inc.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "severity", Value: []byte(inc.Severity)},
			{Key: "reported_at", Value: []byte(inc.ReportedAt.Format(time.RFC3339))},
		},
	}, nil
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
