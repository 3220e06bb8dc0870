// Package events provides event publishing functionality.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"ticket-validator/internal/models"
	"ticket-validator/internal/observability/metrics"
	"ticket-validator/internal/schema"
)

// messageWriter is the subset of *kafka.Writer used by the publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher publishes validation events to separate Kafka topics.
type Publisher struct {
	writerViolations messageWriter
	writerSummary    messageWriter
	principal        string
	topicViolations  string
	topicSummary     string
	enabled          bool
	metrics          *metrics.Metrics
	schema           *schema.Validator
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers         []string
	TopicViolations string
	TopicSummary    string
	Principal       string
	Enabled         bool

	// Optional. Metrics defaults to metrics.DefaultMetrics; a nil Schema
	// skips outbound schema checks.
	Metrics *metrics.Metrics
	Schema  *schema.Validator
}

// New creates a new Kafka event publisher with separate topics for violation
// and summary events.
func New(cfg *Config) *Publisher {
	// Handle nil config case
	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: metrics.DefaultMetrics,
		}
	}

	m := cfg.Metrics
	if m == nil {
		m = metrics.DefaultMetrics
	}

	p := &Publisher{
		principal:       cfg.Principal,
		topicViolations: cfg.TopicViolations,
		topicSummary:    cfg.TopicSummary,
		metrics:         m,
		schema:          cfg.Schema,
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return p
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
			Transport:    transport,
		}
	}

	p.writerViolations = newWriter(cfg.TopicViolations)
	p.writerSummary = newWriter(cfg.TopicSummary)
	p.enabled = true

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicViolations", cfg.TopicViolations).
		Str("topicSummary", cfg.TopicSummary).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return p
}

// Enabled reports whether events are written to Kafka.
func (p *Publisher) Enabled() bool {
	return p.enabled
}

// PublishViolation publishes a violation event keyed by run ID.
func (p *Publisher) PublishViolation(ctx context.Context, ev models.ViolationEvent) error {
	return p.publish(ctx, p.writerViolations, p.topicViolations, ev.EventType, ev.RunID, ev)
}

// PublishSummary publishes a run summary event keyed by run ID.
func (p *Publisher) PublishSummary(ctx context.Context, ev models.RunSummaryEvent) error {
	return p.publish(ctx, p.writerSummary, p.topicSummary, ev.EventType, ev.RunID, ev)
}

// publish is the internal method that writes to a specific Kafka writer.
func (p *Publisher) publish(ctx context.Context, writer messageWriter, topic, eventType, key string, event any) error {
	start := time.Now()

	if p.schema != nil {
		if err := p.schema.Validate(event); err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("Event rejected by schema")
			p.metrics.RecordSchemaRejection(eventType)
			return fmt.Errorf("schema validation: %w", err)
		}
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// If Kafka is disabled, just log
	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerViolations != nil {
		if e := p.writerViolations.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing violations writer")
			err = e
		}
	}
	if p.writerSummary != nil {
		if e := p.writerSummary.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing summary writer")
			err = e
		}
	}
	return err
}
