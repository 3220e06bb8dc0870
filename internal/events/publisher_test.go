package events

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"

	"ticket-validator/internal/models"
	"ticket-validator/internal/observability/metrics"
	"ticket-validator/internal/schema"
)

// fakeWriter records messages instead of talking to a broker.
type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func violationEvent() models.ViolationEvent {
	return models.ViolationEvent{
		EventType: models.EventTypeViolation,
		RunID:     "run-1",
		RecordID:  "run-1-rec-2",
		Line:      2,
		Kind:      "price",
		Detail:    "price must not be zero",
		Timestamp: 1718458200000,
	}
}

func summaryEvent() models.RunSummaryEvent {
	return models.RunSummaryEvent{
		EventType:    models.EventTypeSummary,
		RunID:        "run-1",
		State:        "FINISHED",
		Processed:    2,
		Valid:        1,
		Invalid:      1,
		Violations:   []models.ViolationCount{{Kind: "price", Count: 1}},
		MostFrequent: "price",
		Timestamp:    1718458200000,
	}
}

func TestNew_DisabledMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"disabled", &Config{Enabled: false, Brokers: []string{"localhost:9092"}}},
		{"no brokers", &Config{Enabled: true, Brokers: []string{}}},
		{"empty brokers", &Config{Enabled: true, Brokers: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg)
			if p == nil {
				t.Fatal("expected non-nil publisher")
			}
			if p.Enabled() {
				t.Error("expected publisher to be disabled")
			}
			if p.writerViolations != nil {
				t.Error("expected nil violations writer when disabled")
			}
			if p.writerSummary != nil {
				t.Error("expected nil summary writer when disabled")
			}
		})
	}
}

func TestNew_ConfigValues(t *testing.T) {
	cfg := &Config{
		Enabled:         false,
		Brokers:         []string{"localhost:9092"},
		TopicViolations: "test.violations",
		TopicSummary:    "test.summary",
		Principal:       "test-principal",
	}

	p := New(cfg)

	if p.principal != "test-principal" {
		t.Errorf("expected principal 'test-principal', got %s", p.principal)
	}
	if p.topicViolations != "test.violations" {
		t.Errorf("expected topic violations 'test.violations', got %s", p.topicViolations)
	}
	if p.topicSummary != "test.summary" {
		t.Errorf("expected topic summary 'test.summary', got %s", p.topicSummary)
	}
}

func TestNew_EnabledCreatesWriters(t *testing.T) {
	p := New(&Config{
		Enabled:         true,
		Brokers:         []string{"localhost:9092"},
		TopicViolations: "test.violations",
		TopicSummary:    "test.summary",
		Metrics:         metrics.NewMetrics(nil),
	})
	defer p.Close()

	if !p.Enabled() {
		t.Fatal("expected publisher to be enabled")
	}
	w, ok := p.writerViolations.(*kafka.Writer)
	if !ok {
		t.Fatalf("expected *kafka.Writer, got %T", p.writerViolations)
	}
	if w.Topic != "test.violations" {
		t.Errorf("expected topic 'test.violations', got %s", w.Topic)
	}
}

func TestPublisher_Disabled_LogOnly(t *testing.T) {
	m := metrics.NewMetrics(nil)
	p := New(&Config{Enabled: false, TopicViolations: "v", TopicSummary: "s", Metrics: m})

	if err := p.PublishViolation(context.Background(), violationEvent()); err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
	if err := p.PublishSummary(context.Background(), summaryEvent()); err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}

	if got := testutil.ToFloat64(m.KafkaPublishTotal.WithLabelValues("v", models.EventTypeViolation)); got != 1 {
		t.Errorf("expected 1 recorded publish, got %v", got)
	}
}

func TestPublisher_WritesMessages(t *testing.T) {
	violations, summary := &fakeWriter{}, &fakeWriter{}
	p := &Publisher{
		writerViolations: violations,
		writerSummary:    summary,
		principal:        "svc",
		topicViolations:  "v",
		topicSummary:     "s",
		enabled:          true,
		metrics:          metrics.NewMetrics(nil),
	}

	if err := p.PublishViolation(context.Background(), violationEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.PublishSummary(context.Background(), summaryEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(violations.messages) != 1 {
		t.Fatalf("expected 1 violation message, got %d", len(violations.messages))
	}
	msg := violations.messages[0]
	if string(msg.Key) != "run-1" {
		t.Errorf("expected key 'run-1', got %s", msg.Key)
	}
	if string(msg.Headers[0].Value) != models.EventTypeViolation {
		t.Errorf("expected eventType header %s, got %s", models.EventTypeViolation, msg.Headers[0].Value)
	}
	if string(msg.Headers[1].Value) != "svc" {
		t.Errorf("expected principal header 'svc', got %s", msg.Headers[1].Value)
	}
	if len(summary.messages) != 1 {
		t.Errorf("expected 1 summary message, got %d", len(summary.messages))
	}
}

func TestPublisher_WriteError(t *testing.T) {
	m := metrics.NewMetrics(nil)
	p := &Publisher{
		writerViolations: &fakeWriter{err: errors.New("broker down")},
		topicViolations:  "v",
		enabled:          true,
		metrics:          m,
	}

	if err := p.PublishViolation(context.Background(), violationEvent()); err == nil {
		t.Error("expected write error")
	}
	if got := testutil.ToFloat64(m.KafkaPublishErrors.WithLabelValues("v", models.EventTypeViolation)); got != 1 {
		t.Errorf("expected 1 publish error, got %v", got)
	}
}

func TestPublisher_SchemaRejection(t *testing.T) {
	sv, err := schema.New()
	if err != nil {
		t.Fatalf("schema.New failed: %v", err)
	}
	m := metrics.NewMetrics(nil)
	w := &fakeWriter{}
	p := &Publisher{
		writerViolations: w,
		topicViolations:  "v",
		enabled:          true,
		metrics:          m,
		schema:           sv,
	}

	bad := violationEvent()
	bad.Kind = "colour"
	if err := p.PublishViolation(context.Background(), bad); err == nil {
		t.Error("expected schema error")
	}
	if len(w.messages) != 0 {
		t.Errorf("expected rejected event not to be written, got %d messages", len(w.messages))
	}
	if got := testutil.ToFloat64(m.SchemaRejections.WithLabelValues(models.EventTypeViolation)); got != 1 {
		t.Errorf("expected 1 schema rejection, got %v", got)
	}

	if err := p.PublishViolation(context.Background(), violationEvent()); err != nil {
		t.Errorf("expected valid event to pass, got %v", err)
	}
}

func TestPublisher_Close(t *testing.T) {
	violations, summary := &fakeWriter{}, &fakeWriter{}
	p := &Publisher{writerViolations: violations, writerSummary: summary}

	if err := p.Close(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !violations.closed || !summary.closed {
		t.Error("expected both writers to be closed")
	}
}

func TestPublisher_Close_NoWriters(t *testing.T) {
	p := New(&Config{Enabled: false})

	if err := p.Close(); err != nil {
		t.Errorf("expected no error closing disabled publisher, got %v", err)
	}
}
