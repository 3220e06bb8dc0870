package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"ticket-validator/internal/config"
	"ticket-validator/internal/events"
	"ticket-validator/internal/observability/logging"
	"ticket-validator/internal/observability/metrics"
	"ticket-validator/internal/schema"
	"ticket-validator/internal/service/pipeline"
	"ticket-validator/internal/service/source"
	"ticket-validator/internal/service/validation"
)

// ErrNoRun is returned by LastSummary before any run has completed.
var ErrNoRun = errors.New("no validation run completed")

// Application holds process-wide state for the validator.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Configuration

	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Publisher *events.Publisher
	Schema    *schema.Validator

	handler *pipeline.Handler

	mu      sync.RWMutex
	last    *validation.Summary
	running bool
}

// New constructs an Application from cfg. opts are passed to every run's
// validator.
func New(cfg *config.Configuration, opts ...validation.Option) (*Application, error) {
	a := &Application{Cfg: cfg}
	a.setupLogger()

	appLogger := a.Logger.With().
		Str("method", "New").
		Logger()

	sv, err := schema.New()
	if err != nil {
		return nil, fmt.Errorf("compile event schema: %w", err)
	}
	a.Schema = sv

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = metrics.NewMetrics(a.Registry)

	a.Publisher = events.New(&events.Config{
		Enabled:         cfg.Kafka.Enabled,
		Brokers:         cfg.Kafka.Brokers,
		TopicViolations: cfg.Kafka.TopicViolations,
		TopicSummary:    cfg.Kafka.TopicSummary,
		Principal:       cfg.Kafka.Principal,
		Metrics:         a.Metrics,
		Schema:          a.Schema,
	})
	a.handler = pipeline.NewHandler(a.Publisher, a.Metrics, opts...)

	appLogger.Info().
		Bool("kafka", a.Publisher.Enabled()).
		Msg("Ticket validator application created")
	return a, nil
}

// setupLogger configures zerolog from the observability settings.
func (a *Application) setupLogger() {
	logging.Init(logging.Config{
		Level:  a.Cfg.Observability.LogLevel,
		Format: a.Cfg.Observability.LogFormat,
	})

	a.Logger = logging.Logger().With().
		Str("service", a.Cfg.Service.Name).
		Str("component", "application").
		Logger()

	a.Logger.Debug().
		Str("logLevel", zerolog.GlobalLevel().String()).
		Str("logFormat", a.Cfg.Observability.LogFormat).
		Msg("Logger setup completed")
}

// Start records the startup time.
func (a *Application) Start() error {
	a.StartupTime = time.Now().UTC()
	a.Logger.Info().
		Str("method", "Start").
		Time("startupTime", a.StartupTime).
		Msg("Ticket validator starting")
	return nil
}

// Run validates the configured input and returns its summary. Opening the
// input is fatal: a missing file fails before any record is processed.
func (a *Application) Run(ctx context.Context) (validation.Summary, error) {
	src, err := source.Open(a.Cfg.Input.Path, a.Cfg.Input.MaxLineBytes)
	if err != nil {
		a.Logger.Error().Err(err).Str("input", a.Cfg.Input.Path).Msg("Failed to open input")
		return validation.Summary{}, err
	}
	defer src.Close()

	return a.RunSource(ctx, src)
}

// RunSource validates the lines of src under a fresh run ID.
func (a *Application) RunSource(ctx context.Context, src source.Source) (validation.Summary, error) {
	a.mu.Lock()
	a.running = true
	a.mu.Unlock()

	runID := uuid.NewString()
	summary, err := a.handler.Run(ctx, runID, src)

	a.mu.Lock()
	a.running = false
	a.last = &summary
	a.mu.Unlock()

	return summary, err
}

// LastSummary returns the summary of the most recent run.
func (a *Application) LastSummary() (validation.Summary, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.last == nil {
		return validation.Summary{}, ErrNoRun
	}
	return *a.last, nil
}

// Running reports whether a run is in progress.
func (a *Application) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

// Shutdown flushes and closes the publisher.
func (a *Application) Shutdown() {
	a.Logger.Info().Str("method", "Shutdown").Msg("Ticket validator shutting down")
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close publisher")
		}
	}
}
