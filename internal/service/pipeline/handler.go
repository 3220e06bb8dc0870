// Package pipeline provides the run handler that coordinates the line source,
// the validation run and the event publisher.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ticket-validator/internal/models"
	"ticket-validator/internal/observability/logging"
	"ticket-validator/internal/observability/metrics"
	"ticket-validator/internal/record"
	"ticket-validator/internal/service/recordid"
	"ticket-validator/internal/service/source"
	"ticket-validator/internal/service/validation"
)

// Publisher receives the events produced by a run.
type Publisher interface {
	PublishViolation(ctx context.Context, ev models.ViolationEvent) error
	PublishSummary(ctx context.Context, ev models.RunSummaryEvent) error
}

// Handler drives validation runs. Each call to Run is one independent run;
// lines within a run are processed strictly one after another.
type Handler struct {
	publisher Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
	opts      []validation.Option
}

// NewHandler creates a handler. A nil publisher drops events; nil metrics
// uses metrics.DefaultMetrics. opts are passed to every run's validator.
func NewHandler(publisher Publisher, m *metrics.Metrics, opts ...validation.Option) *Handler {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Handler{
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
		opts:      opts,
	}
}

// SetClock overrides the clock used for event timestamps.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

// Run consumes src until it is exhausted and returns the run summary.
//
// Per-record problems never stop the run. A read error from src or a
// cancelled ctx aborts it; the partial summary is returned with the error.
func (h *Handler) Run(ctx context.Context, runID string, src source.Source) (validation.Summary, error) {
	logger := logging.WithRun("pipeline", runID)
	run := validation.NewRun(runID, h.opts...)
	ids := recordid.New()

	start := time.Now()
	h.metrics.RecordRunStart()
	logger.Info().Msg("Validation run started")

	for {
		if err := ctx.Err(); err != nil {
			return h.abort(ctx, logger, run, start, err)
		}

		line, ok := src.Next()
		if !ok {
			break
		}

		recordID := ids.Next(runID)
		lineNo := int(ids.Count())
		if err := h.processLine(ctx, run, recordID, lineNo, line); err != nil {
			return h.abort(ctx, logger, run, start, err)
		}
	}

	if err := src.Err(); err != nil {
		return h.abort(ctx, logger, run, start, err)
	}

	summary := run.Finish()
	h.metrics.RecordRunEnd(summary.State.String(), time.Since(start).Seconds())
	h.publishSummary(ctx, logger, summary)

	logger.Info().
		Int("processed", summary.Processed).
		Int("valid", summary.Valid).
		Int("malformed", summary.Malformed).
		Str("mostFrequent", string(summary.MostFrequent)).
		Dur("duration", time.Since(start)).
		Msg("Validation run finished")

	return summary, nil
}

// processLine validates one line. Only errors that must stop the run are
// returned.
func (h *Handler) processLine(ctx context.Context, run *validation.Run, recordID string, lineNo int, line string) error {
	out, err := run.Process(line)
	if err != nil {
		if errors.Is(err, record.ErrMalformedRecord) {
			h.metrics.RecordRecord(metrics.ResultMalformed)
			return nil
		}
		return fmt.Errorf("process %s: %w", recordID, err)
	}

	if out.Valid {
		h.metrics.RecordRecord(metrics.ResultValid)
		return nil
	}

	h.metrics.RecordRecord(metrics.ResultInvalid)
	recLogger := logging.WithRecord(run.ID(), recordID, lineNo)
	for _, v := range out.Violations {
		h.metrics.RecordViolation(string(v.Kind))

		if h.publisher == nil {
			continue
		}
		ev := models.ViolationEvent{
			EventType: models.EventTypeViolation,
			RunID:     run.ID(),
			RecordID:  recordID,
			Line:      lineNo,
			Kind:      string(v.Kind),
			Detail:    v.Detail,
			Timestamp: h.now().UnixMilli(),
		}
		if err := h.publisher.PublishViolation(ctx, ev); err != nil {
			recLogger.Error().Err(err).Str("violation", string(v.Kind)).Msg("Failed to publish violation")
		}
	}
	recLogger.Debug().
		Int("violations", len(out.Violations)).
		Msg("Record invalid")
	return nil
}

func (h *Handler) abort(ctx context.Context, logger zerolog.Logger, run *validation.Run, start time.Time, cause error) (validation.Summary, error) {
	summary := run.Abort(cause)
	h.metrics.RecordRunEnd(summary.State.String(), time.Since(start).Seconds())

	logger.Error().
		Err(cause).
		Int("processed", summary.Processed).
		Msg("Validation run aborted")

	// The summary topic still learns about the partial run; a cancelled
	// context gets a fresh one so the event can go out.
	pubCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		pubCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	h.publishSummary(pubCtx, logger, summary)

	return summary, cause
}

func (h *Handler) publishSummary(ctx context.Context, logger zerolog.Logger, s validation.Summary) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishSummary(ctx, SummaryEvent(s, h.now())); err != nil {
		logger.Error().Err(err).Msg("Failed to publish run summary")
	}
}

// SummaryEvent converts a run summary into its wire event.
func SummaryEvent(s validation.Summary, at time.Time) models.RunSummaryEvent {
	counts := make([]models.ViolationCount, 0, len(s.Violations))
	for _, e := range s.Violations {
		counts = append(counts, models.ViolationCount{Kind: string(e.Kind), Count: e.Count})
	}
	return models.RunSummaryEvent{
		EventType:              models.EventTypeSummary,
		RunID:                  s.RunID,
		State:                  s.State.String(),
		Processed:              s.Processed,
		Valid:                  s.Valid,
		Invalid:                s.Invalid,
		Malformed:              s.Malformed,
		DistinctViolationKinds: s.DistinctViolationKinds,
		Violations:             counts,
		MostFrequent:           string(s.MostFrequent),
		Timestamp:              at.UnixMilli(),
	}
}
