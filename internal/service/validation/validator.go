// Package validation applies the ticket rules to decoded records and keeps
// the per-run violation tally.
package validation

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ticket-validator/internal/record"
)

// Violation is a single rule failure for a single record.
type Violation struct {
	Kind   ViolationKind `json:"kind"`
	Detail string        `json:"detail"`
}

// Outcome is the result of validating one record.
type Outcome struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations,omitempty"`
}

// Kinds returns the violated kinds in rule order.
func (o Outcome) Kinds() []ViolationKind {
	kinds := make([]ViolationKind, 0, len(o.Violations))
	for _, v := range o.Violations {
		kinds = append(kinds, v.Kind)
	}
	return kinds
}

// Has reports whether kind was violated.
func (o Outcome) Has(kind ViolationKind) bool {
	for _, v := range o.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock sets the time source used to decide whether a start date is in
// the future.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// WithLogger sets the logger that receives violation notices.
func WithLogger(logger zerolog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// Validator runs every rule against a record and records failures in a tally.
type Validator struct {
	tally  *Tally
	now    func() time.Time
	logger zerolog.Logger
}

// NewValidator creates a validator that records violations into tally.
func NewValidator(tally *Tally, opts ...Option) *Validator {
	v := &Validator{
		tally: tally,
		now:   time.Now,
		logger: log.With().
			Str("component", "validator").
			Logger(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate evaluates all rules, without stopping at the first failure, and
// increments the tally once per failed rule.
func (v *Validator) Validate(rec record.Record) Outcome {
	today := dateOnly(v.now())
	out := Outcome{Valid: true}

	for _, rule := range Rules {
		value, present := rec.Get(rule.Field)
		err := rule.Check(value, present, today)
		if err == nil {
			continue
		}

		out.Valid = false
		out.Violations = append(out.Violations, Violation{Kind: rule.Kind, Detail: err.Error()})
		v.tally.Record(rule.Kind)

		v.logger.Warn().
			Str("violation", string(rule.Kind)).
			Str("field", rule.Field).
			Str("detail", err.Error()).
			Msg("Violation")
	}

	return out
}
