package validation

import (
	"fmt"
	"time"

	"ticket-validator/internal/record"
)

// Summary is the result of a validation run.
//
// Valid is the number of records that passed every rule.
// DistinctViolationKinds is the number of different kinds ever seen; the
// legacy report prints it under the "Valid" label.
type Summary struct {
	RunID                  string        `json:"runId"`
	State                  State         `json:"state"`
	Processed              int           `json:"processed"`
	Valid                  int           `json:"valid"`
	Invalid                int           `json:"invalid"`
	Malformed              int           `json:"malformed"`
	DistinctViolationKinds int           `json:"distinctViolationKinds"`
	TotalViolations        int           `json:"totalViolations"`
	Violations             []Entry       `json:"violations"`
	MostFrequent           ViolationKind `json:"mostFrequent"`
	StartedAt              time.Time     `json:"startedAt"`
	FinishedAt             time.Time     `json:"finishedAt"`
	AbortReason            string        `json:"abortReason,omitempty"`
}

// Run holds the state of one pass over an input: counters, the tally and the
// validator feeding it. The zero counters and empty tally set by NewRun are
// never reset. Not safe for concurrent use.
type Run struct {
	id        string
	lc        lifecycle
	tally     *Tally
	validator *Validator

	processed int
	valid     int
	malformed int

	startedAt   time.Time
	finishedAt  time.Time
	abortReason string
}

// NewRun starts an open run. Options are passed to the run's validator.
func NewRun(id string, opts ...Option) *Run {
	tally := NewTally()
	v := NewValidator(tally, opts...)
	return &Run{
		id:        id,
		tally:     tally,
		validator: v,
		startedAt: v.now().UTC(),
	}
}

// ID returns the run ID.
func (r *Run) ID() string { return r.id }

// State returns the current lifecycle state.
func (r *Run) State() State { return r.lc.state }

// Tally returns the run's violation tally.
func (r *Run) Tally() *Tally { return r.tally }

// Process parses and validates one line.
//
// A malformed line is counted as processed and invalid and the returned error
// wraps record.ErrMalformedRecord; it adds nothing to the tally. Lines offered
// after Finish or Abort return ErrRunFinished and are not counted.
func (r *Run) Process(line string) (Outcome, error) {
	if err := r.lc.accept(); err != nil {
		return Outcome{}, err
	}

	r.processed++
	rec, err := record.Parse(line)
	if err != nil {
		r.malformed++
		r.validator.logger.Warn().
			Err(err).
			Int("line", r.processed).
			Msg("Error reading record")
		return Outcome{Valid: false}, err
	}

	out := r.validator.Validate(rec)
	if out.Valid {
		r.valid++
	}
	return out, nil
}

// Finish seals the run and returns its summary. Calling it again returns the
// same summary.
func (r *Run) Finish() Summary {
	if r.lc.finish() {
		r.finishedAt = r.validator.now().UTC()
	}
	return r.Summary()
}

// Abort seals the run because the input could not be read to the end.
func (r *Run) Abort(cause error) Summary {
	if r.lc.abort() {
		r.finishedAt = r.validator.now().UTC()
		if cause != nil {
			r.abortReason = cause.Error()
		}
	}
	return r.Summary()
}

// Summary returns a snapshot of the run. It may be called on an open run.
func (r *Run) Summary() Summary {
	return Summary{
		RunID:                  r.id,
		State:                  r.lc.state,
		Processed:              r.processed,
		Valid:                  r.valid,
		Invalid:                r.processed - r.valid,
		Malformed:              r.malformed,
		DistinctViolationKinds: r.tally.Distinct(),
		TotalViolations:        r.tally.Total(),
		Violations:             r.tally.Entries(),
		MostFrequent:           r.tally.MostFrequent(),
		StartedAt:              r.startedAt,
		FinishedAt:             r.finishedAt,
		AbortReason:            r.abortReason,
	}
}

// String implements fmt.Stringer for log output.
func (s Summary) String() string {
	return fmt.Sprintf("run %s %s: processed=%d valid=%d malformed=%d mostFrequent=%q",
		s.RunID, s.State, s.Processed, s.Valid, s.Malformed, s.MostFrequent)
}
