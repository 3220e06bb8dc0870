// Package models defines the data structures for validation events.
package models

// Event types carried in the eventType field.
const (
	EventTypeViolation = "ticket.validation.violation"
	EventTypeSummary   = "ticket.validation.summary"
)

// ViolationEvent reports a single rule failure for a single record.
type ViolationEvent struct {
	EventType string `json:"eventType"`
	RunID     string `json:"runId"`
	RecordID  string `json:"recordId"`
	Line      int    `json:"line"`
	Kind      string `json:"kind"`
	Detail    string `json:"detail"`
	Timestamp int64  `json:"timestamp"`
}

// ViolationCount is one row of the run tally.
type ViolationCount struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// RunSummaryEvent reports the outcome of a whole run.
type RunSummaryEvent struct {
	EventType              string           `json:"eventType"`
	RunID                  string           `json:"runId"`
	State                  string           `json:"state"`
	Processed              int              `json:"processed"`
	Valid                  int              `json:"valid"`
	Invalid                int              `json:"invalid"`
	Malformed              int              `json:"malformed"`
	DistinctViolationKinds int              `json:"distinctViolationKinds"`
	Violations             []ViolationCount `json:"violations"`
	MostFrequent           string           `json:"mostFrequent"`
	Timestamp              int64            `json:"timestamp"`
}
