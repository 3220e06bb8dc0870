package validation

import (
	"errors"
	"fmt"
)

// State represents the lifecycle state of a validation run.
type State int

const (
	// StateOpen - Run accepts lines.
	StateOpen State = iota
	// StateFinished - Input was exhausted and the summary is sealed.
	StateFinished
	// StateAborted - Input could not be read to the end. Terminal.
	StateAborted
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateFinished:
		return "FINISHED"
	case StateAborted:
		return "ABORTED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true if the state is terminal (FINISHED or ABORTED).
func (s State) IsTerminal() bool {
	return s == StateFinished || s == StateAborted
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ErrRunFinished is returned when a line is offered to a sealed run.
var ErrRunFinished = errors.New("validation run is finished")

// lifecycle enforces the run state machine:
//
//	OPEN → FINISHED
//	  │
//	  └──→ ABORTED
//
// Terminal states never go back to OPEN; a new run needs a new Run value.
type lifecycle struct {
	state State
}

// accept returns nil while lines may still be processed.
func (l *lifecycle) accept() error {
	switch l.state {
	case StateOpen:
		return nil
	case StateFinished, StateAborted:
		return ErrRunFinished
	default:
		return fmt.Errorf("unexpected state: %v", l.state)
	}
}

// finish moves an open run to FINISHED. Returns false if already terminal.
func (l *lifecycle) finish() bool {
	if l.state.IsTerminal() {
		return false
	}
	l.state = StateFinished
	return true
}

// abort moves an open run to ABORTED. Returns false if already terminal.
func (l *lifecycle) abort() bool {
	if l.state.IsTerminal() {
		return false
	}
	l.state = StateAborted
	return true
}
