// Package recordid numbers the records of a validation run.
package recordid

import (
	"fmt"
	"sync/atomic"
)

// Generator hands out record IDs of the form "<runId>-rec-<n>", n starting at 1.
type Generator struct {
	counter uint64
}

// New returns a generator whose first ID ends in 1.
func New() *Generator {
	return &Generator{}
}

// Next returns the next record ID for runID.
func (g *Generator) Next(runID string) string {
	n := atomic.AddUint64(&g.counter, 1)
	return fmt.Sprintf("%s-rec-%d", runID, n)
}

// Count returns how many IDs were handed out, which is also the 1-based line
// number of the most recent record.
func (g *Generator) Count() uint64 {
	return atomic.LoadUint64(&g.counter)
}
