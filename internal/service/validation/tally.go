package validation

// ViolationKind names the rule a record violated.
type ViolationKind string

const (
	KindTicketType ViolationKind = "ticket type"
	KindStartDate  ViolationKind = "start date"
	KindPrice      ViolationKind = "price"

	// NoViolations is returned by MostFrequent when nothing was recorded.
	// It is not a member of Kinds.
	NoViolations ViolationKind = "No violations"
)

// Kinds lists every violation kind in rule evaluation order.
var Kinds = []ViolationKind{KindTicketType, KindStartDate, KindPrice}

// Entry is one row of a tally.
type Entry struct {
	Kind  ViolationKind `json:"kind"`
	Count int           `json:"count"`
}

// Tally counts violations per kind for a single run.
// Counts only grow. Kinds are remembered in the order they were first seen.
// Not safe for concurrent use.
type Tally struct {
	counts map[ViolationKind]int
	order  []ViolationKind
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{counts: make(map[ViolationKind]int)}
}

// Record increments the count for kind.
func (t *Tally) Record(kind ViolationKind) {
	if t.counts == nil {
		t.counts = make(map[ViolationKind]int)
	}
	if _, seen := t.counts[kind]; !seen {
		t.order = append(t.order, kind)
	}
	t.counts[kind]++
}

// Count returns how many times kind was recorded.
func (t *Tally) Count(kind ViolationKind) int {
	return t.counts[kind]
}

// Total returns the number of violations recorded across all kinds.
func (t *Tally) Total() int {
	total := 0
	for _, n := range t.counts {
		total += n
	}
	return total
}

// Distinct returns the number of different kinds recorded.
func (t *Tally) Distinct() int {
	return len(t.order)
}

// Entries returns the recorded kinds with their counts in first-seen order.
func (t *Tally) Entries() []Entry {
	entries := make([]Entry, 0, len(t.order))
	for _, kind := range t.order {
		entries = append(entries, Entry{Kind: kind, Count: t.counts[kind]})
	}
	return entries
}

// MostFrequent returns the kind with the highest count, or NoViolations when
// the tally is empty. On a tie the kind seen first wins; callers should not
// rely on that beyond display purposes.
func (t *Tally) MostFrequent() ViolationKind {
	best := NoViolations
	bestCount := 0
	for _, kind := range t.order {
		if n := t.counts[kind]; n > bestCount {
			best, bestCount = kind, n
		}
	}
	return best
}
