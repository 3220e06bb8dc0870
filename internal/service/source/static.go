package source

// SampleLines is a small input covering valid, invalid and malformed tickets.
var SampleLines = []string{
	`{"ticketType":"DAY","startDate":"2020-01-01","price":10}`,
	`{“ticketType”:“WEEK”,“startDate”:“2021-03-14”,“price”:20}`,
	`{"ticketType":"BUS","startDate":"2099-01-01","price":3}`,
	`{"ticketType":"WEEK","price":0}`,
	`{"ticketType":"YEAR","startDate":"","price":"100"}`,
	`{"ticketType":"MONTH","startDate":"2019-13-01","price":"abc"}`,
	`{"ticketType":"DAY",`,
}

// Static serves lines from memory. Useful in tests and demos.
type Static struct {
	lines  []string
	next   int
	closed bool
}

// NewStatic returns a source over lines.
func NewStatic(lines []string) *Static {
	return &Static{lines: lines}
}

// Next implements Source.
func (s *Static) Next() (string, bool) {
	if s.closed || s.next >= len(s.lines) {
		return "", false
	}
	line := s.lines[s.next]
	s.next++
	return line, true
}

// Err implements Source.
func (s *Static) Err() error { return nil }

// Close implements Source. Idempotent.
func (s *Static) Close() error {
	s.closed = true
	return nil
}
