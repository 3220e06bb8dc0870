// Package source defines the line sources that feed a validation run.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// DefaultMaxLineBytes bounds a single input line.
const DefaultMaxLineBytes = 1024 * 1024

// ErrSourceNotFound is returned when the requested input does not exist.
var ErrSourceNotFound = errors.New("input not found")

// Source produces a finite, non-restartable sequence of lines.
type Source interface {
	// Next returns the next line. ok is false once the input is exhausted
	// or a read error occurred; check Err afterwards.
	Next() (line string, ok bool)

	// Err returns the first read error, if any.
	Err() error

	// Close releases resources.
	Close() error
}

// Scanner reads newline-delimited lines from an io.Reader.
type Scanner struct {
	name    string
	scanner *bufio.Scanner
	closer  io.Closer
}

// NewReader returns a Scanner over r. A maxLineBytes of zero or less uses
// DefaultMaxLineBytes.
func NewReader(name string, r io.Reader, maxLineBytes int) *Scanner {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	initial := 64 * 1024
	if maxLineBytes < initial {
		initial = maxLineBytes
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, initial), maxLineBytes)

	s := &Scanner{name: name, scanner: sc}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Open opens path for reading. The path "-" reads standard input, which is
// never closed by the Scanner.
func Open(path string, maxLineBytes int) (*Scanner, error) {
	if path == "-" {
		return NewReader("stdin", io.NopCloser(os.Stdin), maxLineBytes), nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open input %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat input %s: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, path)
	}
	return NewReader(path, f, maxLineBytes), nil
}

// Name identifies the input in logs.
func (s *Scanner) Name() string { return s.name }

// Next implements Source.
func (s *Scanner) Next() (string, bool) {
	if !s.scanner.Scan() {
		return "", false
	}
	return s.scanner.Text(), true
}

// Err implements Source.
func (s *Scanner) Err() error {
	if err := s.scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", s.name, err)
	}
	return nil
}

// Close implements Source.
func (s *Scanner) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
