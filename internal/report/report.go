// Package report renders validation summaries for the console.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"ticket-validator/internal/service/validation"
)

// Format selects how a summary is rendered.
type Format string

const (
	// FormatText prints clearly labelled counts.
	FormatText Format = "text"
	// FormatJSON prints the summary as indented JSON.
	FormatJSON Format = "json"
	// FormatLegacy prints the three-line console report of earlier releases,
	// where "Total" is the number of valid tickets and "Valid" the number of
	// distinct violation kinds.
	FormatLegacy Format = "legacy"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatText, FormatJSON, FormatLegacy:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want text, json or legacy)", name)
	}
}

// Write renders s to w in the given format.
func Write(w io.Writer, format Format, s validation.Summary) error {
	switch format {
	case FormatText:
		return writeText(w, s)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatLegacy:
		_, err := fmt.Fprintf(w, "\nTotal = %d\nValid = %d\nMost popular violation = %s\n",
			s.Valid, s.DistinctViolationKinds, s.MostFrequent)
		return err
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func writeText(w io.Writer, s validation.Summary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s (%s)\n", s.RunID, s.State)
	fmt.Fprintf(&b, "Records processed       = %d\n", s.Processed)
	fmt.Fprintf(&b, "Valid tickets           = %d\n", s.Valid)
	fmt.Fprintf(&b, "Invalid tickets         = %d\n", s.Invalid)
	fmt.Fprintf(&b, "Malformed records       = %d\n", s.Malformed)
	fmt.Fprintf(&b, "Distinct violation kinds = %d\n", s.DistinctViolationKinds)
	for _, e := range s.Violations {
		fmt.Fprintf(&b, "  %-12s %d\n", e.Kind, e.Count)
	}
	fmt.Fprintf(&b, "Most popular violation  = %s\n", s.MostFrequent)
	if s.AbortReason != "" {
		fmt.Fprintf(&b, "Aborted: %s\n", s.AbortReason)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
