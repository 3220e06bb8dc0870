// Package record decodes raw ticket lines into tagged field mappings.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedRecord is returned when a line cannot be decoded into a record.
var ErrMalformedRecord = errors.New("malformed record")

// Upstream producers occasionally emit typographic double quotes.
var quoteFixer = strings.NewReplacer("“", `"`, "”", `"`)

// FixQuotes replaces left and right curly double quotes with straight ones.
func FixQuotes(line string) string {
	return quoteFixer.Replace(line)
}

// Parse normalizes quotes in line and decodes it as a single JSON object.
// Any failure wraps ErrMalformedRecord.
func Parse(line string) (Record, error) {
	dec := json.NewDecoder(strings.NewReader(FixQuotes(line)))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty line", ErrMalformedRecord)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected trailing data after object", ErrMalformedRecord)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		v, _ := fromDecoded(raw)
		return nil, fmt.Errorf("%w: top-level value is %s, want object", ErrMalformedRecord, v.Kind())
	}
	rec, err := fromObject(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return rec, nil
}
