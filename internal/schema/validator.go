// Package schema checks outbound events against the embedded JSON Schema.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"ticket-validator/internal/models"
)

//go:embed events.schema.json
var eventsSchema []byte

const schemaURL = "https://ticket-validator.local/schemas/events.schema.json"

// Validator validates events by their eventType.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// New compiles the embedded event schemas.
func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(eventsSchema)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	defs := map[string]string{
		models.EventTypeViolation: "violation",
		models.EventTypeSummary:   "summary",
	}
	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(defs))}
	for eventType, def := range defs {
		compiled, err := compiler.Compile(schemaURL + "#/$defs/" + def)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", def, err)
		}
		v.schemas[eventType] = compiled
	}
	return v, nil
}

// Validate marshals event to JSON and checks it against the schema selected
// by its eventType field.
func (v *Validator) Validate(event any) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return fmt.Errorf("event must be a JSON object")
	}
	eventType, _ := obj["eventType"].(string)
	compiled, ok := v.schemas[eventType]
	if !ok {
		return fmt.Errorf("unknown event type %q", eventType)
	}
	if err := compiled.Validate(payload); err != nil {
		return fmt.Errorf("event %s: %w", eventType, err)
	}
	return nil
}
