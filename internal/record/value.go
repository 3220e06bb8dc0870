package record

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies the shape of a decoded value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindSequence
	KindMapping
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(k))
	}
}

// Value is one decoded field value. The zero Value is null.
//
// Numbers keep their literal text, so 10 and 10.0 remain distinguishable.
type Value struct {
	kind Kind
	text string
	b    bool
	seq  []Value
	m    Record
}

// Record maps field names to decoded values for a single input line.
type Record map[string]Value

// Get returns the value stored under name and whether the field was present.
func (r Record) Get(name string) (Value, bool) {
	v, ok := r[name]
	return v, ok
}

// Null returns a null value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Number returns a number value holding the given literal.
func Number(literal string) Value { return Value{kind: KindNumber, text: literal} }

// Int returns a number value for i.
func Int(i int64) Value { return Number(strconv.FormatInt(i, 10)) }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Sequence returns a sequence value.
func Sequence(items ...Value) Value { return Value{kind: KindSequence, seq: items} }

// Mapping returns a mapping value.
func Mapping(m Record) Value { return Value{kind: KindMapping, m: m} }

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string content if the value is a string.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.text, true
}

// AsNumber returns the number literal if the value is a number.
func (v Value) AsNumber() (string, bool) {
	if v.kind != KindNumber {
		return "", false
	}
	return v.text, true
}

// AsBool returns the boolean if the value is a bool.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsSequence returns the items if the value is a sequence.
func (v Value) AsSequence() ([]Value, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	return v.seq, true
}

// AsMapping returns the nested record if the value is a mapping.
func (v Value) AsMapping() (Record, bool) {
	if v.kind != KindMapping {
		return nil, false
	}
	return v.m, true
}

// fromDecoded converts the output of a json.Decoder with UseNumber set.
func fromDecoded(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(x), nil
	case json.Number:
		return Number(x.String()), nil
	case bool:
		return Bool(x), nil
	case []any:
		items := make([]Value, 0, len(x))
		for _, item := range x {
			v, err := fromDecoded(item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return Sequence(items...), nil
	case map[string]any:
		rec, err := fromObject(x)
		if err != nil {
			return Value{}, err
		}
		return Mapping(rec), nil
	default:
		return Value{}, fmt.Errorf("unsupported decoded type %T", raw)
	}
}

func fromObject(obj map[string]any) (Record, error) {
	rec := make(Record, len(obj))
	for k, raw := range obj {
		v, err := fromDecoded(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		rec[k] = v
	}
	return rec, nil
}
