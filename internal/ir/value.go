package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Value is a sealed interface representing the scalar values a record or a
// result row can hold. Only Number and String implement it; an absent value is
// represented by a nil Value (or a missing map key), never by a third type.
type Value interface {
	irValue() // Sealed - only these types implement it
}

// Number is a numeric scalar.
type Number float64

func (Number) irValue() {}

// String is a textual scalar.
type String string

func (String) irValue() {}

// MarshalJSON renders the number in its shortest decimal form.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number %v cannot be encoded", f)
	}
	return []byte(FormatNumber(f)), nil
}

// FormatNumber formats f without exponent and without trailing zeros:
// 90 -> "90", 2.01 -> "2.01".
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// AsNumber coerces v to a number. Numbers pass through; strings are parsed
// after trimming whitespace. Absent values and unparsable strings return
// ok=false.
func AsNumber(v Value) (float64, bool) {
	switch val := v.(type) {
	case Number:
		return float64(val), true
	case String:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsText coerces v to a string. Numbers are formatted with FormatNumber.
func AsText(v Value) (string, bool) {
	switch val := v.(type) {
	case String:
		return string(val), true
	case Number:
		return FormatNumber(float64(val)), true
	default:
		return "", false
	}
}

// FromAny converts a decoded JSON/YAML scalar into a Value.
// Accepts strings, json.Number and Go numeric types. Booleans, nulls and
// composites are rejected.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return Number(f), nil
	case float64:
		return finite(val)
	case float32:
		return finite(float64(val))
	case int:
		return Number(val), nil
	case int32:
		return Number(val), nil
	case int64:
		return Number(val), nil
	case uint64:
		return Number(val), nil
	case nil:
		return nil, fmt.Errorf("null values are not supported")
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}

func finite(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number %v", f)
	}
	return Number(f), nil
}

// ToAny converts a Value back to a plain Go value (float64 or string).
// Absent values become nil.
func ToAny(v Value) any {
	switch val := v.(type) {
	case Number:
		return float64(val)
	case String:
		return string(val)
	default:
		return nil
	}
}

// Record is a flat mapping from physical attribute name to scalar value.
// Records are treated as immutable once handed to the engine.
type Record map[string]Value

// Get returns the value stored under attribute, or nil if absent.
func (r Record) Get(attribute string) Value {
	return r[attribute]
}

// Normalized returns a copy of r with every textual value in Unicode NFC form.
// Ingestion callers use it so that pattern matching is insensitive to
// composed vs decomposed input.
func (r Record) Normalized() Record {
	out := make(Record, len(r))
	for k, v := range r {
		if s, ok := v.(String); ok {
			out[k] = String(norm.NFC.String(string(s)))
			continue
		}
		out[k] = v
	}
	return out
}

// UnmarshalJSON decodes a flat JSON object into a Record.
// Nested objects, arrays, booleans and nulls are rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	rec, err := RecordFromMap(raw)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

// MarshalJSON encodes the record with sorted attribute names.
func (r Record) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(r)
}

// RecordFromMap converts a decoded object into a Record.
func RecordFromMap(m map[string]any) (Record, error) {
	rec := make(Record, len(m))
	for k, v := range m {
		val, err := FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		rec[k] = val
	}
	return rec, nil
}

// DecodeRecords parses a JSON array of flat objects.
func DecodeRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}
