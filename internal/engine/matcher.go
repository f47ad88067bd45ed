package engine

import (
	"strings"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/queryir"
	"github.com/roach88/insight/internal/schema"
)

// Matches evaluates a validated WHERE tree against one record.
//
// Matches is total: the filter is guaranteed pre-validated. A field that does
// not resolve in kind, or whose stored value cannot be coerced to the field's
// class, makes the enclosing Compare or Match false (and therefore a NOT over
// it true). The universal patterns "*" and "**" match even then.
func Matches(filter queryir.Filter, record ir.Record, kind schema.Kind) bool {
	switch f := filter.(type) {
	case queryir.Empty:
		return true

	case queryir.And:
		for _, sub := range f.Filters {
			if !Matches(sub, record, kind) {
				return false
			}
		}
		return true

	case queryir.Or:
		for _, sub := range f.Filters {
			if Matches(sub, record, kind) {
				return true
			}
		}
		return false

	case queryir.Not:
		return !Matches(f.Filter, record, kind)

	case queryir.Compare:
		n, ok := numericValue(record, f.Field.Field, kind)
		if !ok {
			return false
		}
		switch f.Op {
		case queryir.OpLT:
			return n < f.Value
		case queryir.OpGT:
			return n > f.Value
		case queryir.OpEQ:
			return n == f.Value
		}
		return false

	case queryir.Match:
		if f.Pattern == "*" || f.Pattern == "**" {
			return true
		}
		s, ok := textValue(record, f.Field.Field, kind)
		if !ok {
			return false
		}
		return matchPattern(s, f.Pattern)

	default:
		return false
	}
}

// matchPattern applies a wildcard pattern with an optional leading and
// trailing '*'.
func matchPattern(s, pattern string) bool {
	leading := strings.HasPrefix(pattern, "*")
	inner := strings.TrimPrefix(pattern, "*")
	trailing := strings.HasSuffix(inner, "*")
	inner = strings.TrimSuffix(inner, "*")

	switch {
	case leading && trailing:
		return strings.Contains(s, inner)
	case leading:
		return strings.HasSuffix(s, inner)
	case trailing:
		return strings.HasPrefix(s, inner)
	default:
		return s == inner
	}
}

// rawValue reads the physical attribute of f in a record of the given kind.
// Fields of another kind resolve to nothing.
func rawValue(record ir.Record, f schema.Field, kind schema.Kind) ir.Value {
	attr, ok := schema.Resolve(kind, f.Name())
	if !ok {
		return nil
	}
	return record.Get(attr)
}

func numericValue(record ir.Record, f schema.Field, kind schema.Kind) (float64, bool) {
	return ir.AsNumber(rawValue(record, f, kind))
}

func textValue(record ir.Record, f schema.Field, kind schema.Kind) (string, bool) {
	return ir.AsText(rawValue(record, f, kind))
}

// fieldValue reads f and normalizes the value to the field's class: numeric
// fields yield Number, textual fields yield String. Absent or uncoercible
// values yield nil.
func fieldValue(record ir.Record, f schema.Field, kind schema.Kind) ir.Value {
	switch f.Class() {
	case schema.ClassNumeric:
		if n, ok := numericValue(record, f, kind); ok {
			return ir.Number(n)
		}
	case schema.ClassTextual:
		if s, ok := textValue(record, f, kind); ok {
			return ir.String(s)
		}
	}
	return nil
}
