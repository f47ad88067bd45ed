package ir

import (
	"cmp"
	"slices"
	"unicode/utf16"
)

// CompareValues orders two values for result sorting.
//
// Ordering: absent < Number < String. Numbers compare numerically. Strings
// compare by UTF-16 code units, the order query authors get from JavaScript
// and JSON tooling.
// CRITICAL: Go's native string comparison uses UTF-8 bytes, which orders
// supplementary-plane characters differently.
func CompareValues(a, b Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch av := a.(type) {
	case Number:
		return cmp.Compare(float64(av), float64(b.(Number)))
	case String:
		return CompareUTF16(string(av), string(b.(String)))
	default:
		return 0
	}
}

func rank(v Value) int {
	switch v.(type) {
	case Number:
		return 1
	case String:
		return 2
	default:
		return 0
	}
}

// CompareUTF16 compares strings by UTF-16 code units.
// Must use unicode/utf16.Encode for correct surrogate handling.
func CompareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// SortedKeys returns the keys of m in UTF-16 code unit order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, CompareUTF16)
	return keys
}
