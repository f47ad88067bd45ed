package queryir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/roach88/insight/internal/schema"
)

// Top-level and nested grammar keywords.
const (
	keyWhere           = "WHERE"
	keyOptions         = "OPTIONS"
	keyTransformations = "TRANSFORMATIONS"
	keyColumns         = "COLUMNS"
	keyOrder           = "ORDER"
	keyGroup           = "GROUP"
	keyApply           = "APPLY"
	keyDir             = "dir"
	keyKeys            = "keys"
	keyAnd             = "AND"
	keyOr              = "OR"
	keyNot             = "NOT"
	keyIs              = "IS"
)

// ValidationError describes the first grammar violation found in a query.
// Path locates the offending node, e.g. "WHERE.AND[1].GT".
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate checks a raw, JSON-shaped query against the grammar and returns
// the typed Query.
//
// raw is the result of decoding a query document: nested map[string]any and
// []any with string, json.Number or Go numeric leaves. knownIDs lists the
// datasets the query may reference.
//
// Validation fails fast: the first violation is returned as a
// *ValidationError. On success every qualified key in the query refers to the
// same known dataset and to fields of a single schema.
//
// Validate is a pure function. All bookkeeping lives in a validator that is
// allocated per call, so concurrent calls share nothing.
func Validate(raw any, knownIDs []string) (*Query, error) {
	v := &validator{known: knownIDs}
	q, err := v.validateQuery(raw)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Decode parses a JSON query document into the raw shape Validate accepts.
// Numbers are kept as json.Number so no precision is lost before validation.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode query: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode query: trailing data after query object")
	}
	return raw, nil
}

// Parse is Decode followed by Validate.
func Parse(data []byte, knownIDs []string) (*Query, error) {
	raw, err := Decode(data)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	return Validate(raw, knownIDs)
}

// collectedRef is a qualified key seen somewhere in the query.
type collectedRef struct {
	path string
	ref  FieldRef
}

// validator accumulates cross-cutting state during one traversal.
type validator struct {
	known              []string
	refs               []collectedRef
	hasTransformations bool
}

func (v *validator) fail(path, format string, args ...any) error {
	return &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// validateQuery checks the top-level key set and drives the traversal.
func (v *validator) validateQuery(raw any) (*Query, error) {
	top, ok := raw.(map[string]any)
	if !ok {
		return nil, v.fail("", "query must be an object, got %s", describe(raw))
	}
	for k := range top {
		switch k {
		case keyWhere, keyOptions, keyTransformations:
		default:
			return nil, v.fail("", "unexpected top-level key %q", k)
		}
	}
	if _, ok := top[keyWhere]; !ok {
		return nil, v.fail("", "missing %s", keyWhere)
	}
	if _, ok := top[keyOptions]; !ok {
		return nil, v.fail("", "missing %s", keyOptions)
	}
	rawTransformations, hasTransformations := top[keyTransformations]
	v.hasTransformations = hasTransformations

	where, err := v.validateWhere(top[keyWhere])
	if err != nil {
		return nil, err
	}

	columnKeys, rawOrder, err := v.validateOptions(top[keyOptions])
	if err != nil {
		return nil, err
	}

	var transformations *Transformations
	if hasTransformations {
		transformations, err = v.validateTransformations(rawTransformations)
		if err != nil {
			return nil, err
		}
	}

	columns, err := v.buildColumns(columnKeys, transformations)
	if err != nil {
		return nil, err
	}

	order, err := v.validateOrder(rawOrder, columnKeys)
	if err != nil {
		return nil, err
	}

	datasetID, kind, err := v.checkSingleSchema()
	if err != nil {
		return nil, err
	}

	return &Query{
		DatasetID:       datasetID,
		Kind:            kind,
		Where:           where,
		Options:         Options{Columns: columns, Order: order},
		Transformations: transformations,
	}, nil
}

// validateWhere accepts an empty object or a single filter.
func (v *validator) validateWhere(raw any) (Filter, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, v.fail(keyWhere, "must be an object, got %s", describe(raw))
	}
	if len(obj) == 0 {
		return Empty{}, nil
	}
	return v.validateFilter(obj, keyWhere)
}

// validateFilter recursively validates a single-key filter object.
func (v *validator) validateFilter(raw any, path string) (Filter, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, v.fail(path, "filter must be an object, got %s", describe(raw))
	}
	if len(obj) != 1 {
		return nil, v.fail(path, "filter must have exactly one key, got %d", len(obj))
	}

	var op string
	var body any
	for op, body = range obj {
	}
	opPath := path + "." + op

	switch op {
	case keyAnd, keyOr:
		filters, err := v.validateLogic(body, opPath)
		if err != nil {
			return nil, err
		}
		if op == keyAnd {
			return And{Filters: filters}, nil
		}
		return Or{Filters: filters}, nil

	case keyNot:
		inner, err := v.validateFilter(body, opPath)
		if err != nil {
			return nil, err
		}
		return Not{Filter: inner}, nil

	case string(OpLT), string(OpGT), string(OpEQ):
		return v.validateCompare(CompareOp(op), body, opPath)

	case keyIs:
		return v.validateMatch(body, opPath)

	default:
		return nil, v.fail(path, "unknown filter %q", op)
	}
}

// validateLogic validates the operand list of AND/OR.
func (v *validator) validateLogic(raw any, path string) ([]Filter, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, v.fail(path, "must be an array, got %s", describe(raw))
	}
	if len(list) == 0 {
		return nil, v.fail(path, "must contain at least one filter")
	}
	filters := make([]Filter, 0, len(list))
	for i, elem := range list {
		f, err := v.validateFilter(elem, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// comparisonOperand unpacks the {key: value} object of LT/GT/EQ/IS.
func (v *validator) comparisonOperand(raw any, path string) (string, any, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return "", nil, v.fail(path, "must be an object, got %s", describe(raw))
	}
	if len(obj) != 1 {
		return "", nil, v.fail(path, "must have exactly one key, got %d", len(obj))
	}
	for k, val := range obj {
		return k, val, nil
	}
	return "", nil, nil // unreachable
}

func (v *validator) validateCompare(op CompareOp, raw any, path string) (Filter, error) {
	key, val, err := v.comparisonOperand(raw, path)
	if err != nil {
		return nil, err
	}
	ref, err := v.fieldRef(key, path)
	if err != nil {
		return nil, err
	}
	if !ref.Field.IsNumeric() {
		return nil, v.fail(path, "%s requires a numeric field, %q is %s", op, key, ref.Field.Class())
	}
	n, ok := toNumber(val)
	if !ok {
		return nil, v.fail(path, "%s value for %q must be a number, got %s", op, key, describe(val))
	}
	return Compare{Op: op, Field: ref, Value: n}, nil
}

func (v *validator) validateMatch(raw any, path string) (Filter, error) {
	key, val, err := v.comparisonOperand(raw, path)
	if err != nil {
		return nil, err
	}
	ref, err := v.fieldRef(key, path)
	if err != nil {
		return nil, err
	}
	if !ref.Field.IsTextual() {
		return nil, v.fail(path, "IS requires a textual field, %q is %s", key, ref.Field.Class())
	}
	pattern, ok := val.(string)
	if !ok {
		return nil, v.fail(path, "IS value for %q must be a string, got %s", key, describe(val))
	}
	if !ValidPattern(pattern) {
		return nil, v.fail(path, "invalid pattern %q: '*' is only allowed at the start or end", pattern)
	}
	return Match{Field: ref, Pattern: pattern}, nil
}

// ValidPattern reports whether pattern has '*' only as an optional first
// and/or last character.
func ValidPattern(pattern string) bool {
	inner := strings.TrimPrefix(pattern, "*")
	inner = strings.TrimSuffix(inner, "*")
	return !strings.Contains(inner, "*")
}

// validateOptions checks COLUMNS syntax and returns the column keys and the
// raw ORDER (nil when absent). Column meaning is resolved in buildColumns once
// TRANSFORMATIONS is known.
func (v *validator) validateOptions(raw any) ([]string, any, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, nil, v.fail(keyOptions, "must be an object, got %s", describe(raw))
	}
	for k := range obj {
		if k != keyColumns && k != keyOrder {
			return nil, nil, v.fail(keyOptions, "unexpected key %q", k)
		}
	}
	rawColumns, ok := obj[keyColumns]
	if !ok {
		return nil, nil, v.fail(keyOptions, "missing %s", keyColumns)
	}

	path := keyOptions + "." + keyColumns
	keys, err := v.stringList(rawColumns, path)
	if err != nil {
		return nil, nil, err
	}
	for i, key := range keys {
		elemPath := fmt.Sprintf("%s[%d]", path, i)
		if slices.Contains(keys[:i], key) {
			return nil, nil, v.fail(elemPath, "duplicate column %q", key)
		}
		if _, _, qualified := schema.ParseKey(key); qualified {
			if _, err := v.fieldRef(key, elemPath); err != nil {
				return nil, nil, err
			}
			continue
		}
		if !schema.IsApplyKey(key) {
			return nil, nil, v.fail(elemPath, "invalid key %q", key)
		}
		if !v.hasTransformations {
			return nil, nil, v.fail(elemPath, "bare key %q requires TRANSFORMATIONS", key)
		}
	}

	rawOrder, hasOrder := obj[keyOrder]
	if hasOrder && rawOrder == nil {
		return nil, nil, v.fail(keyOptions+"."+keyOrder, "must not be null")
	}
	return keys, rawOrder, nil
}

// buildColumns types each column key as Raw or Derived and, with
// transformations, enforces that every column is a GROUP key or an APPLY key.
func (v *validator) buildColumns(keys []string, t *Transformations) ([]Column, error) {
	var groupKeys, applyKeys []string
	if t != nil {
		for _, g := range t.Group {
			groupKeys = append(groupKeys, g.Key())
		}
		for _, a := range t.Apply {
			applyKeys = append(applyKeys, a.Key)
		}
	}

	columns := make([]Column, 0, len(keys))
	for i, key := range keys {
		path := fmt.Sprintf("%s.%s[%d]", keyOptions, keyColumns, i)
		if t != nil && !slices.Contains(groupKeys, key) && !slices.Contains(applyKeys, key) {
			return nil, v.fail(path, "column %q must be a GROUP key or an APPLY key", key)
		}
		if datasetID, name, qualified := schema.ParseKey(key); qualified {
			f, _ := schema.Lookup(name)
			columns = append(columns, Raw{Ref: FieldRef{DatasetID: datasetID, Field: f}})
			continue
		}
		columns = append(columns, Derived{Key: key})
	}
	return columns, nil
}

// validateOrder accepts a column key or {dir, keys}.
func (v *validator) validateOrder(raw any, columns []string) (Order, error) {
	if raw == nil {
		return nil, nil
	}
	path := keyOptions + "." + keyOrder

	if key, ok := raw.(string); ok {
		if !slices.Contains(columns, key) {
			return nil, v.fail(path, "order key %q must appear in COLUMNS", key)
		}
		return SimpleOrder{Key: key}, nil
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, v.fail(path, "must be a string or an object, got %s", describe(raw))
	}
	if len(obj) != 2 {
		return nil, v.fail(path, "must have exactly the keys %q and %q", keyDir, keyKeys)
	}
	rawDir, ok := obj[keyDir]
	if !ok {
		return nil, v.fail(path, "missing %q", keyDir)
	}
	rawKeys, ok := obj[keyKeys]
	if !ok {
		return nil, v.fail(path, "missing %q", keyKeys)
	}

	dir, _ := rawDir.(string)
	if Direction(dir) != DirUp && Direction(dir) != DirDown {
		return nil, v.fail(path+"."+keyDir, "must be %q or %q, got %s", DirUp, DirDown, describe(rawDir))
	}

	keysPath := path + "." + keyKeys
	keys, err := v.stringList(rawKeys, keysPath)
	if err != nil {
		return nil, err
	}
	for i, key := range keys {
		if !slices.Contains(columns, key) {
			return nil, v.fail(fmt.Sprintf("%s[%d]", keysPath, i), "order key %q must appear in COLUMNS", key)
		}
	}
	return CompositeOrder{Dir: Direction(dir), Keys: keys}, nil
}

// validateTransformations checks GROUP and APPLY.
func (v *validator) validateTransformations(raw any) (*Transformations, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, v.fail(keyTransformations, "must be an object, got %s", describe(raw))
	}
	for k := range obj {
		if k != keyGroup && k != keyApply {
			return nil, v.fail(keyTransformations, "unexpected key %q", k)
		}
	}
	rawGroup, ok := obj[keyGroup]
	if !ok {
		return nil, v.fail(keyTransformations, "missing %s", keyGroup)
	}
	rawApply, ok := obj[keyApply]
	if !ok {
		return nil, v.fail(keyTransformations, "missing %s", keyApply)
	}

	groupPath := keyTransformations + "." + keyGroup
	groupKeys, err := v.stringList(rawGroup, groupPath)
	if err != nil {
		return nil, err
	}
	group := make([]FieldRef, 0, len(groupKeys))
	for i, key := range groupKeys {
		ref, err := v.fieldRef(key, fmt.Sprintf("%s[%d]", groupPath, i))
		if err != nil {
			return nil, err
		}
		group = append(group, ref)
	}

	apply, err := v.validateApply(rawApply)
	if err != nil {
		return nil, err
	}
	return &Transformations{Group: group, Apply: apply}, nil
}

// validateApply checks [{applyKey: {TOKEN: field}}, ...]. The list may be empty.
func (v *validator) validateApply(raw any) ([]ApplyRule, error) {
	path := keyTransformations + "." + keyApply
	list, ok := raw.([]any)
	if !ok {
		return nil, v.fail(path, "must be an array, got %s", describe(raw))
	}

	rules := make([]ApplyRule, 0, len(list))
	seen := make(map[string]bool, len(list))
	for i, elem := range list {
		rulePath := fmt.Sprintf("%s[%d]", path, i)
		ruleObj, ok := elem.(map[string]any)
		if !ok || len(ruleObj) != 1 {
			return nil, v.fail(rulePath, "apply rule must be an object with exactly one key")
		}
		var applyKey string
		var body any
		for applyKey, body = range ruleObj {
		}
		if !schema.IsApplyKey(applyKey) {
			return nil, v.fail(rulePath, "invalid apply key %q: must be non-empty and contain no %q", applyKey, schema.Separator)
		}
		if seen[applyKey] {
			return nil, v.fail(rulePath, "duplicate apply key %q", applyKey)
		}
		seen[applyKey] = true

		bodyPath := rulePath + "." + applyKey
		bodyObj, ok := body.(map[string]any)
		if !ok || len(bodyObj) != 1 {
			return nil, v.fail(bodyPath, "must be an object with exactly one aggregate token")
		}
		var rawToken string
		var rawField any
		for rawToken, rawField = range bodyObj {
		}
		token := Token(rawToken)
		if !token.valid() {
			return nil, v.fail(bodyPath, "unknown aggregate token %q", rawToken)
		}

		tokenPath := bodyPath + "." + rawToken
		key, ok := rawField.(string)
		if !ok {
			return nil, v.fail(tokenPath, "must be a field key, got %s", describe(rawField))
		}
		ref, err := v.fieldRef(key, tokenPath)
		if err != nil {
			return nil, err
		}
		if token.Numeric() && !ref.Field.IsNumeric() {
			return nil, v.fail(tokenPath, "%s requires a numeric field, %q is %s", token, key, ref.Field.Class())
		}
		rules = append(rules, ApplyRule{Key: applyKey, Token: token, Field: ref})
	}
	return rules, nil
}

// fieldRef parses a qualified key, checks the field exists in some schema and
// records it for the single-schema check.
func (v *validator) fieldRef(key, path string) (FieldRef, error) {
	datasetID, name, ok := schema.ParseKey(key)
	if !ok {
		return FieldRef{}, v.fail(path, "invalid key %q: expected <dataset>%s<field>", key, schema.Separator)
	}
	f, ok := schema.Lookup(name)
	if !ok {
		return FieldRef{}, v.fail(path, "unknown field %q in key %q", name, key)
	}
	ref := FieldRef{DatasetID: datasetID, Field: f}
	v.refs = append(v.refs, collectedRef{path: path, ref: ref})
	return ref, nil
}

// checkSingleSchema enforces that every collected key names one known dataset
// and fields of one schema.
func (v *validator) checkSingleSchema() (string, schema.Kind, error) {
	if len(v.refs) == 0 {
		return "", "", v.fail("", "query references no dataset field")
	}
	first := v.refs[0]
	datasetID := first.ref.DatasetID
	kind := first.ref.Field.Kind()

	if !slices.Contains(v.known, datasetID) {
		return "", "", v.fail(first.path, "dataset %q is not loaded", datasetID)
	}
	for _, c := range v.refs[1:] {
		if c.ref.DatasetID != datasetID {
			return "", "", v.fail(c.path, "query references datasets %q and %q", datasetID, c.ref.DatasetID)
		}
		if c.ref.Field.Kind() != kind {
			return "", "", v.fail(c.path, "field %q belongs to %s but the query already uses %s fields",
				c.ref.Field.Name(), c.ref.Field.Kind(), kind)
		}
	}
	return datasetID, kind, nil
}

// stringList requires a non-empty array of strings.
func (v *validator) stringList(raw any, path string) ([]string, error) {
	var list []any
	switch val := raw.(type) {
	case []any:
		list = val
	case []string:
		return v.nonEmpty(slices.Clone(val), path)
	default:
		return nil, v.fail(path, "must be an array, got %s", describe(raw))
	}
	out := make([]string, 0, len(list))
	for i, elem := range list {
		s, ok := elem.(string)
		if !ok {
			return nil, v.fail(fmt.Sprintf("%s[%d]", path, i), "must be a string, got %s", describe(elem))
		}
		out = append(out, s)
	}
	return v.nonEmpty(out, path)
}

func (v *validator) nonEmpty(list []string, path string) ([]string, error) {
	if len(list) == 0 {
		return nil, v.fail(path, "must not be empty")
	}
	return list, nil
}

// toNumber accepts the numeric leaf types produced by JSON, YAML and Go
// literals. Booleans are not numbers.
func toNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// describe names the JSON type of a raw value for error messages.
func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any, []string:
		return "array"
	default:
		if _, ok := toNumber(v); ok {
			return "number"
		}
		return fmt.Sprintf("%T", v)
	}
}
