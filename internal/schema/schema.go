// Package schema is the single source of truth for the two record vocabularies
// the query engine understands.
//
// Every query-facing field is a member of the closed Field enum. A Field knows
// which Kind of dataset it belongs to, whether it is numeric or textual, and
// the physical attribute under which its value is stored on a record.
// Nothing outside this package dispatches on raw field-name strings.
//
// Query keys are qualified by dataset ID using Separator:
//
//	courses_avg  ->  dataset "courses", field "avg"
//	maxSeats     ->  bare apply key (no separator)
package schema

import (
	"slices"
	"strings"
)

// Kind identifies one of the two fixed record schemas.
type Kind string

const (
	// KindCourses is the course-section schema.
	KindCourses Kind = "courses"

	// KindRooms is the room schema.
	KindRooms Kind = "rooms"
)

// Kinds lists all supported kinds.
var Kinds = []Kind{KindCourses, KindRooms}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	return k == KindCourses || k == KindRooms
}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	return k, k.Valid()
}

// Class is the value classification of a field.
type Class int

const (
	// ClassUnknown is returned for names outside both vocabularies.
	ClassUnknown Class = iota
	// ClassNumeric fields hold numbers and accept LT/GT/EQ and MAX/MIN/AVG/SUM.
	ClassNumeric
	// ClassTextual fields hold strings and accept IS.
	ClassTextual
)

func (c Class) String() string {
	switch c {
	case ClassNumeric:
		return "numeric"
	case ClassTextual:
		return "textual"
	default:
		return "unknown"
	}
}

// Field is a logical field. The zero value is not a valid field.
type Field int

const (
	fieldInvalid Field = iota

	// courses
	FieldAvg
	FieldPass
	FieldFail
	FieldAudit
	FieldYear
	FieldDept
	FieldID
	FieldInstructor
	FieldTitle
	FieldUUID

	// rooms
	FieldLat
	FieldLon
	FieldSeats
	FieldFullname
	FieldShortname
	FieldNumber
	FieldName
	FieldAddress
	FieldType
	FieldFurniture
	FieldHref
)

type fieldInfo struct {
	name      string
	kind      Kind
	class     Class
	attribute string
}

// fieldTable maps each field to its vocabulary entry. Order matches the enum.
var fieldTable = [...]fieldInfo{
	FieldAvg:        {"avg", KindCourses, ClassNumeric, "Avg"},
	FieldPass:       {"pass", KindCourses, ClassNumeric, "Pass"},
	FieldFail:       {"fail", KindCourses, ClassNumeric, "Fail"},
	FieldAudit:      {"audit", KindCourses, ClassNumeric, "Audit"},
	FieldYear:       {"year", KindCourses, ClassNumeric, "Year"},
	FieldDept:       {"dept", KindCourses, ClassTextual, "Subject"},
	FieldID:         {"id", KindCourses, ClassTextual, "Course"},
	FieldInstructor: {"instructor", KindCourses, ClassTextual, "Professor"},
	FieldTitle:      {"title", KindCourses, ClassTextual, "Title"},
	FieldUUID:       {"uuid", KindCourses, ClassTextual, "id"},

	FieldLat:       {"lat", KindRooms, ClassNumeric, "lat"},
	FieldLon:       {"lon", KindRooms, ClassNumeric, "lon"},
	FieldSeats:     {"seats", KindRooms, ClassNumeric, "capacity"},
	FieldFullname:  {"fullname", KindRooms, ClassTextual, "fullName"},
	FieldShortname: {"shortname", KindRooms, ClassTextual, "shortName"},
	FieldNumber:    {"number", KindRooms, ClassTextual, "roomNumber"},
	FieldName:      {"name", KindRooms, ClassTextual, "name"},
	FieldAddress:   {"address", KindRooms, ClassTextual, "address"},
	FieldType:      {"type", KindRooms, ClassTextual, "roomType"},
	FieldFurniture: {"furniture", KindRooms, ClassTextual, "furniture"},
	FieldHref:      {"href", KindRooms, ClassTextual, "href"},
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(fieldTable))
	for f := FieldAvg; int(f) < len(fieldTable); f++ {
		m[fieldTable[f].name] = f
	}
	return m
}()

// Lookup returns the field with the given logical name.
func Lookup(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

// Valid reports whether f is a member of the enum.
func (f Field) Valid() bool {
	return f > fieldInvalid && int(f) < len(fieldTable)
}

// Name returns the logical (unqualified) name, e.g. "avg".
func (f Field) Name() string {
	if !f.Valid() {
		return ""
	}
	return fieldTable[f].name
}

// Kind returns the schema the field belongs to.
func (f Field) Kind() Kind {
	if !f.Valid() {
		return ""
	}
	return fieldTable[f].kind
}

// Class returns whether the field is numeric or textual.
func (f Field) Class() Class {
	if !f.Valid() {
		return ClassUnknown
	}
	return fieldTable[f].class
}

// Attribute returns the physical attribute name on a record.
func (f Field) Attribute() string {
	if !f.Valid() {
		return ""
	}
	return fieldTable[f].attribute
}

// IsNumeric reports whether the field is numeric.
func (f Field) IsNumeric() bool { return f.Class() == ClassNumeric }

// IsTextual reports whether the field is textual.
func (f Field) IsTextual() bool { return f.Class() == ClassTextual }

func (f Field) String() string { return f.Name() }

// Resolve maps a logical field name to its physical attribute for the given
// kind. It fails closed: unknown names, or names that belong to the other
// kind, return ok=false.
func Resolve(kind Kind, name string) (attribute string, ok bool) {
	f, ok := Lookup(name)
	if !ok || f.Kind() != kind {
		return "", false
	}
	return f.Attribute(), true
}

// Classify returns the class of a logical field within the given kind.
func Classify(kind Kind, name string) Class {
	f, ok := Lookup(name)
	if !ok || f.Kind() != kind {
		return ClassUnknown
	}
	return f.Class()
}

// SchemaOf returns the kind whose vocabulary contains name.
// The two vocabularies are disjoint, so a known name has exactly one kind.
func SchemaOf(name string) (Kind, bool) {
	f, ok := Lookup(name)
	if !ok {
		return "", false
	}
	return f.Kind(), true
}

// Fields returns the vocabulary of kind in declaration order.
func Fields(kind Kind) []Field {
	var out []Field
	for f := FieldAvg; int(f) < len(fieldTable); f++ {
		if fieldTable[f].kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// FieldNames returns the sorted logical names of kind.
func FieldNames(kind Kind) []string {
	fields := Fields(kind)
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	slices.Sort(names)
	return names
}

// Separator joins a dataset ID and a logical field name in a query key.
const Separator = "_"

// Qualify builds the query key for a field in a dataset.
func Qualify(datasetID string, f Field) string {
	return datasetID + Separator + f.Name()
}

// ParseKey splits a qualified key into dataset ID and logical name.
// Both parts must be non-empty and the key must contain exactly one separator.
// The logical name is not checked against the vocabularies.
func ParseKey(key string) (datasetID, name string, ok bool) {
	if strings.Count(key, Separator) != 1 {
		return "", "", false
	}
	datasetID, name, _ = strings.Cut(key, Separator)
	if datasetID == "" || name == "" {
		return "", "", false
	}
	return datasetID, name, true
}

// IsApplyKey reports whether s is a syntactically valid bare apply key:
// non-empty and free of the separator.
func IsApplyKey(s string) bool {
	return s != "" && !strings.Contains(s, Separator)
}

// ValidDatasetID reports whether id may name a dataset: not blank and free of
// the separator.
func ValidDatasetID(id string) bool {
	return strings.TrimSpace(id) != "" && !strings.Contains(id, Separator)
}
