package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		kind Kind
		name string
		want string
		ok   bool
	}{
		{KindCourses, "dept", "Subject", true},
		{KindCourses, "id", "Course", true},
		{KindCourses, "instructor", "Professor", true},
		{KindCourses, "uuid", "id", true},
		{KindCourses, "avg", "Avg", true},
		{KindCourses, "year", "Year", true},
		{KindRooms, "seats", "capacity", true},
		{KindRooms, "number", "roomNumber", true},
		{KindRooms, "type", "roomType", true},
		{KindRooms, "href", "href", true},

		// wrong kind fails closed
		{KindRooms, "avg", "", false},
		{KindCourses, "seats", "", false},
		// unknown names
		{KindCourses, "grade", "", false},
		{KindRooms, "", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.kind, tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ClassNumeric, Classify(KindCourses, "pass"))
	assert.Equal(t, ClassTextual, Classify(KindCourses, "title"))
	assert.Equal(t, ClassNumeric, Classify(KindRooms, "lat"))
	assert.Equal(t, ClassTextual, Classify(KindRooms, "furniture"))
	assert.Equal(t, ClassUnknown, Classify(KindRooms, "dept"))
	assert.Equal(t, ClassUnknown, Classify(KindCourses, "nope"))
}

func TestSchemaOf(t *testing.T) {
	k, ok := SchemaOf("audit")
	require.True(t, ok)
	assert.Equal(t, KindCourses, k)

	k, ok = SchemaOf("shortname")
	require.True(t, ok)
	assert.Equal(t, KindRooms, k)

	_, ok = SchemaOf("Avg")
	assert.False(t, ok, "physical attribute names are not logical fields")
}

func TestVocabulariesAreDisjoint(t *testing.T) {
	seen := map[string]Kind{}
	for _, kind := range Kinds {
		for _, f := range Fields(kind) {
			prev, dup := seen[f.Name()]
			require.False(t, dup, "field %q in both %s and %s", f.Name(), prev, kind)
			seen[f.Name()] = kind
		}
	}
	assert.Len(t, seen, 21)
}

func TestFields(t *testing.T) {
	assert.Equal(t,
		[]string{"audit", "avg", "dept", "fail", "id", "instructor", "pass", "title", "uuid", "year"},
		FieldNames(KindCourses))
	assert.Equal(t,
		[]string{"address", "fullname", "furniture", "href", "lat", "lon", "name", "number", "seats", "shortname", "type"},
		FieldNames(KindRooms))
	assert.Empty(t, Fields(Kind("buildings")))
}

func TestFieldZeroValue(t *testing.T) {
	var f Field
	assert.False(t, f.Valid())
	assert.Equal(t, "", f.Name())
	assert.Equal(t, ClassUnknown, f.Class())
	assert.Equal(t, Kind(""), f.Kind())
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		key      string
		id, name string
		ok       bool
	}{
		{"courses_avg", "courses", "avg", true},
		{"rooms_seats", "rooms", "seats", true},
		{"courses_nope", "courses", "nope", true},
		{"courses", "", "", false},
		{"_avg", "", "", false},
		{"courses_", "", "", false},
		{"a_b_c", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			id, name, ok := ParseKey(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestQualify(t *testing.T) {
	assert.Equal(t, "ubc_avg", Qualify("ubc", FieldAvg))
	assert.Equal(t, "rooms_fullname", Qualify("rooms", FieldFullname))
}

func TestIsApplyKey(t *testing.T) {
	assert.True(t, IsApplyKey("maxSeats"))
	assert.True(t, IsApplyKey("overall avg"))
	assert.False(t, IsApplyKey(""))
	assert.False(t, IsApplyKey("max_seats"))
}

func TestValidDatasetID(t *testing.T) {
	assert.True(t, ValidDatasetID("courses"))
	assert.True(t, ValidDatasetID("my rooms"))
	assert.False(t, ValidDatasetID(""))
	assert.False(t, ValidDatasetID("   "))
	assert.False(t, ValidDatasetID("ubc_courses"))
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("rooms")
	assert.True(t, ok)
	assert.Equal(t, KindRooms, k)

	_, ok = ParseKind("sections")
	assert.False(t, ok)
}
