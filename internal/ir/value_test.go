package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsNumber(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want float64
		ok   bool
	}{
		{"number", Number(87.5), 87.5, true},
		{"numeric string", String("2015"), 2015, true},
		{"padded string", String(" 40 "), 40, true},
		{"text", String("cpsc"), 0, false},
		{"absent", nil, 0, false},
		{"nan string", String("NaN"), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsText(t *testing.T) {
	s, ok := AsText(String("hello"))
	assert.True(t, ok)
	assert.Equal(t, "hello", s)

	s, ok = AsText(Number(31415))
	assert.True(t, ok)
	assert.Equal(t, "31415", s)

	_, ok = AsText(nil)
	assert.False(t, ok)
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(json.Number("72.25"))
	require.NoError(t, err)
	assert.Equal(t, Number(72.25), v)

	v, err = FromAny(3)
	require.NoError(t, err)
	assert.Equal(t, Number(3), v)

	v, err = FromAny("DMP 110")
	require.NoError(t, err)
	assert.Equal(t, String("DMP 110"), v)

	_, err = FromAny(true)
	assert.Error(t, err)

	_, err = FromAny(nil)
	assert.Error(t, err)

	_, err = FromAny(map[string]any{"a": 1})
	assert.Error(t, err)
}

func TestDecodeRecords(t *testing.T) {
	data := []byte(`[
		{"Subject": "cpsc", "Course": "310", "Avg": 78.5, "Year": "2015", "id": 1234},
		{"Subject": "math", "Course": "200", "Avg": 61}
	]`)

	records, err := DecodeRecords(data)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, String("cpsc"), records[0].Get("Subject"))
	assert.Equal(t, Number(78.5), records[0].Get("Avg"))
	assert.Equal(t, String("2015"), records[0].Get("Year"))
	assert.Equal(t, Number(1234), records[0].Get("id"))
	assert.Nil(t, records[1].Get("Year"))
}

func TestDecodeRecords_RejectsNested(t *testing.T) {
	_, err := DecodeRecords([]byte(`[{"Subject": {"code": "cpsc"}}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Subject")
}

func TestRecordNormalized(t *testing.T) {
	// e + combining acute accent
	decomposed := Record{"Professor": String("e\u0301mile"), "Avg": Number(80)}
	n := decomposed.Normalized()

	assert.Equal(t, String("\u00e9mile"), n.Get("Professor"))
	assert.Equal(t, Number(80), n.Get("Avg"))
	assert.Equal(t, String("e\u0301mile"), decomposed.Get("Professor"), "original untouched")
}

func TestRowMarshalJSON_KeepsColumnOrder(t *testing.T) {
	row := NewRow([]string{"courses_dept", "courses_avg", "overall"})
	row.Set("courses_dept", String("cpsc"))
	row.Set("courses_avg", Number(90))
	row.Set("overall", nil)

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"courses_dept":"cpsc","courses_avg":90}`, string(data))
}

func TestNumberMarshalJSON(t *testing.T) {
	data, err := json.Marshal(Number(2.01))
	require.NoError(t, err)
	assert.Equal(t, "2.01", string(data))

	data, err = json.Marshal(Number(15))
	require.NoError(t, err)
	assert.Equal(t, "15", string(data))
}

func TestDatasetInfo(t *testing.T) {
	ds := &Dataset{ID: "rooms", Kind: "rooms", Records: []Record{{}, {}, {}}}
	assert.Equal(t, DatasetInfo{ID: "rooms", Kind: "rooms", NumRows: 3}, ds.Info())
}
