package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataset_Lifecycle(t *testing.T) {
	db := tempDB(t)

	out, err := run(t, "--db", db, "--format", "json", "dataset", "add", "courses", "courses", coursesRecords)
	require.NoError(t, err)
	resp := decodeResponse(t, out)
	assert.Equal(t, map[string]any{
		"added": map[string]any{"id": "courses", "kind": "courses", "numRows": 4.0},
		"ids":   []any{"courses"},
	}, resp.Data)

	out, err = run(t, "--db", db, "dataset", "add", "rooms", "rooms", roomsRecords)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Added rooms (rooms, 3 rows)")

	out, err = run(t, "--db", db, "--format", "json", "dataset", "list")
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"id": "courses", "kind": "courses", "numRows": 4.0},
		map[string]any{"id": "rooms", "kind": "rooms", "numRows": 3.0},
	}, decodeResponse(t, out).Data)

	// Stored datasets are queryable in a later invocation.
	out, err = run(t, "--db", db, "--format", "json", "query", "testdata/queries/high_avg.json")
	require.NoError(t, err)
	assert.Len(t, decodeQuery(t, out).Data.Rows, 2)

	out, err = run(t, "--db", db, "dataset", "remove", "courses")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Removed courses")

	out, err = run(t, "--db", db, "dataset", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "rooms")
	assert.NotContains(t, out, "courses")
}

func TestDataset_ListEmpty(t *testing.T) {
	out, err := run(t, "--db", tempDB(t), "dataset", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No datasets")
}

func TestDataset_Errors(t *testing.T) {
	db := tempDB(t)
	_, err := run(t, "--db", db, "dataset", "add", "courses", "courses", coursesRecords)
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"duplicate", []string{"--db", db, "dataset", "add", "courses", "courses", coursesRecords}, "DUPLICATE_ID"},
		{"invalid id", []string{"--db", db, "dataset", "add", "ubc_courses", "courses", coursesRecords}, "INVALID_ID"},
		{"blank id", []string{"--db", db, "dataset", "add", "  ", "courses", coursesRecords}, "INVALID_ID"},
		{"unknown kind", []string{"--db", db, "dataset", "add", "b", "buildings", coursesRecords}, "INVALID_KIND"},
		{"remove missing", []string{"--db", db, "dataset", "remove", "rooms"}, "NOT_FOUND"},
		{"remove invalid id", []string{"--db", db, "dataset", "remove", "a_b"}, "INVALID_ID"},
		{"missing db", []string{"dataset", "list"}, ErrCodeStoreFailed},
		{"missing records", []string{"--db", db, "dataset", "add", "x", "courses", "testdata/records/nope.yaml"}, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"--format", "json"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp := decodeResponse(t, out)
			require.NotNil(t, resp.Error, out)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestDataset_QueryCombinesStoreAndFlags(t *testing.T) {
	db := tempDB(t)
	_, err := run(t, "--db", db, "dataset", "add", "rooms", "rooms", roomsRecords)
	require.NoError(t, err)

	out, err := run(t, "--db", db, "--format", "json", "query", "testdata/queries/high_avg.json",
		"--dataset", "courses=courses:"+coursesRecords)
	require.NoError(t, err)
	assert.Len(t, decodeQuery(t, out).Data.Rows, 2)

	// --dataset files are not written back.
	out, err = run(t, "--db", db, "--format", "json", "dataset", "list")
	require.NoError(t, err)
	assert.Len(t, decodeResponse(t, out).Data, 1)
}
