package ir

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/insight/internal/schema"
)

// Dataset is a finalized, in-memory collection of records of a single kind.
// Datasets are owned by the host; the engine only reads them.
type Dataset struct {
	ID      string      `json:"id"`
	Kind    schema.Kind `json:"kind"`
	Records []Record    `json:"records"`
}

// DatasetInfo summarises a registered dataset.
type DatasetInfo struct {
	ID      string      `json:"id"`
	Kind    schema.Kind `json:"kind"`
	NumRows int         `json:"numRows"`
}

// Info returns the summary of d.
func (d *Dataset) Info() DatasetInfo {
	return DatasetInfo{ID: d.ID, Kind: d.Kind, NumRows: len(d.Records)}
}

// Row is one projected result row. Columns holds the output column names in
// query order; Values holds the value for each column that is present.
type Row struct {
	Columns []string
	Values  map[string]Value
}

// NewRow creates an empty row over the given columns.
func NewRow(columns []string) Row {
	return Row{Columns: columns, Values: make(map[string]Value, len(columns))}
}

// Get returns the value of column, or nil if absent.
func (r Row) Get(column string) Value {
	return r.Values[column]
}

// Set stores a value for column. A nil value leaves the column absent.
func (r Row) Set(column string, v Value) {
	if v == nil {
		return
	}
	r.Values[column] = v
}

// Map converts the row into a plain map (float64/string values) for
// assertions and canonical encoding.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.Values))
	for k, v := range r.Values {
		m[k] = ToAny(v)
	}
	return m
}

// MarshalJSON encodes the row as a flat object whose keys follow column order.
// Absent columns are omitted.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, col := range r.Columns {
		v, ok := r.Values[col]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		keyBytes, err := json.Marshal(col)
		if err != nil {
			return nil, fmt.Errorf("marshal column %q: %w", col, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal value for column %q: %w", col, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RowMaps converts rows for assertions.
func RowMaps(rows []Row) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = r.Map()
	}
	return out
}
