package store

import (
	"fmt"

	"github.com/roach88/insight/internal/ir"
)

// marshalRecords converts records to canonical JSON TEXT for storage.
func marshalRecords(records []ir.Record) (string, error) {
	if records == nil {
		records = []ir.Record{}
	}
	data, err := ir.MarshalCanonical(records)
	if err != nil {
		return "", fmt.Errorf("marshal records: %w", err)
	}
	return string(data), nil
}

// unmarshalRecords parses stored JSON TEXT back into records. Numbers are
// decoded through json.Number so stored values round-trip exactly.
func unmarshalRecords(data string) ([]ir.Record, error) {
	records, err := ir.DecodeRecords([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal records: %w", err)
	}
	if records == nil {
		records = []ir.Record{}
	}
	return records, nil
}
