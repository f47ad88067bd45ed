package store

import (
	"context"
	"fmt"

	"github.com/roach88/insight/internal/ir"
)

// SaveDataset stores ds together with its digest.
//
// Saving is idempotent: storing identical content under an existing ID is a
// no-op. Different content under an existing ID returns ErrConflict.
func (s *Store) SaveDataset(ctx context.Context, ds *ir.Dataset) error {
	recordsJSON, err := marshalRecords(ds.Records)
	if err != nil {
		return fmt.Errorf("save dataset %q: %w", ds.ID, err)
	}
	digest, err := ir.Digest(ds)
	if err != nil {
		return fmt.Errorf("save dataset %q: %w", ds.ID, err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO datasets (id, kind, num_rows, digest, records)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		ds.ID,
		string(ds.Kind),
		len(ds.Records),
		digest,
		recordsJSON,
	)
	if err != nil {
		return fmt.Errorf("save dataset %q: %w", ds.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save dataset %q: %w", ds.ID, err)
	}
	if n == 1 {
		return nil
	}

	var existing string
	if err := s.db.QueryRowContext(ctx, `SELECT digest FROM datasets WHERE id = ?`, ds.ID).Scan(&existing); err != nil {
		return fmt.Errorf("save dataset %q: %w", ds.ID, err)
	}
	if existing != digest {
		return fmt.Errorf("save dataset %q: %w", ds.ID, ErrConflict)
	}
	return nil
}

// DeleteDataset removes the dataset stored under id.
// Returns ErrNotFound if nothing is stored under id.
func (s *Store) DeleteDataset(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dataset %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete dataset %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete dataset %q: %w", id, ErrNotFound)
	}
	return nil
}
