package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/schema"
)

// LoadDataset returns the dataset stored under id after verifying its digest.
// Returns ErrNotFound if nothing is stored under id.
func (s *Store) LoadDataset(ctx context.Context, id string) (*ir.Dataset, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, digest, records
		FROM datasets
		WHERE id = ?
	`, id)

	ds, err := scanDataset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load dataset %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load dataset %q: %w", id, err)
	}
	return ds, nil
}

// LoadDatasets returns every stored dataset in insertion order.
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) LoadDatasets(ctx context.Context) ([]*ir.Dataset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, digest, records
		FROM datasets
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query datasets: %w", err)
	}
	defer rows.Close()

	datasets := []*ir.Dataset{}
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate datasets: %w", err)
	}
	return datasets, nil
}

// ListDatasets summarises stored datasets in insertion order without
// decoding their records.
func (s *Store) ListDatasets(ctx context.Context) ([]ir.DatasetInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, num_rows
		FROM datasets
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query datasets: %w", err)
	}
	defer rows.Close()

	infos := []ir.DatasetInfo{}
	for rows.Next() {
		var info ir.DatasetInfo
		var kind string
		if err := rows.Scan(&info.ID, &kind, &info.NumRows); err != nil {
			return nil, fmt.Errorf("scan dataset info: %w", err)
		}
		info.Kind = schema.Kind(kind)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate datasets: %w", err)
	}
	return infos, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDataset(row scanner) (*ir.Dataset, error) {
	var id, kind, digest, recordsJSON string
	if err := row.Scan(&id, &kind, &digest, &recordsJSON); err != nil {
		return nil, err
	}

	records, err := unmarshalRecords(recordsJSON)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", id, err)
	}

	ds := &ir.Dataset{ID: id, Kind: schema.Kind(kind), Records: records}
	got, err := ir.Digest(ds)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", id, err)
	}
	if got != digest {
		return nil, fmt.Errorf("dataset %q: %w", id, ErrCorrupt)
	}
	return ds, nil
}
