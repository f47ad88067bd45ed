// Package catalog is the registry of loaded datasets.
//
// A Catalog owns finalized datasets keyed by ID and hands the engine
// read-only references to them. It enforces the dataset ID rules and,
// when configured with a Persister, writes every change through to durable
// storage before it becomes visible.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/schema"
)

// Persister stores datasets durably. Implemented by store.Store.
type Persister interface {
	SaveDataset(ctx context.Context, ds *ir.Dataset) error
	DeleteDataset(ctx context.Context, id string) error
	LoadDatasets(ctx context.Context) ([]*ir.Dataset, error)
}

// Catalog is a concurrency-safe dataset registry.
//
// Registered datasets are never mutated. Remove drops the catalog's
// reference; evaluations already holding the dataset finish undisturbed.
type Catalog struct {
	mu       sync.RWMutex
	order    []string
	datasets map[string]*ir.Dataset
	persist  Persister
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithPersister enables write-through persistence.
func WithPersister(p Persister) Option {
	return func(c *Catalog) {
		c.persist = p
	}
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{datasets: make(map[string]*ir.Dataset)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add registers ds and returns the IDs of all registered datasets in
// insertion order.
//
// The catalog stores its own copy of ds with every textual value in NFC
// form; the caller's records are not retained.
func (c *Catalog) Add(ctx context.Context, ds *ir.Dataset) ([]string, error) {
	if err := checkID(ds.ID); err != nil {
		return nil, err
	}
	if !ds.Kind.Valid() {
		return nil, &Error{Code: ErrCodeInvalidKind, ID: ds.ID, Message: fmt.Sprintf("unsupported kind %q", ds.Kind)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.datasets[ds.ID]; exists {
		return nil, &Error{Code: ErrCodeDuplicateID, ID: ds.ID, Message: "dataset already exists"}
	}

	owned := normalize(ds)
	if c.persist != nil {
		if err := c.persist.SaveDataset(ctx, owned); err != nil {
			return nil, fmt.Errorf("persist dataset %q: %w", ds.ID, err)
		}
	}
	c.register(owned)

	slog.Info("dataset added", "dataset", ds.ID, "kind", ds.Kind, "rows", len(owned.Records))
	return slices.Clone(c.order), nil
}

// Remove unregisters the dataset and returns its ID.
func (c *Catalog) Remove(ctx context.Context, id string) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.datasets[id]; !exists {
		return "", &Error{Code: ErrCodeNotFound, ID: id, Message: "dataset not found"}
	}
	if c.persist != nil {
		if err := c.persist.DeleteDataset(ctx, id); err != nil {
			return "", fmt.Errorf("delete dataset %q: %w", id, err)
		}
	}

	delete(c.datasets, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })

	slog.Info("dataset removed", "dataset", id)
	return id, nil
}

// List summarises the registered datasets in insertion order.
func (c *Catalog) List() []ir.DatasetInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]ir.DatasetInfo, 0, len(c.order))
	for _, id := range c.order {
		infos = append(infos, c.datasets[id].Info())
	}
	return infos
}

// Dataset returns the dataset registered under id.
// Implements engine.Catalog.
func (c *Catalog) Dataset(id string) (*ir.Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ds, ok := c.datasets[id]
	return ds, ok
}

// IDs returns the registered IDs in insertion order.
// Implements engine.Catalog.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

// Load replaces the in-memory registry with the persisted datasets.
// It is a no-op without a Persister.
func (c *Catalog) Load(ctx context.Context) error {
	if c.persist == nil {
		return nil
	}
	datasets, err := c.persist.LoadDatasets(ctx)
	if err != nil {
		return fmt.Errorf("load datasets: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.order = nil
	c.datasets = make(map[string]*ir.Dataset, len(datasets))
	for _, ds := range datasets {
		c.register(normalize(ds))
	}

	slog.Debug("catalog loaded", "datasets", len(datasets))
	return nil
}

// register must be called with mu held.
func (c *Catalog) register(ds *ir.Dataset) {
	c.datasets[ds.ID] = ds
	c.order = append(c.order, ds.ID)
}

func checkID(id string) error {
	if !schema.ValidDatasetID(id) {
		return &Error{
			Code:    ErrCodeInvalidID,
			ID:      id,
			Message: fmt.Sprintf("dataset ID must be non-blank and must not contain %q", schema.Separator),
		}
	}
	return nil
}

func normalize(ds *ir.Dataset) *ir.Dataset {
	records := make([]ir.Record, len(ds.Records))
	for i, rec := range ds.Records {
		records[i] = rec.Normalized()
	}
	return &ir.Dataset{ID: ds.ID, Kind: ds.Kind, Records: records}
}
