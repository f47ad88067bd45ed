package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/insight/internal/catalog"
	"github.com/roach88/insight/internal/engine"
	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/store"
)

// sourceFlags are the dataset-source flags shared by query and validate.
type sourceFlags struct {
	datasets []string
}

// buildCatalog assembles an in-memory catalog from the database (if any) and
// the --dataset files. Datasets given on the command line are never written
// back to the database.
func buildCatalog(ctx context.Context, opts *RootOptions, flags sourceFlags) (*catalog.Catalog, error) {
	cat := catalog.New()

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()}
		}
		defer st.Close()

		stored, err := st.LoadDatasets(ctx)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()}
		}
		for _, ds := range stored {
			if _, err := cat.Add(ctx, ds); err != nil {
				return nil, err
			}
		}
	}

	for _, raw := range flags.datasets {
		src, err := ParseDatasetSource(raw)
		if err != nil {
			return nil, err
		}
		ds, err := src.Load()
		if err != nil {
			return nil, err
		}
		if _, err := cat.Add(ctx, ds); err != nil {
			return nil, err
		}
	}

	return cat, nil
}

// openPersistentCatalog opens the database and returns a catalog that writes
// through to it. The caller must close the returned store.
func openPersistentCatalog(ctx context.Context, opts *RootOptions) (*catalog.Catalog, *store.Store, error) {
	if opts.Database == "" {
		return nil, nil, &LoadError{Code: ErrCodeStoreFailed, Message: "--db is required"}
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()}
	}
	cat := catalog.New(catalog.WithPersister(st))
	if err := cat.Load(ctx); err != nil {
		st.Close()
		return nil, nil, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()}
	}
	return cat, st, nil
}

// reportError writes err through the formatter and converts it to an exit
// error. Query rejections exit 1; everything else is a command error.
func reportError(f *OutputFormatter, err error) error {
	var (
		qe *engine.QueryError
		ce *catalog.Error
		le *LoadError
		ee *ExitError
	)
	switch {
	case errors.As(err, &ee):
		_ = f.Error(ErrCodeGeneric, ee.Message, nil)
		return ee
	case errors.As(err, &qe):
		var details any
		if len(qe.Details) > 0 {
			details = qe.Details
		}
		_ = f.Error(string(qe.Code), qe.Message, details)
		return WrapExitError(ExitFailure, "query rejected", err)
	case errors.As(err, &ce):
		_ = f.Error(string(ce.Code), ce.Message, map[string]string{"dataset": ce.ID})
		return WrapExitError(ExitCommandError, "catalog error", err)
	case errors.As(err, &le):
		_ = f.Error(le.Code, le.Error(), nil)
		return WrapExitError(ExitCommandError, le.Code, err)
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrCorrupt), errors.Is(err, store.ErrNotFound):
		_ = f.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeStoreFailed, err)
	default:
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeGeneric, err)
	}
}

// cells renders rows for a text table. Absent values are empty cells.
func cells(rows []ir.Row) (header []string, body [][]string) {
	if len(rows) == 0 {
		return nil, nil
	}
	header = rows[0].Columns
	body = make([][]string, len(rows))
	for i, row := range rows {
		line := make([]string, len(header))
		for j, col := range header {
			if s, ok := ir.AsText(row.Get(col)); ok {
				line[j] = s
			}
		}
		body[i] = line
	}
	return header, body
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
