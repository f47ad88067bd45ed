package engine

import (
	"slices"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/queryir"
	"github.com/roach88/insight/internal/schema"
)

// projectRecords projects each filtered record onto the requested columns.
// Without transformations every column is Raw.
func projectRecords(records []ir.Record, columns []queryir.Column, kind schema.Kind) []ir.Row {
	names := columnNames(columns)
	rows := make([]ir.Row, 0, len(records))
	for _, rec := range records {
		row := ir.NewRow(names)
		for _, col := range columns {
			if c, ok := col.(queryir.Raw); ok {
				row.Set(c.Name(), fieldValue(rec, c.Ref.Field, kind))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// projectGroups emits one row per group. Raw columns read the group key,
// Derived columns read the group's aggregates.
func projectGroups(groups []*Group, t *queryir.Transformations, columns []queryir.Column) []ir.Row {
	names := columnNames(columns)
	keyIndex := make(map[string]int, len(t.Group))
	for i, ref := range t.Group {
		keyIndex[ref.Key()] = i
	}

	rows := make([]ir.Row, 0, len(groups))
	for _, g := range groups {
		row := ir.NewRow(names)
		for _, col := range columns {
			switch c := col.(type) {
			case queryir.Raw:
				if i, ok := keyIndex[c.Name()]; ok {
					row.Set(c.Name(), g.Key[i])
				}
			case queryir.Derived:
				row.Set(c.Key, g.Aggregates[c.Key])
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func columnNames(columns []queryir.Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name()
	}
	return names
}

// orderRows sorts rows in place. The sort is stable, so rows that compare
// equal on every key keep evaluation order.
//
// A simple ORDER sorts ascending by one column. A composite ORDER compares
// keys in turn and applies its direction to every key.
func orderRows(rows []ir.Row, order queryir.Order) {
	var keys []string
	descending := false

	switch o := order.(type) {
	case queryir.SimpleOrder:
		keys = []string{o.Key}
	case queryir.CompositeOrder:
		keys = o.Keys
		descending = o.Dir == queryir.DirDown
	default:
		return
	}

	slices.SortStableFunc(rows, func(a, b ir.Row) int {
		for _, k := range keys {
			c := ir.CompareValues(a.Get(k), b.Get(k))
			if c == 0 {
				continue
			}
			if descending {
				return -c
			}
			return c
		}
		return 0
	})
}
