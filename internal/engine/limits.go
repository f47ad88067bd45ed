package engine

// DefaultMaxRows is the maximum number of filtered records an ungrouped query
// may return.
const DefaultMaxRows = 5000

// DefaultMaxGroups is the maximum number of groups a query with
// TRANSFORMATIONS may produce.
const DefaultMaxGroups = 5000

// Limits bounds the size of a query result.
//
// An ungrouped query is capped on filtered records, a grouped query on
// groups only. A grouped query over more than MaxRows records succeeds as
// long as it yields at most MaxGroups groups.
type Limits struct {
	MaxRows   int
	MaxGroups int
}

// DefaultLimits returns the standard 5000/5000 caps.
func DefaultLimits() Limits {
	return Limits{MaxRows: DefaultMaxRows, MaxGroups: DefaultMaxGroups}
}

// withDefaults replaces non-positive caps with the defaults.
func (l Limits) withDefaults() Limits {
	if l.MaxRows <= 0 {
		l.MaxRows = DefaultMaxRows
	}
	if l.MaxGroups <= 0 {
		l.MaxGroups = DefaultMaxGroups
	}
	return l
}

// checkRows enforces the ungrouped cap.
func (l Limits) checkRows(n int) error {
	if n > l.MaxRows {
		return NewResultTooLargeError(n, l.MaxRows, "rows")
	}
	return nil
}

// checkGroups enforces the grouped cap.
func (l Limits) checkGroups(n int) error {
	if n > l.MaxGroups {
		return NewResultTooLargeError(n, l.MaxGroups, "groups")
	}
	return nil
}
