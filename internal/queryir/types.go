package queryir

import "github.com/roach88/insight/internal/schema"

// Query is a validated query. It is produced only by Validate and is
// immutable afterwards.
type Query struct {
	// DatasetID is the single dataset every qualified key refers to.
	DatasetID string

	// Kind is the schema every referenced field belongs to.
	Kind schema.Kind

	// Where is the predicate tree. Never nil: an empty WHERE is Empty{}.
	Where Filter

	// Options holds the projection and ordering.
	Options Options

	// Transformations is nil when the query has no TRANSFORMATIONS block.
	Transformations *Transformations
}

// HasTransformations reports whether the query groups its results.
func (q *Query) HasTransformations() bool {
	return q.Transformations != nil
}

// FieldRef is a qualified reference to a logical field, e.g. courses_avg.
type FieldRef struct {
	DatasetID string
	Field     schema.Field
}

// Key returns the qualified query key, which is also the output column name.
func (r FieldRef) Key() string {
	return schema.Qualify(r.DatasetID, r.Field)
}

// Filter represents a node of the WHERE predicate tree.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern enables exhaustive type switches in evaluators.
//
// Filter types:
//   - Empty: matches every record
//   - And, Or, Not: logical connectives
//   - Compare: numeric LT/GT/EQ against a literal
//   - Match: wildcard pattern against a textual field
type Filter interface {
	filterNode() // Marker method - seals interface to this package
}

// Empty matches every record. It is the WHERE of `"WHERE": {}`.
type Empty struct{}

func (Empty) filterNode() {}

// And is true iff every sub-filter is true. Filters is never empty.
type And struct {
	Filters []Filter
}

func (And) filterNode() {}

// Or is true iff at least one sub-filter is true. Filters is never empty.
type Or struct {
	Filters []Filter
}

func (Or) filterNode() {}

// Not negates its sub-filter.
type Not struct {
	Filter Filter
}

func (Not) filterNode() {}

// CompareOp is a numeric comparator.
type CompareOp string

const (
	OpLT CompareOp = "LT"
	OpGT CompareOp = "GT"
	OpEQ CompareOp = "EQ"
)

// Compare tests a numeric field against a literal.
//
// Semantics:
//
//	LT: field <  Value
//	GT: field >  Value
//	EQ: field == Value (exact, no epsilon)
type Compare struct {
	Op    CompareOp
	Field FieldRef
	Value float64
}

func (Compare) filterNode() {}

// Match tests a textual field against a wildcard pattern.
//
// Pattern grammar: an optional leading '*', an optional trailing '*', and no
// '*' anywhere else.
//
//	"cpsc"   exact
//	"*sc"    suffix
//	"cp*"    prefix
//	"*ps*"   substring
//	"*", "**" anything
type Match struct {
	Field   FieldRef
	Pattern string
}

func (Match) filterNode() {}

// Column is one requested output column.
//
// This is a sealed interface: a column is either a raw schema field (Raw) or
// the output of an APPLY rule (Derived). The split is decided once during
// validation so projection never re-parses column names.
type Column interface {
	columnNode()
	// Name is the output key of the column in result rows.
	Name() string
}

// Raw projects a schema field.
type Raw struct {
	Ref FieldRef
}

func (Raw) columnNode() {}

// Name returns the qualified key.
func (c Raw) Name() string { return c.Ref.Key() }

// Derived projects the value computed by the APPLY rule with the same key.
type Derived struct {
	Key string
}

func (Derived) columnNode() {}

// Name returns the apply key.
func (c Derived) Name() string { return c.Key }

// Direction of a composite ORDER.
type Direction string

const (
	DirUp   Direction = "UP"
	DirDown Direction = "DOWN"
)

// Order is a sealed interface for ORDER clauses. A nil Order means the
// result keeps evaluation order.
type Order interface {
	orderNode()
}

// SimpleOrder sorts ascending by a single column.
type SimpleOrder struct {
	Key string
}

func (SimpleOrder) orderNode() {}

// CompositeOrder sorts by Keys in turn, later keys breaking ties of earlier
// ones. Dir applies to every key.
type CompositeOrder struct {
	Dir  Direction
	Keys []string
}

func (CompositeOrder) orderNode() {}

// Options is the OPTIONS block.
type Options struct {
	Columns []Column
	Order   Order
}

// ColumnNames returns the output column names in query order.
func (o Options) ColumnNames() []string {
	names := make([]string, len(o.Columns))
	for i, c := range o.Columns {
		names[i] = c.Name()
	}
	return names
}

// Token is an aggregate function.
type Token string

const (
	TokenMax   Token = "MAX"
	TokenMin   Token = "MIN"
	TokenAvg   Token = "AVG"
	TokenCount Token = "COUNT"
	TokenSum   Token = "SUM"
)

// Numeric reports whether the token requires a numeric source field.
func (t Token) Numeric() bool {
	return t == TokenMax || t == TokenMin || t == TokenAvg || t == TokenSum
}

func (t Token) valid() bool {
	return t.Numeric() || t == TokenCount
}

// ApplyRule computes one aggregate per group and publishes it as Key.
type ApplyRule struct {
	Key   string
	Token Token
	Field FieldRef
}

// Transformations is the TRANSFORMATIONS block.
type Transformations struct {
	// Group is never empty.
	Group []FieldRef
	// Apply may be empty.
	Apply []ApplyRule
}
