package table

import "github.com/paulmthompson/seriestable/entity"

// Result is one column's output for a plan. For a non-expanding computer,
// Values holds one value per selector row and RowCounts is nil. An
// entity-expanding computer sets RowCounts (one count per selector row) and
// lays Values out flat in the owning source's per-timestamp enumeration
// order, so Values.Len() equals the sum of RowCounts.
type Result struct {
	Values ColumnData
	// EntityIDs is the optional per-value-row set of owning entity
	// identifiers; nil for non-entity-bearing computations.
	EntityIDs [][]entity.ID
	// RowCounts marks an entity-expanding result when non-nil.
	RowCounts []int
}

// Expanding reports whether the result carries per-row entity counts.
func (r Result) Expanding() bool { return r.RowCounts != nil }

// Computer is a named column algorithm bound to one data source. Compute is
// independent and re-entrant given a fresh plan; no computer retains
// cross-call mutable state.
type Computer interface {
	Compute(plan *ExecutionPlan) (Result, error)
}

// MultiComputer produces several sibling named sub-columns from one bound
// source, e.g. sampling a polyline at several parametric positions into
// x/y pairs. All results share one expansion layout.
type MultiComputer interface {
	// OutputSuffixes names the sub-columns; appended to the column
	// specification's base name.
	OutputSuffixes() []string
	// ComputeAll returns one result per suffix, in suffix order.
	ComputeAll(plan *ExecutionPlan) ([]Result, error)
}
