package table

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/paulmthompson/seriestable/entity"
	"github.com/paulmthompson/seriestable/errors"
)

// ColumnSpec binds a column name to its bound computer. Exactly one of
// Computer and Multi is set; Multi columns expand into one sibling column per
// output suffix at build time.
type ColumnSpec struct {
	Name     string
	Computer Computer
	Multi    MultiComputer
}

// BuildObserver receives build outcomes. Implementations must be cheap; the
// builder calls them synchronously.
type BuildObserver interface {
	ObserveBuild(rows, columns int, duration time.Duration, err error)
}

// Builder assembles a TableView: one row selector plus an ordered list of
// column specifications. Build resolves the selector once, runs every
// computer against the shared plan, reconciles entity expansion, and freezes
// the result. A Builder is single-use state; the produced view is immutable.
type Builder struct {
	selector RowSelector
	specs    []ColumnSpec
	logger   *slog.Logger
	observer BuildObserver
}

// NewBuilder creates a builder over the given row selector.
func NewBuilder(selector RowSelector, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		selector: selector,
		logger:   logger.With("component", "Builder"),
	}
}

// WithObserver attaches a build observer. Returns the builder for chaining.
func (b *Builder) WithObserver(o BuildObserver) *Builder {
	b.observer = o
	return b
}

// AddColumn appends a single-output column. Returns the builder for chaining.
func (b *Builder) AddColumn(name string, c Computer) *Builder {
	b.specs = append(b.specs, ColumnSpec{Name: name, Computer: c})
	return b
}

// AddMultiColumn appends a multi-output column; the final column names are
// name plus each of the computer's output suffixes. Returns the builder for
// chaining.
func (b *Builder) AddMultiColumn(name string, m MultiComputer) *Builder {
	b.specs = append(b.specs, ColumnSpec{Name: name, Multi: m})
	return b
}

// computed is one materialized column before reconciliation.
type computed struct {
	name   string
	result Result
}

// Build resolves the selector, computes every column, reconciles one-to-many
// entity rows into a uniform row count, and returns the frozen view. Shape
// and operation failures abort the build; a computer returning a
// type-mismatch classified error contributes no column and the build
// continues.
func (b *Builder) Build() (*TableView, error) {
	start := time.Now()
	view, err := b.build()
	if b.observer != nil {
		rows, cols := 0, 0
		if view != nil {
			rows, cols = view.RowCount(), view.ColumnCount()
		}
		b.observer.ObserveBuild(rows, cols, time.Since(start), err)
	}
	return view, err
}

func (b *Builder) build() (*TableView, error) {
	plan, err := Resolve(b.selector)
	if err != nil {
		return nil, err
	}

	cols, err := b.computeAll(plan)
	if err != nil {
		return nil, err
	}

	if err := b.validateShapes(plan, cols); err != nil {
		return nil, err
	}

	return b.reconcile(plan, cols)
}

// computeAll runs every column specification against the shared plan. Multi
// columns fan out into one computed column per suffix.
func (b *Builder) computeAll(plan *ExecutionPlan) ([]computed, error) {
	seen := make(map[string]struct{}, len(b.specs))
	cols := make([]computed, 0, len(b.specs))

	appendCol := func(name string, res Result) error {
		if _, dup := seen[name]; dup {
			return errors.WrapConfig(
				fmt.Errorf("column %q: %w", name, errors.ErrDuplicateColumn),
				"Builder", "Build", "column name check")
		}
		seen[name] = struct{}{}
		cols = append(cols, computed{name: name, result: res})
		return nil
	}

	for _, spec := range b.specs {
		switch {
		case spec.Multi != nil:
			results, err := spec.Multi.ComputeAll(plan)
			if err != nil {
				if errors.IsTypeMismatch(err) {
					b.logger.Warn("column skipped", "column", spec.Name, "error", err)
					continue
				}
				return nil, err
			}
			suffixes := spec.Multi.OutputSuffixes()
			if len(results) != len(suffixes) {
				return nil, errors.WrapShape(
					fmt.Errorf("column %q: %d results for %d suffixes: %w",
						spec.Name, len(results), len(suffixes), errors.ErrShapeMismatch),
					"Builder", "Build", "multi-output arity check")
			}
			for i, res := range results {
				if err := appendCol(spec.Name+suffixes[i], res); err != nil {
					return nil, err
				}
			}
		case spec.Computer != nil:
			res, err := spec.Computer.Compute(plan)
			if err != nil {
				if errors.IsTypeMismatch(err) {
					b.logger.Warn("column skipped", "column", spec.Name, "error", err)
					continue
				}
				return nil, err
			}
			if err := appendCol(spec.Name, res); err != nil {
				return nil, err
			}
		default:
			return nil, errors.WrapConfig(
				fmt.Errorf("column %q has no computer: %w", spec.Name, errors.ErrUnknownComputer),
				"Builder", "Build", "column spec check")
		}
	}
	return cols, nil
}

// validateShapes checks every result against the plan before reconciliation:
// a non-expanding column holds exactly one value per selector row, and an
// expanding column's flat value count equals the sum of its per-row entity
// counts.
func (b *Builder) validateShapes(plan *ExecutionPlan, cols []computed) error {
	for _, col := range cols {
		res := col.result
		if res.Expanding() {
			if len(res.RowCounts) != plan.Len() {
				return errors.WrapShape(
					fmt.Errorf("column %q: %d row counts for %d selector rows: %w",
						col.name, len(res.RowCounts), plan.Len(), errors.ErrShapeMismatch),
					"Builder", "Build", "row count shape check")
			}
			total := 0
			for _, n := range res.RowCounts {
				total += n
			}
			if res.Values.Len() != total {
				return errors.WrapShape(
					fmt.Errorf("column %q: %d values for %d entity rows: %w",
						col.name, res.Values.Len(), total, errors.ErrShapeMismatch),
					"Builder", "Build", "expanded value shape check")
			}
		} else if res.Values.Len() != plan.Len() {
			return errors.WrapShape(
				fmt.Errorf("column %q: %d values for %d selector rows: %w",
					col.name, res.Values.Len(), plan.Len(), errors.ErrShapeMismatch),
				"Builder", "Build", "value shape check")
		}
		if res.EntityIDs != nil && len(res.EntityIDs) != res.Values.Len() {
			return errors.WrapShape(
				fmt.Errorf("column %q: %d entity rows for %d values: %w",
					col.name, len(res.EntityIDs), res.Values.Len(), errors.ErrShapeMismatch),
				"Builder", "Build", "entity shape check")
		}
	}
	return nil
}

// reconcile folds per-column results into one uniform physical row layout.
// For each selector row the physical row count is the maximum entity count
// across expanding columns; non-expanding values broadcast across those rows.
// A selector row where every expanding column is empty survives as a single
// default-padded row only when at least one non-expanding column anchors it,
// and is dropped otherwise.
func (b *Builder) reconcile(plan *ExecutionPlan, cols []computed) (*TableView, error) {
	hasExpanding := false
	hasPlain := false
	for _, col := range cols {
		if col.result.Expanding() {
			hasExpanding = true
		} else {
			hasPlain = true
		}
	}

	rowsPerSelector := make([]int, plan.Len())
	if !hasExpanding {
		for r := range rowsPerSelector {
			rowsPerSelector[r] = 1
		}
	} else {
		for _, col := range cols {
			if !col.result.Expanding() {
				continue
			}
			for r, n := range col.result.RowCounts {
				if n > rowsPerSelector[r] {
					rowsPerSelector[r] = n
				}
			}
		}
		if hasPlain {
			for r, n := range rowsPerSelector {
				if n == 0 {
					rowsPerSelector[r] = 1
				}
			}
		}
	}

	totalRows := 0
	for _, n := range rowsPerSelector {
		totalRows += n
	}

	view := &TableView{
		names:    make([]string, 0, len(cols)),
		byName:   make(map[string]int, len(cols)),
		data:     make([]ColumnData, 0, len(cols)),
		entities: make([][][]entity.ID, 0, len(cols)),
		rowCount: totalRows,
	}

	for _, col := range cols {
		res := col.result
		out := res.Values.emptyLike(totalRows)
		var ids [][]entity.ID
		if res.EntityIDs != nil {
			ids = make([][]entity.ID, 0, totalRows)
		}

		cursor := 0
		for r, want := range rowsPerSelector {
			have := 1
			if res.Expanding() {
				have = res.RowCounts[r]
			}
			for k := 0; k < want; k++ {
				switch {
				case !res.Expanding():
					// broadcast the selector-row value across its entity rows
					out.appendFrom(res.Values, r)
					if ids != nil {
						ids = append(ids, res.EntityIDs[r])
					}
				case k < have:
					out.appendFrom(res.Values, cursor+k)
					if ids != nil {
						ids = append(ids, res.EntityIDs[cursor+k])
					}
				default:
					out.appendDefault()
					if ids != nil {
						ids = append(ids, nil)
					}
				}
			}
			if res.Expanding() {
				cursor += have
			}
		}

		if out.Len() != totalRows {
			return nil, errors.WrapShape(
				fmt.Errorf("column %q: %d rows after reconciliation, want %d: %w",
					col.name, out.Len(), totalRows, errors.ErrRowCountMismatch),
				"Builder", "Build", "row count integrity check")
		}

		view.byName[col.name] = len(view.names)
		view.names = append(view.names, col.name)
		view.data = append(view.data, out)
		view.entities = append(view.entities, ids)
	}

	view.descriptors = b.describeRows(plan, rowsPerSelector, hasExpanding)
	return view, nil
}

// describeRows records each physical row's selector provenance.
func (b *Builder) describeRows(plan *ExecutionPlan, rowsPerSelector []int, expanded bool) []RowDescriptor {
	total := 0
	for _, n := range rowsPerSelector {
		total += n
	}
	descs := make([]RowDescriptor, 0, total)
	for r, n := range rowsPerSelector {
		for k := 0; k < n; k++ {
			d := RowDescriptor{Kind: b.selector.Kind(), EntityOrdinal: -1}
			if expanded {
				d.EntityOrdinal = k
			}
			switch b.selector.Kind() {
			case SelectorTimestamp:
				d.Timestamp = plan.Indices()[r]
			case SelectorInterval:
				d.Interval = plan.Intervals()[r]
			}
			descs = append(descs, d)
		}
	}
	return descs
}
