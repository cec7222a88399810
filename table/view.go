package table

import (
	"fmt"
	"sort"

	"github.com/paulmthompson/seriestable/entity"
	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/source"
)

// RowDescriptor records a physical table row's provenance: the selector row
// it came from and, for entity-expanded tables, the ordinal of the owning
// entity within that selector row.
type RowDescriptor struct {
	// Kind mirrors the selector the table was built from.
	Kind SelectorKind
	// Timestamp is the selector timestamp index (timestamp selectors).
	Timestamp int64
	// Interval is the selector interval (interval selectors).
	Interval source.Interval
	// EntityOrdinal is the entity's position within the selector row, or -1
	// when the table was not entity-expanded.
	EntityOrdinal int
}

// TableView is an immutable, ordered set of named columns sharing one row
// count. Built once by a Builder; read-only afterward.
type TableView struct {
	names       []string
	byName      map[string]int
	data        []ColumnData
	entities    [][][]entity.ID
	descriptors []RowDescriptor
	rowCount    int
}

// RowCount is the uniform row count shared by every column.
func (t *TableView) RowCount() int { return t.rowCount }

// ColumnCount is the number of columns.
func (t *TableView) ColumnCount() int { return len(t.names) }

// ColumnNames returns the column names in table order.
func (t *TableView) ColumnNames() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// HasColumn reports whether the table holds the named column.
func (t *TableView) HasColumn(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// ColumnKind returns the value kind of the named column.
func (t *TableView) ColumnKind(name string) (ValueKind, error) {
	i, err := t.columnIndex(name, "ColumnKind")
	if err != nil {
		return 0, err
	}
	return t.data[i].Kind(), nil
}

// Column returns the named column's data.
func (t *TableView) Column(name string) (ColumnData, error) {
	i, err := t.columnIndex(name, "Column")
	if err != nil {
		return ColumnData{}, err
	}
	return t.data[i], nil
}

// Float64Column returns the named column as float64 values.
func (t *TableView) Float64Column(name string) ([]float64, error) {
	d, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if err := d.checkKind(ValueFloat64, "TableView", "Float64Column"); err != nil {
		return nil, err
	}
	return d.floats, nil
}

// Int64Column returns the named column as int64 values.
func (t *TableView) Int64Column(name string) ([]int64, error) {
	d, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if err := d.checkKind(ValueInt64, "TableView", "Int64Column"); err != nil {
		return nil, err
	}
	return d.ints, nil
}

// Int32Column returns the named column as int32 values.
func (t *TableView) Int32Column(name string) ([]int32, error) {
	d, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if err := d.checkKind(ValueInt32, "TableView", "Int32Column"); err != nil {
		return nil, err
	}
	return d.ints32, nil
}

// BoolColumn returns the named column as bool values.
func (t *TableView) BoolColumn(name string) ([]bool, error) {
	d, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if err := d.checkKind(ValueBool, "TableView", "BoolColumn"); err != nil {
		return nil, err
	}
	return d.bools, nil
}

// FloatVectorColumn returns the named column as float32 vectors.
func (t *TableView) FloatVectorColumn(name string) ([][]float32, error) {
	d, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if err := d.checkKind(ValueFloatVector, "TableView", "FloatVectorColumn"); err != nil {
		return nil, err
	}
	return d.vectors, nil
}

// ColumnEntityIDs returns the named column's per-row entity identifiers;
// nil when the column is not entity-bearing.
func (t *TableView) ColumnEntityIDs(name string) ([][]entity.ID, error) {
	i, err := t.columnIndex(name, "ColumnEntityIDs")
	if err != nil {
		return nil, err
	}
	return t.entities[i], nil
}

// RowEntityIDs returns the deduplicated union of entity identifiers owning
// the row across all columns, in ascending ID order.
func (t *TableView) RowEntityIDs(row int) ([]entity.ID, error) {
	if row < 0 || row >= t.rowCount {
		return nil, errors.WrapConfig(errors.ErrRowOutOfRange, "TableView", "RowEntityIDs", "row bounds check")
	}

	seen := make(map[entity.ID]struct{})
	var out []entity.ID
	for _, col := range t.entities {
		if col == nil {
			continue
		}
		for _, id := range col[row] {
			if id == 0 {
				continue
			}
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// HasEntityRows reports whether any column carries entity identifiers.
func (t *TableView) HasEntityRows() bool {
	for _, col := range t.entities {
		if col != nil {
			return true
		}
	}
	return false
}

// Descriptor returns the provenance of a physical row.
func (t *TableView) Descriptor(row int) (RowDescriptor, error) {
	if row < 0 || row >= len(t.descriptors) {
		return RowDescriptor{}, errors.WrapConfig(errors.ErrRowOutOfRange, "TableView", "Descriptor", "row bounds check")
	}
	return t.descriptors[row], nil
}

func (t *TableView) columnIndex(name, method string) (int, error) {
	i, ok := t.byName[name]
	if !ok {
		return 0, errors.WrapConfig(
			fmt.Errorf("column %q: %w", name, errors.ErrUnknownColumn),
			"TableView", method, "column lookup")
	}
	return i, nil
}
