package table

import (
	"math"

	"github.com/paulmthompson/seriestable/errors"
)

// ValueKind tags the closed set of column value types the engine supports.
type ValueKind uint8

const (
	// ValueFloat64 is a double-precision scalar column.
	ValueFloat64 ValueKind = iota + 1
	// ValueInt64 is a 64-bit integer column.
	ValueInt64
	// ValueInt32 is a 32-bit integer column.
	ValueInt32
	// ValueBool is a boolean column.
	ValueBool
	// ValueFloatVector is a vector-of-float column.
	ValueFloatVector
)

// String returns the string representation of ValueKind
func (k ValueKind) String() string {
	switch k {
	case ValueFloat64:
		return "float64"
	case ValueInt64:
		return "int64"
	case ValueInt32:
		return "int32"
	case ValueBool:
		return "bool"
	case ValueFloatVector:
		return "vector<float32>"
	default:
		return "unknown"
	}
}

// ColumnData is the closed union of per-row column value slices. Exactly one
// payload is populated, selected by kind.
type ColumnData struct {
	kind    ValueKind
	floats  []float64
	ints    []int64
	ints32  []int32
	bools   []bool
	vectors [][]float32
}

// Float64Data wraps a float64 slice as column data.
func Float64Data(v []float64) ColumnData { return ColumnData{kind: ValueFloat64, floats: v} }

// Int64Data wraps an int64 slice as column data.
func Int64Data(v []int64) ColumnData { return ColumnData{kind: ValueInt64, ints: v} }

// Int32Data wraps an int32 slice as column data.
func Int32Data(v []int32) ColumnData { return ColumnData{kind: ValueInt32, ints32: v} }

// BoolData wraps a bool slice as column data.
func BoolData(v []bool) ColumnData { return ColumnData{kind: ValueBool, bools: v} }

// FloatVectorData wraps a slice of float32 vectors as column data.
func FloatVectorData(v [][]float32) ColumnData { return ColumnData{kind: ValueFloatVector, vectors: v} }

// Kind reports the value kind; 0 for the zero ColumnData.
func (d ColumnData) Kind() ValueKind { return d.kind }

// Len is the number of rows the column holds.
func (d ColumnData) Len() int {
	switch d.kind {
	case ValueFloat64:
		return len(d.floats)
	case ValueInt64:
		return len(d.ints)
	case ValueInt32:
		return len(d.ints32)
	case ValueBool:
		return len(d.bools)
	case ValueFloatVector:
		return len(d.vectors)
	default:
		return 0
	}
}

// Float64s returns the float64 payload.
func (d ColumnData) Float64s() ([]float64, bool) { return d.floats, d.kind == ValueFloat64 }

// Int64s returns the int64 payload.
func (d ColumnData) Int64s() ([]int64, bool) { return d.ints, d.kind == ValueInt64 }

// Int32s returns the int32 payload.
func (d ColumnData) Int32s() ([]int32, bool) { return d.ints32, d.kind == ValueInt32 }

// Bools returns the bool payload.
func (d ColumnData) Bools() ([]bool, bool) { return d.bools, d.kind == ValueBool }

// FloatVectors returns the vector payload.
func (d ColumnData) FloatVectors() ([][]float32, bool) { return d.vectors, d.kind == ValueFloatVector }

// emptyLike creates an empty column of the same kind with the given capacity.
func (d ColumnData) emptyLike(capacity int) ColumnData {
	out := ColumnData{kind: d.kind}
	switch d.kind {
	case ValueFloat64:
		out.floats = make([]float64, 0, capacity)
	case ValueInt64:
		out.ints = make([]int64, 0, capacity)
	case ValueInt32:
		out.ints32 = make([]int32, 0, capacity)
	case ValueBool:
		out.bools = make([]bool, 0, capacity)
	case ValueFloatVector:
		out.vectors = make([][]float32, 0, capacity)
	}
	return out
}

// appendFrom copies row i of src onto the end of d. Kinds must match.
func (d *ColumnData) appendFrom(src ColumnData, i int) {
	switch d.kind {
	case ValueFloat64:
		d.floats = append(d.floats, src.floats[i])
	case ValueInt64:
		d.ints = append(d.ints, src.ints[i])
	case ValueInt32:
		d.ints32 = append(d.ints32, src.ints32[i])
	case ValueBool:
		d.bools = append(d.bools, src.bools[i])
	case ValueFloatVector:
		d.vectors = append(d.vectors, src.vectors[i])
	}
}

// appendDefault appends the kind's stand-in value: NaN for floats (the
// engine's missing-sample sentinel), zero otherwise.
func (d *ColumnData) appendDefault() {
	switch d.kind {
	case ValueFloat64:
		d.floats = append(d.floats, math.NaN())
	case ValueInt64:
		d.ints = append(d.ints, 0)
	case ValueInt32:
		d.ints32 = append(d.ints32, 0)
	case ValueBool:
		d.bools = append(d.bools, false)
	case ValueFloatVector:
		d.vectors = append(d.vectors, nil)
	}
}

// checkKind verifies d holds the wanted kind.
func (d ColumnData) checkKind(want ValueKind, component, method string) error {
	if d.kind != want {
		return errors.WrapConfig(errors.ErrColumnKind, component, method, "value kind check")
	}
	return nil
}
