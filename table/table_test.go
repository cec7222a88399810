package table

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulmthompson/seriestable/entity"
	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/source"
	"github.com/paulmthompson/seriestable/timeframe"
)

// stubComputer returns a fixed non-expanding result.
type stubComputer struct {
	values ColumnData
	ids    [][]entity.ID
	err    error
}

func (s stubComputer) Compute(*ExecutionPlan) (Result, error) {
	if s.err != nil {
		return Result{}, s.err
	}
	return Result{Values: s.values, EntityIDs: s.ids}, nil
}

// stubExpanding returns a fixed entity-expanding result.
type stubExpanding struct {
	values ColumnData
	counts []int
	ids    [][]entity.ID
}

func (s stubExpanding) Compute(*ExecutionPlan) (Result, error) {
	return Result{Values: s.values, RowCounts: s.counts, EntityIDs: s.ids}, nil
}

// stubMulti fans a base result into two suffixed sub-columns.
type stubMulti struct {
	results []Result
}

func (s stubMulti) OutputSuffixes() []string { return []string{".a", ".b"} }

func (s stubMulti) ComputeAll(*ExecutionPlan) ([]Result, error) { return s.results, nil }

func testFrame(t *testing.T, n int64) timeframe.TimeFrame {
	t.Helper()
	f, err := timeframe.UniformClock("test", n, 0, 1)
	require.NoError(t, err)
	return f
}

func TestResolveTimestampSelector(t *testing.T) {
	frame := testFrame(t, 10)
	sel := NewTimestampSelector([]int64{1, 3, 5}, frame)

	plan, err := Resolve(sel)
	require.NoError(t, err)

	assert.True(t, plan.HasIndices())
	assert.False(t, plan.HasIntervals())
	assert.Equal(t, []int64{1, 3, 5}, plan.Indices())
	assert.Equal(t, 3, plan.Len())
	assert.Equal(t, frame, plan.TimeFrame())
}

func TestResolveIntervalSelector(t *testing.T) {
	frame := testFrame(t, 10)
	ivs := []source.Interval{{Start: 0, End: 2}, {Start: 4, End: 6}}
	sel := NewIntervalSelector(ivs, frame)

	plan, err := Resolve(sel)
	require.NoError(t, err)

	assert.True(t, plan.HasIntervals())
	assert.False(t, plan.HasIndices())
	assert.Equal(t, ivs, plan.Intervals())
	assert.Equal(t, 2, plan.Len())
}

func TestResolveEmptySelectorKeepsShape(t *testing.T) {
	frame := testFrame(t, 10)

	plan, err := Resolve(NewTimestampSelector([]int64{}, frame))
	require.NoError(t, err)
	assert.True(t, plan.HasIndices())
	assert.False(t, plan.HasIntervals())
	assert.Equal(t, 0, plan.Len())
}

func TestResolveZeroSelectorFails(t *testing.T) {
	_, err := Resolve(RowSelector{})
	require.Error(t, err)
	assert.True(t, errors.IsShape(err))
}

func TestResolveCopiesInput(t *testing.T) {
	frame := testFrame(t, 10)
	ts := []int64{1, 2, 3}
	plan, err := Resolve(NewTimestampSelector(ts, frame))
	require.NoError(t, err)

	ts[0] = 99
	assert.Equal(t, []int64{1, 2, 3}, plan.Indices())
}

func TestBuildSimpleColumns(t *testing.T) {
	frame := testFrame(t, 10)
	sel := NewTimestampSelector([]int64{0, 1, 2}, frame)

	view, err := NewBuilder(sel, nil).
		AddColumn("f", stubComputer{values: Float64Data([]float64{1, 2, 3})}).
		AddColumn("b", stubComputer{values: BoolData([]bool{true, false, true})}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 3, view.RowCount())
	assert.Equal(t, 2, view.ColumnCount())
	assert.Equal(t, []string{"f", "b"}, view.ColumnNames())

	f, err := view.Float64Column("f")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, f)

	bools, err := view.BoolColumn("b")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, bools)

	assert.False(t, view.HasEntityRows())
	d, err := view.Descriptor(1)
	require.NoError(t, err)
	assert.Equal(t, SelectorTimestamp, d.Kind)
	assert.Equal(t, int64(1), d.Timestamp)
	assert.Equal(t, -1, d.EntityOrdinal)
}

func TestBuildExpansionDropsEmptySelectorRows(t *testing.T) {
	// Entity counts 0,1,2,0,1 with no plain column: empty selector rows
	// vanish and the table holds one physical row per entity.
	frame := testFrame(t, 10)
	sel := NewTimestampSelector([]int64{0, 1, 2, 3, 4}, frame)

	view, err := NewBuilder(sel, nil).
		AddColumn("v", stubExpanding{
			values: Float64Data([]float64{1, 2, 2, 4}),
			counts: []int{0, 1, 2, 0, 1},
		}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 4, view.RowCount())
	v, err := view.Float64Column("v")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 2, 4}, v)

	d, err := view.Descriptor(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.Timestamp)
	assert.Equal(t, 0, d.EntityOrdinal)

	d, err = view.Descriptor(2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.Timestamp)
	assert.Equal(t, 1, d.EntityOrdinal)
}

func TestBuildExpansionKeepsAnchoredEmptyRows(t *testing.T) {
	// A plain column anchors empty selector rows: they survive as one
	// default-padded physical row each.
	frame := testFrame(t, 10)
	sel := NewTimestampSelector([]int64{0, 1, 2, 3, 4}, frame)

	view, err := NewBuilder(sel, nil).
		AddColumn("v", stubExpanding{
			values: Float64Data([]float64{1, 2, 2, 4}),
			counts: []int{0, 1, 2, 0, 1},
		}).
		AddColumn("p", stubComputer{values: Int64Data([]int64{10, 11, 12, 13, 14})}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 6, view.RowCount())

	v, err := view.Float64Column("v")
	require.NoError(t, err)
	require.Len(t, v, 6)
	assert.True(t, math.IsNaN(v[0]))
	assert.Equal(t, []float64{1, 2, 2}, v[1:4])
	assert.True(t, math.IsNaN(v[4]))
	assert.Equal(t, 4.0, v[5])

	p, err := view.Int64Column("p")
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12, 12, 13, 14}, p)
}

func TestBuildBroadcastsAcrossEntityRows(t *testing.T) {
	frame := testFrame(t, 10)
	sel := NewTimestampSelector([]int64{0, 1}, frame)

	view, err := NewBuilder(sel, nil).
		AddColumn("v", stubExpanding{
			values: Float64Data([]float64{1, 2, 3}),
			counts: []int{1, 2},
			ids:    [][]entity.ID{{7}, {8}, {9}},
		}).
		AddColumn("p", stubComputer{values: Float64Data([]float64{100, 200})}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 3, view.RowCount())
	p, err := view.Float64Column("p")
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 200, 200}, p)

	assert.True(t, view.HasEntityRows())
	ids, err := view.RowEntityIDs(2)
	require.NoError(t, err)
	assert.Equal(t, []entity.ID{9}, ids)
}

func TestBuildShorterExpandingColumnPads(t *testing.T) {
	// Two expanding columns of unequal counts: the wider one sets the
	// row count and the narrower pads with its kind's default.
	frame := testFrame(t, 10)
	sel := NewTimestampSelector([]int64{0, 1}, frame)

	view, err := NewBuilder(sel, nil).
		AddColumn("wide", stubExpanding{
			values: Float64Data([]float64{1, 2, 3}),
			counts: []int{1, 2},
		}).
		AddColumn("narrow", stubExpanding{
			values: Int64Data([]int64{10, 20}),
			counts: []int{1, 1},
		}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 3, view.RowCount())
	n, err := view.Int64Column("narrow")
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 0}, n)
}

func TestBuildMultiColumnFansOut(t *testing.T) {
	frame := testFrame(t, 10)
	sel := NewTimestampSelector([]int64{0, 1}, frame)

	view, err := NewBuilder(sel, nil).
		AddMultiColumn("pos", stubMulti{results: []Result{
			{Values: Float64Data([]float64{1, 2})},
			{Values: Float64Data([]float64{3, 4})},
		}}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"pos.a", "pos.b"}, view.ColumnNames())
	a, err := view.Float64Column("pos.a")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, a)
}

func TestBuildDuplicateColumnNameFails(t *testing.T) {
	frame := testFrame(t, 10)
	sel := NewTimestampSelector([]int64{0}, frame)

	_, err := NewBuilder(sel, nil).
		AddColumn("v", stubComputer{values: Float64Data([]float64{1})}).
		AddColumn("v", stubComputer{values: Float64Data([]float64{2})}).
		Build()
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
	assert.ErrorIs(t, err, errors.ErrDuplicateColumn)
}

func TestBuildShapeMismatchFails(t *testing.T) {
	frame := testFrame(t, 10)
	sel := NewTimestampSelector([]int64{0, 1, 2}, frame)

	_, err := NewBuilder(sel, nil).
		AddColumn("v", stubComputer{values: Float64Data([]float64{1})}).
		Build()
	require.Error(t, err)
	assert.True(t, errors.IsShape(err))
	assert.True(t, errors.IsFatal(err))
}

func TestBuildSkipsTypeMismatchColumns(t *testing.T) {
	frame := testFrame(t, 10)
	sel := NewTimestampSelector([]int64{0, 1}, frame)

	bad := stubComputer{err: errors.WrapTypeMismatch(
		errors.ErrSourceKindMismatch, "stub", "Compute", "source kind check")}

	view, err := NewBuilder(sel, nil).
		AddColumn("bad", bad).
		AddColumn("good", stubComputer{values: Float64Data([]float64{1, 2})}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 1, view.ColumnCount())
	assert.False(t, view.HasColumn("bad"))
	assert.True(t, view.HasColumn("good"))
}

func TestViewUnknownColumn(t *testing.T) {
	frame := testFrame(t, 10)
	sel := NewTimestampSelector([]int64{0}, frame)

	view, err := NewBuilder(sel, nil).
		AddColumn("v", stubComputer{values: Float64Data([]float64{1})}).
		Build()
	require.NoError(t, err)

	_, err = view.Column("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownColumn)

	_, err = view.Int64Column("v")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrColumnKind)
}

func TestViewIntervalDescriptors(t *testing.T) {
	frame := testFrame(t, 10)
	ivs := []source.Interval{{Start: 0, End: 2}, {Start: 4, End: 6}}
	sel := NewIntervalSelector(ivs, frame)

	view, err := NewBuilder(sel, nil).
		AddColumn("v", stubComputer{values: Float64Data([]float64{1, 2})}).
		Build()
	require.NoError(t, err)

	d, err := view.Descriptor(1)
	require.NoError(t, err)
	assert.Equal(t, SelectorInterval, d.Kind)
	assert.Equal(t, source.Interval{Start: 4, End: 6}, d.Interval)
}

func TestArrowRecordExport(t *testing.T) {
	frame := testFrame(t, 10)
	sel := NewTimestampSelector([]int64{0, 1}, frame)

	view, err := NewBuilder(sel, nil).
		AddColumn("f", stubComputer{values: Float64Data([]float64{1.5, 2.5})}).
		AddColumn("n", stubComputer{values: Int64Data([]int64{3, 4})}).
		AddColumn("b", stubComputer{values: BoolData([]bool{true, false})}).
		AddColumn("vec", stubComputer{values: FloatVectorData([][]float32{{1, 2}, {3}})}).
		Build()
	require.NoError(t, err)

	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	rec, err := view.ArrowRecord(mem)
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(2), rec.NumRows())
	assert.Equal(t, int64(4), rec.NumCols())
	assert.Equal(t, "f", rec.Schema().Field(0).Name)
	assert.Equal(t, "float64", rec.Schema().Field(0).Type.Name())
	assert.Equal(t, "list", rec.Schema().Field(3).Type.Name())
}

func TestColumnDataKinds(t *testing.T) {
	tests := []struct {
		name string
		data ColumnData
		kind ValueKind
		n    int
	}{
		{"float64", Float64Data([]float64{1, 2}), ValueFloat64, 2},
		{"int64", Int64Data([]int64{1}), ValueInt64, 1},
		{"int32", Int32Data([]int32{1, 2, 3}), ValueInt32, 3},
		{"bool", BoolData(nil), ValueBool, 0},
		{"vector", FloatVectorData([][]float32{{1}}), ValueFloatVector, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.data.Kind())
			assert.Equal(t, tt.n, tt.data.Len())
		})
	}
}
