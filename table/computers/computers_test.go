package computers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulmthompson/seriestable/entity"
	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/source"
	"github.com/paulmthompson/seriestable/table"
	"github.com/paulmthompson/seriestable/timeframe"
)

func identityFrame(t *testing.T, n int64) timeframe.TimeFrame {
	t.Helper()
	f, err := timeframe.UniformClock("test", n, 0, 1)
	require.NoError(t, err)
	return f
}

func rampAnalog(t *testing.T, frame timeframe.TimeFrame, n int) source.AnalogSource {
	t.Helper()
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i)
	}
	src, err := source.NewAnalogSeries("ramp", frame, values)
	require.NoError(t, err)
	return src
}

func intervalPlan(t *testing.T, frame timeframe.TimeFrame, ivs []source.Interval) *table.ExecutionPlan {
	t.Helper()
	plan, err := table.Resolve(table.NewIntervalSelector(ivs, frame))
	require.NoError(t, err)
	return plan
}

func timestampPlan(t *testing.T, frame timeframe.TimeFrame, ts []int64) *table.ExecutionPlan {
	t.Helper()
	plan, err := table.Resolve(table.NewTimestampSelector(ts, frame))
	require.NoError(t, err)
	return plan
}

func TestIntervalReductionAggregates(t *testing.T) {
	frame := identityFrame(t, 10)
	src := rampAnalog(t, frame, 10)
	plan := intervalPlan(t, frame, []source.Interval{{Start: 0, End: 2}, {Start: 3, End: 5}})

	tests := []struct {
		op   ReductionOp
		want []float64
	}{
		{ReduceMean, []float64{1, 4}},
		{ReduceMin, []float64{0, 3}},
		{ReduceMax, []float64{2, 5}},
		{ReduceSum, []float64{3, 12}},
		{ReduceCount, []float64{3, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			c, err := NewIntervalReduction(src, tt.op)
			require.NoError(t, err)

			res, err := c.Compute(plan)
			require.NoError(t, err)
			values, ok := res.Values.Float64s()
			require.True(t, ok)
			assert.Equal(t, tt.want, values)
			assert.False(t, res.Expanding())
		})
	}
}

func TestIntervalReductionStdDev(t *testing.T) {
	frame := identityFrame(t, 10)
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	src, err := source.NewAnalogSeries("sig", frame, values)
	require.NoError(t, err)

	c, err := NewIntervalReduction(src, ReduceStdDev)
	require.NoError(t, err)

	plan := intervalPlan(t, frame, []source.Interval{{Start: 0, End: 7}, {Start: 3, End: 3}})
	res, err := c.Compute(plan)
	require.NoError(t, err)

	out, ok := res.Values.Float64s()
	require.True(t, ok)
	assert.InDelta(t, 2.0, out[0], 1e-12)
	// Single-sample intervals deviate by zero, not NaN.
	assert.Equal(t, 0.0, out[1])
}

func TestIntervalReductionEmptyInterval(t *testing.T) {
	frame := identityFrame(t, 30)
	src := rampAnalog(t, frame, 10)
	plan := intervalPlan(t, frame, []source.Interval{{Start: 20, End: 25}})

	mean, err := NewIntervalReduction(src, ReduceMean)
	require.NoError(t, err)
	res, err := mean.Compute(plan)
	require.NoError(t, err)
	out, _ := res.Values.Float64s()
	assert.True(t, math.IsNaN(out[0]))

	count, err := NewIntervalReduction(src, ReduceCount)
	require.NoError(t, err)
	res, err = count.Compute(plan)
	require.NoError(t, err)
	out, _ = res.Values.Float64s()
	assert.Equal(t, 0.0, out[0])
}

func TestIntervalReductionValidation(t *testing.T) {
	frame := identityFrame(t, 10)
	src := rampAnalog(t, frame, 10)

	_, err := NewIntervalReduction(nil, ReduceMean)
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))

	_, err = NewIntervalReduction(src, ReductionOp(99))
	require.Error(t, err)
	assert.True(t, errors.IsOperation(err))

	c, err := NewIntervalReduction(src, ReduceMean)
	require.NoError(t, err)
	_, err = c.Compute(timestampPlan(t, frame, []int64{0}))
	require.Error(t, err)
	assert.True(t, errors.IsOperation(err))
	assert.True(t, errors.IsFatal(err))
}

func TestEventComputersInsideInterval(t *testing.T) {
	// Events at odd times; the interval [0,2] holds exactly the event at 1.
	frame := identityFrame(t, 10)
	src, err := source.NewEventSeries("spikes", frame, []float64{1, 3, 5, 7, 9})
	require.NoError(t, err)
	plan := intervalPlan(t, frame, []source.Interval{{Start: 0, End: 2}})

	presence, err := NewEventPresence(src)
	require.NoError(t, err)
	res, err := presence.Compute(plan)
	require.NoError(t, err)
	bools, _ := res.Values.Bools()
	assert.Equal(t, []bool{true}, bools)

	count, err := NewEventCount(src)
	require.NoError(t, err)
	res, err = count.Compute(plan)
	require.NoError(t, err)
	counts, _ := res.Values.Int64s()
	assert.Equal(t, []int64{1}, counts)

	gather, err := NewEventGather(src, GatherAbsolute)
	require.NoError(t, err)
	res, err = gather.Compute(plan)
	require.NoError(t, err)
	vecs, _ := res.Values.FloatVectors()
	assert.Equal(t, [][]float32{{1}}, vecs)
}

func TestEventCountInclusiveBounds(t *testing.T) {
	frame := identityFrame(t, 10)
	src, err := source.NewEventSeries("spikes", frame, []float64{3, 5, 7})
	require.NoError(t, err)

	count, err := NewEventCount(src)
	require.NoError(t, err)
	res, err := count.Compute(intervalPlan(t, frame, []source.Interval{{Start: 3, End: 7}}))
	require.NoError(t, err)
	counts, _ := res.Values.Int64s()
	assert.Equal(t, []int64{3}, counts)
}

func TestEventGatherCentered(t *testing.T) {
	frame := identityFrame(t, 10)
	src, err := source.NewEventSeries("spikes", frame, []float64{5, 7})
	require.NoError(t, err)

	gather, err := NewEventGather(src, GatherCentered)
	require.NoError(t, err)

	// Interval [4,8] has center 6: events land at -1 and +1.
	res, err := gather.Compute(intervalPlan(t, frame, []source.Interval{{Start: 4, End: 8}}))
	require.NoError(t, err)
	vecs, _ := res.Values.FloatVectors()
	assert.Equal(t, [][]float32{{-1, 1}}, vecs)
}

func TestEventGatherBadMode(t *testing.T) {
	frame := identityFrame(t, 10)
	src, err := source.NewEventSeries("spikes", frame, []float64{1})
	require.NoError(t, err)

	_, err = NewEventGather(src, GatherMode(42))
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
	assert.ErrorIs(t, err, errors.ErrInvalidParam)
}

func TestGatherModeRoundTrip(t *testing.T) {
	assert.Equal(t, GatherAbsolute, GatherModeFromString("absolute"))
	assert.Equal(t, GatherCentered, GatherModeFromString("centered"))
	assert.Equal(t, GatherMode(0), GatherModeFromString("sideways"))
}

func TestIntervalPropertyExtraction(t *testing.T) {
	frame := identityFrame(t, 10)
	plan := intervalPlan(t, frame, []source.Interval{
		{Start: 1, End: 3}, {Start: 2, End: 5}, {Start: 6, End: 8}, {Start: 0, End: 1},
	})

	tests := []struct {
		op   PropertyOp
		want []int64
	}{
		{PropertyStart, []int64{1, 2, 6, 0}},
		{PropertyEnd, []int64{3, 5, 8, 1}},
		{PropertyDuration, []int64{2, 3, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			c, err := NewIntervalProperty(tt.op)
			require.NoError(t, err)

			res, err := c.Compute(plan)
			require.NoError(t, err)
			out, ok := res.Values.Int64s()
			require.True(t, ok)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestTimestampValueSampling(t *testing.T) {
	frame := identityFrame(t, 10)
	values := []float64{10, 20, 30, 40, 50}
	src, err := source.NewAnalogSeries("sig", frame, values)
	require.NoError(t, err)

	c, err := NewTimestampValue(src)
	require.NoError(t, err)

	res, err := c.Compute(timestampPlan(t, frame, []int64{0, 2, 7}))
	require.NoError(t, err)
	out, _ := res.Values.Float64s()
	require.Len(t, out, 3)
	assert.Equal(t, 10.0, out[0])
	assert.Equal(t, 30.0, out[1])
	// No sample at index 7: NaN, never an error.
	assert.True(t, math.IsNaN(out[2]))
}

func TestTimestampInInterval(t *testing.T) {
	frame := identityFrame(t, 10)
	src, err := source.NewIntervalSeries("periods", frame,
		[]source.Interval{{Start: 2, End: 4}, {Start: 6, End: 8}})
	require.NoError(t, err)

	c, err := NewTimestampInInterval(src)
	require.NoError(t, err)

	res, err := c.Compute(timestampPlan(t, frame, []int64{0, 3, 6, 9}))
	require.NoError(t, err)
	out, _ := res.Values.Bools()
	assert.Equal(t, []bool{false, true, true, false}, out)
}

func TestAnalogOffsetsSuffixesAndValues(t *testing.T) {
	frame := identityFrame(t, 10)
	src := rampAnalog(t, frame, 10)

	c, err := NewAnalogOffsets(src, []int64{-1, 0, 2})
	require.NoError(t, err)
	assert.Equal(t, []string{".t-1", ".t+0", ".t+2"}, c.OutputSuffixes())

	results, err := c.ComputeAll(timestampPlan(t, frame, []int64{0, 5}))
	require.NoError(t, err)
	require.Len(t, results, 3)

	prev, _ := results[0].Values.Float64s()
	require.Len(t, prev, 2)
	assert.True(t, math.IsNaN(prev[0])) // nothing before index 0
	assert.Equal(t, 4.0, prev[1])

	now, _ := results[1].Values.Float64s()
	assert.Equal(t, []float64{0, 5}, now)

	ahead, _ := results[2].Values.Float64s()
	assert.Equal(t, []float64{2, 7}, ahead)
}

func TestAnalogOffsetsDefault(t *testing.T) {
	frame := identityFrame(t, 10)
	src := rampAnalog(t, frame, 10)

	c, err := NewAnalogOffsets(src, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{".t+0"}, c.OutputSuffixes())
}

func TestAnalogSliceGatherer(t *testing.T) {
	frame := identityFrame(t, 10)
	src := rampAnalog(t, frame, 10)

	c, err := NewAnalogSliceGatherer(src)
	require.NoError(t, err)

	res, err := c.Compute(intervalPlan(t, frame, []source.Interval{{Start: 2, End: 4}, {Start: 9, End: 9}}))
	require.NoError(t, err)
	vecs, _ := res.Values.FloatVectors()
	assert.Equal(t, [][]float32{{2, 3, 4}, {9}}, vecs)
}

func TestIntervalOverlapAssignAndCount(t *testing.T) {
	frame := identityFrame(t, 10)
	src, err := source.NewIntervalSeries("bouts", frame,
		[]source.Interval{{Start: 0, End: 2}, {Start: 5, End: 9}})
	require.NoError(t, err)

	rows := []source.Interval{{Start: 1, End: 3}, {Start: 3, End: 4}, {Start: 6, End: 7}}
	plan := intervalPlan(t, frame, rows)

	assign, err := NewIntervalOverlap(src, OverlapAssignID)
	require.NoError(t, err)
	res, err := assign.Compute(plan)
	require.NoError(t, err)
	ids, _ := res.Values.Int64s()
	assert.Equal(t, []int64{0, -1, 1}, ids)

	start, err := NewIntervalOverlap(src, OverlapAssignStart)
	require.NoError(t, err)
	res, err = start.Compute(plan)
	require.NoError(t, err)
	starts, _ := res.Values.Int64s()
	assert.Equal(t, []int64{0, -1, 5}, starts)

	end, err := NewIntervalOverlap(src, OverlapAssignEnd)
	require.NoError(t, err)
	res, err = end.Compute(plan)
	require.NoError(t, err)
	ends, _ := res.Values.Int64s()
	assert.Equal(t, []int64{2, -1, 9}, ends)

	count, err := NewIntervalOverlap(src, OverlapCount)
	require.NoError(t, err)
	res, err = count.Compute(intervalPlan(t, frame, []source.Interval{{Start: 1, End: 6}}))
	require.NoError(t, err)
	counts, _ := res.Values.Int64s()
	assert.Equal(t, []int64{2}, counts)
}

func lineAt(x0, y0, x1, y1 float32) source.Line {
	return source.Line{{X: x0, Y: y0}, {X: x1, Y: y1}}
}

func TestLineTimestampOnePerRow(t *testing.T) {
	frame := identityFrame(t, 3)
	lines := map[int64][]source.Line{
		0: {lineAt(0, 0, 1, 1)},
		1: {lineAt(0, 0, 2, 2)},
		2: {lineAt(0, 0, 3, 3)},
	}
	src, err := source.NewLineSeries("whiskers", frame, lines, entity.NewMemoryRegistry())
	require.NoError(t, err)

	c, err := NewLineTimestamp(src)
	require.NoError(t, err)

	res, err := c.Compute(timestampPlan(t, frame, []int64{0, 1, 2}))
	require.NoError(t, err)
	assert.True(t, res.Expanding())
	assert.Equal(t, []int{1, 1, 1}, res.RowCounts)
	out, _ := res.Values.Int64s()
	assert.Equal(t, []int64{0, 1, 2}, out)
	require.Len(t, res.EntityIDs, 3)
	for _, ids := range res.EntityIDs {
		require.Len(t, ids, 1)
		assert.NotZero(t, ids[0])
	}
}

func TestLineTimestampVaryingCounts(t *testing.T) {
	frame := identityFrame(t, 5)
	lines := map[int64][]source.Line{
		1: {lineAt(0, 0, 1, 0)},
		2: {lineAt(0, 0, 1, 0), lineAt(0, 0, 0, 1)},
		4: {lineAt(2, 0, 2, 1)},
	}
	src, err := source.NewLineSeries("whiskers", frame, lines, entity.NewMemoryRegistry())
	require.NoError(t, err)

	c, err := NewLineTimestamp(src)
	require.NoError(t, err)

	res, err := c.Compute(timestampPlan(t, frame, []int64{0, 1, 2, 3, 4}))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 0, 1}, res.RowCounts)
	out, _ := res.Values.Int64s()
	assert.Equal(t, []int64{1, 2, 2, 4}, out)
}

func TestLineTimestampBuildsExpandedTable(t *testing.T) {
	frame := identityFrame(t, 5)
	lines := map[int64][]source.Line{
		1: {lineAt(0, 0, 1, 0)},
		2: {lineAt(0, 0, 1, 0), lineAt(0, 0, 0, 1)},
		4: {lineAt(2, 0, 2, 1)},
	}
	src, err := source.NewLineSeries("whiskers", frame, lines, entity.NewMemoryRegistry())
	require.NoError(t, err)

	c, err := NewLineTimestamp(src)
	require.NoError(t, err)

	view, err := table.NewBuilder(table.NewTimestampSelector([]int64{0, 1, 2, 3, 4}, frame), nil).
		AddColumn("Timestamp", c).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 4, view.RowCount())
	out, err := view.Int64Column("Timestamp")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 2, 4}, out)
	assert.True(t, view.HasEntityRows())
}

func TestLineSamplingMultiHorizontalLine(t *testing.T) {
	frame := identityFrame(t, 3)
	lines := map[int64][]source.Line{
		0: {lineAt(0, 0, 10, 0)},
		1: {lineAt(0, 0, 10, 0)},
		2: {lineAt(0, 0, 10, 0)},
	}
	src, err := source.NewLineSeries("whiskers", frame, lines, entity.NewMemoryRegistry())
	require.NoError(t, err)

	c, err := NewLineSamplingMulti(src, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{".x@0.000", ".y@0.000", ".x@0.500", ".y@0.500", ".x@1.000", ".y@1.000"},
		c.OutputSuffixes())

	results, err := c.ComputeAll(timestampPlan(t, frame, []int64{0, 1, 2}))
	require.NoError(t, err)
	require.Len(t, results, 6)

	wantX := [][]float64{{0, 0, 0}, {5, 5, 5}, {10, 10, 10}}
	for pos := 0; pos < 3; pos++ {
		xs, _ := results[2*pos].Values.Float64s()
		assert.Equal(t, wantX[pos], xs)
		ys, _ := results[2*pos+1].Values.Float64s()
		assert.Equal(t, []float64{0, 0, 0}, ys)
	}
}

func TestLineSamplingMultiInterpolatesBends(t *testing.T) {
	// Right-angle polyline of total length 20: the midpoint sits exactly
	// on the corner.
	frame := identityFrame(t, 1)
	bent := source.Line{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	src, err := source.NewLineSeries("whiskers", frame, map[int64][]source.Line{0: {bent}}, entity.NewMemoryRegistry())
	require.NoError(t, err)

	c, err := NewLineSamplingMulti(src, 4)
	require.NoError(t, err)

	results, err := c.ComputeAll(timestampPlan(t, frame, []int64{0}))
	require.NoError(t, err)
	require.Len(t, results, 10)

	x := func(pos int) float64 { v, _ := results[2*pos].Values.Float64s(); return v[0] }
	y := func(pos int) float64 { v, _ := results[2*pos+1].Values.Float64s(); return v[0] }

	assert.InDelta(t, 0.0, x(0), 1e-9)
	assert.InDelta(t, 5.0, x(1), 1e-9)
	assert.InDelta(t, 10.0, x(2), 1e-9)
	assert.InDelta(t, 0.0, y(2), 1e-9)
	assert.InDelta(t, 5.0, y(3), 1e-9)
	assert.InDelta(t, 10.0, y(4), 1e-9)
}

func TestLineSamplingMultiValidation(t *testing.T) {
	frame := identityFrame(t, 1)
	src, err := source.NewLineSeries("whiskers", frame, map[int64][]source.Line{}, entity.NewMemoryRegistry())
	require.NoError(t, err)

	_, err = NewLineSamplingMulti(src, 0)
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))

	_, err = NewLineSamplingMulti(nil, 2)
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
}
