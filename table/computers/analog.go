package computers

import (
	"fmt"
	"math"

	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/source"
	"github.com/paulmthompson/seriestable/table"
)

// TimestampValue samples an analog signal at each row timestamp. A timestamp
// with no sample yields NaN.
type TimestampValue struct {
	src source.AnalogSource
}

// NewTimestampValue binds an analog source.
func NewTimestampValue(src source.AnalogSource) (*TimestampValue, error) {
	if src == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "TimestampValue", "New", "source check")
	}
	return &TimestampValue{src: src}, nil
}

// Compute returns one sample per plan timestamp.
func (c *TimestampValue) Compute(plan *table.ExecutionPlan) (table.Result, error) {
	if !plan.HasIndices() {
		return table.Result{}, errors.WrapOperation(errors.ErrOperationMismatch,
			"TimestampValue", "Compute", "timestamp plan check")
	}

	indices := plan.Indices()
	out := make([]float64, len(indices))
	for i, t := range indices {
		out[i] = sampleAt(c.src, t, plan)
	}
	return table.Result{Values: table.Float64Data(out)}, nil
}

// TimestampInInterval reports, per row timestamp, whether the bound interval
// source holds an interval covering it.
type TimestampInInterval struct {
	src source.IntervalSource
}

// NewTimestampInInterval binds an interval source.
func NewTimestampInInterval(src source.IntervalSource) (*TimestampInInterval, error) {
	if src == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "TimestampInInterval", "New", "source check")
	}
	return &TimestampInInterval{src: src}, nil
}

// Compute returns one bool per plan timestamp.
func (c *TimestampInInterval) Compute(plan *table.ExecutionPlan) (table.Result, error) {
	if !plan.HasIndices() {
		return table.Result{}, errors.WrapOperation(errors.ErrOperationMismatch,
			"TimestampInInterval", "Compute", "timestamp plan check")
	}

	indices := plan.Indices()
	out := make([]bool, len(indices))
	for i, t := range indices {
		out[i] = len(c.src.IntervalsInRange(t, t, plan.TimeFrame())) > 0
	}
	return table.Result{Values: table.BoolData(out)}, nil
}

// AnalogOffsets samples an analog signal at fixed integer offsets around
// each row timestamp, producing one sub-column per offset. A missing sample
// at any offset yields NaN for that cell.
type AnalogOffsets struct {
	src     source.AnalogSource
	offsets []int64
}

// NewAnalogOffsets binds an analog source to a set of timestamp offsets.
// An empty offset list defaults to {0}.
func NewAnalogOffsets(src source.AnalogSource, offsets []int64) (*AnalogOffsets, error) {
	if src == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "AnalogOffsets", "New", "source check")
	}
	if len(offsets) == 0 {
		offsets = []int64{0}
	}
	own := make([]int64, len(offsets))
	copy(own, offsets)
	return &AnalogOffsets{src: src, offsets: own}, nil
}

// OutputSuffixes names one sub-column per offset: ".t+2", ".t-1", ".t+0".
func (c *AnalogOffsets) OutputSuffixes() []string {
	suffixes := make([]string, len(c.offsets))
	for i, off := range c.offsets {
		if off >= 0 {
			suffixes[i] = fmt.Sprintf(".t+%d", off)
		} else {
			suffixes[i] = fmt.Sprintf(".t%d", off)
		}
	}
	return suffixes
}

// ComputeAll returns one float64 column per offset, each holding one sample
// per plan timestamp.
func (c *AnalogOffsets) ComputeAll(plan *table.ExecutionPlan) ([]table.Result, error) {
	if !plan.HasIndices() {
		return nil, errors.WrapOperation(errors.ErrOperationMismatch,
			"AnalogOffsets", "ComputeAll", "timestamp plan check")
	}

	indices := plan.Indices()
	results := make([]table.Result, len(c.offsets))
	for oi, off := range c.offsets {
		out := make([]float64, len(indices))
		for i, t := range indices {
			out[i] = sampleAt(c.src, t+off, plan)
		}
		results[oi] = table.Result{Values: table.Float64Data(out)}
	}
	return results, nil
}

// AnalogSliceGatherer collects the raw analog samples inside each row
// interval into a float vector. An empty interval yields an empty vector.
type AnalogSliceGatherer struct {
	src source.AnalogSource
}

// NewAnalogSliceGatherer binds an analog source.
func NewAnalogSliceGatherer(src source.AnalogSource) (*AnalogSliceGatherer, error) {
	if src == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "AnalogSliceGatherer", "New", "source check")
	}
	return &AnalogSliceGatherer{src: src}, nil
}

// Compute returns one sample vector per plan interval.
func (c *AnalogSliceGatherer) Compute(plan *table.ExecutionPlan) (table.Result, error) {
	if !plan.HasIntervals() {
		return table.Result{}, errors.WrapOperation(errors.ErrOperationMismatch,
			"AnalogSliceGatherer", "Compute", "interval plan check")
	}

	intervals := plan.Intervals()
	out := make([][]float32, len(intervals))
	for i, iv := range intervals {
		samples := c.src.DataInRange(iv.Start, iv.End, plan.TimeFrame())
		vec := make([]float32, len(samples))
		for j, v := range samples {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return table.Result{Values: table.FloatVectorData(out)}, nil
}

// sampleAt queries the one-index-wide range at t; NaN when no sample exists.
func sampleAt(src source.AnalogSource, t int64, plan *table.ExecutionPlan) float64 {
	samples := src.DataInRange(t, t, plan.TimeFrame())
	if len(samples) == 0 {
		return math.NaN()
	}
	return samples[0]
}
