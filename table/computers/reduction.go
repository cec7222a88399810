// Package computers holds the built-in column computer families: interval
// reductions and property extractors, event aggregations, timestamp value
// sampling, entity-expanding line computers, and interval overlap assignment.
// Every computer binds one source at construction and is stateless across
// Compute calls.
package computers

import (
	"fmt"
	"math"

	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/source"
	"github.com/paulmthompson/seriestable/table"
)

// ReductionOp selects the aggregate an IntervalReduction computes over the
// analog samples inside each row interval.
type ReductionOp uint8

const (
	// ReduceMean averages the samples.
	ReduceMean ReductionOp = iota + 1
	// ReduceMin takes the smallest sample.
	ReduceMin
	// ReduceMax takes the largest sample.
	ReduceMax
	// ReduceStdDev takes the population standard deviation.
	ReduceStdDev
	// ReduceSum totals the samples.
	ReduceSum
	// ReduceCount counts the samples.
	ReduceCount
)

// String returns the string representation of ReductionOp
func (op ReductionOp) String() string {
	switch op {
	case ReduceMean:
		return "mean"
	case ReduceMin:
		return "min"
	case ReduceMax:
		return "max"
	case ReduceStdDev:
		return "stddev"
	case ReduceSum:
		return "sum"
	case ReduceCount:
		return "count"
	default:
		return "unknown"
	}
}

// IntervalReduction aggregates an analog signal over each row interval into
// one float64 per row. An interval holding no samples yields NaN (count
// yields 0): missing data stays in-band and never fails the build.
type IntervalReduction struct {
	src source.AnalogSource
	op  ReductionOp
}

// NewIntervalReduction binds an analog source to a reduction operation.
// The operation is validated here so a misconfigured column fails at
// assembly time rather than mid-build.
func NewIntervalReduction(src source.AnalogSource, op ReductionOp) (*IntervalReduction, error) {
	if src == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "IntervalReduction", "New", "source check")
	}
	switch op {
	case ReduceMean, ReduceMin, ReduceMax, ReduceStdDev, ReduceSum, ReduceCount:
	default:
		return nil, errors.WrapOperation(
			fmt.Errorf("reduction %d: %w", op, errors.ErrOperationMismatch),
			"IntervalReduction", "New", "operation check")
	}
	return &IntervalReduction{src: src, op: op}, nil
}

// Compute returns one aggregate per plan interval.
func (c *IntervalReduction) Compute(plan *table.ExecutionPlan) (table.Result, error) {
	if !plan.HasIntervals() {
		return table.Result{}, errors.WrapOperation(errors.ErrOperationMismatch,
			"IntervalReduction", "Compute", "interval plan check")
	}

	intervals := plan.Intervals()
	out := make([]float64, len(intervals))
	for i, iv := range intervals {
		samples := c.src.DataInRange(iv.Start, iv.End, plan.TimeFrame())
		out[i] = reduce(c.op, samples)
	}
	return table.Result{Values: table.Float64Data(out)}, nil
}

func reduce(op ReductionOp, samples []float64) float64 {
	if op == ReduceCount {
		return float64(len(samples))
	}
	if len(samples) == 0 {
		return math.NaN()
	}

	switch op {
	case ReduceMean:
		return sum(samples) / float64(len(samples))
	case ReduceSum:
		return sum(samples)
	case ReduceMin:
		m := samples[0]
		for _, v := range samples[1:] {
			if v < m {
				m = v
			}
		}
		return m
	case ReduceMax:
		m := samples[0]
		for _, v := range samples[1:] {
			if v > m {
				m = v
			}
		}
		return m
	case ReduceStdDev:
		mean := sum(samples) / float64(len(samples))
		var ss float64
		for _, v := range samples {
			d := v - mean
			ss += d * d
		}
		return math.Sqrt(ss / float64(len(samples)))
	default:
		return math.NaN()
	}
}

func sum(samples []float64) float64 {
	var s float64
	for _, v := range samples {
		s += v
	}
	return s
}
