package computers

import (
	"fmt"

	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/source"
	"github.com/paulmthompson/seriestable/table"
	"github.com/paulmthompson/seriestable/timeframe"
)

// OverlapOp selects how an IntervalOverlap relates each row interval to the
// bound source's intervals.
type OverlapOp uint8

const (
	// OverlapAssignID yields the ordinal of the last source interval at or
	// before the row interval's end, -1 when none overlaps.
	OverlapAssignID OverlapOp = iota + 1
	// OverlapCount counts the source intervals overlapping the row interval.
	OverlapCount
	// OverlapAssignStart yields the assigned interval's start as a row-frame
	// index, -1 when none overlaps.
	OverlapAssignStart
	// OverlapAssignEnd yields the assigned interval's end as a row-frame
	// index, -1 when none overlaps.
	OverlapAssignEnd
)

// String returns the string representation of OverlapOp
func (op OverlapOp) String() string {
	switch op {
	case OverlapAssignID:
		return "assign-id"
	case OverlapCount:
		return "count"
	case OverlapAssignStart:
		return "assign-start"
	case OverlapAssignEnd:
		return "assign-end"
	default:
		return "unknown"
	}
}

// IntervalOverlap relates each row interval to the intervals of a second,
// bound source: assigning the identity (or bounds) of the covering source
// interval, or counting overlaps.
type IntervalOverlap struct {
	src source.IntervalSource
	op  OverlapOp
}

// NewIntervalOverlap binds an interval source to an overlap operation.
func NewIntervalOverlap(src source.IntervalSource, op OverlapOp) (*IntervalOverlap, error) {
	if src == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "IntervalOverlap", "New", "source check")
	}
	switch op {
	case OverlapAssignID, OverlapCount, OverlapAssignStart, OverlapAssignEnd:
	default:
		return nil, errors.WrapOperation(
			fmt.Errorf("overlap %d: %w", op, errors.ErrOperationMismatch),
			"IntervalOverlap", "New", "operation check")
	}
	return &IntervalOverlap{src: src, op: op}, nil
}

// Compute returns one int64 per plan interval.
func (c *IntervalOverlap) Compute(plan *table.ExecutionPlan) (table.Result, error) {
	if !plan.HasIntervals() {
		return table.Result{}, errors.WrapOperation(errors.ErrOperationMismatch,
			"IntervalOverlap", "Compute", "interval plan check")
	}

	rows := plan.Intervals()
	out := make([]int64, len(rows))

	if c.op == OverlapCount {
		for i, row := range rows {
			out[i] = int64(len(c.src.IntervalsInRange(row.Start, row.End, plan.TimeFrame())))
		}
		return table.Result{Values: table.Int64Data(out)}, nil
	}

	dest := plan.TimeFrame()
	native := c.src.TimeFrame()
	for i, row := range rows {
		// All source intervals starting at or before the row's end; the
		// last one is the assignment candidate.
		candidates := c.src.IntervalsInRange(0, row.End, dest)
		if len(candidates) == 0 {
			out[i] = -1
			continue
		}
		last := candidates[len(candidates)-1]
		srcStart := timeAt(native, last.Start)
		srcEnd := timeAt(native, last.End)
		rowStart := timeAt(dest, row.Start)
		rowEnd := timeAt(dest, row.End)
		if srcStart > rowEnd || rowStart > srcEnd {
			out[i] = -1
			continue
		}
		switch c.op {
		case OverlapAssignID:
			out[i] = int64(len(candidates) - 1)
		case OverlapAssignStart:
			out[i] = indexAt(dest, srcStart)
		case OverlapAssignEnd:
			out[i] = indexAt(dest, srcEnd)
		}
	}
	return table.Result{Values: table.Int64Data(out)}, nil
}

// timeAt converts an index to a time; raw indices pass through when the
// frame is nil.
func timeAt(f timeframe.TimeFrame, i int64) float64 {
	if f == nil {
		return float64(i)
	}
	return f.TimeAtIndex(i)
}

// indexAt converts a time to an index; raw times pass through when the
// frame is nil.
func indexAt(f timeframe.TimeFrame, t float64) int64 {
	if f == nil {
		return int64(t)
	}
	return f.IndexAtTime(t)
}
