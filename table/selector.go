// Package table builds immutable tabular views over capability-typed data
// sources: a row selector is resolved into an execution plan, every column's
// computer runs against that shared plan, and the builder reconciles
// one-to-many entity rows before freezing the result.
package table

import (
	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/source"
	"github.com/paulmthompson/seriestable/timeframe"
)

// SelectorKind tags the variants of the row selector union.
type SelectorKind uint8

const (
	// SelectorTimestamp selects explicit timestamp indices.
	SelectorTimestamp SelectorKind = iota + 1
	// SelectorInterval selects explicit [start,end] index pairs.
	SelectorInterval
)

// String returns the string representation of SelectorKind
func (k SelectorKind) String() string {
	switch k {
	case SelectorTimestamp:
		return "timestamp"
	case SelectorInterval:
		return "interval"
	default:
		return "unknown"
	}
}

// RowSelector is the user's row intent: either explicit timestamps or
// explicit intervals, expressed on a reference time frame. It is a closed
// tagged union; exactly one payload is set.
type RowSelector struct {
	kind       SelectorKind
	timestamps []int64
	intervals  []source.Interval
	frame      timeframe.TimeFrame
}

// NewTimestampSelector selects one row per timestamp index of frame.
// Indices are expected in ascending order.
func NewTimestampSelector(timestamps []int64, frame timeframe.TimeFrame) RowSelector {
	return RowSelector{kind: SelectorTimestamp, timestamps: timestamps, frame: frame}
}

// NewIntervalSelector selects one row per [start,end] index pair of frame.
// Pairs are expected in ascending start order.
func NewIntervalSelector(intervals []source.Interval, frame timeframe.TimeFrame) RowSelector {
	return RowSelector{kind: SelectorInterval, intervals: intervals, frame: frame}
}

// Kind reports which variant the selector holds.
func (s RowSelector) Kind() SelectorKind { return s.kind }

// Len is the number of selector rows.
func (s RowSelector) Len() int {
	if s.kind == SelectorInterval {
		return len(s.intervals)
	}
	return len(s.timestamps)
}

// TimeFrame is the selector's reference frame.
func (s RowSelector) TimeFrame() timeframe.TimeFrame { return s.frame }

// Resolve turns a selector into an immutable execution plan. Resolution is
// pure and O(n) in selector length; the plan retains the selector's frame as
// the destination time system every computer converts through.
func Resolve(s RowSelector) (*ExecutionPlan, error) {
	switch s.kind {
	case SelectorTimestamp:
		indices := make([]int64, len(s.timestamps))
		copy(indices, s.timestamps)
		return &ExecutionPlan{indices: indices, frame: s.frame}, nil
	case SelectorInterval:
		intervals := make([]source.Interval, len(s.intervals))
		copy(intervals, s.intervals)
		return &ExecutionPlan{intervals: intervals, frame: s.frame}, nil
	default:
		return nil, errors.WrapShape(errors.ErrShapeMismatch, "RowSelector", "Resolve", "selector kind dispatch")
	}
}
