package computers

import (
	"fmt"

	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/table"
)

// PropertyOp selects which facet of each row interval an IntervalProperty
// extracts.
type PropertyOp uint8

const (
	// PropertyStart extracts the interval's start index.
	PropertyStart PropertyOp = iota + 1
	// PropertyEnd extracts the interval's end index.
	PropertyEnd
	// PropertyDuration extracts end minus start.
	PropertyDuration
)

// String returns the string representation of PropertyOp
func (op PropertyOp) String() string {
	switch op {
	case PropertyStart:
		return "start"
	case PropertyEnd:
		return "end"
	case PropertyDuration:
		return "duration"
	default:
		return "unknown"
	}
}

// IntervalProperty extracts a structural facet of each row interval itself:
// its start index, end index, or duration. It reads the plan alone and binds
// no source.
type IntervalProperty struct {
	op PropertyOp
}

// NewIntervalProperty validates and binds the property operation.
func NewIntervalProperty(op PropertyOp) (*IntervalProperty, error) {
	switch op {
	case PropertyStart, PropertyEnd, PropertyDuration:
	default:
		return nil, errors.WrapOperation(
			fmt.Errorf("property %d: %w", op, errors.ErrOperationMismatch),
			"IntervalProperty", "New", "operation check")
	}
	return &IntervalProperty{op: op}, nil
}

// Compute returns one index value per plan interval.
func (c *IntervalProperty) Compute(plan *table.ExecutionPlan) (table.Result, error) {
	if !plan.HasIntervals() {
		return table.Result{}, errors.WrapOperation(errors.ErrOperationMismatch,
			"IntervalProperty", "Compute", "interval plan check")
	}

	intervals := plan.Intervals()
	out := make([]int64, len(intervals))
	for i, iv := range intervals {
		switch c.op {
		case PropertyStart:
			out[i] = iv.Start
		case PropertyEnd:
			out[i] = iv.End
		case PropertyDuration:
			out[i] = iv.End - iv.Start
		}
	}
	return table.Result{Values: table.Int64Data(out)}, nil
}
