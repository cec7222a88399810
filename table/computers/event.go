package computers

import (
	"fmt"

	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/source"
	"github.com/paulmthompson/seriestable/table"
)

// EventPresence reports, per row interval, whether the bound event source
// fires inside it.
type EventPresence struct {
	src source.EventSource
}

// NewEventPresence binds an event source to a presence test.
func NewEventPresence(src source.EventSource) (*EventPresence, error) {
	if src == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "EventPresence", "New", "source check")
	}
	return &EventPresence{src: src}, nil
}

// Compute returns one bool per plan interval.
func (c *EventPresence) Compute(plan *table.ExecutionPlan) (table.Result, error) {
	if !plan.HasIntervals() {
		return table.Result{}, errors.WrapOperation(errors.ErrOperationMismatch,
			"EventPresence", "Compute", "interval plan check")
	}

	intervals := plan.Intervals()
	out := make([]bool, len(intervals))
	for i, iv := range intervals {
		out[i] = len(c.src.EventsInRange(iv.Start, iv.End, plan.TimeFrame())) > 0
	}
	return table.Result{Values: table.BoolData(out)}, nil
}

// EventCount counts, per row interval, the events of the bound source inside
// it. Both interval bounds are inclusive.
type EventCount struct {
	src source.EventSource
}

// NewEventCount binds an event source to a count.
func NewEventCount(src source.EventSource) (*EventCount, error) {
	if src == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "EventCount", "New", "source check")
	}
	return &EventCount{src: src}, nil
}

// Compute returns one count per plan interval.
func (c *EventCount) Compute(plan *table.ExecutionPlan) (table.Result, error) {
	if !plan.HasIntervals() {
		return table.Result{}, errors.WrapOperation(errors.ErrOperationMismatch,
			"EventCount", "Compute", "interval plan check")
	}

	intervals := plan.Intervals()
	out := make([]int64, len(intervals))
	for i, iv := range intervals {
		out[i] = int64(len(c.src.EventsInRange(iv.Start, iv.End, plan.TimeFrame())))
	}
	return table.Result{Values: table.Int64Data(out)}, nil
}

// GatherMode selects the reference frame of gathered event times.
type GatherMode uint8

const (
	// GatherAbsolute keeps event times as-is.
	GatherAbsolute GatherMode = iota + 1
	// GatherCentered reports event times relative to the interval's center.
	GatherCentered
)

// String returns the string representation of GatherMode
func (m GatherMode) String() string {
	switch m {
	case GatherAbsolute:
		return "absolute"
	case GatherCentered:
		return "centered"
	default:
		return "unknown"
	}
}

// GatherModeFromString parses a GatherMode name. Returns 0 for unknown names.
func GatherModeFromString(s string) GatherMode {
	switch s {
	case "absolute":
		return GatherAbsolute
	case "centered":
		return GatherCentered
	default:
		return 0
	}
}

// EventGather collects, per row interval, the event times of the bound
// source inside it into a float vector, either absolute or relative to the
// interval center.
type EventGather struct {
	src  source.EventSource
	mode GatherMode
}

// NewEventGather binds an event source to a gather. The mode is validated
// here so a bad "mode" parameter fails at assembly time.
func NewEventGather(src source.EventSource, mode GatherMode) (*EventGather, error) {
	if src == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "EventGather", "New", "source check")
	}
	switch mode {
	case GatherAbsolute, GatherCentered:
	default:
		return nil, errors.WrapConfig(
			fmt.Errorf("gather mode %d: %w", mode, errors.ErrInvalidParam),
			"EventGather", "New", "mode check")
	}
	return &EventGather{src: src, mode: mode}, nil
}

// Compute returns one event-time vector per plan interval.
func (c *EventGather) Compute(plan *table.ExecutionPlan) (table.Result, error) {
	if !plan.HasIntervals() {
		return table.Result{}, errors.WrapOperation(errors.ErrOperationMismatch,
			"EventGather", "Compute", "interval plan check")
	}

	frame := plan.TimeFrame()
	intervals := plan.Intervals()
	out := make([][]float32, len(intervals))
	for i, iv := range intervals {
		events := c.src.EventsInRange(iv.Start, iv.End, frame)
		vec := make([]float32, len(events))
		var center float64
		if c.mode == GatherCentered && frame != nil {
			center = (frame.TimeAtIndex(iv.Start) + frame.TimeAtIndex(iv.End)) / 2
		} else if c.mode == GatherCentered {
			center = float64(iv.Start+iv.End) / 2
		}
		for j, t := range events {
			vec[j] = float32(t - center)
		}
		out[i] = vec
	}
	return table.Result{Values: table.FloatVectorData(out)}, nil
}
