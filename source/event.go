package source

import (
	"sort"

	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/timeframe"
)

// EventSeries is a sorted sequence of discrete event times on the shared
// time axis of its native frame.
type EventSeries struct {
	name   string
	frame  timeframe.TimeFrame
	events []float64
}

// NewEventSeries creates an event source. Events are sorted on construction
// so range queries can binary-search.
func NewEventSeries(name string, frame timeframe.TimeFrame, events []float64) (*EventSeries, error) {
	if events == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "EventSeries", "NewEventSeries", "event validation")
	}
	if frame == nil {
		return nil, errors.WrapConfig(errors.ErrNilTimeFrame, "EventSeries", "NewEventSeries", "frame validation")
	}
	sorted := make([]float64, len(events))
	copy(sorted, events)
	sort.Float64s(sorted)
	return &EventSeries{name: name, frame: frame, events: sorted}, nil
}

// Name identifies the source.
func (s *EventSeries) Name() string { return s.name }

// TimeFrame is the source's native frame.
func (s *EventSeries) TimeFrame() timeframe.TimeFrame { return s.frame }

// Size is the number of stored events.
func (s *EventSeries) Size() int { return len(s.events) }

// EventsInRange implements EventSource. Both bounds are inclusive.
func (s *EventSeries) EventsInRange(start, end int64, dest timeframe.TimeFrame) []float64 {
	if start > end || len(s.events) == 0 {
		return nil
	}

	startTime, endTime := rangeTimes(start, end, dest, s.frame)

	// Lower bound: first event >= startTime. Upper bound: first event > endTime.
	lo := sort.SearchFloat64s(s.events, startTime)
	hi := sort.Search(len(s.events), func(i int) bool { return s.events[i] > endTime })
	if lo >= hi {
		return nil
	}

	out := make([]float64, hi-lo)
	copy(out, s.events[lo:hi])
	return out
}
