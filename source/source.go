// Package source defines the capability-typed data source abstraction: a
// closed union over five range-queryable views (Analog, Event, Interval,
// Line, Point) of heterogeneous scientific time series. Sources never know
// about tables; they only answer range queries, converting between their
// native time frame and whatever destination frame the caller supplies.
package source

import (
	"github.com/paulmthompson/seriestable/entity"
	"github.com/paulmthompson/seriestable/timeframe"
)

// Kind tags the variants of the closed source union.
type Kind uint8

const (
	// KindAnalog is a continuously sampled scalar signal.
	KindAnalog Kind = iota + 1
	// KindEvent is a sorted sequence of discrete event times.
	KindEvent
	// KindInterval is a sorted sequence of [start,end] index pairs.
	KindInterval
	// KindLine is a per-timestamp collection of polylines.
	KindLine
	// KindPoint is a per-timestamp collection of points.
	KindPoint
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindAnalog:
		return "analog"
	case KindEvent:
		return "event"
	case KindInterval:
		return "interval"
	case KindLine:
		return "line"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// KindFromString parses a Kind name. Returns 0 for unknown names.
func KindFromString(s string) Kind {
	switch s {
	case "analog":
		return KindAnalog
	case "event":
		return KindEvent
	case "interval":
		return KindInterval
	case "line":
		return KindLine
	case "point":
		return KindPoint
	default:
		return 0
	}
}

// Interval is a closed [Start,End] index pair on some time frame.
type Interval struct {
	Start int64
	End   int64
}

// Point is one 2D sample.
type Point struct {
	X float32
	Y float32
}

// Line is a polyline: an ordered sequence of points.
type Line []Point

// Source is the behavior every capability variant shares.
type Source interface {
	// Name identifies the source for dependency tracking and configuration.
	Name() string
	// TimeFrame is the source's native time coordinate system.
	TimeFrame() timeframe.TimeFrame
	// Size is the number of stored samples, events, intervals, or items.
	Size() int
}

// AnalogSource is a continuously sampled signal queryable by index range.
type AnalogSource interface {
	Source
	// DataInRange returns the samples whose times fall inside the closed
	// range [start,end] expressed as indices of dest. A nil dest means the
	// range is already in the source's native frame. An empty result is the
	// in-band missing-sample signal; it is never an error.
	DataInRange(start, end int64, dest timeframe.TimeFrame) []float64
}

// EventSource is a sorted sequence of discrete event times.
type EventSource interface {
	Source
	// EventsInRange returns, in time order, every event t with
	// startTime <= t <= endTime where the bounds are the times of the
	// [start,end] indices of dest (native frame when dest is nil).
	// Lookup is a lower/upper-bound binary search: O(log n + k).
	EventsInRange(start, end int64, dest timeframe.TimeFrame) []float64
}

// IntervalSource is a sorted sequence of index intervals.
type IntervalSource interface {
	Source
	// IntervalsInRange returns, in order, every stored interval overlapping
	// the closed query range [start,end] expressed as indices of dest.
	// Returned intervals stay in the source's native index coordinates.
	IntervalsInRange(start, end int64, dest timeframe.TimeFrame) []Interval
}

// LineSource owns zero or more polylines per native timestamp.
type LineSource interface {
	Source
	// LinesAt returns the polylines at the native time index, in the
	// source's own enumeration order.
	LinesAt(t int64) []Line
	// EntityCountAt returns how many polylines exist at the time index.
	EntityCountAt(t int64) int
	// EntityIDsAt returns the stable identifiers of the polylines at the
	// time index, aligned with LinesAt order.
	EntityIDsAt(t int64) []entity.ID
}

// PointSource owns zero or more points per native timestamp.
type PointSource interface {
	Source
	// PointsAt returns the points at the native time index.
	PointsAt(t int64) []Point
	// EntityCountAt returns how many points exist at the time index.
	EntityCountAt(t int64) int
	// EntityIDsAt returns stable identifiers aligned with PointsAt order.
	EntityIDsAt(t int64) []entity.ID
	// Times returns the sorted native time indices that hold points.
	Times() []int64
}

// Handle is the closed tagged union over the five capability interfaces.
// The registry pattern-matches on its Kind; exactly one variant is set.
// The zero Handle is the "no source" result of a failed adapter creation.
type Handle struct {
	kind     Kind
	analog   AnalogSource
	event    EventSource
	interval IntervalSource
	line     LineSource
	point    PointSource
}

// AnalogHandle wraps an AnalogSource in the union.
func AnalogHandle(s AnalogSource) Handle { return Handle{kind: KindAnalog, analog: s} }

// EventHandle wraps an EventSource in the union.
func EventHandle(s EventSource) Handle { return Handle{kind: KindEvent, event: s} }

// IntervalHandle wraps an IntervalSource in the union.
func IntervalHandle(s IntervalSource) Handle { return Handle{kind: KindInterval, interval: s} }

// LineHandle wraps a LineSource in the union.
func LineHandle(s LineSource) Handle { return Handle{kind: KindLine, line: s} }

// PointHandle wraps a PointSource in the union.
func PointHandle(s PointSource) Handle { return Handle{kind: KindPoint, point: s} }

// Kind reports which variant the handle holds; 0 for the zero Handle.
func (h Handle) Kind() Kind { return h.kind }

// IsZero reports whether the handle holds no source.
func (h Handle) IsZero() bool { return h.kind == 0 }

// Analog returns the analog variant.
func (h Handle) Analog() (AnalogSource, bool) { return h.analog, h.kind == KindAnalog }

// Event returns the event variant.
func (h Handle) Event() (EventSource, bool) { return h.event, h.kind == KindEvent }

// Interval returns the interval variant.
func (h Handle) Interval() (IntervalSource, bool) { return h.interval, h.kind == KindInterval }

// Line returns the line variant.
func (h Handle) Line() (LineSource, bool) { return h.line, h.kind == KindLine }

// Point returns the point variant.
func (h Handle) Point() (PointSource, bool) { return h.point, h.kind == KindPoint }

// base returns the shared Source view of whichever variant is set.
func (h Handle) base() Source {
	switch h.kind {
	case KindAnalog:
		return h.analog
	case KindEvent:
		return h.event
	case KindInterval:
		return h.interval
	case KindLine:
		return h.line
	case KindPoint:
		return h.point
	default:
		return nil
	}
}

// Name returns the wrapped source's name, or "" for the zero Handle.
func (h Handle) Name() string {
	if s := h.base(); s != nil {
		return s.Name()
	}
	return ""
}

// TimeFrame returns the wrapped source's native frame, or nil.
func (h Handle) TimeFrame() timeframe.TimeFrame {
	if s := h.base(); s != nil {
		return s.TimeFrame()
	}
	return nil
}

// Size returns the wrapped source's size, or 0.
func (h Handle) Size() int {
	if s := h.base(); s != nil {
		return s.Size()
	}
	return 0
}

// rangeTimes converts a closed [start,end] index range on dest to time
// values. A nil dest means the indices are already native to native.
func rangeTimes(start, end int64, dest, native timeframe.TimeFrame) (float64, float64) {
	if dest == nil {
		dest = native
	}
	return dest.TimeAtIndex(start), dest.TimeAtIndex(end)
}

// nativeRange converts a time span to the native closed index range covering
// it: the first native index at or after startTime through the last native
// index at or before endTime. ok is false when the span holds no samples.
func nativeRange(startTime, endTime float64, native timeframe.TimeFrame) (int64, int64, bool) {
	si := native.IndexAtTime(startTime)
	if native.TimeAtIndex(si) < startTime {
		si++
	}
	ei := native.IndexAtTime(endTime)
	// IndexAtTime clamps below the frame's range, so re-check the bound.
	if native.TimeAtIndex(ei) > endTime {
		return 0, 0, false
	}
	if si > ei || si >= native.NumTimes() {
		return 0, 0, false
	}
	return si, ei, true
}
