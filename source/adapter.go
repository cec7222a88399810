package source

import (
	"math"

	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/timeframe"
)

// Component selects which coordinate of a point a PointComponentAdapter
// projects out.
type Component uint8

const (
	// ComponentX projects the x coordinate.
	ComponentX Component = iota
	// ComponentY projects the y coordinate.
	ComponentY
)

// String returns the string representation of Component
func (c Component) String() string {
	if c == ComponentY {
		return "y"
	}
	return "x"
}

// PointComponentAdapter presents one coordinate of a point stream as an
// AnalogSource. The native frame index i maps to the chosen component of the
// first point at i, or NaN when the stream holds no point there.
//
// Materialization is a two-state machine {unmaterialized, materialized}:
// the first full access walks all entries once (time-ordered) and caches a
// flat buffer; ranged accesses before that convert only the requested
// sub-range directly, trading memory for latency. The adapter is
// single-owner and not safe for concurrent use.
type PointComponentAdapter struct {
	name         string
	src          PointSource
	frame        timeframe.TimeFrame
	component    Component
	materialized bool
	buf          []float64
}

// NewPointComponentAdapter creates the adapter. The frame becomes the
// adapter's native frame; pass the point source's own frame unless the
// caller re-homes the data.
func NewPointComponentAdapter(name string, src PointSource, frame timeframe.TimeFrame, component Component) (*PointComponentAdapter, error) {
	if src == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "PointComponentAdapter", "NewPointComponentAdapter", "source validation")
	}
	if frame == nil {
		return nil, errors.WrapConfig(errors.ErrNilTimeFrame, "PointComponentAdapter", "NewPointComponentAdapter", "frame validation")
	}
	return &PointComponentAdapter{
		name:      name,
		src:       src,
		frame:     frame,
		component: component,
	}, nil
}

// Name identifies the adapted source.
func (a *PointComponentAdapter) Name() string { return a.name }

// TimeFrame is the adapter's native frame.
func (a *PointComponentAdapter) TimeFrame() timeframe.TimeFrame { return a.frame }

// Size is the number of native indices the adapter covers.
func (a *PointComponentAdapter) Size() int { return int(a.frame.NumTimes()) }

// Materialized reports whether the flat buffer has been built.
func (a *PointComponentAdapter) Materialized() bool { return a.materialized }

// Values returns the full flat buffer, materializing it on first call.
func (a *PointComponentAdapter) Values() []float64 {
	a.materialize()
	return a.buf
}

// DataInRange implements AnalogSource. Ranged access before the first full
// access bypasses the cache and converts the sub-range directly.
func (a *PointComponentAdapter) DataInRange(start, end int64, dest timeframe.TimeFrame) []float64 {
	if start > end {
		return nil
	}

	si, ei := start, end
	if dest != nil && dest != a.frame {
		startTime, endTime := rangeTimes(start, end, dest, a.frame)
		var ok bool
		si, ei, ok = nativeRange(startTime, endTime, a.frame)
		if !ok {
			return nil
		}
	}

	if si < 0 {
		si = 0
	}
	if ei >= a.frame.NumTimes() {
		ei = a.frame.NumTimes() - 1
	}
	if si > ei {
		return nil
	}

	if a.materialized {
		out := make([]float64, ei-si+1)
		copy(out, a.buf[si:ei+1])
		return out
	}

	out := make([]float64, ei-si+1)
	for i := si; i <= ei; i++ {
		out[i-si] = a.valueAt(i)
	}
	return out
}

// materialize builds the flat buffer at most once per instance.
func (a *PointComponentAdapter) materialize() {
	if a.materialized {
		return
	}
	n := a.frame.NumTimes()
	buf := make([]float64, n)
	for i := range buf {
		buf[i] = math.NaN()
	}
	for _, t := range a.src.Times() {
		if t >= 0 && t < n {
			buf[t] = a.valueAt(t)
		}
	}
	a.buf = buf
	a.materialized = true
}

func (a *PointComponentAdapter) valueAt(t int64) float64 {
	points := a.src.PointsAt(t)
	if len(points) == 0 {
		return math.NaN()
	}
	if a.component == ComponentY {
		return float64(points[0].Y)
	}
	return float64(points[0].X)
}
