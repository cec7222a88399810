// Package timeframe defines the time coordinate system abstraction the table
// engine converts through. Every data source carries a native TimeFrame, and
// every table query names a destination TimeFrame; sources convert between
// the two on each range query so that sources sampled at different rates or
// clocks can share one table.
package timeframe

import (
	"fmt"
	"sort"

	"github.com/paulmthompson/seriestable/errors"
)

// TimeFrame is the narrow view of a time coordinate system the engine
// consumes. Concrete implementations live with their owning data stores;
// Clock below exists for tests and the batch pipeline.
type TimeFrame interface {
	// Name identifies the frame for configuration lookup.
	Name() string
	// NumTimes is the number of discrete indices the frame covers.
	NumTimes() int64
	// TimeAtIndex converts a frame index to a time value on the shared axis.
	TimeAtIndex(idx int64) float64
	// IndexAtTime converts a time value back to the index of the last sample
	// at or before it, clamped to the frame's range.
	IndexAtTime(t float64) int64
}

// Clock is a TimeFrame over an explicit, sorted vector of time values.
// Index i maps to times[i]; the reverse mapping is a binary search.
type Clock struct {
	name  string
	times []float64
}

// NewClock creates a Clock from a sorted, non-empty time value vector.
func NewClock(name string, times []float64) (*Clock, error) {
	if len(times) == 0 {
		return nil, errors.WrapConfig(errors.ErrNilTimeFrame, "Clock", "NewClock", "time vector validation")
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return nil, errors.WrapConfig(
				fmt.Errorf("time values not sorted at index %d", i),
				"Clock", "NewClock", "time vector validation")
		}
	}
	return &Clock{name: name, times: times}, nil
}

// UniformClock creates a Clock with n evenly spaced time values starting at
// start with the given step. Convenient for identity frames (start=0, step=1).
func UniformClock(name string, n int64, start, step float64) (*Clock, error) {
	if n <= 0 {
		return nil, errors.WrapConfig(errors.ErrNilTimeFrame, "Clock", "UniformClock", "length validation")
	}
	times := make([]float64, n)
	for i := int64(0); i < n; i++ {
		times[i] = start + float64(i)*step
	}
	return &Clock{name: name, times: times}, nil
}

// Name identifies the frame.
func (c *Clock) Name() string { return c.name }

// NumTimes is the number of indices the clock covers.
func (c *Clock) NumTimes() int64 { return int64(len(c.times)) }

// TimeAtIndex returns the time value at idx, clamped to the clock's range.
func (c *Clock) TimeAtIndex(idx int64) float64 {
	if idx < 0 {
		idx = 0
	}
	if idx >= int64(len(c.times)) {
		idx = int64(len(c.times)) - 1
	}
	return c.times[idx]
}

// IndexAtTime returns the index of the last time value at or before t,
// clamped to [0, NumTimes-1].
func (c *Clock) IndexAtTime(t float64) int64 {
	// First index with times[i] > t; the answer is one before it.
	i := sort.Search(len(c.times), func(i int) bool { return c.times[i] > t })
	if i == 0 {
		return 0
	}
	return int64(i - 1)
}
