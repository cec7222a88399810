package source

import (
	"sort"

	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/timeframe"
)

// IntervalSeries is a sorted sequence of closed index intervals on the
// source's native frame.
type IntervalSeries struct {
	name      string
	frame     timeframe.TimeFrame
	intervals []Interval
}

// NewIntervalSeries creates an interval source. Intervals are sorted by
// start index on construction so range queries can binary-search.
func NewIntervalSeries(name string, frame timeframe.TimeFrame, intervals []Interval) (*IntervalSeries, error) {
	if intervals == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "IntervalSeries", "NewIntervalSeries", "interval validation")
	}
	if frame == nil {
		return nil, errors.WrapConfig(errors.ErrNilTimeFrame, "IntervalSeries", "NewIntervalSeries", "frame validation")
	}
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	return &IntervalSeries{name: name, frame: frame, intervals: sorted}, nil
}

// Name identifies the source.
func (s *IntervalSeries) Name() string { return s.name }

// TimeFrame is the source's native frame.
func (s *IntervalSeries) TimeFrame() timeframe.TimeFrame { return s.frame }

// Size is the number of stored intervals.
func (s *IntervalSeries) Size() int { return len(s.intervals) }

// IntervalsInRange implements IntervalSource. An interval overlaps the query
// when its native [Start,End] intersects the converted closed range.
func (s *IntervalSeries) IntervalsInRange(start, end int64, dest timeframe.TimeFrame) []Interval {
	if start > end || len(s.intervals) == 0 {
		return nil
	}

	qs, qe := start, end
	if dest != nil && dest != s.frame {
		startTime, endTime := rangeTimes(start, end, dest, s.frame)
		// Overlap is judged in native index coordinates: widen to the native
		// indices bracketing the query times.
		qs = s.frame.IndexAtTime(startTime)
		if s.frame.TimeAtIndex(qs) < startTime {
			qs++
		}
		qe = s.frame.IndexAtTime(endTime)
	}

	// First interval whose start is past the query end bounds the scan.
	hi := sort.Search(len(s.intervals), func(i int) bool { return s.intervals[i].Start > qe })

	var out []Interval
	for i := 0; i < hi; i++ {
		if s.intervals[i].End >= qs {
			out = append(out, s.intervals[i])
		}
	}
	return out
}
