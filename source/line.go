package source

import (
	"sort"

	"github.com/paulmthompson/seriestable/entity"
	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/timeframe"
)

// LineSeries owns zero or more polylines per native timestamp. Identifiers
// for the polylines come from the entity registry so table rows can be
// round-tripped back to the geometry.
type LineSeries struct {
	name     string
	frame    timeframe.TimeFrame
	byTime   map[int64][]Line
	times    []int64
	entities entity.Registry
	size     int
}

// NewLineSeries creates a line source over per-timestamp polyline groups.
func NewLineSeries(name string, frame timeframe.TimeFrame, byTime map[int64][]Line, entities entity.Registry) (*LineSeries, error) {
	if byTime == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "LineSeries", "NewLineSeries", "line data validation")
	}
	if frame == nil {
		return nil, errors.WrapConfig(errors.ErrNilTimeFrame, "LineSeries", "NewLineSeries", "frame validation")
	}
	if entities == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "LineSeries", "NewLineSeries", "entity registry validation")
	}

	times := make([]int64, 0, len(byTime))
	size := 0
	for t, lines := range byTime {
		times = append(times, t)
		size += len(lines)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	return &LineSeries{
		name:     name,
		frame:    frame,
		byTime:   byTime,
		times:    times,
		entities: entities,
		size:     size,
	}, nil
}

// Name identifies the source.
func (s *LineSeries) Name() string { return s.name }

// TimeFrame is the source's native frame.
func (s *LineSeries) TimeFrame() timeframe.TimeFrame { return s.frame }

// Size is the total number of stored polylines across all timestamps.
func (s *LineSeries) Size() int { return s.size }

// LinesAt implements LineSource.
func (s *LineSeries) LinesAt(t int64) []Line { return s.byTime[t] }

// EntityCountAt implements LineSource.
func (s *LineSeries) EntityCountAt(t int64) int { return len(s.byTime[t]) }

// EntityIDsAt implements LineSource.
func (s *LineSeries) EntityIDsAt(t int64) []entity.ID {
	n := len(s.byTime[t])
	if n == 0 {
		return nil
	}
	return s.entities.IDsAt(s.name, t, n)
}

// Times returns the sorted native time indices that hold polylines.
func (s *LineSeries) Times() []int64 { return s.times }
