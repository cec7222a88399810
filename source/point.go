package source

import (
	"sort"

	"github.com/paulmthompson/seriestable/entity"
	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/timeframe"
)

// PointSeries owns zero or more points per native timestamp.
type PointSeries struct {
	name     string
	frame    timeframe.TimeFrame
	byTime   map[int64][]Point
	times    []int64
	entities entity.Registry
	size     int
}

// NewPointSeries creates a point source over per-timestamp point groups.
func NewPointSeries(name string, frame timeframe.TimeFrame, byTime map[int64][]Point, entities entity.Registry) (*PointSeries, error) {
	if byTime == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "PointSeries", "NewPointSeries", "point data validation")
	}
	if frame == nil {
		return nil, errors.WrapConfig(errors.ErrNilTimeFrame, "PointSeries", "NewPointSeries", "frame validation")
	}
	if entities == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "PointSeries", "NewPointSeries", "entity registry validation")
	}

	times := make([]int64, 0, len(byTime))
	size := 0
	for t, points := range byTime {
		times = append(times, t)
		size += len(points)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	return &PointSeries{
		name:     name,
		frame:    frame,
		byTime:   byTime,
		times:    times,
		entities: entities,
		size:     size,
	}, nil
}

// Name identifies the source.
func (s *PointSeries) Name() string { return s.name }

// TimeFrame is the source's native frame.
func (s *PointSeries) TimeFrame() timeframe.TimeFrame { return s.frame }

// Size is the total number of stored points across all timestamps.
func (s *PointSeries) Size() int { return s.size }

// PointsAt implements PointSource.
func (s *PointSeries) PointsAt(t int64) []Point { return s.byTime[t] }

// EntityCountAt implements PointSource.
func (s *PointSeries) EntityCountAt(t int64) int { return len(s.byTime[t]) }

// EntityIDsAt implements PointSource.
func (s *PointSeries) EntityIDsAt(t int64) []entity.ID {
	n := len(s.byTime[t])
	if n == 0 {
		return nil
	}
	return s.entities.IDsAt(s.name, t, n)
}

// Times implements PointSource.
func (s *PointSeries) Times() []int64 { return s.times }
