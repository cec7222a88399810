package source

import (
	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/timeframe"
)

// AnalogSeries is a dense analog signal: values[i] is the sample at native
// frame index i.
type AnalogSeries struct {
	name   string
	frame  timeframe.TimeFrame
	values []float64
}

// NewAnalogSeries creates an analog source over a dense value vector.
func NewAnalogSeries(name string, frame timeframe.TimeFrame, values []float64) (*AnalogSeries, error) {
	if values == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "AnalogSeries", "NewAnalogSeries", "value validation")
	}
	if frame == nil {
		return nil, errors.WrapConfig(errors.ErrNilTimeFrame, "AnalogSeries", "NewAnalogSeries", "frame validation")
	}
	return &AnalogSeries{name: name, frame: frame, values: values}, nil
}

// Name identifies the source.
func (s *AnalogSeries) Name() string { return s.name }

// TimeFrame is the source's native frame.
func (s *AnalogSeries) TimeFrame() timeframe.TimeFrame { return s.frame }

// Size is the number of stored samples.
func (s *AnalogSeries) Size() int { return len(s.values) }

// DataInRange implements AnalogSource.
func (s *AnalogSeries) DataInRange(start, end int64, dest timeframe.TimeFrame) []float64 {
	if start > end || len(s.values) == 0 {
		return nil
	}

	si, ei := start, end
	if dest != nil && dest != s.frame {
		startTime, endTime := rangeTimes(start, end, dest, s.frame)
		var ok bool
		si, ei, ok = nativeRange(startTime, endTime, s.frame)
		if !ok {
			return nil
		}
	}

	if si < 0 {
		si = 0
	}
	if ei >= int64(len(s.values)) {
		ei = int64(len(s.values)) - 1
	}
	if si > ei {
		return nil
	}

	out := make([]float64, ei-si+1)
	copy(out, s.values[si:ei+1])
	return out
}
