package table

import (
	"github.com/paulmthompson/seriestable/source"
	"github.com/paulmthompson/seriestable/timeframe"
)

// ExecutionPlan is a resolved row selector: the shared, read-only input
// every column computer consumes during one build. It holds exactly one of
// {index list, interval list} plus the destination time frame used for every
// subsequent source query. Plans are read many times and never mutated.
type ExecutionPlan struct {
	indices   []int64
	intervals []source.Interval
	frame     timeframe.TimeFrame
}

// HasIndices reports whether the plan is index-shaped.
func (p *ExecutionPlan) HasIndices() bool { return p.indices != nil }

// HasIntervals reports whether the plan is interval-shaped.
func (p *ExecutionPlan) HasIntervals() bool { return p.intervals != nil }

// Indices returns the index list; nil for interval-shaped plans.
func (p *ExecutionPlan) Indices() []int64 { return p.indices }

// Intervals returns the interval list; nil for index-shaped plans.
func (p *ExecutionPlan) Intervals() []source.Interval { return p.intervals }

// TimeFrame is the destination time system for every source query made
// under this plan. May be nil when the caller works in raw indices.
func (p *ExecutionPlan) TimeFrame() timeframe.TimeFrame { return p.frame }

// Len is the number of selector rows the plan covers.
func (p *ExecutionPlan) Len() int {
	if p.intervals != nil {
		return len(p.intervals)
	}
	return len(p.indices)
}
