package computers

import (
	"fmt"
	"math"

	"github.com/paulmthompson/seriestable/entity"
	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/source"
	"github.com/paulmthompson/seriestable/table"
	"github.com/paulmthompson/seriestable/timeframe"
)

// LineTimestamp emits, per polyline present at each row timestamp, the
// timestamp index owning it. One output row per entity; timestamps with no
// polylines contribute no rows.
type LineTimestamp struct {
	src source.LineSource
}

// NewLineTimestamp binds a line source.
func NewLineTimestamp(src source.LineSource) (*LineTimestamp, error) {
	if src == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "LineTimestamp", "New", "source check")
	}
	return &LineTimestamp{src: src}, nil
}

// Compute returns one int64 per entity, flat in timestamp then enumeration
// order, with per-timestamp row counts.
func (c *LineTimestamp) Compute(plan *table.ExecutionPlan) (table.Result, error) {
	if !plan.HasIndices() {
		return table.Result{}, errors.WrapOperation(errors.ErrOperationMismatch,
			"LineTimestamp", "Compute", "timestamp plan check")
	}

	indices := plan.Indices()
	counts := make([]int, len(indices))
	var values []int64
	var ids [][]entity.ID
	for i, t := range indices {
		nt := nativeIndex(c.src.TimeFrame(), plan.TimeFrame(), t)
		n := c.src.EntityCountAt(nt)
		counts[i] = n
		if n == 0 {
			continue
		}
		owners := c.src.EntityIDsAt(nt)
		for k := 0; k < n; k++ {
			values = append(values, t)
			if k < len(owners) {
				ids = append(ids, []entity.ID{owners[k]})
			} else {
				ids = append(ids, nil)
			}
		}
	}
	return table.Result{
		Values:    table.Int64Data(values),
		EntityIDs: ids,
		RowCounts: counts,
	}, nil
}

// LineSamplingMulti samples every polyline present at each row timestamp at
// evenly spaced arc-length fractions, producing an interleaved x/y
// sub-column pair per fraction. One output row per polyline.
type LineSamplingMulti struct {
	src      source.LineSource
	segments int
}

// NewLineSamplingMulti binds a line source to a sampling resolution:
// segments+1 positions from 0 to 1 inclusive.
func NewLineSamplingMulti(src source.LineSource, segments int) (*LineSamplingMulti, error) {
	if src == nil {
		return nil, errors.WrapConfig(errors.ErrNilSource, "LineSamplingMulti", "New", "source check")
	}
	if segments < 1 {
		return nil, errors.WrapConfig(
			fmt.Errorf("segments %d: %w", segments, errors.ErrInvalidParam),
			"LineSamplingMulti", "New", "segments check")
	}
	return &LineSamplingMulti{src: src, segments: segments}, nil
}

// OutputSuffixes interleaves an x/y pair per sampling fraction:
// ".x@0.000", ".y@0.000", ".x@0.500", ...
func (c *LineSamplingMulti) OutputSuffixes() []string {
	suffixes := make([]string, 0, (c.segments+1)*2)
	for s := 0; s <= c.segments; s++ {
		frac := float64(s) / float64(c.segments)
		suffixes = append(suffixes,
			fmt.Sprintf(".x@%.3f", frac),
			fmt.Sprintf(".y@%.3f", frac))
	}
	return suffixes
}

// ComputeAll returns one float64 column per suffix, all sharing one
// per-timestamp expansion layout.
func (c *LineSamplingMulti) ComputeAll(plan *table.ExecutionPlan) ([]table.Result, error) {
	if !plan.HasIndices() {
		return nil, errors.WrapOperation(errors.ErrOperationMismatch,
			"LineSamplingMulti", "ComputeAll", "timestamp plan check")
	}

	indices := plan.Indices()
	nOut := (c.segments + 1) * 2
	counts := make([]int, len(indices))
	columns := make([][]float64, nOut)
	var ids [][]entity.ID

	for i, t := range indices {
		nt := nativeIndex(c.src.TimeFrame(), plan.TimeFrame(), t)
		lines := c.src.LinesAt(nt)
		counts[i] = len(lines)
		if len(lines) == 0 {
			continue
		}
		owners := c.src.EntityIDsAt(nt)
		for k, line := range lines {
			for s := 0; s <= c.segments; s++ {
				frac := float64(s) / float64(c.segments)
				x, y := samplePolyline(line, frac)
				columns[2*s] = append(columns[2*s], x)
				columns[2*s+1] = append(columns[2*s+1], y)
			}
			if k < len(owners) {
				ids = append(ids, []entity.ID{owners[k]})
			} else {
				ids = append(ids, nil)
			}
		}
	}

	results := make([]table.Result, nOut)
	for j := range results {
		results[j] = table.Result{
			Values:    table.Float64Data(columns[j]),
			EntityIDs: ids,
			RowCounts: counts,
		}
	}
	return results, nil
}

// samplePolyline interpolates the point at the given arc-length fraction.
// An empty polyline samples to the origin; a degenerate one to its first
// point.
func samplePolyline(line source.Line, frac float64) (float64, float64) {
	if len(line) == 0 {
		return 0, 0
	}
	if len(line) == 1 {
		return float64(line[0].X), float64(line[0].Y)
	}

	total := 0.0
	segs := make([]float64, len(line)-1)
	for i := 0; i < len(line)-1; i++ {
		dx := float64(line[i+1].X - line[i].X)
		dy := float64(line[i+1].Y - line[i].Y)
		segs[i] = math.Hypot(dx, dy)
		total += segs[i]
	}
	if total == 0 {
		return float64(line[0].X), float64(line[0].Y)
	}

	target := frac * total
	for i, seg := range segs {
		if target <= seg || i == len(segs)-1 {
			u := 0.0
			if seg > 0 {
				u = target / seg
			}
			if u > 1 {
				u = 1
			}
			x := float64(line[i].X) + u*float64(line[i+1].X-line[i].X)
			y := float64(line[i].Y) + u*float64(line[i+1].Y-line[i].Y)
			return x, y
		}
		target -= seg
	}
	last := line[len(line)-1]
	return float64(last.X), float64(last.Y)
}

// nativeIndex converts a plan timestamp index into the source's native
// frame; identical or missing frames pass the index through.
func nativeIndex(native, dest timeframe.TimeFrame, t int64) int64 {
	if native == nil || dest == nil || native == dest {
		return t
	}
	return native.IndexAtTime(dest.TimeAtIndex(t))
}
