package tablestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulmthompson/seriestable/errors"
	"github.com/paulmthompson/seriestable/table"
	"github.com/paulmthompson/seriestable/timeframe"
)

type constantComputer struct {
	values []float64
}

func (c constantComputer) Compute(*table.ExecutionPlan) (table.Result, error) {
	return table.Result{Values: table.Float64Data(c.values)}, nil
}

func buildView(t *testing.T) *table.TableView {
	t.Helper()
	frame, err := timeframe.UniformClock("test", 10, 0, 1)
	require.NoError(t, err)

	view, err := table.NewBuilder(table.NewTimestampSelector([]int64{0, 1, 2}, frame), nil).
		AddColumn("v", constantComputer{values: []float64{1, 2, 3}}).
		Build()
	require.NoError(t, err)
	return view
}

func TestPutAndGet(t *testing.T) {
	s := NewStore()
	view := buildView(t)

	id, err := s.Put("", "trial_stats", "per-trial summary", view)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, ok := s.Get(id)
	require.True(t, ok)
	assert.Same(t, view, got)

	got, ok = s.GetByName("trial_stats")
	require.True(t, ok)
	assert.Same(t, view, got)

	info, ok := s.Describe(id)
	require.True(t, ok)
	assert.Equal(t, "trial_stats", info.Name)
	assert.Equal(t, 3, info.RowCount)
	assert.Equal(t, 1, info.ColumnCount)
	assert.False(t, info.CreatedAt.IsZero())
}

func TestPutExplicitID(t *testing.T) {
	s := NewStore()
	view := buildView(t)

	id, err := s.Put("my-table", "", "", view)
	require.NoError(t, err)
	assert.Equal(t, "my-table", id)
}

func TestPutDuplicates(t *testing.T) {
	s := NewStore()
	view := buildView(t)

	_, err := s.Put("t1", "stats", "", view)
	require.NoError(t, err)

	_, err = s.Put("t1", "other", "", view)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDuplicateTable)

	_, err = s.Put("t2", "stats", "", view)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDuplicateTable)
}

func TestPutNilView(t *testing.T) {
	s := NewStore()
	_, err := s.Put("t1", "", "", nil)
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
}

func TestListAndRemove(t *testing.T) {
	s := NewStore()
	view := buildView(t)

	_, err := s.Put("a", "first", "", view)
	require.NoError(t, err)
	_, err = s.Put("b", "second", "", view)
	require.NoError(t, err)

	infos := s.List()
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].ID)
	assert.Equal(t, "b", infos[1].ID)
	assert.Equal(t, 2, s.Len())

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.Equal(t, 1, s.Len())

	_, ok := s.GetByName("first")
	assert.False(t, ok)
	_, ok = s.GetByName("second")
	assert.True(t, ok)
}
