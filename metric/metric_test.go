package metric

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulmthompson/seriestable/errors"
)

func TestObserveBuildSuccess(t *testing.T) {
	r := NewRegistry()
	o := NewBuildObserver(r.Metrics, nil)

	o.ObserveBuild(42, 3, 5*time.Millisecond, nil)
	o.ObserveBuild(8, 1, time.Millisecond, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Metrics.TablesBuilt))
	assert.Equal(t, 50.0, testutil.ToFloat64(r.Metrics.RowsProduced))
}

func TestObserveBuildFailure(t *testing.T) {
	r := NewRegistry()
	o := NewBuildObserver(r.Metrics, func(err error) string {
		return errors.Classify(err).String()
	})

	buildErr := errors.WrapShape(errors.ErrShapeMismatch, "Builder", "Build", "value shape check")
	o.ObserveBuild(0, 0, time.Millisecond, buildErr)

	assert.Equal(t, 0.0, testutil.ToFloat64(r.Metrics.TablesBuilt))
	assert.Equal(t, 1.0,
		testutil.ToFloat64(r.Metrics.BuildFailures.WithLabelValues(errors.ErrorShape.String())))
}

func TestObserveBuildNilSafe(t *testing.T) {
	var o *BuildObserver
	require.NotPanics(t, func() {
		o.ObserveBuild(1, 1, time.Millisecond, nil)
	})
}

func TestRegistryGathers(t *testing.T) {
	r := NewRegistry()
	families, err := r.PrometheusRegistry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
