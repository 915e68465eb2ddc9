package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	m := New()
	m.SnapshotBuilds.WithLabelValues("miss").Inc()
	m.SnapshotBuilds.WithLabelValues("hit").Add(2)
	m.RecordsLoaded.Set(42)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SnapshotBuilds.WithLabelValues("hit")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.RecordsLoaded))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `meatflow_snapshot_builds_total{cache="miss"} 1`)
	assert.Contains(t, string(body), "meatflow_records_loaded 42")
}

func TestNewUsesPrivateRegistry(t *testing.T) {
	a := New()
	b := New()
	assert.NotSame(t, a.Registry(), b.Registry())
}

func TestRuntimeCollectorsRegistered(t *testing.T) {
	families, err := New().Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
	assert.True(t, names["go_info"])
}
