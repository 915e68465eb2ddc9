package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meatflow/internal/geo"
	"meatflow/internal/metrics"
	"meatflow/internal/model"
	"meatflow/internal/view"
)

func newTestServer(t *testing.T) (*Server, *metrics.Metrics) {
	t.Helper()
	records := []model.TradeRecord{
		{
			Year: 2020, ProductType: "Bovins", Period: "Janvier", Country: "__Allemagne",
			Values: map[model.Indicator]model.Value{model.IndicatorExportVolume: model.Some(120)},
		},
		{
			Year: 2021, ProductType: "Bovins", Period: "Janvier", Country: "France",
			Values: map[model.Indicator]model.Value{model.IndicatorExportVolume: model.Some(80)},
		},
	}
	engine, err := view.NewEngine(records)
	require.NoError(t, err)
	m := metrics.New()
	features := []geo.Feature{{Name: "Germany"}, {Name: "Atlantis"}}
	return New(":0", engine, features, nil, m), m
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func query(values map[string]string) string {
	q := url.Values{}
	for k, v := range values {
		q.Set(k, v)
	}
	return q.Encode()
}

func TestHealth(t *testing.T) {
	s, m := newTestServer(t)
	rec := get(t, s, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("healthz", "200")))
}

func TestIndicators(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/indicators")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Indicators []struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"indicators"`
		Years []int `json:"years"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Indicators, 6)
	assert.Equal(t, "sequential", body.Indicators[0].Kind)
	assert.Equal(t, "divergent", body.Indicators[2].Kind)
	assert.Equal(t, []int{2020, 2021}, body.Years)
}

func TestSnapshot(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/snapshot?"+query(map[string]string{
		"indicator": string(model.IndicatorExportVolume),
		"year":      "2020",
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap view.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, map[string]float64{"__Allemagne": 120}, snap.Totals)
	assert.Equal(t, []int{2020, 2021}, snap.Ranking.Years)
}

func TestSnapshotBadRequests(t *testing.T) {
	s, m := newTestServer(t)
	tests := []struct {
		name   string
		params map[string]string
	}{
		{"unknown indicator", map[string]string{"indicator": "Tonnes", "year": "2020"}},
		{"bad year", map[string]string{"indicator": string(model.IndicatorExportVolume), "year": "twenty"}},
		{"missing year", map[string]string{"indicator": string(model.IndicatorExportVolume)}},
		{"bad mode", map[string]string{"indicator": string(model.IndicatorExportVolume), "year": "2020", "periods": "weekly"}},
		{"bad bool", map[string]string{"indicator": string(model.IndicatorExportVolume), "all_years": "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, "/api/snapshot?"+query(tt.params))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"Bad Request"`)
		})
	}
	assert.Equal(t, float64(len(tests)), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("snapshot", "400")))
}

func TestChoropleth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/api/choropleth?"+query(map[string]string{
		"indicator": string(model.IndicatorExportVolume),
		"all_years": "true",
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	var fills []view.Fill
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fills))
	require.Len(t, fills, 2)
	assert.True(t, fills[0].HasData)
	assert.Equal(t, "120", fills[0].Label)
	assert.False(t, fills[1].HasData)
}

func TestMappingGapsAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/mapping-gaps")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["Atlantis"]`, rec.Body.String())

	rec = get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "meatflow_http_requests_total"))
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/snapshot", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
