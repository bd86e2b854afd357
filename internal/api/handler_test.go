package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/yegors/launchboard/internal/config"
	"github.com/yegors/launchboard/internal/dashboard"
	"github.com/yegors/launchboard/internal/launches"
	"github.com/yegors/launchboard/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logger.Wrap(zaptest.NewLogger(t))

	d, err := launches.NewDataset([]launches.LaunchRecord{
		{LaunchSite: "CCAFS LC-40", PayloadMassKg: 0, BoosterVersionCategory: "v1.0", OutcomeClass: launches.OutcomeFailure},
		{LaunchSite: "CCAFS LC-40", PayloadMassKg: 525, BoosterVersionCategory: "v1.0", OutcomeClass: launches.OutcomeSuccess},
		{LaunchSite: "VAFB SLC-4E", PayloadMassKg: 500, BoosterVersionCategory: "v1.1", OutcomeClass: launches.OutcomeFailure},
		{LaunchSite: "KSC LC-39A", PayloadMassKg: 2490, BoosterVersionCategory: "FT", OutcomeClass: launches.OutcomeSuccess},
		{LaunchSite: "KSC LC-39A", PayloadMassKg: 9600, BoosterVersionCategory: "B5", OutcomeClass: launches.OutcomeSuccess},
	})
	require.NoError(t, err)

	metrics := NewMetrics()
	svc, err := launches.NewService(d, 16, metrics, log)
	require.NoError(t, err)
	agg := dashboard.NewAggregator(svc, false, log)

	srv := httptest.NewServer(NewRouter(agg, config.Default().Server, metrics, log).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, srv *httptest.Server, path string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestHealthAndSites(t *testing.T) {
	srv := newTestServer(t)

	var health HealthResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/v1/health", &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 5, health.Records)
	assert.Equal(t, 3, health.Sites)

	var sites SitesResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/v1/sites", &sites))
	assert.Equal(t, []string{"CCAFS LC-40", "VAFB SLC-4E", "KSC LC-39A"}, sites.Sites)
}

func TestSummaryDefaultsToAllSites(t *testing.T) {
	srv := newTestServer(t)

	var resp SummaryResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/v1/summary", &resp))
	assert.Equal(t, launches.AllSites, resp.Site)
	require.Len(t, resp.Slices, 2)
	assert.Equal(t, "CCAFS LC-40", resp.Slices[0].Label)
	assert.Equal(t, 1, resp.Slices[0].Count)
	assert.Equal(t, "KSC LC-39A", resp.Slices[1].Label)
	assert.Equal(t, 2, resp.Slices[1].Count)
}

func TestSummaryForSite(t *testing.T) {
	srv := newTestServer(t)

	var resp SummaryResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/v1/summary?site=VAFB+SLC-4E", &resp))
	require.Len(t, resp.Slices, 1, "outcome classes that never occur are left out")
	assert.Equal(t, "0", resp.Slices[0].Label)
	assert.Equal(t, 1, resp.Slices[0].Count)
}

func TestPayloadFilter(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"defaults cover everything", "", 5},
		{"inclusive bounds", "?low=500&high=2490", 3},
		{"single site", "?site=KSC+LC-39A&low=0&high=5000", 1},
		{"clamped high", "?high=1000000", 5},
		{"inverted range", "?low=5000&high=1000", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp PayloadResponse
			require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/v1/payload"+tt.query, &resp))
			assert.Equal(t, tt.count, resp.Count)
			assert.Len(t, resp.Points, tt.count)
		})
	}
}

func TestBadRequests(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{
		"/api/v1/summary?site=Nowhere",
		"/api/v1/payload?low=abc",
		"/api/v1/payload?high=NaN",
		"/api/v1/figures/pie?site=Nowhere",
		"/api/v1/figures/scatter?site=ALL&low=x",
		"/api/v1/dashboard?site=Nowhere",
	} {
		t.Run(path, func(t *testing.T) {
			var resp errorResponse
			require.Equal(t, http.StatusBadRequest, getJSON(t, srv, path, &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestDashboardView(t *testing.T) {
	srv := newTestServer(t)

	var view dashboard.View
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/v1/dashboard?site=KSC+LC-39A&low=0&high=10000", &view))
	assert.Equal(t, "Total Success vs. Failure for site KSC LC-39A", view.Pie.Title)
	assert.Equal(t, "Payload vs. Outcome for site KSC LC-39A", view.Scatter.Title)
	assert.Equal(t, 2, view.Scatter.PointCount)
	require.Len(t, view.Scatter.Series, 2)
	assert.Equal(t, "FT", view.Scatter.Series[0].Category)
	assert.Equal(t, "B5", view.Scatter.Series[1].Category)
}

func TestLayout(t *testing.T) {
	srv := newTestServer(t)

	var layout dashboard.Layout
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/v1/layout", &layout))
	assert.Equal(t, dashboard.PageTitle, layout.Title)
	assert.Len(t, layout.Dropdown.Options, 4)
	assert.Equal(t, []float64{0, 10000}, layout.Slider.Value)
}

func TestIndexAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))
	assert.Contains(t, string(body), "/api/v1/layout")

	// one cached and one uncached query
	for i := 0; i < 2; i++ {
		r, err := http.Get(srv.URL + "/api/v1/summary")
		require.NoError(t, err)
		r.Body.Close()
	}

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `launchboard_queries_total{cached="true",ok="true",query="site_success_summary"} 1`)
	assert.Contains(t, string(body), `launchboard_http_requests_total{method="GET",route="/api/v1/summary",status="200"} 2`)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/summary", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}
