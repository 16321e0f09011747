package web

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmp-dashboard/models"
	"rmp-dashboard/services"
	"rmp-dashboard/utils"
)

func testProfessors() []models.Professor {
	return []models.Professor{
		{FirstName: "Ann", LastName: "Lee", Department: "Physics", College: "College of Science",
			AverageRating: 4.5, NumRatings: 10, WouldTakeAgain: 90, Difficulty: 2.0,
			Reviews: "Great lectures", Tags: []string{"Caring", "Amazing lectures"}, SentimentScore: 0.6},
		{FirstName: "Bo", LastName: "Kim", Department: "Biology", College: "College of Science",
			AverageRating: 3.0, NumRatings: 6, WouldTakeAgain: 50, Difficulty: 4.0,
			Reviews: "Hard exams", Tags: []string{"Tough grader"}, SentimentScore: -0.2},
		{FirstName: "Cy", LastName: "Ray", Department: "Law", College: "School of Law",
			AverageRating: 4.0, NumRatings: 20, WouldTakeAgain: 80, Difficulty: 3.0,
			Reviews: "Fair", Tags: []string{"Caring"}, SentimentScore: 0.3},
	}
}

func newTestServer(t *testing.T, records []models.Professor, fragment string) *Server {
	t.Helper()
	logger := utils.NewNopLogger()
	svc := services.NewDashboardService(logger, services.DefaultDashboardOptions())
	cfg := DefaultConfig()
	cfg.TopTags = 2
	return New(cfg, models.NewDataset(records), svc, fragment, logger)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestListColleges(t *testing.T) {
	h := newTestServer(t, testProfessors(), "").Handler()
	rec := get(t, h, "/api/v1/colleges")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Colleges []string `json:"colleges"`
		Initial  string   `json:"initial"`
		Count    int      `json:"count"`
	}
	decode(t, rec, &body)
	assert.Equal(t, []string{"College of Science", "School of Law"}, body.Colleges)
	assert.Equal(t, "College of Science", body.Initial)
	assert.Equal(t, 2, body.Count)
}

func TestDashboardEndpoint(t *testing.T) {
	h := newTestServer(t, testProfessors(), "").Handler()

	tests := []struct {
		name    string
		target  string
		records int
	}{
		{"all colleges", "/api/v1/dashboard", 3},
		{"selected college", "/api/v1/dashboard?college=College+of+Science", 2},
		{"unknown college", "/api/v1/dashboard?college=Nowhere", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var v models.DashboardView
			decode(t, rec, &v)
			assert.Equal(t, tt.records, v.Records)
			assert.Len(t, v.Heatmap, tt.records*len(models.AllMetrics))
			assert.Len(t, v.Comments, tt.records)
		})
	}
}

func TestHistogramEndpoint(t *testing.T) {
	h := newTestServer(t, testProfessors(), "").Handler()

	rec := get(t, h, "/api/v1/histogram?bins=5")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Histogram models.Histogram `json:"histogram"`
		Labels    []string         `json:"labels"`
	}
	decode(t, rec, &body)
	assert.Equal(t, []int{0, 0, 0, 1, 2}, body.Histogram.Bins)
	assert.Equal(t, []string{"0.0", "1.0", "2.0", "3.0", "4.0"}, body.Labels)

	for _, bad := range []string{"0", "-3", "ten"} {
		rec := get(t, h, "/api/v1/histogram?bins="+bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
		assert.Contains(t, rec.Body.String(), "bins must be a positive integer")
	}

	rec = get(t, h, "/api/v1/histogram?bins=100")
	assert.Equal(t, http.StatusOK, rec.Code)
	for _, huge := range []string{"101", "1099511627776"} {
		rec := get(t, h, "/api/v1/histogram?bins="+huge)
		assert.Equal(t, http.StatusBadRequest, rec.Code, huge)
		assert.Contains(t, rec.Body.String(), "bins must be at most 100")
	}
}

func TestTagsEndpoint(t *testing.T) {
	h := newTestServer(t, testProfessors(), "").Handler()

	rec := get(t, h, "/api/v1/tags")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Counts []models.TagCount   `json:"counts"`
		Top    []models.WordWeight `json:"top"`
	}
	decode(t, rec, &body)
	assert.Len(t, body.Counts, 4)
	require.Len(t, body.Top, 2, "bounded by the configured top-N")
	assert.Equal(t, models.WordWeight{Word: "Caring", Count: 2}, body.Top[0])

	rec = get(t, h, "/api/v1/tags?top=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScatterEndpoint(t *testing.T) {
	h := newTestServer(t, testProfessors(), "").Handler()

	rec := get(t, h, "/api/v1/scatter")
	require.Equal(t, http.StatusOK, rec.Code)
	var v models.ScatterView
	decode(t, rec, &v)

	assert.Len(t, v.Points, 2, "law school excluded")
	require.Len(t, v.Correlations, 1)
	assert.Equal(t, "College of Science", v.Correlations[0].College)
	assert.InDelta(t, -1.0, float64(v.Correlations[0].R), 1e-9)
}

func TestSentimentEndpoint(t *testing.T) {
	h := newTestServer(t, testProfessors(), "").Handler()
	rec := get(t, h, "/api/v1/sentiment?college=School+of+Law")
	require.Equal(t, http.StatusOK, rec.Code)

	var v models.SentimentView
	decode(t, rec, &v)
	require.Len(t, v.Averages, 1)
	assert.Equal(t, "School of Law", v.Averages[0].College)

	records := testProfessors()
	for i := range records {
		records[i].SentimentScore = math.NaN()
	}
	h = newTestServer(t, records, "").Handler()
	rec = get(t, h, "/api/v1/sentiment")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSentimentFragmentServedVerbatim(t *testing.T) {
	const fragment = "<div id=\"sentiment\"><b>chart</b></div>"
	h := newTestServer(t, testProfessors(), fragment).Handler()

	rec := get(t, h, "/api/v1/fragments/sentiment")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fragment, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestEmptyFragment(t *testing.T) {
	h := newTestServer(t, testProfessors(), "").Handler()
	rec := get(t, h, "/api/v1/fragments/sentiment")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestNaNEncodedAsNull(t *testing.T) {
	records := testProfessors()
	records[0].WouldTakeAgain = math.NaN()
	h := newTestServer(t, records, "").Handler()

	rec := get(t, h, "/api/v1/heatmap?college=College+of+Science")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"value":null`)
}

func TestHealthCheck(t *testing.T) {
	h := newTestServer(t, testProfessors(), "").Handler()
	rec := get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, 3, body["records"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, testProfessors(), "").Handler()
	get(t, h, "/api/v1/dashboard")

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, "rmp_dataset_records 3")
	assert.Contains(t, out, `rmp_http_requests_total{route="/api/v1/dashboard",status="200"} 1`)
	assert.Contains(t, out, `rmp_view_duration_seconds_count{view="heatmap"} 1`)
}

func TestIndexPage(t *testing.T) {
	h := newTestServer(t, testProfessors(), "").Handler()
	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Northeastern Professor Ratings")
	assert.Contains(t, rec.Body.String(), "/api/v1/dashboard")
}
