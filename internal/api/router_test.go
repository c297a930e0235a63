package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dvloznov/sales-dashboard/internal/api/handlers"
	"github.com/dvloznov/sales-dashboard/internal/insight"
	"github.com/dvloznov/sales-dashboard/internal/loader"
	"github.com/dvloznov/sales-dashboard/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSummarizer struct {
	calls         int
	SummarizeFunc func(ctx context.Context, f insight.Facts) (*insight.Result, error)
	pending       map[string]bool
	cached        map[string]bool
}

func (m *mockSummarizer) Pending(prompt string) bool { return m.pending[prompt] }

func (m *mockSummarizer) Cached(prompt string) bool { return m.cached[prompt] }

func (m *mockSummarizer) Summarize(ctx context.Context, f insight.Facts) (*insight.Result, error) {
	m.calls++
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, f)
	}
	prompt := insight.Prompt(f)
	return &insight.Result{Prompt: prompt, Text: "**ok**", HTML: insight.RenderHTML("**ok**")}, nil
}

type testServer struct {
	handler    http.Handler
	datasets   *handlers.Datasets
	datasetID  string
	summarizer *mockSummarizer
}

func newTestServer(t *testing.T, withSummarizer bool) *testServer {
	t.Helper()

	cache := loader.NewCache(nil, zerolog.Nop())
	entry, err := cache.LoadBytes("quarter.csv", testutil.CSV(t, testutil.Quarter()...))
	require.NoError(t, err)

	datasets := handlers.NewDatasets(cache)
	datasets.SetDefault(entry.ID)

	ts := &testServer{datasets: datasets, datasetID: entry.ID}

	var summarizer handlers.Summarizer
	if withSummarizer {
		ts.summarizer = &mockSummarizer{}
		summarizer = ts.summarizer
	}

	ts.handler = NewRouter(Handlers{
		Datasets:  handlers.NewDatasetsHandler(datasets, 1<<20, zerolog.Nop()),
		Dashboard: handlers.NewDashboardHandler(datasets, zerolog.Nop()),
		Insights:  handlers.NewInsightsHandler(datasets, summarizer, zerolog.Nop()),
	}, zerolog.Nop())
	return ts
}

func (ts *testServer) do(t *testing.T, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestDashboard_Defaults(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/api/dashboard", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Showing 8 orders from 2022-01-05 to 2022-03-31", body["summary"])
	kpis := body["kpis"].(map[string]interface{})
	assert.Equal(t, float64(8), kpis["total_orders"])
	assert.Contains(t, body, "overview")
	assert.Contains(t, body, "products")
	assert.NotContains(t, body, "geography")
}

func TestDashboard_EmptySelection(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/api/dashboard?category=", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	kpis := decode(t, rec)["kpis"].(map[string]interface{})
	assert.Equal(t, float64(0), kpis["total_orders"])
	display := kpis["display"].(map[string]interface{})
	assert.Equal(t, "N/A", display["average_order_value"])
}

func TestDashboard_FiltersAndSections(t *testing.T) {
	ts := newTestServer(t, false)

	q := url.Values{}
	q.Add("category", "Set")
	q.Add("category", "kurta")
	q.Set("start", "2022-02-01")
	q.Set("end", "2022-03-31")
	q.Set("show_geo", "true")
	q.Set("top_states", "5")

	rec := ts.do(t, http.MethodGet, "/api/dashboard?"+q.Encode(), nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	kpis := body["kpis"].(map[string]interface{})
	assert.Equal(t, float64(4), kpis["total_orders"])
	geo := body["geography"].(map[string]interface{})
	assert.Len(t, geo["sales_by_state"], 3)
}

func TestDashboard_BadRequests(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{name: "top states too small", target: "/api/dashboard?top_states=4", want: http.StatusBadRequest},
		{name: "top cities too large", target: "/api/dashboard?top_cities=21", want: http.StatusBadRequest},
		{name: "bad date", target: "/api/dashboard?start=05/01/2022", want: http.StatusBadRequest},
		{name: "bad bool", target: "/api/dashboard?b2b_only=maybe", want: http.StatusBadRequest},
		{name: "unknown dataset", target: "/api/dashboard?dataset=sha256:nope", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, tt.target, nil, "")
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, decode(t, rec), "error")
		})
	}
}

func TestDashboard_NoDefaultDataset(t *testing.T) {
	ts := newTestServer(t, false)
	ts.datasets.SetDefault("")

	rec := ts.do(t, http.MethodGet, "/api/dashboard", nil, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDatasetOptions(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/api/datasets/"+url.PathEscape(ts.datasetID)+"/options", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, []interface{}{"Set", "kurta", "Western Dress", "Top"}, body["categories"])
	assert.Equal(t, "2022-01-05", body["min_date"])
	assert.Equal(t, "2022-03-31", body["max_date"])
}

func TestDatasetList(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/api/datasets", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, ts.datasetID, body["default"])
}

func TestUpload_Multipart(t *testing.T) {
	ts := newTestServer(t, false)

	rows := testutil.Quarter()[:3]
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "small.csv")
	require.NoError(t, err)
	_, err = part.Write(testutil.CSV(t, rows...))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := ts.do(t, http.MethodPost, "/api/datasets", &buf, mw.FormDataContentType())

	require.Equal(t, http.StatusCreated, rec.Code)
	dataset := decode(t, rec)["dataset"].(map[string]interface{})
	assert.True(t, strings.HasPrefix(dataset["id"].(string), "sha256:"))
	assert.Equal(t, float64(3), dataset["rows"])

	rec = ts.do(t, http.MethodGet, "/api/dashboard?dataset="+url.QueryEscape(dataset["id"].(string)), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	kpis := decode(t, rec)["kpis"].(map[string]interface{})
	assert.Equal(t, float64(3), kpis["total_orders"])
}

func TestUpload_Malformed(t *testing.T) {
	ts := newTestServer(t, false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "bad.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Order ID,Date\n1,2022-01-01\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := ts.do(t, http.MethodPost, "/api/datasets", &buf, mw.FormDataContentType())

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpload_LocalSourceRejected(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodPost, "/api/datasets", bytes.NewBufferString(`{"source":"/etc/passwd"}`), "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_UnsupportedRemote(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodPost, "/api/datasets", bytes.NewBufferString(`{"source":"gs://bucket/report.csv"}`), "application/json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/api/orders/search?q=404-", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(2), body["count"])

	rec = ts.do(t, http.MethodGet, "/api/orders/search?q=404-&b2b_only=true", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode(t, rec)["orders"].([]interface{})
	require.Len(t, orders, 1)
	assert.Equal(t, "404-0687676-7273146", orders[0].(map[string]interface{})["order_id"])
}

func TestExport_CSV(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/api/export?b2b_only=true", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "filtered_orders.csv")

	table, err := loader.Parse(rec.Body)
	require.NoError(t, err)
	require.Len(t, table.Orders, 2)
	assert.Equal(t, testutil.Header, table.Header)
}

func TestExport_XLSX(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/api/export?format=xlsx", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "filtered_orders.xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestExport_UnknownFormat(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/api/export?format=pdf", nil, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInsights(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.do(t, http.MethodPost, "/api/insights", nil, "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	result := body["insight"].(map[string]interface{})
	assert.Equal(t, "**ok**", result["text"])
	assert.Contains(t, result["prompt"], "We have 8 orders totaling ₹4,586 from 2022-01-05 to 2022-03-31.")
	assert.Equal(t, 1, ts.summarizer.calls)
}

func TestInsights_EmptySubset(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.do(t, http.MethodPost, "/api/insights?size=", nil, "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, ts.summarizer.calls)
}

func TestInsights_ServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "unavailable", err: fmt.Errorf("Generate: %w: %w", insight.ErrUnavailable, errors.New("quota")), want: http.StatusBadGateway},
		{name: "timeout", err: fmt.Errorf("Generate: %w: %w", insight.ErrUnavailable, context.DeadlineExceeded), want: http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, true)
			ts.summarizer.SummarizeFunc = func(ctx context.Context, f insight.Facts) (*insight.Result, error) {
				return nil, tt.err
			}

			rec := ts.do(t, http.MethodPost, "/api/insights", nil, "")

			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, decode(t, rec), "error")
		})
	}
}

func TestInsightsStatus(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.do(t, http.MethodGet, "/api/insights/status?start=2022-02-01&end=2022-02-28", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	prompt := body["prompt"].(string)
	assert.Contains(t, prompt, "We have 3 orders")
	assert.Equal(t, false, body["pending"])
	assert.Equal(t, false, body["cached"])

	ts.summarizer.pending = map[string]bool{prompt: true}
	ts.summarizer.cached = map[string]bool{prompt: true}
	rec = ts.do(t, http.MethodGet, "/api/insights/status?start=2022-02-01&end=2022-02-28", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, true, body["pending"])
	assert.Equal(t, true, body["cached"])

	assert.Zero(t, ts.summarizer.calls)
}

func TestInsightsStatus_EmptySubset(t *testing.T) {
	ts := newTestServer(t, true)

	rec := ts.do(t, http.MethodGet, "/api/insights/status?category=", nil, "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestInsightsStatus_Disabled(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodGet, "/api/insights/status", nil, "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestInsights_Disabled(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodPost, "/api/insights", nil, "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodDelete, "/api/dashboard", nil, "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
