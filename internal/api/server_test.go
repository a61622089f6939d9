package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textorder/internal/catalog"
	"textorder/internal/database"
	"textorder/internal/evaluation"
	"textorder/internal/models"
	"textorder/internal/monitoring"
	"textorder/internal/parser"
	"textorder/internal/processing"
)

type failingParser struct{ err error }

func (f failingParser) Parse(ctx context.Context, text string) (*models.Order, error) {
	return nil, f.err
}

type testEnv struct {
	server  *Server
	store   *database.Store
	monitor *monitoring.Monitor
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := catalog.Default()
	monitor := monitoring.NewMonitor()
	collector := evaluation.NewMetricsCollector()
	proc := processing.New(parser.New(cat),
		processing.WithMonitor(monitor),
		processing.WithCollector(collector),
	)
	store, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	opts = append([]Option{WithStore(store), WithMonitor(monitor), WithCollector(collector)}, opts...)
	return &testEnv{
		server:  NewServer(cat, proc, opts...),
		store:   store,
		monitor: monitor,
	}
}

func (e *testEnv) do(method, path string, body interface{}, header ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	e.server.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
	assert.Equal(t, false, response["llm_enabled"])
	assert.Equal(t, true, response["database"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestParseOrder(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/api/v1/orders/parse", ParseRequest{
		Text: "two crunchwrap supremes with extra sour cream and a large baja blast",
	}, "X-Request-ID", "req-42")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ParseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "req-42", resp.RequestID)
	assert.Equal(t, "rule", resp.Parser)
	require.NotNil(t, resp.Order)
	assert.Equal(t, "taco-bell", resp.Order.Restaurant.ID)
	assert.Equal(t, models.Money(1407), resp.Order.Subtotal)
	assert.Equal(t, models.Money(113), resp.Order.Tax)
	assert.Equal(t, models.Money(1520), resp.Order.Total)
	assert.Nil(t, resp.Comparison)

	recs, err := env.store.ListParses(0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "req-42", recs[0].RequestID)
	assert.Equal(t, int64(1520), recs[0].TotalCents)

	parses, _ := env.monitor.GetMetric("rule_parses_total")
	assert.Equal(t, int64(1), parses)
}

func TestParseOrder_Errors(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		body interface{}
		want int
	}{
		{"empty text", ParseRequest{Text: "  "}, http.StatusBadRequest},
		{"invalid utf8", ParseRequest{Text: "\xff\xfe"}, http.StatusBadRequest},
		{"unknown parser", ParseRequest{Text: "a coke", Parser: "magic"}, http.StatusBadRequest},
		{"llm not configured", ParseRequest{Text: "a coke", Parser: "llm"}, http.StatusServiceUnavailable},
		{"malformed body", "not an object", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do("POST", "/api/v1/orders/parse", tc.body)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestParseOrder_EmptyOrderIsOK(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/api/v1/orders/parse", ParseRequest{Text: "just thinking about dinner"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ParseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Order.Items)
	assert.Equal(t, models.Money(0), resp.Order.Total)
	assert.Contains(t, resp.Notes, "rule: no items found")
}

func TestRestaurantsAndMenu(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("GET", "/api/v1/restaurants", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var restaurants []RestaurantInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &restaurants))
	require.Len(t, restaurants, len(catalog.Default().Restaurants()))
	assert.Equal(t, "mcdonalds", restaurants[0].ID)

	w = env.do("GET", "/api/v1/restaurants/mickey%20d's/menu", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var menu models.Restaurant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &menu))
	assert.Equal(t, "McDonald's", menu.Name)
	assert.NotEmpty(t, menu.Items)

	w = env.do("GET", "/api/v1/restaurants/nowhere/menu", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEvaluate(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("POST", "/api/v1/evaluate", EvaluateRequest{Parser: "rule", Scenario: "big_macs"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Parser  string                         `json:"parser"`
		Results []*evaluation.EvaluationResult `json:"results"`
		Average map[string]float64             `json:"average"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 1.0, resp.Average[evaluation.MetricExactMatch])

	w = env.do("POST", "/api/v1/evaluate", EvaluateRequest{})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Results, len(evaluation.NewEvaluator().GetScenarios()))

	w = env.do("GET", "/api/v1/evaluations?parser=rule&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var recs []database.EvaluationRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
	assert.Len(t, recs, 5)

	w = env.do("POST", "/api/v1/evaluate", EvaluateRequest{Scenario: "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do("POST", "/api/v1/evaluate", EvaluateRequest{Parser: "llm"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStatsAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.do("POST", "/api/v1/orders/parse", ParseRequest{Text: "a big mac"})

	w := env.do("GET", "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Contains(t, stats, "uptime_seconds")
	assert.Equal(t, 1.0, stats["rule_parses_total"])

	w = env.do("GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `textorder_parses_total{outcome="success",parser="rule"} 1`)
}

func TestPlaygroundMounted(t *testing.T) {
	env := newTestEnv(t)

	w := env.do("GET", "/playground/api/scenarios", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t, WithJWTSecret("s3cret"))
	body := ParseRequest{Text: "a big mac"}

	w := env.do("POST", "/api/v1/orders/parse", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do("POST", "/api/v1/orders/parse", body, "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	wrong, err := IssueToken("other", "tester", time.Hour)
	require.NoError(t, err)
	w = env.do("POST", "/api/v1/orders/parse", body, "Authorization", "Bearer "+wrong)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired, err := IssueToken("s3cret", "tester", -time.Minute)
	require.NoError(t, err)
	w = env.do("POST", "/api/v1/orders/parse", body, "Authorization", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := IssueToken("s3cret", "tester", time.Hour)
	require.NoError(t, err)
	w = env.do("POST", "/api/v1/orders/parse", body, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do("GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code, "health is not protected")

	_, err = IssueToken("", "tester", time.Hour)
	assert.Error(t, err)
}

func TestStoreDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cat := catalog.Default()
	server := NewServer(cat, processing.New(parser.New(cat)))

	for _, path := range []string{"/api/v1/evaluations", "/api/v1/parses"} {
		req, _ := http.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		server.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
	}
}

func TestParseOrder_LLMFailureInBothModeFallsBack(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cat := catalog.Default()
	proc := processing.New(parser.New(cat), processing.WithLLM(failingParser{err: errors.New("model offline")}))
	server := NewServer(cat, proc)

	req, _ := http.NewRequest("POST", "/api/v1/orders/parse", strings.NewReader(`{"text":"a big mac","parser":"both"}`))
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ParseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rule", resp.Parser)
	assert.Contains(t, resp.Notes, "llm error: model offline")

	req, _ = http.NewRequest("POST", "/api/v1/orders/parse", strings.NewReader(`{"text":"a big mac","parser":"llm"}`))
	w = httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
