package serverhttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recommend-service/internal/config"
	"recommend-service/internal/directory"
	"recommend-service/internal/metrics"
	"recommend-service/internal/middleware"
	"recommend-service/internal/session"
)

func testRouter(t *testing.T) (http.Handler, *session.Verifier) {
	t.Helper()
	store, err := directory.Open(context.Background(), directory.Options{Backend: directory.BackendMemory}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	m := metrics.New()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	cfg := config.Config{AllowOrigins: []string{"*"}, MaxUploadMB: 1, TopN: 3, LogLevel: "info"}
	v := session.NewVerifier("secret")
	return NewRouter(cfg, zerolog.Nop(), Services{
		Dir:      store,
		Verifier: v,
		Resolver: session.NewResolver(store, zerolog.Nop()),
		Metrics:  m,
		Registry: reg,
	}), v
}

func TestHealth(t *testing.T) {
	h, _ := testRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := testRouter(t)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(`{"suppliers":[]}`)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, metrics.MetricRecommendPassesTotal)
	assert.Contains(t, body, `route="/recommend"`)
}

func TestSessionThroughRouter(t *testing.T) {
	h, v := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := v.Sign("u7", session.RoleSupplier, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId": "u7"`)
	assert.Contains(t, rec.Body.String(), `"role": "supplier"`)
}

func TestBodyLimit(t *testing.T) {
	h, _ := testRouter(t)
	big := strings.Repeat("x", 2<<20)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/suppliers", strings.NewReader(big)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSuppliersRoutes(t *testing.T) {
	h, _ := testRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/suppliers", strings.NewReader(`[{"id":"1","name":"A","product":"Onion"}]`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/suppliers/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name": "A"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/suppliers/1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/suppliers/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/suppliers/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfileAndReviewsThroughRouter(t *testing.T) {
	h, v := testRouter(t)
	tok, err := v.Sign("u9", session.RoleVendor, time.Hour)
	require.NoError(t, err)

	call := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := call(http.MethodGet, "/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"profileCompleted": false`)

	rec = call(http.MethodPut, "/profile", `{"displayName":"Stall 9","location":{"latitude":0,"longitude":0}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// следующий запрос резолвит профиль из справочника
	rec = call(http.MethodGet, "/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"profileCompleted": true`)
	assert.Contains(t, rec.Body.String(), `"displayName": "Stall 9"`)

	rec = call(http.MethodPut, "/suppliers", `[{"id":"s1","name":"Ravi","product":"Onion","latitude":0.01,"longitude":0}]`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(http.MethodGet, "/recommendations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name": "Stall 9"`)
	assert.Contains(t, rec.Body.String(), `"nearest"`)

	rec = call(http.MethodPost, "/suppliers/s1/reviews", `{"orderId":"o1","rating":5}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = call(http.MethodGet, "/suppliers/s1/reviews", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"vendorId": "u9"`)
	rec = call(http.MethodGet, "/orders/o1/review", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(`{"displayName":"x"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
