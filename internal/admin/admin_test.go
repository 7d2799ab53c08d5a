package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"goeda/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.RecordChart("histogram", "figure")
	router := NewRouter(Config{})

	rec := get(t, router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "goeda_charts_total")
}

func TestHealthz(t *testing.T) {
	router := NewRouter(Config{Checks: map[string]Checker{
		"db": func(context.Context) error { return nil },
	}})
	rec := get(t, router, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", gjson.Get(rec.Body.String(), "status").String())

	router = NewRouter(Config{Checks: map[string]Checker{
		"redis": func(context.Context) error { return errors.New("down") },
	}})
	rec = get(t, router, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "redis", gjson.Get(rec.Body.String(), "failed").String())
}

func TestPprofIndex(t *testing.T) {
	rec := get(t, NewRouter(Config{}), "/debug/pprof/")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, NewRouter(Config{}), "/debug/pprof/goroutine?debug=1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	router := NewRouter(Config{RateLimit: 2})

	assert.Equal(t, http.StatusOK, get(t, router, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(t, router, "/healthz").Code)
	rec := get(t, router, "/healthz")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}
