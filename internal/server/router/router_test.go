package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/kitstock/internal/config"
	"github.com/mamadbah2/kitstock/internal/repository/sheets"
	"github.com/mamadbah2/kitstock/internal/server/handlers"
)

func newTestRouter(cfg config.ServerConfig) *gin.Engine {
	store := sheets.NewMemoryRepository()
	h := handlers.New(handlers.Dependencies{Store: store, MaskedSheetKey: "NOT SET"}, nil)
	return New(h, cfg, nil)
}

func get(r http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(config.ServerConfig{})

	rec := get(r, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	rec = get(r, "/health", RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRateLimitSparesHealth(t *testing.T) {
	r := newTestRouter(config.ServerConfig{RateLimitRPS: 0.001, RateLimitBurst: 1})

	assert.Equal(t, http.StatusOK, get(r, "/debug/sheet").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/debug/sheet").Code)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r, "/health").Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	r := newTestRouter(config.ServerConfig{})
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, get(r, "/debug/sheet").Code)
	}
}

func TestRecoveryReturnsGeneric500(t *testing.T) {
	r := newTestRouter(config.ServerConfig{})
	r.GET("/boom", func(*gin.Context) { panic("database password leaked") })

	rec := get(r, "/boom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestStaticAndNotFound(t *testing.T) {
	r := newTestRouter(config.ServerConfig{})

	rec := get(r, "/static/app.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "add-line")

	assert.Equal(t, http.StatusNotFound, get(r, "/nope").Code)
}

func TestClientLimiterForgetsIdleClients(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := newClientLimiter(0.001, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "buckets are per client")

	now = now.Add(limiterIdleTTL + time.Second)
	l.Allow("10.0.0.3")
	assert.NotContains(t, l.limiters, "10.0.0.1")
	assert.True(t, l.Allow("10.0.0.1"))
}
