package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"newsletter/internal/adapter/http/middleware"
	"newsletter/internal/adapter/logger"
	"newsletter/internal/adapter/telemetry"
)

func observedLogger() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)

	return &logger.Logger{Logger: otelzap.New(zap.New(core))}, logs
}

func newRouter(middlewares ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middlewares...)

	return router
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var seen string

	router := newRouter(middleware.RequestID())
	router.GET("/health_check", func(c *gin.Context) {
		seen = middleware.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health_check", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(middleware.RequestIDHeader))
}

func TestRequestID_ReusesIncomingHeader(t *testing.T) {
	router := newRouter(middleware.RequestID())
	router.GET("/health_check", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health_check", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "abc-123", rr.Header().Get(middleware.RequestIDHeader))
}

func TestLogging_RecordsRequest(t *testing.T) {
	log, logs := observedLogger()

	router := newRouter(middleware.RequestID(), middleware.Logging(log))
	router.POST("/subscriptions", func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	req := httptest.NewRequest(http.MethodPost, "/subscriptions?source=test", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-1")

	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, http.MethodPost, fields["method"])
	assert.Equal(t, "/subscriptions?source=test", fields["path"])
	assert.EqualValues(t, http.StatusBadRequest, fields["status"])
}

func TestLogging_ServerErrorsLogAtErrorLevel(t *testing.T) {
	log, logs := observedLogger()

	router := newRouter(middleware.Logging(log))
	router.POST("/subscriptions", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/subscriptions", nil))

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestMetrics_RecordsMatchedRoute(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := telemetry.NewAppMetrics(registry)

	router := newRouter(middleware.Metrics(metrics))
	router.GET("/health_check", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health_check", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	count, err := testutil.GatherAndCount(registry, "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestTimeout_BoundsRequestContext(t *testing.T) {
	var deadline time.Time
	var ok bool

	router := newRouter(middleware.Timeout(50 * time.Millisecond))
	router.GET("/health_check", func(c *gin.Context) {
		deadline, ok = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	before := time.Now()
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health_check", nil))

	require.True(t, ok)
	assert.WithinDuration(t, before.Add(50*time.Millisecond), deadline, time.Second)
}
