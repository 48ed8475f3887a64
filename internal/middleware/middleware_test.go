package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haierkeys/note-attachment-service/pkg/limiter"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestTraceMiddlewareGeneratesAndPropagates(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware(TracerConfig{Enabled: true}))

	var fromCtx, fromGin string
	r.GET("/x", func(c *gin.Context) {
		fromCtx = GetTraceID(c.Request.Context())
		fromGin = GetTraceIDFromGin(c)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.NotEmpty(t, fromCtx)
	assert.Equal(t, fromCtx, fromGin)
	assert.Equal(t, fromCtx, w.Header().Get(DefaultTraceIDHeader))
}

func TestTraceMiddlewareKeepsIncomingID(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware(TracerConfig{Enabled: true, Header: "X-Request-ID"}))
	r.GET("/x", func(c *gin.Context) {})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestTraceMiddlewareDisabled(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware(TracerConfig{Enabled: false}))
	r.GET("/x", func(c *gin.Context) {})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Empty(t, w.Header().Get(DefaultTraceIDHeader))
}

func TestRecoveryReturns500(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryWithLogger(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRateLimiterRejects(t *testing.T) {
	l := limiter.NewMethodLimiter()
	l.AddBuckets(limiter.BucketRule{Key: "/x", FillInterval: time.Hour, Capacity: 1, Quantum: 1})

	r := gin.New()
	r.Use(RateLimiter(l))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestContextTimeout(t *testing.T) {
	r := gin.New()
	r.Use(ContextTimeout(50 * time.Millisecond))

	var deadline bool
	r.GET("/x", func(c *gin.Context) {
		_, deadline = c.Request.Context().Deadline()
		<-c.Request.Context().Done()
		assert.ErrorIs(t, c.Request.Context().Err(), context.DeadlineExceeded)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.True(t, deadline)
}

func TestNoFound(t *testing.T) {
	r := gin.New()
	r.NoRoute(NoFound())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
