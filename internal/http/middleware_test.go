package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
}

func TestTriggerLimiter_Reserve(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tl := NewTriggerLimiter(6, 2)
	tl.now = func() time.Time { return now }

	assert.Zero(t, tl.reserve("10.0.0.1"))
	assert.Zero(t, tl.reserve("10.0.0.1"))
	assert.Equal(t, 10*time.Second, tl.reserve("10.0.0.1"))

	// Rejections do not consume tokens
	assert.Equal(t, 10*time.Second, tl.reserve("10.0.0.1"))

	// Other clients have their own budget
	assert.Zero(t, tl.reserve("10.0.0.2"))

	now = now.Add(10 * time.Second)
	assert.Zero(t, tl.reserve("10.0.0.1"))
}

func TestTriggerLimiter_PrunesIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tl := NewTriggerLimiter(1, 1)
	tl.now = func() time.Time { return now }

	tl.reserve("10.0.0.1")
	require.Len(t, tl.clients, 1)

	now = now.Add(limiterIdleTTL + time.Second)
	tl.reserve("10.0.0.2")
	assert.Len(t, tl.clients, 1)
	assert.Contains(t, tl.clients, "10.0.0.2")
}

func TestTriggerLimiter_Middleware(t *testing.T) {
	syncer := &fakeSyncer{}
	router := NewRouter(RouterConfig{Syncer: syncer, SyncTriggersPerMinute: 1})

	w := performRequest(router, http.MethodPost, "/api/sync/collection", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodPost, "/api/sync/collection", "", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Len(t, syncer.calls, 1)

	// Reads are not throttled
	w = performRequest(router, http.MethodGet, "/api/sync/status", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
