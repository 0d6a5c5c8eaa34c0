package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performRequest(router *gin.Engine, method, path, contentType, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestNewRouter_Minimal(t *testing.T) {
	router := NewRouter(RouterConfig{Version: "test"})

	w := performRequest(router, http.MethodGet, "/ping", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")

	w = performRequest(router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	for _, path := range []string{"/api/collection", "/api/plays", "/api/sync/status", "/api/tasks/types", "/settings/bgg"} {
		w = performRequest(router, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestNewRouter_RegistersConfiguredRoutes(t *testing.T) {
	router := NewRouter(RouterConfig{
		Collection: &fakeCollection{},
		Plays:      &fakePlays{},
		Syncer:     &fakeSyncer{},
		Progress:   &fakeProgress{},
		Settings:   newTestSettingsStore(t),
		Scheduler:  &fakeScheduler{},
		TaskClient: &fakeTaskQueue{},
	})

	for _, path := range []string{"/api/collection", "/api/plays", "/api/plays/stats", "/api/sync/status", "/api/tasks/types", "/settings/bgg"} {
		w := performRequest(router, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
