package route

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bereanapp/berean/internal/app"
	"github.com/bereanapp/berean/internal/cachestore"
	"github.com/bereanapp/berean/internal/config"
	"github.com/bereanapp/berean/internal/logger"
	"github.com/bereanapp/berean/internal/registry"
	"github.com/bereanapp/berean/internal/resource"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeFetcher is an in-memory origin for API tests.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]*resource.Response
}

func (f *fakeFetcher) serve(url string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[url] = &resource.Response{
		Status: status,
		Header: http.Header{"Content-Type": []string{"text/html"}},
		Body:   []byte(body),
		URL:    url,
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, req *resource.Request) (*resource.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if res, ok := f.responses[req.URL]; ok {
		return res.Clone(), nil
	}
	return nil, fmt.Errorf("no route to %s", req.URL)
}

func newTestApp(t *testing.T) (*app.App, *fakeFetcher, string) {
	t.Helper()
	dir := t.TempDir()

	manifestPath := filepath.Join(dir, "precache.json")
	precache, err := json.Marshal(map[string]any{
		"version": "v1",
		"assets":  []string{"/index.html"},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(manifestPath, precache, 0o644))

	webManifestPath := filepath.Join(dir, "manifest.webmanifest")
	webManifest := `{
		"name": "Berean Bible Study",
		"short_name": "Berean",
		"start_url": "/",
		"display": "standalone",
		"background_color": "#ffffff",
		"theme_color": "#2c3e50",
		"icons": [{"src": "/icons/192.png", "sizes": "192x192", "type": "image/png"}]
	}`
	require.NoError(t, os.WriteFile(webManifestPath, []byte(webManifest), 0o644))

	fetcher := &fakeFetcher{responses: map[string]*resource.Response{}}
	fetcher.serve("/index.html", http.StatusOK, "<html>shell</html>")

	storage := cachestore.NewStorage()
	reg, err := registry.NewRegistration(registry.Options{
		Prefix:       "berean-",
		ManifestPath: manifestPath,
		UpdatePoll:   time.Hour,
		Storage:      storage,
		Fetcher:      fetcher,
	})
	require.NoError(t, err)
	require.NoError(t, reg.Register(context.Background()))

	cfg := &config.Config{
		Server: config.ServerConfig{
			CORSAllowedOrigins: "*",
			RequestTimeout:     5 * time.Second,
		},
		Cache: config.CacheConfig{
			Prefix:           "berean-",
			PrecacheManifest: manifestPath,
			WebManifest:      webManifestPath,
			UpdatePoll:       time.Hour,
		},
	}

	appCtx, err := app.New(cfg, storage, reg)
	require.NoError(t, err)
	t.Cleanup(appCtx.Shutdown)

	return appCtx, fetcher, manifestPath
}

func TestHealthz(t *testing.T) {
	appCtx, _, _ := newTestApp(t)
	r := SetupRoutes(appCtx, logger.Logger)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "UP")
}

func TestGateway_ServesPrecachedResource(t *testing.T) {
	appCtx, _, _ := newTestApp(t)
	r := SetupRoutes(appCtx, logger.Logger)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/index.html", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shell")
}

func TestGateway_NavigationFallsBackToShellWhenOffline(t *testing.T) {
	appCtx, _, _ := newTestApp(t)
	r := SetupRoutes(appCtx, logger.Logger)

	req := httptest.NewRequest(http.MethodGet, "/study/john-3", nil)
	req.Header.Set("Sec-Fetch-Mode", "navigate")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shell")
}

func TestGateway_SubresourceFailureReturnsBadGateway(t *testing.T) {
	appCtx, _, _ := newTestApp(t)
	r := SetupRoutes(appCtx, logger.Logger)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/absent.js", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGateway_RejectsNonGET(t *testing.T) {
	appCtx, _, _ := newTestApp(t)
	r := SetupRoutes(appCtx, logger.Logger)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/index.html", bytes.NewBufferString("{}")))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestWebManifest_ServedWithManifestMediaType(t *testing.T) {
	appCtx, _, _ := newTestApp(t)
	r := SetupRoutes(appCtx, logger.Logger)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/manifest.webmanifest", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/manifest+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Body.String(), "Berean")
}

func TestStatus_ReportsControllerAndWaiting(t *testing.T) {
	appCtx, fetcher, manifestPath := newTestApp(t)
	r := SetupRoutes(appCtx, logger.Logger)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "v1", status["version"])
	assert.Equal(t, "activated", status["state"])
	assert.Equal(t, "berean-v1", status["cacheName"])

	// Deploy v2 and trigger a manual update check.
	precache, err := json.Marshal(map[string]any{"version": "v2", "assets": []string{"/index.html"}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(manifestPath, precache, 0o644))
	fetcher.serve("/index.html", http.StatusOK, "<html>shell v2</html>")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/update", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "v2")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "v1", status["version"])
	assert.Equal(t, "v2", status["waitingVersion"])
}

func TestMessage_SkipWaitingActivatesNewVersion(t *testing.T) {
	appCtx, _, manifestPath := newTestApp(t)
	r := SetupRoutes(appCtx, logger.Logger)

	precache, err := json.Marshal(map[string]any{"version": "v2", "assets": []string{"/index.html"}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(manifestPath, precache, 0o644))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/update", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := bytes.NewBufferString(`{"kind":"skip-waiting"}`)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/message", body))
	require.Equal(t, http.StatusAccepted, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "v2", status["version"])
	assert.Nil(t, status["waitingVersion"])
}

func TestMessage_RejectsInvalidBody(t *testing.T) {
	appCtx, _, _ := newTestApp(t)
	r := SetupRoutes(appCtx, logger.Logger)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/message", bytes.NewBufferString("{")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
