package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	s := New(Config{
		Hub: hub,
		Status: func() map[string]any {
			return map[string]any{"mode": "hand", "enabled": false}
		},
	})

	rec := serve(s, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "uptime")
	assert.Equal(t, "hand", body["mode"])
	assert.Equal(t, false, body["enabled"])
	assert.EqualValues(t, 0, body["clients"])

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		assert.Equal(t, http.StatusMethodNotAllowed, serve(s, method, "/api/health").Code, method)
	}
}

func TestServer_OptionalRoutes(t *testing.T) {
	s := New(Config{})

	for _, path := range []string{"/api/settings", "/api/sessions", "/api/state", "/api/nonexistent", "/"} {
		assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, path).Code, path)
	}
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	index := "<html><body>mudra</body></html>"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(index), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("connect()"), 0o644))

	s := New(Config{StaticDir: dir})

	tests := []struct {
		path string
		code int
		body string
	}{
		{"/", http.StatusOK, index},
		{"/app.js", http.StatusOK, "connect()"},
		{"/missing.css", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(s, http.MethodGet, tt.path)
			assert.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestServer_SettingsRouting(t *testing.T) {
	s := New(Config{Store: newTestStore(t)})

	assert.Equal(t, http.StatusMethodNotAllowed, serve(s, http.MethodPost, "/api/settings").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(s, http.MethodGet, "/api/settings/hand.deadzone").Code)
	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodDelete, "/api/settings/hand.deadzone").Code)
}
