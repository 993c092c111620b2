package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/tweetify/internal/config"
	"github.com/conneroisu/tweetify/internal/watcher"
	tweetws "github.com/conneroisu/tweetify/internal/websocket"
	"github.com/conneroisu/tweetify/internal/widget"
)

func copyTimeline(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "loader", "testdata", "timeline.json"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "timeline.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newTestServer(t *testing.T, source string) *Server {
	t.Helper()
	v := viper.New()
	v.Set("source.path", source)
	v.Set("server.port", 0)
	cfg, err := config.LoadFrom(v)
	require.NoError(t, err)

	s, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndexRendersWidget(t *testing.T) {
	s := newTestServer(t, copyTimeline(t))
	require.NoError(t, s.Reload(context.Background()))

	rec := get(t, s.Handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	assert.Contains(t, body, `<div class="TwitterControl">`)
	assert.Contains(t, body, `class="hashtag"`)
	assert.Contains(t, body, `"/ws"`)
	assert.NotContains(t, body, `class="error"`)
}

func TestIndexReportsLoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeline.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"text": <oops>}]`), 0o644))

	s := newTestServer(t, path)
	require.Error(t, s.Reload(context.Background()))

	rec := get(t, s.Handler(), "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div class="error">`)
	assert.Contains(t, rec.Body.String(), "invalid character &#39;&lt;&#39;")
}

func TestReloadKeepsLastGoodTimeline(t *testing.T) {
	path := copyTimeline(t)
	s := newTestServer(t, path)
	require.NoError(t, s.Reload(context.Background()))

	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	require.Error(t, s.Reload(context.Background()))

	state := s.snapshot()
	assert.Len(t, state.statuses, 4)
	assert.Error(t, state.err)
}

func TestReloadWithoutSource(t *testing.T) {
	s := newTestServer(t, "")
	assert.Nil(t, s.watcher)
	assert.Error(t, s.Reload(context.Background()))
}

func TestFragments(t *testing.T) {
	s := newTestServer(t, copyTimeline(t))
	require.NoError(t, s.Reload(context.Background()))

	rec := get(t, s.Handler(), "/fragments")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var out []widget.StatusFragments
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 4)
	assert.Equal(t, "1001", out[0].ID)

	first := out[0].Fragments
	require.NotEmpty(t, first)
	assert.Equal(t, "Hi ", first[0].Text)
	assert.True(t, first[1].HasClass("mention"))
}

func TestFragmentsLoadError(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, s.Reload(context.Background()))

	rec := get(t, s.Handler(), "/fragments")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, copyTimeline(t))
	require.NoError(t, s.Reload(context.Background()))

	rec := get(t, s.Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, float64(4), health["statuses"])
	assert.Equal(t, float64(0), health["clients"])
	assert.NotEmpty(t, health["version"])
	assert.NotEmpty(t, health["loaded_at"])
}

func TestHealthDegraded(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "missing.json"))
	_ = s.Reload(context.Background())

	var health map[string]interface{}
	rec := get(t, s.Handler(), "/health")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "degraded", health["status"])
	assert.Contains(t, health["error"], "missing.json")
	assert.Equal(t, "io", health["error_type"])
	require.IsType(t, map[string]interface{}{}, health["error_context"])
	assert.Contains(t, health["error_context"].(map[string]interface{})["path"], "missing.json")
}

func TestRouting(t *testing.T) {
	s := newTestServer(t, copyTimeline(t))
	h := s.Handler()

	assert.Equal(t, http.StatusNotFound, get(t, h, "/nope").Code)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, copyTimeline(t))
	h := s.Handler()

	testCases := []struct {
		name           string
		origin         string
		expectedOrigin string
	}{
		{"localhost with port", "http://localhost:3000", "http://localhost:3000"},
		{"loopback", "http://127.0.0.1:8080", "http://127.0.0.1:8080"},
		{"foreign origin", "https://evil.example", ""},
		{"no origin", "", ""},
		{"garbage origin", "::not a url", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		})
	}

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/fragments", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	})
}

func TestFileChangeBroadcastsReload(t *testing.T) {
	path := copyTimeline(t)
	s := newTestServer(t, path)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return s.hub.ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.handleFileChange([]watcher.ChangeEvent{{Path: path, Type: watcher.EventTypeModified}}))

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg tweetws.UpdateMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, tweetws.MessageReload, msg.Type)
	assert.Equal(t, path, msg.Target)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	require.NoError(t, s.handleFileChange([]watcher.ChangeEvent{{Path: path, Type: watcher.EventTypeModified}}))

	_, data, err = conn.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, tweetws.MessageError, msg.Type)
	assert.NotEmpty(t, msg.Content)
}

func TestStartAndShutdown(t *testing.T) {
	path := copyTimeline(t)
	s := newTestServer(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		s.serverMutex.Lock()
		defer s.serverMutex.Unlock()
		return s.httpServer != nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, s.snapshot().statuses, 4)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, s.hub.IsShutdown())
}

func TestPageEscapesError(t *testing.T) {
	var b strings.Builder
	err := page(componentString("<ul></ul>"), assert.AnError).Render(context.Background(), &b)
	require.NoError(t, err)
	assert.Contains(t, b.String(), assert.AnError.Error())
	assert.Contains(t, b.String(), "<ul></ul>")
	assert.True(t, strings.HasSuffix(b.String(), "</html>\n"))
}

type componentString string

func (c componentString) Render(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, string(c))
	return err
}
