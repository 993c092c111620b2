// Package server serves a live preview of a rendered timeline. The page
// reloads itself over a WebSocket whenever the source file changes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/a-h/templ"

	"github.com/conneroisu/tweetify/internal/config"
	tweeterrors "github.com/conneroisu/tweetify/internal/errors"
	"github.com/conneroisu/tweetify/internal/loader"
	"github.com/conneroisu/tweetify/internal/logging"
	"github.com/conneroisu/tweetify/internal/markup"
	"github.com/conneroisu/tweetify/internal/tweet"
	"github.com/conneroisu/tweetify/internal/version"
	"github.com/conneroisu/tweetify/internal/watcher"
	"github.com/conneroisu/tweetify/internal/websocket"
	"github.com/conneroisu/tweetify/internal/widget"
)

const shutdownTimeout = 5 * time.Second

// Server renders the configured source file and pushes reloads to open
// preview pages.
type Server struct {
	config  *config.Config
	widget  *widget.Widget
	loader  loader.Loader
	hub     *websocket.Hub
	watcher *watcher.FileWatcher
	logger  logging.Logger

	mu    sync.RWMutex
	state loadState

	serverMutex sync.Mutex
	httpServer  *http.Server
}

type loadState struct {
	statuses []tweet.Status
	err      error
	loadedAt time.Time
}

// New builds a server from cfg. A file watcher is only set up when a
// source path is configured.
func New(cfg *config.Config, logger logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.WithComponent("server")

	s := &Server{
		config: cfg,
		widget: cfg.NewWidget(logger),
		loader: loader.Loader{Logger: logger},
		hub:    websocket.NewHub(originPatterns(cfg.Server.AllowedOrigins), logger),
		logger: logger,
	}

	if cfg.Source.Path != "" {
		fw, err := watcher.NewFileWatcher(cfg.Server.Debounce, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}
		s.watcher = fw
	}
	return s, nil
}

// Handler returns the routes wrapped in the CORS and logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /fragments", s.handleFragments)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /ws", s.hub)
	return s.addMiddleware(mux)
}

// Reload reads the source file again. On failure the previous statuses
// are kept and the error is reported by every page until the next
// successful load.
func (s *Server) Reload(ctx context.Context) error {
	path := s.config.Source.Path
	if path == "" {
		err := tweeterrors.NewConfigError(tweeterrors.CodeInvalidConfig, "no source file configured")
		s.setLoadResult(nil, err)
		return err
	}

	op := s.logger.StartOperation("reload")
	statuses, err := s.loader.LoadFile(path)
	if err != nil {
		s.setLoadResult(nil, err)
		op.EndWithError(ctx, err)
		return err
	}

	s.setLoadResult(statuses, nil)
	op.End(ctx, "path", path, "statuses", len(statuses))
	return nil
}

func (s *Server) setLoadResult(statuses []tweet.Status, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state.err = err
		return
	}
	s.state = loadState{statuses: statuses, loadedAt: time.Now()}
}

func (s *Server) snapshot() loadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Start loads the source, starts watching it and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Reload(ctx); err != nil {
		s.logger.Warn(ctx, err, "Initial load failed", "path", s.config.Source.Path)
	}

	if s.watcher != nil {
		s.watcher.AddHandler(s.handleFileChange)
		if err := s.watcher.WatchFile(s.config.Source.Path); err != nil {
			return tweeterrors.WrapIO(err, "watching source file").
				WithContext("path", s.config.Source.Path)
		}
		if err := s.watcher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
	}

	addr := net.JoinHostPort(s.config.Server.Host, strconv.Itoa(s.config.Server.Port))

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "Preview server listening", "url", "http://"+addr)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops the watcher, disconnects every preview page and closes
// the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stopping watcher: %w", err))
		}
	}
	if err := s.hub.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stopping websocket hub: %w", err))
	}

	s.serverMutex.Lock()
	srv := s.httpServer
	s.serverMutex.Unlock()
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stopping http server: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (s *Server) handleFileChange(events []watcher.ChangeEvent) error {
	ctx := context.Background()
	for _, event := range events {
		s.logger.Debug(ctx, "Source changed", "path", event.Path, "event", event.Type.String())
	}

	msg := websocket.UpdateMessage{Type: websocket.MessageReload, Target: s.config.Source.Path}
	if err := s.Reload(ctx); err != nil {
		msg.Type = websocket.MessageError
		msg.Content = err.Error()
	}
	return s.hub.Broadcast(msg)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	state := s.snapshot()
	loadErr := state.err

	body, err := s.widget.Component(state.statuses)
	if err != nil {
		s.logger.Error(r.Context(), err, "Failed to build widget")
		loadErr = err
		body = templ.NopComponent
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if loadErr != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
	if err := page(body, loadErr).Render(r.Context(), w); err != nil {
		s.logger.Error(r.Context(), err, "Failed to write preview page")
	}
}

func (s *Server) handleFragments(w http.ResponseWriter, r *http.Request) {
	state := s.snapshot()
	if state.err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": state.err.Error()})
		return
	}

	out, err := s.widget.Annotated(state.statuses)
	if err != nil {
		s.logger.Error(r.Context(), err, "Failed to annotate timeline")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := s.snapshot()

	health := map[string]interface{}{
		"status":   "healthy",
		"version":  version.Get().Short(),
		"source":   s.config.Source.Path,
		"statuses": len(state.statuses),
		"clients":  s.hub.ClientCount(),
	}
	if !state.loadedAt.IsZero() {
		health["loaded_at"] = state.loadedAt.Format(time.RFC3339)
	}
	if state.err != nil {
		health["status"] = "degraded"
		health["error"] = state.err.Error()
		health["error_type"] = string(tweeterrors.GetErrorType(state.err))
		if ctx := tweeterrors.GetErrorContext(state.err); len(ctx) > 0 {
			health["error_context"] = ctx
		}
	}
	writeJSON(w, http.StatusOK, health)
}

func (s *Server) addMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if s.isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		start := time.Now()
		handler.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "Handled request",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// isAllowedOrigin matches the host of origin against the allowed hosts.
func (s *Server) isAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	for _, allowed := range s.config.Server.AllowedOrigins {
		if u.Hostname() == allowed || u.Host == allowed || origin == allowed {
			return true
		}
	}
	return false
}

// originPatterns lets WebSocket handshakes in from allowed hosts on any port.
func originPatterns(hosts []string) []string {
	patterns := make([]string, 0, len(hosts)*2)
	for _, host := range hosts {
		patterns = append(patterns, host, host+":*")
	}
	return patterns
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>tweetify preview</title>
<style>
body { font-family: sans-serif; max-width: 40em; margin: 2em auto; }
.tweets { list-style: none; padding: 0; }
.tweet { border-bottom: 1px solid #ddd; padding: 0.5em 0; }
.meta, .intents { font-size: 0.8em; color: #666; }
.error { background: #fee; border: 1px solid #c00; padding: 0.5em; white-space: pre-wrap; }
</style>
</head>
<body>
`

const pageTail = `<script>
(function () {
  var scheme = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(scheme + location.host + "/ws");
  ws.onmessage = function (event) {
    var msg = JSON.parse(event.data);
    if (msg.type === "reload" || msg.type === "error") {
      location.reload();
    }
  };
})();
</script>
</body>
</html>
`

// page wraps body in the preview document. A non-nil loadErr is shown
// above the widget.
func page(body templ.Component, loadErr error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}
		if loadErr != nil {
			banner := markup.Element("div", "error").WithText(loadErr.Error())
			if err := markup.RenderHTML(w, banner); err != nil {
				return err
			}
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, pageTail)
		return err
	})
}
