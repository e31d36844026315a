// Package ui provides the web admin for admingrid.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/admingrid/internal/grids"
	"github.com/leapstack-labs/admingrid/internal/ui/notifier"
	"github.com/leapstack-labs/admingrid/internal/ui/router"
	"github.com/leapstack-labs/admingrid/internal/ui/session"
	"github.com/leapstack-labs/admingrid/internal/views"
)

// reloadDelay debounces bursts of file events from editors.
const reloadDelay = 100 * time.Millisecond

// Server is the web admin server.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	notifier *notifier.Notifier
	sessions *session.Store
}

// Config holds configuration for the UI server.
type Config struct {
	Registry *grids.Registry
	Host     string
	Port     int
	// Watch reloads ViewsFile when it changes.
	Watch     bool
	ViewsFile string
	// SessionSecret signs session cookies. Empty means a per-process secret,
	// so grid state does not survive restarts.
	SessionSecret  string
	MultiSort      bool
	SearchDebounce time.Duration
	IsDev          bool
	Logger         *slog.Logger
	// OnListen is called with the server's URL once it accepts connections.
	OnListen func(url string)
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	secret := cfg.SessionSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
	}

	return &Server{
		cfg:      cfg,
		logger:   logger,
		notifier: notifier.New(),
		sessions: session.New(session.NewCookieStore(secret), logger),
	}
}

// Handler returns the server's routes.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		requestLogger(s.logger),
		middleware.Recoverer,
		middleware.Compress(5),
	)

	err := router.SetupRoutes(r, router.Deps{
		Registry:       s.cfg.Registry,
		Sessions:       s.sessions,
		Notifier:       s.notifier,
		Logger:         s.logger,
		MultiSort:      s.cfg.MultiSort,
		SearchDebounce: s.cfg.SearchDebounce,
		IsDev:          s.cfg.IsDev,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	url := "http://" + ln.Addr().String()
	s.logger.Info("starting UI server", "addr", url)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Watch && s.cfg.ViewsFile != "" {
		eg.Go(func() error {
			return s.watchViews(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if s.cfg.OnListen != nil {
		s.cfg.OnListen(url)
	}

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// ReloadViews re-reads the views file and refreshes every open grid. A
// broken file keeps the previous views.
func (s *Server) ReloadViews() error {
	set, err := views.Load(s.cfg.ViewsFile)
	if err != nil {
		return err
	}
	s.cfg.Registry.SetViews(set)
	s.notifier.Broadcast()
	return nil
}

// watchViews reloads the views file when it changes. The directory is
// watched since editors often replace files instead of writing them.
func (s *Server) watchViews(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(s.cfg.ViewsFile)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		s.logger.Error("failed to watch views", "path", target, "error", err)
		// Don't fail - serve without reloading
		<-ctx.Done()
		return nil
	}

	var (
		mu            sync.Mutex
		debounceTimer *time.Timer
	)
	defer func() {
		mu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}

			mu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDelay, func() {
				if err := s.ReloadViews(); err != nil {
					s.logger.Error("failed to reload views", "path", target, "error", err)
					return
				}
				s.logger.Info("views reloaded", "path", target)
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// requestLogger logs each request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
