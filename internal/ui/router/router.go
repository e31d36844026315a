// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/admingrid/internal/grids"
	gridFeature "github.com/leapstack-labs/admingrid/internal/ui/features/grid"
	"github.com/leapstack-labs/admingrid/internal/ui/notifier"
	"github.com/leapstack-labs/admingrid/internal/ui/resources"
	"github.com/leapstack-labs/admingrid/internal/ui/session"
)

// Deps are shared by every feature.
type Deps struct {
	Registry       *grids.Registry
	Sessions       *session.Store
	Notifier       *notifier.Notifier
	Logger         *slog.Logger
	MultiSort      bool
	SearchDebounce time.Duration
	IsDev          bool
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, deps Deps) error {
	// Hot reload endpoint for dev mode
	if deps.IsDev {
		setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Feature routes
	return gridFeature.SetupRoutes(router, gridFeature.Deps{
		Registry:       deps.Registry,
		Sessions:       deps.Sessions,
		Notifier:       deps.Notifier,
		Logger:         deps.Logger,
		MultiSort:      deps.MultiSort,
		SearchDebounce: deps.SearchDebounce,
		IsDev:          deps.IsDev,
	})
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
