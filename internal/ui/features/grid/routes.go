// Package grid serves the resource grids of the web admin.
package grid

import (
	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers grid routes on the router.
func SetupRoutes(router chi.Router, deps Deps) error {
	h := NewHandlers(deps)

	router.Get("/", h.Index)

	router.Route("/{resource}", func(r chi.Router) {
		r.Use(h.requireResource)

		// Page routes (full page render)
		r.Get("/", h.Page)
		r.Get("/export.csv", h.ExportCSV)

		// SSE routes (long-lived streams)
		r.Get("/sse", h.GridSSE)

		// Interactions answer with a patched grid
		r.Post("/search", h.Search)
		r.Post("/sort/{column}", h.Sort)
		r.Post("/filter/{column}", h.Filter)
		r.Post("/filters/clear", h.ClearFilters)
		r.Post("/page/{page}", h.GoToPage)
		r.Post("/size/{size}", h.PageSize)
		r.Post("/select-page", h.SelectPage)
		r.Post("/selection/clear", h.ClearSelection)
		r.Post("/select/{row}", h.Select)
		r.Post("/expand/{row}", h.Expand)
		r.Post("/columns/{column}", h.ToggleColumn)
		r.Post("/resize/{column}", h.Resize)
		r.Post("/action/{row}/{index}", h.Action)
	})

	return nil
}
