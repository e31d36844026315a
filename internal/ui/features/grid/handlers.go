package grid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/admingrid/internal/grids"
	"github.com/leapstack-labs/admingrid/internal/ui/components"
	"github.com/leapstack-labs/admingrid/pkg/datatable"
)

// errBadRequest marks malformed path or query parameters.
var errBadRequest = errors.New("bad request")

// Handlers provides HTTP handlers for the grid feature.
type Handlers struct {
	deps   Deps
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{deps: deps, logger: logger}
}

// requireResource answers 404 for resources no grid exists for.
func (h *Handlers) requireResource(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !slices.Contains(grids.Names(), chi.URLParam(r, "resource")) {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Index sends visitors to the first grid.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, components.Path(grids.Products), http.StatusFound)
}

// Page renders the page shell of a resource grid.
func (h *Handlers) Page(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	h.deps.Sessions.Client(w, r)

	if err := components.GridPage(h.pageData(resource)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handlers) pageData(resource string) components.PageData {
	p := components.PageData{
		Title:    h.deps.Registry.Title(resource),
		Resource: resource,
		IsDev:    h.deps.IsDev,
	}
	for _, name := range grids.Names() {
		p.Nav = append(p.Nav, components.NavItem{
			Name:   name,
			Title:  h.deps.Registry.Title(name),
			Active: name == resource,
		})
	}
	return p
}

// GridSSE is the long-lived SSE endpoint for a grid page.
// It sends the grid and re-sends it whenever the resource changes.
func (h *Handlers) GridSSE(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	client := h.deps.Sessions.Client(w, r)
	sse := datastar.NewSSE(w, r)

	updates := h.deps.Notifier.Subscribe(resource)
	defer h.deps.Notifier.Unsubscribe(updates)

	if err := h.sendGrid(r, sse, client, resource); err != nil {
		_ = sse.ConsoleError(err)
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := h.sendGrid(r, sse, client, resource); err != nil {
				_ = sse.ConsoleError(err)
				// Keep the stream; the next update may succeed.
			}
		}
	}
}

// sendGrid renders the client's current grid for a stream.
func (h *Handlers) sendGrid(r *http.Request, sse *datastar.ServerSentEventGenerator, client, resource string) error {
	st, ok := h.deps.Sessions.Peek(client, resource)
	if !ok {
		st = h.deps.Sessions.Load(r, client, resource)
	}
	res, err := h.deps.Registry.Open(r.Context(), resource, grids.OpenOptions{Initial: st})
	if err != nil {
		return err
	}
	defer res.Close()
	return h.patch(sse, resource, res.View())
}

// patch sends the grid and the input signals matching its state.
func (h *Handlers) patch(sse *datastar.ServerSentEventGenerator, resource string, v datatable.View) error {
	err := sse.PatchElementTempl(components.Grid(components.GridData{
		Resource:       resource,
		View:           v,
		MultiSort:      h.deps.MultiSort,
		SearchDebounce: h.deps.SearchDebounce,
	}))
	if err != nil {
		return fmt.Errorf("failed to patch grid: %w", err)
	}
	return sse.MarshalAndPatchSignals(Signals(v))
}

// Signals returns the search and filter input values of a view.
func Signals(v datatable.View) map[string]string {
	out := map[string]string{components.SearchSignal: v.Search}
	for _, hc := range v.Headers {
		if hc.Kind != datatable.CellData {
			continue
		}
		raw := grids.FormatFilter(hc.Filter, hc.FilterValue)
		switch hc.Filter {
		case datatable.FilterText, datatable.FilterSelect:
			out[components.FilterSignal(hc.ColumnID)] = raw
		case datatable.FilterDate, datatable.FilterNumber:
			from, to := grids.SplitRange(raw)
			out[components.FilterFromSignal(hc.ColumnID)] = from
			out[components.FilterToSignal(hc.ColumnID)] = to
		}
	}
	return out
}

// op changes a grid. Ops that move the row window ask for a refresh.
type op struct {
	refresh bool
	run     func(ctx context.Context, res grids.Resource) error
	// changed lists the resources to notify after a successful run.
	changed []string
}

// interact opens the client's grid, runs o, saves the new state and
// answers with the patched grid. Failures become toasts.
func (h *Handlers) interact(w http.ResponseWriter, r *http.Request, o op) {
	ctx := r.Context()
	resource := chi.URLParam(r, "resource")
	client := h.deps.Sessions.Client(w, r)

	res, err := h.deps.Registry.Open(ctx, resource, grids.OpenOptions{
		Initial: h.deps.Sessions.Load(r, client, resource),
	})
	if err != nil {
		h.logger.Error("failed to open grid", "resource", resource, "error", err)
		_ = datastar.NewSSE(w, r).PatchElementTempl(components.Toast(toastError, err.Error()))
		return
	}
	defer res.Close()

	opErr := o.run(ctx, res)
	if opErr == nil && o.refresh {
		opErr = res.Refresh(ctx)
	}
	if err := h.deps.Sessions.Save(w, r, client, resource, res.State()); err != nil {
		h.logger.Warn("failed to save grid state", "resource", resource, "error", err)
	}

	sse := datastar.NewSSE(w, r)
	if err := h.patch(sse, resource, res.View()); err != nil {
		h.logger.Error("failed to send grid", "resource", resource, "error", err)
		_ = sse.ConsoleError(err)
	}
	if opErr != nil {
		h.logger.Warn("grid interaction failed", "resource", resource, "path", r.URL.Path, "error", opErr)
		_ = sse.PatchElementTempl(components.Toast(toastError, opErr.Error()))
		return
	}
	if len(o.changed) > 0 {
		h.deps.Notifier.Broadcast(o.changed...)
	}
}

// Search applies the search box.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	// Read signals before the SSE consumes the request.
	signals, err := readSignals(r)
	h.interact(w, r, op{run: func(ctx context.Context, res grids.Resource) error {
		if err != nil {
			return err
		}
		return res.Search(ctx, signals[components.SearchSignal])
	}})
}

// Sort cycles a column's sort.
func (h *Handlers) Sort(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")
	h.interact(w, r, op{refresh: true, run: func(_ context.Context, res grids.Resource) error {
		return res.ToggleSort(column)
	}})
}

// Filter applies one column's filter inputs.
func (h *Handlers) Filter(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")
	signals, err := readSignals(r)
	h.interact(w, r, op{refresh: true, run: func(_ context.Context, res grids.Resource) error {
		if err != nil {
			return err
		}
		hc, ok := grids.Header(res.View(), column)
		if !ok {
			return fmt.Errorf("%w: unknown column %q", grids.ErrInvalidFilter, column)
		}
		raw := signals[components.FilterSignal(column)]
		if hc.Filter == datatable.FilterDate || hc.Filter == datatable.FilterNumber {
			raw = grids.JoinRange(signals[components.FilterFromSignal(column)], signals[components.FilterToSignal(column)])
		}
		return grids.ApplyFilter(res, column, raw)
	}})
}

// ClearFilters drops every column filter.
func (h *Handlers) ClearFilters(w http.ResponseWriter, r *http.Request) {
	h.interact(w, r, op{refresh: true, run: func(_ context.Context, res grids.Resource) error {
		res.ClearColumnFilters()
		return nil
	}})
}

// GoToPage moves the page cursor: first, prev, next, last or a 1-based number.
func (h *Handlers) GoToPage(w http.ResponseWriter, r *http.Request) {
	page := chi.URLParam(r, "page")
	h.interact(w, r, op{refresh: true, run: func(_ context.Context, res grids.Resource) error {
		switch page {
		case "first":
			return res.FirstPage()
		case "prev":
			return res.PreviousPage()
		case "next":
			return res.NextPage()
		case "last":
			return res.LastPage()
		}
		n, err := strconv.Atoi(page)
		if err != nil {
			return fmt.Errorf("%w: page %q", errBadRequest, page)
		}
		return res.SetPageIndex(n - 1)
	}})
}

// PageSize changes the rows per page.
func (h *Handlers) PageSize(w http.ResponseWriter, r *http.Request) {
	size := chi.URLParam(r, "size")
	h.interact(w, r, op{refresh: true, run: func(_ context.Context, res grids.Resource) error {
		n, err := strconv.Atoi(size)
		if err != nil {
			return fmt.Errorf("%w: page size %q", errBadRequest, size)
		}
		return res.SetPageSize(n)
	}})
}

// SelectPage selects every row of the page, or clears them when all are selected.
func (h *Handlers) SelectPage(w http.ResponseWriter, r *http.Request) {
	h.interact(w, r, op{run: func(_ context.Context, res grids.Resource) error {
		return res.ToggleAllPageRowsSelected(res.View().PageSelection != datatable.MarkAll)
	}})
}

// ClearSelection unselects every row.
func (h *Handlers) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.interact(w, r, op{run: func(_ context.Context, res grids.Resource) error {
		res.ClearSelection()
		return nil
	}})
}

// Select toggles one row's selection.
func (h *Handlers) Select(w http.ResponseWriter, r *http.Request) {
	row := chi.URLParam(r, "row")
	h.interact(w, r, op{run: func(_ context.Context, res grids.Resource) error {
		return res.ToggleRowSelected(row)
	}})
}

// Expand toggles one row's detail.
func (h *Handlers) Expand(w http.ResponseWriter, r *http.Request) {
	row := chi.URLParam(r, "row")
	h.interact(w, r, op{run: func(_ context.Context, res grids.Resource) error {
		return res.ToggleExpanded(row)
	}})
}

// ToggleColumn shows or hides a column.
func (h *Handlers) ToggleColumn(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")
	h.interact(w, r, op{run: func(_ context.Context, res grids.Resource) error {
		return res.ToggleColumnVisibility(column)
	}})
}

// Resize sets a column's width from the w query parameter.
func (h *Handlers) Resize(w http.ResponseWriter, r *http.Request) {
	column := chi.URLParam(r, "column")
	width := r.URL.Query().Get("w")
	h.interact(w, r, op{run: func(_ context.Context, res grids.Resource) error {
		n, err := strconv.Atoi(width)
		if err != nil {
			return fmt.Errorf("%w: width %q", errBadRequest, width)
		}
		_, err = res.ResizeColumn(column, n)
		return err
	}})
}

// Action runs a row action and tells other viewers the data changed.
func (h *Handlers) Action(w http.ResponseWriter, r *http.Request) {
	resource := chi.URLParam(r, "resource")
	row := chi.URLParam(r, "row")
	index := chi.URLParam(r, "index")

	changed := []string{resource}
	if resource == grids.Settings {
		// Settings such as the currency change how every grid renders.
		changed = nil
	}
	h.interact(w, r, op{changed: changed, run: func(ctx context.Context, res grids.Resource) error {
		n, err := strconv.Atoi(index)
		if err != nil {
			return fmt.Errorf("%w: action %q", errBadRequest, index)
		}
		return res.RunAction(ctx, row, n)
	}})
}

// ExportCSV downloads the selection, or every row matching the client's
// search and filters.
func (h *Handlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resource := chi.URLParam(r, "resource")
	client := h.deps.Sessions.Client(w, r)

	res, err := h.deps.Registry.Open(ctx, resource, grids.OpenOptions{
		Initial: h.deps.Sessions.Load(r, client, resource),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer res.Close()

	filename := res.View().ExportFilename
	if filename == "" {
		filename = resource + ".csv"
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	result, err := res.Export(ctx, w)
	if err != nil {
		// Headers are gone; the truncated body is all the client gets.
		h.logger.Error("export failed", "resource", resource, "error", err)
		return
	}
	h.logger.Info("exported grid", "resource", resource, "rows", result.Rows)
}

// readSignals returns the request's datastar signals as strings.
func readSignals(r *http.Request) (map[string]string, error) {
	raw := map[string]any{}
	if err := datastar.ReadSignals(r, &raw); err != nil {
		return nil, fmt.Errorf("failed to read signals: %w", err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = v
		case float64:
			out[k] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out, nil
}
