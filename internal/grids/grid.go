// Package grids binds store listings to data tables.
//
// A grid pairs a datatable.Table with a record source and a view. In server
// mode the table only renders: sorting, filtering, search and paging are
// translated into a store query and the table receives one page of rows. In
// client mode the grid loads every record and the table does the work.
package grids

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/leapstack-labs/admingrid/internal/starlark"
	"github.com/leapstack-labs/admingrid/internal/store"
	"github.com/leapstack-labs/admingrid/internal/views"
	"github.com/leapstack-labs/admingrid/pkg/datatable"
)

// Mode says where rows are sorted, filtered and paged.
type Mode int

// Grid modes.
const (
	ModeClient Mode = iota
	ModeServer
)

// String returns the string representation of a Mode.
func (m Mode) String() string {
	if m == ModeServer {
		return "server"
	}
	return "client"
}

// ParseMode converts "client" or "server" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "server":
		return ModeServer, nil
	case "client":
		return ModeClient, nil
	default:
		return ModeServer, fmt.Errorf("unknown grid mode %q", s)
	}
}

// ErrUnknownAction is returned for an action index the grid does not have.
var ErrUnknownAction = errors.New("unknown action")

// Source lists records for a grid.
type Source[T any] interface {
	List(ctx context.Context, q store.GridQuery) (store.Page[T], error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context, q store.GridQuery) (store.Page[T], error)

// List calls f.
func (f SourceFunc[T]) List(ctx context.Context, q store.GridQuery) (store.Page[T], error) {
	return f(ctx, q)
}

// Action is a row action that may fail.
type Action[T any] struct {
	Label   string
	Icon    string
	Variant datatable.Variant
	Show    func(T) bool
	Run     func(ctx context.Context, row T) error
}

// Config describes a grid.
type Config[T any] struct {
	Name   string
	Title  string
	View   views.View
	Schema views.Schema[T]
	Source Source[T]
	Mode   Mode
	RowID  func(T) string

	Actions []Action[T]
	// SubRows and Detail enable row expansion.
	SubRows func(T) ([]T, bool)
	Detail  func(T) string

	// Initial restores a persisted state.
	Initial         datatable.State
	PageSize        int
	PageSizeOptions []int
	SearchDebounce  time.Duration
	MultiSort       bool

	Env      *starlark.Env
	Currency string
	Logger   *slog.Logger

	// OnStale is called when a debounced search settles in server mode and
	// the grid needs a Refresh.
	OnStale func()
}

// Grid is a resource grid over records of type T.
type Grid[T any] struct {
	*datatable.Table[T]

	name    string
	title   string
	mode    Mode
	source  Source[T]
	fields  map[string]string
	actions []Action[T]
	logger  *slog.Logger
	onStale func()

	// sortable and filterable hold the field columns the store may order
	// and filter by.
	sortable   map[string]bool
	filterable map[string]bool

	mu      sync.Mutex
	sorting datatable.SortingState
	filters datatable.ColumnFilters
	page    datatable.PaginationState
	search  string

	// runMu serializes RunAction so clicked is only seen by its caller.
	runMu   sync.Mutex
	clicked *T
}

// New builds a grid. Call Refresh to load the first rows.
func New[T any](cfg Config[T]) (*Grid[T], error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("grid %s: no source", cfg.Name)
	}
	if cfg.RowID == nil {
		return nil, fmt.Errorf("grid %s: %w", cfg.Name, datatable.ErrRowIDRequired)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("grid", cfg.Name)

	built, err := views.Build(cfg.View, cfg.Schema, views.BuildOptions{
		Env:      cfg.Env,
		Currency: cfg.Currency,
		Server:   cfg.Mode == ModeServer,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("grid %s: %w", cfg.Name, err)
	}

	g := &Grid[T]{
		name:    cfg.Name,
		title:   cfg.Title,
		mode:    cfg.Mode,
		source:  cfg.Source,
		fields:  built.Fields,
		actions: cfg.Actions,
		logger:  logger,
		onStale: cfg.OnStale,
	}
	g.sortable = map[string]bool{}
	g.filterable = map[string]bool{}
	for _, c := range built.Columns {
		if _, ok := built.Fields[c.ID]; !ok {
			continue
		}
		g.sortable[c.ID] = c.Sortable
		g.filterable[c.ID] = c.Filter != datatable.FilterNone
	}
	if g.title == "" {
		g.title = cfg.View.Title
	}

	initial := cfg.Initial.Clone()
	if initial.Visibility == nil {
		initial.Visibility = built.Hidden
	}
	pageSize := initial.Pagination.PageSize
	if pageSize <= 0 {
		pageSize = cfg.View.PageSize
	}
	if pageSize <= 0 {
		pageSize = cfg.PageSize
	}
	if pageSize <= 0 {
		pageSize = datatable.DefaultPageSize
	}
	initial.Pagination = datatable.PaginationState{PageIndex: max(initial.Pagination.PageIndex, 0), PageSize: pageSize}

	opts := datatable.Options[T]{
		Columns:                built.Columns,
		Searchable:             true,
		SearchDebounce:         cfg.SearchDebounce,
		PageSizeOptions:        cfg.PageSizeOptions,
		EnableRowSelection:     true,
		GetRowID:               cfg.RowID,
		MultiSort:              cfg.MultiSort,
		EnableColumnVisibility: true,
		EnableColumnResizing:   true,
		EnableExport:           true,
		ExportFilename:         cfg.Name + ".csv",
		Initial:                initial,
		Logger:                 logger,
	}
	if cfg.SubRows != nil {
		opts.EnableExpanding = true
		opts.GetSubRows = cfg.SubRows
		opts.RenderSubComponent = cfg.Detail
	}
	for _, a := range cfg.Actions {
		opts.Actions = append(opts.Actions, datatable.Action[T]{
			Label:   a.Label,
			Icon:    a.Icon,
			Variant: a.Variant,
			Show:    a.Show,
			OnClick: func(row T) { g.clicked = &row },
		})
	}

	if cfg.Mode == ModeServer {
		g.sorting = initial.Sorting
		g.filters = initial.Filters
		g.page = initial.Pagination
		g.search = initial.GlobalFilter

		opts.ManualSorting = true
		opts.ManualFiltering = true
		opts.ManualPagination = true
		opts.Sorting = datatable.Controlled(g.getSorting, g.setSorting)
		opts.ColumnFilters = datatable.Controlled(g.getFilters, g.setFilters)
		opts.OnGlobalFilterChange = g.searchSettled
		opts.GlobalFilter = initial.GlobalFilter
		opts.Pagination = &datatable.Pagination{
			PageIndex: g.page.PageIndex,
			PageSize:  g.page.PageSize,
			OnChange:  g.setPage,
		}
	} else {
		opts.Pagination = &datatable.Pagination{PageIndex: initial.Pagination.PageIndex, PageSize: pageSize}
	}

	table, err := datatable.New(opts)
	if err != nil {
		return nil, fmt.Errorf("grid %s: %w", cfg.Name, err)
	}
	g.Table = table
	return g, nil
}

// Name returns the resource name.
func (g *Grid[T]) Name() string { return g.name }

// Title returns the display title.
func (g *Grid[T]) Title() string { return g.title }

// Mode returns where the grid's rows are processed.
func (g *Grid[T]) Mode() Mode { return g.mode }

func (g *Grid[T]) getSorting() datatable.SortingState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sorting
}

func (g *Grid[T]) setSorting(s datatable.SortingState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sorting = s
	g.page.PageIndex = 0
}

func (g *Grid[T]) getFilters() datatable.ColumnFilters {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filters
}

func (g *Grid[T]) setFilters(f datatable.ColumnFilters) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.filters = f
	g.page.PageIndex = 0
}

func (g *Grid[T]) setPage(p datatable.PaginationState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p.PageSize != g.page.PageSize {
		p.PageIndex = 0
	}
	g.page = p
}

func (g *Grid[T]) searchSettled(q string) {
	g.mu.Lock()
	changed := g.search != q
	g.search = q
	if changed {
		g.page.PageIndex = 0
	}
	g.mu.Unlock()

	if changed && g.onStale != nil {
		g.onStale()
	}
}

// Search applies a search right away, skipping the debounce window.
func (g *Grid[T]) Search(ctx context.Context, q string) error {
	if g.mode == ModeClient {
		g.SetGlobalFilter(q)
		return nil
	}
	g.SyncGlobalFilter(q)
	g.mu.Lock()
	if g.search != q {
		g.search = q
		g.page.PageIndex = 0
	}
	g.mu.Unlock()
	return g.Refresh(ctx)
}

// Query returns the store query the current state maps to.
func (g *Grid[T]) Query() store.GridQuery {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.query()
}

func (g *Grid[T]) query() store.GridQuery {
	q := store.GridQuery{
		Search:    g.search,
		PageIndex: g.page.PageIndex,
		PageSize:  g.page.PageSize,
	}
	for _, s := range g.sorting {
		if field, ok := g.fields[s.ColumnID]; ok && g.sortable[s.ColumnID] {
			q.Sort = append(q.Sort, store.SortKey{Field: field, Desc: s.Desc})
		}
	}
	for _, id := range sortedKeys(g.filters) {
		field, ok := g.fields[id]
		v := g.filters[id]
		if !ok || !g.filterable[id] || v.IsZero() {
			continue
		}
		q.Filters = append(q.Filters, store.Filter{
			Field:  field,
			Text:   v.Text,
			Equals: v.Equals,
			From:   v.From,
			To:     endOfDay(v.To),
			Min:    v.Min,
			Max:    v.Max,
		})
	}
	return q
}

// endOfDay widens a date-only upper bound to cover the whole day.
func endOfDay(t time.Time) time.Time {
	if t.IsZero() || t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return t
	}
	return t.Add(24*time.Hour - time.Second)
}

// Refresh reloads rows from the source.
func (g *Grid[T]) Refresh(ctx context.Context) error {
	g.SetLoading(true)
	defer g.SetLoading(false)

	if g.mode == ModeClient {
		page, err := g.source.List(ctx, store.GridQuery{})
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", g.name, err)
		}
		g.SetData(page.Items)
		if st, ok := g.Pagination(); ok {
			if idx := datatable.ClampPage(st.PageIndex, st.PageSize, g.FilteredRowCount()); idx != st.PageIndex {
				return g.SetPageIndex(idx)
			}
		}
		return nil
	}

	g.mu.Lock()
	q := g.query()
	g.mu.Unlock()

	page, err := g.source.List(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", g.name, err)
	}
	if idx := datatable.ClampPage(q.PageIndex, q.PageSize, page.Total); idx != q.PageIndex {
		// The row set shrank under the cursor; show the last page instead.
		q.PageIndex = idx
		if page, err = g.source.List(ctx, q); err != nil {
			return fmt.Errorf("failed to load %s: %w", g.name, err)
		}
	}

	g.mu.Lock()
	g.page = datatable.PaginationState{PageIndex: q.PageIndex, PageSize: q.PageSize}
	g.mu.Unlock()

	g.SetData(page.Items)
	g.SetPagination(datatable.Pagination{
		PageIndex: q.PageIndex,
		PageSize:  q.PageSize,
		Total:     page.Total,
		OnChange:  g.setPage,
	})
	g.logger.Debug("grid refreshed", "rows", len(page.Items), "total", page.Total, "page", q.PageIndex)
	return nil
}

// RunAction runs action index on a row of the current page, then refreshes.
func (g *Grid[T]) RunAction(ctx context.Context, rowID string, index int) error {
	if index < 0 || index >= len(g.actions) {
		return fmt.Errorf("%w: %d", ErrUnknownAction, index)
	}
	g.runMu.Lock()
	g.clicked = nil
	err := g.Table.RunAction(rowID, index)
	row := g.clicked
	g.clicked = nil
	g.runMu.Unlock()
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("%w: %s", datatable.ErrUnknownRow, rowID)
	}

	action := g.actions[index]
	g.logger.Info("running action", "action", action.Label, "row", rowID)
	if action.Run != nil {
		if err := action.Run(ctx, *row); err != nil {
			return fmt.Errorf("%s failed: %w", action.Label, err)
		}
	}
	_ = g.SetRowSelected(rowID, false)
	return g.Refresh(ctx)
}

// exportRows returns the rows an export covers: the selection when there is
// one, otherwise every row matching the current search and filters. In server
// mode the selection may span pages, so selected rows are loaded by id.
func (g *Grid[T]) exportRows(ctx context.Context) ([]T, error) {
	if g.mode == ModeServer {
		if ids := g.SelectedIDs(); len(ids) > 0 {
			q := g.Query()
			page, err := g.source.List(ctx, store.GridQuery{IDs: ids, Sort: q.Sort})
			if err != nil {
				return nil, fmt.Errorf("failed to load selected %s: %w", g.name, err)
			}
			return page.Items, nil
		}
	} else if sel := g.SelectedRows(); len(sel) > 0 {
		return sel, nil
	}
	if g.mode == ModeClient {
		rows := g.FilteredRows()
		out := make([]T, len(rows))
		for i, r := range rows {
			out[i] = r.Original
		}
		return out, nil
	}
	q := g.Query()
	q.PageIndex, q.PageSize = 0, 0
	page, err := g.source.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", g.name, err)
	}
	return page.Items, nil
}

// Export writes the export rows as CSV.
func (g *Grid[T]) Export(ctx context.Context, w io.Writer) (datatable.ExportResult, error) {
	rows, err := g.exportRows(ctx)
	if err != nil {
		return datatable.ExportResult{}, err
	}
	result := datatable.ExportResult{Filename: g.name + ".csv", Rows: len(rows)}
	if err := datatable.WriteCSV(w, g.Columns(), rows); err != nil {
		return result, err
	}
	g.logger.Info("exported rows", "rows", len(rows))
	return result, nil
}

// Records returns the export rows as text and values over the visible,
// exportable columns.
func (g *Grid[T]) Records(ctx context.Context) (Records, error) {
	rows, err := g.exportRows(ctx)
	if err != nil {
		return Records{}, err
	}
	visibility := g.State().Visibility

	var cols []datatable.Column[T]
	var out Records
	for _, c := range g.Columns() {
		if c.DisableExport {
			continue
		}
		if v, ok := visibility[c.ID]; ok && !v {
			continue
		}
		cols = append(cols, c)
		out.Columns = append(out.Columns, RecordColumn{ID: c.ID, Label: c.Label()})
	}
	for _, row := range rows {
		text := make([]string, len(cols))
		values := make([]any, len(cols))
		for i, c := range cols {
			text[i] = c.Render(row)
			values[i] = c.Value(row)
		}
		out.Text = append(out.Text, text)
		out.Values = append(out.Values, values)
	}
	return out, nil
}
