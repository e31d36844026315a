package datatable

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"sync"
	"time"

	"golang.org/x/text/language"
)

// DefaultExportFilename names the default CSV export.
const DefaultExportFilename = "export.csv"

// Options configures a Table.
//
// State ownership per concern:
//   - sorting, column filters, visibility, expansion: owned unless a Controlled
//     slot is supplied.
//   - row selection: owned unless a Controlled slot is supplied; callers that
//     act on selection normally control it.
//   - pagination: controlled when Pagination.OnChange is set, owned otherwise.
//   - global filter: the search input is always owned; with
//     OnGlobalFilterChange set its settled value is reported after the debounce
//     window.
type Options[T any] struct {
	Data    []T
	Columns []Column[T]
	Loading bool

	Searchable           bool
	GlobalFilter         string
	OnGlobalFilterChange func(string)
	SearchDebounce       time.Duration

	// Pagination nil renders every row and no footer.
	Pagination      *Pagination
	PageSizeOptions []int

	EnableRowSelection bool
	RowSelection       Slot[RowSelectionState]

	// GetRowID derives stable row ids. Required with selection or expansion.
	// Without it rows are keyed by data index, which is only used for display.
	GetRowID func(T) string

	EnableExpanding bool
	Expanded        Slot[ExpandedState]
	// GetSubRows reports whether a row is expandable (ok) and its children.
	GetSubRows func(T) (sub []T, ok bool)
	// RenderSubComponent renders an expanded row's detail. When nil, expanded
	// rows show their sub rows one level deeper instead.
	RenderSubComponent func(T) string

	Sorting       Slot[SortingState]
	MultiSort     bool
	ManualSorting bool

	ColumnFilters   Slot[ColumnFilters]
	ManualFiltering bool

	// ManualPagination trusts Data as the current page and Pagination.Total as the
	// row count. A Pagination.Total larger than len(Data) implies it.
	ManualPagination bool

	EnableColumnVisibility bool
	ColumnVisibility       Slot[VisibilityState]
	EnableColumnResizing   bool

	Actions []Action[T]

	EnableExport   bool
	OnExport       func([]T)
	ExportFilename string

	// Initial seeds owned slots, typically from a persisted State.
	Initial State

	// Language drives string collation and case folding. Defaults to English.
	Language language.Tag
	Logger   *slog.Logger
}

// Row is one record in the computed row model.
type Row[T any] struct {
	ID       string
	Index    int // position in Data; -1 for sub rows
	Depth    int
	ParentID string
	Original T
}

// Table is a headless data table over records of type T. It is safe for
// concurrent use; callbacks run outside the table's lock and may call back in.
type Table[T any] struct {
	mu sync.Mutex

	opts     Options[T]
	columns  []Column[T]
	colIndex map[string]int
	data     []T
	loading  bool
	pager    *Pagination

	sorting    Slot[SortingState]
	filters    Slot[ColumnFilters]
	visibility Slot[VisibilityState]
	selection  Slot[RowSelectionState]
	expanded   Slot[ExpandedState]
	pagination Slot[PaginationState]

	search   string
	sizes    map[string]int
	debounce *Debouncer
	match    *matcher
	logger   *slog.Logger

	// outbox holds controlled-slot notifications raised under the lock.
	outbox []func()
}

// New validates the options and builds a Table.
func New[T any](opts Options[T]) (*Table[T], error) {
	colIndex, err := validateColumns(opts.Columns)
	if err != nil {
		return nil, err
	}
	if (opts.EnableRowSelection || opts.EnableExpanding) && opts.GetRowID == nil {
		return nil, ErrRowIDRequired
	}
	if opts.EnableExpanding && opts.GetSubRows == nil {
		return nil, errors.New("GetSubRows is required when expansion is enabled")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tag := opts.Language
	if tag == language.Und {
		tag = language.English
	}
	if opts.ExportFilename == "" {
		opts.ExportFilename = DefaultExportFilename
	}
	if len(opts.PageSizeOptions) == 0 {
		opts.PageSizeOptions = DefaultPageSizeOptions
	}

	seed := opts.Initial.Clone()
	t := &Table[T]{
		opts:       opts,
		columns:    slices.Clone(opts.Columns),
		colIndex:   colIndex,
		data:       opts.Data,
		loading:    opts.Loading,
		sorting:    orOwned(opts.Sorting, seed.Sorting),
		filters:    orOwned(opts.ColumnFilters, seed.Filters),
		visibility: orOwned(opts.ColumnVisibility, seed.Visibility),
		selection:  orOwned(opts.RowSelection, seed.RowSelection),
		expanded:   orOwned(opts.Expanded, seed.Expanded),
		search:     opts.GlobalFilter,
		sizes:      seed.ColumnSizes,
		debounce:   NewDebouncer(opts.SearchDebounce),
		match:      newMatcher(tag),
		logger:     logger,
	}
	if t.search == "" {
		t.search = seed.GlobalFilter
	}
	if t.sizes == nil {
		t.sizes = make(map[string]int)
	}
	if opts.Pagination != nil {
		p := *opts.Pagination
		if seed.Pagination.PageSize > 0 && p.OnChange == nil {
			p.PageIndex, p.PageSize = seed.Pagination.PageIndex, seed.Pagination.PageSize
		}
		t.setPager(p)
	}
	return t, nil
}

func orOwned[S any](s Slot[S], initial S) Slot[S] {
	if s != nil {
		return s
	}
	return Owned(initial)
}

// setPager installs a descriptor and picks the pagination ownership strategy.
// Must be called with t.mu held (or before the table is shared).
func (t *Table[T]) setPager(p Pagination) {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	prev := t.pager
	t.pager = &p

	if p.OnChange != nil {
		onChange := p.OnChange
		t.pagination = Controlled(func() PaginationState {
			return PaginationState{PageIndex: t.pager.PageIndex, PageSize: t.pager.pageSize()}
		}, onChange)
		return
	}
	if prev == nil || t.pagination == nil || t.pagination.Controlled() {
		t.pagination = Owned(PaginationState{PageIndex: p.PageIndex, PageSize: p.PageSize})
	}
}

// update runs fn under the lock, then delivers the notifications it queued.
func (t *Table[T]) update(fn func() error) error {
	t.mu.Lock()
	err := fn()
	out := t.outbox
	t.outbox = nil
	t.mu.Unlock()

	for _, notify := range out {
		notify()
	}
	return err
}

// commit stores a new slot value, deferring controlled notifications until the
// lock is released.
func commit[T, S any](t *Table[T], s Slot[S], v S) {
	if s.Controlled() {
		t.outbox = append(t.outbox, func() { s.Set(v) })
		return
	}
	s.Set(v)
}

// SetData replaces the records, as a caller does after refetching.
func (t *Table[T]) SetData(data []T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data = data
}

// SetLoading toggles the loading placeholder.
func (t *Table[T]) SetLoading(loading bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = loading
}

// SetPagination replaces the pagination descriptor. In controlled mode this is
// how the caller answers an OnChange report.
func (t *Table[T]) SetPagination(p Pagination) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setPager(p)
}

// Columns returns the column descriptors in display order.
func (t *Table[T]) Columns() []Column[T] {
	return slices.Clone(t.columns)
}

// Column returns the descriptor with the given id.
func (t *Table[T]) Column(id string) (Column[T], error) {
	i, ok := t.colIndex[id]
	if !ok {
		return Column[T]{}, fmt.Errorf("%w: %s", ErrUnknownColumn, id)
	}
	return t.columns[i], nil
}

// State returns a snapshot of every concern for persistence.
func (t *Table[T]) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := State{
		Sorting:      slices.Clone(t.sorting.Get()),
		Filters:      maps.Clone(t.filters.Get()),
		Visibility:   maps.Clone(t.visibility.Get()),
		RowSelection: maps.Clone(t.selection.Get()),
		Expanded:     maps.Clone(t.expanded.Get()),
		GlobalFilter: t.search,
		ColumnSizes:  maps.Clone(t.sizes),
	}
	if t.pager != nil {
		s.Pagination = t.pagination.Get()
	}
	return s
}

// Close drops any pending search callback. The table stays readable.
func (t *Table[T]) Close() {
	t.debounce.Stop()
}

// rowID keys a record; the data index is the fallback when GetRowID is absent.
func (t *Table[T]) rowID(index int, item T) string {
	if t.opts.GetRowID != nil {
		return t.opts.GetRowID(item)
	}
	return strconv.Itoa(index)
}

// findRow looks a row id up among the data and, when expanding, its sub rows.
func (t *Table[T]) findRow(id string) (Row[T], bool) {
	for i, item := range t.data {
		rid := t.rowID(i, item)
		if rid == id {
			return Row[T]{ID: rid, Index: i, Original: item}, true
		}
		if !t.opts.EnableExpanding {
			continue
		}
		if sub, ok := t.opts.GetSubRows(item); ok {
			for _, s := range sub {
				if t.rowID(-1, s) == id {
					return Row[T]{ID: id, Index: -1, Depth: 1, ParentID: rid, Original: s}, true
				}
			}
		}
	}
	return Row[T]{}, false
}

func (t *Table[T]) expandable(item T) bool {
	if !t.opts.EnableExpanding {
		return false
	}
	_, ok := t.opts.GetSubRows(item)
	return ok
}
