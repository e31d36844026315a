package datatable

import "fmt"

// DefaultPageSize is used when a Pagination descriptor has no page size.
const DefaultPageSize = 10

// DefaultPageSizeOptions are offered by the page size selector.
var DefaultPageSizeOptions = []int{10, 20, 30, 50, 100}

// Pagination describes the page cursor handed in by the caller.
//
// With OnChange set the cursor is controlled: navigation reports the requested
// state and the caller answers with SetPagination. Without it the table keeps the
// cursor itself, starting from PageIndex and PageSize.
type Pagination struct {
	PageIndex int
	PageSize  int

	// Total is the row count across all pages. It is authoritative when the table
	// paginates manually and may exceed len(data); otherwise the filtered row
	// count is used.
	Total int

	OnChange func(PaginationState)
}

// PageCount returns ceil(total/pageSize), never less than zero.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// LastPageIndex returns the highest valid page index; zero for empty tables.
func LastPageIndex(total, pageSize int) int {
	if n := PageCount(total, pageSize); n > 0 {
		return n - 1
	}
	return 0
}

// CheckPage validates a page index against a total. Callers use it before
// serving a page; the table itself never corrects an out-of-range index.
func CheckPage(pageIndex, pageSize, total int) error {
	if pageSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}
	if last := LastPageIndex(total, pageSize); pageIndex < 0 || pageIndex > last {
		return fmt.Errorf("%w: page %d, last page %d", ErrPageOutOfRange, pageIndex, last)
	}
	return nil
}

// ClampPage moves a page index into [0, LastPageIndex].
func ClampPage(pageIndex, pageSize, total int) int {
	if pageIndex < 0 {
		return 0
	}
	if last := LastPageIndex(total, pageSize); pageIndex > last {
		return last
	}
	return pageIndex
}

// Check validates the descriptor's own cursor.
func (p Pagination) Check() error {
	return CheckPage(p.PageIndex, p.pageSize(), p.Total)
}

func (p Pagination) pageSize() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	return p.PageSize
}

// Footer is the render model of the pagination controls.
type Footer struct {
	PageIndex int
	PageSize  int
	PageCount int
	Total     int

	// From and To are the 1-based row range shown; both zero for empty tables.
	From int
	To   int

	CanPrevious     bool
	CanNext         bool
	PageSizeOptions []int
}

func newFooter(state PaginationState, total int, sizes []int) *Footer {
	f := &Footer{
		PageIndex:       state.PageIndex,
		PageSize:        state.PageSize,
		PageCount:       PageCount(total, state.PageSize),
		Total:           total,
		PageSizeOptions: sizes,
	}
	if total > 0 {
		f.From = state.PageIndex*state.PageSize + 1
		f.To = min(f.From+state.PageSize-1, total)
		if f.From > total {
			f.From, f.To = 0, 0
		}
	}
	f.CanPrevious = state.PageIndex > 0
	f.CanNext = state.PageIndex < f.PageCount-1
	return f
}

// Pagination returns the current cursor and whether the table paginates.
func (t *Table[T]) Pagination() (PaginationState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pager == nil {
		return PaginationState{}, false
	}
	return t.pagination.Get(), true
}

// SetPageIndex moves to a page. Indexes outside the page range are rejected.
func (t *Table[T]) SetPageIndex(pageIndex int) error {
	return t.navigate(func(state PaginationState, total int) (PaginationState, error) {
		if err := CheckPage(pageIndex, state.PageSize, total); err != nil {
			return state, err
		}
		state.PageIndex = pageIndex
		return state, nil
	})
}

// FirstPage moves to page zero.
func (t *Table[T]) FirstPage() error {
	return t.navigate(func(state PaginationState, _ int) (PaginationState, error) {
		state.PageIndex = 0
		return state, nil
	})
}

// PreviousPage moves back one page; it is a no-op on the first page.
func (t *Table[T]) PreviousPage() error {
	return t.navigate(func(state PaginationState, _ int) (PaginationState, error) {
		if state.PageIndex > 0 {
			state.PageIndex--
		}
		return state, nil
	})
}

// NextPage moves forward one page; it is a no-op on the last page.
func (t *Table[T]) NextPage() error {
	return t.navigate(func(state PaginationState, total int) (PaginationState, error) {
		if state.PageIndex < LastPageIndex(total, state.PageSize) {
			state.PageIndex++
		}
		return state, nil
	})
}

// LastPage moves to the last page.
func (t *Table[T]) LastPage() error {
	return t.navigate(func(state PaginationState, total int) (PaginationState, error) {
		state.PageIndex = LastPageIndex(total, state.PageSize)
		return state, nil
	})
}

// SetPageSize changes the page size and always returns to page zero, since the
// old index may lie past the end of the resized range.
func (t *Table[T]) SetPageSize(pageSize int) error {
	return t.navigate(func(_ PaginationState, _ int) (PaginationState, error) {
		if pageSize <= 0 {
			return PaginationState{}, fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
		}
		return PaginationState{PageIndex: 0, PageSize: pageSize}, nil
	})
}

func (t *Table[T]) navigate(step func(PaginationState, int) (PaginationState, error)) error {
	return t.update(func() error {
		if t.pager == nil {
			return ErrNoPagination
		}
		state := t.pagination.Get()
		if state.PageSize <= 0 {
			state.PageSize = DefaultPageSize
		}
		next, err := step(state, t.totalRows())
		if err != nil {
			return err
		}
		t.logger.Debug("pagination changed", "page_index", next.PageIndex, "page_size", next.PageSize)
		commit(t, t.pagination, next)
		return nil
	})
}
