package datatable

import (
	"fmt"
	"maps"
	"slices"
)

// ToggleSort advances a column through unsorted → ascending → descending →
// unsorted. In single-column mode sorting another column replaces the previous
// sort; with MultiSort columns stack in click order.
func (t *Table[T]) ToggleSort(columnID string) error {
	return t.update(func() error {
		col, err := t.Column(columnID)
		if err != nil {
			return err
		}
		if !col.Sortable {
			return fmt.Errorf("%w: %s", ErrColumnNotSortable, columnID)
		}

		current := t.sorting.Get()
		dir, pos := current.Direction(columnID)
		next := nextSorting(current, columnID, dir, pos, t.opts.MultiSort)

		t.logger.Debug("sorting changed", "column", columnID, "from", dir.String(), "sorting", next)
		commit(t, t.sorting, next)
		return nil
	})
}

func nextSorting(current SortingState, id string, dir SortDirection, pos int, multi bool) SortingState {
	if !multi {
		switch dir {
		case SortNone:
			return SortingState{{ColumnID: id}}
		case SortAscending:
			return SortingState{{ColumnID: id, Desc: true}}
		default:
			return SortingState{}
		}
	}

	next := slices.Clone(current)
	switch dir {
	case SortNone:
		return append(next, SortDirective{ColumnID: id})
	case SortAscending:
		next[pos].Desc = true
		return next
	default:
		return slices.Delete(next, pos, pos+1)
	}
}

// SetSorting replaces the sorting directives.
func (t *Table[T]) SetSorting(sorting SortingState) error {
	return t.update(func() error {
		for _, d := range sorting {
			col, err := t.Column(d.ColumnID)
			if err != nil {
				return err
			}
			if !col.Sortable {
				return fmt.Errorf("%w: %s", ErrColumnNotSortable, d.ColumnID)
			}
		}
		if !t.opts.MultiSort && len(sorting) > 1 {
			sorting = sorting[:1]
		}
		commit(t, t.sorting, slices.Clone(sorting))
		return nil
	})
}

// SetColumnFilter sets or, for a zero value, clears one column's filter.
func (t *Table[T]) SetColumnFilter(columnID string, value FilterValue) error {
	return t.update(func() error {
		col, err := t.Column(columnID)
		if err != nil {
			return err
		}
		if col.Filter == FilterNone {
			return fmt.Errorf("%w: %s", ErrColumnNotFilterable, columnID)
		}

		next := maps.Clone(t.filters.Get())
		if next == nil {
			next = make(ColumnFilters)
		}
		if value.IsZero() {
			delete(next, columnID)
		} else {
			next[columnID] = value
		}
		commit(t, t.filters, next)
		t.resetOwnedPage()
		return nil
	})
}

// ClearColumnFilters removes every column filter.
func (t *Table[T]) ClearColumnFilters() {
	_ = t.update(func() error {
		commit(t, t.filters, ColumnFilters{})
		t.resetOwnedPage()
		return nil
	})
}

// SetGlobalFilter records a search input edit. Local filtering sees the new
// value immediately; OnGlobalFilterChange receives it once edits settle for the
// debounce window.
func (t *Table[T]) SetGlobalFilter(value string) {
	var notify func(string)
	t.mu.Lock()
	t.search = value
	t.resetOwnedPage()
	notify = t.opts.OnGlobalFilterChange
	t.mu.Unlock()

	if notify != nil {
		t.debounce.Do(func() { notify(value) })
	}
}

// SyncGlobalFilter sets the search input from the caller's value without
// reporting it back, as when a controlled caller resets the search.
func (t *Table[T]) SyncGlobalFilter(value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.search = value
}

// GlobalFilter returns the current search input.
func (t *Table[T]) GlobalFilter() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.search
}

// resetOwnedPage returns a table-held cursor to the first page after the row set
// changed. Controlled cursors are the caller's to move.
func (t *Table[T]) resetOwnedPage() {
	if t.pager == nil || t.pagination.Controlled() {
		return
	}
	state := t.pagination.Get()
	if state.PageIndex != 0 {
		state.PageIndex = 0
		t.pagination.Set(state)
	}
}

// ToggleColumnVisibility hides a visible column or shows a hidden one.
func (t *Table[T]) ToggleColumnVisibility(columnID string) error {
	return t.update(func() error {
		col, err := t.hideableColumn(columnID)
		if err != nil {
			return err
		}
		return t.setVisible(col.ID, !t.isVisible(col.ID))
	})
}

// SetColumnVisible shows or hides a column.
func (t *Table[T]) SetColumnVisible(columnID string, visible bool) error {
	return t.update(func() error {
		col, err := t.hideableColumn(columnID)
		if err != nil {
			return err
		}
		return t.setVisible(col.ID, visible)
	})
}

func (t *Table[T]) hideableColumn(columnID string) (Column[T], error) {
	if !t.opts.EnableColumnVisibility {
		return Column[T]{}, fmt.Errorf("%w: column visibility", ErrFeatureDisabled)
	}
	col, err := t.Column(columnID)
	if err != nil {
		return col, err
	}
	if col.DisableHiding {
		return col, fmt.Errorf("%w: %s", ErrColumnNotHideable, columnID)
	}
	return col, nil
}

func (t *Table[T]) isVisible(columnID string) bool {
	visible, ok := t.visibility.Get()[columnID]
	return !ok || visible
}

func (t *Table[T]) setVisible(columnID string, visible bool) error {
	next := maps.Clone(t.visibility.Get())
	if next == nil {
		next = make(VisibilityState)
	}
	if visible {
		delete(next, columnID)
	} else {
		next[columnID] = false
	}
	commit(t, t.visibility, next)
	return nil
}

// visibleColumns returns the data columns currently shown, in order.
func (t *Table[T]) visibleColumns() []Column[T] {
	out := make([]Column[T], 0, len(t.columns))
	for _, c := range t.columns {
		if t.isVisible(c.ID) {
			out = append(out, c)
		}
	}
	return out
}

// ResizeColumn sets a column's width within its MinSize and MaxSize bounds and
// returns the width applied.
func (t *Table[T]) ResizeColumn(columnID string, width int) (int, error) {
	var applied int
	err := t.update(func() error {
		if !t.opts.EnableColumnResizing {
			return fmt.Errorf("%w: column resizing", ErrFeatureDisabled)
		}
		col, err := t.Column(columnID)
		if err != nil {
			return err
		}
		applied = max(width, col.MinSize, 1)
		if col.MaxSize > 0 {
			applied = min(applied, col.MaxSize)
		}
		t.sizes[columnID] = applied
		return nil
	})
	return applied, err
}

// ResetColumnSizes drops every resize, restoring descriptor sizes.
func (t *Table[T]) ResetColumnSizes() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.sizes)
}

func (t *Table[T]) columnWidth(c Column[T]) int {
	if w, ok := t.sizes[c.ID]; ok {
		return w
	}
	return c.Size
}
