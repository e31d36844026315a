package datatable

import (
	"slices"
	"strings"
)

// coreRows wraps every record in a Row.
func (t *Table[T]) coreRows() []Row[T] {
	rows := make([]Row[T], len(t.data))
	for i, item := range t.data {
		rows[i] = Row[T]{ID: t.rowID(i, item), Index: i, Original: item}
	}
	return rows
}

// filterRows applies column filters, then the global search.
func (t *Table[T]) filterRows(rows []Row[T]) []Row[T] {
	if t.opts.ManualFiltering {
		return rows
	}
	filters := t.filters.Get()
	search := strings.TrimSpace(t.search)
	if len(filters) == 0 && search == "" {
		return rows
	}

	out := rows[:0:0]
	for _, r := range rows {
		if t.matchColumnFilters(r.Original, filters) && t.matchSearch(r.Original, search) {
			out = append(out, r)
		}
	}
	return out
}

func (t *Table[T]) matchColumnFilters(item T, filters ColumnFilters) bool {
	for id, f := range filters {
		i, ok := t.colIndex[id]
		if !ok {
			continue
		}
		col := t.columns[i]
		if col.Filter == FilterNone {
			continue
		}
		v := col.Value(item)
		if col.Accessor == nil {
			v = col.Render(item)
		}
		if !t.match.matchFilter(col.Filter, v, f) {
			return false
		}
	}
	return true
}

// matchSearch reports whether any column's display text contains the search.
func (t *Table[T]) matchSearch(item T, search string) bool {
	if search == "" {
		return true
	}
	for _, col := range t.columns {
		if t.match.contains(col.Render(item), search) {
			return true
		}
	}
	return false
}

// sortRows orders rows by the sorting directives. The sort is stable, so equal
// keys keep their data order and earlier directives take precedence.
func (t *Table[T]) sortRows(rows []Row[T]) []Row[T] {
	sorting := t.sorting.Get()
	if t.opts.ManualSorting || len(sorting) == 0 {
		return rows
	}

	type key struct {
		col  Column[T]
		desc bool
	}
	keys := make([]key, 0, len(sorting))
	for _, d := range sorting {
		if i, ok := t.colIndex[d.ColumnID]; ok {
			keys = append(keys, key{col: t.columns[i], desc: d.Desc})
		}
	}
	if len(keys) == 0 {
		return rows
	}

	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b Row[T]) int {
		for _, k := range keys {
			c := t.match.compare(sortValue(k.col, a.Original), sortValue(k.col, b.Original))
			if k.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return sorted
}

func sortValue[T any](col Column[T], item T) any {
	if col.Accessor != nil {
		return col.Accessor(item)
	}
	return col.Render(item)
}

// prePaginationRows runs the client-side pipeline up to, not including, paging.
func (t *Table[T]) prePaginationRows() []Row[T] {
	return t.sortRows(t.filterRows(t.coreRows()))
}

// pageRows returns the rows of the current page and the total row count.
func (t *Table[T]) pageRows() ([]Row[T], int) {
	rows := t.prePaginationRows()
	if t.pager == nil {
		return rows, len(rows)
	}
	if t.serverPaged() {
		return rows, t.pager.Total
	}

	state := t.pagination.Get()
	size := state.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	start := state.PageIndex * size
	if start < 0 || start >= len(rows) {
		return nil, len(rows)
	}
	end := min(start+size, len(rows))
	return rows[start:end], len(rows)
}

// serverPaged reports whether Data holds a single page of a larger result.
// A pager Total above the row count implies it even without ManualPagination.
func (t *Table[T]) serverPaged() bool {
	if t.pager == nil {
		return false
	}
	return t.opts.ManualPagination || t.pager.Total > len(t.data)
}

// totalRows is the count pagination is computed against.
func (t *Table[T]) totalRows() int {
	if t.serverPaged() {
		return t.pager.Total
	}
	return len(t.prePaginationRows())
}

// RowModel returns the rows the current page shows, in display order.
func (t *Table[T]) RowModel() []Row[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows, _ := t.pageRows()
	return slices.Clone(rows)
}

// FilteredRowCount returns the row count after filtering, before paging.
func (t *Table[T]) FilteredRowCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalRows()
}

// FilteredRows returns every row that passes filtering, in display order,
// across all pages.
func (t *Table[T]) FilteredRows() []Row[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.prePaginationRows())
}
