package datatable

import (
	"fmt"
	"maps"
	"slices"
)

// ToggleRowSelected flips one row's selection.
func (t *Table[T]) ToggleRowSelected(rowID string) error {
	return t.update(func() error {
		if err := t.selectableRow(rowID); err != nil {
			return err
		}
		sel := t.selection.Get()
		commit(t, t.selection, setFlag(sel, rowID, !sel[rowID]))
		return nil
	})
}

// SetRowSelected selects or deselects one row.
func (t *Table[T]) SetRowSelected(rowID string, selected bool) error {
	return t.update(func() error {
		if err := t.selectableRow(rowID); err != nil {
			return err
		}
		commit(t, t.selection, setFlag(t.selection.Get(), rowID, selected))
		return nil
	})
}

func (t *Table[T]) selectableRow(rowID string) error {
	if !t.opts.EnableRowSelection {
		return fmt.Errorf("%w: row selection", ErrFeatureDisabled)
	}
	if _, ok := t.findRow(rowID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRow, rowID)
	}
	return nil
}

// ToggleAllPageRowsSelected sets every row on the current page to selected.
// Rows on other pages keep their state.
func (t *Table[T]) ToggleAllPageRowsSelected(selected bool) error {
	return t.update(func() error {
		if !t.opts.EnableRowSelection {
			return fmt.Errorf("%w: row selection", ErrFeatureDisabled)
		}
		rows, _ := t.pageRows()
		next := maps.Clone(t.selection.Get())
		if next == nil {
			next = make(RowSelectionState)
		}
		for _, r := range rows {
			if selected {
				next[r.ID] = true
			} else {
				delete(next, r.ID)
			}
		}
		commit(t, t.selection, next)
		return nil
	})
}

// ClearSelection deselects every row.
func (t *Table[T]) ClearSelection() {
	_ = t.update(func() error {
		if t.opts.EnableRowSelection {
			commit(t, t.selection, RowSelectionState{})
		}
		return nil
	})
}

// SelectedRows returns the selected records present in the data, in data order.
func (t *Table[T]) SelectedRows() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selectedRows()
}

func (t *Table[T]) selectedRows() []T {
	sel := t.selection.Get()
	if !t.opts.EnableRowSelection || len(sel) == 0 {
		return nil
	}
	var out []T
	for i, item := range t.data {
		if sel[t.rowID(i, item)] {
			out = append(out, item)
		}
	}
	return out
}

// selectedCount counts selected rows. When the data holds one server page,
// rows selected on other pages are counted from the state.
func (t *Table[T]) selectedCount(sel RowSelectionState) int {
	if !t.serverPaged() {
		return len(t.selectedRows())
	}
	n := 0
	for _, on := range sel {
		if on {
			n++
		}
	}
	return n
}

// SelectedIDs returns the ids of the selected rows in sorted order, including
// rows that are not in the current data.
func (t *Table[T]) SelectedIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.opts.EnableRowSelection {
		return nil
	}
	var ids []string
	for id, on := range t.selection.Get() {
		if on {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// IsRowSelected reports a row's selection.
func (t *Table[T]) IsRowSelected(rowID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selection.Get()[rowID]
}

// ToggleExpanded flips one expandable row.
func (t *Table[T]) ToggleExpanded(rowID string) error {
	return t.update(func() error {
		if !t.opts.EnableExpanding {
			return fmt.Errorf("%w: row expansion", ErrFeatureDisabled)
		}
		row, ok := t.findRow(rowID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownRow, rowID)
		}
		if !t.expandable(row.Original) {
			return fmt.Errorf("%w: %s", ErrRowNotExpandable, rowID)
		}
		exp := t.expanded.Get()
		commit(t, t.expanded, setFlag(exp, rowID, !exp[rowID]))
		return nil
	})
}

// IsExpanded reports a row's expansion.
func (t *Table[T]) IsExpanded(rowID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expanded.Get()[rowID]
}
