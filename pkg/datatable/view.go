package datatable

import (
	"maps"
	"slices"
)

// Synthetic column ids used for the leading and trailing columns.
const (
	SelectColumnID  = "__select"
	ExpandColumnID  = "__expand"
	ActionsColumnID = "__actions"
)

// CellKind tells renderers what a header or cell holds.
type CellKind int

const (
	CellData CellKind = iota
	CellSelect
	CellExpand
	CellActions
)

// BodyKind is the state of the table body.
type BodyKind int

const (
	// BodyRows renders Rows.
	BodyRows BodyKind = iota
	// BodyLoading renders one placeholder row spanning ColSpan columns.
	BodyLoading
	// BodyEmpty renders one "no data" row spanning ColSpan columns.
	BodyEmpty
)

// Mark is the tri-state of the select-all checkbox.
type Mark int

const (
	MarkNone Mark = iota
	MarkSome
	MarkAll
)

// HeaderCell is one header in display order.
type HeaderCell struct {
	ColumnID      string
	Kind          CellKind
	Label         string
	Sortable      bool
	Sort          SortDirection
	SortIndex     int // position among active sorts, -1 when unsorted
	Filter        FilterKind
	FilterOptions []FilterOption
	FilterValue   FilterValue
	Width         int
	Resizable     bool
	Meta          map[string]any
}

// ViewCell is one rendered cell.
type ViewCell struct {
	ColumnID string
	Kind     CellKind
	Text     string
	Value    any
}

// ViewRow is one rendered row.
type ViewRow struct {
	ID           string
	Depth        int
	Cells        []ViewCell
	Selected     bool
	Expandable   bool
	Expanded     bool
	SubComponent string
	Actions      []ActionButton
	ActionMode   ActionPresentation
}

// ColumnToggle is one entry of the column visibility menu.
type ColumnToggle struct {
	ColumnID string
	Label    string
	Visible  bool
	CanHide  bool
}

// View is everything a renderer needs to draw the table once.
type View struct {
	Headers []HeaderCell
	Body    BodyKind
	Rows    []ViewRow
	ColSpan int

	// Footer is nil without pagination.
	Footer *Footer

	Searchable bool
	Search     string

	// ColumnToggles is empty unless column visibility is enabled.
	ColumnToggles []ColumnToggle

	Exportable     bool
	ExportFilename string

	SelectionEnabled bool
	SelectedCount    int
	PageSelection    Mark

	Sorting SortingState
	Filters ColumnFilters
}

// View computes the render model from the data and current state.
func (t *Table[T]) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()

	visible := t.visibleColumns()
	v := View{
		Headers:          t.headers(visible),
		Searchable:       t.opts.Searchable,
		Search:           t.search,
		Exportable:       t.opts.EnableExport,
		ExportFilename:   t.opts.ExportFilename,
		SelectionEnabled: t.opts.EnableRowSelection,
		Sorting:          slices.Clone(t.sorting.Get()),
		Filters:          maps.Clone(t.filters.Get()),
	}
	v.ColSpan = len(v.Headers)

	if t.opts.EnableColumnVisibility {
		for _, c := range t.columns {
			v.ColumnToggles = append(v.ColumnToggles, ColumnToggle{
				ColumnID: c.ID,
				Label:    c.Label(),
				Visible:  t.isVisible(c.ID),
				CanHide:  !c.DisableHiding,
			})
		}
	}

	rows, total := t.pageRows()
	if t.pager != nil {
		state := t.pagination.Get()
		if state.PageSize <= 0 {
			state.PageSize = DefaultPageSize
		}
		v.Footer = newFooter(state, total, t.opts.PageSizeOptions)
	}

	sel := t.selection.Get()
	if t.opts.EnableRowSelection {
		v.SelectedCount = t.selectedCount(sel)
		v.PageSelection = pageMark(rows, sel)
	}

	switch {
	case t.loading:
		v.Body = BodyLoading
	case len(rows) == 0:
		v.Body = BodyEmpty
	default:
		v.Body = BodyRows
		exp := t.expanded.Get()
		for _, r := range rows {
			v.Rows = append(v.Rows, t.viewRows(r, visible, sel, exp)...)
		}
	}
	return v
}

func (t *Table[T]) headers(visible []Column[T]) []HeaderCell {
	var hs []HeaderCell
	if t.opts.EnableRowSelection {
		hs = append(hs, HeaderCell{ColumnID: SelectColumnID, Kind: CellSelect, SortIndex: -1})
	}
	if t.opts.EnableExpanding {
		hs = append(hs, HeaderCell{ColumnID: ExpandColumnID, Kind: CellExpand, SortIndex: -1})
	}

	sorting := t.sorting.Get()
	filters := t.filters.Get()
	for _, c := range visible {
		dir, pos := sorting.Direction(c.ID)
		hs = append(hs, HeaderCell{
			ColumnID:      c.ID,
			Kind:          CellData,
			Label:         c.Label(),
			Sortable:      c.Sortable,
			Sort:          dir,
			SortIndex:     pos,
			Filter:        c.Filter,
			FilterOptions: c.FilterOptions,
			FilterValue:   filters[c.ID],
			Width:         t.columnWidth(c),
			Resizable:     t.opts.EnableColumnResizing,
			Meta:          c.Meta,
		})
	}

	if len(t.opts.Actions) > 0 {
		hs = append(hs, HeaderCell{ColumnID: ActionsColumnID, Kind: CellActions, SortIndex: -1})
	}
	return hs
}

// viewRows renders a row plus, when it is expanded without a sub component, its
// sub rows.
func (t *Table[T]) viewRows(r Row[T], visible []Column[T], sel RowSelectionState, exp ExpandedState) []ViewRow {
	vr := ViewRow{
		ID:         r.ID,
		Depth:      r.Depth,
		Selected:   sel[r.ID],
		Expandable: t.expandable(r.Original),
	}
	vr.Expanded = vr.Expandable && exp[r.ID]

	if t.opts.EnableRowSelection {
		vr.Cells = append(vr.Cells, ViewCell{ColumnID: SelectColumnID, Kind: CellSelect})
	}
	if t.opts.EnableExpanding {
		vr.Cells = append(vr.Cells, ViewCell{ColumnID: ExpandColumnID, Kind: CellExpand})
	}
	for _, c := range visible {
		vr.Cells = append(vr.Cells, ViewCell{
			ColumnID: c.ID,
			Kind:     CellData,
			Text:     c.Render(r.Original),
			Value:    c.Value(r.Original),
		})
	}
	if len(t.opts.Actions) > 0 {
		vr.Actions, vr.ActionMode = visibleActions(t.opts.Actions, r.Original)
		vr.Cells = append(vr.Cells, ViewCell{ColumnID: ActionsColumnID, Kind: CellActions})
	}

	out := []ViewRow{vr}
	if !vr.Expanded {
		return out
	}
	if t.opts.RenderSubComponent != nil {
		out[0].SubComponent = t.opts.RenderSubComponent(r.Original)
		return out
	}
	sub, _ := t.opts.GetSubRows(r.Original)
	for _, s := range sub {
		child := Row[T]{ID: t.rowID(-1, s), Index: -1, Depth: r.Depth + 1, ParentID: r.ID, Original: s}
		out = append(out, t.viewRows(child, visible, sel, exp)...)
	}
	return out
}

func pageMark[T any](rows []Row[T], sel RowSelectionState) Mark {
	if len(rows) == 0 {
		return MarkNone
	}
	n := 0
	for _, r := range rows {
		if sel[r.ID] {
			n++
		}
	}
	switch n {
	case 0:
		return MarkNone
	case len(rows):
		return MarkAll
	default:
		return MarkSome
	}
}
