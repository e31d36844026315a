package datatable

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	name := Column[item]{ID: "name", Accessor: func(it item) any { return it.Name }}

	tests := []struct {
		name    string
		opts    Options[item]
		wantErr error
		errMsg  string
	}{
		{
			name:    "no columns",
			opts:    Options[item]{},
			wantErr: ErrNoColumns,
		},
		{
			name:    "duplicate id",
			opts:    Options[item]{Columns: []Column[item]{name, name}},
			wantErr: ErrDuplicateColumn,
		},
		{
			name:    "neither accessor nor cell",
			opts:    Options[item]{Columns: []Column[item]{{ID: "empty", Header: "Empty"}}},
			wantErr: ErrColumnNotRenderable,
		},
		{
			name:   "empty id",
			opts:   Options[item]{Columns: []Column[item]{{Accessor: name.Accessor}}},
			errMsg: "empty id",
		},
		{
			name: "select filter without options",
			opts: Options[item]{Columns: []Column[item]{
				{ID: "status", Accessor: func(it item) any { return it.Status }, Filter: FilterSelect},
			}},
			errMsg: "select filter needs options",
		},
		{
			name:    "selection without row ids",
			opts:    Options[item]{Columns: []Column[item]{name}, EnableRowSelection: true},
			wantErr: ErrRowIDRequired,
		},
		{
			name:    "expansion without row ids",
			opts:    Options[item]{Columns: []Column[item]{name}, EnableExpanding: true},
			wantErr: ErrRowIDRequired,
		},
		{
			name:   "expansion without sub rows",
			opts:   Options[item]{Columns: []Column[item]{name}, EnableExpanding: true, GetRowID: itemID},
			errMsg: "GetSubRows is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := New(tt.opts)
			require.Error(t, err)
			assert.Nil(t, tbl)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestColumn_Label(t *testing.T) {
	tests := []struct {
		name string
		col  Column[item]
		want string
	}{
		{"header func wins", Column[item]{ID: "a", Header: "Plain", HeaderFunc: func() string { return "Computed" }}, "Computed"},
		{"header", Column[item]{ID: "a", Header: "Plain", AccessorKey: "unit_price"}, "Plain"},
		{"accessor key", Column[item]{ID: "a", AccessorKey: "unit_price"}, "Unit Price"},
		{"id", Column[item]{ID: "a"}, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.col.Label())
		})
	}
}

func TestParseFilterKind(t *testing.T) {
	for _, k := range []FilterKind{FilterNone, FilterText, FilterSelect, FilterDate, FilterNumber} {
		got, err := ParseFilterKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseFilterKind("regex")
	assert.Error(t, err)
}

// Clicking a header cycles unsorted, ascending, descending, unsorted; a second
// column replaces the first in single-column mode.
func TestToggleSort_Cycle(t *testing.T) {
	tbl := newTable(t, Options[item]{Data: items(5)})

	require.NoError(t, tbl.ToggleSort("name"))
	assert.Equal(t, SortingState{{ColumnID: "name"}}, tbl.State().Sorting)
	assert.Equal(t, []string{"p01", "p02", "p03", "p04", "p05"}, rowIDs(tbl.RowModel()))

	require.NoError(t, tbl.ToggleSort("name"))
	assert.Equal(t, SortingState{{ColumnID: "name", Desc: true}}, tbl.State().Sorting)
	assert.Equal(t, []string{"p05", "p04", "p03", "p02", "p01"}, rowIDs(tbl.RowModel()))

	require.NoError(t, tbl.ToggleSort("name"))
	assert.Empty(t, tbl.State().Sorting)
	assert.Equal(t, []string{"p01", "p02", "p03", "p04", "p05"}, rowIDs(tbl.RowModel()))

	require.NoError(t, tbl.ToggleSort("name"))
	require.NoError(t, tbl.ToggleSort("price"))
	assert.Equal(t, SortingState{{ColumnID: "price"}}, tbl.State().Sorting)

	v := tbl.View()
	for _, h := range v.Headers {
		switch h.ColumnID {
		case "price":
			assert.Equal(t, SortAscending, h.Sort)
			assert.Equal(t, 0, h.SortIndex)
		default:
			assert.Equal(t, SortNone, h.Sort, h.ColumnID)
		}
	}
}

func TestToggleSort_Errors(t *testing.T) {
	tbl := newTable(t, Options[item]{Data: items(2)})

	assert.ErrorIs(t, tbl.ToggleSort("missing"), ErrUnknownColumn)
	assert.ErrorIs(t, tbl.ToggleSort("status"), ErrColumnNotSortable)
	assert.ErrorIs(t, tbl.SetSorting(SortingState{{ColumnID: "status"}}), ErrColumnNotSortable)
}

func TestToggleSort_MultiSortIsStable(t *testing.T) {
	data := []item{
		{ID: "a", Name: "Widget", Price: 3},
		{ID: "b", Name: "Gadget", Price: 3},
		{ID: "c", Name: "Widget", Price: 1},
		{ID: "d", Name: "Gadget", Price: 1},
		{ID: "e", Name: "Widget", Price: 3},
	}
	tbl := newTable(t, Options[item]{Data: data, MultiSort: true})

	require.NoError(t, tbl.ToggleSort("price"))
	require.NoError(t, tbl.ToggleSort("name"))
	assert.Equal(t, SortingState{{ColumnID: "price"}, {ColumnID: "name"}}, tbl.State().Sorting)
	assert.Equal(t, []string{"d", "c", "b", "a", "e"}, rowIDs(tbl.RowModel()))

	// A second click flips the column in place.
	require.NoError(t, tbl.ToggleSort("price"))
	assert.Equal(t, SortingState{{ColumnID: "price", Desc: true}, {ColumnID: "name"}}, tbl.State().Sorting)
	assert.Equal(t, []string{"b", "a", "e", "d", "c"}, rowIDs(tbl.RowModel()))

	// A third click drops it and the remaining sort moves up.
	require.NoError(t, tbl.ToggleSort("price"))
	assert.Equal(t, SortingState{{ColumnID: "name"}}, tbl.State().Sorting)
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, rowIDs(tbl.RowModel()))
}

func TestSort_NumericCollation(t *testing.T) {
	data := []item{{ID: "a", Name: "Item 10"}, {ID: "b", Name: "item 1"}, {ID: "c", Name: "Item 2"}}
	tbl := newTable(t, Options[item]{Data: data})

	require.NoError(t, tbl.ToggleSort("name"))
	assert.Equal(t, []string{"b", "c", "a"}, rowIDs(tbl.RowModel()))
}

func TestManualSorting_ReportsButKeepsOrder(t *testing.T) {
	var reported []SortingState
	var sorting SortingState
	tbl := newTable(t, Options[item]{
		Data:          items(3),
		ManualSorting: true,
		Sorting: Controlled(func() SortingState { return sorting }, func(s SortingState) {
			reported = append(reported, s)
		}),
	})

	require.NoError(t, tbl.ToggleSort("price"))
	require.Len(t, reported, 1)
	assert.Equal(t, SortingState{{ColumnID: "price"}}, reported[0])
	// The caller has not accepted the change yet.
	assert.Empty(t, tbl.State().Sorting)

	sorting = reported[0]
	require.NoError(t, tbl.ToggleSort("price"))
	assert.Equal(t, SortingState{{ColumnID: "price", Desc: true}}, reported[1])
	assert.Equal(t, []string{"p01", "p02", "p03"}, rowIDs(tbl.RowModel()))
}

func TestColumnFilters(t *testing.T) {
	tests := []struct {
		name   string
		column string
		value  FilterValue
		want   []string
	}{
		{"text is case insensitive", "name", TextFilter("ITEM 0"), []string{"p01", "p02", "p03", "p04", "p05", "p06", "p07", "p08", "p09"}},
		{"select", "status", SelectFilter("active"), []string{"p02", "p04", "p06", "p08", "p10", "p12"}},
		{"number range", "price", NumberFilter(ptr(3.0), ptr(5.0)), []string{"p03", "p04", "p05"}},
		{"number lower bound", "price", NumberFilter(ptr(11.0), nil), []string{"p11", "p12"}},
		{"date range", "created", DateFilter(baseTime.AddDate(0, 0, 1), baseTime.AddDate(0, 0, 2)), []string{"p02", "p03"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := newTable(t, Options[item]{Data: items(12)})
			require.NoError(t, tbl.SetColumnFilter(tt.column, tt.value))
			assert.Equal(t, tt.want, rowIDs(tbl.RowModel()))
			assert.Equal(t, len(tt.want), tbl.FilteredRowCount())

			require.NoError(t, tbl.SetColumnFilter(tt.column, FilterValue{}))
			assert.Len(t, tbl.RowModel(), 12)
		})
	}
}

func TestColumnFilters_Errors(t *testing.T) {
	tbl := newTable(t, Options[item]{Data: items(2)})

	assert.ErrorIs(t, tbl.SetColumnFilter("id", TextFilter("x")), ErrColumnNotFilterable)
	assert.ErrorIs(t, tbl.SetColumnFilter("nope", TextFilter("x")), ErrUnknownColumn)
}

func TestColumnFilters_CombineAndClear(t *testing.T) {
	tbl := newTable(t, Options[item]{Data: items(12)})

	require.NoError(t, tbl.SetColumnFilter("status", SelectFilter("draft")))
	require.NoError(t, tbl.SetColumnFilter("price", NumberFilter(nil, ptr(5.0))))
	assert.Equal(t, []string{"p01", "p03", "p05"}, rowIDs(tbl.RowModel()))

	tbl.ClearColumnFilters()
	assert.Empty(t, tbl.State().Filters)
	assert.Len(t, tbl.RowModel(), 12)
}

func TestManualFiltering_TrustsData(t *testing.T) {
	tbl := newTable(t, Options[item]{Data: items(4), ManualFiltering: true})

	require.NoError(t, tbl.SetColumnFilter("name", TextFilter("nothing matches")))
	tbl.SetGlobalFilter("nothing matches")
	assert.Len(t, tbl.RowModel(), 4)
	assert.Equal(t, "nothing matches", tbl.State().Filters["name"].Text)
}

func TestGlobalFilter_AppliesImmediately(t *testing.T) {
	tbl := newTable(t, Options[item]{Data: items(12), Searchable: true})

	tbl.SetGlobalFilter("item 03")
	assert.Equal(t, []string{"p03"}, rowIDs(tbl.RowModel()))

	// Cell-rendered columns take part in the search.
	tbl.SetGlobalFilter("NOTE FOR P11")
	assert.Equal(t, []string{"p11"}, rowIDs(tbl.RowModel()))

	v := tbl.View()
	assert.True(t, v.Searchable)
	assert.Equal(t, "NOTE FOR P11", v.Search)

	tbl.SetGlobalFilter("  ")
	assert.Len(t, tbl.RowModel(), 12)
}

func TestFilterChange_ResetsOwnedPage(t *testing.T) {
	tbl := newTable(t, Options[item]{Data: items(47), Pagination: &Pagination{PageSize: 10}})

	require.NoError(t, tbl.SetPageIndex(3))
	require.NoError(t, tbl.SetColumnFilter("status", SelectFilter("active")))
	state, ok := tbl.Pagination()
	require.True(t, ok)
	assert.Equal(t, 0, state.PageIndex)

	require.NoError(t, tbl.NextPage())
	tbl.SetGlobalFilter("item")
	state, _ = tbl.Pagination()
	assert.Equal(t, 0, state.PageIndex)
}

// Hiding a column drops its header and cells; showing it again restores the
// identical render model.
func TestColumnVisibility_RoundTrip(t *testing.T) {
	data := items(6)
	tbl := newTable(t, Options[item]{Data: data, EnableColumnVisibility: true})

	before := tbl.View()
	require.Contains(t, headerIDs(before.Headers), "price")

	require.NoError(t, tbl.ToggleColumnVisibility("price"))
	hidden := tbl.View()
	assert.NotContains(t, headerIDs(hidden.Headers), "price")
	assert.Equal(t, len(before.Headers)-1, hidden.ColSpan)
	for _, r := range hidden.Rows {
		for _, c := range r.Cells {
			assert.NotEqual(t, "price", c.ColumnID)
		}
	}
	for _, tg := range hidden.ColumnToggles {
		if tg.ColumnID == "price" {
			assert.False(t, tg.Visible)
		}
	}
	assert.Equal(t, VisibilityState{"price": false}, tbl.State().Visibility)

	require.NoError(t, tbl.ToggleColumnVisibility("price"))
	after := tbl.View()
	assert.Empty(t, cmp.Diff(before, after))
	assert.Equal(t, items(6), data)
}

func TestColumnVisibility_Errors(t *testing.T) {
	tbl := newTable(t, Options[item]{Data: items(1), EnableColumnVisibility: true})
	assert.ErrorIs(t, tbl.ToggleColumnVisibility("id"), ErrColumnNotHideable)
	assert.ErrorIs(t, tbl.SetColumnVisible("id", false), ErrColumnNotHideable)
	assert.ErrorIs(t, tbl.SetColumnVisible("nope", false), ErrUnknownColumn)

	plain := newTable(t, Options[item]{Data: items(1)})
	assert.ErrorIs(t, plain.ToggleColumnVisibility("price"), ErrFeatureDisabled)
	assert.Empty(t, plain.View().ColumnToggles)
}

func TestResizeColumn(t *testing.T) {
	cols := itemColumns()
	cols[1].Size, cols[1].MinSize, cols[1].MaxSize = 120, 60, 300
	tbl := newTable(t, Options[item]{Data: items(1), Columns: cols, EnableColumnResizing: true})

	tests := []struct {
		width int
		want  int
	}{
		{200, 200},
		{10, 60},
		{900, 300},
	}
	for _, tt := range tests {
		got, err := tbl.ResizeColumn("name", tt.width)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, map[string]int{"name": 300}, tbl.State().ColumnSizes)

	tbl.ResetColumnSizes()
	for _, h := range tbl.View().Headers {
		if h.ColumnID == "name" {
			assert.Equal(t, 120, h.Width)
			assert.True(t, h.Resizable)
		}
	}

	plain := newTable(t, Options[item]{Data: items(1)})
	_, err := plain.ResizeColumn("name", 100)
	assert.ErrorIs(t, err, ErrFeatureDisabled)
}

func TestView_Body(t *testing.T) {
	opts := func(data []item, loading bool) Options[item] {
		return Options[item]{
			Data:               data,
			Loading:            loading,
			EnableRowSelection: true,
			EnableExpanding:    true,
			GetRowID:           itemID,
			GetSubRows:         func(it item) ([]item, bool) { return it.Children, it.Children != nil },
			Actions:            []Action[item]{{Label: "Edit"}},
		}
	}

	loading := newTable(t, opts(items(3), true)).View()
	assert.Equal(t, BodyLoading, loading.Body)
	assert.Empty(t, loading.Rows)
	// select + expand + six data columns + actions
	assert.Equal(t, 9, loading.ColSpan)
	assert.Equal(t, SelectColumnID, loading.Headers[0].ColumnID)
	assert.Equal(t, ExpandColumnID, loading.Headers[1].ColumnID)
	assert.Equal(t, ActionsColumnID, loading.Headers[8].ColumnID)

	empty := newTable(t, opts(nil, false)).View()
	assert.Equal(t, BodyEmpty, empty.Body)
	assert.Nil(t, empty.Footer)

	rows := newTable(t, opts(items(3), false)).View()
	assert.Equal(t, BodyRows, rows.Body)
	require.Len(t, rows.Rows, 3)
	assert.Len(t, rows.Rows[0].Cells, rows.ColSpan)
	assert.Equal(t, "Item 01", rows.Rows[0].Cells[3].Text)
	assert.Equal(t, "note for p01", rows.Rows[0].Cells[7].Text)
}

func TestView_RendersCustomCellsAndFormatting(t *testing.T) {
	cols := []Column[item]{
		{ID: "price", Accessor: func(it item) any { return it.Price }},
		{ID: "created", Accessor: func(it item) any { return it.Created }},
		{ID: "label", Cell: func(it item) string { return "[" + it.Name + "]" }},
	}
	tbl := newTable(t, Options[item]{Data: []item{{Name: "Mug", Price: 12.5, Created: baseTime}}, Columns: cols})

	cells := tbl.View().Rows[0].Cells
	assert.Equal(t, "12.5", cells[0].Text)
	assert.Equal(t, "2024-03-01 09:00:00", cells[1].Text)
	assert.Equal(t, "[Mug]", cells[2].Text)
	assert.Nil(t, cells[2].Value)
}

func TestInitialState_SeedsOwnedSlots(t *testing.T) {
	tbl := newTable(t, Options[item]{
		Data:                   items(30),
		Pagination:             &Pagination{PageSize: 10},
		EnableColumnVisibility: true,
		Initial: State{
			Sorting:      SortingState{{ColumnID: "price", Desc: true}},
			Filters:      ColumnFilters{"status": SelectFilter("active")},
			Visibility:   VisibilityState{"note": false},
			Pagination:   PaginationState{PageIndex: 1, PageSize: 5},
			GlobalFilter: "item",
		},
	})

	v := tbl.View()
	assert.NotContains(t, headerIDs(v.Headers), "note")
	assert.Equal(t, "item", v.Search)
	require.NotNil(t, v.Footer)
	assert.Equal(t, 15, v.Footer.Total)
	assert.Equal(t, 5, v.Footer.PageSize)
	assert.Equal(t, []string{"p20", "p18", "p16", "p14", "p12"}, viewRowIDs(v.Rows))
}
