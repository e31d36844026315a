package components

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/admingrid/pkg/datatable"
)

func render(t *testing.T, d GridData) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Grid(d).Render(context.Background(), &buf))
	return buf.String()
}

func sampleView() datatable.View {
	return datatable.View{
		Headers: []datatable.HeaderCell{
			{ColumnID: datatable.SelectColumnID, Kind: datatable.CellSelect, SortIndex: -1},
			{ColumnID: datatable.ExpandColumnID, Kind: datatable.CellExpand, SortIndex: -1},
			{ColumnID: "name", Kind: datatable.CellData, Label: "Name", Sortable: true, Sort: datatable.SortDescending, SortIndex: 0, Filter: datatable.FilterText},
			{ColumnID: "status", Kind: datatable.CellData, Label: "Status", SortIndex: -1, Filter: datatable.FilterSelect,
				FilterOptions: []datatable.FilterOption{{Label: "Draft", Value: "draft"}, {Label: "Active", Value: "active"}},
				FilterValue:   datatable.SelectFilter("active")},
			{ColumnID: datatable.ActionsColumnID, Kind: datatable.CellActions, SortIndex: -1},
		},
		Body: datatable.BodyRows,
		Rows: []datatable.ViewRow{
			{
				ID: "p1", Selected: true, Expandable: true, Expanded: true, SubComponent: "2 × Mug <b>",
				Cells: []datatable.ViewCell{
					{ColumnID: datatable.SelectColumnID, Kind: datatable.CellSelect},
					{ColumnID: datatable.ExpandColumnID, Kind: datatable.CellExpand},
					{ColumnID: "name", Kind: datatable.CellData, Text: `Mug "large" <script>`},
					{ColumnID: "status", Kind: datatable.CellData, Text: "active"},
					{ColumnID: datatable.ActionsColumnID, Kind: datatable.CellActions},
				},
				Actions:    []datatable.ActionButton{{Index: 2, Label: "Delete", Variant: datatable.VariantDestructive}},
				ActionMode: datatable.ActionsInline,
			},
		},
		ColSpan:          5,
		Footer:           &datatable.Footer{PageIndex: 0, PageSize: 10, PageCount: 1, Total: 1, From: 1, To: 1, PageSizeOptions: []int{10, 25}},
		Searchable:       true,
		Search:           "mug",
		Exportable:       true,
		SelectionEnabled: true,
		SelectedCount:    1,
		PageSelection:    datatable.MarkAll,
		Filters:          datatable.ColumnFilters{"status": datatable.SelectFilter("active")},
		ColumnToggles: []datatable.ColumnToggle{
			{ColumnID: "name", Label: "Name", Visible: true},
			{ColumnID: "status", Label: "Status", Visible: true, CanHide: true},
		},
	}
}

func TestGrid_Markup(t *testing.T) {
	html := render(t, GridData{Resource: "products", View: sampleView(), SearchDebounce: 300 * time.Millisecond})

	for _, want := range []string{
		`<div id="grid" class="grid">`,
		`data-on:input__debounce.300ms="@post(&#39;/products/search&#39;)"`,
		`value="mug"`,
		`aria-sort="descending"`,
		`data-on:click="@post(&#39;/products/sort/name&#39;)"`,
		`<option value="active" selected>Active</option>`,
		`data-bind="f_name"`,
		`id="row-p1" class="selected"`,
		`aria-expanded="true"`,
		`<tr class="detail"><td colspan="5">2 × Mug &lt;b&gt;</td></tr>`,
		`confirm(&#39;Delete?&#39;) &amp;&amp; @post(&#39;/products/action/p1/2&#39;)`,
		`Export 1 selected`,
		`Clear filters`,
		"Rows 1-1 of 1 · Page 1 of 1 · 1 selected",
		`<option value="25">25</option>`,
		`href="/products/export.csv"`,
	} {
		assert.Contains(t, html, want)
	}

	assert.Contains(t, html, `Mug &#34;large&#34; &lt;script&gt;`)
	assert.NotContains(t, html, "<script>")
	// The pinned column's toggle cannot be unchecked.
	assert.Contains(t, html, `<input type="checkbox" checked disabled> Name`)
}

func TestGrid_Bodies(t *testing.T) {
	v := datatable.View{ColSpan: 3, Body: datatable.BodyEmpty}
	assert.Contains(t, render(t, GridData{Resource: "orders", View: v}), `<td colspan="3" class="placeholder">No results.</td>`)

	v.Body = datatable.BodyLoading
	assert.Contains(t, render(t, GridData{Resource: "orders", View: v}), "Loading…")
}

func TestGrid_RangeFilter(t *testing.T) {
	lo, hi := 5.0, 8.0
	v := datatable.View{Headers: []datatable.HeaderCell{{
		ColumnID: "stock", Kind: datatable.CellData, Label: "Stock", Filter: datatable.FilterNumber,
		FilterValue: datatable.NumberFilter(&lo, &hi),
	}}}

	html := render(t, GridData{Resource: "products", View: v})
	assert.Contains(t, html, `type="number" aria-label="Stock from" value="5" data-bind="f_stock_from"`)
	assert.Contains(t, html, `type="number" aria-label="Stock to" value="8" data-bind="f_stock_to"`)
	// No debounce suffix when the delay is zero.
	assert.NotContains(t, html, "__debounce")
}

func TestPath(t *testing.T) {
	assert.Equal(t, "/products/select/a%2Fb", Path("products", "select", "a/b"))
	assert.Equal(t, "/orders", Path("orders"))
}

func TestToast(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Toast("error", "boom <x>").Render(context.Background(), &buf))
	assert.Equal(t, `<div id="toasts"><div class="toast error" role="status">boom &lt;x&gt;</div></div>`, buf.String())
}

func TestGridPage(t *testing.T) {
	var buf bytes.Buffer
	p := PageData{Title: "Orders", Resource: "orders", Nav: []NavItem{{Name: "orders", Title: "Orders", Active: true}}}
	require.NoError(t, GridPage(p).Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, "<title>Orders - admingrid</title>")
	assert.Contains(t, html, `data-init="@get(&#39;/orders/sse&#39;)"`)
	assert.Contains(t, html, `<a href="/orders" class="active" aria-current="page">Orders</a>`)
	assert.NotContains(t, html, "/reload")
}

func TestLayout_Children(t *testing.T) {
	var buf bytes.Buffer
	body := templ.Raw("<p>hello</p>")
	p := PageData{Title: "Settings", IsDev: true, Nav: []NavItem{{Name: "orders", Title: "Orders"}}}
	require.NoError(t, Layout(p).Render(templ.WithChildren(context.Background(), body), &buf))

	html := buf.String()
	assert.Contains(t, html, "<main><p>hello</p></main>")
	assert.Contains(t, html, `<a href="/orders">Orders</a>`)
	assert.Contains(t, html, `data-init="@get(&#39;/reload&#39;)"`)
}

func TestGrid_ActionMenuAndResize(t *testing.T) {
	v := datatable.View{
		Headers: []datatable.HeaderCell{{ColumnID: "name", Kind: datatable.CellData, Label: "Name", Width: 12, Resizable: true}},
		Body:    datatable.BodyRows,
		Rows: []datatable.ViewRow{{
			ID: "p1", Depth: 1,
			Cells: []datatable.ViewCell{
				{ColumnID: "name", Kind: datatable.CellData, Text: "Mug"},
				{ColumnID: datatable.ActionsColumnID, Kind: datatable.CellActions},
			},
			Actions: []datatable.ActionButton{
				{Index: 0, Label: "Edit", Icon: "✎"},
				{Index: 1, Label: "Archive"},
			},
			ActionMode: datatable.ActionsMenu,
		}},
	}

	html := render(t, GridData{Resource: "products", View: v})
	assert.Contains(t, html, `class="resizable"`)
	assert.Contains(t, html, `style="width: 12ch"`)
	assert.Contains(t, html, `data-depth="1"`)
	assert.Contains(t, html, `style="padding-left: 3ch"`)
	assert.Contains(t, html, `<summary aria-label="Actions">⋯</summary>`)
	assert.Contains(t, html, `>✎ Edit</button>`)
	assert.Contains(t, html, `data-on:click="@post(&#39;/products/action/p1/1&#39;)">Archive</button>`)
}
