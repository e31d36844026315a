package views

import (
	"strings"
	"testing"
	"time"

	"github.com/leapstack-labs/admingrid/pkg/datatable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	SKU     string
	Status  string
	Price   int64
	Stock   int
	Notes   string
	Created time.Time
}

var itemSchema = Schema[item]{Fields: []Field[item]{
	{Name: "sku", Kind: KindText, Get: func(i item) any { return i.SKU }, Queryable: true},
	{Name: "status", Kind: KindEnum, Get: func(i item) any { return i.Status }, Options: []string{"active", "draft"}, Queryable: true},
	{Name: "price", Kind: KindMoney, Get: func(i item) any { return i.Price }, Queryable: true},
	{Name: "stock", Kind: KindNumber, Get: func(i item) any { return i.Stock }},
	{Name: "notes", Kind: KindHTML, Get: func(i item) any { return i.Notes }},
	{Name: "created", Kind: KindTime, Get: func(i item) any { return i.Created }, Queryable: true},
}}

func parseView(t *testing.T, src string) View {
	t.Helper()
	set, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	v, err := set.View("items")
	require.NoError(t, err)
	return v
}

const itemsView = `
views:
  items:
    columns:
      - field: sku
        label: SKU
        pinned: true
      - field: status
      - field: price
      - field: stock
        export: false
      - id: value
        label: Value
        expr: money(price * stock)
        hidden: true
      - field: notes
        format: html
      - field: created
        format: date
`

func columnByID[T any](t *testing.T, cols []datatable.Column[T], id string) datatable.Column[T] {
	t.Helper()
	for _, c := range cols {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("no column %s", id)
	return datatable.Column[T]{}
}

func TestBuild_ClientMode(t *testing.T) {
	built, err := Build(parseView(t, itemsView), itemSchema, BuildOptions{})
	require.NoError(t, err)
	require.Len(t, built.Columns, 7)

	row := item{
		SKU:     "CAT-0001",
		Status:  "active",
		Price:   1250,
		Stock:   3,
		Notes:   "<p>Warm <b>wool</b></p>",
		Created: time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC),
	}

	sku := columnByID(t, built.Columns, "sku")
	assert.Equal(t, "SKU", sku.Label())
	assert.True(t, sku.DisableHiding)
	assert.Equal(t, datatable.FilterText, sku.Filter)
	assert.Equal(t, "sku", sku.Meta[MetaField])

	status := columnByID(t, built.Columns, "status")
	assert.Equal(t, datatable.FilterSelect, status.Filter)
	assert.Equal(t, []datatable.FilterOption{{Label: "active", Value: "active"}, {Label: "draft", Value: "draft"}}, status.FilterOptions)

	price := columnByID(t, built.Columns, "price")
	assert.Equal(t, 12.5, price.Value(row))
	assert.Equal(t, "$12.50", price.Render(row))
	assert.Equal(t, datatable.FilterNumber, price.Filter)
	assert.True(t, price.Sortable)

	assert.True(t, columnByID(t, built.Columns, "stock").DisableExport)

	value := columnByID(t, built.Columns, "value")
	assert.Equal(t, "$37.50", value.Value(row))
	assert.True(t, value.Sortable)
	assert.Equal(t, datatable.FilterText, value.Filter)

	notes := columnByID(t, built.Columns, "notes")
	assert.Equal(t, "Warm wool", notes.Value(row))
	assert.False(t, notes.Sortable)
	assert.Equal(t, datatable.FilterNone, notes.Filter)

	created := columnByID(t, built.Columns, "created")
	assert.Equal(t, "2026-03-04", created.Render(row))
	assert.Equal(t, datatable.FilterDate, created.Filter)

	assert.Equal(t, datatable.VisibilityState{"value": false}, built.Hidden)
	assert.Equal(t, map[string]string{
		"sku": "sku", "status": "status", "price": "price", "stock": "stock", "notes": "notes", "created": "created",
	}, built.Fields)
}

func TestBuild_ServerMode(t *testing.T) {
	built, err := Build(parseView(t, itemsView), itemSchema, BuildOptions{Server: true, Currency: "EUR"})
	require.NoError(t, err)

	price := columnByID(t, built.Columns, "price")
	assert.True(t, price.Sortable)
	assert.Equal(t, "€12.50", price.Render(item{Price: 1250}))

	stock := columnByID(t, built.Columns, "stock")
	assert.False(t, stock.Sortable, "stock is not queryable")
	assert.Equal(t, datatable.FilterNone, stock.Filter)

	value := columnByID(t, built.Columns, "value")
	assert.False(t, value.Sortable)
	assert.Equal(t, datatable.FilterNone, value.Filter)
}

func TestBuild_Overrides(t *testing.T) {
	v := parseView(t, `
views:
  items:
    columns:
      - field: sku
        sortable: false
        filter: none
      - field: status
        filter: select
        options: [active]
      - field: created
        format: datetime
`)
	built, err := Build(v, itemSchema, BuildOptions{})
	require.NoError(t, err)

	sku := columnByID(t, built.Columns, "sku")
	assert.False(t, sku.Sortable)
	assert.Equal(t, datatable.FilterNone, sku.Filter)
	assert.Equal(t, "Sku", sku.Label())

	status := columnByID(t, built.Columns, "status")
	assert.Equal(t, []datatable.FilterOption{{Label: "active", Value: "active"}}, status.FilterOptions)

	created := columnByID(t, built.Columns, "created")
	assert.Equal(t, "2026-03-04 10:30", created.Render(item{Created: time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)}))
	assert.Empty(t, created.Render(item{}))
}

func TestBuild_ComputedError(t *testing.T) {
	v := parseView(t, `
views:
  items:
    columns:
      - id: ratio
        expr: price // stock
`)
	built, err := Build(v, itemSchema, BuildOptions{})
	require.NoError(t, err)
	ratio := built.Columns[0]
	assert.Equal(t, "500", ratio.Value(item{Price: 1000, Stock: 2}))
	assert.Equal(t, "#error", ratio.Value(item{Price: 1000}), "division by zero")
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "views:\n  items:\n    columns: [{field: weight}]\n", "unknown field weight"},
		{"bad filter", "views:\n  items:\n    columns: [{field: sku, filter: fuzzy}]\n", "unknown filter kind"},
		{"select without options", "views:\n  items:\n    columns: [{field: sku, filter: select}]\n", "needs options"},
		{"bad expr", "views:\n  items:\n    columns: [{id: x, expr: 'price +'}]\n", "x"},
		{"computed select", "views:\n  items:\n    columns: [{id: x, expr: sku, filter: select}]\n", "text filters only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(parseView(t, tt.yaml), itemSchema, BuildOptions{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	bad := Schema[item]{Fields: []Field[item]{{Name: "sku"}}}
	_, err := Build(View{}, bad, BuildOptions{})
	assert.Error(t, err)
}
