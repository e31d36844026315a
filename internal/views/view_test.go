package views

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	set := Default()
	assert.Equal(t, []string{"customers", "orders", "products", "settings"}, set.Names())
	assert.Empty(t, set.Source)

	v, err := set.View("products")
	require.NoError(t, err)
	assert.Equal(t, "Products", v.Title)
	assert.Equal(t, "sku", v.Columns[0].ColumnID())
	assert.True(t, v.Columns[0].Pinned)

	_, err = set.View("invoices")
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestParse(t *testing.T) {
	set, err := Parse(strings.NewReader(`
views:
  products:
    title: Stock
    columns:
      - field: sku
      - id: value
        expr: price * stock
`))
	require.NoError(t, err)
	v, err := set.View("products")
	require.NoError(t, err)
	require.Len(t, v.Columns, 2)
	assert.Equal(t, "sku", v.Columns[0].ColumnID())
	assert.Equal(t, "value", v.Columns[1].ColumnID())

	empty, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Names())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "views:\n  p:\n    colums: []\n", "invalid view file"},
		{"no columns", "views:\n  p:\n    title: P\n", "no columns"},
		{"negative page size", "views:\n  p:\n    page_size: -1\n    columns: [{field: a}]\n", "negative page size"},
		{"no id", "views:\n  p:\n    columns: [{label: A}]\n", "needs a field or an id"},
		{"field and expr", "views:\n  p:\n    columns: [{field: a, expr: b}]\n", "exclusive"},
		{"expr missing", "views:\n  p:\n    columns: [{id: a}]\n", "needs a field or an expr"},
		{"duplicate", "views:\n  p:\n    columns: [{field: a}, {field: a}]\n", "duplicate column a"},
		{"hidden pinned", "views:\n  p:\n    columns: [{field: a, hidden: true, pinned: true}]\n", "cannot start hidden"},
		{"bad format", "views:\n  p:\n    columns: [{field: a, format: euro}]\n", "unknown format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
views:
  orders:
    title: Recent orders
    columns:
      - field: number
`), 0o600))

	set, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, set.Source)

	orders, err := set.View("orders")
	require.NoError(t, err)
	assert.Equal(t, "Recent orders", orders.Title)
	assert.Len(t, orders.Columns, 1)

	// Resources missing from the file keep their built-in view.
	products, err := set.View("products")
	require.NoError(t, err)
	assert.Equal(t, "Products", products.Title)
	assert.Len(t, set.Names(), 4)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain   text\n here", "plain text here"},
		{"<p>Warm <b>wool</b> socks.</p><p>Machine washable.</p>", "Warm wool socks. Machine washable."},
		{"<ul><li>one</li><li>two</li></ul>", "one two"},
		{"Fish &amp; chips<br>daily", "Fish & chips daily"},
		{"<style>p{color:red}</style><p>kept</p><script>alert(1)</script>", "kept"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTMLToText(tt.in), tt.in)
	}
}

func TestHTMLToMarkdown(t *testing.T) {
	md := HTMLToMarkdown("<p>Warm <strong>wool</strong> socks.</p><ul><li>Grey</li></ul>")
	assert.Contains(t, md, "**wool**")
	assert.Contains(t, md, "Grey")
	assert.NotContains(t, md, "<")
}
