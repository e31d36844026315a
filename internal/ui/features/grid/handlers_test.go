package grid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/admingrid/internal/store"
	"github.com/leapstack-labs/admingrid/internal/ui/features"
	"github.com/leapstack-labs/admingrid/pkg/datatable"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupBrowser(t *testing.T, products int) (*features.Browser, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t, products)

	r := chi.NewMux()
	require.NoError(t, SetupRoutes(r, Deps{
		Registry: fixture.Registry,
		Sessions: fixture.Sessions,
		Notifier: fixture.Notifier,
	}))
	return features.NewBrowser(t, r), fixture
}

func rowMarkup(id string) string { return `id="row-` + id + `"` }

func assertRows(t *testing.T, body string, present, absent []string) {
	t.Helper()
	for _, id := range present {
		assert.Contains(t, body, rowMarkup(id))
	}
	for _, id := range absent {
		assert.NotContains(t, body, rowMarkup(id))
	}
}

// =============================================================================
// Page Tests - Full HTML page responses
// =============================================================================

func TestPage(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "products page shell",
			path:       "/products",
			wantStatus: http.StatusOK,
			wantBody: []string{
				"<!doctype html>",
				"<title>Products - admingrid</title>",
				"data-init",
				"/products/sse",
				`aria-current="page"`,
				"/static/admingrid.css",
			},
		},
		{
			name:       "settings page shell",
			path:       "/settings",
			wantStatus: http.StatusOK,
			wantBody:   []string{"<title>Settings - admingrid</title>", "/settings/sse"},
		},
		{
			name:       "unknown resource",
			path:       "/widgets",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := setupBrowser(t, 0)

			rec := b.Get(tt.path)

			assert.Equal(t, tt.wantStatus, rec.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}

func TestIndex_Redirects(t *testing.T) {
	b, _ := setupBrowser(t, 0)

	rec := b.Get("/")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/products", rec.Header().Get("Location"))
}

func TestPage_SetsSessionCookie(t *testing.T) {
	b, _ := setupBrowser(t, 0)

	rec := b.Get("/products")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "admingrid=")
}

// =============================================================================
// Interaction Tests - SSE patches of the grid
// =============================================================================

func TestSortAndPage(t *testing.T) {
	b, _ := setupBrowser(t, 25)
	b.Get("/products")

	// Ascending, then descending.
	b.Post("/products/sort/price", "")
	rec := b.Post("/products/sort/price", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, `aria-sort="descending"`)
	assertRows(t, body, []string{"p25", "p16"}, []string{"p15", "p01"})

	rec = b.Post("/products/page/next", "")
	assertRows(t, rec.Body.String(), []string{"p15", "p06"}, []string{"p25", "p05"})

	rec = b.Post("/products/page/3", "")
	assertRows(t, rec.Body.String(), []string{"p05", "p01"}, []string{"p06"})
	assert.Contains(t, rec.Body.String(), "Rows 21-25 of 25")
}

func TestFilter_NumberRange(t *testing.T) {
	b, _ := setupBrowser(t, 25)

	rec := b.Post("/products/filter/stock", `{"f_stock_from":"5","f_stock_to":"8"}`)

	body := rec.Body.String()
	assertRows(t, body, []string{"p05", "p06", "p07", "p08"}, []string{"p04", "p09"})
	assert.Contains(t, body, "Clear filters")
	assert.Contains(t, body, "datastar-patch-signals")

	rec = b.Post("/products/filters/clear", "")
	assertRows(t, rec.Body.String(), []string{"p01", "p10"}, nil)
}

func TestFilter_Invalid(t *testing.T) {
	b, _ := setupBrowser(t, 3)

	rec := b.Post("/products/filter/stock", `{"f_stock_from":"9","f_stock_to":"1"}`)

	body := rec.Body.String()
	assert.Contains(t, body, `class="toast error"`)
	// The grid is still sent, unfiltered.
	assertRows(t, body, []string{"p01", "p02", "p03"}, nil)
}

func TestSearch(t *testing.T) {
	b, _ := setupBrowser(t, 25)

	rec := b.Post("/products/search", `{"search":"Item 03"}`)
	assertRows(t, rec.Body.String(), []string{"p03"}, []string{"p01", "p13"})

	// The state survives into the next request.
	rec = b.Post("/products/sort/price", "")
	assertRows(t, rec.Body.String(), []string{"p03"}, []string{"p01"})
}

func TestPageSize(t *testing.T) {
	b, _ := setupBrowser(t, 25)

	rec := b.Post("/products/size/25", "")
	assertRows(t, rec.Body.String(), []string{"p01", "p25"}, nil)

	rec = b.Post("/products/size/abc", "")
	assert.Contains(t, rec.Body.String(), "toast error")
}

func TestSelectExpandAndToggleColumn(t *testing.T) {
	b, _ := setupBrowser(t, 5)

	rec := b.Post("/products/select/p02", "")
	assert.Contains(t, rec.Body.String(), "1 selected")

	rec = b.Post("/products/select-page", "")
	assert.Contains(t, rec.Body.String(), "5 selected")

	rec = b.Post("/products/selection/clear", "")
	assert.NotContains(t, rec.Body.String(), "selected</span>")

	rec = b.Post("/products/expand/p02", "")
	assert.Contains(t, rec.Body.String(), `class="detail"`)
	assert.Contains(t, rec.Body.String(), "Item 2")

	rec = b.Post("/products/columns/category", "")
	assert.NotContains(t, rec.Body.String(), "Kitchen</td>")
}

func TestExportCSV(t *testing.T) {
	b, _ := setupBrowser(t, 5)

	rec := b.Get("/products/export.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 6, "header plus every row")

	b.Post("/products/select/p04", "")
	rec = b.Get("/products/export.csv")
	body := rec.Body.String()
	assert.Contains(t, body, "SKU-04")
	assert.NotContains(t, body, "SKU-01")
}

func TestAction_NotifiesViewers(t *testing.T) {
	b, fixture := setupBrowser(t, 3)
	updates := fixture.Notifier.Subscribe("products")
	defer fixture.Notifier.Unsubscribe(updates)

	// Action 0 is Publish, shown for draft products.
	rec := b.Post("/products/action/p01/0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "toast error")

	p, err := fixture.Store.GetProduct(context.Background(), "p01")
	require.NoError(t, err)
	assert.Equal(t, store.ProductActive, p.Status)

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("viewers were not notified")
	}
}

func TestAction_Unknown(t *testing.T) {
	b, _ := setupBrowser(t, 3)

	rec := b.Post("/products/action/p01/9", "")

	assert.Contains(t, rec.Body.String(), "toast error")
}

// =============================================================================
// SSE Tests - Long-lived streams
// =============================================================================

func TestGridSSE_SendsGridAndUpdates(t *testing.T) {
	b, fixture := setupBrowser(t, 3)
	b.Post("/products/search", `{"search":"Item 02"}`)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/products/sse", nil).WithContext(ctx)

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- b.Do(req) }()

	require.Eventually(t, func() bool {
		return fixture.Notifier.Len() == 1
	}, time.Second, 10*time.Millisecond)
	fixture.Notifier.Broadcast("products")
	time.Sleep(50 * time.Millisecond)
	cancel()

	rec := <-done
	body := rec.Body.String()
	assert.Equal(t, 2, strings.Count(body, "event: datastar-patch-elements"), "initial grid plus one update")
	assertRows(t, body, []string{"p02"}, []string{"p01"})
}

// =============================================================================
// Signals
// =============================================================================

func TestSignals(t *testing.T) {
	lo := 5.0
	v := datatable.View{
		Search: "wool",
		Headers: []datatable.HeaderCell{
			{ColumnID: datatable.SelectColumnID, Kind: datatable.CellSelect},
			{ColumnID: "name", Kind: datatable.CellData, Filter: datatable.FilterText, FilterValue: datatable.TextFilter("mug")},
			{ColumnID: "stock", Kind: datatable.CellData, Filter: datatable.FilterNumber, FilterValue: datatable.NumberFilter(&lo, nil)},
			{ColumnID: "sku", Kind: datatable.CellData},
		},
	}

	assert.Equal(t, map[string]string{
		"search":       "wool",
		"f_name":       "mug",
		"f_stock_from": "5",
		"f_stock_to":   "",
	}, Signals(v))
}
