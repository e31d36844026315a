package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name      string
		q         GridQuery
		wantCount string
		wantList  string
		wantArgs  []any
	}{
		{
			name:      "no constraints",
			q:         GridQuery{},
			wantCount: "SELECT COUNT(*) FROM products",
			wantList:  "SELECT " + productSpec.columns + " FROM products ORDER BY id ASC",
		},
		{
			name:      "search spans searchable fields in name order",
			q:         GridQuery{Search: "  Mug ", PageIndex: 2, PageSize: 10},
			wantCount: "SELECT COUNT(*) FROM products WHERE (LOWER(category) LIKE ? ESCAPE '\\' OR LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(sku) LIKE ? ESCAPE '\\')",
			wantList: "SELECT " + productSpec.columns + " FROM products WHERE (LOWER(category) LIKE ? ESCAPE '\\' OR LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(sku) LIKE ? ESCAPE '\\')" +
				" ORDER BY id ASC LIMIT 10 OFFSET 20",
			wantArgs: []any{"%mug%", "%mug%", "%mug%"},
		},
		{
			name:      "search wildcards match literally",
			q:         GridQuery{Search: `50%_off\`},
			wantCount: "SELECT COUNT(*) FROM products WHERE (LOWER(category) LIKE ? ESCAPE '\\' OR LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(sku) LIKE ? ESCAPE '\\')",
			wantList: "SELECT " + productSpec.columns + " FROM products WHERE (LOWER(category) LIKE ? ESCAPE '\\' OR LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(sku) LIKE ? ESCAPE '\\')" +
				" ORDER BY id ASC",
			wantArgs: []any{`%50\%\_off\\%`, `%50\%\_off\\%`, `%50\%\_off\\%`},
		},
		{
			name:      "ids restrict the listing",
			q:         GridQuery{IDs: []string{"p2", "p1"}, Sort: []SortKey{{Field: "name"}}},
			wantCount: "SELECT COUNT(*) FROM products WHERE id IN (?, ?)",
			wantList:  "SELECT " + productSpec.columns + " FROM products WHERE id IN (?, ?) ORDER BY name ASC, id ASC",
			wantArgs:  []any{"p2", "p1"},
		},
		{
			name: "filters and sorts",
			q: GridQuery{
				Filters: []Filter{
					{Field: "status", Equals: "active"},
					{Field: "price", Min: ptr(9.99)},
				},
				Sort: []SortKey{{Field: "price", Desc: true}, {Field: "name"}},
			},
			wantCount: "SELECT COUNT(*) FROM products WHERE status = ? AND price_cents >= ?",
			wantList: "SELECT " + productSpec.columns + " FROM products WHERE status = ? AND price_cents >= ?" +
				" ORDER BY price_cents DESC, name ASC, id ASC",
			wantArgs: []any{"active", int64(999)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildQuery(productSpec, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, got.count)
			assert.Equal(t, tt.wantList, got.list)
			assert.Equal(t, tt.wantArgs, got.args)
		})
	}
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{dialect: DialectPostgres}
	assert.Equal(t, "a = $1 AND b IN ($2, $3)", pg.rebind("a = ? AND b IN (?, ?)"))

	lite := &SQLStore{dialect: DialectSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	s := New(nil)
	s.Attach(db, DialectPostgres)
	return s, mock
}

func TestListProducts_Postgres(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products WHERE (LOWER(category) LIKE $1 ESCAPE '\\' OR LOWER(name) LIKE $2 ESCAPE '\\' OR LOWER(sku) LIKE $3 ESCAPE '\\') AND status = $4")).
		WithArgs("%mug%", "%mug%", "%mug%", "active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY name ASC, id ASC LIMIT 25 OFFSET 0")).
		WithArgs("%mug%", "%mug%", "%mug%", "active").
		WillReturnRows(sqlmock.NewRows([]string{"id", "sku", "name", "description", "category", "status", "price_cents", "stock", "created_at"}).
			AddRow("p1", "KIT-0001", "Mug", "<p>Mug</p>", "Kitchen", "active", int64(450), 12, created))

	page, err := s.ListProducts(context.Background(), GridQuery{
		Search:   "mug",
		Filters:  []Filter{{Field: "status", Equals: "active"}},
		Sort:     []SortKey{{Field: "name"}},
		PageSize: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ProductActive, page.Items[0].Status)
	assert.Equal(t, int64(450), page.Items[0].PriceCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatus_ConcurrentChange(t *testing.T) {
	s, mock := newMockStore(t)
	placed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE o.id = $1")).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "number", "customer_id", "email", "status", "total_cents", "placed_at"}).
			AddRow("o1", int64(1001), "c1", "ada@example.com", "pending", int64(900), placed))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items")).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "sku", "name", "quantity", "unit_cents"}))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = $1 WHERE id = $2 AND status = $3")).
		WithArgs("paid", "o1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdateOrderStatus(context.Background(), "o1", OrderPaid)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPutSetting_Postgres(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT(key) DO UPDATE SET value = excluded.value")).
		WithArgs("theme", "dark", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.PutSetting(context.Background(), "theme", "dark"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
