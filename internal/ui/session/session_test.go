package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/admingrid/pkg/datatable"
)

const secret = "test-secret-key-32-bytes-long!!"

// carry copies the cookies set on rec onto a new request.
func carry(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestClient_StableAcrossRequests(t *testing.T) {
	s := New(NewCookieStore(secret), nil)

	rec := httptest.NewRecorder()
	id := s.Client(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, id)

	again := s.Client(httptest.NewRecorder(), carry(rec))
	assert.Equal(t, id, again)
}

func TestSaveLoad(t *testing.T) {
	s := New(NewCookieStore(secret), nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	client := s.Client(rec, req)

	st := datatable.State{
		Sorting:      datatable.SortingState{{ColumnID: "price", Desc: true}},
		Pagination:   datatable.PaginationState{PageIndex: 2, PageSize: 25},
		GlobalFilter: "wool",
		RowSelection: datatable.RowSelectionState{"p1": true},
	}
	rec = httptest.NewRecorder()
	require.NoError(t, s.Save(rec, req, client, "products", st))

	assert.Equal(t, st, s.Load(req, client, "products"))
	got, ok := s.Peek(client, "products")
	require.True(t, ok)
	assert.Equal(t, "wool", got.GlobalFilter)

	_, ok = s.Peek(client, "orders")
	assert.False(t, ok)
	assert.Equal(t, datatable.State{}, s.Load(req, client, "orders"))
}

func TestLoad_RestoresFromCookie(t *testing.T) {
	cookies := NewCookieStore(secret)
	s := New(cookies, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	client := s.Client(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	require.NoError(t, s.Save(rec, req, client, "products", datatable.State{
		Pagination:   datatable.PaginationState{PageIndex: 1, PageSize: 10},
		RowSelection: datatable.RowSelectionState{"p1": true},
	}))

	// A restarted server has no memory, only the cookie.
	fresh := New(cookies, nil)
	got := fresh.Load(carry(rec), client, "products")
	assert.Equal(t, 1, got.Pagination.PageIndex)
	assert.Empty(t, got.RowSelection, "selection is not persisted")
}

func TestForget(t *testing.T) {
	s := New(NewCookieStore(secret), nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, s.Save(httptest.NewRecorder(), req, "c1", "products", datatable.State{GlobalFilter: "x"}))

	s.Forget("c1", "products")
	_, ok := s.Peek("c1", "products")
	assert.False(t, ok)
}
