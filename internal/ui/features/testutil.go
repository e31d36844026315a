// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/admingrid/internal/grids"
	"github.com/leapstack-labs/admingrid/internal/settings"
	"github.com/leapstack-labs/admingrid/internal/store"
	"github.com/leapstack-labs/admingrid/internal/testutil"
	"github.com/leapstack-labs/admingrid/internal/ui/notifier"
	"github.com/leapstack-labs/admingrid/internal/ui/session"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Store    *store.SQLStore
	Settings *settings.Service
	Registry *grids.Registry
	Notifier *notifier.Notifier
	Sessions *session.Store
}

// SetupTestFixture creates an in-memory store holding n products p01..pNN:
// price and stock N, even numbers active and odd numbers draft.
func SetupTestFixture(t *testing.T, n int) *TestFixture {
	t.Helper()
	ctx := context.Background()
	logger := testutil.NewTestLogger(t)

	st := store.New(logger)
	require.NoError(t, st.Open(ctx, store.DialectSQLite, ":memory:"))
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate())

	svc, err := settings.NewService(st, logger)
	require.NoError(t, err)
	_, err = svc.EnsureDefaults(ctx)
	require.NoError(t, err)

	day0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		p := store.Product{
			ID:          fmt.Sprintf("p%02d", i),
			SKU:         fmt.Sprintf("SKU-%02d", i),
			Name:        fmt.Sprintf("Item %02d", i),
			Description: fmt.Sprintf("<p>Item <b>%d</b></p>", i),
			Category:    []string{"Kitchen", "Garden"}[i%2],
			Status:      store.ProductDraft,
			PriceCents:  int64(i * 100),
			Stock:       i,
			CreatedAt:   day0.AddDate(0, 0, i-1),
		}
		if i%2 == 0 {
			p.Status = store.ProductActive
		}
		require.NoError(t, st.CreateProduct(ctx, &p))
	}

	return &TestFixture{
		Store:    st,
		Settings: svc,
		Registry: grids.NewRegistry(grids.Deps{Store: st, Settings: svc, Logger: logger}, grids.Options{Mode: grids.ModeServer}),
		Notifier: notifier.New(),
		Sessions: session.New(NewTestSessionStore(), logger),
	}
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return session.NewCookieStore("test-secret-key-32-bytes-long!!")
}

// Browser replays requests against a handler, carrying cookies between them.
type Browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

// NewBrowser creates a Browser over handler.
func NewBrowser(t *testing.T, handler http.Handler) *Browser {
	return &Browser{t: t, handler: handler, cookies: map[string]*http.Cookie{}}
}

// Do sends req with the stored cookies and records the new ones.
func (b *Browser) Do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return rec
}

// Get sends a GET request.
func (b *Browser) Get(path string) *httptest.ResponseRecorder {
	return b.Do(httptest.NewRequest(http.MethodGet, path, nil))
}

// Post sends a POST request with a JSON signals body.
func (b *Browser) Post(path, signals string) *httptest.ResponseRecorder {
	if signals == "" {
		signals = "{}"
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(signals))
	req.Header.Set("Content-Type", "application/json")
	return b.Do(req)
}

// RequestWithTimeout wraps a request with a context timeout.
func RequestWithTimeout(r *http.Request, timeout time.Duration) *http.Request {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	// The timeout cancels the context; tests don't outlive it.
	_ = cancel
	return r.WithContext(ctx)
}
