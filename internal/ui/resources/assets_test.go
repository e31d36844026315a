//go:build !dev

package resources

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	fsys := fstest.MapFS{
		"a.css":     {Data: []byte("body{}")},
		"img/b.svg": {Data: []byte("<svg/>")},
	}

	got, err := fingerprint(fsys)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, got["a.css"], 12)

	fsys["a.css"] = &fstest.MapFile{Data: []byte("body{color:red}")}
	changed, err := fingerprint(fsys)
	require.NoError(t, err)
	assert.NotEqual(t, got["a.css"], changed["a.css"])
	assert.Equal(t, got["img/b.svg"], changed["img/b.svg"])
}

func TestStaticPath(t *testing.T) {
	assert.True(t, strings.HasPrefix(StaticPath("admingrid.css"), "/static/admingrid.css?v="))
	assert.Equal(t, "/static/missing.js", StaticPath("missing.js"))
}

func TestHandler(t *testing.T) {
	h := Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, StaticPath("admingrid.css"), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/admingrid.css", nil))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/nope.css", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
