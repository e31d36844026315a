//go:build !dev

package resources

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFS embed.FS

var (
	assets   fs.FS
	versions map[string]string
)

func init() {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	assets = sub
	if versions, err = fingerprint(assets); err != nil {
		panic(err)
	}
}

// Handler serves the embedded assets. Versioned URLs from StaticPath are
// cached for a year; anything else is revalidated.
func Handler() http.Handler {
	files := http.StripPrefix(staticPrefix, http.FileServer(http.FS(assets)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "" {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		files.ServeHTTP(w, r)
	})
}

// StaticPath returns the URL of an asset, versioned by its content.
func StaticPath(name string) string {
	if v, ok := versions[name]; ok {
		return staticPrefix + name + "?v=" + v
	}
	return staticPrefix + name
}
