// Package components holds the admin's templ components. The markup lives
// in the .templ files; the _templ.go files are generated from them.
package components

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

import (
	"fmt"
	"net/url"
	"strings"
)

// Path joins escaped URL path segments under a resource.
func Path(resource string, segments ...string) string {
	var sb strings.Builder
	sb.WriteString("/")
	sb.WriteString(url.PathEscape(resource))
	for _, s := range segments {
		sb.WriteString("/")
		sb.WriteString(url.PathEscape(s))
	}
	return sb.String()
}

// post builds a datastar POST action for path.
func post(path string) string {
	return fmt.Sprintf("@post('%s')", path)
}

// get builds a datastar GET action for path.
func get(path string) string {
	return fmt.Sprintf("@get('%s')", path)
}
