// Package resources serves the admin's stylesheet and other static files.
package resources

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
)

// StaticDirectoryPath is the static asset directory, relative to the module root.
const StaticDirectoryPath = "internal/ui/resources/static"

// staticPrefix is where Handler is mounted.
const staticPrefix = "/static/"

// fingerprint maps each asset to a short content hash.
func fingerprint(fsys fs.FS) (map[string]string, error) {
	out := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(data)
		out[path] = hex.EncodeToString(sum[:6])
		return nil
	})
	return out, err
}
