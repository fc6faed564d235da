// Package scan walks a directory tree for files the pixel decoder can
// handle. It is the CLI-only filesystem-traversal collaborator the core
// spec explicitly puts out of scope; modeled on the teacher's
// cli/internal/pipeline/scanner.go walk, trimmed to just the path list the
// loader needs (no per-file metadata, key derivation or format detection —
// the loader/cache own all of that once given a path).
package scan

import (
	"os"
	"path/filepath"
	"strings"
)

// Walk returns the absolute paths of every file under root for which
// supported reports true, skipping hidden directories.
func Walk(root string, supported func(path string) bool) ([]string, error) {
	var out []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !supported(path) {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		out = append(out, abs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
