// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FindFilesWithPrefix lists the files in the directory of prefix whose full
// path starts with prefix and ends with extension. The search is not
// recursive. A missing directory yields no files and no error.
func FindFilesWithPrefix(prefix string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	dir := filepath.Dir(prefix)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if strings.HasPrefix(path, filepath.Clean(prefix)) && strings.HasSuffix(e.Name(), extension) {
			files = append(files, path)
		}
	}
	return files, nil
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
