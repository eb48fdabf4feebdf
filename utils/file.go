package utils

import (
	"path/filepath"
	"strings"
)

// LowerExt returns the extension of path, including the dot, in lower case.
func LowerExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// HasExt reports whether path ends in one of exts, ignoring case.
func HasExt(path string, exts ...string) bool {
	ext := LowerExt(path)
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
