// Package pathutil normalises file paths to the repo-relative form the
// data model requires: always relative, leading "./" stripped, slashes
// forward-facing regardless of host OS.
package pathutil

import (
	"path/filepath"
	"strings"
)

// Normalize converts an absolute or OS-native path into the repo-relative,
// forward-slashed form CodeEntity.File and DirectoryMetrics keys use.
// Falls back to the cleaned input if it cannot be made relative to root.
func Normalize(path, root string) string {
	if path == "" {
		return path
	}
	p := path
	if root != "" && filepath.IsAbs(p) {
		if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
	}
	p = filepath.ToSlash(filepath.Clean(p))
	p = strings.TrimPrefix(p, "./")
	return p
}

// ToRelative converts an absolute path to a path relative to rootDir,
// returning the original path unchanged when conversion is impossible
// (different volumes, or the path lies outside root).
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}
	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)
	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return absPath
	}
	return relPath
}

// Dir returns the repo-relative parent directory of a normalised path, or
// "." for a top-level file.
func Dir(normalizedPath string) string {
	d := filepath.Dir(normalizedPath)
	if d == "" {
		return "."
	}
	return filepath.ToSlash(d)
}

// Stem returns the filename without its extension, e.g. "handler" for
// "internal/server/handler.go".
func Stem(normalizedPath string) string {
	base := filepath.Base(normalizedPath)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}
