package storage

import (
	"path"
	"sort"
	"strings"
)

// MatchPattern reports whether a relative object path matches a glob pattern.
// Patterns follow path.Match; a malformed pattern matches nothing.
func MatchPattern(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}

// ListPrefix returns the literal prefix of a glob pattern, used to narrow
// server-side listings ("db--*.backup" -> "db--")
func ListPrefix(pattern string) string {
	if idx := strings.IndexAny(pattern, "*?["); idx >= 0 {
		return pattern[:idx]
	}
	return pattern
}

// SortNewestFirst orders listings by modification time, newest first
func SortNewestFirst(files []FileInfo) {
	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Path < files[j].Path
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
}
