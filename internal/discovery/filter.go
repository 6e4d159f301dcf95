package discovery

import (
	"path/filepath"
	"strings"
)

// FailedSuffix is appended to a test's full title to name its screenshot
const FailedSuffix = " (failed).png"

// Filter selects names and files by pattern or suffix
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// ArtifactSuffix returns the filename suffix expected for a failed test
func ArtifactSuffix(fullTitle string) string {
	return fullTitle + FailedSuffix
}

// FirstWithSuffix returns the first file whose path ends with suffix.
// Several files may share a suffix; the first in discovery order wins.
func (f *Filter) FirstWithSuffix(files []string, suffix string) (string, bool) {
	for _, file := range files {
		if strings.HasSuffix(file, suffix) {
			return filepath.Clean(file), true
		}
	}
	return "", false
}

// FilterByName filters names by a wildcard pattern such as "Login*" or "*cart*".
// A pattern without wildcards matches by substring.
func (f *Filter) FilterByName(names []string, pattern string) []string {
	if pattern == "" {
		return names
	}

	var filtered []string
	for _, name := range names {
		if f.matches(name, pattern) {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

func (f *Filter) matches(name, pattern string) bool {
	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}

	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	// Fall back to ordered substring matching so that "*" can span separators
	if strings.Contains(pattern, "?") {
		return false
	}
	rest := name
	var sawPart bool
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
		sawPart = true
	}
	return sawPart
}
