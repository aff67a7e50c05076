package usecase

import "strings"

// RequireAuth reports whether a request path must carry authentication given
// the list of excluded path patterns. Comparison is slash-tolerant: "/status"
// and "/status/" refer to the same resource. A pattern ending in '*' matches
// every path sharing the prefix before the '*'.
//
// An empty path is always protected, as is everything when no exclusions are
// configured.
func RequireAuth(path string, excludedPaths []string) bool {
	if path == "" || len(excludedPaths) == 0 {
		return true
	}

	normalized := normalizePath(path)
	for _, pattern := range excludedPaths {
		if pattern == "" {
			continue
		}
		if strings.HasSuffix(pattern, "*") {
			if strings.HasPrefix(normalized, pattern[:len(pattern)-1]) {
				return false
			}
			continue
		}
		if normalizePath(pattern) == normalized {
			return false
		}
	}

	return true
}

// normalizePath gives every path a single trailing slash so that exact
// matching is insensitive to the caller's slash convention.
func normalizePath(path string) string {
	return strings.TrimRight(path, "/") + "/"
}
