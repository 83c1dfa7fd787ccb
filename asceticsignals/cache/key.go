package cache

import (
	"regexp"
	"strings"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	disallowed = regexp.MustCompile(`[^a-zA-Z0-9-]`)
)

// NormalizeKey collapses whitespace runs to "-", drops everything outside
// [A-Za-z0-9-] and lower-cases the rest, so "My Key!" and "my-key" name the
// same entry.
func NormalizeKey(key string) string {
	key = whitespace.ReplaceAllString(strings.TrimSpace(key), "-")
	key = disallowed.ReplaceAllString(key, "")
	return strings.ToLower(key)
}
