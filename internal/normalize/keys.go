package normalize

import (
	"strings"
	"unicode"
)

// Key normalizes a raw key as written on the left-hand side of an assignment.
// Surrounding whitespace and a leading "export" keyword are removed.
// Keys are case-sensitive and are never case-folded.
// Examples:
//   - "  HELLO " → "HELLO"
//   - "export DB_HOST" → "DB_HOST"
//   - "export\tAPI_KEY" → "API_KEY"
func Key(raw string) string {
	key := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(key, "export"); ok && rest != "" && unicode.IsSpace(rune(rest[0])) {
		key = strings.TrimSpace(rest)
	}
	return key
}

// ValidKey reports whether key can name an environment variable.
// Empty keys and keys containing whitespace, '=' or NUL are rejected.
func ValidKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if r == '=' || r == 0 || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// ApplyPrefix prepends prefix to key.
// If prefix is empty, returns the key unchanged.
// Examples:
//   - ApplyPrefix("APP_", "PORT") → "APP_PORT"
//   - ApplyPrefix("", "PORT") → "PORT"
func ApplyPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + key
}
