package store

import "strings"

// normalizeHash lowercases hex identifiers and ensures the 0x prefix.
func normalizeHash(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return s
}
