package textutil

import (
	"path/filepath"
	"strings"
	"unicode"
)

// SanitizeFileName makes name safe as a single path element. Separators,
// colons, and asterisks become dashes; quotes, wildcards, redirections, and
// control characters are dropped.
func SanitizeFileName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*':
			return '-'
		case strings.ContainsRune(`?"<>|`, r), unicode.IsControl(r):
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(mapped)
}

// VideoBaseName turns a user supplied output name into a safe base name
// without extension. "talk.mp4", "talk" and " talk " all yield "talk".
func VideoBaseName(name string) string {
	name = SanitizeFileName(name)
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".mp4") {
		name = strings.TrimSpace(strings.TrimSuffix(name, ext))
	}
	return name
}
