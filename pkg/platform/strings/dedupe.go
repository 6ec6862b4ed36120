// Package strings provides string normalization utilities shared by the
// credential and session layers.
package strings

import "strings"

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// EnsurePrefix prepends prefix to each element that does not already carry
// it. Elements are trimmed first; the result is deduplicated so a value that
// arrives both bare and pre-prefixed collapses to one entry.
func EnsurePrefix(values []string, prefix string) []string {
	prefixed := make([]string, 0, len(values))
	for _, v := range DedupeAndTrim(values) {
		if !strings.HasPrefix(v, prefix) {
			v = prefix + v
		}
		prefixed = append(prefixed, v)
	}
	return DedupeAndTrim(prefixed)
}
