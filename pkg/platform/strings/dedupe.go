// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty values from a slice,
// trimming whitespace from each element. Order is preserved.
// Works on any string-backed type so enum slices can be cleaned in place.
//
// Example:
//
//	DedupeAndTrim([]string{"  daily_log ", "activity_log", "daily_log", "", "  "})
//	// Returns: []string{"daily_log", "activity_log"}
func DedupeAndTrim[S ~string](values []S) []S {
	return dedupe(values, strings.TrimSpace)
}

// DedupeAndTrimLower is like DedupeAndTrim but also lowercases each element.
// Symptom and activity names are compared this way.
func DedupeAndTrimLower[S ~string](values []S) []S {
	return dedupe(values, func(s string) string { return strings.ToLower(strings.TrimSpace(s)) })
}

// NormalizeName trims and lowercases a single name.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func dedupe[S ~string](values []S, norm func(string) string) []S {
	if len(values) == 0 {
		return values
	}

	seen := make(map[S]struct{}, len(values))
	result := make([]S, 0, len(values))

	for _, v := range values {
		n := S(norm(string(v)))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			result = append(result, n)
		}
	}

	return result
}
