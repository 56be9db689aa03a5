// Package util provides common utility functions used across the codebase.
package util

import "strings"

// JoinOrDefault joins strings with ", " or returns the default value for empty slices.
// Useful for displaying lists of hosts or device types where an empty list should
// show a placeholder rather than nothing.
func JoinOrDefault(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}

// Pluralize returns singular if count is 1, otherwise plural.
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}
