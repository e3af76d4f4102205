// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
)

var (
	// Matches spaces, dashes, and slashes (for replacement with underscores).
	wordSeparatorRe = regexp.MustCompile(`[\s\-/]+`)
	// Matches non-alphanumeric characters (except underscores).
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9_]`)
	// Matches multiple consecutive underscores.
	multipleUnderscoreRe = regexp.MustCompile(`_+`)
)

// NormalizeSeriesSlug converts a user-entered series name to the canonical
// catalog key form. Catalog keys are lowercase with underscores, so typed
// names like "Splash Star" resolve to the "splash_star" crest.
//
// Normalization rules:
//  1. Trim whitespace and lowercase
//  2. Replace spaces, dashes, and slashes with underscores
//  3. Remove non-alphanumeric characters (except underscores)
//  4. Collapse multiple underscores
//  5. Trim leading/trailing underscores
//
// Examples:
//
//	"Splash Star"      → "splash_star"
//	"splash-star"      → "splash_star"
//	"SPLASH STAR!"     → "splash_star"
//	"  Futari  wa "    → "futari_wa"
func NormalizeSeriesSlug(input string) string {
	// 1. Trim and lowercase
	s := strings.ToLower(strings.TrimSpace(input))

	// 2. Replace word separators (spaces, dashes, slashes) with underscores
	s = wordSeparatorRe.ReplaceAllString(s, "_")

	// 3. Remove non-alphanumeric (except underscores)
	s = nonAlphanumericRe.ReplaceAllString(s, "")

	// 4. Collapse multiple underscores
	s = multipleUnderscoreRe.ReplaceAllString(s, "_")

	// 5. Trim leading/trailing underscores
	return strings.Trim(s, "_")
}
