// Package normalize provides utilities for normalizing user-supplied text.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxDisplayNameLength bounds display names after normalization.
const maxDisplayNameLength = 40

// DisplayName canonicalizes a user display name: Unicode NFC normalization,
// whitespace collapsing, control character removal, and a length cap.
// Profile data arriving from OAuth providers is not trusted to be clean.
func DisplayName(s string) string {
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}

	out := strings.TrimSpace(b.String())
	if len(out) > maxDisplayNameLength {
		runes := []rune(out)
		if len(runes) > maxDisplayNameLength {
			out = string(runes[:maxDisplayNameLength])
		}
		out = strings.TrimSpace(out)
	}
	return out
}

// HexColor lowercases a hex color string and ensures a leading '#'.
// It does not validate digit content; the validation layer owns that.
func HexColor(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	return s
}
