package util

import "testing"

func TestNormalizeSeriesSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		// Basic normalization
		{"lowercase", "HEARTCATCH", "heartcatch"},
		{"spaces to underscores", "splash star", "splash_star"},
		{"dashes to underscores", "splash-star", "splash_star"},
		{"already normalized", "splash_star", "splash_star"},

		// Whitespace handling
		{"trim whitespace", "  heartcatch  ", "heartcatch"},
		{"multiple spaces", "splash   star", "splash_star"},
		{"tabs and spaces", "splash\t star", "splash_star"},

		// Special characters
		{"emoji removal", "✨ Sparkle!", "sparkle"},
		{"punctuation removal", "yes!5", "yes5"},
		{"apostrophe removal", "max's heart", "maxs_heart"},

		// Underscore handling
		{"multiple underscores", "splash__star", "splash_star"},
		{"leading underscores", "__heartcatch", "heartcatch"},
		{"trailing underscores", "heartcatch__", "heartcatch"},
		{"mixed separators", "--splash--star--", "splash_star"},

		// Edge cases
		{"empty string", "", ""},
		{"only spaces", "   ", ""},
		{"only special chars", "!@#$%", ""},
		{"numbers allowed", "yes5", "yes5"},
		{"mixed case with numbers", "Yes 5 GoGo", "yes_5_gogo"},

		// Real-world examples
		{"futari wa", "Futari wa", "futari_wa"},
		{"splash star typed", "Splash Star", "splash_star"},
		{"fresh", "FRESH", "fresh"},
		{"smile typed with dash", "Smile-Precure", "smile_precure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeSeriesSlug(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeSeriesSlug(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
