// Package registry holds the static lookup tables for card styling: gradient
// presets, filter presets, and the crest catalog. Tables are loaded once and
// immutable; lookups never fail hard, callers fall back to the defaults.
package registry

// GradientPreset maps a short identifier to a CSS-expressible gradient.
type GradientPreset struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CSS         string `json:"css"`
}

// gradientPresets is ordered by in-universe release year; the first entry is
// the fallback default. There is exactly one copy of this table.
var gradientPresets = []GradientPreset{
	{ID: "futari_wa", DisplayName: "Futari wa", CSS: "linear-gradient(135deg, #1a1a2e 0%, #e94560 100%)"},
	{ID: "splash_star", DisplayName: "Splash Star", CSS: "linear-gradient(135deg, #ffb347 0%, #ffcc70 50%, #a8e6cf 100%)"},
	{ID: "yes_precure5", DisplayName: "Yes! Pretty Cure 5", CSS: "linear-gradient(135deg, #ff69b4 0%, #ff0000 25%, #ffd700 50%, #00ced1 75%, #9370db 100%)"},
	{ID: "fresh", DisplayName: "Fresh", CSS: "linear-gradient(135deg, #ff9ff3 0%, #feca57 100%)"},
	{ID: "heartcatch", DisplayName: "Heartcatch", CSS: "linear-gradient(135deg, #ff9a9e 0%, #fad0c4 50%, #a1c4fd 100%)"},
	{ID: "suite", DisplayName: "Suite", CSS: "linear-gradient(135deg, #fbc2eb 0%, #a6c1ee 100%)"},
	{ID: "smile", DisplayName: "Smile", CSS: "linear-gradient(135deg, #ffd3e1 0%, #fff6b7 35%, #c3f0ca 70%, #b8c6ff 100%)"},
	{ID: "dokidoki", DisplayName: "Doki Doki", CSS: "linear-gradient(135deg, #ff758c 0%, #ff7eb3 100%)"},
	{ID: "happiness_charge", DisplayName: "Happiness Charge", CSS: "linear-gradient(135deg, #89f7fe 0%, #66a6ff 100%)"},
	{ID: "go_princess", DisplayName: "Go! Princess", CSS: "linear-gradient(135deg, #fddb92 0%, #d1fdff 100%)"},
	{ID: "mahou_tsukai", DisplayName: "Maho Girls", CSS: "linear-gradient(135deg, #c471f5 0%, #fa71cd 100%)"},
	{ID: "kirakira", DisplayName: "Kirakira A La Mode", CSS: "linear-gradient(135deg, #fff1eb 0%, #ace0f9 100%)"},
	{ID: "hugtto", DisplayName: "Hugtto", CSS: "linear-gradient(135deg, #ffc3a0 0%, #ffafbd 100%)"},
	{ID: "star_twinkle", DisplayName: "Star Twinkle", CSS: "linear-gradient(135deg, #30cfd0 0%, #330867 100%)"},
	{ID: "healin_good", DisplayName: "Healin' Good", CSS: "linear-gradient(135deg, #d4fc79 0%, #96e6a1 100%)"},
	{ID: "tropical_rouge", DisplayName: "Tropical-Rouge", CSS: "linear-gradient(135deg, #f6d365 0%, #fda085 100%)"},
	{ID: "delicious_party", DisplayName: "Delicious Party", CSS: "linear-gradient(135deg, #fccb90 0%, #d57eeb 100%)"},
	{ID: "hirogaru_sky", DisplayName: "Hirogaru Sky", CSS: "linear-gradient(135deg, #a1c4fd 0%, #c2e9fb 100%)"},
	{ID: "wonderful", DisplayName: "Wonderful", CSS: "linear-gradient(135deg, #e0c3fc 0%, #8ec5fc 100%)"},
}

var gradientIndex = func() map[string]GradientPreset {
	idx := make(map[string]GradientPreset, len(gradientPresets))
	for _, p := range gradientPresets {
		idx[p.ID] = p
	}
	return idx
}()

// Gradients returns all gradient presets in display order.
func Gradients() []GradientPreset {
	out := make([]GradientPreset, len(gradientPresets))
	copy(out, gradientPresets)
	return out
}

// LookupGradient returns the preset for id.
func LookupGradient(id string) (GradientPreset, bool) {
	p, ok := gradientIndex[id]
	return p, ok
}

// DefaultGradient returns the fallback preset (the first entry).
func DefaultGradient() GradientPreset {
	return gradientPresets[0]
}
