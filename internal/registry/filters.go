package registry

// FilterPreset describes a decorative overlay applied above an image
// background: a wash color or gradient combined with a blend mode and opacity.
type FilterPreset struct {
	ID         string  `json:"id"`
	Background string  `json:"background"` // solid hex or linear-gradient string
	BlendMode  string  `json:"blend_mode"` // normal, multiply, screen, overlay
	Opacity    float64 `json:"opacity"`
}

// FilterNone is the sentinel meaning "render no overlay".
const FilterNone = "none"

var filterPresets = map[string]FilterPreset{
	FilterNone:  {ID: FilterNone, Background: "", BlendMode: "normal", Opacity: 0},
	"dreamy":    {ID: "dreamy", Background: "linear-gradient(180deg, #ffb7d5 0%, #b7c9ff 100%)", BlendMode: "screen", Opacity: 0.55},
	"vivid":     {ID: "vivid", Background: "#ff2e93", BlendMode: "overlay", Opacity: 0.4},
	"vintage":   {ID: "vintage", Background: "#704214", BlendMode: "multiply", Opacity: 0.35},
	"moonlight": {ID: "moonlight", Background: "linear-gradient(180deg, #0f2027 0%, #2c5364 100%)", BlendMode: "multiply", Opacity: 0.5},
	"sakura":    {ID: "sakura", Background: "#ffd1e8", BlendMode: "screen", Opacity: 0.45},
}

// LookupFilter returns the preset for id, falling back to the "none" sentinel
// when unresolved. Never fails.
func LookupFilter(id string) FilterPreset {
	if p, ok := filterPresets[id]; ok {
		return p
	}
	return filterPresets[FilterNone]
}

// FilterExists reports whether id is a known filter preset.
func FilterExists(id string) bool {
	_, ok := filterPresets[id]
	return ok
}
