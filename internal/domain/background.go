package domain

import "github.com/curecircle/curecircle-server/internal/registry"

// BackgroundMode discriminates the background spec variants.
type BackgroundMode string

// Background modes.
const (
	BackgroundGradient BackgroundMode = "gradient"
	BackgroundSolid    BackgroundMode = "solid"
	BackgroundImage    BackgroundMode = "image"
)

// PresetCustom selects a user-defined gradient instead of a registry preset.
const PresetCustom = "custom"

// CustomGradient is a user-defined two-stop linear gradient.
type CustomGradient struct {
	StartColor   string  `json:"start_color"`
	EndColor     string  `json:"end_color"`
	AngleDegrees float64 `json:"angle_degrees"`
}

// ImageBackground holds the image-mode background parameters.
type ImageBackground struct {
	SourceURL        string  `json:"source_url"`
	Scale            float64 `json:"scale"`
	PositionXPercent float64 `json:"position_x_percent"`
	PositionYPercent float64 `json:"position_y_percent"`
	RotationDegrees  float64 `json:"rotation_degrees"`
	Opacity          float64 `json:"opacity"`
	FilterID         string  `json:"filter_id"`
}

// BackgroundSpec is a tagged union over the three background modes. Exactly
// the fields for the active mode are meaningful; the rest stay zero.
type BackgroundSpec struct {
	Mode     BackgroundMode   `json:"mode"`
	PresetID string           `json:"preset_id,omitempty"`
	Custom   *CustomGradient  `json:"custom,omitempty"`
	Color    string           `json:"color,omitempty"`
	Image    *ImageBackground `json:"image,omitempty"`
}

// DefaultBackground returns the fallback background: the default gradient preset.
func DefaultBackground() BackgroundSpec {
	return BackgroundSpec{
		Mode:     BackgroundGradient,
		PresetID: registry.DefaultGradient().ID,
	}
}

// IsZero reports whether the spec is uninitialized (no mode set).
func (b BackgroundSpec) IsZero() bool {
	return b.Mode == ""
}

// DemoteToDefault returns the repaired form of a broken image background.
func (b BackgroundSpec) DemoteToDefault() BackgroundSpec {
	return DefaultBackground()
}
