// Package style resolves background specifications into concrete style
// descriptors. Resolution is pure: the same spec always yields the same
// descriptor, so the profile-background feature and the card renderer can
// share it without drift.
package style

import (
	"errors"
	"fmt"

	"github.com/curecircle/curecircle-server/internal/domain"
	"github.com/curecircle/curecircle-server/internal/registry"
)

// ErrImageSourceEmpty signals that an image-mode spec has no source URL and
// the caller must downgrade the background to the default gradient (and
// persist the repair). Never swallowed silently.
var ErrImageSourceEmpty = errors.New("image background has empty source url")

// Kind discriminates the descriptor variants.
type Kind string

// Descriptor kinds.
const (
	KindFill  Kind = "fill"  // gradient or solid paint
	KindImage Kind = "image" // positioned external image
)

// Descriptor is the resolved, CSS-equivalent form of a background spec.
type Descriptor struct {
	Kind Kind `json:"kind"`

	// Fill fields.
	CSSBackground string `json:"css_background,omitempty"`

	// Image fields.
	ImageURL          string  `json:"image_url,omitempty"`
	Size              string  `json:"size,omitempty"`
	Position          string  `json:"position,omitempty"`
	RotationTransform string  `json:"rotation_transform,omitempty"`
	Opacity           float64 `json:"opacity,omitempty"`
	FilterID          string  `json:"filter_id,omitempty"`
}

// Resolve produces the concrete descriptor for a background spec.
//
// Unresolved gradient preset ids fall back to the registry default; that is
// log-worthy for callers but never fatal. An image spec with an empty source
// URL returns ErrImageSourceEmpty so the caller can persist the downgrade.
func Resolve(spec domain.BackgroundSpec) (Descriptor, error) {
	switch spec.Mode {
	case domain.BackgroundGradient:
		return resolveGradient(spec), nil

	case domain.BackgroundSolid:
		return Descriptor{Kind: KindFill, CSSBackground: spec.Color}, nil

	case domain.BackgroundImage:
		if spec.Image == nil || spec.Image.SourceURL == "" {
			return Descriptor{}, ErrImageSourceEmpty
		}
		img := spec.Image
		return Descriptor{
			Kind:              KindImage,
			ImageURL:          img.SourceURL,
			Size:              fmt.Sprintf("%g%%", img.Scale*100),
			Position:          fmt.Sprintf("%g%% %g%%", img.PositionXPercent, img.PositionYPercent),
			RotationTransform: fmt.Sprintf("rotate(%gdeg)", img.RotationDegrees),
			Opacity:           img.Opacity,
			FilterID:          img.FilterID,
		}, nil

	default:
		// Unknown or zero mode resolves like the default gradient.
		return Descriptor{Kind: KindFill, CSSBackground: registry.DefaultGradient().CSS}, nil
	}
}

// resolveGradient handles both named presets and custom two-stop gradients.
func resolveGradient(spec domain.BackgroundSpec) Descriptor {
	if spec.PresetID == domain.PresetCustom && spec.Custom != nil {
		c := spec.Custom
		// Angle degrees are taken verbatim; no normalization.
		css := fmt.Sprintf("linear-gradient(%gdeg, %s 0%%, %s 100%%)", c.AngleDegrees, c.StartColor, c.EndColor)
		return Descriptor{Kind: KindFill, CSSBackground: css}
	}

	preset, ok := registry.LookupGradient(spec.PresetID)
	if !ok {
		preset = registry.DefaultGradient()
	}
	return Descriptor{Kind: KindFill, CSSBackground: preset.CSS}
}
