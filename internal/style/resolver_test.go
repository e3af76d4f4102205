package style

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curecircle/curecircle-server/internal/domain"
	"github.com/curecircle/curecircle-server/internal/registry"
)

func TestResolve_Deterministic(t *testing.T) {
	specs := []domain.BackgroundSpec{
		{Mode: domain.BackgroundGradient, PresetID: "smile"},
		{Mode: domain.BackgroundSolid, Color: "#ffccee"},
		{Mode: domain.BackgroundGradient, PresetID: domain.PresetCustom, Custom: &domain.CustomGradient{
			StartColor: "#ff0000", EndColor: "#0000ff", AngleDegrees: 42,
		}},
		{Mode: domain.BackgroundImage, Image: &domain.ImageBackground{
			SourceURL: "https://img.example/pic.png", Scale: 1.2,
			PositionXPercent: 30, PositionYPercent: 40, RotationDegrees: 15,
			Opacity: 0.9, FilterID: "dreamy",
		}},
	}

	for _, spec := range specs {
		a, errA := Resolve(spec)
		b, errB := Resolve(spec)
		assert.Equal(t, errA, errB)
		assert.Equal(t, a, b, "resolve must be deterministic for %+v", spec)
	}
}

func TestResolve_NamedPreset(t *testing.T) {
	got, err := Resolve(domain.BackgroundSpec{Mode: domain.BackgroundGradient, PresetID: "yes_precure5"})
	require.NoError(t, err)

	assert.Equal(t, KindFill, got.Kind)
	assert.Equal(t,
		"linear-gradient(135deg, #ff69b4 0%, #ff0000 25%, #ffd700 50%, #00ced1 75%, #9370db 100%)",
		got.CSSBackground)
}

func TestResolve_UnresolvedPresetFallsBack(t *testing.T) {
	got, err := Resolve(domain.BackgroundSpec{Mode: domain.BackgroundGradient, PresetID: "no_such_series"})
	require.NoError(t, err)

	assert.Equal(t, registry.DefaultGradient().CSS, got.CSSBackground)
}

func TestResolve_CustomGradientVerbatimAngle(t *testing.T) {
	got, err := Resolve(domain.BackgroundSpec{
		Mode:     domain.BackgroundGradient,
		PresetID: domain.PresetCustom,
		Custom:   &domain.CustomGradient{StartColor: "#ff66aa", EndColor: "#3366ff", AngleDegrees: 725},
	})
	require.NoError(t, err)

	// Degrees are taken verbatim, no normalization.
	assert.Equal(t, "linear-gradient(725deg, #ff66aa 0%, #3366ff 100%)", got.CSSBackground)
}

func TestResolve_Solid(t *testing.T) {
	got, err := Resolve(domain.BackgroundSpec{Mode: domain.BackgroundSolid, Color: "#123456"})
	require.NoError(t, err)
	assert.Equal(t, KindFill, got.Kind)
	assert.Equal(t, "#123456", got.CSSBackground)
}

func TestResolve_Image(t *testing.T) {
	got, err := Resolve(domain.BackgroundSpec{Mode: domain.BackgroundImage, Image: &domain.ImageBackground{
		SourceURL: "https://img.example/a.png", Scale: 1.5,
		PositionXPercent: 25, PositionYPercent: 75, RotationDegrees: -10,
		Opacity: 0.8, FilterID: "vintage",
	}})
	require.NoError(t, err)

	assert.Equal(t, KindImage, got.Kind)
	assert.Equal(t, "150%", got.Size)
	assert.Equal(t, "25% 75%", got.Position)
	assert.Equal(t, "rotate(-10deg)", got.RotationTransform)
	assert.Equal(t, 0.8, got.Opacity)
	assert.Equal(t, "vintage", got.FilterID)
}

func TestResolve_EmptyImageSourceSignalsDowngrade(t *testing.T) {
	_, err := Resolve(domain.BackgroundSpec{Mode: domain.BackgroundImage, Image: &domain.ImageBackground{}})
	assert.ErrorIs(t, err, ErrImageSourceEmpty)

	_, err = Resolve(domain.BackgroundSpec{Mode: domain.BackgroundImage})
	assert.ErrorIs(t, err, ErrImageSourceEmpty)
}

func TestParseGradient(t *testing.T) {
	g, err := ParseGradient("linear-gradient(135deg, #ff69b4 0%, #ff0000 25%, #ffd700 50%, #00ced1 75%, #9370db 100%)")
	require.NoError(t, err)

	assert.Equal(t, 135.0, g.AngleDegrees)
	require.Len(t, g.Stops, 5)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0x69, B: 0xb4, A: 0xff}, g.Stops[0].Color)
	assert.Equal(t, 0.25, g.Stops[1].Pos)
	assert.Equal(t, 1.0, g.Stops[4].Pos)
}

func TestParseGradient_DefaultAngleAndEvenStops(t *testing.T) {
	g, err := ParseGradient("linear-gradient(#ff0000, #00ff00, #0000ff)")
	require.NoError(t, err)

	assert.Equal(t, 180.0, g.AngleDegrees)
	require.Len(t, g.Stops, 3)
	assert.Equal(t, 0.0, g.Stops[0].Pos)
	assert.Equal(t, 0.5, g.Stops[1].Pos)
	assert.Equal(t, 1.0, g.Stops[2].Pos)
}

func TestParseGradient_Rejects(t *testing.T) {
	_, err := ParseGradient("radial-gradient(#fff, #000)")
	assert.Error(t, err)

	_, err = ParseGradient("linear-gradient(#fff)")
	assert.Error(t, err)
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#fff", color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
		{"#FF66AA", color.NRGBA{R: 0xff, G: 0x66, B: 0xaa, A: 0xff}},
		{"#ff66aa80", color.NRGBA{R: 0xff, G: 0x66, B: 0xaa, A: 0x80}},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseHexColor("pink")
	assert.Error(t, err)
	_, err = ParseHexColor("#12345")
	assert.Error(t, err)
}
