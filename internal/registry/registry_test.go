package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradientIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range Gradients() {
		assert.False(t, seen[p.ID], "duplicate gradient id %s", p.ID)
		seen[p.ID] = true
	}
}

func TestDefaultGradientIsFirstEntry(t *testing.T) {
	all := Gradients()
	require.NotEmpty(t, all)
	assert.Equal(t, all[0], DefaultGradient())
}

func TestLookupGradient(t *testing.T) {
	p, ok := LookupGradient("yes_precure5")
	require.True(t, ok)
	assert.Equal(t, "linear-gradient(135deg, #ff69b4 0%, #ff0000 25%, #ffd700 50%, #00ced1 75%, #9370db 100%)", p.CSS)

	_, ok = LookupGradient("nonexistent_series")
	assert.False(t, ok)
}

func TestLookupFilter_FallsBackToNone(t *testing.T) {
	p := LookupFilter("definitely-not-a-filter")
	assert.Equal(t, FilterNone, p.ID)
	assert.Zero(t, p.Opacity)
}

func TestLookupFilter_Known(t *testing.T) {
	p := LookupFilter("dreamy")
	assert.Equal(t, "screen", p.BlendMode)
	assert.Greater(t, p.Opacity, 0.0)
}

func TestCrestsOrderedAndStable(t *testing.T) {
	all := Crests()
	require.NotEmpty(t, all)
	assert.Equal(t, "futari_wa", all[0].ID)

	// Catalog order is fixed across calls.
	assert.Equal(t, all, Crests())

	seen := make(map[string]bool)
	for _, c := range all {
		assert.False(t, seen[c.ID], "duplicate crest id %s", c.ID)
		seen[c.ID] = true
	}
}

func TestLookupCrest(t *testing.T) {
	c, ok := LookupCrest("smile")
	require.True(t, ok)
	assert.Equal(t, "Smile", c.DisplayName)
	assert.NotEmpty(t, c.ImageURL)

	_, ok = LookupCrest("unknown")
	assert.False(t, ok)
}
