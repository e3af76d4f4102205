package store

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curecircle/curecircle-server/internal/domain"
	"github.com/curecircle/curecircle-server/internal/registry"
)

func TestCardRoundTrip(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "user-1")

	card := domain.NewDefaultCard("user-1", domain.ProfileHints{DisplayName: "Nozomi"})
	card.Title = "Pink Guardian"
	card.Background = domain.BackgroundSpec{Mode: domain.BackgroundGradient, PresetID: "smile"}

	require.NoError(t, s.SaveCard("user-1", card))

	got, err := s.GetCard("user-1")
	require.NoError(t, err)
	assert.Equal(t, "Pink Guardian", got.Title)
	assert.Equal(t, "smile", got.Background.PresetID)
	assert.Len(t, got.Marks, 1)
	assert.Len(t, got.Crests, 1)
}

func TestSaveCard_UpsertsByOwner(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "user-1")

	first := domain.NewDefaultCard("user-1", domain.ProfileHints{})
	first.Title = "First"
	require.NoError(t, s.SaveCard("user-1", first))

	second := domain.NewDefaultCard("user-1", domain.ProfileHints{})
	second.Title = "Second"
	require.NoError(t, s.SaveCard("user-1", second))

	got, err := s.GetCard("user-1")
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Title, "second save replaces the first, never duplicates")
}

func TestSaveCard_OtherOwnerIsPermissionError(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "user-1")
	createTestUser(t, s, "user-2")

	card := domain.NewDefaultCard("user-2", domain.ProfileHints{})
	err := s.SaveCard("user-1", card)

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodePermissionDenied, serr.Code)
}

func TestSaveCard_UnknownOwnerIsForeignKeyError(t *testing.T) {
	s := newTestStore(t)

	card := domain.NewDefaultCard("ghost", domain.ProfileHints{})
	err := s.SaveCard("ghost", card)

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodeForeignKey, serr.Code)
}

func TestSaveCard_MissingSchemaMarkerIsMissingTableError(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "user-1")
	dropSchemaMarker(t, s, collectionCards)

	card := domain.NewDefaultCard("user-1", domain.ProfileHints{})
	err := s.SaveCard("user-1", card)

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodeMissingTable, serr.Code)
}

func TestGetCard_NeverSavedIsNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetCard("user-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCard_MergeSavedRoundTripIsStable(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "user-1")

	defaults := domain.NewDefaultCard("user-1", domain.ProfileHints{DisplayName: "Live"})
	saved := domain.NewDefaultCard("user-1", domain.ProfileHints{DisplayName: "Live"})
	saved.Title = "Dream Keeper"
	require.NoError(t, s.SaveCard("user-1", saved))

	loaded, err := s.GetCard("user-1")
	require.NoError(t, err)

	merged := domain.MergeSaved(defaults, loaded)
	require.NoError(t, s.SaveCard("user-1", merged))

	reloaded, err := s.GetCard("user-1")
	require.NoError(t, err)
	again := domain.MergeSaved(defaults, reloaded)

	// Timestamps move on save; everything the user authored must not.
	merged.UpdatedAt = again.UpdatedAt
	merged.CreatedAt = again.CreatedAt
	assert.Equal(t, merged, again)
}

// writeRawCard plants record bytes directly, bypassing SaveCard, to simulate
// data written by an older build.
func writeRawCard(t *testing.T, s *Store, ownerID string, raw []byte) {
	t.Helper()

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cardKey(ownerID), raw)
	})
	require.NoError(t, err)
}

func TestGetCard_LegacyStringBackground(t *testing.T) {
	s := newTestStore(t)

	writeRawCard(t, s, "user-1", []byte(`{
		"owner_id": "user-1",
		"display_name": "Old Timer",
		"background": "#ffccee",
		"show_qr": true
	}`))

	got, err := s.GetCard("user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.BackgroundSolid, got.Background.Mode)
	assert.Equal(t, "#ffccee", got.Background.Color)
	assert.True(t, got.ShowQR)
}

func TestGetCard_LegacyGradientSentinel(t *testing.T) {
	s := newTestStore(t)

	writeRawCard(t, s, "user-1", []byte(`{
		"owner_id": "user-1",
		"background": "#g2"
	}`))

	got, err := s.GetCard("user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.BackgroundGradient, got.Background.Mode)
	assert.Equal(t, registry.Gradients()[2].ID, got.Background.PresetID)
}

func TestGetCard_LegacySentinelOutOfRangeFallsBack(t *testing.T) {
	s := newTestStore(t)

	writeRawCard(t, s, "user-1", []byte(`{"owner_id": "user-1", "background": "#g99"}`))

	got, err := s.GetCard("user-1")
	require.NoError(t, err)
	assert.Equal(t, registry.DefaultGradient().ID, got.Background.PresetID)
}

func TestGetCard_LegacySeriesArray(t *testing.T) {
	s := newTestStore(t)

	writeRawCard(t, s, "user-1", []byte(`{
		"owner_id": "user-1",
		"favorite_series": ["Yes! PreCure 5", "Smile PreCure!"],
		"background": {"mode": "solid", "color": "#fff"}
	}`))

	got, err := s.GetCard("user-1")
	require.NoError(t, err)
	assert.Equal(t, "Yes! PreCure 5, Smile PreCure!", got.FavoriteSeries)
}

func TestGetCard_UnreadableRecordIsMissingColumnError(t *testing.T) {
	s := newTestStore(t)

	writeRawCard(t, s, "user-1", []byte(`"just a string"`))

	_, err := s.GetCard("user-1")

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodeMissingColumn, serr.Code)
}
