package store

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curecircle/curecircle-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func createTestUser(t *testing.T, s *Store, id string) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:          id,
		Email:       id + "@example.com",
		Provider:    domain.ProviderEmail,
		DisplayName: "Test " + id,
	}
	require.NoError(t, s.CreateUser(user))
	return user
}

// dropSchemaMarker simulates a data directory from an incompatible build.
func dropSchemaMarker(t *testing.T, s *Store, collection string) {
	t.Helper()

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(schemaKey(collection))
	})
	require.NoError(t, err)
}

func TestCreateUser_DuplicateEmailConflicts(t *testing.T) {
	s := newTestStore(t)

	createTestUser(t, s, "user-1")

	dup := &domain.User{ID: "user-2", Email: "User-1@Example.com", Provider: domain.ProviderEmail}
	err := s.CreateUser(dup)

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodeConflict, serr.Code)
}

func TestGetUserByEmail_CaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "user-1")

	got, err := s.GetUserByEmail("USER-1@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)
}

func TestUserRoundTrip_KeepsPasswordHash(t *testing.T) {
	s := newTestStore(t)

	user := &domain.User{
		ID:           "user-1",
		Email:        "user-1@example.com",
		PasswordHash: "$argon2id$v=19$...",
		Provider:     domain.ProviderEmail,
	}
	require.NoError(t, s.CreateUser(user))

	got, err := s.GetUser("user-1")
	require.NoError(t, err)
	assert.Equal(t, "$argon2id$v=19$...", got.PasswordHash)
}

func TestUpdateUser_MovesEmailIndex(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "user-1")

	user.Email = "renamed@example.com"
	require.NoError(t, s.UpdateUser(user))

	got, err := s.GetUserByEmail("renamed@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)

	_, err = s.GetUserByEmail("user-1@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRoundTrip_KeepsRefreshHash(t *testing.T) {
	s := newTestStore(t)

	session := &domain.Session{
		ID:               "sess-1",
		UserID:           "user-1",
		RefreshTokenHash: "hash-value",
		ExpiresAt:        time.Now().Add(time.Hour),
		CreatedAt:        time.Now(),
	}
	require.NoError(t, s.SaveSession(session))

	got, err := s.GetSession("sess-1")
	require.NoError(t, err)
	assert.Equal(t, "hash-value", got.RefreshTokenHash)
	assert.Equal(t, "user-1", got.UserID)
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	require.NoError(t, s.SaveSession(&domain.Session{
		ID: "live", UserID: "u", ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, s.SaveSession(&domain.Session{
		ID: "stale", UserID: "u", ExpiresAt: now.Add(-time.Hour),
	}))

	removed, err := s.DeleteExpiredSessions(now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = s.GetSession("live")
	assert.NoError(t, err)
	_, err = s.GetSession("stale")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteUserSessions(t *testing.T) {
	s := newTestStore(t)
	exp := time.Now().Add(time.Hour)

	require.NoError(t, s.SaveSession(&domain.Session{ID: "a", UserID: "user-1", ExpiresAt: exp}))
	require.NoError(t, s.SaveSession(&domain.Session{ID: "b", UserID: "user-1", ExpiresAt: exp}))
	require.NoError(t, s.SaveSession(&domain.Session{ID: "c", UserID: "user-2", ExpiresAt: exp}))

	require.NoError(t, s.DeleteUserSessions("user-1"))

	_, err := s.GetSession("a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetSession("c")
	assert.NoError(t, err)
}

func TestPlaylists(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "user-1")

	require.NoError(t, s.SavePlaylist(&domain.Playlist{
		ID: "pl-1", OwnerID: "user-1", Name: "Openings", TrackIDs: []string{"t1", "t2"},
	}))
	require.NoError(t, s.SavePlaylist(&domain.Playlist{
		ID: "pl-2", OwnerID: "user-1", Name: "Endings",
	}))

	got, err := s.GetPlaylist("user-1", "pl-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, got.TrackIDs)

	all, err := s.ListPlaylists("user-1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.DeletePlaylist("user-1", "pl-1"))
	all, err = s.ListPlaylists("user-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSavePlaylist_UnknownOwnerIsForeignKeyError(t *testing.T) {
	s := newTestStore(t)

	err := s.SavePlaylist(&domain.Playlist{ID: "pl-1", OwnerID: "ghost"})

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodeForeignKey, serr.Code)
}

func TestProfileShareToken(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveProfile(&domain.Profile{
		UserID: "user-1", DisplayName: "Nozomi", ShareToken: "tok-abc",
	}))

	got, err := s.GetProfileByShareToken("tok-abc")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)

	require.NoError(t, s.DeleteProfile("user-1"))
	_, err = s.GetProfileByShareToken("tok-abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestErrorCodeHTTPStatus(t *testing.T) {
	assert.Equal(t, 404, CodeNotFound.HTTPStatus())
	assert.Equal(t, 403, CodePermissionDenied.HTTPStatus())
	assert.Equal(t, 409, CodeConflict.HTTPStatus())
	assert.Equal(t, 422, CodeForeignKey.HTTPStatus())
	assert.Equal(t, 500, CodeMissingTable.HTTPStatus())
	assert.Equal(t, 500, CodeMissingColumn.HTTPStatus())
}

func TestErrorIs_MatchesByCode(t *testing.T) {
	wrapped := ErrPermissionDenied.WithMessage("custom message").WithCause(assert.AnError)
	assert.ErrorIs(t, wrapped, ErrPermissionDenied)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
}
