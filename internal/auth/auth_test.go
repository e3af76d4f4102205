package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curecircle/curecircle-server/internal/domain"
)

const testKeyHex = "0000000000000000000000000000000000000000000000000000000000000001"

func testUser() *domain.User {
	return &domain.User{
		ID:          "user-1",
		Email:       "nozomi@example.com",
		DisplayName: "Nozomi",
		Provider:    domain.ProviderEmail,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "nozomi@example.com", claims.Email)
	assert.Equal(t, "Nozomi", claims.DisplayName)
	assert.Equal(t, "user-1", claims.Subject)

	identity := claims.Identity()
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, "Nozomi", identity.DisplayName)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, -time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestVerifyAccessToken_WrongKey(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, time.Minute, time.Hour)
	require.NoError(t, err)
	other, err := NewTokenService(strings.Repeat("ab", 32), time.Minute, time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestNewTokenService_RejectsBadKeys(t *testing.T) {
	_, err := NewTokenService("deadbeef", time.Minute, time.Hour)
	assert.Error(t, err, "short key")

	_, err = NewTokenService(strings.Repeat("zz", 32), time.Minute, time.Hour)
	assert.Error(t, err, "not hex")
}

func TestRefreshToken(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, time.Minute, time.Hour)
	require.NoError(t, err)

	a, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	b, err := svc.GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, HashRefreshToken(a), "stored form differs from the wire form")
	assert.Equal(t, HashRefreshToken(a), HashRefreshToken(a), "hashing is deterministic")
}

func TestHashPasswordAndVerify(t *testing.T) {
	hash, err := HashPassword("cure-dream-5")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword(hash, "cure-dream-5")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "cure-black")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_Rejects(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)

	_, err = HashPassword(strings.Repeat("a", 2000))
	assert.Error(t, err)
}

func TestVerifyPassword_MalformedHashIsFalse(t *testing.T) {
	ok, err := VerifyPassword("not-a-hash", "anything")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := t.TempDir()

	first, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, first, 32)

	second, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second, "key persists across restarts")
}
