package api

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curecircle/curecircle-server/internal/auth"
	"github.com/curecircle/curecircle-server/internal/config"
	"github.com/curecircle/curecircle-server/internal/export"
	"github.com/curecircle/curecircle-server/internal/liveness"
	"github.com/curecircle/curecircle-server/internal/media/images"
	"github.com/curecircle/curecircle-server/internal/music"
	"github.com/curecircle/curecircle-server/internal/render"
	"github.com/curecircle/curecircle-server/internal/service"
	"github.com/curecircle/curecircle-server/internal/store"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

type testServer struct {
	server *Server
	api    humatest.TestAPI
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	st, err := store.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	tokens, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	storage, err := images.NewStorage(t.TempDir(), "http://localhost:8080/media")
	require.NoError(t, err)

	checker := liveness.NewChecker(config.LivenessConfig{Timeout: time.Second}, logger)
	repairer := liveness.NewRepairer(checker, st, nil, logger)

	renderer := render.NewCompositor(render.NewHTTPFetcher(time.Second), "", logger)
	exports := export.New(renderer, storage, "http://localhost:8080", time.Second, logger)

	services := &Services{
		Auth:     service.NewAuthService(st, tokens, logger),
		Card:     service.NewCardService(st, repairer, logger),
		Profile:  service.NewProfileService(st, repairer, logger),
		Gallery:  service.NewGalleryService(storage, logger),
		Playlist: service.NewPlaylistService(st, music.NewClient(config.MusicConfig{}, logger), logger),
	}

	cfg := &config.Config{}
	cfg.Server.CORSOrigins = []string{"*"}

	s := NewServer(cfg, st, services, storage, renderer, exports, logger)

	return &testServer{
		server: s,
		api:    humatest.Wrap(t, s.api),
	}
}

// registerUser creates an account through the API and returns a Bearer header.
func registerUser(t *testing.T, ts *testServer) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "honoka@example.com",
		"password":     "white-thunder",
		"display_name": "Honoka",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope struct {
		Data AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.AccessToken)
	return "Authorization: Bearer " + envelope.Data.AccessToken
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		V       int            `json:"v"`
		Success bool           `json:"success"`
		Data    HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, EnvelopeVersion, envelope.V)
	assert.True(t, envelope.Success)
	assert.Equal(t, "healthy", envelope.Data.Status)
}

func TestAuthFlow(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := registerUser(t, ts)

	resp := ts.api.Get("/api/v1/users/me", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data IdentityResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "Honoka", envelope.Data.DisplayName)
}

func TestGetCard_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/card")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	var envelope struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
}

func TestGetCard_SeedsDefaults(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := registerUser(t, ts)

	resp := ts.api.Get("/api/v1/card", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "Honoka", envelope.Data["display_name"])
	assert.Len(t, envelope.Data["marks"], 1)
}

func TestSaveCard_InvalidBackgroundRejected(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := registerUser(t, ts)

	resp := ts.api.Put("/api/v1/card", authHeader, map[string]any{
		"background": map[string]any{"mode": "image"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestPublicProfile_UnknownToken(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/public/share-nope")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestShareLink_StableAcrossCalls(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := registerUser(t, ts)

	first := ts.api.Post("/api/v1/profile/share", authHeader)
	require.Equal(t, http.StatusOK, first.Code)
	second := ts.api.Post("/api/v1/profile/share", authHeader)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b struct {
		Data ShareLinkResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a.Data.ShareToken, b.Data.ShareToken)

	// The minted token resolves publicly.
	resp := ts.api.Get("/api/v1/public/" + a.Data.ShareToken)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestCatalog_Gradients(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/catalog/gradients")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data struct {
			Gradients []map[string]any `json:"gradients"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.Gradients)
	assert.Equal(t, "futari_wa", envelope.Data.Gradients[0]["id"])
}

func TestMusicSearch_WithoutCredentials(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := registerUser(t, ts)

	resp := ts.api.Get("/api/v1/music/search?q=precure", authHeader)
	assert.Equal(t, http.StatusBadGateway, resp.Code)
}
