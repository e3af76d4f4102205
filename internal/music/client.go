// Package music is a thin client for the remote streaming service: track
// search and playlist mutation, with OAuth refresh-token access tokens.
// Every failure carries a machine-readable tag.
package music

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/curecircle/curecircle-server/internal/config"
	"github.com/curecircle/curecircle-server/internal/domain"
)

// tokenSlack renews the access token slightly before it actually expires.
const tokenSlack = 30 * time.Second

// Client talks to the streaming service API.
type Client struct {
	baseURL string
	http    *http.Client
	creds   config.MusicConfig
	logger  *slog.Logger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewClient builds a client from the music configuration.
func NewClient(cfg config.MusicConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		creds:   cfg,
		logger:  logger,
	}
}

// Enabled reports whether a base URL is configured.
func (c *Client) Enabled() bool { return c.baseURL != "" }

// RefreshAccessToken exchanges the refresh token for a fresh access token.
// Failures: MissingCredentials, NoRefreshToken, HTTPError:<code>, FetchError.
func (c *Client) RefreshAccessToken(ctx context.Context) (string, error) {
	if c.creds.ClientID == "" || c.creds.ClientSecret == "" {
		return "", ErrMissingCredentials
	}
	if c.creds.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.creds.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fetchError(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fetchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", httpError(resp.StatusCode, "token refresh rejected")
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := decodeBody(resp.Body, &body); err != nil {
		return "", fetchError(err)
	}

	c.mu.Lock()
	c.accessToken = body.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Debug("music access token refreshed", "expires_in_s", body.ExpiresIn)
	}
	return body.AccessToken, nil
}

// token returns a cached access token, refreshing when stale.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.accessToken != "" && time.Now().Add(tokenSlack).Before(c.expiresAt) {
		tok := c.accessToken
		c.mu.Unlock()
		return tok, nil
	}
	c.mu.Unlock()

	return c.RefreshAccessToken(ctx)
}

// Search queries the service for tracks.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Track, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "track")
	q.Set("limit", "20")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fetchError(err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fetchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(resp.StatusCode, "search rejected")
	}

	var body struct {
		Tracks struct {
			Items []struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Artists []struct {
					Name string `json:"name"`
				} `json:"artists"`
				Album struct {
					Name string `json:"name"`
				} `json:"album"`
				DurationMs int    `json:"duration_ms"`
				PreviewURL string `json:"preview_url"`
			} `json:"items"`
		} `json:"tracks"`
	}
	if err := decodeBody(resp.Body, &body); err != nil {
		return nil, fetchError(err)
	}

	tracks := make([]domain.Track, 0, len(body.Tracks.Items))
	for _, item := range body.Tracks.Items {
		artists := make([]string, 0, len(item.Artists))
		for _, a := range item.Artists {
			artists = append(artists, a.Name)
		}
		tracks = append(tracks, domain.Track{
			ID:         item.ID,
			Title:      item.Name,
			Artist:     strings.Join(artists, ", "),
			Album:      item.Album.Name,
			DurationMs: item.DurationMs,
			PreviewURL: item.PreviewURL,
		})
	}
	return tracks, nil
}

// AddTracks appends tracks to a remote playlist and returns the new
// snapshot id.
func (c *Client) AddTracks(ctx context.Context, remotePlaylistID string, trackIDs []string) (string, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string][]string{"ids": trackIDs})
	if err != nil {
		return "", fetchError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1/playlists/%s/tracks", c.baseURL, url.PathEscape(remotePlaylistID)),
		strings.NewReader(string(payload)))
	if err != nil {
		return "", fetchError(err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")
	// Mutations carry an idempotency key so a retried request cannot append
	// the same tracks twice.
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fetchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", httpError(resp.StatusCode, "playlist mutation rejected")
	}

	var body struct {
		SnapshotID string `json:"snapshot_id"`
	}
	if err := decodeBody(resp.Body, &body); err != nil {
		return "", fetchError(err)
	}
	return body.SnapshotID, nil
}

func decodeBody(r io.Reader, dest any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
