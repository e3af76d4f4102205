package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/curecircle/curecircle-server/internal/domain"
	domainerrors "github.com/curecircle/curecircle-server/internal/errors"
	"github.com/curecircle/curecircle-server/internal/id"
	"github.com/curecircle/curecircle-server/internal/music"
	"github.com/curecircle/curecircle-server/internal/store"
)

// PlaylistService manages locally tracked playlists and their remote mirror.
// The remote music API is optional; local CRUD works without credentials and
// remote sync failures degrade to local-only state.
type PlaylistService struct {
	store  *store.Store
	music  *music.Client
	logger *slog.Logger
}

// NewPlaylistService creates a playlist service.
func NewPlaylistService(s *store.Store, client *music.Client, logger *slog.Logger) *PlaylistService {
	return &PlaylistService{store: s, music: client, logger: logger}
}

// CreatePlaylistRequest names a new playlist.
type CreatePlaylistRequest struct {
	Name     string `json:"name" validate:"required,max=80"`
	RemoteID string `json:"remote_id" validate:"omitempty,max=64"`
}

// Create makes a new local playlist. RemoteID links it to an existing remote
// playlist for track sync.
func (s *PlaylistService) Create(ctx context.Context, ownerID string, req CreatePlaylistRequest) (*domain.Playlist, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	playlist := &domain.Playlist{
		ID:        id.MustGenerate("pl"),
		OwnerID:   ownerID,
		Name:      req.Name,
		RemoteID:  req.RemoteID,
		TrackIDs:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.SavePlaylist(playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// Get loads one playlist.
func (s *PlaylistService) Get(ctx context.Context, ownerID, playlistID string) (*domain.Playlist, error) {
	return s.store.GetPlaylist(ownerID, playlistID)
}

// List returns all of the user's playlists.
func (s *PlaylistService) List(ctx context.Context, ownerID string) ([]*domain.Playlist, error) {
	return s.store.ListPlaylists(ownerID)
}

// Delete removes a playlist. The remote mirror is left alone.
func (s *PlaylistService) Delete(ctx context.Context, ownerID, playlistID string) error {
	return s.store.DeletePlaylist(ownerID, playlistID)
}

// Search queries the remote music catalog.
func (s *PlaylistService) Search(ctx context.Context, query string) ([]domain.Track, error) {
	if query == "" {
		return nil, domainerrors.Validation("search query is required")
	}
	if !s.music.Enabled() {
		return nil, music.ErrMissingCredentials
	}
	return s.music.Search(ctx, query)
}

// AddTracks appends tracks to a playlist locally and, when the playlist has a
// remote mirror, pushes them to the remote API. A remote failure keeps the
// local change and surfaces the tagged error so the caller can report partial
// success.
func (s *PlaylistService) AddTracks(ctx context.Context, ownerID, playlistID string, trackIDs []string) (*domain.Playlist, error) {
	if len(trackIDs) == 0 {
		return nil, domainerrors.Validation("at least one track id is required")
	}

	playlist, err := s.store.GetPlaylist(ownerID, playlistID)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(playlist.TrackIDs))
	for _, id := range playlist.TrackIDs {
		existing[id] = true
	}
	var added []string
	for _, id := range trackIDs {
		if !existing[id] {
			playlist.TrackIDs = append(playlist.TrackIDs, id)
			existing[id] = true
			added = append(added, id)
		}
	}
	playlist.UpdatedAt = time.Now()

	var remoteErr error
	if playlist.RemoteID != "" && len(added) > 0 && s.music.Enabled() {
		snapshot, err := s.music.AddTracks(ctx, playlist.RemoteID, added)
		if err != nil {
			var merr *music.Error
			if !errors.As(err, &merr) {
				return nil, err
			}
			s.logger.Warn("remote playlist sync failed",
				"playlist_id", playlist.ID, "tag", merr.Tag, "error", err)
			remoteErr = err
		} else {
			playlist.SnapshotID = snapshot
		}
	}

	if err := s.store.SavePlaylist(playlist); err != nil {
		return nil, err
	}
	return playlist, remoteErr
}
