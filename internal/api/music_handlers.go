package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/curecircle/curecircle-server/internal/domain"
	"github.com/curecircle/curecircle-server/internal/service"
)

func (s *Server) registerMusicRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchTracks",
		Method:      http.MethodGet,
		Path:        "/api/v1/music/search",
		Summary:     "Search the music catalog",
		Description: "Searches the remote streaming service. Returns 502 with a failure tag when the remote API is unavailable or credentials are missing.",
		Tags:        []string{"Music"},
	}, s.handleSearchTracks)

	huma.Register(s.api, huma.Operation{
		OperationID: "createPlaylist",
		Method:      http.MethodPost,
		Path:        "/api/v1/playlists",
		Summary:     "Create a playlist",
		Tags:        []string{"Music"},
	}, s.handleCreatePlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPlaylists",
		Method:      http.MethodGet,
		Path:        "/api/v1/playlists",
		Summary:     "List my playlists",
		Tags:        []string{"Music"},
	}, s.handleListPlaylists)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPlaylist",
		Method:      http.MethodGet,
		Path:        "/api/v1/playlists/{id}",
		Summary:     "Get a playlist",
		Tags:        []string{"Music"},
	}, s.handleGetPlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePlaylist",
		Method:      http.MethodDelete,
		Path:        "/api/v1/playlists/{id}",
		Summary:     "Delete a playlist",
		Description: "Removes the local playlist. The remote mirror is left alone.",
		Tags:        []string{"Music"},
	}, s.handleDeletePlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID: "addPlaylistTracks",
		Method:      http.MethodPost,
		Path:        "/api/v1/playlists/{id}/tracks",
		Summary:     "Add tracks to a playlist",
		Description: "Appends tracks locally and pushes them to the remote mirror when one is linked. A remote failure keeps the local change and reports partial success.",
		Tags:        []string{"Music"},
	}, s.handleAddPlaylistTracks)
}

// === DTOs ===

// SearchTracksInput carries the search query.
type SearchTracksInput struct {
	Query string `query:"q" required:"true" doc:"Search query"`
}

// TrackListOutput wraps search results for Huma.
type TrackListOutput struct {
	Body struct {
		Tracks []domain.Track `json:"tracks" doc:"Matching tracks"`
	}
}

// CreatePlaylistInput wraps the playlist creation request for Huma.
type CreatePlaylistInput struct {
	Body service.CreatePlaylistRequest
}

// PlaylistOutput wraps one playlist for Huma.
type PlaylistOutput struct {
	Body domain.Playlist
}

// PlaylistListOutput wraps the playlist listing for Huma.
type PlaylistListOutput struct {
	Body struct {
		Playlists []*domain.Playlist `json:"playlists" doc:"The user's playlists"`
	}
}

// PlaylistPathInput identifies a playlist by path parameter.
type PlaylistPathInput struct {
	ID string `path:"id" doc:"Playlist ID"`
}

// AddTracksInput wraps the add-tracks request for Huma.
type AddTracksInput struct {
	ID   string `path:"id" doc:"Playlist ID"`
	Body struct {
		TrackIDs []string `json:"track_ids" validate:"required,min=1,max=100" doc:"Remote track IDs to append"`
	}
}

// AddTracksResponse reports the updated playlist plus remote sync status.
type AddTracksResponse struct {
	Playlist   domain.Playlist `json:"playlist" doc:"Updated playlist"`
	RemoteSync string          `json:"remote_sync" doc:"Remote sync outcome: ok, skipped, or failed"`
	RemoteErr  string          `json:"remote_error,omitempty" doc:"Remote failure detail when sync failed"`
}

// AddTracksOutput wraps the add-tracks response for Huma.
type AddTracksOutput struct {
	Body AddTracksResponse
}

// === Handlers ===

func (s *Server) handleSearchTracks(ctx context.Context, input *SearchTracksInput) (*TrackListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	tracks, err := s.services.Playlist.Search(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	out := &TrackListOutput{}
	out.Body.Tracks = tracks
	return out, nil
}

func (s *Server) handleCreatePlaylist(ctx context.Context, input *CreatePlaylistInput) (*PlaylistOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	playlist, err := s.services.Playlist.Create(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &PlaylistOutput{Body: *playlist}, nil
}

func (s *Server) handleListPlaylists(ctx context.Context, _ *struct{}) (*PlaylistListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	playlists, err := s.services.Playlist.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &PlaylistListOutput{}
	out.Body.Playlists = playlists
	return out, nil
}

func (s *Server) handleGetPlaylist(ctx context.Context, input *PlaylistPathInput) (*PlaylistOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	playlist, err := s.services.Playlist.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &PlaylistOutput{Body: *playlist}, nil
}

func (s *Server) handleDeletePlaylist(ctx context.Context, input *PlaylistPathInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Playlist.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Playlist deleted"}}, nil
}

func (s *Server) handleAddPlaylistTracks(ctx context.Context, input *AddTracksInput) (*AddTracksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	playlist, err := s.services.Playlist.AddTracks(ctx, userID, input.ID, input.Body.TrackIDs)
	if playlist == nil {
		return nil, err
	}

	resp := AddTracksResponse{Playlist: *playlist, RemoteSync: "ok"}
	if playlist.RemoteID == "" {
		resp.RemoteSync = "skipped"
	}
	if err != nil {
		// Local save succeeded; only the remote push failed.
		resp.RemoteSync = "failed"
		resp.RemoteErr = err.Error()
	}
	return &AddTracksOutput{Body: resp}, nil
}
