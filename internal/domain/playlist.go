package domain

import "time"

// Playlist mirrors a playlist on the remote streaming service. TrackIDs is
// the locally tracked ordering; SnapshotID is the remote version marker
// returned by the last successful mutation.
type Playlist struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name"`
	RemoteID   string    `json:"remote_id,omitempty"`
	TrackIDs   []string  `json:"track_ids"`
	SnapshotID string    `json:"snapshot_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Track is a search result from the remote music API.
type Track struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	DurationMs int    `json:"duration_ms,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
}
