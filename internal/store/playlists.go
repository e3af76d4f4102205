package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/curecircle/curecircle-server/internal/domain"
)

func playlistKey(ownerID, id string) []byte {
	return fmt.Appendf(nil, "playlist:%s:%s", ownerID, id)
}

func playlistPrefix(ownerID string) []byte {
	return fmt.Appendf(nil, "playlist:%s:", ownerID)
}

// SavePlaylist upserts a playlist. The owner must exist as a user record.
func (s *Store) SavePlaylist(playlist *domain.Playlist) error {
	if playlist.OwnerID == "" {
		return ErrMissingColumn.WithMessage("playlist record has no owner id")
	}

	data, err := json.Marshal(playlist)
	if err != nil {
		return ErrInternal.WithMessage("failed to marshal playlist").WithCause(err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := checkCollection(txn, collectionPlaylists); err != nil {
			return err
		}

		ok, err := userExists(txn, playlist.OwnerID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrForeignKey.WithMessage(
				fmt.Sprintf("playlist owner %q does not exist", playlist.OwnerID))
		}

		return txn.Set(playlistKey(playlist.OwnerID, playlist.ID), data)
	})

	var serr *Error
	if errors.As(err, &serr) {
		return serr
	}
	if err != nil {
		return ErrInternal.WithCause(err)
	}
	return nil
}

// GetPlaylist loads one playlist owned by ownerID.
func (s *Store) GetPlaylist(ownerID, id string) (*domain.Playlist, error) {
	var playlist domain.Playlist
	if err := s.get(playlistKey(ownerID, id), &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// ListPlaylists returns every playlist owned by ownerID.
func (s *Store) ListPlaylists(ownerID string) ([]*domain.Playlist, error) {
	var out []*domain.Playlist

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = playlistPrefix(ownerID)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var playlist domain.Playlist
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &playlist)
			})
			if err != nil {
				return err
			}
			out = append(out, &playlist)
		}
		return nil
	})
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}

	return out, nil
}

// DeletePlaylist removes one playlist. Missing playlists are a no-op.
func (s *Store) DeletePlaylist(ownerID, id string) error {
	return s.delete(playlistKey(ownerID, id))
}
