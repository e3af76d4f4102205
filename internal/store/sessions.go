package store

import (
	"encoding/json/v2"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/curecircle/curecircle-server/internal/domain"
)

func sessionKey(id string) []byte {
	return fmt.Appendf(nil, "session:%s", id)
}

// sessionRecord is the persisted session shape. The refresh token hash is
// excluded from the domain type's JSON so it never leaves the server; the
// store persists it explicitly.
type sessionRecord struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastUsedAt       time.Time `json:"last_used_at"`
}

func toSessionRecord(s *domain.Session) sessionRecord {
	return sessionRecord{
		ID:               s.ID,
		UserID:           s.UserID,
		RefreshTokenHash: s.RefreshTokenHash,
		ExpiresAt:        s.ExpiresAt,
		CreatedAt:        s.CreatedAt,
		LastUsedAt:       s.LastUsedAt,
	}
}

func (r sessionRecord) toDomain() *domain.Session {
	return &domain.Session{
		ID:               r.ID,
		UserID:           r.UserID,
		RefreshTokenHash: r.RefreshTokenHash,
		ExpiresAt:        r.ExpiresAt,
		CreatedAt:        r.CreatedAt,
		LastUsedAt:       r.LastUsedAt,
	}
}

// SaveSession upserts a refresh session.
func (s *Store) SaveSession(session *domain.Session) error {
	return s.set(collectionSessions, sessionKey(session.ID), toSessionRecord(session))
}

// GetSession loads a session by id.
func (s *Store) GetSession(id string) (*domain.Session, error) {
	var record sessionRecord
	if err := s.get(sessionKey(id), &record); err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// GetSessionByRefreshHash finds the session holding the given refresh token
// hash. Sessions are few per user, so a prefix scan is fine here.
func (s *Store) GetSessionByRefreshHash(hash string) (*domain.Session, error) {
	var found *domain.Session

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("session:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var record sessionRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				continue
			}
			if record.RefreshTokenHash == hash {
				found = record.toDomain()
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// DeleteSession removes a session by id.
func (s *Store) DeleteSession(id string) error {
	return s.delete(sessionKey(id))
}

// DeleteUserSessions removes every session belonging to userID, for logout
// everywhere and account deletion.
func (s *Store) DeleteUserSessions(userID string) error {
	return s.deleteSessionsWhere(func(sess *domain.Session) bool {
		return sess.UserID == userID
	})
}

// DeleteExpiredSessions removes sessions whose refresh grant lapsed before
// now. Returns the number of sessions removed.
func (s *Store) DeleteExpiredSessions(now time.Time) (int, error) {
	removed := 0
	err := s.deleteSessionsWhere(func(sess *domain.Session) bool {
		if sess.Expired(now) {
			removed++
			return true
		}
		return false
	})
	return removed, err
}

func (s *Store) deleteSessionsWhere(match func(*domain.Session) bool) error {
	var doomed [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("session:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var record sessionRecord
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				continue // skip unreadable records, do not fail the sweep
			}
			if match(record.toDomain()) {
				doomed = append(doomed, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return ErrInternal.WithCause(err)
	}

	for _, key := range doomed {
		if err := s.delete(key); err != nil {
			return err
		}
	}
	return nil
}
