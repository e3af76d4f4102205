package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/curecircle/curecircle-server/internal/domain"
)

func userKey(id string) []byte {
	return fmt.Appendf(nil, "user:%s", id)
}

func userEmailKey(email string) []byte {
	return fmt.Appendf(nil, "user:idx:email:%s", normalizeEmail(email))
}

// normalizeEmail lowercases and trims an email for case-insensitive lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// userRecord is the persisted user shape. The password hash is excluded
// from the domain type's JSON so it never leaves the server; the store
// persists it explicitly.
type userRecord struct {
	ID           string              `json:"id"`
	Email        string              `json:"email"`
	PasswordHash string              `json:"password_hash,omitempty"`
	Provider     domain.AuthProvider `json:"provider"`
	DisplayName  string              `json:"display_name"`
	AvatarURL    string              `json:"avatar_url,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func toUserRecord(u *domain.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Provider:     u.Provider,
		DisplayName:  u.DisplayName,
		AvatarURL:    u.AvatarURL,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Provider:     r.Provider,
		DisplayName:  r.DisplayName,
		AvatarURL:    r.AvatarURL,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// CreateUser stores a new user. The email must be unused; a duplicate
// surfaces ErrConflict.
func (s *Store) CreateUser(user *domain.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	data, err := json.Marshal(toUserRecord(user))
	if err != nil {
		return ErrInternal.WithMessage("failed to marshal user").WithCause(err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := checkCollection(txn, collectionUsers); err != nil {
			return err
		}

		emailKey := userEmailKey(user.Email)
		if _, err := txn.Get(emailKey); err == nil {
			return ErrConflict.WithMessage("email is already registered")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set(userKey(user.ID), data); err != nil {
			return err
		}
		return txn.Set(emailKey, []byte(user.ID))
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

// GetUser loads a user by id.
func (s *Store) GetUser(id string) (*domain.User, error) {
	var record userRecord
	if err := s.get(userKey(id), &record); err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// GetUserByEmail loads a user through the case-insensitive email index.
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	id, err := s.getRaw(userEmailKey(email))
	if err != nil {
		return nil, err
	}
	return s.GetUser(string(id))
}

// UpdateUser rewrites a user record. The email index is moved when the
// email changed.
func (s *Store) UpdateUser(user *domain.User) error {
	user.UpdatedAt = time.Now()

	data, err := json.Marshal(toUserRecord(user))
	if err != nil {
		return ErrInternal.WithMessage("failed to marshal user").WithCause(err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := checkCollection(txn, collectionUsers); err != nil {
			return err
		}

		var prev userRecord
		item, err := txn.Get(userKey(user.ID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &prev)
		}); err != nil {
			return err
		}

		if normalizeEmail(prev.Email) != normalizeEmail(user.Email) {
			if err := txn.Delete(userEmailKey(prev.Email)); err != nil {
				return err
			}
			if err := txn.Set(userEmailKey(user.Email), []byte(user.ID)); err != nil {
				return err
			}
		}

		return txn.Set(userKey(user.ID), data)
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
