package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/curecircle/curecircle-server/internal/domain"
)

func profileKey(userID string) []byte {
	return fmt.Appendf(nil, "profile:%s", userID)
}

func shareTokenKey(token string) []byte {
	return fmt.Appendf(nil, "profile:idx:share:%s", token)
}

// GetProfile loads the profile for a user.
func (s *Store) GetProfile(userID string) (*domain.Profile, error) {
	var profile domain.Profile
	if err := s.get(profileKey(userID), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfileByShareToken resolves a public share token to its profile.
func (s *Store) GetProfileByShareToken(token string) (*domain.Profile, error) {
	var userID string
	if err := s.get(shareTokenKey(token), &userID); err != nil {
		return nil, err
	}
	return s.GetProfile(userID)
}

// SaveProfile upserts a profile and its share-token index.
func (s *Store) SaveProfile(profile *domain.Profile) error {
	profile.UpdatedAt = time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = profile.UpdatedAt
	}

	if err := s.set(collectionProfiles, profileKey(profile.UserID), profile); err != nil {
		return err
	}

	if profile.ShareToken != "" {
		return s.set(collectionProfiles, shareTokenKey(profile.ShareToken), profile.UserID)
	}
	return nil
}

// DeleteProfile removes a profile and its share-token index.
func (s *Store) DeleteProfile(userID string) error {
	profile, err := s.GetProfile(userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	if profile.ShareToken != "" {
		if err := s.delete(shareTokenKey(profile.ShareToken)); err != nil {
			return err
		}
	}
	return s.delete(profileKey(userID))
}
