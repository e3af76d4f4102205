package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/curecircle/curecircle-server/internal/color"
	"github.com/curecircle/curecircle-server/internal/domain"
	domainerrors "github.com/curecircle/curecircle-server/internal/errors"
	"github.com/curecircle/curecircle-server/internal/id"
	"github.com/curecircle/curecircle-server/internal/liveness"
	"github.com/curecircle/curecircle-server/internal/normalize"
	"github.com/curecircle/curecircle-server/internal/store"
)

// ProfileService manages the user's public profile and its share token.
type ProfileService struct {
	store    *store.Store
	repairer *liveness.Repairer
	logger   *slog.Logger
}

// NewProfileService creates a profile service.
func NewProfileService(s *store.Store, repairer *liveness.Repairer, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: s, repairer: repairer, logger: logger}
}

// Get returns the user's profile, creating a default one for accounts that
// predate profiles.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.store.GetProfile(userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	user, err := s.store.GetUser(userID)
	if err != nil {
		return nil, err
	}
	profile = domain.NewProfile(user.ID, user.DisplayName)
	if err := s.store.SaveProfile(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfileRequest is a partial profile edit. Empty strings leave fields
// unchanged; pointers distinguish "clear" from "keep".
type UpdateProfileRequest struct {
	DisplayName       string  `json:"display_name" validate:"omitempty,max=40"`
	Bio               *string `json:"bio" validate:"omitempty,max=160"`
	AvatarURL         *string `json:"avatar_url" validate:"omitempty,url"`
	FavoriteCharacter *string `json:"favorite_character" validate:"omitempty,max=60"`
	FavoriteSeries    *string `json:"favorite_series" validate:"omitempty,max=80"`
}

// Update applies a partial profile edit.
func (s *ProfileService) Update(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.Profile, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != "" {
		profile.DisplayName = normalize.DisplayName(req.DisplayName)
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = *req.AvatarURL
	}
	if req.FavoriteCharacter != nil {
		profile.FavoriteCharacter = *req.FavoriteCharacter
	}
	if req.FavoriteSeries != nil {
		profile.FavoriteSeries = *req.FavoriteSeries
	}

	if err := s.store.SaveProfile(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// SetBackground sets the profile page background. Image backgrounds are
// liveness-checked up front and demoted to the default gradient when dead, so
// a broken URL never gets persisted.
func (s *ProfileService) SetBackground(ctx context.Context, userID string, spec domain.BackgroundSpec) (*domain.Profile, error) {
	if err := validateBackground(spec); err != nil {
		return nil, err
	}

	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	spec, demoted := s.repairer.RepairBackground(ctx, spec)
	if demoted {
		s.logger.Info("profile background demoted", "user_id", userID)
	}

	profile.Background = &spec
	if err := s.store.SaveProfile(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// EnsureShareToken returns the profile's share token, minting one on first
// use. The token is stable across calls.
func (s *ProfileService) EnsureShareToken(ctx context.Context, userID string) (string, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if profile.ShareToken != "" {
		return profile.ShareToken, nil
	}

	token, err := id.Generate("share")
	if err != nil {
		return "", err
	}
	profile.ShareToken = token
	if err := s.store.SaveProfile(profile); err != nil {
		return "", err
	}
	return token, nil
}

// PublicProfile is the unauthenticated view of a shared profile.
type PublicProfile struct {
	DisplayName       string                 `json:"display_name"`
	AvatarURL         string                 `json:"avatar_url,omitempty"`
	AvatarColor       string                 `json:"avatar_color,omitempty"`
	Bio               string                 `json:"bio,omitempty"`
	FavoriteCharacter string                 `json:"favorite_character,omitempty"`
	FavoriteSeries    string                 `json:"favorite_series,omitempty"`
	Background        *domain.BackgroundSpec `json:"background,omitempty"`
	Card              *domain.CardDocument   `json:"card,omitempty"`
}

// GetPublic resolves a share token to the public profile view, including the
// owner's card when one was saved.
func (s *ProfileService) GetPublic(ctx context.Context, shareToken string) (*PublicProfile, error) {
	profile, err := s.store.GetProfileByShareToken(shareToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("shared profile not found")
		}
		return nil, err
	}

	pub := &PublicProfile{
		DisplayName:       profile.DisplayName,
		AvatarURL:         profile.AvatarURL,
		Bio:               profile.Bio,
		FavoriteCharacter: profile.FavoriteCharacter,
		FavoriteSeries:    profile.FavoriteSeries,
		Background:        profile.Background,
	}
	if pub.AvatarURL == "" {
		pub.AvatarColor = color.ForUser(profile.UserID)
	}

	if card, err := s.store.GetCard(profile.UserID); err == nil {
		defaults := domain.NewDefaultCard(profile.UserID, profile.CardHints())
		pub.Card = domain.MergeSaved(defaults, card)
	}

	return pub, nil
}
