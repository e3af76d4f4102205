package domain

import "time"

// Profile contains a user's public-facing customization, kept separate from
// the auth-side User record.
type Profile struct {
	UserID            string          `json:"user_id"`
	DisplayName       string          `json:"display_name"`
	AvatarURL         string          `json:"avatar_url,omitempty"`
	Bio               string          `json:"bio,omitempty"`
	FavoriteCharacter string          `json:"favorite_character,omitempty"`
	FavoriteSeries    string          `json:"favorite_series,omitempty"`
	Background        *BackgroundSpec `json:"background,omitempty"`
	ShareToken        string          `json:"share_token,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// MaxBioLength bounds the profile bio.
const MaxBioLength = 160

// NewProfile creates a default profile for a user.
func NewProfile(userID, displayName string) *Profile {
	now := time.Now()
	return &Profile{
		UserID:      userID,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CardHints extracts the live identity fields the card model treats the
// profile as source of truth for.
func (p *Profile) CardHints() ProfileHints {
	return ProfileHints{
		DisplayName:       p.DisplayName,
		FavoriteCharacter: p.FavoriteCharacter,
	}
}
