package domain

import "time"

// AuthProvider identifies how an account authenticates.
type AuthProvider string

// Supported auth providers.
const (
	ProviderEmail AuthProvider = "email"
	ProviderOAuth AuthProvider = "oauth"
)

// User is an account record. OAuth accounts have no password hash.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Provider     AuthProvider `json:"provider"`
	DisplayName  string       `json:"display_name"`
	AvatarURL    string       `json:"avatar_url,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Identity is the opaque current-user identity handed to downstream features.
type Identity struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Identity returns the user's identity view.
func (u *User) Identity() Identity {
	return Identity{
		UserID:      u.ID,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Email:       u.Email,
	}
}
