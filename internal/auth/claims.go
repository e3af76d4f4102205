package auth

import (
	"time"

	"github.com/curecircle/curecircle-server/internal/domain"
)

// AccessClaims are the claims carried by an access token. They travel
// encrypted inside v4.local tokens.
type AccessClaims struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// Identity converts the claims into the identity view handed to features.
func (c *AccessClaims) Identity() domain.Identity {
	return domain.Identity{
		UserID:      c.UserID,
		Email:       c.Email,
		DisplayName: c.DisplayName,
	}
}
