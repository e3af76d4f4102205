// Package service implements the application's use cases on top of the
// store, auth, liveness, render, export, and music packages.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/curecircle/curecircle-server/internal/auth"
	"github.com/curecircle/curecircle-server/internal/domain"
	domainerrors "github.com/curecircle/curecircle-server/internal/errors"
	"github.com/curecircle/curecircle-server/internal/id"
	"github.com/curecircle/curecircle-server/internal/normalize"
	"github.com/curecircle/curecircle-server/internal/store"
	"github.com/curecircle/curecircle-server/internal/validation"
)

// validate is the shared request validator.
var validate = validation.New()

// AuthService handles registration, login, and the token lifecycle.
type AuthService struct {
	store  *store.Store
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAuthService creates an authentication service.
func NewAuthService(s *store.Store, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{store: s, tokens: tokens, logger: logger}
}

// RegisterRequest is a new email account.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"display_name" validate:"required,max=40"`
}

// LoginRequest is an email credential pair.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult carries the issued tokens and the signed-in identity.
type AuthResult struct {
	Identity     domain.Identity `json:"identity"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	SessionID    string          `json:"session_id"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// Register creates an account plus its default profile, and signs the new
// user in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	user := &domain.User{
		ID:           id.MustGenerate("user"),
		Email:        req.Email,
		PasswordHash: hash,
		Provider:     domain.ProviderEmail,
		DisplayName:  normalize.DisplayName(req.DisplayName),
	}
	if err := s.store.CreateUser(user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, domainerrors.Conflict("an account with this email already exists")
		}
		return nil, err
	}

	if err := s.store.SaveProfile(domain.NewProfile(user.ID, user.DisplayName)); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return s.issueTokens(ctx, user)
}

// Login verifies credentials and issues tokens. Wrong email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domainerrors.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates the refresh token and issues a fresh access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, domainerrors.Unauthorized("refresh token is required")
	}

	session, err := s.store.GetSessionByRefreshHash(auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("unknown refresh token")
		}
		return nil, err
	}

	now := time.Now()
	if session.Expired(now) {
		_ = s.store.DeleteSession(session.ID)
		return nil, domainerrors.ErrTokenExpired
	}

	user, err := s.store.GetUser(session.UserID)
	if err != nil {
		return nil, err
	}

	// Rotate: the old token stops working the moment the new one exists.
	newRefresh, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	session.RefreshTokenHash = auth.HashRefreshToken(newRefresh)
	session.LastUsedAt = now
	session.ExpiresAt = now.Add(s.tokens.RefreshTokenDuration())
	if err := s.store.SaveSession(session); err != nil {
		return nil, err
	}

	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Identity:     user.Identity(),
		AccessToken:  access,
		RefreshToken: newRefresh,
		SessionID:    session.ID,
		ExpiresAt:    now.Add(s.tokens.AccessTokenDuration()),
	}, nil
}

// Logout revokes one session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.store.DeleteSession(sessionID)
}

// LogoutAll revokes every session of a user.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	return s.store.DeleteUserSessions(userID)
}

// VerifyAccess validates an access token and returns the caller's identity.
func (s *AuthService) VerifyAccess(tokenString string) (*domain.Identity, error) {
	claims, err := s.tokens.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired access token")
	}
	identity := claims.Identity()
	return &identity, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &domain.Session{
		ID:               id.MustGenerate("sess"),
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken(refresh),
		ExpiresAt:        now.Add(s.tokens.RefreshTokenDuration()),
		CreatedAt:        now,
		LastUsedAt:       now,
	}
	if err := s.store.SaveSession(session); err != nil {
		return nil, err
	}

	return &AuthResult{
		Identity:     user.Identity(),
		AccessToken:  access,
		RefreshToken: refresh,
		SessionID:    session.ID,
		ExpiresAt:    now.Add(s.tokens.AccessTokenDuration()),
	}, nil
}
