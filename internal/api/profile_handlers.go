package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/curecircle/curecircle-server/internal/domain"
	"github.com/curecircle/curecircle-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profile",
		Summary:     "Get my profile",
		Tags:        []string{"Profile"},
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/profile",
		Summary:     "Update my profile",
		Description: "Partial update. Omitted fields are left unchanged.",
		Tags:        []string{"Profile"},
	}, s.handleUpdateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "setProfileBackground",
		Method:      http.MethodPut,
		Path:        "/api/v1/profile/background",
		Summary:     "Set my profile background",
		Description: "Image backgrounds are liveness-checked; dead images are demoted to the default gradient before saving.",
		Tags:        []string{"Profile"},
	}, s.handleSetProfileBackground)

	huma.Register(s.api, huma.Operation{
		OperationID: "createShareLink",
		Method:      http.MethodPost,
		Path:        "/api/v1/profile/share",
		Summary:     "Get my share link",
		Description: "Returns the profile's share token, minting one on first use. The token is stable across calls.",
		Tags:        []string{"Profile"},
	}, s.handleCreateShareLink)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPublicProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/public/{token}",
		Summary:     "View a shared profile",
		Description: "Unauthenticated view of a profile by its share token, including the owner's card.",
		Tags:        []string{"Profile"},
	}, s.handleGetPublicProfile)
}

// === DTOs ===

// ProfileOutput wraps a profile for Huma.
type ProfileOutput struct {
	Body domain.Profile
}

// UpdateProfileInput wraps the profile patch request for Huma.
type UpdateProfileInput struct {
	Body service.UpdateProfileRequest
}

// SetBackgroundInput wraps the background request for Huma.
type SetBackgroundInput struct {
	Body domain.BackgroundSpec
}

// ShareLinkResponse contains the share token and its public URL path.
type ShareLinkResponse struct {
	ShareToken string `json:"share_token" doc:"Stable share token"`
	Path       string `json:"path" doc:"Public API path for the shared profile"`
}

// ShareLinkOutput wraps the share link response for Huma.
type ShareLinkOutput struct {
	Body ShareLinkResponse
}

// PublicProfileInput identifies a shared profile by token.
type PublicProfileInput struct {
	Token string `path:"token" doc:"Share token"`
}

// PublicProfileOutput wraps the public profile view for Huma.
type PublicProfileOutput struct {
	Body service.PublicProfile
}

// === Handlers ===

func (s *Server) handleGetProfile(ctx context.Context, _ *struct{}) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.services.Profile.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: *profile}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.services.Profile.Update(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: *profile}, nil
}

func (s *Server) handleSetProfileBackground(ctx context.Context, input *SetBackgroundInput) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.services.Profile.SetBackground(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: *profile}, nil
}

func (s *Server) handleCreateShareLink(ctx context.Context, _ *struct{}) (*ShareLinkOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	token, err := s.services.Profile.EnsureShareToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ShareLinkOutput{Body: ShareLinkResponse{
		ShareToken: token,
		Path:       "/api/v1/public/" + token,
	}}, nil
}

func (s *Server) handleGetPublicProfile(ctx context.Context, input *PublicProfileInput) (*PublicProfileOutput, error) {
	pub, err := s.services.Profile.GetPublic(ctx, input.Token)
	if err != nil {
		return nil, err
	}
	return &PublicProfileOutput{Body: *pub}, nil
}
