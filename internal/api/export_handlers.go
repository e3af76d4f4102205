package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/curecircle/curecircle-server/internal/export"
)

func (s *Server) registerExportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "exportCard",
		Method:      http.MethodPost,
		Path:        "/api/v1/card/export",
		Summary:     "Export my card as a shareable image",
		Description: "Captures the card as a PNG. Falls back to a lower-resolution capture when images fail, and to a copyable share URL when both captures fail. Returns 409 while a capture is already running.",
		Tags:        []string{"Export"},
	}, s.handleExportCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "getExportState",
		Method:      http.MethodGet,
		Path:        "/api/v1/card/export/state",
		Summary:     "Get my export state",
		Tags:        []string{"Export"},
	}, s.handleGetExportState)

	huma.Register(s.api, huma.Operation{
		OperationID: "releaseExport",
		Method:      http.MethodDelete,
		Path:        "/api/v1/card/export/{token}",
		Summary:     "Release an exported image",
		Description: "Deletes the temporary export blob once the client has downloaded or shared it.",
		Tags:        []string{"Export"},
	}, s.handleReleaseExport)
}

// === DTOs ===

// ExportOutput wraps the export result for Huma.
type ExportOutput struct {
	Body export.Result
}

// ExportStateOutput wraps the export state for Huma.
type ExportStateOutput struct {
	Body struct {
		State export.State `json:"state" doc:"Current export state"`
	}
}

// ExportTokenInput identifies an export blob by share token.
type ExportTokenInput struct {
	Token string `path:"token" doc:"Share token the export was captured for"`
}

// === Handlers ===

func (s *Server) handleExportCard(ctx context.Context, _ *struct{}) (*ExportOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	card, err := s.services.Card.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	token, err := s.services.Profile.EnsureShareToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.exports.Export(ctx, card, token)
	if err != nil {
		return nil, err
	}
	return &ExportOutput{Body: *result}, nil
}

func (s *Server) handleGetExportState(ctx context.Context, _ *struct{}) (*ExportStateOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	out := &ExportStateOutput{}
	out.Body.State = s.exports.State(userID)
	return out, nil
}

func (s *Server) handleReleaseExport(ctx context.Context, input *ExportTokenInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	// Only the token's owner may release its blob.
	token, err := s.services.Profile.EnsureShareToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	if token != input.Token {
		return nil, huma.Error403Forbidden("Not your export")
	}

	if err := s.exports.Release("exports/" + input.Token + ".png"); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Export released"}}, nil
}
