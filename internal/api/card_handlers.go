package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/curecircle/curecircle-server/internal/domain"
	"github.com/curecircle/curecircle-server/internal/service"
)

func (s *Server) registerCardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCard",
		Method:      http.MethodGet,
		Path:        "/api/v1/card",
		Summary:     "Get my card",
		Description: "Returns the effective card: saved state merged over profile-seeded defaults. First-time visitors get defaults without a write.",
		Tags:        []string{"Card"},
	}, s.handleGetCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveCard",
		Method:      http.MethodPut,
		Path:        "/api/v1/card",
		Summary:     "Save my card",
		Description: "Replaces the saved card document. Out-of-range coordinates are clamped, not rejected.",
		Tags:        []string{"Card"},
	}, s.handleSaveCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "addMark",
		Method:      http.MethodPost,
		Path:        "/api/v1/card/marks",
		Summary:     "Add a decorative mark",
		Tags:        []string{"Card"},
	}, s.handleAddMark)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeMark",
		Method:      http.MethodDelete,
		Path:        "/api/v1/card/marks/{id}",
		Summary:     "Remove a decorative mark",
		Tags:        []string{"Card"},
	}, s.handleRemoveMark)

	huma.Register(s.api, huma.Operation{
		OperationID: "addCrest",
		Method:      http.MethodPost,
		Path:        "/api/v1/card/crests",
		Summary:     "Add a series crest",
		Tags:        []string{"Card"},
	}, s.handleAddCrest)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeCrest",
		Method:      http.MethodDelete,
		Path:        "/api/v1/card/crests/{id}",
		Summary:     "Remove a series crest",
		Tags:        []string{"Card"},
	}, s.handleRemoveCrest)

	huma.Register(s.api, huma.Operation{
		OperationID: "repositionElement",
		Method:      http.MethodPost,
		Path:        "/api/v1/card/position",
		Summary:     "Move a mark or crest",
		Description: "Moves an element to new percent coordinates. Unknown element IDs are a no-op so a drag racing a delete never fails.",
		Tags:        []string{"Card"},
	}, s.handleReposition)
}

// === DTOs ===

// CardOutput wraps a card document for Huma.
type CardOutput struct {
	Body domain.CardDocument
}

// SaveCardInput wraps the card save request for Huma.
type SaveCardInput struct {
	Body service.SaveCardRequest
}

// AddMarkInput wraps the add-mark request for Huma.
type AddMarkInput struct {
	Body struct {
		Kind string `json:"kind" validate:"required,oneof=heart star sparkle" doc:"Mark shape"`
	}
}

// AddCrestInput wraps the add-crest request for Huma.
type AddCrestInput struct {
	Body struct {
		CrestID string `json:"crest_id" validate:"required,max=60" doc:"Series crest ID from the catalog"`
	}
}

// ElementPathInput identifies a card element by path parameter.
type ElementPathInput struct {
	ID string `path:"id" doc:"Element ID"`
}

// RepositionInput wraps the reposition request for Huma.
type RepositionInput struct {
	Body struct {
		ElementID string  `json:"element_id" validate:"required,max=60" doc:"Mark or crest ID"`
		XPercent  float64 `json:"x_percent" doc:"Horizontal position in percent of card width"`
		YPercent  float64 `json:"y_percent" doc:"Vertical position in percent of card height"`
	}
}

// === Handlers ===

func (s *Server) handleGetCard(ctx context.Context, _ *struct{}) (*CardOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	card, err := s.services.Card.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: *card}, nil
}

func (s *Server) handleSaveCard(ctx context.Context, input *SaveCardInput) (*CardOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	card, err := s.services.Card.Save(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: *card}, nil
}

func (s *Server) handleAddMark(ctx context.Context, input *AddMarkInput) (*CardOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	card, err := s.services.Card.AddMark(ctx, userID, domain.MarkKind(input.Body.Kind))
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: *card}, nil
}

func (s *Server) handleRemoveMark(ctx context.Context, input *ElementPathInput) (*CardOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	card, err := s.services.Card.RemoveMark(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: *card}, nil
}

func (s *Server) handleAddCrest(ctx context.Context, input *AddCrestInput) (*CardOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	card, err := s.services.Card.AddCrest(ctx, userID, input.Body.CrestID)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: *card}, nil
}

func (s *Server) handleRemoveCrest(ctx context.Context, input *ElementPathInput) (*CardOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	card, err := s.services.Card.RemoveCrest(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: *card}, nil
}

func (s *Server) handleReposition(ctx context.Context, input *RepositionInput) (*CardOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	card, err := s.services.Card.Reposition(ctx, userID, input.Body.ElementID, input.Body.XPercent, input.Body.YPercent)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: *card}, nil
}
