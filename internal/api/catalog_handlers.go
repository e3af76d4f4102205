package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/curecircle/curecircle-server/internal/registry"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGradients",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/gradients",
		Summary:     "List gradient presets",
		Description: "Returns the gradient preset table in display order. The first entry is the default.",
		Tags:        []string{"Catalog"},
	}, s.handleListGradients)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCrests",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/crests",
		Summary:     "List series crests",
		Tags:        []string{"Catalog"},
	}, s.handleListCrests)
}

// GradientListOutput wraps the gradient preset table for Huma.
type GradientListOutput struct {
	Body struct {
		Gradients []registry.GradientPreset `json:"gradients" doc:"Presets in display order"`
	}
}

// CrestListOutput wraps the crest catalog for Huma.
type CrestListOutput struct {
	Body struct {
		Crests []registry.Crest `json:"crests" doc:"Available series crests"`
	}
}

func (s *Server) handleListGradients(ctx context.Context, _ *struct{}) (*GradientListOutput, error) {
	out := &GradientListOutput{}
	out.Body.Gradients = registry.Gradients()
	return out, nil
}

func (s *Server) handleListCrests(ctx context.Context, _ *struct{}) (*CrestListOutput, error) {
	out := &CrestListOutput{}
	out.Body.Crests = registry.Crests()
	return out, nil
}
