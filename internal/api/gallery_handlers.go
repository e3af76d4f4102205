package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/curecircle/curecircle-server/internal/service"
)

func (s *Server) registerGalleryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "uploadGalleryImage",
		Method:      http.MethodPost,
		Path:        "/api/v1/gallery",
		Summary:     "Upload a gallery image",
		Description: "Accepts PNG, JPEG, GIF, or WebP up to 8 MiB. Oversized images are downscaled and everything is re-encoded as PNG.",
		Tags:        []string{"Gallery"},
	}, s.handleUploadGalleryImage)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGalleryImages",
		Method:      http.MethodGet,
		Path:        "/api/v1/gallery",
		Summary:     "List my gallery",
		Description: "Returns the user's uploads for the background picker, newest first.",
		Tags:        []string{"Gallery"},
	}, s.handleListGalleryImages)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteGalleryImage",
		Method:      http.MethodDelete,
		Path:        "/api/v1/gallery/{file}",
		Summary:     "Delete a gallery image",
		Tags:        []string{"Gallery"},
	}, s.handleDeleteGalleryImage)
}

// === DTOs ===

// UploadImageInput carries the raw image bytes.
type UploadImageInput struct {
	RawBody []byte `contentType:"application/octet-stream"`
}

// GalleryImageOutput wraps one stored image for Huma.
type GalleryImageOutput struct {
	Body service.GalleryImage
}

// GalleryListOutput wraps the gallery listing for Huma.
type GalleryListOutput struct {
	Body struct {
		Images []service.GalleryImage `json:"images" doc:"Stored uploads, newest first"`
	}
}

// GalleryNameInput identifies a stored image by its file name within the
// user's gallery directory.
type GalleryNameInput struct {
	File string `path:"file" doc:"Image file name, e.g. img-abc123.png"`
}

// === Handlers ===

func (s *Server) handleUploadGalleryImage(ctx context.Context, input *UploadImageInput) (*GalleryImageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	img, err := s.services.Gallery.Upload(ctx, userID, input.RawBody)
	if err != nil {
		return nil, err
	}
	return &GalleryImageOutput{Body: *img}, nil
}

func (s *Server) handleListGalleryImages(ctx context.Context, _ *struct{}) (*GalleryListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	imgs, err := s.services.Gallery.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &GalleryListOutput{}
	out.Body.Images = imgs
	return out, nil
}

func (s *Server) handleDeleteGalleryImage(ctx context.Context, input *GalleryNameInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Gallery.Delete(ctx, userID, "gallery/"+userID+"/"+input.File); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Image deleted"}}, nil
}
