package api

import (
	"errors"
	"image/png"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/curecircle/curecircle-server/internal/errors"
	"github.com/curecircle/curecircle-server/internal/http/response"
	"github.com/curecircle/curecircle-server/internal/render"
)

// handleCardPreview rasterizes the caller's card and streams it as PNG.
// Served outside huma because the payload is binary, not an envelope.
func (s *Server) handleCardPreview(w http.ResponseWriter, r *http.Request) {
	identity, err := GetIdentity(r.Context())
	if err != nil {
		response.Unauthorized(w, "Authentication required", s.logger)
		return
	}

	card, err := s.services.Card.GetOrCreate(r.Context(), identity.UserID)
	if err != nil {
		s.logger.Error("preview card load failed", "user_id", identity.UserID, "error", err)
		response.InternalError(w, "Failed to load card", s.logger)
		return
	}

	opts := render.Options{Scale: parseScale(r)}
	img, err := s.renderer.Render(r.Context(), card, opts)
	if err != nil {
		s.logger.Error("preview render failed", "user_id", identity.UserID, "error", err)
		response.InternalError(w, "Failed to render card", s.logger)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := png.Encode(w, img); err != nil {
		s.logger.Error("preview encode failed", "error", err)
	}
}

// handleSharedCardImage renders the card behind a share token as PNG, for
// link previews on the public share page. No authentication.
func (s *Server) handleSharedCardImage(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	pub, err := s.services.Profile.GetPublic(r.Context(), token)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.NotFound(w, "Shared profile not found", s.logger)
			return
		}
		s.logger.Error("shared card lookup failed", "error", err)
		response.InternalError(w, "Failed to load shared card", s.logger)
		return
	}
	if pub.Card == nil {
		response.NotFound(w, "This profile has no card", s.logger)
		return
	}

	opts := render.Options{Scale: parseScale(r), SkipBrokenImages: true}
	img, err := s.renderer.Render(r.Context(), pub.Card, opts)
	if err != nil {
		s.logger.Error("shared card render failed", "token", token, "error", err)
		response.InternalError(w, "Failed to render card", s.logger)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	if err := png.Encode(w, img); err != nil {
		s.logger.Error("shared card encode failed", "error", err)
	}
}

// parseScale reads the optional ?scale= parameter, clamped to [1,3].
func parseScale(r *http.Request) float64 {
	scale, err := strconv.ParseFloat(r.URL.Query().Get("scale"), 64)
	if err != nil || scale < 1 {
		return 1
	}
	if scale > 3 {
		return 3
	}
	return scale
}
