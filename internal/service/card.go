package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/curecircle/curecircle-server/internal/domain"
	domainerrors "github.com/curecircle/curecircle-server/internal/errors"
	"github.com/curecircle/curecircle-server/internal/liveness"
	"github.com/curecircle/curecircle-server/internal/normalize"
	"github.com/curecircle/curecircle-server/internal/registry"
	"github.com/curecircle/curecircle-server/internal/store"
	"github.com/curecircle/curecircle-server/internal/util"
)

// CardService owns the card editing flow.
type CardService struct {
	store    *store.Store
	repairer *liveness.Repairer
	logger   *slog.Logger
}

// NewCardService creates a card service.
func NewCardService(s *store.Store, repairer *liveness.Repairer, logger *slog.Logger) *CardService {
	return &CardService{store: s, repairer: repairer, logger: logger}
}

// GetOrCreate returns the user's effective card: profile-seeded defaults with
// the saved document merged on top. First-time visitors get defaults without
// anything being written. When the saved card carries an image background, a
// liveness repair pass runs first so a dead image never reaches the editor.
func (s *CardService) GetOrCreate(ctx context.Context, ownerID string) (*domain.CardDocument, error) {
	hints := domain.ProfileHints{}
	if profile, err := s.store.GetProfile(ownerID); err == nil {
		hints = profile.CardHints()
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	defaults := domain.NewDefaultCard(ownerID, hints)

	saved, err := s.store.GetCard(ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return defaults, nil
		}
		return nil, err
	}

	if saved.Background.Mode == domain.BackgroundImage {
		repaired, err := s.repairer.RepairCard(ctx, ownerID)
		if err != nil {
			s.logger.Warn("background repair failed", "owner_id", ownerID, "error", err)
		}
		if repaired {
			saved, err = s.store.GetCard(ownerID)
			if err != nil {
				return nil, err
			}
		}
	}

	return domain.MergeSaved(defaults, saved), nil
}

// SaveCardRequest is a full card document save.
type SaveCardRequest struct {
	Title             string                  `json:"title" validate:"max=60"`
	FavoriteSeries    string                  `json:"favorite_series" validate:"max=80"`
	Background        domain.BackgroundSpec   `json:"background"`
	TextColor         string                  `json:"text_color" validate:"omitempty,hexcolor"`
	AccentColor       string                  `json:"accent_color" validate:"omitempty,hexcolor"`
	Marks             []domain.DecorativeMark `json:"marks" validate:"max=30,dive"`
	Crests            []domain.CrestOverlay   `json:"crests" validate:"max=12,dive"`
	ShowQR            bool                    `json:"show_qr"`
}

// Save validates and persists the user's card. Percent coordinates are
// clamped rather than rejected, matching the drag interaction that produces
// them.
func (s *CardService) Save(ctx context.Context, actorID string, req SaveCardRequest) (*domain.CardDocument, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if err := validateBackground(req.Background); err != nil {
		return nil, err
	}

	card := &domain.CardDocument{
		OwnerID:        actorID,
		Title:          req.Title,
		FavoriteSeries: req.FavoriteSeries,
		Background:     req.Background,
		TextColor:      normalize.HexColor(req.TextColor),
		AccentColor:    normalize.HexColor(req.AccentColor),
		Marks:          req.Marks,
		Crests:         req.Crests,
		ShowQR:         req.ShowQR,
	}
	clampElements(card)

	if existing, err := s.store.GetCard(actorID); err == nil {
		card.CreatedAt = existing.CreatedAt
	}

	if err := s.store.SaveCard(actorID, card); err != nil {
		return nil, err
	}
	return s.GetOrCreate(ctx, actorID)
}

// AddMark appends a decorative mark and persists the card.
func (s *CardService) AddMark(ctx context.Context, ownerID string, kind domain.MarkKind) (*domain.CardDocument, error) {
	if !domain.ValidMarkKind(kind) {
		return nil, domainerrors.Validation("unknown mark kind")
	}
	return s.mutate(ctx, ownerID, func(card *domain.CardDocument) error {
		card.AddMark(kind)
		return nil
	})
}

// RemoveMark deletes a mark by id and persists the card. Unknown ids are a
// no-op save.
func (s *CardService) RemoveMark(ctx context.Context, ownerID, markID string) (*domain.CardDocument, error) {
	return s.mutate(ctx, ownerID, func(card *domain.CardDocument) error {
		card.RemoveMark(markID)
		return nil
	})
}

// AddCrest appends a crest overlay and persists the card. The crest id is
// checked against the catalog so the editor cannot save an id that would
// always render as a placeholder. A typed series name like "Splash Star" is
// normalized to its catalog key before the lookup.
func (s *CardService) AddCrest(ctx context.Context, ownerID, crestID string) (*domain.CardDocument, error) {
	if _, ok := registry.LookupCrest(crestID); !ok {
		slug := util.NormalizeSeriesSlug(crestID)
		if _, ok := registry.LookupCrest(slug); !ok {
			return nil, domainerrors.Validation("unknown crest id")
		}
		crestID = slug
	}
	return s.mutate(ctx, ownerID, func(card *domain.CardDocument) error {
		card.AddCrest(crestID)
		return nil
	})
}

// RemoveCrest deletes a crest overlay by id and persists the card.
func (s *CardService) RemoveCrest(ctx context.Context, ownerID, crestID string) (*domain.CardDocument, error) {
	return s.mutate(ctx, ownerID, func(card *domain.CardDocument) error {
		card.RemoveCrest(crestID)
		return nil
	})
}

// Reposition moves a mark or crest to new percent coordinates and persists
// the card.
func (s *CardService) Reposition(ctx context.Context, ownerID, elementID string, xPercent, yPercent float64) (*domain.CardDocument, error) {
	return s.mutate(ctx, ownerID, func(card *domain.CardDocument) error {
		card.Reposition(elementID, xPercent, yPercent)
		return nil
	})
}

// mutate loads the effective card, applies fn, and saves the result.
func (s *CardService) mutate(ctx context.Context, ownerID string, fn func(*domain.CardDocument) error) (*domain.CardDocument, error) {
	card, err := s.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := fn(card); err != nil {
		return nil, err
	}
	if err := s.store.SaveCard(ownerID, card); err != nil {
		return nil, err
	}
	return card, nil
}

// clampElements bounds every element's coordinates and opacity. Out-of-range
// values arrive from interrupted drags and are corrected, not rejected.
func clampElements(card *domain.CardDocument) {
	for i := range card.Marks {
		m := &card.Marks[i]
		m.XPercent = domain.ClampPercent(m.XPercent)
		m.YPercent = domain.ClampPercent(m.YPercent)
		m.Opacity = clampUnit(m.Opacity)
	}
	for i := range card.Crests {
		c := &card.Crests[i]
		c.XPercent = domain.ClampPercent(c.XPercent)
		c.YPercent = domain.ClampPercent(c.YPercent)
		c.Opacity = clampUnit(c.Opacity)
	}
	if card.Background.Image != nil {
		img := card.Background.Image
		img.PositionXPercent = domain.ClampPercent(img.PositionXPercent)
		img.PositionYPercent = domain.ClampPercent(img.PositionYPercent)
		img.Opacity = clampUnit(img.Opacity)
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// validateBackground checks mode-specific invariants the struct tags cannot
// express.
func validateBackground(spec domain.BackgroundSpec) error {
	switch spec.Mode {
	case "", domain.BackgroundGradient:
		if spec.PresetID == domain.PresetCustom && spec.Custom == nil {
			return domainerrors.Validation("custom gradient requires start and end colors")
		}
	case domain.BackgroundSolid:
		if spec.Color == "" {
			return domainerrors.Validation("solid background requires a color")
		}
	case domain.BackgroundImage:
		if spec.Image == nil || spec.Image.SourceURL == "" {
			return domainerrors.Validation("image background requires a source url")
		}
	default:
		return domainerrors.Validation("unknown background mode")
	}
	return nil
}
