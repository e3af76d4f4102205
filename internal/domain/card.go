package domain

import (
	"math/rand/v2"
	"time"

	"github.com/curecircle/curecircle-server/internal/id"
)

// MarkKind enumerates the decorative mark shapes.
type MarkKind string

// Decorative mark kinds.
const (
	MarkHeart   MarkKind = "heart"
	MarkStar    MarkKind = "star"
	MarkSparkle MarkKind = "sparkle"
)

// ValidMarkKind reports whether k is a known mark kind.
func ValidMarkKind(k MarkKind) bool {
	return k == MarkHeart || k == MarkStar || k == MarkSparkle
}

// DecorativeMark is a positioned decorative shape owned by one card.
type DecorativeMark struct {
	ID              string   `json:"id"`
	Kind            MarkKind `json:"kind"`
	XPercent        float64  `json:"x_percent"`
	YPercent        float64  `json:"y_percent"`
	SizePx          float64  `json:"size_px"`
	ColorHex        string   `json:"color_hex"`
	RotationDegrees float64  `json:"rotation_degrees"`
	Opacity         float64  `json:"opacity"`
}

// CrestOverlay is a positioned series crest owned by one card. CrestID is a
// weak reference into the crest catalog; unresolved ids render a placeholder.
type CrestOverlay struct {
	ID              string  `json:"id"`
	CrestID         string  `json:"crest_id"`
	XPercent        float64 `json:"x_percent"`
	YPercent        float64 `json:"y_percent"`
	SizePx          float64 `json:"size_px"`
	Opacity         float64 `json:"opacity"`
	RotationDegrees float64 `json:"rotation_degrees"`
}

// CardDocument is the root aggregate for a user's digital card.
// One document per owning user; upsert key is the owner identity.
type CardDocument struct {
	OwnerID           string           `json:"owner_id"`
	DisplayName       string           `json:"display_name"`
	Title             string           `json:"title,omitempty"`
	FavoriteCharacter string           `json:"favorite_character,omitempty"`
	FavoriteSeries    string           `json:"favorite_series,omitempty"`
	Background        BackgroundSpec   `json:"background"`
	TextColor         string           `json:"text_color"`
	AccentColor       string           `json:"accent_color"`
	Marks             []DecorativeMark `json:"marks"`
	Crests            []CrestOverlay   `json:"crests"`
	ShowQR            bool             `json:"show_qr"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// ProfileHints carries live profile data used to seed and override identity
// fields on the card. The profile is the source of truth for these.
type ProfileHints struct {
	DisplayName       string
	FavoriteCharacter string
}

// Default card seed values for first-time visitors.
const (
	defaultDisplayName = "Precure Fan"
	defaultTitle       = "Legendary Warrior"
	defaultTextColor   = "#ffffff"
	defaultAccentColor = "#ff66aa"
	defaultMarkSize    = 36.0
	defaultCrestSize   = 72.0
	defaultCrestID     = "futari_wa"
)

// NewDefaultCard builds a first-visit card for ownerID. Identity fields come
// from the profile hints when present, else franchise-themed placeholders.
// One mark and one crest are seeded so the card is never empty.
func NewDefaultCard(ownerID string, hints ProfileHints) *CardDocument {
	now := time.Now()

	displayName := hints.DisplayName
	if displayName == "" {
		displayName = defaultDisplayName
	}

	card := &CardDocument{
		OwnerID:           ownerID,
		DisplayName:       displayName,
		Title:             defaultTitle,
		FavoriteCharacter: hints.FavoriteCharacter,
		Background:        DefaultBackground(),
		TextColor:         defaultTextColor,
		AccentColor:       defaultAccentColor,
		ShowQR:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	card.AddMark(MarkHeart)
	card.AddCrest(defaultCrestID)

	return card
}

// MergeSaved overlays a saved card onto defaults, field by field. Saved fields
// win except DisplayName and FavoriteCharacter, which always prefer the live
// profile values carried by defaults. Idempotent.
func MergeSaved(defaults, saved *CardDocument) *CardDocument {
	if saved == nil {
		out := *defaults
		return &out
	}

	out := *defaults

	if saved.Title != "" {
		out.Title = saved.Title
	}
	if saved.FavoriteSeries != "" {
		out.FavoriteSeries = saved.FavoriteSeries
	}
	if !saved.Background.IsZero() {
		out.Background = saved.Background
	}
	if saved.TextColor != "" {
		out.TextColor = saved.TextColor
	}
	if saved.AccentColor != "" {
		out.AccentColor = saved.AccentColor
	}
	if saved.Marks != nil {
		out.Marks = saved.Marks
	}
	if saved.Crests != nil {
		out.Crests = saved.Crests
	}
	out.ShowQR = saved.ShowQR
	if !saved.CreatedAt.IsZero() {
		out.CreatedAt = saved.CreatedAt
	}
	if !saved.UpdatedAt.IsZero() {
		out.UpdatedAt = saved.UpdatedAt
	}

	// Identity fields: live profile wins over the saved snapshot. Defaults
	// already carry the live values, so nothing to copy from saved.

	return &out
}

// AddMark appends a new decorative mark with a jittered seed position and
// returns it.
func (c *CardDocument) AddMark(kind MarkKind) *DecorativeMark {
	x, y := seedPosition(len(c.Marks) + len(c.Crests))
	mark := DecorativeMark{
		ID:       id.MustGenerate("mark"),
		Kind:     kind,
		XPercent: x,
		YPercent: y,
		SizePx:   defaultMarkSize,
		ColorHex: c.AccentColor,
		Opacity:  1,
	}
	c.Marks = append(c.Marks, mark)
	return &c.Marks[len(c.Marks)-1]
}

// RemoveMark deletes the mark with the given id. Unknown ids are a no-op.
func (c *CardDocument) RemoveMark(markID string) {
	for i, m := range c.Marks {
		if m.ID == markID {
			c.Marks = append(c.Marks[:i], c.Marks[i+1:]...)
			return
		}
	}
}

// AddCrest appends a new crest overlay with a jittered seed position and
// returns it. The crest id is not resolved here; rendering substitutes a
// placeholder for unknown ids.
func (c *CardDocument) AddCrest(crestID string) *CrestOverlay {
	x, y := seedPosition(len(c.Marks) + len(c.Crests))
	crest := CrestOverlay{
		ID:       id.MustGenerate("crest"),
		CrestID:  crestID,
		XPercent: x,
		YPercent: y,
		SizePx:   defaultCrestSize,
		Opacity:  1,
	}
	c.Crests = append(c.Crests, crest)
	return &c.Crests[len(c.Crests)-1]
}

// RemoveCrest deletes the crest overlay with the given id. Unknown ids are a no-op.
func (c *CardDocument) RemoveCrest(crestID string) {
	for i, cr := range c.Crests {
		if cr.ID == crestID {
			c.Crests = append(c.Crests[:i], c.Crests[i+1:]...)
			return
		}
	}
}

// Reposition moves the mark or crest with the given id, clamping both axes to
// [0,100]. Unknown ids are a no-op: dragging a just-deleted element must not
// fail.
func (c *CardDocument) Reposition(elementID string, xPercent, yPercent float64) {
	x := ClampPercent(xPercent)
	y := ClampPercent(yPercent)

	for i := range c.Marks {
		if c.Marks[i].ID == elementID {
			c.Marks[i].XPercent = x
			c.Marks[i].YPercent = y
			return
		}
	}
	for i := range c.Crests {
		if c.Crests[i].ID == elementID {
			c.Crests[i].XPercent = x
			c.Crests[i].YPercent = y
			return
		}
	}
}

// ClampPercent bounds v to [0,100].
func ClampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// PointerToPercent maps an absolute pointer coordinate into the card's
// percentage space: (pointer - origin) / size * 100, clamped to [0,100].
func PointerToPercent(pointer, origin, size float64) float64 {
	if size <= 0 {
		return 0
	}
	return ClampPercent((pointer - origin) / size * 100)
}

// seedPosition picks a placement for the n-th added element: a walking base
// position plus a small random jitter, so repeated additions never land on
// the exact same spot.
func seedPosition(n int) (x, y float64) {
	baseX := 35 + float64((n*10)%30)
	baseY := 30 + float64((n*13)%40)
	x = ClampPercent(baseX + jitter())
	y = ClampPercent(baseY + jitter())
	return x, y
}

// jitter returns a random offset in [-4, 4).
func jitter() float64 {
	return rand.Float64()*8 - 4
}
